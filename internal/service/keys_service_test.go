package service

import (
	"context"
	"testing"

	"github.com/postdock/postdock/internal/models"
	"github.com/postdock/postdock/internal/transfer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeKeyRepo struct {
	keys   map[int64]*models.ApiKey
	nextID int64
}

func newFakeKeyRepo() *fakeKeyRepo {
	return &fakeKeyRepo{keys: make(map[int64]*models.ApiKey), nextID: 1}
}

func (r *fakeKeyRepo) GetByKey(ctx context.Context, apiKey string) (*int64, bool, error) {
	for _, k := range r.keys {
		if k.ApiKey == apiKey {
			return &k.UserID, true, nil
		}
	}
	return nil, false, nil
}

func (r *fakeKeyRepo) GetByUserID(ctx context.Context, userID int64) ([]*models.ApiKey, error) {
	var out []*models.ApiKey
	for _, k := range r.keys {
		if k.UserID == userID {
			out = append(out, k)
		}
	}
	return out, nil
}

func (r *fakeKeyRepo) Create(ctx context.Context, apiKey *models.ApiKey) (int64, error) {
	id := r.nextID
	r.nextID++
	cp := *apiKey
	cp.ID = id
	r.keys[id] = &cp
	return id, nil
}

func (r *fakeKeyRepo) CheckByUserID(ctx context.Context, keyID, userID int64) (bool, error) {
	k, ok := r.keys[keyID]
	return ok && k.UserID == userID, nil
}

func (r *fakeKeyRepo) Remove(ctx context.Context, id int64) error {
	delete(r.keys, id)
	return nil
}

func TestApiKeyCreateAndResolve(t *testing.T) {
	repo := newFakeKeyRepo()
	s := NewApiKeyService(repo)

	require.NoError(t, s.Create(context.Background(), 10))

	keys, err := s.List(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, keys, 1)
	assert.NotEmpty(t, keys[0].ApiKey)

	userID, err := s.GetUserID(context.Background(), keys[0].ApiKey)
	require.NoError(t, err)
	assert.Equal(t, int64(10), userID)
}

func TestApiKeyCreateEnforcesCap(t *testing.T) {
	repo := newFakeKeyRepo()
	s := NewApiKeyService(repo)

	for i := 0; i < maxAPIKeys; i++ {
		require.NoError(t, s.Create(context.Background(), 10))
	}

	err := s.Create(context.Background(), 10)
	var verr *transfer.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, repo.keys, maxAPIKeys)
}

func TestApiKeyUnknownKey(t *testing.T) {
	s := NewApiKeyService(newFakeKeyRepo())

	_, err := s.GetUserID(context.Background(), "nope")
	var verr *transfer.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestApiKeyRemoveChecksOwnership(t *testing.T) {
	repo := newFakeKeyRepo()
	s := NewApiKeyService(repo)
	require.NoError(t, s.Create(context.Background(), 10))

	var keyID int64
	for id := range repo.keys {
		keyID = id
	}

	var verr *transfer.ValidationError
	err := s.RemoveAPIKey(context.Background(), 99, keyID)
	require.ErrorAs(t, err, &verr)
	assert.Len(t, repo.keys, 1)

	require.NoError(t, s.RemoveAPIKey(context.Background(), 10, keyID))
	assert.Empty(t, repo.keys)
}
