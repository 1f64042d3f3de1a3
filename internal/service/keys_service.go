package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log/slog"

	"github.com/postdock/postdock/internal/models"
	"github.com/postdock/postdock/internal/repository"
	"github.com/postdock/postdock/internal/transfer"
)

// maxAPIKeys caps how many keys one user can hold at a time.
const maxAPIKeys = 5

// ApiKeyService issues and resolves the API keys that the auth middleware
// accepts as an alternative to the session cookie.
type ApiKeyService interface {
	Create(ctx context.Context, userID int64) error
	List(ctx context.Context, userID int64) ([]*models.ApiKey, error)
	GetUserID(ctx context.Context, apiKey string) (int64, error)
	RemoveAPIKey(ctx context.Context, userID, keyID int64) error
}

type apiKeyService struct {
	k repository.ApiKeyRepository
}

func NewApiKeyService(k repository.ApiKeyRepository) ApiKeyService {
	return &apiKeyService{
		k: k,
	}
}

func (s *apiKeyService) Create(ctx context.Context, userID int64) error {
	keys, err := s.k.GetByUserID(ctx, userID)
	if err != nil {
		return fmt.Errorf("error listing api keys: %w", err)
	}

	if len(keys) >= maxAPIKeys {
		err := transfer.NewValidationError(fmt.Sprintf("at most %d API keys per user", maxAPIKeys))
		slog.Info(err.Error())
		return err
	}

	key, err := newAPIKey()
	if err != nil {
		slog.Info(err.Error())
		return fmt.Errorf("error generating api key: %w", err)
	}

	if _, err := s.k.Create(ctx, &models.ApiKey{UserID: userID, ApiKey: key}); err != nil {
		return fmt.Errorf("error saving api key: %w", err)
	}
	return nil
}

func (s *apiKeyService) GetUserID(ctx context.Context, apiKey string) (int64, error) {
	userID, found, err := s.k.GetByKey(ctx, apiKey)
	if err != nil {
		return 0, err
	}
	if !found {
		err := transfer.NewValidationError("api key is not recognized")
		slog.Info(err.Error())
		return 0, err
	}
	return *userID, nil
}

func (s *apiKeyService) List(ctx context.Context, userID int64) ([]*models.ApiKey, error) {
	keys, err := s.k.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing api keys: %w", err)
	}
	return keys, nil
}

func (s *apiKeyService) RemoveAPIKey(ctx context.Context, userID, keyID int64) error {
	if userID == 0 || keyID == 0 {
		err := transfer.NewValidationError("key id is not valid")
		slog.Info(err.Error())
		return err
	}

	owned, err := s.k.CheckByUserID(ctx, keyID, userID)
	if err != nil {
		return err
	}
	if !owned {
		err := transfer.NewValidationError("key doesn't exist")
		slog.Info(err.Error())
		return err
	}

	return s.k.Remove(ctx, keyID)
}

// newAPIKey returns 16 random bytes, base64url encoded.
func newAPIKey() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
