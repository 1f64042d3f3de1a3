package handlers

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/postdock/postdock/internal/models"
	"github.com/postdock/postdock/internal/transfer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePostService struct {
	removeCalls int
	removeErr   error
	listResult  []*models.ScheduledPost
	info        *models.ScheduledPost
	infoErr     error
	attempts    []*models.PublishAttempt
}

func (f *fakePostService) Create(ctx context.Context, userID int64, pc *transfer.PostCreation) (*models.ScheduledPost, time.Duration, error) {
	return nil, 0, nil
}

func (f *fakePostService) List(ctx context.Context, userID int64) ([]*models.ScheduledPost, error) {
	return f.listResult, nil
}

func (f *fakePostService) PostInfo(ctx context.Context, postID, userID int64) (*models.ScheduledPost, error) {
	return f.info, f.infoErr
}

func (f *fakePostService) Edit(ctx context.Context, userID, postID int64, upd *transfer.PostUpdate) (*models.ScheduledPost, time.Duration, error) {
	return nil, 0, nil
}

func (f *fakePostService) Retry(ctx context.Context, userID, postID int64) (*models.ScheduledPost, time.Duration, error) {
	return nil, 0, nil
}

func (f *fakePostService) Remove(ctx context.Context, userID, postID int64) error {
	f.removeCalls++
	return f.removeErr
}

func (f *fakePostService) Attempts(ctx context.Context, userID, postID int64) ([]*models.PublishAttempt, error) {
	return f.attempts, nil
}

func newTestApp(svc *fakePostService) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", "10")
		return c.Next()
	})

	h := NewPostHandler(svc, nil)
	app.Get("/scheduled-posts", h.ListPosts)
	app.Delete("/scheduled-posts/:id", h.RemovePost)
	app.Get("/scheduled-posts/:id/attempts", h.ListAttempts)
	return app
}

func TestRemovePostRequiresConfirmation(t *testing.T) {
	svc := &fakePostService{}
	app := newTestApp(svc)

	tests := []struct {
		name string
		body string
	}{
		{"missing", `{}`},
		{"wrong word", `{"confirm":"yes"}`},
		{"uppercase", `{"confirm":"DELETE"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("DELETE", "/scheduled-posts/1", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")

			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, 0, svc.removeCalls, "service must not be reached")
		})
	}
}

func TestRemovePostWithConfirmation(t *testing.T) {
	svc := &fakePostService{}
	app := newTestApp(svc)

	req := httptest.NewRequest("DELETE", "/scheduled-posts/1", strings.NewReader(`{"confirm":"delete"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	assert.Equal(t, 1, svc.removeCalls)
}

func TestRemovePostValidationErrorIs400(t *testing.T) {
	svc := &fakePostService{removeErr: transfer.NewValidationError("posted posts cannot be deleted")}
	app := newTestApp(svc)

	req := httptest.NewRequest("DELETE", "/scheduled-posts/1", strings.NewReader(`{"confirm":"delete"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestListPostsSingleByQuery(t *testing.T) {
	svc := &fakePostService{info: &models.ScheduledPost{ID: 7, Content: "hello"}}
	app := newTestApp(svc)

	resp, err := app.Test(httptest.NewRequest("GET", "/scheduled-posts?id=7", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestListPostsUnknownIDIs400(t *testing.T) {
	svc := &fakePostService{infoErr: transfer.NewValidationError("post doesn't exist")}
	app := newTestApp(svc)

	resp, err := app.Test(httptest.NewRequest("GET", "/scheduled-posts?id=404", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
