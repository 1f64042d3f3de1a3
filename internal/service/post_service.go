package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/postdock/postdock/internal/models"
	"github.com/postdock/postdock/internal/platform"
	"github.com/postdock/postdock/internal/repository"
	"github.com/postdock/postdock/internal/transfer"
)

// MinScheduleLead is the minimum gap between "now" and a post's scheduled
// time, at creation and on every edit.
const MinScheduleLead = 5 * time.Minute

const scheduledTimeLayout = "2006-01-02T15:04"

type PostService interface {
	Create(ctx context.Context, userID int64, pc *transfer.PostCreation) (*models.ScheduledPost, time.Duration, error)
	List(ctx context.Context, userID int64) ([]*models.ScheduledPost, error)
	PostInfo(ctx context.Context, postID, userID int64) (*models.ScheduledPost, error)
	Edit(ctx context.Context, userID, postID int64, upd *transfer.PostUpdate) (*models.ScheduledPost, time.Duration, error)
	Retry(ctx context.Context, userID, postID int64) (*models.ScheduledPost, time.Duration, error)
	Remove(ctx context.Context, userID, postID int64) error
	Attempts(ctx context.Context, userID, postID int64) ([]*models.PublishAttempt, error)
}

type postService struct {
	db  *sql.DB
	pr  repository.ScheduledPostRepository
	ac  repository.SocialAccountRepository
	ur  repository.UserRepository
	ph  repository.PublishHistoryRepository
	now func() time.Time
}

func NewPostService(
	db *sql.DB,
	pr repository.ScheduledPostRepository,
	ac repository.SocialAccountRepository,
	ur repository.UserRepository,
	ph repository.PublishHistoryRepository) PostService {
	return &postService{
		db:  db,
		pr:  pr,
		ac:  ac,
		ur:  ur,
		ph:  ph,
		now: time.Now,
	}
}

// parseScheduledFor interprets the wall-clock time in the user's timezone.
func (s *postService) parseScheduledFor(value, tz string) (time.Time, error) {
	loc := time.Local
	if tz != "" {
		l, err := time.LoadLocation(tz)
		if err != nil {
			return time.Time{}, transfer.NewValidationError("unknown timezone " + tz)
		}
		loc = l
	}
	t, err := time.ParseInLocation(scheduledTimeLayout, value, loc)
	if err != nil {
		t, err = time.Parse(time.RFC3339, value)
		if err != nil {
			return time.Time{}, transfer.NewValidationError("invalid scheduled time format")
		}
	}
	return t, nil
}

func (s *postService) checkLeadTime(t time.Time) error {
	if t.Before(s.now().Add(MinScheduleLead)) {
		return transfer.NewValidationError(fmt.Sprintf("scheduled time must be at least %d minutes in the future", int(MinScheduleLead.Minutes())))
	}
	return nil
}

// validateContent runs the platform rules plus the Hacker News link
// requirement. Validation happens strictly before any persistence call.
func validateContent(p platform.Platform, content, hnURL string, images []models.ImageAsset) error {
	rules, err := platform.RulesFor(p)
	if err != nil {
		return transfer.NewValidationError(err.Error())
	}
	if err := rules.Validate(content); err != nil {
		return transfer.NewValidationError(err.Error())
	}
	if p == platform.HackerNews && hnURL == "" {
		return transfer.NewValidationError("a link is required for Hacker News submissions")
	}
	if len(images) > rules.MaxImages() {
		return transfer.NewValidationError(fmt.Sprintf("at most %d images allowed for %s", rules.MaxImages(), p))
	}
	return nil
}

func (s *postService) Create(ctx context.Context, userID int64, pc *transfer.PostCreation) (*models.ScheduledPost, time.Duration, error) {
	if pc == nil {
		err := errors.New("post creation data is nil")
		slog.Error(err.Error())
		return nil, 0, err
	}

	p, err := platform.Parse(pc.Platform)
	if err != nil {
		return nil, 0, transfer.NewValidationError("unknown platform " + pc.Platform)
	}

	if err := validateContent(p, pc.Content, pc.HackerNewsURL, pc.ImageAssets); err != nil {
		slog.Info(err.Error())
		return nil, 0, err
	}

	scheduledFor, err := s.parseScheduledFor(pc.ScheduledFor, pc.ScheduledInTimezone)
	if err != nil {
		slog.Info(err.Error())
		return nil, 0, err
	}
	if err := s.checkLeadTime(scheduledFor); err != nil {
		slog.Info(err.Error())
		return nil, 0, err
	}

	exists, err := s.ac.CheckByUserID(ctx, pc.SocialAccountID, userID)
	if err != nil {
		return nil, 0, fmt.Errorf("error checking social account: %w", err)
	}
	if !exists {
		return nil, 0, transfer.NewValidationError("social account is not connected")
	}

	user, found, err := s.ur.GetByID(ctx, userID)
	if err != nil {
		return nil, 0, fmt.Errorf("error loading user: %w", err)
	}

	metadata := models.PostMetadata{
		Platform:            p,
		PageContext:         pc.PageContext,
		ImageAssets:         pc.ImageAssets,
		HackerNewsURL:       pc.HackerNewsURL,
		ScheduledInTimezone: pc.ScheduledInTimezone,
	}
	if found {
		metadata.UserEmail = user.Email
		metadata.UserName = user.Name
	}

	post := models.ScheduledPost{
		UserID:       userID,
		AccountID:    pc.SocialAccountID,
		Content:      pc.Content,
		ScheduledFor: scheduledFor,
		Status:       models.PostStatusScheduled,
		Metadata:     metadata,
	}

	postID, err := s.pr.Create(ctx, nil, &post)
	if err != nil {
		return nil, 0, fmt.Errorf("error creating post: %w", err)
	}
	post.ID = postID

	delay := scheduledFor.Sub(s.now())
	if delay < 0 {
		delay = 0
	}

	return &post, delay, nil
}

// loadOwned fetches a post after confirming ownership.
func (s *postService) loadOwned(ctx context.Context, userID, postID int64) (*models.ScheduledPost, error) {
	if userID == 0 {
		err := transfer.NewValidationError("user is not valid")
		slog.Info(err.Error())
		return nil, err
	}
	if postID == 0 {
		err := transfer.NewValidationError("post id is not valid")
		slog.Info(err.Error())
		return nil, err
	}

	isValid, err := s.pr.CheckByUserID(ctx, postID, userID)
	if err != nil {
		return nil, err
	}
	if !isValid {
		err = transfer.NewValidationError("post doesn't exist")
		slog.Info(err.Error())
		return nil, err
	}

	post, err := s.pr.GetByID(ctx, postID)
	if err != nil || post == nil {
		return nil, fmt.Errorf("error getting post info")
	}
	return post, nil
}

// Edit mutates content, schedule time, and metadata while the status permits.
// Editing a failed post is a resubmission: it returns to scheduled with the
// error cleared.
func (s *postService) Edit(ctx context.Context, userID, postID int64, upd *transfer.PostUpdate) (*models.ScheduledPost, time.Duration, error) {
	post, err := s.loadOwned(ctx, userID, postID)
	if err != nil {
		return nil, 0, err
	}

	if post.Status == models.PostStatusPosted {
		return nil, 0, transfer.NewValidationError("posted posts cannot be edited")
	}

	if upd.Content != nil {
		post.Content = *upd.Content
	}
	if upd.HackerNewsURL != nil {
		post.Metadata.HackerNewsURL = *upd.HackerNewsURL
	}
	if upd.ImageAssets != nil {
		post.Metadata.ImageAssets = *upd.ImageAssets
	}
	if upd.ScheduledFor != nil {
		scheduledFor, err := s.parseScheduledFor(*upd.ScheduledFor, post.Metadata.ScheduledInTimezone)
		if err != nil {
			slog.Info(err.Error())
			return nil, 0, err
		}
		post.ScheduledFor = scheduledFor
	}

	if err := validateContent(post.Metadata.Platform, post.Content, post.Metadata.HackerNewsURL, post.Metadata.ImageAssets); err != nil {
		slog.Info(err.Error())
		return nil, 0, err
	}
	if err := s.checkLeadTime(post.ScheduledFor); err != nil {
		slog.Info(err.Error())
		return nil, 0, err
	}

	post.Status = models.PostStatusScheduled
	post.ErrorMessage = ""

	if err := s.pr.Update(ctx, post); err != nil {
		return nil, 0, fmt.Errorf("error updating post: %w", err)
	}

	delay := post.ScheduledFor.Sub(s.now())
	if delay < 0 {
		delay = 0
	}
	return post, delay, nil
}

// Retry resets a failed post to scheduled and clears its error. The publisher
// picks it up again through the re-enqueued task.
func (s *postService) Retry(ctx context.Context, userID, postID int64) (*models.ScheduledPost, time.Duration, error) {
	post, err := s.loadOwned(ctx, userID, postID)
	if err != nil {
		return nil, 0, err
	}

	if post.Status != models.PostStatusFailed {
		return nil, 0, transfer.NewValidationError("only failed posts can be retried")
	}

	if err := s.pr.ClearFailure(ctx, postID); err != nil {
		return nil, 0, fmt.Errorf("error retrying post: %w", err)
	}

	post.Status = models.PostStatusScheduled
	post.ErrorMessage = ""

	delay := post.ScheduledFor.Sub(s.now())
	if delay < 0 {
		delay = 0
	}
	return post, delay, nil
}

func (s *postService) Remove(ctx context.Context, userID, postID int64) error {
	post, err := s.loadOwned(ctx, userID, postID)
	if err != nil {
		return err
	}

	if post.Status == models.PostStatusPosted {
		return transfer.NewValidationError("posted posts cannot be deleted")
	}

	if err := s.pr.Remove(ctx, postID); err != nil {
		return fmt.Errorf("error removing post: %w", err)
	}
	return nil
}

func (s *postService) PostInfo(ctx context.Context, postID, userID int64) (*models.ScheduledPost, error) {
	return s.loadOwned(ctx, userID, postID)
}

func (s *postService) List(ctx context.Context, userID int64) ([]*models.ScheduledPost, error) {
	posts, err := s.pr.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing posts")
	}
	return posts, nil
}

func (s *postService) Attempts(ctx context.Context, userID, postID int64) ([]*models.PublishAttempt, error) {
	if _, err := s.loadOwned(ctx, userID, postID); err != nil {
		return nil, err
	}

	attempts, err := s.ph.ListByPostID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("error listing publish attempts")
	}
	return attempts, nil
}
