package queue

import (
	"context"
	"encoding/json"
	"log"

	"github.com/hibiken/asynq"
	"github.com/postdock/postdock/internal/models"
	"github.com/postdock/postdock/internal/platform"
)

func (j *Queue) HandlePublishPostTask(ctx context.Context, task *asynq.Task) error {
	var payload PublishPostPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return err
	}

	return j.PublishPost(ctx, payload)
}

// PublishPost runs one publish attempt against the post's platform and
// records the outcome on the post row.
func (j *Queue) PublishPost(ctx context.Context, payload PublishPostPayload) error {
	post, err := j.pr.GetByID(ctx, payload.PostID)
	if err != nil {
		return err
	}
	if post == nil {
		log.Printf("Post %d no longer exists, dropping task", payload.PostID)
		return nil
	}

	// Only posts still in scheduled state get attempted. Edits and retries
	// enqueue a fresh task; anything pinned to an older schedule is stale.
	if post.Status != models.PostStatusScheduled {
		log.Printf("Post %d is %s, dropping task", post.ID, post.Status)
		return nil
	}
	if payload.ScheduledAtUnix != 0 && payload.ScheduledAtUnix != post.ScheduledFor.Unix() {
		log.Printf("Post %d was rescheduled, dropping stale task", post.ID)
		return nil
	}

	acc, err := j.ac.GetByID(ctx, post.AccountID)
	if err != nil {
		return err
	}
	if acc == nil {
		msg := "social account is no longer connected"
		j.recordAttempt(ctx, post, post.AccountID, msg)
		return j.recordOutcome(ctx, post, msg)
	}

	var publishErr error
	switch post.Metadata.Platform {
	case platform.Twitter:
		publishErr = j.tw.HandleTwitterPost(ctx, post, acc)
	case platform.Linkedin:
		publishErr = j.li.HandleLinkedinPost(ctx, post, acc)
	case platform.HackerNews:
		publishErr = j.hn.HandleHackerNewsPost(ctx, post, acc)
	default:
		return j.recordOutcome(ctx, post, "unknown platform in post metadata")
	}

	errorMessage := ""
	if publishErr != nil {
		errorMessage = publishErr.Error()
		log.Printf("Error posting to %s for PostID %d: %v", post.Metadata.Platform, post.ID, publishErr)
	}

	j.recordAttempt(ctx, post, acc.ID, errorMessage)

	return j.recordOutcome(ctx, post, errorMessage)
}

func (j *Queue) recordAttempt(ctx context.Context, post *models.ScheduledPost, accountID int64, errorMessage string) {
	attempt := models.PublishAttempt{
		UserID:       post.UserID,
		PostID:       post.ID,
		AccountID:    accountID,
		ErrorMessage: errorMessage,
	}
	if _, err := j.ph.Create(ctx, &attempt); err != nil {
		log.Printf("Error saving publish attempt for PostID %d: %v", post.ID, err)
	}
}

func (j *Queue) recordOutcome(ctx context.Context, post *models.ScheduledPost, errorMessage string) error {
	if errorMessage == "" {
		return j.pr.UpdateStatus(ctx, models.PostStatusPosted, post.ID)
	}
	return j.pr.MarkFailed(ctx, post.ID, errorMessage)
}
