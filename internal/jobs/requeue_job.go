package job

import (
	"context"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/postdock/postdock/internal/queue"
	"github.com/postdock/postdock/internal/repository"
)

// RequeueJob re-enqueues posts that are past their scheduled time but still
// marked scheduled, covering tasks lost to a Redis flush or a crashed worker.
type RequeueJob struct {
	pr     repository.ScheduledPostRepository
	client *asynq.Client
}

func NewRequeueJob(pr repository.ScheduledPostRepository, client *asynq.Client) *RequeueJob {
	return &RequeueJob{
		pr:     pr,
		client: client,
	}
}

func (c *RequeueJob) RequeueOverdue() {
	ctx := context.Background()

	// A small grace window keeps this sweep from racing tasks that are
	// already in flight.
	cutoff := time.Now().Add(-10 * time.Minute)

	posts, err := c.pr.ListDueScheduled(ctx, cutoff)
	if err != nil {
		slog.Info(err.Error())
		return
	}

	for _, post := range posts {
		payload := queue.PublishPostPayload{
			PostID:          post.ID,
			ScheduledAtUnix: post.ScheduledFor.Unix(),
		}
		if err := queue.EnqueuePost(c.client, payload, 0); err != nil {
			slog.Info(err.Error())
		}
	}
}
