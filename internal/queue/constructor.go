package queue

import (
	"github.com/postdock/postdock/internal/repository"
	"github.com/postdock/postdock/internal/service"
)

// Queue is the background publisher: it owns the scheduled -> posted/failed
// transition.
type Queue struct {
	pr repository.ScheduledPostRepository
	ac repository.SocialAccountRepository
	ph repository.PublishHistoryRepository
	tw service.TwitterService
	li service.LinkedinService
	hn service.HackerNewsService
}

func NewQueue(
	pr repository.ScheduledPostRepository,
	ac repository.SocialAccountRepository,
	ph repository.PublishHistoryRepository,
	tw service.TwitterService,
	li service.LinkedinService,
	hn service.HackerNewsService) *Queue {
	return &Queue{
		pr: pr,
		ac: ac,
		ph: ph,
		tw: tw,
		li: li,
		hn: hn,
	}
}

const TaskTypePublishPost = "publish:post"

type PublishPostPayload struct {
	PostID int64 `json:"post_id"`
	// ScheduledAtUnix pins the task to the schedule it was enqueued for, so
	// tasks left over from an earlier schedule are dropped.
	ScheduledAtUnix int64 `json:"scheduled_at_unix"`
}
