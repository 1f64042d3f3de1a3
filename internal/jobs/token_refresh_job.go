package job

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/postdock/postdock/internal/models"
	"github.com/postdock/postdock/internal/platform"
	"github.com/postdock/postdock/internal/repository"
	"github.com/postdock/postdock/internal/service"
)

type TokenRefreshJob struct {
	sr repository.SocialAccountRepository
	tw service.TwitterService
}

func NewTokenRefreshJob(sr repository.SocialAccountRepository, tw service.TwitterService) *TokenRefreshJob {
	return &TokenRefreshJob{
		sr: sr,
		tw: tw,
	}
}

// RefreshTokens refreshes OAuth tokens expiring in the next half hour.
func (c *TokenRefreshJob) RefreshTokens() {
	ctx := context.Background()

	currentTime := time.Now()
	timeIn30Minutes := currentTime.Add(30 * time.Minute)

	accounts, err := c.sr.ListExpiringTokens(ctx, currentTime, timeIn30Minutes)
	if err != nil {
		slog.Info(err.Error())
		return
	}

	var wg sync.WaitGroup

	concurrencyLimit := 10
	semaphore := make(chan struct{}, concurrencyLimit)

	for _, acc := range accounts {
		wg.Add(1)
		semaphore <- struct{}{}

		go func(acc *models.SocialAccount) {
			defer wg.Done()
			defer func() { <-semaphore }()

			switch acc.Platform {
			case platform.Twitter:
				if err := c.tw.RefreshTwitterToken(ctx, acc); err != nil {
					slog.Info(err.Error())
				}
			default:
				// LinkedIn tokens are not refreshable on the default
				// product tier; the user reconnects when they expire.
			}
		}(acc)
	}

	wg.Wait()
}
