package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"regexp"
	"strings"
	"time"

	config "github.com/postdock/postdock/configs"
	"github.com/postdock/postdock/internal/models"
	"github.com/postdock/postdock/internal/platform"
	"github.com/postdock/postdock/internal/repository"
	"github.com/postdock/postdock/internal/transfer"
	"github.com/postdock/postdock/pkg/utils"
)

const (
	hnBaseURL   = "https://news.ycombinator.com"
	hnLoginURL  = hnBaseURL + "/login"
	hnSubmitURL = hnBaseURL + "/submit"
	hnResultURL = hnBaseURL + "/r"
)

var hnFnidPattern = regexp.MustCompile(`name="fnid" value="([^"]+)"`)

// HackerNewsService submits links with stored credentials. There is no OAuth
// flow; accounts connect by validating a username/password pair.
type HackerNewsService interface {
	Connect(ctx context.Context, userID int64, creds *transfer.HackerNewsCredentials) error
	HandleHackerNewsPost(ctx context.Context, post *models.ScheduledPost, acc *models.SocialAccount) error
}

type hackerNewsService struct {
	cfg config.Config
	sa  repository.SocialAccountRepository
}

func NewHackerNewsService(cfg config.Config, sa repository.SocialAccountRepository) HackerNewsService {
	return &hackerNewsService{
		cfg: cfg,
		sa:  sa,
	}
}

// Connect validates credentials against the login form and stores them
// encrypted for the publisher.
func (s *hackerNewsService) Connect(ctx context.Context, userID int64, creds *transfer.HackerNewsCredentials) error {
	if creds == nil || creds.Username == "" || creds.Password == "" {
		err := errors.New("username and password are required")
		slog.Info(err.Error())
		return err
	}

	if _, err := hnLogin(ctx, creds.Username, creds.Password); err != nil {
		return err
	}

	encryptedPassword, err := utils.Encrypt([]byte(creds.Password), []byte(s.cfg.SecretKey))
	if err != nil {
		return err
	}

	accountInfo := &models.SocialAccount{
		UserID:          userID,
		Platform:        platform.HackerNews,
		AccountID:       creds.Username,
		AccountName:     creds.Username,
		AccountUsername: creds.Username,
		AccessToken:     encryptedPassword,
		// Credentials do not expire, park the expiry far out so the
		// refresh sweep skips the row.
		TokenExpiresAt: time.Now().AddDate(100, 0, 0),
	}

	_, err = s.sa.Create(ctx, nil, accountInfo)
	if err != nil {
		return err
	}

	return nil
}

// HandleHackerNewsPost logs in and submits the title plus link.
func (s *hackerNewsService) HandleHackerNewsPost(ctx context.Context, post *models.ScheduledPost, acc *models.SocialAccount) error {
	if post.Metadata.HackerNewsURL == "" {
		return errors.New("post has no link to submit")
	}

	password, err := utils.Decrypt(acc.AccessToken, []byte(s.cfg.SecretKey))
	if err != nil {
		return err
	}

	client, err := hnLogin(ctx, acc.AccountUsername, password)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, hnSubmitURL, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	page, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	match := hnFnidPattern.FindSubmatch(page)
	if match == nil {
		slog.Info("submit form token not found")
		return errors.New("submit form token not found")
	}

	data := url.Values{}
	data.Add("fnid", string(match[1]))
	data.Add("fnop", "submit-page")
	data.Add("title", post.Content)
	data.Add("url", post.Metadata.HackerNewsURL)
	data.Add("text", "")

	submitReq, err := http.NewRequestWithContext(ctx, http.MethodPost, hnResultURL, strings.NewReader(data.Encode()))
	if err != nil {
		return err
	}
	submitReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	submitResp, err := client.Do(submitReq)
	if err != nil {
		slog.Info(err.Error())
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer submitResp.Body.Close()

	if submitResp.StatusCode != http.StatusOK {
		slog.Info("Hacker News submit returned non-200 status")
		return errors.New("Hacker News submit returned non-200 status")
	}

	return nil
}

// hnLogin returns an http client holding a valid session cookie.
func hnLogin(ctx context.Context, username, password string) (*http.Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client := &http.Client{
		Jar:     jar,
		Timeout: 30 * time.Second,
	}

	data := url.Values{}
	data.Add("acct", username)
	data.Add("pw", password)
	data.Add("goto", "news")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, hnLoginURL, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	loginURL, _ := url.Parse(hnBaseURL)
	for _, c := range jar.Cookies(loginURL) {
		if c.Name == "user" {
			return client, nil
		}
	}

	slog.Info("Hacker News login rejected")
	return nil, errors.New("Hacker News login rejected")
}
