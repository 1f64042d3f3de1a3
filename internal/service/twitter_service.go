package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	config "github.com/postdock/postdock/configs"
	"github.com/postdock/postdock/internal/models"
	"github.com/postdock/postdock/internal/platform"
	"github.com/postdock/postdock/internal/repository"
	"github.com/postdock/postdock/internal/transfer"
	"github.com/postdock/postdock/pkg/utils"
	"golang.org/x/oauth2"
)

const (
	twitterTweetURL       = "https://api.twitter.com/2/tweets"
	twitterMeURL          = "https://api.twitter.com/2/users/me?user.fields=profile_image_url"
	twitterMediaUploadURL = "https://upload.twitter.com/1.1/media/upload.json"
)

type TwitterService interface {
	TwitterCallback(ctx context.Context, code string, userID int64) error
	RefreshTwitterToken(ctx context.Context, acc *models.SocialAccount) error
	HandleTwitterPost(ctx context.Context, post *models.ScheduledPost, acc *models.SocialAccount) error
}

type twitterService struct {
	cfg config.Config
	sa  repository.SocialAccountRepository
}

func NewTwitterService(cfg config.Config, sa repository.SocialAccountRepository) TwitterService {
	return &twitterService{
		cfg: cfg,
		sa:  sa,
	}
}

func (s *twitterService) TwitterCallback(ctx context.Context, code string, userID int64) error {
	if code == "" {
		err := errors.New("authorization code is empty")
		slog.Info(err.Error())
		return err
	}

	token, err := TwitterOAuthConfig(s.cfg).Exchange(ctx, code)
	if err != nil {
		slog.Info(err.Error())
		return fmt.Errorf("token exchange failed: %w", err)
	}

	userInfo, err := twitterUserInfo(ctx, token.AccessToken)
	if err != nil {
		return err
	}

	encryptedAccessToken, err := utils.Encrypt([]byte(token.AccessToken), []byte(s.cfg.SecretKey))
	if err != nil {
		return err
	}

	encryptedRefreshToken, err := utils.Encrypt([]byte(token.RefreshToken), []byte(s.cfg.SecretKey))
	if err != nil {
		return err
	}

	accountInfo := &models.SocialAccount{
		UserID:          userID,
		Platform:        platform.Twitter,
		AccountID:       userInfo.Data.ID,
		AccountName:     userInfo.Data.Name,
		AccountUsername: userInfo.Data.Username,
		ProfilePicture:  userInfo.Data.ProfileImageURL,
		AccessToken:     encryptedAccessToken,
		RefreshToken:    encryptedRefreshToken,
		TokenExpiresAt:  token.Expiry,
	}

	_, err = s.sa.Create(ctx, nil, accountInfo)
	if err != nil {
		return err
	}

	return nil
}

func (s *twitterService) RefreshTwitterToken(ctx context.Context, acc *models.SocialAccount) error {
	refreshToken, err := utils.Decrypt(acc.RefreshToken, []byte(s.cfg.SecretKey))
	if err != nil {
		return err
	}

	src := TwitterOAuthConfig(s.cfg).TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	token, err := src.Token()
	if err != nil {
		slog.Info(err.Error())
		return fmt.Errorf("token refresh failed: %w", err)
	}

	encryptedAccessToken, err := utils.Encrypt([]byte(token.AccessToken), []byte(s.cfg.SecretKey))
	if err != nil {
		return err
	}
	encryptedRefreshToken := ""
	if token.RefreshToken != "" {
		encryptedRefreshToken, err = utils.Encrypt([]byte(token.RefreshToken), []byte(s.cfg.SecretKey))
		if err != nil {
			return err
		}
	}

	return s.sa.SetToken(ctx, acc.ID, &models.SocialAccount{
		AccessToken:    encryptedAccessToken,
		RefreshToken:   encryptedRefreshToken,
		TokenExpiresAt: token.Expiry,
	})
}

// HandleTwitterPost publishes one scheduled post as a tweet, attaching any
// draft images first.
func (s *twitterService) HandleTwitterPost(ctx context.Context, post *models.ScheduledPost, acc *models.SocialAccount) error {
	accessToken, err := utils.Decrypt(acc.AccessToken, []byte(s.cfg.SecretKey))
	if err != nil {
		return err
	}

	var mediaIDs []string
	for _, img := range post.Metadata.ImageAssets {
		mediaID, err := uploadTwitterMedia(ctx, accessToken, img.DisplayURL)
		if err != nil {
			return fmt.Errorf("media upload failed: %w", err)
		}
		mediaIDs = append(mediaIDs, mediaID)
	}

	payload := map[string]interface{}{
		"text": post.Content,
	}
	if len(mediaIDs) > 0 {
		payload["media"] = map[string]interface{}{"media_ids": mediaIDs}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, twitterTweetURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		slog.Info("Twitter tweet endpoint returned non-2xx status")
		return fmt.Errorf("tweet creation failed: %s", strings.TrimSpace(string(respBody)))
	}

	return nil
}

func twitterUserInfo(ctx context.Context, accessToken string) (*transfer.TwitterUserResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, twitterMeURL, nil)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Info("Twitter user endpoint returned non-200 status")
		return nil, errors.New("Twitter user endpoint returned non-200 status")
	}

	var userInfo transfer.TwitterUserResponse
	if err := json.NewDecoder(resp.Body).Decode(&userInfo); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return &userInfo, nil
}

// uploadTwitterMedia fetches the stored image and pushes it through the v1.1
// media upload endpoint, returning the media id for the tweet payload.
func uploadTwitterMedia(ctx context.Context, accessToken, imageURL string) (string, error) {
	imgResp, err := http.Get(imageURL)
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}
	defer imgResp.Body.Close()

	imgBytes, err := io.ReadAll(imgResp.Body)
	if err != nil {
		return "", err
	}

	data := url.Values{}
	data.Add("media_data", base64.StdEncoding.EncodeToString(imgBytes))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, twitterMediaUploadURL, strings.NewReader(data.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	client := &http.Client{Timeout: 2 * time.Minute}
	resp, err := client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Info("Twitter media upload returned non-200 status")
		return "", errors.New("Twitter media upload returned non-200 status")
	}

	var uploadResp struct {
		MediaIDString string `json:"media_id_string"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&uploadResp); err != nil {
		return "", err
	}

	return uploadResp.MediaIDString, nil
}
