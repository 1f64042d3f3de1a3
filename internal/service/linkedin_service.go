package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	config "github.com/postdock/postdock/configs"
	"github.com/postdock/postdock/internal/models"
	"github.com/postdock/postdock/internal/platform"
	"github.com/postdock/postdock/internal/repository"
	"github.com/postdock/postdock/internal/transfer"
	"github.com/postdock/postdock/pkg/utils"
)

const (
	linkedinUserInfoURL = "https://api.linkedin.com/v2/userinfo"
	linkedinUGCPostURL  = "https://api.linkedin.com/v2/ugcPosts"
	linkedinAssetsURL   = "https://api.linkedin.com/v2/assets?action=registerUpload"
)

type LinkedinService interface {
	LinkedinCallback(ctx context.Context, code string, userID int64) error
	HandleLinkedinPost(ctx context.Context, post *models.ScheduledPost, acc *models.SocialAccount) error
}

type linkedinService struct {
	cfg config.Config
	sa  repository.SocialAccountRepository
}

func NewLinkedinService(cfg config.Config, sa repository.SocialAccountRepository) LinkedinService {
	return &linkedinService{
		cfg: cfg,
		sa:  sa,
	}
}

func (s *linkedinService) LinkedinCallback(ctx context.Context, code string, userID int64) error {
	if code == "" {
		err := errors.New("authorization code is empty")
		slog.Info(err.Error())
		return err
	}

	token, err := LinkedinOAuthConfig(s.cfg).Exchange(ctx, code)
	if err != nil {
		slog.Info(err.Error())
		return fmt.Errorf("token exchange failed: %w", err)
	}

	userInfo, err := linkedinUserInfo(ctx, token.AccessToken)
	if err != nil {
		return err
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

	accountInfo := &models.SocialAccount{
		UserID:          userID,
		Platform:        platform.Linkedin,
		AccountID:       userInfo.Sub,
		AccountName:     userInfo.Name,
		AccountUsername: userInfo.Email,
		ProfilePicture:  userInfo.Picture,
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

// HandleLinkedinPost publishes one scheduled post as a UGC share, registering
// and uploading any draft images first.
func (s *linkedinService) HandleLinkedinPost(ctx context.Context, post *models.ScheduledPost, acc *models.SocialAccount) error {
	accessToken, err := utils.Decrypt(acc.AccessToken, []byte(s.cfg.SecretKey))
	if err != nil {
		return err
	}

	author := "urn:li:person:" + acc.AccountID

	var mediaEntries []map[string]interface{}
	for _, img := range post.Metadata.ImageAssets {
		assetURN, err := s.uploadLinkedinImage(ctx, accessToken, author, img.DisplayURL)
		if err != nil {
			return fmt.Errorf("image upload failed: %w", err)
		}
		mediaEntries = append(mediaEntries, map[string]interface{}{
			"status": "READY",
			"media":  assetURN,
		})
	}

	shareContent := map[string]interface{}{
		"shareCommentary": map[string]string{"text": post.Content},
		"shareMediaCategory": func() string {
			if len(mediaEntries) > 0 {
				return "IMAGE"
			}
			return "NONE"
		}(),
	}
	if len(mediaEntries) > 0 {
		shareContent["media"] = mediaEntries
	}

	payload := map[string]interface{}{
		"author":         author,
		"lifecycleState": "PUBLISHED",
		"specificContent": map[string]interface{}{
			"com.linkedin.ugc.ShareContent": shareContent,
		},
		"visibility": map[string]string{
			"com.linkedin.ugc.MemberNetworkVisibility": "PUBLIC",
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, linkedinUGCPostURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Restli-Protocol-Version", "2.0.0")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		slog.Info("LinkedIn ugcPosts endpoint returned non-2xx status")
		return fmt.Errorf("share creation failed: %s", strings.TrimSpace(string(respBody)))
	}

	return nil
}

// uploadLinkedinImage registers an upload slot, pushes the image bytes into
// it, and returns the asset URN.
func (s *linkedinService) uploadLinkedinImage(ctx context.Context, accessToken, author, imageURL string) (string, error) {
	registerPayload := map[string]interface{}{
		"registerUploadRequest": map[string]interface{}{
			"recipes": []string{"urn:li:digitalmediaRecipe:feedshare-image"},
			"owner":   author,
			"serviceRelationships": []map[string]string{
				{
					"relationshipType": "OWNER",
					"identifier":       "urn:li:userGeneratedContent",
				},
			},
		},
	}

	body, err := json.Marshal(registerPayload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, linkedinAssetsURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Info("LinkedIn asset registration returned non-200 status")
		return "", errors.New("LinkedIn asset registration returned non-200 status")
	}

	var registerResp struct {
		Value struct {
			Asset           string `json:"asset"`
			UploadMechanism struct {
				MediaUploadHTTPRequest struct {
					UploadURL string `json:"uploadUrl"`
				} `json:"com.linkedin.digitalmedia.uploading.MediaUploadHttpRequest"`
			} `json:"uploadMechanism"`
		} `json:"value"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&registerResp); err != nil {
		return "", err
	}

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

	uploadReq, err := http.NewRequestWithContext(ctx, http.MethodPut, registerResp.Value.UploadMechanism.MediaUploadHTTPRequest.UploadURL, bytes.NewReader(imgBytes))
	if err != nil {
		return "", err
	}
	uploadReq.Header.Set("Authorization", "Bearer "+accessToken)

	uploadResp, err := http.DefaultClient.Do(uploadReq)
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}
	defer uploadResp.Body.Close()

	if uploadResp.StatusCode != http.StatusCreated && uploadResp.StatusCode != http.StatusOK {
		slog.Info("LinkedIn image upload returned non-2xx status")
		return "", errors.New("LinkedIn image upload returned non-2xx status")
	}

	return registerResp.Value.Asset, nil
}

func linkedinUserInfo(ctx context.Context, accessToken string) (*transfer.LinkedinUserResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, linkedinUserInfoURL, nil)
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
		slog.Info("LinkedIn userinfo endpoint returned non-200 status")
		return nil, errors.New("LinkedIn userinfo endpoint returned non-200 status")
	}

	var userInfo transfer.LinkedinUserResponse
	if err := json.NewDecoder(resp.Body).Decode(&userInfo); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return &userInfo, nil
}
