package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	config "github.com/postdock/postdock/configs"
	"github.com/postdock/postdock/internal/models"
	"github.com/postdock/postdock/internal/platform"
	"github.com/postdock/postdock/internal/repository"
	"golang.org/x/oauth2"
)

var (
	twitterEndpoint = oauth2.Endpoint{
		AuthURL:  "https://twitter.com/i/oauth2/authorize",
		TokenURL: "https://api.twitter.com/2/oauth2/token",
	}
	linkedinEndpoint = oauth2.Endpoint{
		AuthURL:  "https://www.linkedin.com/oauth/v2/authorization",
		TokenURL: "https://www.linkedin.com/oauth/v2/accessToken",
	}
)

func TwitterOAuthConfig(cfg config.Config) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.TwitterClientID,
		ClientSecret: cfg.TwitterClientSecret,
		RedirectURL:  cfg.TwitterRedirectURI,
		Scopes:       []string{"tweet.read", "tweet.write", "users.read", "offline.access"},
		Endpoint:     twitterEndpoint,
	}
}

func LinkedinOAuthConfig(cfg config.Config) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.LinkedinClientID,
		ClientSecret: cfg.LinkedinClientSecret,
		RedirectURL:  cfg.LinkedinRedirectURI,
		Scopes:       []string{"openid", "profile", "email", "w_member_social"},
		Endpoint:     linkedinEndpoint,
	}
}

// AccountService is the connected-accounts directory: which platforms the
// current user can schedule to.
type AccountService interface {
	GetAuthURL(ctx context.Context, p platform.Platform, tokenString string) string
	List(ctx context.Context, userID int64) ([]*models.SocialAccount, error)
	Delete(ctx context.Context, userID, accountID int64) error
}

type accountService struct {
	cfg config.Config
	sa  repository.SocialAccountRepository
}

func NewAccountService(cfg config.Config, sa repository.SocialAccountRepository) AccountService {
	return &accountService{
		cfg: cfg,
		sa:  sa,
	}
}

func (s *accountService) GetAuthURL(ctx context.Context, p platform.Platform, tokenString string) string {
	switch p {
	case platform.Twitter:
		return TwitterOAuthConfig(s.cfg).AuthCodeURL(tokenString, oauth2.AccessTypeOffline)
	case platform.Linkedin:
		return LinkedinOAuthConfig(s.cfg).AuthCodeURL(tokenString)
	default:
		// Hacker News has no OAuth flow, accounts connect with credentials.
		return ""
	}
}

func (s *accountService) List(ctx context.Context, userID int64) ([]*models.SocialAccount, error) {
	var err error

	if userID == 0 {
		err = errors.New("UserID is not valid")
		slog.Info(err.Error())
		return nil, err
	}

	accounts, err := s.sa.ListInfoByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("Error getting social accounts")
	}

	return accounts, nil
}

func (s *accountService) Delete(ctx context.Context, userID, accountID int64) error {
	var err error

	if userID == 0 {
		err = errors.New("UserID is not valid")
		slog.Info(err.Error())
		return err
	}

	if accountID == 0 {
		err = errors.New("AccountID is not valid")
		slog.Info(err.Error())
		return err
	}

	isValid, err := s.sa.CheckByUserID(ctx, accountID, userID)
	if err != nil {
		return err
	}

	if !isValid {
		err = errors.New("Account doesn't exist")
		slog.Info(err.Error())
		return err
	}

	err = s.sa.Remove(ctx, accountID)
	if err != nil {
		return fmt.Errorf("Error removing account")
	}

	return nil
}
