package handlers

import (
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v2"
	config "github.com/postdock/postdock/configs"
	"github.com/postdock/postdock/internal/platform"
	"github.com/postdock/postdock/internal/service"
	"github.com/postdock/postdock/internal/transfer"
	"github.com/postdock/postdock/pkg/utils"
)

type AccountHandler struct {
	as  service.AccountService
	tw  service.TwitterService
	li  service.LinkedinService
	hn  service.HackerNewsService
	cfg config.Config
}

func NewAccountHandler(as service.AccountService, tw service.TwitterService, li service.LinkedinService, hn service.HackerNewsService, cfg config.Config) *AccountHandler {
	return &AccountHandler{
		as:  as,
		tw:  tw,
		li:  li,
		hn:  hn,
		cfg: cfg,
	}
}

func (h *AccountHandler) AddSocialAccount(c *fiber.Ctx) error {
	p, ok := parsePlatform(c.Params("platform"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unknown platform",
		})
	}

	authURL := h.as.GetAuthURL(c.Context(), p, c.Query("state"))
	if authURL == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Platform has no OAuth flow",
		})
	}
	return c.Redirect(authURL)
}

func (h *AccountHandler) CallbackHandler(c *fiber.Ctx) error {
	code := c.Query("code")
	state := c.Query("state")

	p, ok := parsePlatform(c.Params("platform"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unknown platform",
		})
	}

	claims, err := utils.ValidateToken(h.cfg.SecretKey, state)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to validate user",
		})
	}

	userID, err := strconv.ParseInt(claims.UserID, 10, 64)
	if err != nil {
		slog.Info(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to validate user",
		})
	}

	switch p {
	case platform.Twitter:
		err = h.tw.TwitterCallback(c.Context(), code, userID)
	case platform.Linkedin:
		err = h.li.LinkedinCallback(c.Context(), code, userID)
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Platform has no OAuth flow",
		})
	}
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "something went wrong",
		})
	}

	return c.Redirect(h.cfg.FrontendURL + "/accounts")
}

// ConnectHackerNews stores credentialed access, the platform's stand-in for
// an OAuth flow.
func (h *AccountHandler) ConnectHackerNews(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var creds transfer.HackerNewsCredentials
	if err := c.BodyParser(&creds); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse json",
		})
	}

	if err := h.hn.Connect(c.Context(), userID, &creds); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to connect account",
		})
	}

	return c.SendStatus(fiber.StatusOK)
}

func (h *AccountHandler) ListSocialAccounts(c *fiber.Ctx) error {
	userID := GetUserID(c)

	accounts, err := h.as.List(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to list social accounts",
		})
	}

	return c.Status(fiber.StatusOK).JSON(accounts)
}

func (h *AccountHandler) DeleteSocialAccount(c *fiber.Ctx) error {
	userID := GetUserID(c)
	accountID := c.QueryInt("id", 0)

	if err := h.as.Delete(c.Context(), userID, int64(accountID)); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to remove account",
		})
	}

	return c.SendStatus(fiber.StatusOK)
}
