package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/postdock/postdock/internal/drafts"
	"github.com/postdock/postdock/internal/models"
	"github.com/postdock/postdock/internal/platform"
	"github.com/postdock/postdock/internal/service"
)

type DraftHandler struct {
	s     service.DraftService
	store *drafts.Store
}

func NewDraftHandler(s service.DraftService, store *drafts.Store) *DraftHandler {
	return &DraftHandler{s: s, store: store}
}

func parsePlatform(value string) (platform.Platform, bool) {
	p, err := platform.Parse(value)
	return p, err == nil
}

func (h *DraftHandler) GetSession(c *fiber.Ctx) error {
	userID := GetUserID(c)
	return c.Status(fiber.StatusOK).JSON(h.store.Snapshot(userID))
}

func (h *DraftHandler) SelectPlatform(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var body struct {
		Platform string `json:"platform"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse json",
		})
	}

	p, ok := parsePlatform(body.Platform)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unknown platform",
		})
	}

	h.store.SelectPlatform(userID, p)
	return c.SendStatus(fiber.StatusOK)
}

func (h *DraftHandler) EditDraft(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var body struct {
		Platform    string              `json:"platform"`
		Content     string              `json:"content"`
		PageContext *models.PageContext `json:"page_context,omitempty"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse json",
		})
	}

	p, ok := parsePlatform(body.Platform)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unknown platform",
		})
	}

	if body.PageContext != nil {
		h.store.SetPageContext(userID, *body.PageContext)
	}
	h.store.EditDraft(userID, p, body.Content)

	draft, _ := h.store.Draft(userID, p)
	return c.Status(fiber.StatusOK).JSON(draft)
}

func (h *DraftHandler) SaveVersion(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var body struct {
		Platform string `json:"platform"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse json",
		})
	}

	p, ok := parsePlatform(body.Platform)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unknown platform",
		})
	}

	if err := h.store.SaveVersion(userID, p); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	draft, _ := h.store.Draft(userID, p)
	return c.Status(fiber.StatusOK).JSON(draft)
}

func (h *DraftHandler) SelectVersion(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var body struct {
		Platform string `json:"platform"`
		Index    int    `json:"index"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse json",
		})
	}

	p, ok := parsePlatform(body.Platform)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unknown platform",
		})
	}

	if err := h.store.SelectVersion(userID, p, body.Index); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	draft, _ := h.store.Draft(userID, p)
	return c.Status(fiber.StatusOK).JSON(draft)
}

func (h *DraftHandler) Generate(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var body struct {
		Message                 string   `json:"message"`
		Platforms               []string `json:"platforms"`
		GenerateDistinctContent bool     `json:"generateDistinctContent"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse json",
		})
	}

	var platforms []platform.Platform
	for _, v := range body.Platforms {
		p, err := platform.Parse(v)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Unknown platform " + v,
			})
		}
		platforms = append(platforms, p)
	}

	resp, err := h.s.RequestDraft(c.Context(), userID, body.Message, platforms, body.GenerateDistinctContent)
	if err != nil {
		return respondError(c, err, "Unable to generate draft")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"response": resp.Response,
		"session":  h.store.Snapshot(userID),
	})
}

func (h *DraftHandler) UploadImage(c *fiber.Ctx) error {
	userID := GetUserID(c)

	p, ok := parsePlatform(c.Params("platform"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unknown platform",
		})
	}

	file, err := c.FormFile("file")
	if err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse form",
		})
	}

	img, err := h.s.UploadImage(c.Context(), userID, p, file)
	if err != nil {
		return respondError(c, err, "Unable to upload image")
	}

	return c.Status(fiber.StatusOK).JSON(img)
}

func (h *DraftHandler) RemoveImage(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var body struct {
		Platform string `json:"platform"`
		Index    int    `json:"index"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse json",
		})
	}

	p, ok := parsePlatform(body.Platform)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unknown platform",
		})
	}

	if err := h.store.RemoveImage(userID, p, body.Index); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.SendStatus(fiber.StatusOK)
}
