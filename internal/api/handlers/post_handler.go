package handlers

import (
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	"github.com/postdock/postdock/internal/queue"
	"github.com/postdock/postdock/internal/service"
	"github.com/postdock/postdock/internal/transfer"
)

// deleteConfirmation is the literal text a user types before a post is
// deleted. Requests without it never reach the service.
const deleteConfirmation = "delete"

type PostHandler struct {
	s           service.PostService
	AsynqClient *asynq.Client
}

func NewPostHandler(service service.PostService, asynqClient *asynq.Client) *PostHandler {
	return &PostHandler{s: service, AsynqClient: asynqClient}
}

func (h *PostHandler) CreatePost(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var pc transfer.PostCreation
	if err := c.BodyParser(&pc); err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse json",
		})
	}

	post, delay, err := h.s.Create(c.Context(), userID, &pc)
	if err != nil {
		return respondError(c, err, "Unable to schedule post")
	}

	payload := queue.PublishPostPayload{
		PostID:          post.ID,
		ScheduledAtUnix: post.ScheduledFor.Unix(),
	}
	if err := queue.EnqueuePost(h.AsynqClient, payload, delay); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Error scheduling post",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(post)
}

func (h *PostHandler) ListPosts(c *fiber.Ctx) error {
	userID := GetUserID(c)
	postID := c.QueryInt("id", 0)

	if postID != 0 {
		post, err := h.s.PostInfo(c.Context(), int64(postID), userID)
		if err != nil {
			return respondError(c, err, "Unable to get post")
		}
		return c.Status(fiber.StatusOK).JSON(post)
	}

	posts, err := h.s.List(c.Context(), userID)
	if err != nil {
		return respondError(c, err, "Unable to list posts")
	}

	return c.Status(fiber.StatusOK).JSON(posts)
}

func (h *PostHandler) EditPost(c *fiber.Ctx) error {
	userID := GetUserID(c)
	postID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid post id",
		})
	}

	var upd transfer.PostUpdate
	if err := c.BodyParser(&upd); err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse json",
		})
	}

	post, delay, err := h.s.Edit(c.Context(), userID, int64(postID), &upd)
	if err != nil {
		return respondError(c, err, "Unable to update post")
	}

	payload := queue.PublishPostPayload{
		PostID:          post.ID,
		ScheduledAtUnix: post.ScheduledFor.Unix(),
	}
	if err := queue.EnqueuePost(h.AsynqClient, payload, delay); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Error scheduling post",
		})
	}

	return c.Status(fiber.StatusOK).JSON(post)
}

// RetryPost resets a failed post to scheduled and queues a fresh attempt.
func (h *PostHandler) RetryPost(c *fiber.Ctx) error {
	userID := GetUserID(c)
	postID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid post id",
		})
	}

	post, delay, err := h.s.Retry(c.Context(), userID, int64(postID))
	if err != nil {
		return respondError(c, err, "Unable to retry post")
	}

	payload := queue.PublishPostPayload{
		PostID:          post.ID,
		ScheduledAtUnix: post.ScheduledFor.Unix(),
	}
	if err := queue.EnqueuePost(h.AsynqClient, payload, delay); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Error scheduling post",
		})
	}

	return c.Status(fiber.StatusOK).JSON(post)
}

func (h *PostHandler) RemovePost(c *fiber.Ctx) error {
	userID := GetUserID(c)
	postID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid post id",
		})
	}

	var del transfer.PostDeletion
	if err := c.BodyParser(&del); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse json",
		})
	}

	if strings.TrimSpace(del.Confirm) != deleteConfirmation {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Type \"delete\" to confirm",
		})
	}

	if err := h.s.Remove(c.Context(), userID, int64(postID)); err != nil {
		return respondError(c, err, "Unable to remove post")
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *PostHandler) ListAttempts(c *fiber.Ctx) error {
	userID := GetUserID(c)
	postID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid post id",
		})
	}

	attempts, err := h.s.Attempts(c.Context(), userID, int64(postID))
	if err != nil {
		return respondError(c, err, "Unable to list publish attempts")
	}

	return c.Status(fiber.StatusOK).JSON(attempts)
}
