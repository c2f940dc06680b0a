package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/ColaboAI/WeGoGym-api/internal/httpx"
	"github.com/ColaboAI/WeGoGym-api/internal/service"
)

type UserHandler struct {
	userService *service.UserService
}

func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) GetCurrentUser(c *fiber.Ctx) error {
	userID, err := httpx.LocalString(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "missing_identity", "Missing identity")
	}

	user, err := h.userService.GetUser(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return httpx.NotFound(c, "user_not_found", "User not found")
		}
		return httpx.Internal(c, "user_get_failed")
	}
	return c.JSON(user.ToResponse())
}

type fcmTokenInput struct {
	FCMToken string `json:"fcm_token"`
}

// UpdateFCMToken registers the caller's device push token. An empty token
// unregisters the device.
func (h *UserHandler) UpdateFCMToken(c *fiber.Ctx) error {
	userID, err := httpx.LocalString(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "missing_identity", "Missing identity")
	}

	var input fcmTokenInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_body", "Invalid request body")
	}

	if err := h.userService.RegisterFCMToken(userID, input.FCMToken); err != nil {
		return httpx.Internal(c, "fcm_token_update_failed")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *UserHandler) BlockUser(c *fiber.Ctx) error {
	userID, err := httpx.LocalString(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "missing_identity", "Missing identity")
	}
	targetID := c.Params("user_id")
	if targetID == userID {
		return httpx.BadRequest(c, "invalid_target", "Cannot block yourself")
	}

	if err := h.userService.BlockUser(userID, targetID); err != nil {
		return httpx.Internal(c, "block_failed")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *UserHandler) UnblockUser(c *fiber.Ctx) error {
	userID, err := httpx.LocalString(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "missing_identity", "Missing identity")
	}

	if err := h.userService.UnblockUser(userID, c.Params("user_id")); err != nil {
		return httpx.Internal(c, "unblock_failed")
	}
	return c.SendStatus(fiber.StatusNoContent)
}
