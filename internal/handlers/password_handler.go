package handlers

import (
	"errors"
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/studyiovibe/studyio-backend/internal/dto"
	"github.com/studyiovibe/studyio-backend/internal/services"
)

type PasswordHandler struct {
	resetService *services.PasswordResetService
}

func NewPasswordHandler(resetService *services.PasswordResetService) *PasswordHandler {
	return &PasswordHandler{resetService: resetService}
}

func (h *PasswordHandler) ForgotPassword(c *fiber.Ctx) error {
	var req dto.ForgotPasswordRequest
	if err := c.BodyParser(&req); err != nil || req.Email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Email is required",
		})
	}

	if err := h.resetService.RequestResetLink(c.UserContext(), req.Email); err != nil {
		var limited *services.RateLimitedError
		switch {
		case errors.As(err, &limited):
			retryAfter := int(limited.RetryAfter.Seconds())
			c.Set("Retry-After", strconv.Itoa(retryAfter))
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.ErrorResponse{
				Error: true, Message: "Too many reset requests. Please wait before trying again.",
				RetryAfter: retryAfter,
			})
		case errors.Is(err, services.ErrUserNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "No account found linked to this email.",
			})
		}
		slog.Error("reset link request failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Internal server error",
		})
	}

	return c.JSON(dto.MessageResponse{Message: "Password reset email sent"})
}

func (h *PasswordHandler) ResetPassword(c *fiber.Ctx) error {
	var req dto.ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil || req.Token == "" || req.NewPassword == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Missing required fields",
		})
	}

	if err := h.resetService.ResetWithToken(c.UserContext(), req.Token, req.NewPassword); err != nil {
		if errors.Is(err, services.ErrResetTokenInvalid) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: "Invalid or expired token",
			})
		}
		slog.Error("password reset failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Internal server error",
		})
	}

	return c.JSON(dto.MessageResponse{Message: "Password updated successfully"})
}

func (h *PasswordHandler) RequestChangeOTP(c *fiber.Ctx) error {
	// The new password itself is only set by the verify step; requiring it
	// here keeps clients from requesting codes they cannot redeem.
	var req dto.ChangePasswordOTPRequest
	if err := c.BodyParser(&req); err != nil || req.Email == "" || req.NewPassword == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Missing required fields",
		})
	}

	if err := h.resetService.RequestChangeOTP(c.UserContext(), req.Email); err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "User not found",
			})
		}
		slog.Error("change OTP request failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Internal server error",
		})
	}

	return c.JSON(dto.MessageResponse{Message: "OTP sent to email"})
}

func (h *PasswordHandler) VerifyChangeOTP(c *fiber.Ctx) error {
	var req dto.VerifyChangeOTPRequest
	if err := c.BodyParser(&req); err != nil || req.Email == "" || req.OTP == "" || req.NewPassword == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Missing required fields",
		})
	}

	if err := h.resetService.ResetWithOTP(c.UserContext(), req.Email, req.OTP, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "User not found",
			})
		case errors.Is(err, services.ErrResetTokenInvalid):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: "Invalid or expired OTP",
			})
		}
		slog.Error("change OTP verification failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Internal server error",
		})
	}

	return c.JSON(dto.MessageResponse{Message: "Password updated successfully"})
}
