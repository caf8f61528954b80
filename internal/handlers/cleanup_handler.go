package handlers

import (
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/studyiovibe/studyio-backend/internal/dto"
	"github.com/studyiovibe/studyio-backend/internal/services"
)

type CleanupHandler struct {
	cleanupService *services.CleanupService
}

func NewCleanupHandler(cleanupService *services.CleanupService) *CleanupHandler {
	return &CleanupHandler{cleanupService: cleanupService}
}

func (h *CleanupHandler) Sweep(c *fiber.Ctx) error {
	result, err := h.cleanupService.Sweep(c.UserContext())
	if err != nil {
		slog.Error("cleanup sweep failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to clean expired rows",
		})
	}

	return c.JSON(dto.CleanupResponse{
		Message: fmt.Sprintf("Deleted %d expired OTPs, %d password tokens and %d sessions",
			result.Codes, result.ResetTokens, result.Sessions),
		DeletedCodes:        result.Codes,
		DeletedResetTokens:  result.ResetTokens,
		DeletedSessions:     result.Sessions,
		DeletedRateCounters: result.RateCounters,
	})
}
