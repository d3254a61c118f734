package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pennywise/internal/clock"
	apperrors "pennywise/internal/errors"
	"pennywise/internal/pagination"
	"pennywise/internal/services"
)

// ReminderHandler exposes the user's scheduled transaction reminders.
type ReminderHandler struct {
	scheduler services.ReminderScheduler
	clk       clock.Clock
}

// NewReminderHandler creates a new ReminderHandler.
func NewReminderHandler(scheduler services.ReminderScheduler, clk clock.Clock) *ReminderHandler {
	return &ReminderHandler{scheduler: scheduler, clk: clk}
}

// ListUpcoming lists reminders that have not fired yet, soonest first
// @Summary     List upcoming reminders
// @Tags        reminders
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Reminder] "Upcoming reminders"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /reminders/upcoming [get]
func (h *ReminderHandler) ListUpcoming(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.scheduler.ListUpcoming(userID, h.clk.Now(), page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
