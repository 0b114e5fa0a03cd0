package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/box-office/internal/service"
)

// StatsHandler serves rollup reports.
type StatsHandler struct {
	stats *service.StatsService
}

// NewStatsHandler constructs handler.
func NewStatsHandler(stats *service.StatsService) *StatsHandler {
	return &StatsHandler{stats: stats}
}

// Rollup GET /stats/:orgId/rollup.
func (h *StatsHandler) Rollup(c *fiber.Ctx) error {
	scope := service.RollupScope{}
	if eventID := c.Query("event_id"); eventID != "" {
		scope.EventID = &eventID
	}
	if dateID := c.Query("event_date_id"); dateID != "" {
		scope.EventDateID = &dateID
	}
	if from := parseTime(c.Query("from")); from != nil {
		scope.From = from
	}
	if to := parseTime(c.Query("to")); to != nil {
		scope.To = to
	}

	rollup, err := h.stats.Rollup(c.UserContext(), c.Params("orgId"), scope)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": rollup})
}
