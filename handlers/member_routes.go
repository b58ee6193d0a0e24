// handlers/member_routes.go
package handlers

import (
	"strconv"

	"roster-rank-system/middleware"
	"roster-rank-system/models"
	"roster-rank-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupMemberRoutes(app *fiber.App, rankStateService *services.RankStateService, historyService *services.HistoryService) {
	adminGroup := app.Group("/s/admin/members", middleware.UserContextMiddleware(), middleware.RequireAdmin())

	adminGroup.Get("/", func(c *fiber.Ctx) error {
		members, err := rankStateService.ListMembers()
		if err != nil {
			return fail(c, "failed to list members", err)
		}
		return c.JSON(members)
	})

	adminGroup.Post("/:id/rank", func(c *fiber.Ctx) error {
		actorID := c.Locals("user_id").(string)
		var req struct {
			RankID string `json:"rank_id" validate:"required,uuid"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}
		if err := validate.Struct(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "validation failed",
				"cause": err.Error(),
			})
		}

		state, err := rankStateService.AssignRank(c.Params("id"), req.RankID, models.TriggerAdmin, &actorID)
		if err != nil {
			return fail(c, "failed to assign rank", err)
		}
		return c.JSON(state)
	})

	adminGroup.Post("/rank/bulk", func(c *fiber.Ctx) error {
		actorID := c.Locals("user_id").(string)
		var req struct {
			UserIDs []string `json:"user_ids" validate:"required,min=1"`
			RankID  string   `json:"rank_id" validate:"required,uuid"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}
		if err := validate.Struct(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "validation failed",
				"cause": err.Error(),
			})
		}

		if err := rankStateService.BulkAssignRank(req.UserIDs, req.RankID, models.TriggerAdmin, &actorID); err != nil {
			return fail(c, "bulk rank assignment failed", err)
		}
		return c.JSON(fiber.Map{
			"message": "rank assigned",
			"count":   len(req.UserIDs),
		})
	})

	adminGroup.Post("/:id/retired", func(c *fiber.Ctx) error {
		state, err := rankStateService.ToggleRetired(c.Params("id"))
		if err != nil {
			return fail(c, "failed to toggle retired flag", err)
		}
		return c.JSON(state)
	})

	adminGroup.Post("/:id/interview", func(c *fiber.Ctx) error {
		state, err := rankStateService.ToggleInterviewDone(c.Params("id"))
		if err != nil {
			return fail(c, "failed to toggle interview flag", err)
		}
		return c.JSON(state)
	})

	adminGroup.Get("/:id/history", func(c *fiber.Ctx) error {
		page, _ := strconv.Atoi(c.Query("page", "1"))
		history, err := historyService.Page(c.Params("id"), page)
		if err != nil {
			return fail(c, "failed to get history", err)
		}
		return c.JSON(history)
	})
}
