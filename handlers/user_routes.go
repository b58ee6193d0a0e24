// handlers/user_routes.go
package handlers

import (
	"strconv"

	"roster-rank-system/middleware"
	"roster-rank-system/services"

	"github.com/gofiber/fiber/v2"
)

// SetupUserRoutes registers the member-facing endpoints. Non-admin callers are
// restricted to their own user ID; the gateway-supplied identity is the only
// one honored.
func SetupUserRoutes(app *fiber.App, rankStateService *services.RankStateService, historyService *services.HistoryService, proposalService *services.ProposalService) {
	securedGroup := app.Group("/", middleware.UserContextMiddleware())

	securedGroup.Get("/user/rank", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		state, err := rankStateService.GetState(userID)
		if err != nil {
			return fail(c, "failed to get rank state", err)
		}
		return c.JSON(state)
	})

	securedGroup.Get("/user/rank/history", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		page, _ := strconv.Atoi(c.Query("page", "1"))
		history, err := historyService.Page(userID, page)
		if err != nil {
			return fail(c, "failed to get history", err)
		}
		return c.JSON(history)
	})

	securedGroup.Get("/user/rank/eligibility", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		next, verdict, err := proposalService.EvaluateNextRank(userID)
		if err != nil {
			return fail(c, "failed to evaluate eligibility", err)
		}
		if next == nil {
			return c.JSON(fiber.Map{
				"next_rank": nil,
				"eligible":  false,
				"message":   "no higher rank in the catalog",
			})
		}
		return c.JSON(fiber.Map{
			"next_rank":          next,
			"eligible":           verdict.Eligible,
			"unmet_requirements": verdict.UnmetRequirements,
		})
	})
}
