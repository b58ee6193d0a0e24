// handlers/proposal_routes.go
package handlers

import (
	"roster-rank-system/middleware"
	"roster-rank-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupProposalRoutes(app *fiber.App, proposalService *services.ProposalService) {
	adminGroup := app.Group("/s/admin/proposals", middleware.UserContextMiddleware(), middleware.RequireAdmin())

	adminGroup.Get("/", func(c *fiber.Ctx) error {
		proposals, err := proposalService.ListPending()
		if err != nil {
			return fail(c, "failed to list proposals", err)
		}
		return c.JSON(proposals)
	})

	adminGroup.Post("/:id/approve", func(c *fiber.Ctx) error {
		actorID := c.Locals("user_id").(string)
		state, err := proposalService.Approve(c.Params("id"), actorID)
		if err != nil {
			return fail(c, "failed to approve proposal", err)
		}
		return c.JSON(state)
	})

	adminGroup.Post("/:id/decline", func(c *fiber.Ctx) error {
		actorID := c.Locals("user_id").(string)
		var req struct {
			Reason *string `json:"reason,omitempty"`
		}
		// Body is optional — a bare decline carries no reason.
		_ = c.BodyParser(&req)

		if err := proposalService.Decline(c.Params("id"), actorID, req.Reason); err != nil {
			return fail(c, "failed to decline proposal", err)
		}
		return c.JSON(fiber.Map{"message": "proposal declined"})
	})
}
