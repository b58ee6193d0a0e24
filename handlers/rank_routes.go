// handlers/rank_routes.go
package handlers

import (
	"errors"

	"roster-rank-system/middleware"
	"roster-rank-system/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// statusFor maps service error kinds onto HTTP statuses. Anything outside the
// taxonomy is an internal error.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrConflict):
		return fiber.StatusConflict
	case errors.Is(err, services.ErrForbidden):
		return fiber.StatusForbidden
	default:
		return fiber.StatusInternalServerError
	}
}

func fail(c *fiber.Ctx, msg string, err error) error {
	return c.Status(statusFor(err)).JSON(fiber.Map{
		"error": msg,
		"cause": err.Error(),
	})
}

func SetupRankRoutes(app *fiber.App, rankService *services.RankService, reqService *services.RequirementService) {
	adminGroup := app.Group("/s/admin/ranks", middleware.UserContextMiddleware(), middleware.RequireAdmin())

	adminGroup.Get("/", func(c *fiber.Ctx) error {
		ranks, err := rankService.ListRanks()
		if err != nil {
			return fail(c, "failed to list ranks", err)
		}
		return c.JSON(ranks)
	})

	adminGroup.Post("/", func(c *fiber.Ctx) error {
		var req services.CreateRankRequest
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
		rank, err := rankService.CreateRank(&req)
		if err != nil {
			return fail(c, "failed to create rank", err)
		}
		return c.Status(fiber.StatusCreated).JSON(rank)
	})

	// Reorder must come before /:id so "reorder" is not parsed as a rank ID.
	adminGroup.Put("/reorder", func(c *fiber.Ctx) error {
		var req struct {
			Positions map[string]int `json:"positions" validate:"required,min=1"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}
		if err := rankService.ReorderRanks(req.Positions); err != nil {
			return fail(c, "failed to reorder ranks", err)
		}
		return c.JSON(fiber.Map{"message": "ranks reordered"})
	})

	adminGroup.Get("/:id", func(c *fiber.Ctx) error {
		rank, err := rankService.GetRank(c.Params("id"))
		if err != nil {
			return fail(c, "failed to get rank", err)
		}
		return c.JSON(rank)
	})

	adminGroup.Put("/:id", func(c *fiber.Ctx) error {
		var req services.CreateRankRequest
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
		rank, err := rankService.UpdateRank(c.Params("id"), &req)
		if err != nil {
			return fail(c, "failed to update rank", err)
		}
		return c.JSON(rank)
	})

	adminGroup.Delete("/:id", func(c *fiber.Ctx) error {
		if err := rankService.DeleteRank(c.Params("id")); err != nil {
			return fail(c, "failed to delete rank", err)
		}
		return c.JSON(fiber.Map{"message": "rank deleted"})
	})

	// Training requirement set per target rank
	adminGroup.Get("/:id/requirements", func(c *fiber.Ctx) error {
		req, err := reqService.GetForRank(c.Params("id"))
		if err != nil {
			return fail(c, "failed to get requirements", err)
		}
		if req == nil {
			return c.JSON(fiber.Map{"target_rank_id": c.Params("id"), "trainings": []string{}})
		}
		return c.JSON(req)
	})

	adminGroup.Put("/:id/requirements", func(c *fiber.Ctx) error {
		var body struct {
			TrainingIDs []string `json:"training_ids"`
		}
		if err := c.BodyParser(&body); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}
		req, err := reqService.SetForRank(c.Params("id"), body.TrainingIDs)
		if err != nil {
			return fail(c, "failed to set requirements", err)
		}
		return c.JSON(req)
	})

	adminGroup.Delete("/:id/requirements", func(c *fiber.Ctx) error {
		if err := reqService.DeleteForRank(c.Params("id")); err != nil {
			return fail(c, "failed to delete requirements", err)
		}
		return c.JSON(fiber.Map{"message": "requirement set deleted"})
	})
}
