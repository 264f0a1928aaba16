// handlers/goal_routes.go
package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/george11642/BlackPill-sub000/middleware"
	"github.com/george11642/BlackPill-sub000/models"
	"github.com/george11642/BlackPill-sub000/services"
)

func SetupGoalRoutes(app *fiber.App, goals *services.GoalService, moderation *services.ModerationService) {
	securedGroup := app.Group("/s", middleware.UserContextMiddleware())

	securedGroup.Post("/goals", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		type MilestoneReq struct {
			TargetValue float64   `json:"target_value"`
			TargetDate  time.Time `json:"target_date"`
		}
		type Req struct {
			GoalType    string         `json:"goal_type"`
			Category    string         `json:"category"`
			Title       string         `json:"title"`
			TargetValue float64        `json:"target_value"`
			Deadline    time.Time      `json:"deadline"`
			Milestones  []MilestoneReq `json:"milestones"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}

		if req.GoalType != models.GoalTypeScoreImprovement && req.GoalType != models.GoalTypeCategoryImprovement {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "goal_type must be score_improvement or category_improvement",
			})
		}
		if req.TargetValue < 1.0 || req.TargetValue > 10.0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "target_value must be between 1.0 and 10.0",
			})
		}
		for _, m := range req.Milestones {
			if m.TargetValue < 1.0 || m.TargetValue > 10.0 {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "milestone target_value must be between 1.0 and 10.0",
				})
			}
		}

		// Goal titles are user-authored free text and go through moderation.
		if req.Title != "" {
			if verdict := moderation.Check(req.Title); verdict.Flagged {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error":      "goal title rejected by moderation",
					"categories": verdict.Categories,
				})
			}
		}

		goal := models.Goal{
			ID:             uuid.NewString(),
			ExternalUserID: userID,
			Title:          req.Title,
			GoalType:       req.GoalType,
			Category:       req.Category,
			TargetValue:    req.TargetValue,
			Deadline:       req.Deadline,
			Status:         models.GoalStatusActive,
		}
		for _, m := range req.Milestones {
			goal.Milestones = append(goal.Milestones, models.Milestone{
				ID:          uuid.NewString(),
				GoalID:      goal.ID,
				TargetValue: m.TargetValue,
				TargetDate:  m.TargetDate,
			})
		}

		if err := goals.DB.Create(&goal).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to create goal",
				"cause": err.Error(),
			})
		}
		return c.Status(fiber.StatusCreated).JSON(goal)
	})

	securedGroup.Get("/goals", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		query := goals.DB.Where("external_user_id = ?", userID)
		if status := c.Query("status"); status != "" {
			query = query.Where("status = ?", status)
		}

		var userGoals []models.Goal
		if err := query.Preload("Milestones").
			Order("created_at DESC").
			Find(&userGoals).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to load goals",
				"cause": err.Error(),
			})
		}
		return c.JSON(userGoals)
	})

	securedGroup.Post("/goals/:id/milestones", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		goalID := c.Params("id")

		var goal models.Goal
		if err := goals.DB.Where("id = ? AND external_user_id = ?", goalID, userID).
			First(&goal).Error; err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "goal not found",
			})
		}

		type Req struct {
			TargetValue float64   `json:"target_value"`
			TargetDate  time.Time `json:"target_date"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}
		if req.TargetValue < 1.0 || req.TargetValue > 10.0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "milestone target_value must be between 1.0 and 10.0",
			})
		}

		milestone := models.Milestone{
			ID:          uuid.NewString(),
			GoalID:      goal.ID,
			TargetValue: req.TargetValue,
			TargetDate:  req.TargetDate,
		}
		if err := goals.DB.Create(&milestone).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to create milestone",
				"cause": err.Error(),
			})
		}
		return c.Status(fiber.StatusCreated).JSON(milestone)
	})
}
