// handlers/achievement_routes.go
package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/george11642/BlackPill-sub000/middleware"
	"github.com/george11642/BlackPill-sub000/models"
	"github.com/george11642/BlackPill-sub000/services"
)

func SetupAchievementRoutes(app *fiber.App, achievements *services.AchievementService, referrals *services.ReferralService) {
	securedGroup := app.Group("/s", middleware.UserContextMiddleware())

	// GET /s/achievements — full catalog with the user's unlock state.
	securedGroup.Get("/achievements", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		var unlocks []models.UserAchievement
		if err := achievements.DB.
			Where("external_user_id = ?", userID).
			Find(&unlocks).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to load achievements",
				"cause": err.Error(),
			})
		}

		unlockedByKey := make(map[string]models.UserAchievement, len(unlocks))
		for _, ua := range unlocks {
			unlockedByKey[ua.AchievementKey] = ua
		}

		var response []fiber.Map
		for _, def := range models.AchievementCatalog {
			entry := fiber.Map{
				"key":         def.Key,
				"name":        def.Name,
				"emoji":       def.Emoji,
				"category":    def.Category,
				"description": def.Description,
				"unlocked":    false,
			}
			if ua, ok := unlockedByKey[def.Key]; ok {
				entry["unlocked"] = true
				entry["unlocked_at"] = ua.UnlockedAt
				entry["reward_claimed"] = ua.RewardClaimed
			}
			response = append(response, entry)
		}
		return c.JSON(response)
	})

	securedGroup.Post("/achievements/:key/claim", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		key := c.Params("key")

		if err := achievements.ClaimReward(userID, key); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "claim failed",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{"message": "reward claimed", "key": key})
	})

	// GET /s/referral/code — the caller's shareable referral code, the one
	// friends submit back through POST /s/events/referral.
	securedGroup.Get("/referral/code", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		code, err := referrals.GetOrCreateCode(userID, c.Query("display_name"))
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to load referral code",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{"code": code})
	})

	// Event hooks from external collaborators (leaderboard service, profile
	// service) that feed the respective evaluators.
	securedGroup.Post("/events/leaderboard", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		type Req struct {
			Rank int `json:"rank"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}

		unlocked := achievements.EvaluateLeaderboard(userID, req.Rank)
		return c.JSON(fiber.Map{"unlocked_achievements": unlocked})
	})

	securedGroup.Post("/events/referral", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		type Req struct {
			ReferredID string `json:"referred_id"`
			CodeUsed   string `json:"code_used"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil || req.ReferredID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "referred_id is required",
			})
		}

		unlocked, err := referrals.RecordReferral(userID, req.ReferredID, req.CodeUsed)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to record referral",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{"unlocked_achievements": unlocked})
	})
}
