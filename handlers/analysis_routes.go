// handlers/analysis_routes.go
package handlers

import (
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/george11642/BlackPill-sub000/middleware"
	"github.com/george11642/BlackPill-sub000/models"
	"github.com/george11642/BlackPill-sub000/services"
	"github.com/george11642/BlackPill-sub000/utils"
)

func SetupAnalysisRoutes(app *fiber.App, vision *services.VisionService, achievements *services.AchievementService, goals *services.GoalService) {
	securedGroup := app.Group("/s", middleware.UserContextMiddleware())

	// POST /s/analysis — run a facial analysis on an uploaded selfie (or an
	// already-hosted image URL), persist the result, and drive achievement and
	// goal evaluation with the final score.
	securedGroup.Post("/analysis", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		var imageData []byte
		var contentType, imageURL string

		fileHeader, err := c.FormFile("image")
		if err == nil {
			file, err := fileHeader.Open()
			if err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "failed to open uploaded image",
					"cause": err.Error(),
				})
			}
			defer file.Close()
			imageData, err = io.ReadAll(file)
			if err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "failed to read uploaded image",
					"cause": err.Error(),
				})
			}
			contentType = fileHeader.Header.Get("Content-Type")

			key := fmt.Sprintf("selfies/%s/%s.jpg", userID, uuid.NewString())
			imageURL, err = utils.UploadSelfieToR2(imageData, contentType, key)
			if err != nil {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error": "failed to store image",
					"cause": err.Error(),
				})
			}
		} else {
			imageURL = c.FormValue("image_url")
			if imageURL == "" {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "provide an image file or image_url",
				})
			}
		}

		metrics := parseFaceMetrics(c)

		result, err := vision.AnalyzeFace(c.Context(), imageURL, imageData, contentType)
		fallback := false
		if err != nil {
			var infraErr *services.TransientInfraError
			if errors.As(err, &infraErr) {
				// Degrade gracefully: infrastructure failures get the
				// deterministic fallback score, marked as such.
				result = services.FallbackResult(metrics)
				fallback = true
			} else {
				// Validation and content-policy failures are hard: surface a
				// retryable error rather than masking them with fallback output.
				log.Printf("❌ [Analysis] hard failure for %s: %v", userID, err)
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
					"error": "analysis temporarily unavailable, please retry",
				})
			}
		}

		analysis := models.Analysis{
			ID:             uuid.NewString(),
			ExternalUserID: userID,
			ImageURL:       imageURL,
			Score:          result.Score,
			Result:         *result,
			Fallback:       fallback,
		}
		if err := achievements.DB.Create(&analysis).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to save analysis",
				"cause": err.Error(),
			})
		}

		unlocked := achievements.EvaluateAnalysis(userID, result.Score)
		unlocked = append(unlocked, achievements.EvaluateImprovement(userID, result.Score)...)

		progress, err := goals.UpdateFromResult(userID, result)
		if err != nil {
			// Goal bookkeeping must not fail an otherwise successful analysis.
			log.Printf("[Analysis] goal update failed for %s: %v", userID, err)
			progress = &services.ProgressUpdate{}
		}

		return c.JSON(fiber.Map{
			"analysis":              analysis,
			"degraded":              fallback,
			"unlocked_achievements": unlocked,
			"updated_goals":         progress.UpdatedGoals,
			"completed_milestones":  progress.CompletedMilestones,
		})
	})

	securedGroup.Get("/analysis/history", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		limit, _ := strconv.Atoi(c.Query("limit", "20"))
		if limit < 1 || limit > 100 {
			limit = 20
		}

		var analyses []models.Analysis
		if err := achievements.DB.
			Where("external_user_id = ?", userID).
			Order("created_at DESC").
			Limit(limit).
			Find(&analyses).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to load history",
				"cause": err.Error(),
			})
		}
		return c.JSON(analyses)
	})
}

// parseFaceMetrics reads the optional on-device quality signals. They are
// only consumed by the fallback path.
func parseFaceMetrics(c *fiber.Ctx) *services.FaceMetrics {
	blurStr := c.FormValue("blurred_likelihood")
	exposureStr := c.FormValue("under_exposed_likelihood")
	if blurStr == "" && exposureStr == "" {
		return nil
	}

	metrics := &services.FaceMetrics{}
	if v, err := strconv.ParseFloat(blurStr, 64); err == nil {
		metrics.BlurredLikelihood = v
	}
	if v, err := strconv.ParseFloat(exposureStr, 64); err == nil {
		metrics.UnderExposedLikelihood = v
	}
	return metrics
}
