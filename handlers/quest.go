package handlers

import (
	"strconv"

	"quest-verify-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupQuestRoutes(app *fiber.App, questService *services.QuestService) {
	quest := app.Group("/api/quest")

	quest.Get("/progress/:walletAddress", func(c *fiber.Ctx) error {
		progress, err := questService.GetUserProgress(c.Params("walletAddress"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(progress)
	})

	quest.Post("/:questNumber/submit", func(c *fiber.Ctx) error {
		questNumber, err := strconv.Atoi(c.Params("questNumber"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid quest number",
			})
		}

		var req services.SubmitQuestRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid request body",
			})
		}
		req.QuestNumber = questNumber

		result, err := questService.SubmitQuest(c.UserContext(), req)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(result)
	})
}
