package handlers

import (
	"encoding/json"
	"time"

	"quest-verify-system/services"

	"github.com/gofiber/fiber/v2"
)

type submitProofRequest struct {
	WalletAddress string          `json:"walletAddress"`
	Proof         json.RawMessage `json:"proof"`
}

type saveLinkRequest struct {
	WalletAddress string `json:"walletAddress"`
	TwitterHandle string `json:"twitterHandle"`
	SessionID     string `json:"sessionId"`
}

func SetupVerificationRoutes(app *fiber.App, linkService *services.LinkService) {
	verification := app.Group("/api/verification")

	verification.Post("/submit", func(c *fiber.Ctx) error {
		var req submitProofRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid request body",
			})
		}
		if len(req.Proof) == 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "proof is required",
			})
		}

		result, err := linkService.SubmitAndVerify(c.UserContext(), req.WalletAddress, req.Proof)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(result)
	})

	verification.Post("/save", func(c *fiber.Ctx) error {
		var req saveLinkRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid request body",
			})
		}

		result, err := linkService.SaveLink(req.WalletAddress, req.TwitterHandle, req.SessionID)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(result)
	})

	verification.Get("/check/:walletAddress", func(c *fiber.Ctx) error {
		status, err := linkService.Check(c.Params("walletAddress"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(status)
	})

	verification.Get("/list", func(c *fiber.Ctx) error {
		list, err := linkService.List()
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(list)
	})

	verification.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})
}
