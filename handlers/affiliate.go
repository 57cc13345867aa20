// handlers/affiliate_routes.go
package handlers

import (
	"qr-review-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupAffiliateRoutes(app *fiber.App, affiliates *services.AffiliateService) {
	// 🔓 Public "join the program" form
	app.Post("/affiliate-signup", affiliates.CreateSignup)
}
