// handlers/checkout_routes.go
package handlers

import (
	"qr-review-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupCheckoutRoutes(app *fiber.App, discounts *services.DiscountService, checkout *services.CheckoutService, confirmations *services.ConfirmationService) {
	// 🔓 Public routes — the whole purchase flow is unauthenticated
	app.Post("/verify-discount", discounts.VerifyDiscount)
	app.Post("/create-checkout-session", checkout.CreateCheckoutSession)
	app.Post("/create-upgrade-session", checkout.CreateUpgradeSession)
	app.Get("/verify-payment", confirmations.VerifyPayment)

	// Provider-initiated; authenticated by webhook signature, not session
	app.Post("/webhook", confirmations.HandleWebhook)
}
