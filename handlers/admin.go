// handlers/admin_routes.go
package handlers

import (
	"qr-review-system/middleware"
	"qr-review-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupAdminRoutes(app *fiber.App, admin *services.AdminService, affiliates *services.AffiliateService) {
	// Login is the only admin route outside the auth gate
	app.Post("/admin/login", admin.Login)

	// 🔐 Everything else requires the login cookie
	secured := app.Group("/admin", middleware.AdminAuthMiddleware())

	secured.Get("/check-auth", admin.CheckAuth)

	secured.Get("/orders", admin.ListOrders)
	secured.Patch("/orders", admin.UpdateOrderStatus)
	secured.Get("/orders/export", admin.ExportOrders)

	secured.Get("/affiliate-codes", affiliates.ListCodes)
	secured.Post("/affiliate-codes", affiliates.CreateCode)
	secured.Patch("/affiliate-codes", affiliates.ToggleCode)
	secured.Delete("/affiliate-codes/:id", affiliates.DeleteCode)

	secured.Get("/affiliate-signups", affiliates.ListSignups)
	secured.Patch("/affiliate-signups/:id", affiliates.UpdateSignupStatus)

	secured.Get("/dashboard-stats", admin.DashboardStats)
}
