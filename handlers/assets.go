// handlers/asset_routes.go
package handlers

import (
	"fmt"
	"log"
	"path/filepath"
	"strconv"
	"strings"

	"qr-review-system/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// SetupAssetRoutes registers the QR download and logo upload endpoints.
func SetupAssetRoutes(app *fiber.App) {
	app.Get("/qr", func(c *fiber.Ctx) error {
		placeID := c.Query("placeId")
		if placeID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "placeId is required"})
		}
		size, _ := strconv.Atoi(c.Query("size", "512"))

		png, err := utils.EncodeReviewQR(placeID, size)
		if err != nil {
			log.Printf("❌ [QR] encoding failed for place %s: %v", placeID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not generate QR code"})
		}

		c.Set("Content-Type", "image/png")
		if name := c.Query("name"); name != "" {
			c.Set("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, utils.QRFilename(name)))
		}
		return c.Send(png)
	})

	app.Post("/upload-logo", func(c *fiber.Ctx) error {
		if !utils.UploadsEnabled() {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "logo uploads are not configured"})
		}

		logoFile, err := c.FormFile("logo")
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "logo file is required"})
		}
		if logoFile.Size > 5*1024*1024 { // 5MB
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "logo too large (max 5MB)"})
		}
		contentType := logoFile.Header.Get("Content-Type")
		if !strings.HasPrefix(contentType, "image/") {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "logo must be an image"})
		}

		logoExt := filepath.Ext(logoFile.Filename)
		if logoExt == "" {
			logoExt = ".png"
		}
		key := "logos/" + uuid.NewString() + logoExt

		url, err := utils.UploadLogo(logoFile, key)
		if err != nil {
			log.Printf("❌ [UPLOAD] logo upload failed: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not upload logo"})
		}

		return c.JSON(fiber.Map{"logoUrl": url})
	})
}
