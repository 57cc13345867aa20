package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"qr-review-system/handlers"
	"qr-review-system/models"
	"qr-review-system/services"
	"qr-review-system/utils"
	"qr-review-system/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 10 * 1024 * 1024, // 10MB — logo uploads are the largest payload
	})

	// Load allowed origins from environment variable
	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")
	if allowedOriginsEnv == "" {
		log.Println("⚠️  ALLOWED_ORIGINS environment variable not set, using default: http://localhost:3000")
		allowedOriginsEnv = "http://localhost:3000"
	}
	allowedOriginsList := strings.Split(allowedOriginsEnv, ",")
	for i, origin := range allowedOriginsList {
		allowedOriginsList[i] = strings.TrimSpace(origin)
	}
	allowedOriginsString := strings.Join(allowedOriginsList, ",")

	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOriginsString,
		AllowMethods:     "GET,POST,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Stripe-Signature",
		AllowCredentials: true, // admin session cookie
		MaxAge:           86400,
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.AffiliateCode{},
		&models.AffiliateCodeUsage{},
		&models.AffiliateSignup{},
		&models.Order{},
		&models.WebhookEvent{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	// Logo storage is optional: without it the upload endpoint answers 503
	// but the purchase flow still works.
	if err := utils.InitS3(); err != nil {
		log.Printf("⚠️  S3 not configured, logo uploads disabled: %v", err)
	}

	stripeKey := os.Getenv("STRIPE_SECRET_KEY")
	if stripeKey == "" {
		log.Fatal("STRIPE_SECRET_KEY environment variable not set")
	}
	webhookSecret := os.Getenv("STRIPE_WEBHOOK_SECRET")
	if webhookSecret == "" {
		log.Fatal("STRIPE_WEBHOOK_SECRET environment variable not set")
	}
	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:3000"
	}

	// Vendor clients are built once here and injected, never package globals.
	stripeClient := services.NewStripeClient(stripeKey, webhookSecret)
	store := services.NewGormStore(db)

	discountService := services.NewDiscountService(store)
	confirmationService := services.NewConfirmationService(store, stripeClient)
	checkoutService := services.NewCheckoutService(discountService, confirmationService, stripeClient, baseURL)
	adminService := services.NewAdminService(db)
	affiliateService := services.NewAffiliateService(db)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	retryWorker := workers.NewWebhookRetryWorker(store, confirmationService)
	go func() {
		log.Println("Starting webhook retry worker...")
		retryWorker.Start(ctx)
	}()

	confirmationService.StartReconcileScheduler()

	handlers.SetupCheckoutRoutes(app, discountService, checkoutService, confirmationService)
	handlers.SetupAffiliateRoutes(app, affiliateService)
	handlers.SetupAssetRoutes(app)
	handlers.SetupAdminRoutes(app, adminService, affiliateService)

	go func() {
		if err := app.Listen(":5100"); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Println("✅ Server running on http://localhost:5100")
	log.Println("✅ Webhook retry worker running")
	log.Println("✅ Pending-order reconcile scheduler running (every 5m)")
	log.Printf("✅ CORS configured for origins: %s", allowedOriginsString)

	<-ctx.Done()
	log.Println("Shutting down server...")
}
