package services

import (
	"fmt"
	"log"
	"os"
	"time"

	"qr-review-system/middleware"
	"qr-review-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

type AdminService struct {
	DB *gorm.DB
}

func NewAdminService(db *gorm.DB) *AdminService {
	return &AdminService{DB: db}
}

// Login handles POST /admin/login — the single shared-secret gate in front
// of the whole admin surface.
func (s *AdminService) Login(c *fiber.Ctx) error {
	var req struct {
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminPassword == "" {
		log.Println("❌ [ADMIN] ADMIN_PASSWORD is not configured")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "admin login is not configured"})
	}
	if req.Password != adminPassword {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid password"})
	}

	token := middleware.IssueAdminSession()
	c.Cookie(&fiber.Cookie{
		Name:     middleware.AdminSessionCookie,
		Value:    token,
		HTTPOnly: true,
		Secure:   os.Getenv("APP_ENV") == "production",
		SameSite: "Strict",
		MaxAge:   86400,
	})
	return c.JSON(fiber.Map{"success": true})
}

// CheckAuth handles GET /admin/check-auth. The auth middleware has already
// rejected unauthenticated requests by the time this runs.
func (s *AdminService) CheckAuth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"authorized": true})
}

// ListOrders handles GET /admin/orders.
func (s *AdminService) ListOrders(c *fiber.Ctx) error {
	var orders []models.Order
	if err := s.DB.Preload("AffiliateCode").Order("created_at desc").Find(&orders).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not load orders"})
	}
	return c.JSON(orders)
}

// UpdateOrderStatus handles PATCH /admin/orders — the manual status override.
func (s *AdminService) UpdateOrderStatus(c *fiber.Ctx) error {
	var req struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.ID == "" || req.Status == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "id and status are required"})
	}
	if req.Status != models.OrderStatusPending && req.Status != models.OrderStatusCompleted {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "status must be pending or completed"})
	}

	res := s.DB.Model(&models.Order{}).Where("id = ?", req.ID).Update("status", req.Status)
	if res.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not update order"})
	}
	if res.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "order not found"})
	}

	var order models.Order
	if err := s.DB.First(&order, "id = ?", req.ID).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not load order"})
	}
	return c.JSON(order)
}

// ExportOrders handles GET /admin/orders/export — a spreadsheet download of
// all orders.
func (s *AdminService) ExportOrders(c *fiber.Ctx) error {
	var orders []models.Order
	if err := s.DB.Preload("AffiliateCode").Order("created_at desc").Find(&orders).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not load orders"})
	}

	f := excelize.NewFile()
	sheetName := "Orders"
	index, _ := f.NewSheet(sheetName)
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headers := []string{"Order ID", "Session ID", "Place ID", "Type", "Amount", "Status", "Affiliate Code", "Created At"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, header)
	}

	for row, o := range orders {
		code := ""
		if o.AffiliateCode != nil {
			code = o.AffiliateCode.Code
		}
		values := []interface{}{o.ID, o.SessionID, o.PlaceID, o.OrderType, o.Amount, o.Status, code, o.CreatedAt.Format(time.RFC3339)}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheetName, cell, v)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not build export"})
	}

	filename := fmt.Sprintf("orders-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, filename))
	return c.Send(buf.Bytes())
}

// DashboardStats handles GET /admin/dashboard-stats. All aggregates are
// taken directly from current persisted state.
func (s *AdminService) DashboardStats(c *fiber.Ctx) error {
	var totalOrders int64
	if err := s.DB.Model(&models.Order{}).Count(&totalOrders).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not load stats"})
	}

	var totalRevenue float64
	if err := s.DB.Model(&models.Order{}).
		Where("status = ?", models.OrderStatusCompleted).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&totalRevenue).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not load stats"})
	}

	var activeAffiliates int64
	if err := s.DB.Model(&models.AffiliateCode{}).Where("is_active = ?", true).Count(&activeAffiliates).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not load stats"})
	}

	var pendingSignups int64
	if err := s.DB.Model(&models.AffiliateSignup{}).Where("status = ?", models.SignupStatusPending).Count(&pendingSignups).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not load stats"})
	}

	type recentOrder struct {
		ID        string    `json:"id"`
		CreatedAt time.Time `json:"createdAt"`
		Amount    float64   `json:"amount"`
		Status    string    `json:"status"`
	}
	var recentOrders []recentOrder
	if err := s.DB.Model(&models.Order{}).
		Select("id, created_at, amount, status").
		Order("created_at desc").
		Limit(5).
		Scan(&recentOrders).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not load stats"})
	}

	type topAffiliate struct {
		Code       string `json:"code"`
		Commission int    `json:"commission"`
		UsageCount int64  `json:"usageCount"`
	}
	var topAffiliates []topAffiliate
	if err := s.DB.Raw(`
		SELECT ac.code, ac.commission, COUNT(u.id) AS usage_count
		FROM affiliate_codes ac
		LEFT JOIN affiliate_code_usages u ON u.affiliate_code_id = ac.id
		GROUP BY ac.id, ac.code, ac.commission
		ORDER BY ac.commission DESC
		LIMIT 5
	`).Scan(&topAffiliates).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not load stats"})
	}

	return c.JSON(fiber.Map{
		"totalOrders":      totalOrders,
		"totalRevenue":     totalRevenue,
		"activeAffiliates": activeAffiliates,
		"pendingSignups":   pendingSignups,
		"recentOrders":     recentOrders,
		"topAffiliates":    topAffiliates,
	})
}
