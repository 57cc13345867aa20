package services

import (
	"strings"

	"qr-review-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AffiliateService owns affiliate codes and signup leads: the public signup
// form plus the admin CRUD over both.
type AffiliateService struct {
	DB *gorm.DB
}

func NewAffiliateService(db *gorm.DB) *AffiliateService {
	return &AffiliateService{DB: db}
}

// CreateSignup handles the public POST /affiliate-signup form.
func (s *AffiliateService) CreateSignup(c *fiber.Ctx) error {
	var req struct {
		Email string `json:"email"`
		Phone string `json:"phone"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "invalid request body"})
	}
	if strings.TrimSpace(req.Email) == "" || strings.TrimSpace(req.Phone) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "email and phone are required"})
	}

	signup := models.AffiliateSignup{
		ID:     uuid.NewString(),
		Email:  strings.TrimSpace(req.Email),
		Phone:  strings.TrimSpace(req.Phone),
		Status: models.SignupStatusPending,
	}
	if err := s.DB.Create(&signup).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": "could not save the signup"})
	}
	return c.JSON(fiber.Map{"success": true})
}

// ListSignups handles GET /admin/affiliate-signups.
func (s *AffiliateService) ListSignups(c *fiber.Ctx) error {
	var signups []models.AffiliateSignup
	if err := s.DB.Order("created_at desc").Find(&signups).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not load signups"})
	}
	return c.JSON(signups)
}

// UpdateSignupStatus handles PATCH /admin/affiliate-signups/:id. Only the
// PENDING → APPROVED/REJECTED transitions exist; resolved signups stay
// resolved.
func (s *AffiliateService) UpdateSignupStatus(c *fiber.Ctx) error {
	id := c.Params("id")

	var req struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.Status != models.SignupStatusApproved && req.Status != models.SignupStatusRejected {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid status"})
	}

	var signup models.AffiliateSignup
	if err := s.DB.First(&signup, "id = ?", id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "signup not found"})
	}
	if !signup.CanTransitionTo(req.Status) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "signup is already resolved"})
	}

	signup.Status = req.Status
	if err := s.DB.Save(&signup).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not update signup"})
	}
	return c.JSON(signup)
}

// ListCodes handles GET /admin/affiliate-codes, each code annotated with its
// usage count.
func (s *AffiliateService) ListCodes(c *fiber.Ctx) error {
	type codeWithUsage struct {
		models.AffiliateCode
		UsageCount int64 `json:"usageCount"`
	}
	var codes []codeWithUsage
	if err := s.DB.Raw(`
		SELECT ac.*, COUNT(u.id) AS usage_count
		FROM affiliate_codes ac
		LEFT JOIN affiliate_code_usages u ON u.affiliate_code_id = ac.id
		GROUP BY ac.id
		ORDER BY ac.created_at DESC
	`).Scan(&codes).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not load codes"})
	}
	return c.JSON(codes)
}

// CreateCode handles POST /admin/affiliate-codes.
func (s *AffiliateService) CreateCode(c *fiber.Ctx) error {
	var req struct {
		Code       string `json:"code"`
		Discount   *int   `json:"discount"`
		Commission *int   `json:"commission"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	req.Code = strings.TrimSpace(req.Code)
	if req.Code == "" || req.Discount == nil || req.Commission == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "code, discount and commission are required"})
	}
	if *req.Discount < 0 || *req.Discount > 100 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "discount must be between 0 and 100"})
	}
	if *req.Commission < 0 || *req.Commission > 100 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "commission must be between 0 and 100"})
	}

	// Codes resolve case-insensitively, so two casings of one code would
	// shadow each other.
	var existing int64
	if err := s.DB.Model(&models.AffiliateCode{}).
		Where("LOWER(code) = ?", strings.ToLower(req.Code)).
		Count(&existing).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not create code"})
	}
	if existing > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "code already exists"})
	}

	code := models.AffiliateCode{
		ID:         uuid.NewString(),
		Code:       req.Code,
		Discount:   *req.Discount,
		Commission: *req.Commission,
		IsActive:   true,
	}
	if err := s.DB.Create(&code).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not create code"})
	}
	return c.JSON(code)
}

// ToggleCode handles PATCH /admin/affiliate-codes.
func (s *AffiliateService) ToggleCode(c *fiber.Ctx) error {
	var req struct {
		ID       string `json:"id"`
		IsActive bool   `json:"isActive"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.ID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "id is required"})
	}

	res := s.DB.Model(&models.AffiliateCode{}).Where("id = ?", req.ID).Update("is_active", req.IsActive)
	if res.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not update code"})
	}
	if res.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "code not found"})
	}

	var code models.AffiliateCode
	if err := s.DB.First(&code, "id = ?", req.ID).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not load code"})
	}
	return c.JSON(code)
}

// DeleteCode handles DELETE /admin/affiliate-codes/:id. Codes referenced by
// orders or usage entries cannot be deleted — that would orphan the
// commission ledger — only deactivated.
func (s *AffiliateService) DeleteCode(c *fiber.Ctx) error {
	id := c.Params("id")

	var references int64
	if err := s.DB.Model(&models.Order{}).Where("affiliate_code_id = ?", id).Count(&references).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not delete code"})
	}
	if references == 0 {
		if err := s.DB.Model(&models.AffiliateCodeUsage{}).Where("affiliate_code_id = ?", id).Count(&references).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not delete code"})
		}
	}
	if references > 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "code has recorded orders; deactivate it instead"})
	}

	res := s.DB.Delete(&models.AffiliateCode{}, "id = ?", id)
	if res.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not delete code"})
	}
	if res.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "code not found"})
	}
	return c.JSON(fiber.Map{"success": true})
}
