package services

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// promoCodes is the static table of flat promotional codes. Keys are lower
// case; lookups are case-insensitive like affiliate codes.
var promoCodes = map[string]int{
	"rabat40": 40,
}

// ErrInvalidCode means the supplied code matched nothing. Callers must keep
// this distinct from "no code supplied" (nil result) and from transient
// lookup failures.
var ErrInvalidCode = errors.New("invalid discount code")

const (
	DiscountSourcePromo     = "promo"
	DiscountSourceAffiliate = "affiliate"
)

// ResolvedDiscount is the outcome of a successful code resolution.
// AffiliateCodeID is empty for promotional codes.
type ResolvedDiscount struct {
	Percent         int
	Source          string
	AffiliateCodeID string
}

type DiscountService struct {
	Codes CodeStore
}

func NewDiscountService(codes CodeStore) *DiscountService {
	return &DiscountService{Codes: codes}
}

// Resolve maps a raw code string to a discount. Empty input resolves to no
// discount (nil, nil). The promo table is checked first, then active
// affiliate codes.
func (s *DiscountService) Resolve(code string) (*ResolvedDiscount, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, nil
	}

	if percent, ok := promoCodes[strings.ToLower(code)]; ok {
		return &ResolvedDiscount{Percent: percent, Source: DiscountSourcePromo}, nil
	}

	ac, err := s.Codes.FindActive(code)
	if errors.Is(err, ErrCodeNotFound) {
		return nil, ErrInvalidCode
	}
	if err != nil {
		return nil, err
	}
	return &ResolvedDiscount{
		Percent:         ac.Discount,
		Source:          DiscountSourceAffiliate,
		AffiliateCodeID: ac.ID,
	}, nil
}

// VerifyDiscount handles POST /verify-discount.
func (s *DiscountService) VerifyDiscount(c *fiber.Ctx) error {
	var req struct {
		Code string `json:"code"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if strings.TrimSpace(req.Code) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "no discount code provided"})
	}

	resolved, err := s.Resolve(req.Code)
	if errors.Is(err, ErrInvalidCode) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid discount code"})
	}
	if err != nil {
		log.Printf("❌ [DISCOUNT] lookup failed for %q: %v", req.Code, err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "could not verify discount code, try again"})
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"discount": resolved.Percent,
		"message":  fmt.Sprintf("Discount code applied: %d%% off", resolved.Percent),
	})
}
