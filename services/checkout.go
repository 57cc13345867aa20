package services

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"strconv"
	"strings"

	"qr-review-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v82"
)

// CheckoutService creates hosted payment sessions. The session metadata is
// the only channel carrying business intent (place, product type, discount
// attribution) to the later confirmation step.
type CheckoutService struct {
	Discounts     *DiscountService
	Confirmations *ConfirmationService
	Sessions      PaymentSessions
	BaseURL       string
}

func NewCheckoutService(discounts *DiscountService, confirmations *ConfirmationService, sessions PaymentSessions, baseURL string) *CheckoutService {
	return &CheckoutService{
		Discounts:     discounts,
		Confirmations: confirmations,
		Sessions:      sessions,
		BaseURL:       strings.TrimRight(baseURL, "/"),
	}
}

type checkoutRequest struct {
	PlaceID      string `json:"placeId"`
	DiscountCode string `json:"discountCode"`
}

// CreateCheckoutSession handles POST /create-checkout-session.
func (s *CheckoutService) CreateCheckoutSession(c *fiber.Ctx) error {
	var req checkoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if strings.TrimSpace(req.PlaceID) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "placeId is required"})
	}

	resolved, err := s.Discounts.Resolve(req.DiscountCode)
	if errors.Is(err, ErrInvalidCode) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid discount code"})
	}
	if err != nil {
		log.Printf("❌ [CHECKOUT] discount lookup failed: %v", err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "could not verify discount code, try again"})
	}

	percent := 0
	affiliateCodeID := ""
	if resolved != nil {
		percent = resolved.Percent
		affiliateCodeID = resolved.AffiliateCodeID
	}
	finalPrice := FinalPrice(StandardPrice, percent)

	// A fully discounted checkout never reaches the provider: the provider
	// rejects zero-amount payment sessions, so the order is recorded as
	// completed right away under a generated session identifier.
	if finalPrice == 0 {
		sessionID := "free_" + uuid.NewString()
		if _, err := s.Confirmations.Record(SessionState{
			SessionID:       sessionID,
			Paid:            true,
			AmountTotal:     0,
			PlaceID:         req.PlaceID,
			OrderType:       models.OrderTypeStandard,
			AffiliateCodeID: affiliateCodeID,
		}); err != nil {
			log.Printf("❌ [CHECKOUT] free order for place %s failed: %v", req.PlaceID, err)
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "could not record the order, try again"})
		}
		log.Printf("✅ [CHECKOUT] recorded fully discounted order %s for place %s", sessionID, req.PlaceID)
		return c.JSON(fiber.Map{"sessionId": sessionID})
	}

	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card", "blik"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String("pln"),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String("Google review QR code"),
						Description: stripe.String("Unique QR code linking to your Google review page"),
					},
					UnitAmount: stripe.Int64(finalPrice),
				},
				Quantity: stripe.Int64(1),
			},
		},
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(fmt.Sprintf("%s?success=true&placeId=%s&session_id={CHECKOUT_SESSION_ID}", s.BaseURL, url.QueryEscape(req.PlaceID))),
		CancelURL:  stripe.String(s.BaseURL + "?canceled=true"),
	}
	params.AddMetadata("placeId", req.PlaceID)
	params.AddMetadata("type", models.OrderTypeStandard)
	params.AddMetadata("discountCode", req.DiscountCode)
	params.AddMetadata("affiliateCodeId", affiliateCodeID)
	params.AddMetadata("amount", strconv.FormatInt(finalPrice, 10))

	sess, err := s.Sessions.CreateSession(params)
	if err != nil {
		log.Printf("❌ [CHECKOUT] session creation failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not create payment session"})
	}

	return c.JSON(fiber.Map{"sessionId": sess.ID})
}

// CreateUpgradeSession handles POST /create-upgrade-session. The logo
// upgrade is a fixed-price product with no discount path.
func (s *CheckoutService) CreateUpgradeSession(c *fiber.Ctx) error {
	var req checkoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if strings.TrimSpace(req.PlaceID) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "placeId is required"})
	}

	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card", "blik"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String("pln"),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String("QR code logo upgrade"),
						Description: stripe.String("Add your company logo to the QR code"),
					},
					UnitAmount: stripe.Int64(UpgradePrice),
				},
				Quantity: stripe.Int64(1),
			},
		},
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(fmt.Sprintf("%s/success?placeId=%s&session_id={CHECKOUT_SESSION_ID}&type=upgrade", s.BaseURL, url.QueryEscape(req.PlaceID))),
		CancelURL:  stripe.String(s.BaseURL + "/cancel"),
	}
	params.AddMetadata("placeId", req.PlaceID)
	params.AddMetadata("type", models.OrderTypeUpgrade)
	params.AddMetadata("amount", strconv.FormatInt(UpgradePrice, 10))

	sess, err := s.Sessions.CreateSession(params)
	if err != nil {
		log.Printf("❌ [CHECKOUT] upgrade session creation failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not create payment session"})
	}

	return c.JSON(fiber.Map{"sessionId": sess.ID})
}
