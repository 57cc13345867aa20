package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"qr-review-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v82"
)

// SessionState is the provider-authoritative view of one checkout session:
// payment status and charged amount come from the provider, business intent
// from the metadata written at session creation.
type SessionState struct {
	SessionID       string
	Paid            bool
	AmountTotal     int64 // minor units, provider-reported
	PlaceID         string
	OrderType       string
	AffiliateCodeID string
}

func stateFromSession(sess *stripe.CheckoutSession) SessionState {
	orderType := models.OrderTypeStandard
	if sess.Metadata["type"] == models.OrderTypeUpgrade {
		orderType = models.OrderTypeUpgrade
	}
	return SessionState{
		SessionID:       sess.ID,
		Paid:            sess.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
		AmountTotal:     sess.AmountTotal,
		PlaceID:         sess.Metadata["placeId"],
		OrderType:       orderType,
		AffiliateCodeID: sess.Metadata["affiliateCodeId"],
	}
}

// ConfirmationService reconciles the two unordered confirmation triggers
// (provider webhook, client verify poll) into exactly one order per session.
type ConfirmationService struct {
	Orders   OrderStore
	Events   WebhookEventStore
	Sessions PaymentSessions
	Webhooks EventVerifier
}

func NewConfirmationService(store *GormStore, provider *StripeClient) *ConfirmationService {
	return &ConfirmationService{
		Orders:   store,
		Events:   store,
		Sessions: provider,
		Webhooks: provider,
	}
}

// Record drives the per-session state machine: insert-if-absent keyed by the
// unique session index, plus the single forward transition pending →
// completed. It is idempotent and commutative, so the webhook, the poll, the
// retry worker and the reconcile sweep can all call it any number of times
// in any order.
func (s *ConfirmationService) Record(state SessionState) (*models.Order, error) {
	existing, err := s.Orders.FindBySessionID(state.SessionID)
	if err != nil && !errors.Is(err, ErrOrderNotFound) {
		return nil, err
	}
	if existing != nil {
		if existing.Status == models.OrderStatusPending && state.Paid {
			return s.promote(state)
		}
		if existing.Status == models.OrderStatusCompleted {
			// Re-entry also retries a usage booking that failed after the
			// order write; the unique index keeps it a no-op otherwise.
			if err := s.bookUsage(existing); err != nil {
				return nil, err
			}
		}
		return existing, nil
	}

	status := models.OrderStatusPending
	if state.Paid {
		status = models.OrderStatusCompleted
	}
	order := &models.Order{
		ID:        uuid.NewString(),
		SessionID: state.SessionID,
		PlaceID:   state.PlaceID,
		Amount:    float64(state.AmountTotal) / 100,
		Status:    status,
		OrderType: state.OrderType,
	}
	if order.OrderType == "" {
		order.OrderType = models.OrderTypeStandard
	}
	if state.AffiliateCodeID != "" {
		codeID := state.AffiliateCodeID
		order.AffiliateCodeID = &codeID
	}

	created, err := s.Orders.Insert(order)
	if err != nil {
		return nil, err
	}
	if !created {
		// Lost the race against the other trigger. The row that won may
		// still be pending if it was written from an unpaid observation.
		if state.Paid {
			return s.promote(state)
		}
		return s.Orders.FindBySessionID(state.SessionID)
	}

	if order.Status == models.OrderStatusCompleted {
		if err := s.bookUsage(order); err != nil {
			return nil, err
		}
	}
	return order, nil
}

func (s *ConfirmationService) promote(state SessionState) (*models.Order, error) {
	order, promoted, err := s.Orders.PromotePending(state.SessionID, float64(state.AmountTotal)/100)
	if err != nil {
		return nil, err
	}
	if promoted {
		log.Printf("✅ [CONFIRM] order %s promoted to completed (session %s)", order.ID, state.SessionID)
	}
	if order.Status == models.OrderStatusCompleted {
		if err := s.bookUsage(order); err != nil {
			return nil, err
		}
	}
	return order, nil
}

func (s *ConfirmationService) bookUsage(order *models.Order) error {
	if order.AffiliateCodeID == nil || *order.AffiliateCodeID == "" {
		return nil
	}
	_, err := s.Orders.InsertUsage(&models.AffiliateCodeUsage{
		ID:              uuid.NewString(),
		AffiliateCodeID: *order.AffiliateCodeID,
		OrderID:         order.ID,
		Amount:          order.Amount,
	})
	return err
}

// VerifyPayment handles GET /verify-payment — the client-initiated poll
// after redirect. The session status is always re-fetched from the provider,
// never trusted from the client.
func (s *ConfirmationService) VerifyPayment(c *fiber.Ctx) error {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "session_id is required"})
	}

	existing, err := s.Orders.FindBySessionID(sessionID)
	if err != nil && !errors.Is(err, ErrOrderNotFound) {
		log.Printf("❌ [VERIFY] order lookup failed for %s: %v", sessionID, err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "could not verify payment, try again"})
	}
	if existing != nil && existing.Status == models.OrderStatusCompleted {
		// Re-entry retries a usage booking that failed after the order write.
		// For fully discounted sessions this poll is the only live trigger
		// that comes back, so the retry must happen before answering.
		if err := s.bookUsage(existing); err != nil {
			log.Printf("❌ [VERIFY] usage booking for %s failed: %v", sessionID, err)
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "could not verify payment, try again"})
		}
		return c.JSON(fiber.Map{"success": true})
	}

	sess, err := s.Sessions.GetSession(sessionID)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.Code == stripe.ErrorCodeResourceMissing {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "unknown payment session"})
		}
		log.Printf("❌ [VERIFY] provider lookup failed for %s: %v", sessionID, err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "could not verify payment, try again"})
	}

	order, err := s.Record(stateFromSession(sess))
	if err != nil {
		log.Printf("❌ [VERIFY] recording session %s failed: %v", sessionID, err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "could not record payment, try again"})
	}
	if order.Status == models.OrderStatusCompleted {
		return c.JSON(fiber.Map{"success": true})
	}
	// Not an error: the provider has not settled yet, the client should retry.
	return c.JSON(fiber.Map{"success": false, "status": models.OrderStatusPending})
}

// HandleWebhook handles POST /webhook. The signature is verified before
// anything else; every valid event is persisted so redeliveries ack cheaply
// and failed processing can be replayed by the retry worker.
func (s *ConfirmationService) HandleWebhook(c *fiber.Ctx) error {
	signature := c.Get("Stripe-Signature")
	if signature == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing webhook signature"})
	}

	event, err := s.Webhooks.VerifyEvent(c.Body(), signature)
	if err != nil {
		log.Printf("🚫 [WEBHOOK] signature verification failed: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid webhook signature"})
	}

	if event.Type != "checkout.session.completed" {
		return c.JSON(fiber.Map{"received": true})
	}

	record := &models.WebhookEvent{
		ID:              uuid.NewString(),
		ProviderEventID: event.ID,
		EventType:       string(event.Type),
		Payload:         string(event.Data.Raw),
	}
	created, err := s.Events.InsertEvent(record)
	if err != nil {
		log.Printf("❌ [WEBHOOK] storing event %s failed: %v", event.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not process webhook"})
	}
	if !created {
		// Redelivery. Process against the stored row: a fresh in-memory id
		// would leave the ledger entry forever unfinished.
		prior, err := s.Events.FindEventByProviderID(event.ID)
		if err != nil {
			log.Printf("❌ [WEBHOOK] loading stored event %s failed: %v", event.ID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not process webhook"})
		}
		if prior.ProcessedAt != nil {
			return c.JSON(fiber.Map{"received": true})
		}
		record = prior
	}

	if err := s.processEvent(record); err != nil {
		log.Printf("❌ [WEBHOOK] processing event %s failed: %v", event.ID, err)
		// Non-2xx so the provider redelivers; the retry worker covers the
		// case where it gives up.
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not process webhook"})
	}

	return c.JSON(fiber.Map{"received": true})
}

// ReplayEvent re-runs a stored webhook event, used by the retry worker.
func (s *ConfirmationService) ReplayEvent(ev *models.WebhookEvent) error {
	return s.processEvent(ev)
}

func (s *ConfirmationService) processEvent(ev *models.WebhookEvent) error {
	var sess stripe.CheckoutSession
	if err := json.Unmarshal([]byte(ev.Payload), &sess); err != nil {
		// Unparseable payloads are permanent failures; mark them handled so
		// the retry worker does not spin on them.
		s.finishEvent(ev.ID, fmt.Sprintf("unparseable payload: %v", err))
		return fmt.Errorf("unmarshal session from event %s: %w", ev.ProviderEventID, err)
	}

	if _, err := s.Record(stateFromSession(&sess)); err != nil {
		s.recordEventError(ev.ID, err)
		return err
	}

	s.finishEvent(ev.ID, "")
	return nil
}

func (s *ConfirmationService) finishEvent(id, processingError string) {
	if err := s.Events.MarkEventProcessed(id, processingError); err != nil {
		log.Printf("⚠️ [WEBHOOK] could not mark event %s processed: %v", id, err)
	}
}

func (s *ConfirmationService) recordEventError(id string, cause error) {
	if err := s.Events.RecordEventError(id, cause.Error()); err != nil {
		log.Printf("⚠️ [WEBHOOK] could not record failure for event %s: %v", id, err)
	}
}
