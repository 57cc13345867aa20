package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"qr-review-system/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrCodeNotFound  = errors.New("affiliate code not found")
	ErrEventNotFound = errors.New("webhook event not found")
)

// CodeStore is the read side of affiliate codes used by discount resolution.
type CodeStore interface {
	// FindActive returns the active code matching case-insensitively, or
	// ErrCodeNotFound. Inactive codes are invisible here.
	FindActive(code string) (*models.AffiliateCode, error)
}

// OrderStore owns the order and usage-ledger writes. Insert and InsertUsage
// are insert-if-absent: the unique indexes on session_id and order_id decide
// the winner when two triggers race, never a read-then-write check.
type OrderStore interface {
	FindBySessionID(sessionID string) (*models.Order, error)
	Insert(order *models.Order) (bool, error)
	// PromotePending performs the single allowed forward transition
	// pending → completed for the session and reports whether this call
	// was the one that transitioned it.
	PromotePending(sessionID string, amount float64) (*models.Order, bool, error)
	InsertUsage(usage *models.AffiliateCodeUsage) (bool, error)
	// FindPendingBefore and FindCompletedMissingUsage feed the reconcile
	// sweep: stale pending orders to re-check against the provider, and
	// completed orders whose usage booking never landed.
	FindPendingBefore(cutoff time.Time, limit int) ([]models.Order, error)
	FindCompletedMissingUsage(limit int) ([]models.Order, error)
}

// WebhookEventStore owns the webhook event ledger. InsertEvent is
// insert-if-absent on provider_event_id, so a redelivered event resolves to
// the stored row instead of a duplicate.
type WebhookEventStore interface {
	InsertEvent(ev *models.WebhookEvent) (bool, error)
	FindEventByProviderID(providerEventID string) (*models.WebhookEvent, error)
	FindUnprocessedEvents(cutoff time.Time, limit int) ([]models.WebhookEvent, error)
	MarkEventProcessed(id string, processingError string) error
	RecordEventError(id string, processingError string) error
}

// GormStore backs both store interfaces with PostgreSQL.
type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

func (s *GormStore) FindActive(code string) (*models.AffiliateCode, error) {
	var ac models.AffiliateCode
	err := s.DB.Where("LOWER(code) = ? AND is_active = ?", strings.ToLower(code), true).First(&ac).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCodeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("affiliate code lookup failed: %w", err)
	}
	return &ac, nil
}

func (s *GormStore) FindBySessionID(sessionID string) (*models.Order, error) {
	var order models.Order
	err := s.DB.Where("session_id = ?", sessionID).First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("order lookup failed: %w", err)
	}
	return &order, nil
}

func (s *GormStore) Insert(order *models.Order) (bool, error) {
	res := s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}},
		DoNothing: true,
	}).Create(order)
	if res.Error != nil {
		return false, fmt.Errorf("order insert failed: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *GormStore) PromotePending(sessionID string, amount float64) (*models.Order, bool, error) {
	res := s.DB.Model(&models.Order{}).
		Where("session_id = ? AND status = ?", sessionID, models.OrderStatusPending).
		Updates(map[string]interface{}{
			"status": models.OrderStatusCompleted,
			"amount": amount,
		})
	if res.Error != nil {
		return nil, false, fmt.Errorf("order promotion failed: %w", res.Error)
	}
	order, err := s.FindBySessionID(sessionID)
	if err != nil {
		return nil, false, err
	}
	return order, res.RowsAffected > 0, nil
}

func (s *GormStore) InsertUsage(usage *models.AffiliateCodeUsage) (bool, error) {
	res := s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "order_id"}},
		DoNothing: true,
	}).Create(usage)
	if res.Error != nil {
		return false, fmt.Errorf("usage insert failed: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *GormStore) FindPendingBefore(cutoff time.Time, limit int) ([]models.Order, error) {
	var orders []models.Order
	err := s.DB.Where("status = ? AND created_at <= ?", models.OrderStatusPending, cutoff).
		Order("created_at asc").
		Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("pending order query failed: %w", err)
	}
	return orders, nil
}

func (s *GormStore) FindCompletedMissingUsage(limit int) ([]models.Order, error) {
	var orders []models.Order
	err := s.DB.Where(
		"status = ? AND affiliate_code_id IS NOT NULL AND id NOT IN (SELECT order_id FROM affiliate_code_usages)",
		models.OrderStatusCompleted,
	).Limit(limit).Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("unbooked usage query failed: %w", err)
	}
	return orders, nil
}

func (s *GormStore) InsertEvent(ev *models.WebhookEvent) (bool, error) {
	res := s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "provider_event_id"}},
		DoNothing: true,
	}).Create(ev)
	if res.Error != nil {
		return false, fmt.Errorf("webhook event insert failed: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *GormStore) FindEventByProviderID(providerEventID string) (*models.WebhookEvent, error) {
	var ev models.WebhookEvent
	err := s.DB.Where("provider_event_id = ?", providerEventID).First(&ev).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("webhook event lookup failed: %w", err)
	}
	return &ev, nil
}

func (s *GormStore) FindUnprocessedEvents(cutoff time.Time, limit int) ([]models.WebhookEvent, error) {
	var events []models.WebhookEvent
	err := s.DB.Where("processed_at IS NULL AND created_at <= ?", cutoff).
		Order("created_at asc").
		Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("unprocessed event query failed: %w", err)
	}
	return events, nil
}

func (s *GormStore) MarkEventProcessed(id string, processingError string) error {
	now := time.Now()
	return s.DB.Model(&models.WebhookEvent{}).Where("id = ?", id).Updates(map[string]interface{}{
		"processed_at":     &now,
		"processing_error": processingError,
	}).Error
}

func (s *GormStore) RecordEventError(id string, processingError string) error {
	return s.DB.Model(&models.WebhookEvent{}).Where("id = ?", id).
		Update("processing_error", processingError).Error
}
