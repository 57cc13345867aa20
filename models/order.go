package models

import "time"

const (
	OrderStatusPending   = "pending"
	OrderStatusCompleted = "completed"
)

const (
	OrderTypeStandard = "standard"
	OrderTypeUpgrade  = "upgrade"
)

// Order records one monetary transaction. The provider's checkout session id
// lives in SessionID with a unique index: that index, not application code,
// enforces "at most one order per session" when the webhook and the verify
// poll race. ID is our own identifier so order identity is not overloaded
// with provider session identity.
type Order struct {
	ID              string  `json:"id" gorm:"primaryKey"`
	SessionID       string  `json:"sessionId" gorm:"uniqueIndex;not null"`
	PlaceID         string  `json:"placeId"`
	Amount          float64 `json:"amount"` // major currency units
	Status          string  `json:"status" gorm:"default:'pending';index"`
	OrderType       string  `json:"orderType" gorm:"default:'standard'"`
	AffiliateCodeID *string `json:"affiliateCodeId,omitempty" gorm:"index"`

	AffiliateCode *AffiliateCode `json:"affiliateCode,omitempty" gorm:"foreignKey:AffiliateCodeID"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
