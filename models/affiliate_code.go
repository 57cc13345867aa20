package models

import "time"

// AffiliateCode is a partner discount code: it lowers the buyer's price by
// Discount percent and attributes Commission percent to the partner.
type AffiliateCode struct {
	ID         string    `json:"id" gorm:"primaryKey"`
	Code       string    `json:"code" gorm:"uniqueIndex;not null"`
	Discount   int       `json:"discount" gorm:"not null;check:discount >= 0 AND discount <= 100"`
	Commission int       `json:"commission" gorm:"not null;check:commission >= 0 AND commission <= 100"`
	IsActive   bool      `json:"isActive" gorm:"default:true"`
	CreatedAt  time.Time `json:"createdAt"`

	Orders []Order              `json:"orders,omitempty" gorm:"foreignKey:AffiliateCodeID"`
	Usages []AffiliateCodeUsage `json:"usages,omitempty" gorm:"foreignKey:AffiliateCodeID"`
}

// AffiliateCodeUsage is one ledger entry per completed order that used a
// code. The unique index on OrderID is what makes commission attribution
// idempotent — a retried confirmation can never book a second entry.
type AffiliateCodeUsage struct {
	ID              string    `json:"id" gorm:"primaryKey"`
	AffiliateCodeID string    `json:"affiliateCodeId" gorm:"index;not null"`
	OrderID         string    `json:"orderId" gorm:"uniqueIndex;not null"`
	Amount          float64   `json:"amount" gorm:"not null"`
	CreatedAt       time.Time `json:"createdAt"`
}
