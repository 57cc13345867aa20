package models

import "time"

// WebhookEvent stores every signature-valid provider event so duplicates ack
// cheaply and events that failed mid-processing can be replayed by the retry
// worker. ProviderEventID carries the dedup constraint.
type WebhookEvent struct {
	ID              string     `json:"id" gorm:"primaryKey"`
	ProviderEventID string     `json:"providerEventId" gorm:"uniqueIndex;not null"`
	EventType       string     `json:"eventType" gorm:"index;not null"`
	Payload         string     `json:"payload" gorm:"type:text;not null"`
	ProcessedAt     *time.Time `json:"processedAt,omitempty" gorm:"index"`
	ProcessingError string     `json:"processingError,omitempty" gorm:"type:text"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}
