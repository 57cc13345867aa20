package models

import "time"

const (
	SignupStatusPending  = "PENDING"
	SignupStatusApproved = "APPROVED"
	SignupStatusRejected = "REJECTED"
)

// AffiliateSignup is a lead from the public "join the program" form.
type AffiliateSignup struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	Email     string    `json:"email" gorm:"not null"`
	Phone     string    `json:"phone" gorm:"not null"`
	Status    string    `json:"status" gorm:"default:'PENDING';index"`
	CreatedAt time.Time `json:"createdAt"`
}

// CanTransitionTo reports whether the signup may move to the given status.
// APPROVED and REJECTED are terminal.
func (s *AffiliateSignup) CanTransitionTo(status string) bool {
	if s.Status != SignupStatusPending {
		return false
	}
	return status == SignupStatusApproved || status == SignupStatusRejected
}
