// services/scheduler.go
package services

import (
	"log"
	"strings"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// StartReconcileScheduler runs the periodic safety net for confirmations that
// never finished: lost webhooks and usage bookings that failed mid-flight.
func (s *ConfirmationService) StartReconcileScheduler() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(5*time.Minute),
		gocron.NewTask(s.ReconcileOnce),
	)
}

// ReconcileOnce re-fetches the provider status of stale pending orders and
// feeds paid ones back through Record, then re-books usage entries for
// completed orders that are still missing theirs. Both paths go through the
// same idempotent writes as the live triggers.
func (s *ConfirmationService) ReconcileOnce() {
	pending, err := s.Orders.FindPendingBefore(time.Now().Add(-2*time.Minute), 50)
	if err != nil {
		log.Printf("[Reconcile] pending query failed: %v", err)
		return
	}
	for _, o := range pending {
		// Fully discounted orders never went through the provider.
		if strings.HasPrefix(o.SessionID, "free_") {
			continue
		}
		sess, err := s.Sessions.GetSession(o.SessionID)
		if err != nil {
			log.Printf("[Reconcile] session %s: %v", o.SessionID, err)
			continue
		}
		state := stateFromSession(sess)
		if !state.Paid {
			continue
		}
		if _, err := s.Record(state); err != nil {
			log.Printf("[Reconcile] failed to promote order %s: %v", o.ID, err)
		} else {
			log.Printf("✅ Reconciled pending order %s (session %s)", o.ID, o.SessionID)
		}
	}

	// Completed orders whose usage booking failed after the order write. This
	// also covers fully discounted orders, which no provider trigger revisits.
	unbooked, err := s.Orders.FindCompletedMissingUsage(50)
	if err != nil {
		log.Printf("[Reconcile] usage query failed: %v", err)
		return
	}
	for i := range unbooked {
		o := &unbooked[i]
		if err := s.bookUsage(o); err != nil {
			log.Printf("[Reconcile] failed to book usage for order %s: %v", o.ID, err)
		} else {
			log.Printf("✅ Reconciled usage for order %s", o.ID)
		}
	}
}
