package workers

import (
	"context"
	"log"
	"time"

	"qr-review-system/services"
)

// WebhookRetryWorker replays stored webhook events that never finished
// processing — the handler returned 5xx, or the process died between the
// order write and marking the event processed. Record is idempotent, so
// replaying an already-applied event is a no-op.
type WebhookRetryWorker struct {
	Events        services.WebhookEventStore
	Confirmations *services.ConfirmationService
	Interval      time.Duration
}

func NewWebhookRetryWorker(events services.WebhookEventStore, confirmations *services.ConfirmationService) *WebhookRetryWorker {
	return &WebhookRetryWorker{
		Events:        events,
		Confirmations: confirmations,
		Interval:      time.Minute,
	}
}

func (w *WebhookRetryWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Webhook retry worker stopping...")
			return
		case <-ticker.C:
			w.runOnce()
		}
	}
}

func (w *WebhookRetryWorker) runOnce() {
	// Leave fresh events to the inline handler; only pick up stragglers.
	events, err := w.Events.FindUnprocessedEvents(time.Now().Add(-time.Minute), 20)
	if err != nil {
		log.Printf("[WebhookRetry] query failed: %v", err)
		return
	}

	for i := range events {
		ev := &events[i]
		if err := w.Confirmations.ReplayEvent(ev); err != nil {
			log.Printf("[WebhookRetry] event %s failed: %v", ev.ProviderEventID, err)
			continue
		}
		log.Printf("✅ Replayed webhook event %s", ev.ProviderEventID)
	}
}
