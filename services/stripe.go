package services

import (
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
	"github.com/stripe/stripe-go/v82/webhook"
)

// PaymentSessions is the slice of the payment provider the checkout and
// confirmation flows depend on.
type PaymentSessions interface {
	CreateSession(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
	GetSession(id string) (*stripe.CheckoutSession, error)
}

// EventVerifier checks webhook signatures before any payload is trusted.
type EventVerifier interface {
	VerifyEvent(payload []byte, signature string) (stripe.Event, error)
}

// StripeClient wraps a single stripe-go API client. It is constructed once
// in main and handed to the services that need it.
type StripeClient struct {
	api           *client.API
	webhookSecret string
}

func NewStripeClient(secretKey, webhookSecret string) *StripeClient {
	return &StripeClient{
		api:           client.New(secretKey, nil),
		webhookSecret: webhookSecret,
	}
}

func (c *StripeClient) CreateSession(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	return c.api.CheckoutSessions.New(params)
}

func (c *StripeClient) GetSession(id string) (*stripe.CheckoutSession, error) {
	return c.api.CheckoutSessions.Get(id, nil)
}

func (c *StripeClient) VerifyEvent(payload []byte, signature string) (stripe.Event, error) {
	return webhook.ConstructEvent(payload, signature, c.webhookSecret)
}
