package payments

import (
	"context"
	"huletfish/src/models"
	"huletfish/src/types"
	"time"
)

type EventType string

const (
	EVENT_CHECKOUT_CREATED EventType = "payment.checkout_created"
	EVENT_COMPLETED        EventType = "payment.completed"
	EVENT_FAILED           EventType = "payment.failed"
	EVENT_REFUND_REQUESTED EventType = "payment.refund_requested"
)

// Event is published after the state change it describes has been committed.
type Event struct {
	Type       EventType           `json:"type"`
	PaymentID  string              `json:"paymentId"`
	BookingID  uint                `json:"bookingId"`
	UserID     uint                `json:"userId"`
	Gateway    types.PaymentMethod `json:"gateway"`
	Status     types.PaymentStatus `json:"status"`
	Amount     float64             `json:"amount"`
	Currency   string              `json:"currency"`
	Customer   models.CustomerInfo `json:"customer"`
	Message    string              `json:"message,omitempty"`
	OccurredAt time.Time           `json:"occurredAt"`
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, Event) error { return nil }

func eventFor(t EventType, p *models.Payment, at time.Time) Event {
	return Event{
		Type:       t,
		PaymentID:  p.PaymentID,
		BookingID:  p.BookingID,
		UserID:     p.UserID,
		Gateway:    p.PaymentGateway,
		Status:     p.Status,
		Amount:     p.Amount,
		Currency:   p.Currency,
		Customer:   p.CustomerInfo,
		Message:    p.GatewayDetails.Message(),
		OccurredAt: at,
	}
}
