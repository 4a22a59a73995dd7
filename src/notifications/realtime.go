package notifications

import (
	"context"
	"huletfish/src/lib"
	"huletfish/src/payments"
)

const REALTIME_EVENT = "payment.updated"

type Trigger interface {
	Trigger(channel string, eventName string, data interface{}) error
}

// RealtimeChannel lets an open checkout page react without polling verify.
type RealtimeChannel struct {
	pusher Trigger
}

func NewRealtimeChannel(pusher Trigger) *RealtimeChannel {
	return &RealtimeChannel{pusher: pusher}
}

func (r *RealtimeChannel) Name() string { return "realtime" }

func (r *RealtimeChannel) Notify(_ context.Context, ev payments.Event) error {
	return r.pusher.Trigger(lib.UserChannel(ev.UserID), REALTIME_EVENT, map[string]any{
		"type":      ev.Type,
		"paymentId": ev.PaymentID,
		"bookingId": ev.BookingID,
		"status":    ev.Status,
		"message":   ev.Message,
	})
}
