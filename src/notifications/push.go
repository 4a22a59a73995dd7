package notifications

import (
	"context"
	"huletfish/src/payments"
	"log"
	"strconv"

	"firebase.google.com/go/v4/messaging"
)

type FCMSender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// TokenLookup returns "" when the user has no registered device.
type TokenLookup func(ctx context.Context, userID uint) (string, error)

type PushChannel struct {
	fcm    FCMSender
	tokens TokenLookup
}

func NewPushChannel(fcm FCMSender, tokens TokenLookup) *PushChannel {
	return &PushChannel{fcm: fcm, tokens: tokens}
}

func (p *PushChannel) Name() string { return "push" }

func (p *PushChannel) Notify(ctx context.Context, ev payments.Event) error {
	if ev.Type == payments.EVENT_CHECKOUT_CREATED {
		return nil
	}
	token, err := p.tokens(ctx, ev.UserID)
	if err != nil {
		return err
	}
	if token == "" {
		return nil
	}
	res, err := p.fcm.Send(ctx, &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title(ev),
			Body:  body(ev),
		},
		Data: map[string]string{
			"type":      string(ev.Type),
			"paymentId": ev.PaymentID,
			"bookingId": strconv.FormatUint(uint64(ev.BookingID), 10),
			"status":    string(ev.Status),
		},
	})
	if err != nil {
		return err
	}
	log.Printf("[FCM] notification sent for %s: %s\n", ev.PaymentID, res)
	return nil
}
