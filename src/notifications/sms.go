package notifications

import (
	"context"
	"fmt"
	"huletfish/src/payments"
	"strings"
)

type SMSSender func(ctx context.Context, phone string, message string) error

// SMSChannel texts payment confirmations only.
type SMSChannel struct {
	send SMSSender
}

func NewSMSChannel(send SMSSender) *SMSChannel {
	return &SMSChannel{send: send}
}

func (s *SMSChannel) Name() string { return "sms" }

func (s *SMSChannel) Notify(ctx context.Context, ev payments.Event) error {
	if ev.Type != payments.EVENT_COMPLETED {
		return nil
	}
	phone := normalizePhone(ev.Customer.Phone)
	if phone == "" {
		return nil
	}
	return s.send(ctx, phone, fmt.Sprintf("Hulet Fish: %s Ref %s", body(ev), ev.PaymentID))
}

// normalizePhone turns local Ethiopian numbers (09..., 07...) into E.164.
func normalizePhone(phone string) string {
	p := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(strings.TrimSpace(phone))
	switch {
	case p == "":
		return ""
	case strings.HasPrefix(p, "+"):
		return p
	case strings.HasPrefix(p, "00"):
		return "+" + p[2:]
	case strings.HasPrefix(p, "251"):
		return "+" + p
	case strings.HasPrefix(p, "0") && len(p) == 10:
		return "+251" + p[1:]
	}
	return ""
}
