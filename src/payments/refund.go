package payments

import (
	"context"
	"huletfish/src/models"
	"huletfish/src/types"
	"strings"

	"github.com/shopspring/decimal"
)

const refundWindowHours = 24

type RefundInput struct {
	PaymentID string
	UserID    uint
	Reason    string
	// Amount defaults to the full charge.
	Amount *float64
}

// RequestRefund records a refund request and cancels the booking. Money is
// returned out of band; no gateway call is made.
func (s *Service) RequestRefund(ctx context.Context, in RefundInput) (*models.Payment, error) {
	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		return nil, validationError("refund reason is required")
	}
	var refunded *models.Payment
	err := s.store.Transaction(ctx, func(tx Store) error {
		p, err := tx.FindPayment(ctx, in.PaymentID)
		if err != nil {
			return err
		}
		if !p.OwnedBy(in.UserID) {
			return ErrNotFound
		}
		if p.Status != types.PAYMENT_COMPLETED {
			return ErrInvalidState
		}
		booking, err := tx.FindBooking(ctx, p.BookingID)
		if err != nil {
			return err
		}
		now := s.now()
		if booking.HoursUntilStart(now) < refundWindowHours {
			return ErrRefundWindowClosed
		}

		amount := p.Amount
		if in.Amount != nil {
			if *in.Amount <= 0 || decimal.NewFromFloat(*in.Amount).GreaterThan(decimal.NewFromFloat(p.Amount)) {
				return validationError("refund amount must be between 0 and %.2f", p.Amount)
			}
			amount = decimal.NewFromFloat(*in.Amount).Round(2).InexactFloat64()
		}
		status := types.REFUND_PENDING
		p.Status = types.PAYMENT_REFUNDED
		p.Refund = models.PaymentRefund{
			RefundAmount: &amount,
			RefundDate:   &now,
			RefundReason: &reason,
			RefundStatus: &status,
		}
		if err := tx.SavePayment(ctx, p); err != nil {
			return err
		}
		if err := tx.UpdateBookingStatus(ctx, booking.ID, types.BOOKING_CANCELLED, types.BOOKING_PAYMENT_REFUNDED); err != nil {
			return err
		}
		refunded = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, EVENT_REFUND_REQUESTED, refunded)
	return refunded, nil
}
