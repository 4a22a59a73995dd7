package payments

import (
	"context"
	"errors"
	"fmt"
	"huletfish/src/models"
	"huletfish/src/types"
	"log"

	"github.com/google/uuid"
)

type CheckoutInput struct {
	BookingID uint
	UserID    uint
	IsAdmin   bool
	Method    types.PaymentMethod
	// Currency defaults to the booking's currency.
	Currency  string
	ReturnURL string
	Metadata  models.PaymentMetadata
}

type CheckoutResult struct {
	PaymentID    string             `json:"paymentId"`
	ClientSecret string             `json:"clientSecret,omitempty"`
	CheckoutURL  string             `json:"checkoutUrl,omitempty"`
	Amount       float64            `json:"amount"`
	Currency     string             `json:"currency"`
	Fees         models.PaymentFees `json:"fees"`
}

func (s *Service) Checkout(ctx context.Context, in CheckoutInput) (*CheckoutResult, error) {
	gw, err := s.gateway(in.Method)
	if err != nil {
		return nil, err
	}

	release, ok, err := s.locker.Acquire(ctx, checkoutLockKey(in.BookingID), checkoutLockTTL)
	if err != nil {
		// the partial unique index still guards the insert
		log.Printf("[checkout] Lock unavailable for booking %d: %s\n", in.BookingID, err.Error())
	} else if !ok {
		return nil, ErrCheckoutInProgress
	} else {
		defer release()
	}

	booking, err := s.store.FindBooking(ctx, in.BookingID)
	if err != nil {
		return nil, err
	}
	if booking.UserID != in.UserID && !in.IsAdmin {
		return nil, ErrNotFound
	}
	if !booking.Payable() {
		return nil, validationError("booking is %s and cannot be paid", booking.Status)
	}

	if existing, err := s.store.FindActivePayment(ctx, booking.ID); err == nil {
		return nil, &DuplicatePaymentError{PaymentID: existing.PaymentID}
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	currency := in.Currency
	if currency == "" {
		currency = booking.Currency
	}
	conv := s.converter.Convert(booking.TotalPrice, booking.Currency, currency)
	if !conv.Resolved {
		currency = booking.Currency
	}
	fees := s.fees.Calculate(conv.Amount, in.Method)

	payment := &models.Payment{
		PaymentID:        "PAY-" + uuid.NewString(),
		BookingID:        booking.ID,
		UserID:           booking.UserID,
		Amount:           fees.TotalAmount,
		Currency:         currency,
		OriginalAmount:   booking.TotalPrice,
		OriginalCurrency: booking.Currency,
		ExchangeRate:     conv.Rate,
		PaymentMethod:    in.Method,
		PaymentGateway:   gw.Name(),
		GatewayDetails:   emptyDetails(gw.Name()),
		Fees:             fees.Model(),
		CustomerInfo:     customerSnapshot(booking.User),
		Metadata:         in.Metadata,
		Status:           types.PAYMENT_PENDING,
	}
	if err := s.store.CreatePayment(ctx, payment); err != nil {
		if errors.Is(err, ErrPaymentConflict) {
			winner, ferr := s.store.FindActivePayment(ctx, booking.ID)
			if ferr != nil {
				// the winning row is not visible yet; the client should retry
				return nil, ErrCheckoutInProgress
			}
			return nil, &DuplicatePaymentError{PaymentID: winner.PaymentID}
		}
		return nil, fmt.Errorf("create payment: %w", err)
	}

	returnURL := in.ReturnURL
	if returnURL == "" {
		returnURL = s.defaultReturnURL
	}
	session, err := gw.CreateCheckout(ctx, CheckoutRequest{
		PaymentID:   payment.PaymentID,
		BookingID:   booking.ID,
		Amount:      payment.Amount,
		Currency:    payment.Currency,
		Description: bookingDescription(booking),
		Customer:    payment.CustomerInfo,
		ReturnURL:   returnURL,
	})
	if err != nil {
		msg := err.Error()
		var gerr *GatewayError
		if errors.As(err, &gerr) {
			if gerr.Message != "" {
				msg = gerr.Message
			}
		} else {
			gerr = &GatewayError{Gateway: gw.Name(), Err: err}
		}
		now := s.now()
		payment.Status = types.PAYMENT_FAILED
		payment.FailedAt = &now
		payment.GatewayDetails = payment.GatewayDetails.WithStatus("failed", msg)
		if serr := s.store.SavePayment(ctx, payment); serr != nil {
			log.Printf("[checkout] Error marking payment %s failed: %s\n", payment.PaymentID, serr.Error())
		}
		s.publish(ctx, EVENT_FAILED, payment)
		return nil, gerr
	}

	payment.GatewayRef = &session.Reference
	payment.GatewayDetails = session.Details
	payment.Status = types.PAYMENT_PROCESSING
	if err := s.store.SavePayment(ctx, payment); err != nil {
		return nil, fmt.Errorf("save payment %s: %w", payment.PaymentID, err)
	}
	s.publish(ctx, EVENT_CHECKOUT_CREATED, payment)

	return &CheckoutResult{
		PaymentID:    payment.PaymentID,
		ClientSecret: session.ClientSecret,
		CheckoutURL:  session.CheckoutURL,
		Amount:       payment.Amount,
		Currency:     payment.Currency,
		Fees:         payment.Fees,
	}, nil
}

func customerSnapshot(u *models.User) models.CustomerInfo {
	if u == nil {
		return models.CustomerInfo{}
	}
	return models.CustomerInfo{Email: u.Email, Phone: u.Phone, Name: u.Name}
}

func bookingDescription(b *models.Booking) string {
	if b.Experience != nil && b.Experience.Title != "" {
		return b.Experience.Title
	}
	return fmt.Sprintf("Hulet Fish booking #%d", b.ID)
}
