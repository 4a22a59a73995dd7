package notifications

import (
	"fmt"
	"huletfish/src/payments"
)

func money(amount float64, currency string) string {
	return fmt.Sprintf("%.2f %s", amount, currency)
}

func title(ev payments.Event) string {
	switch ev.Type {
	case payments.EVENT_COMPLETED:
		return "Payment received"
	case payments.EVENT_FAILED:
		return "Payment failed"
	case payments.EVENT_REFUND_REQUESTED:
		return "Refund requested"
	case payments.EVENT_CHECKOUT_CREATED:
		return "Checkout started"
	}
	return "Payment update"
}

func body(ev payments.Event) string {
	switch ev.Type {
	case payments.EVENT_COMPLETED:
		return fmt.Sprintf("We received %s for booking #%d. Your experience is confirmed.", money(ev.Amount, ev.Currency), ev.BookingID)
	case payments.EVENT_FAILED:
		if ev.Message != "" {
			return fmt.Sprintf("Your payment for booking #%d did not go through: %s", ev.BookingID, ev.Message)
		}
		return fmt.Sprintf("Your payment for booking #%d did not go through.", ev.BookingID)
	case payments.EVENT_REFUND_REQUESTED:
		return fmt.Sprintf("We received your refund request for booking #%d. It will be reviewed shortly.", ev.BookingID)
	case payments.EVENT_CHECKOUT_CREATED:
		return fmt.Sprintf("Complete your payment of %s for booking #%d.", money(ev.Amount, ev.Currency), ev.BookingID)
	}
	return fmt.Sprintf("Payment %s is now %s.", ev.PaymentID, ev.Status)
}
