package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"huletfish/src/models"
	"huletfish/src/types"
	"log"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

type StripeGateway struct {
	client        *stripe.Client
	webhookSecret string
}

func NewStripeGateway(client *stripe.Client, webhookSecret string) *StripeGateway {
	return &StripeGateway{client: client, webhookSecret: webhookSecret}
}

func (g *StripeGateway) Name() types.PaymentMethod {
	return types.PAYMENT_METHOD_STRIPE
}

func (g *StripeGateway) CreateCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	params := &stripe.PaymentIntentCreateParams{
		Amount:   stripe.Int64(minorUnits(req.Amount)),
		Currency: stripe.String(strings.ToLower(req.Currency)),
		AutomaticPaymentMethods: &stripe.PaymentIntentCreateAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
		Description: stripe.String(req.Description),
		Metadata: map[string]string{
			"paymentId": req.PaymentID,
			"bookingId": fmt.Sprint(req.BookingID),
		},
	}
	if req.Customer.Email != "" {
		params.ReceiptEmail = stripe.String(req.Customer.Email)
	}
	params.SetIdempotencyKey(req.PaymentID)
	pi, err := g.client.V1PaymentIntents.Create(ctx, params)
	if err != nil {
		log.Printf("[Stripe] Error creating PaymentIntent for %s: %s\n", req.PaymentID, err.Error())
		return nil, &GatewayError{Gateway: g.Name(), Message: stripeMessage(err), Err: err}
	}
	return &CheckoutSession{
		Reference:    pi.ID,
		ClientSecret: pi.ClientSecret,
		Details: models.StripeGatewayDetails(models.StripeDetails{
			PaymentIntentID: pi.ID,
			Status:          string(pi.Status),
		}),
	}, nil
}

func (g *StripeGateway) Verify(ctx context.Context, reference string) (*GatewayStatus, error) {
	pi, err := g.client.V1PaymentIntents.Retrieve(ctx, reference, &stripe.PaymentIntentRetrieveParams{})
	if err != nil {
		log.Printf("[Stripe] Error retrieving PaymentIntent %s: %s\n", reference, err.Error())
		return nil, &GatewayError{Gateway: g.Name(), Message: stripeMessage(err), Err: err}
	}
	st := intentStatus(pi)
	return &st, nil
}

func (g *StripeGateway) ParseWebhook(payload []byte, header http.Header) (*WebhookNotification, error) {
	if g.webhookSecret == "" {
		return nil, fmt.Errorf("%w: webhook secret not configured", ErrSignatureInvalid)
	}
	event, err := webhook.ConstructEventWithOptions(payload, header.Get("Stripe-Signature"), g.webhookSecret, webhook.ConstructEventOptions{
		Tolerance:                webhook.DefaultTolerance,
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSignatureInvalid, err.Error())
	}
	n := &WebhookNotification{
		Gateway:   g.Name(),
		EventID:   event.ID,
		EventType: string(event.Type),
		Payload:   payload,
	}
	switch string(event.Type) {
	case "payment_intent.succeeded", "payment_intent.payment_failed", "payment_intent.canceled", "payment_intent.processing":
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			log.Printf("[Stripe] Error parsing PaymentIntent: %s\n", err.Error())
			return nil, validationError("malformed payment intent in event %s", event.ID)
		}
		n.GatewayStatus = intentStatus(&pi)
		if n.EventType == "payment_intent.payment_failed" {
			n.Outcome = OUTCOME_FAILED
		}
	default:
		n.Outcome = OUTCOME_IGNORED
	}
	return n, nil
}

func intentStatus(pi *stripe.PaymentIntent) GatewayStatus {
	st := GatewayStatus{
		Reference: pi.ID,
		Status:    string(pi.Status),
		Outcome:   OUTCOME_PENDING,
	}
	if pi.LastPaymentError != nil {
		st.Message = pi.LastPaymentError.Msg
	}
	switch pi.Status {
	case stripe.PaymentIntentStatusSucceeded:
		st.Outcome = OUTCOME_SUCCEEDED
	case stripe.PaymentIntentStatusCanceled:
		st.Outcome = OUTCOME_FAILED
		if st.Message == "" {
			st.Message = fmt.Sprintf("payment canceled: %s", pi.CancellationReason)
		}
	case stripe.PaymentIntentStatusRequiresPaymentMethod:
		if pi.LastPaymentError != nil {
			st.Outcome = OUTCOME_FAILED
		}
	}
	return st
}

func stripeMessage(err error) string {
	var serr *stripe.Error
	if errors.As(err, &serr) && serr.Msg != "" {
		return serr.Msg
	}
	return err.Error()
}

// minorUnits converts to the smallest currency unit Stripe expects.
func minorUnits(amount float64) int64 {
	return decimal.NewFromFloat(amount).Shift(2).Round(0).IntPart()
}
