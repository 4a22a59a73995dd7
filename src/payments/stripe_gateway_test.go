package payments

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

const stripeTestSecret = "whsec_test_secret"

func stripeEvent(id, eventType, intentID, status string) []byte {
	return fmt.Appendf(nil, `{
		"id": %q,
		"object": "event",
		"api_version": "2020-08-27",
		"type": %q,
		"data": {"object": {"id": %q, "object": "payment_intent", "status": %q, "last_payment_error": null}}
	}`, id, eventType, intentID, status)
}

func signStripe(payload []byte) http.Header {
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload: payload,
		Secret:  stripeTestSecret,
	})
	h := http.Header{}
	h.Set("Stripe-Signature", signed.Header)
	return h
}

func newTestStripe() *StripeGateway {
	return NewStripeGateway(stripe.NewClient("sk_test_123"), stripeTestSecret)
}

func TestStripeWebhookSucceeded(t *testing.T) {
	payload := stripeEvent("evt_1", "payment_intent.succeeded", "pi_123", "succeeded")
	n, err := newTestStripe().ParseWebhook(payload, signStripe(payload))
	require.NoError(t, err)
	assert.Equal(t, "evt_1", n.EventID)
	assert.Equal(t, "payment_intent.succeeded", n.EventType)
	assert.Equal(t, "pi_123", n.Reference)
	assert.Equal(t, OUTCOME_SUCCEEDED, n.Outcome)
}

func TestStripeWebhookPaymentFailed(t *testing.T) {
	payload := stripeEvent("evt_2", "payment_intent.payment_failed", "pi_123", "requires_payment_method")
	n, err := newTestStripe().ParseWebhook(payload, signStripe(payload))
	require.NoError(t, err)
	assert.Equal(t, OUTCOME_FAILED, n.Outcome)
}

func TestStripeWebhookIgnoredType(t *testing.T) {
	payload := []byte(`{"id":"evt_3","object":"event","type":"customer.created","data":{"object":{"id":"cus_1","object":"customer"}}}`)
	n, err := newTestStripe().ParseWebhook(payload, signStripe(payload))
	require.NoError(t, err)
	assert.Equal(t, OUTCOME_IGNORED, n.Outcome)
	assert.Empty(t, n.Reference)
}

func TestStripeWebhookBadSignature(t *testing.T) {
	payload := stripeEvent("evt_1", "payment_intent.succeeded", "pi_123", "succeeded")
	h := http.Header{}
	h.Set("Stripe-Signature", "t=1,v1=deadbeef")
	_, err := newTestStripe().ParseWebhook(payload, h)
	assert.ErrorIs(t, err, ErrSignatureInvalid)

	_, err = newTestStripe().ParseWebhook(payload, http.Header{})
	assert.ErrorIs(t, err, ErrSignatureInvalid)
}

func TestStripeWebhookWithoutSecret(t *testing.T) {
	payload := stripeEvent("evt_9", "payment_intent.succeeded", "pi_victim", "succeeded")
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload: payload,
		Secret:  "",
	})
	h := http.Header{}
	h.Set("Stripe-Signature", signed.Header)

	n, err := NewStripeGateway(stripe.NewClient("sk_test_123"), "").ParseWebhook(payload, h)
	assert.ErrorIs(t, err, ErrSignatureInvalid)
	assert.Nil(t, n)
}

func TestIntentStatus(t *testing.T) {
	st := intentStatus(&stripe.PaymentIntent{ID: "pi_1", Status: stripe.PaymentIntentStatusProcessing})
	assert.Equal(t, OUTCOME_PENDING, st.Outcome)

	st = intentStatus(&stripe.PaymentIntent{
		ID:               "pi_1",
		Status:           stripe.PaymentIntentStatusRequiresPaymentMethod,
		LastPaymentError: &stripe.Error{Msg: "Your card was declined."},
	})
	assert.Equal(t, OUTCOME_FAILED, st.Outcome)
	assert.Equal(t, "Your card was declined.", st.Message)

	st = intentStatus(&stripe.PaymentIntent{ID: "pi_1", Status: stripe.PaymentIntentStatusCanceled})
	assert.Equal(t, OUTCOME_FAILED, st.Outcome)
}

func TestMinorUnits(t *testing.T) {
	assert.Equal(t, int64(107930), minorUnits(1079.3))
	assert.Equal(t, int64(1), minorUnits(0.005))
}
