package payments

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"huletfish/src/models"
	"huletfish/src/types"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

const chapaTestSecret = "chapa-webhook-secret"

func signChapa(body string) string {
	mac := hmac.New(sha256.New, []byte(chapaTestSecret))
	mac.Write([]byte(body))
	return hex.EncodeToString(mac.Sum(nil))
}

func chapaHeader(signature string) http.Header {
	h := http.Header{}
	h.Set("x-chapa-signature", signature)
	return h
}

func newTestChapa(baseURL string) *ChapaGateway {
	return NewChapaGateway(ChapaConfig{
		BaseURL:       baseURL,
		SecretKey:     "CHASECK_TEST",
		WebhookSecret: chapaTestSecret,
		CallbackURL:   "https://api.huletfish.test/api/v1/payments/webhook/chapa",
	}, nil)
}

func TestChapaCreateCheckout(t *testing.T) {
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/transaction/initialize", r.URL.Path)
		assert.Equal(t, "Bearer CHASECK_TEST", r.Header.Get("Authorization"))
		body, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"message":"Hosted Link","status":"success","data":{"checkout_url":"https://checkout.chapa.co/checkout/payment/abc"}}`)
	}))
	defer srv.Close()

	g := newTestChapa(srv.URL + "/")
	session, err := g.CreateCheckout(context.Background(), CheckoutRequest{
		PaymentID:   "PAY-1",
		BookingID:   42,
		Amount:      1075,
		Currency:    "ETB",
		Description: "Coffee Ceremony in Addis",
		Customer:    models.CustomerInfo{Email: "abebe@example.com", Name: "Abebe Bikila Tesfaye", Phone: "0911000000"},
		ReturnURL:   "https://huletfish.test/payment/success",
	})
	require.NoError(t, err)

	assert.Equal(t, "https://checkout.chapa.co/checkout/payment/abc", session.CheckoutURL)
	assert.True(t, strings.HasPrefix(session.Reference, "coffee-ceremony-in-addis-42-"))
	assert.Equal(t, session.Reference, session.Details.Reference())
	assert.Equal(t, types.PAYMENT_METHOD_CHAPA, session.Details.Kind())

	assert.Equal(t, "1075.00", gjson.GetBytes(body, "amount").String())
	assert.Equal(t, "ETB", gjson.GetBytes(body, "currency").String())
	assert.Equal(t, "Abebe", gjson.GetBytes(body, "first_name").String())
	assert.Equal(t, "Bikila Tesfaye", gjson.GetBytes(body, "last_name").String())
	assert.Equal(t, session.Reference, gjson.GetBytes(body, "tx_ref").String())
	assert.Equal(t, "https://api.huletfish.test/api/v1/payments/webhook/chapa", gjson.GetBytes(body, "callback_url").String())
	assert.Equal(t, "PAY-1", gjson.GetBytes(body, "meta.paymentId").String())
}

func TestChapaCreateCheckoutGatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"message":{"email":["The email must be a valid email address."]},"status":"failed","data":null}`)
	}))
	defer srv.Close()

	_, err := newTestChapa(srv.URL).CreateCheckout(context.Background(), CheckoutRequest{PaymentID: "PAY-1", Amount: 10, Currency: "ETB"})
	var gerr *GatewayError
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, types.PAYMENT_METHOD_CHAPA, gerr.Gateway)
	assert.Equal(t, "The email must be a valid email address.", gerr.Message)
}

func TestChapaVerify(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/transaction/verify/tx-123", r.URL.Path)
		io.WriteString(w, `{"message":"Payment details","status":"success","data":{"status":"success","reference":"AP8ZsHk","tx_ref":"tx-123"}}`)
	}))
	defer srv.Close()

	st, err := newTestChapa(srv.URL).Verify(context.Background(), "tx-123")
	require.NoError(t, err)
	assert.Equal(t, OUTCOME_SUCCEEDED, st.Outcome)
	assert.Equal(t, "tx-123", st.Reference)
	assert.Equal(t, "AP8ZsHk", st.ProviderRef)
}

func TestChapaWebhookValid(t *testing.T) {
	body := `{"tx_ref":"tx-123","status":"success","amount":"1075.00","currency":"ETB","reference":"AP8ZsHk"}`
	n, err := newTestChapa("").ParseWebhook([]byte(body), chapaHeader(signChapa(body)))
	require.NoError(t, err)
	assert.Equal(t, OUTCOME_SUCCEEDED, n.Outcome)
	assert.Equal(t, "tx-123", n.Reference)
	assert.Equal(t, "tx-123:success", n.EventID)
	assert.Equal(t, "charge.success", n.EventType)
	assert.Equal(t, "AP8ZsHk", n.ProviderRef)
}

func TestChapaWebhookFailedStatus(t *testing.T) {
	body := `{"tx_ref":"tx-123","status":"failed","message":"Insufficient balance"}`
	n, err := newTestChapa("").ParseWebhook([]byte(body), chapaHeader(strings.ToUpper(signChapa(body))))
	require.NoError(t, err)
	assert.Equal(t, OUTCOME_FAILED, n.Outcome)
	assert.Equal(t, "Insufficient balance", n.Message)
}

func TestChapaWebhookTamperedBody(t *testing.T) {
	body := `{"tx_ref":"tx-123","status":"failed"}`
	sig := signChapa(body)
	tampered := strings.Replace(body, "failed", "success", 1)

	_, err := newTestChapa("").ParseWebhook([]byte(tampered), chapaHeader(sig))
	assert.ErrorIs(t, err, ErrSignatureInvalid)
}

func TestChapaWebhookMissingSignature(t *testing.T) {
	_, err := newTestChapa("").ParseWebhook([]byte(`{"tx_ref":"tx-123","status":"success"}`), http.Header{})
	assert.ErrorIs(t, err, ErrSignatureInvalid)
}

func TestChapaWebhookPendingIgnored(t *testing.T) {
	body := `{"tx_ref":"tx-123","status":"pending"}`
	n, err := newTestChapa("").ParseWebhook([]byte(body), chapaHeader(signChapa(body)))
	require.NoError(t, err)
	assert.Equal(t, OUTCOME_IGNORED, n.Outcome)
}
