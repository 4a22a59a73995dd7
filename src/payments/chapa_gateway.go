package payments

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"huletfish/src/models"
	"huletfish/src/types"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
)

type ChapaConfig struct {
	BaseURL       string
	SecretKey     string
	WebhookSecret string
	CallbackURL   string
}

type ChapaGateway struct {
	cfg    ChapaConfig
	client *http.Client
}

func NewChapaGateway(cfg ChapaConfig, client *http.Client) *ChapaGateway {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	return &ChapaGateway{cfg: cfg, client: client}
}

func (g *ChapaGateway) Name() types.PaymentMethod {
	return types.PAYMENT_METHOD_CHAPA
}

type chapaInitializeRequest struct {
	Amount        string                 `json:"amount"`
	Currency      string                 `json:"currency"`
	Email         string                 `json:"email,omitempty"`
	FirstName     string                 `json:"first_name,omitempty"`
	LastName      string                 `json:"last_name,omitempty"`
	PhoneNumber   string                 `json:"phone_number,omitempty"`
	TxRef         string                 `json:"tx_ref"`
	CallbackURL   string                 `json:"callback_url,omitempty"`
	ReturnURL     string                 `json:"return_url,omitempty"`
	Customization map[string]string      `json:"customization,omitempty"`
	Meta          map[string]interface{} `json:"meta,omitempty"`
}

func (g *ChapaGateway) CreateCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	txRef := chapaTxRef(req)
	first, last := splitName(req.Customer.Name)
	body := chapaInitializeRequest{
		Amount:      decimal.NewFromFloat(req.Amount).StringFixed(2),
		Currency:    req.Currency,
		Email:       req.Customer.Email,
		FirstName:   first,
		LastName:    last,
		PhoneNumber: req.Customer.Phone,
		TxRef:       txRef,
		CallbackURL: g.cfg.CallbackURL,
		ReturnURL:   req.ReturnURL,
		Customization: map[string]string{
			"title":       "Hulet Fish",
			"description": req.Description,
		},
		Meta: map[string]interface{}{
			"paymentId": req.PaymentID,
			"bookingId": req.BookingID,
		},
	}
	res, err := g.do(ctx, http.MethodPost, "/transaction/initialize", body)
	if err != nil {
		return nil, err
	}
	checkoutURL := gjson.GetBytes(res, "data.checkout_url").String()
	if checkoutURL == "" {
		return nil, &GatewayError{Gateway: g.Name(), Message: "checkout url missing from response"}
	}
	return &CheckoutSession{
		Reference:   txRef,
		CheckoutURL: checkoutURL,
		Details: models.ChapaGatewayDetails(models.ChapaDetails{
			TxRef:       txRef,
			CheckoutURL: checkoutURL,
			Status:      gjson.GetBytes(res, "status").String(),
			Message:     gjson.GetBytes(res, "message").String(),
		}),
	}, nil
}

func (g *ChapaGateway) Verify(ctx context.Context, reference string) (*GatewayStatus, error) {
	res, err := g.do(ctx, http.MethodGet, "/transaction/verify/"+url.PathEscape(reference), nil)
	if err != nil {
		return nil, err
	}
	status := gjson.GetBytes(res, "data.status").String()
	return &GatewayStatus{
		Reference:   reference,
		Status:      status,
		Outcome:     chapaOutcome(status),
		Message:     gjson.GetBytes(res, "message").String(),
		ProviderRef: gjson.GetBytes(res, "data.reference").String(),
	}, nil
}

func (g *ChapaGateway) ParseWebhook(payload []byte, header http.Header) (*WebhookNotification, error) {
	signature := header.Get("x-chapa-signature")
	if signature == "" {
		signature = header.Get("chapa-signature")
	}
	if signature == "" || g.cfg.WebhookSecret == "" {
		return nil, fmt.Errorf("%w: missing signature", ErrSignatureInvalid)
	}
	mac := hmac.New(sha256.New, []byte(g.cfg.WebhookSecret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(expected), []byte(strings.ToLower(signature))) {
		return nil, fmt.Errorf("%w: signature mismatch", ErrSignatureInvalid)
	}
	if !gjson.ValidBytes(payload) {
		return nil, validationError("malformed chapa webhook body")
	}
	data := gjson.ParseBytes(payload)
	txRef := data.Get("tx_ref").String()
	if txRef == "" {
		txRef = data.Get("trx_ref").String()
	}
	status := strings.ToLower(data.Get("status").String())
	if txRef == "" || status == "" {
		return nil, validationError("chapa webhook requires tx_ref and status")
	}
	eventType := data.Get("event").String()
	if eventType == "" {
		eventType = "charge." + status
	}
	n := &WebhookNotification{
		Gateway:   g.Name(),
		EventID:   txRef + ":" + status,
		EventType: eventType,
		Payload:   payload,
		GatewayStatus: GatewayStatus{
			Reference:   txRef,
			Status:      status,
			Outcome:     chapaOutcome(status),
			Message:     data.Get("message").String(),
			ProviderRef: data.Get("reference").String(),
		},
	}
	if n.Outcome == OUTCOME_PENDING {
		n.Outcome = OUTCOME_IGNORED
	}
	return n, nil
}

func (g *ChapaGateway) do(ctx context.Context, method, path string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, g.cfg.BaseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+g.cfg.SecretKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := g.client.Do(req)
	if err != nil {
		log.Printf("[Chapa] %s %s failed: %s\n", method, path, err.Error())
		return nil, &GatewayError{Gateway: g.Name(), Message: "payment gateway unavailable", Err: err}
	}
	defer resp.Body.Close()
	res, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &GatewayError{Gateway: g.Name(), Err: err}
	}
	if resp.StatusCode >= http.StatusBadRequest || gjson.GetBytes(res, "status").String() != "success" {
		msg := chapaMessage(res)
		log.Printf("[Chapa] %s %s returned %d: %s\n", method, path, resp.StatusCode, msg)
		return nil, &GatewayError{Gateway: g.Name(), Message: msg}
	}
	return res, nil
}

// Chapa reports validation failures either as a string or as a field map.
func chapaMessage(res []byte) string {
	msg := gjson.GetBytes(res, "message")
	if msg.IsObject() {
		parts := make([]string, 0)
		msg.ForEach(func(key, value gjson.Result) bool {
			if value.IsArray() {
				for _, v := range value.Array() {
					parts = append(parts, v.String())
				}
			} else {
				parts = append(parts, value.String())
			}
			return true
		})
		return strings.Join(parts, "; ")
	}
	if msg.String() != "" {
		return msg.String()
	}
	return "payment initialization failed"
}

func chapaOutcome(status string) Outcome {
	switch strings.ToLower(status) {
	case "success", "successful":
		return OUTCOME_SUCCEEDED
	case "failed", "cancelled", "canceled", "reversed":
		return OUTCOME_FAILED
	}
	return OUTCOME_PENDING
}

func chapaTxRef(req CheckoutRequest) string {
	prefix := slug.Make(req.Description)
	if len(prefix) > 32 {
		prefix = strings.Trim(prefix[:32], "-")
	}
	if prefix == "" {
		prefix = "hulet-fish"
	}
	return fmt.Sprintf("%s-%d-%s", prefix, req.BookingID, uuid.NewString()[:8])
}

func splitName(name string) (string, string) {
	fields := strings.Fields(name)
	switch len(fields) {
	case 0:
		return "", ""
	case 1:
		return fields[0], ""
	}
	return fields[0], strings.Join(fields[1:], " ")
}
