package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"huletfish/src/types"
	"time"
)

type PaymentFees struct {
	PlatformFee float64 `gorm:"type:numeric(12,2)" json:"platformFee"`
	GatewayFee  float64 `gorm:"type:numeric(12,2)" json:"gatewayFee"`
	TotalFees   float64 `gorm:"type:numeric(12,2)" json:"totalFees"`
}

// CustomerInfo is copied from the user at checkout and never refreshed.
type CustomerInfo struct {
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
	Name  string `json:"name,omitempty"`
}

type PaymentRefund struct {
	RefundAmount *float64            `gorm:"column:amount;type:numeric(12,2)" json:"refundAmount,omitempty"`
	RefundDate   *time.Time          `gorm:"column:date" json:"refundDate,omitempty"`
	RefundReason *string             `gorm:"column:reason;type:text" json:"refundReason,omitempty"`
	RefundStatus *types.RefundStatus `gorm:"column:status" json:"refundStatus,omitempty"`
}

type PaymentMetadata struct {
	IPAddress string `json:"ipAddress,omitempty"`
	UserAgent string `json:"userAgent,omitempty"`
	Source    string `json:"source,omitempty"`
}

type Payment struct {
	ID        uint   `gorm:"primarykey" json:"-"`
	PaymentID string `gorm:"size:64;uniqueIndex;not null" json:"paymentId"`
	BookingID uint   `gorm:"index;not null" json:"bookingId"`
	UserID    uint   `gorm:"index;not null" json:"userId"`

	Amount           float64 `gorm:"type:numeric(12,2)" json:"amount"`
	Currency         string  `gorm:"size:3" json:"currency"`
	OriginalAmount   float64 `gorm:"type:numeric(12,2)" json:"originalAmount"`
	OriginalCurrency string  `gorm:"size:3" json:"originalCurrency"`
	ExchangeRate     float64 `gorm:"type:numeric(18,8);default:1" json:"exchangeRate"`

	PaymentMethod  types.PaymentMethod `gorm:"size:20" json:"paymentMethod"`
	PaymentGateway types.PaymentMethod `gorm:"size:20;uniqueIndex:idx_payments_gateway_ref,priority:1" json:"paymentGateway"`
	GatewayRef     *string             `gorm:"size:191;uniqueIndex:idx_payments_gateway_ref,priority:2" json:"-"`
	GatewayDetails GatewayDetails      `gorm:"type:jsonb" json:"gatewayResponse"`

	Fees         PaymentFees     `gorm:"embedded;embeddedPrefix:fee_" json:"fees"`
	CustomerInfo CustomerInfo    `gorm:"embedded;embeddedPrefix:customer_" json:"customerInfo"`
	Refund       PaymentRefund   `gorm:"embedded;embeddedPrefix:refund_" json:"refund"`
	Metadata     PaymentMetadata `gorm:"embedded;embeddedPrefix:meta_" json:"metadata"`

	Status        types.PaymentStatus `gorm:"size:20;index;default:'pending'" json:"status"`
	WebhookEvents WebhookEventLog     `gorm:"type:jsonb" json:"webhookEvents"`
	CompletedAt   *time.Time          `json:"completedAt,omitempty"`
	FailedAt      *time.Time          `json:"failedAt,omitempty"`

	Booking *Booking `gorm:"foreignKey:BookingID" json:"booking,omitempty"`
	User    *User    `gorm:"foreignKey:UserID" json:"-"`

	types.Timestamps
}

func (p *Payment) OwnedBy(userId uint) bool {
	return p.UserID == userId
}

// StripeDetails holds the PaymentIntent correlation for a Stripe checkout.
type StripeDetails struct {
	PaymentIntentID string `json:"paymentIntentId"`
	Status          string `json:"status,omitempty"`
	Message         string `json:"gatewayMessage,omitempty"`
}

// ChapaDetails holds the hosted checkout correlation for a Chapa checkout.
type ChapaDetails struct {
	TxRef       string `json:"txRef"`
	Reference   string `json:"reference,omitempty"`
	CheckoutURL string `json:"checkoutUrl,omitempty"`
	Status      string `json:"status,omitempty"`
	Message     string `json:"gatewayMessage,omitempty"`
}

// GatewayDetails is a tagged variant: at most one of Stripe and Chapa is set.
type GatewayDetails struct {
	Stripe *StripeDetails
	Chapa  *ChapaDetails
}

type gatewayDetailsJSON struct {
	Kind   types.PaymentMethod `json:"kind,omitempty"`
	Stripe *StripeDetails      `json:"stripe,omitempty"`
	Chapa  *ChapaDetails       `json:"chapa,omitempty"`
}

func StripeGatewayDetails(d StripeDetails) GatewayDetails {
	return GatewayDetails{Stripe: &d}
}

func ChapaGatewayDetails(d ChapaDetails) GatewayDetails {
	return GatewayDetails{Chapa: &d}
}

func (d GatewayDetails) Kind() types.PaymentMethod {
	switch {
	case d.Stripe != nil:
		return types.PAYMENT_METHOD_STRIPE
	case d.Chapa != nil:
		return types.PAYMENT_METHOD_CHAPA
	}
	return ""
}

// Reference is the id the gateway uses to address this payment.
func (d GatewayDetails) Reference() string {
	switch {
	case d.Stripe != nil:
		return d.Stripe.PaymentIntentID
	case d.Chapa != nil:
		return d.Chapa.TxRef
	}
	return ""
}

func (d GatewayDetails) Message() string {
	switch {
	case d.Stripe != nil:
		return d.Stripe.Message
	case d.Chapa != nil:
		return d.Chapa.Message
	}
	return ""
}

// WithStatus returns a copy carrying the last known gateway status and message.
func (d GatewayDetails) WithStatus(status, message string) GatewayDetails {
	switch {
	case d.Stripe != nil:
		s := *d.Stripe
		s.Status = status
		s.Message = message
		return GatewayDetails{Stripe: &s}
	case d.Chapa != nil:
		c := *d.Chapa
		c.Status = status
		c.Message = message
		return GatewayDetails{Chapa: &c}
	}
	return d
}

// WithProviderReference records Chapa's own reference for the transaction.
func (d GatewayDetails) WithProviderReference(ref string) GatewayDetails {
	if d.Chapa == nil || ref == "" {
		return d
	}
	c := *d.Chapa
	c.Reference = ref
	return GatewayDetails{Chapa: &c}
}

func (d GatewayDetails) MarshalJSON() ([]byte, error) {
	if d.Stripe != nil && d.Chapa != nil {
		return nil, errors.New("gateway details hold more than one variant")
	}
	return json.Marshal(gatewayDetailsJSON{Kind: d.Kind(), Stripe: d.Stripe, Chapa: d.Chapa})
}

func (d *GatewayDetails) UnmarshalJSON(b []byte) error {
	var raw gatewayDetailsJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*d = GatewayDetails{}
	switch raw.Kind {
	case "":
		return nil
	case types.PAYMENT_METHOD_STRIPE:
		if raw.Stripe == nil {
			raw.Stripe = &StripeDetails{}
		}
		d.Stripe = raw.Stripe
	case types.PAYMENT_METHOD_CHAPA:
		if raw.Chapa == nil {
			raw.Chapa = &ChapaDetails{}
		}
		d.Chapa = raw.Chapa
	default:
		return fmt.Errorf("unknown gateway details kind %q", raw.Kind)
	}
	return nil
}

func (d GatewayDetails) Value() (driver.Value, error) {
	b, err := d.MarshalJSON()
	return string(b), err
}

func (d *GatewayDetails) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		*d = GatewayDetails{}
		return nil
	case []byte:
		return d.UnmarshalJSON(v)
	case string:
		return d.UnmarshalJSON([]byte(v))
	}
	return errors.New("type assertion to []byte failed")
}

// WebhookEntry is one received gateway notification kept on the payment for audit.
type WebhookEntry struct {
	Gateway    types.PaymentMethod `json:"gateway"`
	EventID    string              `json:"eventId"`
	EventType  string              `json:"eventType"`
	Data       json.RawMessage     `json:"data,omitempty"`
	ReceivedAt time.Time           `json:"receivedAt"`
}

type WebhookEventLog []WebhookEntry

func (l WebhookEventLog) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	return string(b), err
}

func (l *WebhookEventLog) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		*l = nil
		return nil
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	}
	return errors.New("type assertion to []byte failed")
}
