package types

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
)

type Timestamps struct {
	CreatedAt time.Time      `gorm:"autoCreateTime:nano" json:"created_at,omitempty"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime:nano" json:"updated_at,omitempty"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty,omitnil"`
}

type JSONB map[string]any
type JSONBArray []any
type JSONBAny struct {
	Inner any
}

func (a JSONB) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}
func (a *JSONB) Scan(value any) error {
	b, err := scanBytes(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, &a)
}

func (a JSONBArray) Value() (driver.Value, error) {
	if a == nil {
		return "[]", nil
	}
	valueString, err := json.Marshal(a)
	return string(valueString), err
}
func (a *JSONBArray) Scan(value any) error {
	b, err := scanBytes(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, &a)
}

func (a JSONBAny) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a.Inner)
	return string(valueString), err
}
func (a *JSONBAny) Scan(value any) error {
	b, err := scanBytes(value)
	if err != nil {
		return err
	}
	var inner any
	if err := json.Unmarshal(b, &inner); err != nil {
		return err
	}
	a.Inner = inner
	return nil
}

func (a JSONBAny) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.Inner)
}

func (a *JSONBAny) UnmarshalJSON(b []byte) error {
	return json.Unmarshal(b, &a.Inner)
}

// pgx hands jsonb back as string when the column is scanned through database/sql.
func scanBytes(value any) ([]byte, error) {
	switch v := value.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	case nil:
		return []byte("null"), nil
	}
	return nil, errors.New("type assertion to []byte failed")
}

type Role string

const (
	ROLE_TOURIST Role = "tourist"
	ROLE_HOST    Role = "host"
	ROLE_ADMIN   Role = "admin"
)

type BookingStatus string

const (
	BOOKING_PENDING   BookingStatus = "pending"
	BOOKING_CONFIRMED BookingStatus = "confirmed"
	BOOKING_CANCELLED BookingStatus = "cancelled"
	BOOKING_COMPLETED BookingStatus = "completed"
)

type BookingPaymentStatus string

const (
	BOOKING_PAYMENT_PENDING  BookingPaymentStatus = "pending"
	BOOKING_PAYMENT_PAID     BookingPaymentStatus = "paid"
	BOOKING_PAYMENT_REFUNDED BookingPaymentStatus = "refunded"
)

type PaymentStatus string

const (
	PAYMENT_PENDING    PaymentStatus = "pending"
	PAYMENT_PROCESSING PaymentStatus = "processing"
	PAYMENT_COMPLETED  PaymentStatus = "completed"
	PAYMENT_FAILED     PaymentStatus = "failed"
	PAYMENT_REFUNDED   PaymentStatus = "refunded"
)

// Active reports whether the status still holds the booking's single payment slot.
func (s PaymentStatus) Active() bool {
	return s == PAYMENT_PENDING || s == PAYMENT_PROCESSING || s == PAYMENT_COMPLETED
}

func (s PaymentStatus) Valid() bool {
	switch s {
	case PAYMENT_PENDING, PAYMENT_PROCESSING, PAYMENT_COMPLETED, PAYMENT_FAILED, PAYMENT_REFUNDED:
		return true
	}
	return false
}

type RefundStatus string

const (
	REFUND_PENDING   RefundStatus = "pending"
	REFUND_PROCESSED RefundStatus = "processed"
	REFUND_REJECTED  RefundStatus = "rejected"
)

type PaymentMethod string

const (
	PAYMENT_METHOD_STRIPE PaymentMethod = "stripe"
	PAYMENT_METHOD_CHAPA  PaymentMethod = "chapa"
)

type SimpleRequestParams struct {
	ID uint `uri:"id" binding:"required"`
}

type PaymentRequestParams struct {
	PaymentID string `uri:"paymentId" binding:"required"`
}

type CheckoutRequestBody struct {
	BookingID     uint   `json:"bookingId" binding:"required"`
	PaymentMethod string `json:"paymentMethod" binding:"required,oneof=stripe chapa"`
	Currency      string `json:"currency,omitempty" binding:"omitempty,oneof=ETB USD EUR"`
	ReturnURL     string `json:"returnUrl,omitempty" binding:"omitempty,url"`
}

type RefundRequestBody struct {
	Reason string   `json:"reason" binding:"required,max=500"`
	Amount *float64 `json:"amount,omitempty" binding:"omitempty,gt=0"`
}

type PaymentHistoryQuery struct {
	Page   int    `form:"page" binding:"omitempty,min=1"`
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Status string `form:"status" binding:"omitempty,oneof=pending processing completed failed refunded"`
}

type RegisterDeviceRequestBody struct {
	Token string `json:"token" binding:"required"`
}

type Handler func(payload string)
