package models

import (
	"huletfish/src/types"
	"time"
)

// WebhookEvent is the dedup ledger for gateway notifications. A redelivered
// event collides on idx_webhook_events_gateway_event and is skipped.
type WebhookEvent struct {
	ID              uint                `gorm:"primarykey" json:"id"`
	Gateway         types.PaymentMethod `gorm:"size:20;uniqueIndex:idx_webhook_events_gateway_event,priority:1;not null" json:"gateway"`
	EventID         string              `gorm:"size:191;uniqueIndex:idx_webhook_events_gateway_event,priority:2;not null" json:"eventId"`
	EventType       string              `gorm:"size:100" json:"eventType"`
	PaymentID       string              `gorm:"size:64;index" json:"paymentId,omitempty"`
	Payload         types.JSONB         `gorm:"type:jsonb" json:"payload,omitempty"`
	ProcessedAt     *time.Time          `json:"processedAt,omitempty"`
	ProcessingError *string             `gorm:"type:text" json:"processingError,omitempty"`
	CreatedAt       time.Time           `gorm:"autoCreateTime" json:"createdAt"`
}
