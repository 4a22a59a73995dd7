package common

import (
	"context"
	"encoding/json"
	"huletfish/src/lib"
	"huletfish/src/notifications"
	"huletfish/src/payments"
	"huletfish/src/utils"
	"log"

	"github.com/gookit/goutil/dump"
)

// EventSender delivers one serialized payment event. key is the payment id.
type EventSender func(ctx context.Context, topic string, key string, eventType string, body []byte) error

func kafkaSender(_ context.Context, topic string, key string, _ string, body []byte) error {
	return lib.KafkaProduceMessage("payments", topic, key, json.RawMessage(body))
}

func snsSender(ctx context.Context, topic string, _ string, eventType string, body []byte) error {
	return lib.SNSPublish(ctx, topic, eventType, string(body))
}

// QueuePublisher implements payments.Publisher on top of Kafka (local) or SNS.
type QueuePublisher struct {
	topic string
	send  EventSender
}

func NewQueuePublisher() *QueuePublisher {
	if utils.IsLocal() {
		return NewQueuePublisherWith(utils.WithSuffix(PAYMENT_EVENTS_TOPIC), kafkaSender)
	}
	return NewQueuePublisherWith(utils.WithSuffix(PAYMENT_EVENTS_TOPIC), snsSender)
}

func NewQueuePublisherWith(topic string, send EventSender) *QueuePublisher {
	return &QueuePublisher{topic: topic, send: send}
}

func (q *QueuePublisher) Publish(ctx context.Context, event payments.Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if utils.IsLocal() {
		dump.P(event)
	}
	return q.send(ctx, q.topic, event.PaymentID, string(event.Type), body)
}

// PaymentEventsConsumer feeds queued payment events to the notifier.
func PaymentEventsConsumer(ctx context.Context, notifier *notifications.Notifier) {
	log.Println("[PaymentEvents] Starting notifications consumer")
	listen(ctx, NOTIFICATIONS_GROUPID, utils.WithSuffix(PAYMENT_EVENTS_TOPIC), utils.WithSuffix(PAYMENT_EVENTS_QUEUE), notifier.HandleMessage)
}
