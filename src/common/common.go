package common

import (
	"context"
	"huletfish/src/lib"
	awslib "huletfish/src/lib/aws"
	"huletfish/src/lib/mailer"
	"huletfish/src/types"
	"huletfish/src/utils"
	"log"
)

const (
	PAYMENT_EVENTS_TOPIC  = "PaymentEvents"
	PAYMENT_EVENTS_QUEUE  = "PaymentNotifications"
	NOTIFICATIONS_GROUPID = "payment-notifications"
	EMAILS_GROUPID        = "emails"
)

// listen wires a handler to the Kafka topic locally and to the SQS queue everywhere else.
func listen(ctx context.Context, groupId string, topic string, queue string, handler types.Handler) {
	if utils.IsLocal() {
		if err := lib.KafkaSubscribe(ctx, groupId, []string{topic}, handler); err != nil {
			log.Printf("[%s] Could not subscribe: %s\n", topic, err.Error())
		}
		return
	}
	awslib.NewSQSConsumer(queue, handler).Listen(ctx)
}

// SNSSubscribes points the payment events topic at the notifications queue.
func SNSSubscribes(ctx context.Context) {
	if utils.IsLocal() {
		return
	}
	topic := awslib.NewSNSSubscriber(utils.WithSuffix(PAYMENT_EVENTS_TOPIC))
	if topic == nil {
		return
	}
	topic.Subscribe(ctx, "sqs", lib.GetQueueArn(utils.WithSuffix(PAYMENT_EVENTS_QUEUE)))
}

// CreateLocalTopics creates the Kafka topics the local stack relies on.
func CreateLocalTopics() {
	if !utils.IsLocal() {
		return
	}
	if _, err := lib.KafkaCreateTopics(utils.WithSuffix(PAYMENT_EVENTS_TOPIC), mailer.Queue()); err != nil {
		log.Printf("[Kafka] Could not create topics: %s\n", err.Error())
	}
}
