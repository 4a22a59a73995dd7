package aws

import (
	"context"
	"huletfish/src/lib"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

type SNSSubscriber struct {
	Name  string
	inner *sns.Client
}

func NewSNSSubscriber(topic string) *SNSSubscriber {
	inner := lib.AWSGetSNSClient()
	if inner == nil {
		return nil
	}
	return &SNSSubscriber{
		Name:  topic,
		inner: inner,
	}
}

// Subscribe is idempotent on the SNS side; raw delivery keeps the original message body.
func (s *SNSSubscriber) Subscribe(ctx context.Context, proto string, endpoint string) (*string, error) {
	output, err := s.inner.Subscribe(ctx, &sns.SubscribeInput{
		Protocol: aws.String(proto),
		TopicArn: aws.String(lib.GetTopicArn(s.Name)),
		Endpoint: aws.String(endpoint),
		Attributes: map[string]string{
			"RawMessageDelivery": "true",
		},
		ReturnSubscriptionArn: true,
	})
	if err != nil {
		log.Printf("Error subscribing to topic [%s]: %s\n", s.Name, err.Error())
		return nil, err
	}
	log.Printf("[%s] Subscribed %s: %s\n", s.Name, endpoint, aws.ToString(output.SubscriptionArn))
	return output.SubscriptionArn, nil
}
