package lib

import (
	"context"
	"encoding/json"
	"huletfish/src/types"
	"log"
	"os"

	"github.com/confluentinc/confluent-kafka-go/kafka"
)

var kafkaProducer *kafka.Producer

func GetKafkaProducer(clientId string) (*kafka.Producer, error) {
	if kafkaProducer != nil {
		return kafkaProducer, nil
	}
	p, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": os.Getenv("KAFKA_BROKER"),
		"client.id":         clientId,
		"acks":              "all",
	})
	if err != nil {
		log.Printf("Error on producer: %s\n", err.Error())
		return nil, err
	}
	go func() {
		for e := range p.Events() {
			if m, ok := e.(*kafka.Message); ok && m.TopicPartition.Error != nil {
				log.Printf("[Kafka] Delivery failed on %s: %s\n", *m.TopicPartition.Topic, m.TopicPartition.Error.Error())
			}
		}
	}()
	kafkaProducer = p
	return p, nil
}

// KafkaProduceMessage serializes payload as JSON. key keeps messages of one payment on one partition.
func KafkaProduceMessage(clientId string, topic string, key string, payload any) error {
	p, err := GetKafkaProducer(clientId)
	if err != nil {
		return err
	}
	value, err := json.Marshal(payload)
	if err != nil {
		log.Printf("[Kafka] Error serializing payload for %s: %s\n", topic, err.Error())
		return err
	}
	msg := &kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Value:          value,
	}
	if key != "" {
		msg.Key = []byte(key)
	}
	if err := p.Produce(msg, nil); err != nil {
		log.Printf("[Kafka] Error producing to %s: %s\n", topic, err.Error())
		return err
	}
	return nil
}

// KafkaSubscribe polls topics until ctx is done and hands every message body to handler.
func KafkaSubscribe(ctx context.Context, groupId string, topics []string, handler types.Handler) error {
	c, err := kafka.NewConsumer(&kafka.ConfigMap{
		"bootstrap.servers": os.Getenv("KAFKA_BROKER"),
		"group.id":          groupId,
		"auto.offset.reset": "smallest",
		"retry.backoff.ms":  100,
	})
	if err != nil {
		log.Printf("Error on consumer: %s\n", err.Error())
		return err
	}
	if err := c.SubscribeTopics(topics, nil); err != nil {
		log.Printf("Error subscribing to %v: %s\n", topics, err.Error())
		c.Close()
		return err
	}
	go func() {
		defer c.Close()
		log.Printf("[Kafka] %s: waiting for messages on %v...\n", groupId, topics)
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}
			switch e := c.Poll(100).(type) {
			case *kafka.Message:
				handler(string(e.Value))
			case kafka.Error:
				log.Printf("[Kafka] %s: %v\n", groupId, e)
				if e.IsFatal() {
					return
				}
			}
		}
	}()
	return nil
}

func KafkaCreateTopics(topics ...string) ([]kafka.TopicResult, error) {
	a, err := kafka.NewAdminClient(&kafka.ConfigMap{
		"bootstrap.servers": os.Getenv("KAFKA_BROKER"),
	})
	if err != nil {
		log.Printf("Error on AdminClient: %s\n", err.Error())
		return nil, err
	}
	defer a.Close()
	topicsDef := []kafka.TopicSpecification{}
	for _, topic := range topics {
		topicsDef = append(topicsDef, kafka.TopicSpecification{
			Topic:             topic,
			NumPartitions:     10,
			ReplicationFactor: 1,
		})
	}
	result, err := a.CreateTopics(context.Background(), topicsDef)
	if err != nil {
		log.Printf("Error creating topics: %s\n", err.Error())
		return nil, err
	}
	return result, nil
}
