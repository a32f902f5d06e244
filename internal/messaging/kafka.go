package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/sirupsen/logrus"
)

// KafkaPublisher writes MessageEvents to a single topic through a sync producer
type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
	log      logrus.FieldLogger
	now      func() time.Time
}

// NewKafkaPublisher connects a sync producer to the brokers
func NewKafkaPublisher(brokers []string, topic string, log logrus.FieldLogger) (*KafkaPublisher, error) {
	producer, err := sarama.NewSyncProducer(brokers, ProducerConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}
	return NewKafkaPublisherWithProducer(producer, topic, log), nil
}

// NewKafkaPublisherWithProducer wraps an existing producer
func NewKafkaPublisherWithProducer(producer sarama.SyncProducer, topic string, log logrus.FieldLogger) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topic: topic, log: log, now: time.Now}
}

// ProducerConfig waits for all replicas and retries, as a sync producer must
func ProducerConfig() *sarama.Config {
	cfg := sarama.NewConfig()
	cfg.Version = sarama.V2_8_1_0
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 5
	cfg.Producer.Return.Successes = true
	return cfg
}

// Publish implements Publisher
func (k *KafkaPublisher) Publish(ctx context.Context, eventType, key string, payload any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(MessageEvent{
		Type:      eventType,
		Timestamp: k.now().UTC(),
		Payload:   payload,
	})
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", eventType, err)
	}

	msg := &sarama.ProducerMessage{
		Topic: k.topic,
		Value: sarama.ByteEncoder(data),
	}
	if key != "" {
		msg.Key = sarama.StringEncoder(key)
	}

	partition, offset, err := k.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("failed to publish %s event: %w", eventType, err)
	}

	k.log.WithFields(logrus.Fields{
		"event":     eventType,
		"partition": partition,
		"offset":    offset,
	}).Debug("Published event")
	return nil
}

// Close implements Publisher
func (k *KafkaPublisher) Close() error {
	return k.producer.Close()
}
