package queue

import (
	"context"
	"encoding/json"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/sirupsen/logrus"
)

var _ ImportQueue = (*Kafka)(nil)

// Kafka publishes import events keyed by document id, so events of one document stay ordered.
type Kafka struct {
	producer *kafka.Producer
	topic    string
}

func NewKafka(brokers, topic string) (*Kafka, error) {
	if topic == "" {
		topic = ImportEventTopic
	}

	producer, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": brokers,
		"acks":              "all",
	})
	if err != nil {
		return nil, err
	}

	return &Kafka{producer: producer, topic: topic}, nil
}

func (k *Kafka) PublishImport(ctx context.Context, event *ImportEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return err
	}

	delivery := make(chan kafka.Event, 1)
	err = k.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &k.topic, Partition: kafka.PartitionAny},
		Key:            []byte(event.DocumentID),
		Value:          value,
	}, delivery)
	if err != nil {
		return err
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case e := <-delivery:
		if m, ok := e.(*kafka.Message); ok && m.TopicPartition.Error != nil {
			return m.TopicPartition.Error
		}
	}

	return nil
}

func (k *Kafka) Close() error {
	if remaining := k.producer.Flush(5000); remaining > 0 {
		logrus.Warnf("%d import events not delivered before close", remaining)
	}
	k.producer.Close()
	return nil
}
