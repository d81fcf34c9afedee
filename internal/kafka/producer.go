package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"ms-gifting/internal/models"
)

type Producer struct {
	Writer *kafka.Writer
}

func NewProducer(brokers []string) *Producer {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Balancer: &kafka.LeastBytes{},
	}
	return &Producer{Writer: writer}
}

// Publish writes a raw message to the given topic.
func (p *Producer) Publish(topic string, key string, value []byte) error {
	return p.Writer.WriteMessages(context.Background(),
		kafka.Message{
			Topic: topic,
			Key:   []byte(key),
			Value: value,
		},
	)
}

// PublishGiftCreated streams the gift creation event to Kafka
func (p *Producer) PublishGiftCreated(topic string, gift models.Gift) error {
	msgBytes, err := json.Marshal(gift)
	if err != nil {
		return err
	}

	fmt.Printf("Publishing to Kafka [gift_created]: %s\n", string(msgBytes))

	return p.Publish(topic, gift.GiftID, msgBytes)
}

// Close flushes pending messages and shuts the writer down.
func (p *Producer) Close() error {
	return p.Writer.Close()
}
