package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/segmentio/kafka-go"

	"ms-gifting/internal/models"
)

type Consumer struct {
	reader *kafka.Reader
}

// NewConsumer creates a new Kafka consumer for the given topic and group
func NewConsumer(brokers []string, topic, groupID string) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 10e3, // 10KB
		MaxBytes: 10e6, // 10MB
	})
	return &Consumer{reader: reader}
}

// Start begins consuming gift events from Kafka. Blocks until the context is
// cancelled or the reader is closed.
func (c *Consumer) Start(ctx context.Context, handler func(gift models.Gift)) {
	fmt.Println("Kafka gift consumer started...")

	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("Error reading message: %v\n", err)
			continue
		}

		var gift models.Gift
		if err := json.Unmarshal(msg.Value, &gift); err != nil {
			log.Printf("Failed to unmarshal gift event: %v\n", err)
			continue
		}

		log.Printf("Received gift event: ID=%s", gift.GiftID)
		handler(gift)
	}
}

// Close gracefully shuts down the Kafka reader
func (c *Consumer) Close() error {
	return c.reader.Close()
}
