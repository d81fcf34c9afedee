package kafka

import (
	"ms-gifting/internal/kafka"
	"ms-gifting/internal/models"
)

// Publisher binds the shared producer to the gift-created topic.
type Publisher struct {
	Producer *kafka.Producer
	Topic    string
	// Brokers enables the missing-topic retry; empty disables it.
	Brokers []string
}

func (p *Publisher) PublishGiftCreated(gift models.Gift) error {
	err := p.Producer.PublishGiftCreated(p.Topic, gift)
	if err == nil || len(p.Brokers) == 0 {
		return err
	}

	// The topic may not exist yet on a fresh broker; create it and retry once.
	if topicErr := kafka.CreateTopicIfNotExists(p.Brokers, p.Topic); topicErr != nil {
		return err
	}
	return p.Producer.PublishGiftCreated(p.Topic, gift)
}
