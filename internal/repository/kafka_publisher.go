package repository

import (
	"context"

	"CoinSage/internal/domain/models"
	domrepo "CoinSage/internal/domain/repository"
	pkgkafka "CoinSage/pkg/kafka"
)

// KafkaRecommendationPublisher fans generated recommendations out to a
// Kafka topic, keyed by symbol so one symbol stays ordered.
type KafkaRecommendationPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

func NewKafkaRecommendationPublisher(producer *pkgkafka.Producer, topic string) domrepo.RecommendationPublisher {
	return &KafkaRecommendationPublisher{producer: producer, topic: topic}
}

func (p *KafkaRecommendationPublisher) Publish(ctx context.Context, rec *models.Recommendation) error {
	return p.producer.Publish(ctx, p.topic, []byte(rec.Symbol), rec)
}

func (p *KafkaRecommendationPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
