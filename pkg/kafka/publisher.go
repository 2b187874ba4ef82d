package kafka

import (
	"context"
	"time"

	"github.com/Astemirdum/library-circulation/pkg/circuit_breaker"
	"github.com/IBM/sarama"
)

type Publisher struct {
	producer sarama.SyncProducer
	topic    string
	cb       circuit_breaker.CircuitBreaker
}

func NewPublisher(producer sarama.SyncProducer, topic string) *Publisher {
	return &Publisher{
		producer: producer,
		topic:    topic,
		cb:       circuit_breaker.New(20, time.Second*10, 0.5, 2),
	}
}

func (p *Publisher) Publish(_ context.Context, events ...EventCirculation) error {
	msgs := make([]*sarama.ProducerMessage, 0, len(events))
	for _, e := range events {
		data, err := e.Encode()
		if err != nil {
			return err
		}
		msgs = append(msgs, &sarama.ProducerMessage{
			Topic: p.topic,
			Key:   sarama.StringEncoder(e.Key()),
			Value: sarama.ByteEncoder(data),
		})
	}
	if len(msgs) == 0 {
		return nil
	}
	return p.cb.Call(func() error {
		return p.producer.SendMessages(msgs)
	})
}

func (p *Publisher) Close() error {
	return p.producer.Close()
}
