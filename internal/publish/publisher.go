// Package publish streams campaign plan sends to Kafka for downstream delivery workers.
package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/segmentio/kafka-go"

	"github.com/Jmoney1214/liquormarketingagent/internal/types"
)

// Header keys attached to every send message
const (
	HeaderPlanID = "plan_id"
	HeaderPeriod = "period"
	HeaderEngine = "engine"
)

// batchSize is the number of messages handed to the writer per call
const batchSize = 100

// MessageWriter is the part of *kafka.Writer the publisher needs
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher writes plan sends to a topic, keyed by customer email so all
// sends for one customer land on the same partition.
type Publisher struct {
	writer MessageWriter
	logger *slog.Logger
}

// NewPublisher creates a Kafka-backed publisher
func NewPublisher(brokers []string, topic string, logger *slog.Logger) *Publisher {
	return NewPublisherWithWriter(&kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}, logger)
}

// NewPublisherWithWriter creates a publisher over an existing writer
func NewPublisherWithWriter(writer MessageWriter, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{writer: writer, logger: logger}
}

// PublishPlan writes one message per send, in plan order. It returns the
// number of messages written before any failure.
func (p *Publisher) PublishPlan(ctx context.Context, plan types.CampaignPlan) (int, error) {
	headers := []kafka.Header{
		{Key: HeaderPeriod, Value: []byte(plan.Period)},
		{Key: HeaderEngine, Value: []byte(plan.Engine)},
	}
	if plan.ID != "" {
		headers = append(headers, kafka.Header{Key: HeaderPlanID, Value: []byte(plan.ID)})
	}

	written := 0
	batch := make([]kafka.Message, 0, batchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := p.writer.WriteMessages(ctx, batch...); err != nil {
			return fmt.Errorf("failed to write sends to kafka: %w", err)
		}
		written += len(batch)
		batch = batch[:0]
		return nil
	}

	for _, send := range plan.Sends {
		data, err := json.Marshal(send)
		if err != nil {
			return written, fmt.Errorf("failed to encode send for %s: %w", send.Email, err)
		}
		batch = append(batch, kafka.Message{
			Key:     []byte(send.Email),
			Value:   data,
			Headers: headers,
		})
		if len(batch) == batchSize {
			if err := flush(); err != nil {
				return written, err
			}
		}
	}
	if err := flush(); err != nil {
		return written, err
	}

	p.logger.Info("published campaign plan", "sends", written, "period", plan.Period, "engine", plan.Engine)
	return written, nil
}

// Close flushes and closes the writer
func (p *Publisher) Close() error {
	return p.writer.Close()
}
