package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"shop-platform/internal/entity"
)

// KafkaOrderEvents publishes finalized attempts to the order topic.
type KafkaOrderEvents struct {
	writer *kafka.Writer
}

func NewKafkaOrderEvents(writer *kafka.Writer) *KafkaOrderEvents {
	return &KafkaOrderEvents{writer: writer}
}

func (p *KafkaOrderEvents) PublishOrderEvent(ctx context.Context, record *entity.OrderRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}

	// payment-approved-123456 or payment-rejected-123456
	msg := kafka.Message{
		Key:   []byte(fmt.Sprintf("payment-%s-%s", record.Status, record.PaymentID)),
		Value: data,
	}

	return p.writer.WriteMessages(ctx, msg)
}
