package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/light-bringer/provenance-ledger/internal/app/product/domain"
	"github.com/light-bringer/provenance-ledger/internal/app/product/mappers"
)

// Producer is the subset of *kgo.Client used by KafkaSink.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
	Close()
}

// KafkaSink produces one record per audit entry, keyed by product id so a
// product's entries stay on one partition. Role assignments are keyed by
// their subject.
type KafkaSink struct {
	producer Producer
	topic    string
}

// NewKafkaSink creates a franz-go client for brokers.
func NewKafkaSink(brokers []string, topic string) (*KafkaSink, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.RequiredAcks(kgo.AllISRAcks()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka client: %w", err)
	}
	return &KafkaSink{producer: client, topic: topic}, nil
}

// NewKafkaSinkWithProducer wraps an existing producer.
func NewKafkaSinkWithProducer(producer Producer, topic string) *KafkaSink {
	return &KafkaSink{producer: producer, topic: topic}
}

func (s *KafkaSink) Name() string { return "kafka" }

func (s *KafkaSink) Publish(ctx context.Context, entries []*domain.AuditEntry) error {
	records := make([]*kgo.Record, 0, len(entries))
	for _, e := range entries {
		payload, err := json.Marshal(mappers.AuditToProto(e))
		if err != nil {
			return fmt.Errorf("failed to encode audit entry %d: %w", e.TxID, err)
		}
		records = append(records, &kgo.Record{
			Topic: s.topic,
			Key:   recordKey(e),
			Value: payload,
			Headers: []kgo.RecordHeader{
				{Key: "tx_id", Value: []byte(strconv.FormatUint(e.TxID, 10))},
				{Key: "action", Value: []byte(e.Action)},
			},
		})
	}

	if err := s.producer.ProduceSync(ctx, records...).FirstErr(); err != nil {
		return fmt.Errorf("produce to %s: %w", s.topic, err)
	}
	return nil
}

func (s *KafkaSink) Close() error {
	s.producer.Close()
	return nil
}

func recordKey(e *domain.AuditEntry) []byte {
	if e.ProductID != "" {
		return []byte(e.ProductID)
	}
	return []byte(e.Subject)
}
