package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/light-bringer/provenance-ledger/internal/app/product/domain"
	"github.com/light-bringer/provenance-ledger/internal/app/product/mappers"
)

// RedisSink appends audit entries to a Redis stream.
// Entry n gets stream id "<n+1>-0", so a re-published entry is rejected by
// Redis and skipped.
type RedisSink struct {
	client redis.Cmdable
	closer func() error
	stream string
}

// NewRedisSink connects to addr and verifies the connection.
func NewRedisSink(ctx context.Context, addr, stream string) (*RedisSink, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &RedisSink{client: client, closer: client.Close, stream: stream}, nil
}

// NewRedisSinkWithClient wraps an existing client. Close does not close it.
func NewRedisSinkWithClient(client redis.Cmdable, stream string) *RedisSink {
	return &RedisSink{client: client, stream: stream}
}

func (s *RedisSink) Name() string { return "redis" }

// StreamID returns the stream id an entry is published under.
func StreamID(txID uint64) string {
	return fmt.Sprintf("%d-0", txID+1)
}

func (s *RedisSink) Publish(ctx context.Context, entries []*domain.AuditEntry) error {
	for _, e := range entries {
		payload, err := json.Marshal(mappers.AuditToProto(e))
		if err != nil {
			return fmt.Errorf("failed to encode audit entry %d: %w", e.TxID, err)
		}

		err = s.client.XAdd(ctx, &redis.XAddArgs{
			Stream: s.stream,
			ID:     StreamID(e.TxID),
			Values: map[string]interface{}{
				"tx_id":      e.TxID,
				"action":     string(e.Action),
				"product_id": string(e.ProductID),
				"payload":    payload,
			},
		}).Err()
		if err != nil {
			if isDuplicateID(err) {
				continue
			}
			return fmt.Errorf("xadd %s %s: %w", s.stream, StreamID(e.TxID), err)
		}
	}
	return nil
}

func (s *RedisSink) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer()
}

// isDuplicateID reports the XADD error for an id at or below the stream's last id.
func isDuplicateID(err error) bool {
	return strings.Contains(err.Error(), "equal or smaller than the target stream top item")
}
