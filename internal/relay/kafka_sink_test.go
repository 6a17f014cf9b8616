package relay

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	pb "github.com/light-bringer/provenance-ledger/api/ledger/v1"
	"github.com/light-bringer/provenance-ledger/internal/app/product/domain"
)

type fakeProducer struct {
	records []*kgo.Record
	err     error
	closed  bool
}

func (p *fakeProducer) ProduceSync(_ context.Context, rs ...*kgo.Record) kgo.ProduceResults {
	results := make(kgo.ProduceResults, 0, len(rs))
	for _, r := range rs {
		if p.err == nil {
			p.records = append(p.records, r)
		}
		results = append(results, kgo.ProduceResult{Record: r, Err: p.err})
	}
	return results
}

func (p *fakeProducer) Close() { p.closed = true }

func header(r *kgo.Record, key string) string {
	for _, h := range r.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func TestKafkaSink_Publish(t *testing.T) {
	producer := &fakeProducer{}
	sink := NewKafkaSinkWithProducer(producer, "ledger.audit")
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	entries := []*domain.AuditEntry{
		{TxID: 0, Actor: "owner", Action: domain.ActionAssignRole, Subject: "M", Details: "Role: manufacturer", RecordedAt: at},
		{TxID: 1, Actor: "M", Action: domain.ActionRegister, ProductID: "PROD-1", Details: "Product registered", RecordedAt: at},
	}
	require.NoError(t, sink.Publish(context.Background(), entries))
	require.Len(t, producer.records, 2)

	role := producer.records[0]
	assert.Equal(t, "ledger.audit", role.Topic)
	assert.Equal(t, []byte("M"), role.Key)
	assert.Equal(t, "0", header(role, "tx_id"))
	assert.Equal(t, "assign-role", header(role, "action"))

	product := producer.records[1]
	assert.Equal(t, []byte("PROD-1"), product.Key)
	assert.Equal(t, "1", header(product, "tx_id"))

	var decoded pb.AuditEntry
	require.NoError(t, json.Unmarshal(product.Value, &decoded))
	assert.Equal(t, uint64(1), decoded.TxID)
	assert.Equal(t, "register", decoded.Action)
	assert.Equal(t, "PROD-1", decoded.ProductID)
	assert.True(t, at.Equal(decoded.RecordedAt))

	require.NoError(t, sink.Close())
	assert.True(t, producer.closed)
}

func TestKafkaSink_ProduceError(t *testing.T) {
	producer := &fakeProducer{err: errors.New("broker down")}
	sink := NewKafkaSinkWithProducer(producer, "ledger.audit")

	err := sink.Publish(context.Background(), []*domain.AuditEntry{{TxID: 3, Action: domain.ActionUpdate, ProductID: "P"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")
}
