package get_status_history

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/light-bringer/provenance-ledger/internal/app/product/domain"
	"github.com/light-bringer/provenance-ledger/internal/testutil"
)

func TestExecute(t *testing.T) {
	l := testutil.OpenMemory(t, testutil.NewMockClock())
	testutil.Bootstrap(t, l)
	testutil.GrantRole(t, l, "M", domain.RoleManufacturer)
	testutil.Register(t, l, "PROD-1", "M")

	q := NewQuery(l)

	entry, err := q.Execute(context.Background(), &Request{ProductID: "PROD-1", Sequence: 0})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRegistered, entry.Status)
	assert.Equal(t, domain.Identity("M"), entry.ChangedBy)

	tests := []struct {
		name string
		req  *Request
	}{
		{"sequence past update count", &Request{ProductID: "PROD-1", Sequence: 1}},
		{"unknown product", &Request{ProductID: "NOPE", Sequence: 0}},
		{"empty id", &Request{ProductID: "", Sequence: 0}},
		{"id too long", &Request{ProductID: strings.Repeat("p", domain.MaxProductIDLength+1), Sequence: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := q.Execute(context.Background(), tt.req)
			assert.ErrorIs(t, err, domain.ErrHistoryEntryNotFound)
		})
	}
}
