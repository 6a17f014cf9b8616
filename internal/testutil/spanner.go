//go:build integration

package testutil

import (
	"context"
	"os"
	"testing"

	"cloud.google.com/go/spanner"
	"github.com/stretchr/testify/require"

	"github.com/light-bringer/provenance-ledger/internal/models/m_audit"
	"github.com/light-bringer/provenance-ledger/internal/models/m_ledger_meta"
	"github.com/light-bringer/provenance-ledger/internal/models/m_product"
	"github.com/light-bringer/provenance-ledger/internal/models/m_role"
	"github.com/light-bringer/provenance-ledger/internal/models/m_status_history"
)

// SetupSpannerTest creates a client on the emulator database with every ledger table emptied.
// The schema must already exist (cmd/migrate).
func SetupSpannerTest(t *testing.T) *spanner.Client {
	t.Helper()

	if os.Getenv("SPANNER_EMULATOR_HOST") == "" {
		t.Skip("SPANNER_EMULATOR_HOST not set")
	}

	client, err := spanner.NewClient(context.Background(), GetTestSpannerDB())
	require.NoError(t, err, "failed to create Spanner client")

	CleanDatabase(t, client)
	t.Cleanup(func() {
		CleanDatabase(t, client)
		client.Close()
	})
	return client
}

// GetTestSpannerDB returns the test Spanner database string.
func GetTestSpannerDB() string {
	if db := os.Getenv("SPANNER_TEST_DATABASE"); db != "" {
		return db
	}
	return "projects/test-project/instances/dev-instance/databases/provenance-ledger-test"
}

// CleanDatabase deletes every row, children before parents.
func CleanDatabase(t *testing.T, client *spanner.Client) {
	t.Helper()

	_, err := client.Apply(context.Background(), []*spanner.Mutation{
		spanner.Delete(m_status_history.TableName, spanner.AllKeys()),
		spanner.Delete(m_product.TableName, spanner.AllKeys()),
		spanner.Delete(m_audit.TableName, spanner.AllKeys()),
		spanner.Delete(m_role.TableName, spanner.AllKeys()),
		spanner.Delete(m_ledger_meta.TableName, spanner.AllKeys()),
	})
	require.NoError(t, err, "failed to clean database")
}
