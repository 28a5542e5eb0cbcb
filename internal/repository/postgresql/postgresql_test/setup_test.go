package postgresql_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/cmlabs-hris/guardops-backend/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

const migrationsDir = "../../../../migrations"

// TestDatabaseSetup holds a connection to a disposable test database.
type TestDatabaseSetup struct {
	DB *database.DB
}

// NewTestDatabase connects to TEST_DATABASE_URL and recreates the schema.
// Tests are skipped when the variable is not set.
func NewTestDatabase(t *testing.T) *TestDatabaseSetup {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping repository integration test")
	}

	db, err := database.NewPostgreSQLDB(dsn, database.PoolOptions{MaxConns: 4, MinConns: 1})
	require.NoError(t, err, "failed to connect to test database")

	setup := &TestDatabaseSetup{DB: db}
	require.NoError(t, setup.migrate(context.Background()))
	t.Cleanup(setup.Close)
	return setup
}

func (s *TestDatabaseSetup) migrate(ctx context.Context) error {
	for _, name := range []string{"000001_init.down.sql", "000001_init.up.sql"} {
		sql, err := os.ReadFile(filepath.Join(migrationsDir, name))
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", name, err)
		}
		if _, err := s.DB.Exec(ctx, string(sql)); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", name, err)
		}
	}
	return nil
}

// SeedTenant inserts a tenant and an owner user and returns their ids.
func (s *TestDatabaseSetup) SeedTenant(t *testing.T, slug string) (tenantID, userID string) {
	t.Helper()
	ctx := context.Background()

	tenantID = uuid.Must(uuid.NewV7()).String()
	userID = uuid.Must(uuid.NewV7()).String()

	_, err := s.DB.Exec(ctx, `INSERT INTO tenants (id, name, slug) VALUES ($1, $2, $3)`, tenantID, slug, slug)
	require.NoError(t, err)
	_, err = s.DB.Exec(ctx, `
		INSERT INTO users (id, tenant_id, email, full_name, role, email_verified)
		VALUES ($1, $2, $3, 'Owner', 'owner', TRUE)
	`, userID, tenantID, slug+"@example.test")
	require.NoError(t, err)
	return tenantID, userID
}

func (s *TestDatabaseSetup) Close() {
	s.DB.Close()
}
