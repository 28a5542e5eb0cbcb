package postgresql_test

import (
	"context"
	"testing"

	"github.com/cmlabs-hris/guardops-backend/internal/domain/site"
	"github.com/cmlabs-hris/guardops-backend/internal/repository/postgresql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSiteRepository_CodeUniquePerTenant(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	tenantA, _ := setup.SeedTenant(t, "tenant-a")
	tenantB, _ := setup.SeedTenant(t, "tenant-b")
	repo := postgresql.NewSiteRepository(setup.DB)

	a, err := repo.Create(ctx, site.Site{TenantID: tenantA, Name: "Port", Code: "PORT"})
	require.NoError(t, err)

	_, err = repo.Create(ctx, site.Site{TenantID: tenantA, Name: "Port 2", Code: "PORT"})
	assert.ErrorIs(t, err, site.ErrSiteCodeExists)

	_, err = repo.Create(ctx, site.Site{TenantID: tenantB, Name: "Port", Code: "PORT"})
	assert.NoError(t, err)

	_, err = repo.GetByID(ctx, a.ID, tenantB)
	assert.ErrorIs(t, err, site.ErrSiteNotFound)

	require.NoError(t, repo.Deactivate(ctx, a.ID, tenantA))
	got, err := repo.GetByID(ctx, a.ID, tenantA)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
}
