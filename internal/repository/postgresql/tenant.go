package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/guardops-backend/internal/domain/tenant"
	"github.com/cmlabs-hris/guardops-backend/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type tenantRepositoryImpl struct {
	db *database.DB
}

func NewTenantRepository(db *database.DB) tenant.TenantRepository {
	return &tenantRepositoryImpl{db: db}
}

const tenantColumns = `id, name, slug, is_active, created_at, updated_at`

func scanTenant(row pgx.Row) (tenant.Tenant, error) {
	var t tenant.Tenant
	err := row.Scan(&t.ID, &t.Name, &t.Slug, &t.IsActive, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

// Create implements tenant.TenantRepository.
func (r *tenantRepositoryImpl) Create(ctx context.Context, newTenant tenant.Tenant) (tenant.Tenant, error) {
	q := GetQuerier(ctx, r.db)

	id, err := uuid.NewV7()
	if err != nil {
		return tenant.Tenant{}, err
	}

	query := `
		INSERT INTO tenants (id, name, slug, is_active)
		VALUES ($1, $2, $3, TRUE)
		RETURNING ` + tenantColumns

	created, err := scanTenant(q.QueryRow(ctx, query, id.String(), newTenant.Name, newTenant.Slug))
	if err != nil {
		if isUniqueViolation(err, "tenants_slug_key") {
			return tenant.Tenant{}, tenant.ErrTenantSlugExists
		}
		return tenant.Tenant{}, fmt.Errorf("failed to create tenant: %w", err)
	}
	return created, nil
}

// GetByID implements tenant.TenantRepository.
func (r *tenantRepositoryImpl) GetByID(ctx context.Context, id string) (tenant.Tenant, error) {
	q := GetQuerier(ctx, r.db)
	t, err := scanTenant(q.QueryRow(ctx, `SELECT `+tenantColumns+` FROM tenants WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return tenant.Tenant{}, tenant.ErrTenantNotFound
		}
		return tenant.Tenant{}, fmt.Errorf("failed to get tenant: %w", err)
	}
	return t, nil
}

// GetBySlug implements tenant.TenantRepository.
func (r *tenantRepositoryImpl) GetBySlug(ctx context.Context, slug string) (tenant.Tenant, error) {
	q := GetQuerier(ctx, r.db)
	t, err := scanTenant(q.QueryRow(ctx, `SELECT `+tenantColumns+` FROM tenants WHERE slug = $1`, slug))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return tenant.Tenant{}, tenant.ErrTenantNotFound
		}
		return tenant.Tenant{}, fmt.Errorf("failed to get tenant: %w", err)
	}
	return t, nil
}
