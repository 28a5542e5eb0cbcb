package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/guardops-backend/internal/domain/site"
	"github.com/cmlabs-hris/guardops-backend/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type siteRepositoryImpl struct {
	db *database.DB
}

func NewSiteRepository(db *database.DB) site.SiteRepository {
	return &siteRepositoryImpl{db: db}
}

const siteColumns = `id, tenant_id, name, code, address, client_name, is_active, created_at, updated_at`

const siteCodeConstraint = "sites_tenant_id_code_key"

func scanSite(row pgx.Row) (site.Site, error) {
	var s site.Site
	err := row.Scan(
		&s.ID,
		&s.TenantID,
		&s.Name,
		&s.Code,
		&s.Address,
		&s.ClientName,
		&s.IsActive,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	return s, err
}

// Create implements site.SiteRepository.
func (r *siteRepositoryImpl) Create(ctx context.Context, newSite site.Site) (site.Site, error) {
	q := GetQuerier(ctx, r.db)

	id, err := uuid.NewV7()
	if err != nil {
		return site.Site{}, err
	}

	query := `
		INSERT INTO sites (id, tenant_id, name, code, address, client_name, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, TRUE)
		RETURNING ` + siteColumns

	created, err := scanSite(q.QueryRow(ctx, query,
		id.String(),
		newSite.TenantID,
		newSite.Name,
		newSite.Code,
		newSite.Address,
		newSite.ClientName,
	))
	if err != nil {
		if isUniqueViolation(err, siteCodeConstraint) {
			return site.Site{}, site.ErrSiteCodeExists
		}
		return site.Site{}, fmt.Errorf("failed to create site: %w", err)
	}
	return created, nil
}

// GetByID implements site.SiteRepository.
func (r *siteRepositoryImpl) GetByID(ctx context.Context, id, tenantID string) (site.Site, error) {
	q := GetQuerier(ctx, r.db)

	found, err := scanSite(q.QueryRow(ctx,
		`SELECT `+siteColumns+` FROM sites WHERE id = $1 AND tenant_id = $2`, id, tenantID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return site.Site{}, site.ErrSiteNotFound
		}
		return site.Site{}, fmt.Errorf("failed to get site: %w", err)
	}
	return found, nil
}

// List implements site.SiteRepository.
func (r *siteRepositoryImpl) List(ctx context.Context, tenantID string, filter site.SiteFilter) ([]site.Site, int64, error) {
	q := GetQuerier(ctx, r.db)

	where := "tenant_id = $1"
	args := []interface{}{tenantID}
	argIdx := 2

	if filter.Search != nil && *filter.Search != "" {
		where += fmt.Sprintf(" AND (name ILIKE $%d OR code ILIKE $%d OR client_name ILIKE $%d)", argIdx, argIdx, argIdx)
		args = append(args, "%"+*filter.Search+"%")
		argIdx++
	}
	if filter.IsActive != nil {
		where += fmt.Sprintf(" AND is_active = $%d", argIdx)
		args = append(args, *filter.IsActive)
		argIdx++
	}

	var total int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*) FROM sites WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count sites: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM sites WHERE %s ORDER BY name ASC LIMIT $%d OFFSET $%d`,
		siteColumns, where, argIdx, argIdx+1)
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query sites: %w", err)
	}
	defer rows.Close()

	sites := make([]site.Site, 0, filter.Limit)
	for rows.Next() {
		s, err := scanSite(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan site: %w", err)
		}
		sites = append(sites, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return sites, total, nil
}

// Update implements site.SiteRepository.
func (r *siteRepositoryImpl) Update(ctx context.Context, req site.UpdateSiteRequest, tenantID string) (site.Site, error) {
	q := GetQuerier(ctx, r.db)

	set := "updated_at = NOW()"
	args := []interface{}{}
	argIdx := 1
	add := func(column string, v interface{}) {
		set += fmt.Sprintf(", %s = $%d", column, argIdx)
		args = append(args, v)
		argIdx++
	}
	if req.Name != nil {
		add("name", *req.Name)
	}
	if req.Code != nil {
		add("code", *req.Code)
	}
	if req.Address != nil {
		add("address", *req.Address)
	}
	if req.ClientName != nil {
		add("client_name", *req.ClientName)
	}
	if req.IsActive != nil {
		add("is_active", *req.IsActive)
	}

	query := fmt.Sprintf(`UPDATE sites SET %s WHERE id = $%d AND tenant_id = $%d RETURNING %s`,
		set, argIdx, argIdx+1, siteColumns)
	args = append(args, req.ID, tenantID)

	updated, err := scanSite(q.QueryRow(ctx, query, args...))
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return site.Site{}, site.ErrSiteNotFound
		case isUniqueViolation(err, siteCodeConstraint):
			return site.Site{}, site.ErrSiteCodeExists
		}
		return site.Site{}, fmt.Errorf("failed to update site: %w", err)
	}
	return updated, nil
}

// Deactivate implements site.SiteRepository.
func (r *siteRepositoryImpl) Deactivate(ctx context.Context, id, tenantID string) error {
	q := GetQuerier(ctx, r.db)
	tag, err := q.Exec(ctx, `
		UPDATE sites SET is_active = FALSE, updated_at = NOW()
		WHERE id = $1 AND tenant_id = $2
	`, id, tenantID)
	if err != nil {
		return fmt.Errorf("failed to deactivate site: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return site.ErrSiteNotFound
	}
	return nil
}
