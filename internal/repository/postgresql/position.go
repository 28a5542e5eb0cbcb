package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/guardops-backend/internal/domain/position"
	"github.com/cmlabs-hris/guardops-backend/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type positionRepositoryImpl struct {
	db *database.DB
}

func NewPositionRepository(db *database.DB) position.PositionRepository {
	return &positionRepositoryImpl{db: db}
}

const positionColumns = `id, tenant_id, site_id, name, shift_code, weekday_mask, required_headcount,
		active_from, active_until, is_active, created_at, updated_at`

func scanPosition(row pgx.Row) (position.PositionTemplate, error) {
	var (
		p    position.PositionTemplate
		mask []string
	)
	err := row.Scan(
		&p.ID,
		&p.TenantID,
		&p.SiteID,
		&p.Name,
		&p.ShiftCode,
		&mask,
		&p.RequiredHeadcount,
		&p.ActiveFrom,
		&p.ActiveUntil,
		&p.IsActive,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return position.PositionTemplate{}, err
	}
	p.WeekdayMask, err = position.ParseWeekdayMask(mask)
	if err != nil {
		return position.PositionTemplate{}, fmt.Errorf("position %s has corrupt weekday_mask: %w", p.ID, err)
	}
	return p, nil
}

func collectPositions(rows pgx.Rows) ([]position.PositionTemplate, error) {
	defer rows.Close()
	var out []position.PositionTemplate
	for rows.Next() {
		p, err := scanPosition(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Create implements position.PositionRepository.
func (r *positionRepositoryImpl) Create(ctx context.Context, tpl position.PositionTemplate) (position.PositionTemplate, error) {
	q := GetQuerier(ctx, r.db)

	id, err := uuid.NewV7()
	if err != nil {
		return position.PositionTemplate{}, err
	}

	query := `
		INSERT INTO position_templates (
			id, tenant_id, site_id, name, shift_code, weekday_mask, required_headcount,
			active_from, active_until, is_active
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, TRUE)
		RETURNING ` + positionColumns

	created, err := scanPosition(q.QueryRow(ctx, query,
		id.String(),
		tpl.TenantID,
		tpl.SiteID,
		tpl.Name,
		tpl.ShiftCode,
		tpl.WeekdayMask.Strings(),
		tpl.RequiredHeadcount,
		tpl.ActiveFrom,
		tpl.ActiveUntil,
	))
	if err != nil {
		return position.PositionTemplate{}, fmt.Errorf("failed to create position template: %w", err)
	}
	return created, nil
}

// GetByID implements position.PositionRepository.
func (r *positionRepositoryImpl) GetByID(ctx context.Context, id, siteID, tenantID string) (position.PositionTemplate, error) {
	q := GetQuerier(ctx, r.db)

	found, err := scanPosition(q.QueryRow(ctx, `
		SELECT `+positionColumns+`
		FROM position_templates
		WHERE id = $1 AND site_id = $2 AND tenant_id = $3
	`, id, siteID, tenantID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return position.PositionTemplate{}, position.ErrPositionNotFound
		}
		return position.PositionTemplate{}, fmt.Errorf("failed to get position template: %w", err)
	}
	return found, nil
}

// ListBySite implements position.PositionRepository.
func (r *positionRepositoryImpl) ListBySite(ctx context.Context, siteID, tenantID string, includeInactive bool) ([]position.PositionTemplate, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + positionColumns + `
		FROM position_templates
		WHERE site_id = $1 AND tenant_id = $2 AND (is_active OR $3)
		ORDER BY created_at ASC, id ASC
	`
	rows, err := q.Query(ctx, query, siteID, tenantID, includeInactive)
	if err != nil {
		return nil, fmt.Errorf("failed to list position templates: %w", err)
	}
	return collectPositions(rows)
}

// ListActiveBySite implements position.PositionRepository.
func (r *positionRepositoryImpl) ListActiveBySite(ctx context.Context, siteID, tenantID string) ([]position.PositionTemplate, error) {
	return r.ListBySite(ctx, siteID, tenantID, false)
}

// Update implements position.PositionRepository.
func (r *positionRepositoryImpl) Update(ctx context.Context, tpl position.PositionTemplate) (position.PositionTemplate, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE position_templates
		SET name = $1, shift_code = $2, weekday_mask = $3, required_headcount = $4,
			active_from = $5, active_until = $6, is_active = $7, updated_at = NOW()
		WHERE id = $8 AND site_id = $9 AND tenant_id = $10
		RETURNING ` + positionColumns

	updated, err := scanPosition(q.QueryRow(ctx, query,
		tpl.Name,
		tpl.ShiftCode,
		tpl.WeekdayMask.Strings(),
		tpl.RequiredHeadcount,
		tpl.ActiveFrom,
		tpl.ActiveUntil,
		tpl.IsActive,
		tpl.ID,
		tpl.SiteID,
		tpl.TenantID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return position.PositionTemplate{}, position.ErrPositionNotFound
		}
		return position.PositionTemplate{}, fmt.Errorf("failed to update position template: %w", err)
	}
	return updated, nil
}

// Deactivate implements position.PositionRepository.
func (r *positionRepositoryImpl) Deactivate(ctx context.Context, id, siteID, tenantID string) error {
	q := GetQuerier(ctx, r.db)
	tag, err := q.Exec(ctx, `
		UPDATE position_templates SET is_active = FALSE, updated_at = NOW()
		WHERE id = $1 AND site_id = $2 AND tenant_id = $3
	`, id, siteID, tenantID)
	if err != nil {
		return fmt.Errorf("failed to deactivate position template: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return position.ErrPositionNotFound
	}
	return nil
}
