package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/guardops-backend/internal/domain/audit"
	"github.com/cmlabs-hris/guardops-backend/internal/pkg/database"
	"github.com/google/uuid"
)

type auditRepositoryImpl struct {
	db *database.DB
}

func NewAuditRepository(db *database.DB) audit.AuditRepository {
	return &auditRepositoryImpl{db: db}
}

// Create implements audit.AuditRepository.
func (r *auditRepositoryImpl) Create(ctx context.Context, entry audit.Entry) (audit.Entry, error) {
	q := GetQuerier(ctx, r.db)

	id, err := uuid.NewV7()
	if err != nil {
		return audit.Entry{}, err
	}

	query := `
		INSERT INTO audit_logs (id, tenant_id, actor_id, action, entity_type, entity_id, payload)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, tenant_id, actor_id, action, entity_type, entity_id, payload, created_at
	`
	var created audit.Entry
	err = q.QueryRow(ctx, query,
		id.String(),
		entry.TenantID,
		entry.ActorID,
		entry.Action,
		entry.EntityType,
		entry.EntityID,
		[]byte(entry.Payload),
	).Scan(
		&created.ID,
		&created.TenantID,
		&created.ActorID,
		&created.Action,
		&created.EntityType,
		&created.EntityID,
		&created.Payload,
		&created.CreatedAt,
	)
	if err != nil {
		return audit.Entry{}, fmt.Errorf("failed to write audit entry: %w", err)
	}
	return created, nil
}

// List implements audit.AuditRepository.
func (r *auditRepositoryImpl) List(ctx context.Context, tenantID string, filter audit.AuditFilter) ([]audit.Entry, int64, error) {
	q := GetQuerier(ctx, r.db)

	where := "tenant_id = $1"
	args := []interface{}{tenantID}
	argIdx := 2
	if filter.EntityType != nil && *filter.EntityType != "" {
		where += fmt.Sprintf(" AND entity_type = $%d", argIdx)
		args = append(args, *filter.EntityType)
		argIdx++
	}
	if filter.EntityID != nil && *filter.EntityID != "" {
		where += fmt.Sprintf(" AND entity_id = $%d", argIdx)
		args = append(args, *filter.EntityID)
		argIdx++
	}

	var total int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*) FROM audit_logs WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count audit entries: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, tenant_id, actor_id, action, entity_type, entity_id, payload, created_at
		FROM audit_logs
		WHERE %s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d
	`, where, argIdx, argIdx+1)
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query audit entries: %w", err)
	}
	defer rows.Close()

	entries := make([]audit.Entry, 0, filter.Limit)
	for rows.Next() {
		var e audit.Entry
		if err := rows.Scan(&e.ID, &e.TenantID, &e.ActorID, &e.Action, &e.EntityType, &e.EntityID, &e.Payload, &e.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}
