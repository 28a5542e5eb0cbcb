package position

import "context"

type PositionRepository interface {
	Create(ctx context.Context, tpl PositionTemplate) (PositionTemplate, error)
	GetByID(ctx context.Context, id, siteID, tenantID string) (PositionTemplate, error)
	ListBySite(ctx context.Context, siteID, tenantID string, includeInactive bool) ([]PositionTemplate, error)
	// ListActiveBySite returns templates with is_active = true, ordered by creation.
	ListActiveBySite(ctx context.Context, siteID, tenantID string) ([]PositionTemplate, error)
	Update(ctx context.Context, tpl PositionTemplate) (PositionTemplate, error)
	Deactivate(ctx context.Context, id, siteID, tenantID string) error
}
