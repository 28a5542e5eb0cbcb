package site

import "context"

type SiteRepository interface {
	Create(ctx context.Context, newSite Site) (Site, error)
	// GetByID only returns sites belonging to tenantID.
	GetByID(ctx context.Context, id, tenantID string) (Site, error)
	List(ctx context.Context, tenantID string, filter SiteFilter) ([]Site, int64, error)
	Update(ctx context.Context, req UpdateSiteRequest, tenantID string) (Site, error)
	Deactivate(ctx context.Context, id, tenantID string) error
}
