package audit

import "context"

type AuditRepository interface {
	// Create joins the caller's transaction when one is active on ctx.
	Create(ctx context.Context, entry Entry) (Entry, error)
	List(ctx context.Context, tenantID string, filter AuditFilter) ([]Entry, int64, error)
}
