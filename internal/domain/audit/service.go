package audit

import "context"

// Recorder is what other services depend on to leave an audit trail.
type Recorder interface {
	Record(ctx context.Context, action Action, entityType, entityID string, payload any) error
}

type AuditService interface {
	Recorder
	List(ctx context.Context, filter AuditFilter) (ListAuditResponse, error)
}
