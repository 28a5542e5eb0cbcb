package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"

	"github.com/cmlabs-hris/guardops-backend/internal/domain/audit"
	"github.com/cmlabs-hris/guardops-backend/internal/domain/auth"
)

type auditServiceImpl struct {
	repo audit.AuditRepository
}

func NewAuditService(repo audit.AuditRepository) audit.AuditService {
	return &auditServiceImpl{repo: repo}
}

// Record writes one entry for the caller on ctx. It joins the caller's transaction when one is active.
func (s *auditServiceImpl) Record(ctx context.Context, action audit.Action, entityType, entityID string, payload any) error {
	session, err := auth.SessionFromContext(ctx)
	if err != nil {
		return err
	}

	body := []byte("{}")
	if payload != nil {
		body, err = json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode audit payload: %w", err)
		}
		if !bytes.HasPrefix(bytes.TrimSpace(body), []byte("{")) {
			return audit.ErrInvalidPayload
		}
	}

	if _, err := s.repo.Create(ctx, audit.Entry{
		TenantID:   session.TenantID,
		ActorID:    session.UserID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Payload:    body,
	}); err != nil {
		slog.Error("failed to record audit entry", "action", action, "entity_id", entityID, "error", err)
		return err
	}
	return nil
}

// List implements audit.AuditService.
func (s *auditServiceImpl) List(ctx context.Context, filter audit.AuditFilter) (audit.ListAuditResponse, error) {
	if err := filter.Validate(); err != nil {
		return audit.ListAuditResponse{}, err
	}

	session, err := auth.SessionFromContext(ctx)
	if err != nil {
		return audit.ListAuditResponse{}, err
	}

	entries, total, err := s.repo.List(ctx, session.TenantID, filter)
	if err != nil {
		return audit.ListAuditResponse{}, fmt.Errorf("failed to list audit entries: %w", err)
	}

	resp := audit.ListAuditResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
		Entries:    make([]audit.EntryResponse, 0, len(entries)),
	}
	for _, e := range entries {
		resp.Entries = append(resp.Entries, audit.NewEntryResponse(e))
	}
	return resp, nil
}
