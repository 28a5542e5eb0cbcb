package audit

import (
	"encoding/json"
	"time"

	"github.com/cmlabs-hris/guardops-backend/internal/pkg/validator"
)

type AuditFilter struct {
	EntityType *string
	EntityID   *string
	Page       int
	Limit      int
}

func (f *AuditFilter) Validate() error {
	var errs validator.ValidationErrors
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Limit <= 0 {
		f.Limit = 50
	}
	if f.Limit > 200 {
		errs.Add("limit", "limit must not exceed 200")
	}
	if f.EntityID != nil && !validator.IsValidUUID(*f.EntityID) {
		errs.Add("entity_id", "entity_id must be a valid UUID")
	}
	return errs.OrNil()
}

type EntryResponse struct {
	ID         string          `json:"id"`
	ActorID    string          `json:"actor_id"`
	Action     string          `json:"action"`
	EntityType string          `json:"entity_type"`
	EntityID   string          `json:"entity_id"`
	Payload    json.RawMessage `json:"payload"`
	CreatedAt  string          `json:"created_at"`
}

func NewEntryResponse(e Entry) EntryResponse {
	return EntryResponse{
		ID:         e.ID,
		ActorID:    e.ActorID,
		Action:     string(e.Action),
		EntityType: e.EntityType,
		EntityID:   e.EntityID,
		Payload:    e.Payload,
		CreatedAt:  e.CreatedAt.Format(time.RFC3339),
	}
}

type ListAuditResponse struct {
	TotalCount int64           `json:"total_count"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"total_pages"`
	Entries    []EntryResponse `json:"entries"`
}
