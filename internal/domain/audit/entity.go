package audit

import (
	"encoding/json"
	"time"
)

type Action string

const (
	ActionScheduleGenerated   Action = "schedule.generated"
	ActionSiteCreated         Action = "site.created"
	ActionSiteUpdated         Action = "site.updated"
	ActionSiteDeactivated     Action = "site.deactivated"
	ActionPositionCreated     Action = "position.created"
	ActionPositionUpdated     Action = "position.updated"
	ActionPositionDeactivated Action = "position.deactivated"
	ActionUserCreated         Action = "user.created"
	ActionUserRoleChanged     Action = "user.role_changed"
	ActionExpenseTransition   Action = "expense.transition"
)

const (
	EntitySite     = "site"
	EntityPosition = "position_template"
	EntitySchedule = "schedule"
	EntityUser     = "user"
	EntityExpense  = "expense_report"
)

type Entry struct {
	ID         string
	TenantID   string
	ActorID    string
	Action     Action
	EntityType string
	EntityID   string
	Payload    json.RawMessage
	CreatedAt  time.Time
}
