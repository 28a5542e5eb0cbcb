package schedule

import "time"

type SlotStatus string

const (
	SlotStatusPlanned   SlotStatus = "planned"
	SlotStatusAssigned  SlotStatus = "assigned"
	SlotStatusCompleted SlotStatus = "completed"
	SlotStatusAbsent    SlotStatus = "absent"
	SlotStatusCancelled SlotStatus = "cancelled"
)

// ScheduleSlot is one guard post for one date at a site.
type ScheduleSlot struct {
	ID                 string
	TenantID           string
	SiteID             string
	PositionTemplateID string
	SlotNumber         int
	Date               time.Time
	AssignedWorkerID   *string
	ShiftCode          *string
	Status             SlotStatus
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// SlotKey identifies a slot for merge-mode collision checks.
type SlotKey struct {
	PositionTemplateID string
	SlotNumber         int
	Date               string
}

func (s ScheduleSlot) Key() SlotKey {
	return SlotKey{
		PositionTemplateID: s.PositionTemplateID,
		SlotNumber:         s.SlotNumber,
		Date:               s.Date.Format("2006-01-02"),
	}
}
