package schedule

import (
	"time"

	"github.com/cmlabs-hris/guardops-backend/internal/pkg/validator"
)

type GenerateRequest struct {
	SiteID    string `json:"site_id"`
	Year      int    `json:"year"`
	Month     int    `json:"month"`
	Overwrite bool   `json:"overwrite"`
}

func (r *GenerateRequest) Validate() error {
	var errs validator.ValidationErrors
	if validator.IsEmpty(r.SiteID) {
		errs.Add("site_id", "site_id is required")
	} else if !validator.IsValidUUID(r.SiteID) {
		errs.Add("site_id", "site_id must be a valid UUID")
	}
	validateMonth(&errs, r.Year, r.Month)
	return errs.OrNil()
}

type GenerateResponse struct {
	CreatedCount int64  `json:"created_count"`
	Overwrite    bool   `json:"overwrite"`
	Message      string `json:"message,omitempty"`
}

// MonthQuery selects one site's slots for one month.
type MonthQuery struct {
	SiteID string
	Year   int
	Month  int
}

func (q *MonthQuery) Validate() error {
	var errs validator.ValidationErrors
	if !validator.IsValidUUID(q.SiteID) {
		errs.Add("site_id", "site_id must be a valid UUID")
	}
	validateMonth(&errs, q.Year, q.Month)
	return errs.OrNil()
}

func validateMonth(errs *validator.ValidationErrors, year, month int) {
	if year < 2000 || year > 2100 {
		errs.Add("year", "year must be between 2000 and 2100")
	}
	if month < 1 || month > 12 {
		errs.Add("month", ErrInvalidMonth.Error())
	}
}

type SlotResponse struct {
	ID                 string  `json:"id"`
	PositionTemplateID string  `json:"position_template_id"`
	SlotNumber         int     `json:"slot_number"`
	Date               string  `json:"date"`
	AssignedWorkerID   *string `json:"assigned_worker_id"`
	ShiftCode          *string `json:"shift_code"`
	Status             string  `json:"status"`
}

func NewSlotResponse(s ScheduleSlot) SlotResponse {
	return SlotResponse{
		ID:                 s.ID,
		PositionTemplateID: s.PositionTemplateID,
		SlotNumber:         s.SlotNumber,
		Date:               s.Date.Format("2006-01-02"),
		AssignedWorkerID:   s.AssignedWorkerID,
		ShiftCode:          s.ShiftCode,
		Status:             string(s.Status),
	}
}

type MonthScheduleResponse struct {
	SiteID string         `json:"site_id"`
	Year   int            `json:"year"`
	Month  int            `json:"month"`
	From   string         `json:"from"`
	To     string         `json:"to"`
	Total  int            `json:"total"`
	Slots  []SlotResponse `json:"slots"`
}

// ExportFile is a rendered spreadsheet ready to be streamed.
type ExportFile struct {
	Filename    string
	ContentType string
	Content     []byte
	GeneratedAt time.Time
}
