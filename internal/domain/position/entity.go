package position

import "time"

// PositionTemplate is a recurring staffing requirement at a site.
type PositionTemplate struct {
	ID                string
	TenantID          string
	SiteID            string
	Name              string
	ShiftCode         *string
	WeekdayMask       WeekdayMask
	RequiredHeadcount int
	ActiveFrom        *time.Time // inclusive
	ActiveUntil       *time.Time // exclusive
	IsActive          bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// AppliesOn reports whether the template staffs date. Only the calendar day of date is compared.
func (p PositionTemplate) AppliesOn(date time.Time) bool {
	if !p.IsActive || !p.WeekdayMask.Contains(WeekdayOf(date)) {
		return false
	}
	day := truncateDay(date)
	if p.ActiveFrom != nil && truncateDay(*p.ActiveFrom).After(day) {
		return false
	}
	if p.ActiveUntil != nil && !truncateDay(*p.ActiveUntil).After(day) {
		return false
	}
	return true
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
