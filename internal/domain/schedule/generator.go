package schedule

import (
	"time"

	"github.com/cmlabs-hris/guardops-backend/internal/domain/position"
)

// MonthRange returns the first and last calendar day of a month in UTC.
func MonthRange(year int, month time.Month) (time.Time, time.Time) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return first, last
}

// Expand turns templates into planned slots for every day of the month.
// Rows are ordered by date, then template order, then slot number. IDs are left empty.
func Expand(siteID string, year int, month time.Month, templates []position.PositionTemplate) []ScheduleSlot {
	first, last := MonthRange(year, month)

	var slots []ScheduleSlot
	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		for _, tpl := range templates {
			if !tpl.AppliesOn(day) {
				continue
			}
			for n := 1; n <= tpl.RequiredHeadcount; n++ {
				slots = append(slots, ScheduleSlot{
					TenantID:           tpl.TenantID,
					SiteID:             siteID,
					PositionTemplateID: tpl.ID,
					SlotNumber:         n,
					Date:               day,
					ShiftCode:          tpl.ShiftCode,
					Status:             SlotStatusPlanned,
				})
			}
		}
	}
	return slots
}
