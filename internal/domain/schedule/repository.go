package schedule

import (
	"context"
	"time"
)

type SlotRepository interface {
	// DeleteRange removes every slot of the site dated within [from, to].
	DeleteRange(ctx context.Context, tenantID, siteID string, from, to time.Time) (int64, error)
	// InsertMany inserts slots. With skipExisting, rows colliding on
	// (site, template, slot number, date) are skipped. Returns rows written.
	InsertMany(ctx context.Context, slots []ScheduleSlot, skipExisting bool) (int64, error)
	ListRange(ctx context.Context, tenantID, siteID string, from, to time.Time) ([]ScheduleSlot, error)
}
