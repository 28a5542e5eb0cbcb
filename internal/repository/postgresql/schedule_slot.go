package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/guardops-backend/internal/domain/schedule"
	"github.com/cmlabs-hris/guardops-backend/internal/pkg/database"
	"github.com/google/uuid"
)

type slotRepositoryImpl struct {
	db *database.DB
}

func NewSlotRepository(db *database.DB) schedule.SlotRepository {
	return &slotRepositoryImpl{db: db}
}

// insertBatchSize bounds the array parameters sent per statement.
const insertBatchSize = 5000

const insertSlotsQuery = `
	INSERT INTO schedule_slots (
		id, tenant_id, site_id, position_template_id, slot_number, slot_date, shift_code, status
	)
	SELECT s.id::uuid, s.tenant::uuid, s.site::uuid, s.tpl::uuid, s.slot, s.d, s.shift, s.status
	FROM unnest($1::text[], $2::text[], $3::text[], $4::text[], $5::int4[], $6::date[], $7::text[], $8::text[])
		AS s(id, tenant, site, tpl, slot, d, shift, status)
`

// DeleteRange implements schedule.SlotRepository.
func (r *slotRepositoryImpl) DeleteRange(ctx context.Context, tenantID, siteID string, from, to time.Time) (int64, error) {
	q := GetQuerier(ctx, r.db)
	tag, err := q.Exec(ctx, `
		DELETE FROM schedule_slots
		WHERE tenant_id = $1 AND site_id = $2 AND slot_date BETWEEN $3 AND $4
	`, tenantID, siteID, from, to)
	if err != nil {
		return 0, fmt.Errorf("failed to delete schedule slots: %w", err)
	}
	return tag.RowsAffected(), nil
}

// InsertMany implements schedule.SlotRepository. Merge mode relies on
// schedule_slots_site_tpl_slot_date_key to skip existing rows.
func (r *slotRepositoryImpl) InsertMany(ctx context.Context, slots []schedule.ScheduleSlot, skipExisting bool) (int64, error) {
	q := GetQuerier(ctx, r.db)

	query := insertSlotsQuery
	if skipExisting {
		query += ` ON CONFLICT (site_id, position_template_id, slot_number, slot_date) DO NOTHING`
	}

	var written int64
	for start := 0; start < len(slots); start += insertBatchSize {
		end := min(start+insertBatchSize, len(slots))
		batch := slots[start:end]

		var (
			ids      = make([]string, len(batch))
			tenants  = make([]string, len(batch))
			sites    = make([]string, len(batch))
			tpls     = make([]string, len(batch))
			numbers  = make([]int32, len(batch))
			dates    = make([]time.Time, len(batch))
			shifts   = make([]*string, len(batch))
			statuses = make([]string, len(batch))
		)
		for i, s := range batch {
			id, err := uuid.NewV7()
			if err != nil {
				return written, err
			}
			ids[i] = id.String()
			tenants[i] = s.TenantID
			sites[i] = s.SiteID
			tpls[i] = s.PositionTemplateID
			numbers[i] = int32(s.SlotNumber)
			dates[i] = s.Date
			shifts[i] = s.ShiftCode
			statuses[i] = string(s.Status)
		}

		tag, err := q.Exec(ctx, query, ids, tenants, sites, tpls, numbers, dates, shifts, statuses)
		if err != nil {
			return written, fmt.Errorf("failed to insert schedule slots: %w", err)
		}
		written += tag.RowsAffected()
	}
	return written, nil
}

// ListRange implements schedule.SlotRepository.
func (r *slotRepositoryImpl) ListRange(ctx context.Context, tenantID, siteID string, from, to time.Time) ([]schedule.ScheduleSlot, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT ss.id, ss.tenant_id, ss.site_id, ss.position_template_id, ss.slot_number, ss.slot_date,
			ss.assigned_worker_id, ss.shift_code, ss.status, ss.created_at, ss.updated_at
		FROM schedule_slots ss
		JOIN position_templates pt ON pt.id = ss.position_template_id
		WHERE ss.tenant_id = $1 AND ss.site_id = $2 AND ss.slot_date BETWEEN $3 AND $4
		ORDER BY ss.slot_date ASC, pt.created_at ASC, pt.id ASC, ss.slot_number ASC
	`, tenantID, siteID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedule slots: %w", err)
	}
	defer rows.Close()

	var slots []schedule.ScheduleSlot
	for rows.Next() {
		var s schedule.ScheduleSlot
		if err := rows.Scan(
			&s.ID,
			&s.TenantID,
			&s.SiteID,
			&s.PositionTemplateID,
			&s.SlotNumber,
			&s.Date,
			&s.AssignedWorkerID,
			&s.ShiftCode,
			&s.Status,
			&s.CreatedAt,
			&s.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan schedule slot: %w", err)
		}
		slots = append(slots, s)
	}
	return slots, rows.Err()
}
