package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/guardops-backend/internal/domain/audit"
	"github.com/cmlabs-hris/guardops-backend/internal/domain/auth"
	"github.com/cmlabs-hris/guardops-backend/internal/domain/position"
	"github.com/cmlabs-hris/guardops-backend/internal/domain/schedule"
	"github.com/cmlabs-hris/guardops-backend/internal/domain/site"
	"github.com/cmlabs-hris/guardops-backend/internal/pkg/database"
	"github.com/cmlabs-hris/guardops-backend/internal/pkg/export"
)

const (
	msgNoMatchingDates = "no active position template applies to any date of this month; nothing was generated"
	msgAlreadyComplete = "every slot of this month already exists; nothing was added"
)

type scheduleServiceImpl struct {
	tx        database.Transactor
	sites     site.SiteRepository
	positions position.PositionRepository
	slots     schedule.SlotRepository
	audit     audit.Recorder
}

func NewScheduleService(
	tx database.Transactor,
	sites site.SiteRepository,
	positions position.PositionRepository,
	slots schedule.SlotRepository,
	recorder audit.Recorder,
) schedule.ScheduleService {
	return &scheduleServiceImpl{
		tx:        tx,
		sites:     sites,
		positions: positions,
		slots:     slots,
		audit:     recorder,
	}
}

// Generate expands the site's active templates over one month and persists the slots.
// Overwrite replaces the month; otherwise rows already present are kept and only missing ones added.
func (s *scheduleServiceImpl) Generate(ctx context.Context, req schedule.GenerateRequest) (schedule.GenerateResponse, error) {
	if err := req.Validate(); err != nil {
		return schedule.GenerateResponse{}, err
	}

	session, err := auth.SessionFromContext(ctx)
	if err != nil {
		return schedule.GenerateResponse{}, err
	}

	siteData, err := s.sites.GetByID(ctx, req.SiteID, session.TenantID)
	if err != nil {
		return schedule.GenerateResponse{}, err
	}
	if !siteData.IsActive {
		return schedule.GenerateResponse{}, site.ErrSiteInactive
	}

	templates, err := s.positions.ListActiveBySite(ctx, siteData.ID, session.TenantID)
	if err != nil {
		return schedule.GenerateResponse{}, fmt.Errorf("failed to list position templates: %w", err)
	}
	if len(templates) == 0 {
		return schedule.GenerateResponse{}, schedule.ErrNoActiveTemplates
	}

	month := time.Month(req.Month)
	from, to := schedule.MonthRange(req.Year, month)
	slots := schedule.Expand(siteData.ID, req.Year, month, templates)

	var created, deleted int64
	err = s.tx.WithinTx(ctx, func(txCtx context.Context) error {
		if req.Overwrite {
			deleted, err = s.slots.DeleteRange(txCtx, session.TenantID, siteData.ID, from, to)
			if err != nil {
				return err
			}
		}

		if len(slots) > 0 {
			created, err = s.slots.InsertMany(txCtx, slots, !req.Overwrite)
			if err != nil {
				return err
			}
		}

		return s.audit.Record(txCtx, audit.ActionScheduleGenerated, audit.EntitySchedule, siteData.ID, map[string]any{
			"site_id":       siteData.ID,
			"year":          req.Year,
			"month":         req.Month,
			"overwrite":     req.Overwrite,
			"created_count": created,
			"deleted_count": deleted,
		})
	})
	if err != nil {
		slog.Error("schedule generation failed",
			"tenant_id", session.TenantID,
			"site_id", siteData.ID,
			"year", req.Year,
			"month", req.Month,
			"overwrite", req.Overwrite,
			"error", err,
		)
		return schedule.GenerateResponse{}, fmt.Errorf("failed to persist schedule: %w", err)
	}

	resp := schedule.GenerateResponse{CreatedCount: created, Overwrite: req.Overwrite}
	switch {
	case len(slots) == 0:
		resp.Message = msgNoMatchingDates
	case created == 0:
		resp.Message = msgAlreadyComplete
	}
	return resp, nil
}

// List implements schedule.ScheduleService.
func (s *scheduleServiceImpl) List(ctx context.Context, q schedule.MonthQuery) (schedule.MonthScheduleResponse, error) {
	siteData, slots, err := s.loadMonth(ctx, q)
	if err != nil {
		return schedule.MonthScheduleResponse{}, err
	}

	from, to := schedule.MonthRange(q.Year, time.Month(q.Month))
	resp := schedule.MonthScheduleResponse{
		SiteID: siteData.ID,
		Year:   q.Year,
		Month:  q.Month,
		From:   from.Format("2006-01-02"),
		To:     to.Format("2006-01-02"),
		Total:  len(slots),
		Slots:  make([]schedule.SlotResponse, 0, len(slots)),
	}
	for _, sl := range slots {
		resp.Slots = append(resp.Slots, schedule.NewSlotResponse(sl))
	}
	return resp, nil
}

// Export renders the month as a spreadsheet: one row per template and slot number, one column per day.
func (s *scheduleServiceImpl) Export(ctx context.Context, q schedule.MonthQuery) (schedule.ExportFile, error) {
	siteData, slots, err := s.loadMonth(ctx, q)
	if err != nil {
		return schedule.ExportFile{}, err
	}

	session, err := auth.SessionFromContext(ctx)
	if err != nil {
		return schedule.ExportFile{}, err
	}
	templates, err := s.positions.ListBySite(ctx, siteData.ID, session.TenantID, true)
	if err != nil {
		return schedule.ExportFile{}, fmt.Errorf("failed to list position templates: %w", err)
	}
	names := make(map[string]string, len(templates))
	for _, tpl := range templates {
		names[tpl.ID] = tpl.Name
	}

	grid := export.MonthGrid{
		Title: fmt.Sprintf("%s (%s)", siteData.Name, siteData.Code),
		Year:  q.Year,
		Month: time.Month(q.Month),
		Rows:  gridRows(slots, names),
	}
	content, err := export.RenderMonthGrid(grid)
	if err != nil {
		return schedule.ExportFile{}, fmt.Errorf("failed to render schedule export: %w", err)
	}

	return schedule.ExportFile{
		Filename:    fmt.Sprintf("schedule-%s-%04d-%02d.xlsx", siteData.Code, q.Year, q.Month),
		ContentType: export.ContentTypeXLSX,
		Content:     content,
		GeneratedAt: time.Now(),
	}, nil
}

func (s *scheduleServiceImpl) loadMonth(ctx context.Context, q schedule.MonthQuery) (site.Site, []schedule.ScheduleSlot, error) {
	if err := q.Validate(); err != nil {
		return site.Site{}, nil, err
	}

	session, err := auth.SessionFromContext(ctx)
	if err != nil {
		return site.Site{}, nil, err
	}

	siteData, err := s.sites.GetByID(ctx, q.SiteID, session.TenantID)
	if err != nil {
		return site.Site{}, nil, err
	}

	from, to := schedule.MonthRange(q.Year, time.Month(q.Month))
	slots, err := s.slots.ListRange(ctx, session.TenantID, siteData.ID, from, to)
	if err != nil {
		return site.Site{}, nil, fmt.Errorf("failed to list schedule slots: %w", err)
	}
	return siteData, slots, nil
}

// gridRows keeps the first-seen order of (template, slot number) pairs, which follows the listing order.
func gridRows(slots []schedule.ScheduleSlot, names map[string]string) []export.GridRow {
	type rowKey struct {
		template string
		number   int
	}
	index := make(map[rowKey]int)
	var rows []export.GridRow

	for _, sl := range slots {
		key := rowKey{sl.PositionTemplateID, sl.SlotNumber}
		i, ok := index[key]
		if !ok {
			name := names[sl.PositionTemplateID]
			if name == "" {
				name = sl.PositionTemplateID
			}
			rows = append(rows, export.GridRow{
				Label: fmt.Sprintf("%s #%d", name, sl.SlotNumber),
				Cells: make(map[int]string),
			})
			i = len(rows) - 1
			index[key] = i
		}
		rows[i].Cells[sl.Date.Day()] = cellValue(sl)
	}
	return rows
}

func cellValue(sl schedule.ScheduleSlot) string {
	switch {
	case sl.AssignedWorkerID != nil:
		return *sl.AssignedWorkerID
	case sl.ShiftCode != nil:
		return *sl.ShiftCode
	}
	return statusMarker[sl.Status]
}

var statusMarker = map[schedule.SlotStatus]string{
	schedule.SlotStatusPlanned:   "P",
	schedule.SlotStatusAssigned:  "A",
	schedule.SlotStatusCompleted: "C",
	schedule.SlotStatusAbsent:    "X",
	schedule.SlotStatusCancelled: "-",
}
