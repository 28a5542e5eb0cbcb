package schedule

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/cmlabs-hris/guardops-backend/internal/domain/access"
	"github.com/cmlabs-hris/guardops-backend/internal/domain/audit"
	"github.com/cmlabs-hris/guardops-backend/internal/domain/auth"
	"github.com/cmlabs-hris/guardops-backend/internal/domain/position"
	"github.com/cmlabs-hris/guardops-backend/internal/domain/schedule"
	"github.com/cmlabs-hris/guardops-backend/internal/domain/site"
	"github.com/cmlabs-hris/guardops-backend/internal/pkg/validator"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const tenantID = "tenant-1"

// memoryStore backs every repository fake so the transactor can snapshot and restore it.
type memoryStore struct {
	sites     map[string]site.Site
	templates []position.PositionTemplate
	slots     []schedule.ScheduleSlot
	audit     []recordedEntry

	failInsert bool
	failAudit  bool
}

type recordedEntry struct {
	action   audit.Action
	entityID string
	payload  any
}

func newStore() *memoryStore {
	return &memoryStore{sites: map[string]site.Site{}}
}

// snapshotTx restores slots and audit entries when fn fails.
type snapshotTx struct {
	store *memoryStore
}

func (tx snapshotTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	slots := append([]schedule.ScheduleSlot(nil), tx.store.slots...)
	entries := append([]recordedEntry(nil), tx.store.audit...)
	if err := fn(ctx); err != nil {
		tx.store.slots = slots
		tx.store.audit = entries
		return err
	}
	return nil
}

type siteRepo struct{ *memoryStore }

func (r siteRepo) Create(ctx context.Context, s site.Site) (site.Site, error) {
	r.sites[s.ID] = s
	return s, nil
}

func (r siteRepo) GetByID(ctx context.Context, id, tenant string) (site.Site, error) {
	s, ok := r.sites[id]
	if !ok || s.TenantID != tenant {
		return site.Site{}, site.ErrSiteNotFound
	}
	return s, nil
}

func (r siteRepo) List(ctx context.Context, tenant string, filter site.SiteFilter) ([]site.Site, int64, error) {
	return nil, 0, nil
}

func (r siteRepo) Update(ctx context.Context, req site.UpdateSiteRequest, tenant string) (site.Site, error) {
	return site.Site{}, nil
}

func (r siteRepo) Deactivate(ctx context.Context, id, tenant string) error { return nil }

type positionRepo struct{ *memoryStore }

func (r positionRepo) Create(ctx context.Context, tpl position.PositionTemplate) (position.PositionTemplate, error) {
	r.templates = append(r.templates, tpl)
	return tpl, nil
}

func (r positionRepo) GetByID(ctx context.Context, id, siteID, tenant string) (position.PositionTemplate, error) {
	return position.PositionTemplate{}, position.ErrPositionNotFound
}

func (r positionRepo) ListBySite(ctx context.Context, siteID, tenant string, includeInactive bool) ([]position.PositionTemplate, error) {
	var out []position.PositionTemplate
	for _, t := range r.templates {
		if t.SiteID == siteID && t.TenantID == tenant && (includeInactive || t.IsActive) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r positionRepo) ListActiveBySite(ctx context.Context, siteID, tenant string) ([]position.PositionTemplate, error) {
	return r.ListBySite(ctx, siteID, tenant, false)
}

func (r positionRepo) Update(ctx context.Context, tpl position.PositionTemplate) (position.PositionTemplate, error) {
	return tpl, nil
}

func (r positionRepo) Deactivate(ctx context.Context, id, siteID, tenant string) error { return nil }

type slotRepo struct{ *memoryStore }

func (r slotRepo) DeleteRange(ctx context.Context, tenant, siteID string, from, to time.Time) (int64, error) {
	var kept []schedule.ScheduleSlot
	var n int64
	for _, s := range r.memoryStore.slots {
		if s.TenantID == tenant && s.SiteID == siteID && !s.Date.Before(from) && !s.Date.After(to) {
			n++
			continue
		}
		kept = append(kept, s)
	}
	r.memoryStore.slots = kept
	return n, nil
}

func (r slotRepo) InsertMany(ctx context.Context, slots []schedule.ScheduleSlot, skipExisting bool) (int64, error) {
	if r.failInsert {
		return 0, errors.New("connection reset")
	}
	existing := make(map[schedule.SlotKey]bool, len(r.memoryStore.slots))
	for _, s := range r.memoryStore.slots {
		existing[s.Key()] = true
	}
	var n int64
	for _, s := range slots {
		if existing[s.Key()] {
			if skipExisting {
				continue
			}
			return n, errors.New("duplicate key value violates unique constraint")
		}
		s.ID = uuid.NewString()
		existing[s.Key()] = true
		r.memoryStore.slots = append(r.memoryStore.slots, s)
		n++
	}
	return n, nil
}

func (r slotRepo) ListRange(ctx context.Context, tenant, siteID string, from, to time.Time) ([]schedule.ScheduleSlot, error) {
	var out []schedule.ScheduleSlot
	for _, s := range r.memoryStore.slots {
		if s.TenantID == tenant && s.SiteID == siteID && !s.Date.Before(from) && !s.Date.After(to) {
			out = append(out, s)
		}
	}
	return out, nil
}

type recorder struct{ *memoryStore }

func (r recorder) Record(ctx context.Context, action audit.Action, entityType, entityID string, payload any) error {
	if r.failAudit {
		return errors.New("audit table unavailable")
	}
	r.memoryStore.audit = append(r.memoryStore.audit, recordedEntry{action: action, entityID: entityID, payload: payload})
	return nil
}

func newService(store *memoryStore) schedule.ScheduleService {
	return NewScheduleService(snapshotTx{store}, siteRepo{store}, positionRepo{store}, slotRepo{store}, recorder{store})
}

func opsCtx() context.Context {
	return auth.WithSession(context.Background(), auth.Session{
		UserID:   "user-1",
		TenantID: tenantID,
		Role:     access.RoleOpsManager,
	})
}

func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}

func seedSite(store *memoryStore) site.Site {
	s := site.Site{ID: newID(), TenantID: tenantID, Name: "Mall Norte", Code: "MN01", IsActive: true}
	store.sites[s.ID] = s
	return s
}

func seedTemplate(store *memoryStore, siteID, name string, headcount int, mask ...position.Weekday) position.PositionTemplate {
	tpl := position.PositionTemplate{
		ID:                newID(),
		TenantID:          tenantID,
		SiteID:            siteID,
		Name:              name,
		WeekdayMask:       mask,
		RequiredHeadcount: headcount,
		IsActive:          true,
	}
	store.templates = append(store.templates, tpl)
	return tpl
}

func TestGenerate_February2024_MonWedFri(t *testing.T) {
	store := newStore()
	s := seedSite(store)
	seedTemplate(store, s.ID, "Gate", 2, position.Monday, position.Wednesday, position.Friday)
	svc := newService(store)

	resp, err := svc.Generate(opsCtx(), schedule.GenerateRequest{SiteID: s.ID, Year: 2024, Month: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(24), resp.CreatedCount)
	assert.False(t, resp.Overwrite)
	assert.Empty(t, resp.Message)
	assert.Len(t, store.slots, 24)

	require.Len(t, store.audit, 1)
	assert.Equal(t, audit.ActionScheduleGenerated, store.audit[0].action)
	assert.Equal(t, s.ID, store.audit[0].entityID)
	payload := store.audit[0].payload.(map[string]any)
	assert.Equal(t, int64(24), payload["created_count"])
	assert.Equal(t, 2024, payload["year"])
	assert.Equal(t, 2, payload["month"])
	assert.Equal(t, false, payload["overwrite"])
}

func TestGenerate_MergeIsIdempotent(t *testing.T) {
	store := newStore()
	s := seedSite(store)
	seedTemplate(store, s.ID, "Gate", 2, position.Monday, position.Wednesday, position.Friday)
	svc := newService(store)
	req := schedule.GenerateRequest{SiteID: s.ID, Year: 2024, Month: 2}

	_, err := svc.Generate(opsCtx(), req)
	require.NoError(t, err)

	resp, err := svc.Generate(opsCtx(), req)
	require.NoError(t, err)
	assert.Equal(t, int64(0), resp.CreatedCount)
	assert.Equal(t, msgAlreadyComplete, resp.Message)
	assert.Len(t, store.slots, 24)
}

func TestGenerate_MergeAddsOnlyMissingRows(t *testing.T) {
	store := newStore()
	s := seedSite(store)
	seedTemplate(store, s.ID, "Gate", 2, position.Monday, position.Wednesday, position.Friday)
	svc := newService(store)
	req := schedule.GenerateRequest{SiteID: s.ID, Year: 2024, Month: 2}

	_, err := svc.Generate(opsCtx(), req)
	require.NoError(t, err)

	// A second template added mid-month planning only contributes its own rows.
	seedTemplate(store, s.ID, "Lobby", 1, position.Saturday)
	resp, err := svc.Generate(opsCtx(), req)
	require.NoError(t, err)
	assert.Equal(t, int64(4), resp.CreatedCount)
	assert.Len(t, store.slots, 28)
}

func TestGenerate_OverwriteReplacesMonth(t *testing.T) {
	store := newStore()
	s := seedSite(store)
	gate := seedTemplate(store, s.ID, "Gate", 2, position.Monday, position.Wednesday, position.Friday)
	svc := newService(store)

	_, err := svc.Generate(opsCtx(), schedule.GenerateRequest{SiteID: s.ID, Year: 2024, Month: 2})
	require.NoError(t, err)

	// Headcount drops to 1: overwrite must leave exactly the fresh set.
	store.templates[0].RequiredHeadcount = 1
	resp, err := svc.Generate(opsCtx(), schedule.GenerateRequest{SiteID: s.ID, Year: 2024, Month: 2, Overwrite: true})
	require.NoError(t, err)
	assert.Equal(t, int64(12), resp.CreatedCount)
	assert.True(t, resp.Overwrite)
	require.Len(t, store.slots, 12)
	for _, sl := range store.slots {
		assert.Equal(t, gate.ID, sl.PositionTemplateID)
		assert.Equal(t, 1, sl.SlotNumber)
	}

	payload := store.audit[1].payload.(map[string]any)
	assert.Equal(t, int64(24), payload["deleted_count"])
}

func TestGenerate_OverwriteLeavesOtherMonthsAndSites(t *testing.T) {
	store := newStore()
	s := seedSite(store)
	other := seedSite(store)
	seedTemplate(store, s.ID, "Gate", 1, position.Monday)
	seedTemplate(store, other.ID, "Gate", 1, position.Monday)
	svc := newService(store)

	for _, req := range []schedule.GenerateRequest{
		{SiteID: s.ID, Year: 2024, Month: 1},
		{SiteID: s.ID, Year: 2024, Month: 2},
		{SiteID: other.ID, Year: 2024, Month: 2},
	} {
		_, err := svc.Generate(opsCtx(), req)
		require.NoError(t, err)
	}
	before := len(store.slots)

	_, err := svc.Generate(opsCtx(), schedule.GenerateRequest{SiteID: s.ID, Year: 2024, Month: 2, Overwrite: true})
	require.NoError(t, err)
	assert.Len(t, store.slots, before)
}

func TestGenerate_RollsBackWhenAuditFails(t *testing.T) {
	store := newStore()
	s := seedSite(store)
	seedTemplate(store, s.ID, "Gate", 2, position.Monday, position.Wednesday, position.Friday)
	svc := newService(store)

	_, err := svc.Generate(opsCtx(), schedule.GenerateRequest{SiteID: s.ID, Year: 2024, Month: 2})
	require.NoError(t, err)

	store.failAudit = true
	_, err = svc.Generate(opsCtx(), schedule.GenerateRequest{SiteID: s.ID, Year: 2024, Month: 2, Overwrite: true})
	require.Error(t, err)
	assert.Len(t, store.slots, 24, "the delete must be rolled back with the failed audit write")
}

func TestGenerate_RollsBackWhenInsertFails(t *testing.T) {
	store := newStore()
	s := seedSite(store)
	seedTemplate(store, s.ID, "Gate", 1, position.Monday)
	svc := newService(store)

	_, err := svc.Generate(opsCtx(), schedule.GenerateRequest{SiteID: s.ID, Year: 2024, Month: 2})
	require.NoError(t, err)

	store.failInsert = true
	_, err = svc.Generate(opsCtx(), schedule.GenerateRequest{SiteID: s.ID, Year: 2024, Month: 2, Overwrite: true})
	require.Error(t, err)
	assert.Len(t, store.slots, 4)
	assert.Len(t, store.audit, 1)
}

func TestGenerate_NoActiveTemplates(t *testing.T) {
	store := newStore()
	s := seedSite(store)
	seedTemplate(store, s.ID, "Old", 1, position.Monday)
	store.templates[0].IsActive = false
	svc := newService(store)

	_, err := svc.Generate(opsCtx(), schedule.GenerateRequest{SiteID: s.ID, Year: 2024, Month: 2})
	assert.ErrorIs(t, err, schedule.ErrNoActiveTemplates)
	assert.Empty(t, store.audit)
}

func TestGenerate_ZeroRowsIsSuccessWithMessage(t *testing.T) {
	store := newStore()
	s := seedSite(store)
	seedTemplate(store, s.ID, "Gate", 2, position.Monday)
	first := time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)
	store.templates[0].ActiveUntil = &first
	svc := newService(store)

	resp, err := svc.Generate(opsCtx(), schedule.GenerateRequest{SiteID: s.ID, Year: 2024, Month: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(0), resp.CreatedCount)
	assert.Equal(t, msgNoMatchingDates, resp.Message)
	assert.Empty(t, store.slots)
	assert.Len(t, store.audit, 1)
}

func TestGenerate_UnknownOrForeignSite(t *testing.T) {
	store := newStore()
	foreign := site.Site{ID: newID(), TenantID: "tenant-2", Name: "Other", Code: "X", IsActive: true}
	store.sites[foreign.ID] = foreign
	svc := newService(store)

	_, err := svc.Generate(opsCtx(), schedule.GenerateRequest{SiteID: newID(), Year: 2024, Month: 2})
	assert.ErrorIs(t, err, site.ErrSiteNotFound)

	_, err = svc.Generate(opsCtx(), schedule.GenerateRequest{SiteID: foreign.ID, Year: 2024, Month: 2})
	assert.ErrorIs(t, err, site.ErrSiteNotFound)
}

func TestGenerate_InactiveSite(t *testing.T) {
	store := newStore()
	s := seedSite(store)
	s.IsActive = false
	store.sites[s.ID] = s
	seedTemplate(store, s.ID, "Gate", 1, position.Monday)

	_, err := newService(store).Generate(opsCtx(), schedule.GenerateRequest{SiteID: s.ID, Year: 2024, Month: 2})
	assert.ErrorIs(t, err, site.ErrSiteInactive)
}

func TestGenerate_Validation(t *testing.T) {
	svc := newService(newStore())
	cases := []schedule.GenerateRequest{
		{SiteID: "", Year: 2024, Month: 2},
		{SiteID: "not-a-uuid", Year: 2024, Month: 2},
		{SiteID: newID(), Year: 2024, Month: 13},
		{SiteID: newID(), Year: 2024, Month: 0},
		{SiteID: newID(), Year: 1999, Month: 5},
	}
	for _, req := range cases {
		t.Run(fmt.Sprintf("%s-%d-%d", req.SiteID, req.Year, req.Month), func(t *testing.T) {
			_, err := svc.Generate(opsCtx(), req)
			var verrs validator.ValidationErrors
			assert.ErrorAs(t, err, &verrs)
		})
	}
}

func TestGenerate_RequiresSession(t *testing.T) {
	store := newStore()
	s := seedSite(store)
	_, err := newService(store).Generate(context.Background(), schedule.GenerateRequest{SiteID: s.ID, Year: 2024, Month: 2})
	assert.Error(t, err)
}

func TestList_ReturnsMonthSlots(t *testing.T) {
	store := newStore()
	s := seedSite(store)
	seedTemplate(store, s.ID, "Gate", 2, position.Monday, position.Wednesday, position.Friday)
	svc := newService(store)

	_, err := svc.Generate(opsCtx(), schedule.GenerateRequest{SiteID: s.ID, Year: 2024, Month: 2})
	require.NoError(t, err)

	resp, err := svc.List(opsCtx(), schedule.MonthQuery{SiteID: s.ID, Year: 2024, Month: 2})
	require.NoError(t, err)
	assert.Equal(t, 24, resp.Total)
	assert.Equal(t, "2024-02-01", resp.From)
	assert.Equal(t, "2024-02-29", resp.To)
	assert.Equal(t, "2024-02-02", resp.Slots[0].Date)
	assert.Equal(t, "planned", resp.Slots[0].Status)

	empty, err := svc.List(opsCtx(), schedule.MonthQuery{SiteID: s.ID, Year: 2024, Month: 3})
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Total)
	assert.NotNil(t, empty.Slots)
}

func TestExport_RendersGrid(t *testing.T) {
	store := newStore()
	s := seedSite(store)
	seedTemplate(store, s.ID, "Gate", 2, position.Monday, position.Wednesday, position.Friday)
	svc := newService(store)

	_, err := svc.Generate(opsCtx(), schedule.GenerateRequest{SiteID: s.ID, Year: 2024, Month: 2})
	require.NoError(t, err)

	file, err := svc.Export(opsCtx(), schedule.MonthQuery{SiteID: s.ID, Year: 2024, Month: 2})
	require.NoError(t, err)
	assert.Equal(t, "schedule-MN01-2024-02.xlsx", file.Filename)

	wb, err := excelize.OpenReader(bytes.NewReader(file.Content))
	require.NoError(t, err)
	defer wb.Close()

	label, err := wb.GetCellValue("2024-02", "A4")
	require.NoError(t, err)
	assert.Equal(t, "Gate #1", label)

	label, err = wb.GetCellValue("2024-02", "A5")
	require.NoError(t, err)
	assert.Equal(t, "Gate #2", label)

	// Feb 5 2024 is a Monday (column F); Feb 4 is a Sunday (column E).
	monday, err := wb.GetCellValue("2024-02", "F4")
	require.NoError(t, err)
	assert.Equal(t, "P", monday)

	sunday, err := wb.GetCellValue("2024-02", "E4")
	require.NoError(t, err)
	assert.Empty(t, sunday)
}

func TestCellValue_Precedence(t *testing.T) {
	worker := "w-1"
	shift := "N"
	assert.Equal(t, "w-1", cellValue(schedule.ScheduleSlot{AssignedWorkerID: &worker, ShiftCode: &shift}))
	assert.Equal(t, "N", cellValue(schedule.ScheduleSlot{ShiftCode: &shift, Status: schedule.SlotStatusPlanned}))
	assert.Equal(t, "P", cellValue(schedule.ScheduleSlot{Status: schedule.SlotStatusPlanned}))
}
