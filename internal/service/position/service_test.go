package position

import (
	"context"
	"testing"

	"github.com/cmlabs-hris/guardops-backend/internal/domain/access"
	"github.com/cmlabs-hris/guardops-backend/internal/domain/audit"
	"github.com/cmlabs-hris/guardops-backend/internal/domain/auth"
	"github.com/cmlabs-hris/guardops-backend/internal/domain/position"
	"github.com/cmlabs-hris/guardops-backend/internal/domain/site"
	"github.com/cmlabs-hris/guardops-backend/internal/pkg/validator"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tenantID = "t-1"

type passThroughTx struct{}

func (passThroughTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type memorySites map[string]site.Site

func (m memorySites) Create(ctx context.Context, s site.Site) (site.Site, error) { return s, nil }

func (m memorySites) GetByID(ctx context.Context, id, tenant string) (site.Site, error) {
	s, ok := m[id]
	if !ok || s.TenantID != tenant {
		return site.Site{}, site.ErrSiteNotFound
	}
	return s, nil
}

func (m memorySites) List(ctx context.Context, tenant string, f site.SiteFilter) ([]site.Site, int64, error) {
	return nil, 0, nil
}

func (m memorySites) Update(ctx context.Context, req site.UpdateSiteRequest, tenant string) (site.Site, error) {
	return site.Site{}, nil
}

func (m memorySites) Deactivate(ctx context.Context, id, tenant string) error { return nil }

type memoryPositions map[string]position.PositionTemplate

func (m memoryPositions) Create(ctx context.Context, tpl position.PositionTemplate) (position.PositionTemplate, error) {
	tpl.ID = uuid.Must(uuid.NewV7()).String()
	m[tpl.ID] = tpl
	return tpl, nil
}

func (m memoryPositions) GetByID(ctx context.Context, id, siteID, tenant string) (position.PositionTemplate, error) {
	tpl, ok := m[id]
	if !ok || tpl.SiteID != siteID || tpl.TenantID != tenant {
		return position.PositionTemplate{}, position.ErrPositionNotFound
	}
	return tpl, nil
}

func (m memoryPositions) ListBySite(ctx context.Context, siteID, tenant string, includeInactive bool) ([]position.PositionTemplate, error) {
	var out []position.PositionTemplate
	for _, tpl := range m {
		if tpl.SiteID == siteID && tpl.TenantID == tenant && (includeInactive || tpl.IsActive) {
			out = append(out, tpl)
		}
	}
	return out, nil
}

func (m memoryPositions) ListActiveBySite(ctx context.Context, siteID, tenant string) ([]position.PositionTemplate, error) {
	return m.ListBySite(ctx, siteID, tenant, false)
}

func (m memoryPositions) Update(ctx context.Context, tpl position.PositionTemplate) (position.PositionTemplate, error) {
	m[tpl.ID] = tpl
	return tpl, nil
}

func (m memoryPositions) Deactivate(ctx context.Context, id, siteID, tenant string) error {
	tpl, err := m.GetByID(ctx, id, siteID, tenant)
	if err != nil {
		return err
	}
	tpl.IsActive = false
	m[id] = tpl
	return nil
}

type recorder struct {
	actions []audit.Action
}

func (r *recorder) Record(ctx context.Context, action audit.Action, entityType, entityID string, payload any) error {
	r.actions = append(r.actions, action)
	return nil
}

type fixture struct {
	svc       position.PositionService
	sites     memorySites
	positions memoryPositions
	audit     *recorder
	siteID    string
}

func newFixture() *fixture {
	f := &fixture{
		sites:     memorySites{},
		positions: memoryPositions{},
		audit:     &recorder{},
		siteID:    uuid.Must(uuid.NewV7()).String(),
	}
	f.sites[f.siteID] = site.Site{ID: f.siteID, TenantID: tenantID, Name: "Mall", Code: "M", IsActive: true}
	f.svc = NewPositionService(passThroughTx{}, f.sites, f.positions, f.audit)
	return f
}

func ctx() context.Context {
	return auth.WithSession(context.Background(), auth.Session{UserID: "u-1", TenantID: tenantID, Role: access.RoleOpsManager})
}

func strPtr(s string) *string { return &s }

func TestPositionService_Create_NormalisesWeekdays(t *testing.T) {
	f := newFixture()

	resp, err := f.svc.Create(ctx(), position.CreatePositionRequest{
		SiteID:            f.siteID,
		Name:              "Gate",
		WeekdayMask:       []string{"Fri", "lunes", "3", "MON"},
		RequiredHeadcount: 2,
		ActiveFrom:        strPtr("2024-01-01"),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"mon", "wed", "fri"}, resp.WeekdayMask)
	assert.Equal(t, "2024-01-01", *resp.ActiveFrom)
	assert.Nil(t, resp.ActiveUntil)
	assert.True(t, resp.IsActive)
	assert.Equal(t, []audit.Action{audit.ActionPositionCreated}, f.audit.actions)
}

func TestPositionService_Create_EmptyShiftCodeIsUnset(t *testing.T) {
	f := newFixture()

	resp, err := f.svc.Create(ctx(), position.CreatePositionRequest{
		SiteID:            f.siteID,
		Name:              "Gate",
		ShiftCode:         strPtr(""),
		WeekdayMask:       []string{"mon"},
		RequiredHeadcount: 1,
	})
	require.NoError(t, err)
	assert.Nil(t, resp.ShiftCode)
	assert.Nil(t, f.positions[resp.ID].ShiftCode)

	resp, err = f.svc.Create(ctx(), position.CreatePositionRequest{
		SiteID:            f.siteID,
		Name:              "Lobby",
		ShiftCode:         strPtr("N"),
		WeekdayMask:       []string{"mon"},
		RequiredHeadcount: 1,
	})
	require.NoError(t, err)
	require.NotNil(t, resp.ShiftCode)
	assert.Equal(t, "N", *resp.ShiftCode)
}

func TestPositionService_Create_Validation(t *testing.T) {
	f := newFixture()
	cases := map[string]position.CreatePositionRequest{
		"weekday_mask":       {SiteID: f.siteID, Name: "Gate", WeekdayMask: []string{"funday"}, RequiredHeadcount: 1},
		"required_headcount": {SiteID: f.siteID, Name: "Gate", WeekdayMask: []string{"mon"}, RequiredHeadcount: 0},
		"active_until": {SiteID: f.siteID, Name: "Gate", WeekdayMask: []string{"mon"}, RequiredHeadcount: 1,
			ActiveFrom: strPtr("2024-03-01"), ActiveUntil: strPtr("2024-03-01")},
		"name": {SiteID: f.siteID, WeekdayMask: []string{"mon"}, RequiredHeadcount: 1},
	}
	for field, req := range cases {
		t.Run(field, func(t *testing.T) {
			_, err := f.svc.Create(ctx(), req)
			var verrs validator.ValidationErrors
			require.ErrorAs(t, err, &verrs)
			assert.Contains(t, verrs.ToMap(), field)
		})
	}
}

func TestPositionService_Create_UnknownSite(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Create(ctx(), position.CreatePositionRequest{
		SiteID: uuid.Must(uuid.NewV7()).String(), Name: "Gate", WeekdayMask: []string{"mon"}, RequiredHeadcount: 1,
	})
	assert.ErrorIs(t, err, site.ErrSiteNotFound)
}

func TestPositionService_UpdateAndDelete(t *testing.T) {
	f := newFixture()
	created, err := f.svc.Create(ctx(), position.CreatePositionRequest{
		SiteID: f.siteID, Name: "Gate", WeekdayMask: []string{"mon"}, RequiredHeadcount: 1,
		ActiveFrom: strPtr("2024-01-01"), ActiveUntil: strPtr("2024-12-31"),
	})
	require.NoError(t, err)

	headcount := 3
	mask := []string{"sat", "sun"}
	updated, err := f.svc.Update(ctx(), position.UpdatePositionRequest{
		ID: created.ID, SiteID: f.siteID, RequiredHeadcount: &headcount, WeekdayMask: &mask, ActiveUntil: strPtr(""),
	})
	require.NoError(t, err)
	assert.Equal(t, 3, updated.RequiredHeadcount)
	assert.Equal(t, []string{"sat", "sun"}, updated.WeekdayMask)
	assert.Nil(t, updated.ActiveUntil)
	assert.Equal(t, "2024-01-01", *updated.ActiveFrom)

	// Moving active_from past active_until is rejected after merging with the stored template.
	_, err = f.svc.Update(ctx(), position.UpdatePositionRequest{
		ID: created.ID, SiteID: f.siteID, ActiveUntil: strPtr("2023-06-01"),
	})
	var verrs validator.ValidationErrors
	assert.ErrorAs(t, err, &verrs)

	require.NoError(t, f.svc.Delete(ctx(), f.siteID, created.ID))
	got, err := f.svc.GetByID(ctx(), f.siteID, created.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive, "delete only deactivates")

	active, err := f.svc.List(ctx(), f.siteID, false)
	require.NoError(t, err)
	assert.Empty(t, active)

	all, err := f.svc.List(ctx(), f.siteID, true)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestPositionService_GetByID_OtherSite(t *testing.T) {
	f := newFixture()
	created, err := f.svc.Create(ctx(), position.CreatePositionRequest{
		SiteID: f.siteID, Name: "Gate", WeekdayMask: []string{"mon"}, RequiredHeadcount: 1,
	})
	require.NoError(t, err)

	_, err = f.svc.GetByID(ctx(), uuid.Must(uuid.NewV7()).String(), created.ID)
	assert.ErrorIs(t, err, position.ErrPositionNotFound)
}
