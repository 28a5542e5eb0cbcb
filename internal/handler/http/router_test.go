package http

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/cmlabs-hris/guardops-backend/internal/domain/access"
	"github.com/cmlabs-hris/guardops-backend/internal/domain/expense"
	"github.com/cmlabs-hris/guardops-backend/internal/domain/schedule"
	"github.com/cmlabs-hris/guardops-backend/internal/domain/site"
	"github.com/cmlabs-hris/guardops-backend/internal/domain/tenant"
	"github.com/cmlabs-hris/guardops-backend/internal/handler/http/middleware"
	"github.com/cmlabs-hris/guardops-backend/internal/pkg/jwt"
	"github.com/cmlabs-hris/guardops-backend/internal/pkg/sse"
	"github.com/cmlabs-hris/guardops-backend/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	handlerTestSecret = "test-secret-key-for-jwt"
	activeTenantID    = "0190a6b2-1c3d-7e4f-8a9b-0c1d2e3f4a5b"
	closedTenantID    = "0190a6b2-1c3d-7e4f-8a9b-0c1d2e3f4a5c"
	testSiteID        = "0190a6b2-1c3d-7e4f-8a9b-0c1d2e3f4a60"
)

type stubTenants struct {
	tenant.TenantRepository
}

func (stubTenants) GetByID(ctx context.Context, id string) (tenant.Tenant, error) {
	switch id {
	case activeTenantID:
		return tenant.Tenant{ID: id, IsActive: true}, nil
	case closedTenantID:
		return tenant.Tenant{ID: id, IsActive: false}, nil
	}
	return tenant.Tenant{}, tenant.ErrTenantNotFound
}

type stubSchedule struct {
	calls    int
	lastGen  schedule.GenerateRequest
	genResp  schedule.GenerateResponse
	genErr   error
	exported schedule.ExportFile
}

func (s *stubSchedule) Generate(ctx context.Context, req schedule.GenerateRequest) (schedule.GenerateResponse, error) {
	s.calls++
	s.lastGen = req
	return s.genResp, s.genErr
}

func (s *stubSchedule) List(ctx context.Context, q schedule.MonthQuery) (schedule.MonthScheduleResponse, error) {
	s.calls++
	return schedule.MonthScheduleResponse{SiteID: q.SiteID, Year: q.Year, Month: q.Month, Slots: []schedule.SlotResponse{}}, nil
}

func (s *stubSchedule) Export(ctx context.Context, q schedule.MonthQuery) (schedule.ExportFile, error) {
	s.calls++
	return s.exported, nil
}

type stubExpense struct {
	expense.ExpenseService
	transition  expense.TransitionRequest
	upload      expense.UploadReceiptRequest
	uploadBytes []byte
}

func (s *stubExpense) Transition(ctx context.Context, req expense.TransitionRequest) (expense.ReportResponse, error) {
	s.transition = req
	if req.Transition == "approve" {
		return expense.ReportResponse{}, expense.ErrInvalidTransition
	}
	return expense.ReportResponse{ID: req.ID, Status: "rejected"}, nil
}

func (s *stubExpense) UploadReceipt(ctx context.Context, req expense.UploadReceiptRequest, file io.Reader) (expense.ItemResponse, error) {
	s.upload = req
	s.uploadBytes, _ = io.ReadAll(file)
	return expense.ItemResponse{ID: req.ItemID}, nil
}

type routerFixture struct {
	router   http.Handler
	hub      *sse.Hub
	jwt      jwt.Service
	schedule *stubSchedule
	expense  *stubExpense
	auth     *stubAuth
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()
	f := &routerFixture{
		jwt:      jwt.NewJWTService(handlerTestSecret, time.Hour, 24*time.Hour, nil),
		schedule: &stubSchedule{},
		expense:  &stubExpense{},
		auth:     &stubAuth{},
		hub:      sse.NewHub(),
	}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	f.router = NewRouter(
		RouterConfig{AllowedOrigins: []string{"http://localhost:3000"}},
		logger,
		f.jwt,
		access.NewAuthorizer(),
		middleware.NewTenantMiddleware(stubTenants{}),
		Handlers{
			Auth:     NewAuthHandler(f.jwt, f.auth, nil, "http://localhost:3000"),
			Schedule: NewScheduleHandler(f.schedule),
			Expense:  NewExpenseHandler(f.expense),
			User:     NewUserHandler(nil),
			Site:     NewSiteHandler(nil),
			Position: NewPositionHandler(nil),
			Audit:    NewAuditHandler(nil),
			Event:    NewEventHandler(f.hub),
		},
	)
	return f
}

func (f *routerFixture) token(t *testing.T, tenantID string, role access.Role) string {
	t.Helper()
	tok, _, err := f.jwt.GenerateAccessToken(jwt.AccessClaims{
		UserID:   "0190a6b2-1c3d-7e4f-8a9b-0c1d2e3f4a70",
		Email:    "caller@example.com",
		TenantID: tenantID,
		Role:     string(role),
	})
	require.NoError(t, err)
	return tok
}

func (f *routerFixture) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp
}

func generateBody() map[string]any {
	return map[string]any{"site_id": testSiteID, "year": 2024, "month": 2, "overwrite": false}
}

func TestRouter_Heartbeat(t *testing.T) {
	f := newRouterFixture(t)
	w := f.do(t, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_GenerateRequiresToken(t *testing.T) {
	f := newRouterFixture(t)

	w := f.do(t, http.MethodPost, "/api/v1/ops/schedule/generate", "", generateBody())
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = f.do(t, http.MethodPost, "/api/v1/ops/schedule/generate", "not-a-jwt", generateBody())
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Zero(t, f.schedule.calls)
}

func TestRouter_GenerateRejectsRefreshToken(t *testing.T) {
	f := newRouterFixture(t)
	refresh, _, err := f.jwt.GenerateRefreshToken("0190a6b2-1c3d-7e4f-8a9b-0c1d2e3f4a70")
	require.NoError(t, err)

	w := f.do(t, http.MethodPost, "/api/v1/ops/schedule/generate", refresh, generateBody())
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_GenerateForbiddenBeforeServiceRuns(t *testing.T) {
	f := newRouterFixture(t)

	for _, role := range []access.Role{access.RoleViewer, access.RoleGuard, access.RoleFinance} {
		w := f.do(t, http.MethodPost, "/api/v1/ops/schedule/generate", f.token(t, activeTenantID, role), generateBody())
		assert.Equal(t, http.StatusForbidden, w.Code, role)
	}
	assert.Zero(t, f.schedule.calls)
}

func TestRouter_GenerateSuccess(t *testing.T) {
	f := newRouterFixture(t)
	f.schedule.genResp = schedule.GenerateResponse{CreatedCount: 24}

	w := f.do(t, http.MethodPost, "/api/v1/ops/schedule/generate", f.token(t, activeTenantID, access.RoleSupervisor), generateBody())
	require.Equal(t, http.StatusCreated, w.Code)

	resp := decodeBody(t, w)
	assert.True(t, resp["success"].(bool))
	data := resp["data"].(map[string]any)
	assert.Equal(t, float64(24), data["created_count"])
	assert.Equal(t, false, data["overwrite"])
	assert.Equal(t, testSiteID, f.schedule.lastGen.SiteID)
	assert.Equal(t, 2, f.schedule.lastGen.Month)
}

func TestRouter_GenerateErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"validation", validator.ValidationErrors{{Field: "month", Message: "month must be between 1 and 12"}}, http.StatusBadRequest},
		{"no templates", schedule.ErrNoActiveTemplates, http.StatusBadRequest},
		{"unknown site", site.ErrSiteNotFound, http.StatusNotFound},
		{"inactive site", site.ErrSiteInactive, http.StatusConflict},
		{"persistence", errors.New("failed to persist schedule: connection reset"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newRouterFixture(t)
			f.schedule.genErr = tc.err

			w := f.do(t, http.MethodPost, "/api/v1/ops/schedule/generate", f.token(t, activeTenantID, access.RoleOpsManager), generateBody())
			assert.Equal(t, tc.code, w.Code)

			resp := decodeBody(t, w)
			assert.False(t, resp["success"].(bool))
			assert.NotEmpty(t, resp["error"].(map[string]any)["message"])
		})
	}
}

func TestRouter_GenerateInvalidJSON(t *testing.T) {
	f := newRouterFixture(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ops/schedule/generate", bytes.NewBufferString("{not json"))
	req.Header.Set("Authorization", "Bearer "+f.token(t, activeTenantID, access.RoleOpsManager))
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, f.schedule.calls)
}

func TestRouter_RevokedTokenIsRejected(t *testing.T) {
	f := newRouterFixture(t)
	token := f.token(t, activeTenantID, access.RoleOwner)

	w := f.do(t, http.MethodPost, "/api/v1/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotEmpty(t, f.auth.logout.AccessTokenID)

	require.NoError(t, f.jwt.RevokeToken(context.Background(), f.auth.logout.AccessTokenID, f.auth.logout.AccessTokenExp))

	w = f.do(t, http.MethodGet, "/api/v1/ops/schedule?site_id="+testSiteID+"&year=2024&month=2", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_InactiveTenantIsRejected(t *testing.T) {
	f := newRouterFixture(t)
	w := f.do(t, http.MethodGet, "/api/v1/ops/schedule?site_id="+testSiteID+"&year=2024&month=2", f.token(t, closedTenantID, access.RoleOwner), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Zero(t, f.schedule.calls)
}

func TestRouter_ScheduleListParsesQuery(t *testing.T) {
	f := newRouterFixture(t)
	w := f.do(t, http.MethodGet, "/api/v1/ops/schedule?site_id="+testSiteID+"&year=2024&month=2", f.token(t, activeTenantID, access.RoleViewer), nil)
	require.Equal(t, http.StatusOK, w.Code)

	data := decodeBody(t, w)["data"].(map[string]any)
	assert.Equal(t, testSiteID, data["site_id"])
	assert.Equal(t, float64(2024), data["year"])
	assert.Equal(t, float64(2), data["month"])
}

func TestRouter_ScheduleExportStreamsWorkbook(t *testing.T) {
	f := newRouterFixture(t)
	f.schedule.exported = schedule.ExportFile{
		Filename:    "schedule-HQ-2024-02.xlsx",
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Content:     []byte("PK\x03\x04"),
	}

	w := f.do(t, http.MethodGet, "/api/v1/ops/schedule/export?site_id="+testSiteID+"&year=2024&month=2", f.token(t, activeTenantID, access.RoleViewer), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="schedule-HQ-2024-02.xlsx"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, f.schedule.exported.ContentType, w.Header().Get("Content-Type"))
	assert.Equal(t, "4", w.Header().Get("Content-Length"))
	assert.Equal(t, f.schedule.exported.Content, w.Body.Bytes())
}

func TestRouter_ExpenseTransition(t *testing.T) {
	f := newRouterFixture(t)
	reportID := "0190a6b2-1c3d-7e4f-8a9b-0c1d2e3f4a80"
	token := f.token(t, activeTenantID, access.RoleFinance)

	w := f.do(t, http.MethodPost, "/api/v1/finance/expenses/"+reportID+"/transitions/reject", token, map[string]string{"reason": "duplicate"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, reportID, f.expense.transition.ID)
	assert.Equal(t, expense.TransitionReject, f.expense.transition.Transition)
	assert.Equal(t, "duplicate", f.expense.transition.Reason)

	w = f.do(t, http.MethodPost, "/api/v1/finance/expenses/"+reportID+"/transitions/approve", token, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRouter_ExpenseRoutesRequireFinanceAccess(t *testing.T) {
	f := newRouterFixture(t)
	reportID := "0190a6b2-1c3d-7e4f-8a9b-0c1d2e3f4a80"

	w := f.do(t, http.MethodPost, "/api/v1/finance/expenses/"+reportID+"/transitions/submit", f.token(t, activeTenantID, access.RoleViewer), nil)
	assert.Equal(t, http.StatusOK, w.Code, "viewer reaches the service, which applies the transition rules")

	w = f.do(t, http.MethodPost, "/api/v1/finance/expenses/"+reportID+"/items", f.token(t, activeTenantID, access.RoleViewer), map[string]any{})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRouter_ExpenseReceiptUpload(t *testing.T) {
	f := newRouterFixture(t)
	reportID := "0190a6b2-1c3d-7e4f-8a9b-0c1d2e3f4a80"
	itemID := "0190a6b2-1c3d-7e4f-8a9b-0c1d2e3f4a81"

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="receipt"; filename="taxi.pdf"`)
	header.Set("Content-Type", "application/pdf")
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write([]byte("%PDF-1.4 taxi"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/finance/expenses/"+reportID+"/items/"+itemID+"/receipt", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+f.token(t, activeTenantID, access.RoleGuard))
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, reportID, f.expense.upload.ReportID)
	assert.Equal(t, itemID, f.expense.upload.ItemID)
	assert.Equal(t, "application/pdf", f.expense.upload.ContentType)
	assert.Equal(t, []byte("%PDF-1.4 taxi"), f.expense.uploadBytes)
}

func TestRouter_ExpenseReceiptMissingFile(t *testing.T) {
	f := newRouterFixture(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("note", "no file"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/finance/expenses/0190a6b2-1c3d-7e4f-8a9b-0c1d2e3f4a80/items/0190a6b2-1c3d-7e4f-8a9b-0c1d2e3f4a81/receipt", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+f.token(t, activeTenantID, access.RoleGuard))
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouter_EventStream(t *testing.T) {
	f := newRouterFixture(t)
	server := httptest.NewServer(f.router)
	defer server.Close()

	t.Run("requires a token", func(t *testing.T) {
		resp, err := http.Get(server.URL + "/api/v1/events")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("query token streams the caller's events", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/api/v1/events?jwt="+f.token(t, activeTenantID, access.RoleGuard), nil)
		require.NoError(t, err)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

		reader := bufio.NewReader(resp.Body)
		readEvent := func() string {
			var lines []string
			for {
				line, err := reader.ReadString('\n')
				require.NoError(t, err)
				if line == "\n" {
					return strings.Join(lines, "")
				}
				lines = append(lines, line)
			}
		}

		assert.Contains(t, readEvent(), "event: connected")

		userID := "0190a6b2-1c3d-7e4f-8a9b-0c1d2e3f4a70"
		require.Equal(t, 1, f.hub.Publish(userID, sse.Event{Name: "expense.status", Data: map[string]string{"status": "approved"}}))
		assert.Equal(t, "event: expense.status\ndata: {\"status\":\"approved\"}\n", readEvent())
	})
}
