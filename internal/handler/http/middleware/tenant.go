package middleware

import (
	"net/http"

	"github.com/cmlabs-hris/guardops-backend/internal/domain/auth"
	"github.com/cmlabs-hris/guardops-backend/internal/domain/tenant"
	"github.com/cmlabs-hris/guardops-backend/internal/handler/http/response"
)

// TenantMiddleware double checks the tenant claim against the database.
type TenantMiddleware struct {
	tenants tenant.TenantRepository
}

func NewTenantMiddleware(tenants tenant.TenantRepository) *TenantMiddleware {
	return &TenantMiddleware{tenants: tenants}
}

// RequireActiveTenant rejects tokens whose tenant was deactivated after they were issued.
func (m *TenantMiddleware) RequireActiveTenant(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, err := auth.SessionFromContext(r.Context())
		if err != nil {
			response.HandleError(w, err)
			return
		}

		t, err := m.tenants.GetByID(r.Context(), session.TenantID)
		if err != nil {
			response.HandleError(w, err)
			return
		}
		if !t.IsActive {
			response.HandleError(w, tenant.ErrTenantInactive)
			return
		}

		next.ServeHTTP(w, r)
	})
}
