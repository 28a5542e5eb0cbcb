package middleware

import (
	"fmt"
	"net/http"

	"github.com/cmlabs-hris/guardops-backend/internal/domain/access"
	"github.com/cmlabs-hris/guardops-backend/internal/domain/auth"
	"github.com/cmlabs-hris/guardops-backend/internal/handler/http/response"
)

// RequireAccess rejects callers whose role does not reach action on module.resource.
func RequireAccess(authorizer access.Authorizer, action access.Action, module access.Module, resource access.Resource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, err := auth.SessionFromContext(r.Context())
			if err != nil {
				response.HandleError(w, err)
				return
			}

			perms := authorizer.ForRole(session.Role)
			if !authorizer.Can(perms, action, module, resource) {
				target := string(module)
				if resource != access.ResourceAny {
					target += "." + string(resource)
				}
				response.Forbidden(w, fmt.Sprintf("Insufficient permissions: required '%s' on '%s'", action, target))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
