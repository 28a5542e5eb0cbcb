package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/guardops-backend/internal/domain/access"
	"github.com/cmlabs-hris/guardops-backend/internal/domain/audit"
	"github.com/cmlabs-hris/guardops-backend/internal/domain/auth"
	"github.com/cmlabs-hris/guardops-backend/internal/domain/expense"
	"github.com/cmlabs-hris/guardops-backend/internal/domain/position"
	"github.com/cmlabs-hris/guardops-backend/internal/domain/schedule"
	"github.com/cmlabs-hris/guardops-backend/internal/domain/site"
	"github.com/cmlabs-hris/guardops-backend/internal/domain/tenant"
	"github.com/cmlabs-hris/guardops-backend/internal/domain/user"
	"github.com/cmlabs-hris/guardops-backend/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth domain errors
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTenantRequired):
		Unauthorized(w, err.Error())
	case errors.Is(err, auth.ErrTokenExpired):
		Unauthorized(w, "Token expired")
	case errors.Is(err, auth.ErrRefreshTokenRevoked):
		Unauthorized(w, "Refresh token revoked")
	case errors.Is(err, auth.ErrEmailNotVerified):
		Forbidden(w, "Email not verified")
	case errors.Is(err, auth.ErrAccountDisabled):
		Forbidden(w, "Account is disabled")
	case errors.Is(err, auth.ErrInvalidOAuthState):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, auth.ErrOAuthNotConfigured):
		NotFound(w, err.Error())

	// Tenant and user domain errors
	case errors.Is(err, tenant.ErrTenantNotFound):
		NotFound(w, "Tenant not found")
	case errors.Is(err, tenant.ErrTenantSlugExists):
		Conflict(w, "Tenant slug already exists")
	case errors.Is(err, tenant.ErrTenantInactive):
		Forbidden(w, "Tenant is inactive")
	case errors.Is(err, user.ErrUserNotFound):
		NotFound(w, "User not found")
	case errors.Is(err, user.ErrUserEmailExists):
		Conflict(w, "Email already registered")
	case errors.Is(err, user.ErrCannotChangeOwnRole):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, user.ErrLastOwner):
		Conflict(w, err.Error())
	case errors.Is(err, access.ErrForbidden):
		Forbidden(w, "Insufficient permissions")

	// Operations domain errors
	case errors.Is(err, site.ErrSiteNotFound):
		NotFound(w, "Site not found")
	case errors.Is(err, site.ErrSiteCodeExists):
		Conflict(w, "Site code already exists")
	case errors.Is(err, site.ErrSiteInactive):
		Conflict(w, "Site is inactive")
	case errors.Is(err, position.ErrPositionNotFound):
		NotFound(w, "Position template not found")
	case errors.Is(err, schedule.ErrNoActiveTemplates):
		BadRequest(w, "Site has no active position templates", nil)
	case errors.Is(err, schedule.ErrInvalidMonth):
		BadRequest(w, err.Error(), nil)

	// Expense domain errors
	case errors.Is(err, expense.ErrReportNotFound):
		NotFound(w, "Expense report not found")
	case errors.Is(err, expense.ErrItemNotFound):
		NotFound(w, "Expense item not found")
	case errors.Is(err, expense.ErrInvalidTransition),
		errors.Is(err, expense.ErrNotEditable):
		Conflict(w, err.Error())
	case errors.Is(err, expense.ErrNotOwner),
		errors.Is(err, expense.ErrSelfApproval):
		Forbidden(w, err.Error())
	case errors.Is(err, expense.ErrNoItems),
		errors.Is(err, expense.ErrReasonRequired),
		errors.Is(err, expense.ErrPaymentReferenceRequired),
		errors.Is(err, expense.ErrReceiptType):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, expense.ErrReceiptTooLarge):
		PayloadTooLarge(w, err.Error())

	case errors.Is(err, audit.ErrInvalidPayload):
		BadRequest(w, err.Error(), nil)

	// Default
	default:
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
