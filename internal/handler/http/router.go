package http

import (
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/guardops-backend/internal/domain/access"
	"github.com/cmlabs-hris/guardops-backend/internal/handler/http/middleware"
	"github.com/cmlabs-hris/guardops-backend/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

type RouterConfig struct {
	AllowedOrigins []string
	// UploadsDir is served under /uploads when receipts live on the local filesystem.
	UploadsDir string
}

type Handlers struct {
	Auth     AuthHandler
	User     UserHandler
	Site     SiteHandler
	Position PositionHandler
	Schedule ScheduleHandler
	Expense  ExpenseHandler
	Audit    AuditHandler
	Event    EventHandler
}

func NewRouter(
	cfg RouterConfig,
	logger *slog.Logger,
	JWTService jwt.Service,
	authorizer access.Authorizer,
	tenantMiddleware *middleware.TenantMiddleware,
	h Handlers,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	if cfg.UploadsDir != "" {
		r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadsDir))))
	}

	allow := func(action access.Action, module access.Module, resource access.Resource) func(http.Handler) http.Handler {
		return middleware.RequireAccess(authorizer, action, module, resource)
	}

	r.Route("/api/v1", func(r chi.Router) {

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.Auth.Register)
			r.Post("/refresh", h.Auth.RefreshToken)
			r.Get("/oauth/callback/google", h.Auth.OAuthCallbackGoogle)

			r.Route("/login", func(r chi.Router) {
				r.Post("/", h.Auth.Login)
				r.Get("/oauth/google", h.Auth.LoginWithGoogle)
			})
		})

		// EventSource cannot send headers, so the stream also accepts ?jwt=.
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verify(JWTService.JWTAuth(), jwtauth.TokenFromHeader, jwtauth.TokenFromQuery))
			r.Use(middleware.AuthRequired(JWTService))
			r.Use(tenantMiddleware.RequireActiveTenant)
			r.Get("/events", h.Event.Stream)
		})

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService))
			r.Use(tenantMiddleware.RequireActiveTenant)

			r.Post("/auth/logout", h.Auth.Logout)

			r.Route("/admin", func(r chi.Router) {
				r.Route("/users", func(r chi.Router) {
					r.With(allow(access.ActionView, access.ModuleAdmin, access.ResourceUsers)).Get("/", h.User.List)
					r.With(allow(access.ActionEdit, access.ModuleAdmin, access.ResourceUsers)).Post("/", h.User.Create)
					r.With(allow(access.ActionEdit, access.ModuleAdmin, access.ResourceUsers)).Patch("/{userID}/role", h.User.UpdateRole)
				})
				r.With(allow(access.ActionView, access.ModuleAdmin, access.ResourceAudit)).Get("/audit", h.Audit.List)
			})

			r.Route("/ops", func(r chi.Router) {
				r.Route("/sites", func(r chi.Router) {
					r.With(allow(access.ActionView, access.ModuleOps, access.ResourceSites)).Get("/", h.Site.List)
					r.With(allow(access.ActionEdit, access.ModuleOps, access.ResourceSites)).Post("/", h.Site.Create)

					r.Route("/{siteID}", func(r chi.Router) {
						r.With(allow(access.ActionView, access.ModuleOps, access.ResourceSites)).Get("/", h.Site.Get)
						r.With(allow(access.ActionEdit, access.ModuleOps, access.ResourceSites)).Patch("/", h.Site.Update)
						r.With(allow(access.ActionDelete, access.ModuleOps, access.ResourceSites)).Delete("/", h.Site.Delete)

						r.Route("/positions", func(r chi.Router) {
							r.With(allow(access.ActionView, access.ModuleOps, access.ResourcePositions)).Get("/", h.Position.List)
							r.With(allow(access.ActionEdit, access.ModuleOps, access.ResourcePositions)).Post("/", h.Position.Create)
							r.With(allow(access.ActionView, access.ModuleOps, access.ResourcePositions)).Get("/{positionID}", h.Position.Get)
							r.With(allow(access.ActionEdit, access.ModuleOps, access.ResourcePositions)).Patch("/{positionID}", h.Position.Update)
							r.With(allow(access.ActionDelete, access.ModuleOps, access.ResourcePositions)).Delete("/{positionID}", h.Position.Delete)
						})
					})
				})

				r.Route("/schedule", func(r chi.Router) {
					r.With(allow(access.ActionView, access.ModuleOps, access.ResourceSchedule)).Get("/", h.Schedule.List)
					r.With(allow(access.ActionView, access.ModuleOps, access.ResourceSchedule)).Get("/export", h.Schedule.Export)
					r.With(allow(access.ActionEdit, access.ModuleOps, access.ResourceSchedule)).Post("/generate", h.Schedule.Generate)
				})
			})

			r.Route("/finance/expenses", func(r chi.Router) {
				r.With(allow(access.ActionView, access.ModuleFinance, access.ResourceExpenses)).Get("/", h.Expense.List)
				r.With(allow(access.ActionEdit, access.ModuleFinance, access.ResourceExpenses)).Post("/", h.Expense.Create)

				r.Route("/{reportID}", func(r chi.Router) {
					r.Use(allow(access.ActionView, access.ModuleFinance, access.ResourceExpenses))

					r.Get("/", h.Expense.Get)
					// Review, approval and payment rights are checked per transition.
					r.Post("/transitions/{transition}", h.Expense.Transition)

					r.Group(func(r chi.Router) {
						r.Use(allow(access.ActionEdit, access.ModuleFinance, access.ResourceExpenses))
						r.Patch("/", h.Expense.Update)
						r.Post("/items", h.Expense.AddItem)
						r.Delete("/items/{itemID}", h.Expense.RemoveItem)
						r.Post("/items/{itemID}/receipt", h.Expense.UploadReceipt)
					})
				})
			})
		})
	})
	return r
}
