package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"TRIPPLANNER_BACK-END/internal/config"
	"TRIPPLANNER_BACK-END/internal/handlers"
	"TRIPPLANNER_BACK-END/internal/middleware"
)

// Handlers groups every HTTP handler the router mounts
type Handlers struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	GoogleAuth     *handlers.GoogleAuthHandler
	ForgotPassword *handlers.ForgotPasswordHandler
	Profile        *handlers.ProfileHandler
	Trips          *handlers.TripsHandler
	Collaborators  *handlers.CollaboratorsHandler
	Items          *handlers.ItemsHandler
	Expenses       *handlers.ExpensesHandler
	Checklist      *handlers.ChecklistHandler
	Files          *handlers.FilesHandler
	Exports        *handlers.ExportsHandler
	AI             *handlers.AIHandler
	Admin          *handlers.AdminHandler
	Settings       *handlers.SettingsHandler
}

// NewRouter configures all application routes
func NewRouter(h *Handlers, jwtCfg *config.JWTConfig, users middleware.UserLookup) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)

	// Health check routes
	r.Get("/healthz", h.Health.HealthCheck)
	r.Get("/livez", h.Health.LivenessCheck)
	r.Get("/readyz", h.Health.ReadinessCheck)

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	r.Route("/api", func(r chi.Router) {
		// Authentication routes
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.Auth.Register)
			r.Post("/login", h.Auth.Login)
			r.Get("/google/login", h.GoogleAuth.GoogleLogin)
			r.Get("/google/callback", h.GoogleAuth.GoogleCallback)
			r.Post("/forgot-password", h.ForgotPassword.ForgotPassword)
			r.Post("/verify-otp", h.ForgotPassword.VerifyOTP)
			r.Post("/reset-password", h.ForgotPassword.ResetPassword)

			r.Group(func(r chi.Router) {
				r.Use(middleware.AuthMiddleware(jwtCfg, users))
				r.Post("/logout", h.Auth.Logout)
				r.Get("/profile", h.Auth.GetProfile)
				r.Put("/profile", h.Profile.Update)
				r.Put("/password", h.Profile.ChangePassword)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(jwtCfg, users))

			r.Get("/dashboard", h.Expenses.Dashboard)
			r.Get("/dashboard/chart-data", h.Expenses.ChartData)
			r.Get("/places/currency", h.Expenses.PlaceCurrency)

			r.Route("/trips", func(r chi.Router) {
				r.Get("/", h.Trips.ListTrips)
				r.Post("/", h.Trips.CreateTrip)

				r.Route("/{tripID}", func(r chi.Router) {
					r.Get("/", h.Trips.TripDetail)
					r.Put("/", h.Trips.UpdateTrip)
					r.Delete("/", h.Trips.DeleteTrip)
					r.Get("/timeline", h.Trips.Timeline)
					r.Get("/calendar-events", h.Trips.CalendarEvents)

					r.Post("/items", h.Items.Create)
					r.Post("/enrich", h.Items.EnrichTrip)

					r.Get("/expenses", h.Expenses.List)
					r.Post("/expenses", h.Expenses.Create)

					r.Get("/checklist", h.Checklist.Get)
					r.Post("/checklist/items", h.Checklist.AddItems)

					r.Get("/collaborators", h.Collaborators.List)
					r.Post("/collaborators", h.Collaborators.Add)
					r.Delete("/collaborators/{userID}", h.Collaborators.Remove)

					r.Get("/photos", h.Files.ListPhotos)
					r.Post("/photos", h.Files.UploadPhoto)

					r.Get("/calendar.ics", h.Exports.CalendarICS)
					r.Post("/calendar/import", h.Exports.ImportCalendar)
					r.Get("/itinerary.pdf", h.Exports.ItineraryPDF)
					r.Get("/checklist.pdf", h.Exports.ChecklistPDF)
					r.Get("/expenses.xlsx", h.Exports.ExpensesXLSX)

					r.Post("/ai/checklist", h.AI.Checklist)
					r.Post("/ai/itinerary", h.AI.Itinerary)
					r.Get("/ai/insights", h.AI.Insights)
				})
			})

			r.Route("/items/{itemID}", func(r chi.Router) {
				r.Get("/", h.Items.Get)
				r.Put("/", h.Items.Update)
				r.Delete("/", h.Items.Delete)
				r.Get("/expense", h.Items.GetExpense)
				r.Put("/expense", h.Items.PutExpense)
				r.Post("/enrich", h.Items.Enrich)
				r.Get("/attachments", h.Files.ListAttachments)
				r.Post("/attachments", h.Files.UploadAttachment)
			})

			r.Put("/expenses/{expenseID}", h.Expenses.Update)
			r.Delete("/expenses/{expenseID}", h.Expenses.Delete)
			r.Post("/expenses/{expenseID}/toggle-paid", h.Expenses.TogglePaid)

			r.Put("/checklist-items/{checklistItemID}", h.Checklist.UpdateItem)
			r.Delete("/checklist-items/{checklistItemID}", h.Checklist.DeleteItem)
			r.Post("/checklist-items/{checklistItemID}/toggle", h.Checklist.ToggleItem)

			r.Get("/attachments/{attachmentID}/download", h.Files.DownloadAttachment)
			r.Delete("/attachments/{attachmentID}", h.Files.DeleteAttachment)
			r.Get("/photos/{photoID}/download", h.Files.DownloadPhoto)
			r.Delete("/photos/{photoID}", h.Files.DeletePhoto)

			r.Group(func(r chi.Router) {
				r.Use(middleware.AdminOnly)

				r.Get("/admin/users", h.Admin.ListUsers)
				r.Post("/admin/users", h.Admin.CreateUser)
				r.Put("/admin/users/{userID}", h.Admin.UpdateUser)
				r.Delete("/admin/users/{userID}", h.Admin.DeleteUser)
				r.Get("/admin/access-logs", h.Admin.AccessLogs)

				r.Get("/settings/api-keys", h.Settings.APIKeys)
				r.Put("/settings/api-keys", h.Settings.PutAPIKeys)
				r.Get("/settings/email", h.Settings.EmailConfig)
				r.Put("/settings/email", h.Settings.PutEmailConfig)
				r.Post("/settings/email/test", h.Settings.TestEmail)
			})
		})
	})

	// Root route
	r.Get("/", rootHandler)
	return r
}

func rootHandler(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("Trip planner backend is running."))
}
