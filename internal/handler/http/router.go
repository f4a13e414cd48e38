package http

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/hrms-lite/hrms-backend-go/internal/config"
)

func NewRouter(
	appCfg config.AppConfig,
	logger *slog.Logger,
	employeeHandler EmployeeHandler,
	attendanceHandler AttendanceHandler,
	dashboardHandler DashboardHandler,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   appCfg.CORSAllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/employees", func(r chi.Router) {
			r.Get("/", employeeHandler.ListEmployees)
			r.With(chiMiddleware.AllowContentType("application/json")).Post("/", employeeHandler.CreateEmployee)
			r.Get("/{employeeID}", employeeHandler.GetEmployee)
			r.Delete("/{employeeID}", employeeHandler.DeleteEmployee)
		})

		r.Route("/attendance", func(r chi.Router) {
			r.Get("/", attendanceHandler.List)
			r.Get("/export", attendanceHandler.Export)
			r.Get("/summary/{employeeID}", attendanceHandler.Summary)
			r.Get("/daily", attendanceHandler.PrepareDaily)

			r.Group(func(r chi.Router) {
				r.Use(chiMiddleware.AllowContentType("application/json"))
				r.Post("/", attendanceHandler.Mark)
				r.Post("/bulk", attendanceHandler.BulkMark)
				r.Put("/daily", attendanceHandler.SaveDaily)
			})
		})

		r.Route("/dashboard", func(r chi.Router) {
			r.Get("/", dashboardHandler.GetDashboard)
			r.Get("/stream", dashboardHandler.Stream)
		})
	})

	return r
}
