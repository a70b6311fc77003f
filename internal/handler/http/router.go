package http

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"

	"github.com/paycore-hr/payroll-engine/internal/handler/http/middleware"
	"github.com/paycore-hr/payroll-engine/internal/pkg/jwt"
)

func NewRouter(jwtService jwt.Service, allowedOrigins []string, cycleHandler CycleHandler) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "payroll-engine"),
		slog.String("version", "v1.0.0"),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(jwtService.JWTAuth()))
			r.Use(middleware.AuthRequired(jwtService))

			r.Route("/cycles", func(r chi.Router) {
				r.Get("/", cycleHandler.List)
				r.Post("/", cycleHandler.Create)

				r.Route("/{cycleID}", func(r chi.Router) {
					r.Get("/", cycleHandler.Get)
					r.Post("/advance", cycleHandler.Advance)
					r.Post("/recalculate", cycleHandler.Recalculate)
					r.Post("/reset", cycleHandler.Reset)
					r.Post("/mark-paid", cycleHandler.MarkPaid)

					r.Route("/holidays", func(r chi.Router) {
						r.Get("/", cycleHandler.ListHolidays)
						r.Post("/", cycleHandler.AddHoliday)
						r.Put("/{holidayID}", cycleHandler.UpdateHoliday)
						r.Delete("/{holidayID}", cycleHandler.DeleteHoliday)
					})

					r.Route("/employees", func(r chi.Router) {
						r.Get("/", cycleHandler.ListEmployeePayrolls)
						r.Route("/{employeeID}", func(r chi.Router) {
							r.Get("/", cycleHandler.GetEmployeePayroll)
							r.Post("/deductions", cycleHandler.AddManualDeduction)
						})
					})
				})
			})
		})
	})
	return r
}
