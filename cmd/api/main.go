package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/httplog/v3"
	"github.com/hrms-lite/hrms-backend-go/internal/config"
	"github.com/hrms-lite/hrms-backend-go/internal/domain/attendance"
	"github.com/hrms-lite/hrms-backend-go/internal/domain/employee"
	appHTTP "github.com/hrms-lite/hrms-backend-go/internal/handler/http"
	"github.com/hrms-lite/hrms-backend-go/internal/pkg/calendar"
	"github.com/hrms-lite/hrms-backend-go/internal/pkg/cron"
	"github.com/hrms-lite/hrms-backend-go/internal/pkg/database"
	"github.com/hrms-lite/hrms-backend-go/internal/pkg/sse"
	"github.com/hrms-lite/hrms-backend-go/internal/repository/memory"
	"github.com/hrms-lite/hrms-backend-go/internal/repository/postgresql"
	attendanceService "github.com/hrms-lite/hrms-backend-go/internal/service/attendance"
	dashboardService "github.com/hrms-lite/hrms-backend-go/internal/service/dashboard"
	employeeService "github.com/hrms-lite/hrms-backend-go/internal/service/employee"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	logFormat := httplog.SchemaECS.Concise(cfg.App.Env != "development")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       cfg.SlogLevel(),
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "hrms-lite"),
		slog.String("env", cfg.App.Env),
	)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		employeeRepo   employee.EmployeeRepository
		attendanceRepo attendance.AttendanceRepository
	)
	switch cfg.Storage.Driver {
	case config.StorageDriverPostgres:
		db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL())
		if err != nil {
			slog.Error("Error connecting to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		employeeRepo = postgresql.NewEmployeeRepository(db)
		attendanceRepo = postgresql.NewAttendanceRepository(db)
	case config.StorageDriverMemory:
		slog.Warn("Using in-memory storage, data is lost on restart")
		employeeRepo = memory.NewEmployeeRepository()
		attendanceRepo = memory.NewAttendanceRepository()
	}

	clock := calendar.NewClock(cfg.Location())
	hub := sse.NewHub()

	employeeSvc := employeeService.NewEmployeeService(employeeRepo)
	attendanceSvc := attendanceService.NewAttendanceService(attendanceRepo, employeeRepo, clock, hub)
	dashboardSvc := dashboardService.NewDashboardService(employeeRepo, attendanceRepo, clock)

	if cfg.Attendance.CloseOutEnabled {
		scheduler := cron.NewScheduler(logger)
		cron.NewAttendanceJobs(attendanceSvc, clock).RegisterJobs(scheduler, cfg.Attendance.CloseOutInterval)
		scheduler.Start()
		defer scheduler.Stop()
	}

	router := appHTTP.NewRouter(
		cfg.App,
		logger,
		appHTTP.NewEmployeeHandler(employeeSvc),
		appHTTP.NewAttendanceHandler(attendanceSvc),
		appHTTP.NewDashboardHandler(dashboardSvc, hub),
	)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Server running", "addr", srv.Addr, "storage", cfg.Storage.Driver, "timezone", cfg.App.Timezone)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown failed", "error", err)
	}
	slog.Info("Server stopped")
}
