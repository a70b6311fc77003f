package main

import (
	"fmt"
	"net/http"

	"github.com/paycore-hr/payroll-engine/internal/config"
	appHTTP "github.com/paycore-hr/payroll-engine/internal/handler/http"
	"github.com/paycore-hr/payroll-engine/internal/pkg/database"
	"github.com/paycore-hr/payroll-engine/internal/pkg/jwt"
	"github.com/paycore-hr/payroll-engine/internal/repository/postgresql"
	cycleService "github.com/paycore-hr/payroll-engine/internal/service/cycle"
	"github.com/paycore-hr/payroll-engine/internal/service/snapshot"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	dsn := cfg.DatabaseURL()
	db, err := database.NewPostgreSQLDB(dsn)
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}

	cycleRepo := postgresql.NewCycleRepository(db)
	employeePayrollRepo := postgresql.NewEmployeePayrollRepository(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	loanRepo := postgresql.NewLoanRepository(db)
	deductionRepo := postgresql.NewDeductionRepository(db)
	bonusRepo := postgresql.NewBonusRepository(db)
	leaveRepo := postgresql.NewLeaveRepository(db)

	jwtService := jwt.NewService(cfg.JWT.Secret)

	snapshotBuilder := snapshot.NewBuilder(employeePayrollRepo, employeeRepo, attendanceRepo, cycleRepo)
	cycleSvc := cycleService.NewService(
		db,
		cycleRepo,
		employeePayrollRepo,
		snapshotBuilder,
		loanRepo,
		deductionRepo,
		bonusRepo,
		leaveRepo,
	)

	cycleHandler := appHTTP.NewCycleHandler(cycleSvc)

	router := appHTTP.NewRouter(jwtService, cfg.App.AllowedOrigins, cycleHandler)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	fmt.Printf("Server running at http://localhost%s\n", port)
	if err := http.ListenAndServe(port, router); err != nil {
		fmt.Println("Server error:", err)
	}
}
