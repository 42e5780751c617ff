package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/hr-attendance/internal"
	"github.com/frahmantamala/hr-attendance/internal/attendance"
	attendancePostgres "github.com/frahmantamala/hr-attendance/internal/attendance/postgres"
	"github.com/frahmantamala/hr-attendance/internal/auth"
	authPostgres "github.com/frahmantamala/hr-attendance/internal/auth/postgres"
	"github.com/frahmantamala/hr-attendance/internal/core/database"
	"github.com/frahmantamala/hr-attendance/internal/core/events"
	"github.com/frahmantamala/hr-attendance/internal/employee"
	employeePostgres "github.com/frahmantamala/hr-attendance/internal/employee/postgres"
	"github.com/frahmantamala/hr-attendance/internal/leave"
	leavePostgres "github.com/frahmantamala/hr-attendance/internal/leave/postgres"
	"github.com/frahmantamala/hr-attendance/internal/leavebalance"
	leavebalancePostgres "github.com/frahmantamala/hr-attendance/internal/leavebalance/postgres"
	"github.com/frahmantamala/hr-attendance/internal/leavetype"
	leavetypePostgres "github.com/frahmantamala/hr-attendance/internal/leavetype/postgres"
	"github.com/frahmantamala/hr-attendance/internal/notification"
	"github.com/frahmantamala/hr-attendance/internal/organization"
	organizationPostgres "github.com/frahmantamala/hr-attendance/internal/organization/postgres"
	"github.com/frahmantamala/hr-attendance/internal/user"
	userPostgres "github.com/frahmantamala/hr-attendance/internal/user/postgres"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// App holds the wired services shared by the server, worker and one-shot commands.
type App struct {
	Config *internal.Config
	Logger *slog.Logger
	SQL    *sqlx.DB
	DB     *gorm.DB
	Bus    *events.EventBus

	Dispatcher *notification.Dispatcher

	Auth         *auth.Service
	Users        *user.Service
	Organization *organization.Service
	Employees    *employee.Service
	LeaveTypes   *leavetype.Service
	Balances     *leavebalance.Service
	Leaves       *leave.Service
	Attendance   *attendance.Service
}

// initDB opens the pgx pool through sqlx and shares it with gorm.
func initDB(cfg internal.DatabaseConfig, appEnv string) (*sqlx.DB, *gorm.DB, error) {
	const driver = "pgx"

	sqlDB, err := sqlx.Open(driver, cfg.GetDSN())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open db connection: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logLevel := gormLogger.Warn
	if appEnv == "production" {
		logLevel = gormLogger.Error
	}
	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB.DB}), &gorm.Config{
		Logger:         gormLogger.Default.LogMode(logLevel),
		NowFunc:        func() time.Time { return time.Now().UTC() },
		TranslateError: true,
	})
	if err != nil {
		_ = sqlDB.Close()
		return nil, nil, fmt.Errorf("failed to open gorm: %w", err)
	}
	return sqlDB, gdb, nil
}

func newApp(cfg *internal.Config, lg *slog.Logger) (*App, error) {
	sqlDB, gdb, err := initDB(cfg.Database, cfg.AppEnv)
	if err != nil {
		return nil, err
	}

	schedule, err := leave.NewWorkSchedule(cfg.Attendance)
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("attendance schedule: %w", err)
	}
	policy, err := attendance.NewPolicy(cfg.Attendance)
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("attendance policy: %w", err)
	}

	bus := events.NewEventBus(lg)
	tx := database.NewTransactor(gdb)
	loc := cfg.Attendance.Location()

	tokens := auth.NewJWTTokenGenerator(
		cfg.Security.AccessTokenSecret,
		cfg.Security.RefreshTokenSecret,
		cfg.Security.AccessTokenDuration,
		cfg.Security.RefreshTokenDuration,
	)

	app := &App{Config: cfg, Logger: lg, SQL: sqlDB, DB: gdb, Bus: bus}
	app.Auth = auth.NewService(authPostgres.NewRepository(gdb), tokens, bus, cfg.Security.BCryptCost, lg)
	app.Organization = organization.NewService(organizationPostgres.NewOrganizationRepository(gdb), lg)
	app.LeaveTypes = leavetype.NewService(leavetypePostgres.NewLeaveTypeRepository(gdb), lg)
	app.Balances = leavebalance.NewService(leavebalancePostgres.NewBalanceRepository(gdb), app.LeaveTypes, tx, bus, lg)
	app.Employees = employee.NewService(employeePostgres.NewEmployeeRepository(gdb), app.Organization, app.Balances, tx, bus, loc, lg)
	app.Users = user.NewService(userPostgres.NewUserRepository(gdb), app.Employees, lg)
	app.Leaves = leave.NewService(leavePostgres.NewLeaveRepository(gdb), app.LeaveTypes, app.Balances, tx, bus, schedule, lg)
	app.Attendance = attendance.NewService(
		attendancePostgres.NewAttendanceRepository(gdb),
		attendancePostgres.NewReportRepository(sqlDB),
		tx, bus, policy, lg,
	)
	return app, nil
}

// StartNotifications starts the dispatcher and subscribes its event handlers to the bus.
func (a *App) StartNotifications() {
	mailer := notification.NewSMTPMailer(a.Config.Mail, a.Logger)
	chat := notification.NewSlackNotifier(a.Config.Slack, a.Logger)

	a.Dispatcher = notification.NewDispatcher(notification.Config{
		MaxWorkers:   a.Config.Notification.MaxWorkers,
		JobQueueSize: a.Config.Notification.JobQueueSize,
		SendTimeout:  a.Config.Notification.SendTimeout,
	}, notification.Deliver(mailer, chat), a.Logger)
	a.Dispatcher.Start()

	notification.NewEventHandler(a.Employees, a.Dispatcher, a.Logger).RegisterEventHandlers(a.Bus)
}

// Close drains event handlers, then pending notifications, then the pool.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if err := a.Bus.Drain(ctx); err != nil {
		errs = append(errs, fmt.Errorf("drain events: %w", err))
	}
	if a.Dispatcher != nil {
		if err := a.Dispatcher.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown notifications: %w", err))
		}
	}
	if err := a.SQL.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close database: %w", err))
	}
	return errors.Join(errs...)
}
