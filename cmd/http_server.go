package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/hr-attendance/internal/attendance"
	"github.com/frahmantamala/hr-attendance/internal/auth"
	"github.com/frahmantamala/hr-attendance/internal/employee"
	"github.com/frahmantamala/hr-attendance/internal/leave"
	"github.com/frahmantamala/hr-attendance/internal/leavebalance"
	"github.com/frahmantamala/hr-attendance/internal/leavetype"
	"github.com/frahmantamala/hr-attendance/internal/organization"
	"github.com/frahmantamala/hr-attendance/internal/transport"
	"github.com/frahmantamala/hr-attendance/internal/transport/openapi"
	"github.com/frahmantamala/hr-attendance/internal/transport/rest"
	"github.com/frahmantamala/hr-attendance/internal/user"
	"github.com/go-chi/chi"
	"github.com/spf13/cobra"
)

var withScheduler bool

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return startHTTPServer()
	},
}

func init() {
	httpServerCmd.Flags().BoolVar(&withScheduler, "with-scheduler", false, "also run the leave reset cron in this process")
}

func setupRoutes(app *App) (*chi.Mux, error) {
	base := transport.NewBaseHandler(app.Logger)

	var spec http.Handler
	if path := app.Config.Server.OpenAPIPath; path != "" {
		doc, err := openapi.Load(context.Background(), path)
		if err != nil {
			return nil, err
		}
		app.Logger.Info("openapi document loaded", "title", doc.Title(), "operations", len(doc.Operations()))
		spec = doc.Handler()
	}

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, rest.Handlers{
		Health:       rest.NewHealthHandler(base, map[string]rest.Checker{"postgres": app.SQL}),
		Auth:         auth.NewHandler(app.Auth),
		User:         user.NewHandler(base, app.Users),
		Organization: organization.NewHandler(base, app.Organization),
		Employee:     employee.NewHandler(base, app.Employees),
		LeaveType:    leavetype.NewHandler(base, app.LeaveTypes),
		LeaveBalance: leavebalance.NewHandler(base, app.Balances),
		Leave:        leave.NewHandler(base, app.Leaves),
		Attendance:   attendance.NewHandler(base, app.Attendance),
	}, rest.RouterOptions{
		AllowedOrigins: app.Config.Server.AllowedOrigins,
		OpenAPI:        spec,
		RBAC:           auth.NewRBACAuthorization(auth.NewPermissionChecker(), app.Logger),
		Logger:         app.Logger,
	})
	return router, nil
}

func startHTTPServer() error {
	cfg, lg, err := setup()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	app, err := newApp(cfg, lg)
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}
	app.StartNotifications()

	router, err := setupRoutes(app)
	if err != nil {
		_ = app.Close(context.Background())
		return err
	}

	var scheduler *leavebalance.ResetScheduler
	if withScheduler {
		scheduler = leavebalance.NewResetScheduler(app.Balances, cfg.Leave.ResetSchedule, cfg.Attendance.Location(), lg)
		if err := scheduler.Start(context.Background()); err != nil {
			_ = app.Close(context.Background())
			return fmt.Errorf("start leave reset scheduler: %w", err)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		lg.Info("starting HTTP server", "address", addr)
		serverErrChan <- server.ListenAndServe()
	}()

	var runErr error
	select {
	case sig := <-sigChan:
		lg.Info("received signal, shutting down", "signal", sig.String())
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Error("server failed", "error", err)
			runErr = err
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		lg.Error("server shutdown error", "error", err)
	}
	if scheduler != nil {
		scheduler.Stop()
	}
	if err := app.Close(ctx); err != nil {
		lg.Error("shutdown error", "error", err)
	}

	lg.Info("server stopped")
	return runErr
}
