package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/hr-attendance/internal/leavebalance"
	"github.com/frahmantamala/hr-attendance/internal/notification"
	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start background workers",
	Long:  `Start the notification dispatcher or the leave balance reset scheduler outside the HTTP server.`,
}

var notificationWorkerCmd = &cobra.Command{
	Use:   "notifications",
	Short: "Start the notification dispatcher",
	Long:  `Start the mail/Slack worker pool and its event handlers. With --probe a test message is sent through every configured channel.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return startNotificationWorker()
	},
}

var leaveResetWorkerCmd = &cobra.Command{
	Use:   "leave-reset",
	Short: "Run the annual leave balance reset on its cron schedule",
	RunE: func(cmd *cobra.Command, args []string) error {
		return startLeaveResetWorker()
	},
}

var (
	maxWorkers   int
	jobQueueSize int
	probeTo      string
)

func getIntFlag(flagValue, configValue int) int {
	if flagValue > 0 {
		return flagValue
	}
	return configValue
}

func waitForSignal() os.Signal {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	return <-sigChan
}

func startNotificationWorker() error {
	cfg, lg, err := setup()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg.Notification.MaxWorkers = getIntFlag(maxWorkers, cfg.Notification.MaxWorkers)
	cfg.Notification.JobQueueSize = getIntFlag(jobQueueSize, cfg.Notification.JobQueueSize)

	app, err := newApp(cfg, lg)
	if err != nil {
		return err
	}
	app.StartNotifications()

	lg.Info("notification worker started",
		"max_workers", cfg.Notification.MaxWorkers,
		"job_queue_size", cfg.Notification.JobQueueSize,
		"mail_enabled", cfg.Mail.Enabled,
		"slack_enabled", cfg.Slack.Enabled)

	if probeTo != "" {
		err := app.Dispatcher.Enqueue(notification.Job{
			EventID: "probe",
			Mail:    &notification.Message{To: []string{probeTo}, Subject: "HR Attendance notification probe", Body: "Mail delivery is configured correctly."},
			Chat:    "HR Attendance notification probe",
		})
		if err != nil {
			lg.Error("failed to queue probe", "error", err)
		}
	}

	sig := waitForSignal()
	lg.Info("received signal, shutting down notification worker", "signal", sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return app.Close(ctx)
}

func startLeaveResetWorker() error {
	cfg, lg, err := setup()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	app, err := newApp(cfg, lg)
	if err != nil {
		return err
	}
	app.StartNotifications()

	scheduler := leavebalance.NewResetScheduler(app.Balances, cfg.Leave.ResetSchedule, cfg.Attendance.Location(), lg)
	if err := scheduler.Start(context.Background()); err != nil {
		_ = app.Close(context.Background())
		return fmt.Errorf("start leave reset scheduler: %w", err)
	}
	lg.Info("leave reset worker running", "next_run", scheduler.Next())

	sig := waitForSignal()
	lg.Info("received signal, shutting down leave reset worker", "signal", sig.String())

	scheduler.Stop()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return app.Close(ctx)
}

func init() {
	notificationWorkerCmd.Flags().IntVar(&maxWorkers, "max-workers", 0, "Maximum number of workers (overrides config)")
	notificationWorkerCmd.Flags().IntVar(&jobQueueSize, "job-queue-size", 0, "Job queue buffer size (overrides config)")
	notificationWorkerCmd.Flags().StringVar(&probeTo, "probe", "", "send a test notification to this address on startup")

	workerCmd.AddCommand(notificationWorkerCmd)
	workerCmd.AddCommand(leaveResetWorkerCmd)

	rootCmd.AddCommand(workerCmd)
}
