package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/frahmantamala/hr-attendance/internal/leavebalance"
	"github.com/spf13/cobra"
)

var leaveCmd = &cobra.Command{
	Use:   "leave",
	Short: "Leave balance maintenance",
}

var resetYear int

var leaveResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset every approved employee's balances to the leave type defaults",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, lg, err := setup()
		if err != nil {
			return err
		}
		app, err := newApp(cfg, lg)
		if err != nil {
			return err
		}
		app.StartNotifications()

		year := resetYear
		if year == 0 {
			year = time.Now().In(cfg.Attendance.Location()).Year()
		}

		scheduler := leavebalance.NewResetScheduler(app.Balances, cfg.Leave.ResetSchedule, cfg.Attendance.Location(), lg)
		n, runErr := scheduler.RunOnce(context.Background(), year)
		if runErr == nil {
			fmt.Printf("reset %d leave balances for %d\n", n, year)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := app.Close(ctx); err != nil {
			lg.Error("shutdown error", "error", err)
		}
		return runErr
	},
}

func init() {
	leaveResetCmd.Flags().IntVar(&resetYear, "year", 0, "year to record on the ledger (defaults to the current year)")
	leaveCmd.AddCommand(leaveResetCmd)
	rootCmd.AddCommand(leaveCmd)
}
