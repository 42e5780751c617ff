package cmd

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/frahmantamala/hr-attendance/internal/core/events"
	"github.com/frahmantamala/hr-attendance/internal/leave"
	"github.com/spf13/cobra"
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Event management commands",
	Long:  `Publish sample domain events through the notification pipeline, list known event types`,
}

var publishEventCmd = &cobra.Command{
	Use:   "publish [event-type]",
	Short: "Publish a sample event",
	Long:  `Publish a sample domain event to the event bus with the notification handlers attached, for testing mail and Slack settings`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return publishSampleEvent(args[0])
	},
}

var listEventCmd = &cobra.Command{
	Use:   "list",
	Short: "List event types handled by the notification pipeline",
	Run: func(cmd *cobra.Command, args []string) {
		for _, t := range knownEventTypes() {
			fmt.Println(t)
		}
	},
}

var (
	eventEmployeeID int64
	eventSubjectID  int64
	eventRemarks    string
)

func sampleEvent(ctx context.Context, eventType string) (events.Event, error) {
	now := time.Now().UTC()
	switch eventType {
	case events.EventTypeEmployeeRegistered:
		return events.NewEmployeeRegisteredEvent(ctx, eventEmployeeID, 0, "new.hire@example.com", "New Hire"), nil
	case events.EventTypeEmployeeReviewed:
		return events.NewEmployeeReviewedEvent(ctx, eventEmployeeID, 0, "approved", eventRemarks), nil
	case events.EventTypeLeaveSubmitted:
		return events.NewLeaveSubmittedEvent(ctx, eventSubjectID, eventEmployeeID, nil, leave.StatusManagerApproved, 8, now, now.Add(8*time.Hour)), nil
	case events.EventTypeLeaveReviewed:
		return events.NewLeaveReviewedEvent(ctx, eventSubjectID, eventEmployeeID, 0, leave.StageHR, leave.DecisionApproved, leave.StatusApproved, eventRemarks), nil
	case events.EventTypeLeaveCanceled:
		return events.NewLeaveCanceledEvent(ctx, eventSubjectID, eventEmployeeID, 8), nil
	case events.EventTypeLeaveCorrected:
		return events.NewLeaveCorrectedEvent(ctx, eventSubjectID, eventEmployeeID, 0, 8, 4), nil
	case events.EventTypePunchCorrectionReviewed:
		return events.NewPunchCorrectionReviewedEvent(ctx, eventSubjectID, eventEmployeeID, now.Truncate(24*time.Hour), "in", "approved", eventRemarks), nil
	case events.EventTypeLeaveBalancesReset:
		return events.NewLeaveBalancesResetEvent(ctx, now.Year(), 0), nil
	}
	return nil, fmt.Errorf("unknown event type %q, see `event list`", eventType)
}

func knownEventTypes() []string {
	types := []string{
		events.EventTypeEmployeeRegistered,
		events.EventTypeEmployeeReviewed,
		events.EventTypeLeaveSubmitted,
		events.EventTypeLeaveReviewed,
		events.EventTypeLeaveCanceled,
		events.EventTypeLeaveCorrected,
		events.EventTypePunchCorrectionReviewed,
		events.EventTypeLeaveBalancesReset,
	}
	sort.Strings(types)
	return types
}

func publishSampleEvent(eventType string) error {
	cfg, lg, err := setup()
	if err != nil {
		return err
	}
	app, err := newApp(cfg, lg)
	if err != nil {
		return err
	}
	app.StartNotifications()

	app.Bus.Subscribe(events.AllEvents, func(ctx context.Context, event events.Event) error {
		lg.Info("event observed",
			"event_id", event.EventID(),
			"event_type", event.EventType(),
			"payload", event.Payload())
		return nil
	})

	ctx := context.Background()
	ev, err := sampleEvent(ctx, eventType)
	if err != nil {
		_ = app.Close(ctx)
		return err
	}

	lg.Info("publishing sample event", "event_type", eventType, "event_id", ev.EventID())
	if err := app.Bus.PublishSync(ctx, ev); err != nil {
		lg.Error("failed to publish event", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	return app.Close(shutdownCtx)
}

func init() {
	publishEventCmd.Flags().Int64Var(&eventEmployeeID, "employee-id", 1, "employee the event is about")
	publishEventCmd.Flags().Int64Var(&eventSubjectID, "subject-id", 1, "leave or correction id")
	publishEventCmd.Flags().StringVar(&eventRemarks, "remarks", "sent from the CLI", "reviewer remarks")

	eventCmd.AddCommand(publishEventCmd)
	eventCmd.AddCommand(listEventCmd)

	rootCmd.AddCommand(eventCmd)
}
