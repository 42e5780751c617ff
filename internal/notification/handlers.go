package notification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/frahmantamala/hr-attendance/internal/auth"
	"github.com/frahmantamala/hr-attendance/internal/core/events"
	"github.com/frahmantamala/hr-attendance/internal/leave"
)

// Deliver sends both parts of a job. It is the dispatcher's ProcessFunc.
func Deliver(mailer Mailer, chat ChatNotifier) ProcessFunc {
	return func(ctx context.Context, job Job) error {
		var errs []error
		if job.Mail != nil {
			if err := mailer.Send(ctx, *job.Mail); err != nil {
				errs = append(errs, err)
			}
		}
		if job.Chat != "" {
			if err := chat.Post(ctx, job.Chat); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}
}

// EventHandler turns domain events into notification jobs.
type EventHandler struct {
	directory Directory
	queue     Enqueuer
	logger    *slog.Logger
}

func NewEventHandler(directory Directory, queue Enqueuer, logger *slog.Logger) *EventHandler {
	return &EventHandler{directory: directory, queue: queue, logger: logger}
}

func (h *EventHandler) enqueue(event events.Event, mail *Message, chat string) error {
	if mail != nil && len(mail.To) == 0 {
		mail = nil
	}
	if mail == nil && chat == "" {
		return nil
	}
	if err := h.queue.Enqueue(Job{EventID: event.EventID(), Mail: mail, Chat: chat}); err != nil {
		h.logger.Warn("notification not queued", "error", err, "event_type", event.EventType(), "event_id", event.EventID())
		return err
	}
	return nil
}

func (h *EventHandler) emailOf(ctx context.Context, employeeID int64) (string, string, error) {
	c, err := h.directory.Contact(ctx, employeeID)
	if err != nil {
		return "", "", err
	}
	if c == nil {
		return "", "", nil
	}
	return c.Email, c.Name, nil
}

func (h *EventHandler) emailsWith(ctx context.Context, permission string) ([]string, error) {
	contacts, err := h.directory.ContactsWithPermission(ctx, permission)
	if err != nil {
		return nil, err
	}
	to := make([]string, 0, len(contacts))
	for _, c := range contacts {
		if c.Email != "" {
			to = append(to, c.Email)
		}
	}
	return to, nil
}

func (h *EventHandler) HandleEmployeeRegistered(ctx context.Context, event events.Event) error {
	e, ok := event.(*events.EmployeeRegisteredEvent)
	if !ok {
		return fmt.Errorf("invalid event type: expected EmployeeRegisteredEvent")
	}
	h.logger.Info("handling employee registered", "employee_id", e.EmployeeID, "event_id", e.EventID())

	reviewers, err := h.emailsWith(ctx, auth.PermEmployeesReview)
	if err != nil {
		return err
	}
	return h.enqueue(event, &Message{
		To:      reviewers,
		Subject: "New employee registration awaiting review",
		Body:    fmt.Sprintf("%s <%s> registered and is waiting for approval.", e.Name, e.Email),
	}, fmt.Sprintf("New registration: %s (%s) is waiting for approval.", e.Name, e.Email))
}

func (h *EventHandler) HandleEmployeeReviewed(ctx context.Context, event events.Event) error {
	e, ok := event.(*events.EmployeeReviewedEvent)
	if !ok {
		return fmt.Errorf("invalid event type: expected EmployeeReviewedEvent")
	}
	email, name, err := h.emailOf(ctx, e.EmployeeID)
	if err != nil {
		return err
	}
	if email == "" {
		return nil
	}
	body := fmt.Sprintf("Hello %s,\n\nYour registration was %s.", name, e.Status)
	if e.Remarks != "" {
		body += "\n\nRemarks: " + e.Remarks
	}
	return h.enqueue(event, &Message{To: []string{email}, Subject: "Your registration was " + e.Status, Body: body}, "")
}

func (h *EventHandler) HandleLeaveSubmitted(ctx context.Context, event events.Event) error {
	e, ok := event.(*events.LeaveSubmittedEvent)
	if !ok {
		return fmt.Errorf("invalid event type: expected LeaveSubmittedEvent")
	}
	_, name, err := h.emailOf(ctx, e.EmployeeID)
	if err != nil {
		return err
	}

	var to []string
	if e.ManagerID != nil {
		managerEmail, _, err := h.emailOf(ctx, *e.ManagerID)
		if err != nil {
			return err
		}
		if managerEmail != "" {
			to = []string{managerEmail}
		}
	} else {
		// no manager: the request is already waiting on HR
		if to, err = h.emailsWith(ctx, auth.PermLeavesReviewHR); err != nil {
			return err
		}
	}

	period := fmt.Sprintf("%s to %s", e.StartAt.Format("2006-01-02 15:04"), e.EndAt.Format("2006-01-02 15:04"))
	return h.enqueue(event, &Message{
		To:      to,
		Subject: fmt.Sprintf("Leave request #%d from %s", e.LeaveID, name),
		Body:    fmt.Sprintf("%s requested %.1f hours of leave, %s (UTC).", name, e.Hours, period),
	}, fmt.Sprintf("Leave request #%d from %s: %.1fh, %s", e.LeaveID, name, e.Hours, period))
}

func (h *EventHandler) HandleLeaveReviewed(ctx context.Context, event events.Event) error {
	e, ok := event.(*events.LeaveReviewedEvent)
	if !ok {
		return fmt.Errorf("invalid event type: expected LeaveReviewedEvent")
	}
	email, name, err := h.emailOf(ctx, e.EmployeeID)
	if err != nil {
		return err
	}

	body := fmt.Sprintf("Hello %s,\n\nYour leave request #%d was %s at the %s stage. Current status: %s.",
		name, e.LeaveID, e.Decision, e.Stage, e.Status)
	if e.Remarks != "" {
		body += "\n\nRemarks: " + e.Remarks
	}
	var to []string
	if email != "" {
		to = []string{email}
	}
	if err := h.enqueue(event, &Message{To: to, Subject: fmt.Sprintf("Leave request #%d %s", e.LeaveID, e.Decision), Body: body}, ""); err != nil {
		return err
	}

	if e.Status != leave.StatusManagerApproved {
		return nil
	}
	hr, err := h.emailsWith(ctx, auth.PermLeavesReviewHR)
	if err != nil {
		return err
	}
	return h.enqueue(event, &Message{
		To:      hr,
		Subject: fmt.Sprintf("Leave request #%d awaiting HR review", e.LeaveID),
		Body:    fmt.Sprintf("The manager approved leave request #%d from %s.", e.LeaveID, name),
	}, "")
}

func (h *EventHandler) HandleLeaveCanceled(ctx context.Context, event events.Event) error {
	e, ok := event.(*events.LeaveCanceledEvent)
	if !ok {
		return fmt.Errorf("invalid event type: expected LeaveCanceledEvent")
	}
	_, name, err := h.emailOf(ctx, e.EmployeeID)
	if err != nil {
		return err
	}
	return h.enqueue(event, nil, fmt.Sprintf("%s canceled leave request #%d (%.1fh returned).", name, e.LeaveID, e.CreditedHours))
}

func (h *EventHandler) HandleLeaveCorrected(ctx context.Context, event events.Event) error {
	e, ok := event.(*events.LeaveCorrectedEvent)
	if !ok {
		return fmt.Errorf("invalid event type: expected LeaveCorrectedEvent")
	}
	email, name, err := h.emailOf(ctx, e.EmployeeID)
	if err != nil || email == "" {
		return err
	}
	return h.enqueue(event, &Message{
		To:      []string{email},
		Subject: fmt.Sprintf("Leave request #%d was corrected", e.LeaveID),
		Body:    fmt.Sprintf("Hello %s,\n\nHR corrected leave request #%d from %.1f to %.1f hours.", name, e.LeaveID, e.OldHours, e.NewHours),
	}, "")
}

func (h *EventHandler) HandlePunchCorrectionReviewed(ctx context.Context, event events.Event) error {
	e, ok := event.(*events.PunchCorrectionReviewedEvent)
	if !ok {
		return fmt.Errorf("invalid event type: expected PunchCorrectionReviewedEvent")
	}
	email, name, err := h.emailOf(ctx, e.EmployeeID)
	if err != nil || email == "" {
		return err
	}
	body := fmt.Sprintf("Hello %s,\n\nYour punch-%s correction for %s was %s.", name, e.PunchType, e.WorkDate.Format("2006-01-02"), e.Status)
	if e.Remarks != "" {
		body += "\n\nRemarks: " + e.Remarks
	}
	return h.enqueue(event, &Message{To: []string{email}, Subject: "Punch correction " + e.Status, Body: body}, "")
}

func (h *EventHandler) HandlePasswordReset(ctx context.Context, event events.Event) error {
	e, ok := event.(*events.PasswordResetEvent)
	if !ok {
		return fmt.Errorf("invalid event type: expected PasswordResetEvent")
	}
	if e.Email == "" {
		return nil
	}
	return h.enqueue(event, &Message{
		To:      []string{e.Email},
		Subject: "Your password was reset",
		Body: strings.Join([]string{
			fmt.Sprintf("Hello %s,", e.Name),
			"",
			"An administrator reset your password. Your temporary password is:",
			"",
			"    " + e.TemporaryPassword,
			"",
			"Sign in and change it right away.",
		}, "\n"),
	}, "")
}

func (h *EventHandler) HandleLeaveBalancesReset(ctx context.Context, event events.Event) error {
	e, ok := event.(*events.LeaveBalancesResetEvent)
	if !ok {
		return fmt.Errorf("invalid event type: expected LeaveBalancesResetEvent")
	}
	return h.enqueue(event, nil, fmt.Sprintf("Leave balances reset for %d: %d balances updated.", e.Year, e.Balances))
}

func (h *EventHandler) RegisterEventHandlers(bus *events.EventBus) {
	bus.Subscribe(events.EventTypeEmployeeRegistered, h.HandleEmployeeRegistered)
	bus.Subscribe(events.EventTypeEmployeeReviewed, h.HandleEmployeeReviewed)
	bus.Subscribe(events.EventTypeLeaveSubmitted, h.HandleLeaveSubmitted)
	bus.Subscribe(events.EventTypeLeaveReviewed, h.HandleLeaveReviewed)
	bus.Subscribe(events.EventTypeLeaveCanceled, h.HandleLeaveCanceled)
	bus.Subscribe(events.EventTypeLeaveCorrected, h.HandleLeaveCorrected)
	bus.Subscribe(events.EventTypePunchCorrectionReviewed, h.HandlePunchCorrectionReviewed)
	bus.Subscribe(events.EventTypePasswordReset, h.HandlePasswordReset)
	bus.Subscribe(events.EventTypeLeaveBalancesReset, h.HandleLeaveBalancesReset)

	h.logger.Info("notification event handlers registered",
		"handlers", []string{
			events.EventTypeEmployeeRegistered,
			events.EventTypeEmployeeReviewed,
			events.EventTypeLeaveSubmitted,
			events.EventTypeLeaveReviewed,
			events.EventTypeLeaveCanceled,
			events.EventTypeLeaveCorrected,
			events.EventTypePunchCorrectionReviewed,
			events.EventTypePasswordReset,
			events.EventTypeLeaveBalancesReset,
		})
}
