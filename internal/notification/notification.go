package notification

import (
	"context"

	"github.com/frahmantamala/hr-attendance/internal"
	"github.com/frahmantamala/hr-attendance/internal/employee"
)

// Message is a plain-text email.
type Message struct {
	To      []string
	Subject string
	Body    string
}

// Job is one unit of delivery work. Either part may be empty.
type Job struct {
	EventID string
	Mail    *Message
	Chat    string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

type ChatNotifier interface {
	Post(ctx context.Context, text string) error
}

// Directory resolves who should hear about an event.
type Directory interface {
	Contact(ctx context.Context, employeeID int64) (*employee.Contact, error)
	ContactsWithPermission(ctx context.Context, permission string) ([]employee.Contact, error)
}

type Enqueuer interface {
	Enqueue(job Job) error
}

var (
	ErrQueueFull        = internal.NewConflictError("notification queue is full", internal.ErrCodeNotificationQueueFull)
	ErrDispatcherClosed = internal.NewConflictError("notification dispatcher is shut down", internal.ErrCodeNotificationClosed)
)
