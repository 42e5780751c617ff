package notification_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/frahmantamala/hr-attendance/internal"
	"github.com/frahmantamala/hr-attendance/internal/notification"
	"github.com/frahmantamala/hr-attendance/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type collector struct {
	mu   sync.Mutex
	jobs []notification.Job
}

func (c *collector) process(_ context.Context, job notification.Job) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.jobs = append(c.jobs, job)
	return nil
}

func (c *collector) ids() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids := make([]string, 0, len(c.jobs))
	for _, j := range c.jobs {
		ids = append(ids, j.EventID)
	}
	return ids
}

var _ = Describe("Dispatcher", func() {
	var sink *collector

	BeforeEach(func() {
		sink = &collector{}
	})

	It("delivers every queued job before shutdown returns", func() {
		d := notification.NewDispatcher(notification.Config{MaxWorkers: 2, JobQueueSize: 10}, sink.process, logger.Discard())
		d.Start()

		for _, id := range []string{"a", "b", "c"} {
			Expect(d.Enqueue(notification.Job{EventID: id, Chat: "hi"})).To(Succeed())
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		Expect(d.Shutdown(ctx)).To(Succeed())
		Expect(sink.ids()).To(ConsistOf("a", "b", "c"))
	})

	It("hands each job a context carrying a logger and a deadline", func() {
		var (
			mu          sync.Mutex
			hasLogger   bool
			hasDeadline bool
		)
		process := func(ctx context.Context, _ notification.Job) error {
			mu.Lock()
			defer mu.Unlock()
			_, hasLogger = logger.Lookup(ctx)
			_, hasDeadline = ctx.Deadline()
			return nil
		}
		d := notification.NewDispatcher(notification.Config{MaxWorkers: 1, JobQueueSize: 1}, process, logger.Discard())
		d.Start()
		Expect(d.Enqueue(notification.Job{EventID: "scoped"})).To(Succeed())
		Expect(d.Shutdown(context.Background())).To(Succeed())

		mu.Lock()
		defer mu.Unlock()
		Expect(hasLogger).To(BeTrue())
		Expect(hasDeadline).To(BeTrue())
	})

	It("reports a full queue without blocking", func() {
		d := notification.NewDispatcher(notification.Config{MaxWorkers: 1, JobQueueSize: 1}, sink.process, logger.Discard())

		Expect(d.Enqueue(notification.Job{EventID: "first"})).To(Succeed())
		err := d.Enqueue(notification.Job{EventID: "second"})
		Expect(err).To(MatchError(notification.ErrQueueFull))

		var appErr *internal.AppError
		Expect(errors.As(err, &appErr)).To(BeTrue())
		Expect(appErr.Code).To(Equal(internal.ErrCodeNotificationQueueFull))

		Expect(d.Shutdown(context.Background())).To(Succeed())
		Expect(sink.ids()).To(ConsistOf("first"))
	})

	It("refuses jobs after shutdown", func() {
		d := notification.NewDispatcher(notification.Config{}, sink.process, logger.Discard())
		d.Start()
		Expect(d.Shutdown(context.Background())).To(Succeed())

		Expect(d.Enqueue(notification.Job{EventID: "late"})).To(MatchError(notification.ErrDispatcherClosed))
	})

	It("keeps working after a delivery error", func() {
		var mu sync.Mutex
		seen := 0
		failing := func(_ context.Context, job notification.Job) error {
			mu.Lock()
			defer mu.Unlock()
			seen++
			return errors.New("smtp down")
		}
		d := notification.NewDispatcher(notification.Config{MaxWorkers: 1, JobQueueSize: 4}, failing, logger.Discard())
		d.Start()
		Expect(d.Enqueue(notification.Job{EventID: "x"})).To(Succeed())
		Expect(d.Enqueue(notification.Job{EventID: "y"})).To(Succeed())
		Expect(d.Shutdown(context.Background())).To(Succeed())

		mu.Lock()
		defer mu.Unlock()
		Expect(seen).To(Equal(2))
	})
})
