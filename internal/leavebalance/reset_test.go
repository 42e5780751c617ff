package leavebalance_test

import (
	"context"
	"errors"
	"time"

	"github.com/frahmantamala/hr-attendance/internal"
	"github.com/frahmantamala/hr-attendance/internal/leavebalance"
	"github.com/frahmantamala/hr-attendance/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type fakeResetter struct {
	years    []int
	traceIDs []string
	err      error
}

func (f *fakeResetter) ResetAnnual(ctx context.Context, year int) (int, error) {
	f.years = append(f.years, year)
	f.traceIDs = append(f.traceIDs, internal.TraceIDFromContext(ctx))
	return 5, f.err
}

var _ = Describe("ResetScheduler", func() {
	var (
		resetter *fakeResetter
		jakarta  *time.Location
	)

	BeforeEach(func() {
		resetter = &fakeResetter{}
		var err error
		jakarta, err = time.LoadLocation("Asia/Jakarta")
		Expect(err).NotTo(HaveOccurred())
	})

	It("runs a reset with a fresh trace id", func() {
		s := leavebalance.NewResetScheduler(resetter, "0 0 1 1 *", jakarta, logger.Discard())
		n, err := s.RunOnce(context.Background(), 2026)
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(5))
		Expect(resetter.years).To(Equal([]int{2026}))
		Expect(resetter.traceIDs[0]).NotTo(BeEmpty())
	})

	It("returns the resetter error", func() {
		resetter.err = errors.New("boom")
		s := leavebalance.NewResetScheduler(resetter, "0 0 1 1 *", jakarta, logger.Discard())
		_, err := s.RunOnce(context.Background(), 2026)
		Expect(err).To(MatchError("boom"))
	})

	It("schedules the next run on January 1st in the configured timezone", func() {
		s := leavebalance.NewResetScheduler(resetter, "0 0 1 1 *", jakarta, logger.Discard())
		Expect(s.Start(context.Background())).To(Succeed())
		defer s.Stop()

		next := s.Next().In(jakarta)
		Expect(next.Month()).To(Equal(time.January))
		Expect(next.Day()).To(Equal(1))
		Expect(next.Hour()).To(BeZero())
	})

	It("rejects an invalid schedule", func() {
		s := leavebalance.NewResetScheduler(resetter, "not a schedule", jakarta, logger.Discard())
		Expect(s.Start(context.Background())).NotTo(Succeed())
	})
})
