package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/M4kuro/budget-cloud-solution/internal/core/port"
)

// ReportScheduler runs periodic inventory report generation.
type ReportScheduler struct {
	generator port.ReportGenerator
	interval  time.Duration
	done      chan struct{}
}

func NewReportScheduler(
	generator port.ReportGenerator, interval time.Duration,
) *ReportScheduler {
	if generator == nil {
		panic("nil generator: develop mistake")
	}
	if interval <= 0 {
		panic("non-positive interval: develop mistake")
	}
	return &ReportScheduler{
		generator: generator,
		interval:  interval,
		done:      make(chan struct{}),
	}
}

func (s *ReportScheduler) Run(ctx context.Context) {
	const op = "ReportScheduler.Run"
	log := slog.With("op", op)

	defer close(s.done)

	if err := ctx.Err(); err != nil {
		return
	}

	log.Info("scheduler is running", "interval", s.interval.String())

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.generate(ctx)
		}
	}
}

func (s *ReportScheduler) generate(ctx context.Context) {
	const op = "ReportScheduler.generate"
	log := slog.With("op", op)

	stats, err := s.generator.GenerateReport(ctx)
	if err != nil {
		log.Error("failed to generate report", "err", err)
		return
	}
	log.Info("report is generated",
		"scanned", stats.Scanned,
		"skipped", stats.Skipped,
		"lowStock", stats.LowStock,
		"reportKey", stats.ReportKey,
	)
}

func (s *ReportScheduler) Close() {
	const op = "ReportScheduler.Close"
	log := slog.With("op", op)

	log.Info("closing scheduler...")
	<-s.done
	log.Info("scheduler is closed")
}
