package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/observability"
	"github.com/spec-kit/complaint-service/internal/service"
)

// Sweeper is the slice of ComplaintService the monitor drives.
type Sweeper interface {
	ListOpen(ctx context.Context, limit, offset int) ([]domain.Complaint, error)
	EscalateIfDue(ctx context.Context, id, trigger string) (service.SweepOutcome, error)
}

// TickReport summarizes one sweep.
type TickReport struct {
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
	Scanned   int           `json:"scanned"`
	Refreshed int           `json:"refreshed"`
	Escalated int           `json:"escalated"`
	Failed    int           `json:"failed"`
}

// EscalationMonitor periodically escalates overdue open complaints.
type EscalationMonitor struct {
	sweeper   Sweeper
	interval  time.Duration
	batchSize int
	logger    *zap.Logger
	metrics   *observability.Metrics
}

// NewEscalationMonitor builds a monitor.
func NewEscalationMonitor(sweeper Sweeper, interval time.Duration, batchSize int, logger *zap.Logger, metrics *observability.Metrics) *EscalationMonitor {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	if batchSize <= 0 {
		batchSize = 200
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EscalationMonitor{
		sweeper:   sweeper,
		interval:  interval,
		batchSize: batchSize,
		logger:    logger,
		metrics:   metrics,
	}
}

// Run sweeps immediately and then on every tick until ctx is cancelled.
func (m *EscalationMonitor) Run(ctx context.Context) {
	m.logger.Info("escalation monitor started", zap.Duration("interval", m.interval))
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		m.RunOnce(ctx)
		select {
		case <-ctx.Done():
			m.logger.Info("escalation monitor stopped")
			return
		case <-ticker.C:
		}
	}
}

// RunOnce pages through every open complaint. A failure on one complaint is
// logged and the sweep continues with the rest.
func (m *EscalationMonitor) RunOnce(ctx context.Context) TickReport {
	report := TickReport{StartedAt: time.Now().UTC()}

	// Escalation does not change status, so every open complaint stays in the
	// result set and plain offset paging is stable within a sweep.
	for offset := 0; ; offset += m.batchSize {
		if ctx.Err() != nil {
			break
		}
		batch, err := m.sweeper.ListOpen(ctx, m.batchSize, offset)
		if err != nil {
			m.logger.Error("escalation monitor: list open complaints", zap.Int("offset", offset), zap.Error(err))
			report.Failed++
			break
		}
		for i := range batch {
			report.Scanned++
			outcome, err := m.sweeper.EscalateIfDue(ctx, batch[i].ID, service.TriggerMonitor)
			if err != nil {
				report.Failed++
				m.logger.Warn("escalation monitor: complaint skipped", zap.String("complaint_id", batch[i].ID), zap.Error(err))
				continue
			}
			if outcome.Refreshed {
				report.Refreshed++
			}
			if outcome.Escalated {
				report.Escalated++
			}
		}
		if len(batch) < m.batchSize {
			break
		}
	}

	report.Duration = time.Since(report.StartedAt)
	m.metrics.RecordTick(report.Duration, report.Scanned, report.Escalated, report.Failed)
	m.logger.Info("escalation sweep finished",
		zap.Int("scanned", report.Scanned),
		zap.Int("refreshed", report.Refreshed),
		zap.Int("escalated", report.Escalated),
		zap.Int("failed", report.Failed),
		zap.Duration("duration", report.Duration))
	return report
}
