package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/lifecycle"
	"github.com/spec-kit/complaint-service/internal/observability"
	"github.com/spec-kit/complaint-service/internal/repository"
	"github.com/spec-kit/complaint-service/internal/service"
)

var t0 = time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)

func seedService(t *testing.T, now *time.Time, n int) (*service.ComplaintService, *repository.MemoryComplaintRepository, []string) {
	t.Helper()
	repo := repository.NewMemoryComplaintRepository()
	svc := service.NewComplaintService(service.ComplaintDependencies{
		ComplaintRepo: repo,
		Clock:         func() time.Time { return *now },
	})
	reporter := lifecycle.Actor{ID: "11111111-1111-1111-1111-111111111111", Role: domain.RoleCitizen}
	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		c, err := svc.Create(context.Background(), reporter, service.CreateInput{
			Title:       "Streetlight out",
			Description: "Lamp post has been dark for a week",
			Category:    "streetlights",
			IsPublic:    true,
		})
		require.NoError(t, err)
		ids = append(ids, c.ID)
	}
	return svc, repo, ids
}

func countEscalations(t *testing.T, repo *repository.MemoryComplaintRepository, id string) int {
	t.Helper()
	entries, err := repo.Timeline(context.Background(), id)
	require.NoError(t, err)
	n := 0
	for _, e := range entries {
		if e.Action == domain.ActionEscalated {
			n++
		}
	}
	return n
}

func TestRunOnceEscalatesOverdueExactlyOnce(t *testing.T) {
	now := t0
	svc, repo, ids := seedService(t, &now, 5)
	monitor := NewEscalationMonitor(svc, time.Minute, 2, nil, observability.NewMetrics())

	report := monitor.RunOnce(context.Background())
	assert.Equal(t, 5, report.Scanned)
	assert.Zero(t, report.Escalated)

	// Streetlights at score 40 are low band: 72h x 1.25 = 90h.
	now = t0.Add(100 * time.Hour)
	report = monitor.RunOnce(context.Background())
	assert.Equal(t, 5, report.Scanned)
	assert.Equal(t, 5, report.Escalated)
	assert.Equal(t, 5, report.Refreshed)
	assert.Zero(t, report.Failed)

	report = monitor.RunOnce(context.Background())
	assert.Zero(t, report.Escalated)
	for _, id := range ids {
		assert.Equal(t, 1, countEscalations(t, repo, id))
		stored, err := repo.Get(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusSubmitted, stored.Status)
	}
}

type flakySweeper struct {
	complaints []domain.Complaint
	failID     string
	listErr    error
	visited    []string
}

func (f *flakySweeper) ListOpen(_ context.Context, limit, offset int) ([]domain.Complaint, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	if offset >= len(f.complaints) {
		return nil, nil
	}
	end := offset + limit
	if end > len(f.complaints) {
		end = len(f.complaints)
	}
	return f.complaints[offset:end], nil
}

func (f *flakySweeper) EscalateIfDue(_ context.Context, id, _ string) (service.SweepOutcome, error) {
	f.visited = append(f.visited, id)
	if id == f.failID {
		return service.SweepOutcome{}, errors.New("row locked too long")
	}
	return service.SweepOutcome{Escalated: true}, nil
}

func TestRunOnceContinuesPastFailures(t *testing.T) {
	sweeper := &flakySweeper{
		complaints: []domain.Complaint{{ID: "a"}, {ID: "b"}, {ID: "c"}},
		failID:     "b",
	}
	report := NewEscalationMonitor(sweeper, time.Minute, 10, nil, nil).RunOnce(context.Background())
	assert.Equal(t, []string{"a", "b", "c"}, sweeper.visited)
	assert.Equal(t, 3, report.Scanned)
	assert.Equal(t, 2, report.Escalated)
	assert.Equal(t, 1, report.Failed)
}

func TestRunOnceListFailure(t *testing.T) {
	sweeper := &flakySweeper{listErr: errors.New("db down")}
	report := NewEscalationMonitor(sweeper, time.Minute, 10, nil, nil).RunOnce(context.Background())
	assert.Zero(t, report.Scanned)
	assert.Equal(t, 1, report.Failed)
}

func TestRunStopsOnCancel(t *testing.T) {
	sweeper := &flakySweeper{}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		NewEscalationMonitor(sweeper, time.Hour, 10, nil, nil).Run(ctx)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("monitor did not stop")
	}
}

func TestOverlappingSweepsEscalateOnce(t *testing.T) {
	now := t0
	svc, repo, ids := seedService(t, &now, 3)
	monitor := NewEscalationMonitor(svc, time.Minute, 2, nil, observability.NewMetrics())
	now = t0.Add(100 * time.Hour)

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		total int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			report := monitor.RunOnce(context.Background())
			mu.Lock()
			total += report.Escalated
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, len(ids), total)
	for _, id := range ids {
		assert.Equal(t, 1, countEscalations(t, repo, id))
	}
}
