package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/complaint-service/internal/domain"
)

var t0 = time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

func seed(t *testing.T, repo *MemoryComplaintRepository, status domain.Status, created time.Time) *domain.Complaint {
	t.Helper()
	c := &domain.Complaint{
		ReporterID:    "reporter",
		Title:         "Overflowing bin",
		Description:   "Bin near the market has not been emptied",
		Category:      domain.CategoryGarbage,
		Status:        status,
		PriorityScore: 40,
		IsPublic:      true,
		SLAHours:      48,
		SLADeadline:   created.Add(48 * time.Hour),
		CreatedAt:     created,
		UpdatedAt:     created,
	}
	require.NoError(t, repo.Create(context.Background(), c, []domain.TimelineEntry{{Action: domain.ActionSubmitted, CreatedAt: created}}))
	return c
}

func TestMemoryCreateAndGetAreIsolated(t *testing.T) {
	repo := NewMemoryComplaintRepository()
	c := seed(t, repo, domain.StatusSubmitted, t0)
	require.NotEmpty(t, c.ID)
	assert.EqualValues(t, 1, c.Version)

	got, err := repo.Get(context.Background(), c.ID)
	require.NoError(t, err)
	got.Title = "mutated"

	again, err := repo.Get(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Overflowing bin", again.Title)

	_, err = repo.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	entries, err := repo.Timeline(context.Background(), c.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, c.ID, entries[0].ComplaintID)
	assert.NotEmpty(t, entries[0].ID)
}

func TestMemoryUpdateWritesEntriesAndBumpsVersion(t *testing.T) {
	repo := NewMemoryComplaintRepository()
	c := seed(t, repo, domain.StatusSubmitted, t0)

	updated, err := repo.Update(context.Background(), c.ID, func(w *domain.Complaint) ([]domain.TimelineEntry, error) {
		w.Status = domain.StatusAssigned
		return []domain.TimelineEntry{{Action: domain.ActionAssigned}}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAssigned, updated.Status)
	assert.EqualValues(t, 2, updated.Version)

	entries, _ := repo.Timeline(context.Background(), c.ID)
	assert.Len(t, entries, 2)
}

func TestMemoryUpdateAbortsOnErrorAndNoChange(t *testing.T) {
	repo := NewMemoryComplaintRepository()
	c := seed(t, repo, domain.StatusSubmitted, t0)
	boom := errors.New("boom")

	_, err := repo.Update(context.Background(), c.ID, func(w *domain.Complaint) ([]domain.TimelineEntry, error) {
		w.Status = domain.StatusClosed
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)

	same, err := repo.Update(context.Background(), c.ID, func(w *domain.Complaint) ([]domain.TimelineEntry, error) {
		w.Title = "ignored"
		return nil, ErrNoChange
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, same.Version)

	stored, _ := repo.Get(context.Background(), c.ID)
	assert.Equal(t, domain.StatusSubmitted, stored.Status)
	assert.Equal(t, "Overflowing bin", stored.Title)

	_, err = repo.Update(context.Background(), "missing", func(*domain.Complaint) ([]domain.TimelineEntry, error) { return nil, nil })
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryUpdateSerializesWriters(t *testing.T) {
	repo := NewMemoryComplaintRepository()
	c := seed(t, repo, domain.StatusSubmitted, t0)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Update(context.Background(), c.ID, func(w *domain.Complaint) ([]domain.TimelineEntry, error) {
				w.PriorityScore++
				return nil, nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	stored, _ := repo.Get(context.Background(), c.ID)
	assert.Equal(t, 90, stored.PriorityScore)
	assert.EqualValues(t, 51, stored.Version)
}

func TestMemoryToggleVote(t *testing.T) {
	repo := NewMemoryComplaintRepository()
	c := seed(t, repo, domain.StatusSubmitted, t0)
	ctx := context.Background()

	calls := 0
	recount := func(w *domain.Complaint) error {
		calls++
		w.PriorityScore = 40 + w.Upvotes
		return nil
	}

	updated, voted, err := repo.ToggleVote(ctx, c.ID, "alice", recount)
	require.NoError(t, err)
	assert.True(t, voted)
	assert.Equal(t, 1, updated.Upvotes)
	assert.Equal(t, 41, updated.PriorityScore)

	has, _ := repo.HasVoted(ctx, c.ID, "alice")
	assert.True(t, has)

	updated, voted, err = repo.ToggleVote(ctx, c.ID, "alice", recount)
	require.NoError(t, err)
	assert.False(t, voted)
	assert.Equal(t, 0, updated.Upvotes)
	assert.Equal(t, 2, calls)

	has, _ = repo.HasVoted(ctx, c.ID, "alice")
	assert.False(t, has)

	_, _, err = repo.ToggleVote(ctx, "missing", "alice", nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryListFiltersAndPages(t *testing.T) {
	repo := NewMemoryComplaintRepository()
	ctx := context.Background()
	open := seed(t, repo, domain.StatusSubmitted, t0)
	progress := seed(t, repo, domain.StatusInProgress, t0.Add(time.Hour))
	seed(t, repo, domain.StatusResolved, t0.Add(2*time.Hour))
	seed(t, repo, domain.StatusClosed, t0.Add(3*time.Hour))

	all, err := repo.List(ctx, ComplaintFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 4)
	assert.True(t, all[0].CreatedAt.After(all[1].CreatedAt), "equal priority sorts newest first")

	filtered, err := repo.List(ctx, ComplaintFilter{Statuses: []domain.Status{domain.StatusSubmitted, domain.StatusInProgress}})
	require.NoError(t, err)
	assert.Len(t, filtered, 2)

	paged, err := repo.List(ctx, ComplaintFilter{Limit: 1, Offset: 3})
	require.NoError(t, err)
	assert.Len(t, paged, 1)

	none, err := repo.List(ctx, ComplaintFilter{Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, none)

	openOnly, err := repo.ListOpen(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, openOnly, 2)
	assert.Equal(t, open.ID, openOnly[0].ID)
	assert.Equal(t, progress.ID, openOnly[1].ID)

	term := "MARKET"
	found, _ := repo.List(ctx, ComplaintFilter{SearchTerm: &term})
	assert.Len(t, found, 4)
}

func TestMemoryUserRepository(t *testing.T) {
	repo := NewMemoryUserRepository()
	ctx := context.Background()

	u := &domain.User{Name: "Asha", Email: " Asha@Example.com ", Role: domain.RoleCitizen, Active: true}
	require.NoError(t, repo.Create(ctx, u))
	assert.Equal(t, "asha@example.com", u.Email)

	dup := &domain.User{Name: "Other", Email: "asha@example.com"}
	assert.ErrorIs(t, repo.Create(ctx, dup), ErrConflict)

	got, err := repo.GetByEmail(ctx, "ASHA@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	got.Role = domain.RoleOfficial
	require.NoError(t, repo.Update(ctx, got))
	byID, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleOfficial, byID.Role)

	_, err = repo.GetByID(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}
