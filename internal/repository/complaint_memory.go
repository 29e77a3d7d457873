package repository

import (
	"context"
	"errors"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/complaint-service/internal/domain"
)

// MemoryComplaintRepository keeps complaints in process. It is used when no
// Postgres DSN is configured and in tests.
type MemoryComplaintRepository struct {
	mu         sync.RWMutex
	complaints map[string]*domain.Complaint
	timeline   map[string][]domain.TimelineEntry
	votes      map[string]map[string]time.Time
	locks      map[string]*sync.Mutex
}

// NewMemoryComplaintRepository returns an empty store.
func NewMemoryComplaintRepository() *MemoryComplaintRepository {
	return &MemoryComplaintRepository{
		complaints: make(map[string]*domain.Complaint),
		timeline:   make(map[string][]domain.TimelineEntry),
		votes:      make(map[string]map[string]time.Time),
		locks:      make(map[string]*sync.Mutex),
	}
}

var _ ComplaintRepository = (*MemoryComplaintRepository)(nil)

func (r *MemoryComplaintRepository) Create(_ context.Context, complaint *domain.Complaint, entries []domain.TimelineEntry) error {
	if complaint.ID == "" {
		complaint.ID = uuid.NewString()
	}
	if complaint.Version == 0 {
		complaint.Version = 1
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.complaints[complaint.ID]; exists {
		return ErrConflict
	}
	r.complaints[complaint.ID] = complaint.Clone()
	r.locks[complaint.ID] = &sync.Mutex{}
	r.appendTimelineLocked(complaint.ID, entries)
	return nil
}

func (r *MemoryComplaintRepository) Get(_ context.Context, id string) (*domain.Complaint, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stored, ok := r.complaints[id]
	if !ok {
		return nil, ErrNotFound
	}
	return stored.Clone(), nil
}

func (r *MemoryComplaintRepository) GetMany(_ context.Context, ids []string) ([]domain.Complaint, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.Complaint
	for _, id := range ids {
		if stored, ok := r.complaints[id]; ok {
			out = append(out, *stored.Clone())
		}
	}
	return out, nil
}

func (r *MemoryComplaintRepository) List(_ context.Context, filter ComplaintFilter) ([]domain.Complaint, error) {
	r.mu.RLock()
	var out []domain.Complaint
	for _, stored := range r.complaints {
		if matches(stored, filter) {
			out = append(out, *stored.Clone())
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].PriorityScore != out[j].PriorityScore {
			return out[i].PriorityScore > out[j].PriorityScore
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return page(out, filter.Limit, filter.Offset), nil
}

func (r *MemoryComplaintRepository) ListOpen(_ context.Context, limit, offset int) ([]domain.Complaint, error) {
	r.mu.RLock()
	var out []domain.Complaint
	for _, stored := range r.complaints {
		if stored.Status.IsOpen() {
			out = append(out, *stored.Clone())
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return page(out, limit, offset), nil
}

func (r *MemoryComplaintRepository) Update(_ context.Context, id string, fn MutateFunc) (*domain.Complaint, error) {
	lock, err := r.lockFor(id)
	if err != nil {
		return nil, err
	}
	lock.Lock()
	defer lock.Unlock()

	r.mu.RLock()
	working := r.complaints[id].Clone()
	r.mu.RUnlock()

	entries, err := fn(working)
	if errors.Is(err, ErrNoChange) {
		return working, nil
	}
	if err != nil {
		return nil, err
	}

	working.Version++
	r.mu.Lock()
	r.complaints[id] = working.Clone()
	r.appendTimelineLocked(id, entries)
	r.mu.Unlock()
	return working, nil
}

func (r *MemoryComplaintRepository) Timeline(_ context.Context, complaintID string) ([]domain.TimelineEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]domain.TimelineEntry(nil), r.timeline[complaintID]...), nil
}

func (r *MemoryComplaintRepository) ToggleVote(_ context.Context, complaintID, voterID string, fn VoteFunc) (*domain.Complaint, bool, error) {
	lock, err := r.lockFor(complaintID)
	if err != nil {
		return nil, false, err
	}
	lock.Lock()
	defer lock.Unlock()

	r.mu.RLock()
	working := r.complaints[complaintID].Clone()
	_, already := r.votes[complaintID][voterID]
	r.mu.RUnlock()

	voted := !already
	if voted {
		working.Upvotes++
	} else if working.Upvotes > 0 {
		working.Upvotes--
	}
	if fn != nil {
		if err := fn(working); err != nil {
			return nil, false, err
		}
	}
	working.Version++

	r.mu.Lock()
	if voted {
		if r.votes[complaintID] == nil {
			r.votes[complaintID] = make(map[string]time.Time)
		}
		r.votes[complaintID][voterID] = time.Now().UTC()
	} else {
		delete(r.votes[complaintID], voterID)
	}
	r.complaints[complaintID] = working.Clone()
	r.mu.Unlock()
	return working, voted, nil
}

func (r *MemoryComplaintRepository) HasVoted(_ context.Context, complaintID, voterID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.votes[complaintID][voterID]
	return ok, nil
}

func (r *MemoryComplaintRepository) lockFor(id string) (*sync.Mutex, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	lock, ok := r.locks[id]
	if !ok {
		return nil, ErrNotFound
	}
	return lock, nil
}

func (r *MemoryComplaintRepository) appendTimelineLocked(complaintID string, entries []domain.TimelineEntry) {
	for _, entry := range entries {
		if entry.ID == "" {
			entry.ID = uuid.NewString()
		}
		entry.ComplaintID = complaintID
		r.timeline[complaintID] = append(r.timeline[complaintID], entry)
	}
}

func matches(c *domain.Complaint, filter ComplaintFilter) bool {
	if filter.ReporterID != nil && c.ReporterID != *filter.ReporterID {
		return false
	}
	if len(filter.Statuses) > 0 && !slices.Contains(filter.Statuses, c.Status) {
		return false
	}
	if len(filter.Categories) > 0 && !slices.Contains(filter.Categories, c.Category) {
		return false
	}
	if filter.Escalated != nil && c.IsEscalated != *filter.Escalated {
		return false
	}
	if filter.PublicOnly && !c.IsPublic {
		return false
	}
	if filter.CreatedFrom != nil && c.CreatedAt.Before(*filter.CreatedFrom) {
		return false
	}
	if filter.CreatedTo != nil && c.CreatedAt.After(*filter.CreatedTo) {
		return false
	}
	if filter.SearchTerm != nil {
		term := strings.ToLower(strings.TrimSpace(*filter.SearchTerm))
		if term != "" && !strings.Contains(strings.ToLower(c.Title), term) &&
			!strings.Contains(strings.ToLower(c.Description), term) {
			return false
		}
	}
	return true
}

func page(items []domain.Complaint, limit, offset int) []domain.Complaint {
	if offset > 0 {
		if offset >= len(items) {
			return nil
		}
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
