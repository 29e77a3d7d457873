package geo

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/spec-kit/complaint-service/internal/domain"
)

// Entry is an indexed complaint location.
type Entry struct {
	ID       string
	Category domain.Category
	Point    Point
}

// Hit is a proximity search result.
type Hit struct {
	ID             string
	DistanceMeters float64
}

// Index stores complaint locations keyed by category.
type Index interface {
	Add(ctx context.Context, entry Entry) error
	Remove(ctx context.Context, id string, category domain.Category) error
	// Nearby returns hits within radius, closest first.
	Nearby(ctx context.Context, category domain.Category, center Point, radiusMeters float64) ([]Hit, error)
}

// cellDegrees sizes grid cells at roughly 1.1km of latitude.
const cellDegrees = 0.01

type cellKey struct {
	category domain.Category
	row      int
	col      int
}

// MemoryIndex is a grid-bucketed in-process Index.
type MemoryIndex struct {
	mu      sync.RWMutex
	cells   map[cellKey]map[string]Point
	entries map[string]Entry
}

// NewMemoryIndex creates an empty index.
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{
		cells:   make(map[cellKey]map[string]Point),
		entries: make(map[string]Entry),
	}
}

func keyFor(category domain.Category, p Point) cellKey {
	return cellKey{
		category: category,
		row:      int(math.Floor(p.Lat / cellDegrees)),
		col:      int(math.Floor(p.Lng / cellDegrees)),
	}
}

// Add indexes or re-indexes an entry.
func (m *MemoryIndex) Add(_ context.Context, entry Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removeLocked(entry.ID)
	key := keyFor(entry.Category, entry.Point)
	bucket, ok := m.cells[key]
	if !ok {
		bucket = make(map[string]Point)
		m.cells[key] = bucket
	}
	bucket[entry.ID] = entry.Point
	m.entries[entry.ID] = entry
	return nil
}

// Remove drops an entry; unknown ids are ignored.
func (m *MemoryIndex) Remove(_ context.Context, id string, _ domain.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removeLocked(id)
	return nil
}

func (m *MemoryIndex) removeLocked(id string) {
	existing, ok := m.entries[id]
	if !ok {
		return
	}
	key := keyFor(existing.Category, existing.Point)
	if bucket, ok := m.cells[key]; ok {
		delete(bucket, id)
		if len(bucket) == 0 {
			delete(m.cells, key)
		}
	}
	delete(m.entries, id)
}

// Nearby scans the cells overlapping the search circle.
func (m *MemoryIndex) Nearby(_ context.Context, category domain.Category, center Point, radiusMeters float64) ([]Hit, error) {
	north := Offset(center, radiusMeters, 0)
	east := Offset(center, 0, radiusMeters)
	spanRows := int(math.Ceil((north.Lat-center.Lat)/cellDegrees)) + 1
	spanCols := int(math.Ceil((east.Lng-center.Lng)/cellDegrees)) + 1
	origin := keyFor(category, center)

	m.mu.RLock()
	defer m.mu.RUnlock()

	var hits []Hit
	for r := origin.row - spanRows; r <= origin.row+spanRows; r++ {
		for c := origin.col - spanCols; c <= origin.col+spanCols; c++ {
			bucket := m.cells[cellKey{category: category, row: r, col: c}]
			for id, p := range bucket {
				if d := Distance(center, p); d <= radiusMeters {
					hits = append(hits, Hit{ID: id, DistanceMeters: d})
				}
			}
		}
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].DistanceMeters == hits[j].DistanceMeters {
			return hits[i].ID < hits[j].ID
		}
		return hits[i].DistanceMeters < hits[j].DistanceMeters
	})
	return hits, nil
}

// Len reports the number of indexed entries.
func (m *MemoryIndex) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
