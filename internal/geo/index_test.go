package geo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/complaint-service/internal/domain"
)

var center = Point{Lat: 12.9716, Lng: 77.5946}

func TestDistance(t *testing.T) {
	assert.InDelta(t, 0, Distance(center, center), 1e-9)

	north := Offset(center, 80, 0)
	assert.InDelta(t, 80, Distance(center, north), 0.5)

	east := Offset(center, 0, 500)
	assert.InDelta(t, 500, Distance(center, east), 1)

	// one degree of latitude is ~111.2km
	assert.InDelta(t, 111195, Distance(Point{0, 0}, Point{1, 0}), 100)
}

func TestPointValid(t *testing.T) {
	assert.True(t, center.Valid())
	assert.False(t, Point{Lat: 91}.Valid())
	assert.False(t, Point{Lng: -181}.Valid())
}

func TestMemoryIndexNearby(t *testing.T) {
	ctx := context.Background()
	idx := NewMemoryIndex()

	require.NoError(t, idx.Add(ctx, Entry{ID: "near", Category: domain.CategoryWater, Point: Offset(center, 80, 0)}))
	require.NoError(t, idx.Add(ctx, Entry{ID: "nearer", Category: domain.CategoryWater, Point: Offset(center, 0, 30)}))
	require.NoError(t, idx.Add(ctx, Entry{ID: "far", Category: domain.CategoryWater, Point: Offset(center, 500, 0)}))
	require.NoError(t, idx.Add(ctx, Entry{ID: "other-cat", Category: domain.CategoryRoad, Point: Offset(center, 10, 0)}))

	hits, err := idx.Nearby(ctx, domain.CategoryWater, center, 150)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "nearer", hits[0].ID)
	assert.Equal(t, "near", hits[1].ID)
	assert.InDelta(t, 80, hits[1].DistanceMeters, 0.5)
}

func TestMemoryIndexAcrossCellBoundary(t *testing.T) {
	ctx := context.Background()
	idx := NewMemoryIndex()
	edge := Point{Lat: 12.99999, Lng: 77.59999}
	require.NoError(t, idx.Add(ctx, Entry{ID: "a", Category: domain.CategoryGarbage, Point: Offset(edge, 50, 50)}))

	hits, err := idx.Nearby(ctx, domain.CategoryGarbage, edge, 150)
	require.NoError(t, err)
	require.Len(t, hits, 1)
}

func TestMemoryIndexRemoveAndReAdd(t *testing.T) {
	ctx := context.Background()
	idx := NewMemoryIndex()
	require.NoError(t, idx.Add(ctx, Entry{ID: "a", Category: domain.CategoryRoad, Point: center}))
	require.NoError(t, idx.Add(ctx, Entry{ID: "a", Category: domain.CategoryRoad, Point: Offset(center, 1000, 0)}))
	assert.Equal(t, 1, idx.Len())

	hits, err := idx.Nearby(ctx, domain.CategoryRoad, center, 150)
	require.NoError(t, err)
	assert.Empty(t, hits)

	require.NoError(t, idx.Remove(ctx, "a", domain.CategoryRoad))
	require.NoError(t, idx.Remove(ctx, "missing", domain.CategoryRoad))
	assert.Equal(t, 0, idx.Len())
}
