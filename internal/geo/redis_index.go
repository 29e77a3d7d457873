package geo

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/complaint-service/internal/domain"
)

// RedisIndex keeps one GEO sorted set per category.
type RedisIndex struct {
	client *redis.Client
	prefix string
}

// NewRedisIndex builds an index over client using keys "<prefix>:<category>".
func NewRedisIndex(client *redis.Client, prefix string) *RedisIndex {
	if prefix == "" {
		prefix = "complaints:geo"
	}
	return &RedisIndex{client: client, prefix: prefix}
}

func (r *RedisIndex) key(category domain.Category) string {
	return r.prefix + ":" + string(category)
}

// Add stores the entry location.
func (r *RedisIndex) Add(ctx context.Context, entry Entry) error {
	if r.client == nil {
		return errors.New("redis client not configured")
	}
	return r.client.GeoAdd(ctx, r.key(entry.Category), &redis.GeoLocation{
		Name:      entry.ID,
		Longitude: entry.Point.Lng,
		Latitude:  entry.Point.Lat,
	}).Err()
}

// Remove deletes the entry from its category set.
func (r *RedisIndex) Remove(ctx context.Context, id string, category domain.Category) error {
	if r.client == nil {
		return errors.New("redis client not configured")
	}
	return r.client.ZRem(ctx, r.key(category), id).Err()
}

// Nearby runs GEOSEARCH BYRADIUS ASC WITHDIST.
func (r *RedisIndex) Nearby(ctx context.Context, category domain.Category, center Point, radiusMeters float64) ([]Hit, error) {
	if r.client == nil {
		return nil, errors.New("redis client not configured")
	}
	locations, err := r.client.GeoSearchLocation(ctx, r.key(category), &redis.GeoSearchLocationQuery{
		GeoSearchQuery: redis.GeoSearchQuery{
			Longitude:  center.Lng,
			Latitude:   center.Lat,
			Radius:     radiusMeters,
			RadiusUnit: "m",
			Sort:       "ASC",
		},
		WithDist: true,
	}).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	hits := make([]Hit, 0, len(locations))
	for _, loc := range locations {
		hits = append(hits, Hit{ID: loc.Name, DistanceMeters: loc.Dist})
	}
	return hits, nil
}
