package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_PORT", "")
	t.Setenv("DUPLICATE_RADIUS_METERS", "")
	t.Setenv("ESCALATION_INTERVAL_MINUTES", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
	assert.Equal(t, 150.0, cfg.Engine.DuplicateRadiusMeters)
	assert.Equal(t, 15*time.Minute, cfg.Escalation.Interval())
	assert.Equal(t, 72*time.Hour, cfg.Escalation.MaxOpenAge())
	assert.Equal(t, 30*24*time.Hour, cfg.Engine.DuplicateWindow())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("ESCALATION_GRACE_MINUTES", "90")
	t.Setenv("ESCALATION_ON_READ", "false")
	t.Setenv("RATE_LIMIT_COMPLAINTS_PER_DAY", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 90*time.Minute, cfg.Escalation.Grace())
	assert.False(t, cfg.Escalation.OnRead)
	assert.Equal(t, 20, cfg.RateLimit.ComplaintsPerDay)
}

func TestLoadRejectsBadRadius(t *testing.T) {
	t.Setenv("DUPLICATE_RADIUS_METERS", "wide")
	_, err := Load()
	assert.Error(t, err)
}
