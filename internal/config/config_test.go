package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("COMPLAINT_SLA_HOURS", "")
	t.Setenv("ENABLE_EMAIL", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 48, cfg.Lifecycle.SLAHours)
	assert.Equal(t, 48*time.Hour, cfg.Lifecycle.SLA())
	assert.Equal(t, 20, cfg.Lifecycle.FilingPoints)
	assert.Equal(t, 5, cfg.Lifecycle.VotePoints)
	assert.False(t, cfg.Notification.EnableEmail)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("COMPLAINT_SLA_HOURS", "72")
	t.Setenv("ENABLE_SMS", "true")
	t.Setenv("CIVIC_POINTS_VOTE", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 72*time.Hour, cfg.Lifecycle.SLA())
	assert.True(t, cfg.Notification.EnableSMS)
	assert.Equal(t, 5, cfg.Lifecycle.VotePoints)
}

func TestLoadRejectsNonPositiveSLA(t *testing.T) {
	t.Setenv("COMPLAINT_SLA_HOURS", "0")

	_, err := Load()
	assert.Error(t, err)
}

func TestRequestTimeout(t *testing.T) {
	assert.Equal(t, time.Duration(0), AppConfig{}.RequestTimeout())
	assert.Equal(t, 5*time.Second, AppConfig{RequestTimeoutSeconds: 5}.RequestTimeout())
}
