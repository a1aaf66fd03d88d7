package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "postgres", cfg.StoreDriver)
	assert.Equal(t, 35.0, cfg.FaithWeight)
	assert.Equal(t, 30.0, cfg.ValuesWeight)
	assert.Equal(t, 25.0, cfg.IntentionWeight)
	assert.Equal(t, 10.0, cfg.LifestyleWeight)
	assert.Equal(t, 2.0, cfg.ReputationMultiplier)
	assert.Equal(t, 10, cfg.FeedDefaultPageSize)
	assert.Equal(t, 50, cfg.FeedMaxPageSize)
	assert.Equal(t, 30*time.Minute, cfg.BoostDuration)
	assert.Equal(t, 1, cfg.ReputationAward)
	assert.True(t, cfg.IsDevelopment())
	require.NoError(t, cfg.Validate())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("FEED_MAX_PAGE_SIZE", "25")
	t.Setenv("BOOST_DURATION", "1h")
	t.Setenv("NOTIFY_TIMEOUT", "not-a-duration")
	t.Setenv("ENABLE_JOBS", "false")
	t.Setenv("WS_ALLOWED_ORIGINS", "https://covenant.app, ,https://admin.covenant.app")

	cfg := Load()
	assert.Equal(t, "memory", cfg.StoreDriver)
	assert.Equal(t, 25, cfg.FeedMaxPageSize)
	assert.Equal(t, time.Hour, cfg.BoostDuration)
	assert.Equal(t, 5*time.Second, cfg.NotifyTimeout)
	assert.False(t, cfg.EnableJobs)
	assert.Equal(t, []string{"https://covenant.app", "https://admin.covenant.app"}, cfg.WSAllowedOrigins)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "default secret in production",
			env:     map[string]string{"ENVIRONMENT": "production"},
			wantErr: "JWT secret",
		},
		{
			name:    "memory store in production",
			env:     map[string]string{"ENVIRONMENT": "production", "JWT_SECRET": "s3cr3t", "STORE_DRIVER": "memory"},
			wantErr: "memory store",
		},
		{
			name:    "unknown driver",
			env:     map[string]string{"STORE_DRIVER": "mongo"},
			wantErr: "invalid store driver",
		},
		{
			name:    "weights do not sum to 100",
			env:     map[string]string{"SCORE_FAITH_WEIGHT": "50"},
			wantErr: "sum to 100",
		},
		{
			name: "rebalanced weights",
			env: map[string]string{
				"SCORE_FAITH_WEIGHT":     "40",
				"SCORE_VALUES_WEIGHT":    "30",
				"SCORE_INTENTION_WEIGHT": "20",
				"SCORE_LIFESTYLE_WEIGHT": "10",
			},
		},
		{
			name:    "page size above cap",
			env:     map[string]string{"FEED_DEFAULT_PAGE_SIZE": "60"},
			wantErr: "page size",
		},
		{
			name:    "push without credentials",
			env:     map[string]string{"ENABLE_PUSH_NOTIFICATIONS": "true"},
			wantErr: "firebase",
		},
		{
			name:    "sms without twilio",
			env:     map[string]string{"ENABLE_SMS_NOTIFICATIONS": "true"},
			wantErr: "Twilio",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			err := Load().Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
