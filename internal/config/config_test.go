package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/prompt-chat/backend/internal/service/webhook"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("WEBHOOK_URL", "")
	t.Setenv("WEBHOOK_TIMEOUT", "")

	cfg, err := Load(NewViper())
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, webhook.DefaultURL, cfg.Webhook.URL)
	assert.Zero(t, cfg.Webhook.Timeout)
	assert.Equal(t, "auto", cfg.Log.Format)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "127.0.0.1:9090")
	t.Setenv("WEBHOOK_URL", "http://localhost:5678/webhook/chat")
	t.Setenv("WEBHOOK_TIMEOUT", "45s")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test")

	cfg, err := Load(NewViper())
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9090", cfg.Server.Addr)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "http://localhost:5678/webhook/chat", cfg.Webhook.URL)
	assert.Equal(t, 45*time.Second, cfg.Webhook.Timeout)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	testCases := []struct {
		name    string
		key     string
		value   string
		wantErr string
	}{
		{name: "port with space", key: "PORT", value: "80 80", wantErr: "invalid PORT"},
		{name: "webhook scheme", key: "WEBHOOK_URL", value: "ftp://example.com", wantErr: "invalid WEBHOOK_URL"},
		{name: "timeout", key: "WEBHOOK_TIMEOUT", value: "soon", wantErr: "invalid WEBHOOK_TIMEOUT"},
		{name: "negative timeout", key: "WEBHOOK_TIMEOUT", value: "-1s", wantErr: "must not be negative"},
		{name: "log format", key: "LOG_FORMAT", value: "xml", wantErr: "invalid LOG_FORMAT"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			_, err := Load(NewViper())
			require.Error(t, err)
			assert.ErrorContains(t, err, tc.wantErr)
		})
	}
}
