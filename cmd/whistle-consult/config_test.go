// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/whistle-consult/internal/secrets"
	"github.com/pdiddy/whistle-consult/pkg/types"
)

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("WHISTLE_CONSULT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := loadConfig(newViper(), nil)
	require.NoError(t, err)
	assert.Equal(t, types.DefaultConfig(), cfg)
}

func TestLoadConfig_YAMLFile(t *testing.T) {
	v := newViper()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(`
server:
  addr: ":9000"
  allowed_origins: ["https://example.github.io"]
  request_timeout: 30s
gemini:
  model: gemini-2.5-pro
  timeout: 15s
  max_retries: 4
knowledge:
  chat_top_k: 2
log:
  format: json
`)))

	cfg, err := loadConfig(v, nil)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, []string{"https://example.github.io"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 30*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, "gemini-2.5-pro", cfg.Gemini.Model)
	assert.Equal(t, 15*time.Second, cfg.Gemini.Timeout)
	assert.Equal(t, 4, cfg.Gemini.MaxRetries)
	assert.Equal(t, 2, cfg.Knowledge.ChatTopK)
	assert.Equal(t, 5, cfg.Knowledge.ReportTopK)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadConfig_APIKeyPrecedence(t *testing.T) {
	secretValues := map[string]string{secrets.GeminiAPIKey: "from-file"}

	t.Run("secrets file", func(t *testing.T) {
		cfg, err := loadConfig(newViper(), secretValues)
		require.NoError(t, err)
		assert.Equal(t, "from-file", cfg.Gemini.APIKey)
	})

	t.Run("conventional env", func(t *testing.T) {
		t.Setenv("GEMINI_API_KEY", "from-env")
		t.Setenv("GEMINI_MODEL", "gemini-env-model")
		cfg, err := loadConfig(newViper(), secretValues)
		require.NoError(t, err)
		assert.Equal(t, "from-env", cfg.Gemini.APIKey)
		assert.Equal(t, "gemini-env-model", cfg.Gemini.Model)
	})

	t.Run("prefixed env wins", func(t *testing.T) {
		t.Setenv("GEMINI_API_KEY", "from-env")
		t.Setenv("WHISTLE_CONSULT_GEMINI_API_KEY", "from-prefixed")
		cfg, err := loadConfig(newViper(), secretValues)
		require.NoError(t, err)
		assert.Equal(t, "from-prefixed", cfg.Gemini.APIKey)
	})
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("WHISTLE_CONSULT_SERVER_ADDR", ":7000")
	t.Setenv("WHISTLE_CONSULT_KNOWLEDGE_REPORT_TOP_K", "8")

	cfg, err := loadConfig(newViper(), nil)
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Server.Addr)
	assert.Equal(t, 8, cfg.Knowledge.ReportTopK)
}

func TestLoadConfig_RejectsNegativeTopK(t *testing.T) {
	v := newViper()
	v.Set("knowledge.chat_top_k", -1)

	_, err := loadConfig(v, nil)
	assert.ErrorContains(t, err, "top-k")
}
