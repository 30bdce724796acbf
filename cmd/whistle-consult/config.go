// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/pdiddy/whistle-consult/internal/secrets"
	"github.com/pdiddy/whistle-consult/pkg/types"
)

// setDefaults registers every config key so environment variables bind even
// when no config file mentions them.
func setDefaults(v *viper.Viper) {
	d := types.DefaultConfig()

	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.allowed_origins", d.Server.AllowedOrigins)
	v.SetDefault("server.request_timeout", d.Server.RequestTimeout)
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)
	v.SetDefault("server.max_body_bytes", d.Server.MaxBodyBytes)

	v.SetDefault("gemini.timeout", d.Gemini.Timeout)
	v.SetDefault("gemini.user_agent", d.Gemini.UserAgent)
	v.SetDefault("gemini.model", d.Gemini.Model)
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.base_url", d.Gemini.BaseURL)
	v.SetDefault("gemini.max_retries", d.Gemini.MaxRetries)
	v.SetDefault("gemini.retry_base_delay", d.Gemini.RetryBaseDelay)
	v.SetDefault("gemini.requests_per_minute", d.Gemini.RequestsPerMinute)

	v.SetDefault("knowledge.corpus_file", d.Knowledge.CorpusFile)
	v.SetDefault("knowledge.chat_top_k", d.Knowledge.ChatTopK)
	v.SetDefault("knowledge.report_top_k", d.Knowledge.ReportTopK)
	v.SetDefault("knowledge.max_body_runes", d.Knowledge.MaxBodyRunes)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("log.file", d.Log.File)

	// The conventional GEMINI_* variables are honoured after the prefixed ones.
	v.BindEnv("gemini.api_key", "WHISTLE_CONSULT_GEMINI_API_KEY", "GEMINI_API_KEY")
	v.BindEnv("gemini.model", "WHISTLE_CONSULT_GEMINI_MODEL", "GEMINI_MODEL")
}

// loadConfig decodes the effective configuration. An API key from config or
// environment wins over one from the secrets directory.
func loadConfig(v *viper.Viper, secretValues map[string]string) (types.Config, error) {
	setDefaults(v)

	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if cfg.Gemini.APIKey == "" {
		cfg.Gemini.APIKey = secretValues[secrets.GeminiAPIKey]
	}
	if cfg.Knowledge.ChatTopK < 0 || cfg.Knowledge.ReportTopK < 0 {
		return types.Config{}, fmt.Errorf("knowledge top-k values must not be negative")
	}
	return cfg, nil
}
