// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared settings for outbound HTTP calls.
type HTTPConfig struct {
	// Timeout bounds a single upstream request.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent upstream (e.g. "whistle-consult/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// AIConfig holds settings for the text-generation backend.
type AIConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Model is the Gemini model identifier (e.g. "gemini-2.5-flash").
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// APIKey authenticates against the Gemini API. Never logged.
	APIKey string `json:"-" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// BaseURL is the API root, without a trailing slash.
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// MaxRetries is the number of retries on HTTP 429 (default 2).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`

	// RetryBaseDelay is the first backoff interval; it doubles per attempt.
	RetryBaseDelay time.Duration `json:"retry_base_delay" yaml:"retry_base_delay" mapstructure:"retry_base_delay"`

	// RequestsPerMinute throttles upstream calls process-wide. Zero disables it.
	RequestsPerMinute int `json:"requests_per_minute" yaml:"requests_per_minute" mapstructure:"requests_per_minute"`
}

// KnowledgeBaseConfig holds retrieval settings.
type KnowledgeBaseConfig struct {
	// CorpusFile overrides the embedded corpus with a YAML file of the same
	// schema. Empty uses the embedded corpus.
	CorpusFile string `json:"corpus_file" yaml:"corpus_file" mapstructure:"corpus_file"`

	// ChatTopK bounds context documents for chat turns (default 3).
	ChatTopK int `json:"chat_top_k" yaml:"chat_top_k" mapstructure:"chat_top_k"`

	// ReportTopK bounds context documents for report drafting (default 5).
	ReportTopK int `json:"report_top_k" yaml:"report_top_k" mapstructure:"report_top_k"`

	// MaxBodyRunes truncates each rendered body. Zero keeps bodies whole.
	MaxBodyRunes int `json:"max_body_runes" yaml:"max_body_runes" mapstructure:"max_body_runes"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	// Addr is the listen address (default ":8000").
	Addr string `json:"addr" yaml:"addr" mapstructure:"addr"`

	// AllowedOrigins lists CORS origins (default ["*"]).
	AllowedOrigins []string `json:"allowed_origins" yaml:"allowed_origins" mapstructure:"allowed_origins"`

	// RequestTimeout bounds a whole API request including the upstream call.
	RequestTimeout time.Duration `json:"request_timeout" yaml:"request_timeout" mapstructure:"request_timeout"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`

	// MaxBodyBytes caps request body size.
	MaxBodyBytes int64 `json:"max_body_bytes" yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
}

// LogConfig selects logger verbosity and encoding.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Format is console or json.
	Format string `json:"format" yaml:"format" mapstructure:"format"`

	// File, when set, also writes JSON logs to this path with size-based
	// rotation.
	File string `json:"file,omitempty" yaml:"file,omitempty" mapstructure:"file"`
}

// Config groups all settings for the service.
type Config struct {
	Server    ServerConfig        `json:"server" yaml:"server" mapstructure:"server"`
	Gemini    AIConfig            `json:"gemini" yaml:"gemini" mapstructure:"gemini"`
	Knowledge KnowledgeBaseConfig `json:"knowledge" yaml:"knowledge" mapstructure:"knowledge"`
	Log       LogConfig           `json:"log" yaml:"log" mapstructure:"log"`
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8000",
			AllowedOrigins:  []string{"*"},
			RequestTimeout:  90 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			MaxBodyBytes:    1 << 20,
		},
		Gemini: AIConfig{
			HTTPConfig: HTTPConfig{
				Timeout:   60 * time.Second,
				UserAgent: "whistle-consult/0.1",
			},
			Model:             "gemini-2.5-flash",
			BaseURL:           "https://generativelanguage.googleapis.com/v1beta",
			MaxRetries:        2,
			RetryBaseDelay:    2 * time.Second,
			RequestsPerMinute: 60,
		},
		Knowledge: KnowledgeBaseConfig{
			ChatTopK:   3,
			ReportTopK: 5,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
