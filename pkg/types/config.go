package types

import "time"

// HTTPConfig holds shared HTTP settings used by capability adapters.
type HTTPConfig struct {
	// Timeout bounds a single capability call.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "pathway-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// SearchConfig holds settings for the retrieval stage and its search adapter.
type SearchConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// SearchDepth is passed to Tavily ("basic" or "advanced").
	SearchDepth string `json:"search_depth" yaml:"search_depth" mapstructure:"search_depth"`

	// MaxRetries is the number of 429/503 retries per query (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`
}

// AIConfig holds shared settings for stages that call a generative model.
type AIConfig struct {
	// Model is the model identifier (e.g. "gemini-2.5-flash").
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// Timeout bounds a single generation call.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// MaxRetries is the number of retries the adapter makes on transient
	// failures (default 2).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`
}

// GenerationConfig holds settings for the structured generation stage.
type GenerationConfig struct {
	AIConfig `yaml:",inline" mapstructure:",squash"`
}

// EnhancementConfig holds settings for the explanation enhancement stage.
type EnhancementConfig struct {
	AIConfig `yaml:",inline" mapstructure:",squash"`

	// Disabled skips enhancement and keeps the generated explanations.
	Disabled bool `json:"disabled" yaml:"disabled" mapstructure:"disabled"`
}

// ServerConfig holds settings for the HTTP API.
type ServerConfig struct {
	// Addr is the listen address (e.g. ":8080").
	Addr string `json:"addr" yaml:"addr" mapstructure:"addr"`

	// AllowedOrigins lists the CORS origins permitted to call the API.
	AllowedOrigins []string `json:"allowed_origins" yaml:"allowed_origins" mapstructure:"allowed_origins"`

	// Environment is reported by /api/health ("production" or "development").
	Environment string `json:"environment" yaml:"environment" mapstructure:"environment"`
}

// PipelineConfig groups all stage configurations for the pipeline.
type PipelineConfig struct {
	Search      SearchConfig      `json:"search" yaml:"search" mapstructure:"search"`
	Generation  GenerationConfig  `json:"generation" yaml:"generation" mapstructure:"generation"`
	Enhancement EnhancementConfig `json:"enhancement" yaml:"enhancement" mapstructure:"enhancement"`
	Server      ServerConfig      `json:"server" yaml:"server" mapstructure:"server"`
}

// Defaults used when configuration leaves a field empty.
const (
	DefaultModel         = "gemini-2.5-flash"
	DefaultUserAgent     = "pathway-engine/0.1"
	DefaultSearchTimeout = 30 * time.Second
	DefaultAITimeout     = 3 * time.Minute
	DefaultAddr          = ":8080"
)

// DefaultPipelineConfig returns the configuration used when no config file
// or flags override it.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Search: SearchConfig{
			HTTPConfig: HTTPConfig{
				Timeout:   DefaultSearchTimeout,
				UserAgent: DefaultUserAgent,
			},
			SearchDepth: "basic",
			MaxRetries:  3,
		},
		Generation: GenerationConfig{
			AIConfig: AIConfig{Model: DefaultModel, Timeout: DefaultAITimeout, MaxRetries: 2},
		},
		Enhancement: EnhancementConfig{
			AIConfig: AIConfig{Model: DefaultModel, Timeout: DefaultAITimeout, MaxRetries: 2},
		},
		Server: ServerConfig{
			Addr: DefaultAddr,
			AllowedOrigins: []string{
				"http://localhost:3000",
				"http://localhost:5173",
				"http://localhost:5174",
				"http://localhost:4173",
			},
			Environment: "development",
		},
	}
}
