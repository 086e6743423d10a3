package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "math-conjecturer/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// AIConfig holds settings for talking to the chat-completion endpoint.
type AIConfig struct {
	// Model is the model identifier (e.g. "google/gemini-2.5-flash-lite").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// BaseURL is the chat-completions endpoint. Defaults to OpenRouter.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`

	// MaxRetries is the number of retry attempts per coercion stage (default 2).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// PapersConfig holds the on-disk layout for per-paper artifacts.
type PapersConfig struct {
	// Dir is the base directory for papers (contains one directory per arXiv id).
	Dir string `json:"dir" yaml:"dir"`
}

// Phase1Config holds settings for the paper-processing pipeline.
type Phase1Config struct {
	// MaxRevisions caps the summary critique/revision loop (default 3).
	MaxRevisions int `json:"max_revisions" yaml:"max_revisions"`
}

// Phase2Config holds settings for the open-problem formulation pipeline.
type Phase2Config struct {
	// MaxIterations caps the brainstorm/critique loop per proposal (default 5).
	MaxIterations int `json:"max_iterations" yaml:"max_iterations"`

	// Directions is the number of agenda directions to develop into
	// independent proposals (default 1).
	Directions int `json:"directions" yaml:"directions"`
}

// StoreConfig holds settings for the run index.
type StoreConfig struct {
	// Dir is the directory containing the SQLite run index (default "index").
	Dir string `json:"dir" yaml:"dir"`
}

// ServeConfig holds settings for the HTTP API server.
type ServeConfig struct {
	// Addr is the listen address (default "localhost:8350").
	Addr string `json:"addr" yaml:"addr"`

	// CORSOrigins lists allowed origins for browser clients.
	CORSOrigins []string `json:"cors_origins" yaml:"cors_origins"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	HTTP   HTTPConfig   `json:"http" yaml:"http"`
	AI     AIConfig     `json:"ai" yaml:"ai"`
	Papers PapersConfig `json:"papers" yaml:"papers"`
	Phase1 Phase1Config `json:"phase1" yaml:"phase1"`
	Phase2 Phase2Config `json:"phase2" yaml:"phase2"`
	Store  StoreConfig  `json:"store" yaml:"store"`
	Serve  ServeConfig  `json:"serve" yaml:"serve"`
}

// DefaultConfig returns a PipelineConfig with all defaults filled in.
func DefaultConfig() PipelineConfig {
	return PipelineConfig{
		HTTP: HTTPConfig{
			Timeout:   180 * time.Second,
			UserAgent: "math-conjecturer/0.1",
		},
		AI: AIConfig{
			Model:      "google/gemini-2.5-flash-lite",
			MaxRetries: 2,
		},
		Papers: PapersConfig{Dir: "papers"},
		Phase1: Phase1Config{MaxRevisions: 3},
		Phase2: Phase2Config{MaxIterations: 5, Directions: 1},
		Store:  StoreConfig{Dir: "index"},
		Serve: ServeConfig{
			Addr:        "localhost:8350",
			CORSOrigins: []string{"http://localhost:5173"},
		},
	}
}
