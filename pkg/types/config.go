package types

import "time"

// EngineConfig holds settings for the resolution engine.
type EngineConfig struct {
	// MaxDepth bounds the proof-tree depth of any goal (default 100).
	MaxDepth int `json:"max_depth" yaml:"max_depth" mapstructure:"max_depth"`

	// StepLimit bounds the resolution steps of one query. Zero means no limit.
	StepLimit int `json:"step_limit" yaml:"step_limit" mapstructure:"step_limit"`

	// Distinct drops answers whose bindings repeat an earlier answer.
	Distinct bool `json:"distinct" yaml:"distinct" mapstructure:"distinct"`

	// MaxAnswers caps the answers printed per query. Zero means all.
	MaxAnswers int `json:"max_answers" yaml:"max_answers" mapstructure:"max_answers"`
}

// StoreConfig holds settings for the SQLite clause store.
type StoreConfig struct {
	// Dir is the directory holding the database (default ".fol-reasoner").
	Dir string `json:"dir" yaml:"dir" mapstructure:"dir"`

	// CacheSize is the number of built knowledge bases kept in memory (default 16).
	CacheSize int `json:"cache_size" yaml:"cache_size" mapstructure:"cache_size"`
}

// LoggingConfig holds settings for the structured logger.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error (default info).
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// JSON selects JSON output instead of the console encoder.
	JSON bool `json:"json" yaml:"json" mapstructure:"json"`
}

// FetchConfig holds HTTP settings for loading remote knowledge bases.
type FetchConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// MaxRetries is the number of retries on throttled responses (default 5).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`

	// UserAgent is the User-Agent header sent with requests
	// (e.g. "fol-reasoner/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// Config groups the settings read from fol-reasoner.yaml.
type Config struct {
	Engine  EngineConfig  `json:"engine" yaml:"engine" mapstructure:"engine"`
	Store   StoreConfig   `json:"store" yaml:"store" mapstructure:"store"`
	Logging LoggingConfig `json:"logging" yaml:"logging" mapstructure:"logging"`
	Fetch   FetchConfig   `json:"fetch" yaml:"fetch" mapstructure:"fetch"`
}

// DefaultConfig returns the settings used when no config file is present.
func DefaultConfig() Config {
	return Config{
		Engine: EngineConfig{MaxDepth: 100},
		Store:  StoreConfig{Dir: ".fol-reasoner", CacheSize: 16},
		Logging: LoggingConfig{
			Level: "info",
		},
		Fetch: FetchConfig{
			Timeout:    30 * time.Second,
			MaxRetries: 5,
			UserAgent:  "fol-reasoner/0.1",
		},
	}
}
