// internal/common/config/config.go
package config

// Config is the main application configuration struct.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Database DatabaseConfig `mapstructure:"database"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Analysis AnalysisConfig `mapstructure:"analysis"`
	Chunking ChunkingConfig `mapstructure:"chunking"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type DatabaseConfig struct {
	Redis RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// LLMConfig holds settings for the external completion service.
type LLMConfig struct {
	BaseURL     string  `mapstructure:"base_url"`
	APIKey      string  `mapstructure:"api_key"`
	Timeout     int     `mapstructure:"timeout"` // milliseconds
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float64 `mapstructure:"temperature"`
	MaxRetries  int     `mapstructure:"max_retries"`
}

// AnalysisConfig holds tender-level orchestration settings.
type AnalysisConfig struct {
	MaxConcurrentDocuments int `mapstructure:"max_concurrent_documents"`
	WindowSize             int `mapstructure:"window_size"`
	WindowOverlap          int `mapstructure:"window_overlap"`
	CacheTTLHours          int `mapstructure:"cache_ttl_hours"`
}

// ChunkingConfig holds per-strategy chunker settings.
type ChunkingConfig struct {
	FixedSize       int `mapstructure:"fixed_size"`
	FixedOverlap    int `mapstructure:"fixed_overlap"`
	SemanticMaxSize int `mapstructure:"semantic_max_size"`
	StructuralMax   int `mapstructure:"structural_max_section_size"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
