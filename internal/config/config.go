package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/rohankatakam/dppgraph/internal/graph"
	"github.com/rohankatakam/dppgraph/internal/llm"
)

// Config holds all configuration settings
type Config struct {
	// Graph store connection
	Neo4j Neo4jConfig `yaml:"neo4j" mapstructure:"neo4j"`

	// HTTP API
	Server ServerConfig `yaml:"server" mapstructure:"server"`

	// LLM used by the natural-language assistant
	LLM LLMConfig `yaml:"llm" mapstructure:"llm"`

	// EPD database importer
	EC3 EC3Config `yaml:"ec3" mapstructure:"ec3"`

	Log LogConfig `yaml:"log" mapstructure:"log"`
}

type Neo4jConfig struct {
	URI         string `yaml:"uri" mapstructure:"uri"`
	User        string `yaml:"user" mapstructure:"user"`
	Password    string `yaml:"password" mapstructure:"password"`
	Database    string `yaml:"database" mapstructure:"database"`
	MaxPoolSize int    `yaml:"max_pool_size" mapstructure:"max_pool_size"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr" mapstructure:"addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`
}

type LLMConfig struct {
	Provider    string `yaml:"provider" mapstructure:"provider"` // "openai", "gemini", "none"
	OpenAIKey   string `yaml:"openai_key" mapstructure:"openai_key"`
	OpenAIModel string `yaml:"openai_model" mapstructure:"openai_model"`
	GeminiKey   string `yaml:"gemini_key" mapstructure:"gemini_key"`
	GeminiModel string `yaml:"gemini_model" mapstructure:"gemini_model"`

	// Calls per minute from this process; 0 disables client-side throttling
	RequestsPerMinute int `yaml:"requests_per_minute" mapstructure:"requests_per_minute"`
}

type EC3Config struct {
	APIKey    string        `yaml:"api_key" mapstructure:"api_key"`
	BaseURL   string        `yaml:"base_url" mapstructure:"base_url"`
	RateLimit float64       `yaml:"rate_limit" mapstructure:"rate_limit"` // Requests per second
	CachePath string        `yaml:"cache_path" mapstructure:"cache_path"`
	CacheTTL  time.Duration `yaml:"cache_ttl" mapstructure:"cache_ttl"`
}

type LogConfig struct {
	Level string `yaml:"level" mapstructure:"level"`
	File  string `yaml:"file" mapstructure:"file"`
}

// Default returns default configuration
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	return &Config{
		Neo4j: Neo4jConfig{
			Database:    "neo4j",
			MaxPoolSize: 50,
		},
		Server: ServerConfig{
			Addr:            ":3000",
			ShutdownTimeout: 10 * time.Second,
		},
		LLM: LLMConfig{
			Provider:          "openai",
			OpenAIModel:       "gpt-4o-mini",
			GeminiModel:       "gemini-2.0-flash",
			RequestsPerMinute: 60,
		},
		EC3: EC3Config{
			BaseURL:   "https://buildingtransparency.org/api",
			RateLimit: 5,
			CachePath: filepath.Join(homeDir, ".dpp", "ec3-cache.db"),
			CacheTTL:  24 * time.Hour,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from file, .env files and the environment
func Load(path string) (*Config, error) {
	loadEnvFiles()

	v := viper.New()
	v.SetConfigType("yaml")

	cfg := Default()
	v.SetDefault("neo4j", cfg.Neo4j)
	v.SetDefault("server", cfg.Server)
	v.SetDefault("llm", cfg.LLM)
	v.SetDefault("ec3", cfg.EC3)
	v.SetDefault("log", cfg.Log)

	v.SetEnvPrefix("DPP")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".dpp")
		v.AddConfigPath(".")
		homeDir, _ := os.UserHomeDir()
		v.AddConfigPath(filepath.Join(homeDir, ".dpp"))
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(cfg *Config) {
	if uri := os.Getenv("NEO4J_URI"); uri != "" {
		cfg.Neo4j.URI = uri
	}
	if user := os.Getenv("NEO4J_USER"); user != "" {
		cfg.Neo4j.User = user
	}
	if password := os.Getenv("NEO4J_PASSWORD"); password != "" {
		cfg.Neo4j.Password = password
	}
	if db := os.Getenv("NEO4J_DATABASE"); db != "" {
		cfg.Neo4j.Database = db
	}
	cfg.Neo4j.MaxPoolSize = GetInt("NEO4J_MAX_POOL_SIZE", cfg.Neo4j.MaxPoolSize)

	cfg.Server.Addr = GetString("HTTP_ADDR", cfg.Server.Addr)

	if provider := os.Getenv("LLM_PROVIDER"); provider != "" {
		cfg.LLM.Provider = provider
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		cfg.LLM.OpenAIKey = key
	}
	if model := os.Getenv("OPENAI_MODEL"); model != "" {
		cfg.LLM.OpenAIModel = model
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		cfg.LLM.GeminiKey = key
	}
	if model := os.Getenv("GEMINI_MODEL"); model != "" {
		cfg.LLM.GeminiModel = model
	}

	cfg.LLM.RequestsPerMinute = GetInt("LLM_REQUESTS_PER_MINUTE", cfg.LLM.RequestsPerMinute)

	if key := os.Getenv("EC3_API_KEY"); key != "" {
		cfg.EC3.APIKey = key
	}
	if url := os.Getenv("EC3_BASE_URL"); url != "" {
		cfg.EC3.BaseURL = url
	}
	if path := os.Getenv("EC3_CACHE_PATH"); path != "" {
		cfg.EC3.CachePath = expandPath(path)
	}
	cfg.EC3.RateLimit = GetFloat("EC3_RATE_LIMIT", cfg.EC3.RateLimit)

	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if file := os.Getenv("LOG_FILE"); file != "" {
		cfg.Log.File = expandPath(file)
	}
}

// GraphSettings converts the Neo4j section into driver settings
func (c *Config) GraphSettings() graph.Settings {
	return graph.Settings{
		URI:         c.Neo4j.URI,
		User:        c.Neo4j.User,
		Password:    c.Neo4j.Password,
		Database:    c.Neo4j.Database,
		MaxPoolSize: c.Neo4j.MaxPoolSize,
	}
}

// LLMSettings converts the LLM section into client settings
func (c *Config) LLMSettings() llm.Settings {
	return llm.Settings{
		Provider:          c.LLM.Provider,
		OpenAIKey:         c.LLM.OpenAIKey,
		OpenAIModel:       c.LLM.OpenAIModel,
		GeminiKey:         c.LLM.GeminiKey,
		GeminiModel:       c.LLM.GeminiModel,
		RequestsPerMinute: c.LLM.RequestsPerMinute,
	}
}

// expandPath expands ~ to home directory
func expandPath(path string) string {
	if path == "" {
		return path
	}
	if path[0] == '~' {
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, path[1:])
	}
	return path
}
