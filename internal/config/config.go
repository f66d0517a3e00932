package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/outreach-cli/internal/model"
)

// Config holds the full application configuration.
type Config struct {
	Anthropic AnthropicConfig     `yaml:"anthropic" mapstructure:"anthropic"`
	Apollo    ApolloConfig        `yaml:"apollo" mapstructure:"apollo"`
	Seller    model.SellerContext `yaml:"seller" mapstructure:"seller"`
	Pipeline  PipelineConfig      `yaml:"pipeline" mapstructure:"pipeline"`
	Store     StoreConfig         `yaml:"store" mapstructure:"store"`
	Server    ServerConfig        `yaml:"server" mapstructure:"server"`
	Log       LogConfig           `yaml:"log" mapstructure:"log"`
}

// AnthropicConfig holds the completion collaborator settings. The key is
// required: without it the pipeline cannot run at all.
type AnthropicConfig struct {
	Key       string `yaml:"key" mapstructure:"key"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int64  `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// ApolloConfig holds the lead provider settings. The key is optional by
// design: without it the pipeline serves the bundled sample set.
type ApolloConfig struct {
	Key       string  `yaml:"key" mapstructure:"key"`
	BaseURL   string  `yaml:"base_url" mapstructure:"base_url"`
	RateLimit float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// PipelineConfig configures lead sourcing and generation behavior.
type PipelineConfig struct {
	MaxLeads       int  `yaml:"max_leads" mapstructure:"max_leads"`
	SearchResults  int  `yaml:"search_results" mapstructure:"search_results"`
	ResearchBriefs bool `yaml:"research_briefs" mapstructure:"research_briefs"`
}

// StoreConfig configures the run-log database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("OUTREACH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults. Keys default to empty so AutomaticEnv can see them.
	v.SetDefault("anthropic.key", "")
	v.SetDefault("apollo.key", "")
	v.SetDefault("anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.max_tokens", 1024)
	v.SetDefault("apollo.base_url", "https://api.apollo.io/api/v1")
	v.SetDefault("apollo.rate_limit", 5.0)
	v.SetDefault("pipeline.max_leads", 5)
	v.SetDefault("pipeline.search_results", 10)
	v.SetDefault("pipeline.research_briefs", false)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "outreach.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks that required settings are present. The Apollo key is
// deliberately not required; its absence selects the sample fallback source.
func (c *Config) Validate() error {
	if c.Anthropic.Key == "" {
		return eris.New("config: anthropic key is not set (OUTREACH_ANTHROPIC_KEY)")
	}
	return nil
}

// SellerContext resolves the configured seller profile, falling back to the
// built-in default for any run without one.
func (c *Config) SellerContext() model.SellerContext {
	if c.Seller.IsZero() {
		return model.DefaultSellerContext()
	}
	return c.Seller
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
