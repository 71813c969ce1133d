package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Search    SearchConfig    `yaml:"search" mapstructure:"search"`
	Deploy    DeployConfig    `yaml:"deploy" mapstructure:"deploy"`
	Discovery DiscoveryConfig `yaml:"discovery" mapstructure:"discovery"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key            string `yaml:"key" mapstructure:"key"`
	DiscoveryModel string `yaml:"discovery_model" mapstructure:"discovery_model"`
	BuilderModel   string `yaml:"builder_model" mapstructure:"builder_model"`
	EmailModel     string `yaml:"email_model" mapstructure:"email_model"`
	MaxTokens      int64  `yaml:"max_tokens" mapstructure:"max_tokens"`
	SiteMaxTokens  int64  `yaml:"site_max_tokens" mapstructure:"site_max_tokens"`
}

// SearchConfig selects the web search capability offered to the discovery
// model. Provider "none" answers tool invocations with a synthetic
// acknowledgment instead of a real search.
type SearchConfig struct {
	Provider string `yaml:"provider" mapstructure:"provider"`
	Key      string `yaml:"key" mapstructure:"key"`
	BaseURL  string `yaml:"base_url" mapstructure:"base_url"`
}

// DeployConfig configures the deployment target.
type DeployConfig struct {
	Domain string `yaml:"domain" mapstructure:"domain"`
}

// DiscoveryConfig bounds discovery batches and outbound model-call rate.
type DiscoveryConfig struct {
	MinBatch      int     `yaml:"min_batch" mapstructure:"min_batch"`
	MaxBatch      int     `yaml:"max_batch" mapstructure:"max_batch"`
	ModelCallRate float64 `yaml:"model_call_rate" mapstructure:"model_call_rate"`
	BuildWorkers  int     `yaml:"build_workers" mapstructure:"build_workers"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
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

	// Defaults
	v.SetDefault("store.driver", "postgres")
	v.SetDefault("store.max_conns", 10)
	v.SetDefault("store.min_conns", 2)
	v.SetDefault("anthropic.discovery_model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.builder_model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.email_model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.max_tokens", 4096)
	v.SetDefault("anthropic.site_max_tokens", 16384)
	v.SetDefault("search.provider", "none")
	v.SetDefault("search.base_url", "https://s.jina.ai")
	v.SetDefault("deploy.domain", "smesites.dev")
	v.SetDefault("discovery.min_batch", 8)
	v.SetDefault("discovery.max_batch", 12)
	v.SetDefault("discovery.model_call_rate", 2)
	v.SetDefault("discovery.build_workers", 4)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
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
