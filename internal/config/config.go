package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Pipeline  PipelineConfig  `yaml:"pipeline" mapstructure:"pipeline"`
	Source    SourceConfig    `yaml:"source" mapstructure:"source"`
	Location  LocationConfig  `yaml:"location" mapstructure:"location"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	SQLitePath  string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// AnthropicConfig holds completion service settings for the AI extractor.
type AnthropicConfig struct {
	Key              string        `yaml:"key" mapstructure:"key"`
	Model            string        `yaml:"model" mapstructure:"model"`
	MaxTokens        int64         `yaml:"max_tokens" mapstructure:"max_tokens"`
	RequestTimeout   time.Duration `yaml:"request_timeout" mapstructure:"request_timeout"`
	MaxRetries       int           `yaml:"max_retries" mapstructure:"max_retries"`
	RPS              float64       `yaml:"rps" mapstructure:"rps"`
	CircuitThreshold int           `yaml:"circuit_threshold" mapstructure:"circuit_threshold"`
}

// PipelineConfig configures the ingestion run.
type PipelineConfig struct {
	BatchSize   int           `yaml:"batch_size" mapstructure:"batch_size"`
	RunTimeout  time.Duration `yaml:"run_timeout" mapstructure:"run_timeout"`
	ProcessedBy string        `yaml:"processed_by" mapstructure:"processed_by"`
}

// SourceConfig configures bulletin loading.
type SourceConfig struct {
	UserAgent    string        `yaml:"user_agent" mapstructure:"user_agent"`
	HTTPTimeout  time.Duration `yaml:"http_timeout" mapstructure:"http_timeout"`
	FTPTimeout   time.Duration `yaml:"ftp_timeout" mapstructure:"ftp_timeout"`
	PdfToTextBin string        `yaml:"pdftotext_bin" mapstructure:"pdftotext_bin"`
	RPS          float64       `yaml:"rps" mapstructure:"rps"`
	MaxRetries   int           `yaml:"max_retries" mapstructure:"max_retries"`
}

// LocationConfig points at an optional gazetteer override file.
type LocationConfig struct {
	GazetteerFile string `yaml:"gazetteer_file" mapstructure:"gazetteer_file"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port        int      `yaml:"port" mapstructure:"port"`
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
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
	v.AddConfigPath("$HOME/.remates")

	// Environment
	v.SetEnvPrefix("REMATES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.sqlite_path", "remates.db")
	v.SetDefault("store.max_conns", 10)
	v.SetDefault("store.min_conns", 2)
	v.SetDefault("anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.max_tokens", 4096)
	v.SetDefault("anthropic.request_timeout", "180s")
	v.SetDefault("anthropic.max_retries", 3)
	v.SetDefault("anthropic.rps", 2.0)
	v.SetDefault("anthropic.circuit_threshold", 5)
	v.SetDefault("pipeline.batch_size", 2)
	v.SetDefault("pipeline.run_timeout", "15m")
	v.SetDefault("pipeline.processed_by", "remates-cli")
	v.SetDefault("source.user_agent", "remates-cli/1.0")
	v.SetDefault("source.http_timeout", "60s")
	v.SetDefault("source.ftp_timeout", "30s")
	v.SetDefault("source.pdftotext_bin", "pdftotext")
	v.SetDefault("source.rps", 1.0)
	v.SetDefault("source.max_retries", 2)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Keys without a default are invisible to AutomaticEnv during Unmarshal.
	for _, key := range []string{"anthropic.key", "store.database_url", "location.gazetteer_file"} {
		if err := v.BindEnv(key); err != nil {
			return nil, eris.Wrapf(err, "config: bind env %s", key)
		}
	}

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
