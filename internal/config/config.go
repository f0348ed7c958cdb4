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
	Dataset   DatasetConfig   `yaml:"dataset" mapstructure:"dataset"`
	Intercept InterceptConfig `yaml:"intercept" mapstructure:"intercept"`
	Images    ImagesConfig    `yaml:"images" mapstructure:"images"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// DatasetConfig locates the workbook directory and the medicine ID table.
type DatasetConfig struct {
	Dir          string `yaml:"dir" mapstructure:"dir"`
	MedicineFile string `yaml:"medicine_file" mapstructure:"medicine_file"`
}

// InterceptConfig configures the capture session.
type InterceptConfig struct {
	Listen     string `yaml:"listen" mapstructure:"listen"`
	Keyword    string `yaml:"keyword" mapstructure:"keyword"`
	QueueDepth int    `yaml:"queue_depth" mapstructure:"queue_depth"`
}

// ImagesConfig configures licence and product image downloads.
type ImagesConfig struct {
	Dir         string  `yaml:"dir" mapstructure:"dir"`
	Concurrency int     `yaml:"concurrency" mapstructure:"concurrency"`
	RatePerSec  float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
	MaxWidth    int     `yaml:"max_width" mapstructure:"max_width"`
	MaxHeight   int     `yaml:"max_height" mapstructure:"max_height"`
}

// ServerConfig configures the status server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Validate checks the fields the given run mode depends on. Modes map to
// command families: "intercept" for the capture session, "db" for the
// database commands, "serve" for the status server.
func (c *Config) Validate(mode string) error {
	var problems []string

	check := func(ok bool, msg string) {
		if !ok {
			problems = append(problems, msg)
		}
	}

	switch mode {
	case "intercept":
		check(c.Intercept.Listen != "", "intercept.listen is required")
		check(c.Intercept.Keyword != "", "intercept.keyword is required")
		check(c.Intercept.QueueDepth >= 0, "intercept.queue_depth must be >= 0")
		check(c.Dataset.Dir != "", "dataset.dir is required")
	case "db":
		check(c.Store.Driver == "sqlite" || c.Store.Driver == "postgres",
			"store.driver must be sqlite or postgres")
		check(c.Store.DatabaseURL != "", "store.database_url is required")
		check(c.Dataset.Dir != "", "dataset.dir is required")
	case "serve":
		check(c.Server.Port > 0, "server.port must be > 0")
		check(c.Dataset.Dir != "", "dataset.dir is required")
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	check(c.Images.Concurrency >= 1 && c.Images.Concurrency <= 32,
		"images.concurrency must be between 1 and 32")

	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("LYS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "lys.db")
	v.SetDefault("dataset.dir", "数据集")
	v.SetDefault("dataset.medicine_file", "medicines.yaml")
	v.SetDefault("intercept.listen", "127.0.0.1:9035")
	v.SetDefault("intercept.keyword", "")
	v.SetDefault("intercept.queue_depth", 64)
	v.SetDefault("images.dir", "images")
	v.SetDefault("images.concurrency", 4)
	v.SetDefault("images.rate_per_sec", 5)
	v.SetDefault("images.max_width", 200)
	v.SetDefault("images.max_height", 200)
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
