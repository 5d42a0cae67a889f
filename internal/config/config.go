package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/ftorres/b3score/internal/core"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Analysis  AnalysisConfig  `mapstructure:"analysis"`
	Filters   FiltersConfig   `mapstructure:"filters"`
	Sector    SectorConfig    `mapstructure:"sector"`
	Collector CollectorConfig `mapstructure:"collector"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Archive   ArchiveConfig   `mapstructure:"archive"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// AnalysisConfig tunes the scoring pipeline.
type AnalysisConfig struct {
	Weights          WeightsConfig `mapstructure:"weights"`
	BatchConcurrency int           `mapstructure:"batch_concurrency"`
}

// WeightsConfig is the per-category split of the composite score. Must sum
// to 1.
type WeightsConfig struct {
	Valuation     float64 `mapstructure:"valuation"`
	Profitability float64 `mapstructure:"profitability"`
	Growth        float64 `mapstructure:"growth"`
	Leverage      float64 `mapstructure:"leverage"`
}

// FiltersConfig parameterizes the quality filter battery. Zero values fall
// back to built-in defaults.
type FiltersConfig struct {
	GoodROE            float64 `mapstructure:"good_roe"`
	SustainableGrowth  float64 `mapstructure:"sustainable_growth"`
	ControlledDebt     float64 `mapstructure:"controlled_debt"`
	HealthyLiquidity   float64 `mapstructure:"healthy_liquidity"`
	CriticalDebt       float64 `mapstructure:"critical_debt"`
	ShrinkingRevenue   float64 `mapstructure:"shrinking_revenue"`
	StretchedValuation float64 `mapstructure:"stretched_valuation"`
}

// SectorConfig tunes the sector comparator.
type SectorConfig struct {
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
	OutlierK float64       `mapstructure:"outlier_k"`
}

type CollectorConfig struct {
	Provider string        `mapstructure:"provider"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type LLMConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Provider string        `mapstructure:"provider"`
	Timeout  time.Duration `mapstructure:"timeout"`
	Claude   ClaudeConfig  `mapstructure:"claude"`
	OpenAI   OpenAIConfig  `mapstructure:"openai"`
	Ollama   OllamaConfig  `mapstructure:"ollama"`
}

type ClaudeConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type OpenAIConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type OllamaConfig struct {
	Endpoint string `mapstructure:"endpoint"`
	Model    string `mapstructure:"model"`
}

// ArchiveConfig selects where finished analyses are archived.
type ArchiveConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Type    string   `mapstructure:"type"` // "localfs" or "s3"
	Path    string   `mapstructure:"path"` // for localfs
	S3      S3Config `mapstructure:"s3"`
}

type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// Load reads configuration from file with environment variable overrides.
// Values of the form ${VAR} are expanded from the environment, which keeps
// API keys out of config files.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, core.WrapError(core.ErrConfigMissing, err)
	}

	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	cfg := Defaults()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, core.WrapError(core.ErrConfigInvalid, err)
	}
	return cfg, nil
}

// Defaults returns a config with sensible defaults. The zero filter
// thresholds are intentional; the filter engine fills them in.
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Analysis: AnalysisConfig{
			Weights: WeightsConfig{
				Valuation:     0.25,
				Profitability: 0.30,
				Growth:        0.25,
				Leverage:      0.20,
			},
			BatchConcurrency: 5,
		},
		Sector: SectorConfig{
			CacheTTL: 15 * time.Minute,
			OutlierK: 2.0,
		},
		Collector: CollectorConfig{
			Provider: "yahoo",
			Timeout:  10 * time.Second,
		},
		LLM: LLMConfig{
			Enabled: false,
			Timeout: 30 * time.Second,
		},
		Archive: ArchiveConfig{
			Enabled: false,
			Type:    "localfs",
			Path:    "./archive",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
		Logging: LoggingConfig{
			Level: "info",
			JSON:  true,
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("port must be between 1 and 65535, got %d", c.Server.Port))
	}

	w := c.Analysis.Weights
	sum := w.Valuation + w.Profitability + w.Growth + w.Leverage
	if sum < 0.999 || sum > 1.001 {
		return core.WrapError(core.ErrInvalidWeights,
			fmt.Errorf("category weights sum to %.4f", sum))
	}

	if c.Analysis.BatchConcurrency < 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("batch_concurrency must be at least 1, got %d", c.Analysis.BatchConcurrency))
	}

	if c.Sector.OutlierK <= 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("outlier_k must be positive, got %f", c.Sector.OutlierK))
	}

	if c.LLM.Enabled {
		switch c.LLM.Provider {
		case "claude", "openai", "ollama":
		default:
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("unknown llm provider %q", c.LLM.Provider))
		}
	}

	if c.Archive.Enabled {
		switch c.Archive.Type {
		case "localfs":
			if c.Archive.Path == "" {
				return core.WrapError(core.ErrConfigInvalid,
					fmt.Errorf("archive path required for localfs"))
			}
		case "s3":
			if c.Archive.S3.Bucket == "" {
				return core.WrapError(core.ErrConfigInvalid,
					fmt.Errorf("s3 bucket required"))
			}
		default:
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("unknown archive type %q", c.Archive.Type))
		}
	}

	return nil
}
