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
	Store       StoreConfig       `yaml:"store" mapstructure:"store"`
	Unsplash    UnsplashConfig    `yaml:"unsplash" mapstructure:"unsplash"`
	API         APIConfig         `yaml:"api" mapstructure:"api"`
	Google      GoogleConfig      `yaml:"google" mapstructure:"google"`
	Wikipedia   WikipediaConfig   `yaml:"wikipedia" mapstructure:"wikipedia"`
	TripAdvisor TripAdvisorConfig `yaml:"tripadvisor" mapstructure:"tripadvisor"`
	Geocode     GeocodeConfig     `yaml:"geocode" mapstructure:"geocode"`
	Anthropic   AnthropicConfig   `yaml:"anthropic" mapstructure:"anthropic"`
	Importer    ImporterConfig    `yaml:"importer" mapstructure:"importer"`
	Aggregator  AggregatorConfig  `yaml:"aggregator" mapstructure:"aggregator"`
	Serve       ServeConfig       `yaml:"serve" mapstructure:"serve"`
	Smoke       SmokeConfig       `yaml:"smoke" mapstructure:"smoke"`
	Log         LogConfig         `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// UnsplashConfig holds image-search API settings. AccessKey is sent as
// the client_id query parameter.
type UnsplashConfig struct {
	AccessKey string `yaml:"access_key" mapstructure:"access_key"`
	BaseURL   string `yaml:"base_url" mapstructure:"base_url"`
}

// APIConfig holds the landmark content API credentials. Key rides the
// x-api-key header, BearerToken the Authorization header.
type APIConfig struct {
	BaseURL     string `yaml:"base_url" mapstructure:"base_url"`
	Key         string `yaml:"key" mapstructure:"key"`
	BearerToken string `yaml:"bearer_token" mapstructure:"bearer_token"`
}

// GoogleConfig holds places API settings.
type GoogleConfig struct {
	APIKey  string `yaml:"api_key" mapstructure:"api_key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// WikipediaConfig holds encyclopedia API settings.
type WikipediaConfig struct {
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// TripAdvisorConfig holds review-site scraper settings.
type TripAdvisorConfig struct {
	BaseURL     string `yaml:"base_url" mapstructure:"base_url"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// GeocodeConfig holds Nominatim settings. UserAgent identifies this
// tool to the service per its usage policy.
type GeocodeConfig struct {
	BaseURL      string `yaml:"base_url" mapstructure:"base_url"`
	UserAgent    string `yaml:"user_agent" mapstructure:"user_agent"`
	CacheTTLMins int    `yaml:"cache_ttl_mins" mapstructure:"cache_ttl_mins"`
}

// AnthropicConfig holds the optional model-backed classifier settings.
// The keyword matcher is used unless Enabled is set and a key is present.
type AnthropicConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Key     string `yaml:"key" mapstructure:"key"`
	Model   string `yaml:"model" mapstructure:"model"`
}

// ImporterConfig configures the image ingestion pipeline.
type ImporterConfig struct {
	ImageCount int    `yaml:"image_count" mapstructure:"image_count"`
	TempDir    string `yaml:"temp_dir" mapstructure:"temp_dir"`
}

// AggregatorConfig configures the multi-source aggregation pipeline.
type AggregatorConfig struct {
	Workers         int    `yaml:"workers" mapstructure:"workers"`
	OutputFile      string `yaml:"output_file" mapstructure:"output_file"`
	ImageDir        string `yaml:"image_dir" mapstructure:"image_dir"`
	RelatedRadiusKM float64 `yaml:"related_radius_km" mapstructure:"related_radius_km"`
}

// ServeConfig configures the REST API surface.
type ServeConfig struct {
	Port           int               `yaml:"port" mapstructure:"port"`
	JWTSecret      string            `yaml:"jwt_secret" mapstructure:"jwt_secret"`
	APIKey         string            `yaml:"api_key" mapstructure:"api_key"`
	MediaDir       string            `yaml:"media_dir" mapstructure:"media_dir"`
	ExternalChecks map[string]string `yaml:"external_checks" mapstructure:"external_checks"`
}

// SmokeConfig configures the smoke tester.
type SmokeConfig struct {
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Validate checks that the settings a command depends on are present.
// Mode is the subcommand name.
func (c *Config) Validate(mode string) error {
	var problems []string

	switch mode {
	case "import":
		if c.Unsplash.AccessKey == "" {
			problems = append(problems, "unsplash.access_key is required")
		}
		if c.API.Key == "" {
			problems = append(problems, "api.key is required")
		}
		if c.API.BearerToken == "" {
			problems = append(problems, "api.bearer_token is required")
		}
		if c.Importer.ImageCount < 1 {
			problems = append(problems, "importer.image_count must be >= 1")
		}
	case "aggregate":
		problems = append(problems, c.storeProblems()...)
		if c.Google.APIKey == "" {
			problems = append(problems, "google.api_key is required")
		}
		if c.Aggregator.Workers < 1 || c.Aggregator.Workers > 32 {
			problems = append(problems, "aggregator.workers must be between 1 and 32")
		}
		if c.Anthropic.Enabled && c.Anthropic.Key == "" {
			problems = append(problems, "anthropic.key is required when anthropic.enabled is set")
		}
	case "serve":
		problems = append(problems, c.storeProblems()...)
		if c.Serve.JWTSecret == "" {
			problems = append(problems, "serve.jwt_secret is required")
		}
		if c.Serve.Port <= 0 {
			problems = append(problems, "serve.port must be > 0")
		}
	case "smoke":
		if c.Smoke.BaseURL == "" {
			problems = append(problems, "smoke.base_url is required")
		}
	case "migrate":
		problems = append(problems, c.storeProblems()...)
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// storeProblems validates the store settings. The sqlite driver falls
// back to a local file, so only postgres demands a connection string.
func (c *Config) storeProblems() []string {
	switch c.Store.Driver {
	case "sqlite":
		return nil
	case "postgres":
		if c.Store.DatabaseURL == "" {
			return []string{"store.database_url is required"}
		}
		return nil
	default:
		return []string{"store.driver must be sqlite or postgres"}
	}
}

// Load reads configuration from file and environment. Credentials have
// no defaults: they arrive via config file or LANDMARK_* env vars only.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("LANDMARK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Secrets are bound explicitly: AutomaticEnv alone does not expose
	// keys without defaults to Unmarshal.
	for _, key := range []string{
		"store.database_url",
		"unsplash.access_key",
		"api.key",
		"api.bearer_token",
		"google.api_key",
		"anthropic.key",
		"serve.jwt_secret",
		"serve.api_key",
	} {
		_ = v.BindEnv(key)
	}

	// Defaults
	v.SetDefault("store.driver", "postgres")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("unsplash.base_url", "https://api.unsplash.com")
	v.SetDefault("api.base_url", "http://localhost:5050")
	v.SetDefault("google.base_url", "https://maps.googleapis.com/maps/api")
	v.SetDefault("wikipedia.base_url", "https://en.wikipedia.org/w/api.php")
	v.SetDefault("tripadvisor.base_url", "https://www.tripadvisor.com")
	v.SetDefault("tripadvisor.timeout_secs", 30)
	v.SetDefault("geocode.base_url", "https://nominatim.openstreetmap.org")
	v.SetDefault("geocode.user_agent", "landmark-cli/1.0")
	v.SetDefault("geocode.cache_ttl_mins", 60)
	v.SetDefault("anthropic.enabled", false)
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("importer.image_count", 5)
	v.SetDefault("importer.temp_dir", "")
	v.SetDefault("aggregator.workers", 4)
	v.SetDefault("aggregator.output_file", "landmarks_data.json")
	v.SetDefault("aggregator.image_dir", "landmark_images")
	v.SetDefault("aggregator.related_radius_km", 50)
	v.SetDefault("serve.port", 5050)
	v.SetDefault("serve.media_dir", "media")
	v.SetDefault("smoke.base_url", "http://localhost:5050")

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
