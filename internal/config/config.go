package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	ProviderPixelcut = "pixelcut"
	ProviderVertex   = "vertex"

	UploadInline = "inline"
	UploadObject = "object"
)

// minSessionTTL keeps the idle-session sweep interval (ttl/2) positive.
const minSessionTTL = time.Second

type Config struct {
	Server   Server   `mapstructure:"server"`
	Log      Log      `mapstructure:"log"`
	Provider Provider `mapstructure:"provider"`
	Pixelcut Pixelcut `mapstructure:"pixelcut"`
	Vertex   Vertex   `mapstructure:"vertex"`
	Upload   Upload   `mapstructure:"upload"`
	Minio    Minio    `mapstructure:"minio"`
	Session  Session  `mapstructure:"session"`
}

type Server struct {
	Port            string        `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type Log struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

type Provider struct {
	Name string `mapstructure:"name"`
	// Timeout bounds the outbound try-on call; zero means no bound.
	Timeout time.Duration `mapstructure:"timeout"`
}

type Pixelcut struct {
	Endpoint string `mapstructure:"endpoint"`
	APIKey   string `mapstructure:"api_key"`
}

type Vertex struct {
	ProjectID string `mapstructure:"project_id"`
	Location  string `mapstructure:"location"`
	Model     string `mapstructure:"model"`
	// UseSDK routes calls through the genai client instead of REST.
	UseSDK bool `mapstructure:"use_sdk"`
}

type Upload struct {
	Mode string `mapstructure:"mode"`
}

type Minio struct {
	Endpoint  string        `mapstructure:"endpoint"`
	AccessKey string        `mapstructure:"access_key"`
	SecretKey string        `mapstructure:"secret_key"`
	Bucket    string        `mapstructure:"bucket"`
	Secure    bool          `mapstructure:"secure"`
	URLExpiry time.Duration `mapstructure:"url_expiry"`
}

type Session struct {
	TTL time.Duration `mapstructure:"ttl"`
}

var defaults = map[string]any{
	"server.port":             "8080",
	"server.shutdown_timeout": 15 * time.Second,
	"log.level":               "info",
	"log.development":         false,
	"provider.name":           ProviderPixelcut,
	"provider.timeout":        time.Duration(0),
	"pixelcut.endpoint":       "https://api.developer.pixelcut.ai/v1/try-on",
	"pixelcut.api_key":        "",
	"vertex.project_id":       "",
	"vertex.location":         "us-central1",
	"vertex.model":            "virtual-try-on-preview-08-04",
	"vertex.use_sdk":          false,
	"upload.mode":             UploadInline,
	"minio.endpoint":          "",
	"minio.access_key":        "",
	"minio.secret_key":        "",
	"minio.bucket":            "",
	"minio.secure":            true,
	"minio.url_expiry":        15 * time.Minute,
	"session.ttl":             time.Hour,
}

// Load reads configuration from the optional YAML file at path and from
// TRYON_* environment variables (server.port -> TRYON_SERVER_PORT).
// PORT is honoured for the listen port.
func Load(path string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix("TRYON")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("server.port", "TRYON_SERVER_PORT", "PORT"); err != nil {
		return nil, err
	}
	if err := v.BindEnv("vertex.project_id", "TRYON_VERTEX_PROJECT_ID", "PROJECT_ID", "GOOGLE_CLOUD_PROJECT"); err != nil {
		return nil, err
	}
	if err := v.BindEnv("vertex.use_sdk", "TRYON_VERTEX_USE_SDK", "USE_SDK"); err != nil {
		return nil, err
	}

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error

	switch c.Provider.Name {
	case ProviderPixelcut:
		if c.Pixelcut.Endpoint == "" {
			errs = append(errs, errors.New("pixelcut.endpoint is required"))
		}
		if c.Pixelcut.APIKey == "" {
			errs = append(errs, errors.New("pixelcut.api_key is required (set TRYON_PIXELCUT_API_KEY)"))
		}
	case ProviderVertex:
		if c.Vertex.ProjectID == "" {
			errs = append(errs, errors.New("vertex.project_id is required (set PROJECT_ID)"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown provider.name %q", c.Provider.Name))
	}

	switch c.Upload.Mode {
	case UploadInline:
	case UploadObject:
		if c.Minio.Endpoint == "" || c.Minio.Bucket == "" {
			errs = append(errs, errors.New("minio.endpoint and minio.bucket are required for upload.mode=object"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown upload.mode %q", c.Upload.Mode))
	}

	if c.Provider.Timeout < 0 {
		errs = append(errs, errors.New("provider.timeout must not be negative"))
	}

	if c.Session.TTL < minSessionTTL {
		errs = append(errs, fmt.Errorf("session.ttl must be at least %s", minSessionTTL))
	}

	return errors.Join(errs...)
}
