package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds goform CLI configuration.
type Config struct {
	Forms    FormsConfig
	Sink     SinkConfig
	UI       UIConfig
	Delivery DeliveryConfig
}

// FormsConfig locates form definitions.
type FormsConfig struct {
	Path string
}

// SinkConfig holds sqlite settings. An empty path keeps submissions in memory.
type SinkConfig struct {
	Path string
}

// UIConfig holds presentation settings.
type UIConfig struct {
	LoadingDelay time.Duration `mapstructure:"loading_delay"`
	Language     string
	Width        int
}

// DeliveryConfig holds confirmation code settings.
type DeliveryConfig struct {
	CodeTTL time.Duration `mapstructure:"code_ttl"`
}

// Load reads configuration from file and env. Env var overrides use prefix
// GOFORM_ (GOFORM_SINK_PATH, GOFORM_UI_LANGUAGE, ...). path selects a config
// file explicitly; empty falls back to GOFORM_CONFIG and then
// ~/.config/goform/config.yaml.
func Load(path string) (Config, error) {
	v := viper.New()

	v.SetDefault("forms.path", "forms.yaml")
	v.SetDefault("sink.path", "")
	v.SetDefault("ui.loading_delay", "400ms")
	v.SetDefault("ui.language", "en")
	v.SetDefault("ui.width", 32)
	v.SetDefault("delivery.code_ttl", "10m")

	v.SetConfigType("yaml")

	if path == "" {
		path = os.Getenv("GOFORM_CONFIG")
	}
	explicit := path != ""
	if explicit {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "goform"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("GOFORM")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		// a missing default file is fine; an explicit one must exist
		var nf viper.ConfigFileNotFoundError
		if explicit || !errors.As(err, &nf) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}
