package config

import (
	"context"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/quarkgate/apikit/pkg/logger"
	"github.com/spf13/viper"
)

// LoadConfig loads the configuration from file and environment variables.
// Environment variables use the APIKIT prefix with underscores, for example
// APIKIT_SERVER_PORT.
func LoadConfig(log logger.Logger) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/apikit/")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	v.SetEnvPrefix("APIKIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Log when an operator edits the file; the running pipeline keeps its
	// current settings until restart.
	if v.ConfigFileUsed() != "" {
		v.OnConfigChange(func(e fsnotify.Event) {
			log.Info(context.Background(), "configuration file changed, restart to apply",
				logger.String("file", e.Name))
		})
		v.WatchConfig()
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("server.idle_timeout", 60)
	v.SetDefault("server.shutdown_timeout", 10)
	v.SetDefault("server.pprof_enabled", false)
	v.SetDefault("server.version", "dev")

	v.SetDefault("jwt.algorithm", "HS512")
	v.SetDefault("jwt.issuer", "apikit")
	v.SetDefault("jwt.access_token_ttl", 900)
	v.SetDefault("jwt.refresh_token_ttl", 604800)

	v.SetDefault("basic_auth.enabled", false)

	v.SetDefault("cors.allow_origin", "*")

	v.SetDefault("time_limiter.deny_windows", "")

	v.SetDefault("http_errors.body_max_size", 1<<20)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.service_name", "apikit")
	v.SetDefault("metrics.mount_points", []string{"/"})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}
