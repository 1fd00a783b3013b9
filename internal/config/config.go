// Package config defines and loads the service configuration.
package config

import (
	"fmt"
	"time"

	"github.com/quarkgate/apikit/internal/infrastructure/crypto"
	"github.com/quarkgate/apikit/internal/interfaces/http/middleware"
)

// Config holds the application's configuration.
type Config struct {
	Server          ServerConfig          `mapstructure:"server"`
	JWT             JWTConfig             `mapstructure:"jwt"`
	BasicAuth       BasicAuthConfig       `mapstructure:"basic_auth"`
	Cors            CorsConfig            `mapstructure:"cors"`
	TimeLimiter     TimeLimiterConfig     `mapstructure:"time_limiter"`
	HTTPErrors      HTTPErrorsConfig      `mapstructure:"http_errors"`
	SecurityHeaders SecurityHeadersConfig `mapstructure:"security_headers"`
	Metrics         MetricsConfig         `mapstructure:"metrics"`
	Log             LogConfig             `mapstructure:"log"`
}

type ServerConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	ReadTimeout     int    `mapstructure:"read_timeout"`     // in seconds
	WriteTimeout    int    `mapstructure:"write_timeout"`    // in seconds
	IdleTimeout     int    `mapstructure:"idle_timeout"`     // in seconds
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"` // in seconds
	PprofEnabled    bool   `mapstructure:"pprof_enabled"`
	Version         string `mapstructure:"version"`
}

// Addr returns the host:port listen address.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type JWTConfig struct {
	Algorithm       string `mapstructure:"algorithm"`
	Secret          string `mapstructure:"secret"`
	PrivateKeyPath  string `mapstructure:"private_key_path"`
	PublicKeyPath   string `mapstructure:"public_key_path"`
	Issuer          string `mapstructure:"issuer"`
	AccessTokenTTL  int    `mapstructure:"access_token_ttl"`  // in seconds
	RefreshTokenTTL int    `mapstructure:"refresh_token_ttl"` // in seconds
}

type BasicAuthConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type CorsConfig struct {
	AllowOrigin  string   `mapstructure:"allow_origin"`
	AllowMethods []string `mapstructure:"allow_methods"`
	AllowHeaders []string `mapstructure:"allow_headers"`
}

type TimeLimiterConfig struct {
	// DenyWindows is the "HH:MM-HH:MM,HH:MM-HH:MM" list of windows during
	// which the service refuses traffic. Empty means always open.
	DenyWindows string `mapstructure:"deny_windows"`
}

type HTTPErrorsConfig struct {
	BodyMaxSize int `mapstructure:"body_max_size"` // in bytes
}

type SecurityHeadersConfig struct {
	ContentSecurityPolicy   string `mapstructure:"content_security_policy"`
	StrictTransportSecurity string `mapstructure:"strict_transport_security"`
	XContentTypeOptions     string `mapstructure:"x_content_type_options"`
	XFrameOptions           string `mapstructure:"x_frame_options"`
	XXSSProtection          string `mapstructure:"x_xss_protection"`
	ReferrerPolicy          string `mapstructure:"referrer_policy"`
	PermissionsPolicy       string `mapstructure:"permissions_policy"`
}

type MetricsConfig struct {
	Enabled     bool     `mapstructure:"enabled"`
	ServiceName string   `mapstructure:"service_name"`
	MountPoints []string `mapstructure:"mount_points"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Validate checks every field that would otherwise only fail at request
// time. Configuration problems must be fatal at startup.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}

	if _, err := middleware.ParseTimeSlots(c.TimeLimiter.DenyWindows); err != nil {
		return err
	}

	if c.BasicAuth.Enabled && (c.BasicAuth.Username == "" || c.BasicAuth.Password == "") {
		return fmt.Errorf("basic auth enabled without credentials")
	}

	return nil
}

// EngineConfig translates the JWT section into crypto engine parameters.
// Key files are read by the caller; this only carries the inline secret.
func (c JWTConfig) EngineConfig(privateKey, publicKey string) crypto.Config {
	return crypto.Config{
		Algorithm:       c.Algorithm,
		Secret:          c.Secret,
		PrivateKey:      privateKey,
		PublicKey:       publicKey,
		AccessLifetime:  time.Duration(c.AccessTokenTTL) * time.Second,
		RefreshLifetime: time.Duration(c.RefreshTokenTTL) * time.Second,
	}
}

// TimeSlots parses the deny windows. Validate has already run, so an error
// here is a programming mistake.
func (c TimeLimiterConfig) TimeSlots() (middleware.TimeSlots, error) {
	return middleware.ParseTimeSlots(c.DenyWindows)
}

// MiddlewareConfig converts the security header section to the middleware
// configuration. Empty fields keep the middleware defaults.
func (c SecurityHeadersConfig) MiddlewareConfig() middleware.SecurityHeadersConfig {
	return middleware.SecurityHeadersConfig{
		ContentSecurityPolicy:   c.ContentSecurityPolicy,
		StrictTransportSecurity: c.StrictTransportSecurity,
		XContentTypeOptions:     c.XContentTypeOptions,
		XFrameOptions:           c.XFrameOptions,
		XXSSProtection:          c.XXSSProtection,
		ReferrerPolicy:          c.ReferrerPolicy,
		PermissionsPolicy:       c.PermissionsPolicy,
	}
}

// MiddlewareConfig converts the CORS section, falling back to the
// middleware defaults for empty method and header lists.
func (c CorsConfig) MiddlewareConfig() middleware.CorsConfig {
	cfg := middleware.DefaultCorsConfig()
	if c.AllowOrigin != "" {
		cfg.AllowOrigin = c.AllowOrigin
	}
	if len(c.AllowMethods) > 0 {
		cfg.AllowMethods = c.AllowMethods
	}
	if len(c.AllowHeaders) > 0 {
		cfg.AllowHeaders = c.AllowHeaders
	}
	return cfg
}
