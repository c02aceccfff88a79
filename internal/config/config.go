// Package config loads the chat server configuration from an optional YAML
// file, a .env file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/Tyrowin/gochat/internal/auth"
	"github.com/Tyrowin/gochat/internal/log"
	"github.com/Tyrowin/gochat/internal/server"
	"github.com/Tyrowin/gochat/internal/upload"
)

// Config is the complete process configuration.
type Config struct {
	Server server.Config `mapstructure:"server"`
	Auth   auth.Config   `mapstructure:"auth"`
	Upload upload.Config `mapstructure:"upload"`
	Log    log.Config    `mapstructure:"log"`
}

// Load reads config.yaml from configPath (or ./, ./config) if present, then
// applies environment overrides. Variables in a .env file in the working
// directory are loaded first and never override the real environment.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if configPath != "" {
		v.AddConfigPath(configPath)
	}
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)
	if err := bindEnv(v); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	defaults := server.NewConfig()

	v.SetDefault("server.host", defaults.Host)
	v.SetDefault("server.port", defaults.Port)
	v.SetDefault("server.port_fallback", true)
	v.SetDefault("server.allowed_origins", defaults.AllowedOrigins)
	v.SetDefault("server.max_message_size", defaults.MaxMessageSize)
	v.SetDefault("server.send_buffer", defaults.SendBuffer)
	v.SetDefault("server.rate_limit.burst", defaults.RateLimit.Burst)
	v.SetDefault("server.rate_limit.refill_interval", "1s")
	v.SetDefault("server.kick_grace", "100ms")
	v.SetDefault("server.ping_interval", "54s")
	v.SetDefault("server.pong_wait", "60s")
	v.SetDefault("server.write_wait", "10s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.time_zone", "")

	v.SetDefault("auth.admin_password", "")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl", "24h")
	v.SetDefault("auth.cookie_secure", false)

	v.SetDefault("upload.backend", "local")
	v.SetDefault("upload.base_path", "uploads")
	v.SetDefault("upload.ttl", "10m")
	v.SetDefault("upload.sweep_interval", "1m")
	v.SetDefault("upload.purge_on_start", true)
	v.SetDefault("upload.public_prefix", "/uploads")
	v.SetDefault("upload.max_upload_size", 20<<20)
	v.SetDefault("upload.s3.endpoint", "")
	v.SetDefault("upload.s3.region", "us-east-1")
	v.SetDefault("upload.s3.bucket", "")
	v.SetDefault("upload.s3.prefix", "uploads/")
	v.SetDefault("upload.s3.access_key_id", "")
	v.SetDefault("upload.s3.secret_access_key", "")
	v.SetDefault("upload.s3.use_path_style", false)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
}

// bindEnv maps the short, conventional variable names onto config keys.
// Every key is also reachable as its upper-cased dotted path, for example
// SERVER_KICK_GRACE.
func bindEnv(v *viper.Viper) error {
	bindings := map[string][]string{
		"server.host":                       {"SERVER_HOST", "HOST"},
		"server.port":                       {"SERVER_PORT", "PORT"},
		"server.allowed_origins":            {"SERVER_ALLOWED_ORIGINS", "ALLOWED_ORIGINS"},
		"server.max_message_size":           {"SERVER_MAX_MESSAGE_SIZE", "MAX_MESSAGE_SIZE"},
		"server.rate_limit.burst":           {"SERVER_RATE_LIMIT_BURST", "RATE_LIMIT_BURST"},
		"server.rate_limit.refill_interval": {"SERVER_RATE_LIMIT_REFILL_INTERVAL", "RATE_LIMIT_REFILL_INTERVAL"},
		"server.time_zone":                  {"SERVER_TIME_ZONE", "TZ"},
		"auth.admin_password":               {"AUTH_ADMIN_PASSWORD", "ADMIN_PASSWORD"},
		"auth.jwt_secret":                   {"AUTH_JWT_SECRET", "JWT_SECRET"},
		"upload.backend":                    {"UPLOAD_BACKEND"},
		"upload.base_path":                  {"UPLOAD_BASE_PATH", "UPLOAD_DIR"},
		"upload.s3.endpoint":                {"UPLOAD_S3_ENDPOINT", "S3_ENDPOINT"},
		"upload.s3.bucket":                  {"UPLOAD_S3_BUCKET", "S3_BUCKET"},
		"upload.s3.access_key_id":           {"UPLOAD_S3_ACCESS_KEY_ID", "AWS_ACCESS_KEY_ID"},
		"upload.s3.secret_access_key":       {"UPLOAD_S3_SECRET_ACCESS_KEY", "AWS_SECRET_ACCESS_KEY"},
		"log.level":                         {"LOG_LEVEL"},
		"log.pretty":                        {"LOG_PRETTY"},
	}

	for key, envs := range bindings {
		args := append([]string{key}, envs...)
		if err := v.BindEnv(args...); err != nil {
			return fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}
	return nil
}
