package server

import (
	"net"
	"strconv"
	"time"
)

// RateLimitConfig defines the parameters for per-connection message rate limiting.
type RateLimitConfig struct {
	Burst          int           `mapstructure:"burst"`
	RefillInterval time.Duration `mapstructure:"refill_interval"`
}

// Config holds the chat server settings.
type Config struct {
	Host            string          `mapstructure:"host"`
	Port            int             `mapstructure:"port"`
	PortFallback    bool            `mapstructure:"port_fallback"`
	AllowedOrigins  []string        `mapstructure:"allowed_origins"`
	MaxMessageSize  int64           `mapstructure:"max_message_size"`
	SendBuffer      int             `mapstructure:"send_buffer"`
	RateLimit       RateLimitConfig `mapstructure:"rate_limit"`
	KickGrace       time.Duration   `mapstructure:"kick_grace"`
	PingInterval    time.Duration   `mapstructure:"ping_interval"`
	PongWait        time.Duration   `mapstructure:"pong_wait"`
	WriteWait       time.Duration   `mapstructure:"write_wait"`
	ShutdownTimeout time.Duration   `mapstructure:"shutdown_timeout"`
	TimeZone        string          `mapstructure:"time_zone"`
}

const (
	defaultPort           = 3030
	defaultMaxMessageSize = 4096
	defaultSendBuffer     = 256
	defaultBurst          = 5
	defaultKickGrace      = 100 * time.Millisecond
)

// NewConfig creates a Config populated with default values for all settings.
func NewConfig() *Config {
	cfg := Config{
		Host: "0.0.0.0",
		Port: defaultPort,
		AllowedOrigins: []string{
			"http://localhost:5173",
			"http://localhost:3030",
		},
		MaxMessageSize: defaultMaxMessageSize,
		SendBuffer:     defaultSendBuffer,
		RateLimit: RateLimitConfig{
			Burst:          defaultBurst,
			RefillInterval: time.Second,
		},
		KickGrace:       defaultKickGrace,
		PingInterval:    54 * time.Second,
		PongWait:        60 * time.Second,
		WriteWait:       10 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
	return &cfg
}

// sanitized fills zero or invalid values with defaults.
func (c Config) sanitized() Config {
	if c.Port <= 0 {
		c.Port = defaultPort
	}
	if c.MaxMessageSize <= 0 {
		c.MaxMessageSize = defaultMaxMessageSize
	}
	if c.SendBuffer <= 0 {
		c.SendBuffer = defaultSendBuffer
	}
	if c.RateLimit.Burst <= 0 {
		c.RateLimit.Burst = defaultBurst
	}
	if c.RateLimit.RefillInterval <= 0 {
		c.RateLimit.RefillInterval = time.Second
	}
	if c.KickGrace <= 0 {
		c.KickGrace = defaultKickGrace
	}
	if c.PongWait <= 0 {
		c.PongWait = 60 * time.Second
	}
	if c.PingInterval <= 0 || c.PingInterval >= c.PongWait {
		c.PingInterval = c.PongWait * 9 / 10
	}
	if c.WriteWait <= 0 {
		c.WriteWait = 10 * time.Second
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = 10 * time.Second
	}
	c.AllowedOrigins = append([]string(nil), c.AllowedOrigins...)
	return c
}

// Addr returns the host:port listen address.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Location resolves TimeZone, falling back to the local zone.
func (c Config) Location() *time.Location {
	if c.TimeZone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return time.Local
	}
	return loc
}
