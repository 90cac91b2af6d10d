// Package config defines the server configuration structure.
package config

import "time"

// ServerConfig is the root configuration for minikv-server.
type ServerConfig struct {
	Server  ServerSection  `koanf:"server"`
	Storage StorageSection `koanf:"storage"`
	Metrics MetricsSection `koanf:"metrics"`
	Log     LogSection     `koanf:"log"`
}

// ServerSection configures the Redis protocol endpoint.
type ServerSection struct {
	// Addr is the TCP listen address.
	Addr string `koanf:"addr"`

	// ReadTimeout is the timeout for reading a command once its first
	// byte has arrived. Helps against slowloris-style clients.
	ReadTimeout time.Duration `koanf:"read_timeout"`

	// WriteTimeout is the timeout for writing a response.
	WriteTimeout time.Duration `koanf:"write_timeout"`

	// IdleTimeout is the timeout for connections idle between
	// commands.
	IdleTimeout time.Duration `koanf:"idle_timeout"`

	// RateLimit is the maximum number of commands per second per
	// client IP. 0 disables rate limiting.
	RateLimit int `koanf:"rate_limit"`
}

// StorageSection carries the settings surfaced through CONFIG GET.
// The in-scope server keeps everything in memory; dir and dbfilename
// describe where a persistence layer would put its files.
type StorageSection struct {
	Dir        string `koanf:"dir"`
	DBFilename string `koanf:"dbfilename"`
}

// MetricsSection configures the Prometheus scrape endpoint.
type MetricsSection struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}
