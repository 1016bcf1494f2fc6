package config

import "time"

// File represents the structure of the .qrreader configuration file.
// Zero values mean "not set" and leave the current configuration untouched;
// booleans are pointers so that false can be set explicitly.
type File struct {
	Server  ServerSection  `yaml:"server,omitempty"`
	Fetch   FetchSection   `yaml:"fetch,omitempty"`
	History HistorySection `yaml:"history,omitempty"`
}

// ServerSection configures `qrreader serve`.
type ServerSection struct {
	Listen    string  `yaml:"listen,omitempty"`
	AuthToken string  `yaml:"auth_token,omitempty"`
	RateLimit float64 `yaml:"rate_limit,omitempty"`
	RateBurst int     `yaml:"rate_burst,omitempty"`
	LogJSON   *bool   `yaml:"log_json,omitempty"`
}

// FetchSection configures image downloads.
type FetchSection struct {
	MaxImageBytes        int64         `yaml:"max_image_bytes,omitempty"`
	RequestTimeout       time.Duration `yaml:"request_timeout,omitempty"`
	ProcessTimeout       time.Duration `yaml:"process_timeout,omitempty"`
	UserAgent            string        `yaml:"user_agent,omitempty"`
	Proxy                string        `yaml:"proxy,omitempty"`
	AllowPrivateNetworks *bool         `yaml:"allow_private_networks,omitempty"`
	Concurrency          int           `yaml:"concurrency,omitempty"`
}

// HistorySection configures the SQLite history store.
type HistorySection struct {
	Enabled *bool  `yaml:"enabled,omitempty"`
	Dir     string `yaml:"dir,omitempty"`
}

// Apply copies every value set in the file onto cfg.
func (f *File) Apply(cfg *Config) {
	if f.Server.Listen != "" {
		cfg.ListenAddress = f.Server.Listen
	}
	if f.Server.AuthToken != "" {
		cfg.AuthToken = f.Server.AuthToken
	}
	if f.Server.RateLimit != 0 {
		cfg.RateLimit = f.Server.RateLimit
	}
	if f.Server.RateBurst != 0 {
		cfg.RateBurst = f.Server.RateBurst
	}
	if f.Server.LogJSON != nil {
		cfg.LogJSON = *f.Server.LogJSON
	}

	if f.Fetch.MaxImageBytes != 0 {
		cfg.MaxImageBytes = f.Fetch.MaxImageBytes
	}
	if f.Fetch.RequestTimeout != 0 {
		cfg.RequestTimeout = f.Fetch.RequestTimeout
	}
	if f.Fetch.ProcessTimeout != 0 {
		cfg.ProcessTimeout = f.Fetch.ProcessTimeout
	}
	if f.Fetch.UserAgent != "" {
		cfg.UserAgent = f.Fetch.UserAgent
	}
	if f.Fetch.Proxy != "" {
		cfg.ProxyAddress = f.Fetch.Proxy
	}
	if f.Fetch.AllowPrivateNetworks != nil {
		cfg.AllowPrivateNetworks = *f.Fetch.AllowPrivateNetworks
	}
	if f.Fetch.Concurrency != 0 {
		cfg.Concurrency = f.Fetch.Concurrency
	}

	if f.History.Enabled != nil {
		cfg.HistoryEnabled = *f.History.Enabled
	}
	if f.History.Dir != "" {
		cfg.DBDir = f.History.Dir
	}
}
