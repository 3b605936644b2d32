// Package config resolves daybook's runtime settings. Values are layered:
// built-in defaults, then the TOML config file, then environment variables
// and command-line flags through viper.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/viper"
)

const EnvPrefix = "DAYBOOK"

var ErrInvalidConfig = errors.New("config: invalid value")

type RuntimeConfig struct {
	DataDir         string
	Backend         string
	Timezone        string
	MaxPasses       int
	SchedulerBuffer int
	Remote          RemoteConfig
	Log             LogConfig
	Server          ServerConfig
}

type RemoteConfig struct {
	URL           string
	Token         string
	FetchInterval time.Duration
	ProbeInterval time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

type ServerConfig struct {
	Addr      string
	DBPath    string
	JWTSecret string
	TokenTTL  time.Duration
}

func DefaultRuntimeConfig() RuntimeConfig {
	return RuntimeConfig{
		DataDir:         defaultDataDir(),
		Backend:         "sqlite",
		MaxPasses:       16,
		SchedulerBuffer: 16,
		Remote: RemoteConfig{
			FetchInterval: 5 * time.Minute,
			ProbeInterval: 30 * time.Second,
		},
		Log: LogConfig{Level: "info", Format: "text"},
		Server: ServerConfig{
			Addr:     "127.0.0.1:8080",
			TokenTTL: 30 * 24 * time.Hour,
		},
	}
}

func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "daybook")
	}
	return ".daybook"
}

// DefaultPath is the config file read when none is given.
func DefaultPath() string {
	return filepath.Join(defaultDataDir(), "config.toml")
}

// NewViper returns a viper instance reading DAYBOOK_* variables, where
// nested keys map "remote.fetch-interval" to DAYBOOK_REMOTE_FETCH_INTERVAL.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// Load resolves the configuration. The file named by the "config" key (or
// DefaultPath) is optional.
func Load(v *viper.Viper) (RuntimeConfig, error) {
	cfg := DefaultRuntimeConfig()
	path := v.GetString("config")
	if path == "" {
		path = DefaultPath()
	}
	if err := mergeFile(&cfg, path); err != nil {
		return RuntimeConfig{}, err
	}
	if err := applyOverrides(&cfg, v); err != nil {
		return RuntimeConfig{}, err
	}
	if err := cfg.Validate(); err != nil {
		return RuntimeConfig{}, err
	}
	return cfg, nil
}

func (c RuntimeConfig) Validate() error {
	switch c.Backend {
	case "sqlite", "file", "memory":
	default:
		return fmt.Errorf("%w: backend %q", ErrInvalidConfig, c.Backend)
	}
	if c.MaxPasses <= 0 {
		return fmt.Errorf("%w: max-passes must be positive", ErrInvalidConfig)
	}
	if c.Remote.FetchInterval <= 0 || c.Remote.ProbeInterval <= 0 {
		return fmt.Errorf("%w: remote intervals must be positive", ErrInvalidConfig)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

// Location resolves Timezone; empty means the machine's local zone.
func (c RuntimeConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: timezone %q", ErrInvalidConfig, c.Timezone)
	}
	return loc, nil
}

// RemoteEnabled reports whether a signed-in remote session is configured.
func (c RuntimeConfig) RemoteEnabled() bool {
	return c.Remote.URL != "" && c.Remote.Token != ""
}

func (c RuntimeConfig) SQLitePath() string {
	return filepath.Join(c.DataDir, "daybook.db")
}

type fileConfig struct {
	DataDir   string `toml:"data-dir"`
	Backend   string `toml:"backend"`
	Timezone  string `toml:"timezone"`
	MaxPasses int    `toml:"max-passes"`
	Remote    struct {
		URL           string `toml:"url"`
		Token         string `toml:"token"`
		FetchInterval string `toml:"fetch-interval"`
		ProbeInterval string `toml:"probe-interval"`
	} `toml:"remote"`
	Log struct {
		Level  string `toml:"level"`
		Format string `toml:"format"`
	} `toml:"log"`
	Server struct {
		Addr      string `toml:"addr"`
		DBPath    string `toml:"db-path"`
		JWTSecret string `toml:"jwt-secret"`
		TokenTTL  string `toml:"token-ttl"`
	} `toml:"server"`
}

func mergeFile(cfg *RuntimeConfig, path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	var fc fileConfig
	meta, err := toml.Decode(string(data), &fc)
	if err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	mergeString(meta.IsDefined("data-dir"), &cfg.DataDir, fc.DataDir)
	mergeString(meta.IsDefined("backend"), &cfg.Backend, fc.Backend)
	mergeString(meta.IsDefined("timezone"), &cfg.Timezone, fc.Timezone)
	if meta.IsDefined("max-passes") {
		cfg.MaxPasses = fc.MaxPasses
	}
	mergeString(meta.IsDefined("remote", "url"), &cfg.Remote.URL, fc.Remote.URL)
	mergeString(meta.IsDefined("remote", "token"), &cfg.Remote.Token, fc.Remote.Token)
	mergeString(meta.IsDefined("log", "level"), &cfg.Log.Level, fc.Log.Level)
	mergeString(meta.IsDefined("log", "format"), &cfg.Log.Format, fc.Log.Format)
	mergeString(meta.IsDefined("server", "addr"), &cfg.Server.Addr, fc.Server.Addr)
	mergeString(meta.IsDefined("server", "db-path"), &cfg.Server.DBPath, fc.Server.DBPath)
	mergeString(meta.IsDefined("server", "jwt-secret"), &cfg.Server.JWTSecret, fc.Server.JWTSecret)

	durations := []struct {
		defined bool
		raw     string
		dst     *time.Duration
		name    string
	}{
		{meta.IsDefined("remote", "fetch-interval"), fc.Remote.FetchInterval, &cfg.Remote.FetchInterval, "remote.fetch-interval"},
		{meta.IsDefined("remote", "probe-interval"), fc.Remote.ProbeInterval, &cfg.Remote.ProbeInterval, "remote.probe-interval"},
		{meta.IsDefined("server", "token-ttl"), fc.Server.TokenTTL, &cfg.Server.TokenTTL, "server.token-ttl"},
	}
	for _, d := range durations {
		if !d.defined {
			continue
		}
		v, err := time.ParseDuration(strings.TrimSpace(d.raw))
		if err != nil {
			return fmt.Errorf("%w: %s in %s: %v", ErrInvalidConfig, d.name, path, err)
		}
		*d.dst = v
	}
	return nil
}

func mergeString(defined bool, dst *string, value string) {
	if defined {
		*dst = strings.TrimSpace(value)
	}
}

// applyOverrides copies every key viper knows about (flag or environment)
// over the file values.
func applyOverrides(cfg *RuntimeConfig, v *viper.Viper) error {
	strs := map[string]*string{
		"data-dir":          &cfg.DataDir,
		"backend":           &cfg.Backend,
		"timezone":          &cfg.Timezone,
		"remote.url":        &cfg.Remote.URL,
		"remote.token":      &cfg.Remote.Token,
		"log.level":         &cfg.Log.Level,
		"log.format":        &cfg.Log.Format,
		"server.addr":       &cfg.Server.Addr,
		"server.db-path":    &cfg.Server.DBPath,
		"server.jwt-secret": &cfg.Server.JWTSecret,
	}
	for key, dst := range strs {
		if v.IsSet(key) {
			*dst = strings.TrimSpace(v.GetString(key))
		}
	}
	if v.IsSet("max-passes") {
		cfg.MaxPasses = v.GetInt("max-passes")
	}
	durs := map[string]*time.Duration{
		"remote.fetch-interval": &cfg.Remote.FetchInterval,
		"remote.probe-interval": &cfg.Remote.ProbeInterval,
		"server.token-ttl":      &cfg.Server.TokenTTL,
	}
	for key, dst := range durs {
		if !v.IsSet(key) {
			continue
		}
		d, err := time.ParseDuration(strings.TrimSpace(v.GetString(key)))
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, key, err)
		}
		*dst = d
	}
	return nil
}
