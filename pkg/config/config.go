// Package config loads treerings.toml.
//
// Values are resolved in this order, later sources winning: built-in
// defaults, the TOML file, environment variables, command-line flags.
// Flags are applied by the CLI after [Load] returns. ${VAR} references
// inside the file are expanded before parsing, and a .env file can be
// loaded first with [LoadEnv] so secrets stay out of the config file.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/matzehuels/treerings/pkg/errors"
)

// DefaultFile is looked up in the working directory when no path is given.
const DefaultFile = "treerings.toml"

// Environment variables read by [Config.ApplyEnv].
const (
	EnvGitHubToken = "GITHUB_TOKEN"
	EnvRedisURL    = "TREERINGS_REDIS_URL"
	EnvMongoURI    = "TREERINGS_MONGO_URI"
	EnvAddr        = "TREERINGS_ADDR"
	EnvCacheDir    = "TREERINGS_CACHE_DIR"
)

// Cache and store backends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"

	StoreMemory = "memory"
	StoreFile   = "file"
	StoreMongo  = "mongo"
)

// Config is the full configuration file.
type Config struct {
	Layout LayoutConfig `toml:"layout"`
	Render RenderConfig `toml:"render"`
	Input  InputConfig  `toml:"input"`
	Cache  CacheConfig  `toml:"cache"`
	Store  StoreConfig  `toml:"store"`
	Server ServerConfig `toml:"server"`
	GitHub GitHubConfig `toml:"github"`
}

// LayoutConfig controls the engine.
type LayoutConfig struct {
	Width       float64 `toml:"width"`
	Height      float64 `toml:"height"`
	HeightRatio float64 `toml:"pack_height_ratio"`
	MaxDepth    int     `toml:"max_depth"`
	MaxNodes    int     `toml:"max_nodes"`
	Iterations  int     `toml:"iterations"`
}

// RenderConfig controls output files.
type RenderConfig struct {
	VizType         string   `toml:"viz_type"`
	Formats         []string `toml:"formats"`
	MinCircleRadius float64  `toml:"min_circle_radius"`
	ColorEncoding   string   `toml:"color_encoding"`
	Highlight       []string `toml:"highlight"`
	ShowLabels      bool     `toml:"show_labels"`
}

// InputConfig filters revisions before layout.
type InputConfig struct {
	Exclude []string `toml:"exclude"`
}

// CacheConfig selects the result cache.
type CacheConfig struct {
	Backend  string   `toml:"backend"`
	Dir      string   `toml:"dir"`
	RedisURL string   `toml:"redis_url"`
	TTL      Duration `toml:"ttl"`
	Compress bool     `toml:"compress"`
}

// StoreConfig selects where the server keeps timelines.
type StoreConfig struct {
	Backend  string `toml:"backend"`
	Dir      string `toml:"dir"`
	MongoURI string `toml:"mongo_uri"`
	Database string `toml:"database"`
}

// ServerConfig configures `treerings serve`.
type ServerConfig struct {
	Addr           string   `toml:"addr"`
	RequestTimeout Duration `toml:"request_timeout"`
}

// GitHubConfig holds API access for `treerings fetch --github`.
type GitHubConfig struct {
	Token string `toml:"token"`
}

// Duration is a time.Duration written as a string ("90s", "168h") in TOML.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Layout: LayoutConfig{
			Width:       1000,
			Height:      1000,
			HeightRatio: 1.3,
			MaxDepth:    10,
			MaxNodes:    8000,
			Iterations:  280,
		},
		Render: RenderConfig{
			VizType:         "circles",
			Formats:         []string{"svg"},
			MinCircleRadius: 15,
			ColorEncoding:   "type",
			ShowLabels:      true,
		},
		Cache: CacheConfig{
			Backend: CacheFile,
			TTL:     Duration{7 * 24 * time.Hour},
		},
		Store: StoreConfig{
			Backend:  StoreMemory,
			Database: "treerings",
		},
		Server: ServerConfig{
			Addr:           ":8080",
			RequestTimeout: Duration{2 * time.Minute},
		},
	}
}

// Load reads path over the defaults, applies the environment and
// validates the result. An empty path reads [DefaultFile] if it exists
// and otherwise returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := cfg.decode(string(data)); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
		}
	case os.IsNotExist(err) && !explicit:
	case os.IsNotExist(err):
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
	default:
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read %s", path)
	}

	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes TOML text over the defaults without consulting the
// environment for overrides.
func Parse(text string) (*Config, error) {
	cfg := Default()
	if err := cfg.decode(text); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config")
	}
	return cfg, nil
}

// decode expands ${VAR} references and rejects unknown keys, which are
// almost always typos.
func (c *Config) decode(text string) error {
	md, err := toml.Decode(os.ExpandEnv(text), c)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return errors.New(errors.ErrCodeInvalidConfig, "unknown keys: %s", strings.Join(keys, ", "))
	}
	return nil
}

// ApplyEnv overrides file values with set environment variables.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvGitHubToken); v != "" {
		c.GitHub.Token = v
	}
	if v := os.Getenv(EnvRedisURL); v != "" {
		c.Cache.RedisURL = v
	}
	if v := os.Getenv(EnvMongoURI); v != "" {
		c.Store.MongoURI = v
	}
	if v := os.Getenv(EnvAddr); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv(EnvCacheDir); v != "" {
		c.Cache.Dir = v
	}
}

// LoadEnv loads .env files into the process environment without
// overriding variables that are already set. With no arguments it reads
// ./.env and ignores its absence.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		if _, err := os.Stat(".env"); os.IsNotExist(err) {
			return nil
		}
		files = []string{".env"}
	}
	if err := godotenv.Load(files...); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "load env")
	}
	return nil
}

// Encode writes c as TOML, used by `treerings config init`.
func (c *Config) Encode() (string, error) {
	var b strings.Builder
	if err := toml.NewEncoder(&b).Encode(c); err != nil {
		return "", err
	}
	return b.String(), nil
}
