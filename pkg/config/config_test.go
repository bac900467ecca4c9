package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/treerings/pkg/errors"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestLoad(t *testing.T) {
	t.Setenv("TR_TEST_DIR", "/tmp/rings")
	path := writeFile(t, "treerings.toml", `
[layout]
max_depth = 3
iterations = 100

[render]
formats = ["svg", "png"]
color_encoding = "number-of-changes"
highlight = ["src/main.go"]

[input]
exclude = ["**/node_modules/**", "*.lock"]

[cache]
dir = "${TR_TEST_DIR}/cache"
ttl = "36h"
compress = true
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Layout.MaxDepth != 3 || cfg.Layout.Iterations != 100 {
		t.Errorf("layout = %+v", cfg.Layout)
	}
	if cfg.Layout.MaxNodes != 8000 || cfg.Layout.Width != 1000 {
		t.Errorf("unset layout keys should keep defaults: %+v", cfg.Layout)
	}
	if len(cfg.Render.Formats) != 2 || cfg.Render.ColorEncoding != "number-of-changes" {
		t.Errorf("render = %+v", cfg.Render)
	}
	if cfg.Cache.Dir != "/tmp/rings/cache" {
		t.Errorf("env expansion: dir = %q", cfg.Cache.Dir)
	}
	if cfg.Cache.TTL.Duration != 36*time.Hour || !cfg.Cache.Compress {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if len(cfg.Input.Exclude) != 2 {
		t.Errorf("exclude = %v", cfg.Input.Exclude)
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("explicit missing file: %v", err)
	}

	// without a path, a missing default file yields the defaults
	t.Chdir(t.TempDir())
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\"): %v", err)
	}
	if cfg.Layout.Iterations != 280 {
		t.Errorf("expected defaults, got %+v", cfg.Layout)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv(EnvRedisURL, "redis://env:6379/0")
	t.Setenv(EnvGitHubToken, "from-env")
	path := writeFile(t, "c.toml", `
[cache]
backend = "redis"
redis_url = "redis://file:6379/0"

[github]
token = "from-file"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Cache.RedisURL != "redis://env:6379/0" {
		t.Errorf("redis_url = %q, env should win", cfg.Cache.RedisURL)
	}
	if cfg.GitHub.Token != "from-env" {
		t.Errorf("token = %q, env should win", cfg.GitHub.Token)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		toml string
	}{
		{"syntax", "[layout\nmax_depth = 3"},
		{"unknown key", "[layout]\nmax_dept = 3"},
		{"unknown section", "[colors]\nx = 1"},
		{"bad duration", "[cache]\nttl = \"soon\""},
		{"wrong type", "[layout]\nmax_depth = \"deep\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.toml)
			if !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("expected INVALID_CONFIG, got %v", err)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		section string
	}{
		{"zero width", func(c *Config) { c.Layout.Width = 0 }, "[layout]"},
		{"negative depth", func(c *Config) { c.Layout.MaxDepth = -1 }, "[layout]"},
		{"viz type", func(c *Config) { c.Render.VizType = "tower" }, "[render]"},
		{"format", func(c *Config) { c.Render.Formats = []string{"gif"} }, "[render]"},
		{"encoding", func(c *Config) { c.Render.ColorEncoding = "rainbow" }, "[render]"},
		{"glob", func(c *Config) { c.Input.Exclude = []string{"[unclosed"} }, "[input]"},
		{"cache backend", func(c *Config) { c.Cache.Backend = "memcached" }, "[cache]"},
		{"redis without url", func(c *Config) { c.Cache.Backend = CacheRedis }, "[cache]"},
		{"negative ttl", func(c *Config) { c.Cache.TTL = Duration{-time.Hour} }, "[cache]"},
		{"mongo without uri", func(c *Config) { c.Store.Backend = StoreMongo }, "[store]"},
		{"empty addr", func(c *Config) { c.Server.Addr = "" }, "[server]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Fatalf("expected INVALID_CONFIG, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.section) {
				t.Errorf("error %q should name section %s", err, tt.section)
			}
		})
	}
}

func TestLoadEnv(t *testing.T) {
	path := writeFile(t, ".env", "TREERINGS_TEST_SECRET=abc\n")
	t.Setenv("TREERINGS_TEST_SECRET", "")
	os.Unsetenv("TREERINGS_TEST_SECRET")

	if err := LoadEnv(path); err != nil {
		t.Fatalf("LoadEnv: %v", err)
	}
	if got := os.Getenv("TREERINGS_TEST_SECRET"); got != "abc" {
		t.Errorf("TREERINGS_TEST_SECRET = %q", got)
	}

	if err := LoadEnv(filepath.Join(t.TempDir(), "missing.env")); err == nil {
		t.Error("explicit missing .env should fail")
	}

	t.Chdir(t.TempDir())
	if err := LoadEnv(); err != nil {
		t.Errorf("implicit missing .env should be ignored: %v", err)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	text, err := Default().Encode()
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := Parse(text)
	if err != nil {
		t.Fatalf("Parse(Encode()): %v\n%s", err, text)
	}
	if cfg.Cache.TTL != Default().Cache.TTL || cfg.Server.Addr != ":8080" {
		t.Errorf("round trip changed values: %+v", cfg)
	}
}
