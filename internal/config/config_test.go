package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/navtree/pkg/errors"
	"github.com/matzehuels/navtree/pkg/store"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv(EnvURL, "")
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	def := Default()
	if cfg.Client != def.Client {
		t.Errorf("client = %+v, want %+v", cfg.Client, def.Client)
	}
	if cfg.Server.Addr != DefaultAddr || cfg.Server.Backend != store.BackendFile {
		t.Errorf("server = %+v", cfg.Server)
	}
}

func TestLoadFile(t *testing.T) {
	t.Setenv(EnvURL, "")
	path := writeConfig(t, `
[client]
url = "http://dash.example:8480"
timeout = "3s"
settle_delay = "250ms"
retries = 5

[server]
addr = ":9000"
backend = "redis"
data_dir = "/var/lib/navtree"

[server.redis]
addr = "localhost:6379"
db = 2
prefix = "dash:"

[server.mongo]
uri = "mongodb://localhost"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	want := Client{URL: "http://dash.example:8480", Timeout: 3 * time.Second, SettleDelay: 250 * time.Millisecond, Retries: 5}
	if cfg.Client != want {
		t.Errorf("client = %+v, want %+v", cfg.Client, want)
	}

	sc := cfg.Server.StoreConfig()
	if sc.Backend != "redis" || sc.Dir != "/var/lib/navtree" || sc.RedisAddr != "localhost:6379" ||
		sc.RedisDB != 2 || sc.RedisPrefix != "dash:" || sc.MongoURI != "mongodb://localhost" {
		t.Errorf("StoreConfig() = %+v", sc)
	}
	if len(cfg.Undecoded) != 0 {
		t.Errorf("Undecoded = %v", cfg.Undecoded)
	}
}

func TestLoadUndecoded(t *testing.T) {
	t.Setenv(EnvURL, "")
	cfg, err := Load(writeConfig(t, "[client]\nurl = \"http://x\"\ncolour = \"blue\"\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Undecoded) != 1 || cfg.Undecoded[0] != "client.colour" {
		t.Errorf("Undecoded = %v", cfg.Undecoded)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv(EnvURL, "http://env:1")
	cfg, err := Load(writeConfig(t, "[client]\nurl = \"http://file:1\"\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Client.URL != "http://env:1" {
		t.Errorf("URL = %q, want env override", cfg.Client.URL)
	}
}

func TestLoadDefaultPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv(EnvURL, "")

	path, err := Path()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, "navtree", "config.toml"); path != want {
		t.Fatalf("Path() = %q, want %q", path, want)
	}

	cfg := Default()
	cfg.Client.URL = "http://saved:1"
	if err := cfg.Write(path); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Client != cfg.Client || got.Server.Addr != cfg.Server.Addr {
		t.Errorf("round trip: got %+v, want %+v", got.Client, cfg.Client)
	}
}

func TestLoadErrors(t *testing.T) {
	t.Setenv(EnvURL, "")
	tests := []struct {
		name string
		body string
		code errors.Code
	}{
		{"syntax", "[client\n", errors.ErrCodeInvalidFormat},
		{"bad duration", "[client]\ntimeout = \"soon\"\n", errors.ErrCodeInvalidFormat},
		{"retries", "[client]\nretries = 0\n", errors.ErrCodeInvalidInput},
		{"negative delay", "[client]\nsettle_delay = \"-1s\"\n", errors.ErrCodeInvalidInput},
		{"backend", "[server]\nbackend = \"etcd\"\n", errors.ErrCodeUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if !errors.Is(err, tt.code) {
				t.Errorf("Load() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	if got := expandHome("~/data"); got != filepath.Join(home, "data") {
		t.Errorf("expandHome(~/data) = %q", got)
	}
	if got := expandHome("/abs"); got != "/abs" {
		t.Errorf("expandHome(/abs) = %q", got)
	}
}
