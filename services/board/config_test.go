package board

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"sensehat-go/services/board/platform"
	"sensehat-go/types"
)

func TestParseConfigOverDefaults(t *testing.T) {
	cfg, err := ParseConfig([]byte("controller: I2C1\nmode: concurrent\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := Config{Selector: "i2c", Controller: "I2C1", Mode: "concurrent", LogLevel: "info"}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestParseConfigRejects(t *testing.T) {
	for name, raw := range map[string]string{
		"mode":     "mode: parallel\n",
		"level":    "log_level: trace\n",
		"selector": "selector: \"\"\n",
		"yaml":     "mode: [\n",
	} {
		if _, err := ParseConfig([]byte(raw)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("empty path: %v", err)
	}
	if diff := cmp.Diff(DefaultConfig(), cfg); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}

	path := filepath.Join(t.TempDir(), "sensehat.yaml")
	if err := os.WriteFile(path, []byte("log_level: debug\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err = LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LogLevel != "debug" || cfg.Mode != "sequential" {
		t.Fatalf("loaded %+v", cfg)
	}

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestWithConfigAppliesToProvider(t *testing.T) {
	cfg := Config{Selector: "i2c", Controller: "I2C3", Mode: "concurrent"}
	p := NewProvider(WithTransport(platform.NewFakeTransport("I2C1")), WithConfig(cfg))
	if p.mode != Concurrent || p.selector != "i2c" {
		t.Fatalf("mode=%v selector=%q", p.mode, p.selector)
	}
	if id, err := p.sel([]types.ControllerID{"I2C1", "I2C3"}); err != nil || id != "I2C3" {
		t.Fatalf("selector picked %q, %v", id, err)
	}
}
