package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestProbeFakeBoard(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCommand(&out)
	cmd.SetArgs([]string{"--fake", "--log-level", "error"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("probe: %v\n%s", err, out.String())
	}
	for _, want := range []string{
		"controller I2C1",
		"addr=0x46 speed=standard sharing=exclusive",
		"inertial   0x6a,0x1c ready=true",
		"pressure   0x5c ready=true",
		"humidity   0x5f ready=true",
		"fusion     rtqf",
	} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestProbeReportsMissingController(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCommand(&out)
	cmd.SetArgs([]string{"--fake", "--controller", "I2C7", "--log-level", "error"})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected failure")
	}
	if !strings.Contains(out.String(), "bring-up failed: device_not_found") {
		t.Fatalf("output:\n%s", out.String())
	}
}

func TestResolveConfigPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "probe.yaml")
	if err := os.WriteFile(path, []byte("controller: I2C0\nlog_level: warn\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(envConfig, path)
	t.Setenv(envLogLevel, "debug")

	cfg, err := resolveConfig(probeFlags{})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cfg.Controller != "I2C0" || cfg.LogLevel != "debug" || cfg.Mode != "sequential" {
		t.Fatalf("env layer: %+v", cfg)
	}

	cfg, err = resolveConfig(probeFlags{controller: "I2C1", logLevel: "error", concurrent: true})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cfg.Controller != "I2C1" || cfg.LogLevel != "error" || cfg.Mode != "concurrent" {
		t.Fatalf("flag layer: %+v", cfg)
	}

	if _, err := resolveConfig(probeFlags{logLevel: "loud"}); err == nil {
		t.Fatal("expected invalid level to be rejected")
	}
}
