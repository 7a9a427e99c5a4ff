package cmd

import (
	"testing"

	"github.com/atomicstack/cmdpalette/internal/app"
	"github.com/atomicstack/cmdpalette/internal/config"
)

func TestCollectTTYDetailsIncludesStandardDescriptors(t *testing.T) {
	info := collectTTYDetails()
	if len(info.Probes) != 3 {
		t.Fatalf("expected 3 probe entries, got %d", len(info.Probes))
	}
	for i, name := range []string{"stdin", "stdout", "stderr"} {
		if info.Probes[i].Name != name {
			t.Fatalf("expected probe %d name %q, got %q", i, name, info.Probes[i].Name)
		}
	}
}

func TestStartupTracePayloadIncludesFlags(t *testing.T) {
	cfg := config.Config{
		App: app.Config{
			CatalogPath: "catalog.yaml",
			Width:       80,
			Height:      24,
			ShowFooter:  true,
		},
		Logging: config.Logging{
			FilePath: "trace.log",
			Trace:    true,
			Verbose:  true,
		},
		Flags: map[string]string{
			"catalog": "catalog.yaml",
			"width":   "80",
			"footer":  "true",
			"verbose": "true",
		},
		Args: []string{"extra"},
	}

	payload := startupTracePayload(cfg)

	flags, ok := payload["flags"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected flags map in payload")
	}
	if flags["catalog"] != "catalog.yaml" || flags["width"] != "80" || flags["verbose"] != "true" {
		t.Fatalf("unexpected flags %#v", flags)
	}
	if flags["trace"] != true {
		t.Fatalf("expected trace flag true, got %v", flags["trace"])
	}
	if flags["logFile"] != "trace.log" {
		t.Fatalf("expected log file trace.log, got %v", flags["logFile"])
	}
	if _, ok := payload["tty"].(ttyDetails); !ok {
		t.Fatalf("expected tty details in payload")
	}
	got, ok := payload["config"].(config.Config)
	if !ok {
		t.Fatalf("expected config in payload")
	}
	if got.App.CatalogPath != "catalog.yaml" || got.App.Width != 80 || !got.App.ShowFooter {
		t.Fatalf("expected app config to be carried, got %#v", got.App)
	}
}
