package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestSetupInvalidLevel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Level = "verbose"
	if err := Setup(cfg); err == nil {
		t.Error("Setup() accepted an unknown level")
	}
}

func TestSetupFileOutput(t *testing.T) {
	previous, level := log.Logger, zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = previous
		zerolog.SetGlobalLevel(level)
	})

	path := filepath.Join(t.TempDir(), "scan.log")
	if err := Setup(LogConfig{Level: "debug", Format: "json", Output: path}); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}

	l := WithComponent("reconcile")
	l.Debug().Str("file", "a.xml").Msg("Parsed invoice")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`"component":"reconcile"`, `"file":"a.xml"`, `"message":"Parsed invoice"`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("log line %s missing %s", data, want)
		}
	}
}
