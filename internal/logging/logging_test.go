package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestSetupWritesJSONWithService(t *testing.T) {
	var buf bytes.Buffer
	Setup(&buf, "debug", false)
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	log.Debug().Str("k", "v").Msg("hello")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not json: %v (%q)", err, buf.String())
	}
	if entry["service"] != "galconsole" {
		t.Errorf("service = %v", entry["service"])
	}
	if entry["message"] != "hello" || entry["k"] != "v" {
		t.Errorf("unexpected entry %v", entry)
	}
}

func TestSetupUnknownLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	Setup(&buf, "chatty", false)
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	log.Debug().Msg("hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug line written at info level: %q", buf.String())
	}
	log.Info().Msg("shown")
	if buf.Len() == 0 {
		t.Fatal("info line missing")
	}
}
