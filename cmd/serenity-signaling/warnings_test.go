package main

import (
	"context"
	"log/slog"
	"testing"

	"github.com/serenityapp/signaling/internal/config"
)

type recordedLog struct {
	level slog.Level
	msg   string
	attrs map[string]any
}

type recordingHandler struct {
	records *[]recordedLog
}

func newRecordingLogger() (*slog.Logger, *[]recordedLog) {
	records := &[]recordedLog{}
	return slog.New(&recordingHandler{records: records}), records
}

func (h *recordingHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *recordingHandler) Handle(_ context.Context, r slog.Record) error {
	rec := recordedLog{level: r.Level, msg: r.Message, attrs: map[string]any{}}
	r.Attrs(func(a slog.Attr) bool {
		rec.attrs[a.Key] = a.Value.Any()
		return true
	})
	*h.records = append(*h.records, rec)
	return nil
}

func (h *recordingHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *recordingHandler) WithGroup(string) slog.Handler      { return h }

func warningCodes(records []recordedLog) []string {
	var codes []string
	for _, r := range records {
		if r.level != slog.LevelWarn {
			continue
		}
		if code, ok := r.attrs["warning_code"].(string); ok {
			codes = append(codes, code)
		}
	}
	return codes
}

func containsCode(codes []string, want string) bool {
	for _, c := range codes {
		if c == want {
			return true
		}
	}
	return false
}

func TestStartupWarnings_WildcardOrigins(t *testing.T) {
	logger, records := newRecordingLogger()

	cfg := config.Config{
		Mode:           config.ModeDev,
		AllowedOrigins: []string{"*"},
	}
	logStartupWarnings(logger, cfg)

	if !containsCode(warningCodes(*records), "allowed_origins_wildcard") {
		t.Fatalf("expected allowed_origins_wildcard, got %#v", *records)
	}
}

func TestStartupWarnings_CleanConfigIsQuiet(t *testing.T) {
	logger, records := newRecordingLogger()

	cfg, err := config.Load(nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	logStartupWarnings(logger, cfg)

	if codes := warningCodes(*records); len(codes) != 0 {
		t.Fatalf("default config should warn nothing, got %v", codes)
	}
}
