package telemetry

import (
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestInfoWritesFields(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	prev := L()
	SetLogger(zap.New(core))
	t.Cleanup(func() { SetLogger(prev) })

	Info("resume.created", map[string]any{"userId": int64(7), "resumeId": int64(3)})
	Error("resume.failed", map[string]any{"err": errors.New("boom")})

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	ctx := entries[0].ContextMap()
	if ctx["userId"] != int64(7) || ctx["resumeId"] != int64(3) {
		t.Fatalf("unexpected fields: %v", ctx)
	}
	if entries[1].ContextMap()["err"] != "boom" {
		t.Fatalf("expected err field, got %v", entries[1].ContextMap())
	}
}

func TestInitFallsBackToInfo(t *testing.T) {
	prev := L()
	t.Cleanup(func() { SetLogger(prev) })
	Init("not-a-level", "dev")
	if L().Core().Enabled(zap.DebugLevel) {
		t.Fatalf("debug should be disabled when the level is unparseable")
	}
}
