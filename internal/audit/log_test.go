package audit

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"userhub.org/internal/obs"
)

func TestLogEventIncludesRequestContext(t *testing.T) {
	core, recorded := observer.New(zap.InfoLevel)
	obs.SetLogger(zap.New(core))
	defer obs.SetLogger(nil)

	ctx := WithRequestID(context.Background(), "req-123")
	if err := LogEvent(ctx, "user.registered", map[string]any{"email": "john@example.com"}); err != nil {
		t.Fatalf("LogEvent: %v", err)
	}

	entries := recorded.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	entry := entries[0]
	if entry.Message != "user.registered" {
		t.Fatalf("unexpected message: %s", entry.Message)
	}
	fields := entry.ContextMap()
	if fields["type"] != "audit" {
		t.Fatalf("expected audit type, got %v", fields["type"])
	}
	if fields["request_id"] != "req-123" {
		t.Fatalf("expected request id, got %v", fields["request_id"])
	}
}

func TestLogEventRejectsEmptyEvent(t *testing.T) {
	if err := LogEvent(context.Background(), "  ", nil); err == nil {
		t.Fatal("expected error for empty event name")
	}
}

func TestWithRequestIDIgnoresBlank(t *testing.T) {
	ctx := context.Background()
	if got := WithRequestID(ctx, "   "); got != ctx {
		t.Fatal("expected unchanged context for blank request id")
	}
}
