package logger

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

func TestLoggerErrorIncludesContextFields(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "test", Level: ParseLevel("debug"), Output: buf})

	ctx := context.Background()
	ctx = log.WithRequestID(ctx, "req-123")

	log.Error(ctx, "boom", errors.New("boom"))

	if !bytes.Contains(buf.Bytes(), []byte("\"request_id\"")) {
		t.Fatalf("expected request_id to be preserved; entry=%s", buf.String())
	}
}

func TestLoggerWithFieldsAccumulates(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "test", Level: ParseLevel("debug"), Output: buf})

	ctx := log.WithFields(context.Background(), map[string]any{"op": "add_item"})
	ctx = log.WithFields(ctx, map[string]any{"attempt": 2})
	log.Warn(ctx, "write conflict")

	out := buf.Bytes()
	if !bytes.Contains(out, []byte("\"op\":\"add_item\"")) {
		t.Fatalf("expected op field; entry=%s", out)
	}
	if !bytes.Contains(out, []byte("\"attempt\":2")) {
		t.Fatalf("expected attempt field; entry=%s", out)
	}
}

func TestParseLevelDefaults(t *testing.T) {
	if lvl := ParseLevel(""); lvl != zerolog.InfoLevel {
		t.Fatalf("expected default info level, got %v", lvl)
	}
	if lvl := ParseLevel("invalid"); lvl != zerolog.InfoLevel {
		t.Fatalf("invalid level should fallback to info, got %v", lvl)
	}
	if lvl := ParseLevel("WARN"); lvl != zerolog.WarnLevel {
		t.Fatalf("expected warn level, got %v", lvl)
	}
}
