package services_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"storyreel/internal/services"
)

func TestWrapTagsMarker(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "render", "run ffmpeg", "effect failed", base)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected ErrExternalTool marker, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatal("expected wrapped cause to survive")
	}
	for _, fragment := range []string{"render", "run ffmpeg", "effect failed"} {
		if !strings.Contains(err.Error(), fragment) {
			t.Fatalf("error %q missing fragment %q", err, fragment)
		}
	}
}

func TestWrapNilMarkerDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "audio", "synthesize", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected ErrTransient fallback, got %v", err)
	}
}

func TestIsFatal(t *testing.T) {
	cases := []struct {
		err   error
		fatal bool
	}{
		{services.Wrap(services.ErrNotFound, "analyze", "load script", "", nil), true},
		{services.Wrap(services.ErrConfiguration, "analyze", "api key", "", nil), true},
		{services.Wrap(services.ErrExternalTool, "render", "ffmpeg", "", nil), false},
		{services.Wrap(services.ErrTransient, "audio", "tts", "", nil), false},
	}
	for _, tc := range cases {
		if got := services.IsFatal(tc.err); got != tc.fatal {
			t.Errorf("IsFatal(%v) = %v, want %v", tc.err, got, tc.fatal)
		}
	}
}

func TestContextHelpers(t *testing.T) {
	ctx := services.WithSceneID(context.Background(), 7)
	ctx = services.WithStage(ctx, "render")
	ctx = services.WithRequestID(ctx, "req-42")

	if id, ok := services.SceneIDFromContext(ctx); !ok || id != 7 {
		t.Fatalf("unexpected scene id: %v %v", id, ok)
	}
	if stage, ok := services.StageFromContext(ctx); !ok || stage != "render" {
		t.Fatalf("unexpected stage: %v %v", stage, ok)
	}
	if rid, ok := services.RequestIDFromContext(ctx); !ok || rid != "req-42" {
		t.Fatalf("unexpected request id: %v %v", rid, ok)
	}
}
