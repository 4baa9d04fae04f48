package ffprobe_test

import (
	"context"
	"errors"
	"testing"

	"storyreel/internal/media/ffprobe"
)

func TestInspectParsesDuration(t *testing.T) {
	fake := func(ctx context.Context, name string, args ...string) ([]byte, error) {
		if name != "ffprobe" {
			t.Fatalf("unexpected binary %q", name)
		}
		return []byte(`{"format":{"filename":"scene_01.wav","duration":"4.180000","format_name":"wav"}}`), nil
	}

	result, err := ffprobe.InspectWith(context.Background(), fake, "", "scene_01.wav")
	if err != nil {
		t.Fatalf("InspectWith: %v", err)
	}
	if got := result.DurationSeconds(); got != 4.18 {
		t.Fatalf("DurationSeconds = %v, want 4.18", got)
	}
}

func TestInspectEmptyPath(t *testing.T) {
	_, err := ffprobe.Inspect(context.Background(), "ffprobe", "")
	if err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestInspectPropagatesRunnerError(t *testing.T) {
	fail := errors.New("exit status 1")
	fake := func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return nil, fail
	}
	_, err := ffprobe.InspectWith(context.Background(), fake, "ffprobe", "missing.wav")
	if !errors.Is(err, fail) {
		t.Fatalf("expected wrapped runner error, got %v", err)
	}
}

func TestDurationSecondsMissing(t *testing.T) {
	var result ffprobe.Result
	if got := result.DurationSeconds(); got != 0 {
		t.Fatalf("DurationSeconds = %v, want 0", got)
	}
}
