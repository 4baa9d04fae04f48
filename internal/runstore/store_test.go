package runstore

import (
	"context"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestInitScenesResetsRows(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.InitScenes(ctx, []int{1, 2, 3}); err != nil {
		t.Fatalf("InitScenes failed: %v", err)
	}
	if err := store.SceneDone(ctx, 2, "ken_burns", "out/scene_02.mp4"); err != nil {
		t.Fatalf("SceneDone failed: %v", err)
	}

	// Re-init with a different scene set drops stale rows and state.
	if err := store.InitScenes(ctx, []int{1, 2}); err != nil {
		t.Fatalf("InitScenes failed: %v", err)
	}
	records, err := store.Records(ctx)
	if err != nil {
		t.Fatalf("Records failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	for _, rec := range records {
		if rec.Status != StatusPending {
			t.Fatalf("scene %d not reset to pending: %s", rec.SceneID, rec.Status)
		}
	}
}

func TestSceneTransitions(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.InitScenes(ctx, []int{1, 2, 3, 4}); err != nil {
		t.Fatalf("InitScenes failed: %v", err)
	}
	if err := store.SceneRendering(ctx, 1); err != nil {
		t.Fatalf("SceneRendering failed: %v", err)
	}
	if err := store.SceneDone(ctx, 1, "slide_pan", "out/scene_01.mp4"); err != nil {
		t.Fatalf("SceneDone failed: %v", err)
	}
	if err := store.SceneFailed(ctx, 2, "ken_burns", "filter graph rejected"); err != nil {
		t.Fatalf("SceneFailed failed: %v", err)
	}
	if err := store.SceneSkipped(ctx, 3, "missing image"); err != nil {
		t.Fatalf("SceneSkipped failed: %v", err)
	}

	records, err := store.Records(ctx)
	if err != nil {
		t.Fatalf("Records failed: %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("expected 4 records, got %d", len(records))
	}
	if records[0].Status != StatusDone || records[0].Effect != "slide_pan" || records[0].Output != "out/scene_01.mp4" {
		t.Fatalf("unexpected scene 1 record %+v", records[0])
	}
	if records[1].Status != StatusFailed || records[1].Detail != "filter graph rejected" {
		t.Fatalf("unexpected scene 2 record %+v", records[1])
	}
	if records[2].Status != StatusSkipped || records[2].Detail != "missing image" {
		t.Fatalf("unexpected scene 3 record %+v", records[2])
	}
	if records[3].Status != StatusPending {
		t.Fatalf("unexpected scene 4 record %+v", records[3])
	}

	counts, err := store.Counts(ctx)
	if err != nil {
		t.Fatalf("Counts failed: %v", err)
	}
	want := map[Status]int{StatusDone: 1, StatusFailed: 1, StatusSkipped: 1, StatusPending: 1}
	for status, n := range want {
		if counts[status] != n {
			t.Fatalf("expected %d %s scenes, got %d", n, status, counts[status])
		}
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	store, err := Open(dir)
	if err != nil {
		t.Fatalf("first Open failed: %v", err)
	}
	if err := store.InitScenes(context.Background(), []int{1}); err != nil {
		t.Fatalf("InitScenes failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := Open(dir)
	if err != nil {
		t.Fatalf("second Open failed: %v", err)
	}
	defer reopened.Close()
	records, err := reopened.Records(context.Background())
	if err != nil {
		t.Fatalf("Records failed: %v", err)
	}
	if len(records) != 1 || records[0].SceneID != 1 {
		t.Fatalf("state not persisted across reopen: %+v", records)
	}
}
