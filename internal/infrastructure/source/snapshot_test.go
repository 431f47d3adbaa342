package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeSnapshot(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "snapshot.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write snapshot: %v", err)
	}
	return path
}

const twoStudies = `
{"count": 2, "studies": [
  {"protocolSection": {"identificationModule": {"nctId": "NCT001", "briefTitle": "First"}}},
  {"protocolSection": {"identificationModule": {"nctId": "NCT002", "briefTitle": "Second"}}, "hasResults": true}
]}`

func TestLoadSnapshotEnvelope(t *testing.T) {
	t.Parallel()

	src := NewSnapshotSource(writeSnapshot(t, twoStudies), nil)
	studies, err := src.LoadSnapshot(context.Background())
	if err != nil {
		t.Fatalf("LoadSnapshot error: %v", err)
	}

	if len(studies) != 2 {
		t.Fatalf("expected 2 studies, got %d", len(studies))
	}
	if studies[0].ProtocolSection.Identification.NCTID != "NCT001" {
		t.Fatalf("unexpected first record: %+v", studies[0])
	}
	if !studies[1].HasResults {
		t.Fatal("hasResults not decoded")
	}
}

func TestLoadSnapshotBareArray(t *testing.T) {
	t.Parallel()

	src := NewSnapshotSource(writeSnapshot(t, `[{"protocolSection": {"identificationModule": {"nctId": "NCT001"}}}]`), nil)
	studies, err := src.LoadSnapshot(context.Background())
	if err != nil {
		t.Fatalf("LoadSnapshot error: %v", err)
	}
	if len(studies) != 1 {
		t.Fatalf("expected 1 study, got %d", len(studies))
	}
}

func TestLoadSnapshotMissingFile(t *testing.T) {
	t.Parallel()

	src := NewSnapshotSource(filepath.Join(t.TempDir(), "absent.json"), nil)
	if _, err := src.LoadSnapshot(context.Background()); err == nil {
		t.Fatal("expected error for a missing file")
	}
}

func TestLoadSnapshotNoStudiesKey(t *testing.T) {
	t.Parallel()

	src := NewSnapshotSource(writeSnapshot(t, `{"count": 0}`), nil)
	if _, err := src.LoadSnapshot(context.Background()); err == nil {
		t.Fatal("expected error when the studies array is absent")
	}
}

func TestLoadSnapshotCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := NewSnapshotSource(writeSnapshot(t, twoStudies), nil)
	if _, err := src.LoadSnapshot(ctx); err == nil {
		t.Fatal("expected cancellation error")
	}
}
