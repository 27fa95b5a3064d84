package backup

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeDoc(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestService(t *testing.T) (*Service, string) {
	t.Helper()
	docDir := t.TempDir()
	users := writeDoc(t, docDir, "user_data.json", `{"users":[]}`)
	videos := writeDoc(t, docDir, "videos.json", `{"videos":[],"next_id":5}`)

	storage, err := NewFileStorage(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return NewService(storage, []string{users, videos, filepath.Join(docDir, "missing.json")}, "test"), docDir
}

func TestCreateAndRestoreBackup(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	name, err := svc.CreateBackup(ctx)
	if err != nil {
		t.Fatalf("CreateBackup() error: %v", err)
	}

	snapshot, err := svc.RestoreBackup(ctx, name)
	if err != nil {
		t.Fatalf("RestoreBackup() error: %v", err)
	}

	if snapshot.Version != "test" {
		t.Errorf("version = %q, want test", snapshot.Version)
	}
	if got := string(snapshot.Documents["videos.json"]); got != `{"videos":[],"next_id":5}` {
		t.Errorf("videos document = %s", got)
	}
	// Missing files are skipped, not recorded.
	if _, ok := snapshot.Documents["missing.json"]; ok {
		t.Error("missing document should be absent from snapshot")
	}
}

func TestCreateBackup_SkipsCorruptDocument(t *testing.T) {
	docDir := t.TempDir()
	corrupt := writeDoc(t, docDir, "user_data.json", `{"users":`)

	storage, err := NewFileStorage(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	svc := NewService(storage, []string{corrupt}, "test")

	name, err := svc.CreateBackup(context.Background())
	if err != nil {
		t.Fatalf("CreateBackup() error: %v", err)
	}
	snapshot, err := svc.RestoreBackup(context.Background(), name)
	if err != nil {
		t.Fatal(err)
	}
	if len(snapshot.Documents) != 0 {
		t.Errorf("documents = %v, want none for corrupt input", snapshot.Documents)
	}
}

func TestPrune_KeepsNewest(t *testing.T) {
	storage, err := NewFileStorage(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	svc := NewService(storage, nil, "test")
	ctx := context.Background()

	// Names sort chronologically, so fixed names stand in for timestamps.
	for _, name := range []string{"backup-a.json", "backup-b.json", "backup-c.json"} {
		if err := storage.Save(ctx, name, strings.NewReader("{}")); err != nil {
			t.Fatal(err)
		}
	}

	names, err := svc.ListBackups(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 3 {
		t.Fatalf("backups = %d, want 3", len(names))
	}

	if err := svc.Prune(ctx, 1); err != nil {
		t.Fatalf("Prune() error: %v", err)
	}
	names, err = svc.ListBackups(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 1 || names[0] != "backup-c.json" {
		t.Errorf("remaining backups = %v, want only backup-c.json", names)
	}
}
