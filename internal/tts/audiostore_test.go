package tts

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func newTestStore(t *testing.T, maxFiles int, retention time.Duration) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir(), maxFiles, retention)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	return store
}

func TestStoreSaveAndDelete(t *testing.T) {
	store := newTestStore(t, 10, time.Hour)

	name, err := store.Save([]byte("mp3-data"), "mp3")
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if !strings.HasPrefix(name, "ava_speech_") || !strings.HasSuffix(name, ".mp3") {
		t.Errorf("Unexpected filename %q", name)
	}

	data, err := os.ReadFile(filepath.Join(store.Dir(), name))
	if err != nil || string(data) != "mp3-data" {
		t.Errorf("Saved file unreadable or wrong: %v %q", err, data)
	}

	if err := store.Delete(name); err != nil {
		t.Errorf("Delete failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(store.Dir(), name)); !os.IsNotExist(err) {
		t.Errorf("File should be gone after delete")
	}
}

func TestStoreDeleteRejectsUnmanagedNames(t *testing.T) {
	store := newTestStore(t, 10, time.Hour)

	for _, name := range []string{
		"other.mp3",
		"../ava_speech_1.mp3",
		"ava_speech_..mp3/../../etc/passwd",
	} {
		if err := store.Delete(name); !errors.Is(err, ErrNotManaged) {
			t.Errorf("Delete(%q): expected ErrNotManaged, got %v", name, err)
		}
	}
}

func TestStoreCleanupKeepsNewest(t *testing.T) {
	store := newTestStore(t, 2, 0)

	var names []string
	for i := 0; i < 4; i++ {
		name, err := store.Save([]byte("x"), "mp3")
		if err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		names = append(names, name)
		// Distinct mtimes so ordering is deterministic.
		older := time.Now().Add(time.Duration(i-4) * time.Minute)
		if err := os.Chtimes(filepath.Join(store.Dir(), name), older, older); err != nil {
			t.Fatalf("Chtimes failed: %v", err)
		}
	}

	removed, err := store.Cleanup()
	if err != nil {
		t.Fatalf("Cleanup failed: %v", err)
	}
	if removed != 2 {
		t.Errorf("Expected 2 files removed, got %d", removed)
	}

	// The two newest (highest i) must remain.
	for i, name := range names {
		_, statErr := os.Stat(filepath.Join(store.Dir(), name))
		if i < 2 && !os.IsNotExist(statErr) {
			t.Errorf("Old file %q should be removed", name)
		}
		if i >= 2 && statErr != nil {
			t.Errorf("New file %q should survive: %v", name, statErr)
		}
	}
}

func TestStoreCleanupDropsExpired(t *testing.T) {
	store := newTestStore(t, 10, time.Hour)

	name, err := store.Save([]byte("x"), "mp3")
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	stale := time.Now().Add(-2 * time.Hour)
	if err := os.Chtimes(filepath.Join(store.Dir(), name), stale, stale); err != nil {
		t.Fatalf("Chtimes failed: %v", err)
	}

	removed, err := store.Cleanup()
	if err != nil {
		t.Fatalf("Cleanup failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("Expected expired file removed, got %d", removed)
	}
}

func TestStoreCleanupIgnoresForeignFiles(t *testing.T) {
	store := newTestStore(t, 1, 0)

	foreign := filepath.Join(store.Dir(), "keepme.txt")
	if err := os.WriteFile(foreign, []byte("notes"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	if _, err := store.Cleanup(); err != nil {
		t.Fatalf("Cleanup failed: %v", err)
	}
	if _, err := os.Stat(foreign); err != nil {
		t.Errorf("Cleanup must not touch foreign files: %v", err)
	}
}
