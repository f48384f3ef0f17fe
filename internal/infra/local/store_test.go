package local

import (
	"os"
	"path/filepath"
	"testing"
)

func tempStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "store.json")
	return NewStore(path), path
}

func TestSetGetDelete(t *testing.T) {
	store, _ := tempStore(t)

	if _, ok, err := store.Get("missing"); err != nil || ok {
		t.Fatalf("get on empty store: ok=%v err=%v", ok, err)
	}

	if err := store.Set("theme", "dark"); err != nil {
		t.Fatalf("set: %v", err)
	}
	v, ok, err := store.Get("theme")
	if err != nil || !ok || v != "dark" {
		t.Fatalf("get after set: v=%q ok=%v err=%v", v, ok, err)
	}

	if err := store.Delete("theme"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := store.Get("theme"); ok {
		t.Fatal("key still present after delete")
	}
}

func TestValuesSurviveReopen(t *testing.T) {
	store, path := tempStore(t)
	if err := store.Set("uid", "abc123"); err != nil {
		t.Fatalf("set: %v", err)
	}

	reopened := NewStore(path)
	v, ok, err := reopened.Get("uid")
	if err != nil || !ok || v != "abc123" {
		t.Fatalf("get after reopen: v=%q ok=%v err=%v", v, ok, err)
	}
}

func TestMangledFileReadsAsEmpty(t *testing.T) {
	store, path := tempStore(t)
	if err := store.Set("uid", "abc123"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("corrupt file: %v", err)
	}

	if _, ok, err := store.Get("uid"); err != nil || ok {
		t.Fatalf("get on mangled store: ok=%v err=%v", ok, err)
	}

	// Writing again recovers the file.
	if err := store.Set("uid", "fresh"); err != nil {
		t.Fatalf("set after corruption: %v", err)
	}
	v, ok, _ := store.Get("uid")
	if !ok || v != "fresh" {
		t.Fatalf("get after rewrite: v=%q ok=%v", v, ok)
	}
}

func TestDeleteMissingKeyIsNoop(t *testing.T) {
	store, _ := tempStore(t)
	if err := store.Delete("never-set"); err != nil {
		t.Fatalf("delete missing key: %v", err)
	}
}
