package store

import (
	"os"
	"path/filepath"
	"testing"
)

func TestStorePersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "store.json")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := s.Get("requestTemplate"); ok {
		t.Fatal("expected empty store")
	}
	tpl := "export const getX = (p: XReq) => Api.get<XRes>('/x', p)\n"
	if err := s.Set("requestTemplate", tpl); err != nil {
		t.Fatalf("set: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	got, ok := reopened.Get("requestTemplate")
	if !ok || got != tpl {
		t.Errorf("expected %q, got %q (present=%v)", tpl, got, ok)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("temp file should have been renamed away")
	}
}

func TestStoreOverwriteAndDelete(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	s, _ := Open(path)

	_ = s.Set("k", "one")
	_ = s.Set("k", "two")
	if v, _ := s.Get("k"); v != "two" {
		t.Errorf("expected single active value %q, got %q", "two", v)
	}

	if err := s.Delete("k"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.Delete("k"); err != nil {
		t.Fatalf("deleting an absent key should not fail: %v", err)
	}
	reopened, _ := Open(path)
	if _, ok := reopened.Get("k"); ok {
		t.Error("expected key to be gone after reopen")
	}
}

func TestStoreInMemory(t *testing.T) {
	s, err := Open("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.Set("k", "v"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if v, ok := s.Get("k"); !ok || v != "v" {
		t.Errorf("expected v, got %q", v)
	}
}

func TestOpenRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(path); err == nil {
		t.Error("expected decode error")
	}
}
