package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}

func TestReloadCachePopulatesEntries(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "heal.cheat", "/heal\n")
	writeFile(t, dir, "buff.cheat", "/buff\n")
	writeFile(t, dir, "notes.txt", "ignored\n")

	c := New([]string{dir}, nil)
	if err := c.ReloadCache(context.Background()); err != nil {
		t.Fatalf("ReloadCache: %v", err)
	}

	if _, ok := c.GetCachedScript("heal"); !ok {
		t.Error("expected heal to be cached")
	}
	if _, ok := c.GetCachedScript("buff"); !ok {
		t.Error("expected buff to be cached")
	}
	if _, ok := c.GetCachedScript("notes"); ok {
		t.Error("non-.cheat files should not be cached")
	}
}

func TestLastCheatIsDeletedNotCached(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "last.cheat", "/say hi\n")

	c := New([]string{dir}, nil)
	if err := c.ReloadCache(context.Background()); err != nil {
		t.Fatalf("ReloadCache: %v", err)
	}

	if _, ok := c.GetCachedScript("last"); ok {
		t.Error("last.cheat must never be cached")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("last.cheat should have been deleted from disk")
	}
}

func TestGetCachedScriptMissingFileEvicts(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "temp.cheat", "/say hi\n")

	c := New([]string{dir}, nil)
	if err := c.ReloadCache(context.Background()); err != nil {
		t.Fatalf("ReloadCache: %v", err)
	}
	if _, ok := c.GetCachedScript("temp"); !ok {
		t.Fatal("expected temp to be cached initially")
	}

	if err := os.Remove(path); err != nil {
		t.Fatalf("removing file: %v", err)
	}
	if _, ok := c.GetCachedScript("temp"); ok {
		t.Error("GetCachedScript should evict an entry whose file is now missing")
	}
}

func TestReloadCacheSkipsMalformedFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "broken.cheat", "#if 1 == 1\nno end here\n")
	writeFile(t, dir, "ok.cheat", "/say hi\n")

	c := New([]string{dir}, nil)
	if err := c.ReloadCache(context.Background()); err != nil {
		t.Fatalf("ReloadCache should not fail the whole scan on one bad file: %v", err)
	}
	if _, ok := c.GetCachedScript("broken"); ok {
		t.Error("malformed script should not be cached")
	}
	if _, ok := c.GetCachedScript("ok"); !ok {
		t.Error("well-formed sibling script should still be cached")
	}
}
