package cache

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteReadSectionRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSection(&buf, "history", []string{"ls", "cd /tmp"}); err != nil {
		t.Fatal(err)
	}
	lines, err := ReadSection(bytes.NewReader(buf.Bytes()), "history")
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 2 || lines[0] != "ls" || lines[1] != "cd /tmp" {
		t.Errorf("got %v", lines)
	}
}

func TestReadSectionSkipsOtherTags(t *testing.T) {
	var buf bytes.Buffer
	WriteSection(&buf, "alias", []string{"ll=ls -l"})
	WriteSection(&buf, "history", []string{"a", "b"})

	lines, err := ReadSection(bytes.NewReader(buf.Bytes()), "history")
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 2 {
		t.Errorf("got %v", lines)
	}
}

func TestReadSectionNotFound(t *testing.T) {
	var buf bytes.Buffer
	WriteSection(&buf, "alias", []string{"x"})
	_, err := ReadSection(bytes.NewReader(buf.Bytes()), "history")
	if err != ErrSectionNotFound {
		t.Errorf("expected ErrSectionNotFound, got %v", err)
	}
}

func TestReplaceSectionPreservesOtherTags(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ccli-cache")

	if err := ReplaceSection(path, "alias", []string{"ll=ls -l"}); err != nil {
		t.Fatal(err)
	}
	if err := ReplaceSection(path, "history", []string{"first", "second"}); err != nil {
		t.Fatal(err)
	}

	aliases, err := ReadSectionFromFile(path, "alias")
	if err != nil || len(aliases) != 1 || aliases[0] != "ll=ls -l" {
		t.Errorf("alias section corrupted: %v err=%v", aliases, err)
	}
	history, err := ReadSectionFromFile(path, "history")
	if err != nil || len(history) != 2 {
		t.Errorf("history section wrong: %v err=%v", history, err)
	}
}

func TestReplaceSectionOverwritesSameTag(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ccli-cache")

	if err := ReplaceSection(path, "history", []string{"old"}); err != nil {
		t.Fatal(err)
	}
	if err := ReplaceSection(path, "history", []string{"new-1", "new-2"}); err != nil {
		t.Fatal(err)
	}

	lines, err := ReadSectionFromFile(path, "history")
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 2 || lines[0] != "new-1" || lines[1] != "new-2" {
		t.Errorf("got %v", lines)
	}

	data, _ := os.ReadFile(path)
	if bytes.Count(data, []byte(StartSentinel)) != 1 {
		t.Errorf("expected exactly one section to survive, file:\n%s", data)
	}
}

func TestDefaultPathUsesXDGCacheHome(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdgcache")
	path, err := DefaultPath(HistoryCacheName)
	if err != nil {
		t.Fatal(err)
	}
	if path != "/tmp/xdgcache/ccli" {
		t.Errorf("got %q", path)
	}
}
