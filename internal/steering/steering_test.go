package steering

import (
	"os"
	"path/filepath"
	"testing"
)

func testWatcher(t *testing.T) (*Watcher, string) {
	t.Helper()
	dir := t.TempDir()
	w, err := New(dir)
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	t.Cleanup(w.Close)
	return w, dir
}

func TestNewCreatesLayout(t *testing.T) {
	_, dir := testWatcher(t)

	info, err := os.Stat(filepath.Join(dir, "notes"))
	if err != nil || !info.IsDir() {
		t.Errorf("expected notes directory to exist: %v", err)
	}
}

func TestShouldStopOnSignalFile(t *testing.T) {
	w, dir := testWatcher(t)

	if w.ShouldStop() {
		t.Fatal("fresh watcher must not report stop")
	}

	if err := os.WriteFile(filepath.Join(dir, "stop"), []byte("stop"), 0644); err != nil {
		t.Fatalf("write stop file: %v", err)
	}
	if !w.ShouldStop() {
		t.Error("expected stop after signal file appears")
	}
	// The flag is sticky until cleared.
	os.Remove(filepath.Join(dir, "stop"))
	if !w.ShouldStop() {
		t.Error("stop flag should stick after the file is removed")
	}
}

func TestRequestStopAndClear(t *testing.T) {
	w, dir := testWatcher(t)

	if err := w.RequestStop(); err != nil {
		t.Fatalf("request stop: %v", err)
	}
	if !w.ShouldStop() {
		t.Error("expected stop after RequestStop")
	}

	w.Clear()
	if w.ShouldStop() {
		t.Error("expected no stop after Clear")
	}
	if _, err := os.Stat(filepath.Join(dir, "stop")); !os.IsNotExist(err) {
		t.Error("Clear should remove the signal file")
	}
}

func TestDrainNotesOncePerFile(t *testing.T) {
	w, dir := testWatcher(t)

	write := func(name, content string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, "notes", name), []byte(content), 0644); err != nil {
			t.Fatalf("write note: %v", err)
		}
	}
	write("02-second.txt", "focus on the parser")
	write("01-first.txt", "  skip the benchmarks  ")

	notes := w.DrainNotes()
	if len(notes) != 2 {
		t.Fatalf("expected 2 notes, got %d", len(notes))
	}
	if notes[0].Name != "01-first.txt" || notes[1].Name != "02-second.txt" {
		t.Errorf("expected file-name order, got %v", notes)
	}
	if notes[0].Content != "skip the benchmarks" {
		t.Errorf("expected trimmed content, got %q", notes[0].Content)
	}

	if again := w.DrainNotes(); len(again) != 0 {
		t.Errorf("notes must drain once, got %v", again)
	}

	write("03-third.txt", "new instruction")
	later := w.DrainNotes()
	if len(later) != 1 || later[0].Content != "new instruction" {
		t.Errorf("expected only the new note, got %v", later)
	}
}

func TestDrainNotesSkipsEmptyFiles(t *testing.T) {
	w, dir := testWatcher(t)

	if err := os.WriteFile(filepath.Join(dir, "notes", "empty.txt"), []byte("   \n"), 0644); err != nil {
		t.Fatalf("write note: %v", err)
	}
	if notes := w.DrainNotes(); len(notes) != 0 {
		t.Errorf("expected empty note to be skipped, got %v", notes)
	}
}

func TestWatcherSurvivesMissingNotesDir(t *testing.T) {
	w, dir := testWatcher(t)
	os.RemoveAll(filepath.Join(dir, "notes"))

	if notes := w.DrainNotes(); notes != nil {
		t.Errorf("expected nil on unreadable notes dir, got %v", notes)
	}
}
