// Package steering lets an operator nudge a running swarm from outside
// the process. A watched directory accepts note files, whose contents
// are posted to the blackboard as decision entries between tasks, and a
// stop signal file that winds the run down early.
package steering

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// stopFile is the signal file name that requests an early wind-down.
const stopFile = "stop"

// notesDir is the subdirectory notes are read from.
const notesDir = "notes"

// Watcher monitors a steering directory. Missed filesystem events are
// tolerated: the stop check also stats the signal file directly, and
// notes are listed from disk on drain.
type Watcher struct {
	dir string

	mu      sync.Mutex
	stopped bool
	seen    map[string]bool

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// New creates a watcher rooted at dir, creating the layout if needed.
// The fsnotify watcher is best-effort; without it the Watcher degrades
// to polling on each check.
func New(dir string) (*Watcher, error) {
	if err := os.MkdirAll(filepath.Join(dir, notesDir), 0755); err != nil {
		return nil, err
	}

	w := &Watcher{
		dir:  dir,
		seen: make(map[string]bool),
		done: make(chan struct{}),
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return w, nil
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return w, nil
	}
	w.watcher = fsw

	go w.watch()

	return w, nil
}

// watch marks the stop flag as soon as the signal file appears.
func (w *Watcher) watch() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) == stopFile &&
				(event.Op&fsnotify.Create != 0 || event.Op&fsnotify.Write != 0) {
				w.mu.Lock()
				w.stopped = true
				w.mu.Unlock()
			}
		case <-w.watcher.Errors:
			// Keep watching.
		}
	}
}

// ShouldStop returns true once the stop signal file exists.
func (w *Watcher) ShouldStop() bool {
	if _, err := os.Stat(filepath.Join(w.dir, stopFile)); err == nil {
		w.mu.Lock()
		w.stopped = true
		w.mu.Unlock()
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stopped
}

// Note is one operator note drained from the notes directory.
type Note struct {
	// Name is the note's file name.
	Name string
	// Content is the note's text.
	Content string
}

// DrainNotes returns notes not yet seen, in file-name order. Each note
// is reported once per watcher lifetime; the files are left in place.
func (w *Watcher) DrainNotes() []Note {
	entries, err := os.ReadDir(filepath.Join(w.dir, notesDir))
	if err != nil {
		return nil
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	w.mu.Lock()
	defer w.mu.Unlock()

	var notes []Note
	for _, name := range names {
		if w.seen[name] {
			continue
		}
		data, err := os.ReadFile(filepath.Join(w.dir, notesDir, name))
		if err != nil {
			continue
		}
		w.seen[name] = true
		content := strings.TrimSpace(string(data))
		if content == "" {
			continue
		}
		notes = append(notes, Note{Name: name, Content: content})
	}
	return notes
}

// RequestStop creates the stop signal file.
func (w *Watcher) RequestStop() error {
	return os.WriteFile(filepath.Join(w.dir, stopFile), []byte("stop"), 0644)
}

// Clear removes the stop signal and resets state so the watcher can
// serve another run.
func (w *Watcher) Clear() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stopped = false
	os.Remove(filepath.Join(w.dir, stopFile))
}

// Close shuts the watcher down.
func (w *Watcher) Close() {
	close(w.done)
	if w.watcher != nil {
		w.watcher.Close()
	}
}
