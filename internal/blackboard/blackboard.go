// Package blackboard implements the append-only shared workspace agents
// use to exchange findings during a run. Entries are immutable once
// posted and always visible in insertion order.
package blackboard

import (
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/reedwhitmont/swarm/pkg/models"
)

// EmptyPlaceholder is returned by FormatForContext when no entries match.
const EmptyPlaceholder = "(blackboard is empty)"

// Listener receives each entry as it is posted.
type Listener func(entry *models.BlackboardEntry)

// Blackboard is the shared workspace. All methods are safe for
// concurrent use; entries are appended under a single lock, so reads
// observe them in insertion order. Listeners are invoked after the
// lock is released and may call back into the board.
type Blackboard struct {
	mu        sync.Mutex
	entries   []*models.BlackboardEntry
	listeners map[int]Listener
	nextSub   int
	lastStamp time.Time
}

// New creates an empty blackboard.
func New() *Blackboard {
	return &Blackboard{
		listeners: make(map[int]Listener),
	}
}

// Post assigns an ID and timestamp to the entry, appends it, and
// notifies every registered listener in registration order. Each
// listener runs inside its own recover boundary so a misbehaving
// subscriber cannot abort the posting task. The stored entry is
// returned.
func (b *Blackboard) Post(entry models.BlackboardEntry) *models.BlackboardEntry {
	b.mu.Lock()

	entry.ID = uuid.NewString()
	entry.Timestamp = b.stamp()
	stored := &entry
	b.entries = append(b.entries, stored)

	subs := make([]int, 0, len(b.listeners))
	for id := range b.listeners {
		subs = append(subs, id)
	}
	// Registration order == ascending subscription ID.
	sort.Ints(subs)
	fns := make([]Listener, 0, len(subs))
	for _, id := range subs {
		fns = append(fns, b.listeners[id])
	}
	b.mu.Unlock()

	snapshot := copyEntry(stored)
	for _, fn := range fns {
		notify(fn, snapshot)
	}
	return copyEntry(stored)
}

// notify invokes one listener with panic isolation.
func notify(fn Listener, entry *models.BlackboardEntry) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[blackboard] listener panic recovered: %v", r)
		}
	}()
	fn(entry)
}

// stamp returns a monotonically non-decreasing timestamp.
// Caller must hold b.mu.
func (b *Blackboard) stamp() time.Time {
	now := time.Now()
	if now.Before(b.lastStamp) {
		now = b.lastStamp
	}
	b.lastStamp = now
	return now
}

// All returns a copy of every entry in insertion order.
func (b *Blackboard) All() []*models.BlackboardEntry {
	b.mu.Lock()
	defer b.mu.Unlock()
	return copyEntries(b.entries)
}

// ByType returns copies of entries with the given type, in insertion order.
func (b *Blackboard) ByType(t models.EntryType) []*models.BlackboardEntry {
	return b.filter(func(e *models.BlackboardEntry) bool { return e.Type == t })
}

// ByAuthor returns copies of entries written by the given author.
func (b *Blackboard) ByAuthor(author string) []*models.BlackboardEntry {
	return b.filter(func(e *models.BlackboardEntry) bool { return e.Author == author })
}

// ByTag returns copies of entries carrying the given tag.
func (b *Blackboard) ByTag(tag string) []*models.BlackboardEntry {
	return b.filter(func(e *models.BlackboardEntry) bool { return e.HasTag(tag) })
}

// Recent returns copies of the most recent n entries in insertion order.
// If n <= 0 or exceeds the entry count, all entries are returned.
func (b *Blackboard) Recent(n int) []*models.BlackboardEntry {
	b.mu.Lock()
	defer b.mu.Unlock()
	if n <= 0 || n >= len(b.entries) {
		return copyEntries(b.entries)
	}
	return copyEntries(b.entries[len(b.entries)-n:])
}

// Len returns the number of entries.
func (b *Blackboard) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.entries)
}

func (b *Blackboard) filter(keep func(*models.BlackboardEntry) bool) []*models.BlackboardEntry {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []*models.BlackboardEntry
	for _, e := range b.entries {
		if keep(e) {
			out = append(out, copyEntry(e))
		}
	}
	return out
}

// FormatOptions bounds and filters the context rendering.
type FormatOptions struct {
	// Type restricts output to one entry type when non-empty.
	Type models.EntryType
	// Author restricts output to one author when non-empty.
	Author string
	// MaxEntries caps the rendering at the most recent matches.
	// Zero or negative means no cap.
	MaxEntries int
}

// FormatForContext renders a bounded textual view of the blackboard for
// inclusion in a prompt. Matching entries keep their original post order;
// when nothing matches the literal EmptyPlaceholder is returned.
func (b *Blackboard) FormatForContext(opts FormatOptions) string {
	matches := b.filter(func(e *models.BlackboardEntry) bool {
		if opts.Type != "" && e.Type != opts.Type {
			return false
		}
		if opts.Author != "" && e.Author != opts.Author {
			return false
		}
		return true
	})
	if opts.MaxEntries > 0 && len(matches) > opts.MaxEntries {
		matches = matches[len(matches)-opts.MaxEntries:]
	}
	if len(matches) == 0 {
		return EmptyPlaceholder
	}

	out := "=== Shared Blackboard ===\n"
	for _, e := range matches {
		out += fmt.Sprintf("[%s] %s: %s", e.Type, e.Author, e.Content)
		if len(e.Tags) > 0 {
			out += fmt.Sprintf(" (tags: %v)", e.Tags)
		}
		out += "\n"
	}
	return out
}

// Export returns a snapshot of all entries suitable for persistence.
func (b *Blackboard) Export() []*models.BlackboardEntry {
	return b.All()
}

// Import replaces the current entries with a previously exported
// snapshot, preserving the snapshot's IDs, timestamps, and order.
func (b *Blackboard) Import(entries []*models.BlackboardEntry) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries = copyEntries(entries)
	for _, e := range b.entries {
		if e.Timestamp.After(b.lastStamp) {
			b.lastStamp = e.Timestamp
		}
	}
}

// Clear removes all entries. Listeners stay registered.
func (b *Blackboard) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries = nil
}

// OnEntry registers a listener for future posts and returns an
// unsubscribe function.
func (b *Blackboard) OnEntry(fn Listener) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextSub
	b.nextSub++
	b.listeners[id] = fn
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.listeners, id)
	}
}

func copyEntry(e *models.BlackboardEntry) *models.BlackboardEntry {
	c := *e
	c.Tags = append([]string(nil), e.Tags...)
	c.References = append([]string(nil), e.References...)
	return &c
}

func copyEntries(entries []*models.BlackboardEntry) []*models.BlackboardEntry {
	out := make([]*models.BlackboardEntry, len(entries))
	for i, e := range entries {
		out[i] = copyEntry(e)
	}
	return out
}
