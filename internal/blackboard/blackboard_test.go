package blackboard

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/reedwhitmont/swarm/pkg/models"
)

func TestPostAssignsIdentity(t *testing.T) {
	b := New()

	stored := b.Post(models.BlackboardEntry{
		Author:  "researcher",
		Type:    models.EntryFinding,
		Content: "first finding",
	})

	if stored.ID == "" {
		t.Error("expected generated ID")
	}
	if stored.Timestamp.IsZero() {
		t.Error("expected timestamp to be set")
	}
	if b.Len() != 1 {
		t.Errorf("expected 1 entry, got %d", b.Len())
	}
}

func TestPostPreservesOrder(t *testing.T) {
	b := New()
	for i := 0; i < 5; i++ {
		b.Post(models.BlackboardEntry{Author: "coder", Type: models.EntryArtifact, Content: fmt.Sprintf("entry %d", i)})
	}

	all := b.All()
	if len(all) != 5 {
		t.Fatalf("expected 5 entries, got %d", len(all))
	}
	for i, e := range all {
		if want := fmt.Sprintf("entry %d", i); e.Content != want {
			t.Errorf("entry %d: expected %q, got %q", i, want, e.Content)
		}
	}
	for i := 1; i < len(all); i++ {
		if all[i].Timestamp.Before(all[i-1].Timestamp) {
			t.Errorf("timestamps not monotonic at entry %d", i)
		}
	}
}

func TestReturnedEntriesAreCopies(t *testing.T) {
	b := New()
	b.Post(models.BlackboardEntry{Author: "coder", Type: models.EntryFinding, Content: "original", Tags: []string{"x"}})

	got := b.All()
	got[0].Content = "mutated"
	got[0].Tags[0] = "mutated"

	again := b.All()
	if again[0].Content != "original" {
		t.Error("caller mutation leaked into stored entry")
	}
	if again[0].Tags[0] != "x" {
		t.Error("caller tag mutation leaked into stored entry")
	}
}

func TestFilters(t *testing.T) {
	b := New()
	b.Post(models.BlackboardEntry{Author: "researcher", Type: models.EntryFinding, Content: "f1", Tags: []string{"api"}})
	b.Post(models.BlackboardEntry{Author: "coder", Type: models.EntryArtifact, Content: "a1"})
	b.Post(models.BlackboardEntry{Author: "researcher", Type: models.EntryQuestion, Content: "q1", Tags: []string{"api", "auth"}})

	if got := b.ByType(models.EntryFinding); len(got) != 1 || got[0].Content != "f1" {
		t.Errorf("ByType: expected [f1], got %v", got)
	}
	if got := b.ByAuthor("researcher"); len(got) != 2 {
		t.Errorf("ByAuthor: expected 2 entries, got %d", len(got))
	}
	if got := b.ByTag("api"); len(got) != 2 {
		t.Errorf("ByTag: expected 2 entries, got %d", len(got))
	}
	if got := b.ByTag("missing"); len(got) != 0 {
		t.Errorf("ByTag: expected none, got %d", len(got))
	}
}

func TestRecent(t *testing.T) {
	b := New()
	for i := 0; i < 4; i++ {
		b.Post(models.BlackboardEntry{Author: "coder", Type: models.EntryFinding, Content: fmt.Sprintf("e%d", i)})
	}

	got := b.Recent(2)
	if len(got) != 2 || got[0].Content != "e2" || got[1].Content != "e3" {
		t.Errorf("expected last two in order, got %v", got)
	}
	if got := b.Recent(0); len(got) != 4 {
		t.Errorf("Recent(0): expected all entries, got %d", len(got))
	}
	if got := b.Recent(100); len(got) != 4 {
		t.Errorf("Recent(100): expected all entries, got %d", len(got))
	}
}

func TestFormatForContextEmpty(t *testing.T) {
	b := New()
	if got := b.FormatForContext(FormatOptions{}); got != EmptyPlaceholder {
		t.Errorf("expected placeholder, got %q", got)
	}

	b.Post(models.BlackboardEntry{Author: "coder", Type: models.EntryFinding, Content: "f"})
	if got := b.FormatForContext(FormatOptions{Type: models.EntryCritique}); got != EmptyPlaceholder {
		t.Errorf("expected placeholder when filter matches nothing, got %q", got)
	}
}

func TestFormatForContextCapsAtMostRecent(t *testing.T) {
	b := New()
	for i := 0; i < 5; i++ {
		b.Post(models.BlackboardEntry{Author: "coder", Type: models.EntryFinding, Content: fmt.Sprintf("e%d", i)})
	}

	got := b.FormatForContext(FormatOptions{MaxEntries: 2})
	if !strings.HasPrefix(got, "=== Shared Blackboard ===") {
		t.Errorf("missing header: %q", got)
	}
	if strings.Contains(got, "e2") {
		t.Errorf("older entry leaked past the cap: %q", got)
	}
	if !strings.Contains(got, "e3") || !strings.Contains(got, "e4") {
		t.Errorf("expected the two most recent entries: %q", got)
	}
	if strings.Index(got, "e3") > strings.Index(got, "e4") {
		t.Errorf("entries out of post order: %q", got)
	}
}

func TestFormatForContextIncludesTags(t *testing.T) {
	b := New()
	b.Post(models.BlackboardEntry{Author: "critic", Type: models.EntryCritique, Content: "needs tests", Tags: []string{"quality"}})

	got := b.FormatForContext(FormatOptions{})
	if !strings.Contains(got, "[critique] critic: needs tests") {
		t.Errorf("unexpected rendering: %q", got)
	}
	if !strings.Contains(got, "tags:") {
		t.Errorf("expected tags in rendering: %q", got)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	b := New()
	b.Post(models.BlackboardEntry{Author: "researcher", Type: models.EntryFinding, Content: "f1"})
	b.Post(models.BlackboardEntry{Author: "coder", Type: models.EntryArtifact, Content: "a1"})

	snapshot := b.Export()

	restored := New()
	restored.Import(snapshot)

	got := restored.All()
	if len(got) != 2 {
		t.Fatalf("expected 2 entries after import, got %d", len(got))
	}
	for i := range got {
		if got[i].ID != snapshot[i].ID {
			t.Errorf("entry %d: ID changed on import", i)
		}
		if !got[i].Timestamp.Equal(snapshot[i].Timestamp) {
			t.Errorf("entry %d: timestamp changed on import", i)
		}
	}

	// Posts after an import must stamp at or after the imported entries.
	next := restored.Post(models.BlackboardEntry{Author: "critic", Type: models.EntryCritique, Content: "c1"})
	if next.Timestamp.Before(snapshot[1].Timestamp) {
		t.Error("post after import regressed the timestamp")
	}
}

func TestClearKeepsListeners(t *testing.T) {
	b := New()
	var notified int
	b.OnEntry(func(*models.BlackboardEntry) { notified++ })

	b.Post(models.BlackboardEntry{Author: "coder", Type: models.EntryFinding, Content: "f"})
	b.Clear()
	if b.Len() != 0 {
		t.Errorf("expected empty board after Clear, got %d", b.Len())
	}

	b.Post(models.BlackboardEntry{Author: "coder", Type: models.EntryFinding, Content: "g"})
	if notified != 2 {
		t.Errorf("expected listener to survive Clear, notified %d times", notified)
	}
}

func TestListenerOrderAndUnsubscribe(t *testing.T) {
	b := New()
	var order []string
	b.OnEntry(func(*models.BlackboardEntry) { order = append(order, "first") })
	unsub := b.OnEntry(func(*models.BlackboardEntry) { order = append(order, "second") })

	b.Post(models.BlackboardEntry{Author: "coder", Type: models.EntryFinding, Content: "f"})
	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Fatalf("expected registration order, got %v", order)
	}

	unsub()
	b.Post(models.BlackboardEntry{Author: "coder", Type: models.EntryFinding, Content: "g"})
	if len(order) != 3 || order[2] != "first" {
		t.Errorf("expected only the first listener after unsubscribe, got %v", order)
	}
}

func TestListenerPanicDoesNotBlockOthers(t *testing.T) {
	b := New()
	var survived bool
	b.OnEntry(func(*models.BlackboardEntry) { panic("boom") })
	b.OnEntry(func(*models.BlackboardEntry) { survived = true })

	b.Post(models.BlackboardEntry{Author: "coder", Type: models.EntryFinding, Content: "f"})

	if !survived {
		t.Error("panic in one listener suppressed the next")
	}
	if b.Len() != 1 {
		t.Errorf("panic in listener lost the entry, len=%d", b.Len())
	}
}

func TestListenerMayReadBoard(t *testing.T) {
	b := New()
	var lens []int
	b.OnEntry(func(*models.BlackboardEntry) {
		// Reading back into the board from a listener must not deadlock.
		lens = append(lens, b.Len())
	})

	b.Post(models.BlackboardEntry{Author: "coder", Type: models.EntryFinding, Content: "a"})
	b.Post(models.BlackboardEntry{Author: "coder", Type: models.EntryFinding, Content: "b"})

	if len(lens) != 2 || lens[0] != 1 || lens[1] != 2 {
		t.Errorf("listener observed lengths %v, want [1 2]", lens)
	}
}

func TestConcurrentPosts(t *testing.T) {
	b := New()
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				b.Post(models.BlackboardEntry{Author: fmt.Sprintf("agent-%d", n), Type: models.EntryFinding, Content: "x"})
			}
		}(i)
	}
	wg.Wait()

	if b.Len() != 200 {
		t.Errorf("expected 200 entries, got %d", b.Len())
	}
	seen := make(map[string]bool)
	for _, e := range b.All() {
		if seen[e.ID] {
			t.Fatalf("duplicate entry ID %s", e.ID)
		}
		seen[e.ID] = true
	}
}
