package models

import "time"

// EntryType classifies a blackboard entry.
type EntryType string

const (
	// EntryFinding is a discovered fact or research result.
	EntryFinding EntryType = "finding"
	// EntryArtifact is produced work (code, documents, data).
	EntryArtifact EntryType = "artifact"
	// EntryQuestion is an open question for other agents.
	EntryQuestion EntryType = "question"
	// EntryDecision is a resolved choice the team should follow.
	EntryDecision EntryType = "decision"
	// EntryCritique is review feedback on prior work.
	EntryCritique EntryType = "critique"
)

// Valid returns true if the entry type is a known value.
func (t EntryType) Valid() bool {
	switch t {
	case EntryFinding, EntryArtifact, EntryQuestion, EntryDecision, EntryCritique:
		return true
	default:
		return false
	}
}

// BlackboardEntry is one immutable post on the shared workspace.
// Entries are never edited or reordered after posting; the visible order
// is always insertion order.
type BlackboardEntry struct {
	// ID is assigned by the blackboard when the entry is posted.
	ID string `json:"id"`
	// Author is the role identifier that wrote the entry.
	Author string `json:"author"`
	// Type classifies the entry.
	Type EntryType `json:"type"`
	// Content is the entry body.
	Content string `json:"content"`
	// Timestamp is the insertion time, monotonically non-decreasing.
	Timestamp time.Time `json:"timestamp"`
	// Tags are optional labels for retrieval.
	Tags []string `json:"tags,omitempty"`
	// References are optional IDs of related entries.
	References []string `json:"references,omitempty"`
}

// HasTag returns true if the entry carries the given tag.
func (e *BlackboardEntry) HasTag(tag string) bool {
	for _, t := range e.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
