package models

import "testing"

func TestTaskStatusValid(t *testing.T) {
	cases := []struct {
		status TaskStatus
		want   bool
	}{
		{TaskStatusPending, true},
		{TaskStatusRunning, true},
		{TaskStatusComplete, true},
		{TaskStatusFailed, true},
		{TaskStatus(""), false},
		{TaskStatus("done"), false},
	}
	for _, tc := range cases {
		if got := tc.status.Valid(); got != tc.want {
			t.Errorf("TaskStatus(%q).Valid() = %v, want %v", tc.status, got, tc.want)
		}
	}
}

func TestTaskStatusTerminal(t *testing.T) {
	if TaskStatusPending.Terminal() || TaskStatusRunning.Terminal() {
		t.Error("pending and running are not terminal")
	}
	if !TaskStatusComplete.Terminal() || !TaskStatusFailed.Terminal() {
		t.Error("complete and failed are terminal")
	}
}

func TestProtocolValid(t *testing.T) {
	for _, p := range []Protocol{ProtocolSequential, ProtocolParallel, ProtocolDebate, ProtocolCustom} {
		if !p.Valid() {
			t.Errorf("expected %s to be valid", p)
		}
	}
	if Protocol("tournament").Valid() {
		t.Error("unknown protocol must not validate")
	}
}

func TestEntryTypeValid(t *testing.T) {
	for _, e := range []EntryType{EntryFinding, EntryArtifact, EntryQuestion, EntryDecision, EntryCritique} {
		if !e.Valid() {
			t.Errorf("expected %s to be valid", e)
		}
	}
	if EntryType("opinion").Valid() {
		t.Error("unknown entry type must not validate")
	}
}

func TestPlanTaskLookup(t *testing.T) {
	plan := &SwarmPlan{Tasks: []*Task{{ID: "t1"}, {ID: "t2"}}}

	if plan.Task("t2") == nil {
		t.Error("expected to find t2")
	}
	if plan.Task("missing") != nil {
		t.Error("expected nil for unknown id")
	}
}

func TestHasTag(t *testing.T) {
	e := &BlackboardEntry{Tags: []string{"api", "auth"}}
	if !e.HasTag("auth") {
		t.Error("expected auth tag")
	}
	if e.HasTag("API") {
		t.Error("tag matching is case-sensitive")
	}
	empty := &BlackboardEntry{}
	if empty.HasTag("any") {
		t.Error("no tags means no match")
	}
}
