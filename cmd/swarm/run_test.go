package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/reedwhitmont/swarm/pkg/models"
)

func writePlan(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plan.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing plan file: %v", err)
	}
	return path
}

const minimalTasks = `
tasks:
  - id: t1
    role: coder
    description: implement the thing
`

func TestLoadPlanFileProtocolResolution(t *testing.T) {
	cases := []struct {
		name            string
		planProtocol    string
		flagOverride    string
		defaultProtocol string
		want            models.Protocol
	}{
		{"flag wins over file and default", "parallel", "debate", "sequential", models.ProtocolDebate},
		{"file wins over default", "parallel", "", "sequential", models.ProtocolParallel},
		{"configured default fills the gap", "", "", "parallel", models.ProtocolParallel},
		{"bad default falls back to sequential", "", "", "round-robin", models.ProtocolSequential},
		{"empty default falls back to sequential", "", "", "", models.ProtocolSequential},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			content := minimalTasks
			if tc.planProtocol != "" {
				content = "protocol: " + tc.planProtocol + "\n" + content
			}
			plan, err := loadPlanFile(writePlan(t, content), tc.flagOverride, tc.defaultProtocol)
			if err != nil {
				t.Fatalf("loadPlanFile: %v", err)
			}
			if plan.Protocol != tc.want {
				t.Errorf("protocol = %q, want %q", plan.Protocol, tc.want)
			}
		})
	}
}

func TestLoadPlanFileRejectsEmptyTasks(t *testing.T) {
	if _, err := loadPlanFile(writePlan(t, "protocol: sequential\ntasks: []\n"), "", ""); err == nil {
		t.Error("expected error for a plan with no tasks")
	}
}
