package orchestrator

import (
	"regexp"
	"strings"

	"github.com/reedwhitmont/swarm/pkg/models"
)

// Contribution is one blackboard block scraped from an agent's output.
type Contribution struct {
	Type    models.EntryType
	Tags    []string
	Content string
}

// contributionRe matches tagged blackboard blocks in agent output:
//
//	[blackboard:finding]content[/blackboard]
//	[blackboard:decision:api,naming]content[/blackboard]
//
// The type segment is required; tags are an optional comma-separated
// second segment.
var contributionRe = regexp.MustCompile(`(?is)\[blackboard:([a-z]+)(?::([^\]]*))?\](.*?)\[/blackboard\]`)

// ParseContributions extracts every well-formed blackboard block from
// the text, in order. Blocks with unknown types or empty content are
// skipped; scraping is best-effort and never fails.
func ParseContributions(text string) []Contribution {
	var out []Contribution
	for _, m := range contributionRe.FindAllStringSubmatch(text, -1) {
		entryType := models.EntryType(strings.ToLower(m[1]))
		if !entryType.Valid() {
			continue
		}
		content := strings.TrimSpace(m[3])
		if content == "" {
			continue
		}
		out = append(out, Contribution{
			Type:    entryType,
			Tags:    parseTags(m[2]),
			Content: content,
		})
	}
	return out
}

func parseTags(raw string) []string {
	var tags []string
	for _, tag := range strings.Split(raw, ",") {
		tag = strings.TrimSpace(tag)
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// critiqueApproved decides whether a critique result signals approval.
// The critic role is instructed to open with a structured
// "VERDICT: approved" or "VERDICT: revise" line; when that line is
// present it is authoritative. Without it, the original substring
// heuristic applies: any case-insensitive occurrence of "approved" or
// "no major issues" counts as approval, fragile as that is.
func critiqueApproved(result string) bool {
	for _, line := range strings.Split(result, "\n") {
		line = strings.TrimSpace(strings.ToLower(line))
		if rest, ok := strings.CutPrefix(line, "verdict:"); ok {
			return strings.Contains(rest, "approved")
		}
	}

	lower := strings.ToLower(result)
	return strings.Contains(lower, "approved") || strings.Contains(lower, "no major issues")
}
