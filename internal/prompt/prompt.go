// Package prompt assembles the generation prompt from the current status
// fields and prior summaries. Everything here is pure string formatting.
package prompt

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aniketsandhanwootz-wq/wootz-summary/internal/payload"
)

// HistoryEntry is one prior summary included for continuity.
type HistoryEntry struct {
	Timestamp  string
	Summary    string
	KeyChanges string
}

// Input carries everything the builder needs.
type Input struct {
	ProjectID string
	Fields    payload.Fields
	History   []HistoryEntry
}

const notProvided = "Not provided"

// wellKnownFields are rendered first, in a fixed order, with placeholders
// when absent. Anything else in the payload is appended verbatim.
var wellKnownFields = []struct {
	key   string
	label string
}{
	{"currentStatus", "Current status"},
	{"progress", "Progress"},
	{"blockers", "Blockers"},
	{"nextSteps", "Next steps"},
	{"owner", "Owner"},
	{"dueDate", "Due date"},
	{"notes", "Notes"},
}

// RenderContext renders prior summaries as a human-readable block,
// oldest first so the model reads the history chronologically. Returns ""
// when there is no history.
func RenderContext(history []HistoryEntry) string {
	if len(history) == 0 {
		return ""
	}
	var b strings.Builder
	for i, h := range history {
		fmt.Fprintf(&b, "%d. [%s] %s", i+1, h.Timestamp, h.Summary)
		if h.KeyChanges != "" {
			fmt.Fprintf(&b, " (key changes: %s)", h.KeyChanges)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// Build assembles the full generation prompt.
func Build(in Input) string {
	var b strings.Builder

	b.WriteString("You are a project management assistant. Write a concise status summary for the project below, in plain professional English.\n\n")
	fmt.Fprintf(&b, "Project: %s\n\n", in.ProjectID)

	if ctx := RenderContext(in.History); ctx != "" {
		b.WriteString("Previous summaries (oldest first):\n")
		b.WriteString(ctx)
		b.WriteString("\n\n")
	} else {
		b.WriteString("This is the first summary for this project; there is no previous context.\n\n")
	}

	b.WriteString("Current status fields:\n")
	seen := make(map[string]bool, len(wellKnownFields))
	for _, f := range wellKnownFields {
		seen[f.key] = true
		v := in.Fields.Get(f.key)
		if v == "" {
			v = notProvided
		}
		fmt.Fprintf(&b, "- %s: %s\n", f.label, v)
	}

	// Pass remaining fields through opaquely, sorted for determinism.
	var extra []string
	for k := range in.Fields {
		if seen[k] || payload.IsIdentifierKey(k) {
			continue
		}
		extra = append(extra, k)
	}
	sort.Strings(extra)
	for _, k := range extra {
		if v := in.Fields.Get(k); v != "" {
			fmt.Fprintf(&b, "- %s: %s\n", k, v)
		}
	}

	b.WriteString("\nRespond using exactly this layout:\n")
	b.WriteString("Status Summary: one or two sentences on where the project stands.\n")
	b.WriteString("Key Changes: bullet list of what changed since the previous summary, or \"None\" for a first summary.\n")
	b.WriteString("Outlook: one sentence on risks or next steps.\n")

	return b.String()
}
