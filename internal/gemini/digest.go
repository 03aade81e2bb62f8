package gemini

import (
	"regexp"
	"strings"
)

// Best-effort extraction of a "key changes" digest from generated text.
// This is cosmetic enrichment with no contract on precision or recall; it
// breaks silently when the model changes its phrasing, and callers must
// treat an empty result as normal.

var (
	keyChangesHeader = regexp.MustCompile(`(?i)^\s*(?:#+\s*)?\*{0,2}key\s+(?:changes|updates)\*{0,2}\s*:?\s*(.*)$`)
	bulletLine       = regexp.MustCompile(`^\s*[-*•]\s*(.+)$`)
	sectionHeader    = regexp.MustCompile(`(?i)^\s*(?:#+\s*)?\*{0,2}(?:status summary|outlook|summary)\*{0,2}\s*:`)
	changeKeyword    = regexp.MustCompile(`(?i)\b(changed|updated|added|removed|completed|resolved|moved|new)\b`)
)

const maxDigestLen = 500

// ExtractKeyChanges scans generated text for a key-changes section and
// returns its items joined with "; ". Returns "" when nothing usable is
// found.
func ExtractKeyChanges(text string) string {
	lines := strings.Split(text, "\n")

	var parts []string
	inSection := false
	for _, line := range lines {
		if m := keyChangesHeader.FindStringSubmatch(line); m != nil {
			inSection = true
			if inline := strings.TrimSpace(m[1]); inline != "" {
				parts = append(parts, inline)
			}
			continue
		}
		if !inSection {
			continue
		}
		if sectionHeader.MatchString(line) {
			break
		}
		if m := bulletLine.FindStringSubmatch(line); m != nil {
			parts = append(parts, strings.TrimSpace(m[1]))
			continue
		}
		if strings.TrimSpace(line) == "" && len(parts) > 0 {
			break
		}
	}

	if len(parts) == 0 {
		// No labeled section; fall back to lines that read like changes.
		for _, line := range lines {
			m := bulletLine.FindStringSubmatch(line)
			if m == nil || !changeKeyword.MatchString(m[1]) {
				continue
			}
			parts = append(parts, strings.TrimSpace(m[1]))
			if len(parts) == 3 {
				break
			}
		}
	}

	digest := strings.Join(parts, "; ")
	if strings.EqualFold(strings.TrimSpace(digest), "none") {
		return ""
	}
	if len(digest) > maxDigestLen {
		digest = digest[:maxDigestLen]
	}
	return digest
}
