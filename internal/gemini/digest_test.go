package gemini

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractKeyChanges_LabeledSection(t *testing.T) {
	text := `Status Summary: project is on track.

Key Changes:
- Backend migration completed
- Hired two engineers

Outlook: release next month.`

	got := ExtractKeyChanges(text)
	assert.Equal(t, "Backend migration completed; Hired two engineers", got)
}

func TestExtractKeyChanges_InlineAfterHeader(t *testing.T) {
	text := "Status Summary: fine.\nKey Changes: switched vendor\nOutlook: good."
	assert.Equal(t, "switched vendor", ExtractKeyChanges(text))
}

func TestExtractKeyChanges_MarkdownHeader(t *testing.T) {
	text := "## Key Changes\n* Added payment flow\n\n## Outlook\nSteady."
	assert.Equal(t, "Added payment flow", ExtractKeyChanges(text))
}

func TestExtractKeyChanges_None(t *testing.T) {
	text := "Status Summary: first update.\nKey Changes: None\nOutlook: early days."
	assert.Empty(t, ExtractKeyChanges(text))
}

func TestExtractKeyChanges_FallbackKeywords(t *testing.T) {
	text := "The team is busy.\n- Updated the roadmap\n- Coffee machine fixed\n- Added CI pipeline"
	got := ExtractKeyChanges(text)
	assert.Contains(t, got, "Updated the roadmap")
	assert.Contains(t, got, "Added CI pipeline")
	assert.NotContains(t, got, "Coffee machine")
}

func TestExtractKeyChanges_NothingUsable(t *testing.T) {
	assert.Empty(t, ExtractKeyChanges("All quiet this week."))
}

func TestExtractKeyChanges_CapsLength(t *testing.T) {
	text := "Key Changes:\n- " + strings.Repeat("a", 600)
	assert.Len(t, ExtractKeyChanges(text), maxDigestLen)
}
