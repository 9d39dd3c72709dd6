package upload

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeFilename_CollapsesLookalikeWhitespace(t *testing.T) {
	name := string([]rune{'a', noBreakSpace, noBreakSpace, 'b', 'c', narrowNoBreakSpace, 'd'})
	assert.Equal(t, "a bc d", SanitizeFilename(name))
}

func TestSanitizeFilename_TrimsAndCollapsesRuns(t *testing.T) {
	assert.Equal(t, "report final.pdf", SanitizeFilename("  report   final.pdf  "))
}

func TestSanitizeFilename_StripsBOM(t *testing.T) {
	name := string([]rune{bomSpace, 'x', '.', 't', 'x', 't'})
	assert.Equal(t, "x.txt", SanitizeFilename(name))
}

func TestSanitizeFilename_LeavesOrdinaryNameUnchanged(t *testing.T) {
	assert.Equal(t, "invoice-2026.pdf", SanitizeFilename("invoice-2026.pdf"))
}
