package upload

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pagespace/gateway/pkg/types"
)

func TestResolvePosition_AppendToEmpty(t *testing.T) {
	assert.Equal(t, float64(0), resolvePosition(nil, "", ""))
}

func TestResolvePosition_AppendToNonEmpty(t *testing.T) {
	siblings := []types.Page{{ID: "a", Position: 0}, {ID: "b", Position: 1}}
	assert.Equal(t, float64(2), resolvePosition(siblings, "", ""))
}

func TestResolvePosition_BeforeFirstSibling(t *testing.T) {
	siblings := []types.Page{{ID: "a", Position: 4}}
	assert.Equal(t, float64(2), resolvePosition(siblings, "before", "a"))
}

func TestResolvePosition_BeforeMiddleSibling(t *testing.T) {
	siblings := []types.Page{{ID: "a", Position: 0}, {ID: "b", Position: 4}, {ID: "c", Position: 8}}
	assert.Equal(t, float64(2), resolvePosition(siblings, "before", "b"))
}

func TestResolvePosition_AfterLastSibling(t *testing.T) {
	siblings := []types.Page{{ID: "a", Position: 4}}
	assert.Equal(t, float64(5), resolvePosition(siblings, "after", "a"))
}

func TestResolvePosition_AfterMiddleSibling(t *testing.T) {
	siblings := []types.Page{{ID: "a", Position: 0}, {ID: "b", Position: 4}, {ID: "c", Position: 8}}
	assert.Equal(t, float64(6), resolvePosition(siblings, "after", "b"))
}

func TestResolvePosition_TargetMissingFallsBackToAppend(t *testing.T) {
	siblings := []types.Page{{ID: "a", Position: 0}, {ID: "b", Position: 1}}
	assert.Equal(t, float64(2), resolvePosition(siblings, "before", "nonexistent"))
	assert.Equal(t, float64(2), resolvePosition(siblings, "after", "nonexistent"))
}
