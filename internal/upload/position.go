package upload

import (
	"context"
	"fmt"
	"sort"

	"github.com/pagespace/gateway/pkg/types"
)

// computePosition implements spec §4.10 step 7's fractional sibling
// placement from a single read of the sibling list. The read is not
// wrapped in a transaction and is not retried: two concurrent inserts
// under the same parent can compute the same position, and both keep it.
func (p *Pipeline) computePosition(ctx context.Context, req Request) (float64, error) {
	siblings, err := p.Pages.Siblings(ctx, req.DriveID, req.ParentID)
	if err != nil {
		return 0, fmt.Errorf("fetch siblings: %w", err)
	}
	return resolvePosition(siblings, req.Position, req.AfterNodeID), nil
}

func resolvePosition(siblings []types.Page, position, afterNodeID string) float64 {
	sorted := make([]types.Page, len(siblings))
	copy(sorted, siblings)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Position < sorted[j].Position })

	switch position {
	case "before":
		return positionBefore(sorted, afterNodeID)
	case "after":
		return positionAfter(sorted, afterNodeID)
	default:
		return positionAppend(sorted)
	}
}

func positionBefore(sorted []types.Page, targetID string) float64 {
	idx := indexOf(sorted, targetID)
	if idx < 0 {
		return positionAppend(sorted)
	}
	target := sorted[idx]
	if idx == 0 {
		return target.Position / 2
	}
	prev := sorted[idx-1]
	return (prev.Position + target.Position) / 2
}

func positionAfter(sorted []types.Page, targetID string) float64 {
	idx := indexOf(sorted, targetID)
	if idx < 0 {
		return positionAppend(sorted)
	}
	target := sorted[idx]
	nextPosition := target.Position + 2
	if idx < len(sorted)-1 {
		nextPosition = sorted[idx+1].Position
	}
	return (target.Position + nextPosition) / 2
}

func positionAppend(sorted []types.Page) float64 {
	if len(sorted) == 0 {
		return 0
	}
	return sorted[len(sorted)-1].Position + 1
}

func indexOf(sorted []types.Page, id string) int {
	for i, p := range sorted {
		if p.ID == id {
			return i
		}
	}
	return -1
}
