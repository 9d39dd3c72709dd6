package cache

import (
	"sort"

	"github.com/pagespace/gateway/internal/promptbuilder"
	"github.com/pagespace/gateway/pkg/types"
)

// BuildTree reconstructs the nested shape promptbuilder.RenderTree expects
// from the flat, parent-pointer list the page-tree cache stores. Spec §4.11:
// "structure is rebuilt on read via buildTree" — the cache holds the flat
// list so invalidation stays a single map delete; nesting is cheap to redo
// per read and never goes stale independently of the cache entry itself.
func BuildTree(flat []types.TreeNode) []*promptbuilder.TreeNode {
	sorted := make([]types.TreeNode, len(flat))
	copy(sorted, flat)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Position < sorted[j].Position })

	byID := make(map[string]*promptbuilder.TreeNode, len(sorted))
	for _, n := range sorted {
		byID[n.ID] = &promptbuilder.TreeNode{ID: n.ID, Title: n.Title, Type: string(n.Type)}
	}

	var roots []*promptbuilder.TreeNode
	for _, n := range sorted {
		node := byID[n.ID]
		if n.ParentID == nil {
			roots = append(roots, node)
			continue
		}
		parent, ok := byID[*n.ParentID]
		if !ok {
			// Orphaned reference (parent trashed/missing from this
			// drive's flat list): surface at the root rather than drop it.
			roots = append(roots, node)
			continue
		}
		parent.Children = append(parent.Children, node)
	}
	return roots
}
