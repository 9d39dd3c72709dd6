package promptbuilder

import (
	"fmt"
	"strings"
)

// MaxTreeNodes caps the number of nodes a rendered page tree includes.
const MaxTreeNodes = 200

// TreeNode is one page in the tree the cache (C13) supplies.
type TreeNode struct {
	ID       string
	Title    string
	Type     string
	Children []*TreeNode
}

// RenderTree renders roots as a markdown bullet list, depth-first,
// truncating once MaxTreeNodes nodes have been emitted. When subtreeRoot
// is non-empty, only the subtree rooted at that page id is rendered
// ("children" scope).
func RenderTree(roots []*TreeNode, subtreeRoot string) string {
	if subtreeRoot != "" {
		if node := findNode(roots, subtreeRoot); node != nil {
			roots = []*TreeNode{node}
		} else {
			roots = nil
		}
	}

	var b strings.Builder
	count := 0
	truncated := false
	var walk func(nodes []*TreeNode, depth int)
	walk = func(nodes []*TreeNode, depth int) {
		for _, n := range nodes {
			if count >= MaxTreeNodes {
				truncated = true
				return
			}
			fmt.Fprintf(&b, "%s- %s (%s)\n", strings.Repeat("  ", depth), n.Title, n.Type)
			count++
			if len(n.Children) > 0 {
				walk(n.Children, depth+1)
			}
			if truncated {
				return
			}
		}
	}
	walk(roots, 0)

	if truncated {
		b.WriteString("- … (truncated)\n")
	}
	return b.String()
}

func findNode(nodes []*TreeNode, id string) *TreeNode {
	for _, n := range nodes {
		if n.ID == id {
			return n
		}
		if found := findNode(n.Children, id); found != nil {
			return found
		}
	}
	return nil
}
