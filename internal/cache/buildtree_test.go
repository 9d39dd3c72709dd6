package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagespace/gateway/pkg/types"
)

func strptr(s string) *string { return &s }

func TestBuildTree_NestsChildrenUnderParent(t *testing.T) {
	flat := []types.TreeNode{
		{ID: "root", Title: "Root", Type: types.PageTypeFolder, Position: 0},
		{ID: "child", Title: "Child", Type: types.PageTypeDocument, ParentID: strptr("root"), Position: 0},
	}

	roots := BuildTree(flat)
	require.Len(t, roots, 1)
	assert.Equal(t, "root", roots[0].ID)
	require.Len(t, roots[0].Children, 1)
	assert.Equal(t, "child", roots[0].Children[0].ID)
}

func TestBuildTree_OrphanSurfacesAtRoot(t *testing.T) {
	flat := []types.TreeNode{
		{ID: "a", Title: "A", Type: types.PageTypeFolder, ParentID: strptr("missing"), Position: 0},
	}

	roots := BuildTree(flat)
	require.Len(t, roots, 1)
	assert.Equal(t, "a", roots[0].ID)
}

func TestBuildTree_SortsChildrenByPosition(t *testing.T) {
	flat := []types.TreeNode{
		{ID: "root", Title: "Root", Type: types.PageTypeFolder, Position: 0},
		{ID: "c3", Title: "Third", Type: types.PageTypeDocument, ParentID: strptr("root"), Position: 3},
		{ID: "c1", Title: "First", Type: types.PageTypeDocument, ParentID: strptr("root"), Position: 1},
		{ID: "c2", Title: "Second", Type: types.PageTypeDocument, ParentID: strptr("root"), Position: 2},
	}

	roots := BuildTree(flat)
	require.Len(t, roots, 1)
	require.Len(t, roots[0].Children, 3)
	assert.Equal(t, []string{"c1", "c2", "c3"}, []string{
		roots[0].Children[0].ID, roots[0].Children[1].ID, roots[0].Children[2].ID,
	})
}

func TestBuildTree_SortsRootsByPosition(t *testing.T) {
	flat := []types.TreeNode{
		{ID: "r2", Title: "R2", Type: types.PageTypeFolder, Position: 5},
		{ID: "r1", Title: "R1", Type: types.PageTypeFolder, Position: 1},
	}

	roots := BuildTree(flat)
	require.Len(t, roots, 2)
	assert.Equal(t, "r1", roots[0].ID)
	assert.Equal(t, "r2", roots[1].ID)
}

func TestBuildTree_EmptyInput(t *testing.T) {
	roots := BuildTree(nil)
	assert.Empty(t, roots)
}
