package catalog

import (
	"sort"

	"github.com/pagespace/gateway/internal/tool"
)

// writeOps is the set of catalog entry names isReadOnly filtering removes.
var writeOps = map[string]bool{
	"page_create":  true,
	"page_update":  true,
	"page_move":    true,
	"page_trash":   true,
	"page_restore": true,
}

const webSearchName = "web_search"

// Entry is one flat catalog member.
type Entry struct {
	Name string
	Tool tool.Tool
}

// Dependencies are the domain stores the catalog's tools delegate to.
type Dependencies struct {
	Pages       PageStore
	Search      SearchEngine
	Activity    ActivityStore
	Drives      DriveStore
	Agents      AgentStore
	Attachments AttachmentStore
	Schema      SchemaDescriber
}

// Catalog is the flat name -> tool map the orchestrator exposes to a
// model, before isReadOnly/webSearchEnabled filtering.
type Catalog struct {
	entries map[string]*Entry
}

// New builds the catalog's eight fixed internal groups (thirteen flat
// names) from deps.
func New(deps Dependencies) *Catalog {
	c := &Catalog{entries: make(map[string]*Entry)}
	add := func(t tool.Tool) {
		c.entries[t.ID()] = &Entry{Name: t.ID(), Tool: t}
	}

	add(newPageCreateTool(deps.Pages))
	add(newPageUpdateTool(deps.Pages))
	add(newPageMoveTool(deps.Pages))
	add(newPageTrashTool(deps.Pages))
	add(newPageRestoreTool(deps.Pages))
	add(newPageListTool(deps.Pages))
	add(newSearchTool(deps.Search))
	add(newWebSearchTool())
	add(newActivityLogReadTool(deps.Activity))
	add(newDriveReadTool(deps.Drives))
	add(newAgentListTool(deps.Agents))
	add(newAttachmentReadTool(deps.Attachments))
	add(newDescribeSchemaTool(deps.Schema))

	return c
}

// AddExternal registers an externally sourced tool (an MCP server's tool,
// wrapped by mcpconv) under its own namespaced ID. Unlike the fixed
// internal groups, external tools are never subject to the isReadOnly
// write-op strip list, since the gateway has no visibility into what an
// MCP tool actually mutates; webSearchEnabled filtering still applies
// only to the builtin web_search entry.
func (c *Catalog) AddExternal(t tool.Tool) {
	c.entries[t.ID()] = &Entry{Name: t.ID(), Tool: t}
}

// Filter returns the subset of tools visible for a request, applying
// isReadOnly (strip write-ops entries) and webSearchEnabled (strip
// web_search) per spec §4.5.
func (c *Catalog) Filter(isReadOnly, webSearchEnabled bool) map[string]tool.Tool {
	out := make(map[string]tool.Tool, len(c.entries))
	for name, e := range c.entries {
		if isReadOnly && writeOps[name] {
			continue
		}
		if !webSearchEnabled && name == webSearchName {
			continue
		}
		out[name] = e.Tool
	}
	return out
}

// Summary describes which names a filtered view allows versus denies,
// used by the admin global-prompt viewer.
type Summary struct {
	Allowed []string
	Denied  []string
}

// Describe returns the allow/deny summary for the given filter flags.
func (c *Catalog) Describe(isReadOnly, webSearchEnabled bool) Summary {
	allowed := c.Filter(isReadOnly, webSearchEnabled)
	var s Summary
	for name := range c.entries {
		if _, ok := allowed[name]; ok {
			s.Allowed = append(s.Allowed, name)
		} else {
			s.Denied = append(s.Denied, name)
		}
	}
	sort.Strings(s.Allowed)
	sort.Strings(s.Denied)
	return s
}

// Names returns every catalog entry name, sorted.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.entries))
	for name := range c.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
