// Package promptbuilder assembles the gateway's per-request system
// prompt, grounded on the teacher's internal/session.SystemPrompt:
// ordered sections joined with blank lines, each contributing an
// estimated token count for admin views.
package promptbuilder

import (
	"fmt"
	"strings"
	"time"
)

// PageTypes enumerates the eight page types every inline-instructions
// section must name.
var PageTypes = []string{
	"FOLDER", "DOCUMENT", "SHEET", "CANVAS", "TASK_LIST", "AI_CHAT", "CHANNEL", "FILE",
}

// ContextScope distinguishes the three context shapes a request can run
// against.
type ContextScope string

const (
	ScopeDashboard ContextScope = "dashboard"
	ScopeDrive     ContextScope = "drive"
	ScopePage      ContextScope = "page"
)

// DashboardContext is the cross-workspace context section's input.
type DashboardContext struct{}

// DriveContext is the drive context section's input.
type DriveContext struct {
	Name string
	Slug string
	ID   string
}

// PageContext is the page context section's input.
type PageContext struct {
	Path         string
	Type         string
	Breadcrumbs  []string
	IsTaskLinked bool
}

// Mention is a user-supplied @[label](id:type) reference.
type Mention struct {
	Label string
	ID    string
	Type  string
}

// Agent describes a visible AI_CHAT agent page.
type Agent struct {
	ID         string
	Title      string
	Definition string
}

// Request carries everything the assembler needs to build one system
// prompt.
type Request struct {
	Scope      ContextScope
	Dashboard  *DashboardContext
	Drive      *DriveContext
	Page       *PageContext
	Mentions   []Mention
	Timezone   string
	ReadOnly   bool
	Agents     []Agent
	PageTree   string // pre-rendered markdown tree, capped by the caller (C13 cache)
	PageTreeScope string // "subtree" to note a children-scoped tree, "" otherwise
}

// Section is one named, ordered contribution to the assembled prompt.
type Section struct {
	Name       string
	Content    string
	EstTokens  int
}

// Assembler builds system prompts per spec §4.6.
type Assembler struct{}

// New constructs an Assembler.
func New() *Assembler { return &Assembler{} }

// Build assembles the full ordered section list and the joined prompt
// text.
func (a *Assembler) Build(req Request) (string, []Section) {
	var sections []Section

	add := func(name, content string) {
		if content == "" {
			return
		}
		sections = append(sections, Section{Name: name, Content: content, EstTokens: estimateTokens(content)})
	}

	add("core", a.corePrompt(req.ReadOnly))
	add("context", a.contextSection(req))
	add("mentions", a.mentionSection(req.Mentions))
	add("timestamp", a.timestampSection(req.Timezone))
	add("behavior", a.behaviorBlock())
	if req.ReadOnly {
		add("read_only", a.readOnlyBlock())
	}
	add("inline_instructions", a.inlineInstructions(req.Scope))
	if req.Scope == ScopeDrive || req.Scope == ScopeDashboard {
		add("agent_awareness", a.agentAwarenessSection(req.Agents))
	}
	if req.Scope == ScopeDrive || req.Scope == ScopePage {
		add("page_tree", a.pageTreeSection(req.PageTree, req.PageTreeScope))
	}

	parts := make([]string, len(sections))
	for i, s := range sections {
		parts[i] = s.Content
	}
	return strings.Join(parts, "\n\n"), sections
}

func estimateTokens(s string) int {
	if len(s) == 0 {
		return 0
	}
	return (len(s) + 3) / 4
}

func (a *Assembler) corePrompt(readOnly bool) string {
	restriction := "modify pages"
	if readOnly {
		restriction = "only read and summarize pages — modification tools are unavailable for this request"
	}
	return fmt.Sprintf("You are the PageSpace assistant. You help the user navigate, search, and %s in their workspace.", restriction)
}

func (a *Assembler) contextSection(req Request) string {
	switch req.Scope {
	case ScopeDashboard:
		return "# Context\n\nYou are answering from the cross-workspace dashboard; no single drive or page is in scope."
	case ScopeDrive:
		if req.Drive == nil {
			return ""
		}
		return fmt.Sprintf("# Context\n\nDrive: %s (slug: %s, id: %s)", req.Drive.Name, req.Drive.Slug, req.Drive.ID)
	case ScopePage:
		if req.Page == nil {
			return ""
		}
		var b strings.Builder
		b.WriteString("# Context\n\n")
		fmt.Fprintf(&b, "Page: %s (type: %s)\n", req.Page.Path, req.Page.Type)
		if len(req.Page.Breadcrumbs) > 0 {
			fmt.Fprintf(&b, "Breadcrumbs: %s\n", strings.Join(req.Page.Breadcrumbs, " > "))
		}
		if req.Page.IsTaskLinked {
			b.WriteString("This page is linked to a task.\n")
		}
		return b.String()
	default:
		return ""
	}
}

func (a *Assembler) mentionSection(mentions []Mention) string {
	if len(mentions) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("# Referenced Items\n\nThe user referenced the following items; read them before responding:\n")
	for _, m := range mentions {
		fmt.Fprintf(&b, "- %s (id: %s, type: %s)\n", m.Label, m.ID, m.Type)
	}
	return b.String()
}

func (a *Assembler) timestampSection(tz string) string {
	loc, err := time.LoadLocation(tz)
	if err != nil || tz == "" {
		loc = time.UTC
		tz = "UTC"
	}
	now := time.Now().In(loc)

	bucket := "evening"
	switch {
	case now.Hour() < 12:
		bucket = "morning"
	case now.Hour() < 17:
		bucket = "afternoon"
	}

	return fmt.Sprintf("# Current Time\n\n%s (%s, %s)", now.Format("2006-01-02 15:04:05 MST"), bucket, tz)
}

// StartOfDay computes local midnight for tz as of now, by taking now's
// y/m/d in tz and reconstructing midnight of that date in the same
// location, so a DST offset change later that day does not shift the
// result.
func StartOfDay(now time.Time, tz string) (time.Time, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.Time{}, err
	}
	local := now.In(loc)
	y, m, d := local.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc), nil
}

func (a *Assembler) behaviorBlock() string {
	return `# Response Style

- Respond directly; do not narrate what you are about to do before doing it.
- Prefer concrete answers over open-ended questions.
- When a tool call fails, explain the failure briefly rather than retrying silently.`
}

func (a *Assembler) readOnlyBlock() string {
	return `# Read-Only Mode

This request runs in read-only mode: page_create, page_update, page_move, page_trash, and page_restore are unavailable. Explain that a modification was requested but cannot be performed here.`
}

func (a *Assembler) inlineInstructions(scope ContextScope) string {
	types := strings.Join(PageTypes, ", ")
	switch scope {
	case ScopePage:
		return fmt.Sprintf(`# Working With This Page

Page types: %s. Read a page before writing to it. FILE pages are read-only and can never be edited directly.`, types)
	default:
		return fmt.Sprintf(`# Working With Pages

Page types: %s. Read a page before writing to it. FILE pages are read-only and can never be edited directly.`, types)
	}
}

func (a *Assembler) agentAwarenessSection(agents []Agent) string {
	if len(agents) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("# Available Agents\n\nThe following AI_CHAT agents are visible to you:\n")
	for _, ag := range agents {
		fmt.Fprintf(&b, "- %s (id: %s): %s\n", ag.Title, ag.ID, ag.Definition)
	}
	return b.String()
}

func (a *Assembler) pageTreeSection(tree, scope string) string {
	if tree == "" {
		return ""
	}
	header := "# Page Tree\n\n"
	if scope == "subtree" {
		header = "# Page Tree (current page's subtree)\n\n"
	}
	return header + tree
}
