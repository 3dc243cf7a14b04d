package routing

import (
	"net/url"
	"strings"
)

// Tab is one section of the workspace page
type Tab struct {
	Index int    `json:"index"`
	Slug  string `json:"slug"`
}

// Tabs in display order. The first tab is the default.
var Tabs = []Tab{
	{0, "overview"},
	{1, "decisions"},
	{2, "equity-roles"},
	{3, "commitments"},
	{4, "tasks"},
	{5, "documents"},
	{6, "accountability"},
}

// DefaultTab is shown when the path names no tab or an unknown one
var DefaultTab = Tabs[0]

// WorkspaceRoute is a parsed workspace page path
type WorkspaceRoute struct {
	WorkspaceID string `json:"workspace_id"`
	Tab         Tab    `json:"tab"`
	Path        string `json:"path"`
}

// TabBySlug looks up a tab, falling back to DefaultTab
func TabBySlug(slug string) Tab {
	for _, t := range Tabs {
		if t.Slug == slug {
			return t
		}
	}
	return DefaultTab
}

// TabByIndex looks up a tab, falling back to DefaultTab
func TabByIndex(i int) Tab {
	if i < 0 || i >= len(Tabs) {
		return DefaultTab
	}
	return Tabs[i]
}

// ParseWorkspacePath parses /workspace/{id}[/{tab}]. It reports false when p
// is not a workspace page.
func ParseWorkspacePath(p string) (WorkspaceRoute, bool) {
	p = Clean(p)
	if !hasSegmentPrefix(p, WorkspacePrefix) {
		return WorkspaceRoute{}, false
	}
	parts := strings.Split(strings.TrimPrefix(p, WorkspacePrefix+"/"), "/")
	id, err := url.PathUnescape(parts[0])
	if err != nil || id == "" {
		return WorkspaceRoute{}, false
	}

	tab := DefaultTab
	if len(parts) > 1 {
		tab = TabBySlug(parts[1])
	}
	return WorkspaceRoute{WorkspaceID: id, Tab: tab, Path: TabPath(id, tab.Index)}, true
}

// TabPath builds the canonical path of tab index i in a workspace. The
// default tab lives at the bare workspace path.
func TabPath(workspaceID string, i int) string {
	base := WorkspacePrefix + "/" + url.PathEscape(workspaceID)
	tab := TabByIndex(i)
	if tab == DefaultTab {
		return base
	}
	return base + "/" + tab.Slug
}
