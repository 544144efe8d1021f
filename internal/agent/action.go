// Package agent turns free-form task requests into store operations and
// natural-language answers, behind two interchangeable backends.
package agent

import "strings"

// Action is the classified intent category driving dispatch.
type Action string

const (
	ActionCreate     Action = "create"
	ActionList       Action = "list"
	ActionUpdate     Action = "update"
	ActionDelete     Action = "delete"
	ActionStatistics Action = "statistics"
	ActionGeneral    Action = "general"
)

// Categories are checked in this fixed order; the first category with any
// keyword present in the text wins, regardless of keyword position. A request
// mentioning both "create" and "show" therefore classifies as create.
var actionKeywords = []struct {
	action   Action
	keywords []string
}{
	{ActionCreate, []string{"create", "add", "new task"}},
	{ActionList, []string{"list", "show", "get tasks", "tasks"}},
	{ActionUpdate, []string{"update", "change", "modify", "mark"}},
	{ActionStatistics, []string{"statistics", "stats", "summary", "overview"}},
	{ActionDelete, []string{"delete", "remove"}},
}

// Classify maps raw user text to an action category by keyword matching.
// Unmatched text classifies as general.
func Classify(text string) Action {
	lower := strings.ToLower(text)
	for _, c := range actionKeywords {
		for _, kw := range c.keywords {
			if strings.Contains(lower, kw) {
				return c.action
			}
		}
	}
	return ActionGeneral
}

// needsParams reports whether an action requires structured parameter
// extraction before dispatch.
func needsParams(a Action) bool {
	return a == ActionCreate || a == ActionUpdate || a == ActionDelete
}
