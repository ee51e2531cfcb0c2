package cache

import "fmt"

// Record is one raw JSON-shaped record as returned by Jira.
type Record = map[string]any

// Kind is a resource kind; it routes accessor calls and keys cache entries.
type Kind string

const (
	KindBoards   Kind = "boards"
	KindProjects Kind = "projects"
	KindIssues   Kind = "issues"
	KindSprints  Kind = "sprints"
)

// Kinds lists every resource kind.
var Kinds = []Kind{KindBoards, KindProjects, KindIssues, KindSprints}

// ParseKind converts a string to a Kind.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown resource kind %q", s)
}
