package cache

import (
	"fmt"
	"strings"
)

// Key identifies one operation's cache entry for a resource kind.
type Key struct {
	// OperationID scopes the entry to one logical unit of work.
	OperationID string

	// Kind is the resource kind.
	Kind Kind
}

// String generates a deterministic key string.
// Format: jira:op:<operation>:<kind>
//
// Example:
//
//	jira:op:sync-board-42-1700000000:issues
func (k Key) String() string {
	parts := []string{"jira", "op"}

	op := strings.TrimSpace(k.OperationID)
	if op == "" {
		op = "_"
	}
	parts = append(parts, op)

	if k.Kind != "" {
		parts = append(parts, string(k.Kind))
	}

	return strings.Join(parts, ":")
}

// PresenceKey is the marker key recording that the entry exists, even when
// it holds no records.
func (k Key) PresenceKey() string {
	return fmt.Sprintf("%s:present", k.String())
}
