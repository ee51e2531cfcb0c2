package cache

import "testing"

func TestKey_String(t *testing.T) {
	tests := []struct {
		name string
		key  Key
		want string
	}{
		{
			name: "operation and kind",
			key:  Key{OperationID: "sync-42", Kind: KindIssues},
			want: "jira:op:sync-42:issues",
		},
		{
			name: "whitespace trimmed",
			key:  Key{OperationID: "  sync-42 ", Kind: KindBoards},
			want: "jira:op:sync-42:boards",
		},
		{
			name: "empty operation",
			key:  Key{Kind: KindSprints},
			want: "jira:op:_:sprints",
		},
		{
			name: "operation prefix only",
			key:  Key{OperationID: "sync-42"},
			want: "jira:op:sync-42",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.key.String()
			if got != tt.want {
				t.Errorf("Key.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestKey_PresenceKey(t *testing.T) {
	key := Key{OperationID: "sync-42", Kind: KindProjects}
	if got, want := key.PresenceKey(), "jira:op:sync-42:projects:present"; got != want {
		t.Errorf("PresenceKey() = %v, want %v", got, want)
	}
}

// TestKey_Determinism ensures same input always produces same key
func TestKey_Determinism(t *testing.T) {
	key := Key{OperationID: "sync-42", Kind: KindIssues}

	first := key.String()
	for i := 0; i < 10; i++ {
		if result := key.String(); result != first {
			t.Errorf("result[%d] = %v, want %v (not deterministic)", i, result, first)
		}
	}
}

func TestParseKind(t *testing.T) {
	for _, k := range Kinds {
		got, err := ParseKind(string(k))
		if err != nil || got != k {
			t.Errorf("ParseKind(%q) = %q, %v", k, got, err)
		}
	}

	if _, err := ParseKind("epics"); err == nil {
		t.Error("ParseKind should reject unknown kinds")
	}
}
