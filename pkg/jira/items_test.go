package jira

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/Sternrassler/jira-agile-client/internal/testutil"
	"github.com/Sternrassler/jira-agile-client/pkg/client"
)

func TestSingleItemAccessors(t *testing.T) {
	mock := testutil.NewMockJira()
	defer mock.Close()

	mock.SetPages("/rest/api/3/project/ABC", `{"id":"10000","key":"ABC","name":"Alpha"}`)
	mock.SetPages("/rest/agile/1.0/issue/ABC-12", `{"id":"10012","key":"ABC-12"}`)
	mock.SetPages("/rest/agile/1.0/sprint/7", `{"id":7,"state":"active","name":"Sprint 7"}`)

	a := newTestAccessors(t, mock)
	ctx := context.Background()

	project, err := a.Project(ctx, "ABC")
	if err != nil {
		t.Fatalf("Project() failed: %v", err)
	}
	if project["name"] != "Alpha" {
		t.Errorf("project name = %v, want Alpha", project["name"])
	}

	issue, err := a.Issue(ctx, "ABC-12")
	if err != nil {
		t.Fatalf("Issue() failed: %v", err)
	}
	if issue["id"] != "10012" {
		t.Errorf("issue id = %v, want 10012", issue["id"])
	}

	sprint, err := a.Sprint(ctx, 7)
	if err != nil {
		t.Fatalf("Sprint() failed: %v", err)
	}
	if sprint["state"] != "active" {
		t.Errorf("sprint state = %v, want active", sprint["state"])
	}

	for i, r := range mock.Requests() {
		if r.Query.Has("startAt") {
			t.Errorf("request %d is paginated; single-item lookups must not be", i)
		}
	}
}

func TestSingleItemAccessors_NotCached(t *testing.T) {
	mock := testutil.NewMockJira()
	defer mock.Close()
	mock.SetPages("/rest/agile/1.0/sprint/7", `{"id":7}`)

	a := newTestAccessors(t, mock)
	for i := 0; i < 2; i++ {
		if _, err := a.Sprint(context.Background(), 7); err != nil {
			t.Fatalf("Sprint() call %d failed: %v", i, err)
		}
	}
	if n := mock.GetRequestCount(); n != 2 {
		t.Errorf("requests = %d, want 2", n)
	}
}

func TestSingleItemAccessors_NotFound(t *testing.T) {
	mock := testutil.NewMockJira()
	defer mock.Close()

	a := newTestAccessors(t, mock)
	_, err := a.Issue(context.Background(), "NOPE-1")

	var terr *client.TransportError
	if !errors.As(err, &terr) {
		t.Fatalf("expected *client.TransportError, got %v", err)
	}
	if terr.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want 404", terr.StatusCode)
	}
	if terr.ErrorClass != client.ErrorClassClient {
		t.Errorf("ErrorClass = %q, want %q", terr.ErrorClass, client.ErrorClassClient)
	}
}

func TestSingleItemAccessors_MalformedBody(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"array", `[1,2,3]`},
		{"null", `null`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := testutil.NewMockJira()
			defer mock.Close()
			mock.SetPages("/rest/api/3/project/ABC", tt.body)

			a := newTestAccessors(t, mock)
			record, err := a.Project(context.Background(), "ABC")

			var derr *client.DecodeError
			if !errors.As(err, &derr) {
				t.Fatalf("expected *client.DecodeError, got %v", err)
			}
			if record != nil {
				t.Errorf("record = %v, want nil", record)
			}
		})
	}
}
