package jira

import (
	"context"
	"errors"
	"net/url"
	"strconv"

	"github.com/Sternrassler/jira-agile-client/pkg/cache"
	"github.com/Sternrassler/jira-agile-client/pkg/client"
)

// Project fetches one project by key from the platform API. Single-item
// lookups bypass the operation cache and pagination.
func (a *Accessors) Project(ctx context.Context, projectKey string) (cache.Record, error) {
	return a.single(ctx, a.transport.DetailURL()+"/project/"+url.PathEscape(projectKey))
}

// Issue fetches one issue by key or id.
func (a *Accessors) Issue(ctx context.Context, issueKeyOrID string) (cache.Record, error) {
	return a.single(ctx, a.transport.AgileURL()+"/issue/"+url.PathEscape(issueKeyOrID))
}

// Sprint fetches one sprint by id.
func (a *Accessors) Sprint(ctx context.Context, sprintID int) (cache.Record, error) {
	return a.single(ctx, a.transport.AgileURL()+"/sprint/"+strconv.Itoa(sprintID))
}

func (a *Accessors) single(ctx context.Context, rawURL string) (cache.Record, error) {
	var record cache.Record
	if err := a.transport.GetJSON(ctx, rawURL, nil, &record); err != nil {
		return nil, err
	}
	if record == nil {
		return nil, &client.DecodeError{URL: rawURL, Err: errors.New("response body is null")}
	}
	return record, nil
}
