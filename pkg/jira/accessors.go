// Package jira provides the resource accessors for Jira Agile boards,
// board projects, board issues and board sprints, plus single-item lookups.
package jira

import (
	"context"
	"fmt"
	"iter"
	"net/url"
	"strconv"

	"github.com/Sternrassler/jira-agile-client/pkg/cache"
	"github.com/Sternrassler/jira-agile-client/pkg/client"
	"github.com/Sternrassler/jira-agile-client/pkg/logging"
	"github.com/Sternrassler/jira-agile-client/pkg/pagination"
	"github.com/rs/zerolog"
)

// Batches is a lazy sequence of record batches, one per page.
type Batches = iter.Seq2[[]cache.Record, error]

// Transport is what the accessors need from the HTTP layer.
// *client.Client implements it.
type Transport interface {
	pagination.Getter
	AgileURL() string
	DetailURL() string
}

// Accessors composes the page fetcher with the per-operation cache.
type Accessors struct {
	transport Transport
	fetcher   *pagination.Fetcher
	logger    zerolog.Logger
}

// IssueOptions are the optional filters for the board issues listing.
type IssueOptions struct {
	// JQL is passed verbatim as the jql query parameter when non-empty.
	JQL string
}

// listing describes one paginated resource endpoint.
type listing struct {
	kind     cache.Kind
	endpoint string
	params   url.Values
	policy   pagination.Policy
	envelope func(*pagination.Page) []cache.Record
}

// New creates accessors on top of a configured Jira client.
func New(c *client.Client) *Accessors {
	return NewWithTransport(c)
}

// NewWithTransport creates accessors on top of any Transport.
func NewWithTransport(t Transport) *Accessors {
	return &Accessors{
		transport: t,
		fetcher:   pagination.NewFetcher(t),
		logger:    logging.NewLogger("jira-accessors"),
	}
}

func valuesEnvelope(p *pagination.Page) []cache.Record { return p.Values }
func issuesEnvelope(p *pagination.Page) []cache.Record { return p.Issues }

// Boards lists all boards visible to the credentials.
func (a *Accessors) Boards(ctx context.Context, op *cache.Operation) Batches {
	return a.list(ctx, op, listing{
		kind:     cache.KindBoards,
		endpoint: a.transport.AgileURL() + "/board/",
		policy:   pagination.StopOnLastFlag,
		envelope: valuesEnvelope,
	})
}

// Projects lists the projects associated with a board.
func (a *Accessors) Projects(ctx context.Context, op *cache.Operation, boardID int) Batches {
	return a.list(ctx, op, listing{
		kind:     cache.KindProjects,
		endpoint: a.boardURL(boardID, "project"),
		policy:   pagination.StopOnLastFlag,
		envelope: valuesEnvelope,
	})
}

// Issues lists the issues on a board. The listing omits isLast, so the loop
// ends when the server's startAt stops advancing.
func (a *Accessors) Issues(ctx context.Context, op *cache.Operation, boardID int, opts IssueOptions) Batches {
	params := url.Values{}
	if opts.JQL != "" {
		params.Set("jql", opts.JQL)
	}

	return a.list(ctx, op, listing{
		kind:     cache.KindIssues,
		endpoint: a.boardURL(boardID, "issue"),
		params:   params,
		policy:   pagination.StopOnOffsetStall,
		envelope: issuesEnvelope,
	})
}

// Sprints lists the sprints of a board.
func (a *Accessors) Sprints(ctx context.Context, op *cache.Operation, boardID int) Batches {
	return a.list(ctx, op, listing{
		kind:     cache.KindSprints,
		endpoint: a.boardURL(boardID, "sprint"),
		policy:   pagination.StopOnLastFlag,
		envelope: valuesEnvelope,
	})
}

func (a *Accessors) boardURL(boardID int, resource string) string {
	return a.transport.AgileURL() + "/board/" + strconv.Itoa(boardID) + "/" + resource
}

// list serves l from the operation cache when an entry exists, otherwise
// streams it from Jira and appends every page to the cache as it arrives.
func (a *Accessors) list(ctx context.Context, op *cache.Operation, l listing) Batches {
	return func(yield func([]cache.Record, error) bool) {
		if op == nil {
			yield(nil, fmt.Errorf("list %s: operation cache is required", l.kind))
			return
		}

		cached, ok, err := op.Lookup(ctx, l.kind)
		if err != nil {
			yield(nil, fmt.Errorf("list %s: %w", l.kind, err))
			return
		}
		if ok {
			a.logger.Info().
				Str("kind", string(l.kind)).
				Int("records", len(cached)).
				Msgf("Picking %s from cache", l.kind)
			yield(cached, nil)
			return
		}

		if jql := l.params.Get("jql"); jql != "" {
			a.logger.Info().Str("jql", jql).Msg("Found JQL filter")
		}

		req := pagination.Request{
			Endpoint: l.endpoint,
			Params:   l.params,
			Policy:   l.policy,
		}

		for page, err := range a.fetcher.Pages(ctx, req) {
			if err != nil {
				yield(nil, fmt.Errorf("list %s: %w", l.kind, err))
				return
			}

			records := l.envelope(page)
			if records == nil {
				records = []cache.Record{}
			}
			if err := op.Append(ctx, l.kind, records); err != nil {
				yield(nil, err)
				return
			}

			if !yield(records, nil) {
				return
			}
		}
	}
}

// Collect drains a batch sequence into one slice, stopping at the first error.
func Collect(batches Batches) ([]cache.Record, error) {
	var out []cache.Record
	for batch, err := range batches {
		if err != nil {
			return out, err
		}
		out = append(out, batch...)
	}
	return out, nil
}
