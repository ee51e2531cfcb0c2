package pagination

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"net/url"
	"strconv"
	"time"

	"github.com/Sternrassler/jira-agile-client/pkg/client"
	"github.com/Sternrassler/jira-agile-client/pkg/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

var pagesFetchedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "jira_pages_fetched_total",
	Help: "Total number of list pages fetched by endpoint",
}, []string{"endpoint"})

// ErrNoProgress is wrapped in a *client.DecodeError when a page that does
// not end the loop reports maxResults <= 0, which would never move the cursor.
var ErrNoProgress = errors.New("server cursor did not advance")

// Getter is the single-request capability the fetcher needs.
// *client.Client implements it.
type Getter interface {
	GetJSON(ctx context.Context, rawURL string, query url.Values, out any) error
}

// Request describes one page loop.
type Request struct {
	// Endpoint is the collection URL.
	Endpoint string

	// Params are merged with maxResults/startAt on every request.
	Params url.Values

	// Policy decides when the loop ends.
	Policy Policy
}

// Fetcher runs page loops against a Getter.
type Fetcher struct {
	getter Getter
	logger zerolog.Logger
}

// NewFetcher creates a new fetcher
func NewFetcher(getter Getter) *Fetcher {
	return &Fetcher{
		getter: getter,
		logger: logging.NewLogger("pagination"),
	}
}

// Pages returns a lazy, forward-only sequence of decoded pages. Each step
// issues one GET; nothing is requested before the consumer asks for the
// next page, and nothing after the policy stops the loop. A failure is
// yielded once as (nil, err) and ends the sequence.
func (f *Fetcher) Pages(ctx context.Context, req Request) iter.Seq2[*Page, error] {
	return func(yield func(*Page, error) bool) {
		start := time.Now()
		endpoint := endpointPath(req.Endpoint)
		offset := 0
		prevStartAt := 0

		for index := 0; ; index++ {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}

			page := &Page{}
			if err := f.getter.GetJSON(ctx, req.Endpoint, pageParams(req.Params, offset), page); err != nil {
				yield(nil, err)
				return
			}
			if err := page.validate(req.Policy); err != nil {
				yield(nil, &client.DecodeError{URL: req.Endpoint, Err: err})
				return
			}

			pagesFetchedTotal.WithLabelValues(endpoint).Inc()
			f.logger.Debug().
				Str("endpoint", endpoint).
				Int("page", index).
				Int("offset", offset).
				Int("start_at", page.Start()).
				Int("max_results", page.Size()).
				Int("records", page.Len()).
				Msg("Fetched page")

			progress := Progress{Index: index, Offset: offset, PrevStartAt: prevStartAt}
			stop := req.Policy.Stop(progress, page)

			if !yield(page, nil) {
				return
			}

			if stop {
				f.logger.Debug().
					Str("endpoint", endpoint).
					Int("pages", index+1).
					Str("policy", req.Policy.String()).
					Dur("duration", time.Since(start)).
					Msg("Fetch complete")
				return
			}

			if page.Size() <= 0 {
				yield(nil, &client.DecodeError{
					URL: req.Endpoint,
					Err: fmt.Errorf("%w: startAt=%d maxResults=%d", ErrNoProgress, page.Start(), page.Size()),
				})
				return
			}

			prevStartAt = page.Start()
			offset = page.NextOffset()
		}
	}
}

// pageParams copies params and sets the pagination parameters.
func pageParams(params url.Values, offset int) url.Values {
	merged := make(url.Values, len(params)+2)
	for key, values := range params {
		merged[key] = append([]string(nil), values...)
	}
	merged.Set("maxResults", strconv.Itoa(PageSize))
	merged.Set("startAt", strconv.Itoa(offset))
	return merged
}

// endpointPath returns the URL path used as the metric label, matching the
// client's request metrics.
func endpointPath(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Path == "" {
		return rawURL
	}
	return u.Path
}
