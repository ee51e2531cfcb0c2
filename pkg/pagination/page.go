package pagination

import "fmt"

// PageSize is the fixed page size requested from the Agile API.
const PageSize = 50

// Page is one decoded response body from a paginated list endpoint.
// Record lists live under "values" for boards, projects and sprints and
// under "issues" for board issues.
type Page struct {
	StartAt    *int             `json:"startAt"`
	MaxResults *int             `json:"maxResults"`
	Total      int              `json:"total,omitempty"`
	IsLast     *bool            `json:"isLast,omitempty"`
	Values     []map[string]any `json:"values,omitempty"`
	Issues     []map[string]any `json:"issues,omitempty"`
}

// Start returns the server-reported startAt.
func (p *Page) Start() int {
	if p.StartAt == nil {
		return 0
	}
	return *p.StartAt
}

// Size returns the server-reported maxResults.
func (p *Page) Size() int {
	if p.MaxResults == nil {
		return 0
	}
	return *p.MaxResults
}

// Last reports the server-declared isLast flag (false when omitted).
func (p *Page) Last() bool {
	return p.IsLast != nil && *p.IsLast
}

// Len returns the number of records on the page across both envelopes.
func (p *Page) Len() int {
	return len(p.Values) + len(p.Issues)
}

// NextOffset is the cursor for the following request, taken from the
// server-reported values rather than the locally requested ones.
func (p *Page) NextOffset() int {
	return p.Start() + p.Size()
}

// validate checks the pagination metadata every policy depends on.
func (p *Page) validate(policy Policy) error {
	if p.StartAt == nil {
		return fmt.Errorf("page is missing startAt")
	}
	if p.MaxResults == nil {
		return fmt.Errorf("page is missing maxResults")
	}
	if policy == StopOnLastFlag && p.IsLast == nil {
		return fmt.Errorf("page is missing isLast")
	}
	return nil
}
