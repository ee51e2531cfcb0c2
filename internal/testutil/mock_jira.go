// Package testutil provides testing utilities for the Jira Agile client.
package testutil

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
)

// MockResponse defines the behavior for a mock Jira endpoint response.
type MockResponse struct {
	StatusCode int
	Body       string
}

// Request is one request observed by the mock server.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   []byte
}

// MockJira is a configurable mock Jira server for testing.
type MockJira struct {
	server *httptest.Server
	mu     sync.RWMutex

	// pages holds scripted responses per path, served in order by call count.
	pages    map[string][]MockResponse
	handlers map[string]func(w http.ResponseWriter, r *http.Request)
	calls    map[string]int
	requests []Request
}

// NewMockJira creates a new mock Jira server.
func NewMockJira() *MockJira {
	mock := &MockJira{
		pages:    make(map[string][]MockResponse),
		handlers: make(map[string]func(w http.ResponseWriter, r *http.Request)),
		calls:    make(map[string]int),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)

		key := r.Method + " " + r.URL.Path

		mock.mu.Lock()
		mock.requests = append(mock.requests, Request{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.Query(),
			Body:   body,
		})
		call := mock.calls[key]
		mock.calls[key] = call + 1
		handler, hasHandler := mock.handlers[key]
		scripted := mock.pages[key]
		mock.mu.Unlock()

		if hasHandler {
			handler(w, r)
			return
		}

		if len(scripted) == 0 {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprintf(w, `{"errorMessages":["no mock for %s"]}`, key)
			return
		}

		// Past the script, repeat the final response.
		resp := scripted[len(scripted)-1]
		if call < len(scripted) {
			resp = scripted[call]
		}

		w.Header().Set("Content-Type", "application/json;charset=UTF-8")
		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockJira) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockJira) Close() {
	m.server.Close()
}

// Reset clears all recorded requests and call counters.
func (m *MockJira) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = nil
	m.calls = make(map[string]int)
}

// SetHandler sets a custom handler for a method and path.
func (m *MockJira) SetHandler(method, path string, handler func(w http.ResponseWriter, r *http.Request)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[method+" "+path] = handler
}

// SetResponses scripts the responses returned for successive calls to a
// method and path.
func (m *MockJira) SetResponses(method, path string, responses ...MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pages[method+" "+path] = responses
}

// SetPages scripts successive GET pages for path.
func (m *MockJira) SetPages(path string, pages ...string) {
	responses := make([]MockResponse, len(pages))
	for i, page := range pages {
		responses[i] = MockResponse{StatusCode: http.StatusOK, Body: page}
	}
	m.SetResponses(http.MethodGet, path, responses...)
}

// Requests returns a copy of all recorded requests.
func (m *MockJira) Requests() []Request {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Request, len(m.requests))
	copy(out, m.requests)
	return out
}

// RequestsFor returns the recorded requests for a method and path.
func (m *MockJira) RequestsFor(method, path string) []Request {
	var out []Request
	for _, r := range m.Requests() {
		if r.Method == method && r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockJira) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.requests)
}

// ValuesPage renders a "values" envelope page as returned by board, project
// and sprint listings.
func ValuesPage(startAt, maxResults int, isLast bool, values ...map[string]any) string {
	return mustJSON(map[string]any{
		"startAt":    startAt,
		"maxResults": maxResults,
		"isLast":     isLast,
		"values":     nonNil(values),
	})
}

// IssuesPage renders an "issues" envelope page as returned by board issue
// listings, which carry no isLast flag.
func IssuesPage(startAt, maxResults, total int, issues ...map[string]any) string {
	return mustJSON(map[string]any{
		"startAt":    startAt,
		"maxResults": maxResults,
		"total":      total,
		"issues":     nonNil(issues),
	})
}

// Records builds n records with ids "prefix-from" onwards.
func Records(prefix string, from, n int) []map[string]any {
	out := make([]map[string]any, 0, n)
	for i := from; i < from+n; i++ {
		out = append(out, map[string]any{"id": prefix + "-" + strconv.Itoa(i)})
	}
	return out
}

func nonNil(records []map[string]any) []map[string]any {
	if records == nil {
		return []map[string]any{}
	}
	return records
}

func mustJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(data)
}
