// Package testutil provides testing utilities for the jolpica-f1 client.
package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"
)

// MockResponse defines the behavior for a mock jolpica endpoint response.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockJolpica is a configurable mock jolpica-f1 server for testing.
//
// Handlers are keyed by path (e.g. "/2023/4/results.json"). A path may also be given a
// sequence of responses, served in order; the last one repeats.
type MockJolpica struct {
	server    *httptest.Server
	mu        sync.RWMutex
	handlers  map[string]func(w http.ResponseWriter, r *http.Request)
	sequences map[string][]MockResponse

	// Tracking
	RequestCount      int
	PathCounts        map[string]int
	LastRequestHeader http.Header
	LastQuery         map[string]string
}

// NewMockJolpica creates a new mock jolpica server.
func NewMockJolpica() *MockJolpica {
	mock := &MockJolpica{
		handlers:   make(map[string]func(w http.ResponseWriter, r *http.Request)),
		sequences:  make(map[string][]MockResponse),
		PathCounts: make(map[string]int),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.RequestCount++
		mock.PathCounts[r.URL.Path]++
		mock.LastRequestHeader = r.Header.Clone()
		mock.LastQuery = map[string]string{
			"limit":  r.URL.Query().Get("limit"),
			"offset": r.URL.Query().Get("offset"),
		}

		if seq, ok := mock.sequences[r.URL.Path]; ok && len(seq) > 0 {
			resp := seq[0]
			if len(seq) > 1 {
				mock.sequences[r.URL.Path] = seq[1:]
			}
			mock.mu.Unlock()
			writeResponse(w, resp)
			return
		}

		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.Unlock()

		if exists {
			handler(w, r)
			return
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"detail": "Not found."}`))
	}))

	return mock
}

// URL returns the mock server URL, usable as a client base URL.
func (m *MockJolpica) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockJolpica) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockJolpica) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.PathCounts = make(map[string]int)
	m.LastRequestHeader = nil
	m.LastQuery = nil
}

// SetHandler sets a custom handler for a specific path.
func (m *MockJolpica) SetHandler(path string, handler func(w http.ResponseWriter, r *http.Request)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a simple response for a path.
func (m *MockJolpica) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		writeResponse(w, resp)
	})
}

// SetSequence serves responses for path in order, repeating the last one.
func (m *MockJolpica) SetSequence(path string, responses ...MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sequences[path] = responses
}

// SetPages serves the pages of one query: bodies maps an offset to the page starting there.
// Requests at any other offset get 404.
func (m *MockJolpica) SetPages(path string, bodies map[uint32]string) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		offset, _ := strconv.ParseUint(r.URL.Query().Get("offset"), 10, 32)
		body, ok := bodies[uint32(offset)]
		if !ok {
			writeResponse(w, MockResponse{StatusCode: http.StatusNotFound, Body: `{"detail": "Not found."}`})
			return
		}
		writeResponse(w, NewOKResponse(body))
	})
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockJolpica) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

// GetPathCount returns the number of requests made for path.
func (m *MockJolpica) GetPathCount(path string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.PathCounts[path]
}

// GetLastQuery returns the limit and offset of the last request.
func (m *MockJolpica) GetLastQuery() (limit, offset string) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.LastQuery["limit"], m.LastQuery["offset"]
}

func writeResponse(w http.ResponseWriter, resp MockResponse) {
	if resp.Delay > 0 {
		time.Sleep(resp.Delay)
	}
	for key, value := range resp.Headers {
		w.Header().Set(key, value)
	}
	w.WriteHeader(resp.StatusCode)
	if resp.Body != "" {
		w.Write([]byte(resp.Body))
	}
}

// NewOKResponse creates a standard 200 OK JSON response.
func NewOKResponse(body string) MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       body,
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
	}
}

// NewRateLimitResponse creates a 429 Too Many Requests response.
func NewRateLimitResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusTooManyRequests,
		Body:       `{"detail": "Request was throttled."}`,
		Headers: map[string]string{
			"Content-Type": "application/json",
			"Retry-After":  "1",
		},
	}
}

// NewServerErrorResponse creates a 500 Internal Server Error response.
func NewServerErrorResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       `{"detail": "Internal server error"}`,
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
	}
}

// NewNotFoundResponse creates a 404 Not Found response.
func NewNotFoundResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusNotFound,
		Body:       `{"detail": "Not found."}`,
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
	}
}

// Envelope wraps a table in an MRData envelope. table is the JSON of the table object
// member, e.g. `"SeasonTable":{"Seasons":[...]}`.
func Envelope(limit, offset, total int, table string) string {
	return fmt.Sprintf(`{"MRData":{"xmlns":"","series":"f1","url":"http://api.jolpi.ca/ergast/f1/test.json",`+
		`"limit":"%d","offset":"%d","total":"%d",%s}}`, limit, offset, total, table)
}

// SeasonsPage returns a page of seasons starting at year first.
func SeasonsPage(limit, offset, total int, first int) string {
	n := min(limit, max(total-offset, 0))
	seasons := make([]string, 0, n)
	for i := 0; i < n; i++ {
		year := first + offset + i
		seasons = append(seasons, fmt.Sprintf(
			`{"season":"%d","url":"https://en.wikipedia.org/wiki/%d_Formula_One_World_Championship"}`, year, year))
	}
	return Envelope(limit, offset, total, `"SeasonTable":{"Seasons":[`+strings.Join(seasons, ",")+`]}`)
}

// Driver returns the JSON of one driver.
func Driver(id, given, family string) string {
	return fmt.Sprintf(`{"driverId":"%s","url":"https://en.wikipedia.org/wiki/%s_%s",`+
		`"givenName":"%s","familyName":"%s","dateOfBirth":"1990-01-01","nationality":"Dutch"}`,
		id, given, family, given, family)
}

// RaceResult returns the JSON of one race result for driver.
func RaceResult(position int, driver string) string {
	return fmt.Sprintf(`{"number":"%d","position":"%d","positionText":"%d","points":"0",`+
		`"Driver":%s,"Constructor":{"constructorId":"red_bull","url":"https://en.wikipedia.org/wiki/Red_Bull_Racing",`+
		`"name":"Red Bull","nationality":"Austrian"},"grid":"%d","laps":"57","status":"Finished"}`,
		position, position, position, driver, position)
}

// Race returns the JSON of one race with extra payload members, e.g. `"Results":[...]`.
func Race(season, round int, extra string) string {
	race := fmt.Sprintf(`{"season":"%d","round":"%d","url":"https://en.wikipedia.org/wiki/%d_Grand_Prix",`+
		`"raceName":"Test Grand Prix","Circuit":{"circuitId":"bahrain","url":"https://en.wikipedia.org/wiki/Bahrain",`+
		`"circuitName":"Bahrain International Circuit","Location":{"lat":"26.0325","long":"50.5106",`+
		`"locality":"Sakhir","country":"Bahrain"}},"date":"%d-03-05","time":"15:00:00Z"`,
		season, round, season, season)
	if extra != "" {
		race += "," + extra
	}
	return race + "}"
}

// RacesTable returns a RaceTable member holding races.
func RacesTable(races ...string) string {
	return `"RaceTable":{"Races":[` + strings.Join(races, ",") + `]}`
}
