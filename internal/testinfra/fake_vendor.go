// Declaspectacle - Ticketing Integration and Regulatory Declarations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/declaspectacle

package testinfra

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
)

// Capture is one request received by a FakeVendor.
type Capture struct {
	Method  string
	Path    string
	Query   url.Values
	Headers http.Header
	Body    []byte
}

// FakeVendor is a scripted vendor API.
type FakeVendor struct {
	Server *httptest.Server
	Router chi.Router

	mu       sync.Mutex
	captures []Capture
}

// NewFakeVendor starts a fake vendor that is closed when the test ends.
// Unrouted paths answer 404.
func NewFakeVendor(t *testing.T) *FakeVendor {
	t.Helper()

	fv := &FakeVendor{Router: chi.NewRouter()}
	fv.Router.Use(fv.capture)
	fv.Server = httptest.NewServer(fv.Router)
	t.Cleanup(fv.Server.Close)
	return fv
}

func (fv *FakeVendor) capture(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body []byte
		if r.Body != nil {
			body, _ = io.ReadAll(r.Body)
			_ = r.Body.Close()
			r.Body = io.NopCloser(bytes.NewReader(body))
		}

		fv.mu.Lock()
		fv.captures = append(fv.captures, Capture{
			Method:  r.Method,
			Path:    r.URL.Path,
			Query:   r.URL.Query(),
			Headers: r.Header.Clone(),
			Body:    body,
		})
		fv.mu.Unlock()

		next.ServeHTTP(w, r)
	})
}

// URL returns the server root.
func (fv *FakeVendor) URL() string {
	return fv.Server.URL
}

// Handle routes method and pattern (chi syntax) to h.
func (fv *FakeVendor) Handle(method, pattern string, h http.HandlerFunc) {
	fv.Router.MethodFunc(method, pattern, h)
}

// HandleJSON answers method and pattern with a fixed JSON body.
func (fv *FakeVendor) HandleJSON(method, pattern string, status int, body interface{}) {
	fv.Handle(method, pattern, func(w http.ResponseWriter, _ *http.Request) {
		WriteJSON(w, status, body)
	})
}

// HandleSequence answers successive calls with successive handlers; the last
// one repeats once the sequence is exhausted.
func (fv *FakeVendor) HandleSequence(method, pattern string, handlers ...http.HandlerFunc) {
	var (
		mu   sync.Mutex
		next int
	)
	fv.Handle(method, pattern, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		h := handlers[next]
		if next < len(handlers)-1 {
			next++
		}
		mu.Unlock()
		h(w, r)
	})
}

// Captures returns a copy of every request received so far.
func (fv *FakeVendor) Captures() []Capture {
	fv.mu.Lock()
	defer fv.mu.Unlock()
	out := make([]Capture, len(fv.captures))
	copy(out, fv.captures)
	return out
}

// Count returns how many requests hit path.
func (fv *FakeVendor) Count(path string) int {
	fv.mu.Lock()
	defer fv.mu.Unlock()
	n := 0
	for i := range fv.captures {
		if fv.captures[i].Path == path {
			n++
		}
	}
	return n
}

// WriteJSON writes body as JSON with status.
func WriteJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if raw, ok := body.(string); ok {
		_, _ = io.WriteString(w, raw)
		return
	}
	_ = json.NewEncoder(w).Encode(body)
}

// Status returns a handler answering status with an empty body.
func Status(status int) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
	}
}
