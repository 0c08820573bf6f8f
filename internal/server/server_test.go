package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/anchorlayout/pkg/cache"
	"github.com/matzehuels/anchorlayout/pkg/observability"
	"github.com/matzehuels/anchorlayout/pkg/pipeline"
)

const cardTOML = `
[canvas]
width = 200
height = 100

[[element]]
id = "title"
width = 50
height = 20
  [element.center_x]
  [element.top]
  offset = 10

[[element]]
id = "body"
  [element.top]
  target = "title"
  align = "bottom"
  [element.left]
  target = "sidebar"
`

const cycleYAML = `
element:
  - id: a
    left: {target: b}
  - id: b
    left: {target: a}
`

const chainYAML = `
element:
  - id: a
    left: {target: b}
  - id: b
    left: {target: c}
  - id: c
    left: {target: d}
  - id: d
`

func newTestServer(t *testing.T, opts ...Option) *httptest.Server {
	t.Helper()
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	logger := log.NewWithOptions(io.Discard, log.Options{})
	runner := pipeline.NewRunner(fc, cache.NewScopedKeyer(nil, "serve:"), logger)
	ts := httptest.NewServer(New(runner, opts...).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func post(t *testing.T, url, contentType, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, contentType, strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func readAll(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %q", body["status"])
	}
}

func TestRequestID(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if _, err := uuid.Parse(resp.Header.Get(RequestIDHeader)); err != nil {
		t.Errorf("generated request id %q is not a uuid: %v", resp.Header.Get(RequestIDHeader), err)
	}

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/healthz", nil)
	req.Header.Set(RequestIDHeader, "trace-123")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if got := resp.Header.Get(RequestIDHeader); got != "trace-123" {
		t.Errorf("echoed request id = %q, want trace-123", got)
	}
}

func TestRender(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name        string
		query       string
		contentType string
		wantType    string
		wantBody    string
	}{
		{"default svg", "", "application/toml", "image/svg+xml", `id="element-title"`},
		{"text", "?format=txt", "application/toml", "text/plain; charset=utf-8", "body"},
		{"json", "?format=json", "text/x-toml", "application/json", `"id": "title"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, ts.URL+"/v1/render"+tt.query, tt.contentType, cardTOML)
			body := readAll(t, resp)
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status = %d, body %s", resp.StatusCode, body)
			}
			if got := resp.Header.Get("Content-Type"); got != tt.wantType {
				t.Errorf("Content-Type = %q, want %q", got, tt.wantType)
			}
			if !strings.Contains(body, tt.wantBody) {
				t.Errorf("body missing %q:\n%s", tt.wantBody, body)
			}
			// The missing sidebar is reported but not fatal.
			if got := resp.Header.Get("X-Diagnostics"); got != "1" {
				t.Errorf("X-Diagnostics = %q, want 1", got)
			}
		})
	}
}

func TestRenderCache(t *testing.T) {
	ts := newTestServer(t)
	first := post(t, ts.URL+"/v1/render?format=png&scale=1", "application/toml", cardTOML)
	if first.Header.Get("X-Cache") != "miss" {
		t.Errorf("first X-Cache = %q, want miss", first.Header.Get("X-Cache"))
	}
	second := post(t, ts.URL+"/v1/render?format=png&scale=1", "application/toml", cardTOML)
	if second.Header.Get("X-Cache") != "hit" {
		t.Errorf("second X-Cache = %q, want hit", second.Header.Get("X-Cache"))
	}
	if readAll(t, first) != readAll(t, second) {
		t.Error("cached png differs")
	}
}

func TestRenderErrors(t *testing.T) {
	ts := newTestServer(t, WithLimits(Limits{MaxBodyBytes: 512}))

	tests := []struct {
		name        string
		query       string
		contentType string
		body        string
		wantStatus  int
		wantCode    string
	}{
		{"strict cycle", "?strict=true", "application/yaml", cycleYAML, http.StatusUnprocessableEntity, "CYCLE_DETECTED"},
		{"bad document", "", "application/json", `{"element": [{"id": "a", "width": -5}]}`, http.StatusBadRequest, "INVALID_SIZE"},
		{"unknown key", "", "application/json", `{"elements": []}`, http.StatusBadRequest, "INVALID_DOCUMENT"},
		{"bad format", "?format=gif", "application/toml", cardTOML, http.StatusBadRequest, "INVALID_FORMAT"},
		{"bad width", "?width=wide", "application/toml", cardTOML, http.StatusBadRequest, "INVALID_INPUT"},
		{"bad strict", "?strict=maybe", "application/toml", cardTOML, http.StatusBadRequest, "INVALID_INPUT"},
		{"media type", "", "image/png", cardTOML, http.StatusUnsupportedMediaType, "INVALID_FORMAT"},
		{"empty body", "", "application/toml", "", http.StatusBadRequest, "INVALID_INPUT"},
		{"too large", "", "application/toml", cardTOML + strings.Repeat("# padding\n", 60), http.StatusRequestEntityTooLarge, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, ts.URL+"/v1/render"+tt.query, tt.contentType, tt.body)
			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", resp.StatusCode, tt.wantStatus, readAll(t, resp))
			}
			var body errorResponse
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				t.Fatalf("decode error body: %v", err)
			}
			if body.Code != tt.wantCode {
				t.Errorf("code = %q, want %q (%s)", body.Code, tt.wantCode, body.Error)
			}
			if body.RequestID == "" {
				t.Error("error body should carry the request id")
			}
		})
	}
}

func TestMaxDepthQueryIsCapped(t *testing.T) {
	tests := []struct {
		name       string
		limit      int
		query      string
		wantStatus int
	}{
		{"server limit", 2, "", http.StatusUnprocessableEntity},
		{"query cannot raise limit", 2, "&max_depth=100", http.StatusUnprocessableEntity},
		{"zero keeps limit", 2, "&max_depth=0", http.StatusUnprocessableEntity},
		{"query can lower limit", 0, "&max_depth=1", http.StatusUnprocessableEntity},
		{"default limit", 0, "&max_depth=1000000", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, WithLimits(Limits{MaxDepth: tt.limit}))
			resp := post(t, ts.URL+"/v1/layout?strict=1"+tt.query, "application/yaml", chainYAML)
			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", resp.StatusCode, tt.wantStatus, readAll(t, resp))
			}
			if tt.wantStatus == http.StatusOK {
				return
			}
			var body errorResponse
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				t.Fatal(err)
			}
			if body.Code != "DEPTH_EXCEEDED" {
				t.Errorf("code = %q, want DEPTH_EXCEEDED (%s)", body.Code, body.Error)
			}
		})
	}
}

func TestStrictDiagnosticsBody(t *testing.T) {
	ts := newTestServer(t)
	resp := post(t, ts.URL+"/v1/layout?strict=1", "application/yaml", cycleYAML)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", resp.StatusCode)
	}
	var body errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if len(body.Diagnostics) != 1 || body.Diagnostics[0].Kind != "cycle" {
		t.Errorf("Diagnostics = %+v", body.Diagnostics)
	}
}

func TestLayout(t *testing.T) {
	ts := newTestServer(t)
	resp := post(t, ts.URL+"/v1/layout?width=400", "application/toml", cardTOML)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, readAll(t, resp))
	}

	var frame struct {
		Width    int `json:"width"`
		Elements []struct {
			ID string `json:"id"`
			X  int    `json:"x"`
		} `json:"elements"`
		Diagnostics []struct {
			Kind   string `json:"kind"`
			Target string `json:"target"`
		} `json:"diagnostics"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&frame); err != nil {
		t.Fatal(err)
	}
	if frame.Width != 400 {
		t.Errorf("width = %d, want 400", frame.Width)
	}
	if len(frame.Elements) != 2 || frame.Elements[0].ID != "title" || frame.Elements[0].X != 175 {
		t.Errorf("elements = %+v", frame.Elements)
	}
	if len(frame.Diagnostics) != 1 || frame.Diagnostics[0].Target != "sidebar" {
		t.Errorf("diagnostics = %+v", frame.Diagnostics)
	}
}

func TestGraphDOT(t *testing.T) {
	ts := newTestServer(t)
	resp := post(t, ts.URL+"/v1/graph", "application/yaml", cycleYAML)
	body := readAll(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, body)
	}
	if !strings.HasPrefix(body, "digraph") {
		t.Errorf("expected DOT output, got:\n%s", body)
	}
	if !strings.Contains(body, "#e53e3e") {
		t.Error("cycle should be highlighted")
	}

	resp = post(t, ts.URL+"/v1/graph?format=png", "application/yaml", cycleYAML)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("png graph status = %d, want 400", resp.StatusCode)
	}
}

type recordingHTTPHooks struct {
	mu       sync.Mutex
	statuses []int
}

func (h *recordingHTTPHooks) OnRequest(context.Context, string, string) {}
func (h *recordingHTTPHooks) OnResponse(_ context.Context, _, _ string, status int, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.statuses = append(h.statuses, status)
}

func TestHTTPHooks(t *testing.T) {
	hooks := &recordingHTTPHooks{}
	observability.SetHTTPHooks(hooks)
	defer observability.Reset()

	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	post(t, ts.URL+"/v1/render?format=gif", "application/toml", cardTOML)

	hooks.mu.Lock()
	defer hooks.mu.Unlock()
	if len(hooks.statuses) != 2 || hooks.statuses[0] != 200 || hooks.statuses[1] != 400 {
		t.Errorf("statuses = %v, want [200 400]", hooks.statuses)
	}
}

func TestListenAndServeShutdown(t *testing.T) {
	logger := log.NewWithOptions(io.Discard, log.Options{})
	s := New(pipeline.NewRunner(nil, nil, logger))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("ListenAndServe = %v, want nil after shutdown", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
