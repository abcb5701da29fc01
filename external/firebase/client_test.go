package firebase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/starleague/internal/platform/logging"
	"github.com/riskibarqy/starleague/internal/platform/resilience"
	"github.com/riskibarqy/starleague/internal/platform/snapshot"
	"github.com/riskibarqy/starleague/internal/usecase"
)

func newTestClient(t *testing.T, server *httptest.Server, mutate func(*ClientConfig)) *Client {
	t.Helper()
	cfg := ClientConfig{
		HTTPClient:     server.Client(),
		BaseURL:        server.URL,
		AuthToken:      "secret-token",
		ReconnectDelay: 10 * time.Millisecond,
		Logger:         logging.NewNop(),
	}
	if mutate != nil {
		mutate(&cfg)
	}
	client, err := NewClient(cfg)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestClient_ReadUsesJSONEndpointWithAuth(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("auth") != "secret-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch r.URL.Path {
		case "/teams.json":
			_, _ = io.WriteString(w, `{"t1":{"name":"Stars"}}`)
		default:
			_, _ = io.WriteString(w, `null`)
		}
	}))
	defer server.Close()

	client := newTestClient(t, server, nil)

	snap, err := client.Read(context.Background(), "teams")
	if err != nil {
		t.Fatalf("read teams: %v", err)
	}
	if !snap.Exists() || snap.Path != "teams" {
		t.Fatalf("unexpected snapshot: path=%s raw=%s", snap.Path, snap.Raw)
	}

	missing, err := client.Read(context.Background(), "news")
	if err != nil {
		t.Fatalf("read news: %v", err)
	}
	if missing.Exists() {
		t.Fatalf("null payload must be absent, got %s", missing.Raw)
	}
}

func TestClient_SharedReadSurvivesCancelledCaller(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	arrived := make(chan struct{}, 4)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		arrived <- struct{}{}
		<-release
		_, _ = io.WriteString(w, `{"t1":{"name":"Stars"}}`)
	}))
	defer server.Close()
	defer func() {
		select {
		case <-release:
		default:
			close(release)
		}
	}()

	client := newTestClient(t, server, nil)

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := client.Read(firstCtx, "teams")
		firstErr <- err
	}()
	<-arrived

	type result struct {
		snap snapshot.Snapshot
		err  error
	}
	second := make(chan result, 1)
	go func() {
		snap, err := client.Read(context.Background(), "teams")
		second <- result{snap: snap, err: err}
	}()
	time.Sleep(50 * time.Millisecond)

	cancelFirst()
	if err := <-firstErr; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancelled caller to get context.Canceled, got %v", err)
	}

	close(release)
	got := <-second
	if got.err != nil {
		t.Fatalf("second reader failed after first caller cancelled: %v", got.err)
	}
	if !got.snap.Exists() || got.snap.Path != "teams" {
		t.Fatalf("unexpected snapshot: path=%s raw=%s", got.snap.Path, got.snap.Raw)
	}
}

func TestClient_WriteMethods(t *testing.T) {
	t.Parallel()

	type call struct {
		method string
		path   string
		body   string
	}
	var mu sync.Mutex
	var calls []call

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		calls = append(calls, call{method: r.Method, path: r.URL.Path, body: string(body)})
		mu.Unlock()
		if r.Method == http.MethodPost {
			_, _ = io.WriteString(w, `{"name":"-Nx1"}`)
			return
		}
		_, _ = io.WriteString(w, `null`)
	}))
	defer server.Close()

	ctx := context.Background()
	client := newTestClient(t, server, nil)

	if err := client.Write(ctx, "teams", []map[string]any{{"id": "t1"}}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := client.Update(ctx, "site", map[string]any{"nameFr": "LIGUE"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	key, err := client.Push(ctx, "players", map[string]any{"name": "A"})
	if err != nil {
		t.Fatalf("push: %v", err)
	}
	if key != "-Nx1" {
		t.Fatalf("unexpected push key: %s", key)
	}
	if err := client.Remove(ctx, "matches"); err != nil {
		t.Fatalf("remove: %v", err)
	}

	want := []call{
		{method: http.MethodPut, path: "/teams.json", body: `[{"id":"t1"}]`},
		{method: http.MethodPatch, path: "/site.json", body: `{"nameFr":"LIGUE"}`},
		{method: http.MethodPost, path: "/players.json", body: `{"name":"A"}`},
		{method: http.MethodDelete, path: "/matches.json", body: ``},
	}
	if len(calls) != len(want) {
		t.Fatalf("unexpected calls: %+v", calls)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Fatalf("call %d: got=%+v want=%+v", i, calls[i], want[i])
		}
	}
}

func TestClient_RetriesTransientStatus(t *testing.T) {
	t.Parallel()

	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if attempts.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = io.WriteString(w, `[1]`)
	}))
	defer server.Close()

	client := newTestClient(t, server, func(cfg *ClientConfig) { cfg.MaxRetries = 1 })
	if _, err := client.Read(context.Background(), "matches"); err != nil {
		t.Fatalf("read after retry: %v", err)
	}
	if got := attempts.Load(); got != 2 {
		t.Fatalf("unexpected attempts: %d", got)
	}
}

func TestClient_DoesNotRetryClientErrors(t *testing.T) {
	t.Parallel()

	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":"Invalid data"}`)
	}))
	defer server.Close()

	client := newTestClient(t, server, func(cfg *ClientConfig) { cfg.MaxRetries = 3 })
	err := client.Write(context.Background(), "teams", map[string]any{"x": 1})
	if err == nil || !strings.Contains(err.Error(), "status=400") {
		t.Fatalf("expected status error, got %v", err)
	}
	if got := attempts.Load(); got != 1 {
		t.Fatalf("client errors must not be retried, attempts=%d", got)
	}
}

func TestClient_CircuitBreakerOpensOnTransientFailures(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(t, server, func(cfg *ClientConfig) {
		cfg.CircuitBreaker = resilience.CircuitBreakerConfig{Enabled: true, FailureThreshold: 1, OpenTimeout: time.Minute, HalfOpenMaxReq: 1}
	})

	if _, err := client.Read(context.Background(), "teams"); err == nil {
		t.Fatalf("expected first read to fail")
	}
	_, err := client.Read(context.Background(), "teams")
	if !errors.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable from open breaker, got %v", err)
	}
}

func TestClient_SubscribeAppliesStreamEvents(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("accept") != "text/event-stream" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		flusher := w.(http.Flusher)
		w.Header().Set("content-type", "text/event-stream")
		events := []string{
			"event: put\ndata: {\"path\":\"/\",\"data\":{\"t1\":{\"name\":\"Stars\"}}}\n\n",
			"event: keep-alive\ndata: null\n\n",
			"event: patch\ndata: {\"path\":\"/t1\",\"data\":{\"city\":\"Rabat\"}}\n\n",
			"event: put\ndata: {\"path\":\"/t2\",\"data\":{\"name\":\"Phoenix\"}}\n\n",
			"event: cancel\ndata: null\n\n",
		}
		for _, ev := range events {
			_, _ = fmt.Fprint(w, ev)
			flusher.Flush()
		}
	}))
	defer server.Close()

	client := newTestClient(t, server, nil)

	got := make(chan snapshot.Snapshot, 8)
	sub, err := client.Subscribe(context.Background(), "teams", func(snap snapshot.Snapshot) { got <- snap })
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	var last snapshot.Snapshot
	for i := 0; i < 3; i++ {
		select {
		case last = <-got:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for event %d", i)
		}
	}
	if err := sub.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	records, err := snapshot.Normalize(last, snapshot.Schema{})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("unexpected records: %+v", records)
	}
	if records[0].String("city") != "Rabat" || records[1].String("name") != "Phoenix" {
		t.Fatalf("events not applied: %+v", records)
	}
}

func TestReadEvents_ParsesMultilineData(t *testing.T) {
	t.Parallel()

	body := ": comment\nevent: put\ndata: {\"path\":\"/\",\ndata: \"data\":1}\n\nevent: keep-alive\ndata: null\n\n"
	var events []streamEvent
	err := readEvents(strings.NewReader(body), func(ev streamEvent) error {
		events = append(events, ev)
		return nil
	})
	if err == nil {
		t.Fatalf("end of stream must be reported")
	}
	if len(events) != 2 {
		t.Fatalf("unexpected events: %+v", events)
	}
	if events[0].name != eventPut || events[0].data != "{\"path\":\"/\",\n\"data\":1}" {
		t.Fatalf("unexpected first event: %+v", events[0])
	}
}

func TestClient_RedactsAuthToken(t *testing.T) {
	t.Parallel()

	client, err := NewClient(ClientConfig{BaseURL: "https://league.firebaseio.com", AuthToken: "secret-token", Logger: logging.NewNop()})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	endpoint := client.endpoint("players/-Nx1")
	if endpoint != "https://league.firebaseio.com/players/-Nx1.json?auth=secret-token" {
		t.Fatalf("unexpected endpoint: %s", endpoint)
	}
	if redacted := client.redact(endpoint); strings.Contains(redacted, "secret-token") {
		t.Fatalf("token leaked: %s", redacted)
	}

	if _, err := NewClient(ClientConfig{BaseURL: "ftp://nope"}); err == nil {
		t.Fatalf("expected invalid url error")
	}
}
