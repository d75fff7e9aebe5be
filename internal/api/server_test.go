package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/teslawire/teslawire/internal/config"
	syncer "github.com/teslawire/teslawire/internal/sync"
	"github.com/teslawire/teslawire/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

type fakeRunner struct {
	summary *syncer.Summary
	err     error
	calls   int
	block   chan struct{}
}

func (r *fakeRunner) Run(context.Context) (*syncer.Summary, error) {
	r.calls++
	if r.block != nil {
		<-r.block
	}
	return r.summary, r.err
}

func runSummary() *syncer.Summary {
	s := syncer.NewSummary()
	s.Fetched = 4
	s.Imported = 2
	s.Skipped = 2
	s.Finish()
	return s
}

func newTestServer(secret string, runner Runner) *Server {
	return NewServer(&config.ServerConfig{Port: 8080, SyncSecret: secret}, runner, testLogger)
}

func do(t *testing.T, s *Server, method, path, auth string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s := newTestServer("", &fakeRunner{})
	rec := do(t, s, http.MethodGet, "/api/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %v", body["status"])
	}
}

func TestSyncRequiresSecret(t *testing.T) {
	runner := &fakeRunner{summary: runSummary()}
	s := newTestServer("hunter2", runner)

	rejected := do(t, s, http.MethodPost, "/api/sync", "")
	if rejected.Code != http.StatusUnauthorized {
		t.Errorf("no credential: status = %d", rejected.Code)
	}
	if !strings.Contains(rejected.Body.String(), types.ErrUnauthorized.Error()) {
		t.Errorf("rejection body = %q", rejected.Body.String())
	}
	if rec := do(t, s, http.MethodPost, "/api/sync", "Bearer wrong"); rec.Code != http.StatusUnauthorized {
		t.Errorf("wrong credential: status = %d", rec.Code)
	}
	if runner.calls != 0 {
		t.Errorf("runner called %d times without valid credential", runner.calls)
	}

	rec := do(t, s, http.MethodPost, "/api/sync", "Bearer hunter2")
	if rec.Code != http.StatusOK {
		t.Errorf("valid credential: status = %d", rec.Code)
	}
	if runner.calls != 1 {
		t.Errorf("runner calls = %d", runner.calls)
	}
}

func TestSyncReturnsSummary(t *testing.T) {
	s := newTestServer("", &fakeRunner{summary: runSummary()})

	rec := do(t, s, http.MethodPost, "/api/sync", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var got syncer.Summary
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if got.Imported != 2 || got.Fetched != 4 || !got.Success {
		t.Errorf("summary = %+v", &got)
	}
	if got.RunID == "" {
		t.Error("runId missing from response")
	}
}

func TestSyncReturnsSummaryEvenOnAbort(t *testing.T) {
	summary := syncer.NewSummary()
	summary.Failed = 1
	summary.AddError("store unreachable")
	summary.Finish()

	s := newTestServer("", &fakeRunner{summary: summary, err: errors.New("store unreachable")})

	rec := do(t, s, http.MethodPost, "/api/sync", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var got syncer.Summary
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if got.Success {
		t.Error("aborted run reported success")
	}
	if len(got.Errors) == 0 {
		t.Error("error detail missing from response")
	}
}

func TestSyncRejectsConcurrentRun(t *testing.T) {
	block := make(chan struct{})
	runner := &fakeRunner{summary: runSummary(), block: block}
	s := newTestServer("", runner)

	started := make(chan struct{})
	done := make(chan *httptest.ResponseRecorder)
	go func() {
		req := httptest.NewRequest(http.MethodPost, "/api/sync", nil)
		rec := httptest.NewRecorder()
		close(started)
		s.Handler().ServeHTTP(rec, req)
		done <- rec
	}()

	<-started
	// Wait for the first request to take the running flag.
	for i := 0; ; i++ {
		s.runsMu.Lock()
		running := s.running
		s.runsMu.Unlock()
		if running {
			break
		}
		if i > 1000 {
			t.Fatal("first run never started")
		}
		time.Sleep(time.Millisecond)
	}

	rec := do(t, s, http.MethodPost, "/api/sync", "")
	if rec.Code != http.StatusConflict {
		t.Errorf("concurrent trigger: status = %d", rec.Code)
	}

	close(block)
	if first := <-done; first.Code != http.StatusOK {
		t.Errorf("first trigger: status = %d", first.Code)
	}
}

func TestRunsHistory(t *testing.T) {
	s := newTestServer("", &fakeRunner{summary: runSummary()})

	if rec := do(t, s, http.MethodGet, "/api/runs", ""); rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	do(t, s, http.MethodPost, "/api/sync", "")
	do(t, s, http.MethodPost, "/api/sync", "")

	rec := do(t, s, http.MethodGet, "/api/runs", "")
	var runs []*syncer.Summary
	if err := json.Unmarshal(rec.Body.Bytes(), &runs); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if len(runs) != 2 {
		t.Errorf("runs = %d, want 2", len(runs))
	}
}
