package app

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/voter-science/trc-client/internal/config"
	"github.com/voter-science/trc-client/pkg/httpclient"
	"github.com/voter-science/trc-client/pkg/reporters"
)

func testConfig(t *testing.T, host string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		AppName:                "trcctl",
		Protocol:               "http",
		Host:                   host,
		JournalType:            "bbolt",
		JournalPath:            filepath.Join(dir, "journal.db"),
		JournalTTL:             time.Hour,
		JournalCleanupInterval: time.Hour,
		RequestsFile:           filepath.Join(dir, "requests.yaml"),
	}
}

func TestRunnerJournalsAndReportsFailures(t *testing.T) {
	trc := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/ok" {
			_, _ = w.Write([]byte(`{"fine":true}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"Code":404,"Message":"no sheet","CorrelationId":"c-7"}`))
	}))
	defer trc.Close()

	var (
		mu       sync.Mutex
		reported []reporters.Failure
	)
	sink := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var f reporters.Failure
		_ = json.Unmarshal(raw, &f)
		mu.Lock()
		reported = append(reported, f)
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer sink.Close()

	cfg := testConfig(t, strings.TrimPrefix(trc.URL, "http://"))
	cfg.ReportersFile = filepath.Join(t.TempDir(), "reporters.yaml")
	reportersYAML := "reporters:\n  - id: sink\n    type: http\n    http:\n      url: " + sink.URL + "\n"
	if err := os.WriteFile(cfg.ReportersFile, []byte(reportersYAML), 0o644); err != nil {
		t.Fatalf("write reporters file: %v", err)
	}

	runner, err := NewRunner(context.Background(), cfg, nil, Options{})
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	defer runner.Close()

	if res := runner.Send(context.Background(), httpclient.Request{Verb: "GET", Path: "/ok"}); !res.OK() {
		t.Fatalf("expected success, got %v", res.Err)
	}
	res := runner.Send(context.Background(), httpclient.Request{Verb: "GET", Path: "/sheets/missing"})
	if res.OK() || res.Err.Code != 404 {
		t.Fatalf("expected 404, got %+v", res)
	}

	mu.Lock()
	if len(reported) != 1 {
		mu.Unlock()
		t.Fatalf("expected exactly one reported failure, got %d", len(reported))
	}
	got := reported[0]
	mu.Unlock()
	if got.Path != "/sheets/missing" || got.Error.Code != 404 || got.Error.CorrelationID == nil || *got.Error.CorrelationID != "c-7" {
		t.Fatalf("unexpected report %#v", got)
	}

	history, err := runner.History(10)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 journal entries, got %d", len(history))
	}
	if history[0].Path != "/sheets/missing" || history[0].OK || history[0].Code != 404 {
		t.Fatalf("unexpected newest entry %#v", history[0])
	}
	if !history[1].OK {
		t.Fatalf("expected older entry to be a success: %#v", history[1])
	}
}

func TestRunnerRunsNamedRequestWithConfigAuth(t *testing.T) {
	var (
		gotAuth string
		gotPath string
	)
	trc := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.RequestURI()
		_, _ = w.Write([]byte(`{"user":"u1"}`))
	}))
	defer trc.Close()

	cfg := testConfig(t, strings.TrimPrefix(trc.URL, "http://"))
	cfg.AuthHeader = "Bearer from-config"
	cfg.JournalType = "none"
	reqYAML := "requests:\n  - name: me\n    path: /me?full=1\n"
	if err := os.WriteFile(cfg.RequestsFile, []byte(reqYAML), 0o644); err != nil {
		t.Fatalf("write requests file: %v", err)
	}

	runner, err := NewRunner(context.Background(), cfg, nil, Options{})
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	defer runner.Close()

	res, err := runner.Run(context.Background(), "me")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.OK() {
		t.Fatalf("expected success, got %v", res.Err)
	}
	if gotAuth != "Bearer from-config" || gotPath != "/me?full=1" {
		t.Fatalf("unexpected request auth=%q path=%q", gotAuth, gotPath)
	}

	if _, err := runner.Run(context.Background(), "missing"); err == nil {
		t.Fatalf("expected error for undefined request")
	}
}

func TestNewRunnerRequiresHost(t *testing.T) {
	cfg := testConfig(t, "")
	if _, err := NewRunner(context.Background(), cfg, nil, Options{}); err == nil {
		t.Fatalf("expected error without trc_host")
	}
}
