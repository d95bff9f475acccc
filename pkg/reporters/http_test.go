package reporters

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/voter-science/trc-client/pkg/httpclient"
)

func TestHTTPReporterSuccess(t *testing.T) {
	var (
		gotMethod string
		gotToken  string
		got       Failure
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotToken = r.Header.Get("X-Token")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &got)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	rep, err := newHTTPReporter(context.Background(), ReporterConfig{
		ID:   "hook",
		Type: TypeHTTP,
		HTTP: &HTTPReporterConfig{
			URL:            srv.URL,
			Method:         http.MethodPost,
			Headers:        map[string]string{"X-Token": "1"},
			TimeoutSeconds: 2,
		},
	}, nil)
	if err != nil {
		t.Fatalf("newHTTPReporter: %v", err)
	}

	msg := "not found"
	failure := NewFailure("trc.example.com", httpclient.Request{Verb: "GET", Path: "/sheets/x"}, &httpclient.ErrorInfo{Code: 404, Message: &msg})
	if err := rep.Report(context.Background(), failure); err != nil {
		t.Fatalf("Report: %v", err)
	}
	if gotMethod != http.MethodPost || gotToken != "1" {
		t.Fatalf("unexpected request %s token=%q", gotMethod, gotToken)
	}
	if got.Path != "/sheets/x" || got.Error.Code != 404 || got.Error.MessageText() != "not found" {
		t.Fatalf("unexpected payload %#v", got)
	}
}

func TestHTTPReporterErrorOnNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusBadRequest)
	}))
	defer srv.Close()

	rep, err := newHTTPReporter(context.Background(), ReporterConfig{
		ID:   "hook",
		Type: TypeHTTP,
		HTTP: &HTTPReporterConfig{URL: srv.URL, Method: http.MethodPost, TimeoutSeconds: 1},
	}, nil)
	if err != nil {
		t.Fatalf("newHTTPReporter: %v", err)
	}

	if err := rep.Report(context.Background(), Failure{}); err == nil {
		t.Fatalf("expected error on non-2xx response")
	}
}
