package reporters

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadRegistryEnabledFilter(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "reporters.yaml")
	raw := `
reporters:
  - id: hook1
    type: http
    enabled: false
    http:
      url: https://example.com
  - id: hook2
    type: HTTP
    http:
      url: " https://example.com/2 "
      method: put
      headers:
        X-Token: " abc "
        X-Empty: ""
  - id: queue
    type: sqs
    sqs:
      uri: https://sqs.us-east-1.amazonaws.com/123/failures
      region: us-east-1
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	enabled := reg.Enabled()
	if len(enabled) != 2 || enabled[0].ID != "hook2" || enabled[1].ID != "queue" {
		t.Fatalf("unexpected enabled set %#v", enabled)
	}

	hook, ok := reg.ByID("hook2")
	if !ok {
		t.Fatalf("hook2 not found")
	}
	if hook.Type != TypeHTTP || hook.HTTP.Method != "PUT" || hook.HTTP.URL != "https://example.com/2" {
		t.Fatalf("http config not sanitized: %#v", hook.HTTP)
	}
	if hook.HTTP.TimeoutSeconds != httpDefaultTimeoutSeconds {
		t.Fatalf("expected default timeout, got %d", hook.HTTP.TimeoutSeconds)
	}
	if len(hook.HTTP.Headers) != 1 || hook.HTTP.Headers["X-Token"] != "abc" {
		t.Fatalf("headers not sanitized: %#v", hook.HTTP.Headers)
	}
}

func TestValidateReporterConfigRejectsMissingBlocks(t *testing.T) {
	cases := []ReporterConfig{
		{ID: "h", Type: TypeHTTP},
		{ID: "q", Type: TypeSQS, SQS: &SQSReporterConfig{QueueURL: "u"}},
		{ID: "s", Type: TypeSNS, SNS: &SNSReporterConfig{Region: "us-east-1"}},
		{ID: "p", Type: TypePubSub, PubSub: &PubSubConfig{ProjectID: "proj"}},
		{ID: "", Type: TypeHTTP},
		{ID: "x"},
	}
	for _, cfg := range cases {
		if err := validateReporterConfig(cfg); err == nil {
			t.Fatalf("expected validation error for %#v", cfg)
		}
	}
}

func TestLoadRegistryDuplicateID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reporters.json")
	raw := `{"reporters":[
		{"id":"a","type":"http","http":{"url":"https://a"}},
		{"id":"a","type":"http","http":{"url":"https://b"}}
	]}`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if _, err := LoadRegistry(path); err == nil {
		t.Fatalf("expected duplicate id error")
	}
}

func TestBuildAllWithDefaultRegistry(t *testing.T) {
	reps, err := BuildAll(context.Background(), DefaultRegistry(), []ReporterConfig{
		{ID: "hook", Type: TypeHTTP, HTTP: &HTTPReporterConfig{URL: "https://example.com", Method: "POST", TimeoutSeconds: 1}},
	}, nil)
	if err != nil {
		t.Fatalf("BuildAll: %v", err)
	}
	if len(reps) != 1 || reps[0].Type() != TypeHTTP {
		t.Fatalf("unexpected reporters %#v", reps)
	}
}

func TestBuildAllUnknownType(t *testing.T) {
	_, err := BuildAll(context.Background(), DefaultRegistry(), []ReporterConfig{{ID: "x", Type: "kafka"}}, nil)
	if err == nil {
		t.Fatalf("expected error for unregistered type")
	}
}

func TestBuildAllClosesBuiltReportersOnError(t *testing.T) {
	built := &closingReporter{stubReporter: stubReporter{id: "first", typ: "stub"}}
	reg := NewRegistry(map[string]Builder{
		"stub": func(context.Context, ReporterConfig, Logger) (Reporter, error) { return built, nil },
		"bad": func(context.Context, ReporterConfig, Logger) (Reporter, error) {
			return nil, errors.New("no credentials")
		},
	})

	reps, err := BuildAll(context.Background(), reg, []ReporterConfig{
		{ID: "first", Type: "stub"},
		{ID: "second", Type: "bad"},
	}, nil)
	if err == nil {
		t.Fatalf("expected build error")
	}
	if reps != nil {
		t.Fatalf("expected no reporters, got %#v", reps)
	}
	if !built.closed {
		t.Fatalf("reporter built before the failure was not closed")
	}
}
