package reporters

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/voter-science/trc-client/pkg/httpclient"
)

type httpReporter struct {
	id      string
	method  string
	url     string
	headers map[string]string
	client  *resty.Client
	typ     string
	log     Logger
}

func newHTTPReporter(_ context.Context, cfg ReporterConfig, log Logger) (Reporter, error) {
	if cfg.HTTP == nil {
		return nil, fmt.Errorf("reporter %q missing http configuration", cfg.ID)
	}

	client := httpclient.NewRestyHTTPClient(time.Duration(cfg.HTTP.TimeoutSeconds) * time.Second)

	return &httpReporter{
		id:      cfg.ID,
		typ:     TypeHTTP,
		method:  cfg.HTTP.Method,
		url:     cfg.HTTP.URL,
		headers: cfg.HTTP.Headers,
		client:  client,
		log:     ensureLogger(log),
	}, nil
}

func (h *httpReporter) ID() string   { return h.id }
func (h *httpReporter) Type() string { return h.typ }

func (h *httpReporter) Report(ctx context.Context, f Failure) error {
	req := h.client.R().
		SetContext(ctx).
		SetBody(f)

	if len(h.headers) > 0 {
		req.SetHeaders(h.headers)
	}

	req.SetHeader("Content-Type", "application/json")

	resp, err := req.Execute(h.method, h.url)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	if resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		return fmt.Errorf("http response status %d: %s", resp.StatusCode(), httpclient.BodySnippet(resp.Body()))
	}
	h.log.DebugObj("http reporter delivered failure", "reporter_http_delivery", map[string]any{
		"reporter_id": h.id,
		"status":      resp.StatusCode(),
	})
	return nil
}
