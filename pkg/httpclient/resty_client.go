package httpclient

import (
	"context"
	"crypto/tls"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// RestyTransport adapts resty.Client to the Transport interface.
type RestyTransport struct {
	client *resty.Client
}

// NewRestyTransport creates a transport with the given timeout (0 disables it)
// and optional TLS settings.
func NewRestyTransport(timeout time.Duration, tlsCfg *tls.Config) *RestyTransport {
	c := NewRestyHTTPClient(timeout)
	if tlsCfg != nil {
		c.SetTLSClientConfig(tlsCfg)
	}
	return &RestyTransport{client: c}
}

// NewRestyHTTPClient exposes a configured resty.Client for callers needing the raw client.
func NewRestyHTTPClient(timeout time.Duration) *resty.Client {
	c := resty.New()
	if timeout > 0 {
		c.SetTimeout(timeout)
	}
	// Bodies are sent for every verb, GET included.
	c.SetAllowGetMethodPayload(true)
	// Redirects are surfaced to the caller as ordinary responses.
	c.SetRedirectPolicy(resty.RedirectPolicyFunc(func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}))
	return c
}

// Execute performs the request and buffers the whole response body.
func (r *RestyTransport) Execute(ctx context.Context, method, url string, headers map[string]string, body []byte) (Response, error) {
	req := r.client.R().SetContext(ctx)
	if len(headers) > 0 {
		req.SetHeaders(headers)
	}
	if body != nil {
		req.SetBody(body)
	}
	resp, err := req.Execute(method, url)
	if err != nil {
		return nil, err
	}
	return &restyResponseAdapter{resp: resp}, nil
}

// restyResponseAdapter adapts resty.Response to the httpclient.Response interface.
type restyResponseAdapter struct {
	resp *resty.Response
}

func (r *restyResponseAdapter) Body() []byte    { return r.resp.Body() }
func (r *restyResponseAdapter) StatusCode() int { return r.resp.StatusCode() }
