package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
)

// GeoPoint is an optional client location sent as request headers.
type GeoPoint struct {
	Lat  float64 `json:"lat" yaml:"lat"`
	Long float64 `json:"long" yaml:"long"`
}

// Request describes a single JSON call.
type Request struct {
	Verb string
	// Path is the URL path plus query; it is not validated.
	Path string
	// Body is serialized to JSON. A nil Body, including a typed nil pointer,
	// map or slice, sends an empty payload rather than "null".
	Body       any
	AuthHeader *string
	Geo        *GeoPoint
}

// Result is the two-variant outcome of a call: exactly one of Value or Err is meaningful.
type Result struct {
	Value any
	// Raw holds the success body as sent by the server ("{}" when it was empty).
	Raw json.RawMessage
	Err *ErrorInfo
}

// OK reports whether the call succeeded.
func (r Result) OK() bool { return r.Err == nil }

const (
	headerLat           = "x-lat"
	headerLong          = "x-long"
	headerContentType   = "content-type"
	headerAccept        = "accept"
	headerAuthorization = "Authorization"
	mimeJSON            = "application/json"
)

// SendAsync issues req on its own goroutine and returns immediately. Exactly
// one of onSuccess or onFailure runs, once, when the call completes. If the
// transport never completes neither runs.
func (c *Client) SendAsync(ctx context.Context, req Request, onSuccess func(any), onFailure func(*ErrorInfo)) {
	go func() {
		res := c.Send(ctx, req)
		if res.Err != nil {
			if onFailure != nil {
				onFailure(res.Err)
			}
			return
		}
		if onSuccess != nil {
			onSuccess(res.Value)
		}
	}()
}

// Go issues req asynchronously and delivers the Result on a buffered channel
// that receives exactly one value.
func (c *Client) Go(ctx context.Context, req Request) <-chan Result {
	out := make(chan Result, 1)
	go func() {
		out <- c.Send(ctx, req)
	}()
	return out
}

// Send issues req and blocks until it is classified.
func (c *Client) Send(ctx context.Context, req Request) Result {
	if ctx == nil {
		ctx = context.Background()
	}

	payload, err := encodeBody(req.Body)
	if err != nil {
		return c.sendFailed(req, err)
	}

	resp, err := c.transport.Execute(ctx, req.Verb, c.cfg.BaseURL()+req.Path, buildHeaders(req), payload)
	if err != nil {
		return c.sendFailed(req, err)
	}

	return c.classify(req, resp.StatusCode(), resp.Body())
}

// Call sends req and decodes a successful body into T. A body that is valid
// JSON but does not fit T is reported as CodeBadResponse.
func Call[T any](ctx context.Context, c *Client, req Request) (T, *ErrorInfo) {
	var out T
	res := c.Send(ctx, req)
	if res.Err != nil {
		return out, res.Err
	}
	if err := json.Unmarshal(res.Raw, &out); err != nil {
		c.log.ErrorObj("unable to decode response", "http_decode_error", map[string]any{
			"verb":  req.Verb,
			"path":  req.Path,
			"error": err.Error(),
		})
		var zero T
		return zero, NewErrorInfo(CodeBadResponse)
	}
	return out, nil
}

func encodeBody(body any) ([]byte, error) {
	if isNilBody(body) {
		return nil, nil
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request body: %w", err)
	}
	return data, nil
}

func isNilBody(body any) bool {
	if body == nil {
		return true
	}
	v := reflect.ValueOf(body)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return v.IsNil()
	}
	return false
}

func buildHeaders(req Request) map[string]string {
	headers := make(map[string]string, 5)
	if req.Geo != nil {
		headers[headerLat] = strconv.FormatFloat(req.Geo.Lat, 'f', -1, 64)
		headers[headerLong] = strconv.FormatFloat(req.Geo.Long, 'f', -1, 64)
	}
	headers[headerContentType] = mimeJSON
	headers[headerAccept] = mimeJSON
	if req.AuthHeader != nil {
		headers[headerAuthorization] = *req.AuthHeader
	}
	return headers
}

func (c *Client) sendFailed(req Request, err error) Result {
	c.log.ErrorObj("trc http send failed", "http_send_error", map[string]any{
		"verb":  req.Verb,
		"path":  req.Path,
		"host":  c.cfg.Hostname,
		"port":  c.cfg.Port,
		"error": err.Error(),
	})
	return Result{Err: newErrorInfoWithMessage(CodeSendFailed, err.Error())}
}

func (c *Client) classify(req Request, status int, body []byte) Result {
	if status >= 400 {
		return Result{Err: c.classifyError(req, status, body)}
	}

	if len(body) == 0 {
		body = []byte("{}")
	}

	var parsed any
	if err := json.Unmarshal(body, &parsed); err != nil {
		fields := map[string]any{
			"verb":   req.Verb,
			"path":   req.Path,
			"status": status,
			"body":   BodySnippet(body),
			"error":  err.Error(),
		}
		if title := htmlTitle(body); title != "" {
			fields["html_title"] = title
		}
		c.log.ErrorObj("unable to parse response as JSON", "http_parse_error", fields)
		return Result{Err: NewErrorInfo(CodeBadResponse)}
	}

	return Result{Value: parsed, Raw: json.RawMessage(body)}
}

// classifyError keeps a server-supplied ErrorInfo when it carries a Code.
// Otherwise only the status survives, even if other fields decoded.
func (c *Client) classifyError(req Request, status int, body []byte) *ErrorInfo {
	wire, ok := decodeWireError(body)
	if !ok {
		return NewErrorInfo(status)
	}
	if msg, present := wire.messageText(); present {
		c.log.ErrorObj("trc http request failed", "http_error", map[string]any{
			"verb":    req.Verb,
			"path":    req.Path,
			"status":  status,
			"message": msg,
		})
	}
	if wire.Code != nil {
		return wire.toErrorInfo()
	}
	return NewErrorInfo(status)
}
