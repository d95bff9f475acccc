package httpclient

import (
	"crypto/tls"
	"time"
)

// Option customizes a Client at construction time.
type Option func(*options)

type options struct {
	log       Logger
	timeout   time.Duration
	tls       *tls.Config
	transport Transport
}

// WithLogger sets the diagnostic logger. A nil logger discards output.
func WithLogger(log Logger) Option {
	return func(o *options) { o.log = log }
}

// WithTimeout bounds each request. Zero, the default, means no client-side timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithTLSClientConfig overrides TLS settings of the default transport.
func WithTLSClientConfig(cfg *tls.Config) Option {
	return func(o *options) { o.tls = cfg }
}

// WithTransport replaces the default resty transport. Timeout and TLS options
// are ignored when a transport is supplied.
func WithTransport(t Transport) Option {
	return func(o *options) { o.transport = t }
}
