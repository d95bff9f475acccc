package httpclient

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

const (
	ProtocolHTTP  = "http"
	ProtocolHTTPS = "https"

	defaultHTTPPort  = 80
	defaultHTTPSPort = 443
)

// Config is the resolved target of a Client. It never changes after New.
type Config struct {
	Protocol string
	Hostname string
	Port     int
}

// BaseURL renders scheme://host:port.
func (c Config) BaseURL() string {
	return c.Protocol + "://" + net.JoinHostPort(c.Hostname, strconv.Itoa(c.Port))
}

// ResolveConfig resolves protocol and host into a Config. "https" selects TLS
// and port 443; anything else selects plaintext and port 80. A host with
// exactly one colon carries an explicit port that wins over the default.
func ResolveConfig(protocol, host string) (Config, error) {
	cfg := Config{Protocol: ProtocolHTTP, Hostname: host, Port: defaultHTTPPort}
	if protocol == ProtocolHTTPS {
		cfg.Protocol = ProtocolHTTPS
		cfg.Port = defaultHTTPSPort
	}

	parts := strings.Split(host, ":")
	if len(parts) == 2 {
		port, err := strconv.Atoi(parts[1])
		if err != nil || port <= 0 || port > 65535 {
			return Config{}, fmt.Errorf("invalid port %q in host %q", parts[1], host)
		}
		cfg.Hostname = parts[0]
		cfg.Port = port
	}
	return cfg, nil
}

// Client sends JSON requests to a single TRC host. It holds no per-call state
// and is safe for concurrent use.
type Client struct {
	cfg       Config
	transport Transport
	log       Logger
}

// New creates a Client for protocol and host ("hostname" or "hostname:port").
// No I/O happens here.
func New(protocol, host string, opts ...Option) (*Client, error) {
	cfg, err := ResolveConfig(protocol, host)
	if err != nil {
		return nil, err
	}

	var o options
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	transport := o.transport
	if transport == nil {
		transport = NewRestyTransport(o.timeout, o.tls)
	}

	return &Client{
		cfg:       cfg,
		transport: transport,
		log:       ensureLogger(o.log),
	}, nil
}

// Config returns the resolved target.
func (c *Client) Config() Config { return c.cfg }

// Hostname returns the resolved hostname without port.
func (c *Client) Hostname() string { return c.cfg.Hostname }

// Port returns the resolved port.
func (c *Client) Port() int { return c.cfg.Port }

// Protocol returns "http" or "https".
func (c *Client) Protocol() string { return c.cfg.Protocol }
