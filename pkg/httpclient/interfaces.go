package httpclient

import "context"

// Response is a minimal, fully buffered HTTP response contract.
type Response interface {
	Body() []byte
	StatusCode() int
}

// Transport executes a single request against an absolute URL so callers can
// inject fakes or different HTTP stacks.
type Transport interface {
	Execute(ctx context.Context, method, url string, headers map[string]string, body []byte) (Response, error)
}

// Logger defines the diagnostic logging surface the client relies on.
type Logger interface {
	InfoObj(msg, key string, obj interface{})
	DebugObj(msg, key string, obj interface{})
	WarnObj(msg, key string, obj interface{})
	ErrorObj(msg, key string, obj interface{})
}

type noopLogger struct{}

func (noopLogger) InfoObj(string, string, interface{})  {}
func (noopLogger) DebugObj(string, string, interface{}) {}
func (noopLogger) WarnObj(string, string, interface{})  {}
func (noopLogger) ErrorObj(string, string, interface{}) {}

func ensureLogger(log Logger) Logger {
	if log == nil {
		return noopLogger{}
	}
	return log
}
