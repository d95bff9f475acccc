package reporters

import "github.com/voter-science/trc-client/pkg/httpclient"

// Logger is the *Obj logging surface shared with the TRC client, so one
// zap-backed logger serves both.
type Logger = httpclient.Logger

type nopLogger struct{}

func (nopLogger) InfoObj(string, string, any)  {}
func (nopLogger) DebugObj(string, string, any) {}
func (nopLogger) WarnObj(string, string, any)  {}
func (nopLogger) ErrorObj(string, string, any) {}

func ensureLogger(log Logger) Logger {
	if log == nil {
		return nopLogger{}
	}
	return log
}
