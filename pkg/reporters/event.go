package reporters

import (
	"time"

	"github.com/voter-science/trc-client/pkg/httpclient"
)

// Failure is the payload reported downstream for a failed call.
type Failure struct {
	Verb       string               `json:"verb"`
	Path       string               `json:"path"`
	Host       string               `json:"host"`
	Error      httpclient.ErrorInfo `json:"error"`
	ObservedAt time.Time            `json:"observed_at"`
}

// NewFailure constructs a Failure for the given request and error.
func NewFailure(host string, req httpclient.Request, info *httpclient.ErrorInfo) Failure {
	f := Failure{
		Verb:       req.Verb,
		Path:       req.Path,
		Host:       host,
		ObservedAt: time.Now().UTC(),
	}
	if info != nil {
		f.Error = *info
	}
	return f
}

// correlationID returns the server correlation id, if any.
func (f Failure) correlationID() string {
	if f.Error.CorrelationID == nil {
		return ""
	}
	return *f.Error.CorrelationID
}
