package httpclient

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

const (
	// CodeBadResponse reports a success-range response whose body is not JSON.
	CodeBadResponse = 505
	// CodeSendFailed reports a transport failure before any response arrived.
	CodeSendFailed = 506
)

// ErrorInfo is the structured error payload exchanged with callers and TRC servers.
type ErrorInfo struct {
	Code            int     `json:"Code"`
	Message         *string `json:"Message"`
	InternalDetails *string `json:"InternalDetails"`
	CorrelationID   *string `json:"CorrelationId"`
}

// NewErrorInfo builds an ErrorInfo carrying only a code.
func NewErrorInfo(code int) *ErrorInfo {
	return &ErrorInfo{Code: code}
}

func newErrorInfoWithMessage(code int, msg string) *ErrorInfo {
	return &ErrorInfo{Code: code, Message: &msg}
}

// Error implements the error interface.
func (e *ErrorInfo) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Message != nil {
		return fmt.Sprintf("trc error %d: %s", e.Code, *e.Message)
	}
	return fmt.Sprintf("trc error %d", e.Code)
}

// MessageText returns the message or an empty string when absent.
func (e *ErrorInfo) MessageText() string {
	if e == nil || e.Message == nil {
		return ""
	}
	return *e.Message
}

// IsTransport reports whether err is an ErrorInfo raised before any response arrived.
func IsTransport(err error) bool {
	return hasCode(err, CodeSendFailed)
}

// IsMalformed reports whether err is an ErrorInfo for an unparseable success body.
func IsMalformed(err error) bool {
	return hasCode(err, CodeBadResponse)
}

func hasCode(err error, code int) bool {
	var info *ErrorInfo
	if !errors.As(err, &info) || info == nil {
		return false
	}
	return info.Code == code
}

// wireError is a TRC error body decoded field by field. Code is a pointer so
// an absent field can be told apart from zero.
type wireError struct {
	Code            *int
	Message         *string
	InternalDetails *string
	CorrelationID   *string
	// rawMessage holds a Message that is present but not a string.
	rawMessage json.RawMessage
}

// decodeWireError reads body as a JSON object. Only Code decides whether the
// body is structured; optional fields of an unexpected type are dropped.
func decodeWireError(body []byte) (wireError, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil || fields == nil {
		return wireError{}, false
	}

	w := wireError{
		Code:            decodeCode(fields["Code"]),
		Message:         decodeOptionalString(fields["Message"]),
		InternalDetails: decodeOptionalString(fields["InternalDetails"]),
		CorrelationID:   decodeOptionalString(fields["CorrelationId"]),
	}
	if raw, ok := fields["Message"]; ok && w.Message == nil && !isJSONNull(raw) {
		w.rawMessage = raw
	}
	return w, true
}

// messageText returns the message to log and whether one was present.
func (w wireError) messageText() (string, bool) {
	if w.Message != nil {
		return *w.Message, true
	}
	if w.rawMessage != nil {
		return string(w.rawMessage), true
	}
	return "", false
}

func (w wireError) toErrorInfo() *ErrorInfo {
	return &ErrorInfo{
		Code:            *w.Code,
		Message:         w.Message,
		InternalDetails: w.InternalDetails,
		CorrelationID:   w.CorrelationID,
	}
}

// maxExactFloatInt is the largest magnitude at which every integer is an exact float64.
const maxExactFloatInt = 1 << 53

// decodeCode accepts any integral JSON number, so 404 and 404.0 both yield 404.
// Strings, booleans and fractional numbers yield nil.
func decodeCode(raw json.RawMessage) *int {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] == '"' || isJSONNull(raw) {
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil
	}
	if i, err := n.Int64(); err == nil {
		if int64(int(i)) != i {
			return nil
		}
		code := int(i)
		return &code
	}
	f, err := n.Float64()
	if err != nil || f != math.Trunc(f) || math.Abs(f) > maxExactFloatInt {
		return nil
	}
	code := int(f)
	return &code
}

func decodeOptionalString(raw json.RawMessage) *string {
	if isJSONNull(raw) {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	return &s
}

func isJSONNull(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}
