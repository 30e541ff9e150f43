package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
)

// Error is returned for every failed request: transport failures, timeouts
// and non-2xx responses.
type Error struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
	Timeout    bool
	Err        error
}

func (e *Error) Error() string {
	switch {
	case e.Timeout:
		return fmt.Sprintf("request timed out: %s %s", e.Method, stripQuery(e.Path))
	case e.StatusCode == 0:
		return fmt.Sprintf("request failed: %v", e.Err)
	default:
		return e.Message
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

func transportError(method, path string, err error) *Error {
	return &Error{
		Method:  method,
		Path:    path,
		Timeout: isTimeout(err),
		Err:     err,
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func stripQuery(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		return path[:i]
	}
	return path
}

// IsUnauthorized reports a 401 on any route except login. Callers treat it as
// the end of the session.
func IsUnauthorized(err error) bool {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode == http.StatusUnauthorized && stripQuery(apiErr.Path) != loginPath
}

// IsTimeout reports a client-side timeout.
func IsTimeout(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Timeout
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// errorEnvelope holds the places the backend puts a failure reason, in the
// order they are consulted:
//
//	{"detail": "Node not found"}
//	{"detail": [{"loc": ["body", "name"], "msg": "field required"}]}
//	{"error": {"code": "ALREADY_PROCESSED", "message": "..."}}
//	{"message": "..."}
type errorEnvelope struct {
	Detail  json.RawMessage `json:"detail"`
	Error   json.RawMessage `json:"error"`
	Message json.RawMessage `json:"message"`
}

// errorEntry is one object inside an envelope field.
type errorEntry struct {
	Loc     []any           `json:"loc"`
	Msg     string          `json:"msg"`
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Error   json.RawMessage `json:"error"`
}

// errorMessage is the text shown for a rejected request. Bodies that carry
// no recognisable reason fall back to "HTTP <status>: <body>".
func errorMessage(status int, body []byte) string {
	var env errorEnvelope
	if json.Unmarshal(body, &env) == nil {
		for _, raw := range []json.RawMessage{env.Detail, env.Error, env.Message} {
			if msg := describeError(raw); msg != "" {
				return msg
			}
		}
	}
	return fmt.Sprintf("HTTP %d: %s", status, strings.TrimSpace(string(body)))
}

// describeError renders a string, an entry or a list of entries. List items
// are joined with "; ".
func describeError(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var text string
	if json.Unmarshal(raw, &text) == nil {
		return strings.TrimSpace(text)
	}
	var list []json.RawMessage
	if json.Unmarshal(raw, &list) == nil {
		parts := make([]string, 0, len(list))
		for _, item := range list {
			if msg := describeError(item); msg != "" {
				parts = append(parts, msg)
			}
		}
		return strings.Join(parts, "; ")
	}
	var entry errorEntry
	if json.Unmarshal(raw, &entry) != nil {
		return ""
	}
	if nested := describeError(entry.Error); nested != "" {
		return nested
	}
	if entry.Msg != "" {
		loc := make([]string, len(entry.Loc))
		for i, part := range entry.Loc {
			loc[i] = fmt.Sprint(part)
		}
		return labelled(strings.Join(loc, "."), entry.Msg)
	}
	return labelled(entry.Code, entry.Message)
}

// labelled joins "label: text", dropping whichever side is blank.
func labelled(label, text string) string {
	label, text = strings.TrimSpace(label), strings.TrimSpace(text)
	switch {
	case label == "":
		return text
	case text == "":
		return label
	}
	return label + ": " + text
}
