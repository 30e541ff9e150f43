package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Client talks to the knowledge-base REST API. It is cheap to copy through
// WithTimeout for the few calls that run longer than DefaultTimeout.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	log        zerolog.Logger
}

// QueryParams are appended to a path by buildQuery. Empty values are skipped.
type QueryParams map[string]string

// NewClient builds a client for baseURL. The optional timeout replaces
// DefaultTimeout.
func NewClient(baseURL, token string, timeout ...time.Duration) *Client {
	limit := DefaultTimeout
	if len(timeout) > 0 && timeout[0] > 0 {
		limit = timeout[0]
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: limit},
		log:        zerolog.Nop(),
	}
}

// SetToken replaces the bearer token for later requests.
func (c *Client) SetToken(token string) { c.token = token }

// Token is the bearer token in use.
func (c *Client) Token() string { return c.token }

// BaseURL is the backend root.
func (c *Client) BaseURL() string { return c.baseURL }

// SetLogger attaches a request logger.
func (c *Client) SetLogger(log zerolog.Logger) { c.log = log }

// WithTimeout returns a copy of c whose requests give up after timeout.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	clone := NewClient(c.baseURL, c.token, timeout)
	clone.log = c.log
	return clone
}

// payload is an encoded request body and its content type.
type payload struct {
	body        io.Reader
	contentType string
}

var noBody = payload{}

func jsonPayload(v any) (payload, error) {
	if v == nil {
		return noBody, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return noBody, fmt.Errorf("marshal body: %w", err)
	}
	return payload{body: bytes.NewReader(raw), contentType: "application/json"}, nil
}

// filePayload is a multipart form with content as its only "file" field.
func filePayload(filename string, content []byte) (payload, error) {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	part, err := form.CreateFormFile("file", filename)
	if err == nil {
		_, err = part.Write(content)
	}
	if err == nil {
		err = form.Close()
	}
	if err != nil {
		return noBody, fmt.Errorf("encode upload %s: %w", filename, err)
	}
	return payload{body: &buf, contentType: form.FormDataContentType()}, nil
}

func (c *Client) get(path string) ([]byte, error) {
	return c.do(http.MethodGet, path, noBody)
}

func (c *Client) del(path string) ([]byte, error) {
	return c.do(http.MethodDelete, path, noBody)
}

func (c *Client) post(path string, v any) ([]byte, error) {
	return c.sendJSON(http.MethodPost, path, v)
}

func (c *Client) put(path string, v any) ([]byte, error) {
	return c.sendJSON(http.MethodPut, path, v)
}

func (c *Client) sendJSON(method, path string, v any) ([]byte, error) {
	p, err := jsonPayload(v)
	if err != nil {
		return nil, err
	}
	return c.do(method, path, p)
}

// upload posts one file as multipart field "file".
func (c *Client) upload(path, filename string, content []byte) ([]byte, error) {
	p, err := filePayload(filename, content)
	if err != nil {
		return nil, err
	}
	return c.do(http.MethodPost, path, p)
}

// do runs one request and returns the response body. Every failure comes
// back as *Error.
func (c *Client) do(method, path string, p payload) ([]byte, error) {
	req, err := http.NewRequest(method, c.baseURL+path, p.body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if p.contentType != "" {
		req.Header.Set("Content-Type", p.contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	logged := func(e *zerolog.Event) *zerolog.Event {
		return e.Str("request_id", requestID).Str("method", method).Str("path", path)
	}
	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		apiErr := transportError(method, path, err)
		logged(c.log.Warn()).Bool("timeout", apiErr.Timeout).Dur("elapsed", time.Since(started)).Err(err).Msg("request failed")
		return nil, apiErr
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	logged(c.log.Debug()).Int("status", resp.StatusCode).Dur("elapsed", time.Since(started)).Msg("request")

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &Error{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Message:    errorMessage(resp.StatusCode, body),
		}
		logged(c.log.Warn()).Int("status", resp.StatusCode).Str("error", apiErr.Message).Msg("request rejected")
		return nil, apiErr
	}
	return body, nil
}

// decode parses a JSON response body.
func decode[T any](data []byte) (*T, error) {
	out := new(T)
	if err := json.Unmarshal(data, out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return out, nil
}

// decodeItems parses an {"items": [...]} body. A missing list is empty.
func decodeItems[T any](data []byte) ([]T, error) {
	resp, err := decode[itemsResponse[T]](data)
	if err != nil {
		return nil, err
	}
	if resp.Items == nil {
		return []T{}, nil
	}
	return resp.Items, nil
}

// buildQuery appends the non-empty params to path.
func buildQuery(path string, params QueryParams) string {
	q := make(url.Values, len(params))
	for k, v := range params {
		if v != "" {
			q.Set(k, v)
		}
	}
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}
