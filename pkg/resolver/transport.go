package resolver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultSource    = "unlimited-leads"
	DefaultUserAgent = "Unlimited-Leads-Email-Finder/1.0"
	DefaultTimeout   = 30 * time.Second

	opRequest = "request"
	opDecode  = "decode response"

	maxResponseBytes = 1 << 20
)

// Config configures a resolver or validator endpoint.
type Config struct {
	// Endpoint is the absolute webhook URL requests are POSTed to.
	Endpoint string
	// Source is sent as the "source" field of every request body.
	Source    string
	UserAgent string
	// Timeout bounds each call, including reading the response body.
	Timeout time.Duration

	// HTTPClient overrides the default client. Its own Timeout is left alone.
	HTTPClient *http.Client
}

func (c Config) withDefaults() Config {
	c.Endpoint = strings.TrimSpace(c.Endpoint)
	if strings.TrimSpace(c.Source) == "" {
		c.Source = DefaultSource
	}
	if strings.TrimSpace(c.UserAgent) == "" {
		c.UserAgent = DefaultUserAgent
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: c.Timeout}
	}
	return c
}

// ValidateEndpoint reports whether raw is an absolute http(s) URL.
func ValidateEndpoint(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return errors.New("endpoint is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid endpoint: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("endpoint must use http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("endpoint must include a host")
	}
	return nil
}

type transport struct {
	endpoint  string
	userAgent string
	timeout   time.Duration
	hc        *http.Client
}

func newTransport(cfg Config) (*transport, error) {
	cfg = cfg.withDefaults()
	if err := ValidateEndpoint(cfg.Endpoint); err != nil {
		return nil, err
	}
	return &transport{
		endpoint:  cfg.Endpoint,
		userAgent: cfg.UserAgent,
		timeout:   cfg.Timeout,
		hc:        cfg.HTTPClient,
	}, nil
}

// fields is a decoded JSON object keyed by field name.
type fields map[string]json.RawMessage

// postJSON issues one POST and decodes the 2xx response body as a JSON object.
// An empty body decodes to an empty object. It makes exactly one attempt.
func (t *transport) postJSON(ctx context.Context, payload any) (fields, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &TransportError{Op: "encode request", Err: err}
	}

	reqCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, t.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &TransportError{Op: opRequest, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", t.userAgent)

	resp, err := t.hc.Do(req)
	if err != nil {
		return nil, &TransportError{Op: opRequest, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &TransportError{Op: "read response", Err: err}
	}
	if resp.StatusCode/100 != 2 {
		return nil, newHTTPError(resp, b)
	}

	out := fields{}
	if len(bytes.TrimSpace(b)) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, &TransportError{Op: opDecode, Err: err}
	}
	if out == nil {
		// A literal "null" body.
		out = fields{}
	}
	return out, nil
}

func (f fields) take(key string) (json.RawMessage, bool) {
	raw, ok := f[key]
	if ok {
		delete(f, key)
	}
	return raw, ok
}

// str returns the string value of key, or ok=false when it is absent, null or not a string.
func (f fields) str(key string) (string, bool) {
	raw, ok := f.take(key)
	if !ok {
		return "", false
	}
	var s *string
	if err := json.Unmarshal(raw, &s); err != nil || s == nil {
		return "", false
	}
	return *s, true
}

// number accepts JSON numbers and numeric strings.
func (f fields) number(key string) (float64, bool) {
	raw, ok := f.take(key)
	if !ok {
		return 0, false
	}
	var n *float64
	if err := json.Unmarshal(raw, &n); err == nil {
		if n == nil {
			return 0, false
		}
		return *n, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func (f fields) boolean(key string) (bool, bool) {
	raw, ok := f.take(key)
	if !ok {
		return false, false
	}
	var b *bool
	if err := json.Unmarshal(raw, &b); err != nil || b == nil {
		return false, false
	}
	return *b, true
}

// rest decodes the remaining fields for passthrough.
func (f fields) rest() map[string]any {
	if len(f) == 0 {
		return nil
	}
	out := make(map[string]any, len(f))
	for k, raw := range f {
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			continue
		}
		out[k] = v
	}
	return out
}
