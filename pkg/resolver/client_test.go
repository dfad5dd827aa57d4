package resolver_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shpitdev/email-finder-pipeline/internal/mockresolver"
	"github.com/shpitdev/email-finder-pipeline/pkg/outcome"
	"github.com/shpitdev/email-finder-pipeline/pkg/person"
	"github.com/shpitdev/email-finder-pipeline/pkg/resolver"
)

func newClient(t *testing.T, url string, timeout time.Duration) *resolver.Client {
	t.Helper()
	c, err := resolver.New(resolver.Config{Endpoint: url, Timeout: timeout}, zerolog.Nop())
	require.NoError(t, err)
	return c
}

func serve(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(ts.Close)
	return ts
}

var john = person.Query{FirstName: "John", LastName: "Doe", Domain: "example.com"}

func TestNew_RejectsBadEndpoint(t *testing.T) {
	for _, ep := range []string{"", "example.com/webhook", "ftp://example.com/x", "http://"} {
		_, err := resolver.New(resolver.Config{Endpoint: ep}, zerolog.Nop())
		assert.Error(t, err, "endpoint %q", ep)
	}
}

func TestResolve_RequestShape(t *testing.T) {
	srv := mockresolver.New()
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	c := newClient(t, ts.URL+"/webhook/abc", time.Second)
	rec := c.Resolve(context.Background(), john)
	require.Equal(t, outcome.StatusFound, rec.Status)

	calls := srv.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, http.MethodPost, calls[0].Method)
	assert.Equal(t, "/webhook/abc", calls[0].Path)
	assert.Equal(t, "application/json", calls[0].ContentType)
	assert.Equal(t, resolver.DefaultUserAgent, calls[0].UserAgent)
	assert.Equal(t, map[string]any{
		"firstName": "John",
		"lastName":  "Doe",
		"domain":    "example.com",
		"source":    resolver.DefaultSource,
	}, calls[0].Body)
}

func TestResolve_Found(t *testing.T) {
	ts := serve(t, http.StatusOK, `{"email":"a@b.com","certainty":80,"verified":true,"status":"ignored"}`)
	before := testutil.ToFloat64(resolver.ResolverRequestsTotal.WithLabelValues("FOUND"))

	rec := newClient(t, ts.URL, time.Second).Resolve(context.Background(), john)

	assert.Equal(t, outcome.StatusFound, rec.Status)
	require.NotNil(t, rec.Email)
	assert.Equal(t, "a@b.com", *rec.Email)
	assert.Equal(t, float64(80), rec.Certainty)
	assert.Empty(t, rec.Error)
	assert.Equal(t, john, *rec.Query)
	assert.Equal(t, map[string]any{"verified": true}, rec.Attributes)
	assert.False(t, rec.Timestamp.IsZero())
	assert.Equal(t, before+1, testutil.ToFloat64(resolver.ResolverRequestsTotal.WithLabelValues("FOUND")))
}

func TestResolve_NotFound(t *testing.T) {
	for name, body := range map[string]string{
		"null email":   `{"email":null}`,
		"empty email":  `{"email":""}`,
		"absent email": `{"certainty":0}`,
		"empty body":   ``,
		"null body":    `null`,
	} {
		t.Run(name, func(t *testing.T) {
			ts := serve(t, http.StatusOK, body)
			rec := newClient(t, ts.URL, time.Second).Resolve(context.Background(), john)
			assert.Equal(t, outcome.StatusNotFound, rec.Status)
			assert.Nil(t, rec.Email)
			assert.Zero(t, rec.Certainty)
			assert.Empty(t, rec.Error)
		})
	}
}

func TestResolve_ResponseFieldsWin(t *testing.T) {
	ts := serve(t, http.StatusOK, `{"email":"jd@corp.example.com","domain":"corp.example.com","lastName":"Doe-Smith","score":"42.5"}`)
	rec := newClient(t, ts.URL, time.Second).Resolve(context.Background(), john)

	assert.Equal(t, outcome.StatusFound, rec.Status)
	assert.Equal(t, "John", rec.FirstName)
	assert.Equal(t, "Doe-Smith", rec.LastName)
	assert.Equal(t, "corp.example.com", rec.Domain)
	assert.Equal(t, 42.5, rec.Certainty)
	assert.Nil(t, rec.Attributes)
}

func TestResolve_Non2xxIsError(t *testing.T) {
	ts := serve(t, http.StatusInternalServerError, `{"message":"boom"}`)
	rec := newClient(t, ts.URL, time.Second).Resolve(context.Background(), john)

	assert.Equal(t, outcome.StatusError, rec.Status)
	assert.Nil(t, rec.Email)
	assert.Zero(t, rec.Certainty)
	assert.Contains(t, rec.Error, "Request failed with status code 500")
	assert.Contains(t, rec.Error, "boom")
	assert.Equal(t, john, *rec.Query)
}

func TestResolve_InvalidJSONIsError(t *testing.T) {
	ts := serve(t, http.StatusOK, `<html>`)
	rec := newClient(t, ts.URL, time.Second).Resolve(context.Background(), john)
	assert.Equal(t, outcome.StatusError, rec.Status)
	assert.Contains(t, rec.Error, "decode response")
}

func TestResolve_TimeoutIsError(t *testing.T) {
	srv := mockresolver.New()
	srv.SetSlowDelay(500 * time.Millisecond)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	start := time.Now()
	q := person.Query{FirstName: "Slow", Domain: mockresolver.DomainSlow}
	rec := newClient(t, ts.URL, 50*time.Millisecond).Resolve(context.Background(), q)

	assert.Equal(t, outcome.StatusError, rec.Status)
	assert.NotEmpty(t, rec.Error)
	assert.Less(t, time.Since(start), 400*time.Millisecond)
}

func TestResolve_ConnectionRefusedIsRedacted(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL + "/webhook/5025b111-5648-4eac-b813-a78f9662b582"
	ts.Close()

	rec := newClient(t, url, time.Second).Resolve(context.Background(), john)
	assert.Equal(t, outcome.StatusError, rec.Status)
	assert.Contains(t, rec.Error, "/webhook/<redacted>")
	assert.NotContains(t, rec.Error, "5025b111")
}

func TestResolve_SingleAttempt(t *testing.T) {
	calls := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	rec := newClient(t, ts.URL, time.Second).Resolve(context.Background(), john)
	assert.Equal(t, outcome.StatusError, rec.Status)
	assert.Equal(t, 1, calls)
}

func TestClassify(t *testing.T) {
	assert.Equal(t, resolver.ErrorClassServer, resolver.Classify(&resolver.HTTPError{StatusCode: 502}))
	assert.Equal(t, resolver.ErrorClassClient, resolver.Classify(&resolver.HTTPError{StatusCode: 404}))
	assert.Equal(t, resolver.ErrorClassTimeout, resolver.Classify(&resolver.TransportError{Op: "request", Err: context.DeadlineExceeded}))
	assert.Equal(t, resolver.ErrorClassNetwork, resolver.Classify(&resolver.TransportError{Op: "request", Err: errors.New("connection refused")}))
}

func TestHTTPError_Message(t *testing.T) {
	err := &resolver.HTTPError{StatusCode: 404, Status: "404 Not Found", Snippet: strings.Repeat("x", 3)}
	assert.Equal(t, "Request failed with status code 404 Not Found: xxx", err.Error())
}
