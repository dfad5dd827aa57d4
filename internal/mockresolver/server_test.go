package mockresolver_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shpitdev/email-finder-pipeline/internal/mockresolver"
)

func post(t *testing.T, url string, body any) (int, map[string]any, string) {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "mock-test/1.0")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	raw, _ := io.ReadAll(resp.Body)
	var out map[string]any
	_ = json.Unmarshal(raw, &out)
	return resp.StatusCode, out, string(raw)
}

func TestMockResolver_Find(t *testing.T) {
	t.Parallel()

	srv := mockresolver.New()
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	status, out, _ := post(t, ts.URL+"/find", map[string]any{"firstName": "John", "lastName": "Van Doe", "domain": "Example.com", "source": "unlimited-leads"})
	if status != http.StatusOK {
		t.Fatalf("status: want 200, got %d", status)
	}
	if out["email"] != "john.vandoe@example.com" || out["certainty"] != float64(80) {
		t.Fatalf("unexpected response: %#v", out)
	}

	status, out, _ = post(t, ts.URL+"/find", map[string]any{"firstName": "John", "domain": mockresolver.DomainUnknown})
	if status != http.StatusOK || out["email"] != nil {
		t.Fatalf("unknown domain: status=%d body=%#v", status, out)
	}

	status, _, _ = post(t, ts.URL+"/find", map[string]any{"firstName": "John", "domain": mockresolver.DomainError})
	if status != http.StatusInternalServerError {
		t.Fatalf("error domain: want 500, got %d", status)
	}

	status, _, raw := post(t, ts.URL+"/find", map[string]any{"firstName": "John", "domain": mockresolver.DomainGarbage})
	if status != http.StatusOK || json.Valid([]byte(raw)) {
		t.Fatalf("garbage domain: status=%d body=%q", status, raw)
	}

	calls := srv.Calls()
	if len(calls) != 4 {
		t.Fatalf("expected 4 calls, got %d: %#v", len(calls), calls)
	}
	if calls[0].Path != "/find" || calls[0].UserAgent != "mock-test/1.0" || calls[0].ContentType != "application/json" {
		t.Fatalf("call[0] not recorded as sent: %#v", calls[0])
	}
	if calls[0].Body["source"] != "unlimited-leads" {
		t.Fatalf("call[0] body: %#v", calls[0].Body)
	}
}

func TestMockResolver_SlowDomain(t *testing.T) {
	t.Parallel()

	srv := mockresolver.New()
	srv.SetSlowDelay(50 * time.Millisecond)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	start := time.Now()
	status, _, _ := post(t, ts.URL+"/find", map[string]any{"firstName": "Sam", "domain": mockresolver.DomainSlow})
	if status != http.StatusOK {
		t.Fatalf("status: want 200, got %d", status)
	}
	if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
		t.Fatalf("slow domain answered after %s", elapsed)
	}
}

func TestMockResolver_Validate(t *testing.T) {
	t.Parallel()

	srv := mockresolver.New()
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	tests := []struct {
		email  string
		status int
		key    string
		want   any
	}{
		{email: "jane@example.com", status: http.StatusOK, key: "isValid", want: true},
		{email: "invalid@example.com", status: http.StatusOK, key: "valid", want: false},
		{email: "bounce@example.com", status: http.StatusOK, key: "status", want: "INVALID"},
		{email: "unknown@example.com", status: http.StatusOK, key: "reason", want: "catch_all"},
		{email: "error@example.com", status: http.StatusBadGateway},
	}
	for _, tt := range tests {
		status, out, _ := post(t, ts.URL+"/hook/validate", map[string]any{"email": tt.email})
		if status != tt.status {
			t.Fatalf("%s: status want %d got %d", tt.email, tt.status, status)
		}
		if tt.key != "" && out[tt.key] != tt.want {
			t.Fatalf("%s: %s want %v got %#v", tt.email, tt.key, tt.want, out)
		}
	}
}

func TestMockResolver_RejectsNonPostAndBadJSON(t *testing.T) {
	t.Parallel()

	srv := mockresolver.New()
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/find")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("GET: want 405, got %d", resp.StatusCode)
	}

	resp, err = http.Post(ts.URL+"/find", "application/json", bytes.NewReader([]byte("{not json")))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad json: want 400, got %d", resp.StatusCode)
	}
	if n := len(srv.Calls()); n != 0 {
		t.Fatalf("rejected requests should not be recorded, got %d", n)
	}
}
