//go:build integration
// +build integration

package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"
)

func envOrDefault(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func baseURL() string {
	return envOrDefault("INTEGRATION_BASE_URL", "http://localhost:8080")
}

// newUserID returns an id no other test run has written under.
func newUserID(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}

// doRequest sends payload as JSON with the caller id header when userID is set.
func doRequest(t *testing.T, method, path, userID string, payload interface{}) *http.Response {
	t.Helper()

	var body bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&body).Encode(payload); err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
	}

	req, err := http.NewRequest(method, baseURL()+path, &body)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	return resp
}

// expectJSON checks the status and decodes the body into out (when non-nil).
func expectJSON(t *testing.T, resp *http.Response, status int, out interface{}) {
	t.Helper()
	defer resp.Body.Close()

	if resp.StatusCode != status {
		var errResp map[string]interface{}
		json.NewDecoder(resp.Body).Decode(&errResp)
		t.Fatalf("expected %d, got %d, body: %v", status, resp.StatusCode, errResp)
	}
	if out == nil {
		return
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode response failed: %v", err)
	}
}
