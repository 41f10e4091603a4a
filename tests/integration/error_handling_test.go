//go:build integration
// +build integration

package integration

import (
	"net/http"
	"testing"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field"`
}

func TestMissingUserHeader(t *testing.T) {
	var errResp errorResponse
	expectJSON(t, doRequest(t, http.MethodGet, "/v1/dashboard", "", nil), http.StatusUnauthorized, &errResp)
	if errResp.Error != "authentication_required" {
		t.Fatalf("expected error code 'authentication_required', got %q", errResp.Error)
	}
}

func TestValidationErrors(t *testing.T) {
	user := newUserID("validate")

	testCases := []struct {
		name    string
		path    string
		payload map[string]interface{}
		field   string
	}{
		{
			name:    "negative count",
			path:    "/v1/results",
			payload: map[string]interface{}{"course_name": "Matematik", "wrong_count": -1},
			field:   "wrong",
		},
		{
			name:    "unknown subject",
			path:    "/v1/results",
			payload: map[string]interface{}{"course_name": "Astronomi", "correct_count": 3},
			field:   "course_name",
		},
		{
			name:    "fractional exam count",
			path:    "/v1/exams",
			payload: map[string]interface{}{"turkce": map[string]interface{}{"dogru": 2.5}},
			field:   "turkce.correct",
		},
		{
			name:    "mistake without subject",
			path:    "/v1/mistakes",
			payload: map[string]interface{}{"note": "?"},
			field:   "course_name",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var errResp errorResponse
			expectJSON(t, doRequest(t, http.MethodPost, tc.path, user, tc.payload), http.StatusBadRequest, &errResp)
			if errResp.Error != "validation_failed" {
				t.Fatalf("expected error code 'validation_failed', got %q", errResp.Error)
			}
			if errResp.Field != tc.field {
				t.Fatalf("expected field %q, got %q", tc.field, errResp.Field)
			}
		})
	}
}

func TestNotFoundErrors(t *testing.T) {
	user := newUserID("missing")

	var errResp errorResponse
	expectJSON(t, doRequest(t, http.MethodDelete, "/v1/exams/00000000-0000-0000-0000-000000000000", user, nil),
		http.StatusNotFound, &errResp)
	if errResp.Error != "not_found" {
		t.Fatalf("expected error code 'not_found', got %q", errResp.Error)
	}

	expectJSON(t, doRequest(t, http.MethodGet, "/v1/rankings/yearly", user, nil), http.StatusNotFound, &errResp)
	if errResp.Error != "unknown_ranking_window" {
		t.Fatalf("expected error code 'unknown_ranking_window', got %q", errResp.Error)
	}
}

func TestInvalidJSONPayload(t *testing.T) {
	req, err := http.NewRequest(http.MethodPost, baseURL()+"/v1/results", http.NoBody)
	if err != nil {
		t.Fatalf("create request failed: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", newUserID("json"))

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	var errResp errorResponse
	expectJSON(t, resp, http.StatusBadRequest, &errResp)
	if errResp.Error != "invalid_request" {
		t.Fatalf("expected error code 'invalid_request', got %q", errResp.Error)
	}
}
