package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "github.com/bymediadev/SoapBoxx/errors"
	"github.com/bymediadev/SoapBoxx/internal/domain/entities"
	"github.com/bymediadev/SoapBoxx/pkg/config"
)

func newTestClient(url string) *Client {
	return NewClient(&config.FeedbackConfig{OpenAIAPIKey: "test-key", BaseURL: url})
}

func TestComplete_Success(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("expected POST got %s", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Fatalf("unexpected auth header %q", got)
		}
		var payload ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("invalid payload: %v", err)
		}
		if payload.MaxTokens != 1000 {
			t.Fatalf("expected max_tokens 1000 got %d", payload.MaxTokens)
		}
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": "{\"clarity\": 7}"}},
			},
		})
	}))
	defer ts.Close()

	client := newTestClient(ts.URL)
	got, err := client.Complete(context.Background(), "analyze this", 1000, entities.TierStandard)
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if got != "{\"clarity\": 7}" {
		t.Fatalf("unexpected content %q", got)
	}
}

func TestComplete_ErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		status int
		code   apperrors.ErrorCode
	}{
		{"auth", http.StatusUnauthorized, apperrors.ErrorCode_AUTH_FAILED},
		{"rate limit", http.StatusTooManyRequests, apperrors.ErrorCode_RATE_LIMITED},
		{"server error", http.StatusInternalServerError, apperrors.ErrorCode_SERVICE_UNAVAILABLE},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
			}))
			defer ts.Close()

			client := newTestClient(ts.URL)
			_, err := client.Complete(context.Background(), "prompt", 300, entities.TierFast)
			if err == nil {
				t.Fatal("expected error")
			}
			if !apperrors.IsCode(err, tc.code) {
				t.Fatalf("expected code %s got %v", tc.code, err)
			}
		})
	}
}

func TestComplete_NoAPIKey(t *testing.T) {
	client := &Client{baseURL: "http://invalid", client: http.DefaultClient}
	_, err := client.Complete(context.Background(), "prompt", 300, entities.TierFast)
	if !apperrors.IsCode(err, apperrors.ErrorCode_AUTH_FAILED) {
		t.Fatalf("expected AUTH_FAILED got %v", err)
	}
}

func TestComplete_EmptyChoices(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"choices": []interface{}{}})
	}))
	defer ts.Close()

	client := newTestClient(ts.URL)
	_, err := client.Complete(context.Background(), "prompt", 300, entities.TierFast)
	if !apperrors.IsCode(err, apperrors.ErrorCode_PARSE_FAILED) {
		t.Fatalf("expected PARSE_FAILED got %v", err)
	}
}
