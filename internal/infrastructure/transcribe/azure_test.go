package transcribe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	apperrors "github.com/bymediadev/SoapBoxx/errors"
)

func newAzureTestBackend(t *testing.T, handler http.HandlerFunc) *AzureBackend {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	b := NewAzureBackend("test-key", "eastus", 5*time.Second)
	b.endpoint = server.URL
	return b
}

func TestAzureTranscribe(t *testing.T) {
	b := newAzureTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Ocp-Apim-Subscription-Key"); got != "test-key" {
			t.Errorf("unexpected subscription key: %q", got)
		}
		if ct := r.Header.Get("Content-Type"); !strings.Contains(ct, "samplerate=16000") {
			t.Errorf("content type missing sample rate: %q", ct)
		}
		w.Write([]byte(`{"RecognitionStatus": "Success", "DisplayText": "Testing one two three."}`))
	})

	text, err := b.Transcribe(context.Background(), []byte("fake wav"), 16000)
	if err != nil {
		t.Fatalf("transcribe failed: %v", err)
	}
	if text != "Testing one two three." {
		t.Errorf("unexpected text: %q", text)
	}
}

func TestAzureTranscribeSilence(t *testing.T) {
	b := newAzureTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"RecognitionStatus": "NoMatch"}`))
	})

	text, err := b.Transcribe(context.Background(), []byte("silent wav"), 16000)
	if err != nil {
		t.Fatalf("silence should not be an error: %v", err)
	}
	if text != "" {
		t.Errorf("expected empty text for silence, got %q", text)
	}
}

func TestAzureTranscribeErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   apperrors.ErrorCode
	}{
		{"unauthorized", http.StatusUnauthorized, apperrors.ErrorCode_AUTH_FAILED},
		{"rate limited", http.StatusTooManyRequests, apperrors.ErrorCode_RATE_LIMITED},
		{"server error", http.StatusBadGateway, apperrors.ErrorCode_SERVICE_UNAVAILABLE},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newAzureTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})

			_, err := b.Transcribe(context.Background(), []byte("audio"), 16000)
			if !apperrors.IsCode(err, tt.want) {
				t.Errorf("expected %s, got %v", tt.want, err)
			}
		})
	}
}
