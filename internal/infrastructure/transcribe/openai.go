package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"strings"
	"time"

	apperrors "github.com/bymediadev/SoapBoxx/errors"
)

// openAIMaxInputBytes is the documented 25 MB upload cap on the audio
// transcriptions endpoint.
const openAIMaxInputBytes = 25 << 20

// OpenAIBackend transcribes via the OpenAI audio transcriptions API.
type OpenAIBackend struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// NewOpenAIBackend creates the backend. An empty apiKey falls back to
// the OPENAI_API_KEY environment variable.
func NewOpenAIBackend(apiKey, model string, timeout time.Duration) *OpenAIBackend {
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	base := os.Getenv("OPENAI_API_URL")
	if base == "" {
		base = "https://api.openai.com"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &OpenAIBackend{
		apiKey:  apiKey,
		model:   model,
		baseURL: base,
		client:  &http.Client{Timeout: timeout},
	}
}

func (o *OpenAIBackend) Name() string          { return "openai" }
func (o *OpenAIBackend) MaxInputBytes() int    { return openAIMaxInputBytes }
func (o *OpenAIBackend) RequiresNetwork() bool { return true }

type openAITranscription struct {
	Text string `json:"text"`
}

// Transcribe uploads the WAV payload as a multipart form and returns the
// recognized text.
func (o *OpenAIBackend) Transcribe(ctx context.Context, audio []byte, sampleRate int) (string, error) {
	if err := checkPayload(o.Name(), len(audio), o.MaxInputBytes()); err != nil {
		return "", err
	}
	if o.apiKey == "" {
		return "", apperrors.ErrAuthFailed("openai")
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("model", o.model); err != nil {
		return "", err
	}
	fw, err := mw.CreateFormFile("file", "window.wav")
	if err != nil {
		return "", err
	}
	if _, err := fw.Write(audio); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	endpoint := o.baseURL + "/v1/audio/transcriptions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+o.apiKey)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := o.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", apperrors.ErrTimeout("openai", err)
		}
		return "", apperrors.ErrServiceUnavailable("openai", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "", apperrors.ErrAuthFailed("openai")
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", apperrors.ErrRateLimited("openai")
	case resp.StatusCode >= 500:
		return "", apperrors.ErrServiceUnavailable("openai",
			fmt.Errorf("openai returned status %d", resp.StatusCode))
	case resp.StatusCode >= 400:
		b, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("openai returned status %d: %s", resp.StatusCode, string(b))
	}

	var tr openAITranscription
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", apperrors.ErrParseFailed(err)
	}
	return strings.TrimSpace(tr.Text), nil
}
