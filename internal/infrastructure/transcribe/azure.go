package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	apperrors "github.com/bymediadev/SoapBoxx/errors"
)

// azureMaxInputBytes reflects the short-audio recognition endpoint: it
// accepts at most 60 seconds of audio per request, which our window
// sizes stay well inside.
const azureMaxInputBytes = 10 << 20

// AzureBackend transcribes via the Azure Speech short-audio REST API.
type AzureBackend struct {
	apiKey   string
	region   string
	endpoint string
	client   *http.Client
}

// NewAzureBackend creates the backend. Empty key/region fall back to the
// AZURE_SPEECH_KEY / AZURE_SPEECH_REGION environment variables.
func NewAzureBackend(apiKey, region string, timeout time.Duration) *AzureBackend {
	if apiKey == "" {
		apiKey = os.Getenv("AZURE_SPEECH_KEY")
	}
	if region == "" {
		region = os.Getenv("AZURE_SPEECH_REGION")
		if region == "" {
			region = "eastus"
		}
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &AzureBackend{
		apiKey: apiKey,
		region: region,
		endpoint: fmt.Sprintf(
			"https://%s.stt.speech.microsoft.com/speech/recognition/conversation/cognitiveservices/v1?language=en-US",
			region),
		client: &http.Client{Timeout: timeout},
	}
}

func (az *AzureBackend) Name() string          { return "azure" }
func (az *AzureBackend) MaxInputBytes() int    { return azureMaxInputBytes }
func (az *AzureBackend) RequiresNetwork() bool { return true }

type azureRecognition struct {
	RecognitionStatus string `json:"RecognitionStatus"`
	DisplayText       string `json:"DisplayText"`
}

// Transcribe posts the WAV payload to the short-audio endpoint.
func (az *AzureBackend) Transcribe(ctx context.Context, audio []byte, sampleRate int) (string, error) {
	if err := checkPayload(az.Name(), len(audio), az.MaxInputBytes()); err != nil {
		return "", err
	}
	if az.apiKey == "" {
		return "", apperrors.ErrAuthFailed("azure")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, az.endpoint, bytes.NewReader(audio))
	if err != nil {
		return "", err
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", az.apiKey)
	req.Header.Set("Content-Type",
		fmt.Sprintf("audio/wav; codecs=audio/pcm; samplerate=%d", sampleRate))
	req.Header.Set("Accept", "application/json")

	resp, err := az.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", apperrors.ErrTimeout("azure", err)
		}
		return "", apperrors.ErrServiceUnavailable("azure", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "", apperrors.ErrAuthFailed("azure")
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", apperrors.ErrRateLimited("azure")
	case resp.StatusCode >= 500:
		return "", apperrors.ErrServiceUnavailable("azure",
			fmt.Errorf("azure returned status %d", resp.StatusCode))
	case resp.StatusCode >= 400:
		return "", fmt.Errorf("azure returned status %d", resp.StatusCode)
	}

	var rec azureRecognition
	if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
		return "", apperrors.ErrParseFailed(err)
	}
	if rec.RecognitionStatus != "Success" {
		// NoMatch and InitialSilenceTimeout mean silence, not failure.
		return "", nil
	}
	return rec.DisplayText, nil
}
