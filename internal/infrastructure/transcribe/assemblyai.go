package transcribe

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"

	aai "github.com/AssemblyAI/assemblyai-go-sdk"

	apperrors "github.com/bymediadev/SoapBoxx/errors"
)

// assemblyAIMaxInputBytes bounds what we are willing to ship per window;
// the service itself accepts far larger files.
const assemblyAIMaxInputBytes = 512 << 20

// AssemblyAIBackend transcribes via the official AssemblyAI SDK: upload
// the payload, then submit and poll until the transcript completes.
type AssemblyAIBackend struct {
	client *aai.Client
}

// NewAssemblyAIBackend creates the backend. An empty apiKey falls back
// to the ASSEMBLYAI_API_KEY environment variable.
func NewAssemblyAIBackend(apiKey string) *AssemblyAIBackend {
	if apiKey == "" {
		apiKey = os.Getenv("ASSEMBLYAI_API_KEY")
	}
	return &AssemblyAIBackend{
		client: aai.NewClient(apiKey),
	}
}

func (a *AssemblyAIBackend) Name() string          { return "assemblyai" }
func (a *AssemblyAIBackend) MaxInputBytes() int    { return assemblyAIMaxInputBytes }
func (a *AssemblyAIBackend) RequiresNetwork() bool { return true }

// Transcribe uploads the WAV payload and waits for the transcript.
func (a *AssemblyAIBackend) Transcribe(ctx context.Context, audio []byte, sampleRate int) (string, error) {
	if err := checkPayload(a.Name(), len(audio), a.MaxInputBytes()); err != nil {
		return "", err
	}

	uploadURL, err := a.client.Upload(ctx, bytes.NewReader(audio))
	if err != nil {
		return "", a.mapError("upload", err)
	}

	params := &aai.TranscriptOptionalParams{
		Punctuate:  aai.Bool(true),
		FormatText: aai.Bool(true),
	}
	transcript, err := a.client.Transcripts.TranscribeFromURL(ctx, uploadURL, params)
	if err != nil {
		return "", a.mapError("transcribe", err)
	}

	if transcript.Status == aai.TranscriptStatusError {
		reason := ""
		if transcript.Error != nil {
			reason = *transcript.Error
		}
		return "", apperrors.ErrServiceUnavailable("assemblyai",
			fmt.Errorf("transcription failed: %s", reason))
	}
	if transcript.Text == nil {
		return "", nil
	}
	return *transcript.Text, nil
}

func (a *AssemblyAIBackend) mapError(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.ErrTimeout("assemblyai", err)
	}

	var apiErr aai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Status == 401 || apiErr.Status == 403:
			return apperrors.ErrAuthFailed("assemblyai")
		case apiErr.Status == 429:
			return apperrors.ErrRateLimited("assemblyai")
		}
	}
	return apperrors.ErrServiceUnavailable("assemblyai", fmt.Errorf("%s: %w", op, err))
}
