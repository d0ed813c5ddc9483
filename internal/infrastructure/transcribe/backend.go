package transcribe

import (
	"context"
	"fmt"

	backoff "github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	apperrors "github.com/bymediadev/SoapBoxx/errors"
	"github.com/bymediadev/SoapBoxx/pkg/config"
)

// Backend is a pluggable transcription backend. Audio is 16-bit mono WAV
// bytes. Implementations translate their transport failures onto the
// application error taxonomy so the pipeline's retry policy can act on
// codes, not on backend-specific errors.
type Backend interface {
	Name() string
	Transcribe(ctx context.Context, audio []byte, sampleRate int) (string, error)
	MaxInputBytes() int
	RequiresNetwork() bool
}

// New selects a backend from configuration. Selection is a config value,
// not a type hierarchy: each variant implements the same contract with
// its own size, rate and availability constraints.
func New(cfg *config.TranscriptionConfig, logger *zap.Logger) (Backend, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var b Backend
	switch cfg.Backend {
	case "local":
		b = NewLocalBackend(cfg.WhisperPath, cfg.WhisperModel, logger)
	case "openai":
		b = NewOpenAIBackend(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.RequestTimeout)
	case "assemblyai":
		b = NewAssemblyAIBackend(cfg.AssemblyAIAPIKey)
	case "azure":
		b = NewAzureBackend(cfg.AzureSpeechKey, cfg.AzureRegion, cfg.RequestTimeout)
	default:
		return nil, fmt.Errorf("unknown transcription backend: %s", cfg.Backend)
	}

	if cfg.MaxInputBytes > 0 {
		b = &limitOverride{Backend: b, limit: cfg.MaxInputBytes}
	}
	return b, nil
}

// limitOverride caps a backend's payload limit below its default.
type limitOverride struct {
	Backend
	limit int
}

func (l *limitOverride) MaxInputBytes() int {
	if l.limit < l.Backend.MaxInputBytes() {
		return l.limit
	}
	return l.Backend.MaxInputBytes()
}

func (l *limitOverride) Transcribe(ctx context.Context, audio []byte, sampleRate int) (string, error) {
	if err := checkPayload(l.Name(), len(audio), l.MaxInputBytes()); err != nil {
		return "", err
	}
	return l.Backend.Transcribe(ctx, audio, sampleRate)
}

// ModelLoader is implemented by backends that stage a local model
// before their first use.
type ModelLoader interface {
	LoadModel(size string) error
}

// AsModelLoader unwraps decorators to find a backend that stages a
// local model.
func AsModelLoader(b Backend) (ModelLoader, bool) {
	for {
		if loader, ok := b.(ModelLoader); ok {
			return loader, true
		}
		switch w := b.(type) {
		case *limitOverride:
			b = w.Backend
		case *retryingBackend:
			b = w.inner
		default:
			return nil, false
		}
	}
}

// checkPayload enforces the backend input limit. Violations fail fast
// and are never retried; the caller must split the audio or pick a
// backend with a higher limit.
func checkPayload(backend string, size, limit int) error {
	if limit > 0 && size > limit {
		return apperrors.ErrPayloadTooLarge(backend, size, limit)
	}
	return nil
}

// retryable reports whether a transcription error is worth another
// attempt. Payload violations and missing models are deterministic.
func retryable(err error) bool {
	switch apperrors.CodeOf(err) {
	case apperrors.ErrorCode_PAYLOAD_TOO_LARGE,
		apperrors.ErrorCode_INVALID_INPUT,
		apperrors.ErrorCode_MODEL_NOT_LOADED:
		return false
	}
	return true
}

// WithRetry wraps a backend with bounded exponential backoff. Used for
// network backends where auth, rate-limit and transient failures may
// clear on a second attempt.
func WithRetry(b Backend, maxRetries uint64, logger *zap.Logger) Backend {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &retryingBackend{inner: b, maxRetries: maxRetries, logger: logger}
}

type retryingBackend struct {
	inner      Backend
	maxRetries uint64
	logger     *zap.Logger
}

func (r *retryingBackend) Name() string          { return r.inner.Name() }
func (r *retryingBackend) MaxInputBytes() int    { return r.inner.MaxInputBytes() }
func (r *retryingBackend) RequiresNetwork() bool { return r.inner.RequiresNetwork() }

func (r *retryingBackend) Transcribe(ctx context.Context, audio []byte, sampleRate int) (string, error) {
	var text string
	attempt := 0

	operation := func() error {
		attempt++
		result, err := r.inner.Transcribe(ctx, audio, sampleRate)
		if err != nil {
			if !retryable(err) {
				return backoff.Permanent(err)
			}
			r.logger.Warn("Transcription attempt failed",
				zap.String("backend", r.inner.Name()),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			return err
		}
		text = result
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), r.maxRetries), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return "", err
	}
	return text, nil
}
