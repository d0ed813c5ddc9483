package transcribe

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"

	"go.uber.org/zap"

	apperrors "github.com/bymediadev/SoapBoxx/errors"
)

// localMaxInputBytes is generous: the whisper binary streams from disk,
// so the practical bound is temp space, not memory.
const localMaxInputBytes = 100 << 20

// LocalBackend shells out to a whisper.cpp-style binary. The model is
// loaded once via LoadModel, which verifies the binary exists and may
// block for several seconds on first use.
type LocalBackend struct {
	whisperPath string
	model       string

	mu     sync.Mutex
	loaded bool

	logger *zap.Logger
}

// NewLocalBackend creates the local whisper backend. Call LoadModel
// before the first Transcribe.
func NewLocalBackend(whisperPath, model string, logger *zap.Logger) *LocalBackend {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LocalBackend{
		whisperPath: whisperPath,
		model:       model,
		logger:      logger,
	}
}

func (l *LocalBackend) Name() string          { return "local" }
func (l *LocalBackend) MaxInputBytes() int    { return localMaxInputBytes }
func (l *LocalBackend) RequiresNetwork() bool { return false }

// IsModelLoaded reports whether LoadModel has completed.
func (l *LocalBackend) IsModelLoaded() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loaded
}

// LoadModel resolves the whisper binary and records the model size to
// use. Idempotent; subsequent calls with a different size switch models.
func (l *LocalBackend) LoadModel(size string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	path, err := exec.LookPath(l.whisperPath)
	if err != nil {
		return apperrors.ErrModelNotLoaded(size).WithDetail("whisper_path", l.whisperPath)
	}
	l.whisperPath = path
	if size != "" {
		l.model = size
	}
	l.loaded = true
	l.logger.Info("Local whisper model ready",
		zap.String("binary", path),
		zap.String("model", l.model),
	)
	return nil
}

// Transcribe writes the WAV payload to a temp file and runs the whisper
// binary over it. The temp file is removed on every exit path.
func (l *LocalBackend) Transcribe(ctx context.Context, audio []byte, sampleRate int) (string, error) {
	if err := checkPayload(l.Name(), len(audio), l.MaxInputBytes()); err != nil {
		return "", err
	}
	if !l.IsModelLoaded() {
		return "", apperrors.ErrModelNotLoaded(l.model)
	}

	tmp, err := os.CreateTemp("", "soapboxx-window-*.wav")
	if err != nil {
		return "", fmt.Errorf("failed to create temp audio file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(audio); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write temp audio file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to close temp audio file: %w", err)
	}

	cmd := exec.CommandContext(ctx, l.whisperPath,
		"--model", l.model,
		tmpPath)

	output, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			l.logger.Debug("Whisper command failed",
				zap.String("stderr", string(exitErr.Stderr)),
				zap.Int("exit_code", exitErr.ExitCode()),
			)
		}
		return "", fmt.Errorf("whisper execution failed: %w", err)
	}

	return extractText(string(output)), nil
}

// extractText strips whisper's subtitle-style timestamps, keeping the
// spoken text only.
func extractText(output string) string {
	var builder strings.Builder
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		// Lines look like "[00:00:00.000 --> 00:00:04.000]  text here".
		if idx := strings.Index(line, "]"); strings.HasPrefix(line, "[") && idx != -1 {
			line = strings.TrimSpace(line[idx+1:])
		}
		if line == "" {
			continue
		}
		if builder.Len() > 0 {
			builder.WriteString(" ")
		}
		builder.WriteString(line)
	}
	return builder.String()
}
