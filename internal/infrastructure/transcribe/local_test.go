package transcribe

import (
	"context"
	"testing"

	apperrors "github.com/bymediadev/SoapBoxx/errors"
)

func TestLocalTranscribeRequiresLoadedModel(t *testing.T) {
	b := NewLocalBackend("whisper", "base", nil)

	_, err := b.Transcribe(context.Background(), []byte("audio"), 16000)
	if !apperrors.IsCode(err, apperrors.ErrorCode_MODEL_NOT_LOADED) {
		t.Errorf("expected MODEL_NOT_LOADED before LoadModel, got %v", err)
	}
}

func TestLoadModelMissingBinary(t *testing.T) {
	b := NewLocalBackend("definitely-not-a-real-binary-name", "base", nil)

	err := b.LoadModel("base")
	if !apperrors.IsCode(err, apperrors.ErrorCode_MODEL_NOT_LOADED) {
		t.Errorf("expected MODEL_NOT_LOADED for a missing binary, got %v", err)
	}
	if b.IsModelLoaded() {
		t.Error("model must not report loaded after a failed load")
	}
}

func TestExtractText(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   string
	}{
		{
			name:   "subtitle timestamps",
			output: "[00:00:00.000 --> 00:00:04.000]  Welcome back.\n[00:00:04.000 --> 00:00:08.000]  Let's begin.",
			want:   "Welcome back. Let's begin.",
		},
		{
			name:   "plain lines",
			output: "First line.\nSecond line.\n",
			want:   "First line. Second line.",
		},
		{
			name:   "blank and bracket-only lines",
			output: "\n[00:00:00.000 --> 00:00:02.000]\n  spoken words  \n",
			want:   "spoken words",
		},
		{
			name:   "empty",
			output: "",
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractText(tt.output); got != tt.want {
				t.Errorf("extractText() = %q, want %q", got, tt.want)
			}
		})
	}
}
