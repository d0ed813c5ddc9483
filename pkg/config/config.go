package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	apperrors "github.com/bymediadev/SoapBoxx/errors"
	"github.com/bymediadev/SoapBoxx/internal/domain/entities"
)

// Config holds application configuration
type Config struct {
	Server        ServerConfig        `split_words:"true"`
	Audio         AudioConfig         `split_words:"true"`
	Transcription TranscriptionConfig `split_words:"true"`
	Feedback      FeedbackConfig      `split_words:"true"`
	Watcher       WatcherConfig       `split_words:"true"`
}

// ServerConfig holds the local API server configuration. The daemon
// binds to loopback by default; the desktop shell is the only client.
type ServerConfig struct {
	Host            string        `default:"127.0.0.1"`
	Port            string        `default:"8090"`
	Environment     string        `default:"development"`
	ShutdownTimeout time.Duration `split_words:"true" default:"10s"`
}

// AudioConfig holds capture configuration.
type AudioConfig struct {
	SampleRate      int `split_words:"true" default:"16000"`
	Channels        int `default:"1"`
	FramesPerBuffer int `split_words:"true" default:"1024"`
	// RingChunks bounds the capture ring buffer; on overflow the oldest
	// chunk is dropped so capture never blocks.
	RingChunks int `split_words:"true" default:"64"`
}

// TranscriptionConfig selects and tunes the transcription backend.
type TranscriptionConfig struct {
	Backend        string        `default:"local"` // local, openai, assemblyai, azure
	WindowSeconds  int           `split_words:"true" default:"15"`
	OverlapSeconds int           `split_words:"true" default:"5"`
	MaxRetries     int           `split_words:"true" default:"2"`
	RequestTimeout time.Duration `split_words:"true" default:"30s"`
	// MaxInputBytes overrides the active backend's payload limit when
	// non-zero; otherwise each backend applies its own default.
	MaxInputBytes int `split_words:"true"`

	OpenAIAPIKey     string `envconfig:"OPENAI_API_KEY"`
	OpenAIModel      string `envconfig:"OPENAI_WHISPER_MODEL" default:"whisper-1"`
	AssemblyAIAPIKey string `envconfig:"ASSEMBLYAI_API_KEY"`
	AzureSpeechKey   string `envconfig:"AZURE_SPEECH_KEY"`
	AzureRegion      string `envconfig:"AZURE_SPEECH_REGION" default:"eastus"`
	WhisperPath      string `split_words:"true" default:"whisper"`
	WhisperModel     string `split_words:"true" default:"base"`
}

// FeedbackConfig tunes the feedback engine and its analysis cache.
type FeedbackConfig struct {
	OpenAIAPIKey string        `envconfig:"OPENAI_API_KEY"`
	BaseURL      string        `envconfig:"OPENAI_API_URL"`
	DefaultDepth string        `split_words:"true" default:"comprehensive"`
	BlendRatio   float64       `split_words:"true" default:"0.5"` // metrics share of each dimension score
	CacheTTL     time.Duration `split_words:"true" default:"1h"`
	CacheMaxSize int           `split_words:"true" default:"128"`
	// RatePerMinute bounds analysis calls per sliding minute.
	RatePerMinute int `split_words:"true" default:"5"`

	WeightClarity         float64 `split_words:"true" default:"0.25"`
	WeightEngagement      float64 `split_words:"true" default:"0.25"`
	WeightStructure       float64 `split_words:"true" default:"0.20"`
	WeightEnergy          float64 `split_words:"true" default:"0.15"`
	WeightProfessionalism float64 `split_words:"true" default:"0.15"`
}

// WatcherConfig controls the optional recordings-folder watcher.
type WatcherConfig struct {
	Enabled     bool          `default:"false"`
	Dir         string        `default:""`
	Debounce    time.Duration `default:"2s"`
	WorkerCount int           `split_words:"true" default:"2"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables or defaults")
	}

	var cfg Config
	if err := envconfig.Process("soapboxx", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate validates the configuration. Scoring weight violations are
// fatal here so they can never reach the scoring path at runtime.
func (c *Config) Validate() error {
	weights := c.ScoringWeights()
	if !weights.Valid() {
		return apperrors.ErrScoringConfig(
			fmt.Sprintf("scoring weights must sum to 1.0, got %.6f", weights.Sum()))
	}

	if c.Feedback.BlendRatio < 0 || c.Feedback.BlendRatio > 1 {
		return fmt.Errorf("blend ratio must be in [0,1], got %.2f", c.Feedback.BlendRatio)
	}

	if !entities.AnalysisDepth(c.Feedback.DefaultDepth).Valid() {
		return fmt.Errorf("unknown analysis depth: %s", c.Feedback.DefaultDepth)
	}

	if c.Transcription.WindowSeconds <= 0 {
		return fmt.Errorf("window duration must be positive")
	}
	if c.Transcription.OverlapSeconds < 0 || c.Transcription.OverlapSeconds >= c.Transcription.WindowSeconds {
		return fmt.Errorf("overlap must be shorter than the window, got %ds overlap for %ds window",
			c.Transcription.OverlapSeconds, c.Transcription.WindowSeconds)
	}

	switch c.Transcription.Backend {
	case "local", "openai", "assemblyai", "azure":
	default:
		return fmt.Errorf("unknown transcription backend: %s", c.Transcription.Backend)
	}

	if c.Watcher.Enabled && c.Watcher.Dir == "" {
		return fmt.Errorf("watcher enabled but no directory configured")
	}

	return nil
}

// ScoringWeights assembles the configured dimension weights.
func (c *Config) ScoringWeights() entities.ScoringWeights {
	return entities.ScoringWeights{
		Clarity:         c.Feedback.WeightClarity,
		Engagement:      c.Feedback.WeightEngagement,
		Structure:       c.Feedback.WeightStructure,
		Energy:          c.Feedback.WeightEnergy,
		Professionalism: c.Feedback.WeightProfessionalism,
	}
}

// DefaultDepth returns the configured default analysis depth.
func (c *Config) DefaultDepth() entities.AnalysisDepth {
	return entities.AnalysisDepth(c.Feedback.DefaultDepth)
}

// ListenAddr returns the host:port the API server binds to.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}

// WindowDuration returns the transcription window length.
func (c *Config) WindowDuration() time.Duration {
	return time.Duration(c.Transcription.WindowSeconds) * time.Second
}

// OverlapDuration returns the window overlap length.
func (c *Config) OverlapDuration() time.Duration {
	return time.Duration(c.Transcription.OverlapSeconds) * time.Second
}
