package entities

// CaptureDevice describes an audio input device. Enumerated fresh on
// every refresh request and never persisted: hardware can disappear
// between sessions. Every field has a safe zero default.
type CaptureDevice struct {
	ID                int     `json:"id"`
	DisplayName       string  `json:"display_name"`
	ChannelCount      int     `json:"channel_count"`
	DefaultSampleRate float64 `json:"default_sample_rate"`
	IsDefault         bool    `json:"is_default"`
}

// AudioWindow is a fixed-duration buffer of mono PCM samples handed to a
// transcription backend. Owned exclusively by the pipeline for the
// duration of its transcription call, then discarded.
type AudioWindow struct {
	Index      int     // position in the session, 0-based
	Start      float64 // offset in seconds from recording start
	SampleRate int
	Samples    []int16
	Partial    bool // final flushed window may be shorter than configured
}

// DurationSeconds returns the window length implied by its sample count.
func (w AudioWindow) DurationSeconds() float64 {
	if w.SampleRate == 0 {
		return 0
	}
	return float64(len(w.Samples)) / float64(w.SampleRate)
}

// End returns the window's end offset in seconds.
func (w AudioWindow) End() float64 {
	return w.Start + w.DurationSeconds()
}

// SizeBytes returns the PCM payload size (2 bytes per sample).
func (w AudioWindow) SizeBytes() int {
	return len(w.Samples) * 2
}
