package audio

import (
	"bytes"

	wav "github.com/youpy/go-wav"
)

// EncodeWAV wraps mono PCM samples in a 16-bit WAV container, the format
// every transcription backend accepts.
func EncodeWAV(samples []int16, sampleRate int) ([]byte, error) {
	var buf bytes.Buffer
	writer := wav.NewWriter(&buf, uint32(len(samples)), 1, uint32(sampleRate), 16)

	wavSamples := make([]wav.Sample, len(samples))
	for i, s := range samples {
		wavSamples[i].Values[0] = int(s)
	}
	if err := writer.WriteSamples(wavSamples); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WAVSampleRate reads the sample rate from a WAV header.
func WAVSampleRate(data []byte) (int, error) {
	reader := wav.NewReader(bytes.NewReader(data))
	format, err := reader.Format()
	if err != nil {
		return 0, err
	}
	return int(format.SampleRate), nil
}
