package audio

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/gordonklaus/portaudio"
	"go.uber.org/zap"
)

// readChunkTimeout bounds how long ReadChunk blocks waiting for samples.
const readChunkTimeout = 250 * time.Millisecond

// CaptureSession is one open stream on a capture device. The PortAudio
// callback pushes chunks into a bounded ring; when the consumer falls
// behind, the oldest chunk is dropped so capture timing is never
// delayed. Liveness beats completeness here.
type CaptureSession struct {
	manager  *DeviceManager
	deviceID int
	stream   *portaudio.Stream
	chunks   chan []int16

	mu      sync.Mutex
	level   float64
	dropped int64

	closeOnce sync.Once
	closed    chan struct{}
	logger    *zap.Logger
}

func newCaptureSession(m *DeviceManager, deviceID int, info *portaudio.DeviceInfo, sampleRate, channels, framesPerBuffer, ringChunks int, logger *zap.Logger) (*CaptureSession, error) {
	s := &CaptureSession{
		manager:  m,
		deviceID: deviceID,
		chunks:   make(chan []int16, ringChunks),
		closed:   make(chan struct{}),
		logger:   logger,
	}

	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   info,
			Channels: channels,
			Latency:  info.DefaultLowInputLatency,
		},
		SampleRate:      float64(sampleRate),
		FramesPerBuffer: framesPerBuffer,
	}

	stream, err := portaudio.OpenStream(params, s.onSamples)
	if err != nil {
		return nil, err
	}
	s.stream = stream

	if err := stream.Start(); err != nil {
		stream.Close()
		return nil, err
	}
	return s, nil
}

// onSamples runs on the PortAudio capture thread. It must never block:
// a full ring drops its oldest chunk to make room.
func (s *CaptureSession) onSamples(in []int16) {
	select {
	case <-s.closed:
		return
	default:
	}

	s.updateLevel(in)

	buf := make([]int16, len(in))
	copy(buf, in)

	select {
	case s.chunks <- buf:
	default:
		select {
		case <-s.chunks:
		default:
		}
		select {
		case s.chunks <- buf:
		default:
		}

		s.mu.Lock()
		s.dropped++
		dropped := s.dropped
		s.mu.Unlock()
		if dropped%50 == 1 {
			s.logger.Warn("Capture ring overflow, dropping oldest chunk",
				zap.Int("device_id", s.deviceID),
				zap.Int64("dropped_total", dropped),
			)
		}
	}
}

func (s *CaptureSession) updateLevel(in []int16) {
	if len(in) == 0 {
		return
	}
	var sum float64
	for _, sample := range in {
		v := float64(sample)
		sum += v * v
	}
	rms := math.Sqrt(sum/float64(len(in))) / math.MaxInt16

	s.mu.Lock()
	s.level = rms
	s.mu.Unlock()
}

// ReadChunk returns the next captured chunk. It blocks with a short
// timeout; a nil chunk with nil error means no data arrived in time and
// the caller should loop. Returns the context error once ctx ends, and
// (nil, nil) with a closed session.
func (s *CaptureSession) ReadChunk(ctx context.Context) ([]int16, error) {
	timer := time.NewTimer(readChunkTimeout)
	defer timer.Stop()

	select {
	case chunk := <-s.chunks:
		return chunk, nil
	case <-timer.C:
		return nil, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-s.closed:
		// Drain whatever the callback enqueued before close.
		select {
		case chunk := <-s.chunks:
			return chunk, nil
		default:
			return nil, nil
		}
	}
}

// Level returns the most recent RMS level sample, normalized to [0, 1].
func (s *CaptureSession) Level() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.level
}

// Dropped returns how many chunks were discarded to ring overflow.
func (s *CaptureSession) Dropped() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

// Close stops the stream and releases the device registration. Safe to
// call on every exit path; only the first call does work.
func (s *CaptureSession) Close() {
	s.closeOnce.Do(func() {
		close(s.closed)
		s.teardown()
		s.manager.release(s.deviceID)
		s.logger.Info("Closed capture session", zap.Int("device_id", s.deviceID))
	})
}

func (s *CaptureSession) teardown() {
	if s.stream == nil {
		return
	}
	if err := s.stream.Stop(); err != nil {
		s.logger.Warn("Failed to stop audio stream", zap.Error(err))
	}
	if err := s.stream.Close(); err != nil {
		s.logger.Warn("Failed to close audio stream", zap.Error(err))
	}
}
