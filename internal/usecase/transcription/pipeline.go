package transcription

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/bymediadev/SoapBoxx/errors"
	"github.com/bymediadev/SoapBoxx/internal/domain/entities"
	"github.com/bymediadev/SoapBoxx/internal/infrastructure/audio"
	"github.com/bymediadev/SoapBoxx/internal/infrastructure/transcribe"
)

// State is the pipeline lifecycle phase.
type State string

const (
	StateIdle      State = "idle"
	StateCapturing State = "capturing"
	StateStopping  State = "stopping"
	StateStopped   State = "stopped"
)

// ChunkSource is the capture side of the pipeline. audio.CaptureSession
// satisfies it; tests substitute a scripted source.
type ChunkSource interface {
	ReadChunk(ctx context.Context) ([]int16, error)
	Level() float64
	Close()
}

// Encoder turns raw samples into the payload a backend accepts.
type Encoder func(samples []int16, sampleRate int) ([]byte, error)

// PipelineConfig sizes the capture windows.
type PipelineConfig struct {
	SampleRate     int
	WindowSeconds  int
	OverlapSeconds int
	// WindowTimeout bounds a single window's transcription, retries
	// included. Zero means 2 minutes.
	WindowTimeout time.Duration
}

// completion is one finished window, successful or not. Failed windows
// arrive with empty text so their slot in the timeline is preserved.
type completion struct {
	index      int
	start, end float64
	text       string
}

// Pipeline drives one recording session: it consumes capture chunks,
// cuts them into overlapping windows, hands each window to the
// transcription backend, and reassembles completions into an ordered
// transcript. Dispatch is serialized per session, but completions are
// still reordered by window index so the transcript never depends on
// backend latency.
type Pipeline struct {
	id      uuid.UUID
	source  ChunkSource
	backend transcribe.Backend
	encode  Encoder
	cfg     PipelineConfig

	mu         sync.Mutex
	state      State
	transcript *entities.Transcript

	windows     chan entities.AudioWindow
	completions chan completion
	events      *broadcaster

	cancelCapture context.CancelFunc
	captureDone   chan struct{}
	dispatchDone  chan struct{}
	collectDone   chan struct{}

	logger *zap.Logger
}

// NewPipeline creates a pipeline in the idle state.
func NewPipeline(source ChunkSource, backend transcribe.Backend, cfg PipelineConfig, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.WindowTimeout <= 0 {
		cfg.WindowTimeout = 2 * time.Minute
	}
	if cfg.WindowSeconds <= 0 {
		cfg.WindowSeconds = 15
	}
	if cfg.OverlapSeconds < 0 || cfg.OverlapSeconds >= cfg.WindowSeconds {
		cfg.OverlapSeconds = 0
	}

	id := uuid.New()
	return &Pipeline{
		id:           id,
		source:       source,
		backend:      backend,
		encode:       audio.EncodeWAV,
		cfg:          cfg,
		state:        StateIdle,
		transcript:   entities.NewTranscript(id),
		windows:      make(chan entities.AudioWindow, 8),
		completions:  make(chan completion, 8),
		events:       newBroadcaster(),
		captureDone:  make(chan struct{}),
		dispatchDone: make(chan struct{}),
		collectDone:  make(chan struct{}),
		logger:       logger.With(zap.String("session_id", id.String())),
	}
}

// ID returns the session identifier.
func (p *Pipeline) ID() uuid.UUID { return p.id }

// State returns the current lifecycle phase.
func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Subscribe attaches an event listener. The returned cancel must be
// called when the listener goes away.
func (p *Pipeline) Subscribe() (<-chan Event, func()) {
	return p.events.Subscribe()
}

// Transcript returns a snapshot of the transcript so far. Live sessions
// return a copy; only the pipeline mutates the original.
func (p *Pipeline) Transcript() *entities.Transcript {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.transcript.Clone()
}

// Start begins capturing. Only an idle pipeline can start.
func (p *Pipeline) Start() error {
	p.mu.Lock()
	if p.state != StateIdle {
		state := p.state
		p.mu.Unlock()
		return apperrors.ErrInvalidInput("cannot start a session in state " + string(state))
	}
	p.state = StateCapturing
	p.mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	p.cancelCapture = cancel

	go p.captureLoop(ctx)
	go p.dispatchLoop()
	go p.collectLoop()

	p.logger.Info("Recording session started",
		zap.String("backend", p.backend.Name()),
		zap.Int("window_seconds", p.cfg.WindowSeconds),
		zap.Int("overlap_seconds", p.cfg.OverlapSeconds),
	)
	return nil
}

// Stop ends capture, waits for in-flight windows to complete, finalizes
// the transcript and returns it. Idempotent: a stopped pipeline returns
// its finalized transcript again.
func (p *Pipeline) Stop(ctx context.Context) (*entities.Transcript, error) {
	p.mu.Lock()
	switch p.state {
	case StateStopped:
		t := p.transcript.Clone()
		p.mu.Unlock()
		return t, nil
	case StateIdle:
		p.state = StateStopped
		p.transcript.Finalize()
		t := p.transcript.Clone()
		p.mu.Unlock()
		return t, nil
	case StateStopping:
		p.mu.Unlock()
		return nil, apperrors.ErrInvalidInput("session is already stopping")
	}
	p.state = StateStopping
	p.mu.Unlock()

	p.cancelCapture()

	for _, done := range []chan struct{}{p.captureDone, p.dispatchDone, p.collectDone} {
		select {
		case <-done:
		case <-ctx.Done():
			return nil, apperrors.ErrTimeout("session stop", ctx.Err())
		}
	}

	p.mu.Lock()
	p.transcript.Finalize()
	p.state = StateStopped
	t := p.transcript.Clone()
	p.mu.Unlock()

	p.events.Publish(Event{Type: EventStopped})
	p.events.CloseAll()
	p.source.Close()

	p.logger.Info("Recording session stopped",
		zap.Int("segments", len(t.Segments)),
		zap.Float64("duration_seconds", t.Duration()),
	)
	return t, nil
}

// captureLoop accumulates chunks and cuts them into windows. Each window
// shares its trailing overlap with the next one so words spoken across a
// boundary land in at least one window whole. Sending on the window
// queue may block briefly; the capture ring absorbs that by dropping its
// oldest chunk, so this loop never stalls the audio callback.
func (p *Pipeline) captureLoop(ctx context.Context) {
	defer close(p.windows)
	defer close(p.captureDone)

	windowSamples := p.cfg.WindowSeconds * p.cfg.SampleRate
	strideSamples := (p.cfg.WindowSeconds - p.cfg.OverlapSeconds) * p.cfg.SampleRate
	strideSeconds := float64(p.cfg.WindowSeconds - p.cfg.OverlapSeconds)

	buffer := make([]int16, 0, windowSamples+p.cfg.SampleRate)
	carried := 0
	index := 0

	for {
		chunk, err := p.source.ReadChunk(ctx)
		if err != nil {
			break
		}
		if len(chunk) == 0 {
			continue
		}

		p.events.Publish(Event{Type: EventLevel, Level: p.source.Level()})

		buffer = append(buffer, chunk...)
		for len(buffer) >= windowSamples {
			samples := make([]int16, windowSamples)
			copy(samples, buffer[:windowSamples])
			p.windows <- entities.AudioWindow{
				Index:      index,
				Start:      float64(index) * strideSeconds,
				SampleRate: p.cfg.SampleRate,
				Samples:    samples,
			}
			index++
			buffer = append(buffer[:0], buffer[strideSamples:]...)
			carried = windowSamples - strideSamples
		}
	}

	// Flush the tail only if it holds samples beyond the carried
	// overlap; a pure-overlap tail was already transcribed.
	if len(buffer) > carried {
		samples := make([]int16, len(buffer))
		copy(samples, buffer)
		p.windows <- entities.AudioWindow{
			Index:      index,
			Start:      float64(index) * strideSeconds,
			SampleRate: p.cfg.SampleRate,
			Samples:    samples,
			Partial:    true,
		}
	}
}

// dispatchLoop feeds windows to the backend one at a time. A window that
// fails after retries becomes an empty-text completion; the session
// keeps going and the timeline keeps its shape.
func (p *Pipeline) dispatchLoop() {
	defer close(p.completions)
	defer close(p.dispatchDone)

	for w := range p.windows {
		text := p.transcribeWindow(w)
		p.completions <- completion{
			index: w.Index,
			start: w.Start,
			end:   w.End(),
			text:  text,
		}
	}
}

func (p *Pipeline) transcribeWindow(w entities.AudioWindow) string {
	payload, err := p.encode(w.Samples, w.SampleRate)
	if err != nil {
		p.logger.Warn("Failed to encode audio window",
			zap.Int("window_index", w.Index),
			zap.Error(err),
		)
		return ""
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.cfg.WindowTimeout)
	defer cancel()

	text, err := p.backend.Transcribe(ctx, payload, w.SampleRate)
	if err != nil {
		p.logger.Warn("Window transcription failed, keeping empty placeholder",
			zap.Int("window_index", w.Index),
			zap.String("backend", p.backend.Name()),
			zap.String("code", string(apperrors.CodeOf(err))),
			zap.Error(err),
		)
		return ""
	}
	return text
}

// collectLoop reassembles completions into index order and appends them
// to the transcript, emitting segment and question events as each slot
// fills.
func (p *Pipeline) collectLoop() {
	defer close(p.collectDone)

	pending := make(map[int]completion)
	next := 0

	flush := func() {
		for {
			c, ok := pending[next]
			if !ok {
				return
			}
			delete(pending, next)
			next++
			p.appendSegment(c)
		}
	}

	for c := range p.completions {
		pending[c.index] = c
		flush()
	}

	// Dispatch closed; drain stragglers in index order.
	indexes := make([]int, 0, len(pending))
	for i := range pending {
		indexes = append(indexes, i)
	}
	sort.Ints(indexes)
	for _, i := range indexes {
		p.appendSegment(pending[i])
	}
}

func (p *Pipeline) appendSegment(c completion) {
	seg := entities.Segment{
		Index: c.index,
		Start: c.start,
		End:   c.end,
		Text:  c.text,
	}

	p.mu.Lock()
	p.transcript.Append(seg)
	p.mu.Unlock()

	p.events.Publish(Event{Type: EventSegment, Segment: &seg})

	for _, q := range QuestionCandidates(c.text) {
		p.events.Publish(Event{Type: EventQuestion, Question: q})
	}
}
