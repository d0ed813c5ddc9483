package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/bymediadev/SoapBoxx/internal/infrastructure/audio"
	"github.com/bymediadev/SoapBoxx/internal/infrastructure/transcribe"
	"github.com/bymediadev/SoapBoxx/pkg/config"
)

// TranscriptFunc receives the transcript of a processed recording.
type TranscriptFunc func(path, text string)

// job is one recording file queued for transcription.
type job struct {
	path string
}

// Watcher monitors a recordings directory and transcribes WAV files
// dropped into it. Writers rarely produce a file in one syscall, so
// each path is debounced: the job is queued only after the file has
// gone quiet for the configured debounce period.
type Watcher struct {
	dir      string
	debounce time.Duration
	backend  transcribe.Backend
	onText   TranscriptFunc

	fsw   *fsnotify.Watcher
	queue chan job

	mu      sync.Mutex
	timers  map[string]*time.Timer
	closing bool

	workers int
	wg      sync.WaitGroup
	logger  *zap.Logger
}

// New creates a watcher over the configured recordings directory. The
// callback runs on a worker goroutine for every transcribed file.
func New(cfg *config.WatcherConfig, backend transcribe.Backend, onText TranscriptFunc, logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if onText == nil {
		onText = func(string, string) {}
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	workers := cfg.WorkerCount
	if workers <= 0 {
		workers = 1
	}
	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = 2 * time.Second
	}

	return &Watcher{
		dir:      cfg.Dir,
		debounce: debounce,
		backend:  backend,
		onText:   onText,
		fsw:      fsw,
		queue:    make(chan job, 32),
		timers:   make(map[string]*time.Timer),
		workers:  workers,
		logger:   logger,
	}, nil
}

// Run watches until the context ends. Blocks; callers run it in a
// goroutine.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()

	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return err
	}
	if err := w.fsw.Add(w.dir); err != nil {
		return err
	}
	w.logger.Info("Watching recordings directory",
		zap.String("path", w.dir),
		zap.Int("workers", w.workers),
	)

	for i := 0; i < w.workers; i++ {
		w.wg.Add(1)
		go w.worker(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			w.stopTimers()
			w.wg.Wait()
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				w.stopTimers()
				w.wg.Wait()
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				continue
			}
			w.logger.Warn("File watcher error", zap.Error(err))
		}
	}
}

// handleEvent debounces create/write events for WAV files. Every new
// event on a path resets its quiet-period timer.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
		return
	}
	name := strings.ToLower(filepath.Base(event.Name))
	if !strings.HasSuffix(name, ".wav") || strings.HasPrefix(name, ".") {
		return
	}

	path := event.Name
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.timers[path]; ok {
		timer.Reset(w.debounce)
		return
	}
	w.timers[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.timers, path)
		closing := w.closing
		w.mu.Unlock()
		if closing {
			return
		}

		select {
		case w.queue <- job{path: path}:
			w.logger.Info("Queued recording for transcription",
				zap.String("file", filepath.Base(path)))
		default:
			w.logger.Warn("Transcription queue full, skipping recording",
				zap.String("file", filepath.Base(path)))
		}
	})
}

func (w *Watcher) stopTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closing = true
	for path, timer := range w.timers {
		timer.Stop()
		delete(w.timers, path)
	}
}

func (w *Watcher) worker(ctx context.Context) {
	defer w.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-w.queue:
			w.process(ctx, j.path)
		}
	}
}

// process reads the recording and runs it through the active backend.
// Failures are logged and the file is left in place for a manual retry.
func (w *Watcher) process(ctx context.Context, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		w.logger.Warn("Failed to read recording",
			zap.String("file", filepath.Base(path)),
			zap.Error(err),
		)
		return
	}

	sampleRate, err := audio.WAVSampleRate(data)
	if err != nil {
		w.logger.Warn("Recording is not a readable WAV file",
			zap.String("file", filepath.Base(path)),
			zap.Error(err),
		)
		return
	}

	start := time.Now()
	text, err := w.backend.Transcribe(ctx, data, sampleRate)
	if err != nil {
		w.logger.Warn("Failed to transcribe recording",
			zap.String("file", filepath.Base(path)),
			zap.String("backend", w.backend.Name()),
			zap.Error(err),
		)
		return
	}

	w.logger.Info("Transcribed recording",
		zap.String("file", filepath.Base(path)),
		zap.Duration("took", time.Since(start)),
		zap.Int("chars", len(text)),
	)
	w.onText(path, text)
}
