package transcription

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/bymediadev/SoapBoxx/errors"
	"github.com/bymediadev/SoapBoxx/internal/domain/entities"
	"github.com/bymediadev/SoapBoxx/internal/infrastructure/audio"
	"github.com/bymediadev/SoapBoxx/internal/infrastructure/transcribe"
	"github.com/bymediadev/SoapBoxx/pkg/config"
)

// Manager owns the registry of live recording sessions. One pipeline per
// session; the device registry below it enforces one session per device.
type Manager struct {
	devices  *audio.DeviceManager
	backend  transcribe.Backend
	audioCfg config.AudioConfig
	pipeCfg  PipelineConfig

	mu       sync.Mutex
	sessions map[uuid.UUID]*Pipeline

	logger *zap.Logger
}

// NewManager wires the session registry.
func NewManager(devices *audio.DeviceManager, backend transcribe.Backend, cfg *config.Config, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		devices:  devices,
		backend:  backend,
		audioCfg: cfg.Audio,
		pipeCfg: PipelineConfig{
			SampleRate:     cfg.Audio.SampleRate,
			WindowSeconds:  cfg.Transcription.WindowSeconds,
			OverlapSeconds: cfg.Transcription.OverlapSeconds,
		},
		sessions: make(map[uuid.UUID]*Pipeline),
		logger:   logger,
	}
}

// Devices lists the currently available capture devices.
func (m *Manager) Devices() []entities.CaptureDevice {
	return m.devices.ListDevices()
}

// Start opens the device and begins a capturing session. A negative
// deviceID selects the default input device.
func (m *Manager) Start(deviceID int) (*Pipeline, error) {
	session, err := m.devices.Open(
		deviceID,
		m.audioCfg.SampleRate,
		m.audioCfg.Channels,
		m.audioCfg.FramesPerBuffer,
		m.audioCfg.RingChunks,
	)
	if err != nil {
		return nil, err
	}

	p := NewPipeline(session, m.backend, m.pipeCfg, m.logger)
	if err := p.Start(); err != nil {
		session.Close()
		return nil, err
	}

	m.mu.Lock()
	m.sessions[p.ID()] = p
	m.mu.Unlock()

	m.logger.Info("Registered recording session",
		zap.String("session_id", p.ID().String()),
		zap.Int("device_id", deviceID),
	)
	return p, nil
}

// Get looks up a live or stopped session.
func (m *Manager) Get(id uuid.UUID) (*Pipeline, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.sessions[id]
	if !ok {
		return nil, apperrors.ErrSessionNotFound(id.String())
	}
	return p, nil
}

// Stop ends a session and returns its finalized transcript. The session
// stays in the registry so its transcript remains fetchable.
func (m *Manager) Stop(ctx context.Context, id uuid.UUID) (*entities.Transcript, error) {
	p, err := m.Get(id)
	if err != nil {
		return nil, err
	}
	return p.Stop(ctx)
}

// StopAll stops every live session; used during shutdown.
func (m *Manager) StopAll(ctx context.Context) {
	m.mu.Lock()
	pipelines := make([]*Pipeline, 0, len(m.sessions))
	for _, p := range m.sessions {
		pipelines = append(pipelines, p)
	}
	m.mu.Unlock()

	for _, p := range pipelines {
		if p.State() == StateCapturing {
			if _, err := p.Stop(ctx); err != nil {
				m.logger.Warn("Failed to stop session during shutdown",
					zap.String("session_id", p.ID().String()),
					zap.Error(err),
				)
			}
		}
	}
}
