package audio

import (
	"sync"

	"github.com/gordonklaus/portaudio"
	"go.uber.org/zap"

	apperrors "github.com/bymediadev/SoapBoxx/errors"
	"github.com/bymediadev/SoapBoxx/internal/domain/entities"
)

// DeviceManager wraps the PortAudio subsystem: device enumeration and
// the registry of open capture sessions. A device can have at most one
// open session at a time; a second Open fails with DEVICE_BUSY.
type DeviceManager struct {
	mu          sync.Mutex
	open        map[int]*CaptureSession
	initialized bool
	logger      *zap.Logger
}

// NewDeviceManager initializes PortAudio and returns the manager. An
// initialization failure is not fatal: enumeration returns an empty list
// and opens fail with DEVICE_UNAVAILABLE until the subsystem recovers.
func NewDeviceManager(logger *zap.Logger) *DeviceManager {
	if logger == nil {
		logger = zap.NewNop()
	}

	m := &DeviceManager{
		open:   make(map[int]*CaptureSession),
		logger: logger,
	}

	if err := portaudio.Initialize(); err != nil {
		logger.Warn("Failed to initialize PortAudio, audio capture disabled", zap.Error(err))
	} else {
		m.initialized = true
	}
	return m
}

// Terminate closes all open sessions and shuts down PortAudio.
func (m *DeviceManager) Terminate() {
	m.mu.Lock()
	sessions := make([]*CaptureSession, 0, len(m.open))
	for _, s := range m.open {
		sessions = append(sessions, s)
	}
	m.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.initialized {
		if err := portaudio.Terminate(); err != nil {
			m.logger.Warn("PortAudio terminate failed", zap.Error(err))
		}
		m.initialized = false
	}
}

// ListDevices enumerates input devices fresh on every call; hardware can
// appear and disappear between refreshes. Never returns an error: if the
// subsystem is unavailable the list is empty and a warning is logged.
func (m *DeviceManager) ListDevices() []entities.CaptureDevice {
	m.mu.Lock()
	initialized := m.initialized
	m.mu.Unlock()

	result := make([]entities.CaptureDevice, 0)
	if !initialized {
		m.logger.Warn("Audio subsystem unavailable, no capture devices")
		return result
	}

	devices, err := portaudio.Devices()
	if err != nil {
		m.logger.Warn("Failed to enumerate audio devices", zap.Error(err))
		return result
	}

	defaultDevice, _ := portaudio.DefaultInputDevice()

	for id, device := range devices {
		if device == nil || device.MaxInputChannels <= 0 {
			continue
		}
		result = append(result, entities.CaptureDevice{
			ID:                id,
			DisplayName:       device.Name,
			ChannelCount:      device.MaxInputChannels,
			DefaultSampleRate: device.DefaultSampleRate,
			IsDefault:         defaultDevice != nil && device.Name == defaultDevice.Name,
		})
	}
	return result
}

// Open starts a capture session on the given device. Pass a negative
// deviceID for the default input device. The session is registered so a
// concurrent open on the same device fails with DEVICE_BUSY.
func (m *DeviceManager) Open(deviceID, sampleRate, channels, framesPerBuffer, ringChunks int) (*CaptureSession, error) {
	m.mu.Lock()
	if !m.initialized {
		m.mu.Unlock()
		return nil, apperrors.ErrDeviceUnavailable(deviceID, nil)
	}
	if _, busy := m.open[deviceID]; busy {
		m.mu.Unlock()
		return nil, apperrors.ErrDeviceBusy(deviceID)
	}
	m.mu.Unlock()

	info, err := m.deviceInfo(deviceID)
	if err != nil {
		return nil, err
	}

	session, err := newCaptureSession(m, deviceID, info, sampleRate, channels, framesPerBuffer, ringChunks, m.logger)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	if _, busy := m.open[deviceID]; busy {
		m.mu.Unlock()
		session.teardown()
		return nil, apperrors.ErrDeviceBusy(deviceID)
	}
	m.open[deviceID] = session
	m.mu.Unlock()

	m.logger.Info("Opened capture session",
		zap.Int("device_id", deviceID),
		zap.String("device_name", info.Name),
		zap.Int("sample_rate", sampleRate),
		zap.Int("channels", channels),
	)
	return session, nil
}

func (m *DeviceManager) deviceInfo(deviceID int) (*portaudio.DeviceInfo, error) {
	if deviceID < 0 {
		info, err := portaudio.DefaultInputDevice()
		if err != nil {
			return nil, apperrors.ErrDeviceUnavailable(deviceID, err)
		}
		return info, nil
	}

	devices, err := portaudio.Devices()
	if err != nil {
		return nil, apperrors.ErrDeviceUnavailable(deviceID, err)
	}
	if deviceID >= len(devices) {
		return nil, apperrors.ErrDeviceUnavailable(deviceID, nil)
	}
	info := devices[deviceID]
	if info.MaxInputChannels <= 0 {
		return nil, apperrors.ErrDeviceUnavailable(deviceID, nil)
	}
	return info, nil
}

// release removes a closed session from the registry.
func (m *DeviceManager) release(deviceID int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.open, deviceID)
}
