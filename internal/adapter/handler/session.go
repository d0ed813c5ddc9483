package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "github.com/bymediadev/SoapBoxx/errors"
	dto "github.com/bymediadev/SoapBoxx/internal/adapter/dto/session"
	"github.com/bymediadev/SoapBoxx/internal/usecase/transcription"
)

// Sessions exposes device enumeration and recording session control.
type Sessions struct {
	manager *transcription.Manager
	logger  *zap.Logger
}

// NewSessions creates the session handler.
func NewSessions(manager *transcription.Manager, logger *zap.Logger) *Sessions {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sessions{manager: manager, logger: logger}
}

// Devices lists capture devices, enumerated fresh on every call.
func (h *Sessions) Devices(c echo.Context) error {
	return c.JSON(http.StatusOK, dto.DevicesResponse{
		Devices: h.manager.Devices(),
	})
}

// Start opens a device and begins a capturing session.
func (h *Sessions) Start(c echo.Context) error {
	var req dto.StartRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	deviceID := -1
	if req.DeviceID != nil {
		deviceID = *req.DeviceID
	}

	p, err := h.manager.Start(deviceID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return c.JSON(http.StatusCreated, dto.Response{
		ID:        p.ID().String(),
		State:     string(p.State()),
		StartedAt: p.Transcript().StartedAt,
	})
}

// Stop ends a session and returns its finalized transcript.
func (h *Sessions) Stop(c echo.Context) error {
	id, err := h.sessionID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	transcript, err := h.manager.Stop(c.Request().Context(), id)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return c.JSON(http.StatusOK, transcript)
}

// Transcript returns the transcript so far; a snapshot for live
// sessions, the finalized transcript for stopped ones.
func (h *Sessions) Transcript(c echo.Context) error {
	id, err := h.sessionID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	p, err := h.manager.Get(id)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return c.JSON(http.StatusOK, p.Transcript())
}

func (h *Sessions) sessionID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, apperrors.ErrInvalidInput("session id must be a UUID")
	}
	return id, nil
}
