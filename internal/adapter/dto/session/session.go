package session

import (
	"time"

	"github.com/bymediadev/SoapBoxx/internal/domain/entities"
)

// StartRequest opens a recording session. A nil DeviceID selects the
// system default input device.
type StartRequest struct {
	DeviceID *int `json:"device_id,omitempty"`
}

// Response describes a recording session's lifecycle state.
type Response struct {
	ID        string    `json:"id"`
	State     string    `json:"state"`
	StartedAt time.Time `json:"started_at"`
}

// DevicesResponse lists the currently attached capture devices.
type DevicesResponse struct {
	Devices []entities.CaptureDevice `json:"devices"`
}
