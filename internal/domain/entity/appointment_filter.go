package entity

import (
	"time"

	"github.com/google/uuid"
)

// AppointmentFilter is a domain-level filter for querying appointments.
// Used by repository layer to avoid coupling with delivery DTOs.
type AppointmentFilter struct {
	FromTime *time.Time // slots starting at or after this instant
	ToTime   *time.Time // slots ending before this instant
	Booked   *bool      // booked status, nil means both
	DoctorID *uuid.UUID // owning doctor profile
}
