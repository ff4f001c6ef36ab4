package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type CreateAppointmentRequest struct {
	StartTime time.Time `json:"start_time" validate:"required"` // RFC 3339
	EndTime   time.Time `json:"end_time" validate:"required"`   // RFC 3339
}

// UpdateAppointmentRequest is a whitelisted partial update. Absent fields are
// left untouched.
type UpdateAppointmentRequest struct {
	StartTime *time.Time `json:"start_time" validate:"omitempty"`
	EndTime   *time.Time `json:"end_time" validate:"omitempty"`
	Booked    *bool      `json:"booked" validate:"omitempty"`
	BookedBy  *uuid.UUID `json:"booked_by" validate:"omitempty"`
}

// ListAppointmentsQuery carries the optional list filters parsed from the
// query string. UserID is resolved to the matching doctor profile.
type ListAppointmentsQuery struct {
	FromTime *time.Time
	ToTime   *time.Time
	Booked   *bool
	DoctorID *uuid.UUID
	UserID   *uuid.UUID
}

// Response DTOs

type AppointmentResponse struct {
	ID        uuid.UUID  `json:"id"`
	DoctorID  uuid.UUID  `json:"doctor_id"`
	StartTime time.Time  `json:"start_time"`
	EndTime   time.Time  `json:"end_time"`
	Booked    bool       `json:"booked"`
	BookedBy  *uuid.UUID `json:"booked_by,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
	Total        int                   `json:"total"`
}
