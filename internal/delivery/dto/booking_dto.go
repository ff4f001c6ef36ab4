package dto

import "github.com/google/uuid"

// Request DTOs

type CreateBookingRequest struct {
	AppointmentID uuid.UUID `json:"appointment_id" validate:"required"`
}

// Response DTOs

type BookingListResponse struct {
	Bookings []AppointmentResponse `json:"bookings"`
	Total    int                   `json:"total"`
}
