package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request DTOs

type CreateDoctorRequest struct {
	FirstName       string          `json:"first_name" validate:"required,min=2"`
	LastName        string          `json:"last_name" validate:"required,min=2"`
	Gender          string          `json:"gender" validate:"required,oneof=M F"`
	Experience      int             `json:"experience" validate:"gte=0"`
	Specialty       string          `json:"specialty" validate:"required"`
	Biography       string          `json:"biography" validate:"omitempty"`
	ConsultationFee decimal.Decimal `json:"consultation_fee" validate:"omitempty"`
}

type UpdateDoctorRequest struct {
	FirstName       string           `json:"first_name" validate:"omitempty,min=2"`
	LastName        string           `json:"last_name" validate:"omitempty,min=2"`
	Gender          string           `json:"gender" validate:"omitempty,oneof=M F"`
	Experience      *int             `json:"experience" validate:"omitempty,gte=0"`
	Specialty       string           `json:"specialty" validate:"omitempty"`
	Biography       string           `json:"biography" validate:"omitempty"`
	ConsultationFee *decimal.Decimal `json:"consultation_fee" validate:"omitempty"`
}

// Response DTOs

type DoctorResponse struct {
	ID              uuid.UUID       `json:"id"`
	UserID          uuid.UUID       `json:"user_id"`
	FirstName       string          `json:"first_name"`
	LastName        string          `json:"last_name"`
	Gender          string          `json:"gender"`
	Experience      int             `json:"experience"`
	Specialty       string          `json:"specialty"`
	Biography       string          `json:"biography,omitempty"`
	ConsultationFee decimal.Decimal `json:"consultation_fee"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

type DoctorListResponse struct {
	Doctors []DoctorResponse `json:"doctors"`
	Total   int              `json:"total"`
}
