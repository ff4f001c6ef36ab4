package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Appointment represents a bookable time slot published by a doctor.
// Invariants: EndTime > StartTime always; a booked appointment cannot be deleted.
type Appointment struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	DoctorID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"doctor_id"`
	StartTime  time.Time  `gorm:"not null;index" json:"start_time"`
	EndTime    time.Time  `gorm:"not null" json:"end_time"`
	Booked     bool       `gorm:"not null;default:false;index" json:"booked"`
	BookedByID *uuid.UUID `gorm:"type:uuid;index" json:"booked_by,omitempty"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Doctor   DoctorProfile   `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
	BookedBy *PatientProfile `gorm:"foreignKey:BookedByID" json:"booked_by_patient,omitempty"`
}

func (Appointment) TableName() string {
	return "appointments"
}

func (a *Appointment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// Book marks the slot as taken by the given patient.
func (a *Appointment) Book(patientID uuid.UUID) {
	a.Booked = true
	a.BookedByID = &patientID
}
