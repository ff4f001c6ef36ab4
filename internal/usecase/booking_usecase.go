package usecase

import (
	"context"
	"errors"
	"time"

	"go-appointment-booking/internal/converter"
	"go-appointment-booking/internal/delivery/dto"
	"go-appointment-booking/internal/domain/entity"
	"go-appointment-booking/internal/domain/repository"
	"go-appointment-booking/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrNoPatientProfile = errors.New("no patient profile associated with this user")
	ErrSlotInPast       = errors.New("cannot book an appointment in the past")
)

type BookingUsecase interface {
	Book(ctx context.Context, callerUserID uuid.UUID, req *dto.CreateBookingRequest) (*dto.AppointmentResponse, error)
	MyBookings(ctx context.Context, callerUserID uuid.UUID) (*dto.BookingListResponse, error)
}

type bookingUsecase struct {
	db                 *gorm.DB
	log                *logrus.Logger
	appointmentRepo    repository.AppointmentRepository
	patientProfileRepo repository.PatientProfileRepository
	auditService       service.AuditService
	now                func() time.Time
}

func NewBookingUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	appointmentRepo repository.AppointmentRepository,
	patientProfileRepo repository.PatientProfileRepository,
	auditService service.AuditService,
) BookingUsecase {
	return &bookingUsecase{
		db:                 db,
		log:                log,
		appointmentRepo:    appointmentRepo,
		patientProfileRepo: patientProfileRepo,
		auditService:       auditService,
		now:                time.Now,
	}
}

// Book marks an unbooked future slot as taken by the caller's patient
// profile. Booking is one-way; there is no unbook operation.
func (u *bookingUsecase) Book(ctx context.Context, callerUserID uuid.UUID, req *dto.CreateBookingRequest) (*dto.AppointmentResponse, error) {
	patient, err := u.patientProfileRepo.FindByUserID(u.db.WithContext(ctx), callerUserID)
	if err != nil {
		u.log.Warnf("Failed to find patient for user %s: %+v", callerUserID, err)
		return nil, err
	}
	if patient == nil {
		return nil, ErrNoPatientProfile
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	appointment, err := u.appointmentRepo.FindByID(tx, req.AppointmentID)
	if err != nil {
		u.log.Warnf("Failed to find appointment: %+v", err)
		return nil, err
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}
	if appointment.Booked {
		return nil, ErrAppointmentBooked
	}
	if !appointment.StartTime.After(u.now()) {
		return nil, ErrSlotInPast
	}

	appointment.Book(patient.ID)

	if err := u.appointmentRepo.Update(tx, appointment); err != nil {
		u.log.Warnf("Failed to book appointment: %+v", err)
		return nil, err
	}

	if err := u.auditService.Log(tx, &callerUserID, entity.AuditActionBookingCreate, entity.JSON{
		"appointment_id": appointment.ID.String(),
		"patient_id":     patient.ID.String(),
	}); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return converter.AppointmentToResponse(appointment), nil
}

// MyBookings returns the appointments booked by the caller, earliest first.
func (u *bookingUsecase) MyBookings(ctx context.Context, callerUserID uuid.UUID) (*dto.BookingListResponse, error) {
	patient, err := u.patientProfileRepo.FindByUserID(u.db.WithContext(ctx), callerUserID)
	if err != nil {
		u.log.Warnf("Failed to find patient for user %s: %+v", callerUserID, err)
		return nil, err
	}
	if patient == nil {
		return nil, ErrNoPatientProfile
	}

	appointments, err := u.appointmentRepo.FindByPatientID(u.db.WithContext(ctx), patient.ID)
	if err != nil {
		u.log.Warnf("Failed to find bookings for patient %s: %+v", patient.ID, err)
		return nil, err
	}

	return &dto.BookingListResponse{
		Bookings: converter.AppointmentsToResponses(appointments),
		Total:    len(appointments),
	}, nil
}
