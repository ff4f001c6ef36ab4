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
	ErrAppointmentNotFound   = errors.New("appointment not found")
	ErrAppointmentBooked     = errors.New("appointment is already booked")
	ErrStartTimeInPast       = errors.New("appointment start date is in past")
	ErrEndTimeInPast         = errors.New("appointment end date is in past")
	ErrStartNotBeforeEnd     = errors.New("appointment start time should be earlier than end time and start and end time cannot be equal")
	ErrNoDoctorProfile       = errors.New("no doctor profile associated with this user")
	ErrDoctorNotFoundForUser = errors.New("doctor not found for given userId")
)

type AppointmentUsecase interface {
	List(ctx context.Context, query *dto.ListAppointmentsQuery) (*dto.AppointmentListResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.AppointmentResponse, error)
	Create(ctx context.Context, callerUserID uuid.UUID, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error)
	Update(ctx context.Context, id uuid.UUID, req *dto.UpdateAppointmentRequest) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type appointmentUsecase struct {
	db                *gorm.DB
	log               *logrus.Logger
	appointmentRepo   repository.AppointmentRepository
	doctorProfileRepo repository.DoctorProfileRepository
	auditService      service.AuditService
	now               func() time.Time
}

func NewAppointmentUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	appointmentRepo repository.AppointmentRepository,
	doctorProfileRepo repository.DoctorProfileRepository,
	auditService service.AuditService,
) AppointmentUsecase {
	return &appointmentUsecase{
		db:                db,
		log:               log,
		appointmentRepo:   appointmentRepo,
		doctorProfileRepo: doctorProfileRepo,
		auditService:      auditService,
		now:               time.Now,
	}
}

// List returns appointments matching the optional filters, ordered by
// (doctor, slot start) ascending. A userId filter resolves to that user's
// doctor profile and fails when none exists.
func (u *appointmentUsecase) List(ctx context.Context, query *dto.ListAppointmentsQuery) (*dto.AppointmentListResponse, error) {
	filter := &entity.AppointmentFilter{
		FromTime: query.FromTime,
		ToTime:   query.ToTime,
		Booked:   query.Booked,
		DoctorID: query.DoctorID,
	}

	if query.UserID != nil {
		doctor, err := u.doctorProfileRepo.FindByUserID(u.db.WithContext(ctx), *query.UserID)
		if err != nil {
			u.log.Warnf("Failed to find doctor for user %s: %+v", *query.UserID, err)
			return nil, err
		}
		if doctor == nil {
			return nil, ErrDoctorNotFoundForUser
		}
		filter.DoctorID = &doctor.ID
	}

	appointments, err := u.appointmentRepo.FindAll(u.db.WithContext(ctx), filter)
	if err != nil {
		u.log.Warnf("Failed to find appointments: %+v", err)
		return nil, err
	}

	return &dto.AppointmentListResponse{
		Appointments: converter.AppointmentsToResponses(appointments),
		Total:        len(appointments),
	}, nil
}

func (u *appointmentUsecase) Get(ctx context.Context, id uuid.UUID) (*dto.AppointmentResponse, error) {
	appointment, err := u.appointmentRepo.FindByID(u.db.WithContext(ctx), id)
	if err != nil {
		u.log.Warnf("Failed to find appointment: %+v", err)
		return nil, err
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}

	return converter.AppointmentToResponse(appointment), nil
}

// Create publishes a new unbooked slot for the caller's doctor profile.
// Slot bounds must both lie in the future and end must be strictly after
// start; an equal pair is rejected, not just an inverted one.
func (u *appointmentUsecase) Create(ctx context.Context, callerUserID uuid.UUID, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error) {
	now := u.now()
	if !req.StartTime.After(now) {
		return nil, ErrStartTimeInPast
	}
	if !req.EndTime.After(now) {
		return nil, ErrEndTimeInPast
	}
	if !req.EndTime.After(req.StartTime) {
		return nil, ErrStartNotBeforeEnd
	}

	doctor, err := u.doctorProfileRepo.FindByUserID(u.db.WithContext(ctx), callerUserID)
	if err != nil {
		u.log.Warnf("Failed to find doctor for user %s: %+v", callerUserID, err)
		return nil, err
	}
	if doctor == nil {
		return nil, ErrNoDoctorProfile
	}

	appointment := &entity.Appointment{
		DoctorID:  doctor.ID,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Booked:    false,
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	if err := u.appointmentRepo.Create(tx, appointment); err != nil {
		u.log.Warnf("Failed to create appointment: %+v", err)
		return nil, err
	}

	if err := u.auditService.Log(tx, &callerUserID, entity.AuditActionAppointmentCreate, entity.JSON{
		"appointment_id": appointment.ID.String(),
		"doctor_id":      doctor.ID.String(),
	}); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return converter.AppointmentToResponse(appointment), nil
}

// Update applies a whitelisted partial update. Whenever either slot bound
// changes the end-after-start invariant is re-checked so an update can never
// leave a degenerate slot behind.
func (u *appointmentUsecase) Update(ctx context.Context, id uuid.UUID, req *dto.UpdateAppointmentRequest) error {
	appointment, err := u.appointmentRepo.FindByID(u.db.WithContext(ctx), id)
	if err != nil {
		u.log.Warnf("Failed to find appointment: %+v", err)
		return err
	}
	if appointment == nil {
		return ErrAppointmentNotFound
	}

	if req.StartTime != nil {
		appointment.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		appointment.EndTime = *req.EndTime
	}
	if req.StartTime != nil || req.EndTime != nil {
		if !appointment.EndTime.After(appointment.StartTime) {
			return ErrStartNotBeforeEnd
		}
	}
	if req.Booked != nil {
		appointment.Booked = *req.Booked
	}
	if req.BookedBy != nil {
		appointment.BookedByID = req.BookedBy
	}

	if err := u.appointmentRepo.Update(u.db.WithContext(ctx), appointment); err != nil {
		u.log.Warnf("Failed to update appointment: %+v", err)
		return err
	}

	return nil
}

// Delete removes an unbooked slot. A booked appointment is terminal with
// respect to deletion.
func (u *appointmentUsecase) Delete(ctx context.Context, id uuid.UUID) error {
	appointment, err := u.appointmentRepo.FindByID(u.db.WithContext(ctx), id)
	if err != nil {
		u.log.Warnf("Failed to find appointment: %+v", err)
		return err
	}
	if appointment == nil {
		return ErrAppointmentNotFound
	}

	if appointment.Booked {
		return ErrAppointmentBooked
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	if _, err := u.appointmentRepo.Delete(tx, id); err != nil {
		u.log.Warnf("Failed to delete appointment: %+v", err)
		return err
	}

	if err := u.auditService.Log(tx, nil, entity.AuditActionAppointmentDelete, entity.JSON{
		"appointment_id": id.String(),
	}); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return err
	}

	return nil
}
