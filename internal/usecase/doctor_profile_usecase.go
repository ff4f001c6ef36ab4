package usecase

import (
	"context"
	"errors"

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
	ErrDoctorNotFound        = errors.New("doctor not found")
	ErrDoctorAlreadyExists   = errors.New("doctor profile already exists for this user")
	ErrDoctorHasAppointments = errors.New("doctor still has appointments")
)

type DoctorProfileUsecase interface {
	Create(ctx context.Context, callerUserID uuid.UUID, req *dto.CreateDoctorRequest) (*dto.DoctorResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.DoctorResponse, error)
	GetAll(ctx context.Context) (*dto.DoctorListResponse, error)
	Update(ctx context.Context, id uuid.UUID, req *dto.UpdateDoctorRequest) (*dto.DoctorResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type doctorProfileUsecase struct {
	db                *gorm.DB
	log               *logrus.Logger
	userRepo          repository.UserRepository
	doctorProfileRepo repository.DoctorProfileRepository
	appointmentRepo   repository.AppointmentRepository
	roleGranter       *service.RoleGranter
	auditService      service.AuditService
}

func NewDoctorProfileUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	userRepo repository.UserRepository,
	doctorProfileRepo repository.DoctorProfileRepository,
	appointmentRepo repository.AppointmentRepository,
	roleGranter *service.RoleGranter,
	auditService service.AuditService,
) DoctorProfileUsecase {
	return &doctorProfileUsecase{
		db:                db,
		log:               log,
		userRepo:          userRepo,
		doctorProfileRepo: doctorProfileRepo,
		appointmentRepo:   appointmentRepo,
		roleGranter:       roleGranter,
		auditService:      auditService,
	}
}

// Create registers a doctor profile for the calling user and grants the
// doctor role. At most one profile per user; the grant is idempotent.
func (u *doctorProfileUsecase) Create(ctx context.Context, callerUserID uuid.UUID, req *dto.CreateDoctorRequest) (*dto.DoctorResponse, error) {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	existing, err := u.doctorProfileRepo.FindByUserID(tx, callerUserID)
	if err != nil {
		u.log.Warnf("Failed to check existing doctor profile: %+v", err)
		return nil, err
	}
	if existing != nil {
		return nil, ErrDoctorAlreadyExists
	}

	user, err := u.userRepo.FindByID(tx, callerUserID)
	if err != nil {
		u.log.Warnf("Failed to find user: %+v", err)
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	profile := &entity.DoctorProfile{
		UserID:          callerUserID,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Gender:          req.Gender,
		Experience:      req.Experience,
		Specialty:       req.Specialty,
		Biography:       req.Biography,
		ConsultationFee: req.ConsultationFee,
	}

	if err := u.doctorProfileRepo.Create(tx, profile); err != nil {
		if isDuplicateKeyError(err, "user_id") {
			return nil, ErrDoctorAlreadyExists
		}
		u.log.Warnf("Failed to create doctor profile: %+v", err)
		return nil, err
	}

	if err := u.roleGranter.Grant(tx, user, entity.RoleDoctor); err != nil {
		return nil, err
	}

	if err := u.auditService.Log(tx, &callerUserID, entity.AuditActionDoctorCreate, entity.JSON{
		"doctor_id": profile.ID.String(),
	}); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return converter.DoctorProfileToResponse(profile), nil
}

func (u *doctorProfileUsecase) Get(ctx context.Context, id uuid.UUID) (*dto.DoctorResponse, error) {
	profile, err := u.doctorProfileRepo.FindByID(u.db.WithContext(ctx), id)
	if err != nil {
		u.log.Warnf("Failed to find doctor profile: %+v", err)
		return nil, err
	}
	if profile == nil {
		return nil, ErrDoctorNotFound
	}

	return converter.DoctorProfileToResponse(profile), nil
}

func (u *doctorProfileUsecase) GetAll(ctx context.Context) (*dto.DoctorListResponse, error) {
	profiles, err := u.doctorProfileRepo.FindAll(u.db.WithContext(ctx))
	if err != nil {
		u.log.Warnf("Failed to find all doctor profiles: %+v", err)
		return nil, err
	}

	doctors := converter.DoctorProfilesToResponses(profiles)

	return &dto.DoctorListResponse{
		Doctors: doctors,
		Total:   len(doctors),
	}, nil
}

func (u *doctorProfileUsecase) Update(ctx context.Context, id uuid.UUID, req *dto.UpdateDoctorRequest) (*dto.DoctorResponse, error) {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	profile, err := u.doctorProfileRepo.FindByID(tx, id)
	if err != nil {
		u.log.Warnf("Failed to find doctor profile: %+v", err)
		return nil, err
	}
	if profile == nil {
		return nil, ErrDoctorNotFound
	}

	if req.FirstName != "" {
		profile.FirstName = req.FirstName
	}
	if req.LastName != "" {
		profile.LastName = req.LastName
	}
	if req.Gender != "" {
		profile.Gender = req.Gender
	}
	if req.Experience != nil {
		profile.Experience = *req.Experience
	}
	if req.Specialty != "" {
		profile.Specialty = req.Specialty
	}
	if req.Biography != "" {
		profile.Biography = req.Biography
	}
	if req.ConsultationFee != nil {
		profile.ConsultationFee = *req.ConsultationFee
	}

	if err := u.doctorProfileRepo.Update(tx, profile); err != nil {
		u.log.Warnf("Failed to update doctor profile: %+v", err)
		return nil, err
	}

	if err := u.auditService.Log(tx, &profile.UserID, entity.AuditActionDoctorUpdate, entity.JSON{
		"doctor_id": profile.ID.String(),
	}); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return converter.DoctorProfileToResponse(profile), nil
}

// Delete removes a doctor profile. Profiles with remaining appointments are
// refused so no appointment is ever orphaned.
func (u *doctorProfileUsecase) Delete(ctx context.Context, id uuid.UUID) error {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	profile, err := u.doctorProfileRepo.FindByID(tx, id)
	if err != nil {
		u.log.Warnf("Failed to find doctor profile: %+v", err)
		return err
	}
	if profile == nil {
		return ErrDoctorNotFound
	}

	count, err := u.appointmentRepo.CountByDoctorID(tx, id)
	if err != nil {
		u.log.Warnf("Failed to count appointments for doctor %s: %+v", id, err)
		return err
	}
	if count > 0 {
		return ErrDoctorHasAppointments
	}

	if _, err := u.doctorProfileRepo.Delete(tx, id); err != nil {
		u.log.Warnf("Failed to delete doctor profile: %+v", err)
		return err
	}

	if err := u.auditService.Log(tx, &profile.UserID, entity.AuditActionDoctorDelete, entity.JSON{
		"doctor_id": id.String(),
	}); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return err
	}

	return nil
}
