package usecase

import (
	"context"
	"io"
	"testing"
	"time"

	"go-appointment-booking/config"
	"go-appointment-booking/internal/domain/entity"
	"go-appointment-booking/internal/repository"
	"go-appointment-booking/internal/service"
	"go-appointment-booking/pkg/jwt"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get database instance: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&entity.User{},
		&entity.Role{},
		&entity.DoctorProfile{},
		&entity.PatientProfile{},
		&entity.Appointment{},
		&entity.RefreshToken{},
		&entity.AuditLog{},
	); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

func newTestLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestJWTService() *jwt.JWTService {
	return jwt.NewJWTService(config.JWTConfig{
		AccessSecret:  "test-access-secret",
		RefreshSecret: "test-refresh-secret",
		AccessExpiry:  15 * time.Minute,
		RefreshExpiry: 24 * time.Hour,
	})
}

// fixture wires every usecase against a fresh in-memory database.
type fixture struct {
	db          *gorm.DB
	auth        AuthUsecase
	appointment AppointmentUsecase
	doctor      DoctorProfileUsecase
	patient     PatientProfileUsecase
	booking     BookingUsecase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := newTestDB(t)
	log := newTestLogger()
	jwtService := newTestJWTService()

	userRepo := repository.NewUserRepository()
	roleRepo := repository.NewRoleRepository()
	doctorProfileRepo := repository.NewDoctorProfileRepository()
	patientProfileRepo := repository.NewPatientProfileRepository()
	appointmentRepo := repository.NewAppointmentRepository()
	refreshTokenRepo := repository.NewRefreshTokenRepository()
	auditLogRepo := repository.NewAuditLogRepository()

	auditService := service.NewAuditService(log, auditLogRepo)
	roleGranter := service.NewRoleGranter(log, userRepo, roleRepo)
	tokenIssuer := service.NewTokenIssuer(log, jwtService, refreshTokenRepo)

	return &fixture{
		db:          db,
		auth:        NewAuthUsecase(db, log, 4, userRepo, refreshTokenRepo, roleGranter, tokenIssuer, auditService, jwtService, nil),
		appointment: NewAppointmentUsecase(db, log, appointmentRepo, doctorProfileRepo, auditService),
		doctor:      NewDoctorProfileUsecase(db, log, userRepo, doctorProfileRepo, appointmentRepo, roleGranter, auditService),
		patient:     NewPatientProfileUsecase(db, log, userRepo, patientProfileRepo, roleGranter, auditService),
		booking:     NewBookingUsecase(db, log, appointmentRepo, patientProfileRepo, auditService),
	}
}

func (f *fixture) registerUser(t *testing.T, email string) *entity.User {
	t.Helper()

	user := &entity.User{
		Email:    email,
		Password: "not-a-real-hash",
		FullName: "Test User",
	}
	if err := f.db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

func (f *fixture) createDoctor(t *testing.T, user *entity.User) *entity.DoctorProfile {
	t.Helper()

	profile := &entity.DoctorProfile{
		UserID:    user.ID,
		FirstName: "Alice",
		LastName:  "Smith",
		Gender:    "F",
		Specialty: "Cardiology",
	}
	if err := f.db.Create(profile).Error; err != nil {
		t.Fatalf("failed to create doctor profile: %v", err)
	}
	return profile
}

func (f *fixture) createPatient(t *testing.T, user *entity.User) *entity.PatientProfile {
	t.Helper()

	profile := &entity.PatientProfile{
		UserID:      user.ID,
		PhoneNumber: "555-0100",
		DateOfBirth: time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
		Gender:      "M",
		Address:     "1 Main St",
	}
	if err := f.db.Create(profile).Error; err != nil {
		t.Fatalf("failed to create patient profile: %v", err)
	}
	return profile
}

func (f *fixture) createAppointment(t *testing.T, doctor *entity.DoctorProfile, start, end time.Time) *entity.Appointment {
	t.Helper()

	appointment := &entity.Appointment{
		DoctorID:  doctor.ID,
		StartTime: start,
		EndTime:   end,
	}
	if err := f.db.Create(appointment).Error; err != nil {
		t.Fatalf("failed to create appointment: %v", err)
	}
	return appointment
}

func testContext() context.Context {
	return context.Background()
}
