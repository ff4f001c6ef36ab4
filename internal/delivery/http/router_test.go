package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	netHttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go-appointment-booking/config"
	"go-appointment-booking/internal/delivery/http/handler"
	"go-appointment-booking/internal/delivery/http/middleware"
	"go-appointment-booking/internal/domain/entity"
	"go-appointment-booking/internal/repository"
	"go-appointment-booking/internal/service"
	"go-appointment-booking/internal/usecase"
	"go-appointment-booking/pkg/jwt"
	"go-appointment-booking/pkg/validator"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type apiResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// newTestServer wires the whole stack against an in-memory database.
func newTestServer(t *testing.T) *mux.Router {
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

	log := logrus.New()
	log.SetOutput(io.Discard)

	jwtService := jwt.NewJWTService(config.JWTConfig{
		AccessSecret:  "test-access-secret",
		RefreshSecret: "test-refresh-secret",
		AccessExpiry:  15 * time.Minute,
		RefreshExpiry: 24 * time.Hour,
	})
	customValidator := validator.NewValidator()

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

	authUsecase := usecase.NewAuthUsecase(db, log, 4, userRepo, refreshTokenRepo, roleGranter, tokenIssuer, auditService, jwtService, nil)
	appointmentUsecase := usecase.NewAppointmentUsecase(db, log, appointmentRepo, doctorProfileRepo, auditService)
	doctorProfileUsecase := usecase.NewDoctorProfileUsecase(db, log, userRepo, doctorProfileRepo, appointmentRepo, roleGranter, auditService)
	patientProfileUsecase := usecase.NewPatientProfileUsecase(db, log, userRepo, patientProfileRepo, roleGranter, auditService)
	bookingUsecase := usecase.NewBookingUsecase(db, log, appointmentRepo, patientProfileRepo, auditService)

	router := NewRouter(
		handler.NewAuthHandler(authUsecase, customValidator),
		handler.NewAppointmentHandler(appointmentUsecase, customValidator),
		handler.NewDoctorHandler(doctorProfileUsecase, customValidator),
		handler.NewPatientHandler(patientProfileUsecase, customValidator),
		handler.NewBookingHandler(bookingUsecase, customValidator),
		middleware.NewAuthMiddleware(jwtService, nil),
		middleware.NewCORSMiddleware(),
	)
	return router.Setup()
}

func doJSON(t *testing.T, router *mux.Router, method, path, token string, body interface{}) (*httptest.ResponseRecorder, *apiResponse) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	resp := &apiResponse{}
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), resp); err != nil {
			t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
		}
	}
	return rec, resp
}

func register(t *testing.T, router *mux.Router, email string) {
	t.Helper()

	rec, _ := doJSON(t, router, netHttp.MethodPost, "/api/v1/users/register", "", map[string]string{
		"email":     email,
		"password":  "secret123",
		"full_name": "Test User",
	})
	if rec.Code != netHttp.StatusCreated {
		t.Fatalf("register %s: status = %d, body = %s", email, rec.Code, rec.Body.String())
	}
}

func login(t *testing.T, router *mux.Router, email string) string {
	t.Helper()

	rec, resp := doJSON(t, router, netHttp.MethodPost, "/api/v1/users/login", "", map[string]string{
		"email":    email,
		"password": "secret123",
	})
	if rec.Code != netHttp.StatusOK {
		t.Fatalf("login %s: status = %d, body = %s", email, rec.Code, rec.Body.String())
	}

	var tokens struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(resp.Data, &tokens); err != nil {
		t.Fatalf("failed to decode tokens: %v", err)
	}
	return tokens.AccessToken
}

// becomeDoctor creates a doctor profile and re-logs in so the access token
// carries the freshly granted doctor role.
func becomeDoctor(t *testing.T, router *mux.Router, email string) string {
	t.Helper()

	token := login(t, router, email)
	rec, _ := doJSON(t, router, netHttp.MethodPost, "/api/v1/doctors", token, map[string]interface{}{
		"first_name": "Alice",
		"last_name":  "Smith",
		"gender":     "F",
		"experience": 10,
		"specialty":  "Cardiology",
	})
	if rec.Code != netHttp.StatusCreated {
		t.Fatalf("create doctor profile: status = %d, body = %s", rec.Code, rec.Body.String())
	}
	return login(t, router, email)
}

func createSlot(t *testing.T, router *mux.Router, token string, start, end time.Time) string {
	t.Helper()

	rec, resp := doJSON(t, router, netHttp.MethodPost, "/api/v1/appointments", token, map[string]string{
		"start_time": start.Format(time.RFC3339),
		"end_time":   end.Format(time.RFC3339),
	})
	if rec.Code != netHttp.StatusCreated {
		t.Fatalf("create appointment: status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(resp.Data, &created); err != nil {
		t.Fatalf("failed to decode appointment: %v", err)
	}
	return created.ID
}

func TestHealthCheck(t *testing.T) {
	router := newTestServer(t)

	req := httptest.NewRequest(netHttp.MethodGet, "/api/v1/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != netHttp.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, netHttp.StatusOK)
	}
}

func TestRegisterDuplicateEmailOverHTTP(t *testing.T) {
	router := newTestServer(t)
	register(t, router, "dup@example.com")

	rec, resp := doJSON(t, router, netHttp.MethodPost, "/api/v1/users/register", "", map[string]string{
		"email":     "dup@example.com",
		"password":  "secret123",
		"full_name": "Test User",
	})
	if rec.Code != netHttp.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, netHttp.StatusBadRequest)
	}
	if resp.Message != "Account already exists for this email" {
		t.Errorf("message = %q, want %q", resp.Message, "Account already exists for this email")
	}
}

func TestAppointmentsRequireAuth(t *testing.T) {
	router := newTestServer(t)

	rec, _ := doJSON(t, router, netHttp.MethodGet, "/api/v1/appointments", "", nil)
	if rec.Code != netHttp.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, netHttp.StatusUnauthorized)
	}
}

func TestAppointmentCreateRequiresDoctorRole(t *testing.T) {
	router := newTestServer(t)
	register(t, router, "patient@example.com")
	token := login(t, router, "patient@example.com")

	start := time.Now().Add(24 * time.Hour)
	rec, _ := doJSON(t, router, netHttp.MethodPost, "/api/v1/appointments", token, map[string]string{
		"start_time": start.Format(time.RFC3339),
		"end_time":   start.Add(time.Hour).Format(time.RFC3339),
	})
	if rec.Code != netHttp.StatusForbidden {
		t.Errorf("status = %d, want %d", rec.Code, netHttp.StatusForbidden)
	}
}

func TestAppointmentLifecycleOverHTTP(t *testing.T) {
	router := newTestServer(t)
	register(t, router, "doctor@example.com")
	token := becomeDoctor(t, router, "doctor@example.com")

	start := time.Now().Add(24 * time.Hour).Truncate(time.Second)
	id := createSlot(t, router, token, start, start.Add(time.Hour))

	rec, _ := doJSON(t, router, netHttp.MethodGet, "/api/v1/appointments/"+id, token, nil)
	if rec.Code != netHttp.StatusOK {
		t.Errorf("get appointment: status = %d", rec.Code)
	}

	rec, _ = doJSON(t, router, netHttp.MethodGet, "/api/v1/appointments", token, nil)
	if rec.Code != netHttp.StatusOK {
		t.Errorf("list appointments: status = %d", rec.Code)
	}

	newEnd := start.Add(2 * time.Hour)
	rec, _ = doJSON(t, router, netHttp.MethodPut, "/api/v1/appointments/"+id, token, map[string]string{
		"end_time": newEnd.Format(time.RFC3339),
	})
	if rec.Code != netHttp.StatusNoContent {
		t.Errorf("update appointment: status = %d, want %d", rec.Code, netHttp.StatusNoContent)
	}

	rec, _ = doJSON(t, router, netHttp.MethodDelete, "/api/v1/appointments/"+id, token, nil)
	if rec.Code != netHttp.StatusNoContent {
		t.Errorf("delete appointment: status = %d, want %d", rec.Code, netHttp.StatusNoContent)
	}
}

func TestAppointmentEqualTimesOverHTTP(t *testing.T) {
	router := newTestServer(t)
	register(t, router, "doctor@example.com")
	token := becomeDoctor(t, router, "doctor@example.com")

	start := time.Now().Add(24 * time.Hour)
	rec, resp := doJSON(t, router, netHttp.MethodPost, "/api/v1/appointments", token, map[string]string{
		"start_time": start.Format(time.RFC3339),
		"end_time":   start.Format(time.RFC3339),
	})
	if rec.Code != netHttp.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, netHttp.StatusBadRequest)
	}
	want := "Appointment start time should be earlier than end time and start and end time cannot be equal."
	if resp.Message != want {
		t.Errorf("message = %q, want %q", resp.Message, want)
	}
}

func TestDeleteBookedAppointmentOverHTTP(t *testing.T) {
	router := newTestServer(t)
	register(t, router, "doctor@example.com")
	doctorToken := becomeDoctor(t, router, "doctor@example.com")

	start := time.Now().Add(24 * time.Hour).Truncate(time.Second)
	id := createSlot(t, router, doctorToken, start, start.Add(time.Hour))

	register(t, router, "patient@example.com")
	patientToken := login(t, router, "patient@example.com")

	rec, _ := doJSON(t, router, netHttp.MethodPost, "/api/v1/patients", patientToken, map[string]string{
		"date_of_birth": "1990-06-15",
		"gender":        "M",
	})
	if rec.Code != netHttp.StatusCreated {
		t.Fatalf("create patient profile: status = %d, body = %s", rec.Code, rec.Body.String())
	}

	rec, _ = doJSON(t, router, netHttp.MethodPost, "/api/v1/bookings", patientToken, map[string]string{
		"appointment_id": id,
	})
	if rec.Code != netHttp.StatusCreated {
		t.Fatalf("book appointment: status = %d, body = %s", rec.Code, rec.Body.String())
	}

	rec, resp := doJSON(t, router, netHttp.MethodDelete, "/api/v1/appointments/"+id, doctorToken, nil)
	if rec.Code != netHttp.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, netHttp.StatusBadRequest)
	}
	if resp.Message != "Delete appointment failed as it is already booked" {
		t.Errorf("message = %q, want %q", resp.Message, "Delete appointment failed as it is already booked")
	}

	// The patient sees the booking.
	rec, respList := doJSON(t, router, netHttp.MethodGet, "/api/v1/bookings", patientToken, nil)
	if rec.Code != netHttp.StatusOK {
		t.Fatalf("list bookings: status = %d", rec.Code)
	}
	var bookings struct {
		Total int `json:"total"`
	}
	if err := json.Unmarshal(respList.Data, &bookings); err != nil {
		t.Fatalf("failed to decode bookings: %v", err)
	}
	if bookings.Total != 1 {
		t.Errorf("bookings total = %d, want 1", bookings.Total)
	}
}

func TestListAppointmentsByUserIDOverHTTP(t *testing.T) {
	router := newTestServer(t)
	register(t, router, "patient@example.com")
	token := login(t, router, "patient@example.com")

	rec, resp := doJSON(t, router, netHttp.MethodGet, "/api/v1/users/me", token, nil)
	if rec.Code != netHttp.StatusOK {
		t.Fatalf("get current user: status = %d", rec.Code)
	}
	var me struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(resp.Data, &me); err != nil {
		t.Fatalf("failed to decode user: %v", err)
	}

	path := fmt.Sprintf("/api/v1/appointments?userId=%s", me.ID)
	rec, resp = doJSON(t, router, netHttp.MethodGet, path, token, nil)
	if rec.Code != netHttp.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, netHttp.StatusBadRequest)
	}
	if resp.Message != "Doctor not found for given userId." {
		t.Errorf("message = %q, want %q", resp.Message, "Doctor not found for given userId.")
	}
}

func TestBookingRequiresPatientRole(t *testing.T) {
	router := newTestServer(t)
	register(t, router, "someone@example.com")
	token := login(t, router, "someone@example.com")

	// Registration grants the patient role, so the gate passes; the usecase
	// still refuses because no patient profile exists yet.
	rec, _ := doJSON(t, router, netHttp.MethodGet, "/api/v1/bookings", token, nil)
	if rec.Code != netHttp.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, netHttp.StatusBadRequest)
	}
}

func TestRefreshTokenOverHTTP(t *testing.T) {
	router := newTestServer(t)
	register(t, router, "refresh@example.com")

	rec, resp := doJSON(t, router, netHttp.MethodPost, "/api/v1/users/login", "", map[string]string{
		"email":    "refresh@example.com",
		"password": "secret123",
	})
	if rec.Code != netHttp.StatusOK {
		t.Fatalf("login: status = %d", rec.Code)
	}
	var tokens struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.Unmarshal(resp.Data, &tokens); err != nil {
		t.Fatalf("failed to decode tokens: %v", err)
	}

	rec, _ = doJSON(t, router, netHttp.MethodPost, "/api/v1/users/refresh-token", "", map[string]string{
		"refresh_token": tokens.RefreshToken,
	})
	if rec.Code != netHttp.StatusOK {
		t.Errorf("refresh: status = %d, body = %s", rec.Code, rec.Body.String())
	}

	// The rotated-out token is rejected.
	rec, _ = doJSON(t, router, netHttp.MethodPost, "/api/v1/users/refresh-token", "", map[string]string{
		"refresh_token": tokens.RefreshToken,
	})
	if rec.Code != netHttp.StatusUnauthorized {
		t.Errorf("stale refresh: status = %d, want %d", rec.Code, netHttp.StatusUnauthorized)
	}
}
