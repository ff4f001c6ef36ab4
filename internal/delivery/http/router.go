package http

import (
	"net/http"

	"go-appointment-booking/internal/delivery/http/handler"
	"go-appointment-booking/internal/delivery/http/middleware"

	"github.com/gorilla/mux"
)

type Router struct {
	router             *mux.Router
	authHandler        *handler.AuthHandler
	appointmentHandler *handler.AppointmentHandler
	doctorHandler      *handler.DoctorHandler
	patientHandler     *handler.PatientHandler
	bookingHandler     *handler.BookingHandler
	authMiddleware     *middleware.AuthMiddleware
	corsMiddleware     *middleware.CORSMiddleware
}

func NewRouter(
	authHandler *handler.AuthHandler,
	appointmentHandler *handler.AppointmentHandler,
	doctorHandler *handler.DoctorHandler,
	patientHandler *handler.PatientHandler,
	bookingHandler *handler.BookingHandler,
	authMiddleware *middleware.AuthMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
) *Router {
	return &Router{
		router:             mux.NewRouter(),
		authHandler:        authHandler,
		appointmentHandler: appointmentHandler,
		doctorHandler:      doctorHandler,
		patientHandler:     patientHandler,
		bookingHandler:     bookingHandler,
		authMiddleware:     authMiddleware,
		corsMiddleware:     corsMiddleware,
	}
}

func (r *Router) Setup() *mux.Router {
	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)

	// User routes (public)
	users := api.PathPrefix("/users").Subrouter()
	users.HandleFunc("/register", r.authHandler.Register).Methods(http.MethodPost)
	users.HandleFunc("/login", r.authHandler.Login).Methods(http.MethodPost)
	users.HandleFunc("/refresh-token", r.authHandler.RefreshToken).Methods(http.MethodPost)

	// User routes (protected)
	usersProtected := api.PathPrefix("/users").Subrouter()
	usersProtected.Use(r.authMiddleware.Authenticate)
	usersProtected.HandleFunc("/logout", r.authHandler.Logout).Methods(http.MethodPost)
	usersProtected.HandleFunc("/me", r.authHandler.GetCurrentUser).Methods(http.MethodGet)

	// Appointment reads (any authenticated user)
	appointments := api.PathPrefix("/appointments").Subrouter()
	appointments.Use(r.authMiddleware.Authenticate)
	appointments.HandleFunc("", r.appointmentHandler.List).Methods(http.MethodGet)
	appointments.HandleFunc("/{id}", r.appointmentHandler.Get).Methods(http.MethodGet)

	// Appointment writes (doctor only)
	appointmentsDoctor := api.PathPrefix("/appointments").Subrouter()
	appointmentsDoctor.Use(r.authMiddleware.Authenticate)
	appointmentsDoctor.Use(middleware.RequireDoctor)
	appointmentsDoctor.HandleFunc("", r.appointmentHandler.Create).Methods(http.MethodPost)
	appointmentsDoctor.HandleFunc("/{id}", r.appointmentHandler.Update).Methods(http.MethodPut)
	appointmentsDoctor.HandleFunc("/{id}", r.appointmentHandler.Delete).Methods(http.MethodDelete)

	// Doctor profiles
	doctors := api.PathPrefix("/doctors").Subrouter()
	doctors.Use(r.authMiddleware.Authenticate)
	doctors.HandleFunc("", r.doctorHandler.Create).Methods(http.MethodPost)
	doctors.HandleFunc("", r.doctorHandler.GetAll).Methods(http.MethodGet)
	doctors.HandleFunc("/{id}", r.doctorHandler.Get).Methods(http.MethodGet)

	doctorsOnly := api.PathPrefix("/doctors").Subrouter()
	doctorsOnly.Use(r.authMiddleware.Authenticate)
	doctorsOnly.Use(middleware.RequireDoctor)
	doctorsOnly.HandleFunc("/{id}", r.doctorHandler.Update).Methods(http.MethodPut)
	doctorsOnly.HandleFunc("/{id}", r.doctorHandler.Delete).Methods(http.MethodDelete)

	// Patient profiles
	patients := api.PathPrefix("/patients").Subrouter()
	patients.Use(r.authMiddleware.Authenticate)
	patients.HandleFunc("", r.patientHandler.Create).Methods(http.MethodPost)
	patients.HandleFunc("", r.patientHandler.GetAll).Methods(http.MethodGet)
	patients.HandleFunc("/{id}", r.patientHandler.Get).Methods(http.MethodGet)

	// Bookings (patient only)
	bookings := api.PathPrefix("/bookings").Subrouter()
	bookings.Use(r.authMiddleware.Authenticate)
	bookings.Use(middleware.RequirePatient)
	bookings.HandleFunc("", r.bookingHandler.Create).Methods(http.MethodPost)
	bookings.HandleFunc("", r.bookingHandler.List).Methods(http.MethodGet)

	// Add CORS middleware
	r.router.Use(r.corsMiddleware.Handle)

	return r.router
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}
