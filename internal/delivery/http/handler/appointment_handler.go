package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go-appointment-booking/internal/delivery/dto"
	"go-appointment-booking/internal/delivery/http/middleware"
	"go-appointment-booking/internal/usecase"
	"go-appointment-booking/pkg/response"
	"go-appointment-booking/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type AppointmentHandler struct {
	appointmentUsecase usecase.AppointmentUsecase
	validator          *validator.CustomValidator
}

func NewAppointmentHandler(appointmentUsecase usecase.AppointmentUsecase, validator *validator.CustomValidator) *AppointmentHandler {
	return &AppointmentHandler{
		appointmentUsecase: appointmentUsecase,
		validator:          validator,
	}
}

// List returns appointments filtered by the optional query params
// fromTime, toTime, booked, doctorId and userId, ordered by doctor then
// slot start time.
func (h *AppointmentHandler) List(w http.ResponseWriter, r *http.Request) {
	query, err := parseListQuery(r)
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	appointments, err := h.appointmentUsecase.List(r.Context(), query)
	if err != nil {
		if err == usecase.ErrDoctorNotFoundForUser {
			response.BadRequest(w, "Doctor not found for given userId.")
			return
		}
		response.InternalServerError(w, "Failed to get appointments")
		return
	}

	response.Success(w, http.StatusOK, "Appointments retrieved successfully", appointments)
}

func (h *AppointmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	appointmentID, err := uuid.Parse(vars["id"])
	if err != nil {
		response.BadRequest(w, "Invalid appointment ID")
		return
	}

	appointment, err := h.appointmentUsecase.Get(r.Context(), appointmentID)
	if err != nil {
		if err == usecase.ErrAppointmentNotFound {
			response.NotFound(w, "Appointment not found")
			return
		}
		response.InternalServerError(w, "Failed to get appointment")
		return
	}

	response.Success(w, http.StatusOK, "Appointment retrieved successfully", appointment)
}

func (h *AppointmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	var req dto.CreateAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	appointment, err := h.appointmentUsecase.Create(r.Context(), userID, &req)
	if err != nil {
		switch err {
		case usecase.ErrStartTimeInPast:
			response.BadRequest(w, "Appointment start date is in past.")
		case usecase.ErrEndTimeInPast:
			response.BadRequest(w, "Appointment end date is in past.")
		case usecase.ErrStartNotBeforeEnd:
			response.BadRequest(w, "Appointment start time should be earlier than end time and start and end time cannot be equal.")
		case usecase.ErrNoDoctorProfile:
			response.BadRequest(w, "Cannot create appointment as failed to find doctor associated with this request.")
		default:
			response.InternalServerError(w, "Failed to create appointment")
		}
		return
	}

	response.Success(w, http.StatusCreated, "Appointment created successfully", appointment)
}

func (h *AppointmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	appointmentID, err := uuid.Parse(vars["id"])
	if err != nil {
		response.BadRequest(w, "Invalid appointment ID")
		return
	}

	var req dto.UpdateAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	if err := h.appointmentUsecase.Update(r.Context(), appointmentID, &req); err != nil {
		switch err {
		case usecase.ErrAppointmentNotFound:
			response.NotFound(w, "Appointment not found")
		case usecase.ErrStartNotBeforeEnd:
			response.BadRequest(w, "Appointment start time should be earlier than end time and start and end time cannot be equal.")
		default:
			response.InternalServerError(w, "Failed to update appointment")
		}
		return
	}

	response.NoContent(w)
}

func (h *AppointmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	appointmentID, err := uuid.Parse(vars["id"])
	if err != nil {
		response.BadRequest(w, "Invalid appointment ID")
		return
	}

	if err := h.appointmentUsecase.Delete(r.Context(), appointmentID); err != nil {
		switch err {
		case usecase.ErrAppointmentNotFound:
			response.NotFound(w, "Delete appointment failed as appointment does not exist")
		case usecase.ErrAppointmentBooked:
			response.BadRequest(w, "Delete appointment failed as it is already booked")
		default:
			response.InternalServerError(w, "Failed to delete appointment")
		}
		return
	}

	response.NoContent(w)
}

// parseListQuery parses the optional list filters from the query string.
func parseListQuery(r *http.Request) (*dto.ListAppointmentsQuery, error) {
	query := &dto.ListAppointmentsQuery{}
	params := r.URL.Query()

	if v := params.Get("fromTime"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return nil, errInvalidQueryParam("fromTime")
		}
		query.FromTime = &t
	}
	if v := params.Get("toTime"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return nil, errInvalidQueryParam("toTime")
		}
		query.ToTime = &t
	}
	if v := params.Get("booked"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, errInvalidQueryParam("booked")
		}
		query.Booked = &b
	}
	if v := params.Get("doctorId"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return nil, errInvalidQueryParam("doctorId")
		}
		query.DoctorID = &id
	}
	if v := params.Get("userId"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return nil, errInvalidQueryParam("userId")
		}
		query.UserID = &id
	}

	return query, nil
}

func errInvalidQueryParam(name string) error {
	return fmt.Errorf("Invalid query parameter: %s", name)
}
