package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/example/conference-hub/internal/application"
)

type directoryService interface {
	ListRooms(ctx context.Context) ([]application.Room, error)
	CreateRoom(ctx context.Context, principal application.Principal, name string) (application.Room, error)
	ListEvents(ctx context.Context) ([]application.Event, error)
	CreateEvent(ctx context.Context, principal application.Principal, event application.Event) (application.Event, error)
	ListFaculty(ctx context.Context, principal application.Principal) ([]application.User, error)
	CreateFaculty(ctx context.Context, principal application.Principal, user application.User, password string) (application.User, error)
}

// DirectoryHandler serves rooms, events, and faculty accounts.
type DirectoryHandler struct {
	service   directoryService
	responder responder
	logger    *slog.Logger
}

// NewDirectoryHandler creates a directory handler.
func NewDirectoryHandler(service directoryService, logger *slog.Logger) *DirectoryHandler {
	base := defaultLogger(logger)
	return &DirectoryHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *DirectoryHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "DirectoryHandler", operation, attrs...)
}

type roomDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type eventDTO struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	StartDate         string `json:"startDate"`
	EndDate           string `json:"endDate"`
	Location          string `json:"location,omitempty"`
	Status            string `json:"status"`
	CreatedBy         string `json:"createdBy,omitempty"`
	SessionCount      int    `json:"sessionCount"`
	RegistrationCount int    `json:"registrationCount"`
}

type facultyDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	Institution string `json:"institution,omitempty"`
	Designation string `json:"designation,omitempty"`
	Department  string `json:"department,omitempty"`
	Phone       string `json:"phone,omitempty"`
	EventID     string `json:"eventId,omitempty"`
}

func toEventDTO(event application.Event) eventDTO {
	return eventDTO{
		ID:                event.ID,
		Name:              event.Name,
		StartDate:         event.Start.UTC().Format(timeLayout),
		EndDate:           event.End.UTC().Format(timeLayout),
		Location:          event.Location,
		Status:            event.Status,
		CreatedBy:         event.CreatedBy,
		SessionCount:      event.SessionCount,
		RegistrationCount: event.RegistrationCount,
	}
}

func toFacultyDTO(user application.User) facultyDTO {
	return facultyDTO{
		ID:          user.ID,
		Name:        user.Name,
		Email:       user.Email,
		Role:        string(user.Role),
		Institution: user.Institution,
		Designation: user.Designation,
		Department:  user.Department,
		Phone:       user.Phone,
		EventID:     user.EventID,
	}
}

// ListRooms handles GET /rooms.
func (h *DirectoryHandler) ListRooms(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	rooms, err := h.service.ListRooms(r.Context())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	out := make([]roomDTO, 0, len(rooms))
	for _, room := range rooms {
		out = append(out, roomDTO{ID: room.ID, Name: room.Name})
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, map[string]any{"rooms": out})
}

// CreateRoom handles POST /rooms.
func (h *DirectoryHandler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingSessionToken)
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	room, err := h.service.CreateRoom(r.Context(), principal, req.Name)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.log(r.Context(), "CreateRoom", "room_id", room.ID).InfoContext(r.Context(), "room created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, roomDTO{ID: room.ID, Name: room.Name})
}

// ListEvents handles GET /events.
func (h *DirectoryHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	events, err := h.service.ListEvents(r.Context())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	out := make([]eventDTO, 0, len(events))
	for _, event := range events {
		out = append(out, toEventDTO(event))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, map[string]any{"events": out})
}

// CreateEvent handles POST /events.
func (h *DirectoryHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingSessionToken)
		return
	}

	var req struct {
		Name      string `json:"name"`
		StartDate string `json:"startDate"`
		EndDate   string `json:"endDate"`
		Location  string `json:"location"`
		Status    string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	event := application.Event{
		Name:     req.Name,
		Location: req.Location,
		Status:   req.Status,
	}

	vErr := &application.ValidationError{}
	event.Start = parseEventDate(req.StartDate, "startDate", vErr)
	event.End = parseEventDate(req.EndDate, "endDate", vErr)
	if vErr.HasErrors() {
		h.responder.handleServiceError(r.Context(), w, vErr)
		return
	}

	created, err := h.service.CreateEvent(r.Context(), principal, event)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.log(r.Context(), "CreateEvent", "event_id", created.ID).InfoContext(r.Context(), "event created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toEventDTO(created))
}

// ListFaculty handles GET /faculties.
func (h *DirectoryHandler) ListFaculty(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingSessionToken)
		return
	}

	members, err := h.service.ListFaculty(r.Context(), principal)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	out := make([]facultyDTO, 0, len(members))
	for _, member := range members {
		out = append(out, toFacultyDTO(member))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, map[string]any{"faculties": out})
}

// CreateFaculty handles POST /faculties.
func (h *DirectoryHandler) CreateFaculty(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingSessionToken)
		return
	}

	var req struct {
		Name        string `json:"name"`
		Email       string `json:"email"`
		Password    string `json:"password"`
		Institution string `json:"institution"`
		Designation string `json:"designation"`
		Department  string `json:"department"`
		Phone       string `json:"phone"`
		EventID     string `json:"eventId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	user := application.User{
		Name:        req.Name,
		Email:       req.Email,
		Institution: req.Institution,
		Designation: req.Designation,
		Department:  req.Department,
		Phone:       req.Phone,
		EventID:     req.EventID,
	}

	created, err := h.service.CreateFaculty(r.Context(), principal, user, req.Password)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.log(r.Context(), "CreateFaculty", "faculty_id", created.ID).InfoContext(r.Context(), "faculty account created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toFacultyDTO(created))
}

func parseEventDate(value, field string, vErr *application.ValidationError) time.Time {
	if value == "" {
		vErr.Add(field, "is required")
		return time.Time{}
	}
	parsed, err := time.Parse(timeLayout, value)
	if err != nil {
		// Event dates are commonly sent without a time component.
		parsed, err = time.Parse("2006-01-02", value)
	}
	if err != nil {
		vErr.Add(field, "must be an RFC 3339 timestamp or a calendar date")
		return time.Time{}
	}
	return parsed.UTC()
}
