package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/example/conference-hub/internal/application"
)

type requestService interface {
	SubmitFeedback(ctx context.Context, principal application.Principal, feedback application.Feedback) (application.Feedback, error)
	ListFeedback(ctx context.Context, principal application.Principal) ([]application.Feedback, error)
	SubmitAccommodationRequest(ctx context.Context, principal application.Principal, request application.AccommodationRequest) (application.AccommodationRequest, error)
	ListAccommodationRequests(ctx context.Context, principal application.Principal) ([]application.AccommodationRequest, error)
}

// RequestHandler serves the feedback and accommodation request forms.
type RequestHandler struct {
	service   requestService
	responder responder
	logger    *slog.Logger
}

// NewRequestHandler creates a submission handler.
func NewRequestHandler(service requestService, logger *slog.Logger) *RequestHandler {
	base := defaultLogger(logger)
	return &RequestHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *RequestHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "RequestHandler", operation, attrs...)
}

type feedbackRequest struct {
	Subject string `json:"subject"`
	Message string `json:"message"`
	Type    string `json:"type"`
	Rating  int    `json:"rating"`
	Email   string `json:"email"`
}

type feedbackDTO struct {
	ID        string `json:"id"`
	Subject   string `json:"subject"`
	Message   string `json:"message"`
	Type      string `json:"type"`
	Rating    int    `json:"rating"`
	Email     string `json:"email,omitempty"`
	CreatedAt string `json:"createdAt"`
}

type accommodationRequestBody struct {
	EventID         string `json:"eventId"`
	Type            string `json:"type"`
	Priority        string `json:"priority"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	ContactMethod   string `json:"contactMethod"`
	ContactInfo     string `json:"contactInfo"`
	SpecialRequests string `json:"specialRequests"`
	UrgentDetails   string `json:"urgentDetails"`
}

type accommodationDTO struct {
	ID              string `json:"id"`
	EventID         string `json:"eventId,omitempty"`
	Type            string `json:"type"`
	Priority        string `json:"priority"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	ContactMethod   string `json:"contactMethod"`
	ContactInfo     string `json:"contactInfo"`
	SpecialRequests string `json:"specialRequests,omitempty"`
	UrgentDetails   string `json:"urgentDetails,omitempty"`
	CreatedAt       string `json:"createdAt"`
}

func toFeedbackDTO(feedback application.Feedback) feedbackDTO {
	return feedbackDTO{
		ID:        feedback.ID,
		Subject:   feedback.Subject,
		Message:   feedback.Message,
		Type:      string(feedback.Type),
		Rating:    feedback.Rating,
		Email:     feedback.Email,
		CreatedAt: feedback.CreatedAt.UTC().Format(timeLayout),
	}
}

func toAccommodationDTO(request application.AccommodationRequest) accommodationDTO {
	return accommodationDTO{
		ID:              request.ID,
		EventID:         request.EventID,
		Type:            string(request.Type),
		Priority:        string(request.Priority),
		Title:           request.Title,
		Description:     request.Description,
		ContactMethod:   string(request.ContactMethod),
		ContactInfo:     request.ContactInfo,
		SpecialRequests: request.SpecialRequests,
		UrgentDetails:   request.UrgentDetails,
		CreatedAt:       request.CreatedAt.UTC().Format(timeLayout),
	}
}

// SubmitFeedback handles POST /feedback.
func (h *RequestHandler) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingSessionToken)
		return
	}

	var req feedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	feedback, err := h.service.SubmitFeedback(r.Context(), principal, application.Feedback{
		Subject: req.Subject,
		Message: req.Message,
		Type:    application.FeedbackType(req.Type),
		Rating:  req.Rating,
		Email:   req.Email,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.log(r.Context(), "SubmitFeedback", "feedback_id", feedback.ID).InfoContext(r.Context(), "feedback submitted")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toFeedbackDTO(feedback))
}

// ListFeedback handles GET /feedback.
func (h *RequestHandler) ListFeedback(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingSessionToken)
		return
	}

	listed, err := h.service.ListFeedback(r.Context(), principal)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	out := make([]feedbackDTO, 0, len(listed))
	for _, feedback := range listed {
		out = append(out, toFeedbackDTO(feedback))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, map[string]any{"feedback": out})
}

// SubmitAccommodation handles POST /accommodation.
func (h *RequestHandler) SubmitAccommodation(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingSessionToken)
		return
	}

	var req accommodationRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	request, err := h.service.SubmitAccommodationRequest(r.Context(), principal, application.AccommodationRequest{
		EventID:         req.EventID,
		Type:            application.AccommodationType(req.Type),
		Priority:        application.PriorityLevel(req.Priority),
		Title:           req.Title,
		Description:     req.Description,
		ContactMethod:   application.ContactMethod(req.ContactMethod),
		ContactInfo:     req.ContactInfo,
		SpecialRequests: req.SpecialRequests,
		UrgentDetails:   req.UrgentDetails,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.log(r.Context(), "SubmitAccommodation", "request_id", request.ID, "priority", request.Priority).
		InfoContext(r.Context(), "accommodation request submitted")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toAccommodationDTO(request))
}

// ListAccommodation handles GET /accommodation.
func (h *RequestHandler) ListAccommodation(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingSessionToken)
		return
	}

	listed, err := h.service.ListAccommodationRequests(r.Context(), principal)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	out := make([]accommodationDTO, 0, len(listed))
	for _, request := range listed {
		out = append(out, toAccommodationDTO(request))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, map[string]any{"requests": out})
}
