package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/example/conference-hub/internal/application"
	"github.com/example/conference-hub/internal/conflict"
	"github.com/example/conference-hub/internal/storage"
)

const timeLayout = time.RFC3339

// multipartMemoryLimit caps the in-memory portion of multipart parsing.
const multipartMemoryLimit = 8 << 20

type sessionService interface {
	CreateSession(ctx context.Context, params application.CreateSessionParams) (application.Session, []conflict.Conflict, error)
	BulkCreate(ctx context.Context, params application.BulkCreateParams) (application.BulkCreateResult, error)
	SendInvitations(ctx context.Context, principal application.Principal, ids []string) (application.InviteOutcome, error)
	UpdateSession(ctx context.Context, params application.UpdateSessionParams) (application.Session, []conflict.Conflict, error)
	Respond(ctx context.Context, params application.RespondParams) (application.Session, error)
	ListSessions(ctx context.Context, params application.ListSessionsParams) ([]application.Session, []conflict.Conflict, error)
}

type posterStore interface {
	Save(category, filename string, data []byte) (string, error)
	UniqueName(ownerID, purpose, originalName string) string
}

// SessionHandler serves session creation, listing, responses and edits.
type SessionHandler struct {
	service   sessionService
	posters   posterStore
	responder responder
	logger    *slog.Logger
}

// NewSessionHandler creates a session handler.
func NewSessionHandler(service sessionService, posters posterStore, logger *slog.Logger) *SessionHandler {
	base := defaultLogger(logger)
	return &SessionHandler{service: service, posters: posters, responder: newResponder(base), logger: base}
}

func (h *SessionHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "SessionHandler", operation, attrs...)
}

type sessionInputDTO struct {
	Title       string `json:"title"`
	Place       string `json:"place"`
	RoomID      string `json:"roomId"`
	Description string `json:"description"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
	Status      string `json:"status"`
}

type createSessionRequest struct {
	sessionInputDTO
	FacultyID          string `json:"facultyId"`
	Email              string `json:"email"`
	EventID            string `json:"eventId"`
	ConflictOnly       bool   `json:"conflictOnly"`
	OverwriteConflicts bool   `json:"overwriteConflicts"`
}

type bulkCreateRequest struct {
	FacultyID          string            `json:"facultyId"`
	FacultyName        string            `json:"facultyName"`
	Email              string            `json:"email"`
	EventID            string            `json:"eventId"`
	OverwriteConflicts bool              `json:"overwriteConflicts"`
	Sessions           []sessionInputDTO `json:"sessions"`
}

type respondRequest struct {
	SessionID          string `json:"sessionId"`
	InviteStatus       string `json:"inviteStatus"`
	RejectionReason    string `json:"rejectionReason"`
	SuggestedTopic     string `json:"suggestedTopic"`
	SuggestedTimeStart string `json:"suggestedTimeStart"`
	SuggestedTimeEnd   string `json:"suggestedTimeEnd"`
	Query              string `json:"query"`
}

type bulkInviteRequest struct {
	SessionIDs []string `json:"sessionIds"`
}

type rejectionDTO struct {
	Reason             string `json:"reason"`
	SuggestedTopic     string `json:"suggestedTopic,omitempty"`
	SuggestedTimeStart string `json:"suggestedTimeStart,omitempty"`
	SuggestedTimeEnd   string `json:"suggestedTimeEnd,omitempty"`
	Query              string `json:"query,omitempty"`
}

type sessionDTO struct {
	ID           string        `json:"id"`
	Title        string        `json:"title"`
	Place        string        `json:"place"`
	RoomID       string        `json:"roomId"`
	Description  string        `json:"description"`
	StartTime    string        `json:"startTime"`
	EndTime      string        `json:"endTime"`
	Status       string        `json:"status"`
	InviteStatus string        `json:"inviteStatus"`
	TravelStatus string        `json:"travelStatus"`
	Rejection    *rejectionDTO `json:"rejection,omitempty"`
	EventID      string        `json:"eventId,omitempty"`
	FacultyID    string        `json:"facultyId"`
	Email        string        `json:"email"`
	PosterPath   string        `json:"posterPath,omitempty"`
	CreatedAt    string        `json:"createdAt"`
	UpdatedAt    string        `json:"updatedAt"`
}

type inviteOutcomeDTO struct {
	Sent    bool   `json:"sent"`
	Warning string `json:"warning,omitempty"`
}

func toSessionDTO(session application.Session) sessionDTO {
	dto := sessionDTO{
		ID:           session.ID,
		Title:        session.Title,
		Place:        session.Place,
		RoomID:       session.RoomID,
		Description:  session.Description,
		StartTime:    session.Start.UTC().Format(timeLayout),
		EndTime:      session.End.UTC().Format(timeLayout),
		Status:       string(session.Status),
		InviteStatus: string(session.InviteStatus),
		TravelStatus: string(session.TravelStatus),
		EventID:      session.EventID,
		FacultyID:    session.FacultyID,
		Email:        session.FacultyEmail,
		PosterPath:   session.PosterPath,
		CreatedAt:    session.CreatedAt.UTC().Format(timeLayout),
		UpdatedAt:    session.UpdatedAt.UTC().Format(timeLayout),
	}
	if session.Rejection != nil {
		rejection := &rejectionDTO{
			Reason:         string(session.Rejection.Reason),
			SuggestedTopic: session.Rejection.SuggestedTopic,
			Query:          session.Rejection.Query,
		}
		if session.Rejection.SuggestedStart != nil {
			rejection.SuggestedTimeStart = session.Rejection.SuggestedStart.UTC().Format(timeLayout)
		}
		if session.Rejection.SuggestedEnd != nil {
			rejection.SuggestedTimeEnd = session.Rejection.SuggestedEnd.UTC().Format(timeLayout)
		}
		dto.Rejection = rejection
	}
	return dto
}

func toSessionDTOs(sessions []application.Session) []sessionDTO {
	out := make([]sessionDTO, 0, len(sessions))
	for _, session := range sessions {
		out = append(out, toSessionDTO(session))
	}
	return out
}

// toSessionInput converts the wire representation, collecting bad timestamps
// into the validation error rather than failing the whole request parse.
func toSessionInput(dto sessionInputDTO, prefix string, vErr *application.ValidationError) application.SessionInput {
	input := application.SessionInput{
		Title:       dto.Title,
		Place:       dto.Place,
		RoomID:      dto.RoomID,
		Description: dto.Description,
		Status:      application.SessionStatus(dto.Status),
	}
	input.Start = parseTimeField(dto.StartTime, prefix+"startTime", vErr)
	input.End = parseTimeField(dto.EndTime, prefix+"endTime", vErr)
	return input
}

func parseTimeField(value, field string, vErr *application.ValidationError) time.Time {
	if strings.TrimSpace(value) == "" {
		return time.Time{}
	}
	parsed, err := time.Parse(timeLayout, value)
	if err != nil {
		vErr.Add(field, "must be an RFC 3339 timestamp")
		return time.Time{}
	}
	return parsed
}

// Create handles POST /sessions. The body is JSON, or multipart form data
// when a poster accompanies the session.
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingSessionToken)
		return
	}

	var req createSessionRequest
	var posterPath string

	if isMultipart(r) {
		path, err := h.parseMultipart(r, &req)
		if err != nil {
			h.responder.handleServiceError(r.Context(), w, err)
			return
		}
		posterPath = path
	} else if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	vErr := &application.ValidationError{}
	input := toSessionInput(req.sessionInputDTO, "", vErr)
	if vErr.HasErrors() {
		h.responder.handleServiceError(r.Context(), w, vErr)
		return
	}

	logger := h.log(r.Context(), "Create", "faculty_id", req.FacultyID, "conflict_only", req.ConflictOnly)

	session, conflicts, err := h.service.CreateSession(r.Context(), application.CreateSessionParams{
		Principal:    principal,
		FacultyID:    req.FacultyID,
		FacultyEmail: req.Email,
		EventID:      req.EventID,
		Input:        input,
		PosterPath:   posterPath,
		ConflictOnly: req.ConflictOnly,
		Overwrite:    req.OverwriteConflicts,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "session creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	if req.ConflictOnly {
		h.responder.writeJSON(r.Context(), w, http.StatusOK, map[string]any{
			"conflicts": conflictDTOs(conflicts),
		})
		return
	}

	logger.InfoContext(r.Context(), "session created", "session_id", session.ID)
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, map[string]any{
		"session":   toSessionDTO(session),
		"conflicts": conflictDTOs(conflicts),
	})
}

// BulkCreate handles POST /sessions/bulk.
func (h *SessionHandler) BulkCreate(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingSessionToken)
		return
	}

	var req bulkCreateRequest
	var posterPath string

	if isMultipart(r) {
		path, err := h.parseMultipart(r, &req)
		if err != nil {
			h.responder.handleServiceError(r.Context(), w, err)
			return
		}
		posterPath = path
	} else if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	vErr := &application.ValidationError{}
	inputs := make([]application.SessionInput, 0, len(req.Sessions))
	for i, dto := range req.Sessions {
		inputs = append(inputs, toSessionInput(dto, "sessions["+strconv.Itoa(i)+"].", vErr))
	}
	if vErr.HasErrors() {
		h.responder.handleServiceError(r.Context(), w, vErr)
		return
	}

	logger := h.log(r.Context(), "BulkCreate", "faculty_id", req.FacultyID, "batch_size", len(inputs))

	result, err := h.service.BulkCreate(r.Context(), application.BulkCreateParams{
		Principal:    principal,
		FacultyID:    req.FacultyID,
		FacultyEmail: req.Email,
		FacultyName:  req.FacultyName,
		EventID:      req.EventID,
		Sessions:     inputs,
		PosterPath:   posterPath,
		Overwrite:    req.OverwriteConflicts,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "bulk creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "bulk creation committed", "created", len(result.Created))
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, map[string]any{
		"sessions": toSessionDTOs(result.Created),
		"invitation": inviteOutcomeDTO{
			Sent:    result.Invitation.OK,
			Warning: result.Invitation.Warning,
		},
	})
}

// BulkInvite handles POST /sessions/bulk-invite.
func (h *SessionHandler) BulkInvite(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingSessionToken)
		return
	}

	var req bulkInviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	outcome, err := h.service.SendInvitations(r.Context(), principal, req.SessionIDs)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, inviteOutcomeDTO{
		Sent:    outcome.OK,
		Warning: outcome.Warning,
	})
}

// Respond handles POST /sessions/respond.
func (h *SessionHandler) Respond(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingSessionToken)
		return
	}

	var req respondRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	vErr := &application.ValidationError{}
	params := application.RespondParams{
		Principal:      principal,
		SessionID:      req.SessionID,
		Status:         application.InviteStatus(req.InviteStatus),
		Reason:         application.DeclineReason(req.RejectionReason),
		SuggestedTopic: req.SuggestedTopic,
		Query:          req.Query,
	}
	if start := parseTimeField(req.SuggestedTimeStart, "suggestedTimeStart", vErr); !start.IsZero() {
		params.SuggestedStart = &start
	}
	if end := parseTimeField(req.SuggestedTimeEnd, "suggestedTimeEnd", vErr); !end.IsZero() {
		params.SuggestedEnd = &end
	}
	if vErr.HasErrors() {
		h.responder.handleServiceError(r.Context(), w, vErr)
		return
	}

	logger := h.log(r.Context(), "Respond", "session_id", req.SessionID, "invite_status", req.InviteStatus)

	session, err := h.service.Respond(r.Context(), params)
	if err != nil {
		logger.ErrorContext(r.Context(), "response failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "invitation answered")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toSessionDTO(session))
}

// Update handles PUT /sessions/{id}.
func (h *SessionHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingSessionToken)
		return
	}

	sessionID, ok := SessionIDFromContext(r.Context())
	if !ok || sessionID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errors.New("a session id is required"))
		return
	}

	var req sessionInputDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	vErr := &application.ValidationError{}
	input := toSessionInput(req, "", vErr)
	if vErr.HasErrors() {
		h.responder.handleServiceError(r.Context(), w, vErr)
		return
	}

	logger := h.log(r.Context(), "Update", "session_id", sessionID)

	session, warnings, err := h.service.UpdateSession(r.Context(), application.UpdateSessionParams{
		Principal: principal,
		SessionID: sessionID,
		Input:     input,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "session update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "session updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, map[string]any{
		"session":   toSessionDTO(session),
		"conflicts": conflictDTOs(warnings),
	})
}

// List handles GET /sessions.
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingSessionToken)
		return
	}

	sessions, warnings, err := h.service.ListSessions(r.Context(), application.ListSessionsParams{
		Principal: principal,
		EventID:   r.URL.Query().Get("eventId"),
		FacultyID: r.URL.Query().Get("facultyId"),
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, map[string]any{
		"sessions":  toSessionDTOs(sessions),
		"conflicts": conflictDTOs(warnings),
	})
}

// parseMultipart reads the "payload" JSON field into dst and stores an
// optional "poster" file, returning its path.
func (h *SessionHandler) parseMultipart(r *http.Request, dst any) (string, error) {
	if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
		return "", errBadRequestBody
	}

	payload := r.FormValue("payload")
	if payload == "" {
		return "", errBadRequestBody
	}
	if err := json.Unmarshal([]byte(payload), dst); err != nil {
		return "", errBadRequestBody
	}

	file, header, err := r.FormFile("poster")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", nil
		}
		return "", errBadRequestBody
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", errBadRequestBody
	}

	upload := application.FileUpload{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        int64(len(data)),
		Data:        data,
	}
	if err := application.ValidatePoster(upload); err != nil {
		return "", err
	}

	if h.posters == nil {
		return "", nil
	}
	name := h.posters.UniqueName(ownerIDFromPayload(dst), "POSTER", header.Filename)
	return h.posters.Save(storage.CategoryPosters, name, data)
}

func ownerIDFromPayload(dst any) string {
	switch req := dst.(type) {
	case *createSessionRequest:
		return req.FacultyID
	case *bulkCreateRequest:
		return req.FacultyID
	default:
		return "upload"
	}
}

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return false
	}
	return strings.HasPrefix(mediaType, "multipart/")
}

