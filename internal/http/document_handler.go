package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/example/conference-hub/internal/application"
)

type documentService interface {
	UploadCV(ctx context.Context, principal application.Principal, facultyID string, file application.FileUpload) (application.CVUpload, error)
	DeleteCV(ctx context.Context, principal application.Principal, cvID string) error
	ApproveCV(ctx context.Context, principal application.Principal, cvID string, approved bool) (application.CVUpload, error)
	UploadPresentations(ctx context.Context, principal application.Principal, facultyID, sessionID string, files []application.FileUpload) ([]application.Presentation, error)
	ListPresentations(ctx context.Context, principal application.Principal, sessionID string) ([]application.Presentation, error)
	DeletePresentation(ctx context.Context, principal application.Principal, presentationID string) error
	ListFacultyDocuments(ctx context.Context, principal application.Principal) ([]application.FacultyDocuments, error)
}

// DocumentHandler serves CV and presentation uploads and the documents
// overview.
type DocumentHandler struct {
	service   documentService
	responder responder
	logger    *slog.Logger
}

// NewDocumentHandler creates a document handler.
func NewDocumentHandler(service documentService, logger *slog.Logger) *DocumentHandler {
	base := defaultLogger(logger)
	return &DocumentHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *DocumentHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "DocumentHandler", operation, attrs...)
}

type cvDTO struct {
	ID               string `json:"id"`
	FacultyID        string `json:"facultyId"`
	FilePath         string `json:"filePath"`
	FileType         string `json:"fileType"`
	FileSize         int64  `json:"fileSize"`
	OriginalFilename string `json:"originalFilename"`
	UploadedAt       string `json:"uploadedAt"`
	Approved         bool   `json:"isApproved"`
	SessionID        string `json:"sessionId,omitempty"`
}

type presentationDTO struct {
	ID         string `json:"id"`
	SessionID  string `json:"sessionId,omitempty"`
	FacultyID  string `json:"facultyId"`
	FilePath   string `json:"filePath"`
	Title      string `json:"title"`
	FileSize   int64  `json:"fileSize"`
	UploadedAt string `json:"uploadedAt"`
}

type facultyDocumentsDTO struct {
	FacultyID    string           `json:"facultyId"`
	Name         string           `json:"name"`
	Email        string           `json:"email"`
	Institution  string           `json:"institution,omitempty"`
	SessionTitle string           `json:"sessionTitle,omitempty"`
	InviteStatus string           `json:"inviteStatus,omitempty"`
	CV           *cvDTO           `json:"cv,omitempty"`
	Presentation *presentationDTO `json:"presentation,omitempty"`
}

func toCVDTO(upload application.CVUpload) cvDTO {
	return cvDTO{
		ID:               upload.ID,
		FacultyID:        upload.FacultyID,
		FilePath:         upload.FilePath,
		FileType:         upload.FileType,
		FileSize:         upload.FileSize,
		OriginalFilename: upload.OriginalFilename,
		UploadedAt:       upload.UploadedAt.UTC().Format(timeLayout),
		Approved:         upload.Approved,
		SessionID:        upload.SessionID,
	}
}

func toPresentationDTO(upload application.Presentation) presentationDTO {
	return presentationDTO{
		ID:         upload.ID,
		SessionID:  upload.SessionID,
		FacultyID:  upload.FacultyID,
		FilePath:   upload.FilePath,
		Title:      upload.Title,
		FileSize:   upload.FileSize,
		UploadedAt: upload.UploadedAt.UTC().Format(timeLayout),
	}
}

// UploadCV handles POST /faculty/cv and POST /faculty/cv/replace. Both
// accept multipart form data with a "file" part and a "facultyId" field;
// uploading over an existing CV replaces it either way.
func (h *DocumentHandler) UploadCV(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingSessionToken)
		return
	}

	if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	facultyID := r.FormValue("facultyId")
	if facultyID == "" {
		facultyID = principal.UserID
	}

	upload, err := readFormFile(r, "file")
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errors.New("a file is required"))
		return
	}

	logger := h.log(r.Context(), "UploadCV", "faculty_id", facultyID, "filename", upload.Name)

	stored, err := h.service.UploadCV(r.Context(), principal, facultyID, upload)
	if err != nil {
		logger.ErrorContext(r.Context(), "CV upload failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "CV stored", "cv_id", stored.ID)
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toCVDTO(stored))
}

// DeleteCV handles DELETE /faculty/cv with a JSON body naming the CV.
func (h *DocumentHandler) DeleteCV(w http.ResponseWriter, r *http.Request) {
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
		CVID string `json:"cvId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.CVID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	if err := h.service.DeleteCV(r.Context(), principal, req.CVID); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.log(r.Context(), "DeleteCV", "cv_id", req.CVID).InfoContext(r.Context(), "CV deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

// ApproveCV handles POST /faculty/cv/approve.
func (h *DocumentHandler) ApproveCV(w http.ResponseWriter, r *http.Request) {
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
		CVID     string `json:"cvId"`
		Approved bool   `json:"approved"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.CVID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	stored, err := h.service.ApproveCV(r.Context(), principal, req.CVID, req.Approved)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toCVDTO(stored))
}

// UploadPresentations handles POST /faculty/presentations/upload. The
// multipart form carries one or more "files" parts plus "facultyId" and an
// optional "sessionId".
func (h *DocumentHandler) UploadPresentations(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingSessionToken)
		return
	}

	if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	facultyID := r.FormValue("facultyId")
	if facultyID == "" {
		facultyID = principal.UserID
	}
	sessionID := r.FormValue("sessionId")

	var files []application.FileUpload
	if r.MultipartForm != nil {
		for _, header := range r.MultipartForm.File["files"] {
			upload, err := readMultipartFile(header)
			if err != nil {
				h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
				return
			}
			files = append(files, upload)
		}
	}

	logger := h.log(r.Context(), "UploadPresentations", "faculty_id", facultyID, "file_count", len(files))

	stored, err := h.service.UploadPresentations(r.Context(), principal, facultyID, sessionID, files)
	if err != nil {
		logger.ErrorContext(r.Context(), "presentation upload failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	out := make([]presentationDTO, 0, len(stored))
	for _, upload := range stored {
		out = append(out, toPresentationDTO(upload))
	}

	logger.InfoContext(r.Context(), "presentations stored", "stored", len(out))
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, map[string]any{"presentations": out})
}

// ListPresentations handles GET /faculty/presentations.
func (h *DocumentHandler) ListPresentations(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingSessionToken)
		return
	}

	uploads, err := h.service.ListPresentations(r.Context(), principal, r.URL.Query().Get("sessionId"))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	out := make([]presentationDTO, 0, len(uploads))
	for _, upload := range uploads {
		out = append(out, toPresentationDTO(upload))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, map[string]any{"presentations": out})
}

// DeletePresentation handles DELETE /faculty/presentations with a JSON body.
func (h *DocumentHandler) DeletePresentation(w http.ResponseWriter, r *http.Request) {
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
		PresentationID string `json:"presentationId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PresentationID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	if err := h.service.DeletePresentation(r.Context(), principal, req.PresentationID); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.log(r.Context(), "DeletePresentation", "presentation_id", req.PresentationID).InfoContext(r.Context(), "presentation deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

// ListFacultyDocuments handles GET /faculty/documents.
func (h *DocumentHandler) ListFacultyDocuments(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingSessionToken)
		return
	}

	entries, err := h.service.ListFacultyDocuments(r.Context(), principal)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	out := make([]facultyDocumentsDTO, 0, len(entries))
	for _, entry := range entries {
		dto := facultyDocumentsDTO{
			FacultyID:    entry.Faculty.ID,
			Name:         entry.Faculty.Name,
			Email:        entry.Faculty.Email,
			Institution:  entry.Faculty.Institution,
			SessionTitle: entry.SessionTitle,
			InviteStatus: string(entry.InviteStatus),
		}
		if entry.CV != nil {
			cv := toCVDTO(*entry.CV)
			dto.CV = &cv
		}
		if entry.Presentation != nil {
			pres := toPresentationDTO(*entry.Presentation)
			dto.Presentation = &pres
		}
		out = append(out, dto)
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, map[string]any{"faculty": out})
}

func readFormFile(r *http.Request, field string) (application.FileUpload, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return application.FileUpload{}, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return application.FileUpload{}, err
	}

	return application.FileUpload{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        int64(len(data)),
		Data:        data,
	}, nil
}

func readMultipartFile(header *multipart.FileHeader) (application.FileUpload, error) {
	file, err := header.Open()
	if err != nil {
		return application.FileUpload{}, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return application.FileUpload{}, err
	}

	return application.FileUpload{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        int64(len(data)),
		Data:        data,
	}, nil
}
