package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/example/conference-hub/internal/persistence"
	"github.com/example/conference-hub/internal/storage"
)

const (
	maxCVSize           = 10 << 20
	maxPresentationSize = 50 << 20
	maxPosterSize       = 5 << 20
)

var (
	cvExtensions           = map[string]bool{".pdf": true, ".doc": true, ".docx": true}
	presentationExtensions = map[string]bool{".pdf": true, ".ppt": true, ".pptx": true, ".doc": true, ".docx": true}
	posterExtensions       = map[string]bool{".pdf": true, ".png": true, ".jpg": true, ".jpeg": true}

	cvMIMETypes = map[string]bool{
		"application/pdf":    true,
		"application/msword": true,
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	}
	presentationMIMETypes = map[string]bool{
		"application/pdf":               true,
		"application/msword":            true,
		"application/vnd.ms-powerpoint": true,
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document":   true,
		"application/vnd.openxmlformats-officedocument.presentationml.presentation": true,
	}
	posterMIMETypes = map[string]bool{
		"application/pdf": true,
		"image/png":       true,
		"image/jpeg":      true,
	}
)

// DocumentRepository persists CV and presentation metadata.
type DocumentRepository interface {
	CreateCV(ctx context.Context, upload CVUpload) (CVUpload, error)
	GetCV(ctx context.Context, id string) (CVUpload, error)
	UpdateCV(ctx context.Context, upload CVUpload) (CVUpload, error)
	DeleteCV(ctx context.Context, id string) error
	LatestCVForFaculty(ctx context.Context, facultyID string) (CVUpload, error)
	CreatePresentation(ctx context.Context, upload Presentation) (Presentation, error)
	GetPresentation(ctx context.Context, id string) (Presentation, error)
	DeletePresentation(ctx context.Context, id string) error
	ListPresentations(ctx context.Context, sessionID string) ([]Presentation, error)
	LatestPresentationForFaculty(ctx context.Context, facultyID string) (Presentation, error)
}

// FileGateway abstracts the upload directory.
type FileGateway interface {
	Save(category, filename string, data []byte) (string, error)
	Remove(relPath string) error
	UniqueName(ownerID, purpose, originalName string) string
}

// FacultyLister enumerates faculty accounts for the documents overview.
type FacultyLister interface {
	ListFaculty(ctx context.Context) ([]User, error)
}

// DocumentService manages CV and presentation uploads: one current CV per
// faculty member, any number of presentations per session.
type DocumentService struct {
	documents   DocumentRepository
	sessions    SessionRepository
	faculty     FacultyLister
	files       FileGateway
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewDocumentService wires dependencies for document management.
func NewDocumentService(documents DocumentRepository, sessions SessionRepository, faculty FacultyLister, files FileGateway, idGenerator func() string, now func() time.Time, logger *slog.Logger) *DocumentService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &DocumentService{
		documents:   documents,
		sessions:    sessions,
		faculty:     faculty,
		files:       files,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *DocumentService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "DocumentService", operation, attrs...)
}

// UploadCV stores a faculty member's CV. A faculty member keeps at most one
// CV: uploading over an existing one replaces it, writing the new file before
// touching the old one so a failure never leaves the faculty without a CV.
func (s *DocumentService) UploadCV(ctx context.Context, principal Principal, facultyID string, file FileUpload) (CVUpload, error) {
	if s == nil {
		return CVUpload{}, fmt.Errorf("DocumentService is nil")
	}
	if !principal.ActsFor(facultyID) {
		return CVUpload{}, ErrUnauthorized
	}
	// Rows are keyed by the base faculty id so composite session identities
	// and the documents overview resolve to the same owner.
	facultyID = BaseFacultyID(facultyID)
	if err := validateUpload(file, maxCVSize, cvExtensions, cvMIMETypes, "PDF, DOC, or DOCX", "10MB"); err != nil {
		return CVUpload{}, err
	}

	logger := s.loggerWith(ctx, "UploadCV", "faculty_id", facultyID, "filename", file.Name)

	name := s.files.UniqueName(facultyID, "CV", file.Name)
	path, err := s.files.Save(storage.CategoryCV, name, file.Data)
	if err != nil {
		return CVUpload{}, fmt.Errorf("failed to store CV file: %w", err)
	}

	existing, lookupErr := s.documents.LatestCVForFaculty(ctx, facultyID)
	hasExisting := lookupErr == nil
	if lookupErr != nil && !errors.Is(lookupErr, persistence.ErrNotFound) && !errors.Is(lookupErr, ErrNotFound) {
		// Keep the new file; losing track of a stale row is recoverable.
		logger.WarnContext(ctx, "could not check for an existing CV", "error", lookupErr)
	}

	upload := CVUpload{
		ID:               s.idGenerator(),
		FacultyID:        facultyID,
		FilePath:         path,
		FileType:         strings.TrimPrefix(strings.ToLower(filepath.Ext(file.Name)), "."),
		FileSize:         file.Size,
		OriginalFilename: file.Name,
		UploadedAt:       s.now(),
	}

	var persisted CVUpload
	var persistErr error
	if hasExisting {
		upload.ID = existing.ID
		upload.Approved = false
		upload.SessionID = existing.SessionID
		persisted, persistErr = s.documents.UpdateCV(ctx, upload)
	} else {
		persisted, persistErr = s.documents.CreateCV(ctx, upload)
	}
	if persistErr != nil {
		// Roll back the new file so the old CV stays authoritative.
		if removeErr := s.files.Remove(path); removeErr != nil {
			logger.WarnContext(ctx, "could not remove orphaned CV file", "path", path, "error", removeErr)
		}
		return CVUpload{}, fmt.Errorf("failed to record CV: %w", persistErr)
	}

	if hasExisting && existing.FilePath != "" && existing.FilePath != path {
		if removeErr := s.files.Remove(existing.FilePath); removeErr != nil {
			logger.WarnContext(ctx, "could not remove replaced CV file", "path", existing.FilePath, "error", removeErr)
		}
	}

	logger.InfoContext(ctx, "CV stored", "cv_id", persisted.ID, "replaced", hasExisting)
	return persisted, nil
}

// DeleteCV removes the CV record. The file removal is best-effort.
func (s *DocumentService) DeleteCV(ctx context.Context, principal Principal, cvID string) error {
	if s == nil {
		return fmt.Errorf("DocumentService is nil")
	}

	existing, err := s.documents.GetCV(ctx, cvID)
	if err != nil {
		return mapSessionRepoError(err)
	}
	if !principal.ActsFor(existing.FacultyID) {
		return ErrUnauthorized
	}

	if err := s.documents.DeleteCV(ctx, cvID); err != nil {
		return mapSessionRepoError(err)
	}

	logger := s.loggerWith(ctx, "DeleteCV", "cv_id", cvID, "faculty_id", existing.FacultyID)
	if existing.FilePath != "" {
		if removeErr := s.files.Remove(existing.FilePath); removeErr != nil {
			logger.WarnContext(ctx, "could not remove CV file", "path", existing.FilePath, "error", removeErr)
		}
	}

	logger.InfoContext(ctx, "CV deleted")
	return nil
}

// ApproveCV marks a CV as reviewed. Only organizer-tier callers may approve.
func (s *DocumentService) ApproveCV(ctx context.Context, principal Principal, cvID string, approved bool) (CVUpload, error) {
	if s == nil {
		return CVUpload{}, fmt.Errorf("DocumentService is nil")
	}
	if !principal.Grants.ViewAllDocuments {
		return CVUpload{}, ErrUnauthorized
	}

	existing, err := s.documents.GetCV(ctx, cvID)
	if err != nil {
		return CVUpload{}, mapSessionRepoError(err)
	}

	existing.Approved = approved
	persisted, err := s.documents.UpdateCV(ctx, existing)
	if err != nil {
		return CVUpload{}, mapSessionRepoError(err)
	}

	s.loggerWith(ctx, "ApproveCV", "cv_id", cvID).InfoContext(ctx, "CV review recorded", "approved", approved)
	return persisted, nil
}

// UploadPresentations stores one or more presentation files against the
// faculty member's session. If the named session is missing the files attach
// to any current session of that faculty; absent that too, they are stored
// without a session so the upload is never lost. The first failing file
// aborts the rest of the batch; earlier files stay stored.
func (s *DocumentService) UploadPresentations(ctx context.Context, principal Principal, facultyID, sessionID string, files []FileUpload) ([]Presentation, error) {
	if s == nil {
		return nil, fmt.Errorf("DocumentService is nil")
	}
	if !principal.ActsFor(facultyID) {
		return nil, ErrUnauthorized
	}
	facultyID = BaseFacultyID(facultyID)
	if len(files) == 0 {
		vErr := &ValidationError{}
		vErr.add("files", "at least one file is required")
		return nil, vErr
	}
	for i, file := range files {
		if err := validateUpload(file, maxPresentationSize, presentationExtensions, presentationMIMETypes, "PDF, PPT, PPTX, DOC, or DOCX", "50MB"); err != nil {
			var vErr *ValidationError
			if errors.As(err, &vErr) {
				prefixed := &ValidationError{}
				for field, msg := range vErr.FieldErrors {
					prefixed.add(fmt.Sprintf("files[%d].%s", i, field), msg)
				}
				return nil, prefixed
			}
			return nil, err
		}
	}

	logger := s.loggerWith(ctx, "UploadPresentations", "faculty_id", facultyID, "file_count", len(files))

	sessionID = s.resolveSession(ctx, facultyID, sessionID, logger)

	var stored []Presentation
	for _, file := range files {
		name := s.files.UniqueName(facultyID, "PRESENTATION", file.Name)
		path, err := s.files.Save(storage.CategoryPresentations, name, file.Data)
		if err != nil {
			return stored, fmt.Errorf("failed to store presentation %q: %w", file.Name, err)
		}

		upload := Presentation{
			ID:         s.idGenerator(),
			SessionID:  sessionID,
			FacultyID:  facultyID,
			FilePath:   path,
			Title:      file.Name,
			FileSize:   file.Size,
			UploadedAt: s.now(),
		}
		persisted, err := s.documents.CreatePresentation(ctx, upload)
		if err != nil {
			if removeErr := s.files.Remove(path); removeErr != nil {
				logger.WarnContext(ctx, "could not remove orphaned presentation file", "path", path, "error", removeErr)
			}
			return stored, fmt.Errorf("failed to record presentation %q: %w", file.Name, err)
		}
		stored = append(stored, persisted)
	}

	logger.InfoContext(ctx, "presentations stored", "stored", len(stored), "session_id", sessionID)
	return stored, nil
}

// resolveSession finds the session the presentations belong to. Association
// is lenient: a stale or missing session id never blocks the upload.
func (s *DocumentService) resolveSession(ctx context.Context, facultyID, sessionID string, logger *slog.Logger) string {
	if s.sessions == nil {
		return sessionID
	}
	if sessionID != "" {
		if _, err := s.sessions.GetSession(ctx, sessionID); err == nil {
			return sessionID
		}
		logger.WarnContext(ctx, "requested session not found, falling back to faculty sessions", "session_id", sessionID)
	}
	owned, err := s.sessions.ListSessions(ctx, SessionFilter{FacultyID: facultyID})
	if err != nil || len(owned) == 0 {
		return ""
	}
	return owned[0].ID
}

// ListPresentations returns the presentations attached to a session.
func (s *DocumentService) ListPresentations(ctx context.Context, principal Principal, sessionID string) ([]Presentation, error) {
	if s == nil {
		return nil, fmt.Errorf("DocumentService is nil")
	}

	uploads, err := s.documents.ListPresentations(ctx, sessionID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	if !principal.Grants.ViewAllDocuments {
		visible := uploads[:0]
		for _, upload := range uploads {
			if principal.ActsFor(upload.FacultyID) {
				visible = append(visible, upload)
			}
		}
		uploads = visible
	}
	return uploads, nil
}

// DeletePresentation removes a presentation record. The file removal is
// best-effort.
func (s *DocumentService) DeletePresentation(ctx context.Context, principal Principal, presentationID string) error {
	if s == nil {
		return fmt.Errorf("DocumentService is nil")
	}

	existing, err := s.documents.GetPresentation(ctx, presentationID)
	if err != nil {
		return mapSessionRepoError(err)
	}
	if !principal.ActsFor(existing.FacultyID) {
		return ErrUnauthorized
	}

	if err := s.documents.DeletePresentation(ctx, presentationID); err != nil {
		return mapSessionRepoError(err)
	}

	logger := s.loggerWith(ctx, "DeletePresentation", "presentation_id", presentationID)
	if existing.FilePath != "" {
		if removeErr := s.files.Remove(existing.FilePath); removeErr != nil {
			logger.WarnContext(ctx, "could not remove presentation file", "path", existing.FilePath, "error", removeErr)
		}
	}

	logger.InfoContext(ctx, "presentation deleted")
	return nil
}

// ListFacultyDocuments builds the documents overview. Organizer-tier callers
// see every faculty member; faculty callers see only themselves.
func (s *DocumentService) ListFacultyDocuments(ctx context.Context, principal Principal) ([]FacultyDocuments, error) {
	if s == nil {
		return nil, fmt.Errorf("DocumentService is nil")
	}

	var members []User
	if principal.Grants.ViewAllDocuments {
		if s.faculty == nil {
			return nil, fmt.Errorf("faculty directory not configured")
		}
		listed, err := s.faculty.ListFaculty(ctx)
		if err != nil {
			return nil, err
		}
		members = listed
	} else if principal.Grants.RespondToInvites {
		members = []User{{ID: principal.UserID, Email: principal.Email, Role: principal.Role}}
	} else {
		return nil, ErrUnauthorized
	}

	out := make([]FacultyDocuments, 0, len(members))
	for _, member := range members {
		entry := FacultyDocuments{Faculty: member}

		baseID := BaseFacultyID(member.ID)
		if sessions, err := s.sessions.ListSessions(ctx, SessionFilter{FacultyID: baseID}); err == nil && len(sessions) > 0 {
			entry.SessionTitle = sessions[0].Title
			entry.InviteStatus = sessions[0].InviteStatus
		}

		if cv, err := s.documents.LatestCVForFaculty(ctx, baseID); err == nil {
			entry.CV = &cv
		}
		if pres, err := s.documents.LatestPresentationForFaculty(ctx, baseID); err == nil {
			entry.Presentation = &pres
		}

		out = append(out, entry)
	}
	return out, nil
}

// ValidatePoster checks the shared poster attached to a session batch.
func ValidatePoster(file FileUpload) error {
	return validateUpload(file, maxPosterSize, posterExtensions, posterMIMETypes, "PDF, PNG, or JPEG", "5MB")
}

// mimeAcceptable checks a declared content type against the allow list.
// Clients that declare nothing, or only the generic binary type, are judged
// by extension alone.
func mimeAcceptable(contentType string, allowed map[string]bool) bool {
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	if semicolon := strings.Index(contentType, ";"); semicolon >= 0 {
		contentType = strings.TrimSpace(contentType[:semicolon])
	}
	if contentType == "" || contentType == "application/octet-stream" {
		return true
	}
	return allowed[contentType]
}

func validateUpload(file FileUpload, maxSize int64, allowed, allowedMIME map[string]bool, kinds, limit string) error {
	vErr := &ValidationError{}
	if strings.TrimSpace(file.Name) == "" {
		vErr.add("file", "a file is required")
		return vErr
	}
	if !allowed[strings.ToLower(filepath.Ext(file.Name))] {
		vErr.add("file", "file must be a "+kinds+" document")
	} else if !mimeAcceptable(file.ContentType, allowedMIME) {
		vErr.add("file", "file content type must match a "+kinds+" document")
	}
	if file.Size <= 0 {
		vErr.add("file", "file is empty")
	} else if file.Size > maxSize {
		vErr.add("file", "file exceeds the "+limit+" limit")
	}
	if vErr.HasErrors() {
		return vErr
	}
	return nil
}
