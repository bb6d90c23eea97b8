package sqlite

import (
	"context"
	"fmt"

	"github.com/example/conference-hub/internal/application"
	"github.com/example/conference-hub/internal/persistence"
)

const (
	cvColumns           = `id, faculty_id, file_path, file_type, file_size, original_filename, uploaded_at, approved, session_id`
	presentationColumns = `id, session_id, faculty_id, file_path, title, file_size, uploaded_at`
)

// DocumentRepository stores CV and presentation metadata.
type DocumentRepository struct {
	helper *QueryHelper
	retry  *RetryHelper
}

// NewDocumentRepository creates a document repository on the shared pool.
func NewDocumentRepository(pool *ConnectionPool) *DocumentRepository {
	return &DocumentRepository{
		helper: NewQueryHelper(pool),
		retry:  NewRetryHelper(DefaultRetryConfig()),
	}
}

// CreateCV inserts a new CV row.
func (r *DocumentRepository) CreateCV(ctx context.Context, upload application.CVUpload) (application.CVUpload, error) {
	if upload.ID == "" || upload.FacultyID == "" || upload.FilePath == "" {
		return application.CVUpload{}, persistence.ErrConstraintViolation
	}

	err := r.retry.WithRetry(ctx, func() error {
		_, err := r.helper.Exec(ctx, `INSERT INTO cv_uploads (`+cvColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			upload.ID,
			upload.FacultyID,
			upload.FilePath,
			upload.FileType,
			upload.FileSize,
			upload.OriginalFilename,
			formatTime(upload.UploadedAt),
			boolToInt(upload.Approved),
			upload.SessionID,
		)
		return err
	})
	if err != nil {
		return application.CVUpload{}, MapError(err)
	}
	return upload, nil
}

// GetCV retrieves a CV by id.
func (r *DocumentRepository) GetCV(ctx context.Context, id string) (application.CVUpload, error) {
	row := r.helper.QueryRow(ctx, `SELECT `+cvColumns+` FROM cv_uploads WHERE id = ?`, id)
	return scanCV(row)
}

// UpdateCV rewrites an existing CV row.
func (r *DocumentRepository) UpdateCV(ctx context.Context, upload application.CVUpload) (application.CVUpload, error) {
	if upload.ID == "" {
		return application.CVUpload{}, persistence.ErrConstraintViolation
	}

	err := r.retry.WithRetry(ctx, func() error {
		result, err := r.helper.Exec(ctx, `UPDATE cv_uploads SET
			file_path = ?, file_type = ?, file_size = ?, original_filename = ?,
			uploaded_at = ?, approved = ?, session_id = ?
			WHERE id = ?`,
			upload.FilePath,
			upload.FileType,
			upload.FileSize,
			upload.OriginalFilename,
			formatTime(upload.UploadedAt),
			boolToInt(upload.Approved),
			upload.SessionID,
			upload.ID,
		)
		if err != nil {
			return err
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if affected == 0 {
			return persistence.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return application.CVUpload{}, MapError(err)
	}
	return r.GetCV(ctx, upload.ID)
}

// DeleteCV removes a CV row.
func (r *DocumentRepository) DeleteCV(ctx context.Context, id string) error {
	result, err := r.helper.Exec(ctx, `DELETE FROM cv_uploads WHERE id = ?`, id)
	if err != nil {
		return MapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// LatestCVForFaculty returns the most recently uploaded CV of a faculty
// member.
func (r *DocumentRepository) LatestCVForFaculty(ctx context.Context, facultyID string) (application.CVUpload, error) {
	row := r.helper.QueryRow(ctx, `SELECT `+cvColumns+` FROM cv_uploads
		WHERE faculty_id = ? ORDER BY uploaded_at DESC, id DESC LIMIT 1`, facultyID)
	return scanCV(row)
}

// CreatePresentation inserts a new presentation row.
func (r *DocumentRepository) CreatePresentation(ctx context.Context, upload application.Presentation) (application.Presentation, error) {
	if upload.ID == "" || upload.FacultyID == "" || upload.FilePath == "" {
		return application.Presentation{}, persistence.ErrConstraintViolation
	}

	err := r.retry.WithRetry(ctx, func() error {
		_, err := r.helper.Exec(ctx, `INSERT INTO presentations (`+presentationColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			upload.ID,
			upload.SessionID,
			upload.FacultyID,
			upload.FilePath,
			upload.Title,
			upload.FileSize,
			formatTime(upload.UploadedAt),
		)
		return err
	})
	if err != nil {
		return application.Presentation{}, MapError(err)
	}
	return upload, nil
}

// GetPresentation retrieves a presentation by id.
func (r *DocumentRepository) GetPresentation(ctx context.Context, id string) (application.Presentation, error) {
	row := r.helper.QueryRow(ctx, `SELECT `+presentationColumns+` FROM presentations WHERE id = ?`, id)
	return scanPresentation(row)
}

// DeletePresentation removes a presentation row.
func (r *DocumentRepository) DeletePresentation(ctx context.Context, id string) error {
	result, err := r.helper.Exec(ctx, `DELETE FROM presentations WHERE id = ?`, id)
	if err != nil {
		return MapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// ListPresentations returns presentations for a session, or every
// presentation when sessionID is empty, newest first.
func (r *DocumentRepository) ListPresentations(ctx context.Context, sessionID string) ([]application.Presentation, error) {
	query := `SELECT ` + presentationColumns + ` FROM presentations`
	var args []any
	if sessionID != "" {
		query += ` WHERE session_id = ?`
		args = append(args, sessionID)
	}
	query += ` ORDER BY uploaded_at DESC, id DESC`

	rows, err := r.helper.Query(ctx, query, args...)
	if err != nil {
		return nil, MapError(err)
	}
	defer rows.Close()

	var uploads []application.Presentation
	for rows.Next() {
		upload, err := scanPresentation(rows)
		if err != nil {
			return nil, err
		}
		uploads = append(uploads, upload)
	}
	return uploads, rows.Err()
}

// LatestPresentationForFaculty returns the most recently uploaded
// presentation of a faculty member.
func (r *DocumentRepository) LatestPresentationForFaculty(ctx context.Context, facultyID string) (application.Presentation, error) {
	row := r.helper.QueryRow(ctx, `SELECT `+presentationColumns+` FROM presentations
		WHERE faculty_id = ? ORDER BY uploaded_at DESC, id DESC LIMIT 1`, facultyID)
	return scanPresentation(row)
}

func scanCV(row rowScanner) (application.CVUpload, error) {
	var upload application.CVUpload
	var uploadedStr string
	var approved int

	err := row.Scan(
		&upload.ID,
		&upload.FacultyID,
		&upload.FilePath,
		&upload.FileType,
		&upload.FileSize,
		&upload.OriginalFilename,
		&uploadedStr,
		&approved,
		&upload.SessionID,
	)
	if err != nil {
		return application.CVUpload{}, MapError(err)
	}

	upload.Approved = approved != 0
	if upload.UploadedAt, err = parseTime(uploadedStr); err != nil {
		return application.CVUpload{}, fmt.Errorf("failed to parse uploaded_at: %w", err)
	}
	return upload, nil
}

func scanPresentation(row rowScanner) (application.Presentation, error) {
	var upload application.Presentation
	var uploadedStr string

	err := row.Scan(
		&upload.ID,
		&upload.SessionID,
		&upload.FacultyID,
		&upload.FilePath,
		&upload.Title,
		&upload.FileSize,
		&uploadedStr,
	)
	if err != nil {
		return application.Presentation{}, MapError(err)
	}

	if upload.UploadedAt, err = parseTime(uploadedStr); err != nil {
		return application.Presentation{}, fmt.Errorf("failed to parse uploaded_at: %w", err)
	}
	return upload, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
