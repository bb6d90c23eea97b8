package sqlite

import (
	"context"
	"fmt"

	"github.com/example/conference-hub/internal/application"
	"github.com/example/conference-hub/internal/persistence"
)

const (
	feedbackColumns      = `id, submitted_by, subject, message, type, rating, email, created_at`
	accommodationColumns = `id, event_id, submitted_by, type, priority, title, description, contact_method, contact_info, special_requests, urgent_details, created_at`
)

// RequestRepository stores feedback and accommodation submissions.
type RequestRepository struct {
	helper *QueryHelper
	retry  *RetryHelper
}

// NewRequestRepository creates a submission repository on the shared pool.
func NewRequestRepository(pool *ConnectionPool) *RequestRepository {
	return &RequestRepository{
		helper: NewQueryHelper(pool),
		retry:  NewRetryHelper(DefaultRetryConfig()),
	}
}

// CreateFeedback inserts a feedback row.
func (r *RequestRepository) CreateFeedback(ctx context.Context, feedback application.Feedback) (application.Feedback, error) {
	if feedback.ID == "" || feedback.Subject == "" || feedback.Message == "" {
		return application.Feedback{}, persistence.ErrConstraintViolation
	}

	err := r.retry.WithRetry(ctx, func() error {
		_, err := r.helper.Exec(ctx, `INSERT INTO feedback (`+feedbackColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			feedback.ID,
			feedback.SubmittedBy,
			feedback.Subject,
			feedback.Message,
			string(feedback.Type),
			feedback.Rating,
			feedback.Email,
			formatTime(feedback.CreatedAt),
		)
		return err
	})
	if err != nil {
		return application.Feedback{}, MapError(err)
	}
	return feedback, nil
}

// ListFeedback returns every feedback row, newest first.
func (r *RequestRepository) ListFeedback(ctx context.Context) ([]application.Feedback, error) {
	rows, err := r.helper.Query(ctx, `SELECT `+feedbackColumns+` FROM feedback ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, MapError(err)
	}
	defer rows.Close()

	var out []application.Feedback
	for rows.Next() {
		var feedback application.Feedback
		var createdStr string
		err := rows.Scan(
			&feedback.ID,
			&feedback.SubmittedBy,
			&feedback.Subject,
			&feedback.Message,
			&feedback.Type,
			&feedback.Rating,
			&feedback.Email,
			&createdStr,
		)
		if err != nil {
			return nil, MapError(err)
		}
		if feedback.CreatedAt, err = parseTime(createdStr); err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}
		out = append(out, feedback)
	}
	return out, rows.Err()
}

// CreateAccommodationRequest inserts an accommodation request row.
func (r *RequestRepository) CreateAccommodationRequest(ctx context.Context, request application.AccommodationRequest) (application.AccommodationRequest, error) {
	if request.ID == "" || request.Title == "" || request.Description == "" || request.ContactInfo == "" {
		return application.AccommodationRequest{}, persistence.ErrConstraintViolation
	}

	err := r.retry.WithRetry(ctx, func() error {
		_, err := r.helper.Exec(ctx, `INSERT INTO accommodation_requests (`+accommodationColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			request.ID,
			request.EventID,
			request.SubmittedBy,
			string(request.Type),
			string(request.Priority),
			request.Title,
			request.Description,
			string(request.ContactMethod),
			request.ContactInfo,
			request.SpecialRequests,
			request.UrgentDetails,
			formatTime(request.CreatedAt),
		)
		return err
	})
	if err != nil {
		return application.AccommodationRequest{}, MapError(err)
	}
	return request, nil
}

// ListAccommodationRequests returns every accommodation request, newest
// first.
func (r *RequestRepository) ListAccommodationRequests(ctx context.Context) ([]application.AccommodationRequest, error) {
	rows, err := r.helper.Query(ctx, `SELECT `+accommodationColumns+` FROM accommodation_requests ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, MapError(err)
	}
	defer rows.Close()

	var out []application.AccommodationRequest
	for rows.Next() {
		var request application.AccommodationRequest
		var createdStr string
		err := rows.Scan(
			&request.ID,
			&request.EventID,
			&request.SubmittedBy,
			&request.Type,
			&request.Priority,
			&request.Title,
			&request.Description,
			&request.ContactMethod,
			&request.ContactInfo,
			&request.SpecialRequests,
			&request.UrgentDetails,
			&createdStr,
		)
		if err != nil {
			return nil, MapError(err)
		}
		if request.CreatedAt, err = parseTime(createdStr); err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}
		out = append(out, request)
	}
	return out, rows.Err()
}
