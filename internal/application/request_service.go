package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// RequestStore persists feedback and accommodation submissions.
type RequestStore interface {
	CreateFeedback(ctx context.Context, feedback Feedback) (Feedback, error)
	ListFeedback(ctx context.Context) ([]Feedback, error)
	CreateAccommodationRequest(ctx context.Context, request AccommodationRequest) (AccommodationRequest, error)
	ListAccommodationRequests(ctx context.Context) ([]AccommodationRequest, error)
}

// RequestService accepts the feedback and accommodation request forms. Any
// authenticated caller may submit; listing is reserved for the organizing
// team.
type RequestService struct {
	requests    RequestStore
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewRequestService wires dependencies for submission handling.
func NewRequestService(requests RequestStore, idGenerator func() string, now func() time.Time, logger *slog.Logger) *RequestService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &RequestService{
		requests:    requests,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

// SubmitFeedback records a feedback submission.
func (s *RequestService) SubmitFeedback(ctx context.Context, principal Principal, feedback Feedback) (Feedback, error) {
	if s == nil || s.requests == nil {
		return Feedback{}, fmt.Errorf("request store not configured")
	}

	vErr := &ValidationError{}
	feedback.Subject = strings.TrimSpace(feedback.Subject)
	feedback.Message = strings.TrimSpace(feedback.Message)
	feedback.Email = strings.TrimSpace(feedback.Email)
	if feedback.Subject == "" {
		vErr.add("subject", "subject is required")
	}
	if feedback.Message == "" {
		vErr.add("message", "message is required")
	}
	switch feedback.Type {
	case "":
		feedback.Type = FeedbackGeneral
	case FeedbackGeneral, FeedbackBug, FeedbackFeature, FeedbackComplaint, FeedbackCompliment:
	default:
		vErr.add("type", "unknown feedback type")
	}
	if feedback.Rating < 0 || feedback.Rating > 5 {
		vErr.add("rating", "rating must be between 0 and 5")
	}
	if vErr.HasErrors() {
		return Feedback{}, vErr
	}

	feedback.ID = s.idGenerator()
	feedback.SubmittedBy = principal.UserID
	feedback.CreatedAt = s.now()

	persisted, err := s.requests.CreateFeedback(ctx, feedback)
	if err != nil {
		return Feedback{}, mapSessionRepoError(err)
	}

	serviceLogger(ctx, s.logger, "RequestService", "SubmitFeedback").
		InfoContext(ctx, "feedback recorded", "feedback_id", persisted.ID, "type", persisted.Type)
	return persisted, nil
}

// ListFeedback returns every feedback submission, newest first.
func (s *RequestService) ListFeedback(ctx context.Context, principal Principal) ([]Feedback, error) {
	if s == nil || s.requests == nil {
		return nil, fmt.Errorf("request store not configured")
	}
	if !principal.Grants.ManageEvents {
		return nil, ErrUnauthorized
	}
	return s.requests.ListFeedback(ctx)
}

// SubmitAccommodationRequest records an accommodation request.
func (s *RequestService) SubmitAccommodationRequest(ctx context.Context, principal Principal, request AccommodationRequest) (AccommodationRequest, error) {
	if s == nil || s.requests == nil {
		return AccommodationRequest{}, fmt.Errorf("request store not configured")
	}

	vErr := &ValidationError{}
	request.Title = strings.TrimSpace(request.Title)
	request.Description = strings.TrimSpace(request.Description)
	request.ContactInfo = strings.TrimSpace(request.ContactInfo)
	request.SpecialRequests = strings.TrimSpace(request.SpecialRequests)
	request.UrgentDetails = strings.TrimSpace(request.UrgentDetails)

	if request.Title == "" {
		vErr.add("title", "title is required")
	}
	if request.Description == "" {
		vErr.add("description", "description is required")
	}
	switch request.Type {
	case "":
		request.Type = AccommodationAccessibility
	case AccommodationAccessibility, AccommodationMedical, AccommodationReligious,
		AccommodationLanguage, AccommodationTechnical, AccommodationOther:
	default:
		vErr.add("type", "unknown accommodation type")
	}
	switch request.Priority {
	case "":
		request.Priority = PriorityNormal
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
	default:
		vErr.add("priority", "unknown priority level")
	}
	switch request.ContactMethod {
	case "":
		request.ContactMethod = ContactByEmail
	case ContactByEmail, ContactByPhone, ContactByText:
	default:
		vErr.add("contactMethod", "unknown contact method")
	}
	if request.ContactInfo == "" {
		vErr.add("contactInfo", "contact information is required")
	} else {
		switch request.ContactMethod {
		case ContactByEmail:
			if !validEmailAddress(request.ContactInfo) {
				vErr.add("contactInfo", "please enter a valid email address")
			}
		case ContactByPhone, ContactByText:
			if !validPhoneNumber(request.ContactInfo) {
				vErr.add("contactInfo", "please enter a valid phone number")
			}
		}
	}
	if request.Priority == PriorityUrgent && request.UrgentDetails == "" {
		vErr.add("urgentDetails", "please explain why this request is urgent")
	}
	if vErr.HasErrors() {
		return AccommodationRequest{}, vErr
	}

	request.ID = s.idGenerator()
	request.SubmittedBy = principal.UserID
	request.CreatedAt = s.now()

	persisted, err := s.requests.CreateAccommodationRequest(ctx, request)
	if err != nil {
		return AccommodationRequest{}, mapSessionRepoError(err)
	}

	serviceLogger(ctx, s.logger, "RequestService", "SubmitAccommodationRequest").
		InfoContext(ctx, "accommodation request recorded", "request_id", persisted.ID, "priority", persisted.Priority)
	return persisted, nil
}

// ListAccommodationRequests returns every accommodation request, newest
// first.
func (s *RequestService) ListAccommodationRequests(ctx context.Context, principal Principal) ([]AccommodationRequest, error) {
	if s == nil || s.requests == nil {
		return nil, fmt.Errorf("request store not configured")
	}
	if !principal.Grants.ManageEvents {
		return nil, ErrUnauthorized
	}
	return s.requests.ListAccommodationRequests(ctx)
}

func validEmailAddress(value string) bool {
	at := strings.Index(value, "@")
	if at <= 0 || at == len(value)-1 {
		return false
	}
	domain := value[at+1:]
	dot := strings.LastIndex(domain, ".")
	if dot <= 0 || dot == len(domain)-1 {
		return false
	}
	return !strings.ContainsAny(value, " \t")
}

func validPhoneNumber(value string) bool {
	value = strings.ReplaceAll(value, " ", "")
	value = strings.TrimPrefix(value, "+")
	digits := 0
	for _, r := range value {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '-' || r == '(' || r == ')':
		default:
			return false
		}
	}
	return digits >= 10
}
