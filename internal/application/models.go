package application

import (
	"time"

	"github.com/example/conference-hub/internal/mail"
)

// SessionStatus reflects whether a session is still a draft or confirmed by
// the scheduling team.
type SessionStatus string

const (
	SessionStatusDraft     SessionStatus = "Draft"
	SessionStatusConfirmed SessionStatus = "Confirmed"
)

// InviteStatus tracks the faculty member's response to a session invitation.
type InviteStatus string

const (
	InviteStatusPending  InviteStatus = "Pending"
	InviteStatusAccepted InviteStatus = "Accepted"
	InviteStatusDeclined InviteStatus = "Declined"
)

// TravelStatus tracks the travel arrangement state for an invited faculty
// member.
type TravelStatus string

const (
	TravelStatusPending TravelStatus = "Pending"
)

// DeclineReason is the closed set of structured reasons a faculty member can
// give when declining an invitation.
type DeclineReason string

const (
	DeclineNotInterested  DeclineReason = "NotInterested"
	DeclineSuggestedTopic DeclineReason = "SuggestedTopic"
	DeclineTimeConflict   DeclineReason = "TimeConflict"
)

// Rejection carries the structured decline metadata attached to a declined
// session. Suggested times accompany TimeConflict; a topic may accompany
// SuggestedTopic. All fields beyond Reason are optional.
type Rejection struct {
	Reason         DeclineReason
	SuggestedTopic string
	SuggestedStart *time.Time
	SuggestedEnd   *time.Time
	Query          string
}

// Session represents a scheduled faculty engagement with its invite
// lifecycle.
type Session struct {
	ID           string
	Title        string
	Place        string
	RoomID       string
	Description  string
	Start        time.Time
	End          time.Time
	Status       SessionStatus
	InviteStatus InviteStatus
	TravelStatus TravelStatus
	Rejection    *Rejection
	EventID      string
	FacultyID    string
	FacultyEmail string
	PosterPath   string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Room is a static reference entity used for conflict scoping and display.
type Room struct {
	ID   string
	Name string
}

// Event scopes faculty lists and session creation.
type Event struct {
	ID                string
	Name              string
	Start             time.Time
	End               time.Time
	Location          string
	Status            string
	CreatedBy         string
	SessionCount      int
	RegistrationCount int
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// User represents an account in any of the three roles. Faculty accounts
// carry the institutional fields and an optional event association.
type User struct {
	ID          string
	Name        string
	Email       string
	Role        Role
	Institution string
	Designation string
	Department  string
	Phone       string
	EventID     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Credentials models the authentication attributes persisted for a user.
type Credentials struct {
	User         User
	PasswordHash string
	Disabled     bool
}

// AuthSession represents an authenticated login session issued to a user.
type AuthSession struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
	RevokedAt *time.Time
}

// CVUpload records one uploaded CV document.
type CVUpload struct {
	ID               string
	FacultyID        string
	FilePath         string
	FileType         string
	FileSize         int64
	OriginalFilename string
	UploadedAt       time.Time
	Approved         bool
	SessionID        string
}

// Presentation records one uploaded presentation document. SessionID is
// empty for uploads without a session association.
type Presentation struct {
	ID         string
	SessionID  string
	FacultyID  string
	FilePath   string
	Title      string
	FileSize   int64
	UploadedAt time.Time
}

// FileUpload carries one inbound file through the document flows.
type FileUpload struct {
	Name        string
	ContentType string
	Size        int64
	Data        []byte
}

// SessionInput captures the caller-provided fields of one session
// specification.
type SessionInput struct {
	Title       string
	Place       string
	RoomID      string
	Description string
	Start       time.Time
	End         time.Time
	Status      SessionStatus
}

// CreateSessionParams wraps the data for creating a single session.
// ConflictOnly requests a dry-run conflict report without persisting.
type CreateSessionParams struct {
	Principal    Principal
	FacultyID    string
	FacultyEmail string
	EventID      string
	Input        SessionInput
	PosterPath   string
	ConflictOnly bool
	Overwrite    bool
}

// BulkCreateParams wraps an ordered batch of session specifications for one
// faculty member against one event.
type BulkCreateParams struct {
	Principal    Principal
	FacultyID    string
	FacultyEmail string
	FacultyName  string
	EventID      string
	Sessions     []SessionInput
	PosterPath   string
	Overwrite    bool
}

// BulkCreateResult reports the sessions committed by a bulk operation and
// the outcome of the consolidated invitation dispatch.
type BulkCreateResult struct {
	Created    []Session
	Invitation InviteOutcome
}

// InviteOutcome is the best-effort dispatch result surfaced to callers. It
// aliases the mail package's outcome so dispatchers and consumers share one
// vocabulary.
type InviteOutcome = mail.Outcome

// UpdateSessionParams wraps the data for editing an existing session.
type UpdateSessionParams struct {
	Principal Principal
	SessionID string
	Input     SessionInput
}

// RespondParams carries a faculty member's response to an invitation.
type RespondParams struct {
	Principal      Principal
	SessionID      string
	Status         InviteStatus
	Reason         DeclineReason
	SuggestedTopic string
	SuggestedStart *time.Time
	SuggestedEnd   *time.Time
	Query          string
}

// ListSessionsParams narrows session listings.
type ListSessionsParams struct {
	Principal Principal
	EventID   string
	FacultyID string
}

// FacultyDocuments aggregates a faculty member's latest CV and presentation
// for the document review dashboards.
type FacultyDocuments struct {
	Faculty      User
	SessionTitle string
	InviteStatus InviteStatus
	CV           *CVUpload
	Presentation *Presentation
}

// FeedbackType classifies a feedback submission.
type FeedbackType string

const (
	FeedbackGeneral    FeedbackType = "general"
	FeedbackBug        FeedbackType = "bug"
	FeedbackFeature    FeedbackType = "feature"
	FeedbackComplaint  FeedbackType = "complaint"
	FeedbackCompliment FeedbackType = "compliment"
)

// Feedback is a product feedback submission, optionally carrying a star
// rating and a reply address.
type Feedback struct {
	ID          string
	SubmittedBy string
	Subject     string
	Message     string
	Type        FeedbackType
	Rating      int
	Email       string
	CreatedAt   time.Time
}

// AccommodationType classifies an accommodation request.
type AccommodationType string

const (
	AccommodationAccessibility AccommodationType = "accessibility"
	AccommodationMedical       AccommodationType = "medical"
	AccommodationReligious     AccommodationType = "religious"
	AccommodationLanguage      AccommodationType = "language"
	AccommodationTechnical     AccommodationType = "technical"
	AccommodationOther         AccommodationType = "other"
)

// PriorityLevel orders accommodation requests for review.
type PriorityLevel string

const (
	PriorityLow    PriorityLevel = "low"
	PriorityNormal PriorityLevel = "normal"
	PriorityHigh   PriorityLevel = "high"
	PriorityUrgent PriorityLevel = "urgent"
)

// ContactMethod names how the requester wants to be reached.
type ContactMethod string

const (
	ContactByEmail ContactMethod = "email"
	ContactByPhone ContactMethod = "phone"
	ContactByText  ContactMethod = "text"
)

// AccommodationRequest is a faculty member's request for event
// accommodations, reviewed by the organizing team.
type AccommodationRequest struct {
	ID              string
	EventID         string
	SubmittedBy     string
	Type            AccommodationType
	Priority        PriorityLevel
	Title           string
	Description     string
	ContactMethod   ContactMethod
	ContactInfo     string
	SpecialRequests string
	UrgentDetails   string
	CreatedAt       time.Time
}
