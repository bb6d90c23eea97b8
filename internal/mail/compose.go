package mail

import (
	"fmt"
	"html/template"
	"net/url"
	"strings"
	"time"
)

// SessionSummary carries the session fields rendered in notification emails.
type SessionSummary struct {
	Title       string
	Place       string
	RoomName    string
	Description string
	Start       time.Time
	End         time.Time
}

// Invitation composes the single consolidated email covering every session
// created for one faculty member in a bulk operation.
type Invitation struct {
	FacultyName string
	Email       string
	Sessions    []SessionSummary
	BaseURL     string
}

// UpdateNotice composes the distinct "session updated" email asking the
// faculty member to reconfirm availability.
type UpdateNotice struct {
	FacultyName string
	Email       string
	RoomName    string
	Session     SessionSummary
	BaseURL     string
}

var invitationHTML = template.Must(template.New("invitation").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="UTF-8"/><title>Faculty Invitation</title></head>
<body style="font-family: Arial, sans-serif; color:#333; max-width:600px; margin:0 auto; padding:20px;">
  <div style="background:#fff; padding:30px; border:1px solid #ddd; border-radius:8px;">
    <h1 style="color:#764ba2; text-align:center;">Faculty Invitation</h1>
    <p>Dear <strong>{{.FacultyName}}</strong>,</p>
    <p>Greetings from the Scientific Committee!</p>
    <p>It gives us immense pleasure to invite you as a distinguished faculty member.</p>
    <p>Your proposed faculty role{{if .Plural}}s are{{else}} is{{end}} outlined below:</p>
    <table style="width:100%; border-collapse:collapse; margin:20px 0;">
      <thead style="background:#efefef;">
        <tr>
          <th style="text-align:left; padding:12px; border-bottom:1px solid #ddd;">Title</th>
          <th style="text-align:left; padding:12px; border-bottom:1px solid #ddd;">Start</th>
          <th style="text-align:left; padding:12px; border-bottom:1px solid #ddd;">End</th>
          <th style="text-align:left; padding:12px; border-bottom:1px solid #ddd;">Location</th>
          <th style="text-align:left; padding:12px; border-bottom:1px solid #ddd;">Description</th>
        </tr>
      </thead>
      <tbody>
        {{range .Rows}}<tr style="border-bottom:1px solid #eaeaea;">
          <td style="padding:12px;">{{.Title}}</td>
          <td style="padding:12px;">{{.Start}}</td>
          <td style="padding:12px;">{{.End}}</td>
          <td style="padding:12px;">{{.Location}}</td>
          <td style="padding:12px;">{{.Description}}</td>
        </tr>{{end}}
      </tbody>
    </table>
    <p><strong>Please confirm your acceptance by clicking Accept or Decline on the faculty dashboard.</strong></p>
    <p style="text-align:center; margin:30px 0;">
      <a href="{{.LoginURL}}" style="background:#764ba2; color:#fff; padding:15px 25px; border-radius:25px; text-decoration:none; font-weight:bold;">Access Faculty Portal</a>
    </p>
    <p>Warm regards,<br/>Scientific Committee</p>
    <p style="font-size:12px; color:#666; text-align:center;">If you have questions, contact your event coordinator. This message was sent automatically.</p>
  </div>
</body>
</html>
`))

var updateHTML = template.Must(template.New("update").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="UTF-8"/><title>Session Updated</title></head>
<body style="font-family: Arial, sans-serif; color:#333; max-width:600px; margin:0 auto; padding:20px;">
  <div style="background:#fff; padding:30px; border:1px solid #ddd; border-radius:8px;">
    <h1 style="color:#ff6b35; text-align:center;">Session Updated</h1>
    <p>Dear <strong>{{.FacultyName}}</strong>,</p>
    <p>Your session has been updated with new details:</p>
    <table style="width:100%; border-collapse:collapse; margin:20px 0;">
      <tr><td style="padding:12px; font-weight:bold;">Title:</td><td style="padding:12px;">{{.Title}}</td></tr>
      <tr><td style="padding:12px; font-weight:bold;">Start Time:</td><td style="padding:12px;">{{.Start}}</td></tr>
      <tr><td style="padding:12px; font-weight:bold;">End Time:</td><td style="padding:12px;">{{.End}}</td></tr>
      <tr><td style="padding:12px; font-weight:bold;">Location:</td><td style="padding:12px;">{{.Location}}</td></tr>
      <tr><td style="padding:12px; font-weight:bold;">Description:</td><td style="padding:12px;">{{.Description}}</td></tr>
    </table>
    <p><strong>Please confirm your availability again as the schedule has changed.</strong></p>
    <p style="text-align:center; margin:30px 0;">
      <a href="{{.LoginURL}}" style="background:#ff6b35; color:#fff; padding:15px 25px; border-radius:25px; text-decoration:none; font-weight:bold;">Confirm Availability</a>
    </p>
    <p>Warm regards,<br/>Scientific Committee</p>
  </div>
</body>
</html>
`))

type invitationRow struct {
	Title       string
	Start       string
	End         string
	Location    string
	Description string
}

type invitationView struct {
	FacultyName string
	Plural      bool
	Rows        []invitationRow
	LoginURL    string
}

type updateView struct {
	FacultyName string
	Title       string
	Start       string
	End         string
	Location    string
	Description string
	LoginURL    string
}

// Message renders the invitation. Missing sessions, faculty name, or email
// short-circuit with an error and no message.
func (i Invitation) Message() (Message, error) {
	if len(i.Sessions) == 0 || strings.TrimSpace(i.FacultyName) == "" || strings.TrimSpace(i.Email) == "" {
		return Message{}, fmt.Errorf("mail: invitation requires sessions, faculty name and email")
	}

	view := invitationView{
		FacultyName: i.FacultyName,
		Plural:      len(i.Sessions) > 1,
		LoginURL:    loginURL(i.BaseURL, i.Email),
	}
	for _, s := range i.Sessions {
		view.Rows = append(view.Rows, invitationRow{
			Title:       safe(s.Title),
			Start:       formatStamp(s.Start),
			End:         formatStamp(s.End),
			Location:    location(s),
			Description: safe(s.Description),
		})
	}

	var html strings.Builder
	if err := invitationHTML.Execute(&html, view); err != nil {
		return Message{}, fmt.Errorf("mail: render invitation: %w", err)
	}

	var text strings.Builder
	fmt.Fprintf(&text, "Dear %s,\n\n", i.FacultyName)
	text.WriteString("Greetings from the Scientific Committee!\n\n")
	text.WriteString("It gives us immense pleasure to invite you as a distinguished faculty member.\n\n")
	if view.Plural {
		text.WriteString("Your proposed faculty roles are outlined below:\n\n")
	} else {
		text.WriteString("Your proposed faculty role is outlined below:\n\n")
	}
	for _, row := range view.Rows {
		fmt.Fprintf(&text, "Session: %s\nStart: %s\nEnd: %s\nLocation: %s\nDescription: %s\n\n",
			row.Title, row.Start, row.End, row.Location, row.Description)
	}
	text.WriteString("Please confirm your acceptance by clicking Accept or Decline.\n")
	fmt.Fprintf(&text, "Login here: %s\n\nWarm regards,\nScientific Committee\n", view.LoginURL)

	return Message{
		To:      i.Email,
		Subject: "Faculty Invitation",
		Text:    text.String(),
		HTML:    html.String(),
	}, nil
}

// Message renders the update notice. A missing session title, faculty name,
// or email short-circuits with an error and no message.
func (u UpdateNotice) Message() (Message, error) {
	if strings.TrimSpace(u.FacultyName) == "" || strings.TrimSpace(u.Email) == "" {
		return Message{}, fmt.Errorf("mail: update notice requires faculty name and email")
	}

	session := u.Session
	view := updateView{
		FacultyName: u.FacultyName,
		Title:       safe(session.Title),
		Start:       formatStamp(session.Start),
		End:         formatStamp(session.End),
		Location:    fmt.Sprintf("%s - %s", safe(session.Place), safe(u.RoomName)),
		Description: safe(session.Description),
		LoginURL:    loginURL(u.BaseURL, u.Email),
	}

	var html strings.Builder
	if err := updateHTML.Execute(&html, view); err != nil {
		return Message{}, fmt.Errorf("mail: render update notice: %w", err)
	}

	text := fmt.Sprintf(`Hello %s,

Your session %q has been updated:

Start Time: %s
End Time: %s
Location: %s
Description: %s

Please confirm your availability again as the schedule has changed.

Login here: %s

Warm regards,
Scientific Committee
`, u.FacultyName, view.Title, view.Start, view.End, view.Location, view.Description, view.LoginURL)

	return Message{
		To:      u.Email,
		Subject: fmt.Sprintf("Session Updated: %s", view.Title),
		Text:    text,
		HTML:    html.String(),
	}, nil
}

func loginURL(baseURL, email string) string {
	return fmt.Sprintf("%s/faculty-login?email=%s", strings.TrimRight(baseURL, "/"), url.QueryEscape(email))
}

func location(s SessionSummary) string {
	return fmt.Sprintf("%s - %s", safe(s.Place), safe(s.RoomName))
}

func safe(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}

func formatStamp(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format("Jan 2, 2006 15:04 MST")
}
