package notify

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"text/template"
)

// BookingConfirmation carries what the patient is told after booking.
type BookingConfirmation struct {
	PatientName   string `json:"patientName"`
	PatientEmail  string `json:"patientEmail"`
	TreatmentName string `json:"treatmentName"`
	Date          string `json:"date"`
	Slot          string `json:"slot"`
}

const (
	confirmationSubject = `Your appointment for {{.TreatmentName}} on {{.Date}} at {{.Slot}} is confirmed`

	confirmationText = `Hello {{.PatientName}},

Your appointment for {{.TreatmentName}} is confirmed.
We look forward to seeing you on {{.Date}} at {{.Slot}}.
`

	confirmationHTML = `<div>
  <h3>Hello {{.PatientName}},</h3>
  <p>Your appointment for {{.TreatmentName}} is confirmed.</p>
  <p>We look forward to seeing you on {{.Date}} at {{.Slot}}.</p>
</div>`
)

var (
	subjectTmpl = template.Must(template.New("subject").Option("missingkey=error").Parse(confirmationSubject))
	textTmpl    = template.Must(template.New("text").Option("missingkey=error").Parse(confirmationText))
	htmlTmpl    = htmltemplate.Must(htmltemplate.New("html").Option("missingkey=error").Parse(confirmationHTML))
)

// RenderConfirmation builds the confirmation email for c.
func RenderConfirmation(c BookingConfirmation) (EmailMessage, error) {
	if c.PatientEmail == "" {
		return EmailMessage{}, fmt.Errorf("notify: confirmation recipient required")
	}
	var subject, text, html bytes.Buffer
	if err := subjectTmpl.Execute(&subject, c); err != nil {
		return EmailMessage{}, fmt.Errorf("notify: render subject: %w", err)
	}
	if err := textTmpl.Execute(&text, c); err != nil {
		return EmailMessage{}, fmt.Errorf("notify: render text: %w", err)
	}
	if err := htmlTmpl.Execute(&html, c); err != nil {
		return EmailMessage{}, fmt.Errorf("notify: render html: %w", err)
	}
	return EmailMessage{
		To:      c.PatientEmail,
		ToName:  c.PatientName,
		Subject: subject.String(),
		Body:    text.String(),
		HTML:    html.String(),
	}, nil
}
