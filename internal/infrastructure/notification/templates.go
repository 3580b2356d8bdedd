package notification

import (
	"bytes"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"

	"civicsolve/internal/domain/entity"
)

var statusMessages = map[entity.Status]string{
	entity.StatusReported:   "Your complaint has been received and is under review.",
	entity.StatusInProgress: "Your complaint is now being processed by our team.",
	entity.StatusResolved:   "Your complaint has been resolved! Thank you for your patience.",
	entity.StatusClosed:     "Your complaint has been closed.",
}

// StatusLabel renders in_progress as IN PROGRESS.
func StatusLabel(s entity.Status) string {
	return strings.ToUpper(strings.ReplaceAll(string(s), "_", " "))
}

func StatusMessage(s entity.Status) string {
	return statusMessages[s]
}

type emailData struct {
	Name      string
	Complaint entity.Complaint
	Status    string
	Message   string
	Reporter  string
	Reported  string
}

var funcs = map[string]interface{}{
	"upper": strings.ToUpper,
}

const statusHTML = `<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #2196F3;">Complaint Status Update</h2>
  <p>Dear {{.Name}},</p>
  <p>We wanted to inform you about the status of your complaint:</p>
  <div style="background-color: #f5f5f5; padding: 20px; border-radius: 8px; margin: 20px 0;">
    <h3 style="margin-top: 0;">{{.Complaint.Title}}</h3>
    <p><strong>Complaint ID:</strong> {{.Complaint.ComplaintID}}</p>
    <p><strong>Category:</strong> {{.Complaint.Category}}</p>
    <p><strong>Location:</strong> {{.Complaint.Location}}</p>
    <p><strong>Status:</strong> <span style="color: #2196F3; font-weight: bold;">{{.Status}}</span></p>
  </div>
  <p>{{.Message}}</p>
  {{if .Complaint.WorkOrderNumber}}<p><strong>Work Order Number:</strong> {{.Complaint.WorkOrderNumber}}</p>{{end}}
  <p>Thank you for using our civic problem reporting system.</p>
  <hr style="margin: 30px 0; border: none; border-top: 1px solid #eee;">
  <p style="color: #666; font-size: 12px;">This is an automated message. Please do not reply to this email.</p>
</div>`

const statusText = `Complaint Status Update - {{.Complaint.Title}}

Dear {{.Name}},

We wanted to inform you about the status of your complaint:

Complaint ID: {{.Complaint.ComplaintID}}
Category: {{.Complaint.Category}}
Location: {{.Complaint.Location}}
Status: {{.Status}}

{{.Message}}
{{if .Complaint.WorkOrderNumber}}
Work Order Number: {{.Complaint.WorkOrderNumber}}
{{end}}
Thank you for using our civic problem reporting system.
`

const newComplaintHTML = `<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #f44336;">New Complaint Reported</h2>
  <p>A new complaint has been reported in the system:</p>
  <div style="background-color: #f5f5f5; padding: 20px; border-radius: 8px; margin: 20px 0;">
    <h3 style="margin-top: 0;">{{.Complaint.Title}}</h3>
    <p><strong>Complaint ID:</strong> {{.Complaint.ComplaintID}}</p>
    <p><strong>Category:</strong> {{.Complaint.Category}}</p>
    <p><strong>Priority:</strong> {{upper (printf "%s" .Complaint.Priority)}}</p>
    <p><strong>Location:</strong> {{.Complaint.Location}}</p>
    <p><strong>Description:</strong> {{.Complaint.Description}}</p>
    <p><strong>Reported by:</strong> {{.Reporter}}</p>
    <p><strong>Reported on:</strong> {{.Reported}}</p>
  </div>
  <p>Please review and assign this complaint to the appropriate department.</p>
  <hr style="margin: 30px 0; border: none; border-top: 1px solid #eee;">
  <p style="color: #666; font-size: 12px;">This is an automated notification from the civic problem reporting system.</p>
</div>`

const newComplaintText = `New Complaint Reported - {{.Complaint.Title}}

A new complaint has been reported in the system:

Complaint ID: {{.Complaint.ComplaintID}}
Category: {{.Complaint.Category}}
Priority: {{upper (printf "%s" .Complaint.Priority)}}
Location: {{.Complaint.Location}}
Description: {{.Complaint.Description}}
Reported by: {{.Reporter}}
Reported on: {{.Reported}}

Please review and assign this complaint to the appropriate department.
`

var (
	statusHTMLTmpl       = htmltemplate.Must(htmltemplate.New("status").Funcs(funcs).Parse(statusHTML))
	statusTextTmpl       = texttemplate.Must(texttemplate.New("status").Funcs(funcs).Parse(statusText))
	newComplaintHTMLTmpl = htmltemplate.Must(htmltemplate.New("new").Funcs(funcs).Parse(newComplaintHTML))
	newComplaintTextTmpl = texttemplate.Must(texttemplate.New("new").Funcs(funcs).Parse(newComplaintText))
)

type renderedEmail struct {
	Subject string
	HTML    string
	Text    string
}

func render(htmlTmpl *htmltemplate.Template, textTmpl *texttemplate.Template, data emailData) (string, string, error) {
	var html, text bytes.Buffer
	if err := htmlTmpl.Execute(&html, data); err != nil {
		return "", "", err
	}
	if err := textTmpl.Execute(&text, data); err != nil {
		return "", "", err
	}
	return html.String(), text.String(), nil
}

// statusEmail is sent to the reporter for every lifecycle event, creation included.
func statusEmail(event entity.ComplaintEvent) (renderedEmail, error) {
	c := event.Complaint
	data := emailData{
		Name:      event.Recipient.Name,
		Complaint: c,
		Status:    StatusLabel(event.NewStatus),
		Message:   StatusMessage(event.NewStatus),
	}

	html, text, err := render(statusHTMLTmpl, statusTextTmpl, data)
	if err != nil {
		return renderedEmail{}, err
	}
	return renderedEmail{Subject: "Complaint Status Update - " + c.Title, HTML: html, Text: text}, nil
}

// newComplaintEmail is sent to the administrators when a complaint is created.
func newComplaintEmail(event entity.ComplaintEvent) (renderedEmail, error) {
	c := event.Complaint
	reporter := event.Recipient.Name
	if event.Recipient.Email != "" {
		reporter += " (" + event.Recipient.Email + ")"
	}

	data := emailData{
		Complaint: c,
		Reporter:  reporter,
		Reported:  c.CreatedDate.Format("02 Jan 2006 15:04 MST"),
	}

	html, text, err := render(newComplaintHTMLTmpl, newComplaintTextTmpl, data)
	if err != nil {
		return renderedEmail{}, err
	}
	return renderedEmail{Subject: "New Complaint Reported - " + c.Title, HTML: html, Text: text}, nil
}
