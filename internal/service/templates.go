package service

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/civicvoice/complaint-service/internal/domain"
)

var statusEmailTemplate = template.Must(template.New("status").Parse(`<div style="font-family:sans-serif;max-width:600px;margin:0 auto">
  <div style="background:#0F1629;padding:24px;border-radius:12px 12px 0 0">
    <h1 style="color:#FF6B2B;margin:0">CivicVoice</h1>
  </div>
  <div style="background:#f9f9f9;padding:24px;border-radius:0 0 12px 12px">
    <p>Hi {{.Name}},</p>
    <p>Your complaint has been updated:</p>
    <div style="background:white;padding:16px;border-radius:8px;border-left:4px solid #FF6B2B">
      <strong>{{.Title}}</strong><br>
      Status: <strong>{{.Status}}</strong><br>
      Department: {{.Department}}
    </div>
    <a href="{{.Link}}" style="display:inline-block;margin-top:16px;background:#FF6B2B;color:white;padding:12px 24px;border-radius:8px;text-decoration:none">View Complaint</a>
  </div>
</div>`))

type statusEmailData struct {
	Name       string
	Title      string
	Status     domain.ComplaintStatus
	Department domain.Department
	Link       string
}

func renderStatusEmail(citizen *domain.Actor, complaint *domain.Complaint, clientURL string) (string, error) {
	var buf bytes.Buffer
	err := statusEmailTemplate.Execute(&buf, statusEmailData{
		Name:       citizen.Name,
		Title:      complaint.Title,
		Status:     complaint.Status,
		Department: complaint.Department,
		Link:       fmt.Sprintf("%s/complaints/%s", clientURL, complaint.ID),
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

func statusSMS(complaint *domain.Complaint) string {
	var verb string
	switch complaint.Status {
	case domain.StatusInProgress:
		verb = "is being worked on"
	case domain.StatusResolved:
		verb = "has been resolved"
	case domain.StatusOverdue:
		verb = "is overdue and escalated"
	case domain.StatusEscalated:
		verb = "has been escalated to Commissioner"
	default:
		verb = fmt.Sprintf("is now %s", complaint.Status)
	}
	return fmt.Sprintf("[CivicVoice] Your complaint \"%s\" %s. Visit civicvoice.in to track.", truncate(complaint.Title, 50), verb)
}
