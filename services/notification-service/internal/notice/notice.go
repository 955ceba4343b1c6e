// Package notice renders the plain-text messages sent to parties of a
// barangay case. Events arrive from case-service; each renderer turns one
// event payload into a subject line and a body.
package notice

import (
	"fmt"
	"strings"
)

// HearingScheduled mirrors the kp.hearing.scheduled.v1 payload.
type HearingScheduled struct {
	SessionID        int64  `json:"session_id"`
	ComplaintID      int64  `json:"complaint_id"`
	CaseNumber       string `json:"case_number"`
	CaseTitle        string `json:"case_title"`
	Complainant      string `json:"complainant"`
	ComplainantEmail string `json:"complainant_email"`
	ComplainantPhone string `json:"complainant_phone"`
	Respondent       string `json:"respondent"`
	SessionType      string `json:"session_type"`
	Date             string `json:"date"`
	Time             string `json:"time"`
	Label            string `json:"label"`
}

func (n HearingScheduled) Subject() string {
	return fmt.Sprintf("Hearing scheduled for case %s", n.CaseNumber)
}

func (n HearingScheduled) Body() string {
	when := n.Label
	if when == "" {
		when = n.Time
	}
	return fmt.Sprintf(
		"Magandang araw, %s.\n\nA %s hearing for case %s (%s) has been scheduled on %s at %s.\nPlease appear at the barangay hall on the scheduled date and time.\n\n- Lupon Tagapamayapa",
		n.Complainant, n.SessionType, n.CaseNumber, n.CaseTitle, n.Date, when,
	)
}

// StatusChanged mirrors the kp.case.status.changed.v1 payload.
type StatusChanged struct {
	ComplaintID      int64  `json:"complaint_id"`
	CaseNumber       string `json:"case_number"`
	CaseTitle        string `json:"case_title"`
	Complainant      string `json:"complainant"`
	ComplainantEmail string `json:"complainant_email"`
	ComplainantPhone string `json:"complainant_phone"`
	Respondent       string `json:"respondent"`
	OldStatus        string `json:"old_status"`
	NewStatus        string `json:"new_status"`
	ChangedAt        string `json:"changed_at"`
}

func (n StatusChanged) Subject() string {
	return fmt.Sprintf("Case %s is now %s", n.CaseNumber, StatusLabel(n.NewStatus))
}

func (n StatusChanged) Body() string {
	return fmt.Sprintf(
		"Magandang araw, %s.\n\nThe status of case %s (%s) has changed from %s to %s.\nVisit the barangay hall for details.\n\n- Lupon Tagapamayapa",
		n.Complainant, n.CaseNumber, n.CaseTitle, StatusLabel(n.OldStatus), StatusLabel(n.NewStatus),
	)
}

// StatusLabel converts a stored status like "for_mediation" into the wording
// used in notices ("For Mediation").
func StatusLabel(status string) string {
	parts := strings.Split(strings.TrimSpace(status), "_")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}
