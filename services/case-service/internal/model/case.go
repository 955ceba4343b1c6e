package model

import "time"

// Complaint is a filed dispute record. Status values follow the Katarungang
// Pambarangay flow: for_mediation, for_conciliation, for_arbitration,
// settled, withdrawn, referred.
type Complaint struct {
	ID               int64
	CaseNumber       string
	CaseTitle        string
	Complainant      string
	ComplainantEmail string
	ComplainantPhone string
	Respondent       string
	Witness          string
	Description      string
	Status           string
	DateFiled        time.Time
	CreatedAt        time.Time
}

// Referral transfers a case out of the Lupon process to an external agency
// (police, court, social welfare).
type Referral struct {
	ID           int64
	ComplaintID  int64
	CaseTitle    string
	Agency       string
	Reason       string
	Status       string
	DateReferred time.Time
}

// SettlementCase records the outcome of a mediation, conciliation or
// arbitration session that ended in agreement.
type SettlementCase struct {
	ID          int64
	ComplaintID int64
	CaseTitle   string
	SessionType string
	Terms       string
	Status      string
	DateSettled time.Time
}

// HearingSession is one scheduled session for a complaint. SlotTime holds
// the canonical 24h value ("13:00"), SlotLabel the display form ("1:00 PM").
type HearingSession struct {
	ID          int64
	ComplaintID int64
	SessionType string
	HearingDate time.Time
	SlotTime    string
	SlotLabel   string
	Status      string
	CreatedAt   time.Time
}

// LuponMember is one official on the barangay peace council roster.
type LuponMember struct {
	ID            int64
	Name          string
	Position      string
	ContactNumber string
	TermStart     time.Time
	TermEnd       time.Time
	Active        bool
}
