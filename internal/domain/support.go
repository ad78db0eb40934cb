package domain

import (
	"strings"
	"time"
)

// CaseStatus is the two-state support case lifecycle.
type CaseStatus string

const (
	CaseOpen   CaseStatus = "open"
	CaseClosed CaseStatus = "closed"
)

// ParseCaseStatus coerces arbitrary form input to a valid status. Anything
// other than "closed" becomes "open".
func ParseCaseStatus(s string) CaseStatus {
	if CaseStatus(s) == CaseClosed {
		return CaseClosed
	}
	return CaseOpen
}

// Toggle returns the opposite status.
func (s CaseStatus) Toggle() CaseStatus {
	if s == CaseOpen {
		return CaseClosed
	}
	return CaseOpen
}

// SupportCase is one support_cases row. PlayerName is a snapshot taken at
// creation time; it does not track later renames.
type SupportCase struct {
	ID            int64
	PlayerID      string
	PlayerName    string
	CaseType      string
	Area          string
	SupporterName string
	Scenario      string
	Content       string
	Status        CaseStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// SupportCaseInput holds the form fields for creating or updating a case.
type SupportCaseInput struct {
	CaseType      string
	Area          string
	SupporterName string
	Scenario      string
	Content       string
	Status        CaseStatus
}

// Normalize trims the free-text fields and applies the "Support" area
// default.
func (in *SupportCaseInput) Normalize() {
	in.CaseType = strings.TrimSpace(in.CaseType)
	in.Area = strings.TrimSpace(in.Area)
	if in.Area == "" {
		in.Area = "Support"
	}
	in.SupporterName = strings.TrimSpace(in.SupporterName)
	in.Scenario = strings.TrimSpace(in.Scenario)
}
