package attendance

import (
	"strings"
	"time"

	"github.com/dams-project/backend/core"
)

// Statuses
const (
	StatusPresent = "Present"
	StatusAbsent  = "Absent"
)

// DateLayout is the wire format of attendance dates.
const DateLayout = "2006-01-02"

// Record is one student's attendance for one subject on one date.
// A date may stand for several class hours via Hours.
type Record struct {
	ID          int64     `json:"id" db:"id"`
	USN         string    `json:"usn" db:"usn"`
	SubjectCode string    `json:"subject_code" db:"subject_code"`
	Semester    int       `json:"sem" db:"semester"`
	Section     string    `json:"section" db:"section"`
	Date        time.Time `json:"date" db:"date"`
	Hours       int       `json:"hours" db:"hours"`
	Status      string    `json:"status" db:"status"`
}

// SubjectTotals is a per-subject roll-up of attended vs held hours.
type SubjectTotals struct {
	SubjectCode string `json:"subject_code" db:"subject_code"`
	SubjectName string `json:"subject_name" db:"subject_name"`
	Attended    int    `json:"attended" db:"attended"`
	Total       int    `json:"total" db:"total"`
}

// SubjectSummary adds the derived percentage to SubjectTotals.
type SubjectSummary struct {
	SubjectTotals
	Percentage float64 `json:"percentage"`
}

// MonthlyTotals is a per-month roll-up for one (student, subject).
type MonthlyTotals struct {
	Year     int `json:"year" db:"year"`
	Month    int `json:"month" db:"month"`
	Attended int `json:"attended" db:"attended"`
	Total    int `json:"total" db:"total"`
}

// MonthlySummary carries the running cumulative percentage across months.
type MonthlySummary struct {
	MonthlyTotals
	CumulativePercentage int `json:"cumulative_percentage"`
}

// ClassTotals is one student's roll-up within a class report.
type ClassTotals struct {
	USN      string `json:"usn" db:"usn"`
	Name     string `json:"name" db:"name"`
	Attended int    `json:"attended" db:"attended"`
	Total    int    `json:"total" db:"total"`
}

// ClassReportRow adds the derived percentage to ClassTotals.
type ClassReportRow struct {
	ClassTotals
	Percentage float64 `json:"percentage"`
}

// AlertResult lists the subjects below the shortage threshold.
type AlertResult struct {
	Shortages []SubjectSummary `json:"shortages"`
	Sent      bool             `json:"sent"`
}

// Submission is a bulk attendance entry for a whole class period.
type Submission struct {
	SubjectCode string   `json:"subject_code" validate:"required"`
	Semester    int      `json:"sem" validate:"required,min=1,max=8"`
	Section     string   `json:"section" validate:"required,section"`
	Date        string   `json:"date" validate:"required,datetime=2006-01-02"`
	Hours       int      `json:"hours" validate:"required,min=1,max=8"`
	AbsentUSNs  []string `json:"absent_usns"`
}

func (s *Submission) Validate() error {
	s.SubjectCode = strings.ToUpper(core.CleanString(s.SubjectCode))
	s.Section = strings.ToUpper(core.CleanString(s.Section))
	for i, usn := range s.AbsentUSNs {
		s.AbsentUSNs[i] = strings.ToUpper(core.CleanString(usn))
	}
	return core.Validate.Struct(s)
}

// UpdateRecord corrects a single attendance entry.
type UpdateRecord struct {
	USN         string `json:"usn" validate:"required,usn"`
	SubjectCode string `json:"subject_code" validate:"required"`
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
	Status      string `json:"status" validate:"required,oneof=Present Absent"`
}

func (u *UpdateRecord) Validate() error {
	u.USN = strings.ToUpper(core.CleanString(u.USN))
	u.SubjectCode = strings.ToUpper(core.CleanString(u.SubjectCode))
	u.Status = core.CleanString(u.Status)
	return core.Validate.Struct(u)
}
