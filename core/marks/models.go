package marks

import (
	"strings"

	"github.com/dams-project/backend/core"
)

// Mark stores only the raw components of one (student, semester, subject);
// internal, total and result are derived on read.
type Mark struct {
	USN         string  `json:"usn" db:"usn"`
	Semester    int     `json:"sem" db:"semester"`
	SubjectCode string  `json:"subject_code" db:"subject_code"`
	CIE1        float64 `json:"cie1" db:"cie1"`
	CIE2        float64 `json:"cie2" db:"cie2"`
	Lab         float64 `json:"lab" db:"lab"`
	Assignment  float64 `json:"assignment" db:"assignment"`
	External    float64 `json:"external" db:"external"`
}

// MarkRow joins a Mark with its subject metadata.
type MarkRow struct {
	Mark
	SubjectName string `json:"subject_name" db:"subject_name"`
	Credits     int    `json:"credits" db:"credits"`
	IsLab       bool   `json:"is_lab" db:"is_lab"`
}

// StudentMark is the read model: raw components plus derived values.
type StudentMark struct {
	MarkRow
	Evaluation
}

// ClassMarkRow is one student's row in a class-level report.
type ClassMarkRow struct {
	USN   string `json:"usn" db:"usn"`
	Name  string `json:"name" db:"name"`
	Mark
	IsLab bool `json:"is_lab" db:"is_lab"`
}

// ReportRow adds the derived values to a ClassMarkRow.
type ReportRow struct {
	ClassMarkRow
	Evaluation
}

// Sgpa is one per-semester grade point row; the sentinel semester 0 row
// holds the student's rolling CGPA.
type Sgpa struct {
	USN      string  `json:"usn" db:"usn"`
	Semester int     `json:"sem" db:"semester"`
	Value    float64 `json:"sgpa" db:"sgpa"`
}

// SubjectMarks is one subject's raw components in an upsert batch.
// Numeric fields tolerate malformed input, coercing it to 0.
type SubjectMarks struct {
	SubjectCode string  `json:"subject_code" validate:"required"`
	CIE1        FlexNum `json:"cie1" validate:"max=50"`
	CIE2        FlexNum `json:"cie2" validate:"max=50"`
	Lab         FlexNum `json:"lab" validate:"max=25"`
	Assignment  FlexNum `json:"assignment" validate:"max=25"`
	External    FlexNum `json:"external" validate:"max=100"`
}

// UpsertMarks is a batch write of one student's marks for one semester.
type UpsertMarks struct {
	USN      string         `json:"usn" validate:"required,usn"`
	Semester int            `json:"sem" validate:"required,min=1,max=8"`
	Subjects []SubjectMarks `json:"subjects" validate:"required,min=1,dive"`
}

func (um *UpsertMarks) Validate() error {
	um.USN = strings.ToUpper(core.CleanString(um.USN))
	for i := range um.Subjects {
		um.Subjects[i].SubjectCode = strings.ToUpper(core.CleanString(um.Subjects[i].SubjectCode))
	}
	return core.Validate.Struct(um)
}

// SaveSgpa records one semester's SGPA and triggers the CGPA recompute.
type SaveSgpa struct {
	USN      string  `json:"usn" validate:"required,usn"`
	Semester int     `json:"sem" validate:"required,min=1,max=8"`
	Sgpa     float64 `json:"sgpa" validate:"required,min=0,max=10"`
}

func (ss *SaveSgpa) Validate() error {
	ss.USN = strings.ToUpper(core.CleanString(ss.USN))
	return core.Validate.Struct(ss)
}
