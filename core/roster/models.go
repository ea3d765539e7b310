package roster

import (
	"strings"
	"time"

	"github.com/dams-project/backend/core"
)

type Subject struct {
	Code     string `json:"code" db:"code"`
	Name     string `json:"name" db:"name"`
	Semester int    `json:"sem" db:"semester"`
	Credits  int    `json:"credits" db:"credits"`
	IsLab    bool   `json:"is_lab" db:"is_lab"`
}

// FacultyAssignment maps one faculty to a (subject, section) pair.
// A pair has at most one faculty at a time.
type FacultyAssignment struct {
	SubjectCode string    `json:"subject_code" db:"subject_code"`
	Section     string    `json:"section" db:"section"`
	FacultyID   string    `json:"faculty_id" db:"faculty_id"`
	AssignedAt  time.Time `json:"assigned_at" db:"assigned_at"` // UTC
}

// ClassAdvisor maps one faculty to a (semester, section) class.
// A class has at most one advisor at a time.
type ClassAdvisor struct {
	Semester   int       `json:"sem" db:"semester"`
	Section    string    `json:"section" db:"section"`
	FacultyID  string    `json:"faculty_id" db:"faculty_id"`
	AssignedAt time.Time `json:"assigned_at" db:"assigned_at"` // UTC
}

type NewSubject struct {
	Code     string `json:"code" validate:"required"`
	Name     string `json:"name" validate:"required"`
	Semester int    `json:"sem" validate:"required,min=1,max=8"`
	Credits  int    `json:"credits" validate:"required,min=1,max=5"`
	IsLab    bool   `json:"is_lab"`
}

func (ns *NewSubject) Validate() error {
	ns.Code = strings.ToUpper(core.CleanString(ns.Code))
	ns.Name = core.CleanString(ns.Name)
	return core.Validate.Struct(ns)
}

type NewAssignment struct {
	SubjectCode string `json:"subject_code" validate:"required"`
	Section     string `json:"section" validate:"required,section"`
	FacultyID   string `json:"faculty_id" validate:"required"`
}

func (na *NewAssignment) Validate() error {
	na.SubjectCode = strings.ToUpper(core.CleanString(na.SubjectCode))
	na.Section = strings.ToUpper(core.CleanString(na.Section))
	na.FacultyID = strings.ToUpper(core.CleanString(na.FacultyID))
	return core.Validate.Struct(na)
}

type NewAdvisor struct {
	Semester  int    `json:"sem" validate:"required,min=1,max=8"`
	Section   string `json:"section" validate:"required,section"`
	FacultyID string `json:"faculty_id" validate:"required"`
}

func (na *NewAdvisor) Validate() error {
	na.Section = strings.ToUpper(core.CleanString(na.Section))
	na.FacultyID = strings.ToUpper(core.CleanString(na.FacultyID))
	return core.Validate.Struct(na)
}
