package timetable

import "time"

// Timetable is the current schedule file of one (semester, section) class.
// Uploads overwrite; there is no history.
type Timetable struct {
	Semester  int       `json:"sem" db:"semester"`
	Section   string    `json:"section" db:"section"`
	FileName  string    `json:"file_name" db:"file_name"`
	FileType  string    `json:"-" db:"file_type"`
	Data      []byte    `json:"-" db:"data"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"` // UTC
}
