package notes

import (
	"strings"
	"time"

	"github.com/dams-project/backend/core"
)

// Note is an uploaded study document for one (semester, section, subject).
// Data is only populated on download; listings omit it.
type Note struct {
	ID          int64     `json:"id" db:"id"`
	Semester    int       `json:"sem" db:"semester"`
	Section     string    `json:"section" db:"section"`
	SubjectCode string    `json:"subject_code" db:"subject_code"`
	Title       string    `json:"title" db:"title"`
	FileName    string    `json:"file_name" db:"file_name"`
	FileType    string    `json:"file_type" db:"file_type"`
	Data        []byte    `json:"-" db:"data"`
	FacultyID   string    `json:"faculty_id" db:"faculty_id"`
	UploadedAt  time.Time `json:"uploaded_at" db:"uploaded_at"` // UTC
}

// NewNote contains information needed to upload a Note. The file itself
// arrives out of band as multipart content.
type NewNote struct {
	Semester    int    `json:"sem" validate:"required,min=1,max=8"`
	Section     string `json:"section" validate:"required,section"`
	SubjectCode string `json:"subject_code" validate:"required"`
	Title       string `json:"title" validate:"required"`
	FileName    string `json:"-"`
	FileType    string `json:"-"`
	Data        []byte `json:"-"`
}

func (nn *NewNote) Validate() error {
	nn.Section = strings.ToUpper(core.CleanString(nn.Section))
	nn.SubjectCode = strings.ToUpper(core.CleanString(nn.SubjectCode))
	nn.Title = core.CleanString(nn.Title)
	return core.Validate.Struct(nn)
}
