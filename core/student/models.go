package student

import (
	"strings"
	"time"

	"github.com/volatiletech/null/v8"
	"golang.org/x/crypto/bcrypt"

	"github.com/dams-project/backend/core"
)

type Student struct {
	USN          string      `json:"usn" db:"usn"`
	Name         string      `json:"name" db:"name"`
	Email        string      `json:"email" db:"email"`
	PasswordHash []byte      `json:"-" db:"password_hash"`
	Semester     int         `json:"sem" db:"semester"`
	Section      string      `json:"section" db:"section"`
	Phone        null.String `json:"phone" db:"phone"`
	JoinYear     int         `json:"join_year" db:"join_year"`
	Photo        null.Bytes  `json:"-" db:"photo"`
	PhotoType    null.String `json:"-" db:"photo_type"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"` // UTC
	UpdatedAt    time.Time   `json:"updated_at" db:"updated_at"` // UTC
}

func (s *Student) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	s.PasswordHash = hash
	return nil
}

func (s *Student) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(s.PasswordHash, []byte(pwd))
}

// NewStudent contains information needed to create or update a Student.
// An existing USN is updated in place; a new USN requires a password.
type NewStudent struct {
	USN      string `json:"usn" validate:"required,usn"`
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password"`
	Semester int    `json:"sem" validate:"required,min=1,max=8"`
	Section  string `json:"section" validate:"required,section"`
	Phone    string `json:"phone"`
	JoinYear int    `json:"join_year" validate:"omitempty,min=2000,max=2100"`
}

func (ns *NewStudent) Validate() error {
	ns.USN = strings.ToUpper(core.CleanString(ns.USN))
	ns.Name = core.CleanString(ns.Name)
	ns.Email = core.CleanString(ns.Email, true /* lower */)
	ns.Section = strings.ToUpper(core.CleanString(ns.Section))
	ns.Phone = core.CleanString(ns.Phone)
	return core.Validate.Struct(ns)
}
