package faculty

import (
	"strings"
	"time"

	"github.com/volatiletech/null/v8"
	"golang.org/x/crypto/bcrypt"

	"github.com/dams-project/backend/core"
)

// Positions, most senior first.
const (
	PositionHoD                = "HoD"
	PositionProfessor          = "Professor"
	PositionAssociateProfessor = "Associate Professor"
	PositionAssistantProfessor = "Assistant Professor"
)

// positionRank orders the staff directory; unknown positions sort last.
var positionRank = map[string]int{
	PositionHoD:                0,
	PositionProfessor:          1,
	PositionAssociateProfessor: 2,
	PositionAssistantProfessor: 3,
}

func PositionRank(position string) int {
	if r, ok := positionRank[position]; ok {
		return r
	}
	return len(positionRank)
}

type Faculty struct {
	ID           string      `json:"id" db:"id"` // staff SSN ID
	Name         string      `json:"name" db:"name"`
	Email        string      `json:"email" db:"email"`
	PasswordHash []byte      `json:"-" db:"password_hash"`
	Phone        null.String `json:"phone" db:"phone"`
	Position     string      `json:"position" db:"position"`
	Photo        null.Bytes  `json:"-" db:"photo"`
	PhotoType    null.String `json:"-" db:"photo_type"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"` // UTC
	UpdatedAt    time.Time   `json:"updated_at" db:"updated_at"` // UTC
}

func (f *Faculty) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	f.PasswordHash = hash
	return nil
}

func (f *Faculty) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(f.PasswordHash, []byte(pwd))
}

// NewFaculty contains information needed to create or update a Faculty.
// An existing ID is updated in place; a new ID requires a password.
type NewFaculty struct {
	ID       string `json:"id" validate:"required"`
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
	Position string `json:"position" validate:"required"`
}

func (nf *NewFaculty) Validate() error {
	nf.ID = strings.ToUpper(core.CleanString(nf.ID))
	nf.Name = core.CleanString(nf.Name)
	nf.Email = core.CleanString(nf.Email, true /* lower */)
	nf.Phone = core.CleanString(nf.Phone)
	nf.Position = core.CleanString(nf.Position)
	return core.Validate.Struct(nf)
}
