package auth

import (
	"context"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/dams-project/backend/core"
)

// Roles
const (
	RoleStudent = "student"
	RoleFaculty = "faculty"
	RoleAdmin   = "admin"
)

// Principal identifies an authenticated caller for the lifetime of a session.
// Semester and Section are only set for students.
type Principal struct {
	Role     string `json:"role"`
	ID       string `json:"id"` // USN, staff ID or admin email
	Name     string `json:"name"`
	Email    string `json:"email"`
	Semester int    `json:"sem,omitempty"`
	Section  string `json:"section,omitempty"`
	Guest    bool   `json:"guest,omitempty"`
}

func (p Principal) IsStudent() bool { return p.Role == RoleStudent }
func (p Principal) IsFaculty() bool { return p.Role == RoleFaculty }
func (p Principal) IsAdmin() bool   { return p.Role == RoleAdmin }

// GuestPrincipal represents a read-only visitor who supplied a USN explicitly
// instead of holding a session.
func GuestPrincipal(usn string) Principal {
	return Principal{Role: RoleStudent, ID: usn, Guest: true}
}

type Admin struct {
	Email        string    `json:"email" db:"email"`
	PasswordHash []byte    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"` // UTC
}

func (a *Admin) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	a.PasswordHash = hash
	return nil
}

func (a *Admin) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(a.PasswordHash, []byte(pwd))
}

type (
	// SessionStore persists opaque session tokens.
	SessionStore interface {
		Save(ctx context.Context, token string, p Principal, ttl time.Duration) error
		Get(ctx context.Context, token string) (Principal, error)
		Delete(ctx context.Context, token string) error
	}

	// OTPStore holds short-lived one-time codes keyed by email.
	// Take removes the code atomically so it cannot be replayed.
	OTPStore interface {
		Put(ctx context.Context, email, code string, ttl time.Duration) error
		Take(ctx context.Context, email string) (string, error)
	}
)

// Login requests

type StudentLogin struct {
	USN      string `json:"usn" validate:"required,usn"`
	Password string `json:"password" validate:"required"`
}

func (l *StudentLogin) Validate() error {
	l.USN = strings.ToUpper(core.CleanString(l.USN))
	return core.Validate.Struct(l)
}

type FacultyLogin struct {
	ID       string `json:"id" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (l *FacultyLogin) Validate() error {
	l.ID = strings.ToUpper(core.CleanString(l.ID))
	return core.Validate.Struct(l)
}

type AdminLogin struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (l *AdminLogin) Validate() error {
	l.Email = core.CleanString(l.Email, true /* lower */)
	return core.Validate.Struct(l)
}

type AdminOTP struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"otp" validate:"required,len=6,numeric"`
}

func (l *AdminOTP) Validate() error {
	l.Email = core.CleanString(l.Email, true /* lower */)
	l.Code = core.CleanString(l.Code)
	return core.Validate.Struct(l)
}

// NewAdmin contains information needed to register an Admin.
type NewAdmin struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

func (na *NewAdmin) Validate() error {
	na.Email = core.CleanString(na.Email, true /* lower */)
	return core.Validate.Struct(na)
}
