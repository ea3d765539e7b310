package student

import (
	"context"
	"errors"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/dams-project/backend/core"
)

var (
	// errors
	ErrNotFound         = errors.New("student not found")
	ErrPasswordRequired = errors.New("a password is required for a new student")
)

type (
	Repository interface {
		GetStudentByUSN(ctx context.Context, usn string) (Student, error)
		QueryStudentsByClass(ctx context.Context, sem int, section string) ([]Student, error)
		QueryAllStudents(ctx context.Context) ([]Student, error)
		CreateStudent(ctx context.Context, std Student) (Student, error)
		UpdateStudent(ctx context.Context, std Student) (Student, error)
		DeleteStudentByUSN(ctx context.Context, usn string) error
		UpdateStudentPhoto(ctx context.Context, usn string, photo []byte, contentType string) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Save creates a Student or, if the USN is already registered, updates it.
// The password is only replaced when one is provided.
func (svc *Service) Save(ctx context.Context, ns NewStudent) (Student, error) {
	now := time.Now().UTC()

	std, err := svc.repo.GetStudentByUSN(ctx, ns.USN)
	if errors.Is(err, ErrNotFound) {
		if ns.Password == "" {
			return Student{}, core.NewValidationError(
				ErrPasswordRequired, core.FieldError{Field: "password", Error: ErrPasswordRequired.Error()})
		}
		std = Student{
			USN:       ns.USN,
			Name:      ns.Name,
			Email:     ns.Email,
			Semester:  ns.Semester,
			Section:   ns.Section,
			Phone:     null.NewString(ns.Phone, ns.Phone != ""),
			JoinYear:  ns.JoinYear,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err = std.SetPassword(ns.Password); err != nil {
			return Student{}, err
		}
		return svc.repo.CreateStudent(ctx, std)
	}
	if err != nil {
		return Student{}, err
	}

	std.Name = ns.Name
	std.Email = ns.Email
	std.Semester = ns.Semester
	std.Section = ns.Section
	if ns.Phone != "" {
		std.Phone = null.StringFrom(ns.Phone)
	}
	if ns.JoinYear != 0 {
		std.JoinYear = ns.JoinYear
	}
	if ns.Password != "" {
		if err = std.SetPassword(ns.Password); err != nil {
			return Student{}, err
		}
	}
	std.UpdatedAt = now
	return svc.repo.UpdateStudent(ctx, std)
}

func (svc *Service) GetByUSN(ctx context.Context, usn string) (Student, error) {
	return svc.repo.GetStudentByUSN(ctx, usn)
}

func (svc *Service) QueryByClass(ctx context.Context, sem int, section string) ([]Student, error) {
	return svc.repo.QueryStudentsByClass(ctx, sem, section)
}

func (svc *Service) QueryAll(ctx context.Context) ([]Student, error) {
	return svc.repo.QueryAllStudents(ctx)
}

func (svc *Service) Delete(ctx context.Context, usn string) error {
	return svc.repo.DeleteStudentByUSN(ctx, usn)
}

func (svc *Service) SetPassword(ctx context.Context, usn, pwd string) error {
	std, err := svc.repo.GetStudentByUSN(ctx, usn)
	if err != nil {
		return err
	}
	if err = std.SetPassword(pwd); err != nil {
		return err
	}
	std.UpdatedAt = time.Now().UTC()
	_, err = svc.repo.UpdateStudent(ctx, std)
	return err
}

func (svc *Service) SetPhoto(ctx context.Context, usn string, photo []byte, contentType string) error {
	return svc.repo.UpdateStudentPhoto(ctx, usn, photo, contentType)
}
