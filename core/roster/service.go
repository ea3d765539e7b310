package roster

import (
	"context"
	"errors"
	"time"
)

var (
	// errors
	ErrSubjectNotFound    = errors.New("subject not found")
	ErrAssignmentNotFound = errors.New("no faculty assigned")
	ErrAdvisorNotFound    = errors.New("no class advisor assigned")
)

type (
	Repository interface {
		GetSubject(ctx context.Context, code string) (Subject, error)
		QuerySubjectsBySemester(ctx context.Context, sem int) ([]Subject, error)
		UpsertSubject(ctx context.Context, sub Subject) (Subject, error)

		// SaveAssignment replaces any existing assignment for the
		// (subject, section) pair in a single transaction.
		SaveAssignment(ctx context.Context, a FacultyAssignment) error
		GetAssignment(ctx context.Context, subjectCode, section string) (FacultyAssignment, error)
		QueryAssignmentsByFaculty(ctx context.Context, facultyID string) ([]FacultyAssignment, error)

		// SaveAdvisor replaces any existing advisor for the
		// (semester, section) class in a single transaction.
		SaveAdvisor(ctx context.Context, a ClassAdvisor) error
		GetAdvisor(ctx context.Context, sem int, section string) (ClassAdvisor, error)
		GetAdvisorClass(ctx context.Context, facultyID string) (ClassAdvisor, error)
		QueryAllAdvisors(ctx context.Context) ([]ClassAdvisor, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) GetSubject(ctx context.Context, code string) (Subject, error) {
	return svc.repo.GetSubject(ctx, code)
}

func (svc *Service) SubjectsBySemester(ctx context.Context, sem int) ([]Subject, error) {
	return svc.repo.QuerySubjectsBySemester(ctx, sem)
}

func (svc *Service) SaveSubject(ctx context.Context, ns NewSubject) (Subject, error) {
	return svc.repo.UpsertSubject(ctx, Subject{
		Code:     ns.Code,
		Name:     ns.Name,
		Semester: ns.Semester,
		Credits:  ns.Credits,
		IsLab:    ns.IsLab,
	})
}

// AssignFaculty gives the (subject, section) pair to the faculty,
// displacing any previous assignee.
func (svc *Service) AssignFaculty(ctx context.Context, na NewAssignment) error {
	if _, err := svc.repo.GetSubject(ctx, na.SubjectCode); err != nil {
		return err
	}
	return svc.repo.SaveAssignment(ctx, FacultyAssignment{
		SubjectCode: na.SubjectCode,
		Section:     na.Section,
		FacultyID:   na.FacultyID,
		AssignedAt:  time.Now().UTC(),
	})
}

func (svc *Service) AssignedFaculty(ctx context.Context, subjectCode, section string) (FacultyAssignment, error) {
	return svc.repo.GetAssignment(ctx, subjectCode, section)
}

// FacultySubjects lists the subjects of a class that the faculty teaches.
func (svc *Service) FacultySubjects(ctx context.Context, facultyID string, sem int, section string) ([]Subject, error) {
	assignments, err := svc.repo.QueryAssignmentsByFaculty(ctx, facultyID)
	if err != nil {
		return nil, err
	}

	subs := make([]Subject, 0, len(assignments))
	for _, a := range assignments {
		if a.Section != section {
			continue
		}
		sub, err := svc.repo.GetSubject(ctx, a.SubjectCode)
		if err != nil {
			if errors.Is(err, ErrSubjectNotFound) {
				continue
			}
			return nil, err
		}
		if sub.Semester == sem {
			subs = append(subs, sub)
		}
	}
	return subs, nil
}

// Teaches reports whether the faculty holds the (subject, section) assignment.
func (svc *Service) Teaches(ctx context.Context, facultyID, subjectCode, section string) (bool, error) {
	a, err := svc.repo.GetAssignment(ctx, subjectCode, section)
	if err != nil {
		if errors.Is(err, ErrAssignmentNotFound) {
			return false, nil
		}
		return false, err
	}
	return a.FacultyID == facultyID, nil
}

// AssignAdvisor makes the faculty the class advisor of (semester, section),
// displacing any previous advisor.
func (svc *Service) AssignAdvisor(ctx context.Context, na NewAdvisor) error {
	return svc.repo.SaveAdvisor(ctx, ClassAdvisor{
		Semester:   na.Semester,
		Section:    na.Section,
		FacultyID:  na.FacultyID,
		AssignedAt: time.Now().UTC(),
	})
}

func (svc *Service) Advisor(ctx context.Context, sem int, section string) (ClassAdvisor, error) {
	return svc.repo.GetAdvisor(ctx, sem, section)
}

// AdvisorClass returns the class the faculty advises, if any.
func (svc *Service) AdvisorClass(ctx context.Context, facultyID string) (ClassAdvisor, error) {
	return svc.repo.GetAdvisorClass(ctx, facultyID)
}

func (svc *Service) AllAdvisors(ctx context.Context) ([]ClassAdvisor, error) {
	return svc.repo.QueryAllAdvisors(ctx)
}
