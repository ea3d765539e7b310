package timetable

import (
	"context"
	"errors"
	"time"

	"github.com/dams-project/backend/core/roster"
)

var (
	// errors
	ErrNotFound   = errors.New("timetable not found")
	ErrNotAdvisor = errors.New("only the class advisor may upload the timetable")
)

type (
	Repository interface {
		UpsertTimetable(ctx context.Context, tt Timetable) error
		GetTimetable(ctx context.Context, sem int, section string) (Timetable, error)
	}

	Service struct {
		repo   Repository
		roster *roster.Service
	}
)

func NewService(repo Repository, rosterSvc *roster.Service) *Service {
	return &Service{repo: repo, roster: rosterSvc}
}

// Upload replaces the timetable of the class the faculty advises.
// The class slot is resolved from the advisor roster, not from the request.
func (svc *Service) Upload(ctx context.Context, facultyID, fileName, fileType string, data []byte) (Timetable, error) {
	adv, err := svc.roster.AdvisorClass(ctx, facultyID)
	if err != nil {
		if errors.Is(err, roster.ErrAdvisorNotFound) {
			return Timetable{}, ErrNotAdvisor
		}
		return Timetable{}, err
	}

	tt := Timetable{
		Semester:  adv.Semester,
		Section:   adv.Section,
		FileName:  fileName,
		FileType:  fileType,
		Data:      data,
		UpdatedAt: time.Now().UTC(),
	}
	if err = svc.repo.UpsertTimetable(ctx, tt); err != nil {
		return Timetable{}, err
	}
	return tt, nil
}

// Get returns the current timetable of a class, file content included.
func (svc *Service) Get(ctx context.Context, sem int, section string) (Timetable, error) {
	return svc.repo.GetTimetable(ctx, sem, section)
}
