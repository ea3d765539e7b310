package faculty

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/dams-project/backend/core"
)

var (
	// errors
	ErrNotFound         = errors.New("faculty not found")
	ErrPasswordRequired = errors.New("a password is required for a new faculty")
)

type (
	Repository interface {
		GetFacultyByID(ctx context.Context, id string) (Faculty, error)
		QueryAllFaculty(ctx context.Context) ([]Faculty, error)
		CreateFaculty(ctx context.Context, fac Faculty) (Faculty, error)
		UpdateFaculty(ctx context.Context, fac Faculty) (Faculty, error)
		DeleteFacultyByID(ctx context.Context, id string) error
		UpdateFacultyPhoto(ctx context.Context, id string, photo []byte, contentType string) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Save creates a Faculty or, if the ID is already registered, updates it.
// The password is only replaced when one is provided.
func (svc *Service) Save(ctx context.Context, nf NewFaculty) (Faculty, error) {
	now := time.Now().UTC()

	fac, err := svc.repo.GetFacultyByID(ctx, nf.ID)
	if errors.Is(err, ErrNotFound) {
		if nf.Password == "" {
			return Faculty{}, core.NewValidationError(
				ErrPasswordRequired, core.FieldError{Field: "password", Error: ErrPasswordRequired.Error()})
		}
		fac = Faculty{
			ID:        nf.ID,
			Name:      nf.Name,
			Email:     nf.Email,
			Phone:     null.NewString(nf.Phone, nf.Phone != ""),
			Position:  nf.Position,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err = fac.SetPassword(nf.Password); err != nil {
			return Faculty{}, err
		}
		return svc.repo.CreateFaculty(ctx, fac)
	}
	if err != nil {
		return Faculty{}, err
	}

	fac.Name = nf.Name
	fac.Email = nf.Email
	fac.Position = nf.Position
	if nf.Phone != "" {
		fac.Phone = null.StringFrom(nf.Phone)
	}
	if nf.Password != "" {
		if err = fac.SetPassword(nf.Password); err != nil {
			return Faculty{}, err
		}
	}
	fac.UpdatedAt = now
	return svc.repo.UpdateFaculty(ctx, fac)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Faculty, error) {
	return svc.repo.GetFacultyByID(ctx, id)
}

// QueryAll returns the staff directory: HoD first, then by seniority and name.
func (svc *Service) QueryAll(ctx context.Context) ([]Faculty, error) {
	facs, err := svc.repo.QueryAllFaculty(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(facs, func(i, j int) bool {
		ri, rj := PositionRank(facs[i].Position), PositionRank(facs[j].Position)
		if ri != rj {
			return ri < rj
		}
		return facs[i].Name < facs[j].Name
	})
	return facs, nil
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteFacultyByID(ctx, id)
}

func (svc *Service) SetPassword(ctx context.Context, id, pwd string) error {
	fac, err := svc.repo.GetFacultyByID(ctx, id)
	if err != nil {
		return err
	}
	if err = fac.SetPassword(pwd); err != nil {
		return err
	}
	fac.UpdatedAt = time.Now().UTC()
	_, err = svc.repo.UpdateFaculty(ctx, fac)
	return err
}

func (svc *Service) SetPhoto(ctx context.Context, id string, photo []byte, contentType string) error {
	return svc.repo.UpdateFacultyPhoto(ctx, id, photo, contentType)
}
