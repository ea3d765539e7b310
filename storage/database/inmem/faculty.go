package inmemdb

import (
	"context"
	"sort"

	"github.com/volatiletech/null/v8"

	"github.com/dams-project/backend/core/faculty"
)

type facultyRepository struct {
	db *DB
}

func NewFacultyRepository(db *DB) faculty.Repository {
	return &facultyRepository{db: db}
}

func (repo *facultyRepository) GetFacultyByID(_ context.Context, id string) (faculty.Faculty, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if fac, ok := repo.db.faculty[id]; ok {
		return *fac, nil
	}
	return faculty.Faculty{}, faculty.ErrNotFound
}

func (repo *facultyRepository) QueryAllFaculty(_ context.Context) ([]faculty.Faculty, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	facs := make([]faculty.Faculty, 0, len(repo.db.faculty))
	for _, fac := range repo.db.faculty {
		facs = append(facs, *fac)
	}
	sort.Slice(facs, func(i, j int) bool { return facs[i].Name < facs[j].Name })
	return facs, nil
}

func (repo *facultyRepository) CreateFaculty(_ context.Context, fac faculty.Faculty) (faculty.Faculty, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	repo.db.faculty[fac.ID] = &fac
	return fac, nil
}

func (repo *facultyRepository) UpdateFaculty(_ context.Context, fac faculty.Faculty) (faculty.Faculty, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.faculty[fac.ID]; !ok {
		return faculty.Faculty{}, faculty.ErrNotFound
	}
	repo.db.faculty[fac.ID] = &fac
	return fac, nil
}

func (repo *facultyRepository) DeleteFacultyByID(_ context.Context, id string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.faculty[id]; !ok {
		return faculty.ErrNotFound
	}
	delete(repo.db.faculty, id)
	return nil
}

func (repo *facultyRepository) UpdateFacultyPhoto(_ context.Context, id string, photo []byte, contentType string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	fac, ok := repo.db.faculty[id]
	if !ok {
		return faculty.ErrNotFound
	}
	fac.Photo = null.BytesFrom(photo)
	fac.PhotoType = null.StringFrom(contentType)
	return nil
}
