package inmemdb

import (
	"context"

	"github.com/dams-project/backend/core/timetable"
)

type timetableRepository struct {
	db *DB
}

func NewTimetableRepository(db *DB) timetable.Repository {
	return &timetableRepository{db: db}
}

func (repo *timetableRepository) UpsertTimetable(_ context.Context, tt timetable.Timetable) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	repo.db.timetables[classKey(tt.Semester, tt.Section)] = &tt
	return nil
}

func (repo *timetableRepository) GetTimetable(_ context.Context, sem int, section string) (timetable.Timetable, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if tt, ok := repo.db.timetables[classKey(sem, section)]; ok {
		return *tt, nil
	}
	return timetable.Timetable{}, timetable.ErrNotFound
}
