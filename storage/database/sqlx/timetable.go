package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/dams-project/backend/core/timetable"
)

type timetableRepository struct {
	db *sqlx.DB
}

var _ timetable.Repository = (*timetableRepository)(nil)

func NewTimetableRepository(db *sqlx.DB) *timetableRepository {
	return &timetableRepository{db: db}
}

func (repo timetableRepository) UpsertTimetable(ctx context.Context, tt timetable.Timetable) error {
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO timetable (semester, section, file_name, file_type, data, updated_at)
		VALUES (:semester, :section, :file_name, :file_type, :data, :updated_at)
		ON CONFLICT (semester, section) DO UPDATE
		SET file_name = EXCLUDED.file_name, file_type = EXCLUDED.file_type,
		    data = EXCLUDED.data, updated_at = EXCLUDED.updated_at`,
		tt)
	return errors.Wrap(err, "upserting timetable")
}

func (repo timetableRepository) GetTimetable(ctx context.Context, sem int, section string) (timetable.Timetable, error) {
	var tt timetable.Timetable
	err := repo.db.GetContext(ctx, &tt,
		`SELECT * FROM timetable WHERE semester = $1 AND section = $2`, sem, section)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return timetable.Timetable{}, timetable.ErrNotFound
		}
		return timetable.Timetable{}, errors.Wrap(err, "getting timetable")
	}
	return tt, nil
}
