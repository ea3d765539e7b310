package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/dams-project/backend/core/faculty"
)

type facultyRepository struct {
	db *sqlx.DB
}

var _ faculty.Repository = (*facultyRepository)(nil)

func NewFacultyRepository(db *sqlx.DB) *facultyRepository {
	return &facultyRepository{db: db}
}

func (repo facultyRepository) GetFacultyByID(ctx context.Context, id string) (faculty.Faculty, error) {
	var fac faculty.Faculty
	err := repo.db.GetContext(ctx, &fac, `SELECT * FROM faculty WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return faculty.Faculty{}, faculty.ErrNotFound
		}
		return faculty.Faculty{}, errors.Wrap(err, "getting faculty")
	}
	return fac, nil
}

func (repo facultyRepository) QueryAllFaculty(ctx context.Context) ([]faculty.Faculty, error) {
	var facs []faculty.Faculty
	if err := repo.db.SelectContext(ctx, &facs, `SELECT * FROM faculty ORDER BY name`); err != nil {
		return nil, errors.Wrap(err, "querying faculty")
	}
	return facs, nil
}

func (repo facultyRepository) CreateFaculty(ctx context.Context, fac faculty.Faculty) (faculty.Faculty, error) {
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO faculty (id, name, email, password_hash, phone, position, created_at, updated_at)
		VALUES (:id, :name, :email, :password_hash, :phone, :position, :created_at, :updated_at)`,
		fac)
	if err != nil {
		return faculty.Faculty{}, errors.Wrap(err, "creating faculty")
	}
	return fac, nil
}

func (repo facultyRepository) UpdateFaculty(ctx context.Context, fac faculty.Faculty) (faculty.Faculty, error) {
	res, err := repo.db.NamedExecContext(ctx, `
		UPDATE faculty
		SET name = :name, email = :email, password_hash = :password_hash, phone = :phone,
		    position = :position, updated_at = :updated_at
		WHERE id = :id`,
		fac)
	if err != nil {
		return faculty.Faculty{}, errors.Wrap(err, "updating faculty")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return faculty.Faculty{}, faculty.ErrNotFound
	}
	return fac, nil
}

func (repo facultyRepository) DeleteFacultyByID(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM faculty WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting faculty")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return faculty.ErrNotFound
	}
	return nil
}

func (repo facultyRepository) UpdateFacultyPhoto(ctx context.Context, id string, photo []byte, contentType string) error {
	res, err := repo.db.ExecContext(ctx,
		`UPDATE faculty SET photo = $1, photo_type = $2, updated_at = NOW() WHERE id = $3`,
		photo, contentType, id)
	if err != nil {
		return errors.Wrap(err, "updating faculty photo")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return faculty.ErrNotFound
	}
	return nil
}
