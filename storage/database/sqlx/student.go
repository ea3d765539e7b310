package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/dams-project/backend/core/student"
)

type studentRepository struct {
	db *sqlx.DB
}

var _ student.Repository = (*studentRepository)(nil)

func NewStudentRepository(db *sqlx.DB) *studentRepository {
	return &studentRepository{db: db}
}

func (repo studentRepository) GetStudentByUSN(ctx context.Context, usn string) (student.Student, error) {
	var std student.Student
	err := repo.db.GetContext(ctx, &std, `SELECT * FROM student WHERE usn = $1`, usn)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return student.Student{}, student.ErrNotFound
		}
		return student.Student{}, errors.Wrap(err, "getting student")
	}
	return std, nil
}

func (repo studentRepository) QueryStudentsByClass(ctx context.Context, sem int, section string) ([]student.Student, error) {
	var stds []student.Student
	err := repo.db.SelectContext(ctx, &stds,
		`SELECT * FROM student WHERE semester = $1 AND section = $2 ORDER BY usn`, sem, section)
	if err != nil {
		return nil, errors.Wrap(err, "querying students by class")
	}
	return stds, nil
}

func (repo studentRepository) QueryAllStudents(ctx context.Context) ([]student.Student, error) {
	var stds []student.Student
	if err := repo.db.SelectContext(ctx, &stds, `SELECT * FROM student ORDER BY usn`); err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	return stds, nil
}

func (repo studentRepository) CreateStudent(ctx context.Context, std student.Student) (student.Student, error) {
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO student (usn, name, email, password_hash, semester, section, phone, join_year, created_at, updated_at)
		VALUES (:usn, :name, :email, :password_hash, :semester, :section, :phone, :join_year, :created_at, :updated_at)`,
		std)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "creating student")
	}
	return std, nil
}

func (repo studentRepository) UpdateStudent(ctx context.Context, std student.Student) (student.Student, error) {
	res, err := repo.db.NamedExecContext(ctx, `
		UPDATE student
		SET name = :name, email = :email, password_hash = :password_hash, semester = :semester,
		    section = :section, phone = :phone, join_year = :join_year, updated_at = :updated_at
		WHERE usn = :usn`,
		std)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "updating student")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return student.Student{}, student.ErrNotFound
	}
	return std, nil
}

func (repo studentRepository) DeleteStudentByUSN(ctx context.Context, usn string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM student WHERE usn = $1`, usn)
	if err != nil {
		return errors.Wrap(err, "deleting student")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return student.ErrNotFound
	}
	return nil
}

func (repo studentRepository) UpdateStudentPhoto(ctx context.Context, usn string, photo []byte, contentType string) error {
	res, err := repo.db.ExecContext(ctx,
		`UPDATE student SET photo = $1, photo_type = $2, updated_at = NOW() WHERE usn = $3`,
		photo, contentType, usn)
	if err != nil {
		return errors.Wrap(err, "updating student photo")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return student.ErrNotFound
	}
	return nil
}
