package sqlxrepos

import (
	"context"
	"math"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/dams-project/backend/core/marks"
)

type marksRepository struct {
	db *sqlx.DB
}

var _ marks.Repository = (*marksRepository)(nil)

func NewMarksRepository(db *sqlx.DB) *marksRepository {
	return &marksRepository{db: db}
}

func (repo marksRepository) UpsertMarks(ctx context.Context, usn string, sem int, mks []marks.Mark) error {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning tx")
	}
	defer func() { _ = tx.Rollback() }()

	for _, mk := range mks {
		if _, err = tx.NamedExecContext(ctx, `
			INSERT INTO marks (usn, semester, subject_code, cie1, cie2, lab, assignment, external)
			VALUES (:usn, :semester, :subject_code, :cie1, :cie2, :lab, :assignment, :external)
			ON CONFLICT (usn, semester, subject_code) DO UPDATE
			SET cie1 = EXCLUDED.cie1, cie2 = EXCLUDED.cie2, lab = EXCLUDED.lab,
			    assignment = EXCLUDED.assignment, external = EXCLUDED.external`,
			mk); err != nil {
			return errors.Wrap(err, "upserting mark")
		}
	}
	return errors.Wrap(tx.Commit(), "committing marks")
}

func (repo marksRepository) QueryStudentMarks(ctx context.Context, usn string, sem int) ([]marks.MarkRow, error) {
	q := `
		SELECT m.usn, m.semester, m.subject_code, m.cie1, m.cie2, m.lab, m.assignment, m.external,
		       s.name AS subject_name, s.credits, s.is_lab
		FROM marks m
		JOIN subjects s ON s.code = m.subject_code
		WHERE m.usn = $1`
	args := []interface{}{usn}
	if sem > 0 {
		q += ` AND m.semester = $2`
		args = append(args, sem)
	}
	q += ` ORDER BY m.semester, m.subject_code`

	var rows []marks.MarkRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying student marks")
	}
	return rows, nil
}

func (repo marksRepository) QueryClassMarks(ctx context.Context, sem int, section, subjectCode string) ([]marks.ClassMarkRow, error) {
	var rows []marks.ClassMarkRow
	err := repo.db.SelectContext(ctx, &rows, `
		SELECT st.usn, st.name, m.semester, m.subject_code,
		       m.cie1, m.cie2, m.lab, m.assignment, m.external, s.is_lab
		FROM marks m
		JOIN student st ON st.usn = m.usn
		JOIN subjects s ON s.code = m.subject_code
		WHERE m.semester = $1 AND st.section = $2 AND m.subject_code = $3
		ORDER BY st.usn`,
		sem, section, subjectCode)
	if err != nil {
		return nil, errors.Wrap(err, "querying class marks")
	}
	return rows, nil
}

// SaveSgpaCgpa upserts the semester row, recomputes the mean over all real
// semester rows and stores it in the sentinel semester 0 row, all in one
// transaction.
func (repo marksRepository) SaveSgpaCgpa(ctx context.Context, usn string, sem int, sgpa float64) (float64, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, errors.Wrap(err, "beginning tx")
	}
	defer func() { _ = tx.Rollback() }()

	if _, err = tx.ExecContext(ctx, `
		INSERT INTO student_sgpa (usn, semester, sgpa) VALUES ($1, $2, $3)
		ON CONFLICT (usn, semester) DO UPDATE SET sgpa = EXCLUDED.sgpa`,
		usn, sem, sgpa); err != nil {
		return 0, errors.Wrap(err, "upserting sgpa")
	}

	var cgpa float64
	if err = tx.GetContext(ctx, &cgpa,
		`SELECT AVG(sgpa) FROM student_sgpa WHERE usn = $1 AND semester > 0`, usn); err != nil {
		return 0, errors.Wrap(err, "averaging sgpa")
	}
	cgpa = math.Round(cgpa*100) / 100

	if _, err = tx.ExecContext(ctx, `
		INSERT INTO student_sgpa (usn, semester, sgpa) VALUES ($1, 0, $2)
		ON CONFLICT (usn, semester) DO UPDATE SET sgpa = EXCLUDED.sgpa`,
		usn, cgpa); err != nil {
		return 0, errors.Wrap(err, "upserting cgpa")
	}

	if err = tx.Commit(); err != nil {
		return 0, errors.Wrap(err, "committing sgpa")
	}
	return cgpa, nil
}

func (repo marksRepository) QuerySgpa(ctx context.Context, usn string) ([]marks.Sgpa, error) {
	var rows []marks.Sgpa
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT * FROM student_sgpa WHERE usn = $1 ORDER BY semester`, usn)
	if err != nil {
		return nil, errors.Wrap(err, "querying sgpa")
	}
	return rows, nil
}
