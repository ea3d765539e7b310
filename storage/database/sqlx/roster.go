package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/dams-project/backend/core/roster"
)

type rosterRepository struct {
	db *sqlx.DB
}

var _ roster.Repository = (*rosterRepository)(nil)

func NewRosterRepository(db *sqlx.DB) *rosterRepository {
	return &rosterRepository{db: db}
}

func (repo rosterRepository) GetSubject(ctx context.Context, code string) (roster.Subject, error) {
	var sub roster.Subject
	err := repo.db.GetContext(ctx, &sub, `SELECT * FROM subjects WHERE code = $1`, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return roster.Subject{}, roster.ErrSubjectNotFound
		}
		return roster.Subject{}, errors.Wrap(err, "getting subject")
	}
	return sub, nil
}

func (repo rosterRepository) QuerySubjectsBySemester(ctx context.Context, sem int) ([]roster.Subject, error) {
	var subs []roster.Subject
	err := repo.db.SelectContext(ctx, &subs, `SELECT * FROM subjects WHERE semester = $1 ORDER BY code`, sem)
	if err != nil {
		return nil, errors.Wrap(err, "querying subjects")
	}
	return subs, nil
}

func (repo rosterRepository) UpsertSubject(ctx context.Context, sub roster.Subject) (roster.Subject, error) {
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO subjects (code, name, semester, credits, is_lab)
		VALUES (:code, :name, :semester, :credits, :is_lab)
		ON CONFLICT (code) DO UPDATE
		SET name = EXCLUDED.name, semester = EXCLUDED.semester,
		    credits = EXCLUDED.credits, is_lab = EXCLUDED.is_lab`,
		sub)
	if err != nil {
		return roster.Subject{}, errors.Wrap(err, "upserting subject")
	}
	return sub, nil
}

func (repo rosterRepository) SaveAssignment(ctx context.Context, a roster.FacultyAssignment) error {
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO faculty_subject (subject_code, section, faculty_id, assigned_at)
		VALUES (:subject_code, :section, :faculty_id, :assigned_at)
		ON CONFLICT (subject_code, section) DO UPDATE
		SET faculty_id = EXCLUDED.faculty_id, assigned_at = EXCLUDED.assigned_at`,
		a)
	if err != nil {
		return errors.Wrap(err, "saving assignment")
	}
	return nil
}

func (repo rosterRepository) GetAssignment(ctx context.Context, subjectCode, section string) (roster.FacultyAssignment, error) {
	var a roster.FacultyAssignment
	err := repo.db.GetContext(ctx, &a,
		`SELECT * FROM faculty_subject WHERE subject_code = $1 AND section = $2`, subjectCode, section)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return roster.FacultyAssignment{}, roster.ErrAssignmentNotFound
		}
		return roster.FacultyAssignment{}, errors.Wrap(err, "getting assignment")
	}
	return a, nil
}

func (repo rosterRepository) QueryAssignmentsByFaculty(ctx context.Context, facultyID string) ([]roster.FacultyAssignment, error) {
	var as []roster.FacultyAssignment
	err := repo.db.SelectContext(ctx, &as,
		`SELECT * FROM faculty_subject WHERE faculty_id = $1 ORDER BY subject_code, section`, facultyID)
	if err != nil {
		return nil, errors.Wrap(err, "querying assignments")
	}
	return as, nil
}

// SaveAdvisor frees the faculty's previous class and the class's previous
// advisor in the same transaction, then seats the new advisor.
func (repo rosterRepository) SaveAdvisor(ctx context.Context, a roster.ClassAdvisor) error {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning tx")
	}
	defer func() { _ = tx.Rollback() }()

	if _, err = tx.ExecContext(ctx,
		`DELETE FROM class_advisors WHERE (semester = $1 AND section = $2) OR faculty_id = $3`,
		a.Semester, a.Section, a.FacultyID); err != nil {
		return errors.Wrap(err, "clearing previous advisor")
	}
	if _, err = tx.NamedExecContext(ctx, `
		INSERT INTO class_advisors (semester, section, faculty_id, assigned_at)
		VALUES (:semester, :section, :faculty_id, :assigned_at)`,
		a); err != nil {
		return errors.Wrap(err, "inserting advisor")
	}
	return errors.Wrap(tx.Commit(), "committing advisor")
}

func (repo rosterRepository) GetAdvisor(ctx context.Context, sem int, section string) (roster.ClassAdvisor, error) {
	var a roster.ClassAdvisor
	err := repo.db.GetContext(ctx, &a,
		`SELECT * FROM class_advisors WHERE semester = $1 AND section = $2`, sem, section)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return roster.ClassAdvisor{}, roster.ErrAdvisorNotFound
		}
		return roster.ClassAdvisor{}, errors.Wrap(err, "getting advisor")
	}
	return a, nil
}

func (repo rosterRepository) GetAdvisorClass(ctx context.Context, facultyID string) (roster.ClassAdvisor, error) {
	var a roster.ClassAdvisor
	err := repo.db.GetContext(ctx, &a, `SELECT * FROM class_advisors WHERE faculty_id = $1`, facultyID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return roster.ClassAdvisor{}, roster.ErrAdvisorNotFound
		}
		return roster.ClassAdvisor{}, errors.Wrap(err, "getting advisor class")
	}
	return a, nil
}

func (repo rosterRepository) QueryAllAdvisors(ctx context.Context) ([]roster.ClassAdvisor, error) {
	var as []roster.ClassAdvisor
	err := repo.db.SelectContext(ctx, &as, `SELECT * FROM class_advisors ORDER BY semester, section`)
	if err != nil {
		return nil, errors.Wrap(err, "querying advisors")
	}
	return as, nil
}
