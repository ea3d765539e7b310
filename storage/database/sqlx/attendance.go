package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/dams-project/backend/core/attendance"
)

type attendanceRepository struct {
	db *sqlx.DB
}

var _ attendance.Repository = (*attendanceRepository)(nil)

func NewAttendanceRepository(db *sqlx.DB) *attendanceRepository {
	return &attendanceRepository{db: db}
}

func (repo attendanceRepository) InsertRecords(ctx context.Context, recs []attendance.Record) error {
	if len(recs) == 0 {
		return nil
	}
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO attendance (usn, subject_code, semester, section, date, hours, status)
		VALUES (:usn, :subject_code, :semester, :section, :date, :hours, :status)`,
		recs)
	return errors.Wrap(err, "inserting attendance")
}

func (repo attendanceRepository) UpdateRecordStatus(ctx context.Context, usn, subjectCode string, date time.Time, status string) error {
	res, err := repo.db.ExecContext(ctx,
		`UPDATE attendance SET status = $1 WHERE usn = $2 AND subject_code = $3 AND date = $4`,
		status, usn, subjectCode, date)
	if err != nil {
		return errors.Wrap(err, "updating attendance")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return attendance.ErrRecordNotFound
	}
	return nil
}

func (repo attendanceRepository) QuerySubjectTotals(ctx context.Context, usn string) ([]attendance.SubjectTotals, error) {
	var totals []attendance.SubjectTotals
	err := repo.db.SelectContext(ctx, &totals, `
		SELECT a.subject_code,
		       s.name AS subject_name,
		       COALESCE(SUM(a.hours) FILTER (WHERE a.status = 'Present'), 0) AS attended,
		       COALESCE(SUM(a.hours), 0) AS total
		FROM attendance a
		JOIN subjects s ON s.code = a.subject_code
		WHERE a.usn = $1
		GROUP BY a.subject_code, s.name
		ORDER BY a.subject_code`,
		usn)
	if err != nil {
		return nil, errors.Wrap(err, "querying subject totals")
	}
	return totals, nil
}

func (repo attendanceRepository) QueryMonthlyTotals(ctx context.Context, usn, subjectCode string) ([]attendance.MonthlyTotals, error) {
	var totals []attendance.MonthlyTotals
	err := repo.db.SelectContext(ctx, &totals, `
		SELECT EXTRACT(YEAR FROM date)::int AS year,
		       EXTRACT(MONTH FROM date)::int AS month,
		       COALESCE(SUM(hours) FILTER (WHERE status = 'Present'), 0) AS attended,
		       COALESCE(SUM(hours), 0) AS total
		FROM attendance
		WHERE usn = $1 AND subject_code = $2
		GROUP BY year, month
		ORDER BY year, month`,
		usn, subjectCode)
	if err != nil {
		return nil, errors.Wrap(err, "querying monthly totals")
	}
	return totals, nil
}

// QueryClassTotals counts distinct dates so duplicated submissions do not
// inflate a single student's share relative to the class.
func (repo attendanceRepository) QueryClassTotals(ctx context.Context, sem int, section, subjectCode string) ([]attendance.ClassTotals, error) {
	var totals []attendance.ClassTotals
	err := repo.db.SelectContext(ctx, &totals, `
		SELECT st.usn,
		       st.name,
		       COALESCE(COUNT(DISTINCT a.date) FILTER (WHERE a.status = 'Present'), 0) AS attended,
		       COALESCE(COUNT(DISTINCT a.date), 0) AS total
		FROM student st
		LEFT JOIN attendance a ON a.usn = st.usn AND a.subject_code = $3
		WHERE st.semester = $1 AND st.section = $2
		GROUP BY st.usn, st.name
		ORDER BY st.usn`,
		sem, section, subjectCode)
	if err != nil {
		return nil, errors.Wrap(err, "querying class totals")
	}
	return totals, nil
}

func (repo attendanceRepository) QueryStudentSubjects(ctx context.Context, usn string) ([]string, error) {
	var subs []string
	err := repo.db.SelectContext(ctx, &subs,
		`SELECT DISTINCT subject_code FROM attendance WHERE usn = $1 ORDER BY subject_code`, usn)
	if err != nil {
		return nil, errors.Wrap(err, "querying student subjects")
	}
	return subs, nil
}

func (repo attendanceRepository) GetLastAlert(ctx context.Context, usn string) (time.Time, error) {
	var sentAt time.Time
	err := repo.db.GetContext(ctx, &sentAt, `SELECT sent_at FROM attendance_alerts WHERE usn = $1`, usn)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, nil
		}
		return time.Time{}, errors.Wrap(err, "getting last alert")
	}
	return sentAt, nil
}

func (repo attendanceRepository) SaveAlert(ctx context.Context, usn string, sentAt time.Time) error {
	_, err := repo.db.ExecContext(ctx, `
		INSERT INTO attendance_alerts (usn, sent_at) VALUES ($1, $2)
		ON CONFLICT (usn) DO UPDATE SET sent_at = EXCLUDED.sent_at`,
		usn, sentAt)
	return errors.Wrap(err, "saving alert")
}
