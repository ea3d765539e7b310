package attendance

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/mail"
	"time"

	"github.com/dams-project/backend/core"
	"github.com/dams-project/backend/core/student"
)

// AlertThreshold is the percentage below which a shortage alert is due.
const AlertThreshold = 75.0

// alertCooldown suppresses repeat alerts to the same student.
const alertCooldown = 15 * 24 * time.Hour

var (
	// errors
	ErrRecordNotFound = errors.New("attendance record not found")
	ErrEmptyRoster    = errors.New("no students in this class")
)

type (
	Repository interface {
		// InsertRecords appends records as-is; it never deduplicates.
		InsertRecords(ctx context.Context, recs []Record) error
		UpdateRecordStatus(ctx context.Context, usn, subjectCode string, date time.Time, status string) error

		QuerySubjectTotals(ctx context.Context, usn string) ([]SubjectTotals, error)
		// QueryMonthlyTotals returns rows in chronological order.
		QueryMonthlyTotals(ctx context.Context, usn, subjectCode string) ([]MonthlyTotals, error)
		// QueryClassTotals left-joins the class roster so students with no
		// records appear with zero totals. Totals count distinct dates.
		QueryClassTotals(ctx context.Context, sem int, section, subjectCode string) ([]ClassTotals, error)
		QueryStudentSubjects(ctx context.Context, usn string) ([]string, error)

		GetLastAlert(ctx context.Context, usn string) (time.Time, error) // zero time when never sent
		SaveAlert(ctx context.Context, usn string, sentAt time.Time) error
	}

	Service struct {
		repo     Repository
		students student.Repository
		mailSvc  core.EmailService
		logger   core.Logger
	}
)

func NewService(repo Repository, students student.Repository, mailSvc core.EmailService, logger core.Logger) *Service {
	return &Service{
		repo:     repo,
		students: students,
		mailSvc:  mailSvc,
		logger:   logger,
	}
}

// Submit fans one period out over the whole (semester, section) roster:
// one record per student, Absent iff the USN was listed absent.
// Resubmitting the same (subject, date) inserts duplicate rows; corrections
// go through UpdateStatus instead.
func (svc *Service) Submit(ctx context.Context, data Submission) (int, error) {
	date, err := time.Parse(DateLayout, data.Date)
	if err != nil {
		return 0, core.NewValidationError(err, core.FieldError{Field: "date", Error: "invalid date"})
	}

	roster, err := svc.students.QueryStudentsByClass(ctx, data.Semester, data.Section)
	if err != nil {
		return 0, err
	}
	if len(roster) == 0 {
		return 0, ErrEmptyRoster
	}

	absent := make(map[string]struct{}, len(data.AbsentUSNs))
	for _, usn := range data.AbsentUSNs {
		absent[usn] = struct{}{}
	}

	recs := make([]Record, 0, len(roster))
	for _, std := range roster {
		status := StatusPresent
		if _, ok := absent[std.USN]; ok {
			status = StatusAbsent
		}
		recs = append(recs, Record{
			USN:         std.USN,
			SubjectCode: data.SubjectCode,
			Semester:    data.Semester,
			Section:     data.Section,
			Date:        date,
			Hours:       data.Hours,
			Status:      status,
		})
	}

	if err = svc.repo.InsertRecords(ctx, recs); err != nil {
		return 0, err
	}
	return len(recs), nil
}

// UpdateStatus corrects a single record identified by (usn, subject, date).
func (svc *Service) UpdateStatus(ctx context.Context, data UpdateRecord) error {
	date, err := time.Parse(DateLayout, data.Date)
	if err != nil {
		return core.NewValidationError(err, core.FieldError{Field: "date", Error: "invalid date"})
	}
	return svc.repo.UpdateRecordStatus(ctx, data.USN, data.SubjectCode, date, data.Status)
}

// Summary rolls up a student's attendance per subject.
// A subject with no held hours reports 0%, never a division error.
func (svc *Service) Summary(ctx context.Context, usn string) ([]SubjectSummary, error) {
	totals, err := svc.repo.QuerySubjectTotals(ctx, usn)
	if err != nil {
		return nil, err
	}

	summaries := make([]SubjectSummary, 0, len(totals))
	for _, t := range totals {
		summaries = append(summaries, SubjectSummary{
			SubjectTotals: t,
			Percentage:    Percentage(t.Attended, t.Total),
		})
	}
	return summaries, nil
}

// Monthly returns per-month totals for one subject with a running cumulative
// percentage across months, oldest first.
func (svc *Service) Monthly(ctx context.Context, usn, subjectCode string) ([]MonthlySummary, error) {
	totals, err := svc.repo.QueryMonthlyTotals(ctx, usn, subjectCode)
	if err != nil {
		return nil, err
	}
	return Cumulate(totals), nil
}

// ClassReport rolls up every student of the class for one subject.
func (svc *Service) ClassReport(ctx context.Context, sem int, section, subjectCode string) ([]ClassReportRow, error) {
	totals, err := svc.repo.QueryClassTotals(ctx, sem, section, subjectCode)
	if err != nil {
		return nil, err
	}

	rows := make([]ClassReportRow, 0, len(totals))
	for _, t := range totals {
		rows = append(rows, ClassReportRow{
			ClassTotals: t,
			Percentage:  Percentage(t.Attended, t.Total),
		})
	}
	return rows, nil
}

// Subjects lists the subjects present in the student's attendance records.
func (svc *Service) Subjects(ctx context.Context, usn string) ([]string, error) {
	return svc.repo.QueryStudentSubjects(ctx, usn)
}

// Alert emails the student the subjects sitting below the threshold.
// A repeat alert within the cooldown window is suppressed; the shortage list
// is returned either way. Send failures are logged, never returned.
func (svc *Service) Alert(ctx context.Context, usn string) (AlertResult, error) {
	summaries, err := svc.Summary(ctx, usn)
	if err != nil {
		return AlertResult{}, err
	}

	var res AlertResult
	for _, s := range summaries {
		if s.Percentage < AlertThreshold {
			res.Shortages = append(res.Shortages, s)
		}
	}
	if len(res.Shortages) == 0 {
		return res, nil
	}

	lastSent, err := svc.repo.GetLastAlert(ctx, usn)
	if err != nil {
		return AlertResult{}, err
	}
	if !lastSent.IsZero() && time.Since(lastSent) < alertCooldown {
		return res, nil
	}

	std, err := svc.students.GetStudentByUSN(ctx, usn)
	if err != nil {
		return AlertResult{}, err
	}

	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: std.Name, Address: std.Email}},
		Subject:      "Attendance shortage alert",
		TemplateName: "attendance-alert",
		TemplateData: struct {
			Name      string
			Threshold int
			Shortages []SubjectSummary
		}{Name: std.Name, Threshold: int(AlertThreshold), Shortages: res.Shortages},
	})

	if err = svc.repo.SaveAlert(ctx, usn, time.Now().UTC()); err != nil {
		svc.logger.Error(fmt.Sprintf("recording attendance alert for %s: %v", usn, err), err)
	}
	res.Sent = true
	return res, nil
}

// Percentage computes attended/total as a percentage rounded to 2 decimals.
// 0/0 is defined as 0.
func Percentage(attended, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(attended)/float64(total)*10000) / 100
}

// Cumulate derives the running cumulative percentage over chronologically
// ordered monthly totals, rounded to the nearest integer.
func Cumulate(totals []MonthlyTotals) []MonthlySummary {
	summaries := make([]MonthlySummary, 0, len(totals))
	var attended, total int
	for _, t := range totals {
		attended += t.Attended
		total += t.Total

		var pct int
		if total > 0 {
			pct = int(math.Round(float64(attended) / float64(total) * 100))
		}
		summaries = append(summaries, MonthlySummary{MonthlyTotals: t, CumulativePercentage: pct})
	}
	return summaries
}
