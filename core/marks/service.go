package marks

import (
	"context"
	"errors"
	"net/mail"

	"github.com/dams-project/backend/core"
	"github.com/dams-project/backend/core/student"
)

var (
	// errors
	ErrNotFound = errors.New("marks not found")
)

type (
	Repository interface {
		// UpsertMarks writes the whole batch in one transaction; either all
		// subject rows for the (usn, semester) land or none do.
		UpsertMarks(ctx context.Context, usn string, sem int, mks []Mark) error
		// QueryStudentMarks joins subject metadata; sem 0 means all semesters.
		QueryStudentMarks(ctx context.Context, usn string, sem int) ([]MarkRow, error)
		QueryClassMarks(ctx context.Context, sem int, section, subjectCode string) ([]ClassMarkRow, error)

		// SaveSgpaCgpa upserts the semester row and recomputes the sentinel
		// semester 0 CGPA row in the same transaction, returning the new CGPA.
		SaveSgpaCgpa(ctx context.Context, usn string, sem int, sgpa float64) (float64, error)
		QuerySgpa(ctx context.Context, usn string) ([]Sgpa, error)
	}

	Service struct {
		repo     Repository
		students student.Repository
		mailSvc  core.EmailService
	}
)

func NewService(repo Repository, students student.Repository, mailSvc core.EmailService) *Service {
	return &Service{
		repo:     repo,
		students: students,
		mailSvc:  mailSvc,
	}
}

// Upsert writes a student's marks for one semester atomically, then notifies
// the student once by email. The notification is best-effort: it never rolls
// back or fails the write.
func (svc *Service) Upsert(ctx context.Context, data UpsertMarks) error {
	std, err := svc.students.GetStudentByUSN(ctx, data.USN)
	if err != nil {
		return err
	}

	mks := make([]Mark, 0, len(data.Subjects))
	for _, sub := range data.Subjects {
		mks = append(mks, Mark{
			USN:         data.USN,
			Semester:    data.Semester,
			SubjectCode: sub.SubjectCode,
			CIE1:        float64(sub.CIE1),
			CIE2:        float64(sub.CIE2),
			Lab:         float64(sub.Lab),
			Assignment:  float64(sub.Assignment),
			External:    float64(sub.External),
		})
	}

	if err = svc.repo.UpsertMarks(ctx, data.USN, data.Semester, mks); err != nil {
		return err
	}

	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: std.Name, Address: std.Email}},
		Subject:      "Marks posted",
		TemplateName: "marks-posted",
		TemplateData: struct {
			Name     string
			Semester int
		}{Name: std.Name, Semester: data.Semester},
	})
	return nil
}

// StudentView returns a student's marks with the derived values applied.
// sem 0 returns all semesters.
func (svc *Service) StudentView(ctx context.Context, usn string, sem int) ([]StudentMark, error) {
	rows, err := svc.repo.QueryStudentMarks(ctx, usn, sem)
	if err != nil {
		return nil, err
	}

	view := make([]StudentMark, 0, len(rows))
	for _, row := range rows {
		view = append(view, StudentMark{
			MarkRow:    row,
			Evaluation: Evaluate(row.CIE1, row.CIE2, row.Lab, row.Assignment, row.External, row.IsLab),
		})
	}
	return view, nil
}

// Report returns the class-level marks for one subject, optionally filtered
// by result ("PASS" or "FAIL"; empty keeps everything).
func (svc *Service) Report(ctx context.Context, sem int, section, subjectCode, resultFilter string) ([]ReportRow, error) {
	rows, err := svc.repo.QueryClassMarks(ctx, sem, section, subjectCode)
	if err != nil {
		return nil, err
	}

	report := make([]ReportRow, 0, len(rows))
	for _, row := range rows {
		ev := Evaluate(row.CIE1, row.CIE2, row.Lab, row.Assignment, row.External, row.IsLab)
		if resultFilter != "" && ev.Result != resultFilter {
			continue
		}
		report = append(report, ReportRow{ClassMarkRow: row, Evaluation: ev})
	}
	return report, nil
}

// SaveSgpaCgpa records a semester SGPA and returns the recomputed CGPA.
func (svc *Service) SaveSgpaCgpa(ctx context.Context, data SaveSgpa) (float64, error) {
	if _, err := svc.students.GetStudentByUSN(ctx, data.USN); err != nil {
		return 0, err
	}
	return svc.repo.SaveSgpaCgpa(ctx, data.USN, data.Semester, data.Sgpa)
}

// SgpaHistory returns the per-semester SGPA rows plus the sentinel CGPA row.
func (svc *Service) SgpaHistory(ctx context.Context, usn string) ([]Sgpa, error) {
	return svc.repo.QuerySgpa(ctx, usn)
}
