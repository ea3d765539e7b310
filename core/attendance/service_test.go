package attendance_test

import (
	"context"
	"log"
	"os"
	"testing"

	"github.com/dams-project/backend/core"
	"github.com/dams-project/backend/core/attendance"
	"github.com/dams-project/backend/core/student"
	emailsvc "github.com/dams-project/backend/services/email"
	logsvc "github.com/dams-project/backend/services/logger"
	inmemdb "github.com/dams-project/backend/storage/database/inmem"
)

func TestMain(m *testing.M) {
	core.Conf = &core.Config{
		Env:      "TEST",
		TestMode: true,
		AppName:  "DAMS",
	}
	os.Exit(m.Run())
}

type testEnv struct {
	svc      *attendance.Service
	students student.Repository
	mailSvc  *emailsvc.MockService
}

func setup(t *testing.T) testEnv {
	t.Helper()

	db := inmemdb.NewDB()
	students := inmemdb.NewStudentRepository(db)
	mailSvc := emailsvc.NewMockService()
	logger := logsvc.NewStdLogger(log.New(os.Stdout, "TEST : ", log.LstdFlags))

	return testEnv{
		svc:      attendance.NewService(inmemdb.NewAttendanceRepository(db), students, mailSvc, logger),
		students: students,
		mailSvc:  mailSvc,
	}
}

func createStudent(t *testing.T, repo student.Repository, usn string, sem int, section string) student.Student {
	t.Helper()
	std := student.Student{
		USN:      usn,
		Name:     "Student " + usn,
		Email:    usn + "@test.edu",
		Semester: sem,
		Section:  section,
	}
	std, err := repo.CreateStudent(context.Background(), std)
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return std
}

func summaryFor(t *testing.T, svc *attendance.Service, usn, subjectCode string) attendance.SubjectSummary {
	t.Helper()
	summaries, err := svc.Summary(context.Background(), usn)
	if err != nil {
		t.Fatalf("Summary() failed: %v", err)
	}
	for _, s := range summaries {
		if s.SubjectCode == subjectCode {
			return s
		}
	}
	t.Fatalf("no summary for subject %s", subjectCode)
	return attendance.SubjectSummary{}
}

func TestService_Submit(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	createStudent(t, env.students, "1AB21CS001", 3, "A")
	createStudent(t, env.students, "1AB21CS002", 3, "A")
	createStudent(t, env.students, "1AB21CS003", 3, "A")
	createStudent(t, env.students, "1AB21CS004", 3, "B") // other section

	sub := attendance.Submission{
		SubjectCode: "CS301",
		Semester:    3,
		Section:     "A",
		Date:        "2024-02-05",
		Hours:       2,
		AbsentUSNs:  []string{"1AB21CS002"},
	}
	recorded, err := env.svc.Submit(ctx, sub)
	if err != nil {
		t.Fatalf("Submit() failed: %v", err)
	}
	if recorded != 3 {
		t.Errorf("Submit() recorded = %d, want 3", recorded)
	}

	present := summaryFor(t, env.svc, "1AB21CS001", "CS301")
	if present.Attended != 2 || present.Total != 2 {
		t.Errorf("present student = %d/%d, want 2/2", present.Attended, present.Total)
	}
	absent := summaryFor(t, env.svc, "1AB21CS002", "CS301")
	if absent.Attended != 0 || absent.Total != 2 {
		t.Errorf("absent student = %d/%d, want 0/2", absent.Attended, absent.Total)
	}

	// resubmitting the same period inserts duplicates rather than replacing
	if _, err = env.svc.Submit(ctx, sub); err != nil {
		t.Fatalf("Submit() resubmission failed: %v", err)
	}
	doubled := summaryFor(t, env.svc, "1AB21CS001", "CS301")
	if doubled.Attended != 4 || doubled.Total != 4 {
		t.Errorf("after resubmission = %d/%d, want 4/4", doubled.Attended, doubled.Total)
	}

	// empty roster
	sub.Section = "D"
	if _, err = env.svc.Submit(ctx, sub); err != attendance.ErrEmptyRoster {
		t.Errorf("Submit() error = %v, want ErrEmptyRoster", err)
	}
}

func TestService_UpdateStatus(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	createStudent(t, env.students, "1AB21CS001", 3, "A")

	if _, err := env.svc.Submit(ctx, attendance.Submission{
		SubjectCode: "CS301", Semester: 3, Section: "A",
		Date: "2024-02-05", Hours: 1, AbsentUSNs: []string{"1AB21CS001"},
	}); err != nil {
		t.Fatalf("Submit() failed: %v", err)
	}

	err := env.svc.UpdateStatus(ctx, attendance.UpdateRecord{
		USN: "1AB21CS001", SubjectCode: "CS301", Date: "2024-02-05", Status: attendance.StatusPresent,
	})
	if err != nil {
		t.Fatalf("UpdateStatus() failed: %v", err)
	}

	s := summaryFor(t, env.svc, "1AB21CS001", "CS301")
	if s.Attended != 1 {
		t.Errorf("after correction attended = %d, want 1", s.Attended)
	}

	// unknown record
	err = env.svc.UpdateStatus(ctx, attendance.UpdateRecord{
		USN: "1AB21CS001", SubjectCode: "CS999", Date: "2024-02-05", Status: attendance.StatusAbsent,
	})
	if err != attendance.ErrRecordNotFound {
		t.Errorf("UpdateStatus() error = %v, want ErrRecordNotFound", err)
	}
}

func TestService_Alert(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	createStudent(t, env.students, "1AB21CS001", 3, "A")
	createStudent(t, env.students, "1AB21CS002", 3, "A")

	// 4 held hours, CS001 missed all of them: 0% for CS001, 100% for CS002
	for _, date := range []string{"2024-02-05", "2024-02-06"} {
		if _, err := env.svc.Submit(ctx, attendance.Submission{
			SubjectCode: "CS301", Semester: 3, Section: "A",
			Date: date, Hours: 2, AbsentUSNs: []string{"1AB21CS001"},
		}); err != nil {
			t.Fatalf("Submit() failed: %v", err)
		}
	}

	res, err := env.svc.Alert(ctx, "1AB21CS001")
	if err != nil {
		t.Fatalf("Alert() failed: %v", err)
	}
	if !res.Sent {
		t.Error("Alert() Sent = false, want true")
	}
	if len(res.Shortages) != 1 || res.Shortages[0].SubjectCode != "CS301" {
		t.Errorf("Alert() Shortages = %+v, want 1 entry for CS301", res.Shortages)
	}
	if got := len(env.mailSvc.SentMessages()); got != 1 {
		t.Errorf("sent messages = %d, want 1", got)
	}

	// within the cooldown window the shortage is still reported but no
	// second email goes out
	res, err = env.svc.Alert(ctx, "1AB21CS001")
	if err != nil {
		t.Fatalf("Alert() failed: %v", err)
	}
	if res.Sent {
		t.Error("Alert() Sent = true within cooldown, want false")
	}
	if len(res.Shortages) != 1 {
		t.Errorf("Alert() Shortages = %+v, want 1 entry", res.Shortages)
	}
	if got := len(env.mailSvc.SentMessages()); got != 1 {
		t.Errorf("sent messages = %d, want still 1", got)
	}

	// no shortage, no alert
	res, err = env.svc.Alert(ctx, "1AB21CS002")
	if err != nil {
		t.Fatalf("Alert() failed: %v", err)
	}
	if res.Sent || len(res.Shortages) != 0 {
		t.Errorf("Alert() = %+v, want nothing to report", res)
	}
}

func TestPercentage(t *testing.T) {
	tests := []struct {
		name            string
		attended, total int
		want            float64
	}{
		{name: "zero held", attended: 0, total: 0, want: 0},
		{name: "full", attended: 10, total: 10, want: 100},
		{name: "rounded to 2dp", attended: 2, total: 3, want: 66.67},
		{name: "none attended", attended: 0, total: 5, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := attendance.Percentage(tt.attended, tt.total); got != tt.want {
				t.Errorf("Percentage(%d, %d) = %v, want %v", tt.attended, tt.total, got, tt.want)
			}
		})
	}
}

func TestCumulate(t *testing.T) {
	totals := []attendance.MonthlyTotals{
		{Year: 2024, Month: 1, Attended: 10, Total: 20}, // 50%
		{Year: 2024, Month: 2, Attended: 20, Total: 20}, // 30/40 = 75%
		{Year: 2024, Month: 3, Attended: 9, Total: 20},  // 39/60 = 65%
	}
	got := attendance.Cumulate(totals)
	want := []int{50, 75, 65}
	if len(got) != len(want) {
		t.Fatalf("Cumulate() returned %d rows, want %d", len(got), len(want))
	}
	for i, pct := range want {
		if got[i].CumulativePercentage != pct {
			t.Errorf("month %d cumulative = %d, want %d", i+1, got[i].CumulativePercentage, pct)
		}
	}

	if out := attendance.Cumulate(nil); len(out) != 0 {
		t.Errorf("Cumulate(nil) = %v, want empty", out)
	}
}
