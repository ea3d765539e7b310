package marks_test

import (
	"context"
	"os"
	"testing"

	"github.com/dams-project/backend/core"
	"github.com/dams-project/backend/core/marks"
	"github.com/dams-project/backend/core/roster"
	"github.com/dams-project/backend/core/student"
	emailsvc "github.com/dams-project/backend/services/email"
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
	svc      *marks.Service
	students student.Repository
	roster   *roster.Service
	mailSvc  *emailsvc.MockService
}

func setup(t *testing.T) testEnv {
	t.Helper()

	db := inmemdb.NewDB()
	students := inmemdb.NewStudentRepository(db)
	mailSvc := emailsvc.NewMockService()

	return testEnv{
		svc:      marks.NewService(inmemdb.NewMarksRepository(db), students, mailSvc),
		students: students,
		roster:   roster.NewService(inmemdb.NewRosterRepository(db)),
		mailSvc:  mailSvc,
	}
}

func createStudent(t *testing.T, repo student.Repository, usn string, section string) student.Student {
	t.Helper()
	std := student.Student{
		USN:      usn,
		Name:     "Student " + usn,
		Email:    usn + "@test.edu",
		Semester: 3,
		Section:  section,
	}
	std, err := repo.CreateStudent(context.Background(), std)
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return std
}

func saveSubject(t *testing.T, svc *roster.Service, code string, isLab bool) {
	t.Helper()
	if _, err := svc.SaveSubject(context.Background(), roster.NewSubject{
		Code: code, Name: "Subject " + code, Semester: 3, Credits: 4, IsLab: isLab,
	}); err != nil {
		t.Fatalf("SaveSubject() failed: %v", err)
	}
}

func TestService_Upsert(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	std := createStudent(t, env.students, "1AB21CS001", "A")
	saveSubject(t, env.roster, "CS301", false)

	data := marks.UpsertMarks{
		USN:      std.USN,
		Semester: 3,
		Subjects: []marks.SubjectMarks{
			{SubjectCode: "CS301", CIE1: 40, CIE2: 40, Lab: 5, Assignment: 5, External: 40},
		},
	}
	if err := env.svc.Upsert(ctx, data); err != nil {
		t.Fatalf("Upsert() failed: %v", err)
	}

	// one notification per batch
	if got := len(env.mailSvc.SentMessages()); got != 1 {
		t.Errorf("sent messages = %d, want 1", got)
	}

	view, err := env.svc.StudentView(ctx, std.USN, 3)
	if err != nil {
		t.Fatalf("StudentView() failed: %v", err)
	}
	if len(view) != 1 {
		t.Fatalf("StudentView() returned %d rows, want 1", len(view))
	}
	got := view[0]
	if got.Internal != 50 || got.Total != 90 || got.Result != marks.ResultPass {
		t.Errorf("derived = internal %v total %v result %s, want 50/90/PASS", got.Internal, got.Total, got.Result)
	}
	if got.SubjectName != "Subject CS301" {
		t.Errorf("SubjectName = %q, want joined subject metadata", got.SubjectName)
	}

	// unknown student: nothing written, nothing sent
	env.mailSvc.Reset()
	data.USN = "1AB21CS999"
	if err = env.svc.Upsert(ctx, data); err != student.ErrNotFound {
		t.Errorf("Upsert() error = %v, want student.ErrNotFound", err)
	}
	if got := len(env.mailSvc.SentMessages()); got != 0 {
		t.Errorf("sent messages = %d, want 0", got)
	}
}

func TestService_Report(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	passStd := createStudent(t, env.students, "1AB21CS001", "A")
	failStd := createStudent(t, env.students, "1AB21CS002", "A")
	createStudent(t, env.students, "1AB21CS003", "B") // other section
	saveSubject(t, env.roster, "CS301", false)

	upsert := func(usn string, external marks.FlexNum) {
		t.Helper()
		if err := env.svc.Upsert(ctx, marks.UpsertMarks{
			USN: usn, Semester: 3,
			Subjects: []marks.SubjectMarks{
				{SubjectCode: "CS301", CIE1: 40, CIE2: 40, Lab: 5, Assignment: 5, External: external},
			},
		}); err != nil {
			t.Fatalf("Upsert(%s) failed: %v", usn, err)
		}
	}
	upsert(passStd.USN, 40)
	upsert(failStd.USN, 10)

	report, err := env.svc.Report(ctx, 3, "A", "CS301", "")
	if err != nil {
		t.Fatalf("Report() failed: %v", err)
	}
	if len(report) != 2 {
		t.Errorf("Report() returned %d rows, want 2", len(report))
	}

	passed, err := env.svc.Report(ctx, 3, "A", "CS301", marks.ResultPass)
	if err != nil {
		t.Fatalf("Report() failed: %v", err)
	}
	if len(passed) != 1 || passed[0].USN != passStd.USN {
		t.Errorf("Report(PASS) = %+v, want only %s", passed, passStd.USN)
	}

	failed, err := env.svc.Report(ctx, 3, "A", "CS301", marks.ResultFail)
	if err != nil {
		t.Fatalf("Report() failed: %v", err)
	}
	if len(failed) != 1 || failed[0].USN != failStd.USN {
		t.Errorf("Report(FAIL) = %+v, want only %s", failed, failStd.USN)
	}
}

func TestService_SaveSgpaCgpa(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	std := createStudent(t, env.students, "1AB21CS001", "A")

	// unknown student
	if _, err := env.svc.SaveSgpaCgpa(ctx, marks.SaveSgpa{USN: "1AB21CS999", Semester: 1, Sgpa: 8}); err != student.ErrNotFound {
		t.Errorf("SaveSgpaCgpa() error = %v, want student.ErrNotFound", err)
	}

	cgpa, err := env.svc.SaveSgpaCgpa(ctx, marks.SaveSgpa{USN: std.USN, Semester: 1, Sgpa: 8})
	if err != nil {
		t.Fatalf("SaveSgpaCgpa() failed: %v", err)
	}
	if cgpa != 8 {
		t.Errorf("CGPA after one semester = %v, want 8", cgpa)
	}

	cgpa, err = env.svc.SaveSgpaCgpa(ctx, marks.SaveSgpa{USN: std.USN, Semester: 2, Sgpa: 9})
	if err != nil {
		t.Fatalf("SaveSgpaCgpa() failed: %v", err)
	}
	if cgpa != 8.5 {
		t.Errorf("CGPA after two semesters = %v, want 8.5", cgpa)
	}

	// re-posting a semester replaces, not appends
	cgpa, err = env.svc.SaveSgpaCgpa(ctx, marks.SaveSgpa{USN: std.USN, Semester: 2, Sgpa: 7})
	if err != nil {
		t.Fatalf("SaveSgpaCgpa() failed: %v", err)
	}
	if cgpa != 7.5 {
		t.Errorf("CGPA after correction = %v, want 7.5", cgpa)
	}

	history, err := env.svc.SgpaHistory(ctx, std.USN)
	if err != nil {
		t.Fatalf("SgpaHistory() failed: %v", err)
	}
	// two semester rows plus the sentinel CGPA row
	if len(history) != 3 {
		t.Fatalf("SgpaHistory() returned %d rows, want 3", len(history))
	}
	if history[0].Semester != 0 || history[0].Value != 7.5 {
		t.Errorf("sentinel row = %+v, want semester 0 with CGPA 7.5", history[0])
	}
}
