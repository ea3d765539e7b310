package roster_test

import (
	"context"
	"testing"

	"github.com/dams-project/backend/core/roster"
	inmemdb "github.com/dams-project/backend/storage/database/inmem"
)

func setup(t *testing.T) *roster.Service {
	t.Helper()
	return roster.NewService(inmemdb.NewRosterRepository(inmemdb.NewDB()))
}

func saveSubject(t *testing.T, svc *roster.Service, code string, sem int, isLab bool) roster.Subject {
	t.Helper()
	sub, err := svc.SaveSubject(context.Background(), roster.NewSubject{
		Code:     code,
		Name:     "Subject " + code,
		Semester: sem,
		Credits:  4,
		IsLab:    isLab,
	})
	if err != nil {
		t.Fatalf("SaveSubject() failed: %v", err)
	}
	return sub
}

func TestService_AssignFaculty(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	saveSubject(t, svc, "CS301", 3, false)

	// unknown subject
	err := svc.AssignFaculty(ctx, roster.NewAssignment{SubjectCode: "CS999", Section: "A", FacultyID: "STF001"})
	if err != roster.ErrSubjectNotFound {
		t.Errorf("AssignFaculty() error = %v, want ErrSubjectNotFound", err)
	}

	if err = svc.AssignFaculty(ctx, roster.NewAssignment{SubjectCode: "CS301", Section: "A", FacultyID: "STF001"}); err != nil {
		t.Fatalf("AssignFaculty() failed: %v", err)
	}

	teaches, err := svc.Teaches(ctx, "STF001", "CS301", "A")
	if err != nil {
		t.Fatalf("Teaches() failed: %v", err)
	}
	if !teaches {
		t.Error("Teaches() = false, want true")
	}

	// another section is a separate slot
	if teaches, _ = svc.Teaches(ctx, "STF001", "CS301", "B"); teaches {
		t.Error("Teaches() for other section = true, want false")
	}

	// reassignment displaces the previous assignee
	if err = svc.AssignFaculty(ctx, roster.NewAssignment{SubjectCode: "CS301", Section: "A", FacultyID: "STF002"}); err != nil {
		t.Fatalf("AssignFaculty() failed: %v", err)
	}
	if teaches, _ = svc.Teaches(ctx, "STF001", "CS301", "A"); teaches {
		t.Error("Teaches() after reassignment = true, want false")
	}
	if teaches, _ = svc.Teaches(ctx, "STF002", "CS301", "A"); !teaches {
		t.Error("Teaches() for new assignee = false, want true")
	}
}

func TestService_AssignAdvisor(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	if err := svc.AssignAdvisor(ctx, roster.NewAdvisor{Semester: 3, Section: "A", FacultyID: "STF001"}); err != nil {
		t.Fatalf("AssignAdvisor() failed: %v", err)
	}

	adv, err := svc.Advisor(ctx, 3, "A")
	if err != nil {
		t.Fatalf("Advisor() failed: %v", err)
	}
	if adv.FacultyID != "STF001" {
		t.Errorf("Advisor() = %s, want STF001", adv.FacultyID)
	}

	// a class has exactly one advisor
	if err = svc.AssignAdvisor(ctx, roster.NewAdvisor{Semester: 3, Section: "A", FacultyID: "STF002"}); err != nil {
		t.Fatalf("AssignAdvisor() failed: %v", err)
	}
	adv, _ = svc.Advisor(ctx, 3, "A")
	if adv.FacultyID != "STF002" {
		t.Errorf("Advisor() after overwrite = %s, want STF002", adv.FacultyID)
	}
	if _, err = svc.AdvisorClass(ctx, "STF001"); err != roster.ErrAdvisorNotFound {
		t.Errorf("AdvisorClass() for displaced advisor error = %v, want ErrAdvisorNotFound", err)
	}

	// a faculty advises exactly one class: taking a new class frees the old one
	if err = svc.AssignAdvisor(ctx, roster.NewAdvisor{Semester: 5, Section: "B", FacultyID: "STF002"}); err != nil {
		t.Fatalf("AssignAdvisor() failed: %v", err)
	}
	if _, err = svc.Advisor(ctx, 3, "A"); err != roster.ErrAdvisorNotFound {
		t.Errorf("Advisor() for vacated class error = %v, want ErrAdvisorNotFound", err)
	}
	adv, err = svc.AdvisorClass(ctx, "STF002")
	if err != nil {
		t.Fatalf("AdvisorClass() failed: %v", err)
	}
	if adv.Semester != 5 || adv.Section != "B" {
		t.Errorf("AdvisorClass() = %+v, want sem 5 section B", adv)
	}
}

func TestService_FacultySubjects(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	saveSubject(t, svc, "CS301", 3, false)
	saveSubject(t, svc, "CS302", 3, true)
	saveSubject(t, svc, "CS501", 5, false)

	for _, code := range []string{"CS301", "CS302", "CS501"} {
		if err := svc.AssignFaculty(ctx, roster.NewAssignment{SubjectCode: code, Section: "A", FacultyID: "STF001"}); err != nil {
			t.Fatalf("AssignFaculty(%s) failed: %v", code, err)
		}
	}

	subs, err := svc.FacultySubjects(ctx, "STF001", 3, "A")
	if err != nil {
		t.Fatalf("FacultySubjects() failed: %v", err)
	}
	if len(subs) != 2 {
		t.Errorf("FacultySubjects() returned %d subjects, want 2 (semester filter)", len(subs))
	}
}
