package announcement_test

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/dams-project/backend/core"
	"github.com/dams-project/backend/core/announcement"
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
	svc      *announcement.Service
	students student.Repository
	mailSvc  *emailsvc.MockService
}

func setup(t *testing.T) testEnv {
	t.Helper()

	db := inmemdb.NewDB()
	students := inmemdb.NewStudentRepository(db)
	mailSvc := emailsvc.NewMockService()
	return testEnv{
		svc:      announcement.NewService(inmemdb.NewAnnouncementRepository(db), students, mailSvc),
		students: students,
		mailSvc:  mailSvc,
	}
}

func seedStudents(t *testing.T, repo student.Repository, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		usn := fmt.Sprintf("1AB21CS%03d", i+1)
		if _, err := repo.CreateStudent(context.Background(), student.Student{
			USN:      usn,
			Name:     "Student " + usn,
			Email:    usn + "@test.edu",
			Semester: 3,
			Section:  "A",
		}); err != nil {
			t.Fatalf("CreateStudent() failed: %v", err)
		}
	}
}

func TestService_Publish(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	seedStudents(t, env.students, 3)

	a, err := env.svc.Publish(ctx, "admin-1", announcement.NewAnnouncement{
		Title:    "Placement drive",
		Message:  "Infosys on campus next week.",
		Category: announcement.CategoryPlacement,
	})
	if err != nil {
		t.Fatalf("Publish() failed: %v", err)
	}
	if a.ID == 0 {
		t.Error("Publish() did not assign an ID")
	}
	if a.AuthorID != "admin-1" {
		t.Errorf("AuthorID = %q, want admin-1", a.AuthorID)
	}
	if a.HasAttachment() {
		t.Error("announcement without a file should have no attachment")
	}

	// 3 students fit in one BCC batch
	sent := env.mailSvc.SentMessages()
	if len(sent) != 1 {
		t.Fatalf("broadcast sent %d messages, want 1", len(sent))
	}
	if got := len(sent[0].Bcc); got != 3 {
		t.Errorf("BCC recipients = %d, want 3", got)
	}
	if sent[0].Subject != "Placement drive" {
		t.Errorf("Subject = %q, want announcement title", sent[0].Subject)
	}
}

func TestService_Publish_BatchesBroadcast(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	// 101 students overflow the 100-recipient batch by one
	seedStudents(t, env.students, 101)

	if _, err := env.svc.Publish(ctx, "admin-1", announcement.NewAnnouncement{
		Title: "Exam schedule", Message: "See attached.", Category: announcement.CategoryGeneral,
	}); err != nil {
		t.Fatalf("Publish() failed: %v", err)
	}

	sent := env.mailSvc.SentMessages()
	if len(sent) != 2 {
		t.Fatalf("broadcast sent %d messages, want 2", len(sent))
	}
	if got := len(sent[0].Bcc) + len(sent[1].Bcc); got != 101 {
		t.Errorf("total BCC recipients = %d, want 101", got)
	}
}

func TestService_Publish_MarqueeReplacesPrevious(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	first, err := env.svc.Publish(ctx, "admin-1", announcement.NewAnnouncement{
		Title: "Old marquee", Message: "old", IsMarquee: true,
	})
	if err != nil {
		t.Fatalf("Publish() failed: %v", err)
	}
	second, err := env.svc.Publish(ctx, "admin-1", announcement.NewAnnouncement{
		Title: "New marquee", Message: "new", IsMarquee: true,
	})
	if err != nil {
		t.Fatalf("Publish() failed: %v", err)
	}

	all, err := env.svc.Query(ctx)
	if err != nil {
		t.Fatalf("Query() failed: %v", err)
	}
	var marquees []int64
	for _, a := range all {
		if a.IsMarquee {
			marquees = append(marquees, a.ID)
		}
	}
	if len(marquees) != 1 || marquees[0] != second.ID {
		t.Errorf("marquee IDs = %v, want only %d (replacing %d)", marquees, second.ID, first.ID)
	}
}

func TestService_Attachment(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	plain, err := env.svc.Publish(ctx, "admin-1", announcement.NewAnnouncement{
		Title: "No file", Message: "text only",
	})
	if err != nil {
		t.Fatalf("Publish() failed: %v", err)
	}
	if _, err = env.svc.Attachment(ctx, plain.ID); err != announcement.ErrNoAttachment {
		t.Errorf("Attachment() error = %v, want ErrNoAttachment", err)
	}

	withFile, err := env.svc.Publish(ctx, "admin-1", announcement.NewAnnouncement{
		Title: "Circular", Message: "see attached",
		FileName: "circular.pdf", FileType: "application/pdf", FileData: []byte("%PDF-1.4"),
	})
	if err != nil {
		t.Fatalf("Publish() failed: %v", err)
	}

	// listings omit the blob
	all, err := env.svc.Query(ctx)
	if err != nil {
		t.Fatalf("Query() failed: %v", err)
	}
	for _, a := range all {
		if a.FileData.Bytes != nil {
			t.Errorf("Query() listing for %d should omit the attachment blob", a.ID)
		}
	}

	got, err := env.svc.Attachment(ctx, withFile.ID)
	if err != nil {
		t.Fatalf("Attachment() failed: %v", err)
	}
	if got.FileName.String != "circular.pdf" || string(got.FileData.Bytes) != "%PDF-1.4" {
		t.Errorf("Attachment() = %q/%q, want stored file", got.FileName.String, got.FileData.Bytes)
	}

	if _, err = env.svc.Attachment(ctx, 999); err != announcement.ErrNotFound {
		t.Errorf("Attachment(unknown) error = %v, want ErrNotFound", err)
	}
}

func TestService_Delete(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	a, err := env.svc.Publish(ctx, "admin-1", announcement.NewAnnouncement{
		Title: "Obsolete", Message: "to be removed",
	})
	if err != nil {
		t.Fatalf("Publish() failed: %v", err)
	}

	if err = env.svc.Delete(ctx, a.ID); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if err = env.svc.Delete(ctx, a.ID); err != announcement.ErrNotFound {
		t.Errorf("Delete(unknown) error = %v, want ErrNotFound", err)
	}

	all, err := env.svc.Query(ctx)
	if err != nil {
		t.Fatalf("Query() failed: %v", err)
	}
	if len(all) != 0 {
		t.Errorf("Query() after delete returned %d items, want 0", len(all))
	}
}

func TestNormalizeCategory(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{announcement.CategoryPlacement, announcement.CategoryPlacement},
		{announcement.CategoryAlerts, announcement.CategoryAlerts},
		{"", announcement.CategoryGeneral},
		{"Gossip", announcement.CategoryGeneral},
	}
	for _, tt := range tests {
		if got := announcement.NormalizeCategory(tt.in); got != tt.want {
			t.Errorf("NormalizeCategory(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
