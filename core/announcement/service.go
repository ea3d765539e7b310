package announcement

import (
	"context"
	"errors"
	"net/mail"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/dams-project/backend/core"
	"github.com/dams-project/backend/core/student"
)

// bccBatchSize caps recipients per broadcast message.
const bccBatchSize = 100

var (
	// errors
	ErrNotFound     = errors.New("announcement not found")
	ErrNoAttachment = errors.New("announcement has no attachment")
)

type (
	Repository interface {
		// CreateAnnouncement clears any existing marquee flag in the same
		// transaction when the new item is a marquee.
		CreateAnnouncement(ctx context.Context, a Announcement) (Announcement, error)
		// QueryAnnouncements returns all items newest first, without blobs.
		QueryAnnouncements(ctx context.Context) ([]Announcement, error)
		// GetAttachment includes the file blob.
		GetAttachment(ctx context.Context, id int64) (Announcement, error)
		DeleteAnnouncement(ctx context.Context, id int64) error
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

// Publish stores the announcement and broadcasts it to every student over
// BCC in fixed-size batches. The broadcast is best-effort.
func (svc *Service) Publish(ctx context.Context, authorID string, na NewAnnouncement) (Announcement, error) {
	a := Announcement{
		Title:     na.Title,
		Message:   na.Message,
		AuthorID:  authorID,
		Category:  na.Category,
		IsMarquee: na.IsMarquee,
		CreatedAt: time.Now().UTC(),
	}
	if na.FileName != "" {
		a.FileName = null.StringFrom(na.FileName)
		a.FileType = null.StringFrom(na.FileType)
		a.FileData = null.BytesFrom(na.FileData)
	}

	a, err := svc.repo.CreateAnnouncement(ctx, a)
	if err != nil {
		return Announcement{}, err
	}

	svc.broadcast(ctx, a)
	return a, nil
}

// Query lists all announcements, newest first, without attachment blobs.
func (svc *Service) Query(ctx context.Context) ([]Announcement, error) {
	return svc.repo.QueryAnnouncements(ctx)
}

// Attachment returns the announcement with its file blob.
func (svc *Service) Attachment(ctx context.Context, id int64) (Announcement, error) {
	a, err := svc.repo.GetAttachment(ctx, id)
	if err != nil {
		return Announcement{}, err
	}
	if !a.HasAttachment() {
		return Announcement{}, ErrNoAttachment
	}
	return a, nil
}

func (svc *Service) Delete(ctx context.Context, id int64) error {
	return svc.repo.DeleteAnnouncement(ctx, id)
}

func (svc *Service) broadcast(ctx context.Context, a Announcement) {
	students, err := svc.students.QueryAllStudents(ctx)
	if err != nil || len(students) == 0 {
		return
	}

	msgs := make([]*core.EmailMessage, 0, len(students)/bccBatchSize+1)
	for start := 0; start < len(students); start += bccBatchSize {
		end := start + bccBatchSize
		if end > len(students) {
			end = len(students)
		}

		bcc := make([]mail.Address, 0, end-start)
		for _, std := range students[start:end] {
			bcc = append(bcc, mail.Address{Name: std.Name, Address: std.Email})
		}
		msgs = append(msgs, &core.EmailMessage{
			Bcc:          bcc,
			Subject:      a.Title,
			TemplateName: "announcement",
			TemplateData: struct {
				Title    string
				Message  string
				Category string
			}{Title: a.Title, Message: a.Message, Category: a.Category},
		})
	}
	svc.mailSvc.SendMessages(msgs...)
}
