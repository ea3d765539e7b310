package notes

import (
	"context"
	"errors"
	"time"

	"github.com/dams-project/backend/core/roster"
)

var (
	// errors
	ErrNotFound    = errors.New("note not found")
	ErrNotAssigned = errors.New("faculty is not assigned to this subject")
	ErrNotUploader = errors.New("only the uploader may delete a note")
)

type (
	Repository interface {
		CreateNote(ctx context.Context, n Note) (Note, error)
		// QueryNotes omits file data.
		QueryNotes(ctx context.Context, sem int, section, subjectCode string) ([]Note, error)
		// GetNote includes file data.
		GetNote(ctx context.Context, id int64) (Note, error)
		DeleteNote(ctx context.Context, id int64) error
		DeleteNotesByUploader(ctx context.Context, facultyID string, sem int, section, subjectCode string) error

		QuerySubjectsWithNotes(ctx context.Context, sem int, section string) ([]string, error)
		CountUnread(ctx context.Context, usn string, sem int, section string) (int, error)
		// MarkViewed records the (usn, note) pair once; repeats are no-ops.
		MarkViewed(ctx context.Context, usn string, noteID int64) error
	}

	Service struct {
		repo   Repository
		roster *roster.Service
	}
)

func NewService(repo Repository, rosterSvc *roster.Service) *Service {
	return &Service{repo: repo, roster: rosterSvc}
}

// Upload stores a note after checking the faculty actually teaches the
// (subject, section) it is filed under.
func (svc *Service) Upload(ctx context.Context, facultyID string, nn NewNote) (Note, error) {
	teaches, err := svc.roster.Teaches(ctx, facultyID, nn.SubjectCode, nn.Section)
	if err != nil {
		return Note{}, err
	}
	if !teaches {
		return Note{}, ErrNotAssigned
	}

	return svc.repo.CreateNote(ctx, Note{
		Semester:    nn.Semester,
		Section:     nn.Section,
		SubjectCode: nn.SubjectCode,
		Title:       nn.Title,
		FileName:    nn.FileName,
		FileType:    nn.FileType,
		Data:        nn.Data,
		FacultyID:   facultyID,
		UploadedAt:  time.Now().UTC(),
	})
}

func (svc *Service) Query(ctx context.Context, sem int, section, subjectCode string) ([]Note, error) {
	return svc.repo.QueryNotes(ctx, sem, section, subjectCode)
}

// Download returns the note with its file content.
func (svc *Service) Download(ctx context.Context, id int64) (Note, error) {
	return svc.repo.GetNote(ctx, id)
}

// Delete removes a single note; only its uploader may do so.
func (svc *Service) Delete(ctx context.Context, facultyID string, id int64) error {
	n, err := svc.repo.GetNote(ctx, id)
	if err != nil {
		return err
	}
	if n.FacultyID != facultyID {
		return ErrNotUploader
	}
	return svc.repo.DeleteNote(ctx, id)
}

// DeleteAll removes every note the faculty uploaded for one class subject.
func (svc *Service) DeleteAll(ctx context.Context, facultyID string, sem int, section, subjectCode string) error {
	return svc.repo.DeleteNotesByUploader(ctx, facultyID, sem, section, subjectCode)
}

// SubjectsWithNotes lists the subjects of a class that have any notes.
func (svc *Service) SubjectsWithNotes(ctx context.Context, sem int, section string) ([]string, error) {
	return svc.repo.QuerySubjectsWithNotes(ctx, sem, section)
}

// UnreadCount counts the class notes the student has not yet viewed.
func (svc *Service) UnreadCount(ctx context.Context, usn string, sem int, section string) (int, error) {
	return svc.repo.CountUnread(ctx, usn, sem, section)
}

func (svc *Service) MarkViewed(ctx context.Context, usn string, noteID int64) error {
	return svc.repo.MarkViewed(ctx, usn, noteID)
}
