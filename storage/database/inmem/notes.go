package inmemdb

import (
	"context"
	"fmt"
	"sort"

	"github.com/dams-project/backend/core/notes"
)

type notesRepository struct {
	db *DB
}

func NewNotesRepository(db *DB) notes.Repository {
	return &notesRepository{db: db}
}

func noteViewKey(usn string, noteID int64) string { return fmt.Sprintf("%s|%d", usn, noteID) }

func (repo *notesRepository) CreateNote(_ context.Context, n notes.Note) (notes.Note, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	repo.db.noteID++
	n.ID = repo.db.noteID
	repo.db.notes[n.ID] = &n
	return n, nil
}

func (repo *notesRepository) QueryNotes(_ context.Context, sem int, section, subjectCode string) ([]notes.Note, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	ns := make([]notes.Note, 0)
	for _, n := range repo.db.notes {
		if n.Semester != sem || n.Section != section || n.SubjectCode != subjectCode {
			continue
		}
		listed := *n
		listed.Data = nil
		ns = append(ns, listed)
	}
	sort.Slice(ns, func(i, j int) bool { return ns[i].UploadedAt.After(ns[j].UploadedAt) })
	return ns, nil
}

func (repo *notesRepository) GetNote(_ context.Context, id int64) (notes.Note, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if n, ok := repo.db.notes[id]; ok {
		return *n, nil
	}
	return notes.Note{}, notes.ErrNotFound
}

func (repo *notesRepository) DeleteNote(_ context.Context, id int64) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.notes[id]; !ok {
		return notes.ErrNotFound
	}
	delete(repo.db.notes, id)
	return nil
}

func (repo *notesRepository) DeleteNotesByUploader(_ context.Context, facultyID string, sem int, section, subjectCode string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for id, n := range repo.db.notes {
		if n.FacultyID == facultyID && n.Semester == sem && n.Section == section && n.SubjectCode == subjectCode {
			delete(repo.db.notes, id)
		}
	}
	return nil
}

func (repo *notesRepository) QuerySubjectsWithNotes(_ context.Context, sem int, section string) ([]string, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	seen := make(map[string]struct{})
	for _, n := range repo.db.notes {
		if n.Semester == sem && n.Section == section {
			seen[n.SubjectCode] = struct{}{}
		}
	}

	subs := make([]string, 0, len(seen))
	for code := range seen {
		subs = append(subs, code)
	}
	sort.Strings(subs)
	return subs, nil
}

func (repo *notesRepository) CountUnread(_ context.Context, usn string, sem int, section string) (int, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var count int
	for _, n := range repo.db.notes {
		if n.Semester != sem || n.Section != section {
			continue
		}
		if _, viewed := repo.db.noteViews[noteViewKey(usn, n.ID)]; !viewed {
			count++
		}
	}
	return count, nil
}

func (repo *notesRepository) MarkViewed(_ context.Context, usn string, noteID int64) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	repo.db.noteViews[noteViewKey(usn, noteID)] = struct{}{}
	return nil
}
