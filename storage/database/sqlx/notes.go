package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/dams-project/backend/core/notes"
)

type notesRepository struct {
	db *sqlx.DB
}

var _ notes.Repository = (*notesRepository)(nil)

func NewNotesRepository(db *sqlx.DB) *notesRepository {
	return &notesRepository{db: db}
}

func (repo notesRepository) CreateNote(ctx context.Context, n notes.Note) (notes.Note, error) {
	rows, err := repo.db.NamedQueryContext(ctx, `
		INSERT INTO notes (semester, section, subject_code, title, file_name, file_type, data, faculty_id, uploaded_at)
		VALUES (:semester, :section, :subject_code, :title, :file_name, :file_type, :data, :faculty_id, :uploaded_at)
		RETURNING id`,
		n)
	if err != nil {
		return notes.Note{}, errors.Wrap(err, "creating note")
	}
	defer func() { _ = rows.Close() }()

	if rows.Next() {
		if err = rows.Scan(&n.ID); err != nil {
			return notes.Note{}, errors.Wrap(err, "scanning note id")
		}
	}
	return n, nil
}

func (repo notesRepository) QueryNotes(ctx context.Context, sem int, section, subjectCode string) ([]notes.Note, error) {
	var ns []notes.Note
	err := repo.db.SelectContext(ctx, &ns, `
		SELECT id, semester, section, subject_code, title, file_name, file_type, faculty_id, uploaded_at
		FROM notes
		WHERE semester = $1 AND section = $2 AND subject_code = $3
		ORDER BY uploaded_at DESC`,
		sem, section, subjectCode)
	if err != nil {
		return nil, errors.Wrap(err, "querying notes")
	}
	return ns, nil
}

func (repo notesRepository) GetNote(ctx context.Context, id int64) (notes.Note, error) {
	var n notes.Note
	err := repo.db.GetContext(ctx, &n, `SELECT * FROM notes WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return notes.Note{}, notes.ErrNotFound
		}
		return notes.Note{}, errors.Wrap(err, "getting note")
	}
	return n, nil
}

func (repo notesRepository) DeleteNote(ctx context.Context, id int64) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM notes WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting note")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notes.ErrNotFound
	}
	return nil
}

func (repo notesRepository) DeleteNotesByUploader(ctx context.Context, facultyID string, sem int, section, subjectCode string) error {
	_, err := repo.db.ExecContext(ctx, `
		DELETE FROM notes
		WHERE faculty_id = $1 AND semester = $2 AND section = $3 AND subject_code = $4`,
		facultyID, sem, section, subjectCode)
	return errors.Wrap(err, "deleting notes")
}

func (repo notesRepository) QuerySubjectsWithNotes(ctx context.Context, sem int, section string) ([]string, error) {
	var subs []string
	err := repo.db.SelectContext(ctx, &subs, `
		SELECT DISTINCT subject_code FROM notes
		WHERE semester = $1 AND section = $2
		ORDER BY subject_code`,
		sem, section)
	if err != nil {
		return nil, errors.Wrap(err, "querying subjects with notes")
	}
	return subs, nil
}

func (repo notesRepository) CountUnread(ctx context.Context, usn string, sem int, section string) (int, error) {
	var count int
	err := repo.db.GetContext(ctx, &count, `
		SELECT COUNT(*)
		FROM notes n
		LEFT JOIN note_views v ON v.note_id = n.id AND v.usn = $1
		WHERE n.semester = $2 AND n.section = $3 AND v.usn IS NULL`,
		usn, sem, section)
	if err != nil {
		return 0, errors.Wrap(err, "counting unread notes")
	}
	return count, nil
}

func (repo notesRepository) MarkViewed(ctx context.Context, usn string, noteID int64) error {
	_, err := repo.db.ExecContext(ctx, `
		INSERT INTO note_views (usn, note_id) VALUES ($1, $2)
		ON CONFLICT (usn, note_id) DO NOTHING`,
		usn, noteID)
	return errors.Wrap(err, "marking note viewed")
}
