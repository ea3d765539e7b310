package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/dams-project/backend/core/announcement"
)

type announcementRepository struct {
	db *sqlx.DB
}

var _ announcement.Repository = (*announcementRepository)(nil)

func NewAnnouncementRepository(db *sqlx.DB) *announcementRepository {
	return &announcementRepository{db: db}
}

// CreateAnnouncement demotes any current marquee item in the same
// transaction when the new item claims the slot.
func (repo announcementRepository) CreateAnnouncement(ctx context.Context, a announcement.Announcement) (announcement.Announcement, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return announcement.Announcement{}, errors.Wrap(err, "beginning tx")
	}
	defer func() { _ = tx.Rollback() }()

	if a.IsMarquee {
		if _, err = tx.ExecContext(ctx, `UPDATE announcements SET is_marquee = FALSE WHERE is_marquee`); err != nil {
			return announcement.Announcement{}, errors.Wrap(err, "clearing marquee")
		}
	}

	rows, err := tx.NamedQuery(`
		INSERT INTO announcements (title, message, author_id, category, is_marquee, file_name, file_type, file_data, created_at)
		VALUES (:title, :message, :author_id, :category, :is_marquee, :file_name, :file_type, :file_data, :created_at)
		RETURNING id`,
		a)
	if err != nil {
		return announcement.Announcement{}, errors.Wrap(err, "inserting announcement")
	}
	if rows.Next() {
		if err = rows.Scan(&a.ID); err != nil {
			_ = rows.Close()
			return announcement.Announcement{}, errors.Wrap(err, "scanning announcement id")
		}
	}
	_ = rows.Close()

	if err = tx.Commit(); err != nil {
		return announcement.Announcement{}, errors.Wrap(err, "committing announcement")
	}
	return a, nil
}

func (repo announcementRepository) QueryAnnouncements(ctx context.Context) ([]announcement.Announcement, error) {
	var as []announcement.Announcement
	err := repo.db.SelectContext(ctx, &as, `
		SELECT id, title, message, author_id, category, is_marquee, file_name, created_at
		FROM announcements
		ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, errors.Wrap(err, "querying announcements")
	}
	return as, nil
}

func (repo announcementRepository) GetAttachment(ctx context.Context, id int64) (announcement.Announcement, error) {
	var a announcement.Announcement
	err := repo.db.GetContext(ctx, &a, `SELECT * FROM announcements WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return announcement.Announcement{}, announcement.ErrNotFound
		}
		return announcement.Announcement{}, errors.Wrap(err, "getting announcement")
	}
	return a, nil
}

func (repo announcementRepository) DeleteAnnouncement(ctx context.Context, id int64) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM announcements WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting announcement")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return announcement.ErrNotFound
	}
	return nil
}
