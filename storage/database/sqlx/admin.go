package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/dams-project/backend/core/auth"
)

type adminRepository struct {
	db *sqlx.DB
}

var _ auth.AdminRepository = (*adminRepository)(nil)

func NewAdminRepository(db *sqlx.DB) *adminRepository {
	return &adminRepository{db: db}
}

func (repo adminRepository) GetAdminByEmail(ctx context.Context, email string) (auth.Admin, error) {
	var adm auth.Admin
	err := repo.db.GetContext(ctx, &adm, `SELECT * FROM admins WHERE email = $1`, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return auth.Admin{}, auth.ErrAdminNotFound
		}
		return auth.Admin{}, errors.Wrap(err, "getting admin")
	}
	return adm, nil
}

func (repo adminRepository) CreateAdmin(ctx context.Context, adm auth.Admin) (auth.Admin, error) {
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO admins (email, password_hash, created_at)
		VALUES (:email, :password_hash, :created_at)`,
		adm)
	if err != nil {
		return auth.Admin{}, errors.Wrap(err, "creating admin")
	}
	return adm, nil
}
