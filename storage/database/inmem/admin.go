package inmemdb

import (
	"context"

	"github.com/dams-project/backend/core/auth"
)

type adminRepository struct {
	db *DB
}

func NewAdminRepository(db *DB) auth.AdminRepository {
	return &adminRepository{db: db}
}

func (repo *adminRepository) GetAdminByEmail(_ context.Context, email string) (auth.Admin, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if adm, ok := repo.db.admins[email]; ok {
		return *adm, nil
	}
	return auth.Admin{}, auth.ErrAdminNotFound
}

func (repo *adminRepository) CreateAdmin(_ context.Context, adm auth.Admin) (auth.Admin, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	repo.db.admins[adm.Email] = &adm
	return adm, nil
}
