package inmemdb

import (
	"context"
	"sort"

	"github.com/volatiletech/null/v8"

	"github.com/dams-project/backend/core/student"
)

type studentRepository struct {
	db *DB
}

func NewStudentRepository(db *DB) student.Repository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) GetStudentByUSN(_ context.Context, usn string) (student.Student, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if std, ok := repo.db.students[usn]; ok {
		return *std, nil
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) QueryStudentsByClass(_ context.Context, sem int, section string) ([]student.Student, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	stds := make([]student.Student, 0)
	for _, std := range repo.db.students {
		if std.Semester == sem && std.Section == section {
			stds = append(stds, *std)
		}
	}
	sort.Slice(stds, func(i, j int) bool { return stds[i].USN < stds[j].USN })
	return stds, nil
}

func (repo *studentRepository) QueryAllStudents(_ context.Context) ([]student.Student, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	stds := make([]student.Student, 0, len(repo.db.students))
	for _, std := range repo.db.students {
		stds = append(stds, *std)
	}
	sort.Slice(stds, func(i, j int) bool { return stds[i].USN < stds[j].USN })
	return stds, nil
}

func (repo *studentRepository) CreateStudent(_ context.Context, std student.Student) (student.Student, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	repo.db.students[std.USN] = &std
	return std, nil
}

func (repo *studentRepository) UpdateStudent(_ context.Context, std student.Student) (student.Student, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.students[std.USN]; !ok {
		return student.Student{}, student.ErrNotFound
	}
	repo.db.students[std.USN] = &std
	return std, nil
}

func (repo *studentRepository) DeleteStudentByUSN(_ context.Context, usn string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.students[usn]; !ok {
		return student.ErrNotFound
	}
	delete(repo.db.students, usn)
	return nil
}

func (repo *studentRepository) UpdateStudentPhoto(_ context.Context, usn string, photo []byte, contentType string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	std, ok := repo.db.students[usn]
	if !ok {
		return student.ErrNotFound
	}
	std.Photo = null.BytesFrom(photo)
	std.PhotoType = null.StringFrom(contentType)
	return nil
}
