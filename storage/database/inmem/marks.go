package inmemdb

import (
	"context"
	"fmt"
	"sort"

	"github.com/dams-project/backend/core/marks"
)

type marksRepository struct {
	db *DB
}

func NewMarksRepository(db *DB) marks.Repository {
	return &marksRepository{db: db}
}

func markKey(usn string, sem int, subjectCode string) string {
	return fmt.Sprintf("%s|%d|%s", usn, sem, subjectCode)
}

func sgpaKey(usn string, sem int) string { return fmt.Sprintf("%s|%d", usn, sem) }

func (repo *marksRepository) UpsertMarks(_ context.Context, usn string, sem int, mks []marks.Mark) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for _, mk := range mks {
		mk := mk
		repo.db.marks[markKey(usn, sem, mk.SubjectCode)] = &mk
	}
	return nil
}

func (repo *marksRepository) QueryStudentMarks(_ context.Context, usn string, sem int) ([]marks.MarkRow, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	rows := make([]marks.MarkRow, 0)
	for _, mk := range repo.db.marks {
		if mk.USN != usn || (sem > 0 && mk.Semester != sem) {
			continue
		}
		row := marks.MarkRow{Mark: *mk}
		if sub, ok := repo.db.subjects[mk.SubjectCode]; ok {
			row.SubjectName = sub.Name
			row.Credits = sub.Credits
			row.IsLab = sub.IsLab
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Semester != rows[j].Semester {
			return rows[i].Semester < rows[j].Semester
		}
		return rows[i].SubjectCode < rows[j].SubjectCode
	})
	return rows, nil
}

func (repo *marksRepository) QueryClassMarks(_ context.Context, sem int, section, subjectCode string) ([]marks.ClassMarkRow, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var isLab bool
	if sub, ok := repo.db.subjects[subjectCode]; ok {
		isLab = sub.IsLab
	}

	rows := make([]marks.ClassMarkRow, 0)
	for _, mk := range repo.db.marks {
		if mk.Semester != sem || mk.SubjectCode != subjectCode {
			continue
		}
		std, ok := repo.db.students[mk.USN]
		if !ok || std.Section != section {
			continue
		}
		rows = append(rows, marks.ClassMarkRow{
			USN:   mk.USN,
			Name:  std.Name,
			Mark:  *mk,
			IsLab: isLab,
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].USN < rows[j].USN })
	return rows, nil
}

func (repo *marksRepository) SaveSgpaCgpa(_ context.Context, usn string, sem int, sgpa float64) (float64, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	repo.db.sgpa[sgpaKey(usn, sem)] = &marks.Sgpa{USN: usn, Semester: sem, Value: sgpa}

	var values []float64
	for _, row := range repo.db.sgpa {
		if row.USN == usn && row.Semester > 0 {
			values = append(values, row.Value)
		}
	}
	cgpa := marks.MeanSGPA(values)
	repo.db.sgpa[sgpaKey(usn, 0)] = &marks.Sgpa{USN: usn, Semester: 0, Value: cgpa}
	return cgpa, nil
}

func (repo *marksRepository) QuerySgpa(_ context.Context, usn string) ([]marks.Sgpa, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	rows := make([]marks.Sgpa, 0)
	for _, row := range repo.db.sgpa {
		if row.USN == usn {
			rows = append(rows, *row)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Semester < rows[j].Semester })
	return rows, nil
}
