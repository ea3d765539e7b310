package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/dams-project/backend/core/attendance"
)

type attendanceRepository struct {
	db *DB
}

func NewAttendanceRepository(db *DB) attendance.Repository {
	return &attendanceRepository{db: db}
}

func (repo *attendanceRepository) InsertRecords(_ context.Context, recs []attendance.Record) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for _, rec := range recs {
		repo.db.attendanceID++
		rec.ID = repo.db.attendanceID
		repo.db.attendance = append(repo.db.attendance, rec)
	}
	return nil
}

func (repo *attendanceRepository) UpdateRecordStatus(_ context.Context, usn, subjectCode string, date time.Time, status string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	var updated bool
	for i := range repo.db.attendance {
		rec := &repo.db.attendance[i]
		if rec.USN == usn && rec.SubjectCode == subjectCode && rec.Date.Equal(date) {
			rec.Status = status
			updated = true
		}
	}
	if !updated {
		return attendance.ErrRecordNotFound
	}
	return nil
}

func (repo *attendanceRepository) QuerySubjectTotals(_ context.Context, usn string) ([]attendance.SubjectTotals, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	bySubject := make(map[string]*attendance.SubjectTotals)
	for _, rec := range repo.db.attendance {
		if rec.USN != usn {
			continue
		}
		t, ok := bySubject[rec.SubjectCode]
		if !ok {
			t = &attendance.SubjectTotals{SubjectCode: rec.SubjectCode}
			if sub, found := repo.db.subjects[rec.SubjectCode]; found {
				t.SubjectName = sub.Name
			}
			bySubject[rec.SubjectCode] = t
		}
		t.Total += rec.Hours
		if rec.Status == attendance.StatusPresent {
			t.Attended += rec.Hours
		}
	}

	totals := make([]attendance.SubjectTotals, 0, len(bySubject))
	for _, t := range bySubject {
		totals = append(totals, *t)
	}
	sort.Slice(totals, func(i, j int) bool { return totals[i].SubjectCode < totals[j].SubjectCode })
	return totals, nil
}

func (repo *attendanceRepository) QueryMonthlyTotals(_ context.Context, usn, subjectCode string) ([]attendance.MonthlyTotals, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	byMonth := make(map[[2]int]*attendance.MonthlyTotals)
	for _, rec := range repo.db.attendance {
		if rec.USN != usn || rec.SubjectCode != subjectCode {
			continue
		}
		key := [2]int{rec.Date.Year(), int(rec.Date.Month())}
		t, ok := byMonth[key]
		if !ok {
			t = &attendance.MonthlyTotals{Year: key[0], Month: key[1]}
			byMonth[key] = t
		}
		t.Total += rec.Hours
		if rec.Status == attendance.StatusPresent {
			t.Attended += rec.Hours
		}
	}

	totals := make([]attendance.MonthlyTotals, 0, len(byMonth))
	for _, t := range byMonth {
		totals = append(totals, *t)
	}
	sort.Slice(totals, func(i, j int) bool {
		if totals[i].Year != totals[j].Year {
			return totals[i].Year < totals[j].Year
		}
		return totals[i].Month < totals[j].Month
	})
	return totals, nil
}

func (repo *attendanceRepository) QueryClassTotals(_ context.Context, sem int, section, subjectCode string) ([]attendance.ClassTotals, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	totals := make([]attendance.ClassTotals, 0)
	for _, std := range repo.db.students {
		if std.Semester != sem || std.Section != section {
			continue
		}

		held := make(map[time.Time]struct{})
		present := make(map[time.Time]struct{})
		for _, rec := range repo.db.attendance {
			if rec.USN != std.USN || rec.SubjectCode != subjectCode {
				continue
			}
			held[rec.Date] = struct{}{}
			if rec.Status == attendance.StatusPresent {
				present[rec.Date] = struct{}{}
			}
		}
		totals = append(totals, attendance.ClassTotals{
			USN:      std.USN,
			Name:     std.Name,
			Attended: len(present),
			Total:    len(held),
		})
	}
	sort.Slice(totals, func(i, j int) bool { return totals[i].USN < totals[j].USN })
	return totals, nil
}

func (repo *attendanceRepository) QueryStudentSubjects(_ context.Context, usn string) ([]string, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	seen := make(map[string]struct{})
	for _, rec := range repo.db.attendance {
		if rec.USN == usn {
			seen[rec.SubjectCode] = struct{}{}
		}
	}

	subs := make([]string, 0, len(seen))
	for code := range seen {
		subs = append(subs, code)
	}
	sort.Strings(subs)
	return subs, nil
}

func (repo *attendanceRepository) GetLastAlert(_ context.Context, usn string) (time.Time, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	return repo.db.alerts[usn], nil
}

func (repo *attendanceRepository) SaveAlert(_ context.Context, usn string, sentAt time.Time) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	repo.db.alerts[usn] = sentAt
	return nil
}
