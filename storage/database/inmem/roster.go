package inmemdb

import (
	"context"
	"sort"

	"github.com/dams-project/backend/core/roster"
)

type rosterRepository struct {
	db *DB
}

func NewRosterRepository(db *DB) roster.Repository {
	return &rosterRepository{db: db}
}

func (repo *rosterRepository) GetSubject(_ context.Context, code string) (roster.Subject, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if sub, ok := repo.db.subjects[code]; ok {
		return *sub, nil
	}
	return roster.Subject{}, roster.ErrSubjectNotFound
}

func (repo *rosterRepository) QuerySubjectsBySemester(_ context.Context, sem int) ([]roster.Subject, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	subs := make([]roster.Subject, 0)
	for _, sub := range repo.db.subjects {
		if sub.Semester == sem {
			subs = append(subs, *sub)
		}
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].Code < subs[j].Code })
	return subs, nil
}

func (repo *rosterRepository) UpsertSubject(_ context.Context, sub roster.Subject) (roster.Subject, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	repo.db.subjects[sub.Code] = &sub
	return sub, nil
}

func (repo *rosterRepository) SaveAssignment(_ context.Context, a roster.FacultyAssignment) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	repo.db.assignments[pairKey(a.SubjectCode, a.Section)] = &a
	return nil
}

func (repo *rosterRepository) GetAssignment(_ context.Context, subjectCode, section string) (roster.FacultyAssignment, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if a, ok := repo.db.assignments[pairKey(subjectCode, section)]; ok {
		return *a, nil
	}
	return roster.FacultyAssignment{}, roster.ErrAssignmentNotFound
}

func (repo *rosterRepository) QueryAssignmentsByFaculty(_ context.Context, facultyID string) ([]roster.FacultyAssignment, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	as := make([]roster.FacultyAssignment, 0)
	for _, a := range repo.db.assignments {
		if a.FacultyID == facultyID {
			as = append(as, *a)
		}
	}
	sort.Slice(as, func(i, j int) bool {
		if as[i].SubjectCode != as[j].SubjectCode {
			return as[i].SubjectCode < as[j].SubjectCode
		}
		return as[i].Section < as[j].Section
	})
	return as, nil
}

// SaveAdvisor vacates the faculty's previous class under the same lock;
// the class's own slot is overwritten by the map assignment.
func (repo *rosterRepository) SaveAdvisor(_ context.Context, a roster.ClassAdvisor) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for key, adv := range repo.db.advisors {
		if adv.FacultyID == a.FacultyID {
			delete(repo.db.advisors, key)
		}
	}
	repo.db.advisors[classKey(a.Semester, a.Section)] = &a
	return nil
}

func (repo *rosterRepository) GetAdvisor(_ context.Context, sem int, section string) (roster.ClassAdvisor, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if a, ok := repo.db.advisors[classKey(sem, section)]; ok {
		return *a, nil
	}
	return roster.ClassAdvisor{}, roster.ErrAdvisorNotFound
}

func (repo *rosterRepository) GetAdvisorClass(_ context.Context, facultyID string) (roster.ClassAdvisor, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, a := range repo.db.advisors {
		if a.FacultyID == facultyID {
			return *a, nil
		}
	}
	return roster.ClassAdvisor{}, roster.ErrAdvisorNotFound
}

func (repo *rosterRepository) QueryAllAdvisors(_ context.Context) ([]roster.ClassAdvisor, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	as := make([]roster.ClassAdvisor, 0, len(repo.db.advisors))
	for _, a := range repo.db.advisors {
		as = append(as, *a)
	}
	sort.Slice(as, func(i, j int) bool {
		if as[i].Semester != as[j].Semester {
			return as[i].Semester < as[j].Semester
		}
		return as[i].Section < as[j].Section
	})
	return as, nil
}
