// Package inmemdb provides map-backed repositories for dev and tests.
// A single lock guards all tables, which keeps the multi-table writes
// (advisor reassignment, marquee clearing, sgpa/cgpa) trivially atomic.
package inmemdb

import (
	"fmt"
	"sync"
	"time"

	"github.com/dams-project/backend/core/announcement"
	"github.com/dams-project/backend/core/auth"
	"github.com/dams-project/backend/core/faculty"
	"github.com/dams-project/backend/core/marks"
	"github.com/dams-project/backend/core/notes"
	"github.com/dams-project/backend/core/roster"
	"github.com/dams-project/backend/core/student"
	"github.com/dams-project/backend/core/timetable"

	att "github.com/dams-project/backend/core/attendance"
)

type DB struct {
	mu sync.RWMutex

	students map[string]*student.Student
	faculty  map[string]*faculty.Faculty
	admins   map[string]*auth.Admin

	subjects    map[string]*roster.Subject
	assignments map[string]*roster.FacultyAssignment // subject|section
	advisors    map[string]*roster.ClassAdvisor      // sem|section

	attendance   []att.Record
	attendanceID int64
	alerts       map[string]time.Time

	marks map[string]*marks.Mark // usn|sem|subject
	sgpa  map[string]*marks.Sgpa // usn|sem

	notes     map[int64]*notes.Note
	noteID    int64
	noteViews map[string]struct{} // usn|noteID

	announcements  map[int64]*announcement.Announcement
	announcementID int64

	timetables map[string]*timetable.Timetable // sem|section
}

func NewDB() *DB {
	return &DB{
		students:      make(map[string]*student.Student),
		faculty:       make(map[string]*faculty.Faculty),
		admins:        make(map[string]*auth.Admin),
		subjects:      make(map[string]*roster.Subject),
		assignments:   make(map[string]*roster.FacultyAssignment),
		advisors:      make(map[string]*roster.ClassAdvisor),
		alerts:        make(map[string]time.Time),
		marks:         make(map[string]*marks.Mark),
		sgpa:          make(map[string]*marks.Sgpa),
		notes:         make(map[int64]*notes.Note),
		noteViews:     make(map[string]struct{}),
		announcements: make(map[int64]*announcement.Announcement),
		timetables:    make(map[string]*timetable.Timetable),
	}
}

func classKey(sem int, section string) string { return fmt.Sprintf("%d|%s", sem, section) }
func pairKey(a, b string) string              { return a + "|" + b }
