package echoapi

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/dams-project/backend/core"
	"github.com/dams-project/backend/core/announcement"
	"github.com/dams-project/backend/core/attendance"
	"github.com/dams-project/backend/core/auth"
	"github.com/dams-project/backend/core/faculty"
	"github.com/dams-project/backend/core/marks"
	"github.com/dams-project/backend/core/notes"
	"github.com/dams-project/backend/core/roster"
	"github.com/dams-project/backend/core/student"
	"github.com/dams-project/backend/core/timetable"
)

type (
	Options struct {
		Address        string
		DisableReqLogs bool
		Logger         core.Logger

		AuthSvc         *auth.Service
		StudentSvc      *student.Service
		FacultySvc      *faculty.Service
		RosterSvc       *roster.Service
		AttendanceSvc   *attendance.Service
		MarksSvc        *marks.Service
		NotesSvc        *notes.Service
		AnnouncementSvc *announcement.Service
		TimetableSvc    *timetable.Service
	}

	Server interface {
		http.Handler
		Start() error
		Stop(context.Context) error
		ShutdownSignal() <-chan struct{}
	}

	server struct {
		opts     *Options
		app      *echo.Echo
		shutdown chan struct{}
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	s := &server{
		opts:     opts,
		app:      echo.New(),
		shutdown: make(chan struct{}, 1),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(core.Conf.Debug || core.Conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, s.signalShutdown)
	s.app.Debug = core.Conf.Debug
	s.app.HideBanner = true

	s.app.GET("/", home)

	api := s.app.Group("/api")
	authed := authMiddleware(s.opts.AuthSvc)
	guestOK := studentOrGuestMiddleware(s.opts.AuthSvc)

	registerAuthAPI(api, authed, s.opts.AuthSvc)
	registerStaffAPI(api, s.opts.FacultySvc)
	registerProfileAPI(api, authed, s.opts.StudentSvc, s.opts.FacultySvc)
	registerAdminAPI(api, authed, s.opts.AuthSvc, s.opts.StudentSvc, s.opts.FacultySvc, s.opts.RosterSvc)
	registerAttendanceAPI(api, authed, guestOK, s.opts.AttendanceSvc)
	registerMarksAPI(api, authed, guestOK, s.opts.MarksSvc)
	registerNotesAPI(api, authed, guestOK, s.opts.NotesSvc)
	registerAnnouncementAPI(api, authed, s.opts.AnnouncementSvc)
	registerTimetableAPI(api, authed, guestOK, s.opts.TimetableSvc)
}

func (s *server) Start() error {
	return s.app.Start(s.opts.Address)
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

// ShutdownSignal fires when an integrity issue requires the whole app
// to go down (see core.NewShutdownError).
func (s *server) ShutdownSignal() <-chan struct{} {
	return s.shutdown
}

func (s *server) signalShutdown() {
	select {
	case s.shutdown <- struct{}{}:
	default:
	}
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to the DAMS API!")
}
