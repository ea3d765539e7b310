package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"

	echoapi "github.com/dams-project/backend/apps/api/echo"
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
	emailsvc "github.com/dams-project/backend/services/email"
	logsvc "github.com/dams-project/backend/services/logger"
	"github.com/dams-project/backend/storage/authstore"
	"github.com/dams-project/backend/storage/database"
	sqlxrepos "github.com/dams-project/backend/storage/database/sqlx"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	var logger core.Logger
	std := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	if conf.Debug {
		logger = logsvc.NewStdLogger(std)
	} else {
		logger = logsvc.NewRollbarLogger(std, conf)
	}
	logger.Enable(!conf.Debug)

	// set up DB
	db, err := setUpDB(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			logger.Error("closing database", err)
		}
	}()

	// set up session & OTP stores; an unset REDIS_ADDR means single-node
	// in-memory stores (sessions are lost on restart)
	var (
		sessions auth.SessionStore
		otps     auth.OTPStore
	)
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	if conf.Redis.Addr != "" {
		client := authstore.NewRedisClient(conf)
		defer client.Close()
		sessions = authstore.NewRedisSessionStore(client)
		otps = authstore.NewRedisOTPStore(client)
	} else {
		memSessions := authstore.NewInmemSessionStore()
		go memSessions.Sweep(sweepCtx, conf.Session.SweepInterval)
		sessions = memSessions
		otps = authstore.NewInmemOTPStore()
	}

	// set up email
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	// set up repositories & services
	studentRepo := sqlxrepos.NewStudentRepository(db)
	facultyRepo := sqlxrepos.NewFacultyRepository(db)

	studentSvc := student.NewService(studentRepo)
	facultySvc := faculty.NewService(facultyRepo)
	rosterSvc := roster.NewService(sqlxrepos.NewRosterRepository(db))
	authSvc := auth.NewService(conf, sqlxrepos.NewAdminRepository(db), studentRepo, facultyRepo, sessions, otps, mailSvc)
	attendanceSvc := attendance.NewService(sqlxrepos.NewAttendanceRepository(db), studentRepo, mailSvc, logger)
	marksSvc := marks.NewService(sqlxrepos.NewMarksRepository(db), studentRepo, mailSvc)
	notesSvc := notes.NewService(sqlxrepos.NewNotesRepository(db), rosterSvc)
	announcementSvc := announcement.NewService(sqlxrepos.NewAnnouncementRepository(db), studentRepo, mailSvc)
	timetableSvc := timetable.NewService(sqlxrepos.NewTimetableRepository(db), rosterSvc)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	server := echoapi.NewServer(&echoapi.Options{
		Address:         conf.Server.Address(),
		Logger:          logger,
		AuthSvc:         authSvc,
		StudentSvc:      studentSvc,
		FacultySvc:      facultySvc,
		RosterSvc:       rosterSvc,
		AttendanceSvc:   attendanceSvc,
		MarksSvc:        marksSvc,
		NotesSvc:        notesSvc,
		AnnouncementSvc: announcementSvc,
		TimetableSvc:    timetableSvc,
	})

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// =========================================================================
	// Shutdown

	select {
	case err = <-serverErrors:
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case <-server.ShutdownSignal():
		logger.Info("integrity issue: Start shutdown...")
		stop(server, conf, logger)

	case sig := <-quit:
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))
		stop(server, conf, logger)
	}
}

// stop gives outstanding requests a deadline for completion.
func stop(server echoapi.Server, conf *core.Config, logger core.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Stop(ctx); err != nil {
		logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)
	}
}

func setUpDB(conf *core.Config) (*sqlx.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}
