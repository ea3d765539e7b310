package main

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/dams-project/backend/core/auth"
	"github.com/dams-project/backend/core/faculty"
	"github.com/dams-project/backend/core/student"
	inmemdb "github.com/dams-project/backend/storage/database/inmem"
)

func setup(t *testing.T) *commandLine {
	t.Helper()
	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags)

	db := inmemdb.NewDB()
	return &commandLine{
		db:       &sqlx.DB{},
		students: inmemdb.NewStudentRepository(db),
		faculty:  inmemdb.NewFacultyRepository(db),
		admins:   inmemdb.NewAdminRepository(db),
	}
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func createStudent(t *testing.T, repo student.Repository, usn, pwd string) student.Student {
	t.Helper()
	std := student.Student{
		USN:      usn,
		Name:     "Test Student",
		Email:    usn + "@test.edu",
		Semester: 3,
		Section:  "A",
	}
	if err := std.SetPassword(pwd); err != nil {
		t.Fatalf("SetPassword() failed: %v", err)
	}
	std.CreatedAt = time.Now().UTC()
	std, err := repo.CreateStudent(context.Background(), std)
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return std
}

func createFaculty(t *testing.T, repo faculty.Repository, id, pwd string) faculty.Faculty {
	t.Helper()
	fac := faculty.Faculty{
		ID:       id,
		Name:     "Test Faculty",
		Email:    id + "@test.edu",
		Position: faculty.PositionAssistantProfessor,
	}
	if err := fac.SetPassword(pwd); err != nil {
		t.Fatalf("SetPassword() failed: %v", err)
	}
	fac.CreatedAt = time.Now().UTC()
	fac, err := repo.CreateFaculty(context.Background(), fac)
	if err != nil {
		t.Fatalf("CreateFaculty() failed: %v", err)
	}
	return fac
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli := setup(t)

	std := createStudent(t, cli.students, "1AB21CS001", "oldpwd")
	fac := createFaculty(t, cli.faculty, "STF001", "oldpwd")

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "both usn and id", args: []string{"resetpassword", "-usn", std.USN, "-id", fac.ID}, wantErr: errHelp},
		{name: "usn but no password", args: []string{"resetpassword", "-usn", std.USN}, wantErr: errHelp},
		{name: "student not found", args: []string{"resetpassword", "-usn", "1AB21CS999"}, extra: extra{pwd: "lol"}, wantErr: student.ErrNotFound},
		{name: "faculty not found", args: []string{"resetpassword", "-id", "STF999"}, extra: extra{pwd: "lol"}, wantErr: faculty.ErrNotFound},
		{name: "reset student", args: []string{"resetpassword", "-usn", std.USN}, extra: extra{pwd: "newpwd"}},
		{name: "reset faculty", args: []string{"resetpassword", "-id", fac.ID}, extra: extra{pwd: "newpwd"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			if extra, ok := tt.extra.(extra); ok {
				return []byte(extra.pwd), nil
			}
			return nil, nil
		}

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if err == nil {
				refreshedStd, err := cli.students.GetStudentByUSN(context.Background(), std.USN)
				if err != nil {
					t.Fatalf("GetStudentByUSN() failed: %v", err)
				}
				refreshedFac, err := cli.faculty.GetFacultyByID(context.Background(), fac.ID)
				if err != nil {
					t.Fatalf("GetFacultyByID() failed: %v", err)
				}
				if bytes.Equal(refreshedStd.PasswordHash, std.PasswordHash) &&
					bytes.Equal(refreshedFac.PasswordHash, fac.PasswordHash) {
					t.Error("failed to update new password")
				}
			} else if err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func Test_commandLine_addAdmin(t *testing.T) {
	cli := setup(t)

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no args", args: []string{"addadmin"}, wantErr: errHelp},
		{name: "email but no password", args: []string{"addadmin", "-email", "hod@test.edu"}, wantErr: errHelp},
		{name: "create", args: []string{"addadmin", "-email", "hod@test.edu"}, extra: extra{pwd: "secret"}},
		{name: "duplicate", args: []string{"addadmin", "-email", "hod@test.edu"}, extra: extra{pwd: "secret"}, wantErr: auth.ErrAdminExists},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			if extra, ok := tt.extra.(extra); ok {
				return []byte(extra.pwd), nil
			}
			return nil, nil
		}

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if err == nil {
				adm, err := cli.admins.GetAdminByEmail(context.Background(), "hod@test.edu")
				if err != nil {
					t.Fatalf("GetAdminByEmail() failed: %v", err)
				}
				if err := adm.CheckPassword("secret"); err != nil {
					t.Error("stored password hash does not match")
				}
			} else if err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func Test_commandLine_migrate(t *testing.T) {
	cli := setup(t)

	gooseRunFunc = func(command string, db *sql.DB, dir string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "redo", "reset", "status", "version", "fix": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s requires a VERSION argument", command)
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to requires a VERSION argument"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != nil {
				if tt.wantErr != nil {
					if err != tt.wantErr {
						t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
					}
				} else if tt.wantErrStr != "" {
					if err.Error() != tt.wantErrStr {
						t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
					}
				} else {
					t.Errorf("cli.run() unexpected error = %v", err)
				}
			}
		})
	}
}
