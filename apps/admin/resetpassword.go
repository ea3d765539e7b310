package main

import (
	"context"
	"strings"
	"time"

	"github.com/dams-project/backend/core"
)

func (cli *commandLine) resetStudentPassword(usn, pwd string) error {
	ctx := context.Background()
	std, err := cli.students.GetStudentByUSN(ctx, strings.ToUpper(core.CleanString(usn)))
	if err != nil {
		return err
	}
	if err := std.SetPassword(pwd); err != nil {
		return err
	}
	std.UpdatedAt = time.Now().UTC()
	if _, err := cli.students.UpdateStudent(ctx, std); err != nil {
		return err
	}
	return nil
}

func (cli *commandLine) resetFacultyPassword(id, pwd string) error {
	ctx := context.Background()
	fac, err := cli.faculty.GetFacultyByID(ctx, strings.ToUpper(core.CleanString(id)))
	if err != nil {
		return err
	}
	if err := fac.SetPassword(pwd); err != nil {
		return err
	}
	fac.UpdatedAt = time.Now().UTC()
	if _, err := cli.faculty.UpdateFaculty(ctx, fac); err != nil {
		return err
	}
	return nil
}
