package echoapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/dams-project/backend/core"
	"github.com/dams-project/backend/core/auth"
	"github.com/dams-project/backend/core/faculty"
	"github.com/dams-project/backend/core/roster"
	"github.com/dams-project/backend/core/student"
)

type adminApi struct {
	authSvc    *auth.Service
	studentSvc *student.Service
	facultySvc *faculty.Service
	rosterSvc  *roster.Service
}

func registerAdminAPI(
	g *echo.Group,
	authed echo.MiddlewareFunc,
	authSvc *auth.Service,
	studentSvc *student.Service,
	facultySvc *faculty.Service,
	rosterSvc *roster.Service,
) {
	api := adminApi{
		authSvc:    authSvc,
		studentSvc: studentSvc,
		facultySvc: facultySvc,
		rosterSvc:  rosterSvc,
	}

	ag := g.Group("/admin", authed, roleMiddleware(auth.RoleAdmin))

	ag.POST("/students", api.saveStudent)
	ag.GET("/students", api.queryStudents)
	ag.DELETE("/students/:usn", api.destroyStudent)

	ag.POST("/faculty", api.saveFaculty)
	ag.DELETE("/faculty/:id", api.destroyFaculty)

	ag.POST("/subjects", api.saveSubject)
	ag.GET("/subjects", api.querySubjects)

	ag.POST("/assignments", api.assignFaculty)
	ag.GET("/assignments", api.assignedFaculty)

	ag.POST("/advisors", api.assignAdvisor)
	ag.GET("/advisors", api.queryAdvisors)

	ag.POST("/admins", api.createAdmin)

	// faculty pick their subject for a class from this list
	g.GET("/subjects", api.teachingSubjects, authed, roleMiddleware(auth.RoleFaculty))
}

// Handlers

func (api *adminApi) saveStudent(ctx echo.Context) error {
	var data student.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	std, err := api.studentSvc.Save(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "saving student")
	}
	return ctx.JSON(http.StatusCreated, std)
}

// queryStudents returns the whole department, or one class when both
// `sem` and `section` are given.
func (api *adminApi) queryStudents(ctx echo.Context) error {
	sem, err := optionalIntQueryParam(ctx, "sem")
	if err != nil {
		return err
	}
	section := strings.ToUpper(core.CleanString(ctx.QueryParam("section")))

	var students []student.Student
	if sem > 0 && section != "" {
		students, err = api.studentSvc.QueryByClass(ctx.Request().Context(), sem, section)
	} else {
		students, err = api.studentSvc.QueryAll(ctx.Request().Context())
	}
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *adminApi) destroyStudent(ctx echo.Context) error {
	usn := strings.ToUpper(core.CleanString(ctx.Param("usn")))
	if err := api.studentSvc.Delete(ctx.Request().Context(), usn); err != nil {
		return errors.Wrap(err, "deleting student")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *adminApi) saveFaculty(ctx echo.Context) error {
	var data faculty.NewFaculty
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewFaculty")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	fac, err := api.facultySvc.Save(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "saving faculty")
	}
	return ctx.JSON(http.StatusCreated, fac)
}

func (api *adminApi) destroyFaculty(ctx echo.Context) error {
	if err := api.facultySvc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting faculty")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *adminApi) saveSubject(ctx echo.Context) error {
	var data roster.NewSubject
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubject")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	sub, err := api.rosterSvc.SaveSubject(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "saving subject")
	}
	return ctx.JSON(http.StatusCreated, sub)
}

func (api *adminApi) querySubjects(ctx echo.Context) error {
	sem, err := intQueryParam(ctx, "sem")
	if err != nil {
		return err
	}
	subjects, err := api.rosterSvc.SubjectsBySemester(ctx.Request().Context(), sem)
	if err != nil {
		return errors.Wrap(err, "querying subjects")
	}
	return ctx.JSON(http.StatusOK, subjects)
}

func (api *adminApi) assignFaculty(ctx echo.Context) error {
	var data roster.NewAssignment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAssignment")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	if err := api.rosterSvc.AssignFaculty(ctx.Request().Context(), data); err != nil {
		return errors.Wrap(err, "assigning faculty")
	}
	return ctx.JSON(http.StatusCreated, successResponse{Success: "Faculty assigned."})
}

func (api *adminApi) assignedFaculty(ctx echo.Context) error {
	subjectCode := strings.ToUpper(core.CleanString(ctx.QueryParam("subject_code")))
	section := strings.ToUpper(core.CleanString(ctx.QueryParam("section")))
	assignment, err := api.rosterSvc.AssignedFaculty(ctx.Request().Context(), subjectCode, section)
	if err != nil {
		return errors.Wrap(err, "querying assignment")
	}
	return ctx.JSON(http.StatusOK, assignment)
}

func (api *adminApi) assignAdvisor(ctx echo.Context) error {
	var data roster.NewAdvisor
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAdvisor")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	if err := api.rosterSvc.AssignAdvisor(ctx.Request().Context(), data); err != nil {
		return errors.Wrap(err, "assigning class advisor")
	}
	return ctx.JSON(http.StatusCreated, successResponse{Success: "Class advisor assigned."})
}

func (api *adminApi) queryAdvisors(ctx echo.Context) error {
	advisors, err := api.rosterSvc.AllAdvisors(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying class advisors")
	}
	return ctx.JSON(http.StatusOK, advisors)
}

// teachingSubjects lists the subjects the calling faculty teaches for
// one class.
func (api *adminApi) teachingSubjects(ctx echo.Context) error {
	p, err := getContextPrincipal(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context principal")
	}
	sem, err := intQueryParam(ctx, "sem")
	if err != nil {
		return err
	}
	section := strings.ToUpper(core.CleanString(ctx.QueryParam("section")))
	if section == "" {
		return echo.NewHTTPError(http.StatusBadRequest, `missing query parameter "section"`)
	}

	subjects, err := api.rosterSvc.FacultySubjects(ctx.Request().Context(), p.ID, sem, section)
	if err != nil {
		return errors.Wrap(err, "querying teaching subjects")
	}
	return ctx.JSON(http.StatusOK, subjects)
}

func (api *adminApi) createAdmin(ctx echo.Context) error {
	var data auth.NewAdmin
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAdmin")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	admin, err := api.authSvc.CreateAdmin(ctx.Request().Context(), data)
	if err != nil {
		if errors.Cause(err) == auth.ErrAdminExists {
			return core.NewValidationError(nil, core.FieldError{Field: "email", Error: auth.ErrAdminExists.Error()})
		}
		return errors.Wrap(err, "creating admin")
	}
	return ctx.JSON(http.StatusCreated, admin)
}
