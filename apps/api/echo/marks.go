package echoapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/dams-project/backend/core"
	"github.com/dams-project/backend/core/auth"
	"github.com/dams-project/backend/core/marks"
)

type marksApi struct {
	svc *marks.Service
}

func registerMarksAPI(g *echo.Group, authed, guestOK echo.MiddlewareFunc, svc *marks.Service) {
	api := marksApi{svc: svc}

	mg := g.Group("/marks")

	// staff endpoints
	fg := mg.Group("", authed, roleMiddleware(auth.RoleFaculty))
	fg.POST("", api.upsert)
	fg.POST("/sgpa", api.saveSgpa)

	rg := mg.Group("/report", authed, roleMiddleware(auth.RoleFaculty, auth.RoleAdmin))
	rg.GET("", api.report)

	// student endpoints; a `?usn=` query grants guest access
	sg := mg.Group("", guestOK)
	sg.GET("", api.studentView)
	sg.GET("/sgpa", api.sgpaHistory)
}

// Handlers

func (api *marksApi) upsert(ctx echo.Context) error {
	var data marks.UpsertMarks
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpsertMarks")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	if err := api.svc.Upsert(ctx.Request().Context(), data); err != nil {
		return errors.Wrap(err, "saving marks")
	}
	return ctx.JSON(http.StatusCreated, successResponse{Success: "Marks saved."})
}

// studentView returns a student's marks with the derived internal, total
// and result for each subject; `?sem=` narrows it to one semester.
func (api *marksApi) studentView(ctx echo.Context) error {
	usn, err := resolveUSN(ctx)
	if err != nil {
		return err
	}
	sem, err := optionalIntQueryParam(ctx, "sem")
	if err != nil {
		return err
	}

	view, err := api.svc.StudentView(ctx.Request().Context(), usn, sem)
	if err != nil {
		return errors.Wrap(err, "querying student marks")
	}
	return ctx.JSON(http.StatusOK, view)
}

func (api *marksApi) report(ctx echo.Context) error {
	sem, err := intQueryParam(ctx, "sem")
	if err != nil {
		return err
	}
	section := strings.ToUpper(core.CleanString(ctx.QueryParam("section")))
	subjectCode := strings.ToUpper(core.CleanString(ctx.QueryParam("subject_code")))
	if section == "" || subjectCode == "" {
		return echo.NewHTTPError(http.StatusBadRequest, `missing query parameter "section" or "subject_code"`)
	}
	resultFilter := strings.ToUpper(core.CleanString(ctx.QueryParam("result")))

	report, err := api.svc.Report(ctx.Request().Context(), sem, section, subjectCode, resultFilter)
	if err != nil {
		return errors.Wrap(err, "querying marks report")
	}
	return ctx.JSON(http.StatusOK, report)
}

func (api *marksApi) saveSgpa(ctx echo.Context) error {
	var data marks.SaveSgpa
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SaveSgpa")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	cgpa, err := api.svc.SaveSgpaCgpa(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "saving SGPA")
	}
	return ctx.JSON(http.StatusCreated, echo.Map{"cgpa": cgpa})
}

func (api *marksApi) sgpaHistory(ctx echo.Context) error {
	usn, err := resolveUSN(ctx)
	if err != nil {
		return err
	}
	history, err := api.svc.SgpaHistory(ctx.Request().Context(), usn)
	if err != nil {
		return errors.Wrap(err, "querying SGPA history")
	}
	return ctx.JSON(http.StatusOK, history)
}
