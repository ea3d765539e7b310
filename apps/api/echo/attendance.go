package echoapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/dams-project/backend/core"
	"github.com/dams-project/backend/core/attendance"
	"github.com/dams-project/backend/core/auth"
)

type attendanceApi struct {
	svc *attendance.Service
}

func registerAttendanceAPI(g *echo.Group, authed, guestOK echo.MiddlewareFunc, svc *attendance.Service) {
	api := attendanceApi{svc: svc}

	ag := g.Group("/attendance")

	// staff endpoints
	fg := ag.Group("", authed, roleMiddleware(auth.RoleFaculty))
	fg.POST("", api.submit)
	fg.PUT("", api.updateStatus)
	fg.POST("/alerts", api.alert)

	rg := ag.Group("/report", authed, roleMiddleware(auth.RoleFaculty, auth.RoleAdmin))
	rg.GET("", api.classReport)

	// student endpoints; a `?usn=` query grants guest access
	sg := ag.Group("", guestOK)
	sg.GET("/summary", api.summary)
	sg.GET("/monthly", api.monthly)
	sg.GET("/subjects", api.subjects)
}

// Handlers

func (api *attendanceApi) submit(ctx echo.Context) error {
	var data attendance.Submission
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Submission")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	recorded, err := api.svc.Submit(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "submitting attendance")
	}
	return ctx.JSON(http.StatusCreated, echo.Map{"recorded": recorded})
}

func (api *attendanceApi) updateStatus(ctx echo.Context) error {
	var data attendance.UpdateRecord
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateRecord")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	if err := api.svc.UpdateStatus(ctx.Request().Context(), data); err != nil {
		return errors.Wrap(err, "updating attendance record")
	}
	return ctx.JSON(http.StatusOK, successResponse{Success: "Attendance updated."})
}

func (api *attendanceApi) summary(ctx echo.Context) error {
	usn, err := resolveUSN(ctx)
	if err != nil {
		return err
	}
	summary, err := api.svc.Summary(ctx.Request().Context(), usn)
	if err != nil {
		return errors.Wrap(err, "querying attendance summary")
	}
	return ctx.JSON(http.StatusOK, summary)
}

func (api *attendanceApi) monthly(ctx echo.Context) error {
	usn, err := resolveUSN(ctx)
	if err != nil {
		return err
	}
	subjectCode := strings.ToUpper(core.CleanString(ctx.QueryParam("subject_code")))
	if subjectCode == "" {
		return echo.NewHTTPError(http.StatusBadRequest, `missing query parameter "subject_code"`)
	}

	monthly, err := api.svc.Monthly(ctx.Request().Context(), usn, subjectCode)
	if err != nil {
		return errors.Wrap(err, "querying monthly attendance")
	}
	return ctx.JSON(http.StatusOK, monthly)
}

func (api *attendanceApi) subjects(ctx echo.Context) error {
	usn, err := resolveUSN(ctx)
	if err != nil {
		return err
	}
	subjects, err := api.svc.Subjects(ctx.Request().Context(), usn)
	if err != nil {
		return errors.Wrap(err, "querying attended subjects")
	}
	return ctx.JSON(http.StatusOK, subjects)
}

func (api *attendanceApi) classReport(ctx echo.Context) error {
	sem, err := intQueryParam(ctx, "sem")
	if err != nil {
		return err
	}
	section := strings.ToUpper(core.CleanString(ctx.QueryParam("section")))
	subjectCode := strings.ToUpper(core.CleanString(ctx.QueryParam("subject_code")))
	if section == "" || subjectCode == "" {
		return echo.NewHTTPError(http.StatusBadRequest, `missing query parameter "section" or "subject_code"`)
	}

	report, err := api.svc.ClassReport(ctx.Request().Context(), sem, section, subjectCode)
	if err != nil {
		return errors.Wrap(err, "querying class attendance report")
	}
	return ctx.JSON(http.StatusOK, report)
}

type alertRequest struct {
	USN string `json:"usn" validate:"required,usn"`
}

// alert emails a shortage warning to the student when they sit below the
// attendance threshold; repeated requests within the cooldown window are
// reported back as not sent.
func (api *attendanceApi) alert(ctx echo.Context) error {
	var data alertRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to alertRequest")
	}
	data.USN = strings.ToUpper(core.CleanString(data.USN))
	if err := core.Validate.Struct(&data); err != nil {
		return err
	}

	result, err := api.svc.Alert(ctx.Request().Context(), data.USN)
	if err != nil {
		return errors.Wrap(err, "sending attendance alert")
	}
	return ctx.JSON(http.StatusOK, result)
}
