package echoapi

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/dams-project/backend/core/auth"
	"github.com/dams-project/backend/core/timetable"
)

type timetableApi struct {
	svc *timetable.Service
}

func registerTimetableAPI(g *echo.Group, authed, guestOK echo.MiddlewareFunc, svc *timetable.Service) {
	api := timetableApi{svc: svc}

	tg := g.Group("/timetable")

	// only the class advisor may replace the timetable; the class is
	// derived from their advisorship, not from the request
	fg := tg.Group("", authed, roleMiddleware(auth.RoleFaculty))
	fg.POST("", api.upload)

	sg := tg.Group("", guestOK)
	sg.GET("", api.retrieve)
}

// Handlers

func (api *timetableApi) upload(ctx echo.Context) error {
	p, err := getContextPrincipal(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context principal")
	}

	fileName, fileType, data, err := formFileBytes(ctx, "file", "application/pdf")
	if err != nil {
		return err
	}

	tt, err := api.svc.Upload(ctx.Request().Context(), p.ID, fileName, fileType, data)
	if err != nil {
		return errors.Wrap(err, "uploading timetable")
	}
	return ctx.JSON(http.StatusCreated, tt)
}

func (api *timetableApi) retrieve(ctx echo.Context) error {
	p, err := getContextPrincipal(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context principal")
	}
	sem, section, err := studentClass(ctx, p)
	if err != nil {
		return err
	}

	tt, err := api.svc.Get(ctx.Request().Context(), sem, section)
	if err != nil {
		return errors.Wrap(err, "getting timetable")
	}

	ctx.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("inline; filename=%q", tt.FileName))
	return ctx.Blob(http.StatusOK, tt.FileType, tt.Data)
}
