package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/dams-project/backend/core/faculty"
	"github.com/dams-project/backend/core/student"
)

type profileApi struct {
	studentSvc *student.Service
	facultySvc *faculty.Service
}

func registerProfileAPI(
	g *echo.Group,
	authed echo.MiddlewareFunc,
	studentSvc *student.Service,
	facultySvc *faculty.Service,
) {
	api := profileApi{studentSvc: studentSvc, facultySvc: facultySvc}

	pg := g.Group("/profile", authed)
	pg.GET("", api.retrieve)
	pg.POST("/photo", api.uploadPhoto)
}

type (
	studentProfile struct {
		student.Student
		Photo string `json:"photo,omitempty"`
	}

	facultyProfile struct {
		faculty.Faculty
		Photo string `json:"photo,omitempty"`
	}
)

// Handlers

func (api *profileApi) retrieve(ctx echo.Context) error {
	p, err := getContextPrincipal(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context principal")
	}

	switch {
	case p.IsStudent():
		std, err := api.studentSvc.GetByUSN(ctx.Request().Context(), p.ID)
		if err != nil {
			return errors.Wrap(err, "getting student profile")
		}
		return ctx.JSON(http.StatusOK, studentProfile{
			Student: std,
			Photo:   photoDataURL(std.PhotoType, std.Photo),
		})
	case p.IsFaculty():
		fac, err := api.facultySvc.GetByID(ctx.Request().Context(), p.ID)
		if err != nil {
			return errors.Wrap(err, "getting faculty profile")
		}
		return ctx.JSON(http.StatusOK, facultyProfile{
			Faculty: fac,
			Photo:   photoDataURL(fac.PhotoType, fac.Photo),
		})
	default: // admins have no stored profile beyond their session
		return ctx.JSON(http.StatusOK, p)
	}
}

func (api *profileApi) uploadPhoto(ctx echo.Context) error {
	p, err := getContextPrincipal(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context principal")
	}
	if p.Guest || p.IsAdmin() {
		return errHttpForbidden
	}

	_, contentType, data, err := formFileBytes(ctx, "photo", imageContentTypes...)
	if err != nil {
		return err
	}

	if p.IsStudent() {
		err = api.studentSvc.SetPhoto(ctx.Request().Context(), p.ID, data, contentType)
	} else {
		err = api.facultySvc.SetPhoto(ctx.Request().Context(), p.ID, data, contentType)
	}
	if err != nil {
		return errors.Wrap(err, "saving profile photo")
	}
	return ctx.JSON(http.StatusOK, successResponse{Success: "Photo updated."})
}
