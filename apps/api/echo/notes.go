package echoapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/dams-project/backend/core"
	"github.com/dams-project/backend/core/auth"
	"github.com/dams-project/backend/core/notes"
)

type notesApi struct {
	svc *notes.Service
}

func registerNotesAPI(g *echo.Group, authed, guestOK echo.MiddlewareFunc, svc *notes.Service) {
	api := notesApi{svc: svc}

	ng := g.Group("/notes")

	// faculty endpoints; uploads are limited to subjects the faculty teaches
	fg := ng.Group("", authed, roleMiddleware(auth.RoleFaculty))
	fg.POST("", api.upload)
	fg.DELETE("/:id", api.destroy)
	fg.DELETE("", api.destroyAll)

	// student endpoints; a `?usn=` query grants guest access
	sg := ng.Group("", guestOK)
	sg.GET("", api.query)
	sg.GET("/:id/download", api.download)
	sg.GET("/subjects", api.subjects)

	// read tracking needs a real student session
	tg := ng.Group("", authed, roleMiddleware(auth.RoleStudent))
	tg.GET("/unread", api.unreadCount)
	tg.POST("/:id/viewed", api.markViewed)
}

// Handlers

func (api *notesApi) upload(ctx echo.Context) error {
	p, err := getContextPrincipal(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context principal")
	}

	sem, _ := strconv.Atoi(ctx.FormValue("sem"))
	data := notes.NewNote{
		Semester:    sem,
		Section:     ctx.FormValue("section"),
		SubjectCode: ctx.FormValue("subject_code"),
		Title:       ctx.FormValue("title"),
	}
	data.FileName, data.FileType, data.Data, err = formFileBytes(ctx, "file")
	if err != nil {
		return err
	}
	if err = data.Validate(); err != nil {
		return err
	}

	note, err := api.svc.Upload(ctx.Request().Context(), p.ID, data)
	if err != nil {
		return errors.Wrap(err, "uploading note")
	}
	return ctx.JSON(http.StatusCreated, note)
}

func (api *notesApi) query(ctx echo.Context) error {
	p, err := getContextPrincipal(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context principal")
	}
	sem, section, err := studentClass(ctx, p)
	if err != nil {
		return err
	}
	subjectCode := strings.ToUpper(core.CleanString(ctx.QueryParam("subject_code")))

	result, err := api.svc.Query(ctx.Request().Context(), sem, section, subjectCode)
	if err != nil {
		return errors.Wrap(err, "querying notes")
	}
	return ctx.JSON(http.StatusOK, result)
}

func (api *notesApi) download(ctx echo.Context) error {
	id, err := intPathParam(ctx, "id")
	if err != nil {
		return err
	}
	note, err := api.svc.Download(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "downloading note")
	}

	ctx.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", note.FileName))
	return ctx.Blob(http.StatusOK, note.FileType, note.Data)
}

func (api *notesApi) destroy(ctx echo.Context) error {
	p, err := getContextPrincipal(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context principal")
	}
	id, err := intPathParam(ctx, "id")
	if err != nil {
		return err
	}

	if err = api.svc.Delete(ctx.Request().Context(), p.ID, id); err != nil {
		return errors.Wrap(err, "deleting note")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *notesApi) destroyAll(ctx echo.Context) error {
	p, err := getContextPrincipal(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context principal")
	}
	sem, err := intQueryParam(ctx, "sem")
	if err != nil {
		return err
	}
	section := strings.ToUpper(core.CleanString(ctx.QueryParam("section")))
	subjectCode := strings.ToUpper(core.CleanString(ctx.QueryParam("subject_code")))
	if section == "" || subjectCode == "" {
		return echo.NewHTTPError(http.StatusBadRequest, `missing query parameter "section" or "subject_code"`)
	}

	if err = api.svc.DeleteAll(ctx.Request().Context(), p.ID, sem, section, subjectCode); err != nil {
		return errors.Wrap(err, "deleting notes")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *notesApi) subjects(ctx echo.Context) error {
	p, err := getContextPrincipal(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context principal")
	}
	sem, section, err := studentClass(ctx, p)
	if err != nil {
		return err
	}

	subjects, err := api.svc.SubjectsWithNotes(ctx.Request().Context(), sem, section)
	if err != nil {
		return errors.Wrap(err, "querying subjects with notes")
	}
	return ctx.JSON(http.StatusOK, subjects)
}

func (api *notesApi) unreadCount(ctx echo.Context) error {
	p, err := getContextPrincipal(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context principal")
	}

	count, err := api.svc.UnreadCount(ctx.Request().Context(), p.ID, p.Semester, p.Section)
	if err != nil {
		return errors.Wrap(err, "counting unread notes")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"unread": count})
}

func (api *notesApi) markViewed(ctx echo.Context) error {
	p, err := getContextPrincipal(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context principal")
	}
	id, err := intPathParam(ctx, "id")
	if err != nil {
		return err
	}

	if err = api.svc.MarkViewed(ctx.Request().Context(), p.ID, id); err != nil {
		return errors.Wrap(err, "marking note viewed")
	}
	return ctx.JSON(http.StatusOK, successResponse{Success: "Marked as viewed."})
}
