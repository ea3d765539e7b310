package echoapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/dams-project/backend/core/announcement"
	"github.com/dams-project/backend/core/auth"
)

type announcementApi struct {
	svc *announcement.Service
}

func registerAnnouncementAPI(g *echo.Group, authed echo.MiddlewareFunc, svc *announcement.Service) {
	api := announcementApi{svc: svc}

	ag := g.Group("/announcements")

	// the notice board is public
	ag.GET("", api.query)
	ag.GET("/:id/attachment", api.attachment)

	mg := ag.Group("", authed, roleMiddleware(auth.RoleAdmin))
	mg.POST("", api.publish)
	mg.DELETE("/:id", api.destroy)
}

// Handlers

// publish stores the notice and emails it to every student. An attachment
// may come along in the optional "file" multipart field.
func (api *announcementApi) publish(ctx echo.Context) error {
	p, err := getContextPrincipal(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context principal")
	}

	isMarquee, _ := strconv.ParseBool(ctx.FormValue("is_marquee"))
	data := announcement.NewAnnouncement{
		Title:     ctx.FormValue("title"),
		Message:   ctx.FormValue("message"),
		Category:  ctx.FormValue("category"),
		IsMarquee: isMarquee,
	}
	if _, fileErr := ctx.FormFile("file"); fileErr == nil {
		data.FileName, data.FileType, data.FileData, err = formFileBytes(ctx, "file")
		if err != nil {
			return err
		}
	}
	if err = data.Validate(); err != nil {
		return err
	}

	a, err := api.svc.Publish(ctx.Request().Context(), p.ID, data)
	if err != nil {
		return errors.Wrap(err, "publishing announcement")
	}
	return ctx.JSON(http.StatusCreated, a)
}

func (api *announcementApi) query(ctx echo.Context) error {
	result, err := api.svc.Query(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying announcements")
	}
	return ctx.JSON(http.StatusOK, result)
}

func (api *announcementApi) attachment(ctx echo.Context) error {
	id, err := intPathParam(ctx, "id")
	if err != nil {
		return err
	}
	a, err := api.svc.Attachment(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "downloading attachment")
	}

	ctx.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", a.FileName.String))
	return ctx.Blob(http.StatusOK, a.FileType.String, a.FileData.Bytes)
}

func (api *announcementApi) destroy(ctx echo.Context) error {
	id, err := intPathParam(ctx, "id")
	if err != nil {
		return err
	}
	if err = api.svc.Delete(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting announcement")
	}
	return ctx.NoContent(http.StatusNoContent)
}
