package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/dams-project/backend/core/faculty"
)

type staffApi struct {
	svc *faculty.Service
}

// registerStaffAPI exposes the public staff directory, ordered by position
// rank (HoD first).
func registerStaffAPI(g *echo.Group, svc *faculty.Service) {
	api := staffApi{svc: svc}
	g.GET("/staff", api.query)
}

type staffMember struct {
	faculty.Faculty
	Photo string `json:"photo,omitempty"`
}

func (api *staffApi) query(ctx echo.Context) error {
	staff, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying staff")
	}

	members := make([]staffMember, 0, len(staff))
	for _, fac := range staff {
		members = append(members, staffMember{
			Faculty: fac,
			Photo:   photoDataURL(fac.PhotoType, fac.Photo),
		})
	}
	return ctx.JSON(http.StatusOK, members)
}
