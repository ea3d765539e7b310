package echoapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/dams-project/backend/core"
	"github.com/dams-project/backend/core/auth"
)

type authApi struct {
	svc *auth.Service
}

func registerAuthAPI(g *echo.Group, authed echo.MiddlewareFunc, svc *auth.Service) {
	api := authApi{svc: svc}

	ag := g.Group("/auth")

	// un-authed endpoints
	// TODO: rate limit the login endpoints
	ag.POST("/student-login", api.studentLogin)
	ag.POST("/faculty-login", api.facultyLogin)
	ag.POST("/admin-login", api.adminLogin)
	ag.POST("/admin-verify-otp", api.adminVerifyOTP)

	// authed endpoints
	sg := ag.Group("", authed)
	sg.GET("/session", api.session)
	sg.POST("/logout", api.logout)
}

type loginResponse struct {
	Principal auth.Principal `json:"principal"`
	Token     string         `json:"token"`
}

// Handlers

func (api *authApi) studentLogin(ctx echo.Context) error {
	var data auth.StudentLogin
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to StudentLogin")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	p, token, err := api.svc.LoginStudent(ctx.Request().Context(), data)
	if err != nil {
		if errors.Cause(err) == auth.ErrAuthenticationFailed {
			return core.NewValidationError(errors.New("invalid credentials"))
		}
		return errors.Wrap(err, "logging student in")
	}

	setSessionCookie(ctx, token)
	return ctx.JSON(http.StatusOK, loginResponse{Principal: p, Token: token})
}

func (api *authApi) facultyLogin(ctx echo.Context) error {
	var data auth.FacultyLogin
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to FacultyLogin")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	p, token, err := api.svc.LoginFaculty(ctx.Request().Context(), data)
	if err != nil {
		if errors.Cause(err) == auth.ErrAuthenticationFailed {
			return core.NewValidationError(errors.New("invalid credentials"))
		}
		return errors.Wrap(err, "logging faculty in")
	}

	setSessionCookie(ctx, token)
	return ctx.JSON(http.StatusOK, loginResponse{Principal: p, Token: token})
}

// adminLogin only checks the password and mails a one-time code; no
// session is opened until the code comes back via adminVerifyOTP.
func (api *authApi) adminLogin(ctx echo.Context) error {
	var data auth.AdminLogin
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AdminLogin")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	if err := api.svc.StartAdminLogin(ctx.Request().Context(), data); err != nil {
		cause := errors.Cause(err)
		if cause == auth.ErrAuthenticationFailed || cause == auth.ErrAdminNotFound {
			return core.NewValidationError(errors.New("invalid credentials"))
		}
		return errors.Wrap(err, "starting admin login")
	}
	return ctx.JSON(http.StatusOK, successResponse{Success: "A one-time code has been sent to your email address."})
}

func (api *authApi) adminVerifyOTP(ctx echo.Context) error {
	var data auth.AdminOTP
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AdminOTP")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	p, token, err := api.svc.VerifyAdminOTP(ctx.Request().Context(), data)
	if err != nil {
		if errors.Cause(err) == auth.ErrInvalidOTP {
			return core.NewValidationError(errors.New("invalid or expired code"))
		}
		return errors.Wrap(err, "verifying admin OTP")
	}

	setSessionCookie(ctx, token)
	return ctx.JSON(http.StatusOK, loginResponse{Principal: p, Token: token})
}

func (api *authApi) session(ctx echo.Context) error {
	p, err := getContextPrincipal(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context principal")
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *authApi) logout(ctx echo.Context) error {
	if err := api.svc.Logout(ctx.Request().Context(), sessionToken(ctx)); err != nil {
		return errors.Wrap(err, "logging out")
	}
	clearSessionCookie(ctx)
	return ctx.JSON(http.StatusOK, successResponse{Success: "Logged out."})
}

func setSessionCookie(ctx echo.Context, token string) {
	ctx.SetCookie(&http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(core.Conf.Session.Expiry / time.Second),
		HttpOnly: true,
		Secure:   !core.Conf.Debug,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(ctx echo.Context) {
	ctx.SetCookie(&http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}
