package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/dams-project/backend/core"
	"github.com/dams-project/backend/core/announcement"
	"github.com/dams-project/backend/core/attendance"
	"github.com/dams-project/backend/core/auth"
	"github.com/dams-project/backend/core/faculty"
	"github.com/dams-project/backend/core/marks"
	"github.com/dams-project/backend/core/notes"
	"github.com/dams-project/backend/core/roster"
	"github.com/dams-project/backend/core/student"
	"github.com/dams-project/backend/core/timetable"
)

var (
	errUnauthorized  = echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	errHttpForbidden = echo.NewHTTPError(http.StatusForbidden, "permission denied")
	errHttpNotFound  = echo.NewHTTPError(http.StatusNotFound, "not found")
)

// statusForDomainErr maps known service errors to HTTP status codes.
func statusForDomainErr(err error) (int, bool) {
	switch err {
	case auth.ErrAuthenticationFailed, auth.ErrInvalidOTP, auth.ErrNoSession:
		return http.StatusUnauthorized, true
	case notes.ErrNotAssigned, notes.ErrNotUploader, timetable.ErrNotAdvisor:
		return http.StatusForbidden, true
	case student.ErrNotFound, faculty.ErrNotFound, auth.ErrAdminNotFound,
		roster.ErrSubjectNotFound, roster.ErrAssignmentNotFound, roster.ErrAdvisorNotFound,
		attendance.ErrRecordNotFound, marks.ErrNotFound, notes.ErrNotFound,
		announcement.ErrNotFound, announcement.ErrNoAttachment, timetable.ErrNotFound:
		return http.StatusNotFound, true
	case attendance.ErrEmptyRoster, auth.ErrAdminExists,
		student.ErrPasswordRequired, faculty.ErrPasswordRequired:
		return http.StatusBadRequest, true
	}
	return 0, false
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case validator.ValidationErrors:
			fldErrs := make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				fldErrs[vErr.Field()] = vErr.Translate(core.Translator)
			}
			code = http.StatusBadRequest
			message = fldErrs
		case *core.ValidationError:
			if origErr.Fields != nil {
				fldErrs := make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					fldErrs[fErr.Field] = fErr.Error
				}
				message = fldErrs
			} else {
				message = origErr.Error()
			}
			code = http.StatusBadRequest
		default:
			if c, ok := statusForDomainErr(origErr); ok {
				code = c
				message = origErr.Error()
				break
			}

			// any other error is a server error
			code = http.StatusInternalServerError
			msg := http.StatusText(http.StatusInternalServerError)
			message = msg

			var p auth.Principal
			if ctxP, pErr := getContextPrincipal(ctx); pErr == nil {
				p = ctxP
			}
			logger.Error(msg, errors.Wrap(err, msg), p)

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}

		if ctx.Echo().Debug && code == http.StatusInternalServerError {
			message = err.Error()
		}
		if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
