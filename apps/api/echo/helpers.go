package echoapi

import (
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/dams-project/backend/core"
	"github.com/dams-project/backend/core/auth"
)

const maxUploadSize = 10 << 20 // 10 MiB

var imageContentTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

func intQueryParam(ctx echo.Context, name string) (int, error) {
	raw := ctx.QueryParam(name)
	if raw == "" {
		return 0, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("missing query parameter %q", name))
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid query parameter %q", name))
	}
	return val, nil
}

func optionalIntQueryParam(ctx echo.Context, name string) (int, error) {
	if ctx.QueryParam(name) == "" {
		return 0, nil
	}
	return intQueryParam(ctx, name)
}

func intPathParam(ctx echo.Context, name string) (int64, error) {
	val, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid path parameter %q", name))
	}
	return val, nil
}

// formFileBytes reads the uploaded file from a multipart form field,
// enforcing the size cap and an optional content type allow-list.
func formFileBytes(ctx echo.Context, field string, allowedTypes ...string) (name, contentType string, data []byte, err error) {
	header, err := ctx.FormFile(field)
	if err != nil {
		return "", "", nil, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("missing file %q", field))
	}
	if header.Size > maxUploadSize {
		return "", "", nil, echo.NewHTTPError(http.StatusRequestEntityTooLarge, "file too large")
	}

	contentType = header.Header.Get(echo.HeaderContentType)
	if i := strings.Index(contentType, ";"); i != -1 {
		contentType = strings.TrimSpace(contentType[:i])
	}
	if len(allowedTypes) > 0 {
		var allowed bool
		for _, t := range allowedTypes {
			if contentType == t {
				allowed = true
				break
			}
		}
		if !allowed {
			return "", "", nil, echo.NewHTTPError(http.StatusUnsupportedMediaType, fmt.Sprintf("unsupported file type %q", contentType))
		}
	}

	file, err := header.Open()
	if err != nil {
		return "", "", nil, errors.Wrapf(err, "opening uploaded file %q", field)
	}
	defer file.Close()

	data, err = io.ReadAll(file)
	if err != nil {
		return "", "", nil, errors.Wrapf(err, "reading uploaded file %q", field)
	}
	return header.Filename, contentType, data, nil
}

// photoDataURL inlines a stored photo blob as a data URL; blobs are kept
// out of JSON everywhere else.
func photoDataURL(contentType null.String, data null.Bytes) string {
	if !data.Valid || len(data.Bytes) == 0 {
		return ""
	}
	return fmt.Sprintf("data:%s;base64,%s", contentType.String, base64.StdEncoding.EncodeToString(data.Bytes))
}

// resolveUSN decides which student a shared read endpoint is about:
// students (and guests) always get their own records, staff name the
// student via `?usn=`.
func resolveUSN(ctx echo.Context) (string, error) {
	p, err := getContextPrincipal(ctx)
	if err != nil {
		return "", errors.Wrap(err, "getting context principal")
	}
	if p.IsStudent() {
		return p.ID, nil
	}
	usn := strings.ToUpper(core.CleanString(ctx.QueryParam("usn")))
	if usn == "" {
		return "", echo.NewHTTPError(http.StatusBadRequest, `missing query parameter "usn"`)
	}
	if err := core.Validate.Var(usn, "usn"); err != nil {
		return "", echo.NewHTTPError(http.StatusBadRequest, "invalid usn")
	}
	return usn, nil
}

// studentClass returns the class (sem, section) a student principal belongs
// to, or reads it from query parameters for staff callers.
func studentClass(ctx echo.Context, p auth.Principal) (sem int, section string, err error) {
	if p.IsStudent() && !p.Guest {
		return p.Semester, p.Section, nil
	}
	if sem, err = intQueryParam(ctx, "sem"); err != nil {
		return 0, "", err
	}
	section = strings.ToUpper(core.CleanString(ctx.QueryParam("section")))
	if section == "" {
		return 0, "", echo.NewHTTPError(http.StatusBadRequest, `missing query parameter "section"`)
	}
	return sem, section, nil
}

type successResponse struct {
	Success string `json:"success"`
}
