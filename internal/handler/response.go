package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"marketplace/internal/middleware"
	"marketplace/internal/session"
	"marketplace/internal/usecase"

	"github.com/labstack/echo/v4"
)

// アップロード1件の上限
const maxUploadBytes = 5 << 20

type ErrorResponse struct {
	Error string `json:"error"`
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if he, ok := usecase.AsHTTPError(err); ok {
		return c.JSON(he.Status, ErrorResponse{Error: he.Message})
	}

	//500
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

func getUserIDFromContext(c echo.Context) (string, bool) {
	id, ok := c.Get(middleware.CtxUserIDKey).(string)
	return id, ok && id != ""
}

// 認証ミドルウェアの後ろにセッションを足したもの
func withSession(authn []echo.MiddlewareFunc, sess echo.MiddlewareFunc, extra ...echo.MiddlewareFunc) []echo.MiddlewareFunc {
	mw := make([]echo.MiddlewareFunc, 0, len(authn)+len(extra)+1)
	mw = append(mw, authn...)
	mw = append(mw, extra...)
	return append(mw, sess)
}

func getSession(c echo.Context) (*session.Session, bool) {
	return middleware.SessionFrom(c)
}

var errUploadTooLarge = errors.New("file too large")

// readUpload は multipart のファイルを読む。無ければ nil。
func readUpload(c echo.Context, field string) (*usecase.Upload, error) {
	fh, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", field, err)
	}
	defer f.Close()

	body, err := io.ReadAll(io.LimitReader(f, maxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", field, err)
	}
	if len(body) > maxUploadBytes {
		return nil, errUploadTooLarge
	}
	if len(body) == 0 {
		return nil, nil
	}

	ct := fh.Header.Get("Content-Type")
	if ct == "" || ct == "application/octet-stream" {
		ct = http.DetectContentType(body)
	}
	return &usecase.Upload{ContentType: ct, Body: body}, nil
}

func uploadError(c echo.Context, err error) error {
	if errors.Is(err, errUploadTooLarge) {
		return c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{Error: "file too large"})
	}
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid file"})
}
