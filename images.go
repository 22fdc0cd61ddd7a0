package certstamp

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/disintegration/imaging"
	"github.com/labstack/echo/v4"
	"github.com/skip2/go-qrcode"

	"github.com/eringen/certstamp/views"
)

const (
	thumbWidth  = 300
	thumbHeight = 200
	qrSize      = 256
)

// upload is an opened template file from the admin form.
type upload struct {
	multipart.File
	Filename string
}

// openUpload returns the named form file, or nil when none was sent.
func (a *App) openUpload(c echo.Context, field string) (*upload, error) {
	fh, err := c.FormFile(field)
	if err == http.ErrMissingFile {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if fh.Size > a.Config.MaxUploadSize {
		return nil, fmt.Errorf("File too large (max %dMB)", a.Config.MaxUploadSize>>20)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	return &upload{File: f, Filename: fh.Filename}, nil
}

// Thumbnail fits the template image at path inside thumbWidth×thumbHeight
// and encodes it as PNG.
func Thumbnail(path string) ([]byte, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open template: %w", err)
	}
	thumb := imaging.Fit(img, thumbWidth, thumbHeight, imaging.Lanczos)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}

// QRCode encodes the public stamp URL of a course as a PNG.
func QRCode(siteURL, courseKey string) ([]byte, error) {
	return qrcode.Encode(views.StampURL(views.SiteConfig{URL: siteURL}, courseKey), qrcode.Medium, qrSize)
}

// adminRecord loads the record named by the :id parameter.
func (a *App) adminRecord(c echo.Context) (Certificate, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return Certificate{}, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return a.Store.GetCertificate(id)
}

func (a *App) handleThumbnail(c echo.Context) error {
	if !IsAdmin(c) {
		return c.NoContent(http.StatusUnauthorized)
	}
	rec, err := a.adminRecord(c)
	if err != nil {
		return err
	}
	path, ok := a.Engine.TemplateFile(rec.CourseKey)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound)
	}
	data, err := Thumbnail(path)
	if err != nil {
		return err
	}
	return RenderPNG(c, data)
}

func (a *App) handleQRCode(c echo.Context) error {
	if !IsAdmin(c) {
		return c.NoContent(http.StatusUnauthorized)
	}
	rec, err := a.adminRecord(c)
	if err != nil {
		return err
	}
	data, err := QRCode(a.Config.URL, rec.CourseKey)
	if err != nil {
		return err
	}
	return RenderPNG(c, data)
}
