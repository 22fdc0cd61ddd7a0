package certstamp

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eringen/certstamp/stamp"
	"github.com/eringen/certstamp/views"
)

func handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// courseParam returns the unescaped :course path parameter.
func courseParam(c echo.Context) string {
	raw := c.Param("course")
	if course, err := url.PathUnescape(raw); err == nil {
		return course
	}
	return raw
}

// courseRow describes a course for the stamp page. Courses whose template
// was placed on disk without a record still get a page.
func (a *App) courseRow(course string) (views.CertificateRow, error) {
	key, err := a.Engine.Key(course)
	if err != nil {
		return views.CertificateRow{}, err
	}
	rec, err := a.Cache.ByCourse(key)
	if errors.Is(err, ErrNotFound) {
		return views.CertificateRow{CourseName: course, CourseKey: key}, nil
	}
	if err != nil {
		return views.CertificateRow{}, err
	}
	return toRow(rec), nil
}

func (a *App) handleStampForm(c echo.Context) error {
	course := courseParam(c)
	if _, ok := a.Engine.TemplateFile(course); !ok {
		return RenderStatus(c, http.StatusNotFound, a.Views.NotFound(a.site()))
	}
	row, err := a.courseRow(course)
	if err != nil {
		return a.stampError(c, row, err)
	}
	return Render(c, a.Views.StampForm(views.StampFormData{
		Site:      a.site(),
		Course:    row,
		CsrfToken: CsrfToken(c),
	}))
}

func (a *App) handleStamp(c echo.Context) error {
	course := courseParam(c)
	student := c.FormValue("nome")
	if strings.TrimSpace(student) == "" {
		student = c.FormValue("student")
	}
	data, err := a.Service.StampCertificate(course, student)
	if err != nil {
		row, rowErr := a.courseRow(course)
		if rowErr != nil {
			row = views.CertificateRow{CourseName: course}
		}
		return a.stampError(c, row, err)
	}
	return RenderAttachment(c, DownloadFilename(student), data)
}

// stampError renders the stamp form again for client errors and hands
// everything else to the error handler.
func (a *App) stampError(c echo.Context, row views.CertificateRow, err error) error {
	code := statusFor(err)
	switch {
	case code == http.StatusNotFound:
		return RenderStatus(c, code, a.Views.NotFound(a.site()))
	case code < 500:
		msg := "Please enter your name."
		if !errors.Is(err, stamp.ErrValidation) {
			msg = "This certificate cannot be generated right now."
			c.Logger().Warnf("stamp %q: %v", row.CourseKey, err)
		}
		return RenderStatus(c, code, a.Views.StampForm(views.StampFormData{
			Site:      a.site(),
			Course:    row,
			Error:     msg,
			CsrfToken: CsrfToken(c),
		}))
	}
	return err
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he, ok := err.(*echo.HTTPError)
	if !ok {
		he = echo.NewHTTPError(statusFor(err), err.Error())
	}
	if he.Code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound(a.site()))
		return
	}
	if he.Code >= 500 {
		c.Logger().Errorf("server error: %v", err)
		_ = RenderStatus(c, he.Code, a.Views.ServerError(a.site()))
		return
	}
	a.Echo.DefaultHTTPErrorHandler(he, c)
}
