package certstamp

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/eringen/certstamp/stamp"
	"github.com/eringen/certstamp/views"
)

func (a *App) handleAdmin(c echo.Context) error {
	if !IsAdmin(c) {
		return Render(c, a.Views.Login(a.site(), false, CsrfToken(c)))
	}
	return a.renderAdminDashboard(c, http.StatusOK, c.QueryParam("msg"))
}

// checkPassword compares against the bcrypt hash when one is configured,
// otherwise against the plain password in constant time.
func (a *App) checkPassword(pass string) bool {
	if a.Config.AdminPasswordHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(a.Config.AdminPasswordHash), []byte(pass)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(pass), []byte(a.Config.AdminPassword)) == 1
}

func (a *App) handleAdminLogin(c echo.Context) error {
	ip := c.RealIP()
	if !a.loginLimiter.Check(ip) {
		return c.String(http.StatusTooManyRequests, "Too many login attempts. Try again later.")
	}
	if a.checkPassword(c.FormValue("password")) {
		if err := setAdminSession(c); err != nil {
			return err
		}
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	a.loginLimiter.Record(ip)
	return RenderStatus(c, http.StatusUnauthorized, a.Views.Login(a.site(), true, CsrfToken(c)))
}

func handleAdminLogout(c echo.Context) error {
	if err := clearAdminSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/admin/")
}

func (a *App) handleAdminCreate(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	hours, err := strconv.Atoi(strings.TrimSpace(c.FormValue("workload_hours")))
	if err != nil {
		return a.renderAdminDashboard(c, http.StatusBadRequest, "Workload must be a whole number of hours.")
	}
	in := CertificateInput{
		CourseName:         c.FormValue("course_name"),
		WorkloadHours:      hours,
		StartDate:          c.FormValue("start_date"),
		EndDate:            c.FormValue("end_date"),
		Institution:        c.FormValue("institution"),
		InstitutionAddress: c.FormValue("institution_address"),
		City:               c.FormValue("city"),
		IssueDate:          c.FormValue("issue_date"),
		ResponsibleName:    c.FormValue("responsible_name"),
		ResponsibleRole:    c.FormValue("responsible_role"),
		Placement:          c.FormValue("placement"),
	}

	in.Source.Composite = strings.TrimSpace(c.FormValue("composite"))
	if in.Source.Composite == "" {
		upload, err := a.openUpload(c, "template")
		if err != nil {
			return a.renderAdminDashboard(c, http.StatusBadRequest, err.Error())
		}
		if upload != nil {
			defer upload.Close()
			in.Source.File = upload
			in.Source.Filename = upload.Filename
		}
	}

	rec, err := a.Service.CreateCertificate(in)
	if err != nil {
		code := statusFor(err)
		if code >= 500 {
			return err
		}
		return a.renderAdminDashboard(c, code, createErrorMessage(err))
	}
	a.Cache.Invalidate()
	return a.renderAdminDashboard(c, http.StatusOK, "Saved "+rec.CourseName+".")
}

func createErrorMessage(err error) string {
	switch {
	case errors.Is(err, stamp.ErrDecode):
		return "The template image could not be read."
	case errors.Is(err, stamp.ErrConfigParse):
		return "The name placement is not valid JSON."
	}
	return err.Error()
}

func (a *App) handleAdminDelete(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := a.Service.DeleteCertificate(id); err != nil {
		return err
	}
	a.Cache.Invalidate()
	return a.renderAdminDashboard(c, http.StatusOK, "Deleted.")
}

func (a *App) renderAdminDashboard(c echo.Context, code int, msg string) error {
	records, err := a.Cache.List()
	if err != nil {
		return err
	}
	counts, err := a.Store.IssuanceCounts()
	if err != nil {
		return err
	}
	rows := toRows(records)
	for i := range rows {
		rows[i].Issued = counts[rows[i].CourseKey]
	}
	return RenderStatus(c, code, a.Views.Dashboard(views.DashboardData{
		Site:      a.site(),
		Rows:      rows,
		Message:   msg,
		CsrfToken: CsrfToken(c),
	}))
}
