package certstamp

import (
	"errors"
	"net/http"
	"strings"

	"github.com/eringen/certstamp/stamp"
	"github.com/eringen/certstamp/views"
)

// DownloadFilename names the stamped PNG after the student. Path separators
// and other characters unsafe in file names are dropped and spaces become
// underscores, so the result is always a bare file name.
func DownloadFilename(student string) string {
	name := stamp.SanitizeKey(strings.TrimSpace(student))
	return "Certificado_" + strings.ReplaceAll(name, " ", "_") + ".png"
}

// statusFor maps engine and store errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, stamp.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, stamp.ErrDecode), errors.Is(err, stamp.ErrConfigParse):
		return http.StatusUnprocessableEntity
	case errors.Is(err, stamp.ErrTemplateNotFound), errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func toRow(c Certificate) views.CertificateRow {
	return views.CertificateRow{
		ID:                 c.ID,
		CourseName:         c.CourseName,
		CourseKey:          c.CourseKey,
		WorkloadHours:      c.WorkloadHours,
		StartDate:          c.StartDate,
		EndDate:            c.EndDate,
		Institution:        c.Institution,
		InstitutionAddress: c.InstitutionAddress,
		City:               c.City,
		IssueDate:          c.IssueDate,
		ResponsibleName:    c.ResponsibleName,
		ResponsibleRole:    c.ResponsibleRole,
		Code:               c.Code,
		TemplatePath:       c.TemplatePath,
		CreatedAt:          c.CreatedAt,
	}
}

func toRows(cs []Certificate) []views.CertificateRow {
	rows := make([]views.CertificateRow, 0, len(cs))
	for _, c := range cs {
		rows = append(rows, toRow(c))
	}
	return rows
}
