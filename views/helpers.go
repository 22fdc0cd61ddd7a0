package views

import (
	"encoding/json"
	"net/url"
	"path"
	"strconv"
	"strings"
)

// buildURL joins path segments onto a base URL, ensuring a trailing slash.
func buildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if len(pathSegments) > 0 && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}

// StampURL is the public page where students request a course certificate.
func StampURL(cfg SiteConfig, courseKey string) string {
	return buildURL(cfg.URL, "certificado", courseKey)
}

// PathEscape wraps url.PathEscape for use in templates.
func PathEscape(s string) string {
	return url.PathEscape(s)
}

// CredentialJsonLD produces a Schema.org EducationalOccupationalCredential
// block for a course page.
func CredentialJsonLD(cfg SiteConfig, row CertificateRow) string {
	data := map[string]interface{}{
		"@context":           "https://schema.org",
		"@type":              "EducationalOccupationalCredential",
		"name":               row.CourseName,
		"url":                StampURL(cfg, row.CourseKey),
		"credentialCategory": "certificate",
	}
	if row.Institution != "" {
		data["recognizedBy"] = map[string]string{
			"@type": "Organization",
			"name":  row.Institution,
		}
	}
	if row.WorkloadHours > 0 {
		data["timeRequired"] = "PT" + strconv.Itoa(row.WorkloadHours) + "H"
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}
