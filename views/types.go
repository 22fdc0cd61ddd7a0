package views

import "github.com/a-h/templ"

// SiteConfig holds site-wide settings passed to every page.
type SiteConfig struct {
	Name string // SITE_NAME (default "Certificates")
	URL  string // SITE_URL  (default "http://localhost:3000")
}

// CertificateRow is one registered course template as shown to users.
type CertificateRow struct {
	ID                 int64
	CourseName         string
	CourseKey          string
	WorkloadHours      int
	StartDate          string
	EndDate            string
	Institution        string
	InstitutionAddress string
	City               string
	IssueDate          string
	ResponsibleName    string
	ResponsibleRole    string
	Code               string
	TemplatePath       string
	CreatedAt          string
	Issued             int // certificates stamped for this course key
}

// DashboardData feeds the admin dashboard.
type DashboardData struct {
	Site      SiteConfig
	Rows      []CertificateRow
	Message   string
	CsrfToken string
}

// StampFormData feeds the public page where a student requests a certificate.
type StampFormData struct {
	Site      SiteConfig
	Course    CertificateRow
	Error     string
	CsrfToken string
}

// ViewFuncs holds the components the application renders. Replace any of
// them to restyle a page; Default returns the built-in set.
type ViewFuncs struct {
	Login       func(site SiteConfig, showError bool, csrfToken string) templ.Component
	Dashboard   func(d DashboardData) templ.Component
	StampForm   func(d StampFormData) templ.Component
	NotFound    func(site SiteConfig) templ.Component
	ServerError func(site SiteConfig) templ.Component
}

// Default returns the built-in pages.
func Default() ViewFuncs {
	return ViewFuncs{
		Login:       Login,
		Dashboard:   Dashboard,
		StampForm:   StampForm,
		NotFound:    NotFound,
		ServerError: ServerError,
	}
}
