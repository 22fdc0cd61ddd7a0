package certstamp

// Certificate is the record kept for each registered course template.
// CourseKey is the sanitized course name that addresses the template
// directory; several records may share a key.
type Certificate struct {
	ID                 int64
	CourseName         string
	CourseKey          string
	WorkloadHours      int
	StartDate          string // YYYY-MM-DD
	EndDate            string // YYYY-MM-DD
	Institution        string
	InstitutionAddress string
	City               string
	IssueDate          string // YYYY-MM-DD
	ResponsibleName    string
	ResponsibleRole    string
	Code               string
	TemplatePath       string
	CreatedAt          string // RFC3339
}
