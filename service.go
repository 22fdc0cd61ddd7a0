package certstamp

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/labstack/gommon/log"

	"github.com/eringen/certstamp/stamp"
)

// RecordStore is the persistence the service needs. *Store implements it.
type RecordStore interface {
	SaveTemplateRecord(c Certificate) (Certificate, error)
	GetTemplateByCourse(key string) (Certificate, error)
	GetCertificate(id int64) (Certificate, error)
	ListCertificates() ([]Certificate, error)
	DeleteTemplateRecord(id int64) error
	RecordIssuance(key, student string) error
	IssuanceCounts() (map[string]int, error)
}

// CertificateInput is the admin form for registering a course template.
type CertificateInput struct {
	CourseName         string
	WorkloadHours      int
	StartDate          string
	EndDate            string
	Institution        string
	InstitutionAddress string
	City               string
	IssueDate          string
	ResponsibleName    string
	ResponsibleRole    string

	Source    stamp.Source
	Placement string // raw placement JSON, may be blank
}

const dateLayout = "2006-01-02"

// CertificateService ties certificate records to their on-disk templates.
type CertificateService struct {
	Store  RecordStore
	Engine *stamp.Engine
	log    *log.Logger
}

// NewCertificateService returns a service over the given store and engine.
func NewCertificateService(st RecordStore, eng *stamp.Engine, logger *log.Logger) *CertificateService {
	if logger == nil {
		logger = log.New("certstamp")
	}
	return &CertificateService{Store: st, Engine: eng, log: logger}
}

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", stamp.ErrValidation, fmt.Sprintf(format, args...))
}

func parseDate(field, v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		return time.Time{}, validationError("%s must be YYYY-MM-DD", field)
	}
	return t, nil
}

func (in *CertificateInput) normalize() error {
	in.CourseName = strings.TrimSpace(in.CourseName)
	in.StartDate = strings.TrimSpace(in.StartDate)
	in.EndDate = strings.TrimSpace(in.EndDate)
	in.IssueDate = strings.TrimSpace(in.IssueDate)
	if in.CourseName == "" {
		return validationError("course name is required")
	}
	if in.WorkloadHours <= 0 {
		return validationError("workload must be a positive number of hours")
	}
	start, err := parseDate("start date", in.StartDate)
	if err != nil {
		return err
	}
	end, err := parseDate("end date", in.EndDate)
	if err != nil {
		return err
	}
	if _, err := parseDate("issue date", in.IssueDate); err != nil {
		return err
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return validationError("end date is before start date")
	}
	if in.IssueDate == "" {
		in.IssueDate = time.Now().Format(dateLayout)
	}
	return nil
}

// CreateCertificate stores the template image and placement for a course
// and records it. A later call for the same course replaces the files and
// adds a new record.
func (s *CertificateService) CreateCertificate(in CertificateInput) (Certificate, error) {
	if err := in.normalize(); err != nil {
		return Certificate{}, err
	}
	key, err := s.Engine.Key(in.CourseName)
	if err != nil {
		return Certificate{}, err
	}
	if prev, err := s.Store.GetTemplateByCourse(key); err == nil && prev.CourseName != in.CourseName {
		s.log.Warnf("course %q shares template key %q with %q; its files will be replaced", in.CourseName, key, prev.CourseName)
	} else if err != nil && !errors.Is(err, ErrNotFound) {
		return Certificate{}, err
	}

	path, err := s.Engine.CreateTemplate(in.CourseName, in.Source, in.Placement)
	if err != nil {
		return Certificate{}, err
	}
	rec, err := s.Store.SaveTemplateRecord(Certificate{
		CourseName:         in.CourseName,
		CourseKey:          key,
		WorkloadHours:      in.WorkloadHours,
		StartDate:          in.StartDate,
		EndDate:            in.EndDate,
		Institution:        strings.TrimSpace(in.Institution),
		InstitutionAddress: strings.TrimSpace(in.InstitutionAddress),
		City:               strings.TrimSpace(in.City),
		IssueDate:          in.IssueDate,
		ResponsibleName:    strings.TrimSpace(in.ResponsibleName),
		ResponsibleRole:    strings.TrimSpace(in.ResponsibleRole),
		TemplatePath:       path,
	})
	if err != nil {
		s.discardTemplate(key)
		return Certificate{}, fmt.Errorf("save record: %w", err)
	}
	s.log.Infof("certificate %d created for %q at %s", rec.ID, rec.CourseName, path)
	return rec, nil
}

// DeleteCertificate removes a record. The template directory goes with it
// unless another record still uses the same key. A missing ID is not an error.
func (s *CertificateService) DeleteCertificate(id int64) error {
	rec, err := s.Store.GetCertificate(id)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	shared, err := s.keyShared(rec)
	if err != nil {
		return err
	}
	if !shared {
		if err := s.Engine.DeleteTemplate(rec.CourseKey); err != nil {
			return err
		}
	}
	return s.Store.DeleteTemplateRecord(id)
}

// discardTemplate removes files written for a record that could not be
// saved, unless an existing record still points at the key.
func (s *CertificateService) discardTemplate(key string) {
	shared, err := s.keyShared(Certificate{CourseKey: key})
	if err != nil || shared {
		return
	}
	if err := s.Engine.DeleteTemplate(key); err != nil {
		s.log.Warnf("discard template %q: %v", key, err)
	}
}

func (s *CertificateService) keyShared(rec Certificate) (bool, error) {
	all, err := s.Store.ListCertificates()
	if err != nil {
		return false, err
	}
	for _, r := range all {
		if r.ID != rec.ID && r.CourseKey == rec.CourseKey {
			return true, nil
		}
	}
	return false, nil
}

// StampCertificate renders a student's name onto the course template and
// logs the issuance. A failed log write does not fail the stamp.
func (s *CertificateService) StampCertificate(course, student string) ([]byte, error) {
	student = strings.TrimSpace(student)
	if student == "" {
		return nil, validationError("student name is required")
	}
	data, err := s.Engine.StampName(course, student)
	if err != nil {
		return nil, err
	}
	key, _ := s.Engine.Key(course)
	if err := s.Store.RecordIssuance(key, student); err != nil {
		s.log.Warnf("record issuance for %q: %v", key, err)
	}
	return data, nil
}
