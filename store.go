package certstamp

import (
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a requested certificate does not exist.
var ErrNotFound = sql.ErrNoRows

// Store wraps a SQLite database holding certificate records.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and runs schema migrations.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL lets the dashboard read while a certificate is being saved; the
	// busy timeout makes writers wait instead of failing with SQLITE_BUSY.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
	`); err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS certificates (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    course_name TEXT NOT NULL,
    course_key TEXT NOT NULL,
    workload_hours INTEGER NOT NULL DEFAULT 0,
    start_date TEXT NOT NULL DEFAULT '',
    end_date TEXT NOT NULL DEFAULT '',
    institution TEXT NOT NULL DEFAULT '',
    institution_address TEXT NOT NULL DEFAULT '',
    city TEXT NOT NULL DEFAULT '',
    issue_date TEXT NOT NULL DEFAULT '',
    responsible_name TEXT NOT NULL DEFAULT '',
    responsible_role TEXT NOT NULL DEFAULT '',
    code TEXT NOT NULL UNIQUE,
    template_path TEXT NOT NULL,
    created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_certificates_course_key ON certificates(course_key);

CREATE TABLE IF NOT EXISTS issuances (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    course_key TEXT NOT NULL,
    student TEXT NOT NULL,
    issued_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_issuances_course_key ON issuances(course_key);
`)
	return err
}

const certificateColumns = `id, course_name, course_key, workload_hours, start_date, end_date,
	institution, institution_address, city, issue_date, responsible_name, responsible_role,
	code, template_path, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanCertificate(row scanner) (Certificate, error) {
	var c Certificate
	err := row.Scan(&c.ID, &c.CourseName, &c.CourseKey, &c.WorkloadHours, &c.StartDate, &c.EndDate,
		&c.Institution, &c.InstitutionAddress, &c.City, &c.IssueDate, &c.ResponsibleName, &c.ResponsibleRole,
		&c.Code, &c.TemplatePath, &c.CreatedAt)
	return c, err
}

// SaveTemplateRecord inserts a certificate record and returns it with its
// ID, code and creation time filled in. A blank code gets a random UUID.
func (s *Store) SaveTemplateRecord(c Certificate) (Certificate, error) {
	if c.Code == "" {
		c.Code = uuid.NewString()
	}
	c.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.Exec(`INSERT INTO certificates (course_name, course_key, workload_hours, start_date, end_date,
		institution, institution_address, city, issue_date, responsible_name, responsible_role,
		code, template_path, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.CourseName, c.CourseKey, c.WorkloadHours, c.StartDate, c.EndDate,
		c.Institution, c.InstitutionAddress, c.City, c.IssueDate, c.ResponsibleName, c.ResponsibleRole,
		c.Code, c.TemplatePath, c.CreatedAt)
	if err != nil {
		return Certificate{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Certificate{}, err
	}
	c.ID = id
	return c, nil
}

// GetTemplateByCourse returns the newest record for a sanitized course key.
func (s *Store) GetTemplateByCourse(key string) (Certificate, error) {
	row := s.db.QueryRow(`SELECT `+certificateColumns+` FROM certificates WHERE course_key = ? ORDER BY id DESC LIMIT 1`, key)
	return scanCertificate(row)
}

// GetCertificate returns a record by ID.
func (s *Store) GetCertificate(id int64) (Certificate, error) {
	row := s.db.QueryRow(`SELECT `+certificateColumns+` FROM certificates WHERE id = ?`, id)
	return scanCertificate(row)
}

// ListCertificates returns every record, newest first.
func (s *Store) ListCertificates() ([]Certificate, error) {
	rows, err := s.db.Query(`SELECT ` + certificateColumns + ` FROM certificates ORDER BY id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Certificate
	for rows.Next() {
		c, err := scanCertificate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// DeleteTemplateRecord removes a record by ID.
func (s *Store) DeleteTemplateRecord(id int64) error {
	_, err := s.db.Exec(`DELETE FROM certificates WHERE id = ?`, id)
	return err
}

// RecordIssuance logs that a certificate was stamped for student.
func (s *Store) RecordIssuance(key, student string) error {
	_, err := s.db.Exec(`INSERT INTO issuances (course_key, student, issued_at) VALUES (?, ?, ?)`,
		key, student, time.Now().UTC().Format(time.RFC3339))
	return err
}

// IssuanceCounts returns how many certificates were stamped per course key.
func (s *Store) IssuanceCounts() (map[string]int, error) {
	rows, err := s.db.Query(`SELECT course_key, COUNT(*) FROM issuances GROUP BY course_key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return nil, err
		}
		counts[key] = n
	}
	return counts, rows.Err()
}
