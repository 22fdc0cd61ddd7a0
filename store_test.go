package certstamp

import (
	"errors"
	"path/filepath"
	"testing"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "data", "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleCertificate(name, key string) Certificate {
	return Certificate{
		CourseName:    name,
		CourseKey:     key,
		WorkloadHours: 40,
		StartDate:     "2024-01-10",
		EndDate:       "2024-02-10",
		Institution:   "Escola Técnica",
		City:          "Recife",
		IssueDate:     "2024-02-11",
		TemplatePath:  "/img/certificados/" + key + "/" + key + ".png",
	}
}

func TestNewStore(t *testing.T) {
	s := setupTestStore(t)
	if s.db == nil {
		t.Fatal("db should not be nil")
	}
}

func TestSaveAndGetCertificate(t *testing.T) {
	s := setupTestStore(t)

	saved, err := s.SaveTemplateRecord(sampleCertificate("Go Basics", "Go Basics"))
	if err != nil {
		t.Fatalf("SaveTemplateRecord failed: %v", err)
	}
	if saved.ID == 0 {
		t.Fatal("expected an ID to be assigned")
	}
	if len(saved.Code) != 36 {
		t.Errorf("expected a UUID code, got %q", saved.Code)
	}
	if saved.CreatedAt == "" {
		t.Error("expected CreatedAt to be set")
	}

	got, err := s.GetCertificate(saved.ID)
	if err != nil {
		t.Fatalf("GetCertificate failed: %v", err)
	}
	if got != saved {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, saved)
	}
}

func TestSaveKeepsExplicitCode(t *testing.T) {
	s := setupTestStore(t)
	c := sampleCertificate("Go", "Go")
	c.Code = "fixed-code"
	saved, err := s.SaveTemplateRecord(c)
	if err != nil {
		t.Fatalf("SaveTemplateRecord failed: %v", err)
	}
	if saved.Code != "fixed-code" {
		t.Errorf("code = %q", saved.Code)
	}
}

func TestGetTemplateByCourseReturnsNewest(t *testing.T) {
	s := setupTestStore(t)

	if _, err := s.SaveTemplateRecord(sampleCertificate("Go: Basics", "Go Basics")); err != nil {
		t.Fatal(err)
	}
	newer, err := s.SaveTemplateRecord(sampleCertificate("Go Basics", "Go Basics"))
	if err != nil {
		t.Fatal(err)
	}

	got, err := s.GetTemplateByCourse("Go Basics")
	if err != nil {
		t.Fatalf("GetTemplateByCourse failed: %v", err)
	}
	if got.ID != newer.ID {
		t.Errorf("expected newest record %d, got %d", newer.ID, got.ID)
	}
}

func TestGetMissing(t *testing.T) {
	s := setupTestStore(t)

	if _, err := s.GetTemplateByCourse("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetTemplateByCourse: expected ErrNotFound, got %v", err)
	}
	if _, err := s.GetCertificate(42); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetCertificate: expected ErrNotFound, got %v", err)
	}
}

func TestListAndDelete(t *testing.T) {
	s := setupTestStore(t)

	a, _ := s.SaveTemplateRecord(sampleCertificate("A", "A"))
	b, _ := s.SaveTemplateRecord(sampleCertificate("B", "B"))

	list, err := s.ListCertificates()
	if err != nil {
		t.Fatalf("ListCertificates failed: %v", err)
	}
	if len(list) != 2 || list[0].ID != b.ID || list[1].ID != a.ID {
		t.Fatalf("expected newest first, got %+v", list)
	}

	if err := s.DeleteTemplateRecord(a.ID); err != nil {
		t.Fatalf("DeleteTemplateRecord failed: %v", err)
	}
	list, _ = s.ListCertificates()
	if len(list) != 1 || list[0].ID != b.ID {
		t.Errorf("expected only B left, got %+v", list)
	}

	// Deleting again is harmless.
	if err := s.DeleteTemplateRecord(a.ID); err != nil {
		t.Errorf("second delete: %v", err)
	}
}

func TestIssuanceCounts(t *testing.T) {
	s := setupTestStore(t)

	for _, name := range []string{"Ana", "Bruno", "Carla"} {
		if err := s.RecordIssuance("Go", name); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.RecordIssuance("Rust", "Ana"); err != nil {
		t.Fatal(err)
	}

	counts, err := s.IssuanceCounts()
	if err != nil {
		t.Fatalf("IssuanceCounts failed: %v", err)
	}
	if counts["Go"] != 3 || counts["Rust"] != 1 || counts["Python"] != 0 {
		t.Errorf("unexpected counts %v", counts)
	}
}
