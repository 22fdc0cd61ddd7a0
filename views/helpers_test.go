package views

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestStampURL(t *testing.T) {
	tests := []struct {
		base, key, want string
	}{
		{"https://example.com", "Go", "https://example.com/certificado/Go/"},
		{"https://example.com/sub/", "Go Basics", "https://example.com/sub/certificado/Go%20Basics/"},
		{"http://localhost:3000", "Segurança", "http://localhost:3000/certificado/Seguran%C3%A7a/"},
	}
	for _, tt := range tests {
		if got := StampURL(SiteConfig{URL: tt.base}, tt.key); got != tt.want {
			t.Errorf("StampURL(%q, %q) = %q, want %q", tt.base, tt.key, got, tt.want)
		}
	}
}

func TestCredentialJsonLD(t *testing.T) {
	out := CredentialJsonLD(SiteConfig{URL: "https://example.com"}, CertificateRow{
		CourseName:    "Go Basics",
		CourseKey:     "Go Basics",
		WorkloadHours: 40,
		Institution:   "Instituto",
	})
	var data map[string]any
	if err := json.Unmarshal([]byte(out), &data); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if data["url"] != "https://example.com/certificado/Go%20Basics/" {
		t.Errorf("url = %v", data["url"])
	}
	if data["timeRequired"] != "PT40H" {
		t.Errorf("timeRequired = %v", data["timeRequired"])
	}
}

func TestStatusPagesRender(t *testing.T) {
	site := SiteConfig{Name: "Certificates"}
	for name, want := range map[string]string{
		"not found":    "Not found",
		"server error": "Something went wrong",
	} {
		cmp := NotFound(site)
		if name == "server error" {
			cmp = ServerError(site)
		}
		var buf bytes.Buffer
		if err := cmp.Render(context.Background(), &buf); err != nil {
			t.Fatalf("%s: render: %v", name, err)
		}
		if !strings.Contains(buf.String(), want) || !strings.Contains(buf.String(), "Certificates") {
			t.Errorf("%s: unexpected page %q", name, buf.String())
		}
	}
}
