package certstamp

import (
	"time"

	"github.com/labstack/gommon/log"

	"github.com/eringen/certstamp/views"
)

// SiteConfig holds all configuration for a certstamp site.
type SiteConfig struct {
	Name string // Site name (default "Certificates")
	URL  string // Canonical URL used in QR codes (default "http://localhost:3000")

	Addr         string // Listen address (default ":3000")
	DatabasePath string // SQLite path (default "data/certificates.db")
	ContentRoot  string // Directory holding img/certificados (default "public")
	FontDir      string // Optional directory of TTF/OTF families

	AdminPassword     string // Admin login password
	AdminPasswordHash string // bcrypt hash, checked instead of AdminPassword when set
	SessionSecret     string // Required: session encryption secret
	CookieSecure      bool   // Set true for HTTPS

	RecordCacheTTL time.Duration // Dashboard cache TTL (default 5min)
	MaxUploadSize  int64         // Template upload limit in bytes (default 10MB)
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Certificates"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/certificates.db"
	}
	if c.ContentRoot == "" {
		c.ContentRoot = "public"
	}
	if c.RecordCacheTTL == 0 {
		c.RecordCacheTTL = 5 * time.Minute
	}
	if c.MaxUploadSize == 0 {
		c.MaxUploadSize = 10 << 20
	}
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithViews replaces the built-in pages.
func WithViews(v views.ViewFuncs) Option {
	return func(a *App) {
		a.Views = v
	}
}

// WithLogger sets the logger shared by Echo and the rendering engine.
func WithLogger(l *log.Logger) Option {
	return func(a *App) {
		a.Logger = l
	}
}
