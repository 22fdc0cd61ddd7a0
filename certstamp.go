// Package certstamp serves course certificates: administrators register a
// template image with the placement of the student's name, and students
// download the template with their own name printed on it.
//
// The rendering itself lives in the stamp package; certstamp adds the
// record store, the admin dashboard and the public stamp pages on Echo.
package certstamp

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"

	"github.com/eringen/certstamp/stamp"
	"github.com/eringen/certstamp/views"
)

// App wires together the store, cache, rendering engine, handlers and views.
type App struct {
	Config  SiteConfig
	Echo    *echo.Echo
	Store   *Store
	Cache   *CertificateCache
	Engine  *stamp.Engine
	Service *CertificateService
	Views   views.ViewFuncs
	Logger  *log.Logger

	loginLimiter *LoginLimiter
	customRoutes []func(*App)
}

// New creates an App with the given configuration.
func New(cfg SiteConfig, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config: cfg,
		Echo:   echo.New(),
		Views:  views.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.Logger == nil {
		a.Logger = log.New("certstamp")
		a.Logger.SetLevel(log.INFO)
	}
	a.Echo.Logger = a.Logger
	a.Echo.HideBanner = true
	return a
}

// Init opens the store and builds the engine, middleware and routes.
// Start calls it; tests and the CLI may call it directly.
func (a *App) Init() error {
	if a.Config.AdminPassword == "" && a.Config.AdminPasswordHash == "" {
		return fmt.Errorf("certstamp: AdminPassword or AdminPasswordHash is required")
	}
	if a.Config.SessionSecret == "" {
		return fmt.Errorf("certstamp: SessionSecret is required")
	}
	if err := a.Open(); err != nil {
		return err
	}

	a.loginLimiter = NewLoginLimiter(5, time.Minute)

	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}
	return nil
}

// Open prepares the record store and the rendering engine without the HTTP
// layer.
func (a *App) Open() error {
	if err := os.MkdirAll(filepath.Join(a.Config.ContentRoot, stamp.TemplatesDir), 0o755); err != nil {
		return fmt.Errorf("certstamp: create content root: %w", err)
	}
	store, err := NewStore(a.Config.DatabasePath)
	if err != nil {
		return fmt.Errorf("certstamp: init store: %w", err)
	}
	a.Store = store
	a.Cache = NewCertificateCache(a.Store, a.Config.RecordCacheTTL)
	a.Engine = stamp.New(a.Config.ContentRoot,
		stamp.WithLogger(a.Logger),
		stamp.WithFontDir(a.Config.FontDir),
	)
	a.Service = NewCertificateService(a.Store, a.Engine, a.Logger)
	return nil
}

// Start initializes the app and serves HTTP until the server stops.
func (a *App) Start() error {
	if err := a.Init(); err != nil {
		return err
	}
	a.Logger.Infof("listening on %s", a.Config.Addr)
	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	// Stored templates are public so the editor can preview them.
	e.Static("/img", filepath.Join(a.Config.ContentRoot, "img"))
	e.GET("/healthz", handleHealth)

	// Public routes
	e.GET("/certificado/:course/", a.handleStampForm)
	e.POST("/certificado/:course/", a.handleStamp)

	// Admin routes
	e.GET("/admin/", a.handleAdmin)
	e.POST("/admin/login/", a.handleAdminLogin)
	e.POST("/admin/logout/", handleAdminLogout)
	e.POST("/admin/certificates/", a.handleAdminCreate)
	e.DELETE("/admin/certificates/:id/", a.handleAdminDelete)
	e.GET("/admin/certificates/:id/thumb/", a.handleThumbnail)
	e.GET("/admin/certificates/:id/qr/", a.handleQRCode)
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.loginLimiter != nil {
		a.loginLimiter.Stop()
	}
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}

func (a *App) site() views.SiteConfig {
	return views.SiteConfig{Name: a.Config.Name, URL: a.Config.URL}
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// MustEnv returns the value of the environment variable key, or fatally exits if empty.
func MustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("certstamp: required environment variable %s is not set", key)
	}
	return v
}
