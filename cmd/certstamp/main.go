package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/labstack/gommon/log"

	"github.com/eringen/certstamp"
	"github.com/eringen/certstamp/stamp"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe()
	case "stamp":
		err = runStamp(os.Args[2:])
	case "ingest":
		err = runIngest(os.Args[2:])
	case "version":
		fmt.Printf("certstamp %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func siteConfig() certstamp.SiteConfig {
	return certstamp.SiteConfig{
		Name:              certstamp.EnvOr("SITE_NAME", ""),
		URL:               certstamp.EnvOr("SITE_URL", ""),
		Addr:              certstamp.EnvOr("ADDR", ""),
		DatabasePath:      certstamp.EnvOr("DATABASE_PATH", ""),
		ContentRoot:       certstamp.EnvOr("CONTENT_ROOT", "public"),
		FontDir:           certstamp.EnvOr("FONT_DIR", ""),
		AdminPassword:     os.Getenv("ADMIN_PASSWORD"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		SessionSecret:     certstamp.MustEnv("SESSION_SECRET"),
		CookieSecure:      os.Getenv("COOKIE_SECURE") == "true",
	}
}

func runServe() error {
	app := certstamp.New(siteConfig())
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() { errc <- app.Start() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return app.Echo.Shutdown(shutdownCtx)
}

// offlineEngine builds an engine over CONTENT_ROOT without the database.
func offlineEngine() *stamp.Engine {
	logger := log.New("certstamp")
	logger.SetLevel(log.WARN)
	return stamp.New(certstamp.EnvOr("CONTENT_ROOT", "public"),
		stamp.WithFontDir(os.Getenv("FONT_DIR")),
		stamp.WithLogger(logger),
	)
}

func runStamp(args []string) error {
	fs := flag.NewFlagSet("stamp", flag.ExitOnError)
	out := fs.String("o", "", "output file (default Certificado_<name>.png)")
	if err := fs.Parse(reorder(args)); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return errors.New("usage: certstamp stamp <course> <name> [-o file]")
	}
	course, name := fs.Arg(0), fs.Arg(1)

	data, err := offlineEngine().StampName(course, name)
	if err != nil {
		return err
	}
	path := *out
	if path == "" {
		path = certstamp.DownloadFilename(name)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	fmt.Println(path)
	return nil
}

func runIngest(args []string) error {
	if len(args) < 2 || len(args) > 3 {
		return errors.New("usage: certstamp ingest <course> <image> [config.json]")
	}
	course, imagePath := args[0], args[1]

	f, err := os.Open(imagePath)
	if err != nil {
		return err
	}
	defer f.Close()

	var placement string
	if len(args) == 3 {
		b, err := os.ReadFile(args[2])
		if err != nil {
			return err
		}
		placement = string(b)
	}

	stored, err := offlineEngine().CreateTemplate(course, stamp.Source{
		File:     f,
		Filename: filepath.Base(imagePath),
	}, placement)
	if err != nil {
		return err
	}
	fmt.Println(stored)
	return nil
}

// reorder moves flags ahead of positional arguments so "-o" may follow them.
func reorder(args []string) []string {
	var flags, rest []string
	for i := 0; i < len(args); i++ {
		a := args[i]
		if len(a) > 1 && a[0] == '-' {
			flags = append(flags, a)
			if a == "-o" && i+1 < len(args) {
				flags = append(flags, args[i+1])
				i++
			}
			continue
		}
		rest = append(rest, a)
	}
	return append(flags, rest...)
}

func printUsage() {
	fmt.Println(`certstamp - course certificates stamped with the student's name

Usage:
  certstamp <command> [arguments]

Commands:
  serve                              Start the web server (configured by environment)
  stamp <course> <name> [-o file]    Stamp a name onto a stored template
  ingest <course> <image> [config]   Store a template image and placement JSON
  version                            Print the certstamp version
  help                               Show this help message

Environment:
  SITE_NAME, SITE_URL, ADDR, DATABASE_PATH, CONTENT_ROOT, FONT_DIR,
  ADMIN_PASSWORD or ADMIN_PASSWORD_HASH, SESSION_SECRET, COOKIE_SECURE`)
}
