package web

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"datefilter/internal/config"
	"datefilter/internal/logger"
	"datefilter/internal/sheet"
)

// App is the upload-and-filter web application
type App struct {
	router    *chi.Mux
	cfg       *config.Config
	ingestor  *sheet.Ingestor
	sessions  *sessionStore
	templates *template.Template
	log       *logger.Logger
	version   string
}

// NewApp wires the router, templates and session store
func NewApp(cfg *config.Config, log *logger.Logger, version string) (*App, error) {
	if log == nil {
		log = logger.Discard()
	}
	templates, err := parseTemplates()
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	app := &App{
		router:    chi.NewRouter(),
		cfg:       cfg,
		ingestor:  sheet.NewIngestor(sheet.Options{MaxRows: cfg.Upload.MaxRows}, log),
		sessions:  newSessionStore(cfg.Session.IdleTimeout),
		templates: templates,
		log:       log.WithComponent("web"),
		version:   version,
	}

	app.setupMiddleware()
	app.setupRoutes()

	return app, nil
}

func (a *App) setupMiddleware() {
	a.router.Use(middleware.RequestID)
	a.router.Use(middleware.RealIP)
	a.router.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{Logger: a.log.Std(), NoColor: true}))
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Compress(5))
}

func (a *App) setupRoutes() {
	a.router.Get("/", a.handleIndex)
	a.router.Post("/upload", a.handleUpload)
	a.router.Get("/rows", a.handleRows)

	a.router.Route("/api", func(r chi.Router) {
		r.Get("/rows", a.handleAPIRows)
		r.Post("/validate", a.handleValidate)
		r.Get("/health", a.handleHealth)
	})
}

func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

// Run serves until ctx is cancelled, then shuts down within the configured timeout.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.cfg.Server.Addr,
		Handler:           a,
		ReadHeaderTimeout: 10 * time.Second,
	}

	sweepCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go a.sessions.runSweeper(sweepCtx, sweepInterval(a.cfg.Session.IdleTimeout), func(n int) {
		a.log.Debugf("expired %d idle sessions", n)
	})

	errCh := make(chan error, 1)
	go func() {
		a.log.Infof("Server running on %s", a.cfg.Server.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	a.log.Infof("shutting down")
	shutdownCtx, stop := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func sweepInterval(idle time.Duration) time.Duration {
	return max(idle/2, time.Second)
}
