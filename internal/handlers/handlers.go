package handlers

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/abrezinsky/councilvote/internal/auth"
	"github.com/abrezinsky/councilvote/internal/logger"
	"github.com/abrezinsky/councilvote/internal/services"
)

// NewStaticServer creates a static file server from an fs.FS
func NewStaticServer(staticFS fs.FS) http.Handler {
	return http.FileServer(http.FS(staticFS))
}

// PageData holds the data passed to page templates
type PageData struct {
	Title     string
	PageTitle string
	ActiveNav string
	Election  string
	School    string
	PublicURL string
}

// Templates holds all parsed HTML templates
type Templates struct {
	Index          *template.Template
	Login          *template.Template
	Staff          *template.Template
	Results        *template.Template
	AdminDashboard *template.Template
}

// Services bundles the services the HTTP layer calls
type Services struct {
	Submission services.SubmissionServicer
	Tally      services.TallyServicer
	Results    services.ResultsServicer
	Candidate  services.CandidateServicer
	Unit       services.UnitServicer
	User       services.UserServicer
	Settings   services.SettingsServicer
	Audit      services.AuditServicer
	Share      services.ShareServicer
}

// Pinger reports store health
type Pinger interface {
	Ping(ctx context.Context) error
}

// HTTPLogger is an interface for loggers that support HTTP logging control
type HTTPLogger interface {
	IsHTTPLoggingEnabled() bool
}

// Options carries the non-service dependencies of the HTTP layer
type Options struct {
	Auth      *auth.Auth
	WebSocket http.HandlerFunc
	Metrics   http.Handler
	Store     Pinger
	UploadDir string
	HTTPLog   HTTPLogger
	Log       logger.Logger
}

// Handlers holds all HTTP handler dependencies
type Handlers struct {
	Services
	Auth         *auth.Auth
	ws           http.HandlerFunc
	metrics      http.Handler
	store        Pinger
	uploadDir    string
	httpLog      HTTPLogger
	log          logger.Logger
	templates    *Templates
	staticServer http.Handler
}

// New creates a new Handlers instance with all dependencies
func New(svc Services, opts Options, templatesFS fs.FS, staticServer http.Handler) (*Handlers, error) {
	templates, err := loadTemplates(templatesFS)
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}

	h := NewForTesting(svc, opts)
	h.templates = templates
	h.staticServer = staticServer
	return h, nil
}

// NoopHTTPLogger is a test logger that always returns false for HTTP logging
type NoopHTTPLogger struct{}

func (NoopHTTPLogger) IsHTTPLoggingEnabled() bool { return false }

// NewForTesting creates a Handlers instance without loading templates (for testing API endpoints)
func NewForTesting(svc Services, opts Options) *Handlers {
	if opts.HTTPLog == nil {
		opts.HTTPLog = NoopHTTPLogger{}
	}
	if opts.Log == nil {
		opts.Log = logger.New()
	}
	if opts.UploadDir == "" {
		opts.UploadDir = "uploads"
	}
	return &Handlers{
		Services:  svc,
		Auth:      opts.Auth,
		ws:        opts.WebSocket,
		metrics:   opts.Metrics,
		store:     opts.Store,
		uploadDir: opts.UploadDir,
		httpLog:   opts.HTTPLog,
		log:       opts.Log,
	}
}

// loadTemplates parses all templates once at startup
func loadTemplates(templatesFS fs.FS) (*Templates, error) {
	t := &Templates{}
	var err error

	if t.Index, err = template.ParseFS(templatesFS, "index.html"); err != nil {
		return nil, fmt.Errorf("index template: %w", err)
	}
	if t.Login, err = template.ParseFS(templatesFS, "login.html"); err != nil {
		return nil, fmt.Errorf("login template: %w", err)
	}
	if t.Staff, err = template.ParseFS(templatesFS, "staff.html"); err != nil {
		return nil, fmt.Errorf("staff template: %w", err)
	}
	if t.Results, err = template.ParseFS(templatesFS, "results.html"); err != nil {
		return nil, fmt.Errorf("results template: %w", err)
	}
	if t.AdminDashboard, err = template.ParseFS(templatesFS, "admin/layout.html", "admin/dashboard.html"); err != nil {
		return nil, fmt.Errorf("admin dashboard template: %w", err)
	}

	return t, nil
}

// pageData fills election details for a page; config errors fall back to blanks
func (h *Handlers) pageData(r *http.Request, title, nav string) PageData {
	data := PageData{Title: title, PageTitle: title, ActiveNav: nav}
	if h.Settings != nil {
		if cfg, err := h.Settings.GetConfig(r.Context()); err == nil {
			data.Election = cfg.ElectionTitle
			data.School = cfg.SchoolName
		}
	}
	if h.Share != nil {
		data.PublicURL = h.Share.PublicURL()
	}
	return data
}

func (h *Handlers) render(w http.ResponseWriter, t *template.Template, name string, data PageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	var err error
	if name == "" {
		err = t.Execute(w, data)
	} else {
		err = t.ExecuteTemplate(w, name, data)
	}
	if err != nil {
		h.log.Error("Template render failed", "page", data.ActiveNav, "error", err)
	}
}
