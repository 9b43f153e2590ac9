package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/abrezinsky/councilvote/internal/auth"
	"github.com/abrezinsky/councilvote/internal/config"
	"github.com/abrezinsky/councilvote/internal/events"
	"github.com/abrezinsky/councilvote/internal/handlers"
	"github.com/abrezinsky/councilvote/internal/logger"
	"github.com/abrezinsky/councilvote/internal/metrics"
	"github.com/abrezinsky/councilvote/internal/models"
	"github.com/abrezinsky/councilvote/internal/repository"
	"github.com/abrezinsky/councilvote/internal/services"
	"github.com/abrezinsky/councilvote/internal/websocket"
)

const shutdownTimeout = 10 * time.Second

// App holds all application dependencies
type App struct {
	log       logger.Logger
	cfg       config.Config
	handlers  *handlers.Handlers
	repo      *repository.Repository
	hub       *websocket.Hub
	publisher events.Publisher
	baseURL   string
}

// New opens the store, seeds the election config and the first admin
// account, and wires services, the websocket hub and the HTTP layer.
func New(log logger.Logger, cfg config.Config, templatesFS, staticFS fs.FS) (*App, error) {
	repo, err := repository.Open(cfg.Driver, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()

	var publisher events.Publisher = events.Noop{}
	if len(cfg.KafkaBrokers) > 0 {
		publisher = events.NewKafkaPublisher(log, cfg.KafkaBrokers, cfg.KafkaTopic)
		log.Info("Publishing audit events", "brokers", strings.Join(cfg.KafkaBrokers, ","), "topic", cfg.KafkaTopic)
	}
	m := metrics.New()

	settingsService := services.NewSettingsService(log, repo)
	if _, err := settingsService.Seed(ctx, models.SystemConfig{
		ElectionTitle: cfg.ElectionTitle,
		SchoolName:    cfg.SchoolName,
	}); err != nil {
		repo.Close()
		return nil, fmt.Errorf("failed to seed election config: %w", err)
	}

	userService := services.NewUserService(log, repo)
	if err := seedAdmin(ctx, log, userService, cfg); err != nil {
		repo.Close()
		return nil, err
	}

	submissionService := services.NewSubmissionService(log, repo, publisher, m)
	tallyService := services.NewTallyService(log, repo, publisher, m)

	hub := websocket.New(log, settingsService)
	hub.Start()
	settingsService.SetBroadcaster(hub)
	submissionService.SetBroadcaster(hub)
	tallyService.SetBroadcaster(hub)

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("http://%s:%d", getPreferredIP(realNetworkProvider{}), cfg.Port)
	}

	svc := handlers.Services{
		Submission: submissionService,
		Tally:      tallyService,
		Results:    services.NewResultsService(log, repo),
		Candidate:  services.NewCandidateService(log, repo),
		Unit:       services.NewUnitService(log, repo),
		User:       userService,
		Settings:   settingsService,
		Audit:      services.NewAuditService(log, repo),
		Share:      services.NewShareService(baseURL),
	}

	opts := handlers.Options{
		Auth:      auth.New(repo),
		WebSocket: hub.ServeWs,
		Metrics:   m.Handler(),
		Store:     repo,
		UploadDir: cfg.UploadDir,
		HTTPLog:   log,
		Log:       log,
	}

	h, err := handlers.New(svc, opts, templatesFS, handlers.NewStaticServer(staticFS))
	if err != nil {
		hub.Close()
		repo.Close()
		return nil, fmt.Errorf("failed to initialize handlers: %w", err)
	}

	return &App{
		log:       log,
		cfg:       cfg,
		handlers:  h,
		repo:      repo,
		hub:       hub,
		publisher: publisher,
		baseURL:   strings.TrimSuffix(baseURL, "/"),
	}, nil
}

// seedAdmin creates the first admin account on an empty database
func seedAdmin(ctx context.Context, log logger.Logger, users *services.UserService, cfg config.Config) error {
	password := cfg.AdminPassword
	generated := password == ""
	if generated {
		password = auth.GeneratePassword()
	}
	created, err := users.SeedAdmin(ctx, cfg.AdminUsername, password)
	if err != nil {
		return fmt.Errorf("failed to seed admin account: %w", err)
	}
	if created {
		if generated {
			log.Info("Admin account created", "username", cfg.AdminUsername, "password", password)
		} else {
			log.Info("Admin account created", "username", cfg.AdminUsername)
		}
	}
	return nil
}

// Router returns the configured HTTP router
func (a *App) Router() chi.Router {
	return a.handlers.Router()
}

// BaseURL is the address printed for staff devices and encoded in the QR code
func (a *App) BaseURL() string {
	return a.baseURL
}

// Close releases the hub, the event publisher and the store. Safe to call twice.
func (a *App) Close() {
	if a.hub != nil {
		a.hub.Close()
		a.hub = nil
	}
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.log.Warn("Failed to close event publisher", "error", err)
		}
		a.publisher = nil
	}
	if a.repo != nil {
		if err := a.repo.Close(); err != nil {
			a.log.Warn("Failed to close database", "error", err)
		}
		a.repo = nil
	}
}

// Run serves HTTP until ctx is cancelled, then shuts the server down gracefully
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.cfg.Addr(),
		Handler:           a.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	a.log.Info("Server starting", "url", a.baseURL)
	a.log.Info("Staff URL", "url", a.baseURL+"/staff")
	a.log.Info("Admin URL", "url", a.baseURL+"/admin")
	a.log.Info("Public results", "url", a.baseURL+services.PublicResultsPath)

	errCh := make(chan error, 1)
	go func() {
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

	a.log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// networkInterface wraps net.Interface for testing
type networkInterface interface {
	Flags() net.Flags
	Addrs() ([]net.Addr, error)
}

type realInterface struct {
	iface net.Interface
}

func (r realInterface) Flags() net.Flags {
	return r.iface.Flags
}

func (r realInterface) Addrs() ([]net.Addr, error) {
	return r.iface.Addrs()
}

// networkProvider lists network interfaces
type networkProvider interface {
	Interfaces() ([]networkInterface, error)
}

type realNetworkProvider struct{}

func (realNetworkProvider) Interfaces() ([]networkInterface, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}
	result := make([]networkInterface, len(ifaces))
	for i, iface := range ifaces {
		result[i] = realInterface{iface: iface}
	}
	return result, nil
}

// getPreferredIP picks the address staff devices on the school LAN should use.
// Private IPv4 ranges win; falls back to any IPv4 address, then localhost.
func getPreferredIP(provider networkProvider) string {
	ifaces, err := provider.Interfaces()
	if err != nil {
		return "localhost"
	}

	var candidates []net.IP
	for _, iface := range ifaces {
		flags := iface.Flags()
		if flags&net.FlagUp == 0 || flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			var ip net.IP
			switch v := addr.(type) {
			case *net.IPNet:
				ip = v.IP
			case *net.IPAddr:
				ip = v.IP
			}
			if ip == nil || ip.To4() == nil || ip.IsLoopback() {
				continue
			}
			candidates = append(candidates, ip)
		}
	}

	for _, ip := range candidates {
		if ip4 := ip.To4(); ip4[0] == 192 && ip4[1] == 168 || ip4[0] == 10 || isPrivate172(ip) {
			return ip.String()
		}
	}
	if len(candidates) > 0 {
		return candidates[0].String()
	}
	return "localhost"
}

// isPrivate172 checks if IP is in 172.16.0.0/12 range
func isPrivate172(ip net.IP) bool {
	if ip4 := ip.To4(); ip4 != nil {
		return ip4[0] == 172 && ip4[1] >= 16 && ip4[1] <= 31
	}
	return false
}
