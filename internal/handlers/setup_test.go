package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/abrezinsky/councilvote/internal/auth"
	"github.com/abrezinsky/councilvote/internal/events"
	"github.com/abrezinsky/councilvote/internal/handlers"
	"github.com/abrezinsky/councilvote/internal/logger"
	"github.com/abrezinsky/councilvote/internal/metrics"
	"github.com/abrezinsky/councilvote/internal/models"
	"github.com/abrezinsky/councilvote/internal/repository"
	"github.com/abrezinsky/councilvote/internal/services"
	"github.com/abrezinsky/councilvote/internal/testutil"
)

// testEnv is a fully wired API over an in-memory store
type testEnv struct {
	t          *testing.T
	repo       *repository.Repository
	router     chi.Router
	svc        handlers.Services
	settings   *services.SettingsService
	metrics    *metrics.Metrics
	uploadDir  string
	unit       models.PollingUnit
	alice, bob models.Candidate
	staffToken string
	adminToken string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := logger.New()
	repo := testutil.NewTestRepository(t)
	m := metrics.New()

	settings := services.NewSettingsService(log, repo)
	users := services.NewUserService(log, repo)
	svc := handlers.Services{
		Submission: services.NewSubmissionService(log, repo, events.Noop{}, m),
		Tally:      services.NewTallyService(log, repo, events.Noop{}, m),
		Results:    services.NewResultsService(log, repo),
		Candidate:  services.NewCandidateService(log, repo),
		Unit:       services.NewUnitService(log, repo),
		User:       users,
		Settings:   settings,
		Audit:      services.NewAuditService(log, repo),
		Share:      services.NewShareService("http://192.168.1.20:8080"),
	}

	a := auth.New(repo)
	env := &testEnv{
		t:         t,
		repo:      repo,
		svc:       svc,
		settings:  settings,
		metrics:   m,
		uploadDir: t.TempDir(),
	}
	h := handlers.NewForTesting(svc, handlers.Options{
		Auth:      a,
		Metrics:   m.Handler(),
		Store:     repo,
		UploadDir: env.uploadDir,
		Log:       log,
	})
	env.router = h.Router()

	ctx := context.Background()
	env.unit = testutil.MustUnit(t, repo, "Grade 9A", "Grade 9", 40)
	env.alice = testutil.MustCandidate(t, repo, 1, "Alice")
	env.bob = testutil.MustCandidate(t, repo, 2, "Bob")

	staff, err := users.CreateUser(ctx, services.UserInput{
		Username: "gr9a", Password: "pw-staff", Name: "Grade 9A Staff", PollingUnitID: &env.unit.ID,
	})
	if err != nil {
		t.Fatalf("create staff: %v", err)
	}
	admin, err := users.CreateUser(ctx, services.UserInput{
		Username: "admin", Password: "pw-admin", Name: "Admin", Role: models.RoleAdmin,
	})
	if err != nil {
		t.Fatalf("create admin: %v", err)
	}
	if env.staffToken, err = a.Login(ctx, staff); err != nil {
		t.Fatalf("login staff: %v", err)
	}
	if env.adminToken, err = a.Login(ctx, admin); err != nil {
		t.Fatalf("login admin: %v", err)
	}
	return env
}

// do sends a request with an optional JSON body and session token
func (e *testEnv) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	e.t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			e.t.Fatalf("marshal: %v", err)
		}
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: token})
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
}

func expectStatus(t *testing.T, rr *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rr.Code != want {
		t.Fatalf("expected status %d, got %d: %s", want, rr.Code, rr.Body.String())
	}
}

func (e *testEnv) submitBody(signatures, alice, bob int, reason string) map[string]interface{} {
	return map[string]interface{}{
		"pollingUnitId":   e.unit.ID,
		"totalSignatures": signatures,
		"ballotsIssued":   40,
		"votes": []map[string]int{
			{"candidateId": e.alice.ID, "voteCount": alice},
			{"candidateId": e.bob.ID, "voteCount": bob},
		},
		"reason": reason,
	}
}
