package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/abrezinsky/councilvote/internal/auth"
	"github.com/abrezinsky/councilvote/internal/handlers"
	"github.com/abrezinsky/councilvote/internal/models"
	"github.com/abrezinsky/councilvote/internal/services"
)

func enablePublicView(t *testing.T, env *testEnv) {
	t.Helper()
	on := true
	if _, err := env.settings.UpdateConfig(context.Background(), services.ConfigUpdate{PublicViewEnabled: &on}); err != nil {
		t.Fatal(err)
	}
}

func TestPublicResults_Gated(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do("GET", "/api/public/results", "", nil)
	expectStatus(t, rr, http.StatusOK)
	if strings.TrimSpace(rr.Body.String()) != `{"enabled":false}` {
		t.Errorf("expected only enabled=false, got %s", rr.Body.String())
	}
	rr = env.do("GET", "/api/public/chart-data", "", nil)
	expectStatus(t, rr, http.StatusOK)
	if strings.TrimSpace(rr.Body.String()) != `{"enabled":false}` {
		t.Errorf("expected only enabled=false, got %s", rr.Body.String())
	}
}

func TestPublicResults_OfficialWinsOverLive(t *testing.T) {
	env := newTestEnv(t)
	enablePublicView(t, env)

	expectStatus(t, env.do("POST", "/api/staff/live-tally", env.staffToken, map[string]interface{}{
		"pollingUnitId": env.unit.ID, "candidateId": env.alice.ID, "tallyType": models.TallyCandidate, "delta": 5,
	}), http.StatusOK)
	expectStatus(t, env.do("POST", "/api/staff/submit", env.staffToken, env.submitBody(10, 6, 4, "")), http.StatusCreated)

	rr := env.do("GET", "/api/public/results", "", nil)
	expectStatus(t, rr, http.StatusOK)
	var res services.Results
	decode(t, rr, &res)
	if !res.Enabled || res.Config == nil || res.Config.SchoolName != "Test School" {
		t.Fatalf("unexpected results header %+v", res)
	}
	for _, c := range res.Candidates {
		if c.CandidateID == env.alice.ID {
			if c.OfficialVotes != 6 || c.LiveVotes != 5 || c.DisplayedVotes != 6 {
				t.Errorf("unexpected Alice totals %+v", c)
			}
		}
	}
	if res.Summary.TurnoutPercent != "25.0" {
		t.Errorf("expected turnout 25.0, got %s", res.Summary.TurnoutPercent)
	}
}

func TestPublicResults_KeysPresentWithoutCandidates(t *testing.T) {
	env := newTestEnv(t)
	enablePublicView(t, env)
	ctx := context.Background()
	for _, id := range []int{env.alice.ID, env.bob.ID} {
		if err := env.repo.DeleteCandidate(ctx, id); err != nil {
			t.Fatalf("delete candidate %d: %v", id, err)
		}
	}

	for path, keys := range map[string][]string{
		"/api/public/results":    {"candidates", "summary"},
		"/api/public/chart-data": {"candidates", "grades"},
	} {
		rr := env.do("GET", path, "", nil)
		expectStatus(t, rr, http.StatusOK)
		var body map[string]json.RawMessage
		decode(t, rr, &body)
		for _, key := range keys {
			raw, ok := body[key]
			if !ok || string(raw) == "null" {
				t.Errorf("%s: expected %q to be present, got %s", path, key, rr.Body.String())
			}
		}
		if string(body["candidates"]) != "[]" {
			t.Errorf("%s: expected empty candidates list, got %s", path, body["candidates"])
		}
	}
}

func TestPublicChartData_GradeRows(t *testing.T) {
	env := newTestEnv(t)
	enablePublicView(t, env)
	expectStatus(t, env.do("POST", "/api/staff/submit", env.staffToken, env.submitBody(10, 6, 4, "")), http.StatusCreated)

	rr := env.do("GET", "/api/public/chart-data", "", nil)
	expectStatus(t, rr, http.StatusOK)
	var chart struct {
		Enabled bool                     `json:"enabled"`
		Grades  []map[string]interface{} `json:"grades"`
	}
	decode(t, rr, &chart)
	if !chart.Enabled || len(chart.Grades) != 1 {
		t.Fatalf("unexpected chart %+v", chart)
	}
	row := chart.Grades[0]
	if row["grade"] != "Grade 9" {
		t.Errorf("unexpected grade %v", row["grade"])
	}
	if row[candidateKey(env.alice.ID)+"_name"] != "Alice" {
		t.Errorf("expected candidate name key in row, got %v", row)
	}
	if v, _ := row[candidateKey(env.alice.ID)].(float64); v != 6 {
		t.Errorf("expected Alice grade total 6, got %v", row[candidateKey(env.alice.ID)])
	}
}

func candidateKey(id int) string {
	return "candidate_" + strconv.Itoa(id)
}

func TestPublicQR_ReturnsPNG(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do("GET", "/api/public/qr.png", "", nil)
	expectStatus(t, rr, http.StatusOK)
	if rr.Header().Get("Content-Type") != "image/png" {
		t.Errorf("expected image/png, got %s", rr.Header().Get("Content-Type"))
	}
	if !bytes.HasPrefix(rr.Body.Bytes(), []byte("\x89PNG")) {
		t.Error("expected PNG signature")
	}

	expectStatus(t, env.do("GET", "/api/public/qr.png?size=big", "", nil), http.StatusBadRequest)
	expectStatus(t, env.do("GET", "/api/public/qr.png?size=5000", "", nil), http.StatusBadRequest)
}

func TestHealth_ReportsStore(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do("GET", "/api/health", "", nil)
	expectStatus(t, rr, http.StatusOK)
	var health handlers.HealthResponse
	decode(t, rr, &health)
	if health.Status != "ok" || !health.DBConnected {
		t.Errorf("unexpected health %+v", health)
	}

	env.repo.Close()
	rr = env.do("GET", "/api/health", "", nil)
	expectStatus(t, rr, http.StatusServiceUnavailable)
}

func TestMetrics_ExposesCounters(t *testing.T) {
	env := newTestEnv(t)
	expectStatus(t, env.do("POST", "/api/staff/submit", env.staffToken, env.submitBody(10, 5, 4, "")), http.StatusBadRequest)

	rr := env.do("GET", "/metrics", "", nil)
	expectStatus(t, rr, http.StatusOK)
	if !strings.Contains(rr.Body.String(), `councilvote_submission_rejections_total{reason="balance"} 1`) {
		t.Errorf("expected balance rejection counter, got:\n%s", rr.Body.String())
	}
}

func templatesFS() fstest.MapFS {
	return fstest.MapFS{
		"index.html":           &fstest.MapFile{Data: []byte(`<html><body>Index {{.Election}}</body></html>`)},
		"login.html":           &fstest.MapFile{Data: []byte(`<html><body>Login</body></html>`)},
		"staff.html":           &fstest.MapFile{Data: []byte(`<html><body>Staff</body></html>`)},
		"results.html":         &fstest.MapFile{Data: []byte(`<html><body>Results {{.PublicURL}}</body></html>`)},
		"admin/layout.html":    &fstest.MapFile{Data: []byte(`{{define "admin"}}<html><body>{{template "content" .}}</body></html>{{end}}`)},
		"admin/dashboard.html": &fstest.MapFile{Data: []byte(`{{define "content"}}Dashboard{{end}}`)},
	}
}

func TestNew_Pages(t *testing.T) {
	env := newTestEnv(t)
	h, err := handlers.New(env.svc, handlers.Options{Auth: auth.New(env.repo)}, templatesFS(), handlers.NewStaticServer(fstest.MapFS{}))
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	env.router = h.Router()

	rr := env.do("GET", "/", "", nil)
	expectStatus(t, rr, http.StatusOK)
	if !strings.Contains(rr.Body.String(), "Student Council Election") {
		t.Errorf("expected election title on index, got %s", rr.Body.String())
	}
	rr = env.do("GET", "/results", "", nil)
	expectStatus(t, rr, http.StatusOK)
	if !strings.Contains(rr.Body.String(), "http://192.168.1.20:8080/results") {
		t.Errorf("expected public URL on results page, got %s", rr.Body.String())
	}

	rr = env.do("GET", "/admin", "", nil)
	expectStatus(t, rr, http.StatusFound)
	if rr.Header().Get("Location") != "/login" {
		t.Errorf("expected redirect to /login, got %s", rr.Header().Get("Location"))
	}
}

func TestNew_MissingTemplate(t *testing.T) {
	env := newTestEnv(t)
	fsys := templatesFS()
	delete(fsys, "staff.html")

	if _, err := handlers.New(env.svc, handlers.Options{}, fsys, nil); err == nil {
		t.Fatal("expected error for missing staff template")
	}
}
