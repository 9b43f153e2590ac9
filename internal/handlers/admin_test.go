package handlers_test

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/abrezinsky/councilvote/internal/models"
	"github.com/abrezinsky/councilvote/internal/services"
)

func TestAdminCandidates_CRUD(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do("POST", "/api/admin/candidates", env.adminToken, map[string]interface{}{
		"candidateNumber": 3, "name": "Chen", "partyName": "Green Hall",
	})
	expectStatus(t, rr, http.StatusCreated)
	var c models.Candidate
	decode(t, rr, &c)
	if c.ThemeColor != models.DefaultThemeColor {
		t.Errorf("expected default color, got %s", c.ThemeColor)
	}

	rr = env.do("PUT", fmt.Sprintf("/api/admin/candidates/%d", c.ID), env.adminToken, map[string]interface{}{
		"candidateNumber": 3, "name": "Chen Wei", "partyName": "Green Hall", "themeColor": "#10B981",
	})
	expectStatus(t, rr, http.StatusOK)
	decode(t, rr, &c)
	if c.Name != "Chen Wei" || c.ThemeColor != "#10B981" {
		t.Errorf("unexpected update result %+v", c)
	}

	// number already used by Alice
	expectStatus(t, env.do("POST", "/api/admin/candidates", env.adminToken, map[string]interface{}{
		"candidateNumber": 1, "name": "Dup", "partyName": "X",
	}), http.StatusConflict)
	expectStatus(t, env.do("POST", "/api/admin/candidates", env.adminToken, map[string]interface{}{
		"candidateNumber": 4, "name": "", "partyName": "X",
	}), http.StatusBadRequest)

	expectStatus(t, env.do("DELETE", fmt.Sprintf("/api/admin/candidates/%d", c.ID), env.adminToken, nil), http.StatusNoContent)
	expectStatus(t, env.do("DELETE", fmt.Sprintf("/api/admin/candidates/%d", c.ID), env.adminToken, nil), http.StatusNotFound)
	expectStatus(t, env.do("DELETE", "/api/admin/candidates/abc", env.adminToken, nil), http.StatusBadRequest)
}

func TestAdminDelete_BlockedByHistory(t *testing.T) {
	env := newTestEnv(t)
	expectStatus(t, env.do("POST", "/api/staff/submit", env.staffToken, env.submitBody(10, 6, 4, "")), http.StatusCreated)

	expectStatus(t, env.do("DELETE", fmt.Sprintf("/api/admin/candidates/%d", env.alice.ID), env.adminToken, nil), http.StatusConflict)
	expectStatus(t, env.do("DELETE", fmt.Sprintf("/api/admin/units/%d", env.unit.ID), env.adminToken, nil), http.StatusConflict)
}

func TestAdminUnits_CRUD(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do("POST", "/api/admin/units", env.adminToken, map[string]interface{}{
		"name": "Grade 8B", "grade": "Grade 8", "totalEligible": 28,
	})
	expectStatus(t, rr, http.StatusCreated)
	var u models.PollingUnit
	decode(t, rr, &u)

	rr = env.do("GET", "/api/admin/units", env.adminToken, nil)
	expectStatus(t, rr, http.StatusOK)
	var units []models.PollingUnit
	decode(t, rr, &units)
	if len(units) != 2 || units[0].Grade != "Grade 8" {
		t.Errorf("expected units ordered by grade, got %+v", units)
	}

	rr = env.do("PUT", fmt.Sprintf("/api/admin/units/%d", u.ID), env.adminToken, map[string]interface{}{
		"name": "Grade 8B", "grade": "Grade 8", "totalEligible": 30, "ballotsIssued": 30,
	})
	expectStatus(t, rr, http.StatusOK)

	expectStatus(t, env.do("POST", "/api/admin/units", env.adminToken, map[string]interface{}{"name": "X"}), http.StatusBadRequest)
	expectStatus(t, env.do("DELETE", fmt.Sprintf("/api/admin/units/%d", u.ID), env.adminToken, nil), http.StatusNoContent)
	expectStatus(t, env.do("PUT", "/api/admin/units/999", env.adminToken, map[string]interface{}{
		"name": "Ghost", "grade": "Grade 1",
	}), http.StatusNotFound)
}

func TestAdminUsers_CreateListDelete(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do("POST", "/api/admin/users", env.adminToken, map[string]interface{}{
		"username": "monitor", "password": "pw", "name": "Hall Monitor",
	})
	expectStatus(t, rr, http.StatusCreated)
	var u models.User
	decode(t, rr, &u)
	if u.Role != models.RoleStaff {
		t.Errorf("expected default role STAFF, got %s", u.Role)
	}
	if strings.Contains(rr.Body.String(), "password") {
		t.Error("password hash must not be serialized")
	}

	// unit already has a staff account
	expectStatus(t, env.do("POST", "/api/admin/users", env.adminToken, map[string]interface{}{
		"username": "second", "password": "pw", "name": "Second", "pollingUnitId": env.unit.ID,
	}), http.StatusConflict)
	expectStatus(t, env.do("POST", "/api/admin/users", env.adminToken, map[string]interface{}{
		"username": "x", "password": "pw", "name": "X", "role": "PRINCIPAL",
	}), http.StatusBadRequest)

	expectStatus(t, env.do("DELETE", fmt.Sprintf("/api/admin/users/%d", u.ID), env.adminToken, nil), http.StatusNoContent)
}

func TestAdminConfig_UpdateTogglesPublicView(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do("PUT", "/api/admin/config", env.adminToken, map[string]interface{}{
		"publicViewEnabled": true, "electionTitle": "Council 2026",
	})
	expectStatus(t, rr, http.StatusOK)
	var cfg models.SystemConfig
	decode(t, rr, &cfg)
	if !cfg.PublicViewEnabled || cfg.ElectionTitle != "Council 2026" || cfg.SchoolName != "Test School" {
		t.Errorf("unexpected config %+v", cfg)
	}

	expectStatus(t, env.do("PUT", "/api/admin/config", env.adminToken, map[string]interface{}{"schoolName": " "}), http.StatusBadRequest)

	rr = env.do("GET", "/api/admin/config", env.adminToken, nil)
	expectStatus(t, rr, http.StatusOK)
	decode(t, rr, &cfg)
	if !cfg.PublicViewEnabled {
		t.Error("expected public view to stay enabled")
	}
}

func TestAdminResults_IgnoresPublicFlag(t *testing.T) {
	env := newTestEnv(t)
	expectStatus(t, env.do("POST", "/api/staff/submit", env.staffToken, env.submitBody(10, 6, 4, "")), http.StatusCreated)

	rr := env.do("GET", "/api/admin/results", env.adminToken, nil)
	expectStatus(t, rr, http.StatusOK)
	var res services.Results
	decode(t, rr, &res)
	if res.Enabled {
		t.Error("expected enabled=false to reflect the public flag")
	}
	if len(res.Candidates) != 2 || res.Summary == nil || !res.Summary.IsOfficial {
		t.Fatalf("expected full results, got %+v", res)
	}
}

func TestAuditFeed_NewestFirst(t *testing.T) {
	env := newTestEnv(t)
	expectStatus(t, env.do("POST", "/api/staff/submit", env.staffToken, env.submitBody(10, 6, 4, "")), http.StatusCreated)
	expectStatus(t, env.do("POST", "/api/staff/submit", env.staffToken, env.submitBody(10, 7, 3, "recount")), http.StatusCreated)

	rr := env.do("GET", "/api/admin/audit?limit=1", env.adminToken, nil)
	expectStatus(t, rr, http.StatusOK)
	var logs []models.AuditLog
	decode(t, rr, &logs)
	if len(logs) != 1 || logs[0].Action != models.ActionRecount || logs[0].Reason != "recount" {
		t.Errorf("expected newest RECOUNT entry, got %+v", logs)
	}

	expectStatus(t, env.do("GET", "/api/admin/audit?limit=ten", env.adminToken, nil), http.StatusBadRequest)
}

func TestAuditFeed_PublicWithoutLogin(t *testing.T) {
	env := newTestEnv(t)
	expectStatus(t, env.do("POST", "/api/staff/submit", env.staffToken, env.submitBody(10, 6, 4, "")), http.StatusCreated)
	expectStatus(t, env.do("POST", "/api/staff/submit", env.staffToken, env.submitBody(10, 7, 3, "stack recounted")), http.StatusCreated)
	expectStatus(t, env.do("POST", "/api/staff/submit", env.staffToken, env.submitBody(10, 5, 5, "second recount")), http.StatusCreated)

	rr := env.do("GET", "/api/public/audit-feed?limit=2", "", nil)
	expectStatus(t, rr, http.StatusOK)
	var logs []models.AuditLog
	decode(t, rr, &logs)
	if len(logs) != 2 {
		t.Fatalf("expected limit of 2 entries, got %d", len(logs))
	}
	if logs[0].Reason != "second recount" || logs[1].Reason != "stack recounted" {
		t.Errorf("expected newest first, got %q then %q", logs[0].Reason, logs[1].Reason)
	}
	if logs[0].Round == nil || *logs[0].Round != 3 {
		t.Errorf("expected round 3 first, got %+v", logs[0].Round)
	}

	rr = env.do("GET", "/api/public/audit-feed", "", nil)
	expectStatus(t, rr, http.StatusOK)
	decode(t, rr, &logs)
	if len(logs) != 3 {
		t.Errorf("expected all 3 entries without a limit, got %d", len(logs))
	}
}
