package handlers

import (
	"net/http"
	"strconv"

	"github.com/abrezinsky/councilvote/internal/services"
)

// ==================== Admin Pages ====================

func (h *Handlers) handleAdminDashboard(w http.ResponseWriter, r *http.Request) {
	h.render(w, h.templates.AdminDashboard, "admin", h.pageData(r, "Election Control", "dashboard"))
}

// ==================== Results & Audit ====================

// handleAdminResults returns the aggregated view even while the public
// dashboard is disabled
func (h *Handlers) handleAdminResults(w http.ResponseWriter, r *http.Request) {
	results, err := h.Results.Results(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondOK(w, results)
}

func (h *Handlers) handleAuditFeed(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			h.respondError(w, r, BadRequest("Invalid limit parameter"))
			return
		}
		limit = n
	}
	logs, err := h.Audit.ListAudit(r.Context(), limit)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondOK(w, logs)
}

// ==================== Candidates ====================

func (h *Handlers) handleGetCandidates(w http.ResponseWriter, r *http.Request) {
	candidates, err := h.Candidate.ListCandidates(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondOK(w, candidates)
}

func (h *Handlers) handleCreateCandidate(w http.ResponseWriter, r *http.Request) {
	var req services.CandidateInput
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	c, err := h.Candidate.CreateCandidate(r.Context(), req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondCreated(w, c)
}

func (h *Handlers) handleUpdateCandidate(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var req services.CandidateInput
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	c, err := h.Candidate.UpdateCandidate(r.Context(), id, req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondOK(w, c)
}

func (h *Handlers) handleDeleteCandidate(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if err := h.Candidate.DeleteCandidate(r.Context(), id); err != nil {
		h.respondError(w, r, err)
		return
	}
	respondDeleted(w)
}

// ==================== Polling Units ====================

func (h *Handlers) handleGetUnits(w http.ResponseWriter, r *http.Request) {
	units, err := h.Unit.ListUnits(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondOK(w, units)
}

func (h *Handlers) handleCreateUnit(w http.ResponseWriter, r *http.Request) {
	var req services.UnitInput
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	u, err := h.Unit.CreateUnit(r.Context(), req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondCreated(w, u)
}

func (h *Handlers) handleUpdateUnit(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var req services.UnitInput
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	u, err := h.Unit.UpdateUnit(r.Context(), id, req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondOK(w, u)
}

func (h *Handlers) handleDeleteUnit(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if err := h.Unit.DeleteUnit(r.Context(), id); err != nil {
		h.respondError(w, r, err)
		return
	}
	respondDeleted(w)
}

// ==================== Users ====================

func (h *Handlers) handleGetUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.User.ListUsers(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondOK(w, users)
}

func (h *Handlers) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req services.UserInput
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	u, err := h.User.CreateUser(r.Context(), req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondCreated(w, u)
}

func (h *Handlers) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if err := h.User.DeleteUser(r.Context(), id); err != nil {
		h.respondError(w, r, err)
		return
	}
	respondDeleted(w)
}

// ==================== Config ====================

func (h *Handlers) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.Settings.GetConfig(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondOK(w, cfg)
}

func (h *Handlers) handleUpdateConfig(w http.ResponseWriter, r *http.Request) {
	var req services.ConfigUpdate
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	cfg, err := h.Settings.UpdateConfig(r.Context(), req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondOK(w, cfg)
}
