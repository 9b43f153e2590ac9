package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"
)

// ==================== Public Pages ====================

func (h *Handlers) handleIndex(w http.ResponseWriter, r *http.Request) {
	h.render(w, h.templates.Index, "", h.pageData(r, "Election", "home"))
}

func (h *Handlers) handleResultsPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, h.templates.Results, "", h.pageData(r, "Live Results", "results"))
}

// ==================== Public API ====================

// hiddenView is the whole payload of a public endpoint while the dashboard is hidden
type hiddenView struct {
	Enabled bool `json:"enabled"`
}

// handlePublicResults returns {enabled:false} while the dashboard is hidden
func (h *Handlers) handlePublicResults(w http.ResponseWriter, r *http.Request) {
	results, err := h.Results.PublicResults(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	if !results.Enabled {
		respondOK(w, hiddenView{})
		return
	}
	respondOK(w, results)
}

func (h *Handlers) handlePublicChartData(w http.ResponseWriter, r *http.Request) {
	chart, err := h.Results.PublicChartData(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	if !chart.Enabled {
		respondOK(w, hiddenView{})
		return
	}
	respondOK(w, chart)
}

// handlePublicQR returns a PNG QR code linking to the public dashboard
func (h *Handlers) handlePublicQR(w http.ResponseWriter, r *http.Request) {
	size := 0
	if raw := r.URL.Query().Get("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			h.respondError(w, r, BadRequest("Invalid size parameter"))
			return
		}
		size = n
	}

	png, err := h.Share.PublicQRCode(size)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}

// handleHealth reports whether the store is reachable
func (h *Handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		respondOK(w, HealthResponse{Status: "ok"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		h.log.Warn("Health check failed", "error", err)
		respondJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "error", DBConnected: false})
		return
	}
	respondOK(w, HealthResponse{Status: "ok", DBConnected: true})
}
