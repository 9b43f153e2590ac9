package handlers

import (
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/abrezinsky/councilvote/internal/auth"
	"github.com/abrezinsky/councilvote/internal/services"
)

// maxUploadSize caps evidence photos
const maxUploadSize = 10 << 20

var uploadTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".heic": "image/heic",
	".pdf":  "application/pdf",
}

// ==================== Staff Pages ====================

func (h *Handlers) handleStaffPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, h.templates.Staff, "", h.pageData(r, "Polling Station", "staff"))
}

// ==================== Official Submissions ====================

// handleSubmit commits an official round. The submitter identity always
// comes from the session.
func (h *Handlers) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req services.SubmitRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	user, _ := auth.UserFromContext(r.Context())
	req.SubmittedBy = user.Username

	result, err := h.Submission.Submit(r.Context(), req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondCreated(w, result)
}

// handleSubmissionStatus returns the round history of a unit. unitId
// defaults to the caller's assigned unit.
func (h *Handlers) handleSubmissionStatus(w http.ResponseWriter, r *http.Request) {
	unitID, err := parseIntQuery(r, "unitId")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if unitID == nil {
		user, _ := auth.UserFromContext(r.Context())
		unitID = user.PollingUnitID
	}
	if unitID == nil {
		h.respondError(w, r, BadRequest("unitId is required"))
		return
	}

	status, err := h.Submission.Status(r.Context(), *unitID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondOK(w, status)
}

// ==================== Live Tallies ====================

func (h *Handlers) handleApplyDelta(w http.ResponseWriter, r *http.Request) {
	var req services.DeltaRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	user, _ := auth.UserFromContext(r.Context())
	req.PerformedBy = user.Username

	tally, err := h.Tally.ApplyDelta(r.Context(), req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondOK(w, tally)
}

func (h *Handlers) handleListTallies(w http.ResponseWriter, r *http.Request) {
	unitID, err := parseIntQuery(r, "unitId")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	tallies, err := h.Tally.ListTallies(r.Context(), unitID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondOK(w, tallies)
}

// ==================== Unit Setup ====================

func (h *Handlers) handleGetUnitInit(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())
	unit, err := h.Unit.AssignedUnit(r.Context(), user)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondOK(w, unit)
}

func (h *Handlers) handleUpdateUnitInit(w http.ResponseWriter, r *http.Request) {
	var req UnitInitRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	if req.TotalEligible == nil || req.BallotsIssued == nil {
		h.respondError(w, r, BadRequest("totalEligible and ballotsIssued are required"))
		return
	}

	user, _ := auth.UserFromContext(r.Context())
	unit, err := h.Unit.InitAssignedUnit(r.Context(), user, *req.TotalEligible, *req.BallotsIssued)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondOK(w, unit)
}

// ==================== Evidence Uploads ====================

// handleUpload stores a photo of the signed tally sheet
func (h *Handlers) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		h.respondError(w, r, BadRequest("Upload must be a multipart form under 10 MB"))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		h.respondError(w, r, BadRequest("Missing file field"))
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if _, ok := uploadTypes[ext]; !ok {
		h.respondError(w, r, BadRequest("Unsupported file type "+ext))
		return
	}

	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		h.respondError(w, r, err)
		return
	}
	name := "evidence_" + uuid.NewString() + ext
	if err := saveUpload(filepath.Join(h.uploadDir, name), file); err != nil {
		h.respondError(w, r, err)
		return
	}

	user, _ := auth.UserFromContext(r.Context())
	h.log.Info("Evidence uploaded", "file", name, "size", header.Size, "by", user.Username)
	respondCreated(w, UploadResponse{URL: "/uploads/" + name, Filename: name})
}

// saveUpload writes src to path. A partially written file is removed.
func saveUpload(path string, src io.Reader) error {
	dst, err := os.Create(path)
	if err != nil {
		return err
	}
	_, err = io.Copy(dst, src)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return err
	}
	return nil
}

// handleServeUpload serves a stored evidence file
func (h *Handlers) handleServeUpload(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "filename")
	if name == "" || strings.Contains(name, "..") || strings.ContainsAny(name, `/\`) {
		h.respondError(w, r, BadRequest("Invalid filename"))
		return
	}
	contentType, ok := uploadTypes[strings.ToLower(filepath.Ext(name))]
	if !ok {
		h.respondError(w, r, NotFound("File not found"))
		return
	}

	f, err := os.Open(filepath.Join(h.uploadDir, name))
	if err != nil {
		h.respondError(w, r, NotFound("File not found"))
		return
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil || info.IsDir() {
		h.respondError(w, r, NotFound("File not found"))
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=31536000")
	http.ServeContent(w, r, name, info.ModTime(), f)
}
