package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/mycity/intake/internal/notify"
	"github.com/mycity/intake/internal/storage"
	"github.com/mycity/intake/pkg/models"
	"github.com/mycity/intake/pkg/repository"
)

const (
	listCap     = 100
	resolvedCap = 50
)

// Enqueuer is the slice of the worker pool the complaint handlers need.
type Enqueuer interface {
	Enqueue(ctx context.Context, typ string, payload any, priority int, maxAttempts int) (int64, error)
}

type ComplaintsHandler struct {
	complaints repository.ComplaintRepo
	photos     storage.PhotoStore
	queue      Enqueuer
	maxUpload  int64
}

func NewComplaintsHandler(complaints repository.ComplaintRepo, photos storage.PhotoStore, queue Enqueuer, maxUpload int64) *ComplaintsHandler {
	if maxUpload <= 0 {
		maxUpload = 5 << 20
	}
	return &ComplaintsHandler{complaints: complaints, photos: photos, queue: queue, maxUpload: maxUpload}
}

// Submit accepts the public multipart submission form. The photo is made
// durable before the record is written; a storage failure aborts the whole
// submission with no partial complaint.
func (h *ComplaintsHandler) Submit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload+64<<10)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		writeError(w, "invalid form", http.StatusBadRequest)
		return
	}

	description := strings.TrimSpace(r.FormValue("description"))
	if description == "" {
		writeError(w, "description required", http.StatusBadRequest)
		return
	}

	email := strings.TrimSpace(r.FormValue("email"))

	var lat, lng *float64
	if v := r.FormValue("lat"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			writeError(w, "invalid lat", http.StatusBadRequest)
			return
		}
		lat = &f
	}
	if v := r.FormValue("lng"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			writeError(w, "invalid lng", http.StatusBadRequest)
			return
		}
		lng = &f
	}

	ctx := r.Context()

	var photoURL string
	if file, header, err := r.FormFile("photo"); err == nil {
		defer file.Close()
		photoURL, err = h.photos.SavePhoto(ctx, header.Filename, file)
		if err != nil {
			logger.Error("photo upload", "err", err)
			writeError(w, "server error", http.StatusInternalServerError)
			return
		}
	} else if err != http.ErrMissingFile {
		writeError(w, "invalid photo upload", http.StatusBadRequest)
		return
	}

	c := &models.Complaint{
		ID:          uuid.NewString(),
		Description: description,
		Email:       email,
		Lat:         lat,
		Lng:         lng,
		PhotoURL:    photoURL,
		Status:      models.StatusPending,
		Created:     time.Now().UTC().UnixMilli(),
	}
	if err := h.complaints.CreateComplaint(ctx, c); err != nil {
		logger.Error("create complaint", "err", err)
		writeError(w, "server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, c, http.StatusOK)
}

// List returns complaints newest first, admin only. Capped at 100.
func (h *ComplaintsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r.URL.Query().Get("limit"), listCap)

	out, err := h.complaints.ListComplaints(r.Context(), limit)
	if err != nil {
		writeError(w, "server error", http.StatusInternalServerError)
		return
	}
	if out == nil {
		out = []models.Complaint{}
	}

	writeJSON(w, out, http.StatusOK)
}

// Get is public: whoever holds the id may read the complaint.
func (h *ComplaintsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	c, err := h.complaints.GetComplaint(r.Context(), id)
	if err != nil {
		writeError(w, "server error", http.StatusInternalServerError)
		return
	}
	if c == nil {
		writeError(w, "not found", http.StatusNotFound)
		return
	}

	writeJSON(w, c, http.StatusOK)
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus transitions a complaint, admin only. The notification is
// queued after the update and its outcome never touches the response.
func (h *ComplaintsHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request", http.StatusBadRequest)
		return
	}
	if req.Status == "" {
		writeError(w, "status required", http.StatusBadRequest)
		return
	}

	status := models.ComplaintStatus(req.Status)
	if !status.Valid() {
		writeError(w, "invalid status", http.StatusBadRequest)
		return
	}

	ctx := r.Context()

	c, err := h.complaints.UpdateComplaintStatus(ctx, id, status, time.Now().UTC().UnixMilli())
	if err != nil {
		writeError(w, "server error", http.StatusInternalServerError)
		return
	}
	if c == nil {
		writeError(w, "not found", http.StatusNotFound)
		return
	}

	if c.Email != "" && h.queue != nil {
		payload := notify.StatusChangePayload{
			ComplaintID: c.ID,
			Email:       c.Email,
			Status:      string(c.Status),
			Description: c.Description,
		}
		if _, err := h.queue.Enqueue(ctx, notify.JobTypeStatusChange, payload, 100, 5); err != nil {
			logger.Error("enqueue status notification", "err", err, "complaint_id", c.ID)
		}
	}

	writeJSON(w, c, http.StatusOK)
}

// ListResolved is the public feed of resolved complaints, newest update
// first. Capped at 50.
func (h *ComplaintsHandler) ListResolved(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r.URL.Query().Get("limit"), resolvedCap)

	out, err := h.complaints.ListResolvedComplaints(r.Context(), limit)
	if err != nil {
		writeError(w, "server error", http.StatusInternalServerError)
		return
	}
	if out == nil {
		out = []models.Complaint{}
	}

	writeJSON(w, out, http.StatusOK)
}

func parseLimit(raw string, cap int) int {
	limit := cap
	if raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 && v <= cap {
			limit = v
		}
	}
	return limit
}
