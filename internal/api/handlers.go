package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/buslane/bus-scraper/internal/database"
	"github.com/buslane/bus-scraper/internal/jobs"
)

type Handlers struct {
	jobs     *jobs.Manager
	vehicles *database.VehicleStore
	logger   *slog.Logger
}

func NewHandlers(jobManager *jobs.Manager, vehicles *database.VehicleStore, logger *slog.Logger) *Handlers {
	return &Handlers{
		jobs:     jobManager,
		vehicles: vehicles,
		logger:   logger,
	}
}

// CreateJobResponse represents the job creation response
type CreateJobResponse struct {
	JobID   string `json:"job_id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// CreateJob handles new scraping job creation
func (h *Handlers) CreateJob(w http.ResponseWriter, r *http.Request) {
	var req jobs.CreateJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.SeedURL == "" && len(req.CustomURLs) == 0 {
		h.respondError(w, http.StatusBadRequest, "seed_url or custom_urls is required")
		return
	}

	job, err := h.jobs.CreateJob(r.Context(), req)
	if err != nil {
		h.logger.Error("failed to create job", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to create job")
		return
	}

	h.respondJSON(w, http.StatusCreated, CreateJobResponse{
		JobID:   job.ID.String(),
		Status:  job.Status,
		Message: "Job created successfully",
	})
}

// GetJob handles job status retrieval
func (h *Handlers) GetJob(w http.ResponseWriter, r *http.Request) {
	jobID, err := uuid.Parse(chi.URLParam(r, "jobID"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid job ID")
		return
	}

	job, err := h.jobs.GetJob(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, jobs.ErrJobNotFound) {
			h.respondError(w, http.StatusNotFound, "job not found")
			return
		}
		h.logger.Error("failed to get job", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to get job")
		return
	}

	h.respondJSON(w, http.StatusOK, job)
}

// ListJobs handles listing recent jobs
func (h *Handlers) ListJobs(w http.ResponseWriter, r *http.Request) {
	list, err := h.jobs.ListJobs(r.Context())
	if err != nil {
		h.logger.Error("failed to list jobs", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to list jobs")
		return
	}

	h.respondJSON(w, http.StatusOK, list)
}

// ListVehicles handles listing stored vehicles with limit/offset paging
func (h *Handlers) ListVehicles(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)

	vehicles, err := h.vehicles.List(r.Context(), limit, offset)
	if err != nil {
		h.logger.Error("failed to list vehicles", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to list vehicles")
		return
	}

	h.respondJSON(w, http.StatusOK, vehicles)
}

// GetVehicle handles retrieving one stored vehicle
func (h *Handlers) GetVehicle(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "vehicleID"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid vehicle ID")
		return
	}

	vehicle, err := h.vehicles.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrVehicleNotFound) {
			h.respondError(w, http.StatusNotFound, "vehicle not found")
			return
		}
		h.logger.Error("failed to get vehicle", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to get vehicle")
		return
	}

	h.respondJSON(w, http.StatusOK, vehicle)
}

// GetStats handles statistics retrieval
func (h *Handlers) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.jobs.GetStats(r.Context())
	if err != nil {
		h.logger.Error("failed to get stats", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to get stats")
		return
	}

	h.respondJSON(w, http.StatusOK, stats)
}

func queryInt(r *http.Request, key string, fallback int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

// Helper methods
func (h *Handlers) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handlers) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
