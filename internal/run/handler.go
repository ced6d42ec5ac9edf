package run

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/runsascoded/shapes/internal/auth"
	"github.com/runsascoded/shapes/internal/engine"
	"github.com/runsascoded/shapes/internal/shape"
)

// shapeKind maps the wire-level kind string onto shape.Kind, accepting the
// same spelling wire.Shape.Kind produces so a seek response's shapes can
// round-trip back into a createRunRequest.
func shapeKind(s string) shape.Kind {
	return shape.Kind(s)
}

// Handler is the HTTP surface over Service, following the same
// writeJSON-plus-error-mapping idiom as internal/auth.Handler.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type shapeSpecRequest struct {
	Kind      string         `json:"kind"`
	Cx        float64        `json:"cx,omitempty"`
	Cy        float64        `json:"cy,omitempty"`
	R         float64        `json:"r,omitempty"`
	Rx        float64        `json:"rx,omitempty"`
	Ry        float64        `json:"ry,omitempty"`
	T         float64        `json:"t,omitempty"`
	Vertices  []engine.Point `json:"vertices,omitempty"`
	Trainable []bool         `json:"trainable"`
}

func (r shapeSpecRequest) toInputSpec() engine.InputSpec {
	return engine.InputSpec{
		Kind:      shapeKind(r.Kind),
		Cx:        r.Cx, Cy: r.Cy, R: r.R,
		Rx: r.Rx, Ry: r.Ry, T: r.T,
		Vertices:  r.Vertices,
		Trainable: r.Trainable,
	}
}

type createRunRequest struct {
	Name      string              `json:"name"`
	Shapes    []shapeSpecRequest  `json:"shapes"`
	Targets   map[string]float64 `json:"targets"`
	Optimizer string              `json:"optimizer"`
	MaxSteps  int                 `json:"maxSteps"`
}

// Create is spec.md §6's make_model exposed as POST /runs.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	var req createRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if len(req.Shapes) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "at least one shape is required"})
		return
	}

	specs := make([]engine.InputSpec, len(req.Shapes))
	for i, s := range req.Shapes {
		specs[i] = s.toInputSpec()
	}

	row, err := h.service.Create(r.Context(), CreateParams{
		OwnerID:   userID,
		Name:      req.Name,
		Specs:     specs,
		Targets:   req.Targets,
		Optimizer: Optimizer(req.Optimizer),
		MaxSteps:  req.MaxSteps,
	})
	if err != nil {
		slog.Error("create run", "error", err)
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusCreated, row)
}

type trainRequest struct {
	Optimizer string `json:"optimizer"`
	MaxSteps  int    `json:"maxSteps"`
}

// Train is spec.md §6's train/train_adam/train_robust exposed as
// POST /runs/{id}/train.
func (h *Handler) Train(w http.ResponseWriter, r *http.Request) {
	runID := mux.Vars(r)["id"]

	var req trainRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	maxSteps := req.MaxSteps
	if maxSteps <= 0 {
		maxSteps = 1000
	}

	if err := h.service.Train(r.Context(), runID, Optimizer(req.Optimizer), maxSteps); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "run not found"})
		case errors.Is(err, ErrRunning):
			writeJSON(w, http.StatusConflict, map[string]string{"error": "training already in progress"})
		default:
			slog.Error("start training", "run", runID, "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		}
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "training"})
}

// GetStep is spec.md §6's tiered_seek exposed as GET /runs/{id}/steps/{k}.
func (h *Handler) GetStep(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	runID := vars["id"]

	target, err := strconv.Atoi(vars["k"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "step index must be an integer"})
		return
	}

	step, err := h.service.Seek(runID, target)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "run not found"})
			return
		}
		slog.Error("seek run step", "run", runID, "step", target, "error", err)
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, step)
}

// Get returns one run's persisted row, GET /runs/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	runID := mux.Vars(r)["id"]

	row, err := h.service.Get(r.Context(), runID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "run not found"})
			return
		}
		slog.Error("get run", "run", runID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	writeJSON(w, http.StatusOK, row)
}

// List returns the authenticated user's runs, GET /runs.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	rows, err := h.service.List(r.Context(), userID)
	if err != nil {
		slog.Error("list runs", "owner", userID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	writeJSON(w, http.StatusOK, rows)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
