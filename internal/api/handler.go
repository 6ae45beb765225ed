package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/grcstudio/transport-planner/internal/metrics"
	"github.com/grcstudio/transport-planner/internal/planner"
	"github.com/grcstudio/transport-planner/internal/report"
	"github.com/grcstudio/transport-planner/internal/storage"
)

type contextKey string

const requestIDContextKey contextKey = "requestID"

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Handler wires planner and storage dependencies into HTTP handlers.
type Handler struct {
	planner planner.Planner
	storage storage.Storage
	metrics *metrics.Recorder

	clock func() time.Time

	mu              sync.RWMutex
	limitsUpdatedAt time.Time
}

// HandlerOption configures Handler behaviour.
type HandlerOption func(*Handler)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) HandlerOption {
	return func(h *Handler) {
		h.clock = clock
	}
}

// WithMetrics attaches a metrics recorder to plan handling.
func WithMetrics(rec *metrics.Recorder) HandlerOption {
	return func(h *Handler) {
		h.metrics = rec
	}
}

// NewHandler constructs a Handler with the provided dependencies.
func NewHandler(p planner.Planner, store storage.Storage, opts ...HandlerOption) *Handler {
	h := &Handler{
		planner: p,
		storage: store,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	h.limitsUpdatedAt = h.clock()
	return h
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = r
	resp := healthResponse{
		Status:    "ok",
		Timestamp: h.clock(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGetLimits(w http.ResponseWriter, r *http.Request) {
	_ = r
	limits, err := h.storage.GetLimits()
	if err != nil {
		writeInternalError(w, err)
		return
	}

	resp := limitsResponse{
		Limits:    limits,
		UpdatedAt: h.currentLimitsUpdatedAt(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handlePutLimits(w http.ResponseWriter, r *http.Request) {
	var req limitsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}

	if err := h.storage.SetLimits(req.Limits); err != nil {
		if errors.Is(err, storage.ErrInvalidLimits) {
			writeError(w, http.StatusBadRequest, "Invalid limits", err.Error())
			return
		}
		writeInternalError(w, err)
		return
	}

	h.markLimitsUpdated()

	limits, err := h.storage.GetLimits()
	if err != nil {
		writeInternalError(w, err)
		return
	}

	resp := limitsResponse{
		Limits:    limits,
		UpdatedAt: h.currentLimitsUpdatedAt(),
		Message:   "Packing limits updated successfully",
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handlePlan(w http.ResponseWriter, r *http.Request) {
	plan, panels, elapsed, ok := h.computePlan(w, r)
	if !ok {
		return
	}

	resp := planResponse{
		Panels:            len(panels),
		Beds:              plan.Beds,
		Trucks:            plan.Trucks,
		TotalBeds:         plan.TotalBeds,
		TotalTrucks:       plan.TotalTrucks,
		TotalWeight:       plan.TotalWeight,
		OversizePanels:    plan.OversizePanels,
		CalculationTimeMs: elapsed.Milliseconds(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handlePlanExport(w http.ResponseWriter, r *http.Request) {
	plan, _, _, ok := h.computePlan(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := report.WriteWorkbook(&buf, plan); err != nil {
		writeInternalError(w, err)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="transport_plan.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// computePlan decodes and validates a plan request, runs the packer against
// the stored limits, and records metrics. A false return means the response
// has already been written.
func (h *Handler) computePlan(w http.ResponseWriter, r *http.Request) (planner.Plan, []planner.Panel, time.Duration, bool) {
	var req planRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.metrics.ObserveRejected()
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return planner.Plan{}, nil, 0, false
	}

	if len(req.Panels) == 0 {
		h.metrics.ObserveRejected()
		writeError(w, http.StatusBadRequest, "Invalid request", "panels must contain at least one entry")
		return planner.Plan{}, nil, 0, false
	}

	if details, ok := validatePanels(req.Panels); !ok {
		h.metrics.ObserveRejected()
		writeError(w, http.StatusBadRequest, "Invalid panels", details,
			"Dimensions must be positive millimetres and weights non-negative kilograms")
		return planner.Plan{}, nil, 0, false
	}

	limits, err := h.storage.GetLimits()
	if err != nil {
		writeInternalError(w, err)
		return planner.Plan{}, nil, 0, false
	}

	start := time.Now()
	plan := h.planner.BuildPlan(req.Panels, limits)
	elapsed := time.Since(start)

	h.metrics.ObservePlan(len(req.Panels), plan, elapsed)

	return plan, req.Panels, elapsed, true
}

func validatePanels(panels []planner.Panel) (string, bool) {
	for i, p := range panels {
		if p.Width <= 0 || p.Height <= 0 || p.Depth <= 0 {
			return fmt.Sprintf("panel %d: dimensions must be positive", i), false
		}
		if p.Weight < 0 {
			return fmt.Sprintf("panel %d: weight must be non-negative", i), false
		}
	}
	return "", true
}

func (h *Handler) currentLimitsUpdatedAt() time.Time {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.limitsUpdatedAt
}

func (h *Handler) markLimitsUpdated() {
	h.mu.Lock()
	h.limitsUpdatedAt = h.clock()
	h.mu.Unlock()
}

func requestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDContextKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

type limitsRequest struct {
	Limits planner.Limits `json:"limits"`
}

type planRequest struct {
	Panels []planner.Panel `json:"panels"`
}

type planResponse struct {
	Panels            int                    `json:"panels"`
	Beds              []planner.BedSummary   `json:"beds"`
	Trucks            []planner.TruckSummary `json:"trucks"`
	TotalBeds         int                    `json:"totalBeds"`
	TotalTrucks       int                    `json:"totalTrucks"`
	TotalWeight       float64                `json:"totalWeight"`
	OversizePanels    int                    `json:"oversizePanels"`
	CalculationTimeMs int64                  `json:"calculationTimeMs"`
}

type limitsResponse struct {
	Limits    planner.Limits `json:"limits"`
	UpdatedAt time.Time      `json:"updatedAt"`
	Message   string         `json:"message,omitempty"`
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type errorResponse struct {
	Error      string `json:"error"`
	Details    string `json:"details,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message, details string, suggestion ...string) {
	resp := errorResponse{
		Error:   message,
		Details: details,
	}
	if len(suggestion) > 0 {
		resp.Suggestion = suggestion[0]
	}
	writeJSON(w, status, resp)
}

func writeInternalError(w http.ResponseWriter, err error) {
	writeError(w, http.StatusInternalServerError, "Internal error", err.Error())
}
