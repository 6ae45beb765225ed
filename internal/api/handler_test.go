package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap/zaptest"

	"github.com/grcstudio/transport-planner/internal/planner"
	"github.com/grcstudio/transport-planner/internal/storage"
)

type controllableClock struct {
	mu  sync.RWMutex
	now time.Time
}

func newControllableClock(initial time.Time) *controllableClock {
	return &controllableClock{now: initial}
}

func (c *controllableClock) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.now
}

func (c *controllableClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func setupTestRouter(t *testing.T) (http.Handler, *controllableClock) {
	t.Helper()

	store := storage.NewMemoryStorage()
	p := planner.New()
	clock := newControllableClock(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))

	handler := NewHandler(p, store, WithClock(clock.Now))
	logger := zaptest.NewLogger(t)
	router := NewRouter(handler, logger, WithLogging(false))

	return router, clock
}

func TestRequestIDHelpers(t *testing.T) {
	ctx := contextWithRequestID(context.Background(), "abc")
	if got := requestIDFromContext(ctx); got != "abc" {
		t.Fatalf("expected abc, got %s", got)
	}
	resp := httptest.NewRecorder()
	writeInternalError(resp, assertError("boom"))
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 status, got %d", resp.Code)
	}
}

type assertError string

func (a assertError) Error() string { return string(a) }

func TestHealthEndpoint(t *testing.T) {
	router, clock := setupTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var body struct {
		Status    string    `json:"status"`
		Timestamp time.Time `json:"timestamp"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if body.Status != "ok" {
		t.Fatalf("expected status ok, got %s", body.Status)
	}
	if !body.Timestamp.Equal(clock.Now()) {
		t.Fatalf("expected timestamp %s, got %s", clock.Now(), body.Timestamp)
	}
}

func TestGetLimitsReturnsDefaults(t *testing.T) {
	router, clock := setupTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/limits", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var body struct {
		Limits    planner.Limits `json:"limits"`
		UpdatedAt time.Time      `json:"updatedAt"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if body.Limits != planner.DefaultLimits() {
		t.Fatalf("expected default limits, got %+v", body.Limits)
	}
	if !body.UpdatedAt.Equal(clock.Now()) {
		t.Fatalf("expected updatedAt %s, got %s", clock.Now(), body.UpdatedAt)
	}
}

func TestPutLimitsUpdatesStorage(t *testing.T) {
	router, clock := setupTestRouter(t)

	clock.Advance(time.Hour)

	payload := map[string]any{
		"limits": map[string]any{
			"bedWidth":         3000,
			"bedWeightLimit":   2000,
			"truckMaxLength":   12000,
			"truckWeightLimit": 18000,
		},
	}
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("failed to marshal payload: %v", err)
	}

	req := httptest.NewRequest(http.MethodPut, "/api/limits", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var body struct {
		Limits    planner.Limits `json:"limits"`
		UpdatedAt time.Time      `json:"updatedAt"`
		Message   string         `json:"message"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if body.Message == "" {
		t.Fatalf("expected success message, got empty string")
	}
	if body.Limits.BedWidth != 3000 || body.Limits.TruckWeightLimit != 18000 {
		t.Fatalf("unexpected limits: %+v", body.Limits)
	}
	if !body.UpdatedAt.Equal(clock.Now()) {
		t.Fatalf("expected updatedAt %s, got %s", clock.Now(), body.UpdatedAt)
	}
}

func TestPutLimitsValidatesInput(t *testing.T) {
	router, _ := setupTestRouter(t)

	payload := map[string]any{
		"limits": map[string]any{"bedWidth": -1},
	}
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("failed to marshal payload: %v", err)
	}

	req := httptest.NewRequest(http.MethodPut, "/api/limits", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func planPayload(t *testing.T, panels []map[string]any) []byte {
	t.Helper()

	data, err := json.Marshal(map[string]any{"panels": panels})
	if err != nil {
		t.Fatalf("failed to marshal payload: %v", err)
	}
	return data
}

func TestPlanEndpointSuccess(t *testing.T) {
	router, _ := setupTestRouter(t)

	data := planPayload(t, []map[string]any{
		{"type": "W-01", "width": 3000, "height": 2000, "depth": 1000, "weight": 800},
		{"type": "W-02", "width": 3000, "height": 2000, "depth": 1000, "weight": 800},
		{"type": "W-03", "width": 3000, "height": 2000, "depth": 1000, "weight": 800},
	})

	req := httptest.NewRequest(http.MethodPost, "/api/plan", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var body struct {
		Panels      int                    `json:"panels"`
		Beds        []planner.BedSummary   `json:"beds"`
		Trucks      []planner.TruckSummary `json:"trucks"`
		TotalBeds   int                    `json:"totalBeds"`
		TotalTrucks int                    `json:"totalTrucks"`
		TotalWeight float64                `json:"totalWeight"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	// Two panels share the first bed (depth 2000 <= 2400), the third opens
	// a second bed; both beds ride one truck.
	if body.Panels != 3 {
		t.Fatalf("expected 3 panels, got %d", body.Panels)
	}
	if body.TotalBeds != 2 {
		t.Fatalf("expected 2 beds, got %d", body.TotalBeds)
	}
	if body.TotalTrucks != 1 {
		t.Fatalf("expected 1 truck, got %d", body.TotalTrucks)
	}
	if body.TotalWeight != 2400 {
		t.Fatalf("expected total weight 2400, got %v", body.TotalWeight)
	}
	if len(body.Beds) != 2 || body.Beds[0].PanelCount != 2 {
		t.Fatalf("unexpected beds: %+v", body.Beds)
	}
}

func TestPlanEndpointOversizePanel(t *testing.T) {
	router, _ := setupTestRouter(t)

	data := planPayload(t, []map[string]any{
		{"type": "XL", "width": 6000, "height": 3000, "depth": 3100, "weight": 4000},
	})

	req := httptest.NewRequest(http.MethodPost, "/api/plan", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected oversize panel to be accepted, got %d", rec.Code)
	}

	var body struct {
		TotalBeds      int `json:"totalBeds"`
		OversizePanels int `json:"oversizePanels"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.TotalBeds != 1 {
		t.Fatalf("expected 1 bed, got %d", body.TotalBeds)
	}
	if body.OversizePanels != 1 {
		t.Fatalf("expected oversize panel to be flagged, got %d", body.OversizePanels)
	}
}

func TestPlanEndpointRejectsEmptyPanels(t *testing.T) {
	router, _ := setupTestRouter(t)

	data := planPayload(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/plan", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for empty panels, got %d", rec.Code)
	}
}

func TestPlanEndpointRejectsInvalidPanels(t *testing.T) {
	router, _ := setupTestRouter(t)

	data := planPayload(t, []map[string]any{
		{"type": "bad", "width": 0, "height": 2000, "depth": 1000, "weight": 800},
	})

	req := httptest.NewRequest(http.MethodPost, "/api/plan", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for invalid panel, got %d", rec.Code)
	}

	var body struct {
		Suggestion string `json:"suggestion"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.Suggestion == "" {
		t.Fatalf("expected suggestion to be populated")
	}
}

func TestPlanExportEndpoint(t *testing.T) {
	router, _ := setupTestRouter(t)

	data := planPayload(t, []map[string]any{
		{"type": "W-01", "width": 3000, "height": 2000, "depth": 1000, "weight": 800},
		{"type": "W-02", "width": 3000, "height": 2000, "depth": 1000, "weight": 800},
	})

	req := httptest.NewRequest(http.MethodPost, "/api/plan/export", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != xlsxContentType {
		t.Fatalf("unexpected content type %q", got)
	}
	if got := rec.Header().Get("Content-Disposition"); got == "" {
		t.Fatalf("expected Content-Disposition header")
	}

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	if err != nil {
		t.Fatalf("response body is not a valid workbook: %v", err)
	}
	defer func() {
		_ = f.Close()
	}()
	if got := f.GetSheetList(); len(got) != 3 {
		t.Fatalf("expected 3 sheets in exported workbook, got %v", got)
	}
}

func TestCorsPreflight(t *testing.T) {
	router, _ := setupTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/plan", nil)
	req.Header.Set("Origin", "https://example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Fatalf("expected Access-Control-Allow-Origin header to be set")
	}
}

func TestRequestIDPropagation(t *testing.T) {
	router, _ := setupTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-ID", "test-request-id")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-ID"); got != "test-request-id" {
		t.Fatalf("expected X-Request-ID header to be echoed, got %s", got)
	}
}
