package api

import (
	"encoding/json"
	"net/http"
	"sort"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/statement-mapper/internal/database/repositories"
	"github.com/aristath/statement-mapper/internal/modules/concepts"
	"github.com/aristath/statement-mapper/internal/modules/matching"
)

// Handlers provides HTTP handlers for the resolution engine
type Handlers struct {
	coordinator *matching.Coordinator
	runs        *repositories.ResolutionRepository
	log         zerolog.Logger
}

// NewHandlers creates a new matching handlers instance
func NewHandlers(coordinator *matching.Coordinator, runs *repositories.ResolutionRepository, log zerolog.Logger) *Handlers {
	return &Handlers{
		coordinator: coordinator,
		runs:        runs,
		log:         log.With().Str("module", "matching_handlers").Logger(),
	}
}

// ResolveRequest carries a filing's concepts for resolution.
type ResolveRequest struct {
	FilingID   string               `json:"filing_id"`
	Concepts   []*concepts.Metadata `json:"concepts"`
	Components []string             `json:"components,omitempty"`
}

// ResolveResponse returns the resolution with its persisted run id.
type ResolveResponse struct {
	RunID      string                  `json:"run_id,omitempty"`
	Summary    matching.Summary        `json:"summary"`
	SimpleMap  map[string]string       `json:"simple_map"`
	Resolution *matching.ResolutionMap `json:"resolution"`
}

// HandleResolve handles POST /api/resolution/resolve
// Builds a concept index from the request and resolves components
// against it.
func (h *Handlers) HandleResolve(w http.ResponseWriter, r *http.Request) {
	var req ResolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Error().Err(err).Msg("Failed to decode resolve request")
		h.writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.FilingID == "" {
		h.writeError(w, "filing_id is required", http.StatusBadRequest)
		return
	}
	if len(req.Concepts) == 0 {
		h.writeError(w, "concepts are required", http.StatusBadRequest)
		return
	}

	idx := concepts.BuildIndex(req.Concepts)
	resolution := h.coordinator.ResolveAll(idx, req.FilingID, req.Components)

	resp := ResolveResponse{
		Summary:    resolution.Summary(),
		SimpleMap:  resolution.ToSimpleMap(),
		Resolution: resolution,
	}

	if h.runs != nil {
		runID, err := h.runs.SaveRun(resolution)
		if err != nil {
			h.log.Error().Err(err).Str("filing_id", req.FilingID).Msg("Failed to persist resolution run")
		} else {
			resp.RunID = runID
		}
	}

	h.writeJSON(w, resp, http.StatusOK)
}

// ComponentSummary is the listing view of a component definition.
type ComponentSummary struct {
	ComponentID string `json:"component_id"`
	DisplayName string `json:"display_name"`
	Category    string `json:"category"`
	IsComposite bool   `json:"is_composite"`
}

// HandleListComponents handles GET /api/components
func (h *Handlers) HandleListComponents(w http.ResponseWriter, r *http.Request) {
	components := h.coordinator.Components()

	out := make([]ComponentSummary, 0, len(components))
	for id, comp := range components {
		out = append(out, ComponentSummary{
			ComponentID: id,
			DisplayName: comp.DisplayName,
			Category:    string(comp.Category),
			IsComposite: comp.IsComposite(),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ComponentID < out[j].ComponentID
	})

	h.writeJSON(w, map[string]interface{}{
		"components": out,
		"count":      len(out),
	}, http.StatusOK)
}

// HandleGetComponent handles GET /api/components/{id}
func (h *Handlers) HandleGetComponent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	comp, ok := h.coordinator.Component(id)
	if !ok {
		h.writeError(w, "Component not found: "+id, http.StatusNotFound)
		return
	}
	h.writeJSON(w, comp, http.StatusOK)
}

// HandleValidation handles GET /api/components/validation
// Reports configuration defects across the component table.
func (h *Handlers) HandleValidation(w http.ResponseWriter, r *http.Request) {
	problems := h.coordinator.ValidationProblems()
	h.writeJSON(w, map[string]interface{}{
		"valid":    len(problems) == 0,
		"problems": problems,
	}, http.StatusOK)
}

// HandleReload handles POST /api/components/reload
func (h *Handlers) HandleReload(w http.ResponseWriter, r *http.Request) {
	if err := h.coordinator.Reload(); err != nil {
		h.log.Error().Err(err).Msg("Dictionary reload failed")
		h.writeError(w, "Reload failed", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, map[string]string{"status": "reloaded"}, http.StatusOK)
}

// HandleListRuns handles GET /api/resolution/runs
func (h *Handlers) HandleListRuns(w http.ResponseWriter, r *http.Request) {
	if h.runs == nil {
		h.writeError(w, "Run persistence is disabled", http.StatusNotFound)
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, _ = strconv.Atoi(v)
	}

	runs, err := h.runs.ListRuns(r.URL.Query().Get("filing_id"), limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list resolution runs")
		h.writeError(w, "Failed to list runs", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, map[string]interface{}{
		"runs":  runs,
		"count": len(runs),
	}, http.StatusOK)
}

// HandleGetRun handles GET /api/resolution/runs/{id}
func (h *Handlers) HandleGetRun(w http.ResponseWriter, r *http.Request) {
	if h.runs == nil {
		h.writeError(w, "Run persistence is disabled", http.StatusNotFound)
		return
	}

	id := chi.URLParam(r, "id")
	run, resolution, err := h.runs.GetRun(id)
	if err != nil {
		h.log.Error().Err(err).Str("run_id", id).Msg("Failed to load resolution run")
		h.writeError(w, "Failed to load run", http.StatusInternalServerError)
		return
	}
	if run == nil {
		h.writeError(w, "Run not found: "+id, http.StatusNotFound)
		return
	}

	h.writeJSON(w, map[string]interface{}{
		"run":        run,
		"resolution": resolution,
	}, http.StatusOK)
}

// HandleDiagnostics handles GET /api/resolution/diagnostics
// Returns the per-component audit trail of the most recent matching.
func (h *Handlers) HandleDiagnostics(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, h.coordinator.Diagnostics(), http.StatusOK)
}

func (h *Handlers) writeJSON(w http.ResponseWriter, payload interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode response")
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, message string, status int) {
	h.writeJSON(w, map[string]string{"error": message}, status)
}
