package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/sells-group/company-profiler/internal/apperr"
	"github.com/sells-group/company-profiler/internal/profile"
	"github.com/sells-group/company-profiler/internal/store"
)

type handlers struct {
	svc ProfileService
}

// recordResponse is the wire shape of a stored profile. Cached is present
// only on analyze and update responses.
type recordResponse struct {
	ID            string                 `json:"id"`
	URL           string                 `json:"url"`
	NormalizedURL string                 `json:"normalized_url"`
	Profile       profile.CompanyProfile `json:"profile"`
	Cached        *bool                  `json:"cached,omitempty"`
	CreatedAt     string                 `json:"created_at"`
	UpdatedAt     string                 `json:"updated_at"`
}

func toRecordResponse(rec *store.Record, cached *bool) recordResponse {
	return recordResponse{
		ID:            rec.ID,
		URL:           rec.URL,
		NormalizedURL: rec.NormalizedURL,
		Profile:       rec.Profile,
		Cached:        cached,
		CreatedAt:     rec.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:     rec.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func (h *handlers) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handlers) analyze(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		writeError(w, apperr.InvalidInput("Body must include a non-empty string 'url' field."))
		return
	}

	result, err := h.svc.Analyze(r.Context(), req.URL)
	if err != nil {
		writeError(w, err)
		return
	}

	cached := result.Cached
	writeJSON(w, http.StatusOK, toRecordResponse(result.Record, &cached))
}

func (h *handlers) listProfiles(w http.ResponseWriter, r *http.Request) {
	records, err := h.svc.List(r.Context(), listLimit)
	if err != nil {
		writeError(w, err)
		return
	}

	items := make([]recordResponse, 0, len(records))
	for i := range records {
		items = append(items, toRecordResponse(&records[i], nil))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *handlers) getProfile(w http.ResponseWriter, r *http.Request) {
	rec, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRecordResponse(rec, nil))
}

func (h *handlers) updateProfile(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL     string `json:"url"`
		Profile any    `json:"profile"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.InvalidInput("Request body could not be parsed."))
		return
	}
	if !isJSONObjectish(req.Profile) {
		writeError(w, apperr.InvalidInput("Body must include a 'profile' object."))
		return
	}

	rec, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), req.URL, req.Profile)
	if err != nil {
		writeError(w, err)
		return
	}

	// An edited record is by definition already stored.
	cached := true
	writeJSON(w, http.StatusOK, toRecordResponse(rec, &cached))
}

// isJSONObjectish accepts decoded objects and arrays. Scalars and null are
// rejected up front; the normalizer downgrades an array to a no-op on the
// stored payload.
func isJSONObjectish(v any) bool {
	switch v.(type) {
	case map[string]any, []any:
		return true
	default:
		return false
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zap.L().Error("write response", zap.Error(err))
	}
}

// writeError is the single boundary mapping domain errors to HTTP. Unknown
// errors become a generic 500; detail on those stays server-side.
func writeError(w http.ResponseWriter, err error) {
	appErr := apperr.FromError(err)
	if appErr.Status >= http.StatusInternalServerError {
		zap.L().Error("request failed", zap.Error(err))
	}

	body := map[string]string{"error": appErr.Message}
	if appErr.Detail != "" {
		body["detail"] = appErr.Detail
	}
	writeJSON(w, appErr.Status, body)
}
