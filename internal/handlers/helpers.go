package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/HammerMeetNail/combohub/internal/models"
)

type contextKey string

const viewerContextKey contextKey = "viewer"

func SetViewerInContext(ctx context.Context, viewer *models.Viewer) context.Context {
	return context.WithValue(ctx, viewerContextKey, viewer)
}

// GetViewerFromContext returns nil for anonymous requests.
func GetViewerFromContext(ctx context.Context) *models.Viewer {
	viewer, _ := ctx.Value(viewerContextKey).(*models.Viewer)
	return viewer
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// isFragmentRequest reports whether the caller swaps the response into the
// page instead of navigating.
func isFragmentRequest(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("HX-Request"), "true")
}

func parsePathUUID(r *http.Request, name string) (uuid.UUID, error) {
	return uuid.Parse(r.PathValue(name))
}
