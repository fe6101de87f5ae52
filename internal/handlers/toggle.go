package handlers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/HammerMeetNail/combohub/internal/metrics"
	"github.com/HammerMeetNail/combohub/internal/models"
	"github.com/HammerMeetNail/combohub/internal/services"
	"github.com/HammerMeetNail/combohub/internal/views"
)

// ToggleHandler serves the like, favorite and comment like submissions and
// the author's delete. A removal whose target is already gone is not an
// error: the response renders whatever the next snapshot says.
type ToggleHandler struct {
	comboService   services.ComboServiceInterface
	likeService    services.LikeServiceInterface
	commentService services.CommentServiceInterface
	renderer       *Renderer
	metrics        *metrics.Metrics
}

func NewToggleHandler(
	comboService services.ComboServiceInterface,
	likeService services.LikeServiceInterface,
	commentService services.CommentServiceInterface,
	renderer *Renderer,
	m *metrics.Metrics,
) *ToggleHandler {
	return &ToggleHandler{
		comboService:   comboService,
		likeService:    likeService,
		commentService: commentService,
		renderer:       renderer,
		metrics:        m,
	}
}

func (h *ToggleHandler) AddLike(w http.ResponseWriter, r *http.Request) {
	h.addToCombo(w, r, views.KindLike, func(viewerID, comboID uuid.UUID) error {
		_, err := h.likeService.AddLike(r.Context(), viewerID, comboID)
		return err
	})
}

func (h *ToggleHandler) RemoveLike(w http.ResponseWriter, r *http.Request) {
	h.removeFromCombo(w, r, views.KindLike, "likeID", services.ErrLikeNotFound, func(viewerID, comboID, id uuid.UUID) error {
		return h.likeService.RemoveLike(r.Context(), viewerID, comboID, id)
	})
}

func (h *ToggleHandler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	h.addToCombo(w, r, views.KindFavorite, func(viewerID, comboID uuid.UUID) error {
		_, err := h.likeService.AddFavorite(r.Context(), viewerID, comboID)
		return err
	})
}

func (h *ToggleHandler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	h.removeFromCombo(w, r, views.KindFavorite, "favoriteID", services.ErrFavoriteNotFound, func(viewerID, comboID, id uuid.UUID) error {
		return h.likeService.RemoveFavorite(r.Context(), viewerID, comboID, id)
	})
}

func (h *ToggleHandler) addToCombo(w http.ResponseWriter, r *http.Request, kind views.ToggleKind, add func(viewerID, comboID uuid.UUID) error) {
	viewer := GetViewerFromContext(r.Context())
	if viewer == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	comboID, err := parsePathUUID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid combo ID")
		return
	}

	err = add(viewer.ID, comboID)
	if errors.Is(err, services.ErrComboNotFound) {
		h.renderer.NotFound(w, r)
		return
	}
	if err != nil {
		h.renderer.InternalError(w, r, "Error adding "+string(kind), err)
		return
	}
	h.metrics.Toggle(string(kind), string(views.ActionAdd))
	h.respondCombo(w, r, comboID, kind)
}

func (h *ToggleHandler) removeFromCombo(w http.ResponseWriter, r *http.Request, kind views.ToggleKind, idParam string, stale error, remove func(viewerID, comboID, id uuid.UUID) error) {
	viewer := GetViewerFromContext(r.Context())
	if viewer == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	comboID, err := parsePathUUID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid combo ID")
		return
	}
	recordID, err := parsePathUUID(r, idParam)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid "+string(kind)+" ID")
		return
	}

	err = remove(viewer.ID, comboID, recordID)
	if errors.Is(err, stale) {
		h.metrics.StaleRemoval(string(kind))
	} else if err != nil {
		h.renderer.InternalError(w, r, "Error removing "+string(kind), err)
		return
	} else {
		h.metrics.Toggle(string(kind), string(views.ActionRemove))
	}
	h.respondCombo(w, r, comboID, kind)
}

// respondCombo answers a settled submission: the authoritative control for
// fragment callers, a redirect back to the page otherwise.
func (h *ToggleHandler) respondCombo(w http.ResponseWriter, r *http.Request, comboID uuid.UUID, kind views.ToggleKind) {
	combo, err := h.comboService.GetByID(r.Context(), comboID)
	if errors.Is(err, services.ErrComboNotFound) {
		h.renderer.NotFound(w, r)
		return
	}
	if err != nil {
		h.renderer.InternalError(w, r, "Error loading combo", err)
		return
	}

	if !isFragmentRequest(r) {
		http.Redirect(w, r, views.ComboPath(combo.Slug), http.StatusSeeOther)
		return
	}
	viewer := GetViewerFromContext(r.Context())
	membership := models.ResolveMembership(combo, viewer.ViewerID())
	h.renderer.Fragment(w, http.StatusOK, "toggle", views.BuildToggle(combo, kind, membership))
}

func (h *ToggleHandler) LikeComment(w http.ResponseWriter, r *http.Request) {
	viewer := GetViewerFromContext(r.Context())
	if viewer == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	commentID, err := parsePathUUID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid comment ID")
		return
	}

	_, err = h.commentService.LikeComment(r.Context(), viewer.ID, commentID)
	if errors.Is(err, services.ErrCommentNotFound) {
		h.renderer.NotFound(w, r)
		return
	}
	if err != nil {
		h.renderer.InternalError(w, r, "Error liking comment", err)
		return
	}
	h.metrics.Toggle(string(views.KindCommentLike), string(views.ActionAdd))
	h.respondComment(w, r, commentID)
}

func (h *ToggleHandler) UnlikeComment(w http.ResponseWriter, r *http.Request) {
	viewer := GetViewerFromContext(r.Context())
	if viewer == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	commentID, err := parsePathUUID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid comment ID")
		return
	}
	likeID, err := parsePathUUID(r, "likeID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid like ID")
		return
	}

	err = h.commentService.UnlikeComment(r.Context(), viewer.ID, commentID, likeID)
	if errors.Is(err, services.ErrCommentLikeNotFound) {
		h.metrics.StaleRemoval(string(views.KindCommentLike))
	} else if err != nil {
		h.renderer.InternalError(w, r, "Error unliking comment", err)
		return
	} else {
		h.metrics.Toggle(string(views.KindCommentLike), string(views.ActionRemove))
	}
	h.respondComment(w, r, commentID)
}

func (h *ToggleHandler) respondComment(w http.ResponseWriter, r *http.Request, commentID uuid.UUID) {
	comboID, err := h.commentService.ComboIDForComment(r.Context(), commentID)
	if errors.Is(err, services.ErrCommentNotFound) {
		h.renderer.NotFound(w, r)
		return
	}
	if err != nil {
		h.renderer.InternalError(w, r, "Error loading comment", err)
		return
	}
	combo, err := h.comboService.GetByID(r.Context(), comboID)
	if errors.Is(err, services.ErrComboNotFound) {
		h.renderer.NotFound(w, r)
		return
	}
	if err != nil {
		h.renderer.InternalError(w, r, "Error loading combo", err)
		return
	}

	if !isFragmentRequest(r) {
		http.Redirect(w, r, views.ComboPath(combo.Slug)+"#comment-"+commentID.String(), http.StatusSeeOther)
		return
	}
	control, found := controlFor(combo, views.KindCommentLike, GetViewerFromContext(r.Context()), commentID.String())
	if !found {
		h.renderer.NotFound(w, r)
		return
	}
	h.renderer.Fragment(w, http.StatusOK, "toggle", control)
}

// DeleteCombo lets the author remove their combo.
func (h *ToggleHandler) DeleteCombo(w http.ResponseWriter, r *http.Request) {
	viewer := GetViewerFromContext(r.Context())
	if viewer == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	comboID, err := parsePathUUID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid combo ID")
		return
	}

	err = h.comboService.Delete(r.Context(), viewer.ID, comboID)
	if errors.Is(err, services.ErrNotComboAuthor) {
		writeError(w, http.StatusForbidden, "Only the author can delete this combo")
		return
	}
	if err != nil && !errors.Is(err, services.ErrComboNotFound) {
		h.renderer.InternalError(w, r, "Error deleting combo", err)
		return
	}

	target := "/combos?mine=1"
	if isFragmentRequest(r) {
		w.Header().Set("HX-Redirect", target)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
