package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/HammerMeetNail/combohub/internal/models"
	"github.com/HammerMeetNail/combohub/internal/services"
	"github.com/HammerMeetNail/combohub/internal/views"
)

type ComboPageHandler struct {
	comboService   services.ComboServiceInterface
	commentService services.CommentServiceInterface
	renderer       *Renderer
}

func NewComboPageHandler(comboService services.ComboServiceInterface, commentService services.CommentServiceInterface, renderer *Renderer) *ComboPageHandler {
	return &ComboPageHandler{
		comboService:   comboService,
		commentService: commentService,
		renderer:       renderer,
	}
}

// Show renders the detail page with settled controls.
func (h *ComboPageHandler) Show(w http.ResponseWriter, r *http.Request) {
	combo, err := h.comboService.GetBySlug(r.Context(), r.PathValue("slug"))
	if errors.Is(err, services.ErrComboNotFound) {
		h.renderer.NotFound(w, r)
		return
	}
	if err != nil {
		h.renderer.InternalError(w, r, "Error loading combo", err)
		return
	}

	detail := views.BuildComboDetail(combo, GetViewerFromContext(r.Context()))
	h.renderer.Page(w, r, http.StatusOK, "combo.html", combo.Title, detail)
}

type ComboListPage struct {
	Combos   []models.ComboSummary
	Filters  ComboFilters
	Page     int
	PrevPage int
	NextPage int
}

type ComboFilters struct {
	Specialty  string
	Race       string
	Difficulty string
	Search     string
	Sort       models.ComboSort
	Mine       bool
	Favorites  bool
	// Liked keeps combos holding a comment the viewer liked.
	Liked bool
}

// PageURL links to page n of the list with the same filters applied.
func (f ComboFilters) PageURL(n int) string {
	v := url.Values{}
	v.Set("page", strconv.Itoa(n))
	v.Set("sort", string(f.Sort))
	for key, val := range map[string]string{"specialty": f.Specialty, "race": f.Race, "difficulty": f.Difficulty} {
		if val != "" {
			v.Set(key, val)
		}
	}
	if f.Search != "" {
		v.Set("q", f.Search)
	}
	for key, on := range map[string]bool{"mine": f.Mine, "favorites": f.Favorites, "liked": f.Liked} {
		if on {
			v.Set(key, "1")
		}
	}
	return "/combos?" + v.Encode()
}

func (h *ComboPageHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters := ComboFilters{
		Specialty:  strings.TrimSpace(q.Get("specialty")),
		Race:       strings.TrimSpace(q.Get("race")),
		Difficulty: strings.TrimSpace(q.Get("difficulty")),
		Search:     strings.TrimSpace(q.Get("q")),
		Sort:       models.ComboSort(q.Get("sort")),
		Mine:       q.Get("mine") == "1",
		Favorites:  q.Get("favorites") == "1",
		Liked:      q.Get("liked") == "1",
	}
	if !models.IsValidComboSort(filters.Sort) {
		filters.Sort = models.ComboSortNewest
	}

	page := 1
	if v, err := strconv.Atoi(q.Get("page")); err == nil && v > 1 {
		page = v
	}

	params := services.ComboListParams{
		Specialty:  filters.Specialty,
		Race:       filters.Race,
		Difficulty: filters.Difficulty,
		Search:     filters.Search,
		Sort:       filters.Sort,
		Limit:      services.DefaultComboPageSize + 1,
		Offset:     (page - 1) * services.DefaultComboPageSize,
	}
	if filters.Mine || filters.Favorites || filters.Liked {
		viewer := GetViewerFromContext(r.Context())
		if viewer.ViewerID() == nil {
			http.Redirect(w, r, "/combos", http.StatusSeeOther)
			return
		}
		if filters.Mine {
			params.AuthorID = viewer.ViewerID()
		}
		if filters.Favorites {
			params.ComboIDs = viewer.FavoriteComboIDs()
		}
		if filters.Liked {
			params.CommentIDs = viewer.LikedCommentIDs()
		}
	}

	combos, err := h.comboService.List(r.Context(), params)
	if err != nil {
		h.renderer.InternalError(w, r, "Error listing combos", err)
		return
	}

	data := ComboListPage{Filters: filters, Page: page}
	if len(combos) > services.DefaultComboPageSize {
		combos = combos[:services.DefaultComboPageSize]
		data.NextPage = page + 1
	}
	if page > 1 {
		data.PrevPage = page - 1
	}
	data.Combos = combos
	h.renderer.Page(w, r, http.StatusOK, "combos.html", "Combos", data)
}

// Control renders a single settled control fragment from a fresh snapshot,
// with its in-flight variant alongside.
func (h *ComboPageHandler) Control(w http.ResponseWriter, r *http.Request) {
	comboID, err := parsePathUUID(r, "id")
	if err != nil {
		http.Error(w, "Invalid combo ID", http.StatusBadRequest)
		return
	}

	combo, err := h.comboService.GetByID(r.Context(), comboID)
	if errors.Is(err, services.ErrComboNotFound) {
		http.Error(w, "Combo not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.renderer.InternalError(w, r, "Error loading combo", err)
		return
	}
	viewer := GetViewerFromContext(r.Context())

	if r.PathValue("kind") == "delete" {
		if viewer == nil || !combo.IsAuthor(viewer.ID) {
			http.Error(w, "Not found", http.StatusNotFound)
			return
		}
		del := views.PresentDelete(false)
		h.renderer.Fragment(w, http.StatusOK, "delete", deleteFragment(views.ComboDetail{Combo: combo, Delete: &del}))
		return
	}

	kind, ok := views.ParseToggleKind(r.PathValue("kind"))
	if !ok {
		http.Error(w, "Unknown control", http.StatusNotFound)
		return
	}

	control, found := controlFor(combo, kind, viewer, r.URL.Query().Get("comment"))
	if !found {
		http.Error(w, "Comment not found", http.StatusNotFound)
		return
	}
	h.renderer.Fragment(w, http.StatusOK, "toggle", control)
}

type DeleteFragment struct {
	Control views.DeleteControl
	// InFlight replaces Control while the delete request is out.
	InFlight   views.DeleteControl
	FormAction string
}

// controlFor rebuilds one control from a freshly loaded combo. For comment
// likes commentParam picks the comment.
func controlFor(combo *models.Combo, kind views.ToggleKind, viewer *models.Viewer, commentParam string) (views.ToggleControl, bool) {
	if kind != views.KindCommentLike {
		membership := models.ResolveMembership(combo, viewer.ViewerID())
		return views.BuildToggle(combo, kind, membership), true
	}

	commentID, err := uuid.Parse(commentParam)
	if err != nil {
		return views.ToggleControl{}, false
	}
	for i := range combo.Comments {
		if combo.Comments[i].ID == commentID {
			return views.BuildCommentToggle(&combo.Comments[i], viewer.ViewerID()), true
		}
	}
	return views.ToggleControl{}, false
}

type CommentsFragment struct {
	ComboID  uuid.UUID
	SignedIn bool
	List     views.CommentList
	Error    string
}

// Comments renders the comment list fragment.
func (h *ComboPageHandler) Comments(w http.ResponseWriter, r *http.Request) {
	comboID, err := parsePathUUID(r, "id")
	if err != nil {
		http.Error(w, "Invalid combo ID", http.StatusBadRequest)
		return
	}

	comments, err := h.commentService.ListForCombo(r.Context(), comboID)
	if err != nil {
		h.renderer.InternalError(w, r, "Error listing comments", err)
		return
	}

	viewerID := GetViewerFromContext(r.Context()).ViewerID()
	h.renderer.Fragment(w, http.StatusOK, "comments", CommentsFragment{
		ComboID:  comboID,
		SignedIn: viewerID != nil,
		List:     views.RenderComments(comments, viewerID),
	})
}
