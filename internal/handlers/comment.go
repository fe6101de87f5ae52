package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/HammerMeetNail/combohub/internal/services"
	"github.com/HammerMeetNail/combohub/internal/views"
)

type CommentHandler struct {
	comboService   services.ComboServiceInterface
	commentService services.CommentServiceInterface
	renderer       *Renderer
	validate       *validator.Validate
}

func NewCommentHandler(comboService services.ComboServiceInterface, commentService services.CommentServiceInterface, renderer *Renderer) *CommentHandler {
	return &CommentHandler{
		comboService:   comboService,
		commentService: commentService,
		renderer:       renderer,
		validate:       validator.New(validator.WithRequiredStructEnabled()),
	}
}

// CreateCommentRequest is the comment form. max counts characters, not bytes.
type CreateCommentRequest struct {
	Text string `validate:"required,max=1000"`
}

const invalidCommentMessage = "Comments must be between 1 and 1000 characters."

func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
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
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid form body")
		return
	}

	req := CreateCommentRequest{Text: strings.TrimSpace(r.PostFormValue("text"))}
	if err := h.validate.Struct(req); err != nil {
		h.rejectComment(w, r, comboID, invalidCommentMessage)
		return
	}

	_, err = h.commentService.Create(r.Context(), viewer.ID, comboID, req.Text)
	if errors.Is(err, services.ErrInvalidComment) {
		h.rejectComment(w, r, comboID, invalidCommentMessage)
		return
	}
	if errors.Is(err, services.ErrComboNotFound) {
		h.renderer.NotFound(w, r)
		return
	}
	if err != nil {
		h.renderer.InternalError(w, r, "Error creating comment", err)
		return
	}

	h.respond(w, r, comboID, "")
}

// rejectComment shows message above the comment list. Fragment callers get it
// with a 200 since htmx discards error responses instead of swapping them.
func (h *CommentHandler) rejectComment(w http.ResponseWriter, r *http.Request, comboID uuid.UUID, message string) {
	h.respond(w, r, comboID, message)
}

// respond renders the fresh comment list for fragment callers and redirects
// everyone else back to the comments section of the page.
func (h *CommentHandler) respond(w http.ResponseWriter, r *http.Request, comboID uuid.UUID, message string) {
	if isFragmentRequest(r) {
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
			Error:    message,
		})
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
	target := views.ComboPath(combo.Slug)
	if message != "" {
		target += "?error=" + url.QueryEscape(message)
	}
	http.Redirect(w, r, target+"#comments", http.StatusSeeOther)
}
