package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/HammerMeetNail/combohub/internal/metrics"
	"github.com/HammerMeetNail/combohub/internal/models"
	"github.com/HammerMeetNail/combohub/internal/services"
	"github.com/HammerMeetNail/combohub/internal/views"
)

func newToggleHandler(t *testing.T, combos *mockComboService, likes *mockLikeService, comments *mockCommentService) *ToggleHandler {
	t.Helper()
	renderer, _ := newTestRenderer(t)
	return NewToggleHandler(combos, likes, comments, renderer, metrics.New(prometheus.NewRegistry()))
}

func TestToggleHandler_AddLike_Redirects(t *testing.T) {
	viewer := newViewer()
	combo, _ := sampleCombo(uuid.New())
	var added bool
	h := newToggleHandler(t,
		&mockComboService{GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*models.Combo, error) { return combo, nil }},
		&mockLikeService{AddLikeFunc: func(ctx context.Context, userID, comboID uuid.UUID) (*models.Like, error) {
			if userID != viewer.ID || comboID != combo.ID {
				t.Fatalf("unexpected ids %s %s", userID, comboID)
			}
			added = true
			return &models.Like{ID: uuid.New()}, nil
		}},
		&mockCommentService{},
	)

	req := httptest.NewRequest(http.MethodPost, "/combos/x/likes", nil)
	req.SetPathValue("id", combo.ID.String())
	req = req.WithContext(withViewer(req.Context(), viewer))
	rec := httptest.NewRecorder()
	h.AddLike(rec, req)

	if !added {
		t.Fatal("expected like to be added")
	}
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/combos/dark-step" {
		t.Fatalf("expected redirect to detail page, got %d %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestToggleHandler_AddLike_FragmentIsSettled(t *testing.T) {
	viewer := newViewer()
	combo, likeID := sampleCombo(viewer.ID)
	h := newToggleHandler(t,
		&mockComboService{GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*models.Combo, error) { return combo, nil }},
		&mockLikeService{},
		&mockCommentService{},
	)

	req := httptest.NewRequest(http.MethodPost, "/combos/x/likes", nil)
	req.Header.Set("HX-Request", "true")
	req.SetPathValue("id", combo.ID.String())
	req = req.WithContext(withViewer(req.Context(), viewer))
	rec := httptest.NewRecorder()
	h.AddLike(rec, req)

	body := rec.Body.String()
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	settled := body[:strings.Index(body, `class="toggle-inflight"`)]
	if strings.Contains(settled, "disabled") {
		t.Fatal("expected settled control")
	}
	if !strings.Contains(settled, views.RemoveLikePath(combo.ID, likeID)) || !strings.Contains(settled, `<span class="toggle-count">2</span>`) {
		t.Fatalf("expected authoritative control from snapshot, got %s", body)
	}
}

func TestToggleHandler_AddFavorite_UnknownCombo(t *testing.T) {
	h := newToggleHandler(t, &mockComboService{}, &mockLikeService{
		AddFavoriteFunc: func(ctx context.Context, userID, comboID uuid.UUID) (*models.Favorite, error) {
			return nil, services.ErrComboNotFound
		},
	}, &mockCommentService{})

	req := httptest.NewRequest(http.MethodPost, "/combos/x/favorites", nil)
	req.SetPathValue("id", uuid.New().String())
	req = req.WithContext(withViewer(req.Context(), newViewer()))
	rec := httptest.NewRecorder()
	h.AddFavorite(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestToggleHandler_RemoveLike_StaleIsNotAnError(t *testing.T) {
	viewer := newViewer()
	combo, _ := sampleCombo(uuid.New())
	h := newToggleHandler(t,
		&mockComboService{GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*models.Combo, error) { return combo, nil }},
		&mockLikeService{RemoveLikeFunc: func(ctx context.Context, userID, comboID, likeID uuid.UUID) error {
			if comboID != combo.ID {
				t.Fatalf("expected removal scoped to combo %s, got %s", combo.ID, comboID)
			}
			return services.ErrLikeNotFound
		}},
		&mockCommentService{},
	)

	for _, fragment := range []bool{false, true} {
		req := httptest.NewRequest(http.MethodPost, "/combos/x/likes/y/delete", nil)
		if fragment {
			req.Header.Set("HX-Request", "true")
		}
		req.SetPathValue("id", combo.ID.String())
		req.SetPathValue("likeID", uuid.New().String())
		req = req.WithContext(withViewer(req.Context(), viewer))
		rec := httptest.NewRecorder()
		h.RemoveLike(rec, req)

		want := http.StatusSeeOther
		if fragment {
			want = http.StatusOK
		}
		if rec.Code != want {
			t.Fatalf("fragment=%v: expected %d, got %d", fragment, want, rec.Code)
		}
		if fragment && !strings.Contains(rec.Body.String(), views.AddLikePath(combo.ID)) {
			t.Fatal("expected control to reflect the fresh snapshot")
		}
	}
}

func TestToggleHandler_RemoveFavorite_Error(t *testing.T) {
	h := newToggleHandler(t, &mockComboService{}, &mockLikeService{
		RemoveFavoriteFunc: func(ctx context.Context, userID, comboID, favoriteID uuid.UUID) error {
			return errors.New("db down")
		},
	}, &mockCommentService{})

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.SetPathValue("id", uuid.New().String())
	req.SetPathValue("favoriteID", uuid.New().String())
	req = req.WithContext(withViewer(req.Context(), newViewer()))
	rec := httptest.NewRecorder()
	h.RemoveFavorite(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestToggleHandler_RequiresViewerAndValidIDs(t *testing.T) {
	h := newToggleHandler(t, &mockComboService{}, &mockLikeService{}, &mockCommentService{})

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.SetPathValue("id", uuid.New().String())
	rec := httptest.NewRecorder()
	h.AddLike(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/", nil)
	req.SetPathValue("id", "not-a-uuid")
	req = req.WithContext(withViewer(req.Context(), newViewer()))
	rec = httptest.NewRecorder()
	h.AddLike(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/", nil)
	req.SetPathValue("id", uuid.New().String())
	req.SetPathValue("likeID", "nope")
	req = req.WithContext(withViewer(req.Context(), newViewer()))
	rec = httptest.NewRecorder()
	h.RemoveLike(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestToggleHandler_LikeComment(t *testing.T) {
	viewer := newViewer()
	combo, _ := sampleCombo(uuid.New())
	comment := &combo.Comments[0]
	commentLikeID := uuid.New()

	h := newToggleHandler(t,
		&mockComboService{GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*models.Combo, error) { return combo, nil }},
		&mockLikeService{},
		&mockCommentService{
			LikeCommentFunc: func(ctx context.Context, userID, commentID uuid.UUID) (*models.CommentLike, error) {
				comment.Likes = append(comment.Likes, models.CommentLike{ID: commentLikeID, CommentID: commentID, UserID: userID})
				return &comment.Likes[0], nil
			},
			ComboIDForCommentFunc: func(ctx context.Context, commentID uuid.UUID) (uuid.UUID, error) { return combo.ID, nil },
		},
	)

	req := httptest.NewRequest(http.MethodPost, "/comments/x/likes", nil)
	req.Header.Set("HX-Request", "true")
	req.SetPathValue("id", comment.ID.String())
	req = req.WithContext(withViewer(req.Context(), viewer))
	rec := httptest.NewRecorder()
	h.LikeComment(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), views.RemoveCommentLikePath(comment.ID, commentLikeID)) {
		t.Fatalf("expected remove control for the new like, got %s", rec.Body.String())
	}
}

func TestToggleHandler_UnlikeComment_StaleRedirects(t *testing.T) {
	combo, _ := sampleCombo(uuid.New())
	commentID := combo.Comments[0].ID
	h := newToggleHandler(t,
		&mockComboService{GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*models.Combo, error) { return combo, nil }},
		&mockLikeService{},
		&mockCommentService{
			UnlikeCommentFunc: func(ctx context.Context, userID, gotCommentID, likeID uuid.UUID) error {
				if gotCommentID != commentID {
					t.Fatalf("expected unlike scoped to comment %s, got %s", commentID, gotCommentID)
				}
				return services.ErrCommentLikeNotFound
			},
			ComboIDForCommentFunc: func(ctx context.Context, id uuid.UUID) (uuid.UUID, error) { return combo.ID, nil },
		},
	)

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.SetPathValue("id", commentID.String())
	req.SetPathValue("likeID", uuid.New().String())
	req = req.WithContext(withViewer(req.Context(), newViewer()))
	rec := httptest.NewRecorder()
	h.UnlikeComment(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/combos/dark-step#comment-"+commentID.String() {
		t.Fatalf("unexpected redirect %q", loc)
	}
}

func TestToggleHandler_DeleteCombo(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		fragment bool
		wantCode int
	}{
		{name: "deleted", wantCode: http.StatusSeeOther},
		{name: "already gone", err: services.ErrComboNotFound, wantCode: http.StatusSeeOther},
		{name: "fragment", fragment: true, wantCode: http.StatusNoContent},
		{name: "not author", err: services.ErrNotComboAuthor, wantCode: http.StatusForbidden},
		{name: "failure", err: errors.New("boom"), wantCode: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newToggleHandler(t, &mockComboService{
				DeleteFunc: func(ctx context.Context, authorID, comboID uuid.UUID) error { return tt.err },
			}, &mockLikeService{}, &mockCommentService{})

			req := httptest.NewRequest(http.MethodPost, "/", nil)
			if tt.fragment {
				req.Header.Set("HX-Request", "true")
			}
			req.SetPathValue("id", uuid.New().String())
			req = req.WithContext(withViewer(req.Context(), newViewer()))
			rec := httptest.NewRecorder()
			h.DeleteCombo(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d", tt.wantCode, rec.Code)
			}
			if tt.fragment && rec.Header().Get("HX-Redirect") == "" {
				t.Fatal("expected HX-Redirect header")
			}
		})
	}
}
