package handlers

import (
	"bytes"
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/HammerMeetNail/combohub/internal/logging"
	"github.com/HammerMeetNail/combohub/internal/models"
	"github.com/HammerMeetNail/combohub/internal/services"
)

type mockComboService struct {
	GetBySlugFunc func(ctx context.Context, slug string) (*models.Combo, error)
	GetByIDFunc   func(ctx context.Context, id uuid.UUID) (*models.Combo, error)
	ListFunc      func(ctx context.Context, params services.ComboListParams) ([]models.ComboSummary, error)
	DeleteFunc    func(ctx context.Context, authorID, comboID uuid.UUID) error
}

func (m *mockComboService) GetBySlug(ctx context.Context, slug string) (*models.Combo, error) {
	if m.GetBySlugFunc != nil {
		return m.GetBySlugFunc(ctx, slug)
	}
	return nil, services.ErrComboNotFound
}

func (m *mockComboService) GetByID(ctx context.Context, id uuid.UUID) (*models.Combo, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, services.ErrComboNotFound
}

func (m *mockComboService) List(ctx context.Context, params services.ComboListParams) ([]models.ComboSummary, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, params)
	}
	return []models.ComboSummary{}, nil
}

func (m *mockComboService) Delete(ctx context.Context, authorID, comboID uuid.UUID) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, authorID, comboID)
	}
	return nil
}

type mockLikeService struct {
	AddLikeFunc        func(ctx context.Context, userID, comboID uuid.UUID) (*models.Like, error)
	RemoveLikeFunc     func(ctx context.Context, userID, comboID, likeID uuid.UUID) error
	AddFavoriteFunc    func(ctx context.Context, userID, comboID uuid.UUID) (*models.Favorite, error)
	RemoveFavoriteFunc func(ctx context.Context, userID, comboID, favoriteID uuid.UUID) error
}

func (m *mockLikeService) AddLike(ctx context.Context, userID, comboID uuid.UUID) (*models.Like, error) {
	if m.AddLikeFunc != nil {
		return m.AddLikeFunc(ctx, userID, comboID)
	}
	return &models.Like{ID: uuid.New(), ComboID: comboID, UserID: userID}, nil
}

func (m *mockLikeService) RemoveLike(ctx context.Context, userID, comboID, likeID uuid.UUID) error {
	if m.RemoveLikeFunc != nil {
		return m.RemoveLikeFunc(ctx, userID, comboID, likeID)
	}
	return nil
}

func (m *mockLikeService) AddFavorite(ctx context.Context, userID, comboID uuid.UUID) (*models.Favorite, error) {
	if m.AddFavoriteFunc != nil {
		return m.AddFavoriteFunc(ctx, userID, comboID)
	}
	return &models.Favorite{ID: uuid.New(), ComboID: comboID, UserID: userID}, nil
}

func (m *mockLikeService) RemoveFavorite(ctx context.Context, userID, comboID, favoriteID uuid.UUID) error {
	if m.RemoveFavoriteFunc != nil {
		return m.RemoveFavoriteFunc(ctx, userID, comboID, favoriteID)
	}
	return nil
}

type mockCommentService struct {
	CreateFunc            func(ctx context.Context, userID, comboID uuid.UUID, text string) (*models.Comment, error)
	LikeCommentFunc       func(ctx context.Context, userID, commentID uuid.UUID) (*models.CommentLike, error)
	UnlikeCommentFunc     func(ctx context.Context, userID, commentID, likeID uuid.UUID) error
	ComboIDForCommentFunc func(ctx context.Context, commentID uuid.UUID) (uuid.UUID, error)
	ListForComboFunc      func(ctx context.Context, comboID uuid.UUID) ([]models.Comment, error)
}

func (m *mockCommentService) Create(ctx context.Context, userID, comboID uuid.UUID, text string) (*models.Comment, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, userID, comboID, text)
	}
	return &models.Comment{ID: uuid.New(), ComboID: comboID, Text: text}, nil
}

func (m *mockCommentService) LikeComment(ctx context.Context, userID, commentID uuid.UUID) (*models.CommentLike, error) {
	if m.LikeCommentFunc != nil {
		return m.LikeCommentFunc(ctx, userID, commentID)
	}
	return &models.CommentLike{ID: uuid.New(), CommentID: commentID, UserID: userID}, nil
}

func (m *mockCommentService) UnlikeComment(ctx context.Context, userID, commentID, likeID uuid.UUID) error {
	if m.UnlikeCommentFunc != nil {
		return m.UnlikeCommentFunc(ctx, userID, commentID, likeID)
	}
	return nil
}

func (m *mockCommentService) ComboIDForComment(ctx context.Context, commentID uuid.UUID) (uuid.UUID, error) {
	if m.ComboIDForCommentFunc != nil {
		return m.ComboIDForCommentFunc(ctx, commentID)
	}
	return uuid.Nil, services.ErrCommentNotFound
}

func (m *mockCommentService) ListForCombo(ctx context.Context, comboID uuid.UUID) ([]models.Comment, error) {
	if m.ListForComboFunc != nil {
		return m.ListForComboFunc(ctx, comboID)
	}
	return []models.Comment{}, nil
}

func newTestRenderer(t *testing.T) (*Renderer, *bytes.Buffer) {
	t.Helper()
	var logs bytes.Buffer
	renderer, err := NewRenderer("../../web/templates", logging.New().SetOutput(&logs))
	if err != nil {
		t.Fatalf("loading templates: %v", err)
	}
	return renderer, &logs
}

func newViewer() *models.Viewer {
	return &models.Viewer{User: models.User{ID: uuid.New(), Email: "usopp@example.com", Name: "Usopp"}}
}

func withViewer(ctx context.Context, viewer *models.Viewer) context.Context {
	return SetViewerInContext(ctx, viewer)
}
