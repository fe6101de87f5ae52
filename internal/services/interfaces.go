package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/HammerMeetNail/combohub/internal/models"
)

// Interfaces consumed by handlers and middleware. The concrete services
// below satisfy them; tests substitute mocks.

type UserServiceInterface interface {
	FindViewer(ctx context.Context, email string) (*models.Viewer, error)
}

type ComboServiceInterface interface {
	GetBySlug(ctx context.Context, slug string) (*models.Combo, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Combo, error)
	List(ctx context.Context, params ComboListParams) ([]models.ComboSummary, error)
	Delete(ctx context.Context, authorID, comboID uuid.UUID) error
}

type LikeServiceInterface interface {
	AddLike(ctx context.Context, userID, comboID uuid.UUID) (*models.Like, error)
	RemoveLike(ctx context.Context, userID, comboID, likeID uuid.UUID) error
	AddFavorite(ctx context.Context, userID, comboID uuid.UUID) (*models.Favorite, error)
	RemoveFavorite(ctx context.Context, userID, comboID, favoriteID uuid.UUID) error
}

type CommentServiceInterface interface {
	Create(ctx context.Context, userID, comboID uuid.UUID, text string) (*models.Comment, error)
	LikeComment(ctx context.Context, userID, commentID uuid.UUID) (*models.CommentLike, error)
	UnlikeComment(ctx context.Context, userID, commentID, likeID uuid.UUID) error
	ComboIDForComment(ctx context.Context, commentID uuid.UUID) (uuid.UUID, error)
	ListForCombo(ctx context.Context, comboID uuid.UUID) ([]models.Comment, error)
}

type SessionServiceInterface interface {
	GetCurrentSession(ctx context.Context, sessionID string) (*models.Session, error)
}

type TokenVerifierInterface interface {
	Verify(token string) (*models.Session, error)
}

var (
	_ UserServiceInterface    = (*UserService)(nil)
	_ ComboServiceInterface   = (*ComboService)(nil)
	_ LikeServiceInterface    = (*LikeService)(nil)
	_ CommentServiceInterface = (*CommentService)(nil)
	_ SessionServiceInterface = (*SessionService)(nil)
	_ TokenVerifierInterface  = (*TokenVerifier)(nil)
)
