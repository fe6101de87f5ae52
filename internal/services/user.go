package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/HammerMeetNail/combohub/internal/models"
)

var ErrUserNotFound = errors.New("user not found")

type UserService struct {
	db DBConn
}

func NewUserService(db DBConn) *UserService {
	return &UserService{db: db}
}

// FindViewer loads the user behind a session email along with the favorites
// and comment likes they own. The combo list filters on those collections.
func (s *UserService) FindViewer(ctx context.Context, email string) (*models.Viewer, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, ErrUserNotFound
	}

	viewer := &models.Viewer{}
	err := s.db.QueryRow(ctx,
		`SELECT id, email, name, image, created_at
		 FROM users WHERE LOWER(email) = LOWER($1)`,
		email,
	).Scan(&viewer.ID, &viewer.Email, &viewer.Name, &viewer.Image, &viewer.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting user by email: %w", err)
	}

	viewer.Favorites, err = s.listFavorites(ctx, viewer.ID)
	if err != nil {
		return nil, err
	}
	viewer.CommentLikes, err = s.listCommentLikes(ctx, viewer.ID)
	if err != nil {
		return nil, err
	}

	return viewer, nil
}

func (s *UserService) listFavorites(ctx context.Context, userID uuid.UUID) ([]models.Favorite, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, combo_id, user_id, created_at
		 FROM favorites WHERE user_id = $1
		 ORDER BY created_at, id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing user favorites: %w", err)
	}
	defer rows.Close()

	favorites := []models.Favorite{}
	for rows.Next() {
		var f models.Favorite
		if err := rows.Scan(&f.ID, &f.ComboID, &f.UserID, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning favorite: %w", err)
		}
		favorites = append(favorites, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating favorites: %w", err)
	}
	return favorites, nil
}

func (s *UserService) listCommentLikes(ctx context.Context, userID uuid.UUID) ([]models.CommentLike, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, comment_id, user_id, created_at
		 FROM comment_likes WHERE user_id = $1
		 ORDER BY created_at, id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing user comment likes: %w", err)
	}
	defer rows.Close()

	likes := []models.CommentLike{}
	for rows.Next() {
		var l models.CommentLike
		if err := rows.Scan(&l.ID, &l.CommentID, &l.UserID, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning comment like: %w", err)
		}
		likes = append(likes, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating comment likes: %w", err)
	}
	return likes, nil
}
