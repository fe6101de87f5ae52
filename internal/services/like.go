package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/HammerMeetNail/combohub/internal/models"
)

var (
	ErrLikeNotFound     = errors.New("like not found")
	ErrFavoriteNotFound = errors.New("favorite not found")
)

const pgForeignKeyViolation = "23503"

// LikeService records likes and favorites on combos. Adds are idempotent:
// adding twice returns the existing record.
type LikeService struct {
	db DBConn
}

func NewLikeService(db DBConn) *LikeService {
	return &LikeService{db: db}
}

type membershipTable struct {
	name     string
	notFound error
}

var (
	likesTable     = membershipTable{name: "likes", notFound: ErrLikeNotFound}
	favoritesTable = membershipTable{name: "favorites", notFound: ErrFavoriteNotFound}
)

func (s *LikeService) AddLike(ctx context.Context, userID, comboID uuid.UUID) (*models.Like, error) {
	id, createdAt, err := s.add(ctx, likesTable, userID, comboID)
	if err != nil {
		return nil, err
	}
	return &models.Like{ID: id, ComboID: comboID, UserID: userID, CreatedAt: createdAt}, nil
}

func (s *LikeService) RemoveLike(ctx context.Context, userID, comboID, likeID uuid.UUID) error {
	return s.remove(ctx, likesTable, userID, comboID, likeID)
}

func (s *LikeService) AddFavorite(ctx context.Context, userID, comboID uuid.UUID) (*models.Favorite, error) {
	id, createdAt, err := s.add(ctx, favoritesTable, userID, comboID)
	if err != nil {
		return nil, err
	}
	return &models.Favorite{ID: id, ComboID: comboID, UserID: userID, CreatedAt: createdAt}, nil
}

func (s *LikeService) RemoveFavorite(ctx context.Context, userID, comboID, favoriteID uuid.UUID) error {
	return s.remove(ctx, favoritesTable, userID, comboID, favoriteID)
}

func (s *LikeService) add(ctx context.Context, table membershipTable, userID, comboID uuid.UUID) (uuid.UUID, time.Time, error) {
	var id uuid.UUID
	var createdAt time.Time
	err := s.db.QueryRow(ctx,
		`INSERT INTO `+table.name+` (combo_id, user_id)
		 VALUES ($1, $2)
		 ON CONFLICT (combo_id, user_id)
		 DO UPDATE SET user_id = EXCLUDED.user_id
		 RETURNING id, created_at`,
		comboID, userID,
	).Scan(&id, &createdAt)
	if isForeignKeyViolation(err) {
		return uuid.Nil, time.Time{}, ErrComboNotFound
	}
	if err != nil {
		return uuid.Nil, time.Time{}, fmt.Errorf("adding to %s: %w", table.name, err)
	}
	return id, createdAt, nil
}

// remove only deletes a record owned by userID on comboID, so a foreign id or
// one from another combo behaves like a missing one.
func (s *LikeService) remove(ctx context.Context, table membershipTable, userID, comboID, id uuid.UUID) error {
	result, err := s.db.Exec(ctx,
		`DELETE FROM `+table.name+` WHERE id = $1 AND user_id = $2 AND combo_id = $3`,
		id, userID, comboID,
	)
	if err != nil {
		return fmt.Errorf("removing from %s: %w", table.name, err)
	}
	if result.RowsAffected() == 0 {
		return table.notFound
	}
	return nil
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation
}
