package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/HammerMeetNail/combohub/internal/models"
)

var (
	ErrCommentNotFound     = errors.New("comment not found")
	ErrCommentLikeNotFound = errors.New("comment like not found")
	ErrInvalidComment      = errors.New("comment must be between 1 and 1000 characters")
)

type CommentService struct {
	db DBConn
}

func NewCommentService(db DBConn) *CommentService {
	return &CommentService{db: db}
}

func (s *CommentService) Create(ctx context.Context, userID, comboID uuid.UUID, text string) (*models.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" || utf8.RuneCountInString(text) > models.MaxCommentLength {
		return nil, ErrInvalidComment
	}

	comment := &models.Comment{ComboID: comboID, Text: text, Likes: []models.CommentLike{}}
	err := s.db.QueryRow(ctx,
		`WITH inserted AS (
			INSERT INTO comments (combo_id, user_id, text)
			VALUES ($1, $2, $3)
			RETURNING id, user_id, created_at
		 )
		 SELECT i.id, i.created_at, u.id, u.name, u.image
		 FROM inserted i
		 JOIN users u ON u.id = i.user_id`,
		comboID, userID, text,
	).Scan(&comment.ID, &comment.CreatedAt, &comment.Author.ID, &comment.Author.Name, &comment.Author.Image)
	if isForeignKeyViolation(err) {
		return nil, ErrComboNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("creating comment: %w", err)
	}
	return comment, nil
}

func (s *CommentService) LikeComment(ctx context.Context, userID, commentID uuid.UUID) (*models.CommentLike, error) {
	like := &models.CommentLike{CommentID: commentID, UserID: userID}
	err := s.db.QueryRow(ctx,
		`INSERT INTO comment_likes (comment_id, user_id)
		 VALUES ($1, $2)
		 ON CONFLICT (comment_id, user_id)
		 DO UPDATE SET user_id = EXCLUDED.user_id
		 RETURNING id, created_at`,
		commentID, userID,
	).Scan(&like.ID, &like.CreatedAt)
	if isForeignKeyViolation(err) {
		return nil, ErrCommentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("liking comment: %w", err)
	}
	return like, nil
}

func (s *CommentService) UnlikeComment(ctx context.Context, userID, commentID, likeID uuid.UUID) error {
	result, err := s.db.Exec(ctx,
		`DELETE FROM comment_likes WHERE id = $1 AND user_id = $2 AND comment_id = $3`,
		likeID, userID, commentID,
	)
	if err != nil {
		return fmt.Errorf("unliking comment: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrCommentLikeNotFound
	}
	return nil
}

// ComboIDForComment returns the combo a comment belongs to.
func (s *CommentService) ComboIDForComment(ctx context.Context, commentID uuid.UUID) (uuid.UUID, error) {
	var comboID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT combo_id FROM comments WHERE id = $1`, commentID).Scan(&comboID)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, ErrCommentNotFound
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("getting comment: %w", err)
	}
	return comboID, nil
}

// ListForCombo returns the comments of a combo, oldest first, with their likes.
func (s *CommentService) ListForCombo(ctx context.Context, comboID uuid.UUID) ([]models.Comment, error) {
	return listComments(ctx, s.db, comboID)
}
