package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/HammerMeetNail/combohub/internal/models"
)

var (
	ErrComboNotFound  = errors.New("combo not found")
	ErrNotComboAuthor = errors.New("only the author can do that")
)

const (
	DefaultComboPageSize = 20
	MaxComboPageSize     = 100
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type ComboListParams struct {
	AuthorID *uuid.UUID
	// ComboIDs restricts the list when non-nil; an empty slice matches nothing.
	ComboIDs []uuid.UUID
	// CommentIDs, when non-nil, keeps only combos carrying one of these comments.
	CommentIDs []uuid.UUID
	Specialty  string
	Race       string
	Difficulty string
	Search     string
	Sort       models.ComboSort
	Limit      int
	Offset     int
}

type ComboService struct {
	db DB
}

func NewComboService(db DB) *ComboService {
	return &ComboService{db: db}
}

const comboSelect = `SELECT c.id, c.slug, c.title, c.description, c.fighting_style, c.fruit, c.sword, c.weapon,
		c.video_url, c.specialty, c.race, c.main_stat, c.difficulty, c.created_at,
		u.id, u.name, u.image, u.created_at
	 FROM combos c
	 JOIN users u ON u.id = c.author_id`

func (s *ComboService) GetBySlug(ctx context.Context, slug string) (*models.Combo, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, ErrComboNotFound
	}
	return s.load(ctx, comboSelect+` WHERE c.slug = $1`, slug)
}

func (s *ComboService) GetByID(ctx context.Context, id uuid.UUID) (*models.Combo, error) {
	return s.load(ctx, comboSelect+` WHERE c.id = $1`, id)
}

// load reads a combo and its likes, favorites and comments from one snapshot
// so the page never mixes counts from different commits.
func (s *ComboService) load(ctx context.Context, query string, arg any) (*models.Combo, error) {
	tx, err := s.db.BeginSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning snapshot: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	combo := &models.Combo{}
	err = tx.QueryRow(ctx, query, arg).Scan(
		&combo.ID, &combo.Slug, &combo.Title, &combo.Description,
		&combo.FightingStyle, &combo.Fruit, &combo.Sword, &combo.Weapon,
		&combo.VideoURL, &combo.Specialty, &combo.Race, &combo.MainStat, &combo.Difficulty, &combo.CreatedAt,
		&combo.Author.ID, &combo.Author.Name, &combo.Author.Image, &combo.Author.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrComboNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting combo: %w", err)
	}

	if combo.Likes, err = listLikes(ctx, tx, combo.ID); err != nil {
		return nil, err
	}
	if combo.Favorites, err = listFavorites(ctx, tx, combo.ID); err != nil {
		return nil, err
	}
	if combo.Comments, err = listComments(ctx, tx, combo.ID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing snapshot: %w", err)
	}
	return combo, nil
}

func (s *ComboService) List(ctx context.Context, params ComboListParams) ([]models.ComboSummary, error) {
	query, args, err := buildComboListQuery(params)
	if err != nil {
		return nil, fmt.Errorf("building combo list query: %w", err)
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing combos: %w", err)
	}
	defer rows.Close()

	combos := []models.ComboSummary{}
	for rows.Next() {
		var c models.ComboSummary
		if err := rows.Scan(&c.ID, &c.Slug, &c.Title, &c.AuthorName, &c.Specialty, &c.Difficulty, &c.CreatedAt,
			&c.LikeCount, &c.FavoriteCount, &c.CommentCount); err != nil {
			return nil, fmt.Errorf("scanning combo summary: %w", err)
		}
		combos = append(combos, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating combos: %w", err)
	}
	return combos, nil
}

func buildComboListQuery(params ComboListParams) (string, []any, error) {
	q := psql.Select(
		"c.id", "c.slug", "c.title", "u.name", "c.specialty", "c.difficulty", "c.created_at",
		"(SELECT COUNT(*) FROM likes l WHERE l.combo_id = c.id) AS like_count",
		"(SELECT COUNT(*) FROM favorites f WHERE f.combo_id = c.id) AS favorite_count",
		"(SELECT COUNT(*) FROM comments cm WHERE cm.combo_id = c.id) AS comment_count",
	).
		From("combos c").
		Join("users u ON u.id = c.author_id")

	if params.AuthorID != nil {
		q = q.Where(sq.Eq{"c.author_id": *params.AuthorID})
	}
	if params.ComboIDs != nil {
		q = q.Where(sq.Eq{"c.id": params.ComboIDs})
	}
	if params.CommentIDs != nil {
		q = q.Where(sq.Expr("c.id IN (?)",
			sq.Select("cm.combo_id").From("comments cm").Where(sq.Eq{"cm.id": params.CommentIDs})))
	}
	if v := strings.TrimSpace(params.Specialty); v != "" {
		q = q.Where(sq.Eq{"c.specialty": v})
	}
	if v := strings.TrimSpace(params.Race); v != "" {
		q = q.Where(sq.Eq{"c.race": v})
	}
	if v := strings.TrimSpace(params.Difficulty); v != "" {
		q = q.Where(sq.Eq{"c.difficulty": v})
	}
	if v := strings.TrimSpace(params.Search); v != "" {
		q = q.Where(sq.ILike{"c.title": "%" + escapeLike(v) + "%"})
	}

	switch params.Sort {
	case models.ComboSortMostLiked:
		q = q.OrderBy("like_count DESC", "c.created_at DESC", "c.id DESC")
	default:
		q = q.OrderBy("c.created_at DESC", "c.id DESC")
	}

	limit := params.Limit
	if limit <= 0 {
		limit = DefaultComboPageSize
	}
	if limit > MaxComboPageSize {
		limit = MaxComboPageSize
	}
	offset := params.Offset
	if offset < 0 {
		offset = 0
	}

	return q.Limit(uint64(limit)).Offset(uint64(offset)).ToSql()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// Delete removes a combo written by authorID. Its likes, favorites and
// comments go with it.
func (s *ComboService) Delete(ctx context.Context, authorID, comboID uuid.UUID) error {
	result, err := s.db.Exec(ctx,
		`DELETE FROM combos WHERE id = $1 AND author_id = $2`,
		comboID, authorID,
	)
	if err != nil {
		return fmt.Errorf("deleting combo: %w", err)
	}
	if result.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	if err := s.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM combos WHERE id = $1)`, comboID).Scan(&exists); err != nil {
		return fmt.Errorf("checking combo existence: %w", err)
	}
	if exists {
		return ErrNotComboAuthor
	}
	return ErrComboNotFound
}

func listLikes(ctx context.Context, q DBConn, comboID uuid.UUID) ([]models.Like, error) {
	rows, err := q.Query(ctx,
		`SELECT id, combo_id, user_id, created_at
		 FROM likes WHERE combo_id = $1
		 ORDER BY created_at, id`,
		comboID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing likes: %w", err)
	}
	defer rows.Close()

	likes := []models.Like{}
	for rows.Next() {
		var l models.Like
		if err := rows.Scan(&l.ID, &l.ComboID, &l.UserID, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning like: %w", err)
		}
		likes = append(likes, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating likes: %w", err)
	}
	return likes, nil
}

func listFavorites(ctx context.Context, q DBConn, comboID uuid.UUID) ([]models.Favorite, error) {
	rows, err := q.Query(ctx,
		`SELECT id, combo_id, user_id, created_at
		 FROM favorites WHERE combo_id = $1
		 ORDER BY created_at, id`,
		comboID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing favorites: %w", err)
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

func listComments(ctx context.Context, q DBConn, comboID uuid.UUID) ([]models.Comment, error) {
	rows, err := q.Query(ctx,
		`SELECT cm.id, cm.combo_id, cm.text, cm.created_at, u.id, u.name, u.image
		 FROM comments cm
		 JOIN users u ON u.id = cm.user_id
		 WHERE cm.combo_id = $1
		 ORDER BY cm.created_at, cm.id`,
		comboID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing comments: %w", err)
	}

	comments := []models.Comment{}
	index := map[uuid.UUID]int{}
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.ComboID, &c.Text, &c.CreatedAt, &c.Author.ID, &c.Author.Name, &c.Author.Image); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning comment: %w", err)
		}
		c.Likes = []models.CommentLike{}
		index[c.ID] = len(comments)
		comments = append(comments, c)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, fmt.Errorf("iterating comments: %w", err)
	}
	if len(comments) == 0 {
		return comments, nil
	}

	likeRows, err := q.Query(ctx,
		`SELECT cl.id, cl.comment_id, cl.user_id, cl.created_at
		 FROM comment_likes cl
		 JOIN comments cm ON cm.id = cl.comment_id
		 WHERE cm.combo_id = $1
		 ORDER BY cl.created_at, cl.id`,
		comboID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing comment likes: %w", err)
	}
	defer likeRows.Close()

	for likeRows.Next() {
		var l models.CommentLike
		if err := likeRows.Scan(&l.ID, &l.CommentID, &l.UserID, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning comment like: %w", err)
		}
		if i, ok := index[l.CommentID]; ok {
			comments[i].Likes = append(comments[i].Likes, l)
		}
	}
	if err := likeRows.Err(); err != nil {
		return nil, fmt.Errorf("iterating comment likes: %w", err)
	}
	return comments, nil
}
