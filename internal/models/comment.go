package models

import (
	"time"

	"github.com/google/uuid"
)

const MaxCommentLength = 1000

type CommentAuthor struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Image string    `json:"image"`
}

type Comment struct {
	ID        uuid.UUID     `json:"id"`
	ComboID   uuid.UUID     `json:"combo_id"`
	Text      string        `json:"text"`
	Author    CommentAuthor `json:"author"`
	Likes     []CommentLike `json:"likes"`
	CreatedAt time.Time     `json:"created_at"`
}

type CommentLike struct {
	ID        uuid.UUID `json:"id"`
	CommentID uuid.UUID `json:"comment_id"`
	UserID    uuid.UUID `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}
