package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Image     string    `json:"image"`
	CreatedAt time.Time `json:"created_at"`
}

// Viewer is the signed-in user as seen by a page render, together with the
// records they own.
type Viewer struct {
	User
	Favorites    []Favorite    `json:"favorites"`
	CommentLikes []CommentLike `json:"comment_likes"`
}

// FavoriteComboIDs lists the combos the viewer favorited. The result is never
// nil so an empty collection filters to nothing.
func (v *Viewer) FavoriteComboIDs() []uuid.UUID {
	if v == nil {
		return []uuid.UUID{}
	}
	ids := make([]uuid.UUID, 0, len(v.Favorites))
	for _, f := range v.Favorites {
		ids = append(ids, f.ComboID)
	}
	return ids
}

// LikedCommentIDs lists the comments the viewer liked, never nil.
func (v *Viewer) LikedCommentIDs() []uuid.UUID {
	if v == nil {
		return []uuid.UUID{}
	}
	ids := make([]uuid.UUID, 0, len(v.CommentLikes))
	for _, l := range v.CommentLikes {
		ids = append(ids, l.CommentID)
	}
	return ids
}

// ViewerID returns nil for an anonymous request.
func (v *Viewer) ViewerID() *uuid.UUID {
	if v == nil || v.ID == uuid.Nil {
		return nil
	}
	id := v.ID
	return &id
}

type SessionUser struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
}

type Session struct {
	User SessionUser `json:"user"`
}
