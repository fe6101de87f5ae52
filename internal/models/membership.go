package models

import "github.com/google/uuid"

// MembershipView says whether a viewer likes and favorites a combo, and which
// of the viewer's records a removal should target. It is derived per render
// and never stored.
type MembershipView struct {
	IsLiked     bool
	LikeID      *uuid.UUID
	IsFavorited bool
	FavoriteID  *uuid.UUID
}

// ResolveMembership scans the combo's likes and favorites in slice order and
// takes the first record owned by viewerID. A nil viewerID means anonymous and
// yields the zero view.
func ResolveMembership(combo *Combo, viewerID *uuid.UUID) MembershipView {
	var view MembershipView
	if combo == nil || viewerID == nil {
		return view
	}

	for i := range combo.Likes {
		if combo.Likes[i].UserID == *viewerID {
			id := combo.Likes[i].ID
			view.IsLiked = true
			view.LikeID = &id
			break
		}
	}

	for i := range combo.Favorites {
		if combo.Favorites[i].UserID == *viewerID {
			id := combo.Favorites[i].ID
			view.IsFavorited = true
			view.FavoriteID = &id
			break
		}
	}

	return view
}

// ResolveCommentLike applies the same first-match rule to a comment's likes.
func ResolveCommentLike(comment *Comment, viewerID *uuid.UUID) (bool, *uuid.UUID) {
	if comment == nil || viewerID == nil {
		return false, nil
	}
	for i := range comment.Likes {
		if comment.Likes[i].UserID == *viewerID {
			id := comment.Likes[i].ID
			return true, &id
		}
	}
	return false, nil
}
