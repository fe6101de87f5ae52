package views

import (
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/HammerMeetNail/combohub/internal/models"
)

const EmptyCommentsNotice = "No comments to show."

type CommentList struct {
	Empty       bool
	EmptyNotice string
	Entries     []CommentEntry
}

type CommentEntry struct {
	ID     uuid.UUID
	Avatar AvatarView
	Body   CommentBody
}

type AvatarView struct {
	ImageURL string
	Nickname string
	Initials string
}

type CommentBody struct {
	Author    string
	Text      string
	CreatedAt time.Time
	Like      ToggleControl
	// LikeID targets the viewer's own like when Like.Action is remove.
	LikeID *uuid.UUID
}

// RenderComments builds one entry per comment in input order, or the empty
// notice when there are none. viewerID only decides which way each comment
// like control points.
func RenderComments(comments []models.Comment, viewerID *uuid.UUID) CommentList {
	if len(comments) == 0 {
		return CommentList{Empty: true, EmptyNotice: EmptyCommentsNotice}
	}

	entries := make([]CommentEntry, 0, len(comments))
	for i := range comments {
		c := &comments[i]
		_, likeID := models.ResolveCommentLike(c, viewerID)
		entries = append(entries, CommentEntry{
			ID:     c.ID,
			Avatar: renderAvatar(c.Author),
			Body: CommentBody{
				Author:    c.Author.Name,
				Text:      c.Text,
				CreatedAt: c.CreatedAt,
				Like:      BuildCommentToggle(c, viewerID),
				LikeID:    likeID,
			},
		})
	}
	return CommentList{Entries: entries}
}

// BuildCommentToggle renders a comment's settled like control and its
// in-flight variant.
func BuildCommentToggle(comment *models.Comment, viewerID *uuid.UUID) ToggleControl {
	liked, likeID := models.ResolveCommentLike(comment, viewerID)
	n := len(comment.Likes)
	like := withInFlight(PresentToggle(KindCommentLike, n, false, !liked), n, !liked)
	if likeID != nil {
		return like.WithFormAction(RemoveCommentLikePath(comment.ID, *likeID))
	}
	return like.WithFormAction(AddCommentLikePath(comment.ID))
}

func renderAvatar(author models.CommentAuthor) AvatarView {
	return AvatarView{
		ImageURL: author.Image,
		Nickname: author.Name,
		Initials: initials(author.Name),
	}
}

func initials(name string) string {
	runes := []rune(name)
	out := make([]rune, 0, 2)
	atWordStart := true
	for _, r := range runes {
		if unicode.IsSpace(r) {
			atWordStart = true
			continue
		}
		if atWordStart {
			out = append(out, unicode.ToUpper(r))
			if len(out) == 2 {
				break
			}
		}
		atWordStart = false
	}
	if len(out) == 0 {
		return "?"
	}
	return string(out)
}
