package views

import "github.com/google/uuid"

func ComboPath(slug string) string {
	return "/combos/" + slug
}

func AddLikePath(comboID uuid.UUID) string {
	return "/combos/" + comboID.String() + "/likes"
}

func RemoveLikePath(comboID, likeID uuid.UUID) string {
	return "/combos/" + comboID.String() + "/likes/" + likeID.String() + "/delete"
}

func AddFavoritePath(comboID uuid.UUID) string {
	return "/combos/" + comboID.String() + "/favorites"
}

func RemoveFavoritePath(comboID, favoriteID uuid.UUID) string {
	return "/combos/" + comboID.String() + "/favorites/" + favoriteID.String() + "/delete"
}

func DeleteComboPath(comboID uuid.UUID) string {
	return "/combos/" + comboID.String() + "/delete"
}

func CommentsPath(comboID uuid.UUID) string {
	return "/combos/" + comboID.String() + "/comments"
}

func AddCommentLikePath(commentID uuid.UUID) string {
	return "/comments/" + commentID.String() + "/likes"
}

func RemoveCommentLikePath(commentID, likeID uuid.UUID) string {
	return "/comments/" + commentID.String() + "/likes/" + likeID.String() + "/delete"
}
