package views

import (
	"github.com/HammerMeetNail/combohub/internal/models"
)

// ComboDetail is everything the detail page renders for one combo and viewer.
type ComboDetail struct {
	Combo      *models.Combo
	Membership models.MembershipView
	SignedIn   bool
	Like       ToggleControl
	Favorite   ToggleControl
	// Delete is set only when the viewer wrote the combo.
	Delete   *DeleteControl
	Comments CommentList
}

// BuildComboDetail resolves the viewer's membership and renders settled
// controls bound to their add or remove routes.
func BuildComboDetail(combo *models.Combo, viewer *models.Viewer) ComboDetail {
	viewerID := viewer.ViewerID()
	membership := models.ResolveMembership(combo, viewerID)

	detail := ComboDetail{
		Combo:      combo,
		Membership: membership,
		SignedIn:   viewerID != nil,
		Like:       BuildToggle(combo, KindLike, membership),
		Favorite:   BuildToggle(combo, KindFavorite, membership),
		Comments:   RenderComments(combo.Comments, viewerID),
	}
	if viewerID != nil && combo.IsAuthor(*viewerID) {
		del := PresentDelete(false)
		detail.Delete = &del
	}
	return detail
}

// BuildToggle renders the settled combo-level like or favorite control along
// with its in-flight variant. The direction comes from the membership: a
// member can only remove, a non-member can only add.
func BuildToggle(combo *models.Combo, kind ToggleKind, membership models.MembershipView) ToggleControl {
	switch kind {
	case KindFavorite:
		n, isAdding := len(combo.Favorites), !membership.IsFavorited
		c := withInFlight(PresentToggle(kind, n, false, isAdding), n, isAdding)
		if membership.FavoriteID != nil {
			return c.WithFormAction(RemoveFavoritePath(combo.ID, *membership.FavoriteID))
		}
		return c.WithFormAction(AddFavoritePath(combo.ID))
	default:
		n, isAdding := len(combo.Likes), !membership.IsLiked
		c := withInFlight(PresentToggle(KindLike, n, false, isAdding), n, isAdding)
		if membership.LikeID != nil {
			return c.WithFormAction(RemoveLikePath(combo.ID, *membership.LikeID))
		}
		return c.WithFormAction(AddLikePath(combo.ID))
	}
}
