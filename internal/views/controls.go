// Package views turns loaded records into the display structures the page
// templates consume. Everything here is a pure function of its arguments.
package views

import "fmt"

type ToggleKind string

const (
	KindLike        ToggleKind = "like"
	KindFavorite    ToggleKind = "favorite"
	KindCommentLike ToggleKind = "comment_like"
)

func ParseToggleKind(s string) (ToggleKind, bool) {
	switch ToggleKind(s) {
	case KindLike, KindFavorite, KindCommentLike:
		return ToggleKind(s), true
	default:
		return "", false
	}
}

type ToggleAction string

const (
	ActionAdd    ToggleAction = "add"
	ActionRemove ToggleAction = "remove"
)

// ToggleControl is one like/favorite button together with its counter.
type ToggleControl struct {
	Kind           ToggleKind
	Action         ToggleAction
	DisplayedCount int
	// Disabled controls render as an inert element instead of a submit button.
	Disabled bool
	// Filled mirrors the membership the viewer will have once the pending
	// submission lands.
	Filled bool
	Icon   string
	Title  string
	// FormAction is the POST target; empty while disabled.
	FormAction string
	// InFlight is the disabled variant shown while this control's submission
	// is out. It is projected from the same snapshot as the settled control.
	InFlight *ToggleControl
}

// PresentToggle projects a toggle's count and control for the current
// submission state. While pending the count is moved one step in the
// direction of the submitted action and the control is disabled so it cannot
// be submitted twice.
func PresentToggle(kind ToggleKind, currentCount int, isPending, isAdding bool) ToggleControl {
	displayed := currentCount
	if isPending {
		if isAdding {
			displayed++
		} else {
			displayed--
		}
	}

	action := ActionRemove
	if isAdding {
		action = ActionAdd
	}

	return ToggleControl{
		Kind:           kind,
		Action:         action,
		DisplayedCount: displayed,
		Disabled:       isPending,
		Filled:         isAdding == isPending,
		Icon:           iconFor(kind),
		Title:          countLabel(kind, currentCount),
	}
}

// WithFormAction returns a copy bound to url. Disabled controls stay unbound.
func (c ToggleControl) WithFormAction(url string) ToggleControl {
	if !c.Disabled {
		c.FormAction = url
	}
	return c
}

func iconFor(kind ToggleKind) string {
	switch kind {
	case KindFavorite:
		return "star"
	case KindCommentLike:
		return "plus"
	default:
		return "heart"
	}
}

func countLabel(kind ToggleKind, n int) string {
	noun := "like"
	if kind == KindFavorite {
		noun = "favorite"
	}
	if n != 1 {
		noun += "s"
	}
	return fmt.Sprintf("%d %s", n, noun)
}

// withInFlight attaches the pending variant of a settled control built from
// currentCount.
func withInFlight(settled ToggleControl, currentCount int, isAdding bool) ToggleControl {
	inFlight := PresentToggle(settled.Kind, currentCount, true, isAdding)
	settled.InFlight = &inFlight
	return settled
}

// DeleteControl is the author's delete button for a combo.
type DeleteControl struct {
	Disabled bool
	Spinner  bool
	Label    string
}

func PresentDelete(isPending bool) DeleteControl {
	if isPending {
		return DeleteControl{Disabled: true, Spinner: true}
	}
	return DeleteControl{Label: "Delete Combo"}
}
