package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	Specialties  = []string{"PVP", "PVE", "Grinding", "Bounty Hunting"}
	Difficulties = []string{"No Skill", "Easy", "Medium", "Hard", "Insane"}
)

type ComboAuthor struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Image     string    `json:"image"`
	CreatedAt time.Time `json:"created_at"`
}

type Combo struct {
	ID            uuid.UUID   `json:"id"`
	Slug          string      `json:"slug"`
	Title         string      `json:"title"`
	Description   string      `json:"description"`
	FightingStyle string      `json:"fighting_style"`
	Fruit         string      `json:"fruit"`
	Sword         string      `json:"sword"`
	Weapon        string      `json:"weapon"`
	VideoURL      string      `json:"video_url"`
	Specialty     string      `json:"specialty"`
	Race          string      `json:"race"`
	MainStat      string      `json:"main_stat"`
	Difficulty    string      `json:"difficulty"`
	Author        ComboAuthor `json:"author"`
	Likes         []Like      `json:"likes"`
	Favorites     []Favorite  `json:"favorites"`
	Comments      []Comment   `json:"comments"`
	CreatedAt     time.Time   `json:"created_at"`
}

// Images returns the build's item images in display order, skipping blanks.
func (c *Combo) Images() []string {
	images := make([]string, 0, 4)
	for _, src := range []string{c.FightingStyle, c.Fruit, c.Sword, c.Weapon} {
		if strings.TrimSpace(src) != "" {
			images = append(images, src)
		}
	}
	return images
}

func (c *Combo) IsAuthor(userID uuid.UUID) bool {
	return c != nil && userID != uuid.Nil && c.Author.ID == userID
}

type Like struct {
	ID        uuid.UUID `json:"id"`
	ComboID   uuid.UUID `json:"combo_id"`
	UserID    uuid.UUID `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

type Favorite struct {
	ID        uuid.UUID `json:"id"`
	ComboID   uuid.UUID `json:"combo_id"`
	UserID    uuid.UUID `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

type ComboSummary struct {
	ID            uuid.UUID `json:"id"`
	Slug          string    `json:"slug"`
	Title         string    `json:"title"`
	AuthorName    string    `json:"author_name"`
	Specialty     string    `json:"specialty"`
	Difficulty    string    `json:"difficulty"`
	LikeCount     int       `json:"like_count"`
	FavoriteCount int       `json:"favorite_count"`
	CommentCount  int       `json:"comment_count"`
	CreatedAt     time.Time `json:"created_at"`
}

type ComboSort string

const (
	ComboSortNewest    ComboSort = "newest"
	ComboSortMostLiked ComboSort = "most_liked"
)

func IsValidComboSort(s ComboSort) bool {
	return s == ComboSortNewest || s == ComboSortMostLiked
}
