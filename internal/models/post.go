package models

import (
	"time"

	"github.com/google/uuid"
)

type Post struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user"`
	Text      string    `json:"text"`
	Name      string    `json:"name"`
	Avatar    string    `json:"avatar"`
	Likes     []Like    `json:"likes"`
	Comments  []Comment `json:"comments"`
	CreatedAt time.Time `json:"date"`
}

type Like struct {
	UserID uuid.UUID `json:"user"`
}

type Comment struct {
	ID        uuid.UUID `json:"id"`
	PostID    uuid.UUID `json:"-"`
	UserID    uuid.UUID `json:"user"`
	Text      string    `json:"text"`
	Name      string    `json:"name"`
	Avatar    string    `json:"avatar"`
	CreatedAt time.Time `json:"date"`
}

type PostRequest struct {
	Text string `json:"text"`
}

type PostFilter struct {
	UserID *uuid.UUID
	Page   int
	Limit  int
	Sort   string
}

// PostSeed: пост из fixtures сидера; имя и аватар берутся у автора.
type PostSeed struct {
	ID     uuid.UUID `json:"_id"`
	UserID uuid.UUID `json:"user"`
	Text   string    `json:"text"`
}
