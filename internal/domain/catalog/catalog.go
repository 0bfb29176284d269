// Package catalog holds read-only projections of the CMS content,
// certifications and blog posts, together with the in-memory filtering,
// sorting, and pagination applied to them.
package catalog

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned when a single record does not exist upstream.
var ErrNotFound = errors.New("not found")

// Certification is a catalog item available for purchase. All fields come
// from the CMS with defaulting already applied at the boundary; the price
// stays the string it was listed with.
type Certification struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Provider    string `json:"provider"`
	Description string `json:"description"`
	Short       string `json:"short"`
	Duration    string `json:"duration"`
	Price       string `json:"price"`
	Difficulty  string `json:"difficulty"`
	ImageURL    string `json:"imageUrl,omitempty"`
}

// Post is a blog article.
type Post struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Brief    string    `json:"brief"`
	Story    string    `json:"story,omitempty"`
	Author   string    `json:"author"`
	Date     time.Time `json:"date"`
	ImageURL string    `json:"imageUrl,omitempty"`
}

// PostsQuery selects a window of posts. The date range is translated into
// a server-side range query by the content client, not evaluated locally.
type PostsQuery struct {
	Skip        int
	Limit       int
	From        time.Time
	To          time.Time
	OldestFirst bool
}

// Repository is the read-only content backend serving catalog projections.
type Repository interface {
	Certifications(ctx context.Context) ([]Certification, error)
	Certification(ctx context.Context, id string) (*Certification, error)
	Posts(ctx context.Context, q PostsQuery) (posts []Post, total int, err error)
	Post(ctx context.Context, id string) (*Post, error)
}
