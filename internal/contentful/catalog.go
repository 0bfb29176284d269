package contentful

import (
	"context"

	"github.com/go-faster/errors"
	"golang.org/x/sync/errgroup"

	"github.com/sentinel-sec/storefront/internal/domain/catalog"
)

const (
	certificationType = "certification"
	postType          = "post"

	// maxEntries caps a full-catalog fetch. Catalog filtering happens
	// in-process, so certification listings pull everything in one page.
	maxEntries = 1000
)

// Field defaults for entries with missing or malformed content. The CMS does
// not enforce required fields, so the boundary does.
const (
	defaultTitle       = "Untitled"
	defaultAuthor      = "Unknown"
	defaultDescription = "No description available."
	defaultValue       = "N/A"
)

// Catalog projects CMS entries into domain records. It implements
// catalog.Repository.
type Catalog struct {
	client *Client
}

func NewCatalog(client *Client) *Catalog {
	return &Catalog{client: client}
}

var _ catalog.Repository = (*Catalog)(nil)

func (c *Catalog) Certifications(ctx context.Context) ([]catalog.Certification, error) {
	col, err := c.client.Entries(ctx, Query{
		ContentType: certificationType,
		Order:       "fields.name",
		Limit:       maxEntries,
	})
	if err != nil {
		return nil, errors.Wrap(err, "fetch certifications")
	}

	out := make([]catalog.Certification, len(col.Items))
	for i, e := range col.Items {
		out[i] = toCertification(e)
	}
	return out, nil
}

func (c *Catalog) Certification(ctx context.Context, id string) (*catalog.Certification, error) {
	e, err := c.client.Entry(ctx, id)
	if err != nil {
		return nil, catalog.ErrNotFound
	}
	cert := toCertification(*e)
	return &cert, nil
}

// Posts fetches one page of posts and the total matching count concurrently.
func (c *Catalog) Posts(ctx context.Context, q catalog.PostsQuery) ([]catalog.Post, int, error) {
	order := "-fields.date"
	if q.OldestFirst {
		order = "fields.date"
	}
	query := Query{
		ContentType: postType,
		Skip:        q.Skip,
		Limit:       q.Limit,
		Order:       order,
		DateField:   "fields.date",
		From:        q.From,
		To:          q.To,
	}

	var (
		col   *Collection
		total int
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		col, err = c.client.Entries(ctx, query)
		return errors.Wrap(err, "fetch posts")
	})
	g.Go(func() error {
		var err error
		total, err = c.client.Count(ctx, query)
		return errors.Wrap(err, "count posts")
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	posts := make([]catalog.Post, len(col.Items))
	for i, e := range col.Items {
		posts[i] = toPost(e)
	}
	return posts, total, nil
}

func (c *Catalog) Post(ctx context.Context, id string) (*catalog.Post, error) {
	e, err := c.client.Entry(ctx, id)
	if err != nil {
		return nil, catalog.ErrNotFound
	}
	post := toPost(*e)
	return &post, nil
}

func toCertification(e Entry) catalog.Certification {
	return catalog.Certification{
		ID:          e.ID,
		Name:        e.Text("name", defaultTitle),
		Provider:    e.Text("provider", defaultAuthor),
		Description: e.Text("description", defaultDescription),
		Short:       e.Text("short", defaultValue),
		Duration:    e.Text("duration", defaultValue),
		Price:       e.Text("price", defaultValue),
		Difficulty:  e.Text("difficulty", defaultValue),
		ImageURL:    e.AssetURL("image"),
	}
}

func toPost(e Entry) catalog.Post {
	return catalog.Post{
		ID:       e.ID,
		Title:    e.Text("title", defaultTitle),
		Brief:    e.Text("brief", defaultDescription),
		Story:    e.Text("story", defaultDescription),
		Author:   e.Text("author", defaultAuthor),
		Date:     e.Time("date"),
		ImageURL: e.AssetURL("image"),
	}
}
