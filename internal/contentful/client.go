package contentful

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-faster/errors"
)

// ErrNotFound reports that a single-entry lookup matched nothing. Transport
// and decoding failures on single-entry lookups collapse into it as well, so
// callers always get a uniform miss.
var ErrNotFound = errors.New("contentful: entry not found")

const (
	defaultBaseURL     = "https://cdn.contentful.com"
	defaultEnvironment = "master"
)

type Config struct {
	BaseURL     string
	SpaceID     string
	Environment string
	AccessToken string

	// HTTPClient overrides the default client, mainly for tests.
	HTTPClient *http.Client
}

// Client talks to the Contentful Delivery API for one space and environment.
type Client struct {
	http  *http.Client
	base  string
	space string
	env   string
	token string
}

func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Environment == "" {
		cfg.Environment = defaultEnvironment
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		http:  cfg.HTTPClient,
		base:  cfg.BaseURL,
		space: cfg.SpaceID,
		env:   cfg.Environment,
		token: cfg.AccessToken,
	}
}

// Query describes one collection request. A zero Limit leaves paging to the
// API default; Count overrides it to fetch only the total.
type Query struct {
	ContentType string
	Skip        int
	Limit       int
	Order       string

	// DateField with From/To adds server-side range filters, e.g.
	// fields.date[gte]=From.
	DateField string
	From      time.Time
	To        time.Time
}

func (q Query) params() url.Values {
	v := url.Values{}
	if q.ContentType != "" {
		v.Set("content_type", q.ContentType)
	}
	if q.Skip > 0 {
		v.Set("skip", strconv.Itoa(q.Skip))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Order != "" {
		v.Set("order", q.Order)
	}
	if q.DateField != "" {
		if !q.From.IsZero() {
			v.Set(q.DateField+"[gte]", q.From.Format("2006-01-02"))
		}
		if !q.To.IsZero() {
			v.Set(q.DateField+"[lte]", q.To.Format("2006-01-02"))
		}
	}
	return v
}

// Entries fetches one page of entries matching the query.
func (c *Client) Entries(ctx context.Context, q Query) (*Collection, error) {
	return c.fetch(ctx, q.params())
}

// Count returns the total number of entries matching the query without
// fetching any of them.
func (c *Client) Count(ctx context.Context, q Query) (int, error) {
	params := q.params()
	params.Set("limit", "0")
	params.Del("skip")
	col, err := c.fetch(ctx, params)
	if err != nil {
		return 0, err
	}
	return col.Total, nil
}

// Entry fetches a single entry by its sys ID. The lookup goes through the
// collection endpoint so linked assets resolve from includes. Any failure,
// remote or local, reads as ErrNotFound.
func (c *Client) Entry(ctx context.Context, id string) (*Entry, error) {
	params := url.Values{}
	params.Set("sys.id", id)
	params.Set("limit", "1")
	col, err := c.fetch(ctx, params)
	if err != nil || len(col.Items) == 0 {
		return nil, ErrNotFound
	}
	return &col.Items[0], nil
}

func (c *Client) fetch(ctx context.Context, params url.Values) (*Collection, error) {
	u := c.base + "/spaces/" + url.PathEscape(c.space) +
		"/environments/" + url.PathEscape(c.env) +
		"/entries?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "fetch entries")
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("contentful: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read body")
	}
	col, err := decodeCollection(body)
	if err != nil {
		return nil, errors.Wrap(err, "decode collection")
	}
	return col, nil
}
