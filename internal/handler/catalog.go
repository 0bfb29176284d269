package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-faster/errors"

	"github.com/sentinel-sec/storefront/internal/domain/catalog"
)

const (
	certificationPageSize = 9
	postPageSize          = 6

	// searchFetchLimit bounds the full-corpus fetch backing free-text post
	// search, which matches in-process.
	searchFetchLimit = 1000
)

type certificationsResponse struct {
	catalog.Page[catalog.Certification]
	Facets catalog.Facets `json:"facets"`
	Prices priceBounds    `json:"prices"`
}

type priceBounds struct {
	Min string `json:"min"`
	Max string `json:"max"`
}

// listCertifications serves the filterable certification catalog. Filtering,
// sorting, and pagination happen in-process over the full CMS corpus; facet
// values and price bounds are computed from the unfiltered set so the UI can
// render all options.
func (h *Handler) listCertifications(w http.ResponseWriter, r *http.Request) {
	all, err := h.catalog.Certifications(r.Context())
	if err != nil {
		writeInternal(r.Context(), w, errors.Wrap(err, "list certifications"))
		return
	}

	q := r.URL.Query()
	filter := catalog.CertificationFilter{
		Search:       q.Get("search"),
		Providers:    q["provider"],
		Difficulties: q["difficulty"],
		Sort:         catalog.SortKey(q.Get("sort")),
	}
	if v := q.Get("minPrice"); v != "" {
		if p, ok := catalog.ParsePrice(v); ok {
			filter.MinPrice = &p
		}
	}
	if v := q.Get("maxPrice"); v != "" {
		if p, ok := catalog.ParsePrice(v); ok {
			filter.MaxPrice = &p
		}
	}

	page := queryInt(r, "page", 1)
	size := queryInt(r, "pageSize", certificationPageSize)

	resp := certificationsResponse{
		Page:   catalog.Paginate(filter.Apply(all), page, size),
		Facets: catalog.CollectFacets(all),
	}
	if min, max, ok := catalog.PriceBounds(all); ok {
		resp.Prices = priceBounds{Min: min.String(), Max: max.String()}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) getCertification(w http.ResponseWriter, r *http.Request) {
	cert, err := h.catalog.Certification(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "certification not found")
		return
	}
	writeJSON(w, http.StatusOK, cert)
}

// listPosts serves one page of blog posts. Paging, date range, and ordering
// are pushed down to the CMS.
func (h *Handler) listPosts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := queryInt(r, "page", 1)

	query := catalog.PostsQuery{
		Skip:        (page - 1) * postPageSize,
		Limit:       postPageSize,
		OldestFirst: q.Get("order") == "oldest",
	}
	if t, ok := queryDate(r, "from"); ok {
		query.From = t
	}
	if t, ok := queryDate(r, "to"); ok {
		query.To = t
	}

	posts, total, err := h.catalog.Posts(r.Context(), query)
	if err != nil {
		writeInternal(r.Context(), w, errors.Wrap(err, "list posts"))
		return
	}

	writeJSON(w, http.StatusOK, catalog.Page[catalog.Post]{
		Items:      posts,
		Index:      page,
		Size:       postPageSize,
		Total:      total,
		PagesCount: catalog.PagesCount(total, postPageSize),
	})
}

// searchPosts matches the query text against title, brief, and story. The CMS
// has no substring search, so the corpus is fetched whole and filtered here,
// while the date range and ordering stay server-side as in listPosts.
func (h *Handler) searchPosts(w http.ResponseWriter, r *http.Request) {
	query := catalog.PostsQuery{
		Limit:       searchFetchLimit,
		OldestFirst: r.URL.Query().Get("order") == "oldest",
	}
	if t, ok := queryDate(r, "from"); ok {
		query.From = t
	}
	if t, ok := queryDate(r, "to"); ok {
		query.To = t
	}

	posts, _, err := h.catalog.Posts(r.Context(), query)
	if err != nil {
		writeInternal(r.Context(), w, errors.Wrap(err, "search posts"))
		return
	}

	matched := catalog.PostFilter{Search: r.URL.Query().Get("q")}.Apply(posts)
	page := queryInt(r, "page", 1)
	writeJSON(w, http.StatusOK, catalog.Paginate(matched, page, postPageSize))
}

func (h *Handler) getPost(w http.ResponseWriter, r *http.Request) {
	post, err := h.catalog.Post(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "post not found")
		return
	}
	writeJSON(w, http.StatusOK, post)
}

func queryInt(r *http.Request, name string, def int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return def
	}
	return n
}

func queryDate(r *http.Request, name string) (time.Time, bool) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return time.Time{}, false
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
