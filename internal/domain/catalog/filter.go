package catalog

import (
	"regexp"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortKey orders a filtered certification list.
type SortKey string

const (
	SortNone      SortKey = ""
	SortPriceAsc  SortKey = "price-asc"
	SortPriceDesc SortKey = "price-desc"
	SortNameAsc   SortKey = "az"
	SortNameDesc  SortKey = "za"
)

// CertificationFilter is the full filter specification for the certification
// catalog. Zero values impose no constraint on their dimension.
type CertificationFilter struct {
	Search       string
	Providers    []string
	Difficulties []string
	MinPrice     *decimal.Decimal
	MaxPrice     *decimal.Decimal
	Sort         SortKey
}

var nonNumeric = regexp.MustCompile(`[^\d.]`)

// ParsePrice extracts the numeric value from a listed price string, tolerating
// currency symbols and spacing. ok is false when nothing numeric remains.
func ParsePrice(price string) (decimal.Decimal, bool) {
	cleaned := nonNumeric.ReplaceAllString(price, "")
	if cleaned == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// Apply returns the certifications matching every active predicate, ordered
// per the sort key. The sort is stable: ties keep their original order, and
// SortNone keeps the input order entirely.
func (f CertificationFilter) Apply(certs []Certification) []Certification {
	out := make([]Certification, 0, len(certs))
	for _, c := range certs {
		if f.matches(c) {
			out = append(out, c)
		}
	}
	sortCertifications(out, f.Sort)
	return out
}

func (f CertificationFilter) matches(c Certification) bool {
	if s := strings.ToLower(strings.TrimSpace(f.Search)); s != "" {
		name := strings.ToLower(c.Name)
		desc := strings.ToLower(c.Description)
		if !strings.Contains(name, s) && !strings.Contains(desc, s) {
			return false
		}
	}
	if !facetMatch(f.Providers, c.Provider) {
		return false
	}
	if !facetMatch(f.Difficulties, c.Difficulty) {
		return false
	}
	if f.MinPrice != nil || f.MaxPrice != nil {
		price, ok := ParsePrice(c.Price)
		if !ok {
			return false
		}
		if f.MinPrice != nil && price.LessThan(*f.MinPrice) {
			return false
		}
		if f.MaxPrice != nil && price.GreaterThan(*f.MaxPrice) {
			return false
		}
	}
	return true
}

// facetMatch: an empty selection passes everything; otherwise the value must
// equal one of the selected values, case-insensitive and trimmed.
func facetMatch(selected []string, value string) bool {
	if len(selected) == 0 {
		return true
	}
	v := strings.TrimSpace(value)
	for _, s := range selected {
		if strings.EqualFold(strings.TrimSpace(s), v) {
			return true
		}
	}
	return false
}

func sortCertifications(certs []Certification, key SortKey) {
	switch key {
	case SortPriceAsc, SortPriceDesc:
		sort.SliceStable(certs, func(i, j int) bool {
			a, _ := ParsePrice(certs[i].Price)
			b, _ := ParsePrice(certs[j].Price)
			if key == SortPriceDesc {
				return a.GreaterThan(b)
			}
			return a.LessThan(b)
		})
	case SortNameAsc, SortNameDesc:
		c := collate.New(language.Und, collate.Loose)
		sort.SliceStable(certs, func(i, j int) bool {
			cmp := c.CompareString(certs[i].Name, certs[j].Name)
			if key == SortNameDesc {
				return cmp > 0
			}
			return cmp < 0
		})
	}
}

// PriceBounds returns the lowest and highest parseable price, for building the
// default range selector. ok is false when no price parses.
func PriceBounds(certs []Certification) (min, max decimal.Decimal, ok bool) {
	for _, c := range certs {
		p, parsed := ParsePrice(c.Price)
		if !parsed {
			continue
		}
		if !ok {
			min, max, ok = p, p, true
			continue
		}
		if p.LessThan(min) {
			min = p
		}
		if p.GreaterThan(max) {
			max = p
		}
	}
	return min, max, ok
}

// Facets lists the distinct facet values present in the catalog, in first-seen
// order, for rendering filter controls.
type Facets struct {
	Providers    []string `json:"providers"`
	Difficulties []string `json:"difficulties"`
}

// CollectFacets extracts the distinct providers and difficulties.
func CollectFacets(certs []Certification) Facets {
	var f Facets
	seenP := make(map[string]struct{})
	seenD := make(map[string]struct{})
	for _, c := range certs {
		if _, ok := seenP[c.Provider]; !ok {
			seenP[c.Provider] = struct{}{}
			f.Providers = append(f.Providers, c.Provider)
		}
		if _, ok := seenD[c.Difficulty]; !ok {
			seenD[c.Difficulty] = struct{}{}
			f.Difficulties = append(f.Difficulties, c.Difficulty)
		}
	}
	return f
}

// PostFilter is the local part of the blog search: a free-text predicate over
// title, brief, and story. Date range and ordering stay on the server side.
type PostFilter struct {
	Search string
}

// Apply returns the posts whose title, brief, or story contains the search
// text, case-insensitive. An empty search matches everything.
func (f PostFilter) Apply(posts []Post) []Post {
	s := strings.ToLower(strings.TrimSpace(f.Search))
	if s == "" {
		return posts
	}
	out := make([]Post, 0, len(posts))
	for _, p := range posts {
		if strings.Contains(strings.ToLower(p.Title), s) ||
			strings.Contains(strings.ToLower(p.Brief), s) ||
			strings.Contains(strings.ToLower(p.Story), s) {
			out = append(out, p)
		}
	}
	return out
}
