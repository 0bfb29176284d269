// Package contentful is a thin client for the Contentful Delivery API:
// collection queries with skip/limit/order and field range filters, plus
// entry-by-id lookup. No retry, no caching beyond the single request.
package contentful

import (
	"strings"
	"time"

	"github.com/go-faster/jx"
)

// Entry is one CMS record: a stable identity plus its raw field map. Typed
// access with defaulting happens through the accessors; downstream code never
// sees raw fields.
type Entry struct {
	ID     string
	Fields map[string]jx.Raw

	// assets maps linked asset IDs to file URLs, resolved from the
	// collection's includes block.
	assets map[string]string
}

// Collection is one page of entries together with the total matching count
// reported by the API.
type Collection struct {
	Total int
	Skip  int
	Limit int
	Items []Entry
}

// Text returns the string value of a field. The default applies when the
// field is absent or not a string.
func (e Entry) Text(name, def string) string {
	raw, ok := e.Fields[name]
	if !ok {
		return def
	}
	s, err := jx.DecodeBytes(raw).Str()
	if err != nil {
		return def
	}
	return s
}

// Time returns a field parsed as an RFC 3339 timestamp or a bare date.
// Absent or unparseable values yield the zero time.
func (e Entry) Time(name string) time.Time {
	s := e.Text(name, "")
	if s == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t
	}
	return time.Time{}
}

// AssetURL resolves a linked asset field to its file URL. Protocol-relative
// URLs get an https scheme. An absent field, broken link, or unresolved asset
// yields the empty string.
func (e Entry) AssetURL(name string) string {
	raw, ok := e.Fields[name]
	if !ok {
		return ""
	}

	var id string
	d := jx.DecodeBytes(raw)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		if key != "sys" {
			return d.Skip()
		}
		return d.Obj(func(d *jx.Decoder, key string) error {
			if key != "id" {
				return d.Skip()
			}
			v, err := d.Str()
			id = v
			return err
		})
	}); err != nil {
		return ""
	}

	url := e.assets[id]
	if url == "" {
		return ""
	}
	if strings.HasPrefix(url, "//") {
		url = "https:" + url
	}
	return url
}

func decodeCollection(data []byte) (*Collection, error) {
	var col Collection
	assets := make(map[string]string)

	d := jx.DecodeBytes(data)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "total":
			n, err := d.Int()
			col.Total = n
			return err
		case "skip":
			n, err := d.Int()
			col.Skip = n
			return err
		case "limit":
			n, err := d.Int()
			col.Limit = n
			return err
		case "items":
			return d.Arr(func(d *jx.Decoder) error {
				e, err := decodeEntry(d)
				if err != nil {
					return err
				}
				col.Items = append(col.Items, e)
				return nil
			})
		case "includes":
			return d.Obj(func(d *jx.Decoder, key string) error {
				if key != "Asset" {
					return d.Skip()
				}
				return d.Arr(func(d *jx.Decoder) error {
					return decodeAsset(d, assets)
				})
			})
		default:
			return d.Skip()
		}
	}); err != nil {
		return nil, err
	}

	for i := range col.Items {
		col.Items[i].assets = assets
	}
	return &col, nil
}

func decodeEntry(d *jx.Decoder) (Entry, error) {
	e := Entry{Fields: make(map[string]jx.Raw)}
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "sys":
			return d.Obj(func(d *jx.Decoder, key string) error {
				if key != "id" {
					return d.Skip()
				}
				id, err := d.Str()
				e.ID = id
				return err
			})
		case "fields":
			return d.Obj(func(d *jx.Decoder, key string) error {
				raw, err := d.Raw()
				if err != nil {
					return err
				}
				e.Fields[key] = raw
				return nil
			})
		default:
			return d.Skip()
		}
	})
	return e, err
}

func decodeAsset(d *jx.Decoder, assets map[string]string) error {
	var id, url string
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "sys":
			return d.Obj(func(d *jx.Decoder, key string) error {
				if key != "id" {
					return d.Skip()
				}
				v, err := d.Str()
				id = v
				return err
			})
		case "fields":
			return d.Obj(func(d *jx.Decoder, key string) error {
				if key != "file" {
					return d.Skip()
				}
				return d.Obj(func(d *jx.Decoder, key string) error {
					if key != "url" {
						return d.Skip()
					}
					v, err := d.Str()
					url = v
					return err
				})
			})
		default:
			return d.Skip()
		}
	}); err != nil {
		return err
	}

	if id != "" && url != "" {
		assets[id] = url
	}
	return nil
}
