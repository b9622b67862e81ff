package api

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/salesdesk/salesdesk/engine/listing"
	"github.com/tidwall/gjson"
)

var (
	itemKeys      = []string{"items", "data", "results"}
	metaBlockKeys = []string{"pagination"}
)

// DecodeCollection normalizes a listing body into a Result.
//
// The body may be a bare array or an envelope. Envelope keys are matched
// without regard to case, so {"Items", "CurrentPage"} and {"items",
// "pagination": {"currentPage"}} decode the same way. For a bare array the
// paging fields are synthesized from pageSize and Paged is false.
func DecodeCollection[T any](body []byte, pageSize int) (listing.Result[T], error) {
	var res listing.Result[T]
	if !gjson.ValidBytes(body) {
		return res, fmt.Errorf("decode collection: invalid JSON")
	}
	root := gjson.ParseBytes(body)
	var raw gjson.Result
	switch {
	case root.IsArray():
		raw = root
	case root.IsObject():
		raw = fieldFold(root, itemKeys...)
		if raw.Exists() && raw.Type != gjson.Null && !raw.IsArray() {
			return res, fmt.Errorf("decode collection: items is not an array")
		}
	default:
		return res, fmt.Errorf("decode collection: unexpected %s body", root.Type)
	}
	res.Items = []T{}
	if raw.IsArray() {
		if err := json.Unmarshal([]byte(raw.Raw), &res.Items); err != nil {
			return res, fmt.Errorf("decode collection items: %w", err)
		}
	}
	if root.IsObject() {
		meta := root
		if block := fieldFold(root, metaBlockKeys...); block.IsObject() {
			meta = block
		}
		current := fieldFold(meta, "currentPage")
		pages := fieldFold(meta, "totalPages")
		count := fieldFold(meta, "totalCount")
		if current.Exists() || pages.Exists() || count.Exists() {
			res.Paged = true
			res.CurrentPage = int(current.Int())
			res.TotalPages = int(pages.Int())
			res.TotalCount = int(count.Int())
			if !count.Exists() {
				res.TotalCount = len(res.Items)
			}
			if res.TotalPages < 1 {
				res.TotalPages = 1
			}
			return res, nil
		}
	}
	res.CurrentPage = 1
	res.TotalCount = len(res.Items)
	if !listing.ValidPageSize(pageSize) {
		pageSize = listing.DefaultPageSize
	}
	res.TotalPages = listing.TotalPages(res.TotalCount, pageSize)
	return res, nil
}

// fieldFold returns the first member of obj whose key equals one of names,
// ignoring case.
func fieldFold(obj gjson.Result, names ...string) gjson.Result {
	var found gjson.Result
	obj.ForEach(func(key, value gjson.Result) bool {
		for _, n := range names {
			if strings.EqualFold(key.String(), n) {
				found = value
				return false
			}
		}
		return true
	})
	return found
}
