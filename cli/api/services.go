package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/salesdesk/salesdesk/engine/listing"
)

// queryFor renders listing params for a server-side endpoint.
func queryFor(p listing.Params) map[string]string {
	q := map[string]string{}
	if p.SearchKeyword != "" {
		q["searchKeyword"] = p.SearchKeyword
	}
	if p.Status != nil {
		q["status"] = strconv.Itoa(*p.Status)
	}
	if p.Page > 0 {
		q["page"] = strconv.Itoa(p.Page)
	}
	if p.PageSize > 0 {
		q["pageSize"] = strconv.Itoa(p.PageSize)
	}
	if p.IsDescending {
		q["isDescending"] = "true"
	}
	return q
}

func fetchList[T any](
	ctx context.Context,
	c *Client,
	op, path string,
	query map[string]string,
	pageSize int,
) (listing.Result[T], error) {
	body, err := c.do(ctx, op, http.MethodGet, path, query, nil)
	if err != nil {
		return listing.Result[T]{}, err
	}
	res, err := DecodeCollection[T](body, pageSize)
	if err != nil {
		return listing.Result[T]{}, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

func call[T any](ctx context.Context, c *Client, op, method, path string, body any) (T, error) {
	var out T
	raw, err := c.do(ctx, op, method, path, nil, body)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("%s: decode response: %w", op, err)
	}
	return out, nil
}

func (c *Client) remove(ctx context.Context, op, path string) error {
	_, err := c.do(ctx, op, http.MethodDelete, path, nil, nil)
	return err
}

func resourcePath(base, id string, rest ...string) string {
	p := base + "/" + url.PathEscape(id)
	for _, r := range rest {
		p += "/" + r
	}
	return p
}
