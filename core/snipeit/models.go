package snipeit

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// FindModelByName searches models by name. Any non-empty result is a match;
// a row whose name equals name (ignoring case) is preferred over the first row.
func (c *Client) FindModelByName(ctx context.Context, name string) (Model, bool, error) {
	op := "find model " + name
	query := url.Values{
		"search": {name},
		"limit":  {"10"},
		"offset": {"0"},
		"sort":   {"created_at"},
		"order":  {"asc"},
	}

	var res listResponse[Model]
	found, err := c.get(ctx, op, "/models", query, &res)
	if err != nil || !found || len(res.Rows) == 0 {
		return Model{}, false, err
	}
	for _, m := range res.Rows {
		if strings.EqualFold(m.Name, name) {
			return m, true, nil
		}
	}
	return res.Rows[0], true, nil
}

// CreateModel creates a model and returns the stored record.
func (c *Client) CreateModel(ctx context.Context, req ModelRequest) (Model, error) {
	var m Model
	if err := c.mutate(ctx, "create model "+req.Name, http.MethodPost, "/models", req, &m); err != nil {
		return Model{}, err
	}
	if m.ID == 0 {
		return Model{}, fmt.Errorf("create model %s: response carried no id", req.Name)
	}
	return m, nil
}
