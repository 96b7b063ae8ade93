package snipeit

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// FindAssetBySerial looks up a non-deleted asset by serial number.
// A 404, an empty result or an embedded error status all mean not found.
func (c *Client) FindAssetBySerial(ctx context.Context, serial string) (Asset, bool, error) {
	op := "find asset " + serial

	var res listResponse[Asset]
	found, err := c.get(ctx, op, "/hardware/byserial/"+url.PathEscape(serial), url.Values{"deleted": {"false"}}, &res)
	if err != nil || !found {
		return Asset{}, false, err
	}
	if res.Status == "error" || len(res.Rows) == 0 {
		return Asset{}, false, nil
	}

	a := res.Rows[0]
	a.normalize()
	return a, true, nil
}

// CreateAsset creates a hardware record.
func (c *Client) CreateAsset(ctx context.Context, req AssetRequest) (Asset, error) {
	var a Asset
	if err := c.mutate(ctx, "create asset "+req.Serial, http.MethodPost, "/hardware", req, &a); err != nil {
		return Asset{}, err
	}
	if a.ID == 0 {
		return Asset{}, fmt.Errorf("create asset %s: response carried no id", req.Serial)
	}
	a.normalize()
	return a, nil
}

// UpdateAsset patches a hardware record with the full desired payload.
func (c *Client) UpdateAsset(ctx context.Context, id int, req AssetRequest) (Asset, error) {
	var a Asset
	if err := c.mutate(ctx, fmt.Sprintf("update asset %d", id), http.MethodPatch, fmt.Sprintf("/hardware/%d", id), req, &a); err != nil {
		return Asset{}, err
	}
	if a.ID == 0 {
		a.ID = id
	}
	a.normalize()
	return a, nil
}

// CheckinAsset returns an asset from its current assignee.
func (c *Client) CheckinAsset(ctx context.Context, id int, req CheckinRequest) error {
	return c.mutate(ctx, fmt.Sprintf("checkin asset %d", id), http.MethodPost, fmt.Sprintf("/hardware/%d/checkin", id), req, nil)
}

// CheckoutAsset assigns an asset to a user.
func (c *Client) CheckoutAsset(ctx context.Context, id int, req CheckoutRequest) error {
	return c.mutate(ctx, fmt.Sprintf("checkout asset %d", id), http.MethodPost, fmt.Sprintf("/hardware/%d/checkout", id), req, nil)
}
