package mosyle

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"fleet-sync/core/failure"
	"fleet-sync/core/reconcile"
	"fleet-sync/core/utils"
)

// maxPages guards against a server that never returns a short page.
const maxPages = 1000

// deviceColumns are the only fields the sync reads.
var deviceColumns = []string{
	"serial_number",
	"device_name",
	"device_model_name",
	"device_model",
	"asset_tag",
	"open_direct_device_link",
	"username",
	"useremail",
}

// Device is a Mosyle device record as returned by listdevices.
type Device struct {
	SerialNumber    string `json:"serial_number"`
	DeviceName      string `json:"device_name"`
	DeviceModelName string `json:"device_model_name"`
	DeviceModel     string `json:"device_model"`
	AssetTag        string `json:"asset_tag"`
	DirectLink      string `json:"open_direct_device_link"`
	Username        string `json:"username"`
	UserEmail       string `json:"useremail"`
}

// ToRecord converts the wire record into the sync's device record.
func (d Device) ToRecord() reconcile.Device {
	return reconcile.Device{
		SerialNumber: strings.TrimSpace(d.SerialNumber),
		Name:         d.DeviceName,
		ModelName:    strings.TrimSpace(d.DeviceModelName),
		ModelNumber:  d.DeviceModel,
		AssetTag:     d.AssetTag,
		Link:         d.DirectLink,
		OwnerName:    d.Username,
		OwnerEmail:   d.UserEmail,
	}
}

type listRequest struct {
	AccessToken string      `json:"accessToken"`
	Options     listOptions `json:"options"`
}

type listOptions struct {
	OS              string   `json:"os"`
	Page            int      `json:"page"`
	SpecificColumns []string `json:"specific_columns"`
}

type listResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	Response struct {
		Devices []Device `json:"devices"`
		// Rows and PageSize arrive as numbers or strings depending on the endpoint version.
		Rows     any `json:"rows"`
		PageSize any `json:"page_size"`
	} `json:"response"`
}

// ListDevices returns every device of the given class, following pagination.
func (c *Client) ListDevices(ctx context.Context, class reconcile.DeviceClass) ([]reconcile.Device, error) {
	op := fmt.Sprintf("list %s devices", class)
	jwt, err := c.session()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var devices []reconcile.Device
	for page := 1; page <= maxPages; page++ {
		req := listRequest{
			AccessToken: c.cfg.AccessToken,
			Options: listOptions{
				OS:              string(class),
				Page:            page,
				SpecificColumns: deviceColumns,
			},
		}

		resp, body, err := c.post(ctx, op, "/listdevices", req, jwt)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusOK {
			return nil, failure.NewTransport(op, resp.StatusCode, string(body))
		}

		var res listResponse
		if err := json.Unmarshal(body, &res); err != nil {
			return nil, &failure.TransportError{Op: op, StatusCode: resp.StatusCode, Body: string(body), Err: err}
		}

		switch strings.ToUpper(res.Status) {
		case "OK":
		case "DEVICES_NOTFOUND":
			return devices, nil
		default:
			msg := res.Message
			if msg == "" {
				msg = res.Status
			}
			return nil, failure.NewLogical(op, msg)
		}

		batch := res.Response.Devices
		for _, d := range batch {
			devices = append(devices, d.ToRecord())
		}

		pageSize := utils.ToInt(res.Response.PageSize)
		total := utils.ToInt(res.Response.Rows)
		if len(batch) == 0 || (pageSize > 0 && len(batch) < pageSize) || (total > 0 && len(devices) >= total) {
			return devices, nil
		}
	}
	return nil, fmt.Errorf("%s: exceeded %d pages", op, maxPages)
}
