package inventory

import (
	"context"

	"fleet-sync/core/mosyle"
	"fleet-sync/core/reconcile"
	"fleet-sync/core/snipeit"
)

// Target is the asset-tracking system the engine writes to.
// Lookups report absence with found=false; errors are transport or logical failures.
type Target interface {
	FindUserByEmail(ctx context.Context, email string) (snipeit.User, bool, error)
	CreateUser(ctx context.Context, req snipeit.UserRequest) (snipeit.User, error)
	FindModelByName(ctx context.Context, name string) (snipeit.Model, bool, error)
	CreateModel(ctx context.Context, req snipeit.ModelRequest) (snipeit.Model, error)
	FindAssetBySerial(ctx context.Context, serial string) (snipeit.Asset, bool, error)
	CreateAsset(ctx context.Context, req snipeit.AssetRequest) (snipeit.Asset, error)
	UpdateAsset(ctx context.Context, id int, req snipeit.AssetRequest) (snipeit.Asset, error)
	CheckinAsset(ctx context.Context, id int, req snipeit.CheckinRequest) error
	CheckoutAsset(ctx context.Context, id int, req snipeit.CheckoutRequest) error
}

// Source is the device-management directory the engine reads from.
type Source interface {
	ListDevices(ctx context.Context, class reconcile.DeviceClass) ([]reconcile.Device, error)
}

var (
	_ Target = (*snipeit.Client)(nil)
	_ Source = (*mosyle.Client)(nil)
)
