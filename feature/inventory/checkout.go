package inventory

import (
	"context"
	"fmt"

	"fleet-sync/core/failure"
	"fleet-sync/core/reconcile"
	"fleet-sync/core/snipeit"

	"go.uber.org/zap"
)

const (
	// CheckinNote is attached to every automated check-in.
	CheckinNote = "Automated checkin by Mosyle->Snipe sync"
	// CheckoutNote is attached to every automated checkout.
	CheckoutNote = "Automated checkout by Mosyle->Snipe sync"
)

// CheckoutCoordinator converges an asset's assignment to the device's owner.
// An asset always passes through checked-in before it is checked out.
type CheckoutCoordinator struct {
	target      Target
	users       *UserResolver
	statusID    int
	createUsers bool
	logger      *zap.Logger
}

// NewCheckoutCoordinator creates a checkout coordinator.
func NewCheckoutCoordinator(target Target, users *UserResolver, statusID int, createUsers bool, logger *zap.Logger) *CheckoutCoordinator {
	return &CheckoutCoordinator{
		target:      target,
		users:       users,
		statusID:    statusID,
		createUsers: createUsers,
		logger:      logger,
	}
}

// Checkin checks the asset in. An asset that is already checked in is not an error.
func (c *CheckoutCoordinator) Checkin(ctx context.Context, assetID int) error {
	err := c.target.CheckinAsset(ctx, assetID, snipeit.CheckinRequest{
		StatusID: c.statusID,
		Note:     CheckinNote,
	})
	if failure.IsAlreadyCheckedIn(err) {
		c.logger.Debug("Asset already checked in", zap.Int("asset_id", assetID))
		return nil
	}
	return err
}

// Checkout checks the asset in and then out to userID.
func (c *CheckoutCoordinator) Checkout(ctx context.Context, assetID, userID int) error {
	if err := c.Checkin(ctx, assetID); err != nil {
		return err
	}
	return c.target.CheckoutAsset(ctx, assetID, snipeit.CheckoutRequest{
		CheckoutToType: "user",
		AssignedUser:   userID,
		StatusID:       c.statusID,
		Note:           CheckoutNote,
	})
}

// Reconcile applies the checkout policy for device to its asset and returns
// the transition taken and the resolved user id.
func (c *CheckoutCoordinator) Reconcile(ctx context.Context, device reconcile.Device, assetID int) (reconcile.CheckoutAction, int, error) {
	l := c.logger.With(zap.String("serial", device.SerialNumber), zap.Int("asset_id", assetID))

	if !device.HasOwner() {
		if err := c.Checkin(ctx, assetID); err != nil {
			return reconcile.CheckoutNone, 0, err
		}
		l.Debug("Device has no owner, asset checked in")
		return reconcile.CheckoutCheckedIn, 0, nil
	}

	first, last := SplitOwnerName(device.OwnerName)
	userID, err := c.users.Resolve(ctx, Identity{
		FirstName: first,
		LastName:  last,
		Username:  device.OwnerEmail,
		Email:     device.OwnerEmail,
	}, c.createUsers)
	if err != nil {
		return reconcile.CheckoutNone, 0, err
	}
	if userID == 0 {
		if err := c.Checkin(ctx, assetID); err != nil {
			return reconcile.CheckoutNone, 0, err
		}
		return reconcile.CheckoutCheckedIn, 0, nil
	}

	current, found, err := c.target.FindAssetBySerial(ctx, device.SerialNumber)
	if err != nil {
		return reconcile.CheckoutNone, userID, err
	}
	if !found {
		return reconcile.CheckoutNone, userID, fmt.Errorf("asset %s: %w", device.SerialNumber, failure.ErrNotFound)
	}

	if assignedTo(current, userID) {
		l.Info("Device is already correctly checked out", zap.Int("user_id", userID))
		return reconcile.CheckoutKept, userID, nil
	}

	l.Info("Checking device out", zap.String("email", device.OwnerEmail), zap.Int("user_id", userID))
	if err := c.Checkout(ctx, assetID, userID); err != nil {
		return reconcile.CheckoutNone, userID, err
	}
	return reconcile.CheckoutAssigned, userID, nil
}

func assignedTo(a snipeit.Asset, userID int) bool {
	if a.AssignedTo == nil {
		return false
	}
	if a.AssignedTo.Type != "" && a.AssignedTo.Type != "user" {
		return false
	}
	return a.AssignedTo.ID == userID
}
