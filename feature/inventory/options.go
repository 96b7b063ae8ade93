package inventory

import (
	"time"

	"fleet-sync/core/reconcile"
)

// ClassProfile defines how one device class is synchronised.
type ClassProfile struct {
	Class reconcile.DeviceClass
	// CategoryID is the target category assigned to models created for this class.
	CategoryID int
	// Checkout enables ownership reconciliation for the class.
	Checkout bool
}

// IOSProfile returns the profile for phones and tablets.
func IOSProfile(categoryID int) ClassProfile {
	return ClassProfile{Class: reconcile.ClassIOS, CategoryID: categoryID, Checkout: true}
}

// MacProfile returns the profile for desktops and laptops.
func MacProfile(categoryID int) ClassProfile {
	return ClassProfile{Class: reconcile.ClassMac, CategoryID: categoryID, Checkout: true}
}

// TVOSProfile returns the profile for set-top devices. These are never checked out.
func TVOSProfile(categoryID int) ClassProfile {
	return ClassProfile{Class: reconcile.ClassTVOS, CategoryID: categoryID, Checkout: false}
}

// Options carries the values the engine consumes for a run.
type Options struct {
	ManufacturerID  int
	SupplierID      int
	DefaultStatusID int
	// CreateUsers permits creating a target user for an unknown owner.
	CreateUsers bool
	// CheckoutDevices enables checkout reconciliation for classes that support it.
	CheckoutDevices bool
	// RateLimit is the pause after each asset reconcile.
	RateLimit time.Duration
	// Workers bounds per-device concurrency within a class. Values below 2 run sequentially.
	Workers int
	// Classes are the enabled profiles, processed in order.
	Classes []ClassProfile
}
