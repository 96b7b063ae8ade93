package reconcile

import (
	"strings"
	"time"
)

// DeviceClass identifies a category of managed endpoint in the source directory.
type DeviceClass string

const (
	// ClassIOS covers phones and tablets.
	ClassIOS DeviceClass = "ios"
	// ClassMac covers desktops and laptops.
	ClassMac DeviceClass = "mac"
	// ClassTVOS covers set-top and media devices.
	ClassTVOS DeviceClass = "tvos"
)

// Device is a source directory record, read-only for the duration of a run.
type Device struct {
	// SerialNumber is the cross-system join key.
	SerialNumber string `json:"serial_number"`
	// Name is the display name of the device.
	Name string `json:"name"`
	// ModelName is the marketing model name, e.g. "iPad Air (5th generation)".
	ModelName string `json:"model_name"`
	// ModelNumber is the hardware model identifier, e.g. "iPad13,16".
	ModelNumber string `json:"model_number"`
	// AssetTag is the organisation's inventory tag.
	AssetTag string `json:"asset_tag"`
	// Link is a free-text reference back to the device in the source directory.
	Link string `json:"link"`
	// OwnerName is the display name of the assigned user, if any.
	OwnerName string `json:"owner_name,omitempty"`
	// OwnerEmail is the email of the assigned user, if any.
	OwnerEmail string `json:"owner_email,omitempty"`
}

// HasOwner reports whether the device carries a non-blank owner email.
func (d Device) HasOwner() bool {
	return strings.TrimSpace(d.OwnerEmail) != ""
}

// Action describes what happened to a single device during a run.
type Action string

const (
	ActionCreated   Action = "created"
	ActionUpdated   Action = "updated"
	ActionUnchanged Action = "unchanged"
	ActionSkipped   Action = "skipped"
	ActionFailed    Action = "failed"
)

// CheckoutAction describes the checkout transition applied to an asset.
type CheckoutAction string

const (
	CheckoutNone      CheckoutAction = ""
	CheckoutCheckedIn CheckoutAction = "checked_in"
	CheckoutAssigned  CheckoutAction = "checked_out"
	CheckoutKept      CheckoutAction = "already_assigned"
)

// DeviceResult is the outcome of reconciling one device.
type DeviceResult struct {
	SerialNumber string         `json:"serial_number"`
	AssetID      int            `json:"asset_id,omitempty"`
	UserID       int            `json:"user_id,omitempty"`
	Action       Action         `json:"action"`
	Checkout     CheckoutAction `json:"checkout,omitempty"`
	// Reason explains skipped and failed results.
	Reason string `json:"reason,omitempty"`
	// ErrorKind classifies the failure for failed results.
	ErrorKind string `json:"error_kind,omitempty"`
}

// ClassReport summarises one device class pipeline execution.
type ClassReport struct {
	Class DeviceClass `json:"class"`
	// Aborted is set when a fail-fast phase stopped the pipeline.
	Aborted bool   `json:"aborted"`
	Error   string `json:"error,omitempty"`
	// DuplicateSerials lists serial numbers seen more than once in the source list.
	DuplicateSerials []string       `json:"duplicate_serials,omitempty"`
	Devices          []DeviceResult `json:"devices"`
	Summary          Summary        `json:"summary"`
}

// Summary provides aggregate counts for a class or a whole run.
type Summary struct {
	Total     int `json:"total"`
	Created   int `json:"created"`
	Updated   int `json:"updated"`
	Unchanged int `json:"unchanged"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
	// CheckedOut counts checkout transitions to a new assignee.
	CheckedOut int `json:"checked_out"`
	// CheckedIn counts check-in convergence calls.
	CheckedIn int `json:"checked_in"`
}

// Add counts a device result.
func (s *Summary) Add(r DeviceResult) {
	s.Total++
	switch r.Action {
	case ActionCreated:
		s.Created++
	case ActionUpdated:
		s.Updated++
	case ActionUnchanged:
		s.Unchanged++
	case ActionSkipped:
		s.Skipped++
	case ActionFailed:
		s.Failed++
	}
	switch r.Checkout {
	case CheckoutAssigned:
		s.CheckedOut++
	case CheckoutCheckedIn:
		s.CheckedIn++
	}
}

// Merge adds the counters of other into s.
func (s *Summary) Merge(other Summary) {
	s.Total += other.Total
	s.Created += other.Created
	s.Updated += other.Updated
	s.Unchanged += other.Unchanged
	s.Skipped += other.Skipped
	s.Failed += other.Failed
	s.CheckedOut += other.CheckedOut
	s.CheckedIn += other.CheckedIn
}

// RunStatus is the overall state of a run.
type RunStatus string

const (
	RunSucceeded RunStatus = "succeeded"
	// RunPartial means at least one device or class failed.
	RunPartial RunStatus = "partial"
)

// RunReport is the structured trail of one orchestrator run.
type RunReport struct {
	ID         string        `json:"id"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Status     RunStatus     `json:"status"`
	Classes    []ClassReport `json:"classes"`
	Summary    Summary       `json:"summary"`
}

// Finalize computes the run summary and status from the class reports.
func (r *RunReport) Finalize(finished time.Time) {
	r.FinishedAt = finished
	r.Summary = Summary{}
	r.Status = RunSucceeded
	for _, c := range r.Classes {
		r.Summary.Merge(c.Summary)
		if c.Aborted || c.Summary.Failed > 0 {
			r.Status = RunPartial
		}
	}
}
