package models

import (
	"strings"
	"time"

	"fleet-sync/core/reconcile"
)

// SyncRun is one orchestrator run.
type SyncRun struct {
	ID         string    `gorm:"column:id;primaryKey;size:36" json:"id"`
	StartedAt  time.Time `gorm:"column:started_at;index" json:"started_at"`
	FinishedAt time.Time `gorm:"column:finished_at" json:"finished_at"`
	Status     string    `gorm:"column:status;size:16" json:"status"`
	// AbortedClasses is a comma separated list of classes that did not complete.
	AbortedClasses string `gorm:"column:aborted_classes;size:64" json:"aborted_classes,omitempty"`
	Total          int    `gorm:"column:total" json:"total"`
	Created        int    `gorm:"column:created" json:"created"`
	Updated        int    `gorm:"column:updated" json:"updated"`
	Unchanged      int    `gorm:"column:unchanged" json:"unchanged"`
	Skipped        int    `gorm:"column:skipped" json:"skipped"`
	Failed         int    `gorm:"column:failed" json:"failed"`
	CheckedOut     int    `gorm:"column:checked_out" json:"checked_out"`
	CheckedIn      int    `gorm:"column:checked_in" json:"checked_in"`

	Outcomes []DeviceOutcome `gorm:"foreignKey:RunID" json:"outcomes,omitempty"`
}

// TableName overrides the table name.
func (SyncRun) TableName() string {
	return "sync_runs"
}

// DeviceOutcome is the result for one device in a run.
type DeviceOutcome struct {
	ID           uint   `gorm:"column:id;primaryKey" json:"-"`
	RunID        string `gorm:"column:run_id;size:36;index" json:"run_id"`
	Class        string `gorm:"column:class;size:8" json:"class"`
	SerialNumber string `gorm:"column:serial_number;size:64;index" json:"serial_number"`
	Action       string `gorm:"column:action;size:16" json:"action"`
	Checkout     string `gorm:"column:checkout;size:16" json:"checkout,omitempty"`
	AssetID      int    `gorm:"column:asset_id" json:"asset_id,omitempty"`
	UserID       int    `gorm:"column:user_id" json:"user_id,omitempty"`
	ErrorKind    string `gorm:"column:error_kind;size:16" json:"error_kind,omitempty"`
	Reason       string `gorm:"column:reason;type:text" json:"reason,omitempty"`
}

// TableName overrides the table name.
func (DeviceOutcome) TableName() string {
	return "device_outcomes"
}

// Tables lists the tables the history feature owns.
func Tables() []string {
	return []string{SyncRun{}.TableName(), DeviceOutcome{}.TableName()}
}

// FromReport flattens a run report into rows.
func FromReport(report reconcile.RunReport) SyncRun {
	run := SyncRun{
		ID:         report.ID,
		StartedAt:  report.StartedAt,
		FinishedAt: report.FinishedAt,
		Status:     string(report.Status),
		Total:      report.Summary.Total,
		Created:    report.Summary.Created,
		Updated:    report.Summary.Updated,
		Unchanged:  report.Summary.Unchanged,
		Skipped:    report.Summary.Skipped,
		Failed:     report.Summary.Failed,
		CheckedOut: report.Summary.CheckedOut,
		CheckedIn:  report.Summary.CheckedIn,
	}

	var aborted []string
	for _, class := range report.Classes {
		if class.Aborted {
			aborted = append(aborted, string(class.Class))
		}
		for _, d := range class.Devices {
			run.Outcomes = append(run.Outcomes, DeviceOutcome{
				RunID:        report.ID,
				Class:        string(class.Class),
				SerialNumber: d.SerialNumber,
				Action:       string(d.Action),
				Checkout:     string(d.Checkout),
				AssetID:      d.AssetID,
				UserID:       d.UserID,
				ErrorKind:    d.ErrorKind,
				Reason:       d.Reason,
			})
		}
	}
	run.AbortedClasses = strings.Join(aborted, ",")
	return run
}
