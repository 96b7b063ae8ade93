package checks

import (
	"context"
	"fmt"

	"fleet-sync/core/snipeit"
)

// ReferenceChecker is the part of the target client the reference check uses.
type ReferenceChecker interface {
	Ping(ctx context.Context) error
	Exists(ctx context.Context, kind snipeit.ReferenceKind, id int) (bool, error)
}

// Reference is a configured id that must exist in the target.
type Reference struct {
	Name string                `json:"name"`
	Kind snipeit.ReferenceKind `json:"kind"`
	ID   int                   `json:"id"`
}

// ReferenceReport lists the configured references the target does not know.
type ReferenceReport struct {
	Matched bool     `json:"matched"`
	Checked int      `json:"checked"`
	Missing []string `json:"missing"`
}

// CheckReferences pings the target and then looks up every reference.
// Connectivity problems are returned as errors; absent records are reported.
func CheckReferences(ctx context.Context, target ReferenceChecker, refs []Reference) (*ReferenceReport, error) {
	if err := target.Ping(ctx); err != nil {
		return nil, fmt.Errorf("target unreachable: %w", err)
	}

	report := &ReferenceReport{Matched: true, Missing: []string{}}
	for _, ref := range refs {
		ok, err := target.Exists(ctx, ref.Kind, ref.ID)
		if err != nil {
			return nil, fmt.Errorf("check %s: %w", ref.Name, err)
		}
		report.Checked++
		if !ok {
			report.Missing = append(report.Missing, fmt.Sprintf("%s (%s %d)", ref.Name, ref.Kind, ref.ID))
			report.Matched = false
		}
	}
	return report, nil
}
