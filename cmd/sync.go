package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fleet-sync/core/reconcile"
	"fleet-sync/feature/integrity"
	"fleet-sync/feature/integrity/checks"
	"fleet-sync/feature/inventory"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var jsonOutput bool

// syncCmd runs one reconciliation of every enabled device class.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Reconcile Mosyle devices into Snipe-IT",
	Long: `Fetches every enabled device class from Mosyle and brings models, assets,
users and checkout state in Snipe-IT in line with it.

Individual device failures are reported but never change the exit status.
The command fails only when it cannot start: invalid configuration, rejected
credentials, an unreachable target or, with sync.validate_references, unknown ids.`,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the full run report as JSON")
	RootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := bootstrap(true)
	if err != nil {
		return err
	}
	defer rt.close()
	logg := rt.logger

	source := rt.source()
	if err := source.Login(ctx); err != nil {
		return fmt.Errorf("source authentication failed: %w", err)
	}
	logg.Info("Authenticated with Mosyle")

	target := rt.target()
	if rt.cfg.Sync.ValidateReferences {
		refs, err := checks.CheckReferences(ctx, target, integrity.References(rt.cfg.Sync))
		if err != nil {
			return err
		}
		if !refs.Matched {
			return fmt.Errorf("configured references missing in Snipe-IT: %v", refs.Missing)
		}
		logg.Info("Validated configured references", zap.Int("checked", refs.Checked))
	} else if err := target.Ping(ctx); err != nil {
		return fmt.Errorf("target unreachable: %w", err)
	}

	rt.openHistory(ctx)

	pipeline := inventory.NewPipeline(source, target, engineOptions(rt.cfg.Sync), logg)
	report, runErr := inventory.NewOrchestrator(pipeline, logg).Run(ctx)

	// Recording outlives an interrupted run.
	recordCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
	defer cancel()
	rt.history.Record(recordCtx, report)

	if jsonOutput {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal report: %w", err)
		}
		fmt.Println(string(data))
	} else {
		printSummary(report)
	}

	return runErr
}

func printSummary(report reconcile.RunReport) {
	s := report.Summary
	fmt.Println("\n=== Sync Summary ===")
	fmt.Printf("Run: %s (%s)\n", report.ID, report.Status)
	fmt.Printf("Devices: %d\n", s.Total)
	fmt.Printf("Created: %d\n", s.Created)
	fmt.Printf("Updated: %d\n", s.Updated)
	fmt.Printf("Unchanged: %d\n", s.Unchanged)
	fmt.Printf("Skipped: %d\n", s.Skipped)
	fmt.Printf("Failed: %d\n", s.Failed)
	fmt.Printf("Checked Out: %d\n", s.CheckedOut)
	fmt.Printf("Checked In: %d\n", s.CheckedIn)
	fmt.Printf("Execution Time: %s\n", report.FinishedAt.Sub(report.StartedAt).String())
	for _, class := range report.Classes {
		if class.Aborted {
			fmt.Printf("Class %s aborted: %s\n", class.Class, class.Error)
		}
	}
}
