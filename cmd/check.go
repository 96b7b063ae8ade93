package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"fleet-sync/feature/integrity"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var fixFlag bool

// checkCmd runs the preflight checks.
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run preflight checks against Mosyle, Snipe-IT and the history stores",
	Long: `Verifies Snipe-IT connectivity and the configured reference ids, Mosyle
authentication, the run history schema and the report bucket.
Checks whose system is not configured are skipped.`,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().BoolVar(&fixFlag, "fix", false, "Create the report bucket when it is missing")
	checkCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the report as JSON")
	RootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	rt, err := bootstrap(false)
	if err != nil {
		return err
	}
	defer rt.close()

	rt.openHistory(ctx)
	svc := integrity.NewService(rt.integrityDeps(rt.source(), rt.target()), rt.logger)

	if fixFlag {
		if exists, err := svc.CheckArchive(ctx); err == nil && !exists {
			if err := svc.FixArchive(ctx); err != nil {
				return fmt.Errorf("failed to fix archive: %w", err)
			}
		}
	}

	report := svc.RunAll(ctx)

	if jsonOutput {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal report: %w", err)
		}
		fmt.Println(string(data))
	} else {
		names := make([]string, 0, len(report.Checks))
		for name := range report.Checks {
			names = append(names, name)
		}
		sort.Strings(names)

		fmt.Println("\n=== Preflight ===")
		for _, name := range names {
			res := report.Checks[name]
			line := fmt.Sprintf("%-8s %s", name, res.Status)
			if res.Error != "" {
				line += ": " + res.Error
			}
			fmt.Println(line)
		}
	}

	if !report.Healthy {
		return errors.New("preflight checks failed")
	}
	rt.logger.Info("Preflight checks passed", zap.Int("checks", len(report.Checks)))
	return nil
}
