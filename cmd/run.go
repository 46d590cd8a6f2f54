package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/company-research/internal/model"
)

var runExport bool

var runCmd = &cobra.Command{
	Use:   "run <domain>",
	Short: "Research a single company",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx, "run")
		if err != nil {
			return err
		}
		defer env.Close()

		run, err := env.research(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "research run")
		}

		formatOutcomes(os.Stderr, run.Result.Outcomes)

		if runExport && run.Result.Profile != nil {
			path, err := env.Reports.Write([]*model.CompanyProfile{run.Result.Profile})
			if err != nil {
				return err
			}
			zap.L().Info("report exported", zap.String("path", path))
		}

		// Print run JSON to stdout
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(run)
	},
}

func init() {
	runCmd.Flags().BoolVar(&runExport, "export", false, "also write an xlsx report")
	rootCmd.AddCommand(runCmd)
}

// formatOutcomes writes the per-field status table to w.
func formatOutcomes(out io.Writer, outcomes []model.FieldOutcome) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "FIELD\tTIER\tSTATUS\tATTEMPTS\tVALUE")
	_, _ = fmt.Fprintln(w, "-----\t----\t------\t--------\t-----")
	for _, o := range outcomes {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", o.Field, o.Tier, o.Status, o.Attempts, o.Preview)
	}
	_ = w.Flush()
}
