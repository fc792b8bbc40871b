package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ledgerline/soi-cli/internal/ingest"
	"github.com/ledgerline/soi-cli/internal/report"
)

var (
	validateOut     string
	validateNoStore bool
)

var validateCmd = &cobra.Command{
	Use:   "validate <file.json>",
	Short: "Validate a single extraction document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		engine, err := initEngine()
		if err != nil {
			return err
		}

		doc, err := ingest.LoadDocument(args[0])
		if err != nil {
			return err
		}

		rep := engine.Validate(doc)

		if !validateNoStore {
			st, err := initStore(ctx)
			if err != nil {
				return eris.Wrap(err, "validate: init store")
			}
			defer st.Close() //nolint:errcheck

			run, err := st.CreateRun(ctx, doc.SourceFile, doc.JobID)
			if err != nil {
				return eris.Wrap(err, "validate: create run")
			}
			if err := st.CompleteRun(ctx, run.ID, rep); err != nil {
				return eris.Wrap(err, "validate: persist run")
			}
			zap.L().Info("run persisted", zap.String("run_id", run.ID))
		}

		if validateOut != "" {
			w := report.NewWriter(validateOut, nil)
			path, err := w.WriteDocument(rep)
			if err != nil {
				return err
			}
			zap.L().Info("report written", zap.String("path", path))
			return nil
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	},
}

func init() {
	validateCmd.Flags().StringVar(&validateOut, "out", "", "write the report to this directory instead of stdout")
	validateCmd.Flags().BoolVar(&validateNoStore, "no-store", false, "skip persisting the run")
	rootCmd.AddCommand(validateCmd)
}
