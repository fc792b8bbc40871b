package main

import (
	"context"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ledgerline/soi-cli/internal/ingest"
	"github.com/ledgerline/soi-cli/internal/report"
	"github.com/ledgerline/soi-cli/internal/store"
	"github.com/ledgerline/soi-cli/internal/validate"
)

var (
	batchLimit   int
	batchOut     string
	batchNoStore bool
)

var batchCmd = &cobra.Command{
	Use:   "batch <dir>",
	Short: "Validate a directory of extraction documents",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		engine, err := initEngine()
		if err != nil {
			return err
		}

		var st store.Store
		if !batchNoStore {
			st, err = initStore(ctx)
			if err != nil {
				return eris.Wrap(err, "batch: init store")
			}
			defer st.Close() //nolint:errcheck
		}

		paths, err := ingest.ListInputs(args[0])
		if err != nil {
			return err
		}
		if batchLimit > 0 && len(paths) > batchLimit {
			paths = paths[:batchLimit]
		}

		results, err := processBatch(ctx, engine, st, paths, cfg.Batch.MaxConcurrent)
		if err != nil {
			return err
		}

		outDir := batchOut
		if outDir == "" {
			outDir = cfg.Report.Dir
		}
		w := report.NewWriter(outDir, cfg.Report.Formats)
		written, err := w.WriteBatch(results)
		if err != nil {
			return err
		}
		zap.L().Info("batch reports written", zap.Strings("paths", written))
		return nil
	},
}

func init() {
	batchCmd.Flags().IntVar(&batchLimit, "limit", 0, "max number of files to process (0 = all)")
	batchCmd.Flags().StringVar(&batchOut, "out", "", "report output directory (default from config)")
	batchCmd.Flags().BoolVar(&batchNoStore, "no-store", false, "skip persisting runs")
	rootCmd.AddCommand(batchCmd)
}

// processBatch validates the given files concurrently. Individual failures
// do not abort the batch; they become failed runs and load-error entries
// in the batch report.
func processBatch(ctx context.Context, engine validate.Engine, st store.Store, paths []string, concurrency int) ([]report.FileResult, error) {
	if concurrency <= 0 {
		concurrency = 1
	}

	zap.L().Info("processing batch",
		zap.Int("files", len(paths)),
		zap.Int("concurrency", concurrency),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	var succeeded, failed atomic.Int64
	var mu sync.Mutex
	results := make([]report.FileResult, len(paths))

	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			log := zap.L().With(zap.String("file", path))

			res := validateOne(gctx, engine, st, path)
			if res.Err != "" {
				failed.Add(1)
				log.Error("validation failed", zap.String("error", res.Err))
			} else {
				succeeded.Add(1)
				log.Info("validation complete",
					zap.Int("errors", res.Report.Summary.ErrorCount),
					zap.Int("warnings", res.Report.Summary.WarningCount),
					zap.Bool("trustworthy", res.Report.Summary.Trustworthy),
				)
			}

			mu.Lock()
			results[i] = res
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "batch processing")
	}

	zap.L().Info("batch complete",
		zap.Int64("succeeded", succeeded.Load()),
		zap.Int64("failed", failed.Load()),
	)
	return results, nil
}

// validateOne loads and validates one file, persisting the run when a
// store is configured.
func validateOne(ctx context.Context, engine validate.Engine, st store.Store, path string) report.FileResult {
	doc, err := ingest.LoadDocument(path)
	if err != nil {
		if st != nil {
			if run, cErr := st.CreateRun(ctx, path, ""); cErr == nil {
				_ = st.FailRun(ctx, run.ID, err)
			}
		}
		return report.FileResult{SourceFile: path, Err: err.Error()}
	}

	rep := engine.Validate(doc)

	if st != nil {
		run, err := st.CreateRun(ctx, doc.SourceFile, doc.JobID)
		if err != nil {
			zap.L().Warn("create run", zap.Error(err), zap.String("file", doc.SourceFile))
		} else if err := st.CompleteRun(ctx, run.ID, rep); err != nil {
			zap.L().Warn("persist run", zap.Error(err), zap.String("run_id", run.ID))
		}
	}

	return report.FileResult{SourceFile: doc.SourceFile, Report: rep}
}
