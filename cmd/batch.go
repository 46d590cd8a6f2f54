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

	"github.com/sells-group/company-research/internal/model"
	"github.com/sells-group/company-research/internal/report"
)

var (
	batchLimit    int
	batchFile     string
	batchNoExport bool
)

var batchCmd = &cobra.Command{
	Use:   "batch [domain...]",
	Short: "Research many companies in parallel",
	Long:  "Researches domains given as arguments or read from --file (one per line, or the domain column of an xlsx sheet). Each run uses its own browser session. Profiles are exported to one combined xlsx report.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		domains := append([]string(nil), args...)
		if batchFile != "" {
			fromFile, err := report.ReadDomains(batchFile)
			if err != nil {
				return eris.Wrap(err, "read domain list")
			}
			domains = append(domains, fromFile...)
		}
		if len(domains) == 0 {
			return eris.New("batch: no domains given (pass arguments or --file)")
		}

		env, err := initEnv(ctx, "batch")
		if err != nil {
			return err
		}
		defer env.Close()

		profiles, err := processBatch(ctx, domains, batchLimit, cfg.Batch.MaxConcurrentCompanies, func(ctx context.Context, domain string) (*model.Run, error) {
			return env.research(ctx, domain)
		})
		if err != nil {
			return err
		}

		if batchNoExport || len(profiles) == 0 {
			return nil
		}
		_, err = env.Reports.Write(profiles)
		return err
	},
}

func init() {
	batchCmd.Flags().IntVar(&batchLimit, "limit", 100, "max number of domains to process")
	batchCmd.Flags().StringVar(&batchFile, "file", "", "file with domains (.txt or .xlsx)")
	batchCmd.Flags().BoolVar(&batchNoExport, "no-export", false, "skip the combined xlsx report")
	rootCmd.AddCommand(batchCmd)
}

// researchFunc is the callback signature for researching one domain.
type researchFunc func(ctx context.Context, domain string) (*model.Run, error)

// processBatch applies limit, then researches domains concurrently. Profiles
// are returned in input order; failed runs are logged and skipped.
func processBatch(ctx context.Context, domains []string, limit, concurrency int, research researchFunc) ([]*model.CompanyProfile, error) {
	if len(domains) == 0 {
		zap.L().Info("no domains to process")
		return nil, nil
	}

	// Apply limit
	if limit > 0 && len(domains) > limit {
		domains = domains[:limit]
	}
	if concurrency < 1 {
		concurrency = 1
	}

	zap.L().Info("processing batch",
		zap.Int("domains", len(domains)),
		zap.Int("concurrency", concurrency),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	var succeeded, failed atomic.Int64
	var mu sync.Mutex
	profiles := make([]*model.CompanyProfile, len(domains))

	for i, domain := range domains {
		g.Go(func() error {
			log := zap.L().With(zap.String("domain", domain))

			run, err := research(gctx, domain)
			if err != nil {
				failed.Add(1)
				log.Error("research failed", zap.Error(err))
				return nil // don't abort batch on individual failure
			}

			succeeded.Add(1)
			if run.Result != nil && run.Result.Profile != nil {
				mu.Lock()
				profiles[i] = run.Result.Profile
				mu.Unlock()
			}
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

	out := make([]*model.CompanyProfile, 0, len(profiles))
	for _, p := range profiles {
		if p != nil {
			out = append(out, p)
		}
	}
	return out, nil
}
