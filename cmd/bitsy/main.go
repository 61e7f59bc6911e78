// Command bitsy searches, forever, for short straight-line programs over
// 32-bit words that approximate sRGB alpha-compositing more closely than
// any program found so far.
package main

import (
	"context"
	"errors"
	"math/rand"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/distractedlambda/bitsy/internal/corpus"
	"github.com/distractedlambda/bitsy/internal/decider"
	"github.com/distractedlambda/bitsy/internal/program"
	"github.com/distractedlambda/bitsy/internal/report"
	"github.com/distractedlambda/bitsy/internal/search"
)

// seedEnvVar is the environment variable bitsy reads an RNG seed override
// from, per the external interfaces design.
const seedEnvVar = "BITSY_SEED"

type flags struct {
	batches        int
	maxOps         int
	workers        int
	seed           int64
	seedSet        bool
	reportFile     string
	reportInterval int
}

func main() {
	log := logrus.New()
	log.SetOutput(os.Stdout)

	var f flags

	root := &cobra.Command{
		Use:   "bitsy",
		Short: "Guided random search for short programs approximating sRGB alpha compositing",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), log, f)
		},
	}

	root.Flags().IntVar(&f.batches, "batches", corpus.DefaultNumBatches, "number of input-pair batches in the corpus")
	root.Flags().IntVar(&f.maxOps, "max-ops", program.DefaultMaxOps, "hard ceiling on sampled program length")
	root.Flags().IntVar(&f.workers, "workers", runtime.GOMAXPROCS(0), "number of goroutines to shard corpus evaluation across")
	root.Flags().Int64Var(&f.seed, "seed", 0, "override the RNG seed (otherwise taken from "+seedEnvVar+" or the current time)")
	root.Flags().StringVar(&f.reportFile, "report-file", "", "optional path to overwrite with a JSON snapshot of the best program")
	root.Flags().IntVar(&f.reportInterval, "report-interval", 1, "how often, in improvements, to snapshot --report-file (default every improvement)")

	root.PreRunE = func(cmd *cobra.Command, args []string) error {
		f.seedSet = cmd.Flags().Changed("seed")
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	root.SetContext(ctx)

	if err := root.Execute(); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Fatal("bitsy exited with an error")
	}
}

func run(ctx context.Context, log *logrus.Logger, f flags) error {
	runID := uuid.NewString()

	seed := resolveSeed(f)
	log.WithFields(logrus.Fields{
		"run_id":  runID,
		"seed":    seed,
		"batches": f.batches,
		"max_ops": f.maxOps,
		"workers": f.workers,
	}).Info("starting search")

	rng := rand.New(rand.NewSource(seed))

	c := corpus.Generate(rng, f.batches)
	d := decider.New(rng)

	reporter := &report.Reporter{Log: log, RunID: runID, ReportFile: f.reportFile, ReportInterval: f.reportInterval}
	loop := search.New(c, d, search.Config{MaxOps: f.maxOps, Workers: f.workers}, reporter)

	err := loop.Run(ctx)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		log.WithField("run_id", runID).Info("search stopped")
		return nil
	}
	return err
}

// resolveSeed picks, in priority order: an explicit --seed flag, the
// BITSY_SEED environment variable, or the current time.
func resolveSeed(f flags) int64 {
	if f.seedSet {
		return f.seed
	}
	if raw, ok := os.LookupEnv(seedEnvVar); ok {
		if parsed, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return parsed
		}
	}
	return defaultSeed()
}

func defaultSeed() int64 {
	return time.Now().UnixNano()
}
