// Package search drives the decider to produce candidate programs, scores
// them against a corpus, and reports every strict improvement in total
// loss. It is the outermost loop described in the design: build, evaluate,
// compare, report, restart, forever.
package search

import (
	"context"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/distractedlambda/bitsy/internal/batch"
	"github.com/distractedlambda/bitsy/internal/corpus"
	"github.com/distractedlambda/bitsy/internal/decider"
	"github.com/distractedlambda/bitsy/internal/evaluator"
	"github.com/distractedlambda/bitsy/internal/oracle"
	"github.com/distractedlambda/bitsy/internal/program"
)

// Reporter receives every strict improvement in total loss.
type Reporter interface {
	Improvement(loss uint64, avgLoss float64, p program.Program)
}

// Config bounds the programs the loop samples and the parallelism used to
// score them.
type Config struct {
	// MaxOps is the hard ceiling on program length.
	MaxOps int

	// Workers is the number of goroutines to shard corpus evaluation
	// across. 1 (or less) means evaluate sequentially on the calling
	// goroutine.
	Workers int
}

// Loop owns one run's corpus, decider, and reporter.
type Loop struct {
	corpus   *corpus.Corpus
	decider  *decider.Decider
	cfg      Config
	reporter Reporter
}

// New builds a Loop over c, driven by d, reporting through r.
func New(c *corpus.Corpus, d *decider.Decider, cfg Config, r Reporter) *Loop {
	if cfg.MaxOps <= 0 {
		cfg.MaxOps = program.DefaultMaxOps
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	return &Loop{corpus: c, decider: d, cfg: cfg, reporter: r}
}

// Run drives the search until ctx is done, checked once per trial between
// restarts (never mid-trial), returning ctx.Err() when it stops.
func (l *Loop) Run(ctx context.Context) error {
	bestLoss := uint64(math.MaxUint64)
	opData := make([]batch.Batch, 0, l.cfg.MaxOps+2)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		p := program.Sample(l.decider, l.cfg.MaxOps)

		var loss uint64
		var err error
		if l.cfg.Workers <= 1 {
			loss, opData = l.evaluateSequential(p, opData)
		} else {
			loss, err = l.evaluateParallel(ctx, p)
			if err != nil {
				return err
			}
		}

		if loss < bestLoss {
			bestLoss = loss
			avgLoss := float64(loss) / float64(l.corpus.Len()*batch.Size)
			l.reporter.Improvement(loss, avgLoss, p)
		}

		l.decider.Restart(loss)
	}
}

// evaluateSequential scores p against the whole corpus on the calling
// goroutine, reusing opData's backing array across batches.
func (l *Loop) evaluateSequential(p program.Program, opData []batch.Batch) (uint64, []batch.Batch) {
	var total uint64
	for i := 0; i < l.corpus.Len(); i++ {
		opData = opData[:0]
		opData = evaluator.EvaluateProgram(p, l.corpus.Src[i], l.corpus.Dst[i], opData)
		prediction := &opData[len(opData)-1]
		total += oracle.TotalLoss(&l.corpus.Truth[i], prediction)
	}
	return total, opData
}

// evaluateParallel shards the corpus across l.cfg.Workers goroutines, each
// with its own reused opData buffer, and reduces the partial losses. The
// decider is never touched from these goroutines: sampling the program
// already finished before this call, and Restart happens afterward on the
// calling goroutine, so the Decider's sequential contract (§5 of the
// design) holds even though evaluation itself runs concurrently.
func (l *Loop) evaluateParallel(ctx context.Context, p program.Program) (uint64, error) {
	n := l.corpus.Len()
	workers := l.cfg.Workers
	if workers > n {
		workers = n
	}

	partial := make([]uint64, workers)
	group, _ := errgroup.WithContext(ctx)

	chunk := (n + workers - 1) / workers
	for w := 0; w < workers; w++ {
		start := w * chunk
		end := start + chunk
		if end > n {
			end = n
		}
		if start >= end {
			continue
		}

		w, start, end := w, start, end
		group.Go(func() error {
			opData := make([]batch.Batch, 0, l.cfg.MaxOps+2)
			var total uint64
			for i := start; i < end; i++ {
				opData = opData[:0]
				opData = evaluator.EvaluateProgram(p, l.corpus.Src[i], l.corpus.Dst[i], opData)
				prediction := &opData[len(opData)-1]
				total += oracle.TotalLoss(&l.corpus.Truth[i], prediction)
			}
			partial[w] = total
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return 0, err
	}

	var total uint64
	for _, v := range partial {
		total += v
	}
	return total, nil
}
