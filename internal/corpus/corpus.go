// Package corpus generates the fixed set of input-pair batches and their
// precomputed ground-truth batches that one search run scores candidate
// programs against.
package corpus

import (
	"math/rand"

	"github.com/distractedlambda/bitsy/internal/batch"
	"github.com/distractedlambda/bitsy/internal/oracle"
)

// DefaultNumBatches is the corpus size used when the caller does not
// configure one.
const DefaultNumBatches = 1024

// Corpus is an immutable, once-generated set of (src, dst, truth) triples.
type Corpus struct {
	Src, Dst, Truth []batch.Batch
}

// Generate draws numBatches random (src, dst) batch pairs from rng and
// precomputes the sRGB alpha-compositing ground truth for each.
func Generate(rng *rand.Rand, numBatches int) *Corpus {
	c := &Corpus{
		Src:   make([]batch.Batch, numBatches),
		Dst:   make([]batch.Batch, numBatches),
		Truth: make([]batch.Batch, numBatches),
	}
	for i := 0; i < numBatches; i++ {
		c.Src[i] = batch.Random(rng)
		c.Dst[i] = batch.Random(rng)
		oracle.ComputeGroundTruth(&c.Truth[i], &c.Src[i], &c.Dst[i])
	}
	return c
}

// Len returns the number of (src, dst, truth) triples in the corpus.
func (c *Corpus) Len() int {
	return len(c.Src)
}
