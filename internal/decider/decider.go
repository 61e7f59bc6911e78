// Package decider implements the adaptive binary-choice oracle at the
// center of the search: every random choice the sampler makes is routed
// through a Decider, which lazily grows a binary tree keyed on the choice
// history and biases future sampling toward subtrees that have historically
// produced lower loss.
//
// The tree is stored as an arena of nodes addressed by index rather than as
// a pointer-linked structure, so nodes never need to be individually freed
// and the whole Decider can be dropped in one step when the search ends.
package decider

import "math"

// sentinelLoss marks a node that has never lain on the path of a restarted
// trial.
const sentinelLoss = math.MaxUint64

// absent is the arena index meaning "no child here yet". The root occupies
// index rootIndex, never 0, so 0 is safe to use as the absent sentinel.
const absent uint32 = 0

const rootIndex uint32 = 1

// node is one vertex of the decision tree. minLoss is the minimum loss ever
// observed on any trial whose decision path passed through this node.
type node struct {
	minLoss            uint64
	falseChild, trueChild uint32
}

// RandSource is the randomness a Decider draws from. *rand.Rand satisfies
// it; it is always supplied by the caller so the Decider never touches
// process-global state.
type RandSource interface {
	Float64() float64
}

// Decider turns a stream of biased boolean decisions, informed by
// accumulated loss feedback, into samples of structured values.
type Decider struct {
	rng     RandSource
	arena   []node
	current uint32
	history []uint32
}

// New creates a Decider with an empty tree (just the root), drawing its
// randomness from rng.
func New(rng RandSource) *Decider {
	d := &Decider{rng: rng}
	d.arena = append(d.arena, node{}) // index 0: unused, keeps 0 == absent
	d.arena = append(d.arena, node{minLoss: sentinelLoss})
	d.current = rootIndex
	return d
}

// IsFresh reports whether the node the Decider currently sits on has never
// lain on the path of a restarted trial.
func (d *Decider) IsFresh() bool {
	return d.arena[d.current].minLoss == sentinelLoss
}

// DecideBool extends the current decision path by one step, lazily
// materializing the chosen child if it does not exist yet, and returns the
// branch taken.
func (d *Decider) DecideBool() bool {
	d.history = append(d.history, d.current)

	parent := d.current
	trueProb := 0.5
	if d.arena[parent].falseChild != absent && d.arena[parent].trueChild != absent {
		falseLoss := d.arena[d.arena[parent].falseChild].minLoss
		trueLoss := d.arena[d.arena[parent].trueChild].minLoss
		if falseLoss == 0 && trueLoss == 0 {
			trueProb = 0.5
		} else {
			trueProb = float64(falseLoss) / float64(falseLoss+trueLoss)
		}
	}

	choice := d.rng.Float64() < trueProb

	child := d.arena[parent].falseChild
	if choice {
		child = d.arena[parent].trueChild
	}

	if child == absent {
		d.arena = append(d.arena, node{minLoss: sentinelLoss})
		child = uint32(len(d.arena) - 1)
		if choice {
			d.arena[parent].trueChild = child
		} else {
			d.arena[parent].falseChild = child
		}
	}

	d.current = child

	return choice
}

// DecideUint32 returns a value in [lo, hi] by binary-search decomposition
// over DecideBool, one bit of resolution per decision, MSB first. It panics
// if lo > hi.
func (d *Decider) DecideUint32(lo, hi uint32) uint32 {
	if lo > hi {
		panic("decider: empty range")
	}
	first, last := uint64(lo), uint64(hi)
	for first < last {
		half := ((last - first) + 1) / 2
		if d.DecideBool() {
			first += half
		} else {
			last -= half
		}
	}
	return uint32(first)
}

// DecideInt returns a value in [lo, hi] the same way as DecideUint32, for
// the small nonnegative ranges (opcode indices, operand slots) the sampler
// draws from. It panics if lo > hi or lo < 0.
func (d *Decider) DecideInt(lo, hi int) int {
	if lo < 0 {
		panic("decider: negative range bound")
	}
	if lo > hi {
		panic("decider: empty range")
	}
	return int(d.DecideUint32(uint32(lo), uint32(hi)))
}

// Restart terminates the current trial: the final node and every node
// visited since the last restart have their minLoss lowered to loss if loss
// is smaller, history is cleared, and the descent pointer resets to the
// root.
func (d *Decider) Restart(loss uint64) {
	if cur := &d.arena[d.current]; loss < cur.minLoss {
		cur.minLoss = loss
	}

	for i := len(d.history) - 1; i >= 0; i-- {
		n := &d.arena[d.history[i]]
		if loss < n.minLoss {
			n.minLoss = loss
		}
	}

	d.history = d.history[:0]
	d.current = rootIndex
}
