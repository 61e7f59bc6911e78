package program

import (
	"math"

	"github.com/distractedlambda/bitsy/internal/decider"
)

// DefaultMaxOps is the hard ceiling on program length used when the caller
// does not configure one.
const DefaultMaxOps = 16

// SampleOp builds one Op by consuming decisions from d. numExistingOps is
// the number of ops already available as operands, including the two
// implicit input ops; it must be at least 2 (the sampler precondition
// failure named in the error handling design), or SampleOp panics.
func SampleOp(d *decider.Decider, numExistingOps int) Op {
	if numExistingOps < 2 {
		panic("program: SampleOp requires at least two existing ops")
	}

	switch d.DecideInt(0, 2) {
	case 0:
		return Op{Kind: KindConstant, Constant: d.DecideUint32(0, math.MaxUint32)}

	case 1:
		opcode := UnaryOpcode(d.DecideInt(0, int(numUnaryOpcodes)-1))
		operand := OpID(d.DecideInt(0, numExistingOps-1))
		return Op{Kind: KindUnary, UnaryOp: opcode, Lhs: operand}

	default:
		opcode := BinaryOpcode(d.DecideInt(0, int(numBinaryOpcodes)-1))
		lhs := OpID(d.DecideInt(0, numExistingOps-1))
		rhs := OpID(d.DecideInt(0, numExistingOps-1))
		return Op{Kind: KindBinary, BinaryOp: opcode, Lhs: lhs, Rhs: rhs}
	}
}

// Sample builds a whole Program, sampling one op at a time via SampleOp
// until either maxOps ops have been produced, or the decision node
// immediately following the most recently sampled op has never been
// visited (d.IsFresh() at the top of what would be the next iteration).
// The latter couples program length to the tree's exploration state: as
// more of the tree around short programs gets visited, longer programs
// become reachable. The program always has at least one op.
func Sample(d *decider.Decider, maxOps int) Program {
	ops := make(Program, 0, maxOps)
	for {
		ops = append(ops, SampleOp(d, len(ops)+2))
		if len(ops) >= maxOps || d.IsFresh() {
			return ops
		}
	}
}
