// Package evaluator implements the pure, lane-wise semantics of every
// opcode in the program IR, applied across a whole batch at once.
package evaluator

import (
	"fmt"
	"math/bits"

	"github.com/distractedlambda/bitsy/internal/batch"
	"github.com/distractedlambda/bitsy/internal/program"
)

// Evaluate writes every lane of dst as op's semantics applied to the
// operand batches named by op, looked up in srcs by OpID. srcs must
// contain at least as many entries as any OpID op references; an
// out-of-range OpID panics rather than silently indexing past the slice.
func Evaluate(op program.Op, dst *batch.Batch, srcs []batch.Batch) {
	switch op.Kind {
	case program.KindConstant:
		for i := 0; i < batch.Size; i++ {
			dst.Set(i, op.Constant)
		}

	case program.KindUnary:
		src := operand(srcs, op.Lhs)
		evalUnary(op.UnaryOp, dst, src)

	case program.KindBinary:
		lhs := operand(srcs, op.Lhs)
		rhs := operand(srcs, op.Rhs)
		evalBinary(op.BinaryOp, dst, lhs, rhs)

	default:
		panic(fmt.Sprintf("evaluator: unknown op kind %d", op.Kind))
	}
}

func operand(srcs []batch.Batch, id program.OpID) *batch.Batch {
	if int(id) < 0 || int(id) >= len(srcs) {
		panic(fmt.Sprintf("evaluator: operand id %d out of range [0,%d)", id, len(srcs)))
	}
	return &srcs[id]
}

func evalUnary(op program.UnaryOpcode, dst, src *batch.Batch) {
	d, s := dst.Words(), src.Words()
	switch op {
	case program.Clz:
		for i := range d {
			d[i] = uint32(bits.LeadingZeros32(s[i]))
		}

	case program.Neg:
		for i := range d {
			d[i] = -s[i]
		}

	case program.ByteReverse:
		for i := range d {
			d[i] = bits.ReverseBytes32(s[i])
		}

	case program.BitReverse:
		for i := range d {
			d[i] = bits.Reverse32(s[i])
		}

	case program.BitwiseNot:
		for i := range d {
			d[i] = ^s[i]
		}

	case program.SignExtend16:
		for i := range d {
			d[i] = uint32(int32(int16(s[i])))
		}

	case program.SignExtend8:
		for i := range d {
			d[i] = uint32(int32(int8(s[i])))
		}

	default:
		panic(fmt.Sprintf("evaluator: unknown unary opcode %d", op))
	}
}

func evalBinary(op program.BinaryOpcode, dst, lhs, rhs *batch.Batch) {
	d, l, r := dst.Words(), lhs.Words(), rhs.Words()
	switch op {
	case program.Add:
		for i := range d {
			d[i] = l[i] + r[i]
		}

	case program.And:
		for i := range d {
			d[i] = l[i] & r[i]
		}

	case program.Asr:
		for i := range d {
			shift := r[i] & 0xff
			if shift >= 32 {
				shift = 31
			}
			d[i] = uint32(int32(l[i]) >> shift)
		}

	case program.Lsl:
		for i := range d {
			shift := r[i] & 0xff
			if shift >= 32 {
				d[i] = 0
			} else {
				d[i] = l[i] << shift
			}
		}

	case program.Lsr:
		for i := range d {
			shift := r[i] & 0xff
			if shift >= 32 {
				d[i] = 0
			} else {
				d[i] = l[i] >> shift
			}
		}

	case program.Mul:
		for i := range d {
			d[i] = l[i] * r[i]
		}

	case program.Or:
		for i := range d {
			d[i] = l[i] | r[i]
		}

	case program.Xor:
		for i := range d {
			d[i] = l[i] ^ r[i]
		}

	case program.Sub:
		for i := range d {
			d[i] = l[i] - r[i]
		}

	case program.RotateRight:
		for i := range d {
			d[i] = bits.RotateLeft32(l[i], -int(r[i]%32))
		}

	case program.UnsignedAdd8:
		for i := range d {
			var out uint32
			for b := 0; b < 4; b++ {
				shift := uint(b * 8)
				lb := byte(l[i] >> shift)
				rb := byte(r[i] >> shift)
				out |= uint32(lb+rb) << shift
			}
			d[i] = out
		}

	case program.UnsignedAdd16:
		for i := range d {
			var out uint32
			for h := 0; h < 2; h++ {
				shift := uint(h * 16)
				lh := uint16(l[i] >> shift)
				rh := uint16(r[i] >> shift)
				out |= uint32(lh+rh) << shift
			}
			d[i] = out
		}

	default:
		panic(fmt.Sprintf("evaluator: unknown binary opcode %d", op))
	}
}

// EvaluateProgram runs p against the two input batches, appending the
// source batch, the destination batch, and then one result batch per op (in
// order) onto opData, which the caller owns and truncates to length 0
// before each call so its backing array — sized for at least len(p)+2 — is
// reused across trials instead of reallocated. The final element of the
// returned slice is the program's prediction.
func EvaluateProgram(p program.Program, src, dst batch.Batch, opData []batch.Batch) []batch.Batch {
	opData = append(opData, src, dst)
	for _, op := range p {
		opData = append(opData, batch.Batch{})
		result := &opData[len(opData)-1]
		Evaluate(op, result, opData[:len(opData)-1])
	}
	return opData
}
