package evaluator_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/distractedlambda/bitsy/internal/batch"
	"github.com/distractedlambda/bitsy/internal/evaluator"
	"github.com/distractedlambda/bitsy/internal/program"
)

func lanes(words ...uint32) batch.Batch {
	full := make([]uint32, batch.Size)
	copy(full, words)
	return batch.FromSlice(full)
}

func TestConstantFillsEveryLane(t *testing.T) {
	var dst batch.Batch
	evaluator.Evaluate(program.Op{Kind: program.KindConstant, Constant: 0x2a}, &dst, nil)
	for i := 0; i < batch.Size; i++ {
		require.Equal(t, uint32(0x2a), dst.At(i))
	}
}

func TestXorSelfIsZero(t *testing.T) {
	a := batch.Fill(0x12345678)
	srcs := []batch.Batch{a}
	var dst batch.Batch
	evaluator.Evaluate(program.Op{Kind: program.KindBinary, BinaryOp: program.Xor, Lhs: 0, Rhs: 0}, &dst, srcs)
	require.Equal(t, batch.Fill(0), dst)
}

func TestOrAndSelfIsIdentity(t *testing.T) {
	a := batch.Fill(0xabcdef01)
	srcs := []batch.Batch{a}

	var orDst, andDst batch.Batch
	evaluator.Evaluate(program.Op{Kind: program.KindBinary, BinaryOp: program.Or, Lhs: 0, Rhs: 0}, &orDst, srcs)
	evaluator.Evaluate(program.Op{Kind: program.KindBinary, BinaryOp: program.And, Lhs: 0, Rhs: 0}, &andDst, srcs)

	require.Equal(t, a, orDst)
	require.Equal(t, a, andDst)
}

func TestDoubleBitwiseNotIsIdentity(t *testing.T) {
	a := batch.Fill(0x0f0f0f0f)
	srcs := []batch.Batch{a}

	var once batch.Batch
	evaluator.Evaluate(program.Op{Kind: program.KindUnary, UnaryOp: program.BitwiseNot, Lhs: 0}, &once, srcs)

	var twice batch.Batch
	evaluator.Evaluate(program.Op{Kind: program.KindUnary, UnaryOp: program.BitwiseNot, Lhs: 0}, &twice, []batch.Batch{once})

	require.Equal(t, a, twice)
}

func TestAddNegIsZero(t *testing.T) {
	a := batch.Fill(0x55555555)
	srcs := []batch.Batch{a}

	var negated batch.Batch
	evaluator.Evaluate(program.Op{Kind: program.KindUnary, UnaryOp: program.Neg, Lhs: 0}, &negated, srcs)

	var sum batch.Batch
	evaluator.Evaluate(program.Op{Kind: program.KindBinary, BinaryOp: program.Add, Lhs: 0, Rhs: 1}, &sum, []batch.Batch{a, negated})

	require.Equal(t, batch.Fill(0), sum)
}

func TestClzVectors(t *testing.T) {
	src := lanes(1, 2, 0x80000000, 0)
	var dst batch.Batch
	evaluator.Evaluate(program.Op{Kind: program.KindUnary, UnaryOp: program.Clz, Lhs: 0}, &dst, []batch.Batch{src})
	require.Equal(t, uint32(31), dst.At(0))
	require.Equal(t, uint32(30), dst.At(1))
	require.Equal(t, uint32(0), dst.At(2))
	require.Equal(t, uint32(32), dst.At(3))
}

func TestLslShiftClampsToZeroAtOrAbove32(t *testing.T) {
	a := lanes(1)
	shiftAmt := lanes(32)
	var dst batch.Batch
	evaluator.Evaluate(program.Op{Kind: program.KindBinary, BinaryOp: program.Lsl, Lhs: 0, Rhs: 1}, &dst, []batch.Batch{a, shiftAmt})
	require.Equal(t, uint32(0), dst.At(0))
}

func TestAsrShiftClampsTo31AtOrAbove32(t *testing.T) {
	a := lanes(0x80000000)
	shiftAmt := lanes(32)
	var dst batch.Batch
	evaluator.Evaluate(program.Op{Kind: program.KindBinary, BinaryOp: program.Asr, Lhs: 0, Rhs: 1}, &dst, []batch.Batch{a, shiftAmt})
	require.Equal(t, uint32(0xffffffff), dst.At(0)) // sign-extended all the way
}

func TestRotateRightFullCount(t *testing.T) {
	a := lanes(0x00000001)
	count := lanes(1)
	var dst batch.Batch
	evaluator.Evaluate(program.Op{Kind: program.KindBinary, BinaryOp: program.RotateRight, Lhs: 0, Rhs: 1}, &dst, []batch.Batch{a, count})
	require.Equal(t, uint32(0x80000000), dst.At(0))
}

func TestUnsignedAdd8Wraps(t *testing.T) {
	a := lanes(0xff_00_00_00)
	b := lanes(0x01_00_00_00)
	var dst batch.Batch
	evaluator.Evaluate(program.Op{Kind: program.KindBinary, BinaryOp: program.UnsignedAdd8, Lhs: 0, Rhs: 1}, &dst, []batch.Batch{a, b})
	require.Equal(t, uint32(0x00_00_00_00), dst.At(0))
}

func TestUnsignedAdd16Wraps(t *testing.T) {
	a := lanes(0xffff_0000)
	b := lanes(0x0001_0000)
	var dst batch.Batch
	evaluator.Evaluate(program.Op{Kind: program.KindBinary, BinaryOp: program.UnsignedAdd16, Lhs: 0, Rhs: 1}, &dst, []batch.Batch{a, b})
	require.Equal(t, uint32(0x0000_0000), dst.At(0))
}

func TestOperandOutOfRangePanics(t *testing.T) {
	var dst batch.Batch
	require.Panics(t, func() {
		evaluator.Evaluate(program.Op{Kind: program.KindUnary, UnaryOp: program.Clz, Lhs: 5}, &dst, nil)
	})
}

func TestEvaluateProgramAppendsSourceDestAndResults(t *testing.T) {
	p := program.Program{
		{Kind: program.KindBinary, BinaryOp: program.Xor, Lhs: 0, Rhs: 0},
	}
	src := batch.Fill(7)
	dst := batch.Fill(9)

	opData := make([]batch.Batch, 0, len(p)+2)
	opData = evaluator.EvaluateProgram(p, src, dst, opData)

	require.Len(t, opData, 3)
	require.Equal(t, src, opData[0])
	require.Equal(t, dst, opData[1])
	require.Equal(t, batch.Fill(0), opData[2])
}
