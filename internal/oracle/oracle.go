// Package oracle implements the reference function the search tries to
// approximate — sRGB alpha-compositing — and the loss metric used to score
// how closely a candidate program's output matches it.
package oracle

import (
	"math"

	"github.com/distractedlambda/bitsy/internal/batch"
)

func srgbToLinear(c float64) float64 {
	if c <= 0.04045 {
		return c / 12.92
	}
	return math.Pow((c+0.055)/1.055, 2.4)
}

func linearToSrgb(c float64) float64 {
	if c <= 0.0031308 {
		return 12.92 * c
	}
	return 1.055*math.Pow(c, 1.0/2.4) - 0.055
}

func splitARGB(argb uint32) (a, r, g, b byte) {
	return byte(argb >> 24), byte(argb >> 16), byte(argb >> 8), byte(argb)
}

func byteToNorm(v byte) float64 {
	return float64(v) / 255.0
}

func normToByte(v float64) byte {
	scaled := v * 255.0
	switch {
	case math.IsNaN(scaled), scaled < 0:
		return 0
	case scaled > 255:
		return 255
	default:
		return byte(scaled)
	}
}

// blendLane computes the sRGB alpha-compositing of one src/dst ARGB word
// pair, returning the packed ARGB result word.
func blendLane(src, dst uint32) uint32 {
	srcA, srcR, srcG, srcB := splitARGB(src)
	dstA, dstR, dstG, dstB := splitARGB(dst)

	srcANorm := byteToNorm(srcA)
	dstANorm := byteToNorm(dstA)

	oneMinusSrcA := 1.0 - srcANorm
	outANorm := srcANorm + dstANorm*oneMinusSrcA

	srcRLin := srgbToLinear(byteToNorm(srcR))
	srcGLin := srgbToLinear(byteToNorm(srcG))
	srcBLin := srgbToLinear(byteToNorm(srcB))

	dstRLin := srgbToLinear(byteToNorm(dstR))
	dstGLin := srgbToLinear(byteToNorm(dstG))
	dstBLin := srgbToLinear(byteToNorm(dstB))

	srcWeight := srcANorm / outANorm
	dstWeight := dstANorm * oneMinusSrcA / outANorm

	outRLin := srcRLin*srcWeight + dstRLin*dstWeight
	outGLin := srcGLin*srcWeight + dstGLin*dstWeight
	outBLin := srcBLin*srcWeight + dstBLin*dstWeight

	outR := linearToSrgb(outRLin)
	outG := linearToSrgb(outGLin)
	outB := linearToSrgb(outBLin)

	outAByte := normToByte(outANorm)
	outRByte := normToByte(outR)
	outGByte := normToByte(outG)
	outBByte := normToByte(outB)

	return uint32(outAByte)<<24 | uint32(outRByte)<<16 | uint32(outGByte)<<8 | uint32(outBByte)
}

// ComputeGroundTruth fills result with the lane-wise sRGB alpha-compositing
// of blendSrc over blendDst.
func ComputeGroundTruth(result *batch.Batch, blendSrc, blendDst *batch.Batch) {
	for i := 0; i < batch.Size; i++ {
		result.Set(i, blendLane(blendSrc.At(i), blendDst.At(i)))
	}
}

// TotalLoss sums the byte-wise L1 distance between truth and prediction
// over every lane, in a 64-bit accumulator. TotalLoss(x, x) == 0 and
// TotalLoss(x, y) == TotalLoss(y, x) for all x, y.
func TotalLoss(truth, prediction *batch.Batch) uint64 {
	var total uint64
	for i := 0; i < batch.Size; i++ {
		t, p := truth.At(i), prediction.At(i)
		total += absDiffByte(byte(t>>24), byte(p>>24))
		total += absDiffByte(byte(t>>16), byte(p>>16))
		total += absDiffByte(byte(t>>8), byte(p>>8))
		total += absDiffByte(byte(t), byte(p))
	}
	return total
}

func absDiffByte(a, b byte) uint64 {
	if a > b {
		return uint64(a - b)
	}
	return uint64(b - a)
}
