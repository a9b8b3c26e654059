package nnue

import (
	"github.com/hailam/chessplay/internal/board"
	"golang.org/x/sys/cpu"
)

// Forward runs the output head for the side to move, given both
// perspectives' computed accumulators and the piece count used to select
// the output bucket (spec §4.5.2).
func Forward(net *Network, acc *Accumulator, stm board.Color, pieceCount int) int {
	bucket := outputBucket(pieceCount)
	weights := net.OutWeights[bucket]

	var sum int64
	sum += forwardHalf(weights[:HL], acc.Values[stm][:])
	sum += forwardHalf(weights[HL:2*HL], acc.Values[stm.Other()][:])

	sum = sum/QA + int64(net.OutBias[bucket])
	return int(sum * NNUEScale / (QA * QB))
}

// simdBlockWidth is the number of int16 lanes forwardHalf processes per
// block, picked once at package init by the same kind of runtime feature
// probe the teacher's sfnnue does at build-tag granularity (simd.go's
// AVX2 path vs. simd_neon.go vs. simd_scalar.go). HL is 512, divisible by
// every width below, so the block loop never needs a ragged remainder.
var simdBlockWidth = detectSIMDBlockWidth()

func detectSIMDBlockWidth() int {
	switch {
	case cpu.X86.HasAVX2:
		return 16 // 256-bit lanes of int16
	case cpu.ARM64.HasASIMD:
		return 8 // 128-bit NEON lanes of int16
	default:
		return 1 // scalar fallback
	}
}

// forwardHalf computes the dot product of one perspective's SCReLU-activated
// accumulator with its half of the output weight vector, in blocks sized to
// the detected native SIMD width (spec §4.5.2). Each block accumulates into
// its own partial sum so the loop is free of cross-iteration dependencies,
// the shape a SIMD backend would need to lower it to real vector
// instructions; on a CPU with no detected wide-int16 support,
// simdBlockWidth is 1 and this degenerates to the plain scalar loop.
func forwardHalf(weights []int16, values []int16) int64 {
	width := simdBlockWidth
	var sum int64
	i := 0
	for ; i+width <= HL; i += width {
		var block int64
		for j := 0; j < width; j++ {
			block += int64(screlu(values[i+j])) * int64(weights[i+j])
		}
		sum += block
	}
	for ; i < HL; i++ {
		sum += int64(screlu(values[i])) * int64(weights[i])
	}
	return sum
}

// Evaluate runs a full forward pass and returns a score from the side to
// move's perspective, in centipawns.
func Evaluate(net *Network, acc *Accumulator, stm board.Color, pieceCount int) int {
	return Forward(net, acc, stm, pieceCount)
}
