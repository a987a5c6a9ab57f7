package priorityq

import "math/bits"

// relMask is the bucket bank's priority ceiling: 7 information bits of
// relative priority, plus bit 7 reserved for the wrap-around case (see
// bucketIndex). Matches PQ_CEILING/PQ_MASK in the original C source.
const relMask uint8 = 0x7f

// numBins is the fixed bucket count. Bin 7 is reserved for wrap-around
// placements; generalizing to a wider priority range requires scaling bin
// count and counter width together (see spec §9), not just this constant.
const numBins = 8

// HighestSetBit returns the index (0-7) of the highest set bit of n. It
// panics on n == 0, since a zero byte has no set bit to report; callers
// must never invoke it with a zero relative priority or counter diff.
func HighestSetBit(n uint8) int {
	if n == 0 {
		panic("priorityq: HighestSetBit: n must be non-zero")
	}
	return bits.Len8(n) - 1
}

// highBit32 is the uint32 analogue of HighestSetBit, used to size the
// bounded drain work per dequeue (§4.6) and the immediate-drain counter
// reset (§4.7). Unlike HighestSetBit it is not part of the public surface,
// since size_q/size_immediate are never zero at their call sites.
func highBit32(n uint32) int {
	return bits.Len32(n) - 1
}

// bucketIndex chooses which of the 8 buckets a bucketed item belongs in,
// given the queue's current priority counter pc and the item's relative
// priority rel. rel is zero only when pc plus the item's priority wrapped to
// exactly 256; that takes the non-wrapping branch and lands in bin 7, since
// pc's top bit is then set.
//
// Intuition: as pc counts upward, each 0->1 bit-flip of pc visits a bucket.
// An item is placed in the bucket for the bit-flip that lies strictly below
// its relative priority and aligns with a 0->1 transition, guaranteeing it
// is promoted exactly once before its scheduling time arrives.
func bucketIndex(pc, rel uint8) int {
	nrp := rel - 1
	if nrp >= pc {
		// Not wrapping: rel's leading differing bit is a 1, pc's is a 0.
		// When pc's counter flips that bit, it flips precisely.
		return HighestSetBit(rel ^ pc)
	}
	// Wrapping: rel would overflow past 255 when added to pc at enqueue
	// time. The bin is the highest bit of rel that overlaps pc's leading
	// run of ones. When rel and pc share no set bit, the item can only be
	// reached after pc wraps, so it goes to the wrap bin.
	if rel&pc == 0 {
		return numBins - 1
	}
	return HighestSetBit(rel & pc)
}
