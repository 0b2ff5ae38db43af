package systems

import "fmt"

const (
	radixBits    = 8
	radixBuckets = 1 << radixBits
	radixMask    = radixBuckets - 1
)

// KeySorter sorts (key, value) pairs by non-negative int32 key with a
// chunked LSD radix sort. Scratch buffers are allocated once for n pairs.
//
// Each pass counts digits per chunk, turns the (digit, chunk) counts into
// scatter offsets with one exclusive scan, then scatters every chunk
// independently. Chunks write disjoint output slots, so the count and
// scatter steps run safely across lanes. The result is stable.
type KeySorter struct {
	keysTmp []int32
	valsTmp []int32
	hist    [][radixBuckets]int32
}

// NewKeySorter creates a sorter for up to n pairs.
func NewKeySorter(n int) *KeySorter {
	return &KeySorter{
		keysTmp: make([]int32, n),
		valsTmp: make([]int32, n),
	}
}

// radixPasses returns the number of 8-bit digits needed to represent maxKey.
func radixPasses(maxKey int32) int {
	passes := 1
	for k := maxKey >> radixBits; k > 0; k >>= radixBits {
		passes++
	}
	return passes
}

// Sort orders keys ascending and applies the same permutation to vals.
// Every key must lie in [0, maxKey]. A negative key panics.
func (s *KeySorter) Sort(keys, vals []int32, maxKey int32, ex Executor) {
	n := len(keys)
	if len(vals) != n {
		panic(fmt.Sprintf("keysort: %d keys but %d values", n, len(vals)))
	}
	if n > len(s.keysTmp) {
		panic(fmt.Sprintf("keysort: sorter sized for %d pairs, got %d", len(s.keysTmp), n))
	}
	if n < 2 {
		return
	}

	chunks := ex.Chunks(n)
	if cap(s.hist) < chunks {
		s.hist = make([][radixBuckets]int32, chunks)
	}
	hist := s.hist[:chunks]

	srcK, srcV := keys, vals
	dstK, dstV := s.keysTmp[:n], s.valsTmp[:n]

	passes := radixPasses(maxKey)
	for pass := 0; pass < passes; pass++ {
		shift := uint(pass * radixBits)

		ex.For(n, func(chunk, start, end int) {
			h := &hist[chunk]
			*h = [radixBuckets]int32{}
			for i := start; i < end; i++ {
				k := srcK[i]
				if k < 0 {
					panic(fmt.Sprintf("keysort: negative key %d at %d", k, i))
				}
				h[(k>>shift)&radixMask]++
			}
		})

		// Exclusive scan, digit-major so lower chunks precede higher ones within a digit.
		var offset int32
		for d := 0; d < radixBuckets; d++ {
			for c := range hist {
				count := hist[c][d]
				hist[c][d] = offset
				offset += count
			}
		}

		ex.For(n, func(chunk, start, end int) {
			h := &hist[chunk]
			for i := start; i < end; i++ {
				d := (srcK[i] >> shift) & radixMask
				at := h[d]
				h[d]++
				dstK[at] = srcK[i]
				dstV[at] = srcV[i]
			}
		})

		srcK, dstK = dstK, srcK
		srcV, dstV = dstV, srcV
	}

	// After an odd number of passes the sorted data lives in scratch.
	if passes%2 == 1 {
		ex.For(n, func(_, start, end int) {
			copy(keys[start:end], srcK[start:end])
			copy(vals[start:end], srcV[start:end])
		})
	}
}

// SortByKey sorts a standalone pair of slices on the calling goroutine.
func SortByKey(keys, vals []int32) {
	var maxKey int32
	for _, k := range keys {
		maxKey = max(maxKey, k)
	}
	NewKeySorter(len(keys)).Sort(keys, vals, maxKey, Serial{})
}
