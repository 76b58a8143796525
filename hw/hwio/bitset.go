package hwio

import "fmt"

const (
	NumBits  = MemSize            // one bit per memory address
	wordSize = 64                 // using 64-bit words
	numWords = NumBits / wordSize // 64 words exactly
)

// Bitset is a 4Kbit set, one bit per address. Zero value is an empty set.
type Bitset struct {
	words [numWords]uint64
}

// Set sets the bit at index i. Indices wrap like addresses do.
func (b *Bitset) Set(i uint) {
	i &= AddrMask
	b.words[i/wordSize] |= 1 << (i % wordSize)
}

// Clear clears the bit at index i.
func (b *Bitset) Clear(i uint) {
	i &= AddrMask
	b.words[i/wordSize] &^= 1 << (i % wordSize)
}

// Test returns true if the bit at index i is set.
func (b *Bitset) Test(i uint) bool {
	i &= AddrMask
	return (b.words[i/wordSize] & (1 << (i % wordSize))) != 0
}

// Any reports whether at least one bit is set.
func (b *Bitset) Any() bool {
	for _, w := range b.words {
		if w != 0 {
			return true
		}
	}
	return false
}

// Indices returns the indices of all set bits, in increasing order.
func (b *Bitset) Indices() []uint {
	var idx []uint
	for wi, w := range b.words {
		for bit := uint(0); w != 0; bit++ {
			if w&1 != 0 {
				idx = append(idx, uint(wi)*wordSize+bit)
			}
			w >>= 1
		}
	}
	return idx
}

// SetRange sets all bits in the half-open interval [start, end).
// It panics if start >= end or end > NumBits.
func (b *Bitset) SetRange(start, end uint) {
	if start >= end || end > NumBits {
		panic(fmt.Sprintf("invalid range [%d, %d)", start, end))
	}
	startWord := start / wordSize
	endWord := (end - 1) / wordSize
	startBit := start % wordSize
	endBit := (end - 1) % wordSize

	if startWord == endWord {
		mask := ((uint64(1) << (endBit - startBit + 1)) - 1) << startBit
		b.words[startWord] |= mask
		return
	}

	// First word.
	b.words[startWord] |= ^uint64(0) << startBit

	// Middle full words.
	for i := startWord + 1; i < endWord; i++ {
		b.words[i] = ^uint64(0)
	}

	// Last word.
	mask := (uint64(1) << (endBit + 1)) - 1
	b.words[endWord] |= mask
}

// ClearRange clears all bits in the half-open interval [start, end).
// It panics if start >= end or end > NumBits.
func (b *Bitset) ClearRange(start, end uint) {
	if start >= end || end > NumBits {
		panic(fmt.Sprintf("invalid range [%d, %d)", start, end))
	}
	startWord := start / wordSize
	endWord := (end - 1) / wordSize
	startBit := start % wordSize
	endBit := (end - 1) % wordSize

	if startWord == endWord {
		mask := ((uint64(1) << (endBit - startBit + 1)) - 1) << startBit
		b.words[startWord] &^= mask
		return
	}

	// First word.
	b.words[startWord] &^= ^uint64(0) << startBit

	// Middle full words.
	for i := startWord + 1; i < endWord; i++ {
		b.words[i] = 0
	}

	// Last word
	mask := (uint64(1) << (endBit + 1)) - 1
	b.words[endWord] &^= mask
}

// Reset clears all bits in the Bitset.
func (b *Bitset) Reset() {
	clear(b.words[:])
}

// SetAll sets all bits in the Bitset.
func (b *Bitset) SetAll() {
	for i := range b.words {
		b.words[i] = ^uint64(0)
	}
}
