package state

import (
	"math/bits"

	"gonum.org/v1/gonum/stat/combin"
)

// Basis enumerates the occupation patterns of one spin species.
// Patterns are bitmasks where bit p means orbital p is occupied,
// listed in lexicographic order of their occupied orbital sets.
type Basis struct {
	Orbitals int
	Occupied int
	Patterns []uint64

	occ   [][]int
	index map[uint64]int
}

func NewBasis(orbitals, occupied int) *Basis {
	b := &Basis{Orbitals: orbitals, Occupied: occupied}
	b.index = make(map[uint64]int)

	switch occupied {
	case 0:
		b.Patterns = []uint64{0}
		b.occ = [][]int{{}}
	default:
		combs := combin.Combinations(orbitals, occupied)
		b.Patterns = make([]uint64, 0, len(combs))
		b.occ = make([][]int, 0, len(combs))
		for _, c := range combs {
			var mask uint64
			for _, p := range c {
				mask |= 1 << p
			}
			b.Patterns = append(b.Patterns, mask)
			b.occ = append(b.occ, c)
		}
	}

	for i, p := range b.Patterns {
		b.index[p] = i
	}
	return b
}

// Index returns the position of pattern in Patterns, or -1 if absent.
func (b *Basis) Index(pattern uint64) int {
	i, ok := b.index[pattern]
	if !ok {
		return -1
	}
	return i
}

// Occ returns the ascending occupied orbitals of the i-th pattern.
// The returned slice must not be modified.
func (b *Basis) Occ(i int) []int {
	return b.occ[i]
}

// parityBetween is the number of occupied orbitals strictly between p and q, mod 2.
func parityBetween(pattern uint64, p, q int) int {
	if p > q {
		p, q = q, p
	}
	between := pattern >> (p + 1) << (p + 1)
	between = between & (1<<q - 1)
	return bits.OnesCount64(between) % 2
}
