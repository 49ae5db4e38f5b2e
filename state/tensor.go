package state

import (
	"math/cmplx"

	"github.com/fumin/tensor"
	"github.com/pkg/errors"
)

// ToTensor converts w to the rank 2*Orbitals qubit tensor consumed by generic
// tensor-network simulators, with axis m being mode m of the dense convention.
// Amplitudes are narrowed to complex64.
func ToTensor(w *Wavefunction) *tensor.Dense {
	n := w.sector.Orbitals
	shape := make([]int, 2*n)
	for i := range shape {
		shape[i] = 2
	}
	t := tensor.Zeros(shape...)

	digits := make([]int, 2*n)
	nb := len(w.Beta.Patterns)
	for ia, a := range w.Alpha.Patterns {
		for ib, b := range w.Beta.Patterns {
			v := w.Amps[ia*nb+ib]
			if v == 0 {
				continue
			}
			for m := range digits {
				digits[m] = 0
			}
			for p := 0; p < n; p++ {
				if a&(1<<p) != 0 {
					digits[2*p] = 1
				}
				if b&(1<<p) != 0 {
					digits[2*p+1] = 1
				}
			}
			t.SetAt(digits, complex64(interleaveSign(a, b)*v))
		}
	}
	return t
}

// FromTensor is the inverse of ToTensor. Entries with magnitude below
// threshold are dropped, and the sector is inferred unless given explicitly.
func FromTensor(t *tensor.Dense, threshold float64, sector ...Sector) (*Wavefunction, error) {
	shape := t.Shape()
	if len(shape)%2 != 0 {
		return nil, errors.Errorf("odd mode count %d", len(shape))
	}
	for _, d := range shape {
		if d != 2 {
			return nil, errors.Errorf("not a qubit tensor: %#v", shape)
		}
	}
	n := len(shape) / 2

	entries := make([]denseEntry, 0)
	for digits, v := range t.All() {
		v128 := complex128(v)
		if v128 == 0 || cmplx.Abs(v128) < threshold {
			continue
		}
		var up, down uint64
		for p := 0; p < n; p++ {
			if digits[2*p] == 1 {
				up |= 1 << p
			}
			if digits[2*p+1] == 1 {
				down |= 1 << p
			}
		}
		entries = append(entries, denseEntry{up: up, down: down, v: v128})
	}
	return fromEntries(n, entries, sector)
}
