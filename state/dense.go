package state

import (
	"math/bits"
	"math/cmplx"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// The dense representation is a flat vector over 2*Orbitals qubit-like modes.
// Mode 2p is spin-up orbital p, mode 2p+1 is spin-down orbital p, and mode 0
// is the most significant bit of the vector index. Mode operators are ordered
// ascending, so converting from the sectored (all up, then all down) ordering
// carries a fermionic reordering sign.

// ToDense converts w to a flat column vector of size 4^Orbitals.
func ToDense(w *Wavefunction) *mat.CDense {
	n := w.sector.Orbitals
	vec := mat.NewCDense(1<<(2*n), 1, nil)
	nb := len(w.Beta.Patterns)
	for ia, a := range w.Alpha.Patterns {
		for ib, b := range w.Beta.Patterns {
			v := w.Amps[ia*nb+ib]
			if v == 0 {
				continue
			}
			vec.Set(flatIndex(n, a, b), 0, interleaveSign(a, b)*v)
		}
	}
	return vec
}

// FromDense converts a flat vector back to a sectored wavefunction. Entries
// with magnitude below threshold are dropped. The sector is inferred from the
// surviving entries unless given explicitly; entries spanning more than one
// sector fail with MixedSectorError.
func FromDense(vec *mat.CDense, threshold float64, sector ...Sector) (*Wavefunction, error) {
	r, c := vec.Dims()
	if c != 1 {
		return nil, errors.Errorf("not a column vector: %dx%d", r, c)
	}
	n, err := orbitalsOf(r)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}

	entries := make([]denseEntry, 0)
	for i := 0; i < r; i++ {
		v := vec.At(i, 0)
		if v == 0 || cmplx.Abs(v) < threshold {
			continue
		}
		up, down := splitModes(n, i)
		entries = append(entries, denseEntry{up: up, down: down, v: v})
	}
	return fromEntries(n, entries, sector)
}

type denseEntry struct {
	up   uint64
	down uint64
	v    complex128
}

func fromEntries(orbitals int, entries []denseEntry, hint []Sector) (*Wavefunction, error) {
	var sec Sector
	switch {
	case len(hint) > 0:
		sec = hint[0]
	case len(entries) == 0:
		return nil, errors.Errorf("no amplitudes above threshold")
	default:
		sec = entrySector(orbitals, entries[0])
	}

	w, err := NewWavefunction(sec)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if es := entrySector(orbitals, e); es != sec {
			return nil, &MixedSectorError{A: sec, B: es}
		}
		ia, ib := w.Alpha.Index(e.up), w.Beta.Index(e.down)
		w.Amps[w.Idx(ia, ib)] = interleaveSign(e.up, e.down) * e.v
	}
	return w, nil
}

func entrySector(orbitals int, e denseEntry) Sector {
	nu, nd := bits.OnesCount64(e.up), bits.OnesCount64(e.down)
	return Sector{Particles: nu + nd, Spin: nu - nd, Orbitals: orbitals}
}

func orbitalsOf(dim int) (int, error) {
	if dim <= 0 || dim&(dim-1) != 0 {
		return 0, errors.Errorf("dimension %d is not a power of two", dim)
	}
	qubits := bits.TrailingZeros(uint(dim))
	if qubits%2 != 0 {
		return 0, errors.Errorf("odd mode count %d", qubits)
	}
	return qubits / 2, nil
}

func flatIndex(orbitals int, up, down uint64) int {
	idx := 0
	for p := 0; p < orbitals; p++ {
		if up&(1<<p) != 0 {
			idx |= 1 << (2*orbitals - 1 - 2*p)
		}
		if down&(1<<p) != 0 {
			idx |= 1 << (2*orbitals - 1 - (2*p + 1))
		}
	}
	return idx
}

func splitModes(orbitals int, idx int) (up, down uint64) {
	for p := 0; p < orbitals; p++ {
		if idx&(1<<(2*orbitals-1-2*p)) != 0 {
			up |= 1 << p
		}
		if idx&(1<<(2*orbitals-1-(2*p+1))) != 0 {
			down |= 1 << p
		}
	}
	return up, down
}

// interleaveSign is the parity of reordering the sectored operator product
// into ascending mode order: one swap per pair p in up, q in down with p > q.
func interleaveSign(up, down uint64) complex128 {
	count := 0
	for rest := down; rest != 0; rest &= rest - 1 {
		q := bits.TrailingZeros64(rest)
		count += bits.OnesCount64(up >> (q + 1))
	}
	if count%2 == 1 {
		return -1
	}
	return 1
}
