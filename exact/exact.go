// Package exact builds full many-body Fermi-Hubbard operators over all
// occupation strings by direct basis enumeration. It is the brute-force
// reference the sectored evolution engines are checked against; its matrices
// are 4^orbitals dimensional and only meant for small systems.
package exact

import (
	"gonum.org/v1/gonum/mat"
)

// Hubbard returns the many-body Hamiltonian over all 4^orbitals occupation
// strings. hUp and hDown are the one-body coefficient matrices of each spin
// species and v the up-down density-density matrix; nil means the term is
// absent. The mode convention matches the dense interop layer: mode 2p is
// spin-up orbital p, mode 2p+1 spin-down orbital p, mode 0 the most
// significant bit of the basis index.
func Hubbard(orbitals int, hUp, hDown *mat.CDense, v *mat.Dense) *mat.CDense {
	modes := 2 * orbitals
	dim := 1 << modes
	h := mat.NewCDense(dim, dim, nil)

	for i := 0; i < dim; i++ {
		var diag complex128
		for p := 0; p < orbitals; p++ {
			up := occupied(modes, i, 2*p)
			down := occupied(modes, i, 2*p+1)
			if hUp != nil && up {
				diag += hUp.At(p, p)
			}
			if hDown != nil && down {
				diag += hDown.At(p, p)
			}
			if v != nil && up {
				for q := 0; q < orbitals; q++ {
					if occupied(modes, i, 2*q+1) {
						diag += complex(v.At(p, q), 0)
					}
				}
			}
		}
		if diag != 0 {
			h.Set(i, i, h.At(i, i)+diag)
		}

		hop(h, orbitals, i, hUp, 0)
		hop(h, orbitals, i, hDown, 1)
	}
	return h
}

// hop accumulates the off-diagonal one-body terms h1[p][q] a†_p a_q of one
// spin species, with the Jordan-Wigner sign from the occupied modes strictly
// between the two affected ones.
func hop(h *mat.CDense, orbitals, i int, h1 *mat.CDense, offset int) {
	if h1 == nil {
		return
	}
	modes := 2 * orbitals
	for p := 0; p < orbitals; p++ {
		for q := 0; q < orbitals; q++ {
			if p == q || h1.At(p, q) == 0 {
				continue
			}
			mp, mq := 2*p+offset, 2*q+offset
			if !occupied(modes, i, mq) || occupied(modes, i, mp) {
				continue
			}
			j := i&^modeBit(modes, mq) | modeBit(modes, mp)
			v := h1.At(p, q)
			if parityBetween(modes, i, mp, mq) == 1 {
				v = -v
			}
			h.Set(j, i, h.At(j, i)+v)
		}
	}
}

// Apply returns m times the column vector vec.
func Apply(m *mat.CDense, vec *mat.CDense) *mat.CDense {
	r, c := m.Dims()
	vr, vc := vec.Dims()
	if c != vr || vc != 1 {
		panic("dimension mismatch")
	}
	out := mat.NewCDense(r, 1, nil)
	for i := 0; i < r; i++ {
		var sum complex128
		for k := 0; k < c; k++ {
			if v := m.At(i, k); v != 0 {
				sum += v * vec.At(k, 0)
			}
		}
		out.Set(i, 0, sum)
	}
	return out
}

func occupied(modes, i, m int) bool {
	return i&modeBit(modes, m) != 0
}

func modeBit(modes, m int) int {
	return 1 << (modes - 1 - m)
}

func parityBetween(modes, i, mA, mB int) int {
	if mA > mB {
		mA, mB = mB, mA
	}
	count := 0
	for m := mA + 1; m < mB; m++ {
		if occupied(modes, i, m) {
			count++
		}
	}
	return count % 2
}
