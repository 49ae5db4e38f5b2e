// Package qhubbard builds the coefficient matrices of the one-dimensional
// Fermi-Hubbard model and derives site-resolved observables from sectored
// wavefunctions.
//
// The Hamiltonian is decomposed into a Hermitian one-body matrix per spin
// species (hopping plus on-site energies), evolved by the Givens engine, and a
// real density-density matrix between the spin species, evolved in closed
// form. See package evolve.
package qhubbard

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/fumin/qhubbard/state"
)

// Hopping returns the one-body coefficient matrix of an open chain with
// tunneling amplitude t between neighboring orbitals.
func Hopping(orbitals int, t float64) *mat.CDense {
	h := mat.NewCDense(orbitals, orbitals, nil)
	for i := 0; i+1 < orbitals; i++ {
		h.Set(i, i+1, complex(-t, 0))
		h.Set(i+1, i, complex(-t, 0))
	}
	return h
}

// AddPotential adds the on-site energies vs to the diagonal of h1.
func AddPotential(h1 *mat.CDense, vs []float64) error {
	r, c := h1.Dims()
	if r != c || r != len(vs) {
		return errors.Errorf("%d %d %d", r, c, len(vs))
	}
	for i, v := range vs {
		h1.Set(i, i, h1.At(i, i)+complex(v, 0))
	}
	return nil
}

// Onsite returns the density-density coefficient matrix of an on-site
// interaction of strength u between the spin species.
func Onsite(orbitals int, u float64) *mat.Dense {
	v := mat.NewDense(orbitals, orbitals, nil)
	for i := 0; i < orbitals; i++ {
		v.Set(i, i, u)
	}
	return v
}

// GaussianTrap returns the on-site energies of a Gaussian well of the given
// depth and width, centered on the chain.
func GaussianTrap(orbitals int, depth, width float64) []float64 {
	vs := make([]float64, orbitals)
	center := float64(orbitals-1) / 2
	for i := range vs {
		x := (float64(i) - center) / width
		vs[i] = -depth * math.Exp(-x*x/2)
	}
	return vs
}

// Densities returns the charge (up plus down) and spin (up minus down)
// densities at each site.
func Densities(w *state.Wavefunction) (charge, spin []float64) {
	rhoUp, rhoDown := w.SpinDensityMatrices()
	n := w.Sector().Orbitals
	charge, spin = make([]float64, n), make([]float64, n)
	for i := 0; i < n; i++ {
		up, down := real(rhoUp.At(i, i)), real(rhoDown.At(i, i))
		charge[i] = up + down
		spin[i] = up - down
	}
	return charge, spin
}
