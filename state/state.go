// Package state implements many-body wavefunctions restricted to a fixed
// particle number and total spin projection sector.
//
// A sectored wavefunction stores one amplitude per pair of spin-up and
// spin-down occupation patterns. The canonical operator ordering of a basis
// state is all spin-up creation operators in ascending orbital order, followed
// by all spin-down creation operators in ascending orbital order.
package state

import (
	"fmt"
	"math"
	"math/cmplx"
	"math/rand/v2"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Spin selects the spin species an operation acts on.
type Spin int

const (
	SpinUp Spin = iota
	SpinDown
	SpinBoth
)

func (s Spin) String() string {
	switch s {
	case SpinUp:
		return "up"
	case SpinDown:
		return "down"
	case SpinBoth:
		return "both"
	}
	return fmt.Sprintf("Spin(%d)", int(s))
}

// InitStrategy is a wavefunction initialization strategy.
type InitStrategy int

const (
	// UniformRandom fills every amplitude with a complex number whose real
	// and imaginary parts are uniform in [-1, 1). The result is not normalized.
	UniformRandom InitStrategy = iota
	// ReferenceDeterminant sets amplitude 1 on the pattern pair occupying the
	// lowest orbitals of each spin species, and 0 elsewhere.
	ReferenceDeterminant
)

// Sector identifies a subspace of fixed particle number and spin projection.
// Spin is the difference between the spin-up and spin-down particle counts.
type Sector struct {
	Particles int
	Spin      int
	Orbitals  int
}

// NumUp returns the number of spin-up particles.
func (s Sector) NumUp() int { return (s.Particles + s.Spin) / 2 }

// NumDown returns the number of spin-down particles.
func (s Sector) NumDown() int { return (s.Particles - s.Spin) / 2 }

func (s Sector) validate() error {
	if s.Orbitals <= 0 || s.Orbitals > 32 {
		return &InvalidSectorError{Sector: s}
	}
	if (s.Particles+s.Spin)%2 != 0 {
		return &InvalidSectorError{Sector: s}
	}
	for _, k := range []int{s.NumUp(), s.NumDown()} {
		if k < 0 || k > s.Orbitals {
			return &InvalidSectorError{Sector: s}
		}
	}
	return nil
}

// InvalidSectorError reports a malformed particle/spin/orbital tuple.
type InvalidSectorError struct {
	Sector Sector
}

func (e *InvalidSectorError) Error() string {
	return fmt.Sprintf("invalid sector %+v", e.Sector)
}

// SectorMismatchError reports an operation between incompatible sectors.
type SectorMismatchError struct {
	A Sector
	B Sector
}

func (e *SectorMismatchError) Error() string {
	return fmt.Sprintf("sector mismatch %+v %+v", e.A, e.B)
}

// MixedSectorError reports dense amplitudes spanning more than one sector.
type MixedSectorError struct {
	A Sector
	B Sector
}

func (e *MixedSectorError) Error() string {
	return fmt.Sprintf("mixed sectors %+v %+v", e.A, e.B)
}

// Wavefunction is a many-body state within a single sector.
// Amps is row-major over (spin-up pattern, spin-down pattern):
// the amplitude of patterns (i, j) is Amps[i*len(Beta.Patterns)+j].
type Wavefunction struct {
	sector Sector

	Alpha *Basis
	Beta  *Basis
	Amps  []complex128
}

// NewWavefunction allocates a zero wavefunction for sector.
func NewWavefunction(sector Sector) (*Wavefunction, error) {
	if err := sector.validate(); err != nil {
		return nil, err
	}
	w := &Wavefunction{sector: sector}
	w.Alpha = NewBasis(sector.Orbitals, sector.NumUp())
	w.Beta = NewBasis(sector.Orbitals, sector.NumDown())
	w.Amps = make([]complex128, len(w.Alpha.Patterns)*len(w.Beta.Patterns))
	return w, nil
}

func (w *Wavefunction) Sector() Sector { return w.sector }

// Idx returns the position in Amps of the (i, j) pattern pair.
func (w *Wavefunction) Idx(i, j int) int { return i*len(w.Beta.Patterns) + j }

// Initialize overwrites the amplitudes according to strategy.
// rng is consumed by UniformRandom and ignored otherwise.
func (w *Wavefunction) Initialize(strategy InitStrategy, rng *rand.Rand) error {
	switch strategy {
	case UniformRandom:
		if rng == nil {
			return errors.Errorf("nil rng")
		}
		for i := range w.Amps {
			w.Amps[i] = complex(rng.Float64()*2-1, rng.Float64()*2-1)
		}
	case ReferenceDeterminant:
		for i := range w.Amps {
			w.Amps[i] = 0
		}
		a := w.Alpha.Index(1<<w.sector.NumUp() - 1)
		b := w.Beta.Index(1<<w.sector.NumDown() - 1)
		w.Amps[w.Idx(a, b)] = 1
	default:
		return errors.Errorf("unknown strategy %d", strategy)
	}
	return nil
}

// Clone returns a deep copy of w.
func (w *Wavefunction) Clone() *Wavefunction {
	c, err := NewWavefunction(w.sector)
	if err != nil {
		panic(fmt.Sprintf("%+v", err))
	}
	copy(c.Amps, w.Amps)
	return c
}

// Norm returns the 2-norm of the amplitudes.
func (w *Wavefunction) Norm() float64 {
	var sum float64
	for _, v := range w.Amps {
		sum += real(v)*real(v) + imag(v)*imag(v)
	}
	return math.Sqrt(sum)
}

// InnerProduct returns <a|b>, conjugate-linear in a.
func InnerProduct(a, b *Wavefunction) (complex128, error) {
	if a.sector != b.sector {
		return 0, &SectorMismatchError{A: a.sector, B: b.sector}
	}
	var sum complex128
	for i, v := range a.Amps {
		sum += cmplx.Conj(v) * b.Amps[i]
	}
	return sum, nil
}

// Fidelity returns |<a|b>|^2 normalized by the norms of a and b.
func Fidelity(a, b *Wavefunction) (float64, error) {
	ip, err := InnerProduct(a, b)
	if err != nil {
		return 0, err
	}
	na, nb := a.Norm(), b.Norm()
	return cmplx.Abs(ip) * cmplx.Abs(ip) / (na * na * nb * nb), nil
}

// SpinDensityMatrices returns the one-particle density matrices
// rho[p][q] = <a†_p a_q> of the spin-up and spin-down species.
// The wavefunction is not modified.
func (w *Wavefunction) SpinDensityMatrices() (*mat.CDense, *mat.CDense) {
	n := w.sector.Orbitals
	rhoUp := mat.NewCDense(n, n, nil)
	rhoDown := mat.NewCDense(n, n, nil)
	nb := len(w.Beta.Patterns)

	// Spin-up: pair whole rows of the amplitude matrix.
	for ia, a := range w.Alpha.Patterns {
		for _, q := range w.Alpha.Occ(ia) {
			for p := 0; p < n; p++ {
				if p != q && a&(1<<p) != 0 {
					continue
				}
				moved := a&^(1<<q) | 1 << p
				ja := w.Alpha.Index(moved)
				sign := complex128(1)
				if parityBetween(a, p, q) == 1 {
					sign = -1
				}
				var sum complex128
				for j := 0; j < nb; j++ {
					sum += cmplx.Conj(w.Amps[ja*nb+j]) * w.Amps[ia*nb+j]
				}
				rhoUp.Set(p, q, rhoUp.At(p, q)+sign*sum)
			}
		}
	}

	// Spin-down: pair whole columns. The spin-up operators commute through in
	// pairs, so only the spin-down internal parity contributes.
	na := len(w.Alpha.Patterns)
	for ib, b := range w.Beta.Patterns {
		for _, q := range w.Beta.Occ(ib) {
			for p := 0; p < n; p++ {
				if p != q && b&(1<<p) != 0 {
					continue
				}
				moved := b&^(1<<q) | 1 << p
				jb := w.Beta.Index(moved)
				sign := complex128(1)
				if parityBetween(b, p, q) == 1 {
					sign = -1
				}
				var sum complex128
				for i := 0; i < na; i++ {
					sum += cmplx.Conj(w.Amps[i*nb+jb]) * w.Amps[i*nb+ib]
				}
				rhoDown.Set(p, q, rhoDown.At(p, q)+sign*sum)
			}
		}
	}

	return rhoUp, rhoDown
}
