package state

import (
	"flag"
	"fmt"
	"log"
	"math"
	"math/cmplx"
	"math/rand/v2"
	"testing"

	"github.com/pkg/errors"
)

func TestNewWavefunction(t *testing.T) {
	t.Parallel()
	tests := []struct {
		sector Sector
		size   int
	}{
		{sector: Sector{Particles: 2, Spin: 0, Orbitals: 4}, size: 16},
		{sector: Sector{Particles: 3, Spin: 1, Orbitals: 4}, size: 24},
		{sector: Sector{Particles: 1, Spin: 1, Orbitals: 2}, size: 2},
		{sector: Sector{Particles: 0, Spin: 0, Orbitals: 3}, size: 1},
		{sector: Sector{Particles: 4, Spin: -2, Orbitals: 3}, size: 9},
	}
	for _, test := range tests {
		t.Run(fmt.Sprintf("%+v", test.sector), func(t *testing.T) {
			t.Parallel()
			w, err := NewWavefunction(test.sector)
			if err != nil {
				t.Fatalf("%+v", err)
			}
			if len(w.Amps) != test.size {
				t.Fatalf("%d, expected %d", len(w.Amps), test.size)
			}
			if w.Norm() != 0 {
				t.Fatalf("%f", w.Norm())
			}
		})
	}
}

func TestInvalidSector(t *testing.T) {
	t.Parallel()
	tests := []Sector{
		{Particles: 1, Spin: 0, Orbitals: 2},
		{Particles: 2, Spin: 4, Orbitals: 2},
		{Particles: 10, Spin: 0, Orbitals: 2},
		{Particles: 2, Spin: 0, Orbitals: 0},
	}
	for _, sector := range tests {
		t.Run(fmt.Sprintf("%+v", sector), func(t *testing.T) {
			t.Parallel()
			_, err := NewWavefunction(sector)
			var ise *InvalidSectorError
			if !errors.As(err, &ise) {
				t.Fatalf("%+v", err)
			}
		})
	}
}

func TestBasis(t *testing.T) {
	t.Parallel()
	b := NewBasis(4, 2)
	patterns := []uint64{0b0011, 0b0101, 0b1001, 0b0110, 0b1010, 0b1100}
	if len(b.Patterns) != len(patterns) {
		t.Fatalf("%d, expected %d", len(b.Patterns), len(patterns))
	}
	for i, p := range patterns {
		if b.Patterns[i] != p {
			t.Fatalf("%d %b, expected %b", i, b.Patterns[i], p)
		}
		if b.Index(p) != i {
			t.Fatalf("%d %d", b.Index(p), i)
		}
	}
	if b.Index(0b0111) != -1 {
		t.Fatalf("%d", b.Index(0b0111))
	}
}

func TestParityBetween(t *testing.T) {
	t.Parallel()
	tests := []struct {
		pattern uint64
		p       int
		q       int
		parity  int
	}{
		{pattern: 0b0110, p: 0, q: 3, parity: 0},
		{pattern: 0b0010, p: 0, q: 3, parity: 1},
		{pattern: 0b0110, p: 3, q: 0, parity: 0},
		{pattern: 0b0110, p: 1, q: 2, parity: 0},
		{pattern: 0b1111, p: 0, q: 3, parity: 0},
		{pattern: 0b1111, p: 1, q: 3, parity: 1},
		{pattern: 0b0100, p: 2, q: 2, parity: 0},
	}
	for _, test := range tests {
		t.Run(fmt.Sprintf("%b %d %d", test.pattern, test.p, test.q), func(t *testing.T) {
			t.Parallel()
			if got := parityBetween(test.pattern, test.p, test.q); got != test.parity {
				t.Fatalf("%d, expected %d", got, test.parity)
			}
		})
	}
}

func TestInitialize(t *testing.T) {
	t.Parallel()
	sector := Sector{Particles: 2, Spin: 0, Orbitals: 4}

	w, err := NewWavefunction(sector)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if err := w.Initialize(ReferenceDeterminant, nil); err != nil {
		t.Fatalf("%+v", err)
	}
	ia, ib := w.Alpha.Index(0b0001), w.Beta.Index(0b0001)
	for i, v := range w.Amps {
		switch i {
		case w.Idx(ia, ib):
			if v != 1 {
				t.Fatalf("%d %f", i, v)
			}
		default:
			if v != 0 {
				t.Fatalf("%d %f", i, v)
			}
		}
	}

	rng := rand.New(rand.NewPCG(42, 42))
	if err := w.Initialize(UniformRandom, rng); err != nil {
		t.Fatalf("%+v", err)
	}
	if w.Norm() == 0 {
		t.Fatalf("%f", w.Norm())
	}
	if err := w.Initialize(UniformRandom, nil); err == nil {
		t.Fatalf("expected error")
	}
	if err := w.Initialize(InitStrategy(99), rng); err == nil {
		t.Fatalf("expected error")
	}
}

func TestInnerProduct(t *testing.T) {
	t.Parallel()
	sector := Sector{Particles: 1, Spin: 1, Orbitals: 2}
	a, err := NewWavefunction(sector)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	b := a.Clone()
	a.Amps[0], a.Amps[1] = 1, 1i
	b.Amps[0], b.Amps[1] = 2, 0

	ip, err := InnerProduct(a, b)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if ip != 2 {
		t.Fatalf("%f", ip)
	}

	// Conjugate linearity in the first argument.
	for i := range a.Amps {
		a.Amps[i] *= 1i
	}
	ip, err = InnerProduct(a, b)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if ip != -2i {
		t.Fatalf("%f", ip)
	}

	c, err := NewWavefunction(Sector{Particles: 1, Spin: -1, Orbitals: 2})
	if err != nil {
		t.Fatalf("%+v", err)
	}
	var sme *SectorMismatchError
	if _, err := InnerProduct(a, c); !errors.As(err, &sme) {
		t.Fatalf("%+v", err)
	}
}

func TestSpinDensityMatricesDeterminant(t *testing.T) {
	t.Parallel()
	sector := Sector{Particles: 3, Spin: 1, Orbitals: 3}
	w, err := NewWavefunction(sector)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if err := w.Initialize(ReferenceDeterminant, nil); err != nil {
		t.Fatalf("%+v", err)
	}

	rhoUp, rhoDown := w.SpinDensityMatrices()
	wantUp := []float64{1, 1, 0}
	wantDown := []float64{1, 0, 0}
	for p := 0; p < 3; p++ {
		for q := 0; q < 3; q++ {
			var want complex128
			if p == q {
				want = complex(wantUp[p], 0)
			}
			if rhoUp.At(p, q) != want {
				t.Fatalf("%d %d %f", p, q, rhoUp.At(p, q))
			}
			want = 0
			if p == q {
				want = complex(wantDown[p], 0)
			}
			if rhoDown.At(p, q) != want {
				t.Fatalf("%d %d %f", p, q, rhoDown.At(p, q))
			}
		}
	}
}

func TestSpinDensityMatricesOffDiagonal(t *testing.T) {
	t.Parallel()
	w, err := NewWavefunction(Sector{Particles: 1, Spin: 1, Orbitals: 2})
	if err != nil {
		t.Fatalf("%+v", err)
	}
	alpha, beta := complex(0.6, 0), complex(0, 0.8)
	w.Amps[w.Alpha.Index(0b01)], w.Amps[w.Alpha.Index(0b10)] = alpha, beta

	rhoUp, _ := w.SpinDensityMatrices()
	if got := rhoUp.At(0, 1); cmplx.Abs(got-cmplx.Conj(alpha)*beta) > 1e-14 {
		t.Fatalf("%f", got)
	}
	if got := rhoUp.At(1, 0); cmplx.Abs(got-cmplx.Conj(beta)*alpha) > 1e-14 {
		t.Fatalf("%f", got)
	}
}

func TestSpinDensityMatricesTrace(t *testing.T) {
	t.Parallel()
	sector := Sector{Particles: 4, Spin: 0, Orbitals: 5}
	w, err := NewWavefunction(sector)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	rng := rand.New(rand.NewPCG(7, 7))
	if err := w.Initialize(UniformRandom, rng); err != nil {
		t.Fatalf("%+v", err)
	}
	norm := w.Norm()
	for i := range w.Amps {
		w.Amps[i] /= complex(norm, 0)
	}

	rhoUp, rhoDown := w.SpinDensityMatrices()
	var traceUp, traceDown complex128
	for p := 0; p < sector.Orbitals; p++ {
		traceUp += rhoUp.At(p, p)
		traceDown += rhoDown.At(p, p)
	}
	if math.Abs(real(traceUp)-float64(sector.NumUp())) > 1e-12 {
		t.Fatalf("%f", traceUp)
	}
	if math.Abs(real(traceDown)-float64(sector.NumDown())) > 1e-12 {
		t.Fatalf("%f", traceDown)
	}

	// Hermiticity.
	for p := 0; p < sector.Orbitals; p++ {
		for q := 0; q < sector.Orbitals; q++ {
			if cmplx.Abs(rhoUp.At(p, q)-cmplx.Conj(rhoUp.At(q, p))) > 1e-12 {
				t.Fatalf("%d %d", p, q)
			}
		}
	}
}

func TestMain(m *testing.M) {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds | log.Llongfile | log.LstdFlags)

	m.Run()
}
