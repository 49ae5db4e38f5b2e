package exact

import (
	"flag"
	"log"
	"math/cmplx"
	"math/rand/v2"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestHubbardOneParticle(t *testing.T) {
	t.Parallel()
	// Two orbitals, four modes. Mode 0 is spin-up orbital 0 and the most
	// significant bit, so index 0b1000 holds one up particle on orbital 0 and
	// 0b0010 one up particle on orbital 1.
	hUp := mat.NewCDense(2, 2, []complex128{
		1.5, complex(0.25, 0.75),
		complex(0.25, -0.75), -0.5,
	})
	h := Hubbard(2, hUp, nil, nil)

	tests := []struct {
		i, j int
		want complex128
	}{
		{0b1000, 0b1000, 1.5},
		{0b0010, 0b0010, -0.5},
		{0b1000, 0b0010, complex(0.25, 0.75)},
		{0b0010, 0b1000, complex(0.25, -0.75)},
		{0b0000, 0b0000, 0},
		{0b0100, 0b0100, 0},
	}
	for _, tc := range tests {
		if got := h.At(tc.i, tc.j); got != tc.want {
			t.Fatalf("%04b %04b %f, expected %f", tc.i, tc.j, got, tc.want)
		}
	}
}

func TestHubbardInteraction(t *testing.T) {
	t.Parallel()
	// One orbital: only the doubly occupied string 0b11 feels the term.
	v := mat.NewDense(1, 1, []float64{3.5})
	h := Hubbard(1, nil, nil, v)
	for i := 0; i < 4; i++ {
		var want complex128
		if i == 0b11 {
			want = 3.5
		}
		if got := h.At(i, i); got != want {
			t.Fatalf("%02b %f, expected %f", i, got, want)
		}
	}
}

func TestHubbardJordanWignerSign(t *testing.T) {
	t.Parallel()
	// An up hop across orbital 0's occupied down mode picks up a minus sign:
	// 0b0110 (up on orbital 1, down on orbital 0) hops to 0b1100.
	hUp := mat.NewCDense(2, 2, []complex128{
		0, complex(0.5, 0.25),
		complex(0.5, -0.25), 0,
	})
	h := Hubbard(2, hUp, nil, nil)

	if got, want := h.At(0b1100, 0b0110), -hUp.At(0, 1); got != want {
		t.Fatalf("%f, expected %f", got, want)
	}
	// Without the intervening particle the sign is positive.
	if got, want := h.At(0b1000, 0b0010), hUp.At(0, 1); got != want {
		t.Fatalf("%f, expected %f", got, want)
	}
}

func TestHubbardHermitian(t *testing.T) {
	t.Parallel()
	rng := rand.New(rand.NewPCG(7, 7))
	hUp, hDown := randHermitian(rng, 2), randHermitian(rng, 2)
	v := mat.NewDense(2, 2, nil)
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			v.Set(i, j, rng.Float64()*2-1)
		}
	}

	h := Hubbard(2, hUp, hDown, v)
	dim, _ := h.Dims()
	for i := 0; i < dim; i++ {
		for j := 0; j < dim; j++ {
			if d := cmplx.Abs(h.At(i, j) - cmplx.Conj(h.At(j, i))); d > 1e-14 {
				t.Fatalf("%d %d %f %f", i, j, h.At(i, j), h.At(j, i))
			}
		}
	}
}

func TestApply(t *testing.T) {
	t.Parallel()
	m := mat.NewCDense(2, 2, []complex128{
		1, complex(0, 1),
		2, 0,
	})
	vec := mat.NewCDense(2, 1, []complex128{3, complex(0, 4)})
	out := Apply(m, vec)

	want := []complex128{-1, 6}
	for i, w := range want {
		if got := out.At(i, 0); got != w {
			t.Fatalf("%d %f, expected %f", i, got, w)
		}
	}
}

func randHermitian(rng *rand.Rand, n int) *mat.CDense {
	h := mat.NewCDense(n, n, nil)
	for i := 0; i < n; i++ {
		h.Set(i, i, complex(rng.Float64()*2-1, 0))
		for j := i + 1; j < n; j++ {
			v := complex(rng.Float64()*2-1, rng.Float64()*2-1)
			h.Set(i, j, v)
			h.Set(j, i, cmplx.Conj(v))
		}
	}
	return h
}

func TestMain(m *testing.M) {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds | log.Llongfile | log.LstdFlags)

	m.Run()
}
