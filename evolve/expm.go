package evolve

import (
	"math"
	"math/cmplx"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Diagonalize returns the ascending eigenvalues and an orthonormal eigenvector
// column matrix of the Hermitian matrix h. The complex eigenproblem is solved
// through the real symmetric embedding [[A, -B], [B, A]] of h = A + iB, whose
// eigenvectors (x; y) correspond to complex eigenvectors x + iy.
func Diagonalize(h *mat.CDense) ([]float64, *mat.CDense, error) {
	n, c := h.Dims()
	if n != c {
		return nil, nil, errors.Errorf("not square: %dx%d", n, c)
	}
	var scale float64
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			scale = math.Max(scale, cmplx.Abs(h.At(i, j)))
		}
	}
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			if dev := cmplx.Abs(h.At(i, j) - cmplx.Conj(h.At(j, i))); dev > 1e-12*math.Max(scale, 1) {
				return nil, nil, errors.Errorf("not hermitian at %d %d: %f", i, j, dev)
			}
		}
	}

	sym := mat.NewSymDense(2*n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			a := real(h.At(i, j))
			sym.SetSym(i, j, a)
			sym.SetSym(n+i, n+j, a)
		}
		for j := 0; j < n; j++ {
			sym.SetSym(i, n+j, -imag(h.At(i, j)))
		}
	}

	var eig mat.EigenSym
	if ok := eig.Factorize(sym, true); !ok {
		return nil, nil, errors.Errorf("factorization failed")
	}
	vals := eig.Values(nil)
	var evs mat.Dense
	eig.VectorsTo(&evs)

	// Each complex eigenvector appears twice among the real ones, as (x; y)
	// and (-y; x). Keep a maximal orthonormal complex set by Gram-Schmidt.
	outVals := make([]float64, 0, n)
	accepted := make([][]complex128, 0, n)
	for _, thresh := range []float64{0.5, 1e-6} {
		for k := 0; k < 2*n && len(accepted) < n; k++ {
			v := make([]complex128, n)
			for i := 0; i < n; i++ {
				v[i] = complex(evs.At(i, k), evs.At(n+i, k))
			}
			for _, u := range accepted {
				ip := cdot(u, v)
				for i := range v {
					v[i] -= ip * u[i]
				}
			}
			nrm := cnorm(v)
			if nrm < thresh {
				continue
			}
			for i := range v {
				v[i] /= complex(nrm, 0)
			}
			accepted = append(accepted, v)
			outVals = append(outVals, vals[k])
		}
		if len(accepted) == n {
			break
		}
	}
	if len(accepted) != n {
		return nil, nil, errors.Errorf("%d eigenvectors, expected %d", len(accepted), n)
	}

	vecs := mat.NewCDense(n, n, nil)
	for k, v := range accepted {
		for i := 0; i < n; i++ {
			vecs.Set(i, k, v[i])
		}
	}
	return outVals, vecs, nil
}

// Expm returns exp(-i*t*h) for Hermitian h.
func Expm(h *mat.CDense, t float64) (*mat.CDense, error) {
	vals, vecs, err := Diagonalize(h)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	n, _ := h.Dims()

	phases := make([]complex128, n)
	for k, v := range vals {
		phases[k] = cmplx.Exp(complex(0, -t*v))
	}
	u := mat.NewCDense(n, n, nil)
	for p := 0; p < n; p++ {
		for q := 0; q < n; q++ {
			var sum complex128
			for k := 0; k < n; k++ {
				sum += vecs.At(p, k) * phases[k] * cmplx.Conj(vecs.At(q, k))
			}
			u.Set(p, q, sum)
		}
	}
	return u, nil
}

func cdot(u, v []complex128) complex128 {
	var sum complex128
	for i, ui := range u {
		sum += cmplx.Conj(ui) * v[i]
	}
	return sum
}

func cnorm(v []complex128) float64 {
	var sum float64
	for _, vi := range v {
		sum += real(vi)*real(vi) + imag(vi)*imag(vi)
	}
	return math.Sqrt(sum)
}
