// Command run simulates a quench of a one-dimensional Fermi-Hubbard chain.
//
// Particles are prepared in the ground state of a trapped non-interacting
// chain with a small spin-dependent tilt, then released and evolved under
// hopping plus on-site interaction by Trotterized Givens and density-density
// steps. Site-resolved charge and spin densities are archived in SQLite,
// exported as CSV, and rendered as a figure.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"image/color"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/fumin/qhubbard"
	"github.com/fumin/qhubbard/evolve"
	"github.com/fumin/qhubbard/state"
	"github.com/fumin/qhubbard/store"
)

const (
	fnameDB        = "densities.db"
	fnameDensities = "densities.csv"
	fnameFigure    = "density.png"
)

var (
	runDir    = flag.String("d", filepath.Join("runs", "qhubbard"), "run directory")
	sites     = flag.Int("sites", 8, "number of lattice sites")
	particles = flag.Int("particles", 4, "number of particles")
	hubbardU  = flag.Float64("u", 2, "onsite interaction strength")
	totalT    = flag.Float64("t", 4, "total evolution time")
	steps     = flag.Int("steps", 80, "number of Trotter steps")
)

// prepare returns the ground state of the trapped non-interacting chain.
// The reference determinant occupies the lowest orbitals, and rotating it with
// the eigenvector unitary of the trap Hamiltonian turns those into its lowest
// eigenorbitals. The tilt is opposite for the two spin species so that charge
// and spin densities separate after the quench.
func prepare() (*state.Wavefunction, error) {
	sector := state.Sector{Particles: *particles, Spin: 0, Orbitals: *sites}
	w, err := state.NewWavefunction(sector)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	if err := w.Initialize(state.ReferenceDeterminant, nil); err != nil {
		return nil, errors.Wrap(err, "")
	}

	trap := qhubbard.GaussianTrap(*sites, 4, float64(*sites)/6)
	for _, spin := range []state.Spin{state.SpinUp, state.SpinDown} {
		tilt := 0.2
		if spin == state.SpinDown {
			tilt = -tilt
		}
		vs := make([]float64, *sites)
		for i := range vs {
			vs[i] = trap[i] + tilt*float64(i)
		}

		h := qhubbard.Hopping(*sites, 1)
		if err := qhubbard.AddPotential(h, vs); err != nil {
			return nil, errors.Wrap(err, "")
		}
		_, vecs, err := evolve.Diagonalize(h)
		if err != nil {
			return nil, errors.Wrap(err, "")
		}
		if err := evolve.OneBody(w, vecs, spin); err != nil {
			return nil, errors.Wrap(err, fmt.Sprintf("%s", spin))
		}
	}
	return w, nil
}

type profile struct {
	step   int
	t      float64
	charge []float64
	spin   []float64
}

func quench(dir string, w *state.Wavefunction) ([]profile, error) {
	st, err := store.Open(filepath.Join(dir, fnameDB))
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	defer st.Close()

	h1 := qhubbard.Hopping(*sites, 1)
	v := qhubbard.Onsite(*sites, *hubbardU)
	dt := *totalT / float64(*steps)
	u, err := evolve.Expm(h1, dt)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}

	profiles := make([]profile, 0, *steps+1)
	for step := 0; step <= *steps; step++ {
		t := float64(step) * dt
		charge, spin := qhubbard.Densities(w)
		if err := st.Put(step, t, charge, spin); err != nil {
			return nil, errors.Wrap(err, fmt.Sprintf("%d", step))
		}
		profiles = append(profiles, profile{step: step, t: t, charge: charge, spin: spin})

		if step == *steps {
			break
		}
		if err := evolve.OneBody(w, u, state.SpinBoth); err != nil {
			return nil, errors.Wrap(err, fmt.Sprintf("%d", step))
		}
		if err := evolve.DensityDensity(w, v, dt); err != nil {
			return nil, errors.Wrap(err, fmt.Sprintf("%d", step))
		}
		if step%10 == 0 {
			log.Printf("%d/%d norm %f", step, *steps, w.Norm())
		}
	}
	return profiles, nil
}

func writeCSV(dir string, profiles []profile) error {
	f, err := os.Create(filepath.Join(dir, fnameDensities))
	if err != nil {
		return errors.Wrap(err, "")
	}
	w := csv.NewWriter(f)

	if err1 := w.Write([]string{"step", "t", "site", "charge", "spin"}); err1 != nil && err == nil {
		err = errors.Wrap(err1, "")
	}
	for _, p := range profiles {
		for site, c := range p.charge {
			row := []string{
				strconv.Itoa(p.step),
				strconv.FormatFloat(p.t, 'f', -1, 64),
				strconv.Itoa(site),
				strconv.FormatFloat(c, 'f', -1, 64),
				strconv.FormatFloat(p.spin[site], 'f', -1, 64),
			}
			if err1 := w.Write(row); err1 != nil && err == nil {
				err = errors.Wrap(err1, "")
				break
			}
		}
	}

	w.Flush()
	if err1 := w.Error(); err1 != nil && err == nil {
		err = errors.Wrap(err1, "")
	}
	if err1 := f.Close(); err1 != nil && err == nil {
		err = errors.Wrap(err1, "")
	}
	return err
}

func writeFigure(dir string, profiles []profile) error {
	p := plot.New()
	p.Title.Text = "Fermi-Hubbard quench"
	p.X.Label.Text = "site"
	p.Y.Label.Text = "density"

	colors := []color.RGBA{
		{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff},
		{R: 0xff, G: 0x7f, B: 0x0e, A: 0xff},
		{R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff},
	}
	for i, pi := range []int{0, len(profiles) / 2, len(profiles) - 1} {
		prof := profiles[pi]

		charge := make(plotter.XYs, len(prof.charge))
		for site, c := range prof.charge {
			charge[site] = plotter.XY{X: float64(site), Y: c}
		}
		cLine, err := plotter.NewLine(charge)
		if err != nil {
			return errors.Wrap(err, "")
		}
		cLine.Color = colors[i]
		p.Add(cLine)
		p.Legend.Add(fmt.Sprintf("charge t=%.1f", prof.t), cLine)

		spin := make(plotter.XYs, len(prof.spin))
		for site, s := range prof.spin {
			spin[site] = plotter.XY{X: float64(site), Y: s}
		}
		sLine, err := plotter.NewLine(spin)
		if err != nil {
			return errors.Wrap(err, "")
		}
		sLine.Color = colors[i]
		sLine.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
		p.Add(sLine)
		p.Legend.Add(fmt.Sprintf("spin t=%.1f", prof.t), sLine)
	}

	if err := p.Save(6*vg.Inch, 4*vg.Inch, filepath.Join(dir, fnameFigure)); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds | log.Llongfile | log.LstdFlags)

	if err := mainWithErr(); err != nil {
		log.Fatalf("%+v", err)
	}
}

func mainWithErr() error {
	if err := os.MkdirAll(*runDir, os.ModePerm); err != nil {
		return errors.Wrap(err, "")
	}

	w, err := prepare()
	if err != nil {
		return errors.Wrap(err, "")
	}
	profiles, err := quench(*runDir, w)
	if err != nil {
		return errors.Wrap(err, "")
	}
	if err := writeCSV(*runDir, profiles); err != nil {
		return errors.Wrap(err, "")
	}
	if err := writeFigure(*runDir, profiles); err != nil {
		return errors.Wrap(err, "")
	}

	final := profiles[len(profiles)-1]
	for site, c := range final.charge {
		fmt.Printf("%d,%f,%f\n", site, c, final.spin[site])
	}
	return nil
}
