package beam

import (
	"errors"

	"github.com/san-kum/csrtrack/internal/wake"
	"gonum.org/v1/gonum/floats"
)

// ApplyWake kicks every particle with the CSR wake sampled on g over a step
// of stepLength metres. Fields are interpolated at (de-chirped x, z), the
// longitudinal kick goes to pz and, when applyTransverse is set, the
// transverse kick goes to px. Particles outside the mesh get no kick. The
// grid is validated before anything changes.
func (b *Beam) ApplyWake(g *wake.Grid, stepLength float64, applyTransverse bool) error {
	if g == nil {
		return errors.New("beam: nil wake grid")
	}
	if err := g.Validate(applyTransverse); err != nil {
		return err
	}
	xt, err := b.DechirpedX()
	if err != nil {
		return err
	}
	z := b.coords.Z

	dpz, err := wake.Kick(g.XAxis, g.ZAxis, wake.Scale(g.DEdct, stepLength, b.refEnergy), xt, z)
	if err != nil {
		return err
	}
	// Ultra-relativistic: the fractional energy change is the pz change.
	pz := clone(b.coords.Pz)
	floats.Add(pz, dpz)

	px := b.coords.Px
	if applyTransverse {
		dpx, err := wake.Kick(g.XAxis, g.ZAxis, wake.Scale(g.XKick, stepLength, b.refEnergy), xt, z)
		if err != nil {
			return err
		}
		px = clone(px)
		floats.Add(px, dpx)
	}

	b.coords.Pz = pz
	b.coords.Px = px
	b.refresh()
	return nil
}
