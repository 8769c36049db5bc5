// Package beam holds a relativistic particle bunch in 6D phase space and
// applies CSR wake kicks to it.
//
// A [Beam] carries Bmad-style coordinates (x, px, y, py, z, pz) where the
// momenta are deviations normalized by the reference momentum p0c. It is
// built from one of three closed input styles:
//
//   - [FromFile]: a whitespace separated N×6 coordinate table
//   - [FromGenerator]: a distgen input file
//   - [FromArchive]: a stored particle group
//
// Every state change (construction, [Beam.AdvanceStep], [Beam.ApplyWake])
// ends by refreshing the cached statistics returned by [Beam.Stats].
//
// # Example
//
//	b, _ := beam.New(beam.FromFile{Path: "beam.dat", Charge: 1e-9, Energy: 1e8})
//	_ = b.AdvanceStep(drift, 0.01, true)
//	_ = b.ApplyWake(grid, 0.01, false)
//
// # Thread Safety
//
// A Beam is NOT safe for concurrent use. The driver serializes steps and
// kicks; only the interpolation inside ApplyWake fans out over particles.
package beam
