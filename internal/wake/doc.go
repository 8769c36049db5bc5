// Package wake holds CSR wake grids and the machinery to sample them at
// particle positions.
//
// A wake solver produces two fields on a rectangular mesh spanned by a
// horizontal axis and a longitudinal axis:
//
//   - dE/d(ct): longitudinal energy-loss rate
//   - x kick: transverse momentum-change rate
//
// The package does not compute these fields. It validates the [Grid] shape,
// converts field values to per-step fractional deviations and evaluates a
// [BiLinear] interpolant that is exactly zero outside the mesh.
//
// # Sources
//
// A [Source] yields the grid for the bunch's current path position:
//
//	src, _ := wake.NewFileSource("wake.yaml")
//	grid, _ := src.Grid(ctx, position)
//	dpz, _ := wake.Kick(grid.XAxis, grid.ZAxis, wake.Scale(grid.DEdct, ds, e0), xs, zs)
package wake
