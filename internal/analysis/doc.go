// Package analysis derives longitudinal and phase-space diagnostics from a
// particle distribution.
//
//   - [NewProfile]: binned current profile along z
//   - [FormFactor]: bunch form factor |F(k)|² of a profile
//   - [NewPhaseSpace]: 2D scatter of two coordinates, rendered as text
//
// # Coherent Emission
//
// The form factor scales coherent radiation power. A bunch much shorter
// than the wavelength has F ≈ 1:
//
//	p, _ := analysis.NewProfile(b.Z(), b.Charge(), 128)
//	ff := analysis.FormFactor(p.Counts)
package analysis
