package wake_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/csrtrack/internal/wake"
)

var _ = Describe("BiLinear", func() {
	var (
		xs, zs []float64
		bi     *wake.BiLinear
	)

	// v(x, z) = 1 + 2x + 3z + xz is reproduced exactly by bilinear
	// interpolation.
	plane := func(x, z float64) float64 { return 1 + 2*x + 3*z + x*z }

	BeforeEach(func() {
		xs = []float64{-1, 0, 0.5, 2}
		zs = []float64{-2, -1, 1}
		vals := make([][]float64, len(xs))
		for i, x := range xs {
			vals[i] = make([]float64, len(zs))
			for j, z := range zs {
				vals[i][j] = plane(x, z)
			}
		}
		var err error
		bi, err = wake.NewBiLinear(xs, zs, vals)
		Expect(err).NotTo(HaveOccurred())
	})

	It("reproduces mesh samples", func() {
		for _, x := range xs {
			for _, z := range zs {
				Expect(bi.Eval(x, z)).To(BeNumerically("~", plane(x, z), 1e-12))
			}
		}
	})

	It("is exact for bilinear fields inside cells", func() {
		for _, p := range [][2]float64{{-0.3, -1.7}, {0.25, 0.0}, {1.9, 0.99}, {0.5, -1.5}} {
			Expect(bi.Eval(p[0], p[1])).To(BeNumerically("~", plane(p[0], p[1]), 1e-12))
		}
	})

	It("includes the mesh boundary", func() {
		Expect(bi.Eval(2, 1)).To(BeNumerically("~", plane(2, 1), 1e-12))
		Expect(bi.Eval(-1, -2)).To(BeNumerically("~", plane(-1, -2), 1e-12))
	})

	DescribeTable("is zero outside the mesh",
		func(x, z float64) {
			Expect(bi.Eval(x, z)).To(Equal(0.0))
		},
		Entry("left", -1.0001, 0.0),
		Entry("right", 2.0001, 0.0),
		Entry("below", 0.0, -2.0001),
		Entry("above", 0.0, 1.0001),
		Entry("corner", 5.0, 5.0),
		Entry("NaN", math.NaN(), 0.0),
		Entry("infinite", math.Inf(1), 0.0),
	)

	It("evaluates many points into a caller buffer", func() {
		px := []float64{0.25, 3, -0.5}
		pz := []float64{0, 0, -1.5}
		out := make([]float64, 3)

		got := bi.EvalAll(px, pz, out)
		Expect(&got[0]).To(BeIdenticalTo(&out[0]))
		Expect(out[0]).To(BeNumerically("~", plane(0.25, 0), 1e-12))
		Expect(out[1]).To(Equal(0.0))
		Expect(out[2]).To(BeNumerically("~", plane(-0.5, -1.5), 1e-12))
	})

	It("splits large batches across workers", func() {
		n := 50000
		px := make([]float64, n)
		pz := make([]float64, n)
		for i := range px {
			px[i] = -1 + 3*float64(i)/float64(n)
			pz[i] = -2 + 3*float64(i)/float64(n)
		}

		got := bi.EvalAll(px, pz)
		for i := range got {
			Expect(got[i]).To(BeNumerically("~", plane(px[i], pz[i]), 1e-9))
		}
	})

	It("handles a single-point axis", func() {
		one, err := wake.NewBiLinear([]float64{0}, []float64{-1, 1}, [][]float64{{2, 4}})
		Expect(err).NotTo(HaveOccurred())
		Expect(one.Eval(0, 0)).To(BeNumerically("~", 3, 1e-12))
		Expect(one.Eval(1e-9, 0)).To(Equal(0.0))
	})

	It("rejects bad meshes", func() {
		_, err := wake.NewBiLinear([]float64{0, 0}, zs, [][]float64{{1, 1, 1}, {1, 1, 1}})
		Expect(err).To(MatchError(wake.ErrAxis))

		_, err = wake.NewBiLinear(xs, zs, [][]float64{{1}})
		Expect(err).To(MatchError(wake.ErrShapeMismatch))
	})
})

var _ = Describe("Scale and Kick", func() {
	It("converts field units per step", func() {
		scaled := wake.Scale([][]float64{{1, -2}}, 0.5, 1e8)
		Expect(scaled[0][0]).To(BeNumerically("~", 0.5*1e6/1e8, 1e-18))
		Expect(scaled[0][1]).To(BeNumerically("~", -2*0.5*1e6/1e8, 1e-18))
	})

	It("leaves the input field untouched", func() {
		field := [][]float64{{1, 2}}
		wake.Scale(field, 3, 1)
		Expect(field).To(Equal([][]float64{{1, 2}}))
	})

	It("gives zero kicks outside the mesh", func() {
		axis := wake.UniformAxis(-1, 1, 3)
		field := [][]float64{{1, 1, 1}, {1, 1, 1}, {1, 1, 1}}

		kick, err := wake.Kick(axis, axis, field, []float64{0, 2, 0}, []float64{0, 0, -3})
		Expect(err).NotTo(HaveOccurred())
		Expect(kick).To(Equal([]float64{1, 0, 0}))
	})
})

var _ = Describe("ParallelFor", func() {
	It("visits every index exactly once", func() {
		n := 100003
		hits := make([]int, n)
		wake.ParallelFor(n, 1000, func(start, end int) {
			for i := start; i < end; i++ {
				hits[i]++
			}
		})
		for i := range hits {
			Expect(hits[i]).To(Equal(1))
		}
	})

	It("runs small ranges inline", func() {
		calls := 0
		wake.ParallelFor(10, 1000, func(start, end int) {
			calls++
			Expect(start).To(Equal(0))
			Expect(end).To(Equal(10))
		})
		Expect(calls).To(Equal(1))
	})
})
