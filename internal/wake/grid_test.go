package wake_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/csrtrack/internal/wake"
)

var _ = Describe("Grid", func() {
	var g *wake.Grid

	BeforeEach(func() {
		g = wake.NewZeroGrid(wake.UniformAxis(-1, 1, 5), wake.UniformAxis(-2, 2, 7))
	})

	It("builds evenly spaced axes", func() {
		Expect(g.XAxis).To(HaveLen(5))
		Expect(g.XAxis[0]).To(Equal(-1.0))
		Expect(g.XAxis[4]).To(Equal(1.0))
		Expect(g.XAxis[2]).To(BeNumerically("~", 0, 1e-15))
		Expect(wake.UniformAxis(3, 4, 1)).To(Equal([]float64{3}))
	})

	It("accepts matching shapes", func() {
		Expect(g.Validate(true)).To(Succeed())
	})

	It("rejects a (5,6) field on (5,7) axes", func() {
		for i := range g.DEdct {
			g.DEdct[i] = g.DEdct[i][:6]
		}
		err := g.Validate(false)
		Expect(err).To(MatchError(wake.ErrShapeMismatch))

		var shapeErr *wake.ShapeError
		Expect(err).To(BeAssignableToTypeOf(shapeErr))
		Expect(err.Error()).To(ContainSubstring("(5,6)"))
		Expect(err.Error()).To(ContainSubstring("(5,7)"))
	})

	It("rejects a wrong row count", func() {
		g.DEdct = g.DEdct[:4]
		Expect(g.Validate(false)).To(MatchError(wake.ErrShapeMismatch))
	})

	It("checks the transverse field only when asked", func() {
		g.XKick = g.XKick[:2]
		Expect(g.Validate(false)).To(Succeed())
		Expect(g.Validate(true)).To(MatchError(wake.ErrShapeMismatch))
	})

	DescribeTable("rejects bad axes",
		func(x, z []float64) {
			bad := wake.NewZeroGrid(x, z)
			Expect(bad.Validate(false)).To(MatchError(wake.ErrAxis))
		},
		Entry("empty x", []float64{}, []float64{0, 1}),
		Entry("repeated z", []float64{0, 1}, []float64{0, 0}),
		Entry("decreasing x", []float64{1, 0}, []float64{0, 1}),
	)

	It("round-trips through YAML", func() {
		g.DEdct[1][2] = 3.5
		g.Position = 0.75
		path := filepath.Join(GinkgoT().TempDir(), "grid.yaml")

		Expect(wake.SaveGrid(path, g)).To(Succeed())
		loaded, err := wake.LoadGrid(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(loaded).To(Equal(g))
	})
})

var _ = Describe("Sources", func() {
	ctx := context.Background()

	It("serves a zero grid", func() {
		src := wake.NewZero(wake.UniformAxis(-1, 1, 3), wake.UniformAxis(-1, 1, 4))
		g, err := src.Grid(ctx, 12.5)
		Expect(err).NotTo(HaveOccurred())
		Expect(g.Validate(true)).To(Succeed())
	})

	It("honours cancellation", func() {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := wake.NewZero([]float64{0}, []float64{0}).Grid(cctx, 0)
		Expect(err).To(MatchError(context.Canceled))
	})

	It("serves one grid from a file", func() {
		path := filepath.Join(GinkgoT().TempDir(), "grid.yaml")
		Expect(wake.SaveGrid(path, wake.NewZeroGrid([]float64{0, 1}, []float64{0, 1}))).To(Succeed())

		src, err := wake.NewFileSource(path)
		Expect(err).NotTo(HaveOccurred())
		g, err := src.Grid(ctx, 3)
		Expect(err).NotTo(HaveOccurred())
		Expect(g.XAxis).To(Equal([]float64{0, 1}))
	})

	It("refuses a malformed file", func() {
		bad := wake.NewZeroGrid([]float64{0, 1}, []float64{0, 1})
		bad.DEdct = [][]float64{{1}}
		path := filepath.Join(GinkgoT().TempDir(), "grid.yaml")
		Expect(wake.SaveGrid(path, bad)).To(Succeed())

		_, err := wake.NewFileSource(path)
		Expect(err).To(MatchError(wake.ErrShapeMismatch))
	})

	It("picks the latest grid not after the position", func() {
		dir := GinkgoT().TempDir()
		for i, pos := range []float64{0, 0.5, 1.0} {
			g := wake.NewZeroGrid([]float64{0, 1}, []float64{0, 1})
			g.Position = pos
			g.DEdct[0][0] = float64(i)
			Expect(wake.SaveGrid(filepath.Join(dir, fmt.Sprintf("wake_%d.yaml", i)), g)).To(Succeed())
		}
		Expect(os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip"), 0644)).To(Succeed())

		src, err := wake.NewSeriesSource(dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(src.Len()).To(Equal(3))

		for _, tc := range []struct {
			pos  float64
			want float64
		}{{-1, 0}, {0, 0}, {0.49, 0}, {0.5, 1}, {0.9, 1}, {7, 2}} {
			g, err := src.Grid(ctx, tc.pos)
			Expect(err).NotTo(HaveOccurred())
			Expect(g.DEdct[0][0]).To(Equal(tc.want), "position %g", tc.pos)
		}
	})

	It("refuses a series holding a malformed grid", func() {
		dir := GinkgoT().TempDir()
		good := wake.NewZeroGrid([]float64{0, 1}, []float64{0, 1})
		Expect(wake.SaveGrid(filepath.Join(dir, "wake_0.yaml"), good)).To(Succeed())

		bad := wake.NewZeroGrid([]float64{0, 1}, []float64{0, 1})
		bad.Position = 1
		bad.DEdct = [][]float64{{1, 2, 3}, {4, 5, 6}}
		Expect(wake.SaveGrid(filepath.Join(dir, "wake_1.yaml"), bad)).To(Succeed())

		_, err := wake.NewSeriesSource(dir)
		Expect(err).To(MatchError(wake.ErrShapeMismatch))
		Expect(err.Error()).To(ContainSubstring("wake_1.yaml"))
	})

	It("fails on an empty series directory", func() {
		_, err := wake.NewSeriesSource(GinkgoT().TempDir())
		Expect(err).To(HaveOccurred())
	})
})
