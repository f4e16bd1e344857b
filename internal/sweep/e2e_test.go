package sweep_test

import (
	"context"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nadeemsk/sheetflow/internal/config"
	"github.com/nadeemsk/sheetflow/internal/sweep"
	"github.com/nadeemsk/sheetflow/internal/viz"
)

var _ = Describe("Parameter sweep pipeline", func() {
	var (
		cfg    *config.Config
		outDir string
	)

	BeforeEach(func() {
		var err error
		outDir, err = os.MkdirTemp("", "sheetflow-e2e-*")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(os.RemoveAll, outDir)

		cfg = config.DefaultConfig()
		cfg.Output.Dir = outDir
	})

	Describe("running the Weissenberg number study", func() {
		It("renders one velocity figure from four labeled curves", func() {
			runner := sweep.NewRunner(cfg)

			res, err := runner.RunStudy(context.Background(), cfg.Studies[0])
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Curves).To(HaveLen(4))

			labels := make([]string, 0, len(res.Curves))
			for _, c := range res.Curves {
				labels = append(labels, c.Label)
				Expect(c.Values[0]).To(BeNumerically("==", 1.0), "velocity gradient starts at unity on the wall")
				Expect(c.Etas[0]).To(BeZero())
				Expect(c.Etas[len(c.Etas)-1]).To(BeNumerically("==", cfg.Solver.EtaMax))
			}
			Expect(labels).To(ConsistOf(
				"Tri-hybrid nanofluid",
				"Hybrid nanofluid",
				"Nanofluid",
				"Base fluid",
			))

			path := filepath.Join(outDir, res.Study.File)
			renderer := viz.NewRenderer(cfg.Output.WidthIn, cfg.Output.HeightIn, 96)
			Expect(renderer.Save(viz.StudyFigure(res), path)).To(Succeed())
			Expect(path).To(BeAnExistingFile())
		})
	})

	Describe("running every configured study", func() {
		It("covers all eight figures with distinct file names", func() {
			runner := sweep.NewRunner(cfg)

			results, err := runner.RunAll(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(8))

			seen := map[string]bool{}
			for _, res := range results {
				Expect(res.Study.File).To(HaveSuffix(".png"))
				Expect(seen[res.Study.File]).To(BeFalse(), "figure file names must not collide")
				seen[res.Study.File] = true
				Expect(res.Curves).To(HaveLen(4))
			}
		})
	})
})
