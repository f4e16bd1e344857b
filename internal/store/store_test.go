package store

import (
	"bytes"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/nadeemsk/sheetflow/internal/config"
	"github.com/nadeemsk/sheetflow/internal/diag"
	"github.com/nadeemsk/sheetflow/internal/model"
	"github.com/nadeemsk/sheetflow/internal/ode"
	"github.com/nadeemsk/sheetflow/internal/sweep"
)

func testSolver() config.SolverConfig {
	return config.SolverConfig{
		Integrator: "rk45",
		EtaMax:     1.5,
		InitStep:   0.01,
		MaxStep:    0.1,
		RelTol:     1e-3,
		AbsTol:     1e-5,
	}
}

func testResult() *sweep.StudyResult {
	etas := []float64{0, 0.75, 1.5}
	states := []ode.State{
		{0, 1, 0, 1, 1},
		{0.7, 0.95, 0.7, 1, 0.47},
		{1.3, 0.9, 1.4, 1, 0.22},
	}
	sol := &ode.Solution{Etas: etas, States: states, Steps: 2}
	fprime := sol.Column(model.IdxFPrime)
	theta := sol.Column(model.IdxTheta)

	return &sweep.StudyResult{
		Study: config.Study{
			Param:   "we",
			Profile: "velocity",
			Title:   "Velocity vs Weissenberg number",
			File:    "Velocity_vs_Weissenberg_number.png",
		},
		Curves: []sweep.Curve{{
			Label:  "Base fluid",
			Param:  0.5,
			Factor: 1.0,
			Etas:   etas,
			Values: fprime,
			Sol:    sol,
			Diag:   diag.Summarize(etas, fprime, theta),
		}},
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	id, err := st.Save(testResult(), testSolver())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if id != "Velocity_vs_Weissenberg_number" {
		t.Errorf("unexpected study id %q", id)
	}

	meta, err := st.Load(id)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Param != "we" {
		t.Errorf("expected param 'we', got %q", meta.Param)
	}
	if meta.Solver.Integrator != "rk45" {
		t.Errorf("expected integrator 'rk45', got %q", meta.Solver.Integrator)
	}
	if len(meta.Curves) != 1 || meta.Curves[0].Points != 3 {
		t.Errorf("unexpected curve metadata: %+v", meta.Curves)
	}

	curves, err := st.LoadCurves(id)
	if err != nil {
		t.Fatalf("load curves failed: %v", err)
	}
	if len(curves) != 1 {
		t.Fatalf("expected 1 curve, got %d", len(curves))
	}
	c := curves[0]
	if c.Label != "Base fluid" {
		t.Errorf("expected label 'Base fluid', got %q", c.Label)
	}
	if len(c.Etas) != 3 || len(c.States) != 3 {
		t.Fatalf("expected 3 samples, got %d etas and %d states", len(c.Etas), len(c.States))
	}
	if len(c.States[0]) != 5 {
		t.Errorf("expected 5 state columns, got %d", len(c.States[0]))
	}
	if math.Abs(c.Etas[2]-1.5) > 1e-9 {
		t.Errorf("expected final eta 1.5, got %v", c.Etas[2])
	}
	if math.Abs(c.States[1][4]-0.47) > 1e-9 {
		t.Errorf("expected theta 0.47 at mid sample, got %v", c.States[1][4])
	}
}

func TestStoreList(t *testing.T) {
	st := New(t.TempDir())

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	studies, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(studies) != 0 {
		t.Errorf("expected 0 studies, got %d", len(studies))
	}

	if _, err := st.Save(testResult(), testSolver()); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	studies, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(studies) != 1 {
		t.Errorf("expected 1 study, got %d", len(studies))
	}
}

func TestStoreFileStructure(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	id, err := st.Save(testResult(), testSolver())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, id, "metadata.json")); os.IsNotExist(err) {
		t.Error("metadata.json not created")
	}
	if _, err := os.Stat(filepath.Join(dir, id, "curves.csv")); os.IsNotExist(err) {
		t.Error("curves.csv not created")
	}
}

func TestStoreSaveOverwrites(t *testing.T) {
	st := New(t.TempDir())

	if _, err := st.Save(testResult(), testSolver()); err != nil {
		t.Fatalf("first save failed: %v", err)
	}
	if _, err := st.Save(testResult(), testSolver()); err != nil {
		t.Fatalf("second save failed: %v", err)
	}

	studies, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(studies) != 1 {
		t.Errorf("expected 1 study after re-save, got %d", len(studies))
	}
}

func TestExportJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := ExportJSON(&buf, testResult(), testSolver()); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	var data exportData
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}
	if data.Study != "Velocity_vs_Weissenberg_number" {
		t.Errorf("unexpected study id %q", data.Study)
	}
	if len(data.Curves) != 1 || len(data.Curves[0].Etas) != 3 {
		t.Errorf("unexpected curves: %+v", data.Curves)
	}
	if data.Solver.RelTol != 1e-3 {
		t.Errorf("expected rel_tol 1e-3, got %v", data.Solver.RelTol)
	}
}

func TestWriteWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.xlsx")

	if err := WriteWorkbook(path, []*sweep.StudyResult{testResult()}); err != nil {
		t.Fatalf("write workbook failed: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Summary")
	if err != nil {
		t.Fatalf("read rows failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected header plus one curve row, got %d rows", len(rows))
	}
	if rows[0][0] != "Study" {
		t.Errorf("unexpected header: %v", rows[0])
	}
	if rows[1][6] != "Base fluid" {
		t.Errorf("expected composition 'Base fluid', got %q", rows[1][6])
	}
}
