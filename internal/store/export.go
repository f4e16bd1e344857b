package store

import (
	"encoding/json"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/nadeemsk/sheetflow/internal/config"
	"github.com/nadeemsk/sheetflow/internal/diag"
	"github.com/nadeemsk/sheetflow/internal/sweep"
)

type exportCurve struct {
	Label  string       `json:"label"`
	Param  float64      `json:"param"`
	Factor float64      `json:"factor"`
	Etas   []float64    `json:"etas"`
	Values []float64    `json:"values"`
	Diag   diag.Summary `json:"diagnostics"`
}

type exportData struct {
	Study   string         `json:"study"`
	Param   string         `json:"param"`
	Profile string         `json:"profile"`
	Title   string         `json:"title"`
	Figure  string         `json:"figure"`
	Solver  SolverMetadata `json:"solver"`
	Curves  []exportCurve  `json:"curves"`
}

// ExportJSON writes one study result as indented JSON, suitable for piping
// into downstream tooling.
func ExportJSON(w io.Writer, res *sweep.StudyResult, solver config.SolverConfig) error {
	data := exportData{
		Study:   studyID(res.Study),
		Param:   res.Study.Param,
		Profile: res.Study.Profile,
		Title:   res.Study.Title,
		Figure:  res.Study.File,
		Solver:  solverMetadata(solver),
		Curves:  make([]exportCurve, 0, len(res.Curves)),
	}
	for _, c := range res.Curves {
		data.Curves = append(data.Curves, exportCurve{
			Label:  c.Label,
			Param:  c.Param,
			Factor: c.Factor,
			Etas:   c.Etas,
			Values: c.Values,
			Diag:   c.Diag,
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

var workbookHeader = []string{
	"Study", "Figure", "Profile", "Parameter", "Value", "Factor", "Composition",
	"Points", "Wall velocity gradient", "Displacement thickness",
	"Momentum thickness", "Thermal decay rate",
}

// WriteWorkbook writes an XLSX summary with one row per study curve.
func WriteWorkbook(path string, results []*sweep.StudyResult) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Summary"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}

	for col, name := range workbookHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, name); err != nil {
			return err
		}
	}

	row := 2
	for _, res := range results {
		for _, c := range res.Curves {
			values := []any{
				studyID(res.Study),
				res.Study.File,
				res.Study.Profile,
				res.Study.Param,
				c.Param,
				c.Factor,
				c.Label,
				len(c.Etas),
				c.Diag.WallVelocityGradient,
				c.Diag.DisplacementThickness,
				c.Diag.MomentumThickness,
				c.Diag.ThermalDecayRate,
			}
			for col, v := range values {
				cell, err := excelize.CoordinatesToCellName(col+1, row)
				if err != nil {
					return err
				}
				if err := f.SetCellValue(sheet, cell, v); err != nil {
					return err
				}
			}
			row++
		}
	}

	if err := f.SetColWidth(sheet, "A", "D", 28); err != nil {
		return err
	}
	return f.SaveAs(path)
}
