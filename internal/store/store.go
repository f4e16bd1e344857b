// Package store persists sweep results on disk, one folder per study, and
// exports summary artifacts (JSON, XLSX workbook).
package store

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/nadeemsk/sheetflow/internal/config"
	"github.com/nadeemsk/sheetflow/internal/diag"
	"github.com/nadeemsk/sheetflow/internal/sweep"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// SolverMetadata pins the solver settings a study ran with.
type SolverMetadata struct {
	Integrator string  `json:"integrator"`
	EtaMax     float64 `json:"eta_max"`
	InitStep   float64 `json:"init_step"`
	MaxStep    float64 `json:"max_step"`
	RelTol     float64 `json:"rel_tol"`
	AbsTol     float64 `json:"abs_tol"`
}

func solverMetadata(sc config.SolverConfig) SolverMetadata {
	return SolverMetadata{
		Integrator: sc.Integrator,
		EtaMax:     sc.EtaMax,
		InitStep:   sc.InitStep,
		MaxStep:    sc.MaxStep,
		RelTol:     sc.RelTol,
		AbsTol:     sc.AbsTol,
	}
}

// CurveMetadata records the sweep coordinates and diagnostics of one curve.
type CurveMetadata struct {
	Label  string       `json:"label"`
	Param  float64      `json:"param"`
	Factor float64      `json:"factor"`
	Points int          `json:"points"`
	Diag   diag.Summary `json:"diagnostics"`
}

// StudyMetadata mirrors metadata.json in each study folder.
type StudyMetadata struct {
	ID        string          `json:"id"`
	Param     string          `json:"param"`
	Profile   string          `json:"profile"`
	Title     string          `json:"title"`
	Figure    string          `json:"figure"`
	Timestamp time.Time       `json:"timestamp"`
	Solver    SolverMetadata  `json:"solver"`
	Curves    []CurveMetadata `json:"curves"`
}

// studyID derives the folder name from the figure file stem so re-running a
// sweep overwrites the same folder instead of accumulating run directories.
func studyID(st config.Study) string {
	if st.File != "" {
		return strings.TrimSuffix(st.File, filepath.Ext(st.File))
	}
	return st.Param + "_" + st.Profile
}

// Save writes one study folder holding metadata.json and curves.csv and
// returns the study ID.
func (s *Store) Save(res *sweep.StudyResult, solver config.SolverConfig) (string, error) {
	id := studyID(res.Study)
	dir := filepath.Join(s.baseDir, id)

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	meta := StudyMetadata{
		ID:        id,
		Param:     res.Study.Param,
		Profile:   res.Study.Profile,
		Title:     res.Study.Title,
		Figure:    res.Study.File,
		Timestamp: time.Now(),
		Solver:    solverMetadata(solver),
		Curves:    make([]CurveMetadata, 0, len(res.Curves)),
	}
	for _, c := range res.Curves {
		meta.Curves = append(meta.Curves, CurveMetadata{
			Label:  c.Label,
			Param:  c.Param,
			Factor: c.Factor,
			Points: len(c.Etas),
			Diag:   c.Diag,
		})
	}

	metaFile, err := os.Create(filepath.Join(dir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(dir, "curves.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	defer w.Flush()

	// Long format: curves keep their own adaptive grids, so rows carry the
	// curve index instead of sharing one eta column.
	header := []string{"curve", "label", "param", "factor", "eta", "F", "Fp", "G", "Gp", "theta"}
	if err := w.Write(header); err != nil {
		return "", err
	}

	for ci, c := range res.Curves {
		if c.Sol == nil {
			continue
		}
		for i, eta := range c.Sol.Etas {
			row := []string{
				strconv.Itoa(ci + 1),
				c.Label,
				formatFloat(c.Param),
				formatFloat(c.Factor),
				formatFloat(eta),
			}
			for _, v := range c.Sol.States[i] {
				row = append(row, formatFloat(v))
			}
			if err := w.Write(row); err != nil {
				return "", err
			}
		}
	}

	return id, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

func (s *Store) List() ([]StudyMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []StudyMetadata{}, nil
		}
		return nil, err
	}

	studies := make([]StudyMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		data, err := os.ReadFile(filepath.Join(s.baseDir, entry.Name(), "metadata.json"))
		if err != nil {
			continue
		}

		var meta StudyMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}

		studies = append(studies, meta)
	}

	return studies, nil
}

func (s *Store) Load(id string) (*StudyMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, id, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta StudyMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// CurveData is one curve read back from curves.csv.
type CurveData struct {
	Label  string
	Param  float64
	Factor float64
	Etas   []float64
	States [][]float64
}

func (s *Store) LoadCurves(id string) ([]CurveData, error) {
	f, err := os.Open(filepath.Join(s.baseDir, id, "curves.csv"))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	if len(records) < 2 {
		return []CurveData{}, nil
	}

	curves := make([]CurveData, 0, 4)
	index := make(map[string]int)

	for _, rec := range records[1:] {
		if len(rec) < 6 {
			continue
		}

		ci, ok := index[rec[0]]
		if !ok {
			param, _ := strconv.ParseFloat(rec[2], 64)
			factor, _ := strconv.ParseFloat(rec[3], 64)
			curves = append(curves, CurveData{Label: rec[1], Param: param, Factor: factor})
			ci = len(curves) - 1
			index[rec[0]] = ci
		}

		eta, err := strconv.ParseFloat(rec[4], 64)
		if err != nil {
			continue
		}

		state := make([]float64, 0, len(rec)-5)
		for _, field := range rec[5:] {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				continue
			}
			state = append(state, v)
		}

		curves[ci].Etas = append(curves[ci].Etas, eta)
		curves[ci].States = append(curves[ci].States, state)
	}

	return curves, nil
}
