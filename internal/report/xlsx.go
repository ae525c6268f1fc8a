package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/alexiusacademia/gowing/internal/rhs"
	"github.com/alexiusacademia/gowing/internal/sensitivity"
	"github.com/alexiusacademia/gowing/internal/transfer"
	"github.com/xuri/excelize/v2"
	"gonum.org/v1/gonum/mat"
)

// Sheet names
const (
	SheetSummary = "Summary"
	SheetLoads   = "Loads"
	SheetRHS     = "RHS"
)

var dofNames = [rhs.DOFPerNode]string{"Fx", "Fy", "Fz", "Mx", "My", "Mz"}

// Workbook is everything one case exports. The node loads are read back
// from the load vector.
type Workbook struct {
	Case   rhs.Case
	RHS    *mat.VecDense
	Blocks map[sensitivity.Key]*mat.Dense // optional
}

// BlockSheet returns the sheet name used for a Jacobian block
func BlockSheet(k sensitivity.Key) string {
	return "J " + k.Wrt
}

// Write saves the workbook as an XLSX file
func Write(path string, w Workbook) error {
	if w.RHS == nil {
		return fmt.Errorf("workbook for %q has no load vector", w.Case.Name)
	}
	loads, err := rhs.Split(w.RHS)
	if err != nil {
		return err
	}
	if len(loads) != w.Case.Config.NumNodes || len(w.Case.Geometry.Nodes) != len(loads) {
		return fmt.Errorf("workbook for %q is incomplete", w.Case.Name)
	}

	f := excelize.NewFile()
	defer f.Close()

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return err
	}
	if err := writeSummary(f, w, loads, header); err != nil {
		return err
	}
	if err := writeLoads(f, w, loads, header); err != nil {
		return err
	}
	if err := writeRHS(f, w, header); err != nil {
		return err
	}

	keys := make([]sensitivity.Key, 0, len(w.Blocks))
	for k := range w.Blocks {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Wrt < keys[j].Wrt })
	for _, k := range keys {
		if err := writeBlock(f, BlockSheet(k), w.Blocks[k]); err != nil {
			return fmt.Errorf("%s: %w", k, err)
		}
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	return f.SaveAs(path)
}

func writeSummary(f *excelize.File, w Workbook, loads []transfer.NodeLoad, header int) error {
	cfg := w.Case.Config
	panel := transfer.SumVecs(w.Case.Forces)
	node := transfer.TotalForce(loads)

	rows := [][]any{
		{"Case", w.Case.Name},
		{"Surface", cfg.Name},
		{"Nodes", cfg.NumNodes},
		{"Chordwise panels", cfg.NumChordwise},
		{"Spanwise panels", cfg.NumSpanwise},
		{"Weighting", string(cfg.Weighting)},
		{"Symmetry", cfg.Symmetry},
		{"FEM origin", cfg.FEMOrigin},
		{"RHS length", w.RHS.Len()},
		{},
		{"", "Panels", "Nodes"},
		{"ΣFx (N)", panel.X, node.X},
		{"ΣFy (N)", panel.Y, node.Y},
		{"ΣFz (N)", panel.Z, node.Z},
	}
	for i, r := range rows {
		if err := setRow(f, SheetSummary, i+1, r); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(SheetSummary, "A1", "A9", header); err != nil {
		return err
	}
	return f.SetCellStyle(SheetSummary, "A11", "C11", header)
}

func writeLoads(f *excelize.File, w Workbook, loads []transfer.NodeLoad, header int) error {
	if _, err := f.NewSheet(SheetLoads); err != nil {
		return err
	}
	head := []any{"Node", "X", "Y", "Z"}
	for _, n := range dofNames {
		head = append(head, n)
	}
	if err := setRow(f, SheetLoads, 1, head); err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetLoads, "A1", "J1", header); err != nil {
		return err
	}

	for k, l := range loads {
		p := w.Case.Geometry.Nodes[k]
		row := []any{k, p.X, p.Y, p.Z}
		for _, c := range l.Components() {
			row = append(row, c)
		}
		if err := setRow(f, SheetLoads, k+2, row); err != nil {
			return err
		}
	}
	return nil
}

func writeRHS(f *excelize.File, w Workbook, header int) error {
	if _, err := f.NewSheet(SheetRHS); err != nil {
		return err
	}
	if err := setRow(f, SheetRHS, 1, []any{"Row", "Entry", "Value"}); err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetRHS, "A1", "C1", header); err != nil {
		return err
	}

	n := w.Case.Config.NumNodes
	for i := 0; i < w.RHS.Len(); i++ {
		label := "constraint"
		if node := i / rhs.DOFPerNode; node < n {
			label = fmt.Sprintf("node %d %s", node, dofNames[i%rhs.DOFPerNode])
		}
		if err := setRow(f, SheetRHS, i+2, []any{i, label, w.RHS.AtVec(i)}); err != nil {
			return err
		}
	}
	return nil
}

func writeBlock(f *excelize.File, sheet string, m *mat.Dense) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	if m.IsEmpty() {
		return nil
	}
	r, c := m.Dims()
	for i := 0; i < r; i++ {
		row := make([]any, c)
		for j := range row {
			row[j] = m.At(i, j)
		}
		if err := setRow(f, sheet, i+1, row); err != nil {
			return err
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}
