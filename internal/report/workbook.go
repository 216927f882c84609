package report

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "descstats/internal/errors"
	"descstats/internal/files"
	"descstats/pkg/contracts/domain"
)

// maxSheetName is Excel's limit on sheet name length.
const maxSheetName = 31

var sheetNameReplacer = strings.NewReplacer(
	":", "_", `\`, "_", "/", "_", "?", "_", "*", "_", "[", "(", "]", ")", "'", "_",
)

// WriteWorkbook renders rep as an .xlsx file at path. Each dataset gets a
// sheet of its flat or overall columns; each grouped section gets its own
// sheet with one row per group and column.
func WriteWorkbook(path string, rep *domain.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	// Sheet1 is the default sheet; it is dropped once a real one exists.
	w := &workbook{file: f, used: map[string]bool{"sheet1": true}}

	var err error
	rep.Range(func(dataset string, section *domain.Section) bool {
		if section == nil {
			return true
		}
		if section.Grouped() {
			err = w.columnSheet(dataset, section.Overall)
			if err != nil {
				return false
			}
			section.Groups.Range(func(name string, groups *domain.GroupSet) bool {
				err = w.groupSheet(dataset+" "+strings.TrimPrefix(name, domain.GroupedPrefix), groups)
				return err == nil
			})
			return err == nil
		}
		err = w.columnSheet(dataset, section.Columns)
		return err == nil
	})
	if err != nil {
		return apperrors.NewStorageError("failed to build workbook", err).WithContext("path", path)
	}

	if w.created > 0 {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return apperrors.NewStorageError("failed to build workbook", err).WithContext("path", path)
		}
		f.SetActiveSheet(0)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return apperrors.NewStorageError("failed to encode workbook", err).WithContext("path", path)
	}
	if err := files.WriteFileAtomic(path, buf.Bytes()); err != nil {
		return apperrors.NewStorageError("failed to write workbook", err).WithContext("path", path)
	}
	return nil
}

type workbook struct {
	file    *excelize.File
	used    map[string]bool
	created int
}

func (w *workbook) columnSheet(name string, set *domain.ColumnSet) error {
	sheet, err := w.newSheet(name)
	if err != nil {
		return err
	}

	if err := w.setRow(sheet, 1, header("column")); err != nil {
		return err
	}

	row := 2
	if set == nil {
		return nil
	}
	set.Range(func(col string, st domain.ColumnStats) bool {
		err = w.setRow(sheet, row, append([]any{col}, statCells(st)...))
		row++
		return err == nil
	})
	return err
}

func (w *workbook) groupSheet(name string, groups *domain.GroupSet) error {
	sheet, err := w.newSheet(name)
	if err != nil {
		return err
	}

	if err := w.setRow(sheet, 1, header("group", "column")); err != nil {
		return err
	}

	row := 2
	groups.Range(func(key string, set *domain.ColumnSet) bool {
		set.Range(func(col string, st domain.ColumnStats) bool {
			err = w.setRow(sheet, row, append([]any{key, col}, statCells(st)...))
			row++
			return err == nil
		})
		return err == nil
	})
	return err
}

func (w *workbook) setRow(sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return w.file.SetSheetRow(sheet, cell, &values)
}

// newSheet creates a sheet named after name, made valid for Excel and
// unique within the workbook.
func (w *workbook) newSheet(name string) (string, error) {
	base := truncate(sheetNameReplacer.Replace(name), maxSheetName)
	sheet := base
	for i := 2; w.used[strings.ToLower(sheet)]; i++ {
		suffix := fmt.Sprintf("~%d", i)
		sheet = truncate(base, maxSheetName-len(suffix)) + suffix
	}
	if _, err := w.file.NewSheet(sheet); err != nil {
		return "", fmt.Errorf("create sheet %q: %w", sheet, err)
	}
	w.used[strings.ToLower(sheet)] = true
	w.created++
	return sheet, nil
}

func header(leading ...string) []any {
	cells := make([]any, 0, len(leading)+len(domain.StatNames))
	for _, name := range leading {
		cells = append(cells, name)
	}
	for _, name := range domain.StatNames {
		cells = append(cells, name)
	}
	return cells
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// statCells lays out st in StatNames order, nil for absent statistics.
func statCells(st domain.ColumnStats) []any {
	present := make(map[string]any)
	for _, f := range st.Fields() {
		present[f.Name] = f.Value
	}
	cells := make([]any, len(domain.StatNames))
	for i, name := range domain.StatNames {
		cells[i] = present[name]
	}
	return cells
}
