package source

import (
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/KaramelBytes/lookatdata-cli/internal/dataset"
)

type xlsxLoader struct{}

func (xlsxLoader) CanLoad(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), ".xlsx")
}

// Load reads one sheet of a workbook. The first row is the header; every
// other cell is read as its formatted text and typed like CSV input.
func (xlsxLoader) Load(path string, opt Options) (*dataset.Table, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "source: open xlsx")
	}
	sheet, err := pickSheet(f, opt)
	if err != nil {
		return nil, err
	}
	name := filepath.Base(path)
	if len(f.Sheets) > 1 {
		name += "#" + sheet.Name
	}
	if len(sheet.Rows) == 0 {
		return &dataset.Table{Name: name}, nil
	}

	header := sheet.Rows[0]
	ncol := len(header.Cells)
	for _, row := range sheet.Rows[1:] {
		if row != nil && len(row.Cells) > ncol {
			ncol = len(row.Cells)
		}
	}
	names := make([]any, ncol)
	for i, cell := range header.Cells {
		names[i] = headerCellName(cell)
	}

	raw := make([][]string, ncol)
	for i := range raw {
		raw[i] = []string{}
	}
	for n, row := range sheet.Rows[1:] {
		if opt.MaxRows > 0 && n >= opt.MaxRows {
			break
		}
		for i := 0; i < ncol; i++ {
			v := ""
			if row != nil && i < len(row.Cells) && row.Cells[i] != nil {
				v = row.Cells[i].String()
			}
			raw[i] = append(raw[i], v)
		}
	}

	cols := make([]*dataset.Column, ncol)
	for i := range cols {
		cols[i] = dataset.ColumnFromStrings(names[i], raw[i], opt.Number)
	}
	return dataset.NewTable(name, cols)
}

// headerCellName keeps numeric header cells as numbers so that a column
// labelled 2019 is not mistaken for a string name.
func headerCellName(cell *xlsx.Cell) any {
	if cell == nil {
		return nil
	}
	if cell.Type() == xlsx.CellTypeNumeric {
		if f, err := cell.Float(); err == nil {
			return f
		}
	}
	return headerName(cell.String())
}

func pickSheet(f *xlsx.File, opt Options) (*xlsx.Sheet, error) {
	if opt.SheetName != "" {
		sheet, ok := f.Sheet[opt.SheetName]
		if !ok {
			return nil, eris.Errorf("source: sheet %q not found", opt.SheetName)
		}
		return sheet, nil
	}
	if len(f.Sheets) == 0 {
		return nil, eris.New("source: workbook has no sheets")
	}
	idx := opt.SheetIndex
	if idx <= 0 {
		idx = 1
	}
	if idx > len(f.Sheets) {
		return nil, eris.Errorf("source: sheet index %d out of range (file has %d sheets)", idx, len(f.Sheets))
	}
	return f.Sheets[idx-1], nil
}
