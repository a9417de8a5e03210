package loader

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"shiftinsight.com/shiftinsight/utils"
)

var ErrUnreadableFile = errors.New("Failed to read Excel file. Ensure it's a valid .xlsx file.")

// SupportedExtensions lists the workbook formats ReadWorkbook understands.
var SupportedExtensions = []string{".xlsx", ".xlsm", ".csv"}

func IsSupported(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, e := range SupportedExtensions {
		if e == ext {
			return true
		}
	}
	return false
}

// RawRow is a spreadsheet row keyed by normalized header. Number is the 1-based sheet row.
type RawRow struct {
	Number int
	Cells  map[string]string
}

func (r RawRow) Get(col string) string {
	return r.Cells[col]
}

func (r RawRow) blank() bool {
	for _, v := range r.Cells {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

type Table struct {
	Sheet  string
	Header []string
	Rows   []RawRow
}

// ReadWorkbook reads the first sheet with data (or the named sheet) of an xlsx/xlsm workbook, or a csv file.
// Headers are normalized and blank rows dropped; required columns are not checked here.
func ReadWorkbook(r io.Reader, filename string, sheet string) (*Table, error) {
	if strings.EqualFold(filepath.Ext(filename), ".csv") {
		return readCSV(r)
	}
	return readXLSX(r, sheet)
}

func readCSV(r io.Reader) (*Table, error) {
	records, err := utils.ParseCSV(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableFile, err)
	}
	return buildTable("", records, nil), nil
}

func readXLSX(r io.Reader, sheet string) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableFile, err)
	}
	defer f.Close()

	var rows [][]string
	if sheet == "" {
		sheet, rows, err = firstSheetWithData(f)
	} else {
		rows, err = f.GetRows(sheet, excelize.Options{RawCellValue: true})
	}
	if err != nil {
		return nil, fmt.Errorf("%w: sheet %q: %v", ErrUnreadableFile, sheet, err)
	}

	formula := func(col, row int) string {
		cell, err := excelize.CoordinatesToCellName(col, row)
		if err != nil {
			return ""
		}
		expr, err := f.GetCellFormula(sheet, cell)
		if err != nil || expr == "" {
			return ""
		}
		return "=" + expr
	}

	return buildTable(sheet, rows, formula), nil
}

func firstSheetWithData(f *excelize.File) (string, [][]string, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", nil, errors.New("workbook has no sheets")
	}
	for _, name := range sheets {
		rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			return name, nil, err
		}
		if len(rows) > 0 {
			return name, rows, nil
		}
	}
	return sheets[0], nil, nil
}

// buildTable turns records (header first) into a Table. formula, when set, is asked for the
// formula text of empty cells in formula columns; col and row are 1-based.
func buildTable(sheet string, records [][]string, formula func(col, row int) string) *Table {
	table := &Table{Sheet: sheet}
	if len(records) == 0 {
		return table
	}

	table.Header = utils.Map(records[0], NormalizeHeader)

	for i, record := range records[1:] {
		number := i + 2
		cells := make(map[string]string, len(table.Header))
		for c, name := range table.Header {
			if name == "" {
				continue
			}
			value := ""
			if c < len(record) {
				value = record[c]
			}
			if value == "" && formula != nil && formulaColumns[name] {
				value = formula(c+1, number)
			}
			if _, exists := cells[name]; exists && value == "" {
				continue
			}
			cells[name] = value
		}
		row := RawRow{Number: number, Cells: cells}
		if row.blank() {
			continue
		}
		table.Rows = append(table.Rows, row)
	}

	return table
}
