package tabular

import (
	"fmt"

	"github.com/extrame/xls"
)

// ReadXLS reads one sheet of a legacy Excel workbook. The first row of the
// sheet is the header.
func ReadXLS(filename string, sheetID int) (Table, error) {
	spreadsheet, err := xls.Open(filename, "utf-8")
	if err != nil {
		return Table{}, err
	}

	if n := spreadsheet.NumSheets(); sheetID < 0 || sheetID >= n {
		return Table{}, fmt.Errorf("%s: sheet %d requested but the workbook has %d sheets", filename, sheetID, n)
	}

	sheet := spreadsheet.GetSheet(sheetID)
	if sheet == nil {
		return Table{}, fmt.Errorf("%s: sheet %d was nil", filename, sheetID)
	}

	t := Table{}
	for rowID := 0; rowID <= int(sheet.MaxRow); rowID++ {
		row := sheet.Row(rowID)
		if row == nil {
			continue
		}

		cols := make([]string, 0, row.LastCol()+1)
		for colID := 0; colID <= row.LastCol(); colID++ {
			cols = append(cols, row.Col(colID))
		}

		if t.Header == nil {
			t.Header = cols
			continue
		}

		if isBlank(cols) {
			continue
		}

		t.Rows = append(t.Rows, cols)
	}

	if t.Header == nil {
		return t, fmt.Errorf("%s: sheet %q has no header row", filename, sheet.Name)
	}

	return t, nil
}
