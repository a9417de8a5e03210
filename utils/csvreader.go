package utils

import (
	"encoding/csv"
	"errors"
	"io"
	"strings"
)

// ParseCSV reads a spreadsheet CSV export. The result is aligned with the sheet rows: every
// blank line comes back as a nil record so index+1 is the row number. Rows may be ragged and a
// leading UTF-8 byte order mark is dropped.
func ParseCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var records [][]string
	nextLine := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		line, _ := reader.FieldPos(0)
		for ; nextLine < line; nextLine++ {
			records = append(records, nil)
		}
		last := len(record) - 1
		lastLine, _ := reader.FieldPos(last)
		nextLine = lastLine + strings.Count(record[last], "\n") + 1

		records = append(records, record)
	}

	if len(records) > 0 && len(records[0]) > 0 {
		records[0][0] = strings.TrimPrefix(records[0][0], "\ufeff")
	}
	return records, nil
}
