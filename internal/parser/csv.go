package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// CSVParser handles CSV files by labeling each cell with its column header,
// so question matching can hit on header names as well as values.
type CSVParser struct{}

func (p *CSVParser) Extract(r io.Reader, filename string) (string, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return "", fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return "", nil
	}

	// First row is headers.
	headers := records[0]

	var text strings.Builder
	for _, row := range records[1:] {
		var cells []string
		for j, cell := range row {
			if strings.TrimSpace(cell) == "" {
				continue
			}
			if j < len(headers) {
				cells = append(cells, headers[j]+": "+cell)
			} else {
				cells = append(cells, cell)
			}
		}
		if len(cells) > 0 {
			text.WriteString(strings.Join(cells, ", "))
			text.WriteString(".\n")
		}
	}

	return strings.TrimSpace(text.String()), nil
}
