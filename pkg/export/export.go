// Package export renders tabular grade data into downloadable documents.
package export

import (
	"fmt"
	"strings"
)

// Supported formats.
const (
	FormatCSV = "csv"
	FormatPDF = "pdf"
)

// Column describes one column of a Dataset.
type Column struct {
	Title   string
	Numeric bool
}

// Dataset is an ordered table with an optional title.
type Dataset struct {
	Title   string
	Columns []Column
	Rows    [][]string
}

// Exporter renders a Dataset into a file body.
type Exporter interface {
	Render(data Dataset) ([]byte, error)
	ContentType() string
	Extension() string
}

// ForFormat returns the exporter registered for format.
func ForFormat(format string) (Exporter, error) {
	switch strings.ToLower(format) {
	case FormatCSV:
		return NewCSVExporter(), nil
	case FormatPDF:
		return NewPDFExporter(), nil
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
}

func (d Dataset) validate() error {
	if len(d.Columns) == 0 {
		return fmt.Errorf("dataset requires at least one column")
	}
	for i, row := range d.Rows {
		if len(row) != len(d.Columns) {
			return fmt.Errorf("row %d has %d cells, want %d", i, len(row), len(d.Columns))
		}
	}
	return nil
}
