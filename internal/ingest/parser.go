package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/awickham/feedforge/internal/domain"

	"github.com/xuri/excelize/v2"
)

var (
	// ErrUnsupportedFormat is returned when an uploaded file is not supported.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrEmptyInput is returned when the uploaded file has no rows at all.
	ErrEmptyInput = errors.New("input file contains no rows")

	byteOrderMark = []byte{0xEF, 0xBB, 0xBF}
)

// Required feed columns. "Body HTML" is accepted as an alias for
// "Body (HTML)" since both appear in the wild.
const (
	columnHandle         = "Handle"
	columnTitle          = "Title"
	columnBody           = "Body (HTML)"
	columnBodyAlias      = "Body HTML"
	columnImage          = "Image Src"
	columnSEOTitle       = "SEO Title"
	columnSEODescription = "SEO Description"
)

var requiredColumns = []string{
	columnHandle,
	columnTitle,
	columnBody,
	columnImage,
	columnSEOTitle,
	columnSEODescription,
}

// SchemaError reports every required column missing from the header, not
// just the first one.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return "missing required columns: " + strings.Join(e.Missing, ", ")
}

// Row is one data row of the feed in file order. Variant rows have a blank
// Title and carry no product fields.
type Row struct {
	Index     int
	Values    []string
	IsVariant bool
	Handle    string
	Fields    domain.ProductFields
}

// Feed is the parsed form of an uploaded file.
type Feed struct {
	Header []string
	Rows   []Row
}

// Products returns the non-variant rows.
func (f *Feed) Products() []Row {
	products := make([]Row, 0, len(f.Rows))
	for _, row := range f.Rows {
		if !row.IsVariant {
			products = append(products, row)
		}
	}
	return products
}

// VariantCount returns the number of variant rows.
func (f *Feed) VariantCount() int {
	count := 0
	for _, row := range f.Rows {
		if row.IsVariant {
			count++
		}
	}
	return count
}

// Columns holds the resolved position of each required column.
type Columns struct {
	Handle         int
	Title          int
	Body           int
	Image          int
	SEOTitle       int
	SEODescription int
}

// ParseFeed reads a CSV or XLSX feed and classifies its rows. The file
// extension selects the decoder.
func ParseFeed(fileName string, r io.Reader) (*Feed, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read feed: %w", err)
	}

	var records [][]string
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".csv":
		records, err = readCSV(data)
	case ".xlsx":
		records, err = readXLSX(data)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(fileName))
	}
	if err != nil {
		return nil, err
	}

	return buildFeed(records)
}

func readCSV(data []byte) ([][]string, error) {
	data = bytes.TrimPrefix(data, byteOrderMark)

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}
	return records, nil
}

func readXLSX(data []byte) ([][]string, error) {
	workbook, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer workbook.Close()

	sheets := workbook.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyInput
	}

	records, err := workbook.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read xlsx rows: %w", err)
	}
	return records, nil
}

func buildFeed(records [][]string) (*Feed, error) {
	if len(records) == 0 {
		return nil, ErrEmptyInput
	}

	header := make([]string, len(records[0]))
	for i, cell := range records[0] {
		header[i] = strings.TrimSpace(cell)
	}

	cols, err := ResolveColumns(header)
	if err != nil {
		return nil, err
	}

	if len(records) == 1 {
		return nil, ErrEmptyInput
	}

	feed := &Feed{Header: header}
	for i, record := range records[1:] {
		values := padRecord(record, len(header))
		row := Row{
			Index:  i,
			Values: values,
			Handle: strings.TrimSpace(values[cols.Handle]),
		}

		title := strings.TrimSpace(values[cols.Title])
		if title == "" {
			// Blank title marks a variant line. It is preserved verbatim
			// for export and never enriched.
			row.IsVariant = true
		} else {
			row.Fields = domain.ProductFields{
				Title:          title,
				Body:           strings.TrimSpace(values[cols.Body]),
				ImageURL:       strings.TrimSpace(values[cols.Image]),
				SEOTitle:       strings.TrimSpace(values[cols.SEOTitle]),
				SEODescription: strings.TrimSpace(values[cols.SEODescription]),
			}
		}
		feed.Rows = append(feed.Rows, row)
	}

	return feed, nil
}

// ResolveColumns locates the required columns in a header, honoring the
// Body HTML alias. The returned SchemaError lists every missing column.
func ResolveColumns(header []string) (Columns, error) {
	positions := make(map[string]int, len(header))
	for i, name := range header {
		if _, seen := positions[name]; !seen {
			positions[name] = i
		}
	}

	if alias, ok := positions[columnBodyAlias]; ok {
		if _, canonical := positions[columnBody]; !canonical {
			positions[columnBody] = alias
		}
	}

	var missing []string
	for _, name := range requiredColumns {
		if _, ok := positions[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return Columns{}, &SchemaError{Missing: missing}
	}

	return Columns{
		Handle:         positions[columnHandle],
		Title:          positions[columnTitle],
		Body:           positions[columnBody],
		Image:          positions[columnImage],
		SEOTitle:       positions[columnSEOTitle],
		SEODescription: positions[columnSEODescription],
	}, nil
}

func padRecord(record []string, width int) []string {
	values := make([]string, width)
	for i := 0; i < width && i < len(record); i++ {
		values[i] = record[i]
	}
	return values
}
