// =============================================================================
// Datagrid - Row sources over ERP extract files
// =============================================================================
//
// The ERP exports every table as a "datagrid": a tab-delimited text file
// whose first line holds the column titles. Titles are normalised to
// snake_case field names ("Item Code" → "item_code") so importers can refer
// to fields by stable names.
//
// The supplier pricelist predates the datagrid exports. It is a
// comma-delimited file with no header, fixed column order and ISO-8859-14
// encoding (see legacy.go).
//
// A File reads lazily and can be iterated any number of times; every Each
// call reopens the file.
//
// =============================================================================

package datagrid

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"

	"github.com/warp/inventory-sync/generic"
)

// ErrEmpty is returned when a datagrid has no header line.
var ErrEmpty = errors.New("datagrid is empty")

// File is a generic.RowSource backed by a delimited text file.
type File struct {
	Path string

	// Comma is the field delimiter. Defaults to tab.
	Comma rune

	// Fields, when set, names the columns in order and the file has no
	// header line. Extra columns are dropped; missing columns are blank.
	Fields []string

	// Encoding decodes the file. nil means UTF-8.
	Encoding encoding.Encoding
}

// New returns a tab-delimited datagrid with a header line.
func New(path string) *File {
	return &File{Path: path, Comma: '\t'}
}

// Name reports the file path, used when recording import runs.
func (f *File) Name() string {
	return f.Path
}

// Each calls fn for every data row, stopping at the first error from fn
// or when ctx is done.
func (f *File) Each(ctx context.Context, fn func(generic.Row) error) error {
	file, err := os.Open(f.Path)
	if err != nil {
		return fmt.Errorf("%w: %w", generic.ErrRowSource, err)
	}
	defer file.Close()

	var r io.Reader = file
	if f.Encoding != nil {
		r = transform.NewReader(file, f.Encoding.NewDecoder())
	}
	return f.each(ctx, r, fn)
}

func (f *File) each(ctx context.Context, r io.Reader, fn func(generic.Row) error) error {
	reader := csv.NewReader(r)
	configureReader(reader, f.Comma)

	fields := f.Fields
	if fields == nil {
		header, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%s: %w", f.Path, ErrEmpty)
		}
		if err != nil {
			return fmt.Errorf("%w: %s: header: %w", generic.ErrRowSource, f.Path, err)
		}
		fields = NormalizeHeader(header)
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: %s: %w", generic.ErrRowSource, f.Path, err)
		}
		if isBlankRecord(record) {
			continue
		}
		if err := fn(toRow(fields, record)); err != nil {
			return err
		}
	}
}

// configureReader matches the quirks of the ERP exports: ragged rows and
// stray quotes inside descriptions.
func configureReader(reader *csv.Reader, comma rune) {
	if comma == 0 {
		comma = '\t'
	}
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.ReuseRecord = true
}

func toRow(fields, record []string) generic.Row {
	row := make(generic.Row, len(fields))
	for i, name := range fields {
		if name == "" {
			continue
		}
		if i < len(record) {
			row[name] = record[i]
		} else {
			row[name] = ""
		}
	}
	return row
}

func isBlankRecord(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// NormalizeHeader turns column titles into field names: lower case, runs
// of anything other than letters and digits become a single underscore.
//
//	"Item Code"        → "item_code"
//	"Pr 1 Corp-A Qty"  → "pr_1_corp_a_qty"
//	"RRP (inc. tax)"   → "rrp_inc_tax"
func NormalizeHeader(titles []string) []string {
	out := make([]string, len(titles))
	for i, t := range titles {
		out[i] = normalizeTitle(t)
	}
	return out
}

func normalizeTitle(title string) string {
	title = strings.TrimPrefix(title, "\ufeff")
	var b strings.Builder
	pending := false
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pending && b.Len() > 0 {
				b.WriteByte('_')
			}
			pending = false
			b.WriteRune(r)
			continue
		}
		pending = true
	}
	return b.String()
}
