package generic

import (
	"errors"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayouts are the date formats accepted in row fields, tried in order.
var DateLayouts = []string{
	"02-Jan-2006",
	"2-Jan-2006",
	"02-Jan-06",
	"2006-01-02",
	"02/01/2006",
	time.RFC3339,
}

// FieldParser reads typed values out of a row. Blank fields parse to the
// zero value. The first parse failure is kept and reported by Err; later
// calls still return zero values, so a builder can read every field and
// check once.
//
//	p := generic.NewFieldParser(row)
//	price := p.Decimal("price_1")
//	qty := p.Decimal("pack_qty")
//	if err := p.Err(); err != nil {
//	    return nil, err
//	}
type FieldParser struct {
	row Row
	err error
}

func NewFieldParser(row Row) *FieldParser {
	return &FieldParser{row: row}
}

// Err returns the first parse failure, as a *FieldError.
func (p *FieldParser) Err() error {
	return p.err
}

// String returns the trimmed field value.
func (p *FieldParser) String(field string) string {
	return p.row.Get(field)
}

func (p *FieldParser) Decimal(field string) decimal.Decimal {
	v := p.row.Get(field)
	if v == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		p.fail(field, v, err)
		return decimal.Zero
	}
	return d
}

func (p *FieldParser) Int(field string) int {
	v := p.row.Get(field)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.fail(field, v, err)
		return 0
	}
	return n
}

func (p *FieldParser) Time(field string) time.Time {
	v := p.row.Get(field)
	if v == "" {
		return time.Time{}
	}
	for _, layout := range DateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t
		}
	}
	p.fail(field, v, errors.New("unrecognised date format"))
	return time.Time{}
}

// ParseWith reads a field through a custom parser, e.g. an enum's Parse
// function, recording its error on p.
func ParseWith[T any](p *FieldParser, field string, parse func(string) (T, error)) T {
	v := p.row.Get(field)
	out, err := parse(v)
	if err != nil {
		p.fail(field, v, err)
	}
	return out
}

func (p *FieldParser) fail(field, value string, err error) {
	if p.err == nil {
		p.err = &FieldError{Field: field, Value: value, Err: err}
	}
}
