package catalog

// ingest.go turns raw delimited text into an ordered sequence of staged
// candidate records.
//
// The header row is matched case-insensitively against the column schema;
// unknown columns are ignored. A header missing required columns fails
// the whole parse before any records are produced, and is the only
// whole-batch-fatal condition in the pipeline. Every data row after that
// is parsed independently: a malformed row still occupies its row index,
// carrying a single fatal issue on the synthetic "_row" field so that
// downstream reporting stays row-accurate.

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrInvalidHeader is returned when the header row is missing or lacks
// required columns. It aborts the batch before any outcome is produced.
var ErrInvalidHeader = errors.New("invalid header")

// RowField is the synthetic field name used for issues that concern the
// whole row rather than a single column.
const RowField = "_row"

// FieldKind is the coercion family of a CSV column.
type FieldKind int

const (
	FieldText FieldKind = iota
	FieldEnum
	FieldMoney
	FieldDecimal
	FieldBool
)

// ColumnSpec defines one column of the catalog CSV schema.
type ColumnSpec struct {
	Name     string
	Kind     FieldKind
	Required bool     // column must exist in the header and be non-blank per row
	Vocab    []string // closed vocabulary for FieldEnum
}

// Columns is the catalog CSV schema, in canonical export order.
var Columns = []ColumnSpec{
	{Name: "serial", Kind: FieldText, Required: true},
	{Name: "type", Kind: FieldEnum, Required: true, Vocab: StoneTypes},
	{Name: "color", Kind: FieldEnum, Required: true, Vocab: Colors},
	{Name: "cut", Kind: FieldEnum, Vocab: Cuts},
	{Name: "clarity", Kind: FieldEnum, Vocab: ClarityGrades},
	{Name: "carat", Kind: FieldDecimal},
	{Name: "length_mm", Kind: FieldDecimal},
	{Name: "width_mm", Kind: FieldDecimal},
	{Name: "depth_mm", Kind: FieldDecimal},
	{Name: "price", Kind: FieldMoney, Required: true},
	{Name: "currency", Kind: FieldEnum, Vocab: Currencies},
	{Name: "premium_price", Kind: FieldMoney},
	{Name: "premium_currency", Kind: FieldEnum, Vocab: Currencies},
	{Name: "in_stock", Kind: FieldBool},
	{Name: "notes", Kind: FieldText},
}

// ColumnNames returns the schema column names in canonical order.
func ColumnNames() []string {
	names := make([]string, len(Columns))
	for i, c := range Columns {
		names[i] = c.Name
	}
	return names
}

// ParseBatch parses UTF-8 comma-separated text into staged records in
// file order. The returned slice order is the reporting contract for
// every downstream component.
func ParseBatch(text string) ([]StagedRecord, error) {
	text = strings.ToValidUTF8(text, "�")

	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: empty input", ErrInvalidHeader)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidHeader, err)
	}

	headerIdx, err := validateHeader(header)
	if err != nil {
		return nil, err
	}
	headerWidth := len(header)

	var records []StagedRecord
	rowIndex := 0
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			rowIndex++
			rec := StagedRecord{RowIndex: rowIndex}
			rec.AddIssue(RowField, SeverityError, fmt.Sprintf("malformed row: %v", err))
			records = append(records, rec)
			continue
		}
		if isEmptyRow(row) {
			continue
		}

		rowIndex++
		records = append(records, parseRow(row, headerIdx, headerWidth, rowIndex))
	}

	return records, nil
}

// validateHeader matches the header row against the schema and returns
// the column index. Missing required columns are batch-fatal.
func validateHeader(header []string) (HeaderIndex, error) {
	idx := MakeHeaderIndex(header)

	var missing []string
	for _, col := range Columns {
		if !col.Required {
			continue
		}
		if _, ok := idx[col.Name]; !ok {
			missing = append(missing, col.Name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing required columns: %s",
			ErrInvalidHeader, strings.Join(missing, ", "))
	}
	return idx, nil
}

// parseRow coerces one data row into a StagedRecord. Coercion failures
// become fatal issues on the offending field; the record keeps its row
// index either way.
func parseRow(row []string, headerIdx HeaderIndex, headerWidth, rowIndex int) StagedRecord {
	rec := StagedRecord{
		RowIndex:  rowIndex,
		RawFields: make(map[string]string),
	}

	if len(row) != headerWidth {
		rec.AddIssue(RowField, SeverityError,
			fmt.Sprintf("expected %d fields, got %d", headerWidth, len(row)))
		return rec
	}

	for _, col := range Columns {
		pos, ok := headerIdx[col.Name]
		if !ok || pos >= len(row) {
			continue
		}
		rec.RawFields[col.Name] = row[pos]

		raw := CleanCell(row[pos])
		if raw == "" {
			if col.Required {
				rec.AddIssue(col.Name, SeverityError, "required field is empty")
			}
			continue
		}

		coerceField(&rec, col, raw)
	}

	return rec
}

// coerceField applies the column's coercion family to a non-blank value.
func coerceField(rec *StagedRecord, col ColumnSpec, raw string) {
	switch col.Kind {
	case FieldText:
		switch col.Name {
		case "serial":
			rec.Fields.Serial = raw
		case "notes":
			rec.Fields.Notes = raw
		}

	case FieldEnum:
		canonical, ok := MatchVocab(raw, col.Vocab)
		if !ok {
			rec.AddIssue(col.Name, SeverityError,
				fmt.Sprintf("%q is not one of: %s", raw, strings.Join(col.Vocab, ", ")))
			return
		}
		switch col.Name {
		case "type":
			rec.Fields.StoneType = canonical
		case "color":
			rec.Fields.Color = canonical
		case "cut":
			rec.Fields.Cut = canonical
		case "clarity":
			rec.Fields.Clarity = canonical
		case "currency":
			rec.Fields.Currency = canonical
		case "premium_currency":
			rec.Fields.PremiumCurrency = canonical
		}

	case FieldMoney:
		a, err := ParseAmount(raw)
		if err != nil {
			rec.AddIssue(col.Name, SeverityError, fmt.Sprintf("%q: %v", raw, err))
			return
		}
		switch col.Name {
		case "price":
			rec.Fields.Price = a
		case "premium_price":
			rec.Fields.PremiumPrice = a
		}

	case FieldDecimal:
		d, err := ParseDecimal(raw)
		if err != nil {
			rec.AddIssue(col.Name, SeverityError, fmt.Sprintf("%q: %v", raw, err))
			return
		}
		switch col.Name {
		case "carat":
			rec.Fields.Carat = d
		case "length_mm":
			rec.Fields.LengthMM = d
		case "width_mm":
			rec.Fields.WidthMM = d
		case "depth_mm":
			rec.Fields.DepthMM = d
		}

	case FieldBool:
		f, err := ParseFlag(raw)
		if err != nil {
			rec.AddIssue(col.Name, SeverityError, fmt.Sprintf("%q: %v", raw, err))
			return
		}
		rec.Fields.InStock = f
	}
}

func isEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
