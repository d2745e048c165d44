package catalog

// export.go projects persisted records back to delimited text, applying
// the inverse of every ingest coercion rule through the same
// vocabularies and fixed-point formatting, so parse(serialize(recs))
// reproduces the typed fields.
//
// Unlike import, export has no notion of a row that does not exist yet:
// a record either renders fully or the whole export reports one error.

import (
	"encoding/csv"
	"fmt"
	"strings"
	"time"
)

// ExportCSV serializes records in the given order into comma-separated
// UTF-8 text with the canonical header. Column order is the schema
// order; row order is the caller's selection order.
func ExportCSV(records []CatalogRecord) (string, error) {
	var sb strings.Builder
	w := csv.NewWriter(&sb)

	if err := w.Write(ColumnNames()); err != nil {
		return "", fmt.Errorf("write header: %w", err)
	}

	for _, rec := range records {
		row, err := exportRow(rec)
		if err != nil {
			return "", fmt.Errorf("record %s: %w", rec.Serial, err)
		}
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("record %s: %w", rec.Serial, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// exportRow renders one record in schema column order. A record whose
// enumerated values have drifted outside the vocabularies (store edited
// out of band) refuses to render rather than emitting a row that could
// not be re-imported.
func exportRow(rec CatalogRecord) ([]string, error) {
	if rec.Serial == "" {
		return nil, fmt.Errorf("missing serial")
	}
	if !InVocab(rec.StoneType, StoneTypes) {
		return nil, fmt.Errorf("type %q is outside the catalog vocabulary", rec.StoneType)
	}
	if !InVocab(rec.Color, Colors) {
		return nil, fmt.Errorf("color %q is outside the catalog vocabulary", rec.Color)
	}
	if rec.Cut != "" && !InVocab(rec.Cut, Cuts) {
		return nil, fmt.Errorf("cut %q is outside the catalog vocabulary", rec.Cut)
	}
	if rec.Clarity != "" && !InVocab(rec.Clarity, ClarityGrades) {
		return nil, fmt.Errorf("clarity %q is outside the catalog vocabulary", rec.Clarity)
	}
	if !InVocab(rec.Currency, Currencies) {
		return nil, fmt.Errorf("currency %q is outside the catalog vocabulary", rec.Currency)
	}

	row := make([]string, 0, len(Columns))
	for _, col := range Columns {
		switch col.Name {
		case "serial":
			row = append(row, rec.Serial)
		case "type":
			row = append(row, rec.StoneType)
		case "color":
			row = append(row, rec.Color)
		case "cut":
			row = append(row, rec.Cut)
		case "clarity":
			row = append(row, rec.Clarity)
		case "carat":
			row = append(row, FormatDecimal(rec.Carat))
		case "length_mm":
			row = append(row, FormatDecimal(rec.LengthMM))
		case "width_mm":
			row = append(row, FormatDecimal(rec.WidthMM))
		case "depth_mm":
			row = append(row, FormatDecimal(rec.DepthMM))
		case "price":
			row = append(row, FormatAmount(Amount{Cents: rec.PriceCents, Valid: true}))
		case "currency":
			row = append(row, rec.Currency)
		case "premium_price":
			row = append(row, FormatAmount(rec.PremiumPrice))
		case "premium_currency":
			row = append(row, rec.PremiumCurrency)
		case "in_stock":
			row = append(row, FormatFlag(Flag{Bool: rec.InStock, Valid: true}))
		case "notes":
			row = append(row, rec.Notes)
		}
	}
	return row, nil
}

// ExportFilename returns the download filename: a single-record export
// embeds the record's serial, a bulk export uses the generic catalog
// name with the export date.
func ExportFilename(records []CatalogRecord, now time.Time) string {
	if len(records) == 1 {
		return fmt.Sprintf("gem-%s.csv", sanitizeFilename(records[0].Serial))
	}
	return fmt.Sprintf("catalog-%s.csv", now.Format("2006-01-02"))
}

// sanitizeFilename keeps serials safe to embed in a filename.
func sanitizeFilename(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_' || r == '.':
			return r
		default:
			return '_'
		}
	}, s)
}
