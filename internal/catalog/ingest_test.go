package catalog

import (
	"errors"
	"strings"
	"testing"
)

func TestParseBatch_MinimalHeader(t *testing.T) {
	csv := "serial,type,color,price\n" +
		"A1,sapphire,blue,12500\n"

	recs, err := ParseBatch(csv)
	if err != nil {
		t.Fatalf("ParseBatch() error = %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("len(recs) = %d, want 1", len(recs))
	}

	rec := recs[0]
	if rec.RowIndex != 1 {
		t.Errorf("RowIndex = %d, want 1", rec.RowIndex)
	}
	if rec.Fields.Serial != "A1" {
		t.Errorf("Serial = %q, want A1", rec.Fields.Serial)
	}
	if rec.Fields.StoneType != "sapphire" {
		t.Errorf("StoneType = %q, want sapphire", rec.Fields.StoneType)
	}
	if rec.Fields.Color != "blue" {
		t.Errorf("Color = %q, want blue", rec.Fields.Color)
	}
	if rec.Fields.Price.Cents != 1250000 || !rec.Fields.Price.Valid {
		t.Errorf("Price = %+v, want 1250000 cents valid", rec.Fields.Price)
	}
	if rec.HasFatal() {
		t.Errorf("unexpected fatal issues: %+v", rec.Issues)
	}
}

func TestParseBatch_MissingRequiredColumns(t *testing.T) {
	csv := "serial,color,price\nA1,blue,100\n"

	_, err := ParseBatch(csv)
	if !errors.Is(err, ErrInvalidHeader) {
		t.Fatalf("ParseBatch() error = %v, want ErrInvalidHeader", err)
	}
	if !strings.Contains(err.Error(), "type") {
		t.Errorf("error %q should name the missing column", err)
	}
}

func TestParseBatch_EmptyInput(t *testing.T) {
	if _, err := ParseBatch(""); !errors.Is(err, ErrInvalidHeader) {
		t.Fatalf("ParseBatch(\"\") error = %v, want ErrInvalidHeader", err)
	}
}

func TestParseBatch_HeaderCaseInsensitive(t *testing.T) {
	csv := "Serial,TYPE,Color,PRICE\nA1,ruby,red,100\n"

	recs, err := ParseBatch(csv)
	if err != nil {
		t.Fatalf("ParseBatch() error = %v", err)
	}
	if len(recs) != 1 || recs[0].Fields.Serial != "A1" {
		t.Fatalf("recs = %+v, want one record with serial A1", recs)
	}
}

func TestParseBatch_UnknownColumnsIgnored(t *testing.T) {
	csv := "serial,type,color,price,appraiser,vault\n" +
		"A1,ruby,red,100,Smith,B7\n"

	recs, err := ParseBatch(csv)
	if err != nil {
		t.Fatalf("ParseBatch() error = %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("len(recs) = %d, want 1", len(recs))
	}
	if recs[0].HasFatal() {
		t.Errorf("unexpected fatal issues: %+v", recs[0].Issues)
	}
}

func TestParseBatch_EmptyRowsSkipped(t *testing.T) {
	csv := "serial,type,color,price\n" +
		"A1,ruby,red,100\n" +
		",,,\n" +
		"A2,sapphire,blue,200\n"

	recs, err := ParseBatch(csv)
	if err != nil {
		t.Fatalf("ParseBatch() error = %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("len(recs) = %d, want 2", len(recs))
	}
	// The blank line must not consume a row index.
	if recs[0].RowIndex != 1 || recs[1].RowIndex != 2 {
		t.Errorf("row indexes = %d, %d, want 1, 2", recs[0].RowIndex, recs[1].RowIndex)
	}
	if recs[1].Fields.Serial != "A2" {
		t.Errorf("second record serial = %q, want A2", recs[1].Fields.Serial)
	}
}

func TestParseBatch_RaggedRowIsFatal(t *testing.T) {
	csv := "serial,type,color,price\n" +
		"A1,ruby,red\n" +
		"A2,sapphire,blue,200\n"

	recs, err := ParseBatch(csv)
	if err != nil {
		t.Fatalf("ParseBatch() error = %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("len(recs) = %d, want 2", len(recs))
	}

	bad := recs[0]
	if !bad.HasFatal() {
		t.Fatal("short row should carry a fatal issue")
	}
	if bad.FirstFatal().Field != RowField {
		t.Errorf("fatal field = %q, want %q", bad.FirstFatal().Field, RowField)
	}
	if bad.RowIndex != 1 {
		t.Errorf("bad row RowIndex = %d, want 1", bad.RowIndex)
	}

	// The following row is unaffected.
	if recs[1].HasFatal() {
		t.Errorf("good row has fatal issues: %+v", recs[1].Issues)
	}
}

func TestParseBatch_UnknownEnumValue(t *testing.T) {
	csv := "serial,type,color,price\n" +
		"A1,kryptonite,blue,100\n"

	recs, err := ParseBatch(csv)
	if err != nil {
		t.Fatalf("ParseBatch() error = %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("len(recs) = %d, want 1", len(recs))
	}
	if !recs[0].HasFatal() {
		t.Fatal("unknown stone type should be a fatal issue")
	}
	if recs[0].FirstFatal().Field != "type" {
		t.Errorf("fatal field = %q, want type", recs[0].FirstFatal().Field)
	}
}

func TestParseBatch_RequiredFieldEmpty(t *testing.T) {
	// A whitespace-only cell trims to empty, so both spellings land on
	// the same required-field issue.
	for _, serial := range []string{"", "   "} {
		csv := "serial,type,color,price\n" +
			serial + ",ruby,red,100\n"

		recs, err := ParseBatch(csv)
		if err != nil {
			t.Fatalf("ParseBatch() error = %v", err)
		}
		if !recs[0].HasFatal() {
			t.Fatalf("serial %q should be a fatal issue", serial)
		}
		if recs[0].FirstFatal().Field != "serial" {
			t.Errorf("fatal field = %q, want serial", recs[0].FirstFatal().Field)
		}
	}
}

func TestParseBatch_FullSchema(t *testing.T) {
	csv := strings.Join(ColumnNames(), ",") + "\n" +
		`SN-1,diamond,colorless,round,VS1,1.25,6.50,6.45,4.00,"$9,999.00",USD,12000,EUR,yes,inherited estate piece` + "\n"

	recs, err := ParseBatch(csv)
	if err != nil {
		t.Fatalf("ParseBatch() error = %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("len(recs) = %d, want 1", len(recs))
	}

	f := recs[0].Fields
	if f.Cut != "round" || f.Clarity != "VS1" {
		t.Errorf("cut/clarity = %q/%q, want round/VS1", f.Cut, f.Clarity)
	}
	if f.Carat.Hundredths != 125 {
		t.Errorf("Carat = %d hundredths, want 125", f.Carat.Hundredths)
	}
	if f.Price.Cents != 999900 {
		t.Errorf("Price = %d cents, want 999900", f.Price.Cents)
	}
	if f.PremiumPrice.Cents != 1200000 {
		t.Errorf("PremiumPrice = %d cents, want 1200000", f.PremiumPrice.Cents)
	}
	if f.PremiumCurrency != "EUR" {
		t.Errorf("PremiumCurrency = %q, want EUR", f.PremiumCurrency)
	}
	if !f.InStock.Valid || !f.InStock.Bool {
		t.Errorf("InStock = %+v, want valid true", f.InStock)
	}
	if f.Notes != "inherited estate piece" {
		t.Errorf("Notes = %q", f.Notes)
	}
}

func TestParseBatch_ExcelPrefixedCells(t *testing.T) {
	csv := "serial,type,color,price\n" +
		`="SN-007",ruby,red,100` + "\n"

	recs, err := ParseBatch(csv)
	if err != nil {
		t.Fatalf("ParseBatch() error = %v", err)
	}
	if recs[0].Fields.Serial != "SN-007" {
		t.Errorf("Serial = %q, want SN-007", recs[0].Fields.Serial)
	}
}
