package catalog

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func exportFixture(serial string) CatalogRecord {
	return CatalogRecord{
		ID:              uuid.New(),
		Serial:          serial,
		StoneType:       "diamond",
		Color:           "colorless",
		Cut:             "round",
		Clarity:         "VS1",
		Carat:           Decimal{Hundredths: 125, Valid: true},
		LengthMM:        Decimal{Hundredths: 650, Valid: true},
		WidthMM:         Decimal{Hundredths: 645, Valid: true},
		DepthMM:         Decimal{Hundredths: 400, Valid: true},
		PriceCents:      999900,
		Currency:        "USD",
		PremiumPrice:    Amount{Cents: 1200000, Valid: true},
		PremiumCurrency: "EUR",
		InStock:         true,
		Notes:           "estate piece, re-certified",
	}
}

func TestExportCSV_RoundTrip(t *testing.T) {
	records := []CatalogRecord{exportFixture("SN-1"), exportFixture("SN-2")}
	records[1].StoneType = "sapphire"
	records[1].Color = "blue"
	records[1].Cut = ""
	records[1].Clarity = ""
	records[1].Carat = Decimal{}
	records[1].InStock = false

	text, err := ExportCSV(records)
	if err != nil {
		t.Fatalf("ExportCSV() error = %v", err)
	}

	reparsed, err := ParseBatch(text)
	if err != nil {
		t.Fatalf("ParseBatch(export) error = %v", err)
	}
	if len(reparsed) != len(records) {
		t.Fatalf("reparsed %d records, want %d", len(reparsed), len(records))
	}

	for i, rec := range records {
		f := reparsed[i].Fields
		if f.Serial != rec.Serial {
			t.Errorf("record %d serial = %q, want %q", i, f.Serial, rec.Serial)
		}
		if f.StoneType != rec.StoneType || f.Color != rec.Color {
			t.Errorf("record %d type/color = %q/%q, want %q/%q",
				i, f.StoneType, f.Color, rec.StoneType, rec.Color)
		}
		if f.Cut != rec.Cut || f.Clarity != rec.Clarity {
			t.Errorf("record %d cut/clarity = %q/%q, want %q/%q",
				i, f.Cut, f.Clarity, rec.Cut, rec.Clarity)
		}
		if f.Carat != rec.Carat {
			t.Errorf("record %d carat = %+v, want %+v", i, f.Carat, rec.Carat)
		}
		if !f.Price.Valid || f.Price.Cents != rec.PriceCents {
			t.Errorf("record %d price = %+v, want %d cents", i, f.Price, rec.PriceCents)
		}
		if f.PremiumPrice != rec.PremiumPrice {
			t.Errorf("record %d premium price = %+v, want %+v", i, f.PremiumPrice, rec.PremiumPrice)
		}
		if !f.InStock.Valid || f.InStock.Bool != rec.InStock {
			t.Errorf("record %d in_stock = %+v, want %v", i, f.InStock, rec.InStock)
		}
		if f.Notes != rec.Notes {
			t.Errorf("record %d notes = %q, want %q", i, f.Notes, rec.Notes)
		}
	}
}

func TestExportCSV_HeaderOnly(t *testing.T) {
	text, err := ExportCSV(nil)
	if err != nil {
		t.Fatalf("ExportCSV(nil) error = %v", err)
	}
	want := strings.Join(ColumnNames(), ",") + "\n"
	if text != want {
		t.Errorf("ExportCSV(nil) = %q, want %q", text, want)
	}
}

func TestExportCSV_RowOrderFollowsSelection(t *testing.T) {
	records := []CatalogRecord{exportFixture("Z-9"), exportFixture("A-1")}

	text, err := ExportCSV(records)
	if err != nil {
		t.Fatalf("ExportCSV() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(text), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(lines))
	}
	if !strings.HasPrefix(lines[1], "Z-9,") || !strings.HasPrefix(lines[2], "A-1,") {
		t.Errorf("row order = %q then %q, want selection order Z-9 then A-1", lines[1], lines[2])
	}
}

func TestExportCSV_DriftedRecordFailsWholeExport(t *testing.T) {
	good := exportFixture("SN-1")
	drifted := exportFixture("SN-2")
	drifted.StoneType = "unobtainium" // edited out of band

	_, err := ExportCSV([]CatalogRecord{good, drifted})
	if err == nil {
		t.Fatal("expected export failure for out-of-vocabulary record")
	}
	if !strings.Contains(err.Error(), "SN-2") {
		t.Errorf("error %q should name the offending record", err)
	}
}

func TestExportCSV_MissingSerial(t *testing.T) {
	rec := exportFixture("SN-1")
	rec.Serial = ""
	if _, err := ExportCSV([]CatalogRecord{rec}); err == nil {
		t.Fatal("expected export failure for missing serial")
	}
}

func TestExportFilename(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

	single := []CatalogRecord{exportFixture("SN 7/b")}
	if got := ExportFilename(single, now); got != "gem-SN_7_b.csv" {
		t.Errorf("single filename = %q, want gem-SN_7_b.csv", got)
	}

	bulk := []CatalogRecord{exportFixture("SN-1"), exportFixture("SN-2")}
	if got := ExportFilename(bulk, now); got != "catalog-2026-03-15.csv" {
		t.Errorf("bulk filename = %q, want catalog-2026-03-15.csv", got)
	}
}
