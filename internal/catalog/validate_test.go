package catalog

import "testing"

func hasIssue(issues []ValidationIssue, field string, sev Severity) bool {
	for _, is := range issues {
		if is.Field == field && is.Severity == sev {
			return true
		}
	}
	return false
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name        string
		fields      RecordFields
		wantField   string
		wantSev     Severity
		wantPresent bool
	}{
		{
			name:        "zero carat is an error",
			fields:      RecordFields{Serial: "A1", Carat: Decimal{Hundredths: 0, Valid: true}},
			wantField:   "carat",
			wantSev:     SeverityError,
			wantPresent: true,
		},
		{
			name:        "absent carat is only a warning",
			fields:      RecordFields{Serial: "A1"},
			wantField:   "carat",
			wantSev:     SeverityWarning,
			wantPresent: true,
		},
		{
			name:        "positive carat passes",
			fields:      RecordFields{Serial: "A1", Carat: Decimal{Hundredths: 125, Valid: true}},
			wantField:   "carat",
			wantSev:     SeverityError,
			wantPresent: false,
		},
		{
			name:        "negative price is an error",
			fields:      RecordFields{Serial: "A1", Price: Amount{Cents: -100, Valid: true}},
			wantField:   "price",
			wantSev:     SeverityError,
			wantPresent: true,
		},
		{
			name:        "zero price is a warning",
			fields:      RecordFields{Serial: "A1", Price: Amount{Cents: 0, Valid: true}},
			wantField:   "price",
			wantSev:     SeverityWarning,
			wantPresent: true,
		},
		{
			name: "premium price without currency warns about inheritance",
			fields: RecordFields{
				Serial:       "A1",
				Currency:     "EUR",
				PremiumPrice: Amount{Cents: 5000, Valid: true},
			},
			wantField:   "premium_currency",
			wantSev:     SeverityWarning,
			wantPresent: true,
		},
		{
			name: "premium currency without premium price warns",
			fields: RecordFields{
				Serial:          "A1",
				PremiumCurrency: "EUR",
			},
			wantField:   "premium_currency",
			wantSev:     SeverityWarning,
			wantPresent: true,
		},
		{
			name: "partial dimensions warn",
			fields: RecordFields{
				Serial:   "A1",
				LengthMM: Decimal{Hundredths: 650, Valid: true},
			},
			wantField:   "length_mm",
			wantSev:     SeverityWarning,
			wantPresent: true,
		},
		{
			name: "complete dimensions pass",
			fields: RecordFields{
				Serial:   "A1",
				LengthMM: Decimal{Hundredths: 650, Valid: true},
				WidthMM:  Decimal{Hundredths: 645, Valid: true},
				DepthMM:  Decimal{Hundredths: 400, Valid: true},
			},
			wantField:   "length_mm",
			wantSev:     SeverityWarning,
			wantPresent: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := StagedRecord{RowIndex: 1, Fields: tt.fields}
			Validate(&rec)

			got := hasIssue(rec.Issues, tt.wantField, tt.wantSev)
			if got != tt.wantPresent {
				t.Errorf("issue(%s, %s) present = %v, want %v (issues: %+v)",
					tt.wantField, tt.wantSev, got, tt.wantPresent, rec.Issues)
			}
		})
	}
}

func TestValidate_WarningsDoNotBlock(t *testing.T) {
	rec := StagedRecord{RowIndex: 1, Fields: RecordFields{Serial: "A1"}}
	Validate(&rec)

	// Absent carat warns but the record stays acceptable.
	if rec.HasFatal() {
		t.Errorf("warnings alone should not be fatal: %+v", rec.Issues)
	}
}

func TestValidateUpdateSet(t *testing.T) {
	str := func(s string) *string { return &s }

	tests := []struct {
		name    string
		set     FieldUpdateSet
		wantErr bool
	}{
		{"empty set is valid", FieldUpdateSet{}, false},
		{"known type", FieldUpdateSet{StoneType: str("ruby")}, false},
		{"unknown type", FieldUpdateSet{StoneType: str("kryptonite")}, true},
		{"unknown color", FieldUpdateSet{Color: str("plaid")}, true},
		{"clearing cut is valid", FieldUpdateSet{Cut: str("")}, false},
		{"unknown cut", FieldUpdateSet{Cut: str("dodecahedron")}, true},
		{"unknown currency", FieldUpdateSet{Currency: str("XYZ")}, true},
		{"zero carat allowed on update", FieldUpdateSet{Carat: &Decimal{Hundredths: 0, Valid: true}}, false},
		{"negative carat rejected", FieldUpdateSet{Carat: &Decimal{Hundredths: -1, Valid: true}}, true},
		{"negative price rejected", FieldUpdateSet{Price: &Amount{Cents: -100, Valid: true}}, true},
		{"cleared price rejected", FieldUpdateSet{Price: &Amount{}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issues := ValidateUpdateSet(tt.set)
			if (len(issues) > 0) != tt.wantErr {
				t.Errorf("ValidateUpdateSet() issues = %+v, wantErr %v", issues, tt.wantErr)
			}
		})
	}
}
