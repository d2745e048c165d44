package catalog

// validate.go applies semantic rules that pure type coercion cannot
// catch: required presence beyond type correctness, domain range checks,
// and cross-field consistency.
//
// Validate is a pure function over one record. It never touches the
// store, which keeps duplicate detection (the only stage that does)
// cleanly separated and lets validation run in table-driven tests with
// no fixtures.

import "fmt"

// Validate appends semantic issues to a staged record. It does not
// mutate any parsed field value, only the diagnostics list.
func Validate(rec *StagedRecord) {
	f := &rec.Fields

	// Carat must be strictly positive when supplied on the creation
	// path; an absent carat is unspecified, not an error.
	if f.Carat.Valid && f.Carat.Hundredths == 0 {
		rec.AddIssue("carat", SeverityError, "carat must be greater than zero")
	}
	if !f.Carat.Valid {
		rec.AddIssue("carat", SeverityWarning, "carat not specified")
	}

	if f.Price.Valid && f.Price.Cents < 0 {
		rec.AddIssue("price", SeverityError, "price must not be negative")
	}
	if f.Price.Valid && f.Price.Cents == 0 {
		rec.AddIssue("price", SeverityWarning, "price is zero")
	}

	// A premium price must carry an explicit currency or inherit the
	// primary one.
	if f.PremiumPrice.Valid {
		if f.PremiumPrice.Cents < 0 {
			rec.AddIssue("premium_price", SeverityError, "premium price must not be negative")
		}
		if f.PremiumCurrency == "" {
			inherited := f.Currency
			if inherited == "" {
				inherited = DefaultCurrency
			}
			rec.AddIssue("premium_currency", SeverityWarning,
				fmt.Sprintf("premium price inherits currency %s", inherited))
		}
	}
	if f.PremiumCurrency != "" && !f.PremiumPrice.Valid {
		rec.AddIssue("premium_currency", SeverityWarning,
			"premium currency given without a premium price")
	}

	// Dimensions only make sense together; a partial set is suspicious
	// but not blocking.
	dims := 0
	for _, d := range []Decimal{f.LengthMM, f.WidthMM, f.DepthMM} {
		if d.Valid {
			dims++
		}
	}
	if dims > 0 && dims < 3 {
		rec.AddIssue("length_mm", SeverityWarning, "incomplete dimensions: expected length, width and depth")
	}
}

// ValidateUpdateSet checks a bulk-edit change-set once, before it is
// applied to any record. The rules are looser than the creation path:
// a zero carat is allowed here because a bulk update may legitimately
// clear a provisional weight.
func ValidateUpdateSet(set FieldUpdateSet) []ValidationIssue {
	var issues []ValidationIssue
	add := func(field, msg string) {
		issues = append(issues, ValidationIssue{Field: field, Severity: SeverityError, Message: msg})
	}

	if set.StoneType != nil && !InVocab(*set.StoneType, StoneTypes) {
		add("type", fmt.Sprintf("%q is not a known stone type", *set.StoneType))
	}
	if set.Color != nil && !InVocab(*set.Color, Colors) {
		add("color", fmt.Sprintf("%q is not a known color", *set.Color))
	}
	if set.Cut != nil && *set.Cut != "" && !InVocab(*set.Cut, Cuts) {
		add("cut", fmt.Sprintf("%q is not a known cut", *set.Cut))
	}
	if set.Clarity != nil && *set.Clarity != "" && !InVocab(*set.Clarity, ClarityGrades) {
		add("clarity", fmt.Sprintf("%q is not a known clarity grade", *set.Clarity))
	}
	if set.Currency != nil && !InVocab(*set.Currency, Currencies) {
		add("currency", fmt.Sprintf("%q is not a known currency", *set.Currency))
	}
	if set.PremiumCurrency != nil && *set.PremiumCurrency != "" && !InVocab(*set.PremiumCurrency, Currencies) {
		add("premium_currency", fmt.Sprintf("%q is not a known currency", *set.PremiumCurrency))
	}
	if set.Carat != nil && set.Carat.Valid && set.Carat.Hundredths < 0 {
		add("carat", "carat must not be negative")
	}
	// Price is required on every record; an invalid Amount would mean
	// "clear it", which has no representation in the store.
	if set.Price != nil && !set.Price.Valid {
		add("price", "price cannot be cleared")
	}
	if set.Price != nil && set.Price.Valid && set.Price.Cents < 0 {
		add("price", "price must not be negative")
	}
	if set.PremiumPrice != nil && set.PremiumPrice.Valid && set.PremiumPrice.Cents < 0 {
		add("premium_price", "premium price must not be negative")
	}

	return issues
}
