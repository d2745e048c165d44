package catalog

// bulkupdate.go applies one sparse change-set across an explicit
// selection of existing records, with the same per-record isolation and
// aggregation discipline as the import path. There is no parsing and no
// duplicate resolution here: the records already exist, and the store
// write itself is the existence check.

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyReason is returned when a bulk update is submitted without a
// justification. The reason is carried as metadata only and has no
// effect on per-record outcomes.
var ErrEmptyReason = errors.New("bulk update reason must not be empty")

// ErrInvalidUpdateSet is returned when the change-set itself fails
// validation. The same set applies to every target, so a bad set is a
// batch-level input error rather than N identical per-record failures.
var ErrInvalidUpdateSet = errors.New("invalid update set")

// ApplyBulkUpdate applies set to each selected record independently, in
// selection order. An empty set is a no-op that still counts every
// target as succeeded with zero writes. progress may be nil.
func (e *Engine) ApplyBulkUpdate(ctx context.Context, targets []Selection, set FieldUpdateSet, reason string, progress ProgressFunc) (BatchOutcome, error) {
	if strings.TrimSpace(reason) == "" {
		return BatchOutcome{}, ErrEmptyReason
	}
	if issues := ValidateUpdateSet(set); len(issues) > 0 {
		first := issues[0]
		return BatchOutcome{}, fmt.Errorf("%w: %s: %s", ErrInvalidUpdateSet, first.Field, first.Message)
	}

	if e.limiter != nil {
		if err := e.limiter.Acquire(ctx); err != nil {
			return BatchOutcome{}, err
		}
		defer e.limiter.Release()
	}

	var out BatchOutcome
	notify := func() {
		if progress != nil {
			progress(out)
		}
	}

	for _, target := range targets {
		out.Attempted++

		if set.Empty() {
			// No fields marked for update: success without a write.
			out.Succeeded++
			notify()
			continue
		}

		if err := ctx.Err(); err != nil {
			out.Failed++
			out.Errors = append(out.Errors, RecordError{
				Serial:  target.Serial,
				Message: fmt.Sprintf("cancelled: %v", err),
			})
			notify()
			continue
		}

		if err := e.store.Update(ctx, target.ID, set); err != nil {
			out.Failed++
			out.Errors = append(out.Errors, RecordError{
				Serial:  target.Serial,
				Message: fmt.Sprintf("update: %v", err),
			})
		} else {
			out.Succeeded++
		}
		notify()
	}

	e.logger.Info("bulk update complete",
		"attempted", out.Attempted,
		"succeeded", out.Succeeded,
		"failed", out.Failed,
		"reason", reason,
	)
	return out, nil
}

// ParseUpdateSet builds a FieldUpdateSet from raw field text, using the
// same coercion vocabulary as the ingest parser. Only keys present in
// the input are marked for update; a key mapped to empty text clears the
// optional field it names. Required fields (price, in_stock, and the
// enumerated vocabularies) cannot be cleared, so empty text there is an
// issue. Unknown keys and coercion failures are returned as issues.
func ParseUpdateSet(fields map[string]string) (FieldUpdateSet, []ValidationIssue) {
	var set FieldUpdateSet
	var issues []ValidationIssue
	fail := func(field, msg string) {
		issues = append(issues, ValidationIssue{Field: field, Severity: SeverityError, Message: msg})
	}

	for name, raw := range fields {
		raw = CleanCell(raw)
		switch name {
		case "type":
			canonical, ok := MatchVocab(raw, StoneTypes)
			if !ok {
				fail(name, fmt.Sprintf("%q is not one of: %s", raw, strings.Join(StoneTypes, ", ")))
				continue
			}
			set.StoneType = &canonical
		case "color":
			canonical, ok := MatchVocab(raw, Colors)
			if !ok {
				fail(name, fmt.Sprintf("%q is not one of: %s", raw, strings.Join(Colors, ", ")))
				continue
			}
			set.Color = &canonical
		case "cut":
			canonical := ""
			if raw != "" {
				var ok bool
				canonical, ok = MatchVocab(raw, Cuts)
				if !ok {
					fail(name, fmt.Sprintf("%q is not one of: %s", raw, strings.Join(Cuts, ", ")))
					continue
				}
			}
			set.Cut = &canonical
		case "clarity":
			canonical := ""
			if raw != "" {
				var ok bool
				canonical, ok = MatchVocab(raw, ClarityGrades)
				if !ok {
					fail(name, fmt.Sprintf("%q is not one of: %s", raw, strings.Join(ClarityGrades, ", ")))
					continue
				}
			}
			set.Clarity = &canonical
		case "carat":
			d, err := ParseDecimal(raw)
			if err != nil {
				fail(name, fmt.Sprintf("%q: %v", raw, err))
				continue
			}
			set.Carat = &d
		case "price":
			if raw == "" {
				fail(name, "price cannot be cleared")
				continue
			}
			a, err := ParseAmount(raw)
			if err != nil {
				fail(name, fmt.Sprintf("%q: %v", raw, err))
				continue
			}
			set.Price = &a
		case "currency":
			canonical, ok := MatchVocab(raw, Currencies)
			if !ok {
				fail(name, fmt.Sprintf("%q is not one of: %s", raw, strings.Join(Currencies, ", ")))
				continue
			}
			set.Currency = &canonical
		case "premium_price":
			a, err := ParseAmount(raw)
			if err != nil {
				fail(name, fmt.Sprintf("%q: %v", raw, err))
				continue
			}
			set.PremiumPrice = &a
		case "premium_currency":
			canonical := ""
			if raw != "" {
				var ok bool
				canonical, ok = MatchVocab(raw, Currencies)
				if !ok {
					fail(name, fmt.Sprintf("%q is not one of: %s", raw, strings.Join(Currencies, ", ")))
					continue
				}
			}
			set.PremiumCurrency = &canonical
		case "in_stock":
			if raw == "" {
				fail(name, "in_stock cannot be cleared")
				continue
			}
			flag, err := ParseFlag(raw)
			if err != nil {
				fail(name, fmt.Sprintf("%q: %v", raw, err))
				continue
			}
			b := flag.Bool
			set.InStock = &b
		case "notes":
			notes := raw
			set.Notes = &notes
		default:
			fail(name, "unknown field")
		}
	}

	return set, issues
}
