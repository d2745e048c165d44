package catalog

// importer.go drives the full import pipeline: parse, validate, resolve
// duplicates, then one store create per accepted record.
//
// Each record moves through its own state machine independently of all
// others: Parsed -> Validated -> {Duplicate | Rejected | Applying} ->
// {Succeeded | Failed}. Rejected is terminal for fatal validation issues,
// Duplicate for resolver findings, and Applying makes exactly one create
// attempt with no retry. A store failure on one record never aborts the
// batch.
//
// Aggregation is incremental: counters advance together as each record
// reaches a terminal state, so attempted == succeeded + failed +
// duplicates holds at every progress snapshot, not only at completion.

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// Engine runs batch operations against a Store.
type Engine struct {
	store   Store
	limiter *BatchLimiter
	logger  *slog.Logger
}

// NewEngine creates an engine. limiter may be nil to run without
// admission control (tests do this).
func NewEngine(store Store, limiter *BatchLimiter) *Engine {
	return &Engine{
		store:   store,
		limiter: limiter,
		logger:  slog.Default(),
	}
}

// ImportBatch parses csvText and applies every staged record as an
// independent create operation, in input row order.
//
// The returned error is non-nil only for batch-fatal conditions: an
// invalid header, a failed duplicate existence check, or admission
// rejection. Everything else, including a batch where every record
// failed, is captured in the outcome. progress may be nil.
func (e *Engine) ImportBatch(ctx context.Context, csvText string, progress ProgressFunc) (BatchOutcome, error) {
	if e.limiter != nil {
		if err := e.limiter.Acquire(ctx); err != nil {
			return BatchOutcome{}, err
		}
		defer e.limiter.Release()
	}

	records, err := ParseBatch(csvText)
	if err != nil {
		return BatchOutcome{}, err
	}

	for i := range records {
		Validate(&records[i])
	}

	// Only records without fatal issues go to the resolver.
	var candidates []StagedRecord
	for _, rec := range records {
		if !rec.HasFatal() {
			candidates = append(candidates, rec)
		}
	}

	accepted, findings, err := ResolveDuplicates(ctx, e.store, candidates, nil)
	if err != nil {
		return BatchOutcome{}, err
	}

	duplicateAt := make(map[int]DuplicateFinding, len(findings))
	for _, f := range findings {
		duplicateAt[f.RowIndex] = f
	}
	acceptedAt := make(map[int]bool, len(accepted))
	for _, rec := range accepted {
		acceptedAt[rec.RowIndex] = true
	}

	var out BatchOutcome
	notify := func() {
		if progress != nil {
			progress(out)
		}
	}

	for _, rec := range records {
		switch {
		case rec.HasFatal():
			is := rec.FirstFatal()
			out.Attempted++
			out.Failed++
			out.Errors = append(out.Errors, RecordError{
				RowIndex: rec.RowIndex,
				Serial:   rec.Fields.Serial,
				Message:  fmt.Sprintf("%s: %s", is.Field, is.Message),
			})

		case duplicateAt[rec.RowIndex].Scope != "":
			out.Attempted++
			out.Duplicates++
			out.Findings = append(out.Findings, duplicateAt[rec.RowIndex])

		case acceptedAt[rec.RowIndex]:
			out.Attempted++
			if err := ctx.Err(); err != nil {
				out.Failed++
				out.Errors = append(out.Errors, RecordError{
					RowIndex: rec.RowIndex,
					Serial:   rec.Fields.Serial,
					Message:  fmt.Sprintf("cancelled: %v", err),
				})
				notify()
				continue
			}

			id, err := e.store.Create(ctx, buildRecord(rec.Fields))
			if err != nil {
				out.Failed++
				out.Errors = append(out.Errors, RecordError{
					RowIndex: rec.RowIndex,
					Serial:   rec.Fields.Serial,
					Message:  fmt.Sprintf("create: %v", err),
				})
			} else {
				out.Succeeded++
				e.logger.Debug("record created",
					"row", rec.RowIndex, "serial", rec.Fields.Serial, "id", id)
			}
		}
		notify()
	}

	e.logger.Info("import batch complete",
		"attempted", out.Attempted,
		"succeeded", out.Succeeded,
		"failed", out.Failed,
		"duplicates", out.Duplicates,
	)
	return out, nil
}

// buildRecord projects coerced fields into the persisted entity shape.
// A blank currency falls back to the catalog default, and an unspecified
// stock flag is taken as in stock.
func buildRecord(f RecordFields) CatalogRecord {
	currency := f.Currency
	if currency == "" {
		currency = DefaultCurrency
	}
	premiumCurrency := f.PremiumCurrency
	if f.PremiumPrice.Valid && premiumCurrency == "" {
		premiumCurrency = currency
	}
	inStock := true
	if f.InStock.Valid {
		inStock = f.InStock.Bool
	}

	return CatalogRecord{
		ID:              uuid.New(),
		Serial:          f.Serial,
		StoneType:       f.StoneType,
		Color:           f.Color,
		Cut:             f.Cut,
		Clarity:         f.Clarity,
		Carat:           f.Carat,
		LengthMM:        f.LengthMM,
		WidthMM:         f.WidthMM,
		DepthMM:         f.DepthMM,
		PriceCents:      f.Price.Cents,
		Currency:        currency,
		PremiumPrice:    f.PremiumPrice,
		PremiumCurrency: premiumCurrency,
		InStock:         inStock,
		Notes:           f.Notes,
	}
}
