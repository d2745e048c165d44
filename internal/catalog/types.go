package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned by Store implementations when an update targets
// an id that does not exist.
var ErrNotFound = errors.New("record not found")

// Store is the persistence contract consumed by the engine. Implemented
// by internal/store against PostgreSQL; tests use an in-memory fake.
//
// ExistingSerials is a single batched lookup across all candidate serials.
// Implementations are free to return results in any order; the engine
// re-keys them itself.
type Store interface {
	ExistingSerials(ctx context.Context, serials []string) (map[string]uuid.UUID, error)
	Create(ctx context.Context, rec CatalogRecord) (uuid.UUID, error)
	Update(ctx context.Context, id uuid.UUID, set FieldUpdateSet) error
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]CatalogRecord, error)
	List(ctx context.Context) ([]CatalogRecord, error)
}

// Severity classifies a ValidationIssue. An error blocks persistence of
// the record; a warning is reported but never blocks.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// ValidationIssue is one diagnostic attached to a staged record.
type ValidationIssue struct {
	Field    string   `json:"field"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// Amount is a monetary value in integer minor units (cents).
// Valid is false when the source field was blank.
type Amount struct {
	Cents int64
	Valid bool
}

// Decimal is a fixed-point measurement with two fractional digits,
// stored as integer hundredths. Valid is false when unspecified.
// Carat weight and millimetre dimensions use this representation so
// that parse and export round-trip without float drift.
type Decimal struct {
	Hundredths int64
	Valid      bool
}

// Flag is an optional boolean (the in-stock column).
type Flag struct {
	Bool  bool
	Valid bool
}

// RecordFields is the typed projection of one CSV row. Enumerated fields
// hold the canonical vocabulary value, or "" when absent. Optional numeric
// families carry their own validity.
type RecordFields struct {
	Serial          string
	StoneType       string
	Color           string
	Cut             string
	Clarity         string
	Carat           Decimal
	LengthMM        Decimal
	WidthMM         Decimal
	DepthMM         Decimal
	Price           Amount
	Currency        string
	PremiumPrice    Amount
	PremiumCurrency string
	InStock         Flag
	Notes           string
}

// StagedRecord is one candidate produced from one input row. It exists
// only for the duration of a batch operation and is never persisted.
type StagedRecord struct {
	// RowIndex is the 1-based ordinal of the data row in the source
	// batch. It is stable and is the reporting key for every
	// downstream component.
	RowIndex int

	// RawFields preserves the original text per recognized column for
	// diagnostics.
	RawFields map[string]string

	Fields RecordFields
	Issues []ValidationIssue
}

// AddIssue appends a diagnostic to the record.
func (r *StagedRecord) AddIssue(field string, sev Severity, message string) {
	r.Issues = append(r.Issues, ValidationIssue{Field: field, Severity: sev, Message: message})
}

// HasFatal reports whether the record carries at least one error-severity
// issue. Such a record must never reach the store-write step.
func (r *StagedRecord) HasFatal() bool {
	for _, is := range r.Issues {
		if is.Severity == SeverityError {
			return true
		}
	}
	return false
}

// FirstFatal returns the first error-severity issue, or a zero issue if
// none exists.
func (r *StagedRecord) FirstFatal() ValidationIssue {
	for _, is := range r.Issues {
		if is.Severity == SeverityError {
			return is
		}
	}
	return ValidationIssue{}
}

// DuplicateScope distinguishes where a duplicate serial was found.
type DuplicateScope string

const (
	// ScopeExistingStore means the serial already exists in the
	// persisted catalog.
	ScopeExistingStore DuplicateScope = "existing-store"
	// ScopeWithinBatch means an earlier row in the same batch carried
	// the same serial. First occurrence wins.
	ScopeWithinBatch DuplicateScope = "within-batch"
)

// DuplicateFinding marks a record skipped as a duplicate. A duplicate is
// not a failure; it feeds its own counter.
type DuplicateFinding struct {
	RowIndex   int            `json:"rowIndex"`
	Serial     string         `json:"serial"`
	Scope      DuplicateScope `json:"scope"`
	ExistingID uuid.UUID      `json:"existingRecordId,omitempty"`
}

// RecordError is one per-record failure in a BatchOutcome. Import
// failures carry the source RowIndex; bulk-update failures carry the
// record's serial instead, since there is no row concept there.
type RecordError struct {
	RowIndex int    `json:"rowIndex,omitempty"`
	Serial   string `json:"serial,omitempty"`
	Message  string `json:"message"`
}

// BatchOutcome is the aggregate result of one import or bulk-update run.
//
// Invariant: Attempted == Succeeded + Failed + Duplicates at every point
// the outcome is observable, and len(Errors) == Failed.
type BatchOutcome struct {
	Attempted  int                `json:"attempted"`
	Succeeded  int                `json:"succeeded"`
	Failed     int                `json:"failed"`
	Duplicates int                `json:"duplicateCount"`
	Errors     []RecordError      `json:"perRecordErrors,omitempty"`
	Findings   []DuplicateFinding `json:"duplicates,omitempty"`
}

// ProgressFunc receives an outcome snapshot after each record reaches a
// terminal state. Snapshots always satisfy the BatchOutcome invariant, so
// a caller can render partial progress directly.
type ProgressFunc func(BatchOutcome)

// FieldUpdateSet is a sparse change-set for bulk edits. A nil field means
// "leave untouched"; a set field is written even when its value is the
// zero value for that family. Presence of the pointer is the toggle.
type FieldUpdateSet struct {
	StoneType       *string
	Color           *string
	Cut             *string
	Clarity         *string
	Carat           *Decimal
	Price           *Amount
	Currency        *string
	PremiumPrice    *Amount
	PremiumCurrency *string
	InStock         *bool
	Notes           *string
}

// Empty reports whether no field is marked for update. Applying an empty
// set is a no-op that still counts as success.
func (u FieldUpdateSet) Empty() bool {
	return u.StoneType == nil && u.Color == nil && u.Cut == nil &&
		u.Clarity == nil && u.Carat == nil && u.Price == nil &&
		u.Currency == nil && u.PremiumPrice == nil &&
		u.PremiumCurrency == nil && u.InStock == nil && u.Notes == nil
}

// Selection identifies one existing record targeted by a bulk update.
// Serial is carried for error reporting; the store write is keyed by ID.
type Selection struct {
	ID     uuid.UUID `json:"id"`
	Serial string    `json:"serial"`
}

// CatalogRecord is the persisted entity, owned by the external store.
// The engine reads and writes it only through the Store contract.
type CatalogRecord struct {
	ID              uuid.UUID `json:"id"`
	Serial          string    `json:"serial"`
	StoneType       string    `json:"type"`
	Color           string    `json:"color"`
	Cut             string    `json:"cut,omitempty"`
	Clarity         string    `json:"clarity,omitempty"`
	Carat           Decimal   `json:"-"`
	LengthMM        Decimal   `json:"-"`
	WidthMM         Decimal   `json:"-"`
	DepthMM         Decimal   `json:"-"`
	PriceCents      int64     `json:"priceCents"`
	Currency        string    `json:"currency"`
	PremiumPrice    Amount    `json:"-"`
	PremiumCurrency string    `json:"premiumCurrency,omitempty"`
	InStock         bool      `json:"inStock"`
	Notes           string    `json:"notes,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}
