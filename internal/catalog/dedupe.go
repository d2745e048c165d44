package catalog

// dedupe.go partitions validated records into accepted vs duplicate.
//
// Two duplicate scopes exist: a serial already present in the persisted
// store, and a serial seen earlier in the same batch. Within-batch ties
// resolve first-occurrence-wins: the first row with a given serial stays
// accepted, every later row becomes a finding.
//
// The store lookup is a single batched existence query across all
// candidate serials; issuing one query per record would put a network
// round-trip inside the per-record loop.

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// ResolveDuplicates takes the ordered records that passed validation and
// splits them into an accepted sub-sequence (preserving row order) and a
// duplicate list.
//
// exclude lists record ids whose serials should not count as store
// duplicates, for edit-in-place flows re-importing known records. It may
// be nil. A store failure here is batch-fatal: degrading to
// "treat as not duplicate" would silently admit duplicates.
func ResolveDuplicates(ctx context.Context, store Store, recs []StagedRecord, exclude map[uuid.UUID]bool) ([]StagedRecord, []DuplicateFinding, error) {
	if len(recs) == 0 {
		return nil, nil, nil
	}

	serials := make([]string, 0, len(recs))
	for _, rec := range recs {
		serials = append(serials, rec.Fields.Serial)
	}

	// One batched lookup; the result map is keyed by serial, so any
	// ordering the store returns is irrelevant.
	existing, err := store.ExistingSerials(ctx, serials)
	if err != nil {
		return nil, nil, fmt.Errorf("duplicate existence check: %w", err)
	}

	var accepted []StagedRecord
	var findings []DuplicateFinding
	seen := make(map[string]bool, len(recs))

	for _, rec := range recs {
		serial := rec.Fields.Serial

		if seen[serial] {
			findings = append(findings, DuplicateFinding{
				RowIndex: rec.RowIndex,
				Serial:   serial,
				Scope:    ScopeWithinBatch,
			})
			continue
		}

		if id, ok := existing[serial]; ok && !exclude[id] {
			seen[serial] = true
			findings = append(findings, DuplicateFinding{
				RowIndex:   rec.RowIndex,
				Serial:     serial,
				Scope:      ScopeExistingStore,
				ExistingID: id,
			})
			continue
		}

		seen[serial] = true
		accepted = append(accepted, rec)
	}

	return accepted, findings, nil
}
