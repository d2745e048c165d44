package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

func staged(rowIndex int, serial string) StagedRecord {
	return StagedRecord{RowIndex: rowIndex, Fields: RecordFields{Serial: serial}}
}

func TestResolveDuplicates_Empty(t *testing.T) {
	accepted, findings, err := ResolveDuplicates(context.Background(), newFakeStore(), nil, nil)
	if err != nil {
		t.Fatalf("ResolveDuplicates() error = %v", err)
	}
	if accepted != nil || findings != nil {
		t.Errorf("empty input should yield nothing, got %v / %v", accepted, findings)
	}
}

func TestResolveDuplicates_ExistingStore(t *testing.T) {
	store := newFakeStore()
	existingID := uuid.New()
	store.records[existingID] = CatalogRecord{ID: existingID, Serial: "A1"}
	store.bySer["A1"] = existingID

	recs := []StagedRecord{staged(1, "A1"), staged(2, "A2")}

	accepted, findings, err := ResolveDuplicates(context.Background(), store, recs, nil)
	if err != nil {
		t.Fatalf("ResolveDuplicates() error = %v", err)
	}

	if len(accepted) != 1 || accepted[0].Fields.Serial != "A2" {
		t.Errorf("accepted = %+v, want only A2", accepted)
	}
	if len(findings) != 1 {
		t.Fatalf("len(findings) = %d, want 1", len(findings))
	}
	f := findings[0]
	if f.Scope != ScopeExistingStore || f.Serial != "A1" || f.ExistingID != existingID {
		t.Errorf("finding = %+v, want existing-store A1 with id %s", f, existingID)
	}
}

func TestResolveDuplicates_WithinBatchFirstWins(t *testing.T) {
	recs := []StagedRecord{staged(1, "A1"), staged(2, "A1"), staged(3, "A1")}

	accepted, findings, err := ResolveDuplicates(context.Background(), newFakeStore(), recs, nil)
	if err != nil {
		t.Fatalf("ResolveDuplicates() error = %v", err)
	}

	if len(accepted) != 1 || accepted[0].RowIndex != 1 {
		t.Errorf("accepted = %+v, want only row 1", accepted)
	}
	if len(findings) != 2 {
		t.Fatalf("len(findings) = %d, want 2", len(findings))
	}
	for i, f := range findings {
		if f.Scope != ScopeWithinBatch {
			t.Errorf("finding %d scope = %q, want within-batch", i, f.Scope)
		}
	}
	if findings[0].RowIndex != 2 || findings[1].RowIndex != 3 {
		t.Errorf("finding rows = %d, %d, want 2, 3", findings[0].RowIndex, findings[1].RowIndex)
	}
}

func TestResolveDuplicates_StoreDupThenBatchDup(t *testing.T) {
	// A serial that exists in the store appears twice in the batch: the
	// first row is an existing-store duplicate, the second a within-batch
	// one. Neither is accepted.
	store := newFakeStore()
	existingID := uuid.New()
	store.records[existingID] = CatalogRecord{ID: existingID, Serial: "A1"}
	store.bySer["A1"] = existingID

	recs := []StagedRecord{staged(1, "A1"), staged(2, "A1")}

	accepted, findings, err := ResolveDuplicates(context.Background(), store, recs, nil)
	if err != nil {
		t.Fatalf("ResolveDuplicates() error = %v", err)
	}
	if len(accepted) != 0 {
		t.Errorf("accepted = %+v, want none", accepted)
	}
	if len(findings) != 2 {
		t.Fatalf("len(findings) = %d, want 2", len(findings))
	}
	if findings[0].Scope != ScopeExistingStore || findings[1].Scope != ScopeWithinBatch {
		t.Errorf("scopes = %q, %q, want existing-store then within-batch",
			findings[0].Scope, findings[1].Scope)
	}
}

func TestResolveDuplicates_ExcludeSet(t *testing.T) {
	// Edit-in-place: re-importing a record excluded by id does not count
	// as an existing-store duplicate.
	store := newFakeStore()
	existingID := uuid.New()
	store.records[existingID] = CatalogRecord{ID: existingID, Serial: "A1"}
	store.bySer["A1"] = existingID

	recs := []StagedRecord{staged(1, "A1")}
	exclude := map[uuid.UUID]bool{existingID: true}

	accepted, findings, err := ResolveDuplicates(context.Background(), store, recs, exclude)
	if err != nil {
		t.Fatalf("ResolveDuplicates() error = %v", err)
	}
	if len(accepted) != 1 || len(findings) != 0 {
		t.Errorf("accepted=%d findings=%d, want 1/0 with exclusion", len(accepted), len(findings))
	}
}
