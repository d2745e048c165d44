// Package catalog implements the batch reconciliation engine for the
// gemstone catalog: CSV ingest, field validation, duplicate resolution,
// per-record persistence with failure isolation, bulk field updates, and
// the inverse CSV export.
//
// The engine is deliberately split along suspension points: parsing,
// validation, and serialization are pure in-memory computation, while the
// duplicate existence check and every create/update call go through the
// Store contract and are the only operations that may block.
//
// A batch is bounded and held fully in memory. Each record is applied as
// its own unit of work: one record's store failure is recorded in the
// BatchOutcome and never aborts the rest of the batch. The only condition
// that fails a batch before producing an outcome is a header that is
// missing required columns, or a duplicate-index lookup that cannot
// execute at all.
package catalog
