// Package store implements the catalog persistence contract against
// PostgreSQL using pgx. Each engine write is its own unit of work; no
// lock or transaction spans multiple records, so concurrent batches from
// different administrators rely on the serial unique constraint for
// cross-batch protection.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/lapidary/console/internal/catalog"
)

// DBTX is the interface for database operations.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Store provides catalog record persistence. It implements
// catalog.Store.
type Store struct {
	db DBTX
}

// New creates a Store over a pool or transaction.
func New(db DBTX) *Store {
	return &Store{db: db}
}

const recordColumns = `id, serial, stone_type, color, cut, clarity,
	carat_hundredths, length_hundredths, width_hundredths, depth_hundredths,
	price_cents, currency, premium_price_cents, premium_currency,
	in_stock, notes, created_at, updated_at`

// ExistingSerials returns the ids of records whose serial is in serials.
// One query regardless of batch size; result ordering is irrelevant
// because the map is keyed by serial.
func (s *Store) ExistingSerials(ctx context.Context, serials []string) (map[string]uuid.UUID, error) {
	rows, err := s.db.Query(ctx,
		`SELECT serial, id FROM catalog_records WHERE serial = ANY($1)`, serials)
	if err != nil {
		return nil, fmt.Errorf("query serials: %w", err)
	}
	defer rows.Close()

	existing := make(map[string]uuid.UUID)
	for rows.Next() {
		var serial string
		var id uuid.UUID
		if err := rows.Scan(&serial, &id); err != nil {
			return nil, fmt.Errorf("scan serial: %w", err)
		}
		existing[serial] = id
	}
	return existing, rows.Err()
}

// Create inserts one record and returns its id. A unique-constraint
// violation on the serial comes back as a readable message because it is
// the expected cross-batch race, not an internal fault.
func (s *Store) Create(ctx context.Context, rec catalog.CatalogRecord) (uuid.UUID, error) {
	_, err := s.db.Exec(ctx, `
		INSERT INTO catalog_records (
			id, serial, stone_type, color, cut, clarity,
			carat_hundredths, length_hundredths, width_hundredths, depth_hundredths,
			price_cents, currency, premium_price_cents, premium_currency,
			in_stock, notes, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,now(),now())`,
		rec.ID, rec.Serial, rec.StoneType, rec.Color,
		textOrNull(rec.Cut), textOrNull(rec.Clarity),
		decimalOrNull(rec.Carat), decimalOrNull(rec.LengthMM),
		decimalOrNull(rec.WidthMM), decimalOrNull(rec.DepthMM),
		rec.PriceCents, rec.Currency,
		amountOrNull(rec.PremiumPrice), textOrNull(rec.PremiumCurrency),
		rec.InStock, textOrNull(rec.Notes),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return uuid.Nil, fmt.Errorf("serial %q already exists", rec.Serial)
		}
		return uuid.Nil, err
	}
	return rec.ID, nil
}

// Update writes only the fields marked in set. The SET list is built
// from pointer presence; an absent field is never mentioned in the
// statement. Updating a missing id returns catalog.ErrNotFound.
func (s *Store) Update(ctx context.Context, id uuid.UUID, set catalog.FieldUpdateSet) error {
	var assigns []string
	var args []interface{}

	add := func(column string, value interface{}) {
		args = append(args, value)
		assigns = append(assigns, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if set.StoneType != nil {
		add("stone_type", *set.StoneType)
	}
	if set.Color != nil {
		add("color", *set.Color)
	}
	if set.Cut != nil {
		add("cut", textOrNull(*set.Cut))
	}
	if set.Clarity != nil {
		add("clarity", textOrNull(*set.Clarity))
	}
	if set.Carat != nil {
		add("carat_hundredths", decimalOrNull(*set.Carat))
	}
	if set.Price != nil {
		// price_cents is NOT NULL; an invalid Amount must never
		// degrade to writing zero.
		if !set.Price.Valid {
			return fmt.Errorf("price cannot be cleared")
		}
		add("price_cents", set.Price.Cents)
	}
	if set.Currency != nil {
		add("currency", *set.Currency)
	}
	if set.PremiumPrice != nil {
		add("premium_price_cents", amountOrNull(*set.PremiumPrice))
	}
	if set.PremiumCurrency != nil {
		add("premium_currency", textOrNull(*set.PremiumCurrency))
	}
	if set.InStock != nil {
		add("in_stock", *set.InStock)
	}
	if set.Notes != nil {
		add("notes", textOrNull(*set.Notes))
	}

	if len(assigns) == 0 {
		return nil
	}

	args = append(args, id)
	query := fmt.Sprintf(
		"UPDATE catalog_records SET %s, updated_at = now() WHERE id = $%d",
		strings.Join(assigns, ", "), len(args))

	tag, err := s.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

// GetByIDs fetches records for an explicit id list, returned in the
// caller's selection order. Missing ids are silently absent.
func (s *Store) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.CatalogRecord, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+recordColumns+` FROM catalog_records WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	byID := make(map[uuid.UUID]catalog.CatalogRecord)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		byID[rec.ID] = rec
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	ordered := make([]catalog.CatalogRecord, 0, len(byID))
	for _, id := range ids {
		if rec, ok := byID[id]; ok {
			ordered = append(ordered, rec)
		}
	}
	return ordered, nil
}

// List returns the whole catalog ordered by serial, the caller-facing
// sort order for full exports.
func (s *Store) List(ctx context.Context) ([]catalog.CatalogRecord, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+recordColumns+` FROM catalog_records ORDER BY serial`)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var records []catalog.CatalogRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func scanRecord(rows pgx.Rows) (catalog.CatalogRecord, error) {
	var rec catalog.CatalogRecord
	var cut, clarity, premiumCurrency, notes *string
	var carat, length, width, depth, premiumCents *int64

	err := rows.Scan(
		&rec.ID, &rec.Serial, &rec.StoneType, &rec.Color, &cut, &clarity,
		&carat, &length, &width, &depth,
		&rec.PriceCents, &rec.Currency, &premiumCents, &premiumCurrency,
		&rec.InStock, &notes, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return catalog.CatalogRecord{}, fmt.Errorf("scan record: %w", err)
	}

	rec.Cut = deref(cut)
	rec.Clarity = deref(clarity)
	rec.PremiumCurrency = deref(premiumCurrency)
	rec.Notes = deref(notes)
	rec.Carat = toDecimal(carat)
	rec.LengthMM = toDecimal(length)
	rec.WidthMM = toDecimal(width)
	rec.DepthMM = toDecimal(depth)
	if premiumCents != nil {
		rec.PremiumPrice = catalog.Amount{Cents: *premiumCents, Valid: true}
	}
	return rec, nil
}

// Null mapping helpers. Optional text and numeric families persist as
// NULL rather than empty string or zero, matching the export rule that
// absent renders as empty, never "0".

func textOrNull(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func decimalOrNull(d catalog.Decimal) interface{} {
	if !d.Valid {
		return nil
	}
	return d.Hundredths
}

func amountOrNull(a catalog.Amount) interface{} {
	if !a.Valid {
		return nil
	}
	return a.Cents
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func toDecimal(v *int64) catalog.Decimal {
	if v == nil {
		return catalog.Decimal{}
	}
	return catalog.Decimal{Hundredths: *v, Valid: true}
}
