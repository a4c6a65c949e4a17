package expenditures

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tribuna-project/tribuna/pkg/repository"
)

const selectColumns = "id, legislator_id, year, month, document_number, category, supplier, supplier_tax_id, gross_value, net_value, document_date, created_at, updated_at"

// Repository persists expenditures with idempotent upsert semantics.
type Repository struct {
	db     *sql.DB
	locks  *repository.KeyLock
	logger *slog.Logger
}

// NewRepository creates an expenditure repository.
func NewRepository(db *sql.DB, logger *slog.Logger) *Repository {
	return &Repository{
		db:     db,
		locks:  repository.NewKeyLock(),
		logger: logger.With("system", "expenditures"),
	}
}

// Upsert writes the expenditure by its composite natural key: insert if
// absent, update if any descriptive field changed, no-op otherwise.
func (r *Repository) Upsert(ctx context.Context, e Expenditure) (repository.Outcome, error) {
	key := e.NaturalKey()
	r.locks.Lock(key)
	defer r.locks.Unlock(key)

	existing, err := r.find(ctx, e)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return 0, repository.Translate(err)
	}

	if existing == nil {
		q := `
			INSERT INTO expenditures(id, legislator_id, year, month, document_number, category, supplier, supplier_tax_id, gross_value, net_value, document_date)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
		args := []any{
			uuid.New(), e.LegislatorID, e.Year, e.Month, e.DocumentNumber,
			e.Category, e.Supplier, e.SupplierTaxID, e.GrossValue, e.NetValue, e.DocumentDate,
		}
		if _, err := r.db.ExecContext(ctx, q, args...); err != nil {
			return 0, repository.Translate(err)
		}
		return repository.Inserted, nil
	}

	if unchanged(existing, &e) {
		return repository.Unchanged, nil
	}

	q := `
		UPDATE expenditures
		SET category = $2, supplier = $3, supplier_tax_id = $4, gross_value = $5, document_date = $6, updated_at = now()
		WHERE id = $1`
	args := []any{existing.ID, e.Category, e.Supplier, e.SupplierTaxID, e.GrossValue, e.DocumentDate}
	if err := repository.ExecExpectOne(ctx, r.db, q, args...); err != nil {
		return 0, repository.Translate(err)
	}
	return repository.Updated, nil
}

func unchanged(existing, incoming *Expenditure) bool {
	return existing.Category == incoming.Category &&
		existing.Supplier == incoming.Supplier &&
		existing.SupplierTaxID == incoming.SupplierTaxID &&
		existing.GrossValue == incoming.GrossValue &&
		equalDate(existing.DocumentDate, incoming.DocumentDate)
}

func equalDate(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func (r *Repository) find(ctx context.Context, e Expenditure) (*Expenditure, error) {
	q := "SELECT " + selectColumns + ` FROM expenditures
		WHERE legislator_id = $1 AND year = $2 AND month = $3 AND document_number = $4 AND net_value = $5`
	args := []any{e.LegislatorID, e.Year, e.Month, e.DocumentNumber, e.NetValue}

	found, err := repository.QueryOne(ctx, r.db, q, args, scanExpenditure)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, repository.Translate(err)
	}
	return &found, nil
}
