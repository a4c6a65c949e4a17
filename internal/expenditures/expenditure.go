// Package expenditures implements the parliamentary-quota expenditure domain.
// Expenditures are collected per legislator from the chamber API and carry a
// composite natural key because the source assigns no stable record ID.
package expenditures

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Expenditure is one reimbursed expense charged to a legislator's quota.
type Expenditure struct {
	ID             uuid.UUID  `json:"id"`
	LegislatorID   uuid.UUID  `json:"legislator_id"`
	Year           int        `json:"year"`
	Month          int        `json:"month"`
	DocumentNumber string     `json:"document_number"`
	Category       string     `json:"category"`
	Supplier       string     `json:"supplier"`
	SupplierTaxID  string     `json:"supplier_tax_id"`
	GrossValue     float64    `json:"gross_value"`
	NetValue       float64    `json:"net_value"`
	DocumentDate   *time.Time `json:"document_date"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// NaturalKey returns the composite dedup key: legislator, period, document
// number, and net value. The source has no per-record identifier, so the
// combination stands in for one.
func (e Expenditure) NaturalKey() string {
	return fmt.Sprintf("%s|%d|%02d|%s|%.2f",
		e.LegislatorID, e.Year, e.Month, e.DocumentNumber, e.NetValue)
}
