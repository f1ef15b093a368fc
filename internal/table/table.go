// Package table abstracts the sheet-like store the ledger writes to. A table
// is an ordered list of rows; rows expose their cells both by column name and
// by position, because the backing sheet's header may be missing or renamed.
package table

import (
	"context"
	"errors"
)

// ErrNotFound reports that the backing table itself is missing (dropped
// relation, misconfigured name). This is a configuration-level failure and is
// reported to the user verbatim.
var ErrNotFound = errors.New("table not found")

// Row is one table row as the backend exposes it. Named holds the cells keyed
// by column name and may be empty or partial; Cells always holds the raw
// positional values.
type Row struct {
	Index int // zero-based position in the table
	Named map[string]string
	Cells []string
}

// Cell returns the positional cell at pos, or "" when the row is short.
func (r Row) Cell(pos int) string {
	if pos < 0 || pos >= len(r.Cells) {
		return ""
	}
	return r.Cells[pos]
}

// Table is the minimal surface the ledger needs from a sheet-like store:
// append a row, enumerate rows in insertion order, mutate one cell, delete a
// row. Mutations address rows by their current position, not by content.
type Table interface {
	// Name identifies the record set (sheet name, file name, SQL table).
	Name() string

	// Rows returns every row in insertion order.
	Rows(ctx context.Context) ([]Row, error)

	// Append adds a row from named cell values; unnamed columns stay empty.
	Append(ctx context.Context, named map[string]string) error

	// Update sets one cell of the row at index.
	Update(ctx context.Context, index int, column, value string) error

	// Delete removes the row at index; later rows shift up one position.
	Delete(ctx context.Context, index int) error
}
