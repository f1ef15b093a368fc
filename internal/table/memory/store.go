// Package memory implements table.Table in process memory. Used by tests and
// the smoke command.
package memory

import (
	"context"
	"fmt"
	"sync"

	"labalog.org/internal/table"
)

type Store struct {
	mu      sync.Mutex
	name    string
	columns []string
	rows    [][]string
}

var _ table.Table = (*Store)(nil)

// NewStore creates an empty table with the given column order.
func NewStore(name string, columns []string) *Store {
	return &Store{name: name, columns: append([]string(nil), columns...)}
}

func (s *Store) Name() string { return s.name }

func (s *Store) Rows(ctx context.Context) ([]table.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]table.Row, len(s.rows))
	for i, cells := range s.rows {
		named := make(map[string]string, len(s.columns))
		for j, col := range s.columns {
			if j < len(cells) {
				named[col] = cells[j]
			}
		}
		out[i] = table.Row{
			Index: i,
			Named: named,
			Cells: append([]string(nil), cells...),
		}
	}
	return out, nil
}

func (s *Store) Append(ctx context.Context, named map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cells := make([]string, len(s.columns))
	for j, col := range s.columns {
		cells[j] = named[col]
	}
	s.rows = append(s.rows, cells)
	return nil
}

func (s *Store) Update(ctx context.Context, index int, column, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.rows) {
		return fmt.Errorf("row %d out of range", index)
	}
	pos := -1
	for j, col := range s.columns {
		if col == column {
			pos = j
			break
		}
	}
	if pos < 0 {
		return fmt.Errorf("unknown column %q", column)
	}
	s.rows[index][pos] = value
	return nil
}

func (s *Store) Delete(ctx context.Context, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.rows) {
		return fmt.Errorf("row %d out of range", index)
	}
	s.rows = append(s.rows[:index], s.rows[index+1:]...)
	return nil
}
