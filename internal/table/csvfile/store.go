// Package csvfile implements table.Table on a local CSV file, the closest
// stand-in for the spreadsheet the bot originally wrote to. The header row is
// optional: files written by this package carry one, but a hand-made file
// without a header is still readable, its rows resolving positionally only.
package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"labalog.org/internal/table"
)

type Store struct {
	mu      sync.Mutex
	path    string
	name    string
	columns []string
}

var _ table.Table = (*Store)(nil)

// Open wires a store to path. The file does not need to exist yet; it is
// created on the first append.
func Open(path string, columns []string) *Store {
	base := filepath.Base(path)
	return &Store{
		path:    path,
		name:    strings.TrimSuffix(base, filepath.Ext(base)),
		columns: append([]string(nil), columns...),
	}
}

func (s *Store) Name() string { return s.name }

// load reads every record from disk and reports whether the first record is a
// header row (first cell matches the first configured column).
func (s *Store) load() (records [][]string, hasHeader bool, err error) {
	f, err := os.Open(s.path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("open %s: %w", s.path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // foreign files may have ragged rows
	records, err = r.ReadAll()
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", s.path, err)
	}
	hasHeader = len(records) > 0 && len(records[0]) > 0 && records[0][0] == s.columns[0]
	return records, hasHeader, nil
}

// save rewrites the whole file through a temp file and a rename, so a crash
// mid-write never leaves a half-written table behind.
func (s *Store) save(records [][]string) error {
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".labalog-*")
	if err != nil {
		return fmt.Errorf("save %s: %w", s.path, err)
	}
	w := csv.NewWriter(tmp)
	if err := w.WriteAll(records); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("save %s: %w", s.path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("save %s: %w", s.path, err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("save %s: %w", s.path, err)
	}
	return nil
}

func (s *Store) Rows(ctx context.Context) ([]table.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, hasHeader, err := s.load()
	if err != nil {
		return nil, err
	}
	var header []string
	data := records
	if hasHeader {
		header = records[0]
		data = records[1:]
	}

	out := make([]table.Row, len(data))
	for i, cells := range data {
		var named map[string]string
		if header != nil {
			named = make(map[string]string, len(header))
			for j, col := range header {
				if j < len(cells) {
					named[col] = cells[j]
				}
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

	records, hasHeader, err := s.load()
	if err != nil {
		return err
	}
	if len(records) == 0 && !hasHeader {
		records = [][]string{append([]string(nil), s.columns...)}
	}
	cells := make([]string, len(s.columns))
	for j, col := range s.columns {
		cells[j] = named[col]
	}
	return s.save(append(records, cells))
}

func (s *Store) Update(ctx context.Context, index int, column, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, hasHeader, err := s.load()
	if err != nil {
		return err
	}
	pos := s.position(column)
	if pos < 0 {
		return fmt.Errorf("unknown column %q", column)
	}
	i := index
	if hasHeader {
		i++
	}
	if i < 0 || i >= len(records) || (hasHeader && i == 0) {
		return fmt.Errorf("row %d out of range", index)
	}
	for len(records[i]) <= pos {
		records[i] = append(records[i], "")
	}
	records[i][pos] = value
	return s.save(records)
}

func (s *Store) Delete(ctx context.Context, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, hasHeader, err := s.load()
	if err != nil {
		return err
	}
	i := index
	if hasHeader {
		i++
	}
	if i < 0 || i >= len(records) || (hasHeader && i == 0) {
		return fmt.Errorf("row %d out of range", index)
	}
	return s.save(append(records[:i], records[i+1:]...))
}

func (s *Store) position(column string) int {
	for j, col := range s.columns {
		if col == column {
			return j
		}
	}
	return -1
}
