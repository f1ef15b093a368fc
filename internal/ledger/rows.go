package ledger

import (
	"strconv"
	"strings"

	"labalog.org/internal/dates"
	"labalog.org/internal/money"
	"labalog.org/internal/table"
)

// The sheet columns, with their fixed positions. The positions matter: a
// backing table may lack its header row, or a row may be a raw positional
// record, so every read goes named-first with a positional fallback.
const (
	ColNo     = "No"
	ColDate   = "Tanggal"
	ColApp    = "Aplikasi"
	ColPlan   = "Jenis"
	ColProfit = "Laba"
)

const (
	posNo = iota
	posDate
	posApp
	posPlan
	posProfit
)

// Columns is the canonical column order, for constructing table backends.
var Columns = []string{ColNo, ColDate, ColApp, ColPlan, ColProfit}

// resolveField reads a cell by column name, falling back to its fixed
// position when the named cell is absent or empty. The two-step lookup is
// deliberate and must stay explicit.
func resolveField(row table.Row, name string, pos int) string {
	if v, ok := row.Named[name]; ok && v != "" {
		return v
	}
	return row.Cell(pos)
}

// rowNo parses a row's sequence number; 0 means unparseable.
func rowNo(row table.Row) int {
	n, err := strconv.Atoi(strings.TrimSpace(resolveField(row, ColNo, posNo)))
	if err != nil || n <= 0 {
		return 0
	}
	return n
}

// nextNo picks the sequence number for a new record: 1 on an empty set,
// otherwise the last row's number + 1. A malformed trailing row (foreign or
// corrupted data) falls back to count+1 instead of failing the add.
func nextNo(rows []table.Row) int {
	if len(rows) == 0 {
		return 1
	}
	if last := rowNo(rows[len(rows)-1]); last > 0 {
		return last + 1
	}
	return len(rows) + 1
}

// recordFromRow converts a raw row, tolerating malformed cells: a bad date
// stays zero, a bad profit stays 0. The engine never crashes on foreign data.
func recordFromRow(row table.Row) Record {
	rec := Record{
		No:       rowNo(row),
		App:      resolveField(row, ColApp, posApp),
		PlanType: resolveField(row, ColPlan, posPlan),
	}
	if d, err := dates.Parse(resolveField(row, ColDate, posDate)); err == nil {
		rec.Date = d
	}
	if n, err := money.Parse(resolveField(row, ColProfit, posProfit)); err == nil {
		rec.Profit = n
	}
	return rec
}

// namedCells lays a record out as named cell values for appending.
func namedCells(rec Record) map[string]string {
	return map[string]string{
		ColNo:     strconv.Itoa(rec.No),
		ColDate:   rec.Date.String(),
		ColApp:    rec.App,
		ColPlan:   rec.PlanType,
		ColProfit: strconv.FormatInt(rec.Profit, 10),
	}
}
