package ledger

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"labalog.org/internal/dates"
	"labalog.org/internal/money"
	"labalog.org/internal/table"
)

// Service runs the ledger operations against a backing table. It deliberately
// keeps no row cache: the table is re-read on every command so that parallel
// chat sessions always see each other's writes. The undo store is injected so
// tests can run with a fresh one.
type Service struct {
	tbl  table.Table
	undo *UndoStore
	loc  *time.Location
	now  func() time.Time
}

// Option configures Service.
type Option func(*Service)

// WithClock overrides the time source; used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func New(tbl table.Table, undo *UndoStore, loc *time.Location, opts ...Option) *Service {
	s := &Service{tbl: tbl, undo: undo, loc: loc, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Today returns the current calendar day in the service's location.
func (s *Service) Today() dates.Date {
	return dates.FromTime(s.now().In(s.loc))
}

// Add validates and appends a new record, dated today, numbered after the
// last row. The actor's undo slot is pointed at the new record.
func (s *Service) Add(ctx context.Context, actor int64, app, plan, rawProfit string) (Record, error) {
	app = strings.TrimSpace(app)
	plan = strings.TrimSpace(plan)
	if app == "" {
		return Record{}, &ValidationError{Field: string(FieldApp), Reason: "must not be empty"}
	}
	if plan == "" {
		return Record{}, &ValidationError{Field: string(FieldPlan), Reason: "must not be empty"}
	}
	profit, err := money.ParsePositive(rawProfit)
	if err != nil {
		return Record{}, &ValidationError{Field: string(FieldProfit), Reason: "must be a positive amount", Err: err}
	}

	rows, err := s.tbl.Rows(ctx)
	if err != nil {
		return Record{}, err
	}
	rec := Record{
		No:       nextNo(rows),
		Date:     s.Today(),
		App:      app,
		PlanType: plan,
		Profit:   profit,
	}
	if err := s.tbl.Append(ctx, namedCells(rec)); err != nil {
		return Record{}, err
	}
	s.undo.Remember(actor, Slot{Sheet: s.tbl.Name(), No: rec.No})
	return rec, nil
}

// Edit mutates a single field of the numbered record. Sequence number and
// date are immutable. Returns old and new values formatted for display.
func (s *Service) Edit(ctx context.Context, no int, field Field, raw string) (EditResult, error) {
	rows, err := s.tbl.Rows(ctx)
	if err != nil {
		return EditResult{}, err
	}
	row, ok := findRow(rows, no)
	if !ok {
		return EditResult{}, fmt.Errorf("entry #%d: %w", no, ErrNotFound)
	}

	var column, value, oldDisplay, newDisplay string
	switch field {
	case FieldProfit:
		profit, err := money.ParsePositive(raw)
		if err != nil {
			return EditResult{}, &ValidationError{Field: string(FieldProfit), Reason: "must be a positive amount", Err: err}
		}
		column = ColProfit
		value = strconv.FormatInt(profit, 10)
		old, _ := money.Parse(resolveField(row, ColProfit, posProfit))
		oldDisplay = money.Format(old)
		newDisplay = money.Format(profit)
	case FieldApp, FieldPlan:
		value = strings.TrimSpace(raw)
		if value == "" {
			return EditResult{}, &ValidationError{Field: string(field), Reason: "must not be empty"}
		}
		if field == FieldApp {
			column = ColApp
			oldDisplay = resolveField(row, ColApp, posApp)
		} else {
			column = ColPlan
			oldDisplay = resolveField(row, ColPlan, posPlan)
		}
		newDisplay = value
	default:
		return EditResult{}, &ValidationError{Field: "field", Reason: "must be aplikasi, jenis or laba"}
	}

	if err := s.tbl.Update(ctx, row.Index, column, value); err != nil {
		return EditResult{}, err
	}
	return EditResult{Field: field, Old: oldDisplay, New: newDisplay}, nil
}

// Delete removes the numbered record and renumbers every remaining row back
// to the dense range 1..N in store order. The renumber pass is authoritative:
// it runs every time, one update per remaining row.
func (s *Service) Delete(ctx context.Context, no int) (DeleteResult, error) {
	rows, err := s.tbl.Rows(ctx)
	if err != nil {
		return DeleteResult{}, err
	}
	row, ok := findRow(rows, no)
	if !ok {
		return DeleteResult{}, fmt.Errorf("entry #%d: %w", no, ErrNotFound)
	}
	removed := recordFromRow(row)
	if err := s.tbl.Delete(ctx, row.Index); err != nil {
		return DeleteResult{}, err
	}

	remaining, err := s.tbl.Rows(ctx)
	if err != nil {
		return DeleteResult{}, err
	}
	for i, r := range remaining {
		if err := s.tbl.Update(ctx, r.Index, ColNo, strconv.Itoa(i+1)); err != nil {
			return DeleteResult{}, fmt.Errorf("renumber row %d: %w", r.Index, err)
		}
	}
	return DeleteResult{Removed: removed, Remaining: len(remaining)}, nil
}

// Undo deletes the actor's most recent add, if it is still there. It guards
// against stale slots: when the remembered number no longer matches a live
// row (an interleaved delete renumbered the set), nothing is touched. Undo
// does not renumber — it removes the latest addition as a correction, which
// is intentionally different from Delete.
func (s *Service) Undo(ctx context.Context, actor int64) (Record, error) {
	slot, ok := s.undo.Peek(actor)
	if !ok {
		return Record{}, ErrNothingToUndo
	}
	if slot.Sheet != s.tbl.Name() {
		return Record{}, ErrUndoTargetChanged
	}
	rows, err := s.tbl.Rows(ctx)
	if err != nil {
		return Record{}, err
	}
	row, ok := findRow(rows, slot.No)
	if !ok {
		return Record{}, ErrUndoTargetChanged
	}
	removed := recordFromRow(row)
	if err := s.tbl.Delete(ctx, row.Index); err != nil {
		return Record{}, err
	}
	s.undo.Clear(actor)
	return removed, nil
}

// ListAll returns every record in store order with the profit sum.
func (s *Service) ListAll(ctx context.Context) (Listing, error) {
	recs, err := s.records(ctx)
	if err != nil {
		return Listing{}, err
	}
	return newListing(recs), nil
}

// ListOn returns the records dated exactly d.
func (s *Service) ListOn(ctx context.Context, d dates.Date) (Listing, error) {
	recs, err := s.records(ctx)
	if err != nil {
		return Listing{}, err
	}
	var matched []Record
	for _, r := range recs {
		if r.Date == d {
			matched = append(matched, r)
		}
	}
	return newListing(matched), nil
}

// ListWindow returns the records inside the inclusive range, with per-day
// totals and the average over days that have at least one entry.
func (s *Service) ListWindow(ctx context.Context, w dates.Range) (WindowListing, error) {
	recs, err := s.records(ctx)
	if err != nil {
		return WindowListing{}, err
	}
	out := WindowListing{Window: w}
	dayAt := make(map[dates.Date]int)
	for _, r := range recs {
		if !w.Contains(r.Date) {
			continue
		}
		out.Records = append(out.Records, r)
		out.Total += r.Profit
		i, ok := dayAt[r.Date]
		if !ok {
			i = len(out.Days)
			dayAt[r.Date] = i
			out.Days = append(out.Days, DayStat{Date: r.Date})
		}
		out.Days[i].Count++
		out.Days[i].Total += r.Profit
	}
	if len(out.Days) > 0 {
		out.AvgPerActiveDay = out.Total / int64(len(out.Days))
	}
	return out, nil
}

// SummaryByApp groups all records by application, sorted descending by total.
// The sort is stable, so equal totals keep their first-seen order.
func (s *Service) SummaryByApp(ctx context.Context) (Summary, error) {
	recs, err := s.records(ctx)
	if err != nil {
		return Summary{}, err
	}
	groups := groupBy(recs, func(r Record) string { return r.App })
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].Total > groups[j].Total })

	sum := Summary{Groups: groups}
	for _, g := range groups {
		sum.GrandTotal += g.Total
	}
	return sum, nil
}

// TopApps returns the first limit groups of SummaryByApp's ranking.
func (s *Service) TopApps(ctx context.Context, limit int) ([]Group, error) {
	sum, err := s.SummaryByApp(ctx)
	if err != nil {
		return nil, err
	}
	if len(sum.Groups) > limit {
		return sum.Groups[:limit], nil
	}
	return sum.Groups, nil
}

// Stats aggregates the whole record set in one pass. All "highest" picks
// resolve ties in favor of the first record encountered in store order.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	recs, err := s.records(ctx)
	if err != nil {
		return Stats{}, err
	}
	var st Stats
	appAt := make(map[string]int)
	planAt := make(map[string]int)
	dayAt := make(map[dates.Date]int)
	var apps, plans []Group
	var days []DayStat

	for i, r := range recs {
		st.Count++
		st.Total += r.Profit
		if i == 0 || r.Profit > st.Max.Profit {
			st.Max = r
		}
		if i == 0 || r.Profit < st.Min.Profit {
			st.Min = r
		}
		apps = bump(apps, appAt, r.App, r.Profit)
		plans = bump(plans, planAt, r.PlanType, r.Profit)
		j, ok := dayAt[r.Date]
		if !ok {
			j = len(days)
			dayAt[r.Date] = j
			days = append(days, DayStat{Date: r.Date})
		}
		days[j].Count++
		days[j].Total += r.Profit
	}

	st.ActiveDays = len(days)
	if st.Count > 0 {
		st.AvgPerTx = st.Total / int64(st.Count)
	}
	if st.ActiveDays > 0 {
		st.AvgPerActiveDay = st.Total / int64(st.ActiveDays)
	}
	for _, g := range apps {
		if g.Count > st.TopAppByCount.Count {
			st.TopAppByCount = g
		}
	}
	for _, g := range plans {
		if g.Count > st.TopPlanByCount.Count {
			st.TopPlanByCount = g
		}
	}
	for i, d := range days {
		if i == 0 || d.Total > st.BestDay.Total {
			st.BestDay = d
		}
	}
	return st, nil
}

// records loads and converts the full row set.
func (s *Service) records(ctx context.Context) ([]Record, error) {
	rows, err := s.tbl.Rows(ctx)
	if err != nil {
		return nil, err
	}
	recs := make([]Record, len(rows))
	for i, row := range rows {
		recs[i] = recordFromRow(row)
	}
	return recs, nil
}

func findRow(rows []table.Row, no int) (table.Row, bool) {
	for _, row := range rows {
		if rowNo(row) == no {
			return row, true
		}
	}
	return table.Row{}, false
}

func newListing(recs []Record) Listing {
	l := Listing{Records: recs}
	for _, r := range recs {
		l.Total += r.Profit
	}
	return l
}

func groupBy(recs []Record, key func(Record) string) []Group {
	at := make(map[string]int)
	var groups []Group
	for _, r := range recs {
		groups = bump(groups, at, key(r), r.Profit)
	}
	return groups
}

// bump adds profit to the named group, creating it at the end on first sight
// so grouping order stays insertion order.
func bump(groups []Group, at map[string]int, name string, profit int64) []Group {
	i, ok := at[name]
	if !ok {
		i = len(groups)
		at[name] = i
		groups = append(groups, Group{Name: name})
	}
	groups[i].Count++
	groups[i].Total += profit
	return groups
}
