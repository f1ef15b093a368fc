// Package ledger is the record engine behind the bot: sequential numbering,
// add/edit/delete/undo, date-windowed queries and aggregation. It owns no
// storage of its own; every operation re-reads the backing table, which stays
// the single source of truth between chat sessions.
package ledger

import (
	"errors"
	"fmt"

	"labalog.org/internal/dates"
)

// Record is one ledger entry. No is the user-visible sequence number, dense
// 1..N in insertion order; it is reassigned after every Delete.
type Record struct {
	No       int
	Date     dates.Date
	App      string
	PlanType string
	Profit   int64 // whole rupiah
}

var (
	// ErrNotFound is returned when no entry carries the requested number.
	ErrNotFound = errors.New("entry not found")

	// ErrNothingToUndo is returned when the actor has no recorded add.
	ErrNothingToUndo = errors.New("nothing to undo")

	// ErrUndoTargetChanged is returned when the remembered entry no longer
	// exists, typically because a delete renumbered the set in between.
	ErrUndoTargetChanged = errors.New("undo target changed")
)

// ValidationError names the first constraint a user input violated.
type ValidationError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid %s: %s: %v", e.Field, e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Field is an editable record field, named as users type it.
type Field string

const (
	FieldApp    Field = "aplikasi"
	FieldPlan   Field = "jenis"
	FieldProfit Field = "laba"
)

// ParseField validates a user-typed field name. Date and sequence number are
// deliberately absent: they are not editable.
func ParseField(s string) (Field, error) {
	switch Field(s) {
	case FieldApp, FieldPlan, FieldProfit:
		return Field(s), nil
	}
	return "", &ValidationError{Field: "field", Reason: "must be aplikasi, jenis or laba"}
}

// Listing is a set of records with their profit sum.
type Listing struct {
	Records []Record
	Total   int64
}

// DayStat aggregates one calendar day.
type DayStat struct {
	Date  dates.Date
	Count int
	Total int64
}

// WindowListing is a Listing over a date range, with per-day totals and the
// average over days that actually have entries.
type WindowListing struct {
	Listing
	Window          dates.Range
	Days            []DayStat
	AvgPerActiveDay int64
}

// Group aggregates records sharing one key (application or plan type).
type Group struct {
	Name  string
	Count int
	Total int64
}

// Summary is the per-application breakdown, sorted descending by total.
type Summary struct {
	Groups     []Group
	GrandTotal int64
}

// EditResult reports an edit for display: the field plus old and new values,
// already formatted.
type EditResult struct {
	Field Field
	Old   string
	New   string
}

// DeleteResult reports a delete: the removed record and how many entries
// remain after renumbering.
type DeleteResult struct {
	Removed   Record
	Remaining int
}

// Stats is the full single-pass aggregation over the record set.
type Stats struct {
	Count           int
	Total           int64
	ActiveDays      int
	AvgPerTx        int64
	AvgPerActiveDay int64
	Max             Record
	Min             Record
	TopAppByCount   Group // most transactions, not highest total
	TopPlanByCount  Group
	BestDay         DayStat
}
