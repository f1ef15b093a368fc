// Package ids generates the correlation identifiers attached to every
// handled chat command, so one command's log lines can be grepped together.
package ids

import "github.com/oklog/ulid/v2"

// New returns a lexicographically sortable identifier.
func New() string {
	return ulid.Make().String()
}
