package collection

import "github.com/oklog/ulid/v2"

// NewID returns a ULID string. ulid.Make draws from a process-wide monotonic
// entropy source, so IDs made within the same millisecond still differ.
func NewID() string {
	return ulid.Make().String()
}
