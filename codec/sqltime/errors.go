package sqltime

import "github.com/pingcap/errors"

// Codec-fatal errors (spec.md §7): malformed input the caller cannot
// recover from within the call.
var (
	ErrOverflow = errors.New("sqltime: value out of range")
)

// IncorrectDatetimeValue is a semantic failure (spec.md §7): the input
// text or number does not describe a parseable time value. It is
// SQL-mode dependent — evalctx.Context.HandleTruncate decides whether
// it surfaces as an error or a warning plus a zero result.
type IncorrectDatetimeValue struct {
	Text string
}

func (e *IncorrectDatetimeValue) Error() string {
	return "sqltime: incorrect datetime value: " + e.Text
}

func newIncorrectValue(text string) error {
	return errors.Trace(&IncorrectDatetimeValue{Text: text})
}

// Truncated reports an invalid date component (zero month/day, a day
// past the end of its month, an out-of-range fsp) that the SQL mode
// may downgrade to a warning.
type Truncated struct {
	Reason string
}

func (e *Truncated) Error() string {
	return "sqltime: truncated: " + e.Reason
}

func newTruncated(reason string) error {
	return errors.Trace(&Truncated{Reason: reason})
}
