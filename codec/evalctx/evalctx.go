// Package evalctx is the Go shape of the evaluation context described
// in spec.md §6.1: timezone, SQL mode flags, behavior flags, a warning
// sink and a test-mode "frozen now" hook. The json and sqltime
// packages consume it but never read the wall clock or a timezone
// database directly.
package evalctx

import (
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// SQLMode is the bit set of SQL-mode flags relevant to the time codec
// (spec.md §4.2).
type SQLMode uint32

const (
	ModeNone SQLMode = 0
	// ModeNoZeroDate escalates the zero date ("0000-00-00") from a
	// silently-accepted value to a warning (non-strict) or error
	// (strict).
	ModeNoZeroDate SQLMode = 1 << iota
	// ModeNoZeroInDate escalates a zero month or day component.
	ModeNoZeroInDate
	// ModeInvalidDates allows day/month combinations that don't
	// respect the calendar's last-day-of-month (e.g. 2019-02-30).
	ModeInvalidDates
	// ModeStrictAllTables / ModeStrictTransTables turn would-be
	// warnings into errors.
	ModeStrictAllTables
	ModeStrictTransTables
)

func (m SQLMode) Has(flag SQLMode) bool { return m&flag != 0 }

// HasStrictMode reports whether either strict flag is set.
func (m SQLMode) HasStrictMode() bool {
	return m.Has(ModeStrictAllTables) || m.Has(ModeStrictTransTables)
}

// Flag is the "behavior flags" family (spec.md §6.1), kept distinct
// from SQLMode because IGNORE_TRUNCATE is an evaluation-time override
// rather than a session-level SQL mode.
type Flag uint32

const (
	FlagNone Flag = 0
	// FlagIgnoreTruncate downgrades a would-be error into a warning
	// plus a zero/best-effort result.
	FlagIgnoreTruncate Flag = 1 << iota
	// FlagTestMode freezes "today" to FrozenNow, for deterministic
	// duration-to-datetime conversions in tests.
	FlagTestMode
)

func (f Flag) Has(flag Flag) bool { return f&flag != 0 }

// FrozenNow is the constant date production code never sees; it only
// applies when FlagTestMode is set. Matches the teacher convention of
// never calling time.Now() directly inside codec logic
// (util/time_util.go wraps time.Now() exactly once, at the edge).
var FrozenNow = time.Date(2017, 1, 1, 0, 0, 0, 0, time.UTC)

// WarningSink is an append-only collaborator: codecs record warnings,
// they never return them as a side channel (spec.md §5, §9).
type WarningSink interface {
	AppendWarning(err error)
	WarningCount() int
	Reset()
}

// warningSink is the default in-process sink. Every method takes its
// mutex, so concurrent appends, counts and resets are safe; the
// Context that holds it is a plain struct with no locking of its own.
type warningSink struct {
	mu       sync.Mutex
	warnings []error
}

func NewWarningSink() WarningSink {
	return &warningSink{}
}

func (s *warningSink) AppendWarning(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.warnings = append(s.warnings, err)
	logrus.Debugf("codec: truncation warning appended: %v", err)
}

func (s *warningSink) WarningCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.warnings)
}

func (s *warningSink) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.warnings = s.warnings[:0]
}

// Context bundles everything the json and sqltime codecs need from the
// surrounding SQL evaluation session.
type Context struct {
	Location *time.Location
	SQLMode  SQLMode
	Flags    Flag
	Warnings WarningSink
}

// New builds a Context with UTC timezone, no SQL mode flags and a
// fresh warning sink — the permissive default a unit test usually
// wants. Production callers are expected to set Location and SQLMode
// explicitly from the session.
func New() *Context {
	return &Context{
		Location: time.UTC,
		SQLMode:  ModeNone,
		Flags:    FlagNone,
		Warnings: NewWarningSink(),
	}
}

// Now returns FrozenNow under FlagTestMode, else the wall clock. This
// is the only place in the module allowed to call time.Now().
func (c *Context) Now() time.Time {
	if c.Flags.Has(FlagTestMode) {
		return FrozenNow
	}
	return time.Now()
}

// HandleTruncate applies the escalate/downgrade policy shared by the
// NO_ZERO_DATE / NO_ZERO_IN_DATE / Truncated error families
// (spec.md §4.2, §7): under IGNORE_TRUNCATE or non-strict mode it
// appends a warning and returns nil; otherwise it returns err
// unchanged.
func (c *Context) HandleTruncate(err error) error {
	if err == nil {
		return nil
	}
	if c.Flags.Has(FlagIgnoreTruncate) || !c.SQLMode.HasStrictMode() {
		c.Warnings.AppendWarning(err)
		return nil
	}
	return err
}

// AppendWarning is a convenience passthrough to Warnings.
func (c *Context) AppendWarning(err error) {
	if err == nil {
		return
	}
	c.Warnings.AppendWarning(err)
}

// String implements fmt.Stringer for debug logging.
func (c *Context) String() string {
	return fmt.Sprintf("Context{loc=%s, mode=%#x, flags=%#x, warnings=%d}",
		c.Location, uint32(c.SQLMode), uint32(c.Flags), c.Warnings.WarningCount())
}
