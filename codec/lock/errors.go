package lock

import "github.com/juju/errors"

// ErrBadFormatLock is returned when the wire bytes cannot even be
// decoded past the required prefix (lock_type, primary, ts, ttl).
var ErrBadFormatLock = errors.New("lock: bad format")

// KeyIsLocked is the user-visible conflict response for a lock that a
// reader may not ignore (spec.md §4.3, §7). It carries the full lock
// info so the RPC response can be populated verbatim.
type KeyIsLocked struct {
	Info LockInfo
}

func (e *KeyIsLocked) Error() string {
	return "lock: key is locked: " + string(e.Info.Key)
}

func newKeyIsLocked(info LockInfo) error {
	return errors.Trace(&KeyIsLocked{Info: info})
}

// WriteConflict is the user-visible conflict response raised under
// RcCheckTs (spec.md §4.3, §7).
type WriteConflict struct {
	StartTs         uint64
	ConflictStartTs uint64
	ConflictCommitTs uint64
	Key             []byte
	Primary         []byte
	Reason          string
}

func (e *WriteConflict) Error() string {
	return "lock: write conflict: " + e.Reason
}

func newWriteConflict(startTs, conflictStartTs, conflictCommitTs uint64, key, primary []byte, reason string) error {
	return errors.Trace(&WriteConflict{
		StartTs:          startTs,
		ConflictStartTs:  conflictStartTs,
		ConflictCommitTs: conflictCommitTs,
		Key:              key,
		Primary:          primary,
		Reason:           reason,
	})
}
