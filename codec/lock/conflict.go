package lock

import (
	"bytes"
	"math"
)

// Isolation selects which conflict-check semantics check_ts_conflict
// applies (spec.md §4.3).
type Isolation int

const (
	IsolationSI Isolation = iota
	IsolationRcCheckTs
	IsolationOther
)

// MaxReadTs is the "read latest" sentinel (spec.md §4.3 step 5).
const MaxReadTs = math.MaxUint64

func isBypassed(bypassLocks map[uint64]struct{}, ts uint64) bool {
	if bypassLocks == nil {
		return false
	}
	_, ok := bypassLocks[ts]
	return ok
}

func (l *Lock) blocksReads() bool {
	return l.LockType != TypeLockOnly && l.LockType != TypePessimistic
}

// CheckTsConflict governs whether a reader at read_ts may ignore l,
// under the given isolation level (spec.md §4.3). A nil error means
// "ignore"; a non-nil error is either *KeyIsLocked or *WriteConflict.
func CheckTsConflict(l *Lock, key []byte, readTs uint64, bypassLocks map[uint64]struct{}, isolation Isolation) error {
	return checkTsConflict(l, key, readTs, bypassLocks, isolation, false)
}

// CheckTsConflictForReplicaRead is the SI check with is_replica_read
// forced true — a follower read never bypasses a "read latest" lock
// on the primary, to avoid breaking linearizability (spec.md §4.3).
func CheckTsConflictForReplicaRead(l *Lock, key []byte, readTs uint64, bypassLocks map[uint64]struct{}) error {
	return checkTsConflict(l, key, readTs, bypassLocks, IsolationSI, true)
}

func checkTsConflict(l *Lock, key []byte, readTs uint64, bypassLocks map[uint64]struct{}, isolation Isolation, isReplicaRead bool) error {
	switch isolation {
	case IsolationSI:
		if l.Ts > readTs {
			return nil
		}
		if !l.blocksReads() {
			return nil
		}
		if l.MinCommitTs > readTs {
			return nil
		}
		if isBypassed(bypassLocks, l.Ts) {
			return nil
		}
		if readTs == MaxReadTs {
			if isReplicaRead {
				return newKeyIsLocked(l.IntoLockInfo(key))
			}
			if bytes.Equal(key, l.Primary) && !l.UseAsyncCommit && !l.UseOnePC {
				return nil
			}
		}
		return newKeyIsLocked(l.IntoLockInfo(key))
	case IsolationRcCheckTs:
		if !l.blocksReads() {
			return nil
		}
		if isBypassed(bypassLocks, l.Ts) {
			return nil
		}
		return newWriteConflict(readTs, l.Ts, 0, key, l.Primary, "RcCheckTs")
	default:
		return nil
	}
}
