// Package lock implements the MVCC lock-record wire format (spec.md
// §3.3, §4.3): encode/decode of the lock column-family record, the
// reader-side conflict check against a read timestamp, and the
// in-memory PessimisticLock companion type. Grounded on
// txn_types/src/lock.rs from the retrieval pack's original_source.
package lock

// Type is the lock_type tag byte (spec.md §3.3).
type Type byte

const (
	TypePut         Type = 'P'
	TypeDelete      Type = 'D'
	TypeLockOnly    Type = 'L'
	TypePessimistic Type = 'S'
)

func (t Type) valid() bool {
	switch t {
	case TypePut, TypeDelete, TypeLockOnly, TypePessimistic:
		return true
	default:
		return false
	}
}

func (t Type) String() string {
	switch t {
	case TypePut:
		return "Put"
	case TypeDelete:
		return "Delete"
	case TypeLockOnly:
		return "Lock"
	case TypePessimistic:
		return "Pessimistic"
	default:
		return "Unknown"
	}
}

// LastChangeKind distinguishes the three last_change states from
// spec.md §3.3 / GLOSSARY.
type LastChangeKind uint8

const (
	LastChangeUnknown LastChangeKind = iota
	LastChangeNotExist
	LastChangeExist
)

// LastChange is a hint recording the most recent PUT/DELETE's
// timestamp and how many LOCK records separate it from the reader.
//
// The wire format cannot distinguish NotExist from Exist{Ts: 0,
// EstimatedVersions: 0} — both encode as the tagged field's ts=0,
// versions=0 — so fromParts collapses an all-zero pair to NotExist.
// This mirrors the upstream invariant that a genuine Exist always
// carries ts > 0; see DESIGN.md.
type LastChange struct {
	Kind              LastChangeKind
	Ts                uint64
	EstimatedVersions uint64
}

func LastChangeNotExistValue() LastChange { return LastChange{Kind: LastChangeNotExist} }

func MakeLastChangeExist(ts, estimatedVersions uint64) LastChange {
	return LastChange{Kind: LastChangeExist, Ts: ts, EstimatedVersions: estimatedVersions}
}

func (lc LastChange) toParts() (uint64, uint64) {
	if lc.Kind == LastChangeExist {
		return lc.Ts, lc.EstimatedVersions
	}
	return 0, 0
}

func lastChangeFromParts(ts, versions uint64) LastChange {
	if ts == 0 && versions == 0 {
		return LastChangeNotExistValue()
	}
	return MakeLastChangeExist(ts, versions)
}

// emitsLastChangeTag reports whether to_bytes writes the 'l' tag —
// matches the original's `matches!(last_change, NotExist | Exist{..})`
// guard: Unknown is the only state that omits the tag.
func (lc LastChange) emitsTag() bool { return lc.Kind != LastChangeUnknown }

// Lock is the full MVCC lock record (spec.md §3.3).
type Lock struct {
	LockType       Type
	Primary        []byte
	Ts             uint64
	TTL            uint64
	ShortValue     []byte
	ForUpdateTs    uint64
	TxnSize        uint64
	MinCommitTs    uint64
	UseAsyncCommit bool
	UseOnePC       bool // in-memory only, never persisted
	Secondaries    [][]byte
	RollbackTs     []uint64
	LastChange     LastChange
	TxnSource      uint64
	IsLockedWithConflict bool
	Generation     uint64
}

// IsPessimisticTxn reports whether this lock belongs to a pessimistic
// transaction (spec.md §9 GLOSSARY; grounded on
// `Lock::is_pessimistic_txn` in the original).
func (l *Lock) IsPessimisticTxn() bool { return l.ForUpdateTs != 0 }

// IsPessimisticLock reports whether the lock record itself is a
// Pessimistic-type lock (as opposed to a pessimistic *transaction*
// holding a Put/Delete/Lock-type record after prewrite).
func (l *Lock) IsPessimisticLock() bool { return l.LockType == TypePessimistic }

// IsPessimisticLockWithConflict reports a pessimistic lock acquired
// despite a newer conflicting write (for_update_ts advanced past the
// conflict and the flag was recorded rather than blocking).
func (l *Lock) IsPessimisticLockWithConflict() bool {
	return l.IsPessimisticLock() && l.IsLockedWithConflict
}

// LockInfo is the projection into_lock_info exposes to RPC callers
// (spec.md §4.3): internal-only fields (last_change, txn_source,
// is_locked_with_conflict, generation) are never exposed.
type LockInfo struct {
	Primary        []byte
	Ts             uint64
	Key            []byte
	TTL            uint64
	TxnSize        uint64
	LockType       Type
	ForUpdateTs    uint64
	UseAsyncCommit bool
	MinCommitTs    uint64
	Secondaries    [][]byte
}

// IntoLockInfo projects l into the wire-response shape, associating
// it with the raw key the reader was looking up (spec.md §4.3).
func (l *Lock) IntoLockInfo(rawKey []byte) LockInfo {
	return LockInfo{
		Primary:        l.Primary,
		Ts:             l.Ts,
		Key:            rawKey,
		TTL:            l.TTL,
		TxnSize:        l.TxnSize,
		LockType:       l.LockType,
		ForUpdateTs:    l.ForUpdateTs,
		UseAsyncCommit: l.UseAsyncCommit,
		MinCommitTs:    l.MinCommitTs,
		Secondaries:    l.Secondaries,
	}
}

// PessimisticLock is the in-memory-only companion (spec.md §3.3): a
// reduced-heap-cost representation held while most locks in a region
// are pessimistic.
type PessimisticLock struct {
	Primary              []byte
	StartTs              uint64
	TTL                  uint64
	ForUpdateTs          uint64
	MinCommitTs          uint64
	LastChange           LastChange
	IsLockedWithConflict bool
}

// ToLock materializes the full Lock record this pessimistic lock
// would persist as, grounded on `PessimisticLock::to_lock`.
func (p *PessimisticLock) ToLock() *Lock {
	return &Lock{
		LockType:             TypePessimistic,
		Primary:              p.Primary,
		Ts:                   p.StartTs,
		TTL:                  p.TTL,
		ForUpdateTs:          p.ForUpdateTs,
		MinCommitTs:          p.MinCommitTs,
		LastChange:           p.LastChange,
		IsLockedWithConflict: p.IsLockedWithConflict,
	}
}
