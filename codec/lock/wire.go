package lock

import (
	"github.com/juju/errors"
	"github.com/zhukovaskychina/tidb-codec-core/codec/number"
)

const (
	tagShortValue byte = 'v'
	tagForUpdateTs byte = 'f'
	tagTxnSize     byte = 't'
	tagMinCommitTs byte = 'c'
	tagAsyncCommit byte = 'a'
	tagRollbackTs  byte = 'r'
	tagLastChange  byte = 'l'
	tagTxnSource   byte = 's'
	tagLockedWithConflict byte = 'F'
	tagGeneration  byte = 'g'
)

// maxVarLen bounds a varuint/varint's encoded length (10 bytes covers
// the full 64-bit range), used by PreAllocateSize.
const maxVarLen = 10

// Encode serializes l per spec.md §4.3's documented field order.
func Encode(l *Lock) []byte {
	buf := make([]byte, 0, PreAllocateSize(l))
	buf = append(buf, byte(l.LockType))
	buf = number.EncodeCompactBytes(buf, l.Primary)
	buf = number.EncodeVarU64(buf, l.Ts)
	buf = number.EncodeVarU64(buf, l.TTL)

	if l.ShortValue != nil {
		buf = append(buf, tagShortValue, byte(len(l.ShortValue)))
		buf = append(buf, l.ShortValue...)
	}
	if l.ForUpdateTs != 0 {
		buf = append(buf, tagForUpdateTs)
		buf = number.WriteU64LE(buf, l.ForUpdateTs)
	}
	if l.TxnSize != 0 {
		buf = append(buf, tagTxnSize)
		buf = number.WriteU64LE(buf, l.TxnSize)
	}
	if l.MinCommitTs != 0 {
		buf = append(buf, tagMinCommitTs)
		buf = number.WriteU64LE(buf, l.MinCommitTs)
	}
	if l.UseAsyncCommit {
		buf = append(buf, tagAsyncCommit)
		buf = number.EncodeVarU64(buf, uint64(len(l.Secondaries)))
		for _, k := range l.Secondaries {
			buf = number.EncodeCompactBytes(buf, k)
		}
	}
	if len(l.RollbackTs) != 0 {
		buf = append(buf, tagRollbackTs)
		buf = number.EncodeVarU64(buf, uint64(len(l.RollbackTs)))
		for _, ts := range l.RollbackTs {
			buf = number.WriteU64LE(buf, ts)
		}
	}
	if l.LastChange.emitsTag() {
		ts, versions := l.LastChange.toParts()
		buf = append(buf, tagLastChange)
		buf = number.WriteU64LE(buf, ts)
		buf = number.EncodeVarU64(buf, versions)
	}
	if l.TxnSource != 0 {
		buf = append(buf, tagTxnSource)
		buf = number.EncodeVarU64(buf, l.TxnSource)
	}
	if l.IsLockedWithConflict {
		buf = append(buf, tagLockedWithConflict)
	}
	if l.Generation != 0 {
		buf = append(buf, tagGeneration)
		buf = number.WriteU64LE(buf, l.Generation)
	}
	return buf
}

// PreAllocateSize is a conservative upper bound on Encode's output
// length (spec.md §4.3), used to size the buffer in one allocation.
func PreAllocateSize(l *Lock) int {
	size := 1 + maxVarLen + len(l.Primary) + maxVarLen*2
	if l.ShortValue != nil {
		size += 2 + len(l.ShortValue)
	}
	if l.ForUpdateTs != 0 {
		size += 1 + 8
	}
	if l.TxnSize != 0 {
		size += 1 + 8
	}
	if l.MinCommitTs != 0 {
		size += 1 + 8
	}
	if l.UseAsyncCommit {
		size += 1 + maxVarLen
		for _, k := range l.Secondaries {
			size += maxVarLen + len(k)
		}
	}
	if len(l.RollbackTs) != 0 {
		size += 1 + maxVarLen + 8*len(l.RollbackTs)
	}
	if l.LastChange.emitsTag() {
		size += 1 + 8 + maxVarLen
	}
	if l.TxnSource != 0 {
		size += 1 + maxVarLen
	}
	if l.IsLockedWithConflict {
		size++
	}
	if l.Generation != 0 {
		size += 1 + 8
	}
	return size
}

// Parse decodes a Lock from its wire bytes. An unknown trailing tag
// byte stops parsing and returns the fields read so far, per spec.md
// §4.3's forward-compatibility rule (and §8's round-trip-with-junk
// property).
func Parse(b []byte) (*Lock, error) {
	if len(b) == 0 {
		return nil, errors.Trace(ErrBadFormatLock)
	}
	l := &Lock{}
	l.LockType = Type(b[0])
	if !l.LockType.valid() {
		return nil, errors.Trace(ErrBadFormatLock)
	}
	cursor := 1

	cursor, primary, err := number.DecodeCompactBytes(b, cursor)
	if err != nil {
		return nil, errors.Trace(ErrBadFormatLock)
	}
	l.Primary = primary

	cursor, ts, err := number.DecodeVarU64(b, cursor)
	if err != nil {
		return nil, errors.Trace(ErrBadFormatLock)
	}
	l.Ts = ts

	var ttl uint64
	if cursor >= len(b) {
		ttl = 0
	} else {
		cursor, ttl, err = number.DecodeVarU64(b, cursor)
		if err != nil {
			return nil, errors.Trace(ErrBadFormatLock)
		}
	}
	l.TTL = ttl

	for cursor < len(b) {
		tag := b[cursor]
		cursor++
		switch tag {
		case tagShortValue:
			if cursor >= len(b) {
				return l, nil
			}
			n := int(b[cursor])
			cursor++
			if cursor+n > len(b) {
				return l, nil
			}
			l.ShortValue = b[cursor : cursor+n]
			cursor += n
		case tagForUpdateTs:
			var v uint64
			cursor, v, err = number.ReadU64LE(b, cursor)
			if err != nil {
				return l, nil
			}
			l.ForUpdateTs = v
		case tagTxnSize:
			var v uint64
			cursor, v, err = number.ReadU64LE(b, cursor)
			if err != nil {
				return l, nil
			}
			l.TxnSize = v
		case tagMinCommitTs:
			var v uint64
			cursor, v, err = number.ReadU64LE(b, cursor)
			if err != nil {
				return l, nil
			}
			l.MinCommitTs = v
		case tagAsyncCommit:
			l.UseAsyncCommit = true
			var n uint64
			cursor, n, err = number.DecodeVarU64(b, cursor)
			if err != nil {
				return l, nil
			}
			secondaries := make([][]byte, 0, n)
			for i := uint64(0); i < n; i++ {
				var k []byte
				cursor, k, err = number.DecodeCompactBytes(b, cursor)
				if err != nil {
					return l, nil
				}
				secondaries = append(secondaries, k)
			}
			l.Secondaries = secondaries
		case tagRollbackTs:
			var n uint64
			cursor, n, err = number.DecodeVarU64(b, cursor)
			if err != nil {
				return l, nil
			}
			// Capacity len+1 tolerates one future push by the caller
			// without reallocating (spec.md §5).
			rollback := make([]uint64, 0, n+1)
			for i := uint64(0); i < n; i++ {
				var v uint64
				cursor, v, err = number.ReadU64LE(b, cursor)
				if err != nil {
					return l, nil
				}
				rollback = append(rollback, v)
			}
			l.RollbackTs = rollback
		case tagLastChange:
			var lcTs, versions uint64
			cursor, lcTs, err = number.ReadU64LE(b, cursor)
			if err != nil {
				return l, nil
			}
			cursor, versions, err = number.DecodeVarU64(b, cursor)
			if err != nil {
				return l, nil
			}
			l.LastChange = lastChangeFromParts(lcTs, versions)
		case tagTxnSource:
			var v uint64
			cursor, v, err = number.DecodeVarU64(b, cursor)
			if err != nil {
				return l, nil
			}
			l.TxnSource = v
		case tagLockedWithConflict:
			l.IsLockedWithConflict = true
		case tagGeneration:
			var v uint64
			cursor, v, err = number.ReadU64LE(b, cursor)
			if err != nil {
				return l, nil
			}
			l.Generation = v
		default:
			// Unknown tag: forward-compatibility stop, keep fields
			// already parsed (spec.md §4.3, §8).
			return l, nil
		}
	}
	return l, nil
}
