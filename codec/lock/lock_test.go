package lock

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhukovaskychina/tidb-codec-core/codec/number"
)

func TestEncodeParseRoundTrip(t *testing.T) {
	cases := []*Lock{
		{LockType: TypePut, Primary: []byte("pk"), Ts: 111, TTL: 222},
		{LockType: TypeDelete, Primary: []byte(""), Ts: 1, TTL: 0},
		{
			LockType: TypePut, Primary: []byte("pk"), Ts: 111, TTL: 222,
			ShortValue: []byte("short_value"), ForUpdateTs: 333, TxnSize: 444,
			MinCommitTs: 555, UseAsyncCommit: true, Secondaries: nil,
		},
		{
			LockType: TypePessimistic, Primary: []byte("k"), Ts: 5, TTL: 5,
			RollbackTs: []uint64{7, 8, 9},
		},
		{LockType: TypePut, Primary: []byte("k"), Ts: 1, LastChange: LastChangeNotExistValue()},
		{LockType: TypePut, Primary: []byte("k"), Ts: 1, LastChange: MakeLastChangeExist(4, 2)},
		{LockType: TypePut, Primary: []byte("k"), Ts: 1, IsLockedWithConflict: true, Generation: 9, TxnSource: 3},
	}
	for _, l := range cases {
		buf := Encode(l)
		got, err := Parse(buf)
		require.NoError(t, err)
		assert.Equal(t, l.LockType, got.LockType)
		assert.Equal(t, l.Primary, got.Primary)
		assert.Equal(t, l.Ts, got.Ts)
		assert.Equal(t, l.TTL, got.TTL)
		assert.Equal(t, l.ForUpdateTs, got.ForUpdateTs)
		assert.Equal(t, l.TxnSize, got.TxnSize)
		assert.Equal(t, l.MinCommitTs, got.MinCommitTs)
		assert.Equal(t, l.UseAsyncCommit, got.UseAsyncCommit)
		assert.Equal(t, l.RollbackTs, got.RollbackTs)
		assert.Equal(t, l.LastChange, got.LastChange)
		assert.Equal(t, l.TxnSource, got.TxnSource)
		assert.Equal(t, l.IsLockedWithConflict, got.IsLockedWithConflict)
		assert.Equal(t, l.Generation, got.Generation)
		assert.LessOrEqual(t, len(buf), PreAllocateSize(l))
	}
}

func TestParseIgnoresUnknownTrailingTag(t *testing.T) {
	l := &Lock{LockType: TypePut, Primary: []byte("pk"), Ts: 111, TTL: 222, ForUpdateTs: 9}
	buf := Encode(l)
	buf = append(buf, 'Z', 1, 2, 3)
	got, err := Parse(buf)
	require.NoError(t, err)
	assert.Equal(t, l.Primary, got.Primary)
	assert.Equal(t, l.ForUpdateTs, got.ForUpdateTs)
}

func TestEncodeLiteralScenario(t *testing.T) {
	l := &Lock{
		LockType: TypePut, Primary: []byte("pk"), Ts: 111, TTL: 222,
		ShortValue: []byte("short_value"), ForUpdateTs: 333, TxnSize: 444,
		MinCommitTs: 555, UseAsyncCommit: true,
	}
	buf := Encode(l)
	assert.Equal(t, byte('P'), buf[0])

	got, err := Parse(buf)
	require.NoError(t, err)
	assert.Equal(t, l.ShortValue, got.ShortValue)
	assert.True(t, got.UseAsyncCommit)
	assert.Empty(t, got.Secondaries)
}

func TestLastChangeAmbiguityCollapsesToNotExist(t *testing.T) {
	l := &Lock{LockType: TypePut, Primary: []byte("k"), Ts: 1, LastChange: MakeLastChangeExist(0, 0)}
	buf := Encode(l)
	got, err := Parse(buf)
	require.NoError(t, err)
	assert.Equal(t, LastChangeNotExist, got.LastChange.Kind)
}

func TestParseLegacyRecordWithoutTTLDefaultsToZero(t *testing.T) {
	buf := []byte{byte(TypePut)}
	buf = number.EncodeCompactBytes(buf, []byte("pk"))
	buf = number.EncodeVarU64(buf, 111)

	got, err := Parse(buf)
	require.NoError(t, err)
	assert.Equal(t, []byte("pk"), got.Primary)
	assert.Equal(t, uint64(111), got.Ts)
	assert.Equal(t, uint64(0), got.TTL)
}

func TestCheckTsConflictSI(t *testing.T) {
	l := &Lock{LockType: TypePut, Primary: []byte("foo"), Ts: 100, MinCommitTs: 150}

	err := CheckTsConflict(l, []byte("foo"), 140, nil, IsolationSI)
	assert.NoError(t, err)

	err = CheckTsConflict(l, []byte("foo"), 150, nil, IsolationSI)
	assert.Error(t, err)
	var kil *KeyIsLocked
	assert.ErrorAs(t, err, &kil)

	err = CheckTsConflict(l, []byte("foo"), MaxReadTs, nil, IsolationSI)
	assert.NoError(t, err)

	l.UseAsyncCommit = true
	err = CheckTsConflict(l, []byte("foo"), MaxReadTs, nil, IsolationSI)
	assert.Error(t, err)
}

func TestCheckTsConflictReplicaReadNeverBypassesReadLatest(t *testing.T) {
	l := &Lock{LockType: TypePut, Primary: []byte("foo"), Ts: 100, MinCommitTs: 150}
	err := CheckTsConflictForReplicaRead(l, []byte("foo"), MaxReadTs, nil)
	assert.Error(t, err)
}

func TestCheckTsConflictRcCheckTs(t *testing.T) {
	l := &Lock{LockType: TypePut, Primary: []byte("foo"), Ts: 100}
	err := CheckTsConflict(l, []byte("foo"), 200, nil, IsolationRcCheckTs)
	require.Error(t, err)
	var wc *WriteConflict
	assert.ErrorAs(t, err, &wc)
	assert.Equal(t, uint64(100), wc.ConflictStartTs)

	lockOnly := &Lock{LockType: TypeLockOnly, Primary: []byte("foo"), Ts: 100}
	assert.NoError(t, CheckTsConflict(lockOnly, []byte("foo"), 200, nil, IsolationRcCheckTs))

	bypass := map[uint64]struct{}{100: {}}
	assert.NoError(t, CheckTsConflict(l, []byte("foo"), 200, bypass, IsolationRcCheckTs))
}

func TestCheckTsConflictOtherIsolationAlwaysIgnores(t *testing.T) {
	l := &Lock{LockType: TypePut, Primary: []byte("foo"), Ts: 100}
	assert.NoError(t, CheckTsConflict(l, []byte("foo"), 0, nil, IsolationOther))
}

func TestPessimisticLockToLock(t *testing.T) {
	p := &PessimisticLock{
		Primary: []byte("pk"), StartTs: 10, TTL: 100, ForUpdateTs: 11,
		MinCommitTs: 12, LastChange: MakeLastChangeExist(8, 2), IsLockedWithConflict: true,
	}
	l := p.ToLock()
	assert.Equal(t, TypePessimistic, l.LockType)
	assert.True(t, l.IsPessimisticTxn())
	assert.True(t, l.IsPessimisticLock())
	assert.True(t, l.IsPessimisticLockWithConflict())
}

func TestIntoLockInfoHidesInternalFields(t *testing.T) {
	l := &Lock{
		LockType: TypePut, Primary: []byte("pk"), Ts: 1, TTL: 2, TxnSize: 77,
		ForUpdateTs: 8, UseAsyncCommit: true, MinCommitTs: 9,
		Secondaries: [][]byte{[]byte("s1")},
		TxnSource:   9, IsLockedWithConflict: true, Generation: 3,
	}
	info := l.IntoLockInfo([]byte("raw-key"))
	assert.Equal(t, []byte("raw-key"), info.Key)
	assert.Equal(t, l.Primary, info.Primary)
	assert.Equal(t, l.Ts, info.Ts)
	assert.Equal(t, l.TTL, info.TTL)
	assert.Equal(t, l.TxnSize, info.TxnSize)
	assert.Equal(t, l.LockType, info.LockType)
	assert.Equal(t, l.ForUpdateTs, info.ForUpdateTs)
	assert.Equal(t, l.UseAsyncCommit, info.UseAsyncCommit)
	assert.Equal(t, l.MinCommitTs, info.MinCommitTs)
	assert.Equal(t, l.Secondaries, info.Secondaries)
}
