package json

import (
	"sort"

	"github.com/pingcap/errors"
	"github.com/zhukovaskychina/tidb-codec-core/codec/number"
	"github.com/zhukovaskychina/tidb-codec-core/codec/sqltime"
)

// FromNull, FromBool and the other From* constructors mirror the
// original's Json::from_string / from_bool / from_u64 / ... builders.

func FromNull() Json { return Json{TypeCode: TypeLiteral, Value: []byte{literalNil}} }

func FromBool(b bool) Json {
	v := byte(literalFalse)
	if b {
		v = literalTrue
	}
	return Json{TypeCode: TypeLiteral, Value: []byte{v}}
}

func FromI64(v int64) Json {
	return Json{TypeCode: TypeI64, Value: number.WriteI64LE(nil, v)}
}

func FromU64(v uint64) Json {
	return Json{TypeCode: TypeU64, Value: number.WriteU64LE(nil, v)}
}

func FromF64(v float64) Json {
	return Json{TypeCode: TypeDouble, Value: number.WriteF64LE(nil, v)}
}

func FromString(s string) Json {
	return Json{TypeCode: TypeString, Value: number.EncodeCompactBytes(nil, []byte(s))}
}

func FromOpaque(fieldType byte, data []byte) Json {
	buf := append([]byte{fieldType})
	buf = number.EncodeCompactBytes(buf, data)
	return Json{TypeCode: TypeOpaque, Value: buf}
}

func FromTime(t sqltime.Time) Json {
	var tp Type
	switch t.Type() {
	case sqltime.TypeDate:
		tp = TypeDate
	case sqltime.TypeTimestamp:
		tp = TypeTimestamp
	default:
		tp = TypeDatetime
	}
	return Json{TypeCode: tp, Value: sqltime.EncodeChunk(nil, t)}
}

func FromDuration(d sqltime.Duration) Json {
	return Json{TypeCode: TypeDuration, Value: sqltime.EncodeDuration(nil, d)}
}

// KV is an object member used by FromObject/FromKVPairs.
type KV struct {
	Key   string
	Value Json
}

// FromArray builds an Array value preserving element order (spec.md
// §3.1 "Array invariant").
func FromArray(elems []Json) Json {
	return Json{TypeCode: TypeArray, Value: buildContainer(false, nil, elems)}
}

// FromKVPairs is an alias for FromObject kept for parity with the
// original's `from_kv_pairs` name.
func FromKVPairs(pairs []KV) (Json, error) { return FromObject(pairs) }

// FromObject sorts pairs by (length, lexicographic bytes) and rejects
// duplicate keys (spec.md §3.1 "Object invariants").
func FromObject(pairs []KV) (Json, error) {
	sorted := make([]KV, len(pairs))
	copy(sorted, pairs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return compareKeys(sorted[i].Key, sorted[j].Key) < 0
	})
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Key == sorted[i-1].Key {
			return Json{}, errors.Annotatef(ErrBadFormat, "duplicate key %q", sorted[i].Key)
		}
	}
	keys := make([]string, len(sorted))
	values := make([]Json, len(sorted))
	for i, kv := range sorted {
		keys[i] = kv.Key
		values[i] = kv.Value
	}
	return Json{TypeCode: TypeObject, Value: buildContainer(true, keys, values)}, nil
}

// buildContainer implements spec.md §4.1's "Encoding algorithm
// (containers)".
func buildContainer(isObject bool, keys []string, values []Json) []byte {
	count := len(values)
	keyTableSize := 0
	if isObject {
		keyTableSize = count * keyEntrySize
	}
	valueTableSize := count * valueEntrySize
	headerSize := containerHdr + keyTableSize + valueTableSize

	var keyBytes []byte
	keyOffsets := make([]int, count)
	if isObject {
		pos := headerSize
		for i, k := range keys {
			keyOffsets[i] = pos
			keyBytes = append(keyBytes, []byte(k)...)
			pos += len(k)
		}
	}

	valueBytesStart := headerSize + len(keyBytes)
	var valueBytes []byte
	valueEntries := make([]byte, 0, valueTableSize)
	pos := valueBytesStart
	for _, v := range values {
		if isInlineType(v.TypeCode, 0) {
			valueEntries = append(valueEntries, byte(v.TypeCode))
			valueEntries = number.WriteU32LE(valueEntries, uint32(v.Value[0]))
			continue
		}
		valueEntries = append(valueEntries, byte(v.TypeCode))
		valueEntries = number.WriteU32LE(valueEntries, uint32(pos))
		valueBytes = append(valueBytes, v.Value...)
		pos += len(v.Value)
	}

	total := valueBytesStart + len(valueBytes)
	buf := make([]byte, 0, total)
	buf = number.WriteU32LE(buf, uint32(count))
	buf = number.WriteU32LE(buf, uint32(total))
	if isObject {
		for i, k := range keys {
			buf = number.WriteU32LE(buf, uint32(keyOffsets[i]))
			buf = number.WriteU16LE(buf, uint16(len(k)))
		}
	}
	buf = append(buf, valueEntries...)
	buf = append(buf, keyBytes...)
	buf = append(buf, valueBytes...)
	return buf
}

// JSONArray is the JSON_ARRAY() SQL function builder: each argument
// becomes an element, already-JSON arguments pass through, anything
// else is coerced via goValueToJSON.
func JSONArray(args ...interface{}) (Json, error) {
	elems := make([]Json, len(args))
	for i, a := range args {
		j, err := goValueToJSON(a)
		if err != nil {
			return Json{}, err
		}
		elems[i] = j
	}
	return FromArray(elems), nil
}

// JSONObject is the JSON_OBJECT() SQL function builder: arguments are
// (key, value) pairs and an odd count is an error (spec.md §8
// scenario 7).
func JSONObject(args ...interface{}) (Json, error) {
	if len(args)%2 != 0 {
		return Json{}, errors.Annotatef(ErrBadFormat, "JSON_OBJECT takes an even number of arguments, got %d", len(args))
	}
	pairs := make([]KV, 0, len(args)/2)
	for i := 0; i < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			return Json{}, errors.Annotatef(ErrBadFormat, "JSON_OBJECT key at position %d is not a string", i)
		}
		j, err := goValueToJSON(args[i+1])
		if err != nil {
			return Json{}, err
		}
		pairs = append(pairs, KV{Key: key, Value: j})
	}
	return FromObject(pairs)
}

// goValueToJSON coerces a plain Go value into a Json document, used by
// JSONArray/JSONObject so callers can pass native literals inline.
func goValueToJSON(v interface{}) (Json, error) {
	switch x := v.(type) {
	case Json:
		return x, nil
	case nil:
		return FromNull(), nil
	case bool:
		return FromBool(x), nil
	case int:
		return FromI64(int64(x)), nil
	case int64:
		return FromI64(x), nil
	case uint64:
		return FromU64(x), nil
	case float64:
		return FromF64(x), nil
	case string:
		return FromString(x), nil
	default:
		return Json{}, errors.Annotatef(ErrInvalidDataType, "cannot convert %T to json", v)
	}
}

// Encode serializes a Json document: its type byte followed by its
// payload (spec.md §3.1).
func Encode(j Json) []byte {
	buf := make([]byte, 0, 1+len(j.Value))
	buf = append(buf, byte(j.TypeCode))
	return append(buf, j.Value...)
}

// Decode parses a document's type byte and wraps the remainder as a
// Ref without copying. Individual accessors validate bounds against
// their own type's shape lazily (spec.md §9: "evaluate lazily...
// without materializing copies").
func Decode(b []byte) (Ref, error) {
	if len(b) == 0 {
		return Ref{}, errors.Trace(ErrBadFormat)
	}
	tp := Type(b[0])
	switch tp {
	case TypeObject, TypeArray, TypeLiteral, TypeI64, TypeU64, TypeDouble,
		TypeString, TypeOpaque, TypeDate, TypeDatetime, TypeTimestamp, TypeDuration:
		return Ref{TypeCode: tp, Value: b[1:]}, nil
	default:
		return Ref{}, errors.Trace(ErrBadFormat)
	}
}
