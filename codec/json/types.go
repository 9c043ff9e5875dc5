// Package json implements the MySQL-5.7-compatible binary JSON codec
// (spec.md §3.1, §4.1): encode/decode of the tagged-variant document
// tree, path-expression evaluation, and the per-function operators
// (extract, merge, modify, keys, length, depth, contains, type,
// unquote, member_of, convert_to_f64). Grounded on
// tidb_query_datatype/src/codec/mysql/json/mod.rs from the retrieval
// pack's original_source, following the teacher repo's tagged-variant
// convention (server/innodb/basic/value.go) rather than an interface
// hierarchy.
package json

import "github.com/pingcap/errors"

// Type is the one-byte type code from spec.md §3.1.
type Type byte

const (
	TypeObject    Type = 0x01
	TypeArray     Type = 0x03
	TypeLiteral   Type = 0x04
	TypeI64       Type = 0x09
	TypeU64       Type = 0x0A
	TypeDouble    Type = 0x0B
	TypeString    Type = 0x0C
	TypeOpaque    Type = 0x0D
	TypeDate      Type = 0x0E
	TypeDatetime  Type = 0x0F
	TypeTimestamp Type = 0x10
	TypeDuration  Type = 0x11
)

// literal byte values (spec.md §3.1).
const (
	literalNil   byte = 0x00
	literalTrue  byte = 0x01
	literalFalse byte = 0x02
)

// Name returns the user-visible JSON_TYPE() name (spec.md §4.1).
func (t Type) Name() string {
	switch t {
	case TypeObject:
		return "OBJECT"
	case TypeArray:
		return "ARRAY"
	case TypeLiteral:
		return "BOOLEAN" // refined by Ref.TypeName for NULL
	case TypeI64:
		return "INTEGER"
	case TypeU64:
		return "UNSIGNED INTEGER"
	case TypeDouble:
		return "DOUBLE"
	case TypeString:
		return "STRING"
	case TypeOpaque:
		return "OPAQUE"
	case TypeDate:
		return "DATE"
	case TypeDatetime:
		return "DATETIME"
	case TypeTimestamp:
		return "TIMESTAMP"
	case TypeDuration:
		return "TIME"
	default:
		return "UNKNOWN"
	}
}

// Ref is a borrowed JSON value: a type code and the byte slice backing
// it. All read-only operations work on Ref; Json (below) is the
// owning counterpart produced by constructors.
type Ref struct {
	TypeCode Type
	Value    []byte
}

// Json is an owned JSON value — the same (type, bytes) shape as Ref,
// holding its own buffer.
type Json struct {
	TypeCode Type
	Value    []byte
}

// AsRef views an owned Json as a borrowed Ref without copying.
func (j Json) AsRef() Ref { return Ref{TypeCode: j.TypeCode, Value: j.Value} }

// ToOwned copies a Ref into an owned Json.
func (r Ref) ToOwned() Json {
	buf := make([]byte, len(r.Value))
	copy(buf, r.Value)
	return Json{TypeCode: r.TypeCode, Value: buf}
}

// RefEq is pointer-identity comparison of the underlying byte slice
// (spec.md §3.1: "Reference equality is pointer identity"), distinct
// from value equality (Compare in ordering.go). Grounded on
// JsonRef::ptr_eq in the original.
func (r Ref) RefEq(other Ref) bool {
	if len(r.Value) != len(other.Value) {
		return false
	}
	if len(r.Value) == 0 {
		return len(other.Value) == 0
	}
	return &r.Value[0] == &other.Value[0]
}

// TypeName is spec.md §4.1's type(): it refines Literal into NULL vs
// BOOLEAN.
func (r Ref) TypeName() string {
	if r.TypeCode == TypeLiteral {
		if len(r.Value) > 0 && r.Value[0] == literalNil {
			return "NULL"
		}
		return "BOOLEAN"
	}
	return r.TypeCode.Name()
}

// --- errors ---

var (
	// ErrBadFormat covers truncated JSON, an unknown type code, or an
	// offset/length exceeding the containing slice (spec.md §7).
	ErrBadFormat = errors.New("json: bad format")
	// ErrInvalidDataType covers an unexpected JSON type byte where a
	// caller required a specific variant (spec.md §7).
	ErrInvalidDataType = errors.New("json: invalid data type")
	// ErrUTF8 names invalid UTF-8 in a JSON string or key (spec.md §7).
	// No decoder or accessor in this package validates UTF-8, so none
	// returns it.
	ErrUTF8 = errors.New("json: invalid utf-8")
)
