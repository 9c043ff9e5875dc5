package json

import "bytes"

// typeOrder ranks each type code for cross-type comparison (spec.md
// §4.1: "NULL < numbers < STRING < OBJECT < ARRAY < BOOLEAN < OPAQUE <
// DATETIME family < TIME"). Literal is split into NULL and BOOLEAN at
// compare time since they share a type code but rank apart.
func typeOrderOf(r Ref) int {
	switch r.TypeCode {
	case TypeLiteral:
		if r.IsNull() {
			return 0
		}
		return 6 // BOOLEAN
	case TypeI64, TypeU64, TypeDouble:
		return 1
	case TypeString:
		return 2
	case TypeObject:
		return 3
	case TypeArray:
		return 4
	case TypeOpaque:
		return 7
	case TypeDate, TypeDatetime, TypeTimestamp:
		return 8
	case TypeDuration:
		return 9
	default:
		return 10
	}
}

// Compare implements spec.md §4.1's JSON ordering: a strict total
// order used by member_of, comparisons, and ORDER BY over a JSON
// column. Grounded on the original's cmp_json_value.
func Compare(a, b Ref) (int, error) {
	oa, ob := typeOrderOf(a), typeOrderOf(b)
	if oa != ob {
		if oa < ob {
			return -1, nil
		}
		return 1, nil
	}
	switch oa {
	case 0: // NULL
		return 0, nil
	case 1: // numbers compare as float64
		fa, err := asComparableNumber(a)
		if err != nil {
			return 0, err
		}
		fb, err := asComparableNumber(b)
		if err != nil {
			return 0, err
		}
		return cmpFloat(fa, fb), nil
	case 2:
		sa, err := a.GetStringBytes()
		if err != nil {
			return 0, err
		}
		sb, err := b.GetStringBytes()
		if err != nil {
			return 0, err
		}
		return bytes.Compare(sa, sb), nil
	case 3:
		return compareObjects(a, b)
	case 4:
		return compareArrays(a, b)
	case 6:
		la, err := a.GetLiteral()
		if err != nil {
			return 0, err
		}
		lb, err := b.GetLiteral()
		if err != nil {
			return 0, err
		}
		if la == lb {
			return 0, nil
		}
		if la == literalFalse {
			return -1, nil
		}
		return 1, nil
	case 7:
		_, da, err := a.GetOpaqueBytes()
		if err != nil {
			return 0, err
		}
		_, db, err := b.GetOpaqueBytes()
		if err != nil {
			return 0, err
		}
		return bytes.Compare(da, db), nil
	case 8:
		ta, err := a.GetTime(0)
		if err != nil {
			return 0, err
		}
		tb, err := b.GetTime(0)
		if err != nil {
			return 0, err
		}
		return ta.Compare(tb), nil
	case 9:
		da, err := a.GetDuration()
		if err != nil {
			return 0, err
		}
		db, err := b.GetDuration()
		if err != nil {
			return 0, err
		}
		if da.Nanos == db.Nanos {
			return 0, nil
		}
		if da.Nanos < db.Nanos {
			return -1, nil
		}
		return 1, nil
	default:
		return 0, nil
	}
}

func asComparableNumber(r Ref) (float64, error) {
	switch r.TypeCode {
	case TypeI64:
		v, err := r.GetI64()
		return float64(v), err
	case TypeU64:
		v, err := r.GetU64()
		return float64(v), err
	default:
		return r.GetDouble()
	}
}

func cmpFloat(a, b float64) int {
	if a == b {
		return 0
	}
	if a < b {
		return -1
	}
	return 1
}

// compareObjects compares by element count then by the first differing
// key/value pair in sorted-key order (spec.md §4.1).
func compareObjects(a, b Ref) (int, error) {
	ca, err := a.GetElemCount()
	if err != nil {
		return 0, err
	}
	cb, err := b.GetElemCount()
	if err != nil {
		return 0, err
	}
	if ca != cb {
		if ca < cb {
			return -1, nil
		}
		return 1, nil
	}
	for i := 0; i < ca; i++ {
		ka, err := a.ObjectKey(i)
		if err != nil {
			return 0, err
		}
		kb, err := b.ObjectKey(i)
		if err != nil {
			return 0, err
		}
		if c := compareKeys(ka, kb); c != 0 {
			return c, nil
		}
		va, err := a.ObjectValue(i)
		if err != nil {
			return 0, err
		}
		vb, err := b.ObjectValue(i)
		if err != nil {
			return 0, err
		}
		if c, err := Compare(va, vb); err != nil || c != 0 {
			return c, err
		}
	}
	return 0, nil
}

func compareArrays(a, b Ref) (int, error) {
	ca, err := a.GetElemCount()
	if err != nil {
		return 0, err
	}
	cb, err := b.GetElemCount()
	if err != nil {
		return 0, err
	}
	n := ca
	if cb < n {
		n = cb
	}
	for i := 0; i < n; i++ {
		va, err := a.ArrayElem(i)
		if err != nil {
			return 0, err
		}
		vb, err := b.ArrayElem(i)
		if err != nil {
			return 0, err
		}
		if c, err := Compare(va, vb); err != nil || c != 0 {
			return c, err
		}
	}
	if ca != cb {
		if ca < cb {
			return -1, nil
		}
		return 1, nil
	}
	return 0, nil
}
