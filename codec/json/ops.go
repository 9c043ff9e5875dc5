package json

import (
	"strconv"
	"strings"

	"github.com/pingcap/errors"
	"github.com/zhukovaskychina/tidb-codec-core/codec/evalctx"
)

// TypeOf is spec.md §4.1's type() function: the user-visible type name
// of a document's root value.
func TypeOf(r Ref) string { return r.TypeName() }

// Length is spec.md §4.1's length(): 1 for scalars, the element count
// for Object/Array.
func Length(r Ref) (int, error) { return r.GetElemCount() }

// Depth is spec.md §4.1's depth(): 1 for a scalar, 1 + max child depth
// for a container, with an empty container counting as depth 1.
func Depth(r Ref) (int, error) {
	switch r.TypeCode {
	case TypeObject:
		count, err := r.GetElemCount()
		if err != nil {
			return 0, err
		}
		max := 0
		for i := 0; i < count; i++ {
			v, err := r.ObjectValue(i)
			if err != nil {
				return 0, err
			}
			d, err := Depth(v)
			if err != nil {
				return 0, err
			}
			if d > max {
				max = d
			}
		}
		return max + 1, nil
	case TypeArray:
		count, err := r.GetElemCount()
		if err != nil {
			return 0, err
		}
		max := 0
		for i := 0; i < count; i++ {
			v, err := r.ArrayElem(i)
			if err != nil {
				return 0, err
			}
			d, err := Depth(v)
			if err != nil {
				return 0, err
			}
			if d > max {
				max = d
			}
		}
		return max + 1, nil
	default:
		return 1, nil
	}
}

// Keys is spec.md §4.1's keys(): the sorted key list of an Object, or
// an error for any other type.
func Keys(r Ref) ([]string, error) {
	if r.TypeCode != TypeObject {
		return nil, errors.Trace(ErrInvalidDataType)
	}
	count, err := r.GetElemCount()
	if err != nil {
		return nil, err
	}
	out := make([]string, count)
	for i := 0; i < count; i++ {
		out[i], err = r.ObjectKey(i)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Contains is spec.md §4.1's contains(): target is contained in
// haystack if they're deeply equal, or (for Object/Array haystacks)
// every element/member of target is contained in some element/member
// of haystack.
func Contains(haystack, target Ref) (bool, error) {
	if haystack.TypeCode == TypeObject && target.TypeCode == TypeObject {
		tk, err := Keys(target)
		if err != nil {
			return false, err
		}
		for i, k := range tk {
			tv, err := target.ObjectValue(i)
			if err != nil {
				return false, err
			}
			hv, ok, err := haystack.ObjectLookup(k)
			if err != nil {
				return false, err
			}
			if !ok {
				return false, nil
			}
			contained, err := Contains(hv, tv)
			if err != nil || !contained {
				return false, err
			}
		}
		return true, nil
	}
	if haystack.TypeCode == TypeArray {
		if target.TypeCode == TypeArray {
			count, err := target.GetElemCount()
			if err != nil {
				return false, err
			}
			for i := 0; i < count; i++ {
				te, err := target.ArrayElem(i)
				if err != nil {
					return false, err
				}
				contained, err := Contains(haystack, te)
				if err != nil || !contained {
					return false, err
				}
			}
			return true, nil
		}
		count, err := haystack.GetElemCount()
		if err != nil {
			return false, err
		}
		for i := 0; i < count; i++ {
			he, err := haystack.ArrayElem(i)
			if err != nil {
				return false, err
			}
			contained, err := Contains(he, target)
			if err != nil {
				return false, err
			}
			if contained {
				return true, nil
			}
		}
		return false, nil
	}
	c, err := Compare(haystack, target)
	if err != nil {
		return false, err
	}
	return c == 0, nil
}

// MemberOf is spec.md §4.1's member_of(): target is a member of
// candidate if candidate is an Array containing it, or if they're
// deeply equal (candidate treated as a one-element array).
func MemberOf(target, candidate Ref) (bool, error) {
	if candidate.TypeCode == TypeArray {
		count, err := candidate.GetElemCount()
		if err != nil {
			return false, err
		}
		for i := 0; i < count; i++ {
			e, err := candidate.ArrayElem(i)
			if err != nil {
				return false, err
			}
			c, err := Compare(target, e)
			if err != nil {
				return false, err
			}
			if c == 0 {
				return true, nil
			}
		}
		return false, nil
	}
	c, err := Compare(target, candidate)
	if err != nil {
		return false, err
	}
	return c == 0, nil
}

// Unquote is spec.md §4.1's unquote(): strings lose their surrounding
// quotes and backslash-escapes are resolved. Every other type returns
// an empty string and a nil error; no text rendering is produced.
func Unquote(r Ref) (string, error) {
	if r.TypeCode != TypeString {
		return "", nil
	}
	b, err := r.GetStringBytes()
	if err != nil {
		return "", err
	}
	return unquoteString(string(b)), nil
}

func unquoteString(s string) string {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i == len(s)-1 {
			sb.WriteByte(s[i])
			continue
		}
		i++
		switch s[i] {
		case '"':
			sb.WriteByte('"')
		case '\\':
			sb.WriteByte('\\')
		case '/':
			sb.WriteByte('/')
		case 'b':
			sb.WriteByte('\b')
		case 'f':
			sb.WriteByte('\f')
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		default:
			sb.WriteByte('\\')
			sb.WriteByte(s[i])
		}
	}
	return sb.String()
}

// ConvertToF64 is spec.md §4.1's convert_to_f64, contex-aware: strings
// parse as float (truncation warning on failure), containers convert
// to 0 with a truncation warning, and the SQL mode governs whether a
// truncation is an error or a logged warning (spec.md §8 scenario 8).
func ConvertToF64(ctx *evalctx.Context, r Ref) (float64, error) {
	switch r.TypeCode {
	case TypeI64, TypeU64, TypeDouble, TypeLiteral:
		return r.AsF64()
	case TypeString:
		b, err := r.GetStringBytes()
		if err != nil {
			return 0, err
		}
		f, perr := strconv.ParseFloat(string(b), 64)
		if perr != nil {
			if terr := ctx.HandleTruncate(errors.Annotate(ErrBadFormat, "json string is not a number")); terr != nil {
				return 0, terr
			}
			return 0, nil
		}
		return f, nil
	default:
		if terr := ctx.HandleTruncate(errors.Annotatef(ErrBadFormat, "cannot convert json %s to float", r.TypeName())); terr != nil {
			return 0, terr
		}
		return 0, nil
	}
}

// ModifyKind selects set()/insert()/replace() semantics for Modify
// (spec.md §4.1).
type ModifyKind int

const (
	ModifySet ModifyKind = iota
	ModifyInsert
	ModifyReplace
)

// Modify applies one (path, value, kind) edit at a time, left to
// right, per spec.md §4.1. A wildcard/recursive path has no
// well-defined single target and is rejected.
func Modify(root Json, paths []PathExpression, values []Json, kinds []ModifyKind) (Json, error) {
	cur := root
	for i, p := range paths {
		if p.ContainsAnyAsterisk() {
			return Json{}, errors.Annotatef(ErrBadFormat, "path with wildcard is not a valid modify target")
		}
		var err error
		cur, err = modifyOne(cur, p, values[i], kinds[i])
		if err != nil {
			return Json{}, err
		}
	}
	return cur, nil
}

func modifyOne(root Json, path PathExpression, value Json, kind ModifyKind) (Json, error) {
	if len(path.legs) == 0 {
		switch kind {
		case ModifyInsert:
			return root, nil // root already exists; insert never overwrites
		default:
			return value, nil
		}
	}
	return rebuild(root.AsRef(), path.legs, value, kind)
}

func rebuild(cur Ref, legs []pathLeg, value Json, kind ModifyKind) (Json, error) {
	leg := legs[0]
	rest := legs[1:]

	switch leg.kind {
	case legKey:
		var pairs []KV
		existed := false
		if cur.TypeCode == TypeObject {
			count, err := cur.GetElemCount()
			if err != nil {
				return Json{}, err
			}
			for i := 0; i < count; i++ {
				k, err := cur.ObjectKey(i)
				if err != nil {
					return Json{}, err
				}
				v, err := cur.ObjectValue(i)
				if err != nil {
					return Json{}, err
				}
				if k == leg.key {
					existed = true
					var nv Json
					if len(rest) == 0 {
						if kind == ModifyInsert {
							nv = v.ToOwned()
						} else {
							nv = value
						}
					} else {
						var err error
						nv, err = rebuild(v, rest, value, kind)
						if err != nil {
							return Json{}, err
						}
					}
					pairs = append(pairs, KV{Key: k, Value: nv})
				} else {
					pairs = append(pairs, KV{Key: k, Value: v.ToOwned()})
				}
			}
		}
		if !existed {
			if kind == ModifyReplace {
				return cur.ToOwned(), nil
			}
			if len(rest) != 0 {
				return cur.ToOwned(), nil
			}
			if cur.TypeCode != TypeObject && len(pairs) == 0 {
				return cur.ToOwned(), nil
			}
			pairs = append(pairs, KV{Key: leg.key, Value: value})
		}
		return FromObject(pairs)
	case legIndex:
		var elems []Json
		if cur.TypeCode == TypeArray {
			count, err := cur.GetElemCount()
			if err != nil {
				return Json{}, err
			}
			for i := 0; i < count; i++ {
				e, err := cur.ArrayElem(i)
				if err != nil {
					return Json{}, err
				}
				elems = append(elems, e.ToOwned())
			}
		} else {
			elems = []Json{cur.ToOwned()}
		}
		if leg.index < len(elems) {
			if len(rest) == 0 {
				if kind != ModifyInsert {
					elems[leg.index] = value
				}
			} else {
				nv, err := rebuild(elems[leg.index].AsRef(), rest, value, kind)
				if err != nil {
					return Json{}, err
				}
				elems[leg.index] = nv
			}
		} else if kind != ModifyReplace && len(rest) == 0 {
			elems = append(elems, value)
		}
		return FromArray(elems), nil
	default:
		return cur.ToOwned(), nil
	}
}

// Remove deletes the value at path, per spec.md §4.1. A path that
// matches nothing is a no-op; a wildcard/recursive path is rejected.
func Remove(root Json, path PathExpression) (Json, error) {
	if path.ContainsAnyAsterisk() {
		return Json{}, errors.Annotatef(ErrBadFormat, "path with wildcard is not a valid remove target")
	}
	if len(path.legs) == 0 {
		return Json{}, errors.Annotatef(ErrBadFormat, "cannot remove the document root")
	}
	removed, out, err := removeIn(root.AsRef(), path.legs)
	if err != nil {
		return Json{}, err
	}
	if !removed {
		return root, nil
	}
	return out, nil
}

func removeIn(cur Ref, legs []pathLeg) (bool, Json, error) {
	leg := legs[0]
	rest := legs[1:]
	switch leg.kind {
	case legKey:
		if cur.TypeCode != TypeObject {
			return false, cur.ToOwned(), nil
		}
		count, err := cur.GetElemCount()
		if err != nil {
			return false, Json{}, err
		}
		var pairs []KV
		removed := false
		for i := 0; i < count; i++ {
			k, err := cur.ObjectKey(i)
			if err != nil {
				return false, Json{}, err
			}
			v, err := cur.ObjectValue(i)
			if err != nil {
				return false, Json{}, err
			}
			if k == leg.key {
				if len(rest) == 0 {
					removed = true
					continue
				}
				r2, nv, err := removeIn(v, rest)
				if err != nil {
					return false, Json{}, err
				}
				removed = removed || r2
				pairs = append(pairs, KV{Key: k, Value: nv})
				continue
			}
			pairs = append(pairs, KV{Key: k, Value: v.ToOwned()})
		}
		out, err := FromObject(pairs)
		return removed, out, err
	case legIndex:
		if cur.TypeCode != TypeArray {
			return false, cur.ToOwned(), nil
		}
		count, err := cur.GetElemCount()
		if err != nil {
			return false, Json{}, err
		}
		var elems []Json
		removed := false
		for i := 0; i < count; i++ {
			e, err := cur.ArrayElem(i)
			if err != nil {
				return false, Json{}, err
			}
			if i == leg.index {
				if len(rest) == 0 {
					removed = true
					continue
				}
				r2, nv, err := removeIn(e, rest)
				if err != nil {
					return false, Json{}, err
				}
				removed = removed || r2
				elems = append(elems, nv)
				continue
			}
			elems = append(elems, e.ToOwned())
		}
		return removed, FromArray(elems), nil
	default:
		return false, cur.ToOwned(), nil
	}
}

// Merge implements spec.md §4.1's JSON_MERGE_PRESERVE: objects merge
// key-by-key (recursively merging shared keys), arrays concatenate,
// and a scalar merging with anything becomes a one-element array
// merged with the other side. Merging a value with itself is not
// idempotent: {"x":1} merged with itself gives {"x":[1,1]}.
func Merge(docs []Json) (Json, error) {
	if len(docs) == 0 {
		return FromNull(), nil
	}
	acc := docs[0]
	for _, d := range docs[1:] {
		var err error
		acc, err = mergeTwo(acc, d)
		if err != nil {
			return Json{}, err
		}
	}
	return acc, nil
}

func mergeTwo(a, b Json) (Json, error) {
	ra, rb := a.AsRef(), b.AsRef()
	if ra.TypeCode == TypeObject && rb.TypeCode == TypeObject {
		ka, err := Keys(ra)
		if err != nil {
			return Json{}, err
		}
		var pairs []KV
		seen := map[string]bool{}
		for i, k := range ka {
			av, err := ra.ObjectValue(i)
			if err != nil {
				return Json{}, err
			}
			if bv, ok, err := rb.ObjectLookup(k); err != nil {
				return Json{}, err
			} else if ok {
				merged, err := mergeTwo(av.ToOwned(), bv.ToOwned())
				if err != nil {
					return Json{}, err
				}
				pairs = append(pairs, KV{Key: k, Value: merged})
			} else {
				pairs = append(pairs, KV{Key: k, Value: av.ToOwned()})
			}
			seen[k] = true
		}
		kb, err := Keys(rb)
		if err != nil {
			return Json{}, err
		}
		for i, k := range kb {
			if seen[k] {
				continue
			}
			bv, err := rb.ObjectValue(i)
			if err != nil {
				return Json{}, err
			}
			pairs = append(pairs, KV{Key: k, Value: bv.ToOwned()})
		}
		return FromObject(pairs)
	}
	if ra.TypeCode == TypeArray || rb.TypeCode == TypeArray {
		var elems []Json
		elems = append(elems, toArrayElems(ra)...)
		elems = append(elems, toArrayElems(rb)...)
		return FromArray(elems), nil
	}
	return FromArray([]Json{a, b}), nil
}

func toArrayElems(r Ref) []Json {
	if r.TypeCode != TypeArray {
		return []Json{r.ToOwned()}
	}
	count, err := r.GetElemCount()
	if err != nil {
		return []Json{r.ToOwned()}
	}
	out := make([]Json, 0, count)
	for i := 0; i < count; i++ {
		e, err := r.ArrayElem(i)
		if err != nil {
			continue
		}
		out = append(out, e.ToOwned())
	}
	return out
}

// AsMySQLBool mirrors the original's documented (and intentionally
// preserved) quirk: a JSON document's truthiness for boolean contexts
// is always false, regardless of its content. See DESIGN.md Open
// Question decision.
func (r Ref) AsMySQLBool() bool { return false }
