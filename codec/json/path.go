package json

import (
	"strconv"
	"strings"

	"github.com/pingcap/errors"
)

// legKind distinguishes the three path-leg shapes spec.md §4.1's
// grammar allows after the leading "$": ".key", "[index|*]", "**".
type legKind int

const (
	legKey legKind = iota
	legIndex
	legIndexWildcard
	legRecursive
)

type pathLeg struct {
	kind  legKind
	key   string
	index int
}

// PathExpression is a parsed path per spec.md §4.1's grammar:
//
//	$ ( "." identifier | "." '"' string '"' | "[" (uint|"*") "]" | "**" )*
type PathExpression struct {
	legs []pathLeg
}

// ParsePath parses a path expression string.
func ParsePath(s string) (PathExpression, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "$") {
		return PathExpression{}, errors.Annotatef(ErrBadFormat, "path must start with $: %q", s)
	}
	rest := s[1:]
	var legs []pathLeg
	for len(rest) > 0 {
		switch {
		case strings.HasPrefix(rest, "**"):
			legs = append(legs, pathLeg{kind: legRecursive})
			rest = rest[2:]
		case strings.HasPrefix(rest, "."):
			rest = rest[1:]
			var key string
			if strings.HasPrefix(rest, `"`) {
				end := strings.Index(rest[1:], `"`)
				if end < 0 {
					return PathExpression{}, errors.Annotatef(ErrBadFormat, "unterminated quoted key in %q", s)
				}
				key = rest[1 : 1+end]
				rest = rest[1+end+1:]
			} else {
				i := 0
				for i < len(rest) && rest[i] != '.' && rest[i] != '[' && !strings.HasPrefix(rest[i:], "**") {
					i++
				}
				key = rest[:i]
				rest = rest[i:]
			}
			if key == "" {
				return PathExpression{}, errors.Annotatef(ErrBadFormat, "empty key in %q", s)
			}
			legs = append(legs, pathLeg{kind: legKey, key: key})
		case strings.HasPrefix(rest, "["):
			end := strings.Index(rest, "]")
			if end < 0 {
				return PathExpression{}, errors.Annotatef(ErrBadFormat, "unterminated index in %q", s)
			}
			inner := strings.TrimSpace(rest[1:end])
			rest = rest[end+1:]
			if inner == "*" {
				legs = append(legs, pathLeg{kind: legIndexWildcard})
				continue
			}
			n, err := strconv.Atoi(inner)
			if err != nil || n < 0 {
				return PathExpression{}, errors.Annotatef(ErrBadFormat, "bad array index %q in %q", inner, s)
			}
			legs = append(legs, pathLeg{kind: legIndex, index: n})
		default:
			return PathExpression{}, errors.Annotatef(ErrBadFormat, "unexpected token at %q in %q", rest, s)
		}
	}
	return PathExpression{legs: legs}, nil
}

// ContainsAnyAsterisk reports whether the path contains a wildcard or
// recursive leg, per spec.md §4.1: such paths are read-only (no
// modify/remove target).
func (p PathExpression) ContainsAnyAsterisk() bool {
	for _, l := range p.legs {
		if l.kind == legIndexWildcard || l.kind == legRecursive {
			return true
		}
	}
	return false
}

// Extract evaluates the path against root and returns every matching
// value, in document order (spec.md §4.1's extract()).
func Extract(root Ref, path PathExpression) ([]Ref, error) {
	matches := []Ref{root}
	for _, leg := range path.legs {
		var next []Ref
		for _, m := range matches {
			got, err := applyLeg(m, leg)
			if err != nil {
				return nil, err
			}
			next = append(next, got...)
		}
		matches = next
	}
	return matches, nil
}

func applyLeg(v Ref, leg pathLeg) ([]Ref, error) {
	switch leg.kind {
	case legKey:
		if v.TypeCode != TypeObject {
			return nil, nil
		}
		val, ok, err := v.ObjectLookup(leg.key)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, nil
		}
		return []Ref{val}, nil
	case legIndex:
		return indexInto(v, leg.index)
	case legIndexWildcard:
		if v.TypeCode == TypeArray {
			count, err := v.GetElemCount()
			if err != nil {
				return nil, err
			}
			out := make([]Ref, 0, count)
			for i := 0; i < count; i++ {
				e, err := v.ArrayElem(i)
				if err != nil {
					return nil, err
				}
				out = append(out, e)
			}
			return out, nil
		}
		return indexInto(v, 0)
	case legRecursive:
		return recursiveCollect(v), nil
	default:
		return nil, nil
	}
}

// indexInto treats a non-array scalar/object as a single-element array
// at index 0 (spec.md §4.1 edge case: "indexing a non-array auto-wraps
// it").
func indexInto(v Ref, idx int) ([]Ref, error) {
	if v.TypeCode != TypeArray {
		if idx == 0 {
			return []Ref{v}, nil
		}
		return nil, nil
	}
	count, err := v.GetElemCount()
	if err != nil {
		return nil, err
	}
	if idx < 0 || idx >= count {
		return nil, nil
	}
	e, err := v.ArrayElem(idx)
	if err != nil {
		return nil, err
	}
	return []Ref{e}, nil
}

// recursiveCollect gathers v and every value reachable by descending
// through objects and arrays (spec.md §4.1's "**").
func recursiveCollect(v Ref) []Ref {
	out := []Ref{v}
	switch v.TypeCode {
	case TypeObject:
		count, err := v.GetElemCount()
		if err != nil {
			return out
		}
		for i := 0; i < count; i++ {
			val, err := v.ObjectValue(i)
			if err != nil {
				continue
			}
			out = append(out, recursiveCollect(val)...)
		}
	case TypeArray:
		count, err := v.GetElemCount()
		if err != nil {
			return out
		}
		for i := 0; i < count; i++ {
			val, err := v.ArrayElem(i)
			if err != nil {
				continue
			}
			out = append(out, recursiveCollect(val)...)
		}
	}
	return out
}
