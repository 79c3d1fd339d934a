package sparse

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/emirpasic/gods/v2/sets/treeset"
)

// Index selects along one axis of a tensor in Get.
//
// The concrete selectors are PointIndex, IntervalIndex, AllIndex,
// NewAxisIndex and SpecifiedIndex. String renders the syntax accepted by
// ParseIndex.
type Index interface {
	fmt.Stringer
	isIndex()
}

// PointIndex fixes an axis at I and drops it from the result.
type PointIndex struct{ I int }

// IntervalIndex keeps the half-open range [Lo, Hi) of an axis.
type IntervalIndex struct{ Lo, Hi int }

// AllIndex keeps an axis unchanged.
type AllIndex struct{}

// NewAxisIndex inserts a size-1 axis without consuming one.
type NewAxisIndex struct{}

// SpecifiedIndex keeps the listed positions of an axis, in ascending order.
type SpecifiedIndex struct{ Indices []int }

func (PointIndex) isIndex()     {}
func (IntervalIndex) isIndex()  {}
func (AllIndex) isIndex()       {}
func (NewAxisIndex) isIndex()   {}
func (SpecifiedIndex) isIndex() {}

// Point selects a single position.
func Point(i int) PointIndex { return PointIndex{I: i} }

// Interval selects [lo, hi).
func Interval(lo, hi int) IntervalIndex { return IntervalIndex{Lo: lo, Hi: hi} }

// All selects a whole axis.
func All() AllIndex { return AllIndex{} }

// NewAxis inserts a size-1 axis.
func NewAxis() NewAxisIndex { return NewAxisIndex{} }

// Specified selects an arbitrary set of positions. Duplicates are removed
// and the set is sorted.
func Specified(indices ...int) SpecifiedIndex {
	return SpecifiedIndex{Indices: normalizeSet(indices)}
}

func normalizeSet(indices []int) []int {
	return treeset.New(indices...).Values()
}

func (p PointIndex) String() string    { return strconv.Itoa(p.I) }
func (r IntervalIndex) String() string { return fmt.Sprintf("%d:%d", r.Lo, r.Hi) }
func (AllIndex) String() string        { return ":" }
func (NewAxisIndex) String() string    { return "new" }

func (s SpecifiedIndex) String() string {
	parts := make([]string, len(s.Indices))
	for i, v := range s.Indices {
		parts[i] = strconv.Itoa(v)
	}
	return "{" + strings.Join(parts, ",") + "}"
}

// FormatIndices renders a selector list as ParseIndices accepts it.
func FormatIndices(idx []Index) string {
	parts := make([]string, len(idx))
	for i, ix := range idx {
		parts[i] = ix.String()
	}
	return strings.Join(parts, ", ")
}

// ParseIndex parses one selector:
//
//	":" or "all"        AllIndex
//	"new" or "newaxis"  NewAxisIndex
//	"3"                 PointIndex
//	"1:3"  ":3"         IntervalIndex
//	"{0,2}"             SpecifiedIndex
func ParseIndex(s string) (Index, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case ":", "all":
		return All(), nil
	case "new", "newaxis":
		return NewAxis(), nil
	case "":
		return nil, fmt.Errorf("%w: empty selector", ErrSyntax)
	}

	if strings.HasPrefix(s, "{") {
		if !strings.HasSuffix(s, "}") {
			return nil, fmt.Errorf("%w: unterminated set %q", ErrSyntax, s)
		}
		body := strings.TrimSpace(s[1 : len(s)-1])
		if body == "" {
			return Specified(), nil
		}
		var members []int
		for _, part := range strings.Split(body, ",") {
			v, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil {
				return nil, fmt.Errorf("%w: set member %q", ErrSyntax, part)
			}
			members = append(members, v)
		}
		return Specified(members...), nil
	}

	if lo, hi, ok := strings.Cut(s, ":"); ok {
		lo, hi = strings.TrimSpace(lo), strings.TrimSpace(hi)
		start := 0
		if lo != "" {
			v, err := strconv.Atoi(lo)
			if err != nil {
				return nil, fmt.Errorf("%w: interval start %q", ErrSyntax, lo)
			}
			start = v
		}
		end, err := strconv.Atoi(hi)
		if err != nil {
			return nil, fmt.Errorf("%w: interval end %q", ErrSyntax, hi)
		}
		return Interval(start, end), nil
	}

	v, err := strconv.Atoi(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrSyntax, s)
	}
	return Point(v), nil
}

// ParseIndices parses a comma-separated selector list. Commas inside a
// {...} set do not split.
func ParseIndices(s string) ([]Index, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}

	var (
		out   []Index
		depth int
		start int
	)
	flush := func(end int) error {
		ix, err := ParseIndex(s[start:end])
		if err != nil {
			return err
		}
		out = append(out, ix)
		return nil
	}

	for i, r := range s {
		switch r {
		case '{':
			depth++
		case '}':
			depth--
		case ',':
			if depth == 0 {
				if err := flush(i); err != nil {
					return nil, err
				}
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, fmt.Errorf("%w: unbalanced braces in %q", ErrSyntax, s)
	}
	if err := flush(len(s)); err != nil {
		return nil, err
	}
	return out, nil
}
