package sparse

import (
	"fmt"
	"slices"

	"github.com/born-ml/sparse/internal/tensor"
)

type axisKind uint8

const (
	axisPoint axisKind = iota
	axisInterval
	axisAll
	axisNew
	axisSpecified
)

// axisMap is one resolved selector: how a source axis (or none, for an
// inserted axis) becomes a destination axis (or none, for a fixed point).
type axisMap struct {
	kind  axisKind
	src   int   // Source axis, -1 for axisNew
	dst   int   // Destination axis, -1 for axisPoint
	start int   // Fixed index for axisPoint, offset for axisInterval
	size  int   // Destination extent
	set   []int // Sorted members for axisSpecified
}

// resolution maps coordinates of a source shape onto a selected
// destination shape. It is immutable once built.
type resolution struct {
	axes    []axisMap
	shape   tensor.Shape // Destination shape
	srcRank int
	hidden  int // Number of inserted axes
}

func (r *resolution) add(a axisMap) {
	switch a.kind {
	case axisPoint:
		a.dst = -1
	case axisNew:
		a.src = -1
		a.size = 1
		r.hidden++
		fallthrough
	default:
		a.dst = len(r.shape)
		r.shape = append(r.shape, a.size)
	}
	r.axes = append(r.axes, a)
}

// resolve validates selectors against shape. Missing trailing selectors
// select whole axes.
func resolve(shape tensor.Shape, idx []Index) (*resolution, error) {
	consumed := 0
	for _, ix := range idx {
		if _, ok := ix.(NewAxisIndex); !ok {
			consumed++
		}
	}
	if consumed > len(shape) {
		return nil, &RankError{Op: "get", Want: len(shape), Got: consumed}
	}

	r := &resolution{srcRank: len(shape), shape: tensor.Shape{}}
	axis := 0
	for pos, ix := range idx {
		switch s := ix.(type) {
		case NewAxisIndex:
			r.add(axisMap{kind: axisNew})
			continue
		case PointIndex:
			if s.I < 0 || s.I >= shape[axis] {
				return nil, &IndexError{Op: "get", Axis: axis, Index: s.I, Bound: shape[axis]}
			}
			r.add(axisMap{kind: axisPoint, src: axis, start: s.I})
		case IntervalIndex:
			if s.Hi < 0 || s.Hi > shape[axis] {
				return nil, &IndexError{Op: "get", Axis: axis, Index: s.Hi, Bound: shape[axis] + 1}
			}
			if s.Lo < 0 || s.Lo > s.Hi {
				return nil, &IndexError{Op: "get", Axis: axis, Index: s.Lo, Bound: s.Hi + 1}
			}
			r.add(axisMap{kind: axisInterval, src: axis, start: s.Lo, size: s.Hi - s.Lo})
		case AllIndex:
			r.add(axisMap{kind: axisAll, src: axis, size: shape[axis]})
		case SpecifiedIndex:
			set := normalizeSet(s.Indices)
			for _, v := range set {
				if v < 0 || v >= shape[axis] {
					return nil, &IndexError{Op: "get", Axis: axis, Index: v, Bound: shape[axis]}
				}
			}
			r.add(axisMap{kind: axisSpecified, src: axis, size: len(set), set: set})
		default:
			return nil, fmt.Errorf("get: unsupported selector %T at position %d", ix, pos)
		}
		axis++
	}
	for ; axis < len(shape); axis++ {
		r.add(axisMap{kind: axisAll, src: axis, size: shape[axis]})
	}
	return r, nil
}

// project writes the destination coordinate of src into dst and reports
// whether src lies inside the selection.
func (r *resolution) project(src, dst []int) bool {
	for _, a := range r.axes {
		switch a.kind {
		case axisPoint:
			if src[a.src] != a.start {
				return false
			}
		case axisInterval:
			v := src[a.src]
			if v < a.start || v >= a.start+a.size {
				return false
			}
			dst[a.dst] = v - a.start
		case axisAll:
			dst[a.dst] = src[a.src]
		case axisSpecified:
			k, ok := slices.BinarySearch(a.set, src[a.src])
			if !ok {
				return false
			}
			dst[a.dst] = k
		case axisNew:
			dst[a.dst] = 0
		}
	}
	return true
}

// unproject maps a destination coordinate back to the source space.
func (r *resolution) unproject(dst []int) ([]int, error) {
	if err := checkCoordinate("translate", r.shape, dst); err != nil {
		return nil, err
	}
	src := make([]int, r.srcRank)
	for _, a := range r.axes {
		switch a.kind {
		case axisPoint:
			src[a.src] = a.start
		case axisInterval:
			src[a.src] = a.start + dst[a.dst]
		case axisAll:
			src[a.src] = dst[a.dst]
		case axisSpecified:
			src[a.src] = a.set[dst[a.dst]]
		}
	}
	return src, nil
}

// compose returns the resolution equivalent to applying inner and then
// outer, where outer was resolved against inner's destination shape.
func compose(inner, outer *resolution) (*resolution, error) {
	byDst := make([]*axisMap, len(inner.shape))
	r := &resolution{srcRank: inner.srcRank, shape: tensor.Shape{}}
	for i := range inner.axes {
		a := &inner.axes[i]
		if a.kind == axisPoint {
			r.add(*a)
			continue
		}
		byDst[a.dst] = a
	}

	for _, o := range outer.axes {
		if o.kind == axisNew {
			r.add(axisMap{kind: axisNew})
			continue
		}
		in := byDst[o.src]

		switch in.kind {
		case axisNew:
			// The parent axis has extent 1, so any selection over it keeps
			// either the inserted axis or nothing.
			switch o.kind {
			case axisPoint:
			case axisAll:
				r.add(axisMap{kind: axisNew})
			default:
				if o.size == 0 {
					return nil, &IndexError{Op: "get", Axis: o.src, Index: 0, Bound: 0}
				}
				r.add(axisMap{kind: axisNew})
			}

		case axisAll:
			o.src = in.src
			r.add(o)

		case axisInterval:
			a := axisMap{src: in.src}
			switch o.kind {
			case axisPoint:
				a.kind, a.start = axisPoint, in.start+o.start
			case axisAll:
				a.kind, a.start, a.size = axisInterval, in.start, in.size
			case axisInterval:
				a.kind, a.start, a.size = axisInterval, in.start+o.start, o.size
			case axisSpecified:
				a.kind, a.size = axisSpecified, o.size
				a.set = make([]int, len(o.set))
				for k, v := range o.set {
					a.set[k] = in.start + v
				}
			}
			r.add(a)

		case axisSpecified:
			a := axisMap{src: in.src}
			switch o.kind {
			case axisPoint:
				a.kind, a.start = axisPoint, in.set[o.start]
			case axisAll:
				a.kind, a.size, a.set = axisSpecified, in.size, in.set
			case axisInterval:
				a.kind, a.size = axisSpecified, o.size
				a.set = slices.Clone(in.set[o.start : o.start+o.size])
			case axisSpecified:
				a.kind, a.size = axisSpecified, o.size
				a.set = make([]int, len(o.set))
				for k, v := range o.set {
					a.set[k] = in.set[v]
				}
			}
			r.add(a)
		}
	}
	return r, nil
}

// selectors renders the resolution as a selector list that resolves to
// the same mapping against the source shape.
func (r *resolution) selectors() []Index {
	bySrc := make([]axisMap, r.srcRank)
	var inserted []axisMap
	for _, a := range r.axes {
		if a.kind == axisNew {
			inserted = append(inserted, a)
			continue
		}
		bySrc[a.src] = a
	}

	out := make([]Index, 0, len(r.axes))
	for _, a := range bySrc {
		if a.kind != axisPoint {
			for len(inserted) > 0 && inserted[0].dst < a.dst {
				out = append(out, NewAxis())
				inserted = inserted[1:]
			}
		}
		out = append(out, a.index())
	}
	for range inserted {
		out = append(out, NewAxis())
	}
	return out
}

func (a axisMap) index() Index {
	switch a.kind {
	case axisPoint:
		return Point(a.start)
	case axisInterval:
		return Interval(a.start, a.start+a.size)
	case axisSpecified:
		return SpecifiedIndex{Indices: slices.Clone(a.set)}
	case axisNew:
		return NewAxis()
	default:
		return All()
	}
}
