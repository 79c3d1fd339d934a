package sparse

import (
	"fmt"
	"io"
	"strings"
)

// String summarizes the tensor, e.g. "COO[float32](shape=[3 3], nnz=2)".
func (c *COO[T]) String() string {
	return fmt.Sprintf("COO[%T](shape=%v, nnz=%d)", *new(T), c.shape, len(c.values))
}

// String summarizes the view and its selectors.
func (v *View[T]) String() string {
	return fmt.Sprintf("View[%T](shape=%v, nnz=%d, index=[%s])", *new(T), v.local.shape, len(v.values), FormatIndices(v.selectors))
}

// Fprint writes one "coordinate value" line per stored entry.
func Fprint[T Numeric](w io.Writer, t Tensor[T]) error {
	rank := t.Rank()
	indices := t.Indices()
	var b strings.Builder
	for i, v := range t.Values() {
		b.Reset()
		b.WriteByte('(')
		for axis, c := range coordAt(indices, rank, i) {
			if axis > 0 {
				b.WriteByte(',')
			}
			fmt.Fprintf(&b, "%d", c)
		}
		b.WriteByte(')')
		if _, err := fmt.Fprintf(w, "%s %v\n", b.String(), v); err != nil {
			return err
		}
	}
	return nil
}
