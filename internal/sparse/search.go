package sparse

import "sort"

// compareCoords orders two coordinates of equal rank lexicographically,
// axis 0 first. This is the row-major flattening order.
func compareCoords(a, b []int) int {
	for i := range a {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// coordAt returns entry i of a flat coordinate buffer (aliases the buffer).
func coordAt(indices []int, rank, i int) []int {
	return indices[i*rank : (i+1)*rank]
}

// searchIndices binary-searches n sorted coordinates for coord and returns
// the position where it is, or where it would be inserted.
func searchIndices(indices []int, rank, n int, coord []int) (int, bool) {
	pos := sort.Search(n, func(i int) bool {
		return compareCoords(coordAt(indices, rank, i), coord) >= 0
	})
	return pos, pos < n && compareCoords(coordAt(indices, rank, pos), coord) == 0
}

// isStrictlySorted reports whether n coordinates are strictly increasing.
func isStrictlySorted(indices []int, rank, n int) bool {
	for i := 1; i < n; i++ {
		if compareCoords(coordAt(indices, rank, i-1), coordAt(indices, rank, i)) >= 0 {
			return false
		}
	}
	return true
}

// Locate returns the physical position of coord in the tensor's storage.
// The second result is false if no value is stored at coord.
func (c *COO[T]) Locate(coord []int) (int, bool) {
	if len(coord) != len(c.shape) {
		return -1, false
	}
	pos, found := searchIndices(c.indices, len(c.shape), len(c.values), coord)
	if !found {
		return -1, false
	}
	return pos, true
}
