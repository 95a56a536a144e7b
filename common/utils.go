package common

// Coalesce returns the first non-zero value from the provided values, or the zero value if all are zero.
//
// Parameters:
//   - values: a variadic list of values to check for non-zero status
//
// Returns:
//   - T: the first non-zero value from the input, or the zero value if all are zero
func Coalesce[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}

// MapRange builds a slice of length n by calling build for every index in order.
// Every element is produced by build before the slice is returned, so no element is ever observed in a
// partially constructed state.
//
// Parameters:
//   - n: the number of elements to build; values <= 0 yield an empty slice
//   - build: constructs the element for index i
//
// Returns:
//   - []T: the constructed slice
func MapRange[T any](n int, build func(i int) T) []T {
	if n <= 0 {
		return []T{}
	}
	out := make([]T, 0, n)
	for i := range n {
		out = append(out, build(i))
	}
	return out
}
