// Package ptr provides pointer helpers for optional fields, where a
// nil pointer means "inherit" and a set pointer overrides even with a
// zero value.
package ptr

// To returns a pointer to the given value.
func To[T any](v T) *T {
	return &v
}

// Deref returns the value ptr points to, or def when ptr is nil.
func Deref[T any](ptr *T, def T) T {
	if ptr != nil {
		return *ptr
	}
	return def
}
