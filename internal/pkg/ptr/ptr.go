package ptr

func Of[T any](v T) *T {
	return &v
}

// Deref returns the zero value for nil.
func Deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

// NilIfZero maps the zero value to nil, e.g. an empty query string filter.
func NilIfZero[T comparable](v T) *T {
	var zero T
	if v == zero {
		return nil
	}
	return &v
}
