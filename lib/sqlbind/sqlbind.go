// Package sqlbind accumulates bound parameter values for dynamically
// assembled SQL and hands out the matching positional placeholders.
package sqlbind

import "strconv"

// Binder collects parameter values in order. Numbering may start past
// zero so that a fragment can extend a statement that already carries
// parameters.
type Binder struct {
	offset int
	args   []any
}

func New(offset int) *Binder {
	return &Binder{offset: offset}
}

// Bind registers one value and returns its $N placeholder. This is the
// only way a value reaches the emitted SQL; the package has no API for
// inlining a literal.
func (b *Binder) Bind(v any) string {
	b.args = append(b.args, v)
	return "$" + strconv.Itoa(b.offset+len(b.args))
}

// Args returns the values bound so far, in placeholder order.
func (b *Binder) Args() []any {
	return b.args
}

// Len reports how many values are bound.
func (b *Binder) Len() int {
	return len(b.args)
}
