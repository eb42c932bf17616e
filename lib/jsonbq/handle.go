package jsonbq

// Handle is the query-composition handle supplied by the record store.
// Implementations must be immutable: Where returns a new handle equal to
// the receiver plus one AND-ed predicate, leaving the receiver usable
// and unchanged. The builder never mutates a handle it is given.
type Handle interface {
	// Where ANDs one SQL boolean expression onto the query, returning
	// the extended handle. Placeholders in expr are numbered starting
	// at BoundArgs()+1.
	Where(expr string, args ...any) Handle

	// BoundArgs reports how many parameters the query already binds.
	BoundArgs() int
}
