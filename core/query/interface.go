package query

// FilterCompiler translates a QueryFilter into a backend-specific WHERE clause
// fragment and its positional parameters. Implementations live next to each
// SQL backend because placeholder and JSON accessor syntax differ per dialect.
type FilterCompiler interface {
	// CompileFilter returns a boolean SQL expression for filter. argOffset is the
	// number of parameters already bound by the surrounding statement.
	CompileFilter(filter *QueryFilter, argOffset int) (string, []any, error)
}
