package timeline

import "github.com/vanderheijden86/buildline/pkg/model"

// Index maps names to rows. The raw entry name is the canonical key; the
// display name works as an alias when exactly one row carries it.
type Index struct {
	rows     []*Row
	resolver *model.Resolver
}

// NewIndex registers every row.
func NewIndex(rows []*Row) *Index {
	entries := make([]model.CompilationEntry, len(rows))
	for i, r := range rows {
		entries[i] = r.Entry
	}
	return &Index{rows: rows, resolver: model.NewResolver(entries)}
}

// Lookup returns the row for name. A miss is not an error.
func (x *Index) Lookup(name string) (*Row, bool) {
	if x == nil {
		return nil, false
	}
	i, ok := x.resolver.Resolve(name)
	if !ok {
		return nil, false
	}
	return x.rows[i], true
}

// Len returns the number of indexed rows.
func (x *Index) Len() int {
	if x == nil {
		return 0
	}
	return len(x.rows)
}
