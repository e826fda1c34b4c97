package provider

// List is the ordered set of providers built at startup. Indices are stable
// for the lifetime of the process.
type List struct {
	providers []Provider
}

// NewList copies the given providers into a new List. The caller's slice can
// be reused afterwards without affecting the list.
func NewList(providers ...Provider) *List {
	p := make([]Provider, len(providers))
	copy(p, providers)
	return &List{providers: p}
}

// Len returns the number of providers.
func (l *List) Len() int {
	if l == nil {
		return 0
	}
	return len(l.providers)
}

// At returns the provider at index i. It panics if i is out of range.
func (l *List) At(i int) Provider {
	return l.providers[i]
}

// Names returns provider names in list order.
func (l *List) Names() []string {
	names := make([]string, 0, l.Len())
	for i := 0; i < l.Len(); i++ {
		names = append(names, l.providers[i].Name())
	}
	return names
}
