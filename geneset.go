package netdiff

import "sort"

// GeneSet is a set of gene identifiers.
type GeneSet map[string]struct{}

// NewGeneSet builds a set from any number of id slices.
func NewGeneSet(ids ...[]string) GeneSet {
	out := make(GeneSet)
	for _, group := range ids {
		for _, id := range group {
			out.Add(id)
		}
	}
	return out
}

func (s GeneSet) Add(id string) { s[id] = struct{}{} }

func (s GeneSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

func (s GeneSet) Len() int { return len(s) }

// Slice returns the members in sorted order.
func (s GeneSet) Slice() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
