// Package indexer builds the tag and mention indexes of a book: it scans
// every chapter for markers, rewrites them into links and renders one index
// chapter per marker kind.
package indexer

import "sort"

// Table maps a marker name to the ids of the documents it occurs in.
// An id appears once per occurrence, in processing order.
type Table map[string][]string

// Add records one occurrence of name in document id.
func (t Table) Add(name, id string) {
	t[name] = append(t[name], id)
}

// Names returns the marker names in sorted order.
func (t Table) Names() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Occurrences returns the total number of recorded occurrences.
func (t Table) Occurrences() int {
	n := 0
	for _, ids := range t {
		n += len(ids)
	}
	return n
}
