// Package stats holds named counters and emits them as a CSV
// artifact, one "name,value" line per counter in registration order.
package stats

import (
	"fmt"
	"io"
)

// Set is an ordered collection of named counters.
type Set struct {
	names []string
	vals  map[string]int64
}

// NewSet returns an empty counter set.
func NewSet() *Set {
	return &Set{vals: make(map[string]int64)}
}

// Register declares counters up front so they appear in the CSV in a
// fixed order even when never incremented.
func (s *Set) Register(names ...string) {
	for _, name := range names {
		if _, ok := s.vals[name]; !ok {
			s.names = append(s.names, name)
			s.vals[name] = 0
		}
	}
}

// Incr adds one to the counter, registering it if needed.
func (s *Set) Incr(name string) { s.Add(name, 1) }

// Add adds n to the counter, registering it if needed.
func (s *Set) Add(name string, n int64) {
	if _, ok := s.vals[name]; !ok {
		s.names = append(s.names, name)
	}
	s.vals[name] += n
}

// Get returns the counter value; unregistered counters read zero.
func (s *Set) Get(name string) int64 { return s.vals[name] }

// Names returns the counter names in registration order.
func (s *Set) Names() []string { return s.names }

// Snapshot copies the counters into a plain map.
func (s *Set) Snapshot() map[string]int64 {
	out := make(map[string]int64, len(s.vals))
	for k, v := range s.vals {
		out[k] = v
	}
	return out
}

// WriteCSV emits the counters as "name,value" lines.
func (s *Set) WriteCSV(w io.Writer) error {
	for _, name := range s.names {
		if _, err := fmt.Fprintf(w, "%s,%d\n", name, s.vals[name]); err != nil {
			return err
		}
	}
	return nil
}
