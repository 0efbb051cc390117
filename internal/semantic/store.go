package semantic

import "clinlint/internal/syntax"

// Range is a byte span, used by VarsLocations and VarLocationsIn to
// remember where each variable name occurred; the statement-scoped
// VarLocationsIn table is what lets the safety checker's caller emit one
// diagnostic per occurrence (spec §4.3 "Report").
type Range struct {
	StartByte int
	EndByte   int
}

// Store is the semantic store (spec §3): a map from node id to attribute
// bundle, plus the id-set bookkeeping that garbage-collects bundles for
// nodes that no longer exist after a pass.
type Store struct {
	bundles map[syntax.NodeID]*Bundle

	seenPrevious map[syntax.NodeID]struct{}
	seenCurrent  map[syntax.NodeID]struct{}

	varsLocations map[string][]Range
}

// NewStore creates an empty semantic store.
func NewStore() *Store {
	return &Store{
		bundles:       make(map[syntax.NodeID]*Bundle),
		seenPrevious:  make(map[syntax.NodeID]struct{}),
		seenCurrent:   make(map[syntax.NodeID]struct{}),
		varsLocations: make(map[string][]Range),
	}
}

// Get returns the cached bundle for id, if any.
func (s *Store) Get(id syntax.NodeID) (*Bundle, bool) {
	b, ok := s.bundles[id]
	return b, ok
}

// Set stores the bundle for id, overwriting any previous entry.
func (s *Store) Set(id syntax.NodeID, b *Bundle) {
	s.bundles[id] = b
}

// BeginPass rotates seen_current into seen_previous and starts a fresh
// seen_current for the upcoming walk (spec §3 "seen_previous, seen_current").
func (s *Store) BeginPass() {
	s.seenPrevious = s.seenCurrent
	s.seenCurrent = make(map[syntax.NodeID]struct{}, len(s.seenPrevious))
	s.varsLocations = make(map[string][]Range)
}

// Visit marks id as present in the current pass's tree.
func (s *Store) Visit(id syntax.NodeID) {
	s.seenCurrent[id] = struct{}{}
}

// FinishPass removes every bundle whose id was seen in the previous pass
// but not the current one (spec §5 "Memory": retired = seen_previous \
// seen_current).
func (s *Store) FinishPass() {
	for id := range s.seenPrevious {
		if _, ok := s.seenCurrent[id]; !ok {
			delete(s.bundles, id)
		}
	}
}

// Len reports the number of cached bundles, for the garbage-collection
// testable property |attribute_map| = |nodes(current_tree)|.
func (s *Store) Len() int { return len(s.bundles) }

// RecordVarLocation appends an occurrence range for a variable name.
func (s *Store) RecordVarLocation(name string, r Range) {
	s.varsLocations[name] = append(s.varsLocations[name], r)
}

// VarsLocations returns the name->occurrence-ranges side table built during
// the most recent pass, across the whole document.
func (s *Store) VarsLocations() map[string][]Range { return s.varsLocations }

// VarLocationsIn scopes variable occurrences to one statement's subtree:
// variable names are statement-local in this language, so a diagnostic
// for an unsafe name in one statement must not pick up occurrences of the
// same name from an unrelated statement elsewhere in the document.
func VarLocationsIn(stmt *syntax.Node) map[string][]Range {
	out := make(map[string][]Range)
	for _, n := range stmt.Walk() {
		if n.Kind() == syntax.KindVariable {
			out[n.Text()] = append(out[n.Text()], Range{StartByte: n.StartByte(), EndByte: n.EndByte()})
		}
	}
	return out
}
