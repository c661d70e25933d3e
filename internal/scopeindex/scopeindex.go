// Package scopeindex builds the sorted, interned lookup structure that
// answers "what function contains this byte offset" in O(log n). It
// consumes the scope collector's raw entry list and is immutable once
// built: sort and intern happen eagerly in New, and Lookup never
// mutates state, so a single ScopeIndex is safe to share for read
// across goroutines.
package scopeindex

import (
	"sort"

	jsscopeserrors "github.com/standardbeagle/jsscopes/internal/errors"
	"github.com/standardbeagle/jsscopes/internal/idcodec"
	"github.com/standardbeagle/jsscopes/internal/scopename"
)

// Result is the outcome of a Lookup: exactly one of its accessors is
// meaningful, selected by Kind.
type Result struct {
	kind ResultKind
	text string
}

// ResultKind tags the variant of a Lookup Result.
type ResultKind int

const (
	// Unknown means no scope entry starts at or before the offset —
	// the offset is outside any collected function, i.e. global.
	Unknown ResultKind = iota
	// AnonymousScope means the containing function exists but scope
	// name inference produced no name for it.
	AnonymousScope
	// NamedScope means the containing function resolved to a name;
	// call Text to read it.
	NamedScope
)

// Kind reports which variant this Result is.
func (r Result) Kind() ResultKind { return r.kind }

// Text returns the resolved name. Only meaningful when Kind is
// NamedScope; returns "" otherwise.
func (r Result) Text() string { return r.text }

// maxNameIDs bounds the name table by the id width idcodec's base-63
// codec can round-trip without ambiguity. The codec itself has no
// fixed width — it encodes any uint64 — but the engine caps the table
// at a width that keeps encoded ids short and catches runaway input
// (e.g. a corrupt or adversarial source producing millions of unique
// names) as a constructible error rather than silent degradation.
const maxNameIDs = 1 << 32

// entry is one (start offset, name-id-or-sentinel) pair after sorting.
// nameID == -1 means the anonymous sentinel.
type entry struct {
	start  int
	nameID int
}

// ScopeIndex is the sorted, interned view of a scope collector's
// output. Zero value is not usable; build with New.
type ScopeIndex struct {
	entries []entry
	names   []string
}

// New builds a ScopeIndex from the scope collector's raw entries.
// Entries with an empty name are flattened to the anonymous sentinel.
// Fails only if the number of distinct non-empty names exceeds what
// the id space can represent.
func New(rawEntries []scopename.Entry) (*ScopeIndex, error) {
	sorted := make([]scopename.Entry, len(rawEntries))
	copy(sorted, rawEntries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Span.Start < sorted[j].Span.Start
	})

	idx := &ScopeIndex{
		entries: make([]entry, 0, len(sorted)),
	}
	interned := make(map[string]int)

	for _, e := range sorted {
		if e.Name.Empty() {
			idx.entries = append(idx.entries, entry{start: e.Span.Start, nameID: -1})
			continue
		}
		text := e.Name.Render()
		if text == "" {
			idx.entries = append(idx.entries, entry{start: e.Span.Start, nameID: -1})
			continue
		}
		id, ok := interned[text]
		if !ok {
			if len(idx.names) >= maxNameIDs {
				return nil, jsscopeserrors.NewScopeIndexOverflowError(len(idx.names)+1, maxNameIDs)
			}
			id = len(idx.names)
			idx.names = append(idx.names, text)
			interned[text] = id
		}
		idx.entries = append(idx.entries, entry{start: e.Span.Start, nameID: id})
	}

	// Encode/decode once per distinct id to keep idcodec exercised as
	// the table's id space, matching the compact-id convention used
	// elsewhere in the engine for interned tables.
	for i := range idx.names {
		encoded := idcodec.Encode(uint64(i))
		if _, err := idcodec.Decode(encoded); err != nil {
			return nil, jsscopeserrors.NewScopeIndexOverflowError(len(idx.names), maxNameIDs)
		}
	}

	return idx, nil
}

// Lookup returns the scope containing byteOffset: the largest entry
// with start <= byteOffset, or Unknown if byteOffset precedes every
// collected scope.
func (idx *ScopeIndex) Lookup(byteOffset int) Result {
	entries := idx.entries
	// sort.Search finds the first index where start > byteOffset; the
	// entry just before it is the largest with start <= byteOffset.
	i := sort.Search(len(entries), func(i int) bool {
		return entries[i].start > byteOffset
	})
	if i == 0 {
		return Result{kind: Unknown}
	}
	e := entries[i-1]
	if e.nameID < 0 {
		return Result{kind: AnonymousScope}
	}
	return Result{kind: NamedScope, text: idx.names[e.nameID]}
}

// Len reports the number of scope entries in the index.
func (idx *ScopeIndex) Len() int { return len(idx.entries) }

// Names returns a copy of the index's interned name table, for
// callers (internal/fuzzyname's search) that rank names rather than
// look up a single offset.
func (idx *ScopeIndex) Names() []string {
	out := make([]string, len(idx.names))
	copy(out, idx.names)
	return out
}

// EntryAt returns the start offset and result of the i'th entry in
// sorted order, for callers (the smcache writer) that need to
// serialize the index's full contents rather than query a single
// offset.
func (idx *ScopeIndex) EntryAt(i int) (start int, result Result) {
	e := idx.entries[i]
	if e.nameID < 0 {
		return e.start, Result{kind: AnonymousScope}
	}
	return e.start, Result{kind: NamedScope, text: idx.names[e.nameID]}
}
