// Package resolver implements the name resolver: given a source
// context and a decoded source map, it remaps each identifier-token
// component of a ScopeName through the map to recover the
// pre-minification identifier, falling back to the component's
// original minified text wherever the map has nothing to say.
package resolver

import (
	"strings"

	"github.com/standardbeagle/jsscopes/internal/scopename"
	"github.com/standardbeagle/jsscopes/internal/sourcectx"
	"github.com/standardbeagle/jsscopes/internal/sourcemap"
)

// NameResolver pairs a source context with a decoded source map to
// resolve ScopeName components back to their original identifiers.
// Immutable after construction; safe to share for read.
type NameResolver struct {
	ctx *sourcectx.SourceContext
	dm  *sourcemap.DecodedMap
}

// New builds a NameResolver from its two collaborators.
func New(ctx *sourcectx.SourceContext, dm *sourcemap.DecodedMap) *NameResolver {
	return &NameResolver{ctx: ctx, dm: dm}
}

// ResolveName renders name, replacing every identifier-token
// component with its original name when the source map has a
// near-exact match at that token's span, and keeping the component's
// minified text otherwise. Interpolation components (no span) always
// pass through verbatim.
func (r *NameResolver) ResolveName(name *scopename.Name) string {
	if name.Empty() {
		return ""
	}

	var b strings.Builder
	for _, comp := range name.Components() {
		span, hasSpan := comp.Span()
		if !hasSpan {
			b.WriteString(comp.Text())
			continue
		}
		b.WriteString(r.resolveComponent(comp.Text(), span))
	}
	return b.String()
}

// ResolveEntries rewrites a scope collector's raw entries, replacing
// each entry's Name with its fully resolved text (as a single
// Interpolation component, since downstream consumers only need the
// rendered string once resolution has run). Span.Start is preserved
// so the result can still be fed to scopeindex.New for sorting.
func (r *NameResolver) ResolveEntries(entries []scopename.Entry) []scopename.Entry {
	out := make([]scopename.Entry, len(entries))
	for i, e := range entries {
		if e.Name.Empty() {
			out[i] = e
			continue
		}
		resolved := r.ResolveName(e.Name)
		out[i] = scopename.Entry{
			Span: e.Span,
			Name: scopename.New(scopename.Interpolation(resolved)),
		}
	}
	return out
}

// resolveComponent implements try_map_token for a single
// identifier-token component.
func (r *NameResolver) resolveComponent(text string, span scopename.Span) string {
	line, col, ok := r.ctx.OffsetToPosition(span.Start)
	if !ok {
		return text
	}
	// Source map line/column are 0-indexed; SourceContext lines are
	// 1-indexed to match the convention spec.md uses for positions
	// exposed to callers. Convert to the map's 0-indexed line here.
	mapLine := line - 1

	tok, found := r.dm.LookupToken(mapLine, col)
	if !found {
		return text
	}
	if tok.DestLine != mapLine {
		return text
	}
	if tok.DestColumn < col-1 {
		return text
	}
	if !tok.HasName || tok.Name == "" {
		return text
	}
	return tok.Name
}
