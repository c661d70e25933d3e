// Package sourcemap decodes source map v3 documents (including index
// maps and Hermes-style maps, which reuse the same wire shape) into a
// DecodedMap that answers lookup_token(line, column) for the name
// resolver. No source-map library exists anywhere in the reference
// corpus this engine was modeled on, so this is a small hand-written
// decoder over encoding/json plus the standard base64-VLQ mapping
// format — the only two pieces of decode logic a v3 map actually
// needs.
package sourcemap

import (
	"encoding/json"
	"sort"

	jsscopeserrors "github.com/standardbeagle/jsscopes/internal/errors"
)

// Token is one decoded mapping: a destination position in the
// generated (minified) file, optionally carrying the original name
// bound at that position.
type Token struct {
	DestLine   int // 0-indexed, matches source map convention
	DestColumn int // 0-indexed UTF-16 code units
	Name       string
	HasName    bool
}

// DecodedMap is a flattened, query-ready view of a source map: all
// sections (if any) have been merged and every line's tokens sorted
// by column so LookupToken can binary search.
type DecodedMap struct {
	// lines[n] holds the tokens for destination line n, sorted by
	// DestColumn ascending.
	lines map[int][]Token
}

// rawMap mirrors the wire shape of a standard (non-index) v3 map.
type rawMap struct {
	Version    int      `json:"version"`
	Sources    []string `json:"sources"`
	Names      []string `json:"names"`
	Mappings   string   `json:"mappings"`
	Sections   []rawSection `json:"sections"`
}

type rawSection struct {
	Offset struct {
		Line   int `json:"line"`
		Column int `json:"column"`
	} `json:"offset"`
	Map json.RawMessage `json:"map"`
}

// Decode parses a source map document (standard or index map) and
// returns a flattened DecodedMap. Hermes maps use the same top-level
// shape (version/sources/names/mappings), so no separate code path is
// needed for them.
func Decode(data []byte) (*DecodedMap, error) {
	var raw rawMap
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, jsscopeserrors.NewSourceMapError(err)
	}

	dm := &DecodedMap{lines: make(map[int][]Token)}

	if len(raw.Sections) > 0 {
		for _, sec := range raw.Sections {
			sub, err := Decode(sec.Map)
			if err != nil {
				return nil, err
			}
			mergeSectioned(dm, sub, sec.Offset.Line, sec.Offset.Column)
		}
	} else {
		if err := decodeMappings(dm, raw.Mappings, raw.Names, 0, 0); err != nil {
			return nil, err
		}
	}

	for line := range dm.lines {
		toks := dm.lines[line]
		sort.Slice(toks, func(i, j int) bool { return toks[i].DestColumn < toks[j].DestColumn })
		dm.lines[line] = toks
	}

	return dm, nil
}

// mergeSectioned copies a decoded sub-map's tokens into dm, shifting
// every token by the section's offset. Column shift only applies to
// the sub-map's first line, matching the index-map spec's semantics
// for where a section's (0,0) lands in the parent coordinate space.
func mergeSectioned(dm *DecodedMap, sub *DecodedMap, lineOffset, colOffset int) {
	for line, toks := range sub.lines {
		destLine := line + lineOffset
		for _, t := range toks {
			shifted := t
			shifted.DestLine = destLine
			if line == 0 {
				shifted.DestColumn = t.DestColumn + colOffset
			}
			dm.lines[destLine] = append(dm.lines[destLine], shifted)
		}
	}
}

// decodeMappings walks the semicolon/comma VLQ "mappings" string,
// tracking the five running fields the spec defines (dest column,
// source index, source line, source column, name index) and emitting
// one Token per segment that carries at least a destination position.
func decodeMappings(dm *DecodedMap, mappings string, names []string, lineOffset, colOffset int) error {
	line := 0
	genCol := 0
	nameIdx := 0

	i := 0
	for i < len(mappings) {
		switch mappings[i] {
		case ';':
			line++
			genCol = 0
			i++
			continue
		case ',':
			i++
			continue
		}

		fields, n, err := readSegment(mappings, i)
		if err != nil {
			return err
		}
		i = n

		genCol += fields[0]
		tok := Token{DestLine: line + lineOffset, DestColumn: genCol}
		if line == 0 {
			tok.DestColumn = genCol + colOffset
		}

		// fields[1..3] are source index/line/column deltas; the name
		// resolver only needs the name, so they are consumed but not
		// retained.
		if len(fields) >= 5 {
			nameIdx += fields[4]
			if nameIdx >= 0 && nameIdx < len(names) {
				tok.Name = names[nameIdx]
				tok.HasName = true
			}
		}

		dm.lines[tok.DestLine] = append(dm.lines[tok.DestLine], tok)
	}

	return nil
}

// readSegment decodes one comma-separated VLQ segment starting at
// mappings[start], stopping at the next ',' or ';' or end of string.
// Returns the decoded field deltas and the index just past the
// segment.
func readSegment(mappings string, start int) ([]int, int, error) {
	var fields []int
	i := start
	for i < len(mappings) && mappings[i] != ',' && mappings[i] != ';' {
		val, n, err := decodeVLQ(mappings, i)
		if err != nil {
			return nil, 0, err
		}
		fields = append(fields, val)
		i = n
	}
	return fields, i, nil
}

const base64VLQChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

var base64VLQDecodeTable = buildVLQDecodeTable()

func buildVLQDecodeTable() [256]int8 {
	var t [256]int8
	for i := range t {
		t[i] = -1
	}
	for i := 0; i < len(base64VLQChars); i++ {
		t[base64VLQChars[i]] = int8(i)
	}
	return t
}

// decodeVLQ decodes one base64-VLQ value starting at mappings[start].
// Each base64 digit carries 5 data bits plus a continuation bit; the
// least significant data bit of the first digit is the sign.
func decodeVLQ(mappings string, start int) (value int, next int, err error) {
	shift := 0
	result := 0
	i := start
	for {
		if i >= len(mappings) {
			return 0, 0, jsscopeserrors.NewSourceMapError(errVLQTruncated)
		}
		c := base64VLQDecodeTable[mappings[i]]
		if c < 0 {
			return 0, 0, jsscopeserrors.NewSourceMapError(errVLQBadChar)
		}
		i++
		digit := int(c)
		cont := digit & 0x20
		result += (digit & 0x1f) << shift
		shift += 5
		if cont == 0 {
			break
		}
	}
	if result&1 != 0 {
		value = -(result >> 1)
	} else {
		value = result >> 1
	}
	return value, i, nil
}

type vlqError string

func (e vlqError) Error() string { return string(e) }

const (
	errVLQTruncated = vlqError("truncated VLQ segment")
	errVLQBadChar   = vlqError("invalid VLQ character")
)

// LookupToken finds the token covering (line, column) in the
// generated/minified file: the token on that line with the largest
// DestColumn <= column, per the standard source-map convention that a
// mapping applies from its column up to (but not including) the next
// mapping's column. Returns ok=false if the line has no tokens or
// column precedes the first one.
func (dm *DecodedMap) LookupToken(line, column int) (Token, bool) {
	toks := dm.lines[line]
	if len(toks) == 0 {
		return Token{}, false
	}
	i := sort.Search(len(toks), func(i int) bool { return toks[i].DestColumn > column })
	if i == 0 {
		return Token{}, false
	}
	return toks[i-1], true
}
