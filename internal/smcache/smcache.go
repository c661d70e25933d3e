// Package smcache implements the on-disk cache file format: a
// magic-prefixed binary header, a sorted table of (start_offset,
// name_id_or_sentinel) records, and a flat string table for interned
// names. The record layout mirrors the getsentry/js-source-scopes
// project's SmCache header (magic/version/num_mappings/string_bytes,
// little-endian, sentinel ids for anonymous/global scopes); the
// Go-side serialization itself follows this codebase's own binary
// snapshot helper, which reaches for encoding/binary rather than a
// third-party serialization library for a fixed little-endian layout.
package smcache

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"sort"

	jsscopeserrors "github.com/standardbeagle/jsscopes/internal/errors"
	"github.com/standardbeagle/jsscopes/internal/scopeindex"
)

// magic is "SMCA" read as a little-endian uint32, matching the
// original format's file preamble.
const magic uint32 = 0x41434d53

const formatVersion uint32 = 1

// Sentinels mirror raw.rs: anonymous and unknown share the top of the
// uint32 space so a 32-bit id field never collides with a real
// interned name index for any realistic name table.
const (
	sentinelUnknown   uint32 = 0xFFFFFFFF
	sentinelAnonymous uint32 = 0xFFFFFFFE
)

// Write serializes idx to w in the SmCache binary layout.
func Write(w io.Writer, idx *scopeindex.ScopeIndex) error {
	bw := bufio.NewWriter(w)

	n := idx.Len()
	entries := make([]EntryView, n)
	var stringTable []byte
	seen := make(map[string]uint32)
	for i := 0; i < n; i++ {
		start, res := idx.EntryAt(i)
		entries[i] = EntryView{Start: start, Kind: res.Kind(), Name: res.Text()}
		if res.Kind() != scopeindex.NamedScope {
			continue
		}
		if _, ok := seen[res.Text()]; ok {
			continue
		}
		seen[res.Text()] = uint32(len(stringTable))
		stringTable = append(stringTable, []byte(res.Text())...)
		stringTable = append(stringTable, 0) // NUL-terminated, like a C string table
	}

	header := struct {
		Magic        uint32
		Version      uint32
		NumMappings  uint32
		StringBytes  uint32
		Reserved     [16]byte
	}{
		Magic:       magic,
		Version:     formatVersion,
		NumMappings: uint32(len(entries)),
		StringBytes: uint32(len(stringTable)),
	}
	if err := binary.Write(bw, binary.LittleEndian, header); err != nil {
		return jsscopeserrors.NewFileError("write-header", "", err)
	}

	for _, e := range entries {
		rec := struct {
			Start  uint32
			NameID uint32
		}{Start: uint32(e.Start)}
		switch e.Kind {
		case scopeindex.NamedScope:
			rec.NameID = seen[e.Name]
		case scopeindex.AnonymousScope:
			rec.NameID = sentinelAnonymous
		default:
			rec.NameID = sentinelUnknown
		}
		if err := binary.Write(bw, binary.LittleEndian, rec); err != nil {
			return jsscopeserrors.NewFileError("write-record", "", err)
		}
	}

	if _, err := bw.Write(stringTable); err != nil {
		return jsscopeserrors.NewFileError("write-strings", "", err)
	}
	return bw.Flush()
}

// EntryView is the minimal per-entry shape Write needs; Write builds
// one per entry from ScopeIndex.EntryAt, in the index's sorted order.
type EntryView struct {
	Start int
	Kind  scopeindex.ResultKind
	Name  string
}

// Cache is a read-only view over a decoded SmCache file.
type Cache struct {
	records []record
	strings []byte
}

type record struct {
	start  uint32
	nameID uint32
}

// Read decodes a SmCache file previously produced by Write.
func Read(r io.Reader) (*Cache, error) {
	var header struct {
		Magic        uint32
		Version      uint32
		NumMappings  uint32
		StringBytes  uint32
		Reserved     [16]byte
	}
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, jsscopeserrors.NewFileError("read-header", "", err)
	}
	if header.Magic != magic {
		return nil, jsscopeserrors.NewFileError("read-header", "", fmt.Errorf("bad magic %#x", header.Magic))
	}
	if header.Version != formatVersion {
		return nil, jsscopeserrors.NewFileError("read-header", "", fmt.Errorf("unsupported version %d", header.Version))
	}

	c := &Cache{records: make([]record, header.NumMappings)}
	for i := range c.records {
		var rec struct {
			Start  uint32
			NameID uint32
		}
		if err := binary.Read(r, binary.LittleEndian, &rec); err != nil {
			return nil, jsscopeserrors.NewFileError("read-record", "", err)
		}
		c.records[i] = record{start: rec.Start, nameID: rec.NameID}
	}

	c.strings = make([]byte, header.StringBytes)
	if header.StringBytes > 0 {
		if _, err := io.ReadFull(r, c.strings); err != nil {
			return nil, jsscopeserrors.NewFileError("read-strings", "", err)
		}
	}
	return c, nil
}

// LookupResult mirrors scopeindex.Result's three-way outcome over the
// decoded on-disk form, without depending on that package's
// unexported fields.
type LookupResult struct {
	Kind scopeindex.ResultKind
	Name string
}

// Lookup finds the record covering byteOffset: the largest record
// with start <= byteOffset, matching ScopeIndex.Lookup's semantics.
// Records are stored sorted by start, the order Write receives them
// in from a built ScopeIndex.
func (c *Cache) Lookup(byteOffset uint32) LookupResult {
	i := sort.Search(len(c.records), func(i int) bool {
		return c.records[i].start > byteOffset
	})
	if i == 0 {
		return LookupResult{Kind: scopeindex.Unknown}
	}
	rec := c.records[i-1]
	switch rec.nameID {
	case sentinelUnknown:
		return LookupResult{Kind: scopeindex.Unknown}
	case sentinelAnonymous:
		return LookupResult{Kind: scopeindex.AnonymousScope}
	default:
		return LookupResult{Kind: scopeindex.NamedScope, Name: c.nameAt(rec.nameID)}
	}
}

// nameAt reads the NUL-terminated string starting at the given byte
// offset into the string table.
func (c *Cache) nameAt(offset uint32) string {
	if offset >= uint32(len(c.strings)) {
		return ""
	}
	end := offset
	for end < uint32(len(c.strings)) && c.strings[end] != 0 {
		end++
	}
	return string(c.strings[offset:end])
}
