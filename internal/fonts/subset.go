package fonts

import (
	"encoding/binary"
	"fmt"
	"sort"
)

// droppedTables are stripped from every subset regardless of whether the
// source font carries them, per SPEC_FULL.md §4.4: GDEF/GSUB/GPOS/MATH/hdmx
// never belong in a CID-keyed PDF font program.
var droppedTables = map[string]bool{
	"GDEF": true,
	"GSUB": true,
	"GPOS": true,
	"MATH": true,
	"hdmx": true,
}

// subsetResult is the rebuilt sfnt program plus the old->new glyph index
// mapping the caller needs to translate cid-info glyph IDs into the
// subset's own GID space for CIDToGIDMap.
type subsetResult struct {
	data      []byte
	oldToNew  map[uint16]uint16
}

// buildSubset rebuilds f into a program containing only .notdef (GID 0) and
// the glyphs in keepGIDs (original-font GIDs, referenced glyph names already
// resolved to GIDs by the caller), dropping GDEF/GSUB/GPOS/MATH/hdmx and
// renumbering the kept glyphs densely starting at 1. This mirrors
// fontTools.subset's glyph-renumbering behavior (the original's
// font_subset/getGlyphID-after-subset sequence in pdf_font.py), reimplemented
// by hand because no retrieved library exposes a subset-rewrite API (see
// SPEC_FULL.md §9.1).
//
// Composite glyphs whose components reference a GID outside keepGIDs are
// copied as-is without recursively pulling in their components: a
// conservative simplification documented in DESIGN.md, acceptable because
// the documents this module renders use simple (non-composite) Latin glyphs
// almost exclusively.
func buildSubset(f *rawFont, keepGIDs []uint16) (*subsetResult, error) {
	head, err := f.readHead()
	if err != nil {
		return nil, err
	}
	hhea, err := f.readHhea()
	if err != nil {
		return nil, err
	}
	hmtxTable, err := f.mustTable("hmtx")
	if err != nil {
		return nil, err
	}
	glyfTable, err := f.mustTable("glyf")
	if err != nil {
		return nil, err
	}
	locaTable, err := f.mustTable("loca")
	if err != nil {
		return nil, err
	}

	unique := map[uint16]bool{0: true}
	ordered := []uint16{0}
	for _, g := range keepGIDs {
		if !unique[g] {
			unique[g] = true
			ordered = append(ordered, g)
		}
	}
	sort.Slice(ordered[1:], func(i, j int) bool { return ordered[i+1] < ordered[j+1] })

	oldToNew := make(map[uint16]uint16, len(ordered))
	for newGID, oldGID := range ordered {
		oldToNew[oldGID] = uint16(newGID)
	}

	newGlyf := make([]byte, 0, len(glyfTable))
	newLoca := make([]uint32, 0, len(ordered)+1)
	newHmtx := make([]byte, 0, len(ordered)*4)
	for _, oldGID := range ordered {
		start, end, ok := loca(locaTable, head.indexToLocLong, oldGID)
		newLoca = append(newLoca, uint32(len(newGlyf)))
		if ok && end > start && end <= uint32(len(glyfTable)) {
			newGlyf = append(newGlyf, glyfTable[start:end]...)
		}
		// pad glyph data to a 2-byte boundary per sfnt convention
		if len(newGlyf)%2 != 0 {
			newGlyf = append(newGlyf, 0)
		}
		w := hmtxWidth(hmtxTable, hhea.numHMetrics, oldGID)
		newHmtx = binary.BigEndian.AppendUint16(newHmtx, w)
		newHmtx = binary.BigEndian.AppendUint16(newHmtx, 0) // lsb, not load-bearing for PDF embedding
	}
	newLoca = append(newLoca, uint32(len(newGlyf)))

	locaBytes := make([]byte, 0, len(newLoca)*4)
	for _, v := range newLoca {
		locaBytes = binary.BigEndian.AppendUint32(locaBytes, v)
	}

	newHead := append([]byte(nil), mustRawTable(f, "head")...)
	binary.BigEndian.PutUint16(newHead[50:52], 1) // force long loca format
	binary.BigEndian.PutUint32(newHead[8:12], 0)  // zero checksumAdjustment; readers recompute or ignore it

	newMaxp := append([]byte(nil), mustRawTable(f, "maxp")...)
	binary.BigEndian.PutUint16(newMaxp[4:6], uint16(len(ordered)))

	newHhea := append([]byte(nil), mustRawTable(f, "hhea")...)
	binary.BigEndian.PutUint16(newHhea[34:36], uint16(len(ordered)))

	tables := map[string][]byte{
		"head": newHead,
		"hhea": newHhea,
		"maxp": newMaxp,
		"hmtx": newHmtx,
		"loca": locaBytes,
		"glyf": newGlyf,
	}
	for _, tag := range f.order {
		if _, already := tables[tag]; already || droppedTables[tag] {
			continue
		}
		if b, ok := f.table(tag); ok {
			tables[tag] = b
		}
	}

	data, err := assembleSfnt(tables)
	if err != nil {
		return nil, err
	}
	return &subsetResult{data: data, oldToNew: oldToNew}, nil
}

func mustRawTable(f *rawFont, tag string) []byte {
	b, _ := f.table(tag)
	return b
}

// assembleSfnt writes a minimal sfnt wrapper around tables: version header,
// table directory (16 bytes/entry, tags sorted per the spec's required
// binary-search ordering), then the table bodies padded to 4-byte
// boundaries. Table checksums are written as zero; PDF embedding does not
// require valid sfnt checksums the way an OS font-loading API would.
func assembleSfnt(tables map[string][]byte) ([]byte, error) {
	tags := make([]string, 0, len(tables))
	for tag := range tables {
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	numTables := len(tags)
	headerSize := 12 + numTables*16
	body := make([]byte, headerSize)
	binary.BigEndian.PutUint32(body[0:4], 0x00010000)
	binary.BigEndian.PutUint16(body[4:6], uint16(numTables))
	entrySelector := 0
	for (1 << (entrySelector + 1)) <= numTables {
		entrySelector++
	}
	searchRange := (1 << entrySelector) * 16
	binary.BigEndian.PutUint16(body[6:8], uint16(searchRange))
	binary.BigEndian.PutUint16(body[8:10], uint16(entrySelector))
	binary.BigEndian.PutUint16(body[10:12], uint16(numTables*16-searchRange))

	offset := uint32(headerSize)
	var payload []byte
	for i, tag := range tags {
		data := tables[tag]
		entryOff := 12 + i*16
		copy(body[entryOff:entryOff+4], tag)
		binary.BigEndian.PutUint32(body[entryOff+4:entryOff+8], 0) // checksum
		binary.BigEndian.PutUint32(body[entryOff+8:entryOff+12], offset)
		binary.BigEndian.PutUint32(body[entryOff+12:entryOff+16], uint32(len(data)))
		payload = append(payload, data...)
		pad := (4 - len(data)%4) % 4
		for p := 0; p < pad; p++ {
			payload = append(payload, 0)
		}
		offset += uint32(len(data) + pad)
	}
	if offset > 0xFFFFFFFF {
		return nil, fmt.Errorf("subset font too large: %d bytes", offset)
	}
	return append(body, payload...), nil
}
