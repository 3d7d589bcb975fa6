// Package fonts implements TrueType CID subsetting: parsing the incoming
// TrueType program, allocating CIDs per code point, and rebuilding a reduced
// font program plus the companion PDF font objects.
package fonts

import (
	"encoding/binary"
	"fmt"
)

// rawTable is one entry of a TrueType sfnt table directory: the 4-byte tag
// and the table's byte range within the file, grounded on the teacher's
// TTFTable/parseTableEntry pattern (internal/fonts/ttf_parser.go in the
// retrieved pack).
type rawTable struct {
	tag    string
	offset uint32
	length uint32
	data   []byte
}

// rawFont is the hand-rolled sfnt table-directory reader used alongside
// golang.org/x/image/font/sfnt. sfnt.Font exposes cmap lookups and glyph
// advances but not raw table bytes or the numeric OS/2/post fields the PDF
// FontDescriptor formulas need, so this reader fills that gap; see
// SPEC_FULL.md §9.1 and DESIGN.md for why both are wired in together.
type rawFont struct {
	data   []byte
	tables map[string]*rawTable
	order  []string // table tags in directory order, for deterministic rebuilds
}

func parseRawFont(data []byte) (*rawFont, error) {
	if len(data) < 12 {
		return nil, fmt.Errorf("truetype data too short: %d bytes", len(data))
	}
	version := binary.BigEndian.Uint32(data[0:4])
	if version != 0x00010000 && version != 0x74727565 { // 'true'
		return nil, fmt.Errorf("unsupported sfnt version: 0x%08X", version)
	}
	numTables := binary.BigEndian.Uint16(data[4:6])

	f := &rawFont{data: data, tables: make(map[string]*rawTable, numTables)}
	const dirEntrySize = 16
	base := 12
	for i := 0; i < int(numTables); i++ {
		off := base + i*dirEntrySize
		if off+dirEntrySize > len(data) {
			return nil, fmt.Errorf("truncated table directory entry %d", i)
		}
		tag := string(data[off : off+4])
		tblOffset := binary.BigEndian.Uint32(data[off+8 : off+12])
		tblLength := binary.BigEndian.Uint32(data[off+12 : off+16])
		if uint64(tblOffset)+uint64(tblLength) > uint64(len(data)) {
			return nil, fmt.Errorf("table %q out of bounds", tag)
		}
		t := &rawTable{tag: tag, offset: tblOffset, length: tblLength, data: data[tblOffset : tblOffset+tblLength]}
		f.tables[tag] = t
		f.order = append(f.order, tag)
	}
	return f, nil
}

func (f *rawFont) table(tag string) ([]byte, bool) {
	t, ok := f.tables[tag]
	if !ok {
		return nil, false
	}
	return t.data, true
}

func (f *rawFont) mustTable(tag string) ([]byte, error) {
	b, ok := f.table(tag)
	if !ok {
		return nil, fmt.Errorf("missing required table %q", tag)
	}
	return b, nil
}

// headInfo mirrors the numeric fields pdf_font.py reads from the head table.
type headInfo struct {
	unitsPerEm      uint16
	xMin, yMin      int16
	xMax, yMax      int16
	indexToLocLong  bool
}

func (f *rawFont) readHead() (headInfo, error) {
	b, err := f.mustTable("head")
	if err != nil {
		return headInfo{}, err
	}
	if len(b) < 54 {
		return headInfo{}, fmt.Errorf("head table too short")
	}
	var h headInfo
	h.unitsPerEm = binary.BigEndian.Uint16(b[18:20])
	h.xMin = int16(binary.BigEndian.Uint16(b[36:38]))
	h.yMin = int16(binary.BigEndian.Uint16(b[38:40]))
	h.xMax = int16(binary.BigEndian.Uint16(b[40:42]))
	h.yMax = int16(binary.BigEndian.Uint16(b[42:44]))
	h.indexToLocLong = int16(binary.BigEndian.Uint16(b[50:52])) != 0
	return h, nil
}

type hheaInfo struct {
	ascent, descent int16
	numHMetrics     uint16
}

func (f *rawFont) readHhea() (hheaInfo, error) {
	b, err := f.mustTable("hhea")
	if err != nil {
		return hheaInfo{}, err
	}
	if len(b) < 36 {
		return hheaInfo{}, fmt.Errorf("hhea table too short")
	}
	var h hheaInfo
	h.ascent = int16(binary.BigEndian.Uint16(b[4:6]))
	h.descent = int16(binary.BigEndian.Uint16(b[6:8]))
	h.numHMetrics = binary.BigEndian.Uint16(b[34:36])
	return h, nil
}

type os2Info struct {
	hasCapHeight bool
	capHeight    int16
	weightClass  uint16
}

func (f *rawFont) readOS2() (os2Info, error) {
	b, ok := f.table("OS/2")
	if !ok {
		return os2Info{}, nil
	}
	var o os2Info
	if len(b) >= 6 {
		o.weightClass = binary.BigEndian.Uint16(b[4:6])
	}
	// sCapHeight is present only in OS/2 version >= 2 (offset 88).
	if len(b) >= 90 {
		version := binary.BigEndian.Uint16(b[0:2])
		if version >= 2 {
			o.capHeight = int16(binary.BigEndian.Uint16(b[88:90]))
			o.hasCapHeight = true
		}
	}
	return o, nil
}

type postInfo struct {
	italicAngle  float64
	isFixedPitch bool
}

func (f *rawFont) readPost() (postInfo, error) {
	b, ok := f.table("post")
	if !ok || len(b) < 32 {
		return postInfo{}, nil
	}
	var p postInfo
	// italicAngle is a Fixed (16.16) at offset 4.
	raw := int32(binary.BigEndian.Uint32(b[4:8]))
	p.italicAngle = float64(raw) / 65536.0
	isFixedPitch := binary.BigEndian.Uint32(b[12:16])
	p.isFixedPitch = isFixedPitch != 0
	return p, nil
}

// hmtxWidth returns the advance width of glyph gid from a raw hmtx table,
// honoring the "last entry repeats" sfnt convention for monospaced tails.
func hmtxWidth(hmtx []byte, numHMetrics uint16, gid uint16) uint16 {
	if numHMetrics == 0 {
		return 0
	}
	idx := gid
	if idx >= numHMetrics {
		idx = numHMetrics - 1
	}
	off := int(idx) * 4
	if off+2 > len(hmtx) {
		return 0
	}
	return binary.BigEndian.Uint16(hmtx[off : off+2])
}

// loca returns the byte offset of glyph gid and the one past its end,
// within the glyf table, decoding either the short or long loca format.
func loca(locaTable []byte, longFormat bool, gid uint16) (start, end uint32, ok bool) {
	if longFormat {
		off := int(gid) * 4
		if off+8 > len(locaTable) {
			return 0, 0, false
		}
		return binary.BigEndian.Uint32(locaTable[off : off+4]),
			binary.BigEndian.Uint32(locaTable[off+4 : off+8]), true
	}
	off := int(gid) * 2
	if off+4 > len(locaTable) {
		return 0, 0, false
	}
	return uint32(binary.BigEndian.Uint16(locaTable[off:off+2])) * 2,
		uint32(binary.BigEndian.Uint16(locaTable[off+2:off+4])) * 2, true
}
