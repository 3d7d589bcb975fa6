package fonts

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/image/font/sfnt"

	"github.com/coregx/docpdf/errs"
	"github.com/coregx/docpdf/internal/pdfval"
	"github.com/coregx/docpdf/logging"
)

const (
	maxCID              = 65535
	notDefCID           = 0
	replacementCodepoint = 0xFFFD
)

// forbiddenBytes are the PDF content-stream delimiter/escape bytes no CID
// byte may equal, per SPEC_FULL.md §3: a CID is written raw inside content
// stream literal strings, so it must never collide with "(", ")", "\", or a
// handful of other syntactically significant bytes.
var forbiddenBytes = map[byte]bool{
	10: true, 13: true, 37: true, 40: true, 41: true, 47: true,
	60: true, 62: true, 91: true, 92: true, 93: true, 123: true, 125: true,
}

var sanitizeNamePattern = regexp.MustCompile(`[ ()]`)

// cidEntry records everything known about one allocated CID: its advance
// width in 1000ths of an em, the Unicode code point it represents, and the
// glyph index (in the *original*, unsubsetted font) backing it.
type cidEntry struct {
	width    int
	codepoint rune
	gid      uint16
}

// FontSubsetter tracks the code points one embedded font has been asked to
// render, allocates CIDs for them, and — once the document has finished
// pre-scanning every page — rebuilds a subsetted TrueType program and emits
// the six companion PDF objects SPEC_FULL.md §4.4 requires.
type FontSubsetter struct {
	Name string

	raw  *rawFont
	sfnt *sfnt.Font
	buf  sfnt.Buffer

	scale float64

	codepointToCID map[rune]int
	cidInfo        map[int]cidEntry
	cidCounter     int

	generatedName string
	capHeight     int
	ascent        int
	descent       int
	fontBBox      [4]int
	italicAngle   int
	stemV         int
	missingWidth  int
	flags         uint32

	// Object handles, allocated during graph-build (§4.6 step 3).
	ObjWrapper        *pdfval.Object
	ObjDescendant     *pdfval.Object
	ObjToUnicode      *pdfval.Object
	ObjFontDescriptor *pdfval.Object
	ObjFontFile2      *pdfval.Object
	ObjCIDToGID       *pdfval.Object
}

// NewFontSubsetter parses rawData (a TrueType program) and computes its
// derived PDF metrics up front, the way pdf_font.py's __init__ does.
func NewFontSubsetter(name string, rawData []byte) (*FontSubsetter, error) {
	raw, err := parseRawFont(rawData)
	if err != nil {
		return nil, &errs.FontError{FontName: name, Reason: err.Error()}
	}
	sf, err := sfnt.Parse(rawData)
	if err != nil {
		return nil, &errs.FontError{FontName: name, Reason: err.Error()}
	}

	fs := &FontSubsetter{
		Name:           name,
		raw:            raw,
		sfnt:           sf,
		codepointToCID: make(map[rune]int),
		cidInfo:        make(map[int]cidEntry),
		cidCounter:     1,
	}

	head, err := raw.readHead()
	if err != nil {
		return nil, &errs.FontError{FontName: name, Reason: err.Error()}
	}
	if head.unitsPerEm == 0 {
		return nil, &errs.FontError{FontName: name, Reason: "head.unitsPerEm is zero"}
	}
	fs.scale = 1000.0 / float64(head.unitsPerEm)

	hhea, err := raw.readHhea()
	if err != nil {
		return nil, &errs.FontError{FontName: name, Reason: err.Error()}
	}
	os2, err := raw.readOS2()
	if err != nil {
		return nil, &errs.FontError{FontName: name, Reason: err.Error()}
	}
	post, err := raw.readPost()
	if err != nil {
		return nil, &errs.FontError{FontName: name, Reason: err.Error()}
	}
	hmtxTable, err := raw.mustTable("hmtx")
	if err != nil {
		return nil, &errs.FontError{FontName: name, Reason: err.Error()}
	}

	fullName, err := sf.Name(nil, sfnt.NameIDFull)
	if err != nil || fullName == "" {
		fullName, _ = sf.Name(nil, sfnt.NameIDFamily)
	}
	fs.generatedName = "MPDFAA+" + sanitizeNamePattern.ReplaceAllString(fullName, "")

	fs.ascent = round(float64(hhea.ascent) * fs.scale)
	fs.descent = round(float64(hhea.descent) * fs.scale)
	fs.fontBBox = [4]int{
		int(math.Round(float64(head.xMin) * fs.scale)),
		int(math.Round(float64(head.yMin) * fs.scale)),
		int(math.Round(float64(head.xMax) * fs.scale)),
		int(math.Round(float64(head.yMax) * fs.scale)),
	}
	// Floor toward negative infinity: a negative italic angle such as -12.5
	// becomes -13, not -12.
	fs.italicAngle = int(math.Floor(post.italicAngle))
	fs.stemV = round(50 + math.Pow(float64(os2.weightClass)/65, 2))

	if os2.hasCapHeight {
		fs.capHeight = round(float64(os2.capHeight) * fs.scale)
	} else {
		fs.capHeight = fs.ascent
	}

	fs.flags = 0x04 // Symbolic, always set
	if post.isFixedPitch {
		fs.flags |= 0x01
	}
	if post.italicAngle != 0 {
		fs.flags |= 0x40
	}
	if os2.weightClass >= 600 {
		fs.flags |= 0x40000
	}

	notdefWidth := hmtxWidth(hmtxTable, hhea.numHMetrics, 0)
	fs.missingWidth = round(fs.scale * float64(notdefWidth))
	fs.cidInfo[notDefCID] = cidEntry{width: fs.missingWidth, codepoint: replacementCodepoint, gid: 0}

	return fs, nil
}

func round(v float64) int { return int(math.Round(v)) }

// Encode allocates (or reuses) a CID for every rune in text and returns
// their big-endian two-byte concatenation, the exact bytes a content
// stream's Tj operand carries. Carriage return, tab, and newline characters
// are page-layout control characters handled upstream; Encode reports them
// via an UnsupportedContentError so a caller never embeds one in a literal
// string.
func (fs *FontSubsetter) Encode(text string) ([]byte, error) {
	out := make([]byte, 0, len(text)*2)
	for _, r := range text {
		if r == '\r' || r == '\t' || r == '\n' {
			return nil, &errs.UnsupportedContentError{Kind: fmt.Sprintf("control rune %U in text run", r)}
		}
		cid, ok := fs.codepointToCID[r]
		if !ok {
			var err error
			cid, err = fs.allocate(r)
			if err != nil {
				return nil, err
			}
		}
		out = append(out, byte(cid>>8), byte(cid))
	}
	return out, nil
}

func (fs *FontSubsetter) allocate(r rune) (int, error) {
	gid, err := fs.sfnt.GlyphIndex(&fs.buf, r)
	if err != nil || gid == 0 {
		logging.Logger().Warn("font: codepoint has no glyph, falling back to .notdef",
			"font", fs.Name, "codepoint", fmt.Sprintf("U+%04X", r))
		fs.codepointToCID[r] = notDefCID
		return notDefCID, nil
	}

	// The counter's current value is this glyph's CID; advanceCID then moves
	// the counter past it (skipping forbidden bytes) to prepare for the next
	// allocation, matching pdf_font.py's encode/_increase_cid ordering exactly.
	cid := fs.cidCounter
	width := fs.glyphWidth(gid)
	fs.cidInfo[cid] = cidEntry{width: width, codepoint: r, gid: uint16(gid)}
	fs.codepointToCID[r] = cid
	if err := fs.advanceCID(); err != nil {
		return 0, err
	}
	return cid, nil
}

func (fs *FontSubsetter) glyphWidth(gid sfnt.GlyphIndex) int {
	hmtxTable, _ := fs.raw.mustTable("hmtx")
	hhea, _ := fs.raw.readHhea()
	w := hmtxWidth(hmtxTable, hhea.numHMetrics, uint16(gid))
	return round(fs.scale*float64(w) + 0.001)
}

// advanceCID moves the counter to its next usable value, skipping any value
// whose big-endian encoding contains a forbidden byte, and fails with
// CapacityError once the counter would exceed the two-byte range. It does
// not return a CID: the caller already captured the counter's pre-advance
// value as the CID being allocated.
func (fs *FontSubsetter) advanceCID() error {
	for {
		fs.cidCounter++
		if fs.cidCounter > maxCID {
			return &errs.CapacityError{FontName: fs.Name}
		}
		hi := byte(fs.cidCounter >> 8)
		lo := byte(fs.cidCounter)
		if !forbiddenBytes[hi] && !forbiddenBytes[lo] {
			return nil
		}
	}
}

// CIDCount reports the number of CIDs allocated so far, including .notdef.
func (fs *FontSubsetter) CIDCount() int { return len(fs.cidInfo) }

// Allocate six PDF objects for this font, in the fixed order
// wrapper->descendant->to-unicode->descriptor->font-file->cid-to-gid,
// matching pdf_font.py's generate_pdf_obj.
func (fs *FontSubsetter) AllocateObjects(newObject func(typeName string) *pdfval.Object) {
	fs.ObjWrapper = newObject("")
	fs.ObjDescendant = newObject("")
	fs.ObjToUnicode = newObject("")
	fs.ObjFontDescriptor = newObject("")
	fs.ObjFontFile2 = newObject("")
	fs.ObjCIDToGID = newObject("")
}

// sortedCIDs returns every allocated CID in ascending order.
func (fs *FontSubsetter) sortedCIDs() []int {
	cids := make([]int, 0, len(fs.cidInfo))
	for cid := range fs.cidInfo {
		cids = append(cids, cid)
	}
	sort.Ints(cids)
	return cids
}

// Build fills in all six font objects: subsets the TrueType program,
// computes CIDToGIDMap/ToUnicode/W arrays, and wires descriptor/FontFile2
// metadata. compress controls whether FontFile2 and CIDToGIDMap streams get
// deflated, matching PDFSettings.Compression.
func (fs *FontSubsetter) Build(compress bool) error {
	cids := fs.sortedCIDs()
	keepGIDs := make([]uint16, 0, len(cids))
	for _, cid := range cids {
		if cid == notDefCID {
			continue
		}
		keepGIDs = append(keepGIDs, fs.cidInfo[cid].gid)
	}

	subset, err := buildSubset(fs.raw, keepGIDs)
	if err != nil {
		return &errs.FontError{FontName: fs.Name, Reason: err.Error()}
	}

	fs.buildFontObj()
	fs.buildDescendantObj(cids)
	fs.buildFontDescriptorObj()
	fs.buildFontFile2Obj(subset.data, compress)
	fs.buildCIDToGIDMapObj(subset.oldToNew, compress)
	fs.buildToUnicodeObj(cids)

	logging.Logger().Debug("font-build: subset complete",
		"font", fs.Name, "cids", len(cids), "subsetBytes", len(subset.data))
	return nil
}

func (fs *FontSubsetter) buildFontObj() {
	o := fs.ObjWrapper.Attrs
	o.Set("/Type", pdfval.Name("/Font"))
	o.Set("/Subtype", pdfval.Name("/Type0"))
	o.Set("/Encoding", pdfval.Name("/Identity-H"))
	o.Set("/BaseFont", pdfval.Name("/"+fs.generatedName))
	o.Set("/DescendantFonts", pdfval.Arr(pdfval.Ref(fs.ObjDescendant.Num)))
	o.Set("/ToUnicode", pdfval.Ref(fs.ObjToUnicode.Num))
}

func (fs *FontSubsetter) buildDescendantObj(cids []int) {
	o := fs.ObjDescendant.Attrs
	o.Set("/Type", pdfval.Name("/Font"))
	o.Set("/Subtype", pdfval.Name("/CIDFontType2"))
	o.Set("/BaseFont", pdfval.Name("/"+fs.generatedName))
	o.Set("/DW", pdfval.Int(fs.missingWidth))

	sysInfo := pdfval.NewDict()
	sysInfo.Set("/Supplement", pdfval.Int(0))
	sysInfo.Set("/Ordering", pdfval.Str("UCS"))
	sysInfo.Set("/Registry", pdfval.Str("Adobe"))
	o.Set("/CIDSystemInfo", pdfval.DictVal(sysInfo))

	o.Set("/FontDescriptor", pdfval.Ref(fs.ObjFontDescriptor.Num))
	o.Set("/CIDToGIDMap", pdfval.Ref(fs.ObjCIDToGID.Num))

	widths := make([]pdfval.Value, 0, len(cids))
	for _, cid := range cids {
		widths = append(widths, pdfval.Raw(fmt.Sprintf("%d %d %d", cid, cid, fs.cidInfo[cid].width)))
	}
	o.Set("/W", pdfval.Arr(widths...))
}

func (fs *FontSubsetter) buildFontDescriptorObj() {
	o := fs.ObjFontDescriptor.Attrs
	o.Set("/Type", pdfval.Name("/FontDescriptor"))
	o.Set("/FontName", pdfval.Name("/"+fs.generatedName))
	o.Set("/CapHeight", pdfval.Int(fs.capHeight))
	o.Set("/StemV", pdfval.Int(fs.stemV))
	o.Set("/Ascent", pdfval.Int(fs.ascent))
	o.Set("/Flags", pdfval.Int(int(fs.flags)))
	o.Set("/Descent", pdfval.Int(fs.descent))
	o.Set("/ItalicAngle", pdfval.Int(fs.italicAngle))
	o.Set("/MissingWidth", pdfval.Int(fs.missingWidth))
	o.Set("/FontBBox", pdfval.Raw(fmt.Sprintf("[%d %d %d %d]",
		fs.fontBBox[0], fs.fontBBox[1], fs.fontBBox[2], fs.fontBBox[3])))
	o.Set("/FontFile2", pdfval.Ref(fs.ObjFontFile2.Num))
}

func (fs *FontSubsetter) buildFontFile2Obj(subsetBytes []byte, compress bool) {
	fs.ObjFontFile2.Attrs.Set("/Length1", pdfval.Int(len(subsetBytes)))
	if compress {
		fs.ObjFontFile2.SetCompressedStream(pdfval.Deflate(subsetBytes))
	} else {
		fs.ObjFontFile2.ExtendStream(subsetBytes)
	}
}

func (fs *FontSubsetter) buildCIDToGIDMapObj(oldToNew map[uint16]uint16, compress bool) {
	b := make([]byte, (maxCID+1)*2)
	for cid, info := range fs.cidInfo {
		newGID := oldToNew[info.gid]
		b[cid*2] = byte(newGID >> 8)
		b[cid*2+1] = byte(newGID)
	}
	if compress {
		fs.ObjCIDToGID.SetCompressedStream(pdfval.Deflate(b))
	} else {
		fs.ObjCIDToGID.ExtendStream(b)
	}
}

func (fs *FontSubsetter) buildToUnicodeObj(cids []int) {
	var b strings.Builder
	b.WriteString("/CIDInit /ProcSet findresource begin\n")
	b.WriteString("12 dict begin\n")
	b.WriteString("begincmap\n")
	b.WriteString("/CIDSystemInfo\n")
	b.WriteString("<</Registry (Adobe)\n")
	b.WriteString("/Ordering (UCS)\n")
	b.WriteString("/Supplement 0\n")
	b.WriteString(">> def\n")
	b.WriteString("/CMapName /Adobe-Identity-UCS def\n")
	b.WriteString("/CMapType 2 def\n")
	b.WriteString("1 begincodespacerange\n")
	b.WriteString("<0000> <FFFF>\n")
	b.WriteString("endcodespacerange\n")
	fmt.Fprintf(&b, "%d beginbfchar\n", len(cids))
	for _, cid := range cids {
		fmt.Fprintf(&b, "<%04X> <%04X>\n", cid, fs.cidInfo[cid].codepoint)
	}
	b.WriteString("endbfchar\n")
	b.WriteString("endcmap\n")
	b.WriteString("CMapName currentdict /CMap defineresource pop\n")
	b.WriteString("end\n")
	b.WriteString("end")
	fs.ObjToUnicode.ExtendStream([]byte(b.String()))
}

// GeneratedName returns the MPDFAA+-prefixed BaseFont name, useful for
// logging and tests.
func (fs *FontSubsetter) GeneratedName() string { return fs.generatedName }
