// Package writer assembles the indirect-object graph and serializes it to a
// complete PDF 1.3 byte stream: header, body, cross-reference table, trailer,
// and file ID, in the exact layout a PDF reader requires.
package writer

import (
	"bytes"
	"math"
	"strconv"
	"strings"
)

// ContentStream is a growing byte buffer of PDF content-stream operators.
// Operand formatting mirrors the original's bare Python str(float) calls:
// every operand is rounded to the page's configured decimal precision and
// trimmed of trailing zeros, matching pdfval's own formatReal so a page's
// content stream and its attribute dictionary render numbers identically.
type ContentStream struct {
	buf       bytes.Buffer
	precision uint
}

// NewContentStream returns an empty content stream rendering reals at
// precision decimal digits.
func NewContentStream(precision uint) *ContentStream {
	return &ContentStream{precision: precision}
}

// Bytes returns the accumulated content-stream bytes.
func (cs *ContentStream) Bytes() []byte { return cs.buf.Bytes() }

// Len returns the number of accumulated bytes.
func (cs *ContentStream) Len() int { return cs.buf.Len() }

func (cs *ContentStream) num(v float64) string {
	s := strconv.FormatFloat(v, 'f', int(cs.precision), 64)
	if strings.ContainsRune(s, '.') {
		s = strings.TrimRight(s, "0")
		s = strings.TrimRight(s, ".")
	}
	if s == "" || s == "-0" {
		s = "0"
	}
	return s
}

// SaveState emits "q\n".
func (cs *ContentStream) SaveState() { cs.buf.WriteString("q\n") }

// RestoreState emits "Q\n".
func (cs *ContentStream) RestoreState() { cs.buf.WriteString("Q\n") }

// FillColor emits "r g b rg\n", each channel scaled by 1/255.
func (cs *ContentStream) FillColor(r, g, b uint8) {
	cs.writeRGB(r, g, b, "rg")
}

// LineColor emits "r g b RG\n", each channel scaled by 1/255.
func (cs *ContentStream) LineColor(r, g, b uint8) {
	cs.writeRGB(r, g, b, "RG")
}

func (cs *ContentStream) writeRGB(r, g, b uint8, op string) {
	cs.buf.WriteString(cs.num(float64(r) / 255))
	cs.buf.WriteString(" ")
	cs.buf.WriteString(cs.num(float64(g) / 255))
	cs.buf.WriteString(" ")
	cs.buf.WriteString(cs.num(float64(b) / 255))
	cs.buf.WriteString(" ")
	cs.buf.WriteString(op)
	cs.buf.WriteString("\n")
}

// LineWidth emits "w w\n".
func (cs *ContentStream) LineWidth(w float64) {
	cs.buf.WriteString(cs.num(w))
	cs.buf.WriteString(" w\n")
}

// DashPattern emits "<cap> J <join> j [<on> <off>] <phase> d\n".
func (cs *ContentStream) DashPattern(cap, join int, on, off, phase float64) {
	cs.buf.WriteString(strconv.Itoa(cap))
	cs.buf.WriteString(" J ")
	cs.buf.WriteString(strconv.Itoa(join))
	cs.buf.WriteString(" j [")
	cs.buf.WriteString(cs.num(on))
	cs.buf.WriteString(" ")
	cs.buf.WriteString(cs.num(off))
	cs.buf.WriteString("] ")
	cs.buf.WriteString(cs.num(phase))
	cs.buf.WriteString(" d\n")
}

// SetFont emits "BT /F<n> <size> Tf ET\n", declaring the page-font alias and
// size without positioning text (positioning happens in ShowText).
func (cs *ContentStream) SetFont(pageFontName string, size float64) {
	cs.buf.WriteString("BT /")
	cs.buf.WriteString(pageFontName)
	cs.buf.WriteString(" ")
	cs.buf.WriteString(cs.num(size))
	cs.buf.WriteString(" Tf ET\n")
}

// ShowText emits "BT <x> <y> Td (<cid-bytes>) Tj ET\n". cidBytes is written
// raw inside the parentheses: CID allocation guarantees none of its bytes
// collide with PDF literal-string delimiters, so no escaping is applied.
func (cs *ContentStream) ShowText(x, y float64, cidBytes []byte) {
	cs.buf.WriteString("BT ")
	cs.buf.WriteString(cs.num(x))
	cs.buf.WriteString(" ")
	cs.buf.WriteString(cs.num(y))
	cs.buf.WriteString(" Td (")
	cs.buf.Write(cidBytes)
	cs.buf.WriteString(") Tj ET\n")
}

// MoveTo starts a new subpath: "x y m ".
func (cs *ContentStream) MoveTo(x, y float64) {
	cs.writePathOp(x, y, "m")
}

// LineTo appends a straight segment: "x y l ".
func (cs *ContentStream) LineTo(x, y float64) {
	cs.writePathOp(x, y, "l")
}

func (cs *ContentStream) writePathOp(x, y float64, op string) {
	cs.buf.WriteString(cs.num(x))
	cs.buf.WriteString(" ")
	cs.buf.WriteString(cs.num(y))
	cs.buf.WriteString(" ")
	cs.buf.WriteString(op)
	cs.buf.WriteString(" ")
}

// CurvePoint appends one control point of an in-progress Bézier: "x y ".
func (cs *ContentStream) CurvePoint(x, y float64) {
	cs.buf.WriteString(cs.num(x))
	cs.buf.WriteString(" ")
	cs.buf.WriteString(cs.num(y))
	cs.buf.WriteString(" ")
}

// CurveEnd appends the final control point of a Bézier and the "c" operator:
// "x y c ".
func (cs *ContentStream) CurveEnd(x, y float64) {
	cs.writePathOp(x, y, "c")
}

// ClosePath appends "h " without a trailing newline; the caller's finishing
// paint operator terminates the line.
func (cs *ContentStream) ClosePath() {
	cs.buf.WriteString("h ")
}

// Fill emits "f\n".
func (cs *ContentStream) Fill() { cs.buf.WriteString("f\n") }

// Stroke emits "S\n".
func (cs *ContentStream) Stroke() { cs.buf.WriteString("S\n") }

// FillAndStroke emits "B\n".
func (cs *ContentStream) FillAndStroke() { cs.buf.WriteString("B\n") }

// Rectangle emits "x y w h re <style>\n"; style is "B", "f", "S", or "" for
// an unpainted rectangle (the caller still owns clipping/W n separately).
func (cs *ContentStream) Rectangle(x, y, w, h float64, style string) {
	cs.buf.WriteString(cs.num(x))
	cs.buf.WriteString(" ")
	cs.buf.WriteString(cs.num(y))
	cs.buf.WriteString(" ")
	cs.buf.WriteString(cs.num(w))
	cs.buf.WriteString(" ")
	cs.buf.WriteString(cs.num(h))
	cs.buf.WriteString(" re")
	if style != "" {
		cs.buf.WriteString(" ")
		cs.buf.WriteString(style)
	}
	cs.buf.WriteString("\n")
}

// RectangleRaw emits "x y w h re " with no trailing paint operator or
// newline, for callers composing a rounded-rectangle path across multiple
// re/c/h fragments before a single finishing paint operator.
func (cs *ContentStream) RectangleRaw(x, y, w, h float64) {
	cs.buf.WriteString(cs.num(x))
	cs.buf.WriteString(" ")
	cs.buf.WriteString(cs.num(y))
	cs.buf.WriteString(" ")
	cs.buf.WriteString(cs.num(w))
	cs.buf.WriteString(" ")
	cs.buf.WriteString(cs.num(h))
	cs.buf.WriteString(" re ")
}

// FillAndShape emits the finishing paint operator chosen by (hasFill,
// hasStroke): "B" for both, "f" for fill only, "S" for stroke only, or a
// bare style-less line if neither is set.
func (cs *ContentStream) FillAndShape(hasFill, hasStroke bool) {
	style := ""
	switch {
	case hasFill && hasStroke:
		style = "B"
	case hasFill:
		style = "f"
	case hasStroke:
		style = "S"
	}
	cs.buf.WriteString(style)
	cs.buf.WriteString("\n")
}

// Clip emits "W n\n".
func (cs *ContentStream) Clip() { cs.buf.WriteString("W n\n") }

// Rotate emits three "cm" lines rotating by degrees around (x, y). The
// middle matrix's 2nd and 4th fields are both sin_r, not cos_r: this is a
// confirmed, preserved quirk of the source (see SPEC_FULL.md §4.3), not a
// bug — a reimplementation must not "fix" it to a pure rotation matrix.
func (cs *ContentStream) Rotate(x, y, degrees float64) {
	rad := degrees * math.Pi / 180
	cosR := math.Cos(rad)
	sinR := math.Sin(rad)
	cs.concatMatrix(1, 0, 0, 1, x, y)
	cs.concatMatrix(cosR, sinR, -sinR, sinR, 0, 0)
	cs.concatMatrix(1, 0, 0, 1, -x, -y)
}

// Skew emits three "cm" lines skewing about (x, y) by the given vertical and
// horizontal angles in degrees.
func (cs *ContentStream) Skew(x, y, skewVertical, skewHorizontal float64) {
	tanV := math.Tan(skewVertical * math.Pi / 180)
	tanH := math.Tan(skewHorizontal * math.Pi / 180)
	cs.concatMatrix(1, 0, 0, 1, x, y)
	cs.concatMatrix(1, tanV, tanH, 1, 0, 0)
	cs.concatMatrix(1, 0, 0, 1, -x, -y)
}

func (cs *ContentStream) concatMatrix(a, b, c, d, e, f float64) {
	cs.buf.WriteString(cs.num(a))
	cs.buf.WriteString(" ")
	cs.buf.WriteString(cs.num(b))
	cs.buf.WriteString(" ")
	cs.buf.WriteString(cs.num(c))
	cs.buf.WriteString(" ")
	cs.buf.WriteString(cs.num(d))
	cs.buf.WriteString(" ")
	cs.buf.WriteString(cs.num(e))
	cs.buf.WriteString(" ")
	cs.buf.WriteString(cs.num(f))
	cs.buf.WriteString(" cm\n")
}

// Arc appends one clockwise arc segment from (x1,y1) to (x2,y2) as a single
// cubic Bézier: two control points followed by the "c" end point. It does
// not emit "m" (the caller's current point is (x1,y1)) and assumes the
// caller finishes the path with a paint operator.
//
// The source's asymmetric Bézier coefficient is preserved exactly (see
// SPEC_FULL.md §4.3): three quadrants use 0.533 on both control-point terms,
// but the x1<x2,y1<y2 quadrant uses 0.553 on its first term and 0.533 on its
// second — a per-term asymmetry within that one quadrant, not a per-quadrant
// split.
func (cs *ContentStream) Arc(x1, y1, x2, y2 float64) {
	rx := math.Abs(x1 - x2)
	ry := math.Abs(y1 - y2)
	switch {
	case x1 > x2 && y1 > y2:
		cs.CurvePoint(x1, y1-0.533*ry)
		cs.CurvePoint(x2+0.533*rx, y2)
		cs.CurveEnd(x2, y2)
	case x1 < x2 && y1 > y2:
		cs.CurvePoint(x1+0.533*rx, y1)
		cs.CurvePoint(x2, y2+0.533*ry)
		cs.CurveEnd(x2, y2)
	case x1 > x2 && y1 < y2:
		cs.CurvePoint(x1-0.533*rx, y1)
		cs.CurvePoint(x2, y2-0.533*ry)
		cs.CurveEnd(x2, y2)
	case x1 < x2 && y1 < y2:
		cs.CurvePoint(x1, y1+0.553*ry)
		cs.CurvePoint(x2-0.533*rx, y2)
		cs.CurveEnd(x2, y2)
	}
}
