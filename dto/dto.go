// Package dto holds the input contract for the PDF build pipeline: the
// already-laid-out document description that arrives from the upstream
// document model (paragraphs, line breaking, word positioning happen there,
// not here).
package dto

// Dto is a complete document description: fonts to embed and pages to render.
type Dto struct {
	Fonts []Font
	Pages []Page
}

// Font is a TrueType program to embed, named so page content can reference it.
type Font struct {
	Name    string
	RawData []byte
}

// Page is one page's dimensions (in PDF points) and its content list.
type Page struct {
	Width    float64
	Height   float64
	Contents []PageItem
}

// PageItem is any content-list entry the page assembler can walk. Unknown
// implementations fail the build with errs.UnsupportedContentError.
type PageItem interface {
	isPageItem()
}

// RGB is a color with channels in 0..255, as the DTO hands them over.
type RGB struct {
	R, G, B uint8
}

// TextArea is pre-laid-out text: paragraphs of lines of words of fragments.
// Area/paragraph/line/word bounding boxes are optional and, when present,
// only used for the debug-layout rectangles gated by PDFSettings.DebugLayout.
type TextArea struct {
	X, Y, Width, Height float64
	Paragraphs          []Paragraph
	Fragments           []Fragment
}

func (TextArea) isPageItem() {}

// Paragraph is a layout grouping used only for debug-layout rectangles.
type Paragraph struct {
	X, Y, Width, Height float64
	TextLines           []TextLine
}

// TextLine is a layout grouping used only for debug-layout rectangles.
type TextLine struct {
	X, Y, Width, Height float64
	Words               []Word
}

// Word is a layout grouping used only for debug-layout rectangles.
type Word struct {
	X, Y, Width, Height float64
}

// Fragment is a run of characters sharing one font/size/color, already
// positioned at (X, Baseline) in top-left-origin DTO coordinates.
type Fragment struct {
	X, Baseline float64
	Chars       string
	FontName    string
	FontSize    float64
	FontColor   RGB
}

// TextBox is an unpositioned single-run text box (simpler sibling of TextArea).
type TextBox struct {
	X, Y, Width, Height float64
	Fragment            Fragment
}

func (TextBox) isPageItem() {}

// Rectangle is an axis-aligned rectangle, optionally with rounded corners.
// CornerPercent entries are 0..100, one each for top-left, top-right,
// bottom-right, bottom-left; 0 means a square corner.
type Rectangle struct {
	X, Y, Width, Height float64
	FillColor           *RGB
	LineColor           *RGB
	LineWidth           float64
	CornerPercent       [4]float64
}

func (Rectangle) isPageItem() {}

// Ellipse is a four-Bézier-arc ellipse (a circle when RX == RY).
type Ellipse struct {
	CX, CY, RX, RY float64
	FillColor      *RGB
	LineColor      *RGB
	LineWidth      float64
}

func (Ellipse) isPageItem() {}

// Curve is a free-form cubic Bézier path: Points[0] is the start point,
// every subsequent run of three points is one `c` segment's (ctrl1, ctrl2, end).
type Curve struct {
	Points    []Point
	Closed    bool
	FillColor *RGB
	LineColor *RGB
	LineWidth float64
}

func (Curve) isPageItem() {}

// Point is a single (x, y) coordinate in DTO top-left-origin space.
type Point struct {
	X, Y float64
}

// Arc is a single clockwise arc segment from (X1, Y1) to (X2, Y2), drawn with
// the quadrant-dependent Bézier offsets documented in SPEC_FULL.md §4.3.
type Arc struct {
	X1, Y1, X2, Y2 float64
	LineColor      *RGB
	LineWidth      float64
}

func (Arc) isPageItem() {}
