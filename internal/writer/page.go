package writer

import (
	"errors"
	"fmt"
	"math"

	"github.com/coregx/docpdf/dto"
	"github.com/coregx/docpdf/errs"
	"github.com/coregx/docpdf/internal/fonts"
	"github.com/coregx/docpdf/internal/pdfval"
	"github.com/coregx/docpdf/logging"
)

// debug-layout colors, one fill/stroke pair per TextArea nesting level,
// grounded on the original's MaterialColors.{Gray,Teal,Yellow,DeepOrange}
// 100/600 palette (pdf_page.py's draw_text_area).
var (
	debugAreaFill       = dto.RGB{R: 0xF5, G: 0xF5, B: 0xF5} // Gray100
	debugAreaLine       = dto.RGB{R: 0x75, G: 0x75, B: 0x75} // Gray600
	debugParagraphFill  = dto.RGB{R: 0xB2, G: 0xDF, B: 0xDB} // Teal100
	debugParagraphLine  = dto.RGB{R: 0x00, G: 0x79, B: 0x7A} // Teal600
	debugTextLineFill   = dto.RGB{R: 0xFF, G: 0xF9, B: 0xC4} // Yellow100
	debugTextLineLine   = dto.RGB{R: 0xFB, G: 0xC0, B: 0x2D} // Yellow600
	debugWordFill       = dto.RGB{R: 0xFF, G: 0xCC, B: 0xBC} // DeepOrange100
	debugWordLine       = dto.RGB{R: 0xD8, G: 0x43, B: 0x15} // DeepOrange600
)

// textState is the (size, color, font) tuple the page assembler tracks to
// decide whether a fragment needs a fresh Tf/rg pair, per SPEC_FULL.md §4.5.
type textState struct {
	valid    bool
	size     float64
	color    dto.RGB
	fontName string
}

// Page assembles one DTO page into its three PDF objects (page, resources,
// contents) and a content-stream byte buffer.
type Page struct {
	width, height float64
	debugLayout   bool

	content *ContentStream
	aliases *FontAliases

	PageObj      *pdfval.Object
	ResourcesObj *pdfval.Object
	ContentsObj  *pdfval.Object
}

// NewPage constructs a page assembler for a width x height (points) page.
func NewPage(width, height float64, precision uint, debugLayout bool) *Page {
	return &Page{
		width:       width,
		height:      height,
		debugLayout: debugLayout,
		content:     NewContentStream(precision),
		aliases:     NewFontAliases(),
	}
}

// AllocateObjects allocates the page's three PdfObjects, during graph-build.
func (p *Page) AllocateObjects(newObject func(typeName string) *pdfval.Object) {
	p.PageObj = newObject("/Page")
	p.ResourcesObj = newObject("")
	p.ContentsObj = newObject("")
}

// PreScan walks the page's DTO content list registering every text
// fragment's code points with its font's FontSubsetter, without emitting any
// content-stream bytes. This is the document assembler's phase 2: CID
// tables must be closed before font-build (phase 5) subsets the program, and
// closing them requires visiting every page first.
func (p *Page) PreScan(items []dto.PageItem, fontsByName map[string]*fonts.FontSubsetter) error {
	for _, item := range items {
		switch v := item.(type) {
		case dto.TextArea:
			for _, frag := range v.Fragments {
				if err := preScanFragment(frag, fontsByName); err != nil {
					return err
				}
			}
		case dto.TextBox:
			if err := preScanFragment(v.Fragment, fontsByName); err != nil {
				return err
			}
		}
	}
	return nil
}

func preScanFragment(frag dto.Fragment, fontsByName map[string]*fonts.FontSubsetter) error {
	fs, ok := fontsByName[frag.FontName]
	if !ok {
		return &errs.MissingObjectError{What: fmt.Sprintf("font %q referenced by page fragment", frag.FontName)}
	}
	if _, err := fs.Encode(frag.Chars); err != nil {
		var capErr *errs.CapacityError
		if errors.As(err, &capErr) {
			return err
		}
		// Unsupported control characters are reported again, harmlessly, at
		// page-build time; pre-scan only needs capacity failures to abort early.
		return nil
	}
	return nil
}

// calcY converts a DTO top-left-origin y (optionally of an element with
// height) into PDF bottom-left-origin space.
func (p *Page) calcY(y float64) float64 { return p.height - y }

func (p *Page) calcYWithHeight(y, height float64) float64 { return p.height - y - height }

// Draw walks the page's DTO content list, emitting content-stream operators
// for each item and recording which (font, codepoint) pairs are used via
// fontsByName.
func (p *Page) Draw(items []dto.PageItem, fontsByName map[string]*fonts.FontSubsetter) error {
	for _, item := range items {
		switch v := item.(type) {
		case dto.TextArea:
			if err := p.drawTextArea(v, fontsByName); err != nil {
				return err
			}
		case dto.TextBox:
			if err := p.drawTextBox(v, fontsByName); err != nil {
				return err
			}
		case dto.Rectangle:
			p.drawRectangle(v)
		case dto.Ellipse:
			p.drawEllipse(v)
		case dto.Curve:
			p.drawCurve(v)
		case dto.Arc:
			p.drawArc(v)
		default:
			return &errs.UnsupportedContentError{Kind: fmt.Sprintf("%T", item)}
		}
	}
	return nil
}

func (p *Page) drawTextArea(area dto.TextArea, fontsByName map[string]*fonts.FontSubsetter) error {
	p.content.SaveState()
	if p.debugLayout {
		p.drawDebugLayout(area)
	}
	var state textState
	for _, frag := range area.Fragments {
		state = p.applyTextState(state, frag)
		if err := p.drawFragment(frag, fontsByName); err != nil {
			return err
		}
	}
	p.content.RestoreState()
	return nil
}

func (p *Page) drawDebugLayout(area dto.TextArea) {
	p.content.FillColor(debugAreaFill.R, debugAreaFill.G, debugAreaFill.B)
	p.content.LineColor(debugAreaLine.R, debugAreaLine.G, debugAreaLine.B)
	p.content.Rectangle(area.X, p.calcYWithHeight(area.Y, area.Height), area.Width, area.Height, "B")

	for _, para := range area.Paragraphs {
		p.content.FillColor(debugParagraphFill.R, debugParagraphFill.G, debugParagraphFill.B)
		p.content.LineColor(debugParagraphLine.R, debugParagraphLine.G, debugParagraphLine.B)
		p.content.Rectangle(para.X, p.calcYWithHeight(para.Y, para.Height), para.Width, para.Height, "B")

		for _, line := range para.TextLines {
			p.content.FillColor(debugTextLineFill.R, debugTextLineFill.G, debugTextLineFill.B)
			p.content.LineColor(debugTextLineLine.R, debugTextLineLine.G, debugTextLineLine.B)
			p.content.Rectangle(line.X, p.calcYWithHeight(line.Y, line.Height), line.Width, line.Height, "B")

			for _, word := range line.Words {
				p.content.FillColor(debugWordFill.R, debugWordFill.G, debugWordFill.B)
				p.content.LineColor(debugWordLine.R, debugWordLine.G, debugWordLine.B)
				p.content.Rectangle(word.X, p.calcYWithHeight(word.Y, word.Height), word.Width, word.Height, "B")
			}
		}
	}
}

func (p *Page) drawTextBox(box dto.TextBox, fontsByName map[string]*fonts.FontSubsetter) error {
	p.content.SaveState()
	p.applyTextState(textState{}, box.Fragment)
	err := p.drawFragment(box.Fragment, fontsByName)
	p.content.RestoreState()
	return err
}

// applyTextState re-emits Tf/rg only when (size, color, font) changed since
// the previous fragment, per SPEC_FULL.md §4.5.
func (p *Page) applyTextState(current textState, frag dto.Fragment) textState {
	next := textState{valid: true, size: frag.FontSize, color: frag.FontColor, fontName: frag.FontName}
	if current.valid && current == next {
		return current
	}
	alias := p.aliases.Alias(frag.FontName)
	p.content.SetFont(alias, frag.FontSize)
	p.content.FillColor(frag.FontColor.R, frag.FontColor.G, frag.FontColor.B)
	return next
}

func (p *Page) drawFragment(frag dto.Fragment, fontsByName map[string]*fonts.FontSubsetter) error {
	fs, ok := fontsByName[frag.FontName]
	if !ok {
		return &errs.MissingObjectError{What: fmt.Sprintf("font %q referenced by page fragment", frag.FontName)}
	}
	cidBytes, err := fs.Encode(frag.Chars)
	if err != nil {
		logging.Logger().Warn("page: skipping fragment with unsupported characters",
			"font", frag.FontName, "error", err)
		return nil
	}
	if len(cidBytes) == 0 {
		return nil
	}
	p.content.ShowText(frag.X, p.calcY(frag.Baseline), cidBytes)
	return nil
}

func (p *Page) drawRectangle(r dto.Rectangle) {
	p.content.SaveState()
	hasFill, hasStroke := applyShapeColors(p.content, r.FillColor, r.LineColor, r.LineWidth)
	y := p.calcYWithHeight(r.Y, r.Height)
	if r.CornerPercent == ([4]float64{}) {
		p.content.Rectangle(r.X, y, r.Width, r.Height, paintStyle(hasFill, hasStroke))
	} else {
		p.drawRoundedRectangle(r, y, hasFill, hasStroke)
	}
	p.content.RestoreState()
}

// drawRoundedRectangle builds the four-arc rounded-rectangle path; each
// corner's radius is CornerPercent[i]/100 of half the shorter side, matching
// the common rounded-rect convention SPEC_FULL.md §4.5 describes at
// interface level. Corner order is top-left, top-right, bottom-right,
// bottom-left, walked clockwise starting just right of the top-left corner.
func (p *Page) drawRoundedRectangle(r dto.Rectangle, y float64, hasFill, hasStroke bool) {
	half := math.Min(r.Width, r.Height) / 2
	tl := r.CornerPercent[0] / 100 * half
	tr := r.CornerPercent[1] / 100 * half
	br := r.CornerPercent[2] / 100 * half
	bl := r.CornerPercent[3] / 100 * half

	x0, y0 := r.X, y
	x1, y1 := r.X+r.Width, y+r.Height

	p.content.MoveTo(x0+tl, y1)
	p.content.LineTo(x1-tr, y1)
	if tr > 0 {
		p.content.Arc(x1-tr, y1, x1, y1-tr)
	}
	p.content.LineTo(x1, y0+br)
	if br > 0 {
		p.content.Arc(x1, y0+br, x1-br, y0)
	}
	p.content.LineTo(x0+bl, y0)
	if bl > 0 {
		p.content.Arc(x0+bl, y0, x0, y0+bl)
	}
	p.content.LineTo(x0, y1-tl)
	if tl > 0 {
		p.content.Arc(x0, y1-tl, x0+tl, y1)
	}
	p.content.ClosePath()
	p.content.FillAndShape(hasFill, hasStroke)
}

func (p *Page) drawEllipse(e dto.Ellipse) {
	p.content.SaveState()
	hasFill, hasStroke := applyShapeColors(p.content, e.FillColor, e.LineColor, e.LineWidth)
	cy := p.calcY(e.CY)
	p.content.MoveTo(e.CX-e.RX, cy)
	p.content.Arc(e.CX-e.RX, cy, e.CX, cy+e.RY)
	p.content.Arc(e.CX, cy+e.RY, e.CX+e.RX, cy)
	p.content.Arc(e.CX+e.RX, cy, e.CX, cy-e.RY)
	p.content.Arc(e.CX, cy-e.RY, e.CX-e.RX, cy)
	p.content.ClosePath()
	p.content.FillAndShape(hasFill, hasStroke)
	p.content.RestoreState()
}

func (p *Page) drawCurve(c dto.Curve) {
	if len(c.Points) == 0 {
		return
	}
	p.content.SaveState()
	hasFill, hasStroke := applyShapeColors(p.content, c.FillColor, c.LineColor, c.LineWidth)
	p.content.MoveTo(c.Points[0].X, p.calcY(c.Points[0].Y))
	for i := 1; i+2 < len(c.Points); i += 3 {
		p.content.CurvePoint(c.Points[i].X, p.calcY(c.Points[i].Y))
		p.content.CurvePoint(c.Points[i+1].X, p.calcY(c.Points[i+1].Y))
		p.content.CurveEnd(c.Points[i+2].X, p.calcY(c.Points[i+2].Y))
	}
	if c.Closed {
		p.content.ClosePath()
	}
	p.content.FillAndShape(hasFill, hasStroke)
	p.content.RestoreState()
}

func (p *Page) drawArc(a dto.Arc) {
	p.content.SaveState()
	_, hasStroke := applyShapeColors(p.content, nil, a.LineColor, a.LineWidth)
	p.content.MoveTo(a.X1, p.calcY(a.Y1))
	p.content.Arc(a.X1, p.calcY(a.Y1), a.X2, p.calcY(a.Y2))
	if hasStroke {
		p.content.Stroke()
	}
	p.content.RestoreState()
}

func applyShapeColors(cs *ContentStream, fill, line *dto.RGB, lineWidth float64) (hasFill, hasStroke bool) {
	if fill != nil {
		cs.FillColor(fill.R, fill.G, fill.B)
		hasFill = true
	}
	if line != nil {
		cs.LineColor(line.R, line.G, line.B)
		cs.LineWidth(lineWidth)
		hasStroke = true
	}
	return hasFill, hasStroke
}

func paintStyle(hasFill, hasStroke bool) string {
	switch {
	case hasFill && hasStroke:
		return "B"
	case hasFill:
		return "f"
	case hasStroke:
		return "S"
	default:
		return ""
	}
}

// Build wires the page's three objects: /MediaBox, /Resources, /Contents
// (optionally deflated), and the resources dictionary's /Font map resolved
// against fontObjNum (DTO font name -> font object number).
func (p *Page) Build(compress bool, fontObjNum map[string]int) {
	p.PageObj.Attrs.Set("/MediaBox", pdfval.Raw(fmt.Sprintf("[0 0 %s %s]", p.content.num(p.width), p.content.num(p.height))))
	p.PageObj.Attrs.Set("/Resources", pdfval.Ref(p.ResourcesObj.Num))
	p.PageObj.Attrs.Add("/Contents", pdfval.Ref(p.ContentsObj.Num))

	resDict := BuildResourceDict(p.aliases, fontObjNum)
	p.ResourcesObj.Attrs = resDict

	content := p.content.Bytes()
	if compress {
		p.ContentsObj.SetCompressedStream(pdfval.Deflate(content))
	} else {
		p.ContentsObj.ExtendStream(content)
	}
}
