package writer

import (
	"strings"
	"testing"

	"github.com/coregx/docpdf/dto"
	"github.com/coregx/docpdf/internal/pdfval"
)

// TestDrawRoundedRectangle_AllCornersFull covers SPEC_FULL.md §8 scenario 4:
// a 100x50 rectangle with every corner percentage at 100 emits a path with
// one move, four lines, four single-Bézier arcs, and a close.
func TestDrawRoundedRectangle_AllCornersFull(t *testing.T) {
	p := NewPage(200, 200, 2, false)
	r := dto.Rectangle{
		X: 10, Y: 10, Width: 100, Height: 50,
		FillColor:     &dto.RGB{R: 255},
		CornerPercent: [4]float64{100, 100, 100, 100},
	}
	p.drawRectangle(r)

	s := string(p.content.Bytes())
	if got := strings.Count(s, " m "); got != 1 {
		t.Errorf("move-to count = %d, want 1 in %q", got, s)
	}
	if got := strings.Count(s, " l "); got != 4 {
		t.Errorf("line-to count = %d, want 4 in %q", got, s)
	}
	if got := strings.Count(s, " c "); got != 4 {
		t.Errorf("curve count = %d, want 4 in %q", got, s)
	}
	if !strings.Contains(s, "h ") {
		t.Error("expected a close-path operator")
	}
	if !strings.HasSuffix(s, "f\nQ\n") {
		t.Errorf("expected a fill-only paint operator just before the restore, got %q", s)
	}
}

// TestDrawRectangle_SquareCornersSkipsRoundedPath covers the zero-percent
// fast path: a plain "re" operator, no arcs.
func TestDrawRectangle_SquareCornersSkipsRoundedPath(t *testing.T) {
	p := NewPage(200, 200, 2, false)
	r := dto.Rectangle{X: 0, Y: 0, Width: 100, Height: 50, FillColor: &dto.RGB{R: 1}}
	p.drawRectangle(r)

	s := string(p.content.Bytes())
	if !strings.Contains(s, " re") {
		t.Errorf("expected a re operator for a square-cornered rectangle, got %q", s)
	}
	if strings.Contains(s, " c ") {
		t.Error("a square-cornered rectangle must not emit any arcs")
	}
}

// TestApplyTextState_ReusesStateAcrossIdenticalFragments covers SPEC_FULL.md
// §8 scenario 5: two consecutive fragments sharing (font, size, color) must
// only emit one Tf/rg pair between them.
func TestApplyTextState_ReusesStateAcrossIdenticalFragments(t *testing.T) {
	p := NewPage(200, 200, 2, false)
	frag := dto.Fragment{FontName: "F1", FontSize: 12, FontColor: dto.RGB{R: 10, G: 20, B: 30}}

	state := p.applyTextState(textState{}, frag)
	state = p.applyTextState(state, frag)

	s := string(p.content.Bytes())
	if got := strings.Count(s, "Tf"); got != 1 {
		t.Errorf("Tf count = %d, want 1 for two identical fragments, got %q", got, s)
	}
	if got := strings.Count(s, "rg"); got != 1 {
		t.Errorf("rg count = %d, want 1 for two identical fragments, got %q", got, s)
	}
}

// TestApplyTextState_ChangedColorForcesNewState ensures a changed field
// (color here) re-emits both operators, not just the one that changed.
func TestApplyTextState_ChangedColorForcesNewState(t *testing.T) {
	p := NewPage(200, 200, 2, false)
	frag1 := dto.Fragment{FontName: "F1", FontSize: 12, FontColor: dto.RGB{R: 10}}
	frag2 := dto.Fragment{FontName: "F1", FontSize: 12, FontColor: dto.RGB{R: 99}}

	state := p.applyTextState(textState{}, frag1)
	p.applyTextState(state, frag2)

	s := string(p.content.Bytes())
	if got := strings.Count(s, "Tf"); got != 2 {
		t.Errorf("Tf count = %d, want 2 when color changes between fragments", got)
	}
	if got := strings.Count(s, "rg"); got != 2 {
		t.Errorf("rg count = %d, want 2 when color changes between fragments", got)
	}
}

func TestDrawEllipse_EmitsFourArcsAndCloses(t *testing.T) {
	p := NewPage(200, 200, 2, false)
	p.drawEllipse(dto.Ellipse{CX: 50, CY: 50, RX: 20, RY: 10, FillColor: &dto.RGB{G: 255}})

	s := string(p.content.Bytes())
	if got := strings.Count(s, " c "); got != 4 {
		t.Errorf("curve count = %d, want 4 for a four-arc ellipse, got %q", got, s)
	}
	if !strings.Contains(s, "h ") {
		t.Error("expected a close-path operator")
	}
}

func TestDrawArc_StrokesWhenLineColorSet(t *testing.T) {
	p := NewPage(200, 200, 2, false)
	p.drawArc(dto.Arc{X1: 0, Y1: 0, X2: 10, Y2: 10, LineColor: &dto.RGB{B: 255}, LineWidth: 1})

	s := string(p.content.Bytes())
	if !strings.HasSuffix(s, "S\nQ\n") {
		t.Errorf("expected a stroke operator when LineColor is set, got %q", s)
	}
}

// TestBuild_CompressionTogglesFilterAndLength covers SPEC_FULL.md §8
// scenario 6: building the same page content with compression on vs off
// must differ in the contents stream bytes and its /Filter, /Length, while
// /MediaBox stays identical.
func TestBuild_CompressionTogglesFilterAndLength(t *testing.T) {
	newBuiltPage := func(compress bool) *Page {
		p := NewPage(612, 792, 2, false)
		newObj := func(typeName string) *pdfval.Object {
			return pdfval.NewObject(1, typeName)
		}
		p.AllocateObjects(newObj)
		p.drawRectangle(dto.Rectangle{X: 0, Y: 0, Width: 100, Height: 100, FillColor: &dto.RGB{R: 1, G: 2, B: 3}})
		p.Build(compress, nil)
		return p
	}

	uncompressed := newBuiltPage(false)
	compressed := newBuiltPage(true)

	if bytesEqual(uncompressed.ContentsObj.Stream, compressed.ContentsObj.Stream) {
		t.Error("expected different stream bytes between compressed and uncompressed builds")
	}
	if _, ok := compressed.ContentsObj.Attrs.Get("/Filter"); !ok {
		t.Error("expected /Filter on the compressed contents object")
	}
	if _, ok := uncompressed.ContentsObj.Attrs.Get("/Filter"); ok {
		t.Error("did not expect /Filter on the uncompressed contents object")
	}
	uLen, _ := uncompressed.ContentsObj.Attrs.Get("/Length")
	cLen, _ := compressed.ContentsObj.Attrs.Get("/Length")
	if renderOrPanic(t, uLen) == renderOrPanic(t, cLen) {
		t.Error("expected /Length to differ between compressed and uncompressed builds")
	}

	uMedia, _ := uncompressed.PageObj.Attrs.Get("/MediaBox")
	cMedia, _ := compressed.PageObj.Attrs.Get("/MediaBox")
	if renderOrPanic(t, uMedia) != renderOrPanic(t, cMedia) {
		t.Error("expected identical /MediaBox regardless of compression")
	}
}

func renderOrPanic(t *testing.T, v pdfval.Value) string {
	t.Helper()
	s, err := pdfval.RenderPrecision(v, 1, 4)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	return s
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestDrawArc_NoStrokeWithoutLineColor(t *testing.T) {
	p := NewPage(200, 200, 2, false)
	p.drawArc(dto.Arc{X1: 0, Y1: 0, X2: 10, Y2: 10})

	s := string(p.content.Bytes())
	if strings.Contains(s, "S\n") {
		t.Error("must not stroke an arc with no LineColor")
	}
}
