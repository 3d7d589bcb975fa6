package writer

import (
	"strconv"

	"github.com/coregx/docpdf/internal/pdfval"
)

// FontAliases maps DTO font names to the page-local resource alias ("F1",
// "F2", ...) they render under, in first-use order. Per-page font resource
// dictionaries only ever list fonts actually referenced on that page.
type FontAliases struct {
	order   []string
	aliases map[string]string
}

// NewFontAliases returns an empty alias table.
func NewFontAliases() *FontAliases {
	return &FontAliases{aliases: make(map[string]string)}
}

// Alias returns the resource alias for fontName, assigning the next "F<n>"
// in insertion order on first use. Insertion order, not alphabetical order,
// is what must be reproduced: page content streams reference fonts in the
// order a document author happened to use them.
func (a *FontAliases) Alias(fontName string) string {
	if alias, ok := a.aliases[fontName]; ok {
		return alias
	}
	alias := "F" + strconv.Itoa(len(a.order)+1)
	a.aliases[fontName] = alias
	a.order = append(a.order, fontName)
	return alias
}

// Names returns the DTO font names referenced on this page, in first-use
// order.
func (a *FontAliases) Names() []string {
	return a.order
}

// BuildResourceDict assembles a page's /Resources dictionary: a fixed
// /ProcSet, an empty /XObject (images are a Non-goal), and a /Font
// dictionary mapping each alias in aliases to the indirect reference of its
// font object, keyed by fontObjNum (DTO font name -> that font's object
// number, allocated during graph-build).
func BuildResourceDict(aliases *FontAliases, fontObjNum map[string]int) *pdfval.Dict {
	d := pdfval.NewDict()
	d.Set("/ProcSet", pdfval.Raw("[/PDF /Text /ImageB /ImageC /ImageI]"))

	fontDict := pdfval.NewDict()
	for _, name := range aliases.Names() {
		alias := aliases.Alias(name)
		if num, ok := fontObjNum[name]; ok {
			fontDict.Set("/"+alias, pdfval.Ref(num))
		}
	}
	d.Set("/Font", pdfval.DictVal(fontDict))
	d.Set("/XObject", pdfval.DictVal(pdfval.NewDict()))
	return d
}
