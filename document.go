// Package docpdf converts a language-neutral document DTO (pages of text
// areas, shapes, and embedded TrueType fonts) into a complete PDF 1.3 byte
// stream, handling TrueType CID subsetting and PDF object-graph assembly
// along the way.
package docpdf

import (
	"context"
	"fmt"

	"github.com/coregx/docpdf/dto"
	"github.com/coregx/docpdf/internal/fonts"
	"github.com/coregx/docpdf/internal/pdfval"
	"github.com/coregx/docpdf/internal/writer"
	"github.com/coregx/docpdf/logging"
)

// Document holds one build's pages, fonts, and settings, and orchestrates
// the six-phase pipeline described in SPEC_FULL.md §4.6: parse, pre-scan,
// graph-build, page-build, font-build, serialize.
type Document struct {
	settings PDFSettings
	info     Info

	fontsByName map[string]*fonts.FontSubsetter
	fontOrder   []string
	pages       []*writer.Page
	pageItems   [][]dto.PageItem

	graph *writer.ObjectGraph
}

// NewDocument constructs a Document ready to build d under settings. info,
// when non-zero, becomes the PDF's Info dictionary.
func NewDocument(d dto.Dto, settings PDFSettings, info Info) (*Document, error) {
	doc := &Document{
		settings:    settings,
		info:        info,
		fontsByName: make(map[string]*fonts.FontSubsetter, len(d.Fonts)),
	}

	// Phase 1: parse DTO.
	for _, f := range d.Fonts {
		fs, err := fonts.NewFontSubsetter(f.Name, f.RawData)
		if err != nil {
			return nil, fmt.Errorf("parse font %q: %w", f.Name, err)
		}
		doc.fontsByName[f.Name] = fs
		doc.fontOrder = append(doc.fontOrder, f.Name)
	}
	for _, pg := range d.Pages {
		page := writer.NewPage(pg.Width, pg.Height, settings.DecimalPrecision, settings.DebugLayout)
		doc.pages = append(doc.pages, page)
		doc.pageItems = append(doc.pageItems, pg.Contents)
	}

	logging.Phase("parse").Debug("document parsed", "pages", len(doc.pages), "fonts", len(doc.fontOrder))
	return doc, nil
}

// Emit runs the remaining five phases and returns the assembled PDF bytes.
// ctx is checked for cancellation between phases only; the build itself is
// synchronous and in-memory, so cancellation is cooperative at phase
// boundaries, never mid-phase.
func (d *Document) Emit(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context canceled before build: %w", err)
	}

	if err := d.preScan(); err != nil {
		return nil, fmt.Errorf("pre-scan: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context canceled after pre-scan: %w", err)
	}

	d.graphBuild()
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context canceled after graph-build: %w", err)
	}

	if err := d.pageBuild(); err != nil {
		return nil, fmt.Errorf("page-build: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context canceled after page-build: %w", err)
	}

	if err := d.fontBuild(); err != nil {
		return nil, fmt.Errorf("font-build: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context canceled after font-build: %w", err)
	}

	out, err := d.graph.Serialize()
	if err != nil {
		return nil, fmt.Errorf("serialize: %w", err)
	}
	logging.Phase("serialize").Debug("document serialized", "bytes", len(out))
	return out, nil
}

// preScan is phase 2: every page registers its fragments' code points with
// the owning font, closing each font's CID set before any subsetting.
func (d *Document) preScan() error {
	log := logging.Phase("pre-scan")
	for i, page := range d.pages {
		if err := page.PreScan(d.pageItems[i], d.fontsByName); err != nil {
			return fmt.Errorf("page %d: %w", i, err)
		}
	}
	log.Debug("code points registered", "pages", len(d.pages), "fonts", len(d.fontOrder))
	return nil
}

// graphBuild is phase 3: allocate every page's three objects, then every
// font's six, in that fixed order, plus the Info object if requested.
func (d *Document) graphBuild() {
	log := logging.Phase("graph-build")
	d.graph = writer.NewObjectGraph(d.settings.DecimalPrecision)

	for i, page := range d.pages {
		page.AllocateObjects(d.graph.NewObject)
		log.Debug("allocated page object", "page", i, "objNum", page.PageObj.Num)
	}
	for _, name := range d.fontOrder {
		fs := d.fontsByName[name]
		fs.AllocateObjects(d.graph.NewObject)
		log.Debug("allocated font objects", "font", name, "objNum", fs.ObjWrapper.Num)
	}
	if d.info.hasValue() {
		infoObj := d.graph.SetInfo()
		d.info.applyTo(infoObj.Attrs)
	}
	log.Debug("objects allocated", "pages", len(d.pages), "fonts", len(d.fontOrder))

	d.graph.PagesObj.Attrs.Set("/Count", pdfval.Int(len(d.pages)))
	for _, page := range d.pages {
		page.PageObj.Attrs.Set("/Parent", pdfval.Ref(d.graph.PagesObj.Num))
		d.graph.PagesObj.Attrs.Add("/Kids", pdfval.Ref(page.PageObj.Num))
	}
}

// pageBuild is phase 4: each page walks its content list and emits
// operators, using CIDs already closed by pre-scan.
func (d *Document) pageBuild() error {
	log := logging.Phase("page-build")
	for i, page := range d.pages {
		if err := page.Draw(d.pageItems[i], d.fontsByName); err != nil {
			return fmt.Errorf("page %d: %w", i, err)
		}
	}
	fontObjNum := make(map[string]int, len(d.fontOrder))
	for _, name := range d.fontOrder {
		fontObjNum[name] = d.fontsByName[name].ObjWrapper.Num
	}
	for i, page := range d.pages {
		page.Build(d.settings.Compression, fontObjNum)
		log.Debug("page content stream built", "page", i, "bytes", len(page.ContentsObj.Stream))
	}
	return nil
}

// fontBuild is phase 5: each font subsets its program and emits its six
// objects now that every page has contributed to its CID set.
func (d *Document) fontBuild() error {
	log := logging.Phase("font-build")
	for _, name := range d.fontOrder {
		fs := d.fontsByName[name]
		if err := fs.Build(d.settings.Compression); err != nil {
			return fmt.Errorf("font %q: %w", name, err)
		}
		log.Debug("subset built", "font", name, "cids", fs.CIDCount())
	}
	return nil
}
