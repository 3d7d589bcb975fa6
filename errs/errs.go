// Package errs defines the error kinds surfaced by the PDF build pipeline.
//
// Every error the pipeline can produce aborts the whole build; there is no
// partial-PDF recovery path. Callers use errors.As to recover the concrete
// kind when they need to branch on it.
package errs

import "fmt"

// EncodingError is returned when the PdfValue renderer is asked to render an
// unsupported variant, or a stream is extended with a non-byte/non-string value.
type EncodingError struct {
	Context string
	Value   any
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("encoding error: %s: unsupported value %T", e.Context, e.Value)
}

// CapacityError is returned when a font's CID counter exceeds 65535.
type CapacityError struct {
	FontName string
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("capacity error: font %q exhausted the two-byte CID space", e.FontName)
}

// UnsupportedContentError is returned for a DTO PageItem variant the core
// does not recognize.
type UnsupportedContentError struct {
	Kind string
}

func (e *UnsupportedContentError) Error() string {
	return fmt.Sprintf("unsupported content: page item kind %q", e.Kind)
}

// MissingObjectError is returned when a build step is requested before the
// object graph has been populated for it (e.g. a page lacks a page object).
type MissingObjectError struct {
	What string
}

func (e *MissingObjectError) Error() string {
	return fmt.Sprintf("missing object: %s", e.What)
}

// FontError is returned when TTF parsing fails, a required cmap subtable is
// missing, or subsetting rejects the glyph set.
type FontError struct {
	FontName string
	Reason   string
}

func (e *FontError) Error() string {
	return fmt.Sprintf("font error: %s: %s", e.FontName, e.Reason)
}
